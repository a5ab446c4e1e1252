package idx_test

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/rblessings/urlradar/pkg/idx"
)

func TestNewProducesValidULIDs(t *testing.T) {
	t.Parallel()

	for range 100 {
		id := idx.New()
		require.Len(t, id, 26)
		require.NoError(t, idx.Validate(id))
	}
}

func TestNewIsMonotonicWithinMillisecond(t *testing.T) {
	t.Parallel()

	prev := idx.New()
	for range 1000 {
		next := idx.New()
		require.Greater(t, next, prev, "ids must be strictly increasing")
		prev = next
	}
}

func TestConcurrentGenerationIsUnique(t *testing.T) {
	t.Parallel()

	const workers = 8
	const perWorker = 500

	var mu sync.Mutex
	seen := make(map[string]struct{}, workers*perWorker)

	var wg sync.WaitGroup
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			local := make([]string, 0, perWorker)
			for range perWorker {
				local = append(local, idx.New())
			}
			mu.Lock()
			defer mu.Unlock()
			for _, id := range local {
				seen[id] = struct{}{}
			}
		}()
	}
	wg.Wait()

	require.Len(t, seen, workers*perWorker)
}

func TestTimeRoundTrip(t *testing.T) {
	t.Parallel()

	at := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	id := idx.NewAt(at)
	require.Equal(t, at, idx.Time(id))
}

func TestValidateRejectsGarbage(t *testing.T) {
	t.Parallel()

	require.ErrorIs(t, idx.Validate(""), idx.ErrInvalid)
	require.ErrorIs(t, idx.Validate("not-a-ulid"), idx.ErrInvalid)
	require.NoError(t, idx.Validate(idx.New()))
}
