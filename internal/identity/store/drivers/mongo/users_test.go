package mongo_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/rblessings/urlradar/internal/identity/domain"
	"github.com/rblessings/urlradar/internal/identity/store"
	mongostore "github.com/rblessings/urlradar/internal/identity/store/drivers/mongo"
)

// setupMongoStore starts a throwaway MongoDB container and connects a store
// to it. Tests are skipped when no container runtime is available.
func setupMongoStore(t *testing.T) *mongostore.Store {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping container-backed test in short mode")
	}
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "mongo:8",
			ExposedPorts: []string{"27017/tcp"},
			WaitingFor: wait.ForListeningPort("27017/tcp").
				WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	if err != nil {
		t.Skipf("container runtime unavailable: %v", err)
	}
	t.Cleanup(func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "27017")
	require.NoError(t, err)

	uri := fmt.Sprintf("mongodb://%s:%s", host, port.Port())
	s, err := mongostore.Connect(ctx, uri, "urlradar_test")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close(context.Background()) })

	require.NoError(t, s.EnsureIndexes(ctx))
	return s
}

func newUser(email string) domain.User {
	return domain.User{
		FirstName:    "Ada",
		LastName:     "Lovelace",
		Email:        email,
		PasswordHash: "$argon2id$v=19$m=19456,t=2,p=1$c2FsdHNhbHRzYWx0c2Fs$aGFzaGhhc2hoYXNoaGFzaGhhc2hoYXNoaGFzaGhhc2g",
	}
}

func TestMongoUsersLifecycle(t *testing.T) {
	s := setupMongoStore(t)
	users := s.Users()
	ctx := context.Background()

	t.Run("insert assigns id and version", func(t *testing.T) {
		created, err := users.Insert(ctx, newUser("ada@example.com"))
		require.NoError(t, err)
		require.NotEmpty(t, created.ID)
		require.EqualValues(t, 1, created.Version)
		require.False(t, created.CreatedAt.IsZero())

		got, err := users.GetByID(ctx, created.ID)
		require.NoError(t, err)
		require.Equal(t, created.Email, got.Email)

		got, err = users.GetByEmail(ctx, "ada@example.com")
		require.NoError(t, err)
		require.Equal(t, created.ID, got.ID)
	})

	t.Run("duplicate email is rejected by the index", func(t *testing.T) {
		_, err := users.Insert(ctx, newUser("dup@example.com"))
		require.NoError(t, err)

		_, err = users.Insert(ctx, newUser("dup@example.com"))
		require.ErrorIs(t, err, store.ErrDuplicateEmail)
	})

	t.Run("missing records yield not found", func(t *testing.T) {
		_, err := users.GetByID(ctx, "01K00000000000000000000000")
		require.ErrorIs(t, err, store.ErrNotFound)

		_, err = users.GetByEmail(ctx, "nobody@example.com")
		require.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("versioned update increments and detects staleness", func(t *testing.T) {
		created, err := users.Insert(ctx, newUser("versioned@example.com"))
		require.NoError(t, err)

		created.FirstName = "Grace"
		updated, err := users.UpdateWithVersion(ctx, created)
		require.NoError(t, err)
		require.EqualValues(t, 2, updated.Version)
		require.Equal(t, "Grace", updated.FirstName)

		// The original copy still carries version 1 and must now lose.
		created.FirstName = "Stale"
		_, err = users.UpdateWithVersion(ctx, created)
		require.ErrorIs(t, err, store.ErrVersionConflict)
	})

	t.Run("versioned update of unknown id yields not found", func(t *testing.T) {
		ghost := newUser("ghost@example.com")
		ghost.ID = "01K00000000000000000000001"
		ghost.Version = 1
		_, err := users.UpdateWithVersion(ctx, ghost)
		require.ErrorIs(t, err, store.ErrNotFound)
	})
}
