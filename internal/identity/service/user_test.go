package service_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/rblessings/urlradar/internal/identity/cache"
	"github.com/rblessings/urlradar/internal/identity/domain"
	"github.com/rblessings/urlradar/internal/identity/service"
	"github.com/rblessings/urlradar/internal/identity/store"
	"github.com/rblessings/urlradar/internal/identity/store/drivers/memory"
)

// countingStore wraps the memory store and counts user repository reads so
// tests can observe whether the cache actually absorbed a lookup.
type countingStore struct {
	store.Store
	reads atomic.Int64
}

func (c *countingStore) Users() store.Users {
	return &countingUsers{Users: c.Store.Users(), reads: &c.reads}
}

type countingUsers struct {
	store.Users
	reads *atomic.Int64
}

func (c *countingUsers) GetByID(ctx context.Context, id string) (domain.User, error) {
	c.reads.Add(1)
	return c.Users.GetByID(ctx, id)
}

func (c *countingUsers) GetByEmail(ctx context.Context, email string) (domain.User, error) {
	c.reads.Add(1)
	return c.Users.GetByEmail(ctx, email)
}

// failingCache errors on every operation, modelling an unreachable server.
type failingCache struct{}

func (failingCache) Get(context.Context, string) (domain.User, error) {
	return domain.User{}, errors.New("connection refused")
}
func (failingCache) Put(context.Context, string, domain.User, time.Duration) error {
	return errors.New("connection refused")
}
func (failingCache) Invalidate(context.Context, string) error {
	return errors.New("connection refused")
}

func newService(t *testing.T) (*service.UserService, *countingStore) {
	t.Helper()
	st := &countingStore{Store: memory.New()}
	return service.NewUserService(st, cache.NewMemory(), nil), st
}

func registerReq(email string) service.RegisterUserRequest {
	return service.RegisterUserRequest{
		FirstName: "Ada",
		LastName:  "Lovelace",
		Email:     email,
		Password:  "s3cret-passw0rd",
	}
}

func TestRegisterReturnsSanitizedView(t *testing.T) {
	t.Parallel()
	svc, _ := newService(t)

	view, err := svc.Register(context.Background(), registerReq("Ada@Example.COM"))
	require.NoError(t, err)
	require.NotEmpty(t, view.ID)
	require.Equal(t, "Ada", view.FirstName)
	require.Equal(t, "ada@example.com", view.Email, "email must be stored normalized")
}

func TestRegisterStoresHashNotPassword(t *testing.T) {
	t.Parallel()
	svc, st := newService(t)
	ctx := context.Background()

	view, err := svc.Register(ctx, registerReq("hash@example.com"))
	require.NoError(t, err)

	stored, err := st.Store.Users().GetByID(ctx, view.ID)
	require.NoError(t, err)
	require.NotEmpty(t, stored.PasswordHash)
	require.NotContains(t, stored.PasswordHash, "s3cret-passw0rd")
}

func TestRegisterDuplicateEmail(t *testing.T) {
	t.Parallel()
	svc, _ := newService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, registerReq("dup@example.com"))
	require.NoError(t, err)

	_, err = svc.Register(ctx, registerReq("  DUP@example.com "))
	var inUse *service.EmailInUseError
	require.ErrorAs(t, err, &inUse)
	require.Equal(t, "The email address 'dup@example.com' is already in use.", err.Error())
}

// blindStore hides records from email reads so the registration pre-check
// always misses, modelling another instance inserting between the check and
// the insert. The unique index then rejects the insert.
type blindStore struct{ store.Store }

func (b *blindStore) Users() store.Users { return &blindUsers{Users: b.Store.Users()} }

type blindUsers struct{ store.Users }

func (b *blindUsers) GetByEmail(context.Context, string) (domain.User, error) {
	return domain.User{}, store.ErrNotFound
}

func TestRegisterLostRaceMapsToEmailInUse(t *testing.T) {
	t.Parallel()
	inner := memory.New()
	_, err := inner.Users().Insert(context.Background(), domain.User{Email: "race@example.com"})
	require.NoError(t, err)

	svc := service.NewUserService(&blindStore{Store: inner}, cache.NewMemory(), nil)
	_, err = svc.Register(context.Background(), registerReq("race@example.com"))
	var inUse *service.EmailInUseError
	require.ErrorAs(t, err, &inUse)
	require.Equal(t, "The email address 'race@example.com' is already in use.", err.Error())
}

func TestRegisterConcurrentSameEmailExactlyOneWins(t *testing.T) {
	t.Parallel()
	svc, _ := newService(t)
	ctx := context.Background()

	const attempts = 8
	var wg sync.WaitGroup
	errs := make([]error, attempts)
	for i := range attempts {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = svc.Register(ctx, registerReq("storm@example.com"))
		}()
	}
	wg.Wait()

	var ok int
	for _, err := range errs {
		if err == nil {
			ok++
			continue
		}
		var inUse *service.EmailInUseError
		require.ErrorAs(t, err, &inUse)
	}
	require.Equal(t, 1, ok, "exactly one concurrent registration must succeed")
}

func TestFindByIDServesSecondReadFromCache(t *testing.T) {
	t.Parallel()
	svc, st := newService(t)
	ctx := context.Background()

	view, err := svc.Register(ctx, registerReq("cached@example.com"))
	require.NoError(t, err)
	readsAfterRegister := st.reads.Load()

	got, err := svc.FindByID(ctx, view.ID)
	require.NoError(t, err)
	require.Equal(t, view, got)

	got, err = svc.FindByID(ctx, view.ID)
	require.NoError(t, err)
	require.Equal(t, view, got)

	require.Equal(t, readsAfterRegister, st.reads.Load(),
		"registration populates the cache, so lookups must not hit the store")
}

func TestFindByEmailNormalizesBeforeLookup(t *testing.T) {
	t.Parallel()
	svc, _ := newService(t)
	ctx := context.Background()

	view, err := svc.Register(ctx, registerReq("norm@example.com"))
	require.NoError(t, err)

	got, err := svc.FindByEmail(ctx, "  NORM@Example.Com ")
	require.NoError(t, err)
	require.Equal(t, view.ID, got.ID)
}

func TestFindMissIsNotCached(t *testing.T) {
	t.Parallel()
	svc, st := newService(t)
	ctx := context.Background()

	_, err := svc.FindByEmail(ctx, "late@example.com")
	require.ErrorIs(t, err, service.ErrUserNotFound)
	require.EqualValues(t, 1, st.reads.Load())

	// Registering after the miss must be immediately visible: the earlier
	// miss must not have left a poisoned "absent" entry behind.
	view, err := svc.Register(ctx, registerReq("late@example.com"))
	require.NoError(t, err)

	got, err := svc.FindByEmail(ctx, "late@example.com")
	require.NoError(t, err)
	require.Equal(t, view.ID, got.ID)
}

func TestFindByIDUnknownUser(t *testing.T) {
	t.Parallel()
	svc, _ := newService(t)

	_, err := svc.FindByID(context.Background(), "01K00000000000000000000000")
	require.ErrorIs(t, err, service.ErrUserNotFound)
}

func TestCacheFailureDegradesToStore(t *testing.T) {
	t.Parallel()
	st := &countingStore{Store: memory.New()}
	svc := service.NewUserService(st, failingCache{}, nil)
	ctx := context.Background()

	view, err := svc.Register(ctx, registerReq("degraded@example.com"))
	require.NoError(t, err, "a dead cache must not fail registration")

	for i := range 3 {
		got, err := svc.FindByID(ctx, view.ID)
		require.NoError(t, err)
		require.Equal(t, view, got, "read %d", i)
	}
	require.EqualValues(t, 3, st.reads.Load(), "every read goes to the store when the cache is down")
}

func TestRegisterManyDistinctUsers(t *testing.T) {
	t.Parallel()
	svc, _ := newService(t)
	ctx := context.Background()

	for i := range 10 {
		_, err := svc.Register(ctx, registerReq(fmt.Sprintf("user%d@example.com", i)))
		require.NoError(t, err)
	}
}
