package repository

import (
	"context"
	"errors"
	"fmt"
	"image"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devidclub/devid-go/pkg/models"
	"github.com/devidclub/devid-go/pkg/result"
)

// fakeUserSource serves users from a fixed set and counts fetches.
type fakeUserSource struct {
	users   map[string]models.User // keyed by id
	byIDs   atomic.Int64
	byNames atomic.Int64
	delay   time.Duration
	err     error
}

func (f *fakeUserSource) GetByID(_ context.Context, id string) result.Result[models.User] {
	f.byIDs.Add(1)
	time.Sleep(f.delay)
	if f.err != nil {
		return result.Failure[models.User](f.err)
	}
	if user, ok := f.users[id]; ok {
		return result.Success(user)
	}
	return result.Failure[models.User](errors.New("not found"))
}

func (f *fakeUserSource) GetByUserName(_ context.Context, name string) result.Result[models.User] {
	f.byNames.Add(1)
	if f.err != nil {
		return result.Failure[models.User](f.err)
	}
	for _, user := range f.users {
		if user.UserName == name {
			return result.Success(user)
		}
	}
	return result.Failure[models.User](errors.New("not found"))
}

func (f *fakeUserSource) ProfilePicture(context.Context, string) result.Result[image.Image] {
	return result.Success[image.Image](image.NewRGBA(image.Rect(0, 0, 1, 1)))
}

func newFakeUserSource(users ...models.User) *fakeUserSource {
	f := &fakeUserSource{users: make(map[string]models.User)}
	for _, user := range users {
		f.users[user.ID] = user
	}
	return f
}

func makeUser(seq int, name string) models.User {
	return models.User{
		ID:          fmt.Sprintf("%024x", seq),
		UserName:    name,
		DisplayName: "User " + name,
		Joined:      time.UnixMilli(1561234567890).UTC(),
	}
}

func TestUserGetByIDCachesResult(t *testing.T) {
	user := makeUser(1, "sandtler")
	source := newFakeUserSource(user)
	repo := NewUserRepository(source)

	for i := 0; i < 5; i++ {
		got, err := repo.GetByID(context.Background(), user.ID).Get()
		require.NoError(t, err)
		assert.Equal(t, user, got)
	}

	assert.Equal(t, int64(1), source.byIDs.Load(), "repeated lookups must hit the cache")
}

func TestUserGetByIDPopulatesUserNameCache(t *testing.T) {
	user := makeUser(1, "sandtler")
	source := newFakeUserSource(user)
	repo := NewUserRepository(source)

	_, err := repo.GetByID(context.Background(), user.ID).Get()
	require.NoError(t, err)

	got, err := repo.GetByUserName(context.Background(), user.UserName).Get()
	require.NoError(t, err)
	assert.Equal(t, user, got)
	assert.Equal(t, int64(0), source.byNames.Load(), "id fetch must also populate the name cache")
}

func TestUserGetByUserNamePopulatesIDCache(t *testing.T) {
	user := makeUser(1, "sandtler")
	source := newFakeUserSource(user)
	repo := NewUserRepository(source)

	_, err := repo.GetByUserName(context.Background(), user.UserName).Get()
	require.NoError(t, err)

	_, err = repo.GetByID(context.Background(), user.ID).Get()
	require.NoError(t, err)
	assert.Equal(t, int64(0), source.byIDs.Load())
}

func TestUserErrorsAreNotCached(t *testing.T) {
	source := newFakeUserSource()
	source.err = errors.New("backend down")
	repo := NewUserRepository(source)

	id := makeUser(1, "sandtler").ID
	for i := 0; i < 3; i++ {
		res := repo.GetByID(context.Background(), id)
		assert.Error(t, res.Err())
	}

	assert.Equal(t, int64(3), source.byIDs.Load(), "errors must not populate the cache")
}

func TestUserEvictionDropsBothKeys(t *testing.T) {
	first := makeUser(1, "user_one")
	second := makeUser(2, "user_two")
	third := makeUser(3, "user_three")
	source := newFakeUserSource(first, second, third)
	repo := NewUserRepository(source, WithUserCacheCapacity(2))

	for _, user := range []models.User{first, second, third} {
		_, err := repo.GetByID(context.Background(), user.ID).Get()
		require.NoError(t, err)
	}

	// second and third are still cached under both keys.
	_, err := repo.GetByID(context.Background(), second.ID).Get()
	require.NoError(t, err)
	_, err = repo.GetByID(context.Background(), third.ID).Get()
	require.NoError(t, err)
	_, err = repo.GetByUserName(context.Background(), second.UserName).Get()
	require.NoError(t, err)
	assert.Equal(t, int64(3), source.byIDs.Load())
	assert.Equal(t, int64(0), source.byNames.Load())

	// first was evicted from the id cache, so its user name entry must be
	// gone as well.
	_, err = repo.GetByUserName(context.Background(), first.UserName).Get()
	require.NoError(t, err)
	assert.Equal(t, int64(1), source.byNames.Load())
}

func TestUserConcurrentMissesShareOneFetch(t *testing.T) {
	user := makeUser(1, "sandtler")
	source := newFakeUserSource(user)
	source.delay = 20 * time.Millisecond
	repo := NewUserRepository(source)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := repo.GetByID(context.Background(), user.ID).Get()
			assert.NoError(t, err)
			assert.Equal(t, user, got)
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(1), source.byIDs.Load(), "concurrent misses must share one upstream call")
}

func TestUserClearCache(t *testing.T) {
	user := makeUser(1, "sandtler")
	source := newFakeUserSource(user)
	repo := NewUserRepository(source)

	_, err := repo.GetByID(context.Background(), user.ID).Get()
	require.NoError(t, err)
	require.NoError(t, repo.ClearCache(context.Background()))

	_, err = repo.GetByID(context.Background(), user.ID).Get()
	require.NoError(t, err)
	assert.Equal(t, int64(2), source.byIDs.Load())
}
