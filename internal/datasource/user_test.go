package datasource

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devidclub/devid-go/internal/client"
)

// stubBackend counts requests so tests can assert that validation
// short-circuits before any network call.
type stubBackend struct {
	calls   atomic.Int64
	handler http.HandlerFunc
	server  *httptest.Server
}

func newStubBackend(t *testing.T, handler http.HandlerFunc) *stubBackend {
	t.Helper()
	b := &stubBackend{handler: handler}
	b.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b.calls.Add(1)
		b.handler(w, r)
	}))
	t.Cleanup(b.server.Close)
	return b
}

func (b *stubBackend) client() *client.Client {
	return client.New(b.server.URL)
}

const userJSON = `{"_id":"5d1d2339e710560cdf5c5b80","userName":"sandtler","displayName":"Sandtler","joinedDate":1561234567890}`

func TestUserGetByID(t *testing.T) {
	backend := newStubBackend(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/user/byId/5d1d2339e710560cdf5c5b80", r.URL.Path)
		w.Write([]byte(userJSON))
	})
	source := NewUserDataSource(backend.client(), nil)

	user, err := source.GetByID(context.Background(), "5d1d2339e710560cdf5c5b80").Get()
	require.NoError(t, err)
	assert.Equal(t, "sandtler", user.UserName)
	assert.Equal(t, int64(1), backend.calls.Load())
}

func TestUserGetByIDInvalidID(t *testing.T) {
	backend := newStubBackend(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(userJSON))
	})
	source := NewUserDataSource(backend.client(), nil)

	for _, id := range []string{"bad-id", "", "5D1D2339E710560CDF5C5B80", "abc"} {
		res := source.GetByID(context.Background(), id)
		assert.ErrorIs(t, res.Err(), ErrInvalidArgument, "id %q", id)
	}
	assert.Equal(t, int64(0), backend.calls.Load(), "validation must precede networking")
}

func TestUserGetByUserName(t *testing.T) {
	backend := newStubBackend(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/user/byUserName/sandtler", r.URL.Path)
		w.Write([]byte(userJSON))
	})
	source := NewUserDataSource(backend.client(), nil)

	user, err := source.GetByUserName(context.Background(), "sandtler").Get()
	require.NoError(t, err)
	assert.Equal(t, "5d1d2339e710560cdf5c5b80", user.ID)
}

func TestUserGetByUserNameInvalid(t *testing.T) {
	backend := newStubBackend(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(userJSON))
	})
	source := NewUserDataSource(backend.client(), nil)

	for _, name := range []string{"a", "seventeen_chars_x", "with space", ""} {
		res := source.GetByUserName(context.Background(), name)
		assert.ErrorIs(t, res.Err(), ErrInvalidArgument, "name %q", name)
	}
	assert.Equal(t, int64(0), backend.calls.Load())
}

func TestUserGetByIDMalformedResponse(t *testing.T) {
	backend := newStubBackend(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"_id":"5d1d2339e710560cdf5c5b80"}`))
	})
	source := NewUserDataSource(backend.client(), nil)

	res := source.GetByID(context.Background(), "5d1d2339e710560cdf5c5b80")

	var parseErr *ParseError
	require.ErrorAs(t, res.Err(), &parseErr)
	assert.Equal(t, "user", parseErr.Entity)
}

func TestUserGetByIDEmptyResponse(t *testing.T) {
	backend := newStubBackend(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	source := NewUserDataSource(backend.client(), nil)

	res := source.GetByID(context.Background(), "5d1d2339e710560cdf5c5b80")
	assert.ErrorIs(t, res.Err(), ErrEmptyResponse)
}
