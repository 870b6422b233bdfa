package session

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xenking/storefront/internal/domain/cart"
)

var _ cart.Session = (*Handle)(nil)

// setupTestRedis creates a miniredis server and a RedisBackend pointing at it.
func setupTestRedis(t *testing.T) (*RedisBackend, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisBackend(client), mr
}

func TestBackends(t *testing.T) {
	redisBackend, _ := setupTestRedis(t)
	backends := map[string]Backend{
		"memory": NewMemoryBackend(),
		"redis":  redisBackend,
	}

	for name, b := range backends {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			_, err := b.Get(ctx, "s1", "cart")
			require.ErrorIs(t, err, ErrNotFound)

			require.NoError(t, b.Set(ctx, "s1", "cart", []byte(`{"v":1}`), time.Hour))
			got, err := b.Get(ctx, "s1", "cart")
			require.NoError(t, err)
			assert.Equal(t, []byte(`{"v":1}`), got)

			require.NoError(t, b.Set(ctx, "s1", "cart", []byte(`{"v":2}`), time.Hour))
			got, err = b.Get(ctx, "s1", "cart")
			require.NoError(t, err)
			assert.Equal(t, []byte(`{"v":2}`), got)

			_, err = b.Get(ctx, "s1", "other")
			require.ErrorIs(t, err, ErrNotFound)

			_, err = b.Get(ctx, "s2", "cart")
			require.ErrorIs(t, err, ErrNotFound, "sessions are isolated")
		})
	}
}

func TestMemoryBackend_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	b := NewMemoryBackend()

	value := []byte("abc")
	require.NoError(t, b.Set(ctx, "s1", "k", value, time.Hour))
	value[0] = 'z'

	got, err := b.Get(ctx, "s1", "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("abc"), got)

	got[1] = 'z'
	again, err := b.Get(ctx, "s1", "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("abc"), again)
}

func TestMemoryBackend_Expiry(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	b := NewMemoryBackend()
	b.now = func() time.Time { return now }

	require.NoError(t, b.Set(ctx, "s1", "k", []byte("v"), time.Minute))
	require.NoError(t, b.Set(ctx, "s2", "k", []byte("v"), time.Hour))

	now = now.Add(2 * time.Minute)
	_, err := b.Get(ctx, "s1", "k")
	require.ErrorIs(t, err, ErrNotFound)

	b.Cleanup()
	assert.Len(t, b.sessions, 1)
	_, err = b.Get(ctx, "s2", "k")
	require.NoError(t, err)
}

func TestRedisBackend_SetsTTL(t *testing.T) {
	ctx := context.Background()
	b, mr := setupTestRedis(t)

	require.NoError(t, b.Set(ctx, "s1", "cart", []byte("v"), 30*time.Minute))
	assert.Equal(t, 30*time.Minute, mr.TTL("session:s1"))

	mr.FastForward(31 * time.Minute)
	_, err := b.Get(ctx, "s1", "cart")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestRedisBackend_ConnectionError(t *testing.T) {
	ctx := context.Background()
	b, mr := setupTestRedis(t)
	mr.Close()

	_, err := b.Get(ctx, "s1", "cart")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
	assert.Error(t, b.Ping(ctx))
}

func TestManager_OpenIssuesCookie(t *testing.T) {
	m := NewManager(NewMemoryBackend(), Config{CookieName: "sid", TTL: time.Hour})

	w := httptest.NewRecorder()
	h := m.Open(w, httptest.NewRequest(http.MethodGet, "/", nil))

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "sid", cookies[0].Name)
	assert.Equal(t, h.ID(), cookies[0].Value)
	assert.True(t, cookies[0].HttpOnly)
	assert.Equal(t, 3600, cookies[0].MaxAge)
	_, err := uuid.Parse(h.ID())
	require.NoError(t, err)
}

func TestManager_OpenReusesCookie(t *testing.T) {
	ctx := context.Background()
	m := NewManager(NewMemoryBackend(), Config{CookieName: "sid"})

	first := m.Open(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, first.Set(ctx, "cart", []byte("payload")))

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.AddCookie(&http.Cookie{Name: "sid", Value: first.ID()})
	w := httptest.NewRecorder()
	second := m.Open(w, r)

	assert.Equal(t, first.ID(), second.ID())
	assert.Empty(t, w.Result().Cookies(), "known session is not reissued")

	v, ok, err := second.Get(ctx, "cart")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []byte("payload"), v)
}

func TestManager_OpenRejectsForgedCookie(t *testing.T) {
	m := NewManager(NewMemoryBackend(), Config{CookieName: "sid"})

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.AddCookie(&http.Cookie{Name: "sid", Value: "../../etc/passwd"})
	w := httptest.NewRecorder()
	h := m.Open(w, r)

	assert.NotEqual(t, "../../etc/passwd", h.ID())
	assert.Len(t, w.Result().Cookies(), 1)
}

type failingBackend struct{}

func (failingBackend) Get(context.Context, string, string) ([]byte, error) {
	return nil, errors.New("backend down")
}

func (failingBackend) Set(context.Context, string, string, []byte, time.Duration) error {
	return errors.New("backend down")
}

func TestHandle_Errors(t *testing.T) {
	ctx := context.Background()
	h := NewManager(failingBackend{}, Config{}).handle("s1")

	_, ok, err := h.Get(ctx, "cart")
	require.Error(t, err)
	assert.False(t, ok)
	assert.Contains(t, err.Error(), "backend down")

	err = h.Set(ctx, "cart", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "set session cart")
}
