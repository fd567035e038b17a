package shared

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager(t *testing.T) (*SessionManager, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewSessionManager(client, "lunchline_session", "test-secret", time.Hour, false), mr
}

func TestSessionLoadCreatesNew(t *testing.T) {
	sm, _ := newTestManager(t)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	sess, err := sm.Load(context.Background(), req)
	require.NoError(t, err)
	assert.NotEmpty(t, sess.ID)
	assert.Empty(t, sess.User())
}

func TestSessionCommitAndReload(t *testing.T) {
	sm, _ := newTestManager(t)
	ctx := context.Background()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	sess, err := sm.Load(ctx, req)
	require.NoError(t, err)
	sess.SetUser("42")
	sess.Set("theme", "dark")

	rr := httptest.NewRecorder()
	require.NoError(t, sm.Commit(ctx, rr, sess))

	cookies := rr.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "lunchline_session", cookies[0].Name)
	assert.Equal(t, sess.ID, cookies[0].Value)
	assert.True(t, cookies[0].HttpOnly)

	// a second request carrying the cookie gets the same data back
	req2 := httptest.NewRequest(http.MethodGet, "/", nil)
	req2.AddCookie(cookies[0])
	reloaded, err := sm.Load(ctx, req2)
	require.NoError(t, err)
	assert.Equal(t, "42", reloaded.User())
	assert.Equal(t, "dark", reloaded.Get("theme"))
}

func TestSessionCommitSkipsCleanSession(t *testing.T) {
	sm, mr := newTestManager(t)
	ctx := context.Background()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	sess, err := sm.Load(ctx, req)
	require.NoError(t, err)
	sess.SetUser("7")

	rr := httptest.NewRecorder()
	require.NoError(t, sm.Commit(ctx, rr, sess))

	req2 := httptest.NewRequest(http.MethodGet, "/", nil)
	req2.AddCookie(rr.Result().Cookies()[0])
	reloaded, err := sm.Load(ctx, req2)
	require.NoError(t, err)

	mr.FlushAll()
	rr2 := httptest.NewRecorder()
	require.NoError(t, sm.Commit(ctx, rr2, reloaded))
	// not dirty, so nothing was written back
	assert.Empty(t, mr.Keys())
}

func TestSessionDestroy(t *testing.T) {
	sm, mr := newTestManager(t)
	ctx := context.Background()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	sess, err := sm.Load(ctx, req)
	require.NoError(t, err)
	sess.SetUser("9")

	rr := httptest.NewRecorder()
	require.NoError(t, sm.Commit(ctx, rr, sess))
	assert.True(t, mr.Exists("lunchline:sess:"+sess.ID))

	sm.Destroy(sess)
	rr2 := httptest.NewRecorder()
	require.NoError(t, sm.Commit(ctx, rr2, sess))

	assert.False(t, mr.Exists("lunchline:sess:"+sess.ID))
	cookies := rr2.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Empty(t, cookies[0].Value)
	assert.Equal(t, -1, cookies[0].MaxAge)
}

func TestSessionExpiry(t *testing.T) {
	sm, mr := newTestManager(t)
	ctx := context.Background()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	sess, err := sm.Load(ctx, req)
	require.NoError(t, err)
	sess.SetUser("3")

	rr := httptest.NewRecorder()
	require.NoError(t, sm.Commit(ctx, rr, sess))

	mr.FastForward(2 * time.Hour)

	req2 := httptest.NewRequest(http.MethodGet, "/", nil)
	req2.AddCookie(rr.Result().Cookies()[0])
	reloaded, err := sm.Load(ctx, req2)
	require.NoError(t, err)
	// expired sessions come back empty instead of erroring
	assert.Empty(t, reloaded.User())
}
