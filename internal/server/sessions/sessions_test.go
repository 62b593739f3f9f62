package sessions

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/dmitrijs2005/rentfinder/internal/server/models"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSession_Authenticated(t *testing.T) {
	var nilSession *Session
	assert.False(t, nilSession.Authenticated())
	assert.False(t, (&Session{}).Authenticated())
	assert.True(t, (&Session{AccountID: "a"}).Authenticated())

	assert.False(t, nilSession.HasRole(models.RoleOwner))
	s := &Session{AccountID: "a", Role: models.RoleOwner}
	assert.True(t, s.HasRole(models.RoleUser, models.RoleOwner))
	assert.False(t, s.HasRole(models.RoleUser))
}

func TestContextRoundTrip(t *testing.T) {
	assert.Nil(t, FromContext(context.Background()))

	s := &Session{AccountID: "a", SessionID: "s"}
	ctx := WithSession(context.Background(), s)
	assert.Same(t, s, FromContext(ctx))
}

type clock struct{ t time.Time }

func (c *clock) now() time.Time          { return c.t }
func (c *clock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestMemory() (*MemoryRegistry, *clock) {
	c := &clock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	m := NewMemoryRegistry()
	m.now = c.now
	return m, c
}

func TestMemoryRegistry_RoleCache(t *testing.T) {
	ctx := context.Background()
	m, c := newTestMemory()

	_, ok, err := m.CachedRole(ctx, "s1")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, m.CacheRole(ctx, "s1", models.RoleOwner, time.Minute))
	role, ok, err := m.CachedRole(ctx, "s1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, models.RoleOwner, role)

	c.advance(time.Minute)
	_, ok, _ = m.CachedRole(ctx, "s1")
	assert.False(t, ok)
}

func TestMemoryRegistry_Revoke(t *testing.T) {
	ctx := context.Background()
	m, c := newTestMemory()

	require.NoError(t, m.CacheRole(ctx, "s1", models.RoleUser, time.Hour))
	require.NoError(t, m.Revoke(ctx, "s1", 10*time.Minute))
	require.NoError(t, m.Revoke(ctx, "s1", 10*time.Minute))

	revoked, err := m.Revoked(ctx, "s1")
	require.NoError(t, err)
	assert.True(t, revoked)

	_, ok, _ := m.CachedRole(ctx, "s1")
	assert.False(t, ok)

	c.advance(11 * time.Minute)
	revoked, _ = m.Revoked(ctx, "s1")
	assert.False(t, revoked)
}

func TestMemoryRegistry_Allow(t *testing.T) {
	ctx := context.Background()
	m, c := newTestMemory()

	for i := 0; i < 3; i++ {
		ok, err := m.Allow(ctx, "reset:a@b.c", 3, time.Minute)
		require.NoError(t, err)
		assert.True(t, ok, "hit %d", i+1)
	}
	ok, _ := m.Allow(ctx, "reset:a@b.c", 3, time.Minute)
	assert.False(t, ok)

	ok, _ = m.Allow(ctx, "reset:other@b.c", 3, time.Minute)
	assert.True(t, ok)

	c.advance(time.Minute)
	ok, _ = m.Allow(ctx, "reset:a@b.c", 3, time.Minute)
	assert.True(t, ok)
}

func TestMemoryRegistry_SweepsUnreadExpiredEntries(t *testing.T) {
	ctx := context.Background()
	m, c := newTestMemory()

	for i := 0; i < 5; i++ {
		_, err := m.Allow(ctx, fmt.Sprintf("reset:user%d@b.c", i), 3, time.Minute)
		require.NoError(t, err)
	}
	require.NoError(t, m.Revoke(ctx, "s1", time.Minute))
	require.NoError(t, m.CacheRole(ctx, "s2", models.RoleUser, time.Hour))
	assert.Len(t, m.items, 7)

	c.advance(2 * time.Minute)
	_, err := m.Allow(ctx, "reset:fresh@b.c", 3, time.Minute)
	require.NoError(t, err)

	assert.Len(t, m.items, 2, "only the live role and the new limit remain")
	_, ok := m.items[roleKey("s2")]
	assert.True(t, ok)
}

// fakeRedis implements the handful of commands the registry issues.
type fakeRedis struct {
	redis.Cmdable
	data map[string]string
	ttl  map[string]time.Duration
	err  error
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{data: map[string]string{}, ttl: map[string]time.Duration{}}
}

func (f *fakeRedis) Set(ctx context.Context, key string, value interface{}, exp time.Duration) *redis.StatusCmd {
	cmd := redis.NewStatusCmd(ctx)
	if f.err != nil {
		cmd.SetErr(f.err)
		return cmd
	}
	f.data[key] = fmt.Sprint(value)
	f.ttl[key] = exp
	cmd.SetVal("OK")
	return cmd
}

func (f *fakeRedis) Get(ctx context.Context, key string) *redis.StringCmd {
	cmd := redis.NewStringCmd(ctx)
	if f.err != nil {
		cmd.SetErr(f.err)
		return cmd
	}
	v, ok := f.data[key]
	if !ok {
		cmd.SetErr(redis.Nil)
		return cmd
	}
	cmd.SetVal(v)
	return cmd
}

func (f *fakeRedis) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	cmd := redis.NewIntCmd(ctx)
	if f.err != nil {
		cmd.SetErr(f.err)
		return cmd
	}
	var n int64
	for _, k := range keys {
		if _, ok := f.data[k]; ok {
			delete(f.data, k)
			n++
		}
	}
	cmd.SetVal(n)
	return cmd
}

func (f *fakeRedis) Exists(ctx context.Context, keys ...string) *redis.IntCmd {
	cmd := redis.NewIntCmd(ctx)
	if f.err != nil {
		cmd.SetErr(f.err)
		return cmd
	}
	var n int64
	for _, k := range keys {
		if _, ok := f.data[k]; ok {
			n++
		}
	}
	cmd.SetVal(n)
	return cmd
}

func (f *fakeRedis) Incr(ctx context.Context, key string) *redis.IntCmd {
	cmd := redis.NewIntCmd(ctx)
	if f.err != nil {
		cmd.SetErr(f.err)
		return cmd
	}
	var n int64
	fmt.Sscan(f.data[key], &n)
	n++
	f.data[key] = fmt.Sprint(n)
	cmd.SetVal(n)
	return cmd
}

func (f *fakeRedis) Expire(ctx context.Context, key string, exp time.Duration) *redis.BoolCmd {
	cmd := redis.NewBoolCmd(ctx)
	if f.err != nil {
		cmd.SetErr(f.err)
		return cmd
	}
	f.ttl[key] = exp
	cmd.SetVal(true)
	return cmd
}

func TestRedisRegistry(t *testing.T) {
	ctx := context.Background()
	f := newFakeRedis()
	r := &RedisRegistry{client: f}

	_, ok, err := r.CachedRole(ctx, "s1")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, r.CacheRole(ctx, "s1", models.RoleOwner, time.Hour))
	assert.Equal(t, "owner", f.data["rentfinder:session:s1:role"])
	assert.Equal(t, time.Hour, f.ttl["rentfinder:session:s1:role"])

	role, ok, err := r.CachedRole(ctx, "s1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, models.RoleOwner, role)

	require.NoError(t, r.Revoke(ctx, "s1", time.Minute))
	revoked, err := r.Revoked(ctx, "s1")
	require.NoError(t, err)
	assert.True(t, revoked)
	_, ok, _ = r.CachedRole(ctx, "s1")
	assert.False(t, ok)

	for i := 0; i < 2; i++ {
		ok, err := r.Allow(ctx, "k", 2, time.Minute)
		require.NoError(t, err)
		assert.True(t, ok)
	}
	ok, err = r.Allow(ctx, "k", 2, time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, time.Minute, f.ttl["rentfinder:limit:k"])

	assert.NoError(t, r.Close())
}

func TestRedisRegistry_Errors(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("conn refused")
	f := newFakeRedis()
	f.err = boom
	r := &RedisRegistry{client: f}

	assert.ErrorIs(t, r.CacheRole(ctx, "s", models.RoleUser, time.Minute), boom)
	_, _, err := r.CachedRole(ctx, "s")
	assert.ErrorIs(t, err, boom)
	assert.ErrorIs(t, r.Revoke(ctx, "s", time.Minute), boom)
	_, err = r.Revoked(ctx, "s")
	assert.ErrorIs(t, err, boom)
	_, err = r.Allow(ctx, "k", 1, time.Minute)
	assert.ErrorIs(t, err, boom)
}
