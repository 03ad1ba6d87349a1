package lock

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qs3c/bill_reminder_server/internal/reminder"
)

var _ reminder.Locker = (*RedisLocker)(nil)

func setupLocker(t *testing.T) (*RedisLocker, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRedisLocker(client), mr
}

func TestRedisLocker_AcquireAndRelease(t *testing.T) {
	locker, mr := setupLocker(t)
	ctx := context.Background()

	unlock, ok, err := locker.TryLock(ctx, "reminder:lease:email:2026-04-01", time.Minute)
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, mr.Exists("reminder:lease:email:2026-04-01"))

	_, ok, err = locker.TryLock(ctx, "reminder:lease:email:2026-04-01", time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, unlock(ctx))
	assert.False(t, mr.Exists("reminder:lease:email:2026-04-01"))

	_, ok, err = locker.TryLock(ctx, "reminder:lease:email:2026-04-01", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRedisLocker_KeysAreIndependent(t *testing.T) {
	locker, _ := setupLocker(t)
	ctx := context.Background()

	_, ok, err := locker.TryLock(ctx, "reminder:lease:email:2026-04-01", time.Minute)
	require.NoError(t, err)
	require.True(t, ok)

	_, ok, err = locker.TryLock(ctx, "reminder:lease:whatsapp:2026-04-01", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRedisLocker_Expiry(t *testing.T) {
	locker, mr := setupLocker(t)
	ctx := context.Background()

	_, ok, err := locker.TryLock(ctx, "lease", time.Minute)
	require.NoError(t, err)
	require.True(t, ok)

	mr.FastForward(2 * time.Minute)

	_, ok, err = locker.TryLock(ctx, "lease", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRedisLocker_StaleUnlockKeepsNewHolder(t *testing.T) {
	locker, mr := setupLocker(t)
	ctx := context.Background()

	staleUnlock, ok, err := locker.TryLock(ctx, "lease", time.Minute)
	require.NoError(t, err)
	require.True(t, ok)

	mr.FastForward(2 * time.Minute)

	_, ok, err = locker.TryLock(ctx, "lease", time.Minute)
	require.NoError(t, err)
	require.True(t, ok)
	holder, err := locker.Holder(ctx, "lease")
	require.NoError(t, err)

	// 过期后的旧持有者释放时不能删掉新租约
	require.NoError(t, staleUnlock(ctx))
	current, err := locker.Holder(ctx, "lease")
	require.NoError(t, err)
	assert.Equal(t, holder, current)
}

func TestRedisLocker_Unavailable(t *testing.T) {
	locker, mr := setupLocker(t)
	mr.Close()

	_, ok, err := locker.TryLock(context.Background(), "lease", time.Minute)
	assert.Error(t, err)
	assert.False(t, ok)
}

func TestRedisLocker_HolderEmpty(t *testing.T) {
	locker, _ := setupLocker(t)
	holder, err := locker.Holder(context.Background(), "missing")
	require.NoError(t, err)
	assert.Empty(t, holder)
}
