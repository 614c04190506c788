package session

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vngglass/orderchat/internal/conversation"
)

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestRedisStoreRoundTrip(t *testing.T) {
	_, client := newTestRedis(t)
	store := NewRedisStore(client, time.Minute)
	ctx := context.Background()

	sess := conversation.NewSession("user-1")
	sess.State = conversation.StateWaitingForProductInfo
	sess.CustomerPhone = "0901234567"
	sess.Append("EI90 MB 1000*2000*25mm 2", conversation.SenderUser)
	require.True(t, sess.AddLine(conversation.LineDraft{
		ProductCode: "EI90", ProductType: "MB",
		Width: 1000, Height: 2000, Thickness: 25, Quantity: 2,
	}))

	require.NoError(t, store.Save(ctx, sess))

	got, err := store.Load(ctx, "user-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, conversation.StateWaitingForProductInfo, got.State)
	assert.Equal(t, "0901234567", got.CustomerPhone)
	require.Len(t, got.PartialOrder, 1)
	assert.Equal(t, "EI90", got.PartialOrder[0].ProductCode)
	require.Len(t, got.History, 1)
	assert.Equal(t, conversation.SenderUser, got.History[0].Sender)
}

func TestRedisStoreLoadMissing(t *testing.T) {
	_, client := newTestRedis(t)
	store := NewRedisStore(client, time.Minute)

	got, err := store.Load(context.Background(), "nobody")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestRedisStoreSaveSetsTTL(t *testing.T) {
	mr, client := newTestRedis(t)
	store := NewRedisStore(client, time.Minute)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, conversation.NewSession("user-1")))
	ttl := mr.TTL("zalo:conversation:user-1")
	assert.Greater(t, ttl, time.Duration(0))
	assert.LessOrEqual(t, ttl, time.Minute)
}

func TestRedisStoreSessionExpires(t *testing.T) {
	mr, client := newTestRedis(t)
	store := NewRedisStore(client, time.Minute)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, conversation.NewSession("user-1")))
	mr.FastForward(2 * time.Minute)

	got, err := store.Load(ctx, "user-1")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestRedisStoreDelete(t *testing.T) {
	_, client := newTestRedis(t)
	store := NewRedisStore(client, time.Minute)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, conversation.NewSession("user-1")))
	require.NoError(t, store.Delete(ctx, "user-1"))

	got, err := store.Load(ctx, "user-1")
	require.NoError(t, err)
	assert.Nil(t, got)

	// Deleting again is not an error.
	assert.NoError(t, store.Delete(ctx, "user-1"))
}

func TestRedisStoreCorruptDocument(t *testing.T) {
	mr, client := newTestRedis(t)
	store := NewRedisStore(client, time.Minute)

	require.NoError(t, mr.Set("zalo:conversation:user-1", "{not json"))
	_, err := store.Load(context.Background(), "user-1")
	assert.Error(t, err)
}

func TestDedupSeen(t *testing.T) {
	_, client := newTestRedis(t)
	dedup := NewDedup(client, time.Hour)
	ctx := context.Background()

	seen, err := dedup.Seen(ctx, "msg-1")
	require.NoError(t, err)
	assert.False(t, seen)

	seen, err = dedup.Seen(ctx, "msg-1")
	require.NoError(t, err)
	assert.True(t, seen)

	seen, err = dedup.Seen(ctx, "msg-2")
	require.NoError(t, err)
	assert.False(t, seen)
}

func TestDedupExpires(t *testing.T) {
	mr, client := newTestRedis(t)
	dedup := NewDedup(client, time.Hour)
	ctx := context.Background()

	_, err := dedup.Seen(ctx, "msg-1")
	require.NoError(t, err)

	mr.FastForward(2 * time.Hour)

	seen, err := dedup.Seen(ctx, "msg-1")
	require.NoError(t, err)
	assert.False(t, seen)
}
