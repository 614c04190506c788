package session

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/vngglass/orderchat/internal/conversation"
	errx "github.com/vngglass/orderchat/internal/core/error"
)

const conversationKeyPrefix = "zalo:conversation:"

// Store persists conversation sessions keyed by channel user id.
type Store interface {
	// Load returns the stored session, or (nil, nil) when the user has none.
	Load(ctx context.Context, userID string) (*conversation.Session, error)
	// Save writes the session as one document and refreshes its TTL.
	Save(ctx context.Context, sess *conversation.Session) error
	// Delete discards the session. Deleting a missing session is not an error.
	Delete(ctx context.Context, userID string) error
}

// RedisStore keeps each session as a single JSON document under
// zalo:conversation:<user_id> with a sliding TTL, so an abandoned
// conversation expires on its own.
type RedisStore struct {
	client redis.Cmdable
	ttl    time.Duration
}

var _ Store = (*RedisStore)(nil)

// NewRedisStore creates the store. ttl <= 0 falls back to 30 minutes.
func NewRedisStore(client redis.Cmdable, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &RedisStore{client: client, ttl: ttl}
}

func (s *RedisStore) Load(ctx context.Context, userID string) (*conversation.Session, error) {
	raw, err := s.client.Get(ctx, conversationKeyPrefix+userID).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, errx.WrapRedis(err)
	}

	var sess conversation.Session
	if err := json.Unmarshal([]byte(raw), &sess); err != nil {
		// A corrupt document is unrecoverable; surface it so the caller can
		// decide to start the user over.
		return nil, errx.New(err, http.StatusInternalServerError, "corrupt session document")
	}
	return &sess, nil
}

func (s *RedisStore) Save(ctx context.Context, sess *conversation.Session) error {
	raw, err := json.Marshal(sess)
	if err != nil {
		return errx.New(err, http.StatusInternalServerError, "encode session")
	}
	if err := s.client.Set(ctx, conversationKeyPrefix+sess.UserID, raw, s.ttl).Err(); err != nil {
		return errx.WrapRedis(err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, userID string) error {
	if err := s.client.Del(ctx, conversationKeyPrefix+userID).Err(); err != nil {
		return errx.WrapRedis(err)
	}
	return nil
}
