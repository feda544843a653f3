package archive

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/chess-vn/slgo/internal/domains/entities"
	"github.com/redis/go-redis/v9"
)

const (
	defaultRecordTTL = 7 * 24 * time.Hour
	recentLimit      = 100
)

// RedisStore keeps each record under its own key plus a capped, newest-first
// list per room.
type RedisStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisStore(url string, ttl time.Duration) (*RedisStore, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	return NewRedisStoreFromClient(redis.NewClient(opts), ttl), nil
}

func NewRedisStoreFromClient(rdb *redis.Client, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = defaultRecordTTL
	}
	return &RedisStore{rdb: rdb, ttl: ttl}
}

func (s *RedisStore) keyRecord(matchId string) string { return "slgo:match:" + strings.TrimSpace(matchId) }
func (s *RedisStore) keyRoom(roomId string) string { return "slgo:room:" + strings.TrimSpace(roomId) + ":records" }

func (s *RedisStore) SaveMatchRecord(ctx context.Context, record entities.MatchRecord) error {
	raw, err := json.Marshal(record)
	if err != nil {
		return err
	}
	pipe := s.rdb.TxPipeline()
	pipe.Set(ctx, s.keyRecord(record.MatchId), raw, s.ttl)
	pipe.LPush(ctx, s.keyRoom(record.RoomId), record.MatchId)
	pipe.LTrim(ctx, s.keyRoom(record.RoomId), 0, recentLimit-1)
	pipe.Expire(ctx, s.keyRoom(record.RoomId), s.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("save match record %s: %w", record.MatchId, err)
	}
	return nil
}

// LoadMatchRecord returns nil without error when the record is unknown or
// expired.
func (s *RedisStore) LoadMatchRecord(ctx context.Context, matchId string) (*entities.MatchRecord, error) {
	raw, err := s.rdb.Get(ctx, s.keyRecord(matchId)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var record entities.MatchRecord
	if err := json.Unmarshal(raw, &record); err != nil {
		return nil, err
	}
	return &record, nil
}

// RecentMatchRecords lists up to limit records of a room, newest first.
// Expired entries are skipped.
func (s *RedisStore) RecentMatchRecords(ctx context.Context, roomId string, limit int64) ([]entities.MatchRecord, error) {
	if limit <= 0 || limit > recentLimit {
		limit = recentLimit
	}
	ids, err := s.rdb.LRange(ctx, s.keyRoom(roomId), 0, limit-1).Result()
	if err != nil {
		return nil, err
	}
	records := make([]entities.MatchRecord, 0, len(ids))
	for _, id := range ids {
		record, err := s.LoadMatchRecord(ctx, id)
		if err != nil {
			return nil, err
		}
		if record == nil {
			continue
		}
		records = append(records, *record)
	}
	return records, nil
}

func (s *RedisStore) Close() error { return s.rdb.Close() }
