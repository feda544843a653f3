// Package archive persists finished match records to whichever backends are
// configured. Records are write-mostly; nothing is loaded back into a room.
package archive

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/chess-vn/slgo/internal/domains/entities"
	"github.com/chess-vn/slgo/pkg/logging"
	"go.uber.org/zap"
)

var ErrNoRecentStore = errors.New("no store for recent records configured")

type Sink interface {
	SaveMatchRecord(ctx context.Context, record entities.MatchRecord) error
}

type Config struct {
	RedisURL       string
	RecordTTL      time.Duration
	PostgresURL    string
	LambdaFunction string
	AwsRegion      string
	Timeout        time.Duration
}

// Archive fans a record out to every configured sink.
type Archive struct {
	sinks   []Sink
	closers []func() error
	recent  *RedisStore
}

func New(sinks ...Sink) *Archive {
	a := &Archive{}
	for _, s := range sinks {
		a.Add(s, nil)
	}
	return a
}

// Open connects every backend named in cfg. Backends left empty are skipped.
func Open(ctx context.Context, cfg Config) (*Archive, error) {
	a := &Archive{}
	if cfg.RedisURL != "" {
		store, err := NewRedisStore(cfg.RedisURL, cfg.RecordTTL)
		if err != nil {
			return nil, fmt.Errorf("redis archive: %w", err)
		}
		a.Add(store, store.Close)
		logging.Info("redis archive enabled")
	}
	if cfg.PostgresURL != "" {
		repo, err := NewRepository(ctx, cfg.PostgresURL)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("postgres archive: %w", err)
		}
		a.Add(repo, repo.Close)
		logging.Info("postgres archive enabled")
	}
	if cfg.LambdaFunction != "" {
		notifier, err := NewLambdaNotifier(ctx, cfg.LambdaFunction, cfg.AwsRegion)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("lambda archive: %w", err)
		}
		a.Add(notifier, nil)
		logging.Info("lambda archive enabled", zap.String("function", cfg.LambdaFunction))
	}
	return a, nil
}

func (a *Archive) Add(sink Sink, closer func() error) {
	a.sinks = append(a.sinks, sink)
	if closer != nil {
		a.closers = append(a.closers, closer)
	}
	if store, ok := sink.(*RedisStore); ok && a.recent == nil {
		a.recent = store
	}
}

func (a *Archive) Len() int { return len(a.sinks) }

// SaveMatchRecord writes to every sink, even when an earlier one fails.
func (a *Archive) SaveMatchRecord(ctx context.Context, record entities.MatchRecord) error {
	var errs []error
	for _, s := range a.sinks {
		if err := s.SaveMatchRecord(ctx, record); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (a *Archive) RecentMatchRecords(ctx context.Context, roomId string, limit int64) ([]entities.MatchRecord, error) {
	if a.recent == nil {
		return nil, ErrNoRecentStore
	}
	return a.recent.RecentMatchRecords(ctx, roomId, limit)
}

func (a *Archive) Close() error {
	var errs []error
	for _, c := range a.closers {
		if err := c(); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
