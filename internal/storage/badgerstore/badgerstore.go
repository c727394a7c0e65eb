// Package badgerstore persists calculator state in an embedded BadgerDB.
package badgerstore

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v4"
	"go.uber.org/zap"

	"github.com/jask/jaskcalc/internal/storage"
)

// Config holds BadgerDB settings.
type Config struct {
	// Path is the database directory; ignored when InMemory is set.
	Path       string
	InMemory   bool
	SyncWrites bool
	Logger     *zap.Logger

	// GCInterval is how often value log GC runs. Zero disables it.
	GCInterval     time.Duration
	GCDiscardRatio float64
}

// DefaultConfig returns durable settings for path.
func DefaultConfig(path string) Config {
	return Config{
		Path:           path,
		SyncWrites:     true,
		GCInterval:     5 * time.Minute,
		GCDiscardRatio: 0.5,
	}
}

// InMemoryConfig is used by tests.
func InMemoryConfig() Config {
	return Config{InMemory: true}
}

// badgerLogger adapts zap to badger.Logger.
type badgerLogger struct {
	s *zap.SugaredLogger
}

func (l badgerLogger) Errorf(format string, args ...interface{})   { l.s.Errorf(format, args...) }
func (l badgerLogger) Warningf(format string, args ...interface{}) { l.s.Warnf(format, args...) }
func (l badgerLogger) Infof(format string, args ...interface{})    { l.s.Infof(format, args...) }
func (l badgerLogger) Debugf(format string, args ...interface{})   { l.s.Debugf(format, args...) }

// Store implements storage.Store on BadgerDB.
type Store struct {
	db     *badger.DB
	logger *zap.Logger

	stopGC chan struct{}
	gcDone chan struct{}
	once   sync.Once
}

var _ storage.Store = (*Store)(nil)

// Open opens (creating if needed) the database described by cfg.
func Open(cfg Config) (*Store, error) {
	if !cfg.InMemory && cfg.Path == "" {
		return nil, errors.New("badgerstore: path is required")
	}

	var opts badger.Options
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if err := os.MkdirAll(cfg.Path, 0o750); err != nil {
			return nil, fmt.Errorf("create badger dir %s: %w", cfg.Path, err)
		}
		opts = badger.DefaultOptions(cfg.Path)
	}
	opts = opts.WithSyncWrites(cfg.SyncWrites).WithNumVersionsToKeep(1)

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
		opts = opts.WithLogger(nil)
	} else {
		opts = opts.WithLogger(badgerLogger{s: logger.Named("badger").Sugar()})
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger: %w", err)
	}
	s := &Store{db: db, logger: logger}
	if cfg.GCInterval > 0 && !cfg.InMemory {
		s.stopGC = make(chan struct{})
		s.gcDone = make(chan struct{})
		go s.runGC(cfg.GCInterval, cfg.GCDiscardRatio)
	}
	return s, nil
}

func (s *Store) runGC(interval time.Duration, ratio float64) {
	defer close(s.gcDone)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-s.stopGC:
			return
		case <-ticker.C:
			// ErrNoRewrite only means there was nothing to collect.
			if err := s.db.RunValueLogGC(ratio); err != nil && !errors.Is(err, badger.ErrNoRewrite) {
				s.logger.Warn("badger value log gc", zap.Error(err))
			}
		}
	}
}

func (s *Store) Get(ctx context.Context, key string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	var (
		val string
		ok  bool
	)
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		b, err := item.ValueCopy(nil)
		if err != nil {
			return err
		}
		val, ok = string(b), true
		return nil
	})
	if err != nil {
		return "", false, s.wrap("get "+key, err)
	}
	return val, ok, nil
}

func (s *Store) Set(ctx context.Context, key, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), []byte(value))
	})
	return s.wrap("set "+key, err)
}

func (s *Store) MultiGet(ctx context.Context, keys []string) ([]storage.Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := make([]storage.Entry, 0, len(keys))
	err := s.db.View(func(txn *badger.Txn) error {
		for _, k := range keys {
			item, err := txn.Get([]byte(k))
			if errors.Is(err, badger.ErrKeyNotFound) {
				continue
			}
			if err != nil {
				return err
			}
			b, err := item.ValueCopy(nil)
			if err != nil {
				return err
			}
			out = append(out, storage.Entry{Key: k, Value: string(b)})
		}
		return nil
	})
	if err != nil {
		return nil, s.wrap("multiget", err)
	}
	return out, nil
}

// MultiSet writes all entries in one batch.
func (s *Store) MultiSet(ctx context.Context, entries []storage.Entry) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	wb := s.db.NewWriteBatch()
	defer wb.Cancel()
	for _, e := range entries {
		if err := wb.Set([]byte(e.Key), []byte(e.Value)); err != nil {
			return s.wrap("multiset", err)
		}
	}
	return s.wrap("multiset", wb.Flush())
}

// Close stops GC and closes the database. Safe to call more than once.
func (s *Store) Close() error {
	var err error
	s.once.Do(func() {
		if s.stopGC != nil {
			close(s.stopGC)
			<-s.gcDone
		}
		err = s.db.Close()
	})
	return err
}

func (s *Store) wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, badger.ErrDBClosed) {
		return fmt.Errorf("badger %s: %w", op, storage.ErrClosed)
	}
	return fmt.Errorf("badger %s: %w", op, err)
}
