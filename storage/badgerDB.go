package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dgraph-io/badger/v3"
	"go.uber.org/zap"

	"github.com/NethermindEth/magi/core"
)

const sessionPrefix = "session:"

type DBMetrics struct {
	PutCount         int64
	GetCount         int64
	GetByPrefixCount int64
	Errors           int64
}

// DBStorage is a session store backed by BadgerDB
type DBStorage struct {
	db      *badger.DB
	config  BadgerDBConfig
	metrics DBMetrics
	logger  *zap.Logger
	stopGC  chan struct{}
	once    sync.Once
}

// OpenBadger opens (or creates) the session database described by config
func OpenBadger(config BadgerDBConfig, logger *zap.Logger) (*DBStorage, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	opts := badger.DefaultOptions(config.DataDir)
	if config.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	}
	if config.DisableLogging {
		opts = opts.WithLogger(nil)
	}
	opts = opts.WithSyncWrites(config.SyncWrites)

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open BadgerDB: %w", err)
	}

	s := &DBStorage{
		db:     db,
		config: config,
		logger: logger,
		stopGC: make(chan struct{}),
	}
	if config.GCInterval > 0 && !config.InMemory {
		go s.startGCRoutine(time.Duration(config.GCInterval) * time.Second)
	}
	return s, nil
}

func (s *DBStorage) startGCRoutine(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopGC:
			return
		case <-ticker.C:
			if err := s.RunGC(); err != nil && !errors.Is(err, badger.ErrNoRewrite) {
				s.logger.Warn("BadgerDB GC failed", zap.Error(err))
			}
		}
	}
}

// RunGC runs garbage collection on the value log
func (s *DBStorage) RunGC() error {
	return s.db.RunValueLogGC(0.5) // Clean up if at least 50% can be discarded
}

// Close stops GC and closes the database
func (s *DBStorage) Close() error {
	var err error
	s.once.Do(func() {
		close(s.stopGC)
		err = s.db.Close()
	})
	return err
}

// Metrics returns a snapshot of the operation counters
func (s *DBStorage) Metrics() DBMetrics {
	return DBMetrics{
		PutCount:         atomic.LoadInt64(&s.metrics.PutCount),
		GetCount:         atomic.LoadInt64(&s.metrics.GetCount),
		GetByPrefixCount: atomic.LoadInt64(&s.metrics.GetByPrefixCount),
		Errors:           atomic.LoadInt64(&s.metrics.Errors),
	}
}

func (s *DBStorage) logOperation(op string, key string, err error) {
	if err != nil {
		s.logger.Error("BadgerDB operation failed", zap.String("op", op), zap.String("key", key), zap.Error(err))
		atomic.AddInt64(&s.metrics.Errors, 1)
	}
}

// Put stores a key-value pair in the database
func (s *DBStorage) Put(key string, value []byte) error {
	atomic.AddInt64(&s.metrics.PutCount, 1)
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), value)
	})
	s.logOperation("put", key, err)
	return err
}

// Get retrieves a value by key; missing keys yield ErrNotFound
func (s *DBStorage) Get(key string) ([]byte, error) {
	atomic.AddInt64(&s.metrics.GetCount, 1)

	var valCopy []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		valCopy, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		s.logOperation("get", key, err)
		return nil, fmt.Errorf("failed to get value: %w", err)
	}
	return valCopy, nil
}

// GetByPrefix retrieves all values whose key starts with prefix
func (s *DBStorage) GetByPrefix(prefix string) (map[string][]byte, error) {
	atomic.AddInt64(&s.metrics.GetByPrefixCount, 1)

	result := make(map[string][]byte)
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = true
		it := txn.NewIterator(opts)
		defer it.Close()

		prefixBytes := []byte(prefix)
		for it.Seek(prefixBytes); it.ValidForPrefix(prefixBytes); it.Next() {
			item := it.Item()
			val, err := item.ValueCopy(nil)
			if err != nil {
				return err
			}
			result[string(item.KeyCopy(nil))] = val
		}
		return nil
	})
	if err != nil {
		s.logOperation("get_by_prefix", prefix, err)
		return nil, fmt.Errorf("failed to get values by prefix: %w", err)
	}
	return result, nil
}

// SaveSession persists a session under session:<id>
func (s *DBStorage) SaveSession(session *core.Session) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}
	return s.Put(sessionPrefix+session.ID, data)
}

// GetSession loads a session by id
func (s *DBStorage) GetSession(id string) (*core.Session, error) {
	data, err := s.Get(sessionPrefix + id)
	if err != nil {
		return nil, err
	}

	var session core.Session
	if err := core.DecodeJSON(data, &session); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}
	return &session, nil
}

// ListSessions returns stored sessions, newest first
func (s *DBStorage) ListSessions(limit int) ([]*core.Session, error) {
	data, err := s.GetByPrefix(sessionPrefix)
	if err != nil {
		return nil, err
	}

	sessions := make([]*core.Session, 0, len(data))
	for key, v := range data {
		var session core.Session
		if err := core.DecodeJSON(v, &session); err != nil {
			s.logger.Warn("Skipping unreadable session", zap.String("key", key), zap.Error(err))
			continue
		}
		sessions = append(sessions, &session)
	}
	return newestFirst(sessions, limit), nil
}
