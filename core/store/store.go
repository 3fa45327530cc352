package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Store persists the single active session record.
//
// The store holds at most one record. Load returns (nil, nil) when no record
// exists; callers treat absence as "start fresh".
type Store interface {
	// Load returns the stored record, or (nil, nil) if none exists.
	Load(ctx context.Context) ([]byte, error)
	// Save replaces the stored record.
	Save(ctx context.Context, payload []byte) error
	// Clear removes the stored record.
	Clear(ctx context.Context) error
}

// New creates a Store based on the configured driver.
func New(cfg Config) (Store, error) {
	switch cfg.Driver {
	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Addr,
			Password: cfg.Password,
			DB:       cfg.DB,
		})
		return NewRedisStore(client, cfg.Key), nil
	case "memory":
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown store driver: %s", cfg.Driver)
	}
}

// MemoryStore keeps the record in process memory. It backs the "memory"
// driver and the degraded mode of Fallback.
type MemoryStore struct {
	mu      sync.Mutex
	payload []byte
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (m *MemoryStore) Load(ctx context.Context) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.payload == nil {
		return nil, nil
	}
	out := make([]byte, len(m.payload))
	copy(out, m.payload)
	return out, nil
}

func (m *MemoryStore) Save(ctx context.Context, payload []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.payload = make([]byte, len(payload))
	copy(m.payload, payload)
	return nil
}

func (m *MemoryStore) Clear(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.payload = nil
	return nil
}

// Fallback wraps a Store and degrades to in-memory operation for the rest of
// the process lifetime after the first failure. The failure is logged once;
// subsequent operations go straight to memory so a storage fault does not
// block counting or flood the logs.
type Fallback struct {
	mu       sync.Mutex
	primary  Store
	memory   *MemoryStore
	logger   *zap.Logger
	degraded bool
}

// NewFallback wraps primary with in-memory degradation.
func NewFallback(primary Store, logger *zap.Logger) *Fallback {
	return &Fallback{
		primary: primary,
		memory:  NewMemoryStore(),
		logger:  logger,
	}
}

// Degraded reports whether the store has switched to in-memory mode.
func (f *Fallback) Degraded() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.degraded
}

func (f *Fallback) degrade(op string, err error) {
	// Called with mu held.
	if !f.degraded {
		f.logger.Error("session store unavailable, continuing in-memory",
			zap.String("op", op),
			zap.Error(err),
		)
		f.degraded = true
	}
}

func (f *Fallback) Load(ctx context.Context) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.degraded {
		return f.memory.Load(ctx)
	}
	payload, err := f.primary.Load(ctx)
	if err != nil {
		// An unreadable record is treated as absent: counting starts fresh
		// rather than crashing.
		f.degrade("load", err)
		return f.memory.Load(ctx)
	}
	return payload, nil
}

func (f *Fallback) Save(ctx context.Context, payload []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.degraded {
		return f.memory.Save(ctx, payload)
	}
	if err := f.primary.Save(ctx, payload); err != nil {
		f.degrade("save", err)
		return f.memory.Save(ctx, payload)
	}
	// Keep the memory copy current so a later degradation resumes from the
	// last fully-applied event.
	return f.memory.Save(ctx, payload)
}

func (f *Fallback) Clear(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.degraded {
		return f.memory.Clear(ctx)
	}
	if err := f.primary.Clear(ctx); err != nil {
		f.degrade("clear", err)
	}
	return f.memory.Clear(ctx)
}
