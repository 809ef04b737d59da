package draft

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	pkgredis "github.com/angelmondragon/customorder-backend/pkg/redis"
)

// ErrNotFound is returned by stores when the slot holds no draft.
var ErrNotFound = errors.New("draft not found")

// Store persists whole drafts. Every Save replaces the previous record.
type Store interface {
	Save(ctx context.Context, key string, d *Draft) error
	Load(ctx context.Context, key string) (*Draft, error)
	Clear(ctx context.Context, key string) error
}

func decode(raw []byte) (*Draft, error) {
	d := New()
	if err := json.Unmarshal(raw, d); err != nil {
		return nil, fmt.Errorf("decoding draft: %w", err)
	}
	return d, nil
}

// slotClient is the part of the redis client the store needs.
type slotClient interface {
	SaveDraft(ctx context.Context, slot string, raw []byte, ttl time.Duration) error
	LoadDraft(ctx context.Context, slot string, ttl time.Duration) ([]byte, error)
	ClearDraft(ctx context.Context, slot string) error
}

// RedisStore keeps each draft as JSON with a sliding TTL: every load
// pushes the expiry out again.
type RedisStore struct {
	client slotClient
	ttl    time.Duration
}

func NewRedisStore(client slotClient, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func (s *RedisStore) Save(ctx context.Context, key string, d *Draft) error {
	raw, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("encoding draft: %w", err)
	}
	return s.client.SaveDraft(ctx, key, raw, s.ttl)
}

func (s *RedisStore) Load(ctx context.Context, key string) (*Draft, error) {
	raw, err := s.client.LoadDraft(ctx, key, s.ttl)
	if errors.Is(err, pkgredis.ErrDraftMissing) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return decode(raw)
}

func (s *RedisStore) Clear(ctx context.Context, key string) error {
	return s.client.ClearDraft(ctx, key)
}

// FileSlot stores drafts as JSON files in one directory; the terminal
// wizard uses it as its single local slot.
type FileSlot struct {
	dir string
}

func NewFileSlot(dir string) *FileSlot {
	return &FileSlot{dir: dir}
}

var slotNameReplacer = strings.NewReplacer(":", "_", "/", "_", "\\", "_", "..", "_")

func (s *FileSlot) path(key string) string {
	return filepath.Join(s.dir, slotNameReplacer.Replace(key)+".json")
}

func (s *FileSlot) Save(_ context.Context, key string, d *Draft) error {
	raw, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding draft: %w", err)
	}
	if err := os.MkdirAll(s.dir, 0o700); err != nil {
		return fmt.Errorf("creating draft dir: %w", err)
	}
	tmp, err := os.CreateTemp(s.dir, ".draft-*")
	if err != nil {
		return fmt.Errorf("creating draft file: %w", err)
	}
	if _, err := tmp.Write(raw); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("writing draft file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("closing draft file: %w", err)
	}
	return os.Rename(tmp.Name(), s.path(key))
}

func (s *FileSlot) Load(_ context.Context, key string) (*Draft, error) {
	raw, err := os.ReadFile(s.path(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return decode(raw)
}

func (s *FileSlot) Clear(_ context.Context, key string) error {
	err := os.Remove(s.path(key))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// MemoryStore keeps encoded drafts in process memory.
type MemoryStore struct {
	mu    sync.Mutex
	slots map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{slots: map[string][]byte{}}
}

func (s *MemoryStore) Save(_ context.Context, key string, d *Draft) error {
	raw, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("encoding draft: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.slots[key] = raw
	return nil
}

func (s *MemoryStore) Load(_ context.Context, key string) (*Draft, error) {
	s.mu.Lock()
	raw, found := s.slots[key]
	s.mu.Unlock()
	if !found {
		return nil, ErrNotFound
	}
	return decode(raw)
}

func (s *MemoryStore) Clear(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.slots, key)
	return nil
}
