// Package testing provides fixtures and in-memory storage for tests of
// sconfig and the formats.
package testing

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/zoobzio/sconfig"
)

// TestKey returns a valid 32-byte AES key for testing.
func TestKey(tb testing.TB) []byte {
	tb.Helper()
	return []byte("32-byte-key-for-aes-256-encrypt!")
}

// TestSerializerSet returns a set with an AES serializer registered as
// "vault", as used by the Server fixture.
func TestSerializerSet(tb testing.TB) *sconfig.SerializerSet {
	tb.Helper()
	vault, err := sconfig.AESSerializer(TestKey(tb))
	if err != nil {
		tb.Fatalf("AESSerializer: %v", err)
	}
	return sconfig.NewSetBuilder().Named("vault", vault).Build()
}

// Database is a nested fixture.
type Database struct {
	URL  string `config:"url" mask:"url" comment:"Connection string"`
	Pool int    `config:"pool"`
}

// Server is the root fixture: scalars, collections, a nested struct, an
// immutable id and an encrypted token.
type Server struct {
	ID       string              `config:"id,immutable"`
	Name     string              `config:"name" comment:"Display name of the server"`
	Port     int                 `config:"port" validate:"port"`
	Timeout  time.Duration       `config:"timeout"`
	Motd     []string            `config:"motd"`
	Admins   map[string]struct{} `config:"admins"`
	Limits   map[string]int      `config:"limits"`
	Database Database            `config:"database"`
	Token    string              `config:"token" serialize:"vault" mask:"secret"`
	Session  string              `config:"session,transient"`
}

// ConfigDefaults sets the values used when keys are missing.
func (s *Server) ConfigDefaults() {
	s.Port = 25565
	s.Timeout = 30 * time.Second
}

var registerOnce sync.Once

// RegisterFixtures declares the fixture types and the "port" validator.
// It is safe to call from every test.
func RegisterFixtures(tb testing.TB) {
	tb.Helper()
	registerOnce.Do(func() {
		sconfig.RegisterValidator("port", sconfig.ValidatorFunc(func(newValue, _ any) (any, error) {
			if p, ok := newValue.(int); ok && (p < 1 || p > 65535) {
				return nil, sconfig.Reject("port %d out of range", p)
			}
			return newValue, nil
		}))
		sconfig.Declare[Server](sconfig.WithComment("Server settings"))
		sconfig.Declare[Database](sconfig.WithDescription("Database connection"))
	})
	if err := sconfig.Register[Server](sconfig.WithAlias("Server")); err != nil {
		tb.Fatalf("Register Server: %v", err)
	}
	if err := sconfig.Register[Database](sconfig.WithAlias("Database")); err != nil {
		tb.Fatalf("Register Database: %v", err)
	}
}

// SampleServer returns a fully populated Server.
func SampleServer() *Server {
	return &Server{
		ID:      "srv-1",
		Name:    "lobby",
		Port:    25566,
		Timeout: 90 * time.Second,
		Motd:    []string{"welcome", "be nice"},
		Admins:  map[string]struct{}{"alice": {}, "bob": {}},
		Limits:  map[string]int{"players": 20, "worlds": 3},
		Database: Database{
			URL:  "postgres://app:hunter2@db:5432/main",
			Pool: 8,
		},
		Token: "s3cr3t",
	}
}

// MemoryStorage is a sconfig.Storage held in memory.
type MemoryStorage struct {
	mu     sync.Mutex
	data   []byte
	reads  int
	writes int
}

// NewMemoryStorage returns storage holding data, which may be nil.
func NewMemoryStorage(data []byte) *MemoryStorage {
	return &MemoryStorage{data: append([]byte(nil), data...)}
}

// Location returns "memory".
func (m *MemoryStorage) Location() string { return "memory" }

// Read returns a copy of the stored bytes.
func (m *MemoryStorage) Read(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reads++
	if m.data == nil {
		return nil, nil
	}
	return append([]byte(nil), m.data...), nil
}

// Write replaces the stored bytes.
func (m *MemoryStorage) Write(ctx context.Context, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writes++
	m.data = append([]byte(nil), data...)
	return nil
}

// Bytes returns the stored bytes.
func (m *MemoryStorage) Bytes() []byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]byte(nil), m.data...)
}

// Counts returns the number of reads and writes so far.
func (m *MemoryStorage) Counts() (reads, writes int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.reads, m.writes
}

// NewMemorySource returns a Source over fresh in-memory storage.
func NewMemorySource(format sconfig.Format, opts ...sconfig.SourceOption) (*sconfig.Source, *MemoryStorage) {
	storage := NewMemoryStorage(nil)
	return sconfig.NewSource(storage, format, opts...), storage
}
