package history

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gomodule/redigo/redis"

	"github.com/mrz1836/minutes/internal/constants"
	"github.com/mrz1836/minutes/internal/ctxutil"
	"github.com/mrz1836/minutes/internal/flock"
)

// KV is the durable key-value store behind the history.
// Get returns (nil, nil) for a missing key. Set overwrites the whole value.
type KV interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
}

const (
	dirPerm  = 0o750
	filePerm = 0o600
)

// FileKV stores keys as members of a single JSON object on disk.
// Writes are atomic (temp file, fsync, rename) and serialized across
// processes with an exclusive lock on "<path>.lock".
type FileKV struct {
	path        string
	lockTimeout time.Duration
}

// NewFileKV returns a FileKV backed by the JSON file at path.
func NewFileKV(path string) *FileKV {
	return &FileKV{path: path, lockTimeout: constants.LockTimeout}
}

// Path returns the backing file path.
func (f *FileKV) Path() string {
	return f.path
}

// Get returns the raw value stored under key.
func (f *FileKV) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctxutil.Canceled(ctx); err != nil {
		return nil, err
	}
	doc, err := f.read()
	if err != nil {
		return nil, err
	}
	value, ok := doc[key]
	if !ok {
		return nil, nil
	}
	return value, nil
}

// Set replaces the value stored under key. The value must be valid JSON.
func (f *FileKV) Set(ctx context.Context, key string, value []byte) error {
	if !json.Valid(value) {
		return fmt.Errorf("value for %q is not valid JSON", key)
	}
	if err := os.MkdirAll(filepath.Dir(f.path), dirPerm); err != nil {
		return fmt.Errorf("failed to create history directory: %w", err)
	}

	lock, err := flock.Acquire(ctx, f.path+".lock", f.lockTimeout)
	if err != nil {
		return err
	}
	defer func() { _ = flock.Release(lock) }()

	// Other keys in the document survive; an unreadable document is replaced.
	doc, err := f.read()
	if err != nil {
		doc = map[string]json.RawMessage{}
	}
	doc[key] = json.RawMessage(value)

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal history document: %w", err)
	}
	return atomicWrite(f.path, data)
}

func (f *FileKV) read() (map[string]json.RawMessage, error) {
	data, err := os.ReadFile(f.path) //#nosec G304 -- path comes from configuration
	if stderrors.Is(err, os.ErrNotExist) {
		return map[string]json.RawMessage{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read history file: %w", err)
	}

	doc := map[string]json.RawMessage{}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse history file: %w", err)
	}
	return doc, nil
}

// atomicWrite writes data to a file atomically using write-then-rename.
func atomicWrite(path string, data []byte) error {
	tmpPath := path + ".tmp"
	f, err := os.OpenFile(tmpPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, filePerm) //#nosec G304 -- path is constructed internally
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}

	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to write data: %w", err)
	}

	// Sync before rename so a crash never leaves an empty file behind.
	if err := f.Sync(); err != nil {
		_ = f.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to sync file: %w", err)
	}

	if err := f.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to close file: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to rename file: %w", err)
	}
	return nil
}

// RedisKV stores keys in Redis.
type RedisKV struct {
	pool *redis.Pool
}

// NewRedisKV returns a RedisKV connected lazily to addr.
func NewRedisKV(addr string) *RedisKV {
	return &RedisKV{
		pool: &redis.Pool{
			MaxIdle:     2,
			IdleTimeout: 4 * time.Minute,
			DialContext: func(ctx context.Context) (redis.Conn, error) {
				return redis.DialContext(ctx, "tcp", addr,
					redis.DialConnectTimeout(5*time.Second),
					redis.DialReadTimeout(5*time.Second),
					redis.DialWriteTimeout(5*time.Second),
				)
			},
		},
	}
}

// Get returns the value stored under key.
func (r *RedisKV) Get(ctx context.Context, key string) ([]byte, error) {
	conn, err := r.pool.GetContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	defer func() { _ = conn.Close() }()

	value, err := redis.Bytes(conn.Do("GET", key))
	if stderrors.Is(err, redis.ErrNil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis GET %s: %w", key, err)
	}
	return value, nil
}

// Set replaces the value stored under key.
func (r *RedisKV) Set(ctx context.Context, key string, value []byte) error {
	conn, err := r.pool.GetContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to connect to redis: %w", err)
	}
	defer func() { _ = conn.Close() }()

	if _, err := conn.Do("SET", key, value); err != nil {
		return fmt.Errorf("redis SET %s: %w", key, err)
	}
	return nil
}

// Close releases pooled connections.
func (r *RedisKV) Close() error {
	return r.pool.Close()
}

var (
	_ KV = (*FileKV)(nil)
	_ KV = (*RedisKV)(nil)
)
