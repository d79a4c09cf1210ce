package demo

import (
	"context"
	"errors"
	"net/url"
	"os"
	"path/filepath"

	"github.com/redis/go-redis/v9"

	"github.com/oksasatya/tahfidz-portal/internal/domain/repository"
)

// FileStorage keeps one client's local storage as files in Dir.
type FileStorage struct {
	Dir string
}

func NewFileStorage(root, clientID string) *FileStorage {
	return &FileStorage{Dir: filepath.Join(root, url.PathEscape(clientID))}
}

func (s *FileStorage) path(key string) string {
	return filepath.Join(s.Dir, url.PathEscape(key)+".json")
}

func (s *FileStorage) Get(_ context.Context, key string) (string, bool, error) {
	b, err := os.ReadFile(s.path(key))
	if errors.Is(err, os.ErrNotExist) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return string(b), true, nil
}

func (s *FileStorage) Set(_ context.Context, key, value string) error {
	if err := os.MkdirAll(s.Dir, 0o700); err != nil {
		return err
	}
	tmp := s.path(key) + ".tmp"
	if err := os.WriteFile(tmp, []byte(value), 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, s.path(key))
}

func (s *FileStorage) Remove(_ context.Context, key string) error {
	err := os.Remove(s.path(key))
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

// RedisStorage keeps one client's local storage under client:<id>:<key>.
type RedisStorage struct {
	rdb    *redis.Client
	prefix string
}

func NewRedisStorage(rdb *redis.Client, clientID string) *RedisStorage {
	return &RedisStorage{rdb: rdb, prefix: "client:" + clientID + ":"}
}

func (s *RedisStorage) Get(ctx context.Context, key string) (string, bool, error) {
	v, err := s.rdb.Get(ctx, s.prefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}

func (s *RedisStorage) Set(ctx context.Context, key, value string) error {
	return s.rdb.Set(ctx, s.prefix+key, value, 0).Err()
}

func (s *RedisStorage) Remove(ctx context.Context, key string) error {
	return s.rdb.Del(ctx, s.prefix+key).Err()
}

var (
	_ repository.Storage = (*FileStorage)(nil)
	_ repository.Storage = (*RedisStorage)(nil)
)
