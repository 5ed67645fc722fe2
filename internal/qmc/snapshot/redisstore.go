// Copyright 2025 Esteban Alvarez. All Rights Reserved.
//
// Created: October 2025
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package snapshot

import (
	"context"
	"fmt"

	redis "github.com/redis/go-redis/v9"
)

// RedisStore persists snapshots as a single Redis hash per process, one
// field per walker index. It gives a multi-process run a shared archive
// without a shared filesystem.
type RedisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore builds a RedisStore against addr (e.g. "127.0.0.1:6379").
// Keys are "<prefix>process_<pid>".
func NewRedisStore(addr, prefix string) *RedisStore {
	return &RedisStore{client: redis.NewClient(&redis.Options{Addr: addr}), prefix: prefix}
}

func (s *RedisStore) key(processID int) string {
	return fmt.Sprintf("%sprocess_%d", s.prefix, processID)
}

// Write stores configs[i] under hash field "configuration_<i>", replacing
// any existing hash for processID.
func (s *RedisStore) Write(processID int, configs [][]byte) error {
	ctx := context.Background()
	key := s.key(processID)
	if err := s.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("snapshot: redis del: %w", err)
	}
	fields := make(map[string]interface{}, len(configs))
	for i, cfg := range configs {
		fields[fmt.Sprintf("configuration_%d", i)] = cfg
	}
	if len(fields) == 0 {
		return nil
	}
	if err := s.client.HSet(ctx, key, fields).Err(); err != nil {
		return fmt.Errorf("snapshot: redis hset: %w", err)
	}
	return nil
}

// Read fetches n slots from the hash at processID's key. Any Redis error
// yields n nil slots and a wrapped error; a missing field yields a nil
// slot for that index.
func (s *RedisStore) Read(processID int, n int) ([][]byte, error) {
	slots := make([][]byte, n)
	ctx := context.Background()
	fields := make([]string, n)
	for i := range fields {
		fields[i] = fmt.Sprintf("configuration_%d", i)
	}
	if n == 0 {
		return slots, nil
	}
	vals, err := s.client.HMGet(ctx, s.key(processID), fields...).Result()
	if err != nil {
		return make([][]byte, n), fmt.Errorf("snapshot: redis hmget: %w", err)
	}
	for i, v := range vals {
		if s, ok := v.(string); ok {
			slots[i] = []byte(s)
		}
	}
	return slots, nil
}
