// Package redisstore keeps progress documents in Redis.
package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/verte-zerg/typechallenge/internal/model"
)

const keyPrefix = "typechallenge:progress:"

// ProgressStore stores one JSON document per user under keyPrefix+username.
// A zero ttl keeps documents forever; otherwise every save refreshes it.
type ProgressStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewProgressStore wraps a connected client.
func NewProgressStore(client *redis.Client, ttl time.Duration) *ProgressStore {
	return &ProgressStore{client: client, ttl: ttl}
}

// Load returns the stored document, reporting false when none exists.
func (s *ProgressStore) Load(ctx context.Context, username string) (model.ProgressDocument, bool, error) {
	data, err := s.client.Get(ctx, s.key(username)).Bytes()
	if errors.Is(err, redis.Nil) {
		return model.ProgressDocument{}, false, nil
	}
	if err != nil {
		return model.ProgressDocument{}, false, err
	}
	var doc model.ProgressDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return model.ProgressDocument{}, false, fmt.Errorf("failed to decode progress: %w", err)
	}
	return doc, true, nil
}

// Save replaces the user's document.
func (s *ProgressStore) Save(ctx context.Context, username string, doc model.ProgressDocument) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to encode progress: %w", err)
	}
	return s.client.Set(ctx, s.key(username), data, s.ttl).Err()
}

// Delete removes the user's document.
func (s *ProgressStore) Delete(ctx context.Context, username string) error {
	return s.client.Del(ctx, s.key(username)).Err()
}

// Ping checks that Redis is reachable.
func (s *ProgressStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close releases the client connections.
func (s *ProgressStore) Close() error {
	return s.client.Close()
}

func (s *ProgressStore) key(username string) string {
	return keyPrefix + username
}
