package boltdb

import (
	"context"
	"fmt"

	"go.etcd.io/bbolt"

	"github.com/avtomarket/avtomarket/internal/client/storage"
)

// GetItem returns the stored value for key
func (s *Storage) GetItem(ctx context.Context, key string) (string, error) {
	var value string

	err := s.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketKV)
		if bucket == nil {
			return fmt.Errorf("kv bucket not found")
		}

		data := bucket.Get([]byte(key))
		if data == nil {
			return storage.ErrKeyNotFound
		}

		value = string(data)
		return nil
	})

	if err != nil {
		return "", err
	}

	return value, nil
}

// SetItem stores value under key
func (s *Storage) SetItem(ctx context.Context, key, value string) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketKV)
		if bucket == nil {
			return fmt.Errorf("kv bucket not found")
		}

		if err := bucket.Put([]byte(key), []byte(value)); err != nil {
			return fmt.Errorf("failed to save kv entry: %w", err)
		}

		return nil
	})
}

// RemoveItem deletes key; missing keys are ignored
func (s *Storage) RemoveItem(ctx context.Context, key string) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketKV)
		if bucket == nil {
			return fmt.Errorf("kv bucket not found")
		}

		if err := bucket.Delete([]byte(key)); err != nil {
			return fmt.Errorf("failed to delete kv entry: %w", err)
		}

		return nil
	})
}
