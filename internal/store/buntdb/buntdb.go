// Package buntdb persists the room log in a BuntDB key-value file.
package buntdb

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/tidwall/buntdb"

	"github.com/clubchat/clubchat-server/internal/core"
)

const keyPrefix = "msg:"

// Store keeps one JSON entry per message under ordered msg:%012d keys.
type Store struct {
	db    *buntdb.DB
	limit int
}

// New opens (creating if needed) the database at path. Use ":memory:" for an
// ephemeral store.
func New(path string, limit int) (*Store, error) {
	db, err := buntdb.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open buntdb: %w", err)
	}
	return &Store{db: db, limit: limit}, nil
}

// Load returns the persisted log in key order.
func (s *Store) Load(_ context.Context) ([]core.Message, error) {
	var messages []core.Message
	err := s.db.View(func(tx *buntdb.Tx) error {
		var innerErr error
		err := tx.AscendKeys(keyPrefix+"*", func(key, value string) bool {
			var m core.Message
			if err := json.Unmarshal([]byte(value), &m); err != nil {
				innerErr = fmt.Errorf("decode entry %s: %w", key, err)
				return false
			}
			messages = append(messages, m)
			return true
		})
		if innerErr != nil {
			return innerErr
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	return messages, nil
}

// Save replaces all entries with the newest ones up to the cap.
func (s *Store) Save(_ context.Context, messages []core.Message) error {
	if s.limit > 0 && len(messages) > s.limit {
		messages = messages[len(messages)-s.limit:]
	}
	return s.db.Update(func(tx *buntdb.Tx) error {
		var stale []string
		err := tx.AscendKeys(keyPrefix+"*", func(key, _ string) bool {
			stale = append(stale, key)
			return true
		})
		if err != nil {
			return err
		}
		for _, key := range stale {
			if _, err := tx.Delete(key); err != nil {
				return err
			}
		}
		for i, m := range messages {
			data, err := json.Marshal(m)
			if err != nil {
				return fmt.Errorf("encode entry: %w", err)
			}
			key := fmt.Sprintf("%s%012d", keyPrefix, i)
			if _, _, err := tx.Set(key, string(data), nil); err != nil {
				return err
			}
		}
		return nil
	})
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}
