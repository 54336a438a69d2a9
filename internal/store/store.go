// Package store persists reading positions and bookmarks in BoltDB, with an
// in-memory cache in front of it.
package store

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	bolt "go.etcd.io/bbolt"
)

// Bucket names
var (
	bucketPositions = []byte("positions")
	bucketBookmarks = []byte("bookmarks")
)

// Position is the last place a book was read
type Position struct {
	Book      string    `json:"book"`
	Index     int       `json:"index"`
	UpdatedAt time.Time `json:"updated_at"`
}

// PositionStore implements domain.PositionStore using BoltDB. Books are
// identified by path; keys are a hash of the cleaned path.
type PositionStore struct {
	db *bolt.DB
	mu sync.RWMutex // Protects memory cache

	// In-memory cache for hot-path reads (promoted on access)
	cache map[string][]byte
	now   func() time.Time
}

// NewPositionStore opens leaf.db in dir. An empty dir keeps everything in
// memory.
func NewPositionStore(dir string) (*PositionStore, error) {
	s := &PositionStore{cache: make(map[string][]byte), now: time.Now}
	if dir == "" {
		return s, nil
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}

	dbPath := filepath.Join(dir, "leaf.db")
	db, err := bolt.Open(dbPath, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt db: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, bucket := range [][]byte{bucketPositions, bucketBookmarks} {
			if _, err := tx.CreateBucketIfNotExists(bucket); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	s.db = db
	return s, nil
}

// BookKey returns the storage key for a book path
func BookKey(book string) string {
	normalized := filepath.Clean(book)
	if abs, err := filepath.Abs(normalized); err == nil {
		normalized = abs
	}
	hash := sha256.Sum256([]byte(normalized))
	return hex.EncodeToString(hash[:6])
}

func (s *PositionStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// === Generic helpers ===

func (s *PositionStore) get(bucket []byte, key string, dest interface{}) bool {
	cacheKey := string(bucket) + ":" + key

	s.mu.RLock()
	if data, ok := s.cache[cacheKey]; ok {
		s.mu.RUnlock()
		return json.Unmarshal(data, dest) == nil
	}
	s.mu.RUnlock()

	if s.db == nil {
		return false
	}

	var data []byte
	s.db.View(func(tx *bolt.Tx) error {
		if v := tx.Bucket(bucket).Get([]byte(key)); v != nil {
			data = slices.Clone(v)
		}
		return nil
	})
	if data == nil {
		return false
	}

	s.mu.Lock()
	s.cache[cacheKey] = data
	s.mu.Unlock()

	return json.Unmarshal(data, dest) == nil
}

func (s *PositionStore) set(bucket []byte, key string, value interface{}) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.cache[string(bucket)+":"+key] = data
	s.mu.Unlock()

	if s.db == nil {
		return nil // Memory-only mode
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucket).Put([]byte(key), data)
	})
}

// === Positions ===

// LoadPosition returns the saved index for book
func (s *PositionStore) LoadPosition(book string) (int, bool) {
	var pos Position
	if !s.get(bucketPositions, BookKey(book), &pos) {
		return 0, false
	}
	return pos.Index, true
}

// SavePosition records index as the reading position for book
func (s *PositionStore) SavePosition(book string, index int) error {
	return s.set(bucketPositions, BookKey(book), Position{
		Book:      book,
		Index:     index,
		UpdatedAt: s.now(),
	})
}

// Recent returns up to limit positions, most recently read first. A
// non-positive limit returns all of them.
func (s *PositionStore) Recent(limit int) ([]Position, error) {
	var raw [][]byte
	if s.db == nil {
		prefix := string(bucketPositions) + ":"
		s.mu.RLock()
		for k, v := range s.cache {
			if strings.HasPrefix(k, prefix) {
				raw = append(raw, v)
			}
		}
		s.mu.RUnlock()
	} else {
		err := s.db.View(func(tx *bolt.Tx) error {
			return tx.Bucket(bucketPositions).ForEach(func(_, v []byte) error {
				raw = append(raw, slices.Clone(v))
				return nil
			})
		})
		if err != nil {
			return nil, err
		}
	}

	positions := make([]Position, 0, len(raw))
	for _, data := range raw {
		var pos Position
		if err := json.Unmarshal(data, &pos); err != nil {
			continue
		}
		positions = append(positions, pos)
	}
	sort.Slice(positions, func(i, j int) bool {
		return positions[i].UpdatedAt.After(positions[j].UpdatedAt)
	})
	if limit > 0 && len(positions) > limit {
		positions = positions[:limit]
	}
	return positions, nil
}

// === Bookmarks ===

// Bookmarks returns the bookmarked page indexes of book in ascending order
func (s *PositionStore) Bookmarks(book string) []int {
	var marks []int
	s.get(bucketBookmarks, BookKey(book), &marks)
	return marks
}

// ToggleBookmark adds a bookmark at index, or removes the one already there.
// It reports whether the bookmark now exists.
func (s *PositionStore) ToggleBookmark(book string, index int) (bool, error) {
	marks := s.Bookmarks(book)
	i, found := slices.BinarySearch(marks, index)
	if found {
		marks = slices.Delete(marks, i, i+1)
	} else {
		marks = slices.Insert(marks, i, index)
	}
	if err := s.set(bucketBookmarks, BookKey(book), marks); err != nil {
		return !found, err
	}
	return !found, nil
}

// Clear removes every saved position and bookmark
func (s *PositionStore) Clear() error {
	s.mu.Lock()
	s.cache = make(map[string][]byte)
	s.mu.Unlock()

	if s.db == nil {
		return nil
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		for _, bucket := range [][]byte{bucketPositions, bucketBookmarks} {
			if err := tx.DeleteBucket(bucket); err != nil {
				return err
			}
			if _, err := tx.CreateBucket(bucket); err != nil {
				return err
			}
		}
		return nil
	})
}
