// Package boltstore implements the state store on bbolt, an embedded
// key-value database. This is the default backend: the persisted model is
// four keys in one bucket, which is exactly bbolt's shape.
package boltstore

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/alphatrack/alphatrack/internal/domain"
	"github.com/alphatrack/alphatrack/internal/infra/store"
)

var bucketState = []byte("state")

var _ store.Store = (*Store)(nil)

// Store persists tracker state in a single bbolt bucket.
type Store struct {
	db *bolt.DB
}

// Open opens (creating if needed) the bbolt file at path.
func Open(path string) (*Store, error) {
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("boltstore: opening %s: %w", path, err)
	}
	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketState)
		return err
	}); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("boltstore: creating bucket: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Load reads the four state keys, applying first-run defaults for any that
// are absent.
func (s *Store) Load() (*store.State, error) {
	state := store.DefaultState(time.Now())

	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketState)

		if raw := b.Get([]byte(store.KeyAccounts)); raw != nil {
			if err := json.Unmarshal(raw, &state.Accounts); err != nil {
				return fmt.Errorf("decoding accounts: %w", err)
			}
		}
		if raw := b.Get([]byte(store.KeyCycleStartDate)); raw != nil {
			t, err := time.Parse(time.RFC3339Nano, string(raw))
			if err != nil {
				return fmt.Errorf("decoding cycle start: %w", err)
			}
			state.Cycle.CycleStartDate = t
		}
		if raw := b.Get([]byte(store.KeyCurrentCycle)); raw != nil {
			n, err := strconv.Atoi(string(raw))
			if err != nil {
				return fmt.Errorf("decoding cycle counter: %w", err)
			}
			state.Cycle.CurrentCycle = n
		}
		if raw := b.Get([]byte(store.KeyManualResetDays)); raw != nil {
			n, err := strconv.Atoi(string(raw))
			if err != nil {
				return fmt.Errorf("decoding manual reset days: %w", err)
			}
			state.Cycle.ManualResetDays = &n
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("boltstore: %w", err)
	}
	return state, nil
}

// Save overwrites all four keys. The override key is deleted when unset so
// Load sees its absence.
func (s *Store) Save(state *store.State) error {
	accounts := state.Accounts
	if accounts == nil {
		accounts = []domain.Account{}
	}
	raw, err := json.Marshal(accounts)
	if err != nil {
		return fmt.Errorf("boltstore: encoding accounts: %w", err)
	}

	err = s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketState)

		if err := b.Put([]byte(store.KeyAccounts), raw); err != nil {
			return err
		}
		start := state.Cycle.CycleStartDate.Format(time.RFC3339Nano)
		if err := b.Put([]byte(store.KeyCycleStartDate), []byte(start)); err != nil {
			return err
		}
		cycle := strconv.Itoa(state.Cycle.CurrentCycle)
		if err := b.Put([]byte(store.KeyCurrentCycle), []byte(cycle)); err != nil {
			return err
		}
		if state.Cycle.ManualResetDays == nil {
			return b.Delete([]byte(store.KeyManualResetDays))
		}
		days := strconv.Itoa(*state.Cycle.ManualResetDays)
		return b.Put([]byte(store.KeyManualResetDays), []byte(days))
	})
	if err != nil {
		return fmt.Errorf("boltstore: saving state: %w", err)
	}
	return nil
}
