// Package sqlite implements the state store on modernc.org/sqlite (pure-Go
// SQLite, no cgo). The schema is a single kv table so the persisted shape
// stays identical to the bolt backend: four keys, full overwrite per save.
package sqlite

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	_ "modernc.org/sqlite"

	"github.com/alphatrack/alphatrack/internal/domain"
	"github.com/alphatrack/alphatrack/internal/infra/store"
)

var _ store.Store = (*DB)(nil)

// DB is the SQLite-backed state store.
type DB struct {
	db *sql.DB
}

// Migrations returns the schema migration statements. Each string is a
// single SQL statement (SQLite executes one at a time).
func Migrations() []string {
	return []string{
		`CREATE TABLE IF NOT EXISTS kv (
			key   TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)`,
	}
}

// Open opens (creating if needed) the database at path and applies
// migrations. Use ":memory:" for an ephemeral store in tests.
func Open(path string) (*DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening %s: %w", path, err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite: enabling WAL: %w", err)
	}
	for _, stmt := range Migrations() {
		if _, err := db.Exec(stmt); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("sqlite: migrating: %w", err)
		}
	}
	return &DB{db: db}, nil
}

// Close closes the underlying connection pool.
func (d *DB) Close() error {
	if d == nil || d.db == nil {
		return nil
	}
	return d.db.Close()
}

func (d *DB) get(key string) (string, bool, error) {
	var value string
	err := d.db.QueryRow(`SELECT value FROM kv WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

// Load reads the four state keys, applying first-run defaults for any that
// are absent.
func (d *DB) Load() (*store.State, error) {
	state := store.DefaultState(time.Now())

	if raw, ok, err := d.get(store.KeyAccounts); err != nil {
		return nil, fmt.Errorf("sqlite: reading accounts: %w", err)
	} else if ok {
		if err := json.Unmarshal([]byte(raw), &state.Accounts); err != nil {
			return nil, fmt.Errorf("sqlite: decoding accounts: %w", err)
		}
	}
	if raw, ok, err := d.get(store.KeyCycleStartDate); err != nil {
		return nil, fmt.Errorf("sqlite: reading cycle start: %w", err)
	} else if ok {
		t, err := time.Parse(time.RFC3339Nano, raw)
		if err != nil {
			return nil, fmt.Errorf("sqlite: decoding cycle start: %w", err)
		}
		state.Cycle.CycleStartDate = t
	}
	if raw, ok, err := d.get(store.KeyCurrentCycle); err != nil {
		return nil, fmt.Errorf("sqlite: reading cycle counter: %w", err)
	} else if ok {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("sqlite: decoding cycle counter: %w", err)
		}
		state.Cycle.CurrentCycle = n
	}
	if raw, ok, err := d.get(store.KeyManualResetDays); err != nil {
		return nil, fmt.Errorf("sqlite: reading manual reset days: %w", err)
	} else if ok {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("sqlite: decoding manual reset days: %w", err)
		}
		state.Cycle.ManualResetDays = &n
	}
	return state, nil
}

// Save overwrites all four keys in one transaction. The override key is
// removed when unset.
func (d *DB) Save(state *store.State) error {
	accounts := state.Accounts
	if accounts == nil {
		accounts = []domain.Account{}
	}
	raw, err := json.Marshal(accounts)
	if err != nil {
		return fmt.Errorf("sqlite: encoding accounts: %w", err)
	}

	tx, err := d.db.Begin()
	if err != nil {
		return fmt.Errorf("sqlite: beginning save: %w", err)
	}
	defer tx.Rollback()

	upsert := `INSERT INTO kv (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value`

	if _, err := tx.Exec(upsert, store.KeyAccounts, string(raw)); err != nil {
		return fmt.Errorf("sqlite: saving accounts: %w", err)
	}
	start := state.Cycle.CycleStartDate.Format(time.RFC3339Nano)
	if _, err := tx.Exec(upsert, store.KeyCycleStartDate, start); err != nil {
		return fmt.Errorf("sqlite: saving cycle start: %w", err)
	}
	if _, err := tx.Exec(upsert, store.KeyCurrentCycle, strconv.Itoa(state.Cycle.CurrentCycle)); err != nil {
		return fmt.Errorf("sqlite: saving cycle counter: %w", err)
	}
	if state.Cycle.ManualResetDays == nil {
		if _, err := tx.Exec(`DELETE FROM kv WHERE key = ?`, store.KeyManualResetDays); err != nil {
			return fmt.Errorf("sqlite: clearing manual reset days: %w", err)
		}
	} else {
		days := strconv.Itoa(*state.Cycle.ManualResetDays)
		if _, err := tx.Exec(upsert, store.KeyManualResetDays, days); err != nil {
			return fmt.Errorf("sqlite: saving manual reset days: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: committing save: %w", err)
	}
	return nil
}
