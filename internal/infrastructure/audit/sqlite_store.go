// Package audit implements the AuditRepository port. Exactly one entry is
// appended per pipeline evaluation; entries become immutable once their
// outcome is recorded. Writes are serialized to preserve strict temporal
// order.
package audit

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/doeshing/cmdgate/internal/domain"
	"github.com/doeshing/cmdgate/internal/ports"
)

// SQLiteStore persists audit entries in a SQLite database. Each row carries
// the full entry as a self-contained JSON document plus indexed columns for
// the query surface.
type SQLiteStore struct {
	db   *sql.DB
	path string
	mu   sync.Mutex
}

// NewSQLiteStore creates (or opens) the audit database at path. Open
// failures are returned, never silently downgraded to another backend.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), domain.DirectoryPermissions); err != nil {
		return nil, fmt.Errorf("create audit dir: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open audit db: %w", err)
	}
	store := &SQLiteStore{db: db, path: path}
	if err := store.init(); err != nil {
		db.Close()
		return nil, fmt.Errorf("init audit db: %w", err)
	}
	return store, nil
}

func (s *SQLiteStore) init() error {
	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS evaluations (
		id TEXT PRIMARY KEY,
		timestamp TEXT NOT NULL,
		command TEXT NOT NULL,
		risk_level TEXT NOT NULL,
		verdict TEXT NOT NULL,
		sandboxed INTEGER NOT NULL,
		response TEXT NOT NULL,
		executed INTEGER NOT NULL,
		finalized_at TEXT,
		entry TEXT NOT NULL
	);`)
	return err
}

// Append implements ports.AuditRepository.
func (s *SQLiteStore) Append(entry domain.AuditEntry) error {
	raw, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err = s.db.Exec(`INSERT INTO evaluations
		(id, timestamp, command, risk_level, verdict, sandboxed, response, executed, finalized_at, entry)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.ID,
		entry.Timestamp.Format(domain.TimestampFormat),
		entry.Command,
		entry.Assessment.Level.String(),
		string(entry.Decision.Verdict),
		boolToInt(entry.Sandboxed),
		string(entry.Response),
		boolToInt(entryExecuted(entry)),
		finalizedString(entry),
		string(raw),
	)
	return err
}

// FinalizeOutcome fills the entry's terminal state exactly once.
func (s *SQLiteStore) FinalizeOutcome(id string, response domain.UserResponse, outcome *domain.ExecutionOutcome) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var raw string
	var finalized sql.NullString
	err := s.db.QueryRow(`SELECT entry, finalized_at FROM evaluations WHERE id = ?`, id).
		Scan(&raw, &finalized)
	if err == sql.ErrNoRows {
		return domain.ErrEntryNotFound
	}
	if err != nil {
		return err
	}
	if finalized.Valid {
		return domain.ErrAlreadyFinalized
	}

	var entry domain.AuditEntry
	if err := json.Unmarshal([]byte(raw), &entry); err != nil {
		return fmt.Errorf("decode audit entry %s: %w", id, err)
	}
	now := time.Now().UTC()
	entry.Response = response
	entry.Outcome = outcome
	entry.FinalizedAt = &now

	updated, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	res, err := s.db.Exec(`UPDATE evaluations
		SET response = ?, executed = ?, finalized_at = ?, entry = ?
		WHERE id = ? AND finalized_at IS NULL`,
		string(response),
		boolToInt(entryExecuted(entry)),
		now.Format(domain.TimestampFormat),
		string(updated),
		id,
	)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrAlreadyFinalized
	}
	return nil
}

// Get returns a single entry by id.
func (s *SQLiteStore) Get(id string) (domain.AuditEntry, error) {
	var raw string
	err := s.db.QueryRow(`SELECT entry FROM evaluations WHERE id = ?`, id).Scan(&raw)
	if err == sql.ErrNoRows {
		return domain.AuditEntry{}, domain.ErrEntryNotFound
	}
	if err != nil {
		return domain.AuditEntry{}, err
	}
	var entry domain.AuditEntry
	if err := json.Unmarshal([]byte(raw), &entry); err != nil {
		return domain.AuditEntry{}, fmt.Errorf("decode audit entry %s: %w", id, err)
	}
	return entry, nil
}

// Query returns entries matching the filter, newest first.
func (s *SQLiteStore) Query(filter domain.AuditFilter) ([]domain.AuditEntry, error) {
	query := "SELECT entry FROM evaluations"
	var (
		clauses []string
		args    []interface{}
	)
	if filter.Level != nil {
		clauses = append(clauses, "risk_level = ?")
		args = append(args, filter.Level.String())
	}
	if filter.Executed != nil {
		clauses = append(clauses, "executed = ?")
		args = append(args, boolToInt(*filter.Executed))
	}
	for i, clause := range clauses {
		if i == 0 {
			query += " WHERE " + clause
		} else {
			query += " AND " + clause
		}
	}
	query += " ORDER BY rowid DESC"
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []domain.AuditEntry
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, err
		}
		var entry domain.AuditEntry
		if err := json.Unmarshal([]byte(raw), &entry); err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// ExportJSON writes every entry to a jsonl file, each line independently
// deserializable.
func (s *SQLiteStore) ExportJSON(dest string) error {
	entries, err := s.Query(domain.AuditFilter{})
	if err != nil {
		return err
	}
	return writeJSONL(dest, entries)
}

// Clear drops every entry.
func (s *SQLiteStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.Exec(`DELETE FROM evaluations`)
	return err
}

// Path returns the database path.
func (s *SQLiteStore) Path() string {
	return s.path
}

// Close flushes and closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func entryExecuted(entry domain.AuditEntry) bool {
	return entry.Response == domain.ResponseExecuted
}

func finalizedString(entry domain.AuditEntry) interface{} {
	if entry.FinalizedAt == nil {
		return nil
	}
	return entry.FinalizedAt.Format(domain.TimestampFormat)
}

var _ ports.AuditRepository = (*SQLiteStore)(nil)
