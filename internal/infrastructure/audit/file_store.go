package audit

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/doeshing/cmdgate/internal/domain"
	"github.com/doeshing/cmdgate/internal/ports"
)

// FileStore appends audit entries to a jsonl file. It serves setups where
// a database is unwanted; the mutex serializes all writes.
type FileStore struct {
	path string
	mu   sync.Mutex
}

// NewFileStore creates a jsonl-backed store at path.
func NewFileStore(path string) (*FileStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), domain.DirectoryPermissions); err != nil {
		return nil, fmt.Errorf("create audit dir: %w", err)
	}
	return &FileStore{path: path}, nil
}

// Append implements ports.AuditRepository.
func (f *FileStore) Append(entry domain.AuditEntry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	file, err := os.OpenFile(f.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer file.Close()
	data, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	_, err = file.Write(append(data, '\n'))
	return err
}

// FinalizeOutcome rewrites the file with the finalized entry. The rewrite
// goes through a temp file and rename so a crash never loses the log.
func (f *FileStore) FinalizeOutcome(id string, response domain.UserResponse, outcome *domain.ExecutionOutcome) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	entries, err := f.readAll()
	if err != nil {
		return err
	}
	found := false
	for i := range entries {
		if entries[i].ID != id {
			continue
		}
		if entries[i].Finalized() {
			return domain.ErrAlreadyFinalized
		}
		now := time.Now().UTC()
		entries[i].Response = response
		entries[i].Outcome = outcome
		entries[i].FinalizedAt = &now
		found = true
		break
	}
	if !found {
		return domain.ErrEntryNotFound
	}
	tmp := f.path + ".tmp"
	if err := writeJSONL(tmp, entries); err != nil {
		return err
	}
	return os.Rename(tmp, f.path)
}

// Get returns a single entry by id.
func (f *FileStore) Get(id string) (domain.AuditEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	entries, err := f.readAll()
	if err != nil {
		return domain.AuditEntry{}, err
	}
	for _, entry := range entries {
		if entry.ID == id {
			return entry, nil
		}
	}
	return domain.AuditEntry{}, domain.ErrEntryNotFound
}

// Query returns entries matching the filter, newest first.
func (f *FileStore) Query(filter domain.AuditFilter) ([]domain.AuditEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	entries, err := f.readAll()
	if err != nil {
		return nil, err
	}
	var matched []domain.AuditEntry
	for i := len(entries) - 1; i >= 0; i-- {
		entry := entries[i]
		if filter.Level != nil && entry.Assessment.Level != *filter.Level {
			continue
		}
		if filter.Executed != nil && entryExecuted(entry) != *filter.Executed {
			continue
		}
		matched = append(matched, entry)
		if filter.Limit > 0 && len(matched) >= filter.Limit {
			break
		}
	}
	return matched, nil
}

// ExportJSON copies the log to dest in the same jsonl format.
func (f *FileStore) ExportJSON(dest string) error {
	entries, err := f.Query(domain.AuditFilter{})
	if err != nil {
		return err
	}
	return writeJSONL(dest, entries)
}

// Clear drops every entry.
func (f *FileStore) Clear() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	err := os.Remove(f.path)
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// Path returns the backing file path.
func (f *FileStore) Path() string {
	return f.path
}

// Close is a no-op; every write already opens and closes the file.
func (f *FileStore) Close() error {
	return nil
}

func (f *FileStore) readAll() ([]domain.AuditEntry, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var entries []domain.AuditEntry
	for _, line := range bytes.Split(bytes.TrimSpace(data), []byte("\n")) {
		if len(line) == 0 {
			continue
		}
		var entry domain.AuditEntry
		if err := json.Unmarshal(line, &entry); err != nil {
			return nil, fmt.Errorf("corrupt audit line: %w", err)
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func writeJSONL(dest string, entries []domain.AuditEntry) error {
	file, err := os.Create(dest)
	if err != nil {
		return err
	}
	defer file.Close()
	for _, entry := range entries {
		data, err := json.Marshal(entry)
		if err != nil {
			return err
		}
		if _, err := file.Write(append(data, '\n')); err != nil {
			return err
		}
	}
	return nil
}

var _ ports.AuditRepository = (*FileStore)(nil)
