// internal/storage/archive.go
package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/weblife-game/weblife/internal/models"
)

// ArchiveStore persists finished lives to disk as JSON, one file per
// session. Live sessions stay in memory; the archive only sees a
// session once it terminates or is deleted, so it is write-mostly.
type ArchiveStore struct {
	baseDir string

	// per-file locks, path -> *sync.RWMutex
	fileLocks sync.Map
}

// NewArchiveStore creates the archive under baseDir.
func NewArchiveStore(baseDir string) (*ArchiveStore, error) {
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, fmt.Errorf("create archive directory: %w", err)
	}
	return &ArchiveStore{baseDir: baseDir}, nil
}

func (a *ArchiveStore) getFileLock(fullPath string) *sync.RWMutex {
	value, _ := a.fileLocks.LoadOrStore(fullPath, &sync.RWMutex{})
	return value.(*sync.RWMutex)
}

func (a *ArchiveStore) pathFor(sessionID string) string {
	return filepath.Join(a.baseDir, sessionID+".json")
}

// Save writes a session snapshot to the archive. The write is atomic:
// a temp file renamed into place, so readers never see a torn file.
func (a *ArchiveStore) Save(session *models.Session) error {
	if session == nil || session.ID == "" {
		return fmt.Errorf("cannot archive an empty session")
	}

	content, err := json.MarshalIndent(session, "", "  ")
	if err != nil {
		return fmt.Errorf("serialize session %s: %w", session.ID, err)
	}

	fullPath := a.pathFor(session.ID)
	lock := a.getFileLock(fullPath)
	lock.Lock()
	defer lock.Unlock()

	tempPath := fullPath + ".tmp"
	if err := os.WriteFile(tempPath, content, 0644); err != nil {
		return fmt.Errorf("write archive temp file: %w", err)
	}
	if err := os.Rename(tempPath, fullPath); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("commit archive file: %w", err)
	}
	return nil
}

// Load reads an archived session by ID.
func (a *ArchiveStore) Load(sessionID string) (*models.Session, error) {
	fullPath := a.pathFor(sessionID)
	lock := a.getFileLock(fullPath)
	lock.RLock()
	defer lock.RUnlock()

	content, err := os.ReadFile(fullPath)
	if err != nil {
		return nil, fmt.Errorf("read archived session %s: %w", sessionID, err)
	}

	var session models.Session
	if err := json.Unmarshal(content, &session); err != nil {
		return nil, fmt.Errorf("parse archived session %s: %w", sessionID, err)
	}
	return &session, nil
}

// List returns the IDs of all archived sessions, sorted.
func (a *ArchiveStore) List() ([]string, error) {
	entries, err := os.ReadDir(a.baseDir)
	if err != nil {
		return nil, fmt.Errorf("read archive directory: %w", err)
	}

	var ids []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".json") {
			continue
		}
		ids = append(ids, strings.TrimSuffix(name, ".json"))
	}
	sort.Strings(ids)
	return ids, nil
}

// Delete removes an archived session.
func (a *ArchiveStore) Delete(sessionID string) error {
	fullPath := a.pathFor(sessionID)
	lock := a.getFileLock(fullPath)
	lock.Lock()
	defer lock.Unlock()

	if err := os.Remove(fullPath); err != nil {
		return fmt.Errorf("delete archived session %s: %w", sessionID, err)
	}
	return nil
}
