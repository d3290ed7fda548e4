// internal/services/session_service.go
package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/weblife-game/weblife/internal/errors"
	"github.com/weblife-game/weblife/internal/models"
	"github.com/weblife-game/weblife/internal/storage"
	"github.com/weblife-game/weblife/internal/utils"
)

// sessionEntry pairs a session with its operation lock. The busy flag
// rejects a second mutating operation while a provider call is in
// flight, instead of queueing it behind the lock.
type sessionEntry struct {
	mu      sync.Mutex
	busy    bool
	session *models.Session
}

// SessionService owns the in-memory session store: creation, lookup,
// deletion and the per-session re-entrancy guard the game engines use.
type SessionService struct {
	mu       sync.RWMutex
	sessions map[string]*sessionEntry

	narrator     Narrator
	archiveStore *storage.ArchiveStore
	logger       *utils.Logger
}

// CreateSessionRequest carries the player's character setup.
type CreateSessionRequest struct {
	FirstName string `json:"first_name" binding:"required"`
	LastName  string `json:"last_name" binding:"required"`
	Gender    string `json:"gender" binding:"required"`
	Country   string `json:"country" binding:"required"`
	State     string `json:"state" binding:"required"`
	City      string `json:"city" binding:"required"`
}

// NewSessionService creates the session store.
func NewSessionService(narrator Narrator) *SessionService {
	return &SessionService{
		sessions: make(map[string]*sessionEntry),
		narrator: narrator,
		logger:   utils.GetLogger(),
	}
}

// CreateSession validates the setup, generates the family roster and
// stores a fresh session in the playing state.
func (s *SessionService) CreateSession(ctx context.Context, req CreateSessionRequest) (*models.Session, error) {
	if err := validateSetup(req); err != nil {
		return nil, err
	}

	character := models.NewCharacter(
		strings.TrimSpace(req.FirstName),
		strings.TrimSpace(req.LastName),
		req.Gender,
		req.Country, req.State, req.City,
	)

	family, err := s.narrator.GenerateFamily(ctx, character.LastName, character.Country)
	if err != nil {
		// Family generation is flavor, not progress: degrade to a
		// minimal roster instead of failing session creation.
		s.logger.Warnf("family generation failed, using fallback: %v", err)
		family = fallbackFamily(character.LastName)
	}

	now := time.Now()
	session := &models.Session{
		ID:           uuid.New().String(),
		State:        models.StatePlaying,
		Character:    character,
		Family:       family,
		CurrentEvent: models.GlobalEventNormal,
		CreatedAt:    now,
		LastActivity: now,
	}
	session.AppendLog(
		fmt.Sprintf("%s %s begins adult life in %s, %s.", character.FirstName, character.LastName, character.City, character.Country),
		models.LogInfo)

	s.mu.Lock()
	s.sessions[session.ID] = &sessionEntry{session: session}
	s.mu.Unlock()

	utils.GetMetricsCollector().IncrementCounter("sessions.created")
	s.logger.Info("session created", map[string]interface{}{
		"session_id": session.ID,
		"character":  character.FirstName + " " + character.LastName,
	})

	return session.Clone(), nil
}

// GetSession returns a snapshot of a session.
func (s *SessionService) GetSession(sessionID string) (*models.Session, error) {
	entry, err := s.entry(sessionID)
	if err != nil {
		return nil, err
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()
	return entry.session.Clone(), nil
}

// ListSessions returns snapshots of every live session, newest first.
func (s *SessionService) ListSessions() []*models.Session {
	s.mu.RLock()
	entries := make([]*sessionEntry, 0, len(s.sessions))
	for _, entry := range s.sessions {
		entries = append(entries, entry)
	}
	s.mu.RUnlock()

	out := make([]*models.Session, 0, len(entries))
	for _, entry := range entries {
		entry.mu.Lock()
		out = append(out, entry.session.Clone())
		entry.mu.Unlock()
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

// SetArchive attaches the on-disk archive for finished lives.
func (s *SessionService) SetArchive(store *storage.ArchiveStore) {
	s.archiveStore = store
}

// archiveSnapshot persists a session snapshot. Archive failures are
// logged and swallowed: the archive is a convenience, not game state.
func (s *SessionService) archiveSnapshot(session *models.Session) {
	if s.archiveStore == nil || session == nil {
		return
	}
	if err := s.archiveStore.Save(session); err != nil {
		s.logger.Warnf("archiving session %s failed: %v", session.ID, err)
	}
}

// DeleteSession removes a session, archiving its final state first.
// Deleting a missing session is an error so clients learn about stale
// IDs.
func (s *SessionService) DeleteSession(sessionID string) error {
	s.mu.Lock()
	entry, exists := s.sessions[sessionID]
	if !exists {
		s.mu.Unlock()
		return apperrors.NewNotFoundError(fmt.Sprintf("session %s not found", sessionID), nil)
	}
	delete(s.sessions, sessionID)
	s.mu.Unlock()

	entry.mu.Lock()
	snapshot := entry.session.Clone()
	entry.mu.Unlock()
	s.archiveSnapshot(snapshot)

	utils.GetMetricsCollector().IncrementCounter("sessions.deleted")
	return nil
}

// beginOp acquires the session for a mutating operation. It returns the
// entry with its lock HELD and the busy flag set; the caller must call
// release when done. While busy is set, concurrent beginOp calls fail
// fast instead of blocking, so a slow provider call cannot pile up
// duplicate turns. Callers drop the lock around provider calls via
// entry.mu.Unlock()/Lock() and rely on busy for exclusion.
func (s *SessionService) beginOp(sessionID string) (*sessionEntry, error) {
	entry, err := s.entry(sessionID)
	if err != nil {
		return nil, err
	}

	entry.mu.Lock()
	if entry.busy {
		entry.mu.Unlock()
		return nil, apperrors.NewBusyError("another operation is already in progress for this session")
	}
	entry.busy = true
	entry.session.LastActivity = time.Now()
	return entry, nil
}

// release clears the busy flag and drops the entry lock.
func (s *SessionService) release(entry *sessionEntry) {
	entry.busy = false
	entry.mu.Unlock()
}

func (s *SessionService) entry(sessionID string) (*sessionEntry, error) {
	s.mu.RLock()
	entry, exists := s.sessions[sessionID]
	s.mu.RUnlock()
	if !exists {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("session %s not found", sessionID), nil)
	}
	return entry, nil
}

func validateSetup(req CreateSessionRequest) error {
	if strings.TrimSpace(req.FirstName) == "" {
		return apperrors.NewValidationError("first name is required", nil)
	}
	if strings.TrimSpace(req.LastName) == "" {
		return apperrors.NewValidationError("last name is required", nil)
	}
	if req.Gender != "male" && req.Gender != "female" && req.Gender != "other" {
		return apperrors.NewValidationError("gender must be one of male, female, other", nil)
	}
	if err := models.ValidateBirthplace(req.Country, req.State, req.City); err != nil {
		return apperrors.NewValidationError(err.Error(), nil)
	}
	return nil
}

// fallbackFamily is the minimal roster used when generation fails.
func fallbackFamily(lastName string) []models.FamilyMember {
	return []models.FamilyMember{
		{Relation: "father", Name: "John " + lastName, Alive: true},
		{Relation: "mother", Name: "Mary " + lastName, Alive: true},
	}
}
