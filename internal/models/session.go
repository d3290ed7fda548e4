// internal/models/session.go
package models

import "time"

// SessionState is the controller-visible phase of a game session.
type SessionState string

const (
	StatePlaying          SessionState = "playing"
	StateInteractiveEvent SessionState = "interactive_event"
	StateGameOver         SessionState = "game_over"
)

// LogSeverity classifies a journal entry for display.
type LogSeverity string

const (
	LogInfo    LogSeverity = "info"
	LogDanger  LogSeverity = "danger"
	LogSuccess LogSeverity = "success"
)

// LogEntry is one line of the append-only game journal. Entries are
// never mutated or removed; grouping by year happens at read time.
type LogEntry struct {
	Year     int         `json:"year"`
	Event    GlobalEvent `json:"event"`
	Message  string      `json:"message"`
	Severity LogSeverity `json:"severity"`
}

// Session is the isolated state of one running game: character, journal,
// pending event and the current scenario tag. Nothing is shared between
// sessions; the services layer guards each session with its own lock.
type Session struct {
	ID           string            `json:"id"`
	State        SessionState      `json:"state"`
	Character    *Character        `json:"character"`
	Family       []FamilyMember    `json:"family"`
	Logs         []LogEntry        `json:"logs"`
	CurrentEvent GlobalEvent       `json:"current_event"`
	PendingEvent *InteractiveEvent `json:"pending_event,omitempty"`
	CreatedAt    time.Time         `json:"created_at"`
	LastActivity time.Time         `json:"last_activity"`
}

// AppendLog records a journal entry stamped with the character's current
// age and the turn's global event tag.
func (s *Session) AppendLog(message string, severity LogSeverity) {
	s.Logs = append(s.Logs, LogEntry{
		Year:     s.Character.Age,
		Event:    s.CurrentEvent,
		Message:  message,
		Severity: severity,
	})
}

// Terminated reports whether the session reached its terminal state.
// No further mutation is accepted once true.
func (s *Session) Terminated() bool {
	return s.State == StateGameOver
}

// YearLogs groups the journal by year for display, preserving entry
// order within each year.
func (s *Session) YearLogs() []YearLog {
	var out []YearLog
	for _, entry := range s.Logs {
		if n := len(out); n > 0 && out[n-1].Year == entry.Year {
			out[n-1].Entries = append(out[n-1].Entries, entry)
			continue
		}
		out = append(out, YearLog{Year: entry.Year, Entries: []LogEntry{entry}})
	}
	return out
}

// Clone returns a deep copy safe to serialize while the original keeps
// mutating under its session lock.
func (s *Session) Clone() *Session {
	clone := *s

	if s.Character != nil {
		character := *s.Character
		character.SocialMedia = make(map[Platform]*SocialAccount, len(s.Character.SocialMedia))
		for platform, account := range s.Character.SocialMedia {
			copied := *account
			character.SocialMedia[platform] = &copied
		}
		clone.Character = &character
	}

	clone.Family = append([]FamilyMember(nil), s.Family...)
	clone.Logs = append([]LogEntry(nil), s.Logs...)

	if s.PendingEvent != nil {
		pending := *s.PendingEvent
		pending.Options = append([]ChoiceOption(nil), s.PendingEvent.Options...)
		clone.PendingEvent = &pending
	}

	return &clone
}

// YearLog is one display group of journal entries.
type YearLog struct {
	Year    int        `json:"year"`
	Entries []LogEntry `json:"entries"`
}
