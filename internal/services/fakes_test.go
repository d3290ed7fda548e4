// internal/services/fakes_test.go
package services

import (
	"context"
	"testing"

	"github.com/weblife-game/weblife/internal/config"
	"github.com/weblife-game/weblife/internal/models"
)

// fakeNarrator returns canned content, or errors, per operation.
type fakeNarrator struct {
	family    []models.FamilyMember
	familyErr error

	narrative    string
	narrativeErr error

	event    *models.InteractiveEvent
	eventErr error

	outcome    *models.ChoiceOutcome
	outcomeErr error

	post    *models.PostOutcome
	postErr error

	narrativeCalls int
	eventCalls     int
}

func (f *fakeNarrator) GenerateFamily(ctx context.Context, lastName, country string) ([]models.FamilyMember, error) {
	if f.familyErr != nil {
		return nil, f.familyErr
	}
	if f.family == nil {
		return []models.FamilyMember{{Relation: "mother", Name: "Ana " + lastName, Alive: true}}, nil
	}
	return f.family, nil
}

func (f *fakeNarrator) GenerateYearNarrative(ctx context.Context, age int, event models.GlobalEvent, city string) (string, error) {
	f.narrativeCalls++
	if f.narrativeErr != nil {
		return "", f.narrativeErr
	}
	if f.narrative == "" {
		return "an unremarkable year", nil
	}
	return f.narrative, nil
}

func (f *fakeNarrator) GenerateInteractiveEvent(ctx context.Context, character *models.Character) (*models.InteractiveEvent, error) {
	f.eventCalls++
	if f.eventErr != nil {
		return nil, f.eventErr
	}
	if f.event == nil {
		return &models.InteractiveEvent{
			Title:       "A stranger approaches",
			Description: "They want you to join their band.",
			Options: []models.ChoiceOption{
				{Label: "Join", ResultID: "join"},
				{Label: "Walk away", ResultID: "refuse"},
			},
		}, nil
	}
	return f.event, nil
}

func (f *fakeNarrator) ResolveEventChoice(ctx context.Context, event *models.InteractiveEvent, resultID string) (*models.ChoiceOutcome, error) {
	if f.outcomeErr != nil {
		return nil, f.outcomeErr
	}
	if f.outcome == nil {
		return &models.ChoiceOutcome{Narrative: "it went fine"}, nil
	}
	return f.outcome, nil
}

func (f *fakeNarrator) GenerateSocialPostResult(ctx context.Context, platform models.PlatformInfo, followers int, contentType string) (*models.PostOutcome, error) {
	if f.postErr != nil {
		return nil, f.postErr
	}
	if f.post == nil {
		return &models.PostOutcome{Title: "meh", Narrative: "nobody cared", GainFollowers: 1}, nil
	}
	return f.post, nil
}

// scriptedRoller replays queued draws; exhausted queues return values
// that fail probability checks.
type scriptedRoller struct {
	floats []float64
	ints   []int
}

func (r *scriptedRoller) Float64() float64 {
	if len(r.floats) == 0 {
		return 0.999
	}
	v := r.floats[0]
	r.floats = r.floats[1:]
	return v
}

func (r *scriptedRoller) Intn(n int) int {
	if len(r.ints) == 0 {
		return 0
	}
	v := r.ints[0] % n
	r.ints = r.ints[1:]
	return v
}

// newGameFixture builds the service graph around fakes and starts one
// session.
func newGameFixture(t *testing.T, narrator *fakeNarrator, roller Roller) (*SessionService, *TurnService, *SocialService, string) {
	t.Helper()

	rules := config.DefaultGameRules()
	sessions := NewSessionService(narrator)
	turns := NewTurnService(sessions, narrator, roller, rules)
	social := NewSocialService(sessions, narrator, roller, rules)

	session, err := sessions.CreateSession(context.Background(), CreateSessionRequest{
		FirstName: "Alex",
		LastName:  "Silva",
		Gender:    "other",
		Country:   "USA",
		State:     "California",
		City:      "Los Angeles",
	})
	if err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}
	return sessions, turns, social, session.ID
}
