// internal/services/turn_service.go
package services

import (
	"context"
	"fmt"
	"time"

	"github.com/weblife-game/weblife/internal/config"
	apperrors "github.com/weblife-game/weblife/internal/errors"
	"github.com/weblife-game/weblife/internal/models"
	"github.com/weblife-game/weblife/internal/utils"
)

// FallbackYearNarrative is logged when the provider cannot produce a
// narrative: the year still resolves mechanically.
const FallbackYearNarrative = "A quiet year passed. Nothing remarkable happened."

// TurnService runs the yearly turn loop: chaos and event draws,
// stat drift, income, aging and the terminal checks.
type TurnService struct {
	sessions *SessionService
	narrator Narrator
	roller   Roller
	rules    config.GameRules
	logger   *utils.Logger
}

// NewTurnService wires the turn engine.
func NewTurnService(sessions *SessionService, narrator Narrator, roller Roller, rules config.GameRules) *TurnService {
	return &TurnService{
		sessions: sessions,
		narrator: narrator,
		roller:   roller,
		rules:    rules,
		logger:   utils.GetLogger(),
	}
}

// AdvanceTurn plays one year. The turn either resolves immediately as a
// normal year or pauses on a generated interactive event, in which case
// the year's mechanics wait for ResolveChoice.
func (t *TurnService) AdvanceTurn(ctx context.Context, sessionID string) (*models.Session, error) {
	entry, err := t.sessions.beginOp(sessionID)
	if err != nil {
		return nil, err
	}
	defer t.sessions.release(entry)

	session := entry.session
	if session.Terminated() {
		return nil, apperrors.NewConflictError("the game is over; no further turns are accepted", nil)
	}
	if session.State == models.StateInteractiveEvent {
		return nil, apperrors.NewConflictError("an event is pending; resolve it before advancing", nil)
	}

	utils.GetMetricsCollector().IncrementCounter("turns.advanced")

	if t.roller.Float64() < t.rules.EventChance {
		event, err := t.generateEvent(ctx, entry)
		if err == nil {
			session.PendingEvent = event
			session.State = models.StateInteractiveEvent
			utils.GetMetricsCollector().IncrementCounter("turns.interactive_events")
			return session.Clone(), nil
		}
		// A failed event generation degrades into a normal year rather
		// than burning the turn.
		t.logger.Warnf("interactive event generation failed, resolving as normal year: %v", err)
	}

	t.resolveNormalYear(ctx, entry)
	return session.Clone(), nil
}

// ResolveChoice answers the pending interactive event. The provider's
// outcome is applied and the interrupted year then runs its mechanics,
// so an event turn still ages the character by one.
func (t *TurnService) ResolveChoice(ctx context.Context, sessionID, resultID string) (*models.Session, error) {
	entry, err := t.sessions.beginOp(sessionID)
	if err != nil {
		return nil, err
	}
	defer t.sessions.release(entry)

	session := entry.session
	if session.Terminated() {
		return nil, apperrors.NewConflictError("the game is over; no further turns are accepted", nil)
	}
	if session.State != models.StateInteractiveEvent || session.PendingEvent == nil {
		return nil, apperrors.NewConflictError("no event is pending for this session", nil)
	}

	pending := session.PendingEvent
	if !pending.HasOption(resultID) {
		return nil, apperrors.NewValidationError(
			fmt.Sprintf("choice %q is not an option of the pending event", resultID), nil)
	}

	timeoutCtx, cancel := t.providerContext(ctx)
	entry.mu.Unlock()
	outcome, resolveErr := t.narrator.ResolveEventChoice(timeoutCtx, pending, resultID)
	cancel()
	entry.mu.Lock()

	if resolveErr != nil {
		// The moment is lost: drop the event and keep the year
		// unplayed so the player can retry the turn.
		session.PendingEvent = nil
		session.State = models.StatePlaying
		return nil, resolveErr
	}

	session.AppendLog(outcome.Narrative, severityForImpact(outcome.Impact))
	session.Character.ApplyImpact(outcome.Impact)
	session.PendingEvent = nil
	session.State = models.StatePlaying

	// The interrupted year now plays out in full, narrative and terminal
	// check included, so an event turn still ages the character by one.
	t.resolveNormalYear(ctx, entry)
	utils.GetMetricsCollector().IncrementCounter("turns.choices_resolved")
	return session.Clone(), nil
}

// resolveNormalYear plays one mechanical year: the chaos draw, income,
// stat decay and drift, aging and the narration. The deltas are computed
// up front; a year that would kill the character ends the game before
// anything commits and without asking for a narrative. The caller holds
// the entry lock.
func (t *TurnService) resolveNormalYear(ctx context.Context, entry *sessionEntry) {
	session := entry.session
	character := session.Character

	session.CurrentEvent = models.GlobalEventNormal
	if t.roller.Float64() < t.rules.ChaosChance {
		session.CurrentEvent = models.ChaosEvents[t.roller.Intn(len(models.ChaosEvents))]
		session.AppendLog(fmt.Sprintf("The world shifts: %s.", session.CurrentEvent), models.LogDanger)
		utils.GetMetricsCollector().IncrementCounter("turns.chaos_events")
	}

	healthAfter := models.Clamp(character.Health - t.roller.Float64()*t.rules.HealthDecayMax)
	happinessAfter := models.Clamp(character.Happiness + (t.roller.Float64()*2-1)*t.rules.HappinessDrift)
	ageAfter := character.Age + 1

	if healthAfter <= 0 || ageAfter > t.rules.MaxAge {
		t.endGame(session, healthAfter, ageAfter)
		return
	}

	timeoutCtx, cancel := t.providerContext(ctx)
	entry.mu.Unlock()
	narrative, err := t.narrator.GenerateYearNarrative(timeoutCtx, ageAfter, session.CurrentEvent, character.City)
	cancel()
	entry.mu.Lock()

	if err != nil {
		t.logger.Warnf("year narrative failed, using fallback: %v", err)
		narrative = FallbackYearNarrative
	}

	// Journal entries are stamped before the age increments, so they
	// carry the age the year was lived at.
	session.AppendLog(narrative, models.LogInfo)

	if character.Employed() {
		character.Money += t.rules.JobIncome
		session.AppendLog(fmt.Sprintf("Your job as %s paid $%.0f.", character.Job, t.rules.JobIncome), models.LogSuccess)
	}

	socialIncome := 0.0
	for _, platform := range models.AllPlatforms {
		account := character.Account(platform)
		if account == nil || !account.IsActive || account.IsBanned {
			continue
		}
		socialIncome += float64(account.Followers) * t.rules.FollowerRate
	}
	if socialIncome > 0 {
		character.Money += socialIncome
		session.AppendLog(fmt.Sprintf("Your online presence earned $%.2f this year.", socialIncome), models.LogSuccess)
	}

	character.Health = healthAfter
	character.Happiness = happinessAfter
	character.Age = ageAfter
}

// endGame closes the session on a lethal year. The year's deltas are
// discarded: the character record keeps the last stats it actually
// lived with.
func (t *TurnService) endGame(session *models.Session, healthAfter float64, ageAfter int) {
	if healthAfter <= 0 {
		session.AppendLog(fmt.Sprintf("Your health gave out at age %d. Game over.", ageAfter), models.LogDanger)
	} else {
		session.AppendLog(fmt.Sprintf("You lived to the staggering age of %d. Game over.", ageAfter), models.LogDanger)
	}

	session.State = models.StateGameOver
	t.sessions.archiveSnapshot(session.Clone())
	utils.GetMetricsCollector().IncrementCounter("sessions.terminated")
}

func (t *TurnService) generateEvent(ctx context.Context, entry *sessionEntry) (*models.InteractiveEvent, error) {
	timeoutCtx, cancel := t.providerContext(ctx)
	defer cancel()

	entry.mu.Unlock()
	defer entry.mu.Lock()
	return t.narrator.GenerateInteractiveEvent(timeoutCtx, entry.session.Character)
}

func (t *TurnService) providerContext(ctx context.Context) (context.Context, context.CancelFunc) {
	timeout := time.Duration(t.rules.ProviderTimeoutMS) * time.Millisecond
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return context.WithTimeout(ctx, timeout)
}

// severityForImpact classifies an outcome for the journal. Happiness is
// the player-facing axis: a choice that costs happiness reads as danger,
// everything else as success.
func severityForImpact(impact models.Impact) models.LogSeverity {
	if impact.Happiness < 0 {
		return models.LogDanger
	}
	return models.LogSuccess
}
