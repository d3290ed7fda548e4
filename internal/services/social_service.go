// internal/services/social_service.go
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

// VerificationThreshold is the follower count at which an account gets
// its verified badge. The badge is cosmetic and survives until the
// account is deleted.
const VerificationThreshold = 100000

// SocialService runs the social media sub-game: accounts, posts and the
// fake-follower gamble.
type SocialService struct {
	sessions *SessionService
	narrator Narrator
	roller   Roller
	rules    config.GameRules
	logger   *utils.Logger
}

// NewSocialService wires the social media engine.
func NewSocialService(sessions *SessionService, narrator Narrator, roller Roller, rules config.GameRules) *SocialService {
	return &SocialService{
		sessions: sessions,
		narrator: narrator,
		roller:   roller,
		rules:    rules,
		logger:   utils.GetLogger(),
	}
}

// CreateAccount activates the character's account on a platform.
func (s *SocialService) CreateAccount(sessionID string, platform models.Platform) (*models.Session, error) {
	entry, err := s.beginSocialOp(sessionID, platform)
	if err != nil {
		return nil, err
	}
	defer s.sessions.release(entry)

	session := entry.session
	account := session.Character.Account(platform)
	if account.IsBanned {
		return nil, apperrors.NewConflictError(
			fmt.Sprintf("your %s account is banned; delete it before starting over", platform), nil)
	}
	if account.IsActive {
		return nil, apperrors.NewConflictError(
			fmt.Sprintf("you already have an active %s account", platform), nil)
	}

	account.IsActive = true
	info, _ := models.LookupPlatform(string(platform))
	session.AppendLog(fmt.Sprintf("You joined %s. Time to chase %s.", info.Name, info.FollowerLabel), models.LogInfo)
	utils.GetMetricsCollector().IncrementCounter("social.accounts_created")
	return session.Clone(), nil
}

// DeleteAccount wipes the account back to its pristine state. This is
// the only way to clear a ban; followers and post history go with it.
func (s *SocialService) DeleteAccount(sessionID string, platform models.Platform) (*models.Session, error) {
	entry, err := s.beginSocialOp(sessionID, platform)
	if err != nil {
		return nil, err
	}
	defer s.sessions.release(entry)

	session := entry.session
	account := session.Character.Account(platform)
	if !account.IsActive && !account.IsBanned {
		return nil, apperrors.NewConflictError(
			fmt.Sprintf("you have no %s account to delete", platform), nil)
	}

	account.Reset()
	session.AppendLog(fmt.Sprintf("You deleted your %s account and touched grass.", platform), models.LogInfo)
	return session.Clone(), nil
}

// Post publishes content and applies the generated outcome: follower,
// money and happiness gains, plus the happiness cost of adult platforms.
func (s *SocialService) Post(ctx context.Context, sessionID string, platform models.Platform, contentType string) (*models.Session, error) {
	info, ok := models.LookupPlatform(string(platform))
	if !ok {
		return nil, apperrors.NewValidationError(fmt.Sprintf("unknown platform %q", platform), nil)
	}
	if !info.SupportsContent(contentType) {
		return nil, apperrors.NewValidationError(
			fmt.Sprintf("%s does not support %q posts", info.Name, contentType), nil)
	}

	entry, err := s.beginSocialOp(sessionID, platform)
	if err != nil {
		return nil, err
	}
	defer s.sessions.release(entry)

	session := entry.session
	if err := s.requirePostable(session, platform); err != nil {
		return nil, err
	}

	account := session.Character.Account(platform)

	timeout := time.Duration(s.rules.ProviderTimeoutMS) * time.Millisecond
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	timeoutCtx, cancel := context.WithTimeout(ctx, timeout)
	entry.mu.Unlock()
	outcome, postErr := s.narrator.GenerateSocialPostResult(timeoutCtx, info, account.Followers, contentType)
	cancel()
	entry.mu.Lock()

	if postErr != nil {
		return nil, postErr
	}

	account.AddFollowers(outcome.GainFollowers)
	account.TotalPosts++
	if !account.IsVerified && account.Followers >= VerificationThreshold {
		account.IsVerified = true
		session.AppendLog(fmt.Sprintf("%s verified your account. You are officially somebody.", info.Name), models.LogSuccess)
	}

	session.Character.Money += outcome.GainMoney

	// Adult platforms cost happiness; the penalty folds into the gain so
	// the clamp applies once to the combined delta.
	happinessDelta := outcome.GainHappiness
	if info.Adult {
		happinessDelta -= s.rules.AdultPenalty
	}
	session.Character.Happiness = models.Clamp(session.Character.Happiness + happinessDelta)

	message := outcome.Narrative
	if outcome.Title != "" {
		message = fmt.Sprintf("%q: %s", outcome.Title, outcome.Narrative)
	}
	session.AppendLog(message, models.LogSuccess)

	if info.Adult {
		session.AppendLog("Posting there takes a toll on your self-esteem.", models.LogDanger)
	}

	utils.GetMetricsCollector().IncrementCounter("social.posts")
	return session.Clone(), nil
}

// BuyFakeFollowers spends money on a follower package. The platform
// catches the purchase with a fixed probability and bans the account;
// the money is gone either way.
func (s *SocialService) BuyFakeFollowers(sessionID string, platform models.Platform) (*models.Session, error) {
	entry, err := s.beginSocialOp(sessionID, platform)
	if err != nil {
		return nil, err
	}
	defer s.sessions.release(entry)

	session := entry.session
	if err := s.requirePostable(session, platform); err != nil {
		return nil, err
	}
	if session.Character.Money < s.rules.FakeFollowerCost {
		return nil, apperrors.NewValidationError(
			fmt.Sprintf("you need $%.0f to buy followers", s.rules.FakeFollowerCost), nil)
	}

	account := session.Character.Account(platform)
	session.Character.Money -= s.rules.FakeFollowerCost

	if s.roller.Float64() < s.rules.FakeFollowerBanCh {
		account.IsBanned = true
		account.IsActive = false
		session.AppendLog(
			fmt.Sprintf("%s's bot detection caught your fake followers. Account banned.", platform),
			models.LogDanger)
		utils.GetMetricsCollector().IncrementCounter("social.bans")
	} else {
		account.AddFollowers(s.rules.FakeFollowerGain)
		session.AppendLog(
			fmt.Sprintf("You quietly bought %d followers. Nobody noticed. Probably.", s.rules.FakeFollowerGain),
			models.LogSuccess)
	}

	utils.GetMetricsCollector().IncrementCounter("social.fake_follower_buys")
	return session.Clone(), nil
}

// beginSocialOp validates the platform and acquires the session.
func (s *SocialService) beginSocialOp(sessionID string, platform models.Platform) (*sessionEntry, error) {
	if _, ok := models.LookupPlatform(string(platform)); !ok {
		return nil, apperrors.NewValidationError(fmt.Sprintf("unknown platform %q", platform), nil)
	}

	entry, err := s.sessions.beginOp(sessionID)
	if err != nil {
		return nil, err
	}
	if entry.session.Terminated() {
		s.sessions.release(entry)
		return nil, apperrors.NewConflictError("the game is over; no further actions are accepted", nil)
	}
	return entry, nil
}

// requirePostable checks the account is active and unbanned. The caller
// holds the session lock.
func (s *SocialService) requirePostable(session *models.Session, platform models.Platform) error {
	account := session.Character.Account(platform)
	if account.IsBanned {
		return apperrors.NewConflictError(fmt.Sprintf("your %s account is banned", platform), nil)
	}
	if !account.IsActive {
		return apperrors.NewConflictError(fmt.Sprintf("you have no active %s account", platform), nil)
	}
	return nil
}
