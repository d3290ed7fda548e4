// internal/services/narrative_service.go
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"
	"unicode"

	"github.com/weblife-game/weblife/internal/config"
	apperrors "github.com/weblife-game/weblife/internal/errors"
	"github.com/weblife-game/weblife/internal/llm"
	"github.com/weblife-game/weblife/internal/models"
	"github.com/weblife-game/weblife/internal/utils"
)

// Narrator is the contract the game engines consume. The concrete
// implementation is LLM-backed; tests substitute fakes.
type Narrator interface {
	GenerateFamily(ctx context.Context, lastName, country string) ([]models.FamilyMember, error)
	GenerateYearNarrative(ctx context.Context, age int, event models.GlobalEvent, city string) (string, error)
	GenerateInteractiveEvent(ctx context.Context, character *models.Character) (*models.InteractiveEvent, error)
	ResolveEventChoice(ctx context.Context, event *models.InteractiveEvent, resultID string) (*models.ChoiceOutcome, error)
	GenerateSocialPostResult(ctx context.Context, platform models.PlatformInfo, followers int, contentType string) (*models.PostOutcome, error)
}

// NarrativeService produces all generated game content by prompting the
// configured LLM provider and parsing its structured JSON output.
type NarrativeService struct {
	providerMutex sync.RWMutex
	provider      llm.Provider
	providerName  string
	isReady       bool
	readyState    string
}

// NewNarrativeService builds the service from the current configuration.
// A missing or invalid provider config yields a not-ready service, never
// an error: the game degrades to its fallbacks instead of refusing to
// start.
func NewNarrativeService() *NarrativeService {
	service := &NarrativeService{readyState: "uninitialized"}

	cfg := config.GetCurrentConfig()
	if cfg == nil {
		service.readyState = "failed to retrieve configuration"
		return service
	}

	if cfg.LLMProvider == "" || cfg.LLMConfig == nil || cfg.LLMConfig["api_key"] == "" {
		service.readyState = "api key not configured"
		return service
	}

	provider, err := llm.GetProvider(cfg.LLMProvider, cfg.LLMConfig)
	if err != nil {
		service.readyState = fmt.Sprintf("initialization failed: %v", err)
		return service
	}

	service.provider = provider
	service.providerName = cfg.LLMProvider
	service.isReady = true
	service.readyState = "ready"
	return service
}

// IsReady reports whether a provider is configured.
func (s *NarrativeService) IsReady() bool {
	s.providerMutex.RLock()
	defer s.providerMutex.RUnlock()
	return s.isReady && s.provider != nil
}

// GetProviderStatus returns readiness plus a human-readable state.
func (s *NarrativeService) GetProviderStatus() (bool, string) {
	s.providerMutex.RLock()
	defer s.providerMutex.RUnlock()
	if s.isReady && s.provider != nil {
		return true, "ready"
	}
	return false, s.readyState
}

// GetProviderName returns the active provider's registry name.
func (s *NarrativeService) GetProviderName() string {
	s.providerMutex.RLock()
	defer s.providerMutex.RUnlock()
	return s.providerName
}

// UpdateProvider swaps the narrative backend at runtime.
func (s *NarrativeService) UpdateProvider(providerName string, providerConfig map[string]string) error {
	provider, err := llm.GetProvider(providerName, providerConfig)
	if err != nil {
		s.providerMutex.Lock()
		s.isReady = false
		s.readyState = fmt.Sprintf("configuration failed: %v", err)
		s.providerMutex.Unlock()
		return err
	}

	s.providerMutex.Lock()
	defer s.providerMutex.Unlock()
	s.provider = provider
	s.providerName = providerName
	s.isReady = true
	s.readyState = "ready"
	return nil
}

// GenerateFamily asks the provider for culturally plausible relatives.
func (s *NarrativeService) GenerateFamily(ctx context.Context, lastName, country string) ([]models.FamilyMember, error) {
	prompt := fmt.Sprintf(`Generate a list of family members for a person with the surname %q living in %s.
Include a father, a mother, and maybe 1-2 siblings. Use culturally appropriate names.
Return a JSON array of objects with fields "relation" and "name".`, lastName, country)

	var family []models.FamilyMember
	if err := s.createStructuredCompletion(ctx, "family", prompt, familySystemPrompt, &family); err != nil {
		return nil, err
	}
	if len(family) == 0 {
		return nil, apperrors.NewProviderParseError("provider returned an empty family", nil)
	}
	for i := range family {
		family[i].Alive = true
	}
	return family, nil
}

// GenerateYearNarrative produces the short flavor text for a resolved
// year. Unlike the structured calls this is free text.
func (s *NarrativeService) GenerateYearNarrative(ctx context.Context, age int, event models.GlobalEvent, city string) (string, error) {
	prompt := fmt.Sprintf(`Describe the small things that happened during one year in the life of a %d-year-old living in %s.
The global scenario this year is %q. Include trivial things like "your brother caught a cold" or "you watched a great movie".
At most 3 short items, written as a single paragraph. Be funny and use internet slang.`, age, city, event)

	text, err := s.completeText(ctx, "year_narrative", prompt, narratorSystemPrompt, false)
	if err != nil {
		return "", err
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", apperrors.NewProviderParseError("provider returned an empty narrative", nil)
	}
	return text, nil
}

// GenerateInteractiveEvent produces a random multiple-choice life event
// for the character.
func (s *NarrativeService) GenerateInteractiveEvent(ctx context.Context, character *models.Character) (*models.InteractiveEvent, error) {
	prompt := fmt.Sprintf(`Generate a random, unexpected event for a life simulator. The character is %d years old and lives in %s.
Examples: a stranger asking them to start a YouTube channel, finding an exotic animal, a pyramid-scheme pitch, etc.
Return JSON with fields "title", "description" and "options": an array of exactly two choices,
each an object with "label" (the button text) and "result_id" (a short opaque identifier).`,
		character.Age, character.City)

	event := &models.InteractiveEvent{}
	if err := s.createStructuredCompletion(ctx, "interactive_event", prompt, narratorSystemPrompt, event); err != nil {
		return nil, err
	}
	if event.Title == "" || len(event.Options) == 0 {
		return nil, apperrors.NewProviderParseError("provider returned an incomplete event", nil)
	}
	return event, nil
}

// ResolveEventChoice turns a selected option into a narrative and a set
// of stat deltas.
func (s *NarrativeService) ResolveEventChoice(ctx context.Context, event *models.InteractiveEvent, resultID string) (*models.ChoiceOutcome, error) {
	prompt := fmt.Sprintf(`The player chose option %q for the event: %q.
Describe the outcome in one short sentence and define the impact on the attributes
(health, happiness, intellect, appearance, money). Be creative and humorous.
Return JSON with "narrative" (string) and "impact": an object with numeric fields
"health", "happiness", "intellect", "appearance", "money" (omit what is unaffected).`,
		resultID, event.Description)

	outcome := &models.ChoiceOutcome{}
	if err := s.createStructuredCompletion(ctx, "choice_resolution", prompt, narratorSystemPrompt, outcome); err != nil {
		return nil, err
	}
	if outcome.Narrative == "" {
		return nil, apperrors.NewProviderParseError("provider returned an empty resolution", nil)
	}
	return outcome, nil
}

// GenerateSocialPostResult produces the outcome of a social media post.
func (s *NarrativeService) GenerateSocialPostResult(ctx context.Context, platform models.PlatformInfo, followers int, contentType string) (*models.PostOutcome, error) {
	prompt := fmt.Sprintf(`The player posted a %q on %s. They currently have %d %s.
Invent a creative title for the post and its result. Be funny and use internet slang.
Return JSON with "title", "narrative", and numeric "gain_followers", "gain_money", "gain_happiness".`,
		contentType, platform.Name, followers, platform.FollowerLabel)

	outcome := &models.PostOutcome{}
	if err := s.createStructuredCompletion(ctx, "post_result", prompt, narratorSystemPrompt, outcome); err != nil {
		return nil, err
	}
	if outcome.Title == "" && outcome.Narrative == "" {
		return nil, apperrors.NewProviderParseError("provider returned an empty post result", nil)
	}
	return outcome, nil
}

const narratorSystemPrompt = `You are the narrator of an irreverent life-simulation game.
Keep outputs short, playful and slightly absurd. Never break character, never mention being an AI.`

const familySystemPrompt = `You generate realistic family rosters for a life-simulation game.`

// createStructuredCompletion runs a completion in JSON mode and
// unmarshals the sanitized output into outputSchema.
func (s *NarrativeService) createStructuredCompletion(ctx context.Context, operation, prompt, systemPrompt string, outputSchema interface{}) error {
	structuredSystemPrompt := systemPrompt +
		"\n\nReturn your response as valid JSON following the requested shape, without explanations or preambles."

	text, err := s.completeText(ctx, operation, prompt, structuredSystemPrompt, true)
	if err != nil {
		return err
	}

	cleaned := cleanJSONString(text)
	if err := json.Unmarshal([]byte(cleaned), outputSchema); err != nil {
		utils.GetMetricsCollector().IncrementCounter("narrative." + operation + ".parse_error")
		return apperrors.NewProviderParseError(
			fmt.Sprintf("failed to parse provider response for %s", operation), err)
	}
	return nil
}

func (s *NarrativeService) completeText(ctx context.Context, operation, prompt, systemPrompt string, jsonMode bool) (string, error) {
	s.providerMutex.RLock()
	provider := s.provider
	ready := s.isReady
	state := s.readyState
	s.providerMutex.RUnlock()

	if !ready || provider == nil {
		return "", apperrors.NewProviderError("narrative provider not ready: "+state, nil)
	}

	metrics := utils.GetMetricsCollector()
	metrics.IncrementCounter("narrative." + operation + ".calls")

	started := time.Now()
	resp, err := provider.CompleteText(ctx, llm.CompletionRequest{
		Prompt:       prompt,
		SystemPrompt: systemPrompt,
		Temperature:  0.9,
		JSONMode:     jsonMode,
	})
	metrics.ObserveDuration("narrative."+operation, time.Since(started))

	if err != nil {
		metrics.IncrementCounter("narrative." + operation + ".errors")
		return "", apperrors.NewProviderError("narrative provider call failed", err)
	}
	return resp.Text, nil
}

// cleanJSONString strips markdown fences, stray prose and control
// characters around the first complete JSON value in s.
func cleanJSONString(s string) string {
	if s == "" {
		return s
	}

	s = strings.NewReplacer("```json", "", "```", "", "\ufeff", "").Replace(s)
	s = strings.TrimSpace(s)

	s = strings.Map(func(r rune) rune {
		switch r {
		case '\u200b', '\u200c', '\u200d', '\u2060', '\ufeff':
			return -1
		}
		if unicode.IsControl(r) && r != '\n' && r != '\r' && r != '\t' {
			return -1
		}
		return r
	}, s)

	start := strings.IndexAny(s, "[{")
	if start == -1 {
		return s
	}
	s = strings.TrimSpace(s[start:])
	if s == "" {
		return s
	}

	isArray := s[0] == '['

	// Bracket-balance scan so trailing prose after the JSON is dropped.
	balance := 0
	inString := false
	escaped := false
	for i := 0; i < len(s); i++ {
		char := s[i]

		if escaped {
			escaped = false
			continue
		}
		if char == '\\' {
			escaped = true
			continue
		}
		if char == '"' {
			inString = !inString
			continue
		}
		if inString {
			continue
		}

		if isArray {
			if char == '[' {
				balance++
			} else if char == ']' {
				balance--
			}
		} else {
			if char == '{' {
				balance++
			} else if char == '}' {
				balance--
			}
		}

		if balance == 0 {
			return strings.TrimSpace(s[:i+1])
		}
	}

	// Unbalanced output: fall back to the last closing bracket.
	end := strings.LastIndex(s, "}")
	if isArray {
		end = strings.LastIndex(s, "]")
	}
	if end != -1 {
		return strings.TrimSpace(s[:end+1])
	}
	return strings.TrimSpace(s)
}
