// internal/models/event.go
package models

// GlobalEvent is the scenario tag attached to a turn. It is narrative
// flavor only: it rides along on narrative prompts and log entries but
// never alters the stat formulas.
type GlobalEvent string

const (
	GlobalEventNormal  GlobalEvent = "Normal Year"
	GlobalEventGiants  GlobalEvent = "Return of the Giants"
	GlobalEventZombies GlobalEvent = "Zombie Apocalypse"
	GlobalEventAliens  GlobalEvent = "Alien Invasion"
	GlobalEventAnarchy GlobalEvent = "Politician Vanishing (Anarchy)"
)

// ChaosEvents is the pool a successful chaos draw picks from, uniformly.
// Normal is never a member: a draw that succeeds always yields chaos.
var ChaosEvents = []GlobalEvent{
	GlobalEventGiants,
	GlobalEventZombies,
	GlobalEventAliens,
	GlobalEventAnarchy,
}

// ChoiceOption is one selectable answer of an interactive event. The
// ResultID is opaque to the engine and echoed back to the provider when
// the choice resolves.
type ChoiceOption struct {
	Label    string `json:"label"`
	ResultID string `json:"result_id"`
}

// InteractiveEvent is a provider-generated multiple-choice event. At
// most one exists per session at a time, held as pending until the
// player answers.
type InteractiveEvent struct {
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Options     []ChoiceOption `json:"options"`
}

// HasOption reports whether resultID belongs to one of the event's
// options.
func (e *InteractiveEvent) HasOption(resultID string) bool {
	for _, opt := range e.Options {
		if opt.ResultID == resultID {
			return true
		}
	}
	return false
}

// ChoiceOutcome is the provider's resolution of a selected option.
type ChoiceOutcome struct {
	Narrative string `json:"narrative"`
	Impact    Impact `json:"impact"`
}

// PostOutcome is the provider's result for a social media post.
type PostOutcome struct {
	Title         string  `json:"title"`
	Narrative     string  `json:"narrative"`
	GainFollowers int     `json:"gain_followers"`
	GainMoney     float64 `json:"gain_money"`
	GainHappiness float64 `json:"gain_happiness"`
}
