// internal/models/character.go
package models

// JobUnemployed is the sentinel job label for a character without income.
const JobUnemployed = "unemployed"

// Character is the mutable record of a single player's life.
// Identity fields are fixed at setup; everything else changes turn by turn.
type Character struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Gender    string `json:"gender"`
	Country   string `json:"country"`
	State     string `json:"state"`
	City      string `json:"city"`

	Age        int     `json:"age"`
	Health     float64 `json:"health"`
	Happiness  float64 `json:"happiness"`
	Intellect  float64 `json:"intellect"`
	Appearance float64 `json:"appearance"`

	Money float64 `json:"money"`
	Fame  float64 `json:"fame"`
	Job   string  `json:"job"`

	HasBunker bool `json:"has_bunker"`
	HasDodo   bool `json:"has_dodo"`

	SocialMedia map[Platform]*SocialAccount `json:"social_media"`
}

// NewCharacter returns a character with the standard starting stats and
// an inactive account slot for every known platform.
func NewCharacter(firstName, lastName, gender, country, state, city string) *Character {
	c := &Character{
		FirstName:   firstName,
		LastName:    lastName,
		Gender:      gender,
		Country:     country,
		State:       state,
		City:        city,
		Age:         18,
		Health:      95,
		Happiness:   50,
		Intellect:   50,
		Appearance:  50,
		Money:       1000,
		Fame:        0,
		Job:         JobUnemployed,
		SocialMedia: make(map[Platform]*SocialAccount, len(AllPlatforms)),
	}
	for _, p := range AllPlatforms {
		c.SocialMedia[p] = &SocialAccount{}
	}
	return c
}

// Employed reports whether the character earns job income.
func (c *Character) Employed() bool {
	return c.Job != JobUnemployed && c.Job != ""
}

// Account returns the social account for a platform. Unknown platforms
// return nil; callers must validate the platform first.
func (c *Character) Account(p Platform) *SocialAccount {
	return c.SocialMedia[p]
}

// ApplyImpact merges an event impact into the character. Bounded stats
// are clamped to [0,100]; money is unbounded.
func (c *Character) ApplyImpact(impact Impact) {
	c.Health = Clamp(c.Health + impact.Health)
	c.Happiness = Clamp(c.Happiness + impact.Happiness)
	c.Intellect = Clamp(c.Intellect + impact.Intellect)
	c.Appearance = Clamp(c.Appearance + impact.Appearance)
	c.Money += impact.Money
}

// Impact is the set of stat deltas produced by a resolved event choice.
// Missing fields decode as zero.
type Impact struct {
	Health     float64 `json:"health"`
	Happiness  float64 `json:"happiness"`
	Intellect  float64 `json:"intellect"`
	Appearance float64 `json:"appearance"`
	Money      float64 `json:"money"`
}

// SocialAccount tracks one platform's presence. A zero value is an
// inactive account, which is the state every character starts in.
type SocialAccount struct {
	IsActive   bool `json:"is_active"`
	Followers  int  `json:"followers"`
	IsVerified bool `json:"is_verified"`
	IsBanned   bool `json:"is_banned"`
	TotalPosts int  `json:"total_posts"`
}

// Reset returns the account to its pristine inactive state, discarding
// followers, post history and any ban.
func (a *SocialAccount) Reset() {
	*a = SocialAccount{}
}

// AddFollowers adjusts the follower count, flooring at zero. Current
// rules never subtract, but the clamp is applied on every mutation.
func (a *SocialAccount) AddFollowers(delta int) {
	a.Followers += delta
	if a.Followers < 0 {
		a.Followers = 0
	}
}

// FamilyMember is one relative generated at setup.
type FamilyMember struct {
	Relation string `json:"relation"`
	Name     string `json:"name"`
	Alive    bool   `json:"alive"`
}

// Clamp bounds a stat to the closed interval [0,100].
func Clamp(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
