package models

// Category is one of the six ordered skill bands used to derive a first rating.
type Category string

const (
	CategoryBeginner         Category = "beginner"
	CategoryInitiation       Category = "initiation"
	CategoryIntermediate     Category = "intermediate"
	CategoryIntermediateHigh Category = "intermediate_high"
	CategoryAdvanced         Category = "advanced"
	CategoryCompetition      Category = "competition"
)

// Player is a registered player profile. Players are never removed while a
// match references them.
type Player struct {
	ID         int        `json:"id"`
	Name       string     `json:"name"`
	Nickname   *string    `json:"nickname,omitempty"`
	Phone      *string    `json:"phone,omitempty"`
	Email      *string    `json:"email,omitempty"`
	Categories []Category `json:"categories"`
	Slider     int        `json:"slider"`
	Rating     *int       `json:"rating,omitempty"`
}

// DisplayName prefers the nickname.
func (p *Player) DisplayName() string {
	if p.Nickname != nil && *p.Nickname != "" {
		return *p.Nickname
	}
	return p.Name
}
