package models

type Bracket string

const (
	BracketGroup       Bracket = "group"
	BracketMain        Bracket = "main"
	BracketConsolation Bracket = "consolation"
)

// Priority orders brackets for court allocation, lower first.
func (b Bracket) Priority() int {
	switch b {
	case BracketMain:
		return 0
	case BracketConsolation:
		return 1
	default:
		return 2
	}
}

type Phase string

const (
	PhaseGroup Phase = "group"
	PhaseQF    Phase = "qf"
	PhaseSF    Phase = "sf"
	PhaseFinal Phase = "final"
)

// CourtStatus says whether a match holds a court in its round.
type CourtStatus string

const (
	// CourtScheduled: the match owns Court and can be played.
	CourtScheduled CourtStatus = "scheduled"
	// CourtWaiting: no court could be given. Court is 0.
	CourtWaiting CourtStatus = "waiting"
	// CourtTechnicalRest: the court in RequestedCourt exists but another match
	// holds it. Court is 0.
	CourtTechnicalRest CourtStatus = "technical_rest"
)

type Match struct {
	ID             int         `json:"id"`
	Round          int         `json:"round"`
	Bracket        Bracket     `json:"bracket"`
	Phase          Phase       `json:"phase"`
	GroupID        string      `json:"group_id,omitempty"`
	Slot           string      `json:"slot,omitempty"`
	PairAID        int         `json:"pair_a_id"`
	PairBID        int         `json:"pair_b_id"`
	ScoreA         *int        `json:"score_a,omitempty"`
	ScoreB         *int        `json:"score_b,omitempty"`
	IsFinished     bool        `json:"is_finished"`
	Court          int         `json:"court"`
	CourtStatus    CourtStatus `json:"court_status"`
	RequestedCourt int         `json:"requested_court"`
	// RatingDeltas holds the rating change applied to each player when the
	// score was recorded, keyed by player id.
	RatingDeltas map[int]int `json:"rating_deltas,omitempty"`
}

func (m *Match) Playable() bool {
	return m.CourtStatus == CourtScheduled
}

func (m *Match) Involves(pairID int) bool {
	return m.PairAID == pairID || m.PairBID == pairID
}

// Winner returns the winning and losing pair ids of a finished match.
func (m *Match) Winner() (winner, loser int, ok bool) {
	if !m.IsFinished || m.ScoreA == nil || m.ScoreB == nil {
		return 0, 0, false
	}
	if *m.ScoreA > *m.ScoreB {
		return m.PairAID, m.PairBID, true
	}
	return m.PairBID, m.PairAID, true
}
