package brackets

import (
	"fmt"

	"github.com/Dosada05/mini-tournament/models"
)

type RefKind string

const (
	RefGroup  RefKind = "group"
	RefRanked RefKind = "ranked"
	RefWinner RefKind = "winner"
	RefLoser  RefKind = "loser"
)

// SlotRef names where one side of a playoff match comes from.
type SlotRef struct {
	Kind     RefKind
	Group    string
	Position int
	Rank     int
	Slot     string
}

// GroupPos is the pair finishing at position pos of group g.
func GroupPos(g string, pos int) SlotRef {
	return SlotRef{Kind: RefGroup, Group: g, Position: pos}
}

// Ranked is the rank-th best of all pairs finishing at position pos.
func Ranked(pos, rank int) SlotRef {
	return SlotRef{Kind: RefRanked, Position: pos, Rank: rank}
}

func WinnerOf(slot string) SlotRef {
	return SlotRef{Kind: RefWinner, Slot: slot}
}

func LoserOf(slot string) SlotRef {
	return SlotRef{Kind: RefLoser, Slot: slot}
}

func (r SlotRef) String() string {
	switch r.Kind {
	case RefGroup:
		return fmt.Sprintf("%s%d", r.Group, r.Position)
	case RefRanked:
		return fmt.Sprintf("P%d#%d", r.Position, r.Rank)
	case RefWinner:
		return "W(" + r.Slot + ")"
	case RefLoser:
		return "L(" + r.Slot + ")"
	}
	return "?"
}

// PlayoffSlot is one playoff match of a format plan.
type PlayoffSlot struct {
	Key     string
	Round   int
	Bracket models.Bracket
	Phase   models.Phase
	Court   int
	A, B    SlotRef
}

// PlayoffPlan is the crossing table of a format.
type PlayoffPlan struct {
	Format           models.Format
	Slots            []PlayoffSlot
	MainFinal        string
	ConsolationFinal string
}

func slot(key string, round int, b models.Bracket, ph models.Phase, court int, a, bRef SlotRef) PlayoffSlot {
	return PlayoffSlot{Key: key, Round: round, Bracket: b, Phase: ph, Court: court, A: a, B: bRef}
}

const (
	mainBracket = models.BracketMain
	consolation = models.BracketConsolation
)

var plans = map[models.Format]PlayoffPlan{
	models.Format16Mini: {
		Format: models.Format16Mini,
		Slots: []PlayoffSlot{
			slot("QF1", 5, mainBracket, models.PhaseQF, 1, GroupPos("A", 1), GroupPos("C", 2)),
			slot("QF2", 5, mainBracket, models.PhaseQF, 2, GroupPos("C", 1), GroupPos("A", 2)),
			slot("QF3", 5, mainBracket, models.PhaseQF, 3, GroupPos("B", 1), GroupPos("D", 2)),
			slot("QF4", 5, mainBracket, models.PhaseQF, 4, GroupPos("D", 1), GroupPos("B", 2)),
			slot("SF1", 6, mainBracket, models.PhaseSF, 1, WinnerOf("QF1"), WinnerOf("QF3")),
			slot("SF2", 6, mainBracket, models.PhaseSF, 2, WinnerOf("QF2"), WinnerOf("QF4")),
			slot("CSF1", 6, consolation, models.PhaseSF, 3, LoserOf("QF1"), LoserOf("QF3")),
			slot("CSF2", 6, consolation, models.PhaseSF, 4, LoserOf("QF2"), LoserOf("QF4")),
			slot("F", 7, mainBracket, models.PhaseFinal, 1, WinnerOf("SF1"), WinnerOf("SF2")),
			slot("CF", 8, consolation, models.PhaseFinal, 1, WinnerOf("CSF1"), WinnerOf("CSF2")),
		},
		MainFinal:        "F",
		ConsolationFinal: "CF",
	},
	models.Format12Mini: {
		Format: models.Format12Mini,
		Slots: []PlayoffSlot{
			slot("SF1", 5, mainBracket, models.PhaseSF, 1, GroupPos("A", 1), Ranked(2, 1)),
			slot("SF2", 5, mainBracket, models.PhaseSF, 2, GroupPos("B", 1), GroupPos("C", 1)),
			slot("CF", 5, consolation, models.PhaseFinal, 3, Ranked(2, 2), Ranked(2, 3)),
			slot("F", 6, mainBracket, models.PhaseFinal, 1, WinnerOf("SF1"), WinnerOf("SF2")),
		},
		MainFinal:        "F",
		ConsolationFinal: "CF",
	},
	models.Format10Mini: {
		Format: models.Format10Mini,
		Slots: []PlayoffSlot{
			slot("F", 6, mainBracket, models.PhaseFinal, 1, GroupPos("A", 1), GroupPos("B", 1)),
			slot("CF", 6, consolation, models.PhaseFinal, 1, GroupPos("A", 2), GroupPos("B", 2)),
		},
		MainFinal:        "F",
		ConsolationFinal: "CF",
	},
	models.Format8Mini: {
		Format: models.Format8Mini,
		Slots: []PlayoffSlot{
			slot("SF1", 5, mainBracket, models.PhaseSF, 1, GroupPos("A", 1), GroupPos("B", 2)),
			slot("SF2", 5, mainBracket, models.PhaseSF, 2, GroupPos("B", 1), GroupPos("A", 2)),
			slot("F", 6, mainBracket, models.PhaseFinal, 1, WinnerOf("SF1"), WinnerOf("SF2")),
			slot("CF", 6, consolation, models.PhaseFinal, 1, LoserOf("SF1"), LoserOf("SF2")),
		},
		MainFinal:        "F",
		ConsolationFinal: "CF",
	},
}

func PlanFor(format models.Format) (PlayoffPlan, error) {
	p, ok := plans[format]
	if !ok {
		return PlayoffPlan{}, fmt.Errorf("no playoff plan for format %q", format)
	}
	return p, nil
}

// RoundSlots returns the slots played in a round, possibly none.
func (p PlayoffPlan) RoundSlots(round int) []PlayoffSlot {
	var out []PlayoffSlot
	for _, s := range p.Slots {
		if s.Round == round {
			out = append(out, s)
		}
	}
	return out
}

func (p PlayoffPlan) Slot(key string) (PlayoffSlot, bool) {
	for _, s := range p.Slots {
		if s.Key == key {
			return s, true
		}
	}
	return PlayoffSlot{}, false
}

// Dependents lists the slots fed by the result of the given slot.
func (p PlayoffPlan) Dependents(key string) []string {
	var out []string
	for _, s := range p.Slots {
		for _, ref := range []SlotRef{s.A, s.B} {
			if (ref.Kind == RefWinner || ref.Kind == RefLoser) && ref.Slot == key {
				out = append(out, s.Key)
				break
			}
		}
	}
	return out
}

// Outcome says where the two sides of a decided playoff slot go next. An
// empty next slot means the pair is out. Title is set for finals.
type Outcome struct {
	WinnerNext string         `json:"winner_next,omitempty"`
	LoserNext  string         `json:"loser_next,omitempty"`
	Title      models.Bracket `json:"title,omitempty"`
}

func (p PlayoffPlan) Outcome(key string) Outcome {
	var o Outcome
	for _, s := range p.Slots {
		for _, ref := range []SlotRef{s.A, s.B} {
			if ref.Slot != key {
				continue
			}
			switch ref.Kind {
			case RefWinner:
				o.WinnerNext = s.Key
			case RefLoser:
				o.LoserNext = s.Key
			}
		}
	}
	switch key {
	case p.MainFinal:
		o.Title = models.BracketMain
	case p.ConsolationFinal:
		o.Title = models.BracketConsolation
	}
	return o
}

type PlayoffGenerator struct{}

func NewPlayoffGenerator() BracketGenerator {
	return &PlayoffGenerator{}
}

func (g *PlayoffGenerator) GetName() string {
	return "Playoff"
}

// GenerateRound resolves the slots of one playoff round against the group
// tables and the decided playoff matches.
func (g *PlayoffGenerator) GenerateRound(params GenerateRoundParams) ([]*BracketMatch, error) {
	plan, err := PlanFor(params.Layout.Format)
	if err != nil {
		return nil, err
	}

	slots := plan.RoundSlots(params.Round)
	matches := make([]*BracketMatch, 0, len(slots))
	if len(slots) == 0 {
		return matches, nil
	}

	tables := AllStandings(params.State)
	groupIDs := params.Layout.GroupIDs()

	for _, s := range slots {
		a, err := resolve(params.State, tables, groupIDs, s.A)
		if err != nil {
			return nil, fmt.Errorf("slot %s: %w", s.Key, err)
		}
		b, err := resolve(params.State, tables, groupIDs, s.B)
		if err != nil {
			return nil, fmt.Errorf("slot %s: %w", s.Key, err)
		}
		if a == b {
			return nil, fmt.Errorf("slot %s: both sides resolve to pair %d", s.Key, a)
		}
		matches = append(matches, &BracketMatch{
			Bracket:        s.Bracket,
			Phase:          s.Phase,
			Slot:           s.Key,
			PairAID:        a,
			PairBID:        b,
			RequestedCourt: s.Court,
		})
	}
	return matches, nil
}

func resolve(state *models.TournamentState, tables map[string][]Standing, groupIDs []string, ref SlotRef) (int, error) {
	switch ref.Kind {
	case RefGroup:
		table, ok := tables[ref.Group]
		if !ok || ref.Position < 1 || ref.Position > len(table) {
			return 0, fmt.Errorf("no pair at %s", ref)
		}
		return table[ref.Position-1].PairID, nil
	case RefRanked:
		rows := RankAcrossGroups(tables, groupIDs, ref.Position)
		if ref.Rank < 1 || ref.Rank > len(rows) {
			return 0, fmt.Errorf("no pair at %s", ref)
		}
		return rows[ref.Rank-1].PairID, nil
	case RefWinner, RefLoser:
		for i := range state.Matches {
			m := &state.Matches[i]
			if m.Slot != ref.Slot {
				continue
			}
			winner, loser, ok := m.Winner()
			if !ok {
				return 0, fmt.Errorf("%w: %s", ErrUnresolvedSlot, ref.Slot)
			}
			if ref.Kind == RefWinner {
				return winner, nil
			}
			return loser, nil
		}
		return 0, fmt.Errorf("%w: %s has not been played", ErrUnresolvedSlot, ref.Slot)
	}
	return 0, fmt.Errorf("unknown slot reference %q", ref.Kind)
}
