package provenance

import (
	"sort"

	"github.com/okian/dynasty/internal/domain/model"
	"github.com/okian/dynasty/internal/domain/report"
	"github.com/okian/dynasty/internal/domain/scoring"
	"github.com/okian/dynasty/internal/domain/types"
)

// Transfer is one move of a pick between owners.
type Transfer struct {
	TradeIndex int           `json:"trade_index"`
	Season     model.Season  `json:"season"`
	Date       string        `json:"date,omitempty"`
	From       model.OwnerID `json:"from"`
	To         model.OwnerID `json:"to"`
	Raw        string        `json:"raw"`
}

// Slot resolution methods.
const (
	MethodOriginalTeam = "original_team"
	MethodExpectedSlot = "expected_slot"
	MethodHolderOnly   = "holder_only"
)

// Outcome is the actual selection a completed pick became.
type Outcome struct {
	Round      int         `json:"round"`
	PickNumber int         `json:"pick_number"`
	Overall    int         `json:"overall"`
	Team       string      `json:"team"`
	Player     string      `json:"player,omitempty"`
	Method     string      `json:"method"`
	Grade      types.Grade `json:"grade"`
	GPA        float64     `json:"gpa"`
}

// Projection estimates where a future pick lands. It is provisional and is
// recomputed from the latest standings on every run.
type Projection struct {
	PickNumber  int          `json:"pick_number"`
	Overall     int          `json:"overall"`
	Tier        string       `json:"value_tier"`
	Rank        int          `json:"standings_rank"`
	BasedOn     model.Season `json:"based_on"`
	Grade       types.Grade  `json:"grade"`
	GPA         float64      `json:"gpa"`
	Provisional bool         `json:"provisional"`
}

// Entry is the custody record of one pick.
type Entry struct {
	ID            string           `json:"pick_id"`
	OriginalOwner model.OwnerID    `json:"original_owner"`
	Year          int              `json:"draft_year"`
	Round         int              `json:"round"`
	Swap          bool             `json:"is_swap,omitempty"`
	Transfers     []Transfer       `json:"transfers"`
	CurrentOwner  model.OwnerID    `json:"current_owner"`
	Status        types.PickStatus `json:"status"`
	Outcome       *Outcome         `json:"outcome,omitempty"`
	Projection    *Projection      `json:"projection,omitempty"`
}

// Grade returns the actual grade when known, otherwise the projected one.
func (e Entry) Grade() (types.Grade, float64, bool) {
	switch {
	case e.Outcome != nil:
		return e.Outcome.Grade, e.Outcome.GPA, true
	case e.Projection != nil:
		return e.Projection.Grade, e.Projection.GPA, true
	default:
		return types.GradeInc, 0, false
	}
}

// Ledger is every traded pick, ordered by year, round and original owner.
type Ledger struct {
	Entries []Entry        `json:"picks"`
	Issues  []report.Issue `json:"issues"`

	index map[string]int
}

// Lookup returns the entry for a pick id.
func (l Ledger) Lookup(id string) (Entry, bool) {
	if l.index != nil {
		i, ok := l.index[id]
		if !ok {
			return Entry{}, false
		}
		return l.Entries[i], true
	}
	for _, e := range l.Entries {
		if e.ID == id {
			return e, true
		}
	}
	return Entry{}, false
}

// StatusCounts returns the number of entries in each status.
func (l Ledger) StatusCounts() map[types.PickStatus]int {
	out := make(map[types.PickStatus]int, 3)
	for _, e := range l.Entries {
		out[e.Status]++
	}
	return out
}

// Rollup is one owner's pick portfolio.
type Rollup struct {
	Owner    model.OwnerID `json:"owner"`
	Own      int           `json:"own"`
	Acquired int           `json:"acquired"`
	Sent     int           `json:"traded_away"`
	// ReceivedGPA and SentGPA average the grades of picks the owner took in
	// or gave up. Nil when none were graded.
	ReceivedGPA *float64 `json:"received_gpa"`
	SentGPA     *float64 `json:"sent_gpa"`
}

// Rollups derives every owner's portfolio from the ledger.
func (l Ledger) Rollups() []Rollup {
	byOwner := make(map[model.OwnerID]*Rollup)
	received := make(map[model.OwnerID][]float64)
	sent := make(map[model.OwnerID][]float64)
	get := func(o model.OwnerID) *Rollup {
		r, ok := byOwner[o]
		if !ok {
			r = &Rollup{Owner: o}
			byOwner[o] = r
		}
		return r
	}

	for _, e := range l.Entries {
		if e.CurrentOwner == e.OriginalOwner {
			get(e.CurrentOwner).Own++
		} else {
			get(e.CurrentOwner).Acquired++
		}
		_, gpa, graded := e.Grade()
		for _, tr := range e.Transfers {
			get(tr.From).Sent++
			get(tr.To)
			if graded {
				received[tr.To] = append(received[tr.To], gpa)
				sent[tr.From] = append(sent[tr.From], gpa)
			}
		}
	}

	out := make([]Rollup, 0, len(byOwner))
	for o, r := range byOwner {
		r.ReceivedGPA = average(received[o])
		r.SentGPA = average(sent[o])
		out = append(out, *r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Owner < out[j].Owner })
	return out
}

func average(vs []float64) *float64 {
	if len(vs) == 0 {
		return nil
	}
	sum := 0.0
	for _, v := range vs {
		sum += v
	}
	avg := scoring.Round(sum/float64(len(vs)), 2)
	return &avg
}
