// Package types contains the enumerations shared by every pipeline stage.
package types

// Grade is a letter grade. INC marks a component that could not be graded.
type Grade string

const (
	GradeAPlus Grade = "A+"
	GradeA     Grade = "A"
	GradeB     Grade = "B"
	GradeC     Grade = "C"
	GradeD     Grade = "D"
	GradeF     Grade = "F"
	GradeInc   Grade = "INC"
)

// Grades lists the gradeable letters from best to worst.
var Grades = []Grade{GradeAPlus, GradeA, GradeB, GradeC, GradeD, GradeF}

// Rank orders letters: 0 is best. INC and unknown letters rank last.
func (g Grade) Rank() int {
	for i, v := range Grades {
		if v == g {
			return i
		}
	}
	return len(Grades)
}

// Valid reports whether g is one of the gradeable letters.
func (g Grade) Valid() bool { return g.Rank() < len(Grades) }

// Confidence describes how much of a side's grade rests on complete data.
type Confidence string

const (
	ConfidenceHigh       Confidence = "high"
	ConfidenceMedium     Confidence = "medium"
	ConfidenceLow        Confidence = "low"
	ConfidenceIncomplete Confidence = "incomplete"
)

var confidenceOrder = map[Confidence]int{
	ConfidenceHigh:       3,
	ConfidenceMedium:     2,
	ConfidenceLow:        1,
	ConfidenceIncomplete: 0,
}

// MinConfidence returns the weaker of two confidence levels.
func MinConfidence(a, b Confidence) Confidence {
	if confidenceOrder[a] <= confidenceOrder[b] {
		return a
	}
	return b
}

// PlayerStatus records which data windows were available for a player.
type PlayerStatus string

const (
	StatusGraded     PlayerStatus = "graded"
	StatusNoPostData PlayerStatus = "no_post_data"
	StatusNoBaseline PlayerStatus = "no_baseline"
	StatusNoData     PlayerStatus = "no_data"
	StatusWindowOpen PlayerStatus = "window_open"
)

// Gradeable reports whether a player with this status contributes a delta.
func (s PlayerStatus) Gradeable() bool {
	return s == StatusGraded || s == StatusNoPostData || s == StatusNoBaseline
}

// Fallback reports whether the delta came from a missing-window rule.
func (s PlayerStatus) Fallback() bool {
	return s == StatusNoPostData || s == StatusNoBaseline
}

// PickStatus is the lifecycle state of a ledger entry.
type PickStatus string

const (
	PickPending   PickStatus = "pending"
	PickProjected PickStatus = "projected"
	PickCompleted PickStatus = "completed"
)

// Basis names the components that produced a combined grade.
type Basis string

const (
	BasisMixed       Basis = "mixed"
	BasisPlayersOnly Basis = "players_only"
	BasisPicksOnly   Basis = "picks_only"
	BasisIncomplete  Basis = "incomplete"
)

// Verdict is the trade-level outcome of comparing both sides.
type Verdict string

const (
	VerdictWinner     Verdict = "winner"
	VerdictEven       Verdict = "even"
	VerdictIncomplete Verdict = "incomplete"
)
