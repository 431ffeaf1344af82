package model

import "errors"

// Recoverable error kinds. Stages turn these into run report issues instead
// of failing the run.
var (
	ErrUnresolvableAlias     = errors.New("unresolvable alias")
	ErrUnparsablePick        = errors.New("unparsable pick")
	ErrAmbiguousBundleMatch  = errors.New("ambiguous bundle match")
	ErrMissingStatsWindow    = errors.New("missing stats window")
	ErrIncompleteGrade       = errors.New("incomplete grade")
	ErrDuplicateTrade        = errors.New("duplicate trade")
	ErrInvalidTrade          = errors.New("invalid trade")
	ErrUnassignedBundleAsset = errors.New("unassigned bundle asset")
	ErrBundleGroupSkipped    = errors.New("bundle group skipped")
	ErrCustodyGap            = errors.New("custody gap")
	ErrUnresolvedDraftSlot   = errors.New("unresolved draft slot")
	ErrMissingStandings      = errors.New("missing standings")
	ErrMissingDraftResults   = errors.New("missing draft results")
	ErrInvalidSeason         = errors.New("invalid season")
	ErrInvalidDate           = errors.New("invalid date")
)

// Kinds lists the recoverable errors in report order.
var Kinds = []error{
	ErrUnresolvableAlias,
	ErrUnparsablePick,
	ErrAmbiguousBundleMatch,
	ErrMissingStatsWindow,
	ErrIncompleteGrade,
	ErrDuplicateTrade,
	ErrInvalidTrade,
	ErrUnassignedBundleAsset,
	ErrBundleGroupSkipped,
	ErrCustodyGap,
	ErrUnresolvedDraftSlot,
	ErrMissingStandings,
	ErrMissingDraftResults,
	ErrInvalidSeason,
	ErrInvalidDate,
}
