package service

import "errors"

var (
	// ErrInvalidStage is returned for a run extent outside reconcile..grade.
	ErrInvalidStage = errors.New("invalid stage")
	// ErrAudit is returned when an artifact cannot be walked.
	ErrAudit = errors.New("audit failed")
)
