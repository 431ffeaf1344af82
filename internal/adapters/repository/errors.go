package repository

import "errors"

// Sentinel kinds for artifact errors.
var (
	ErrArtifactMissing = errors.New("artifact missing")
	ErrInvalidArtifact = errors.New("invalid artifact")
	ErrNothingStaged   = errors.New("nothing staged")
)
