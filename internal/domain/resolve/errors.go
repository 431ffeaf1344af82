package resolve

import "errors"

var (
	ErrAmbiguousAlias   = errors.New("alias maps to more than one owner")
	ErrInvalidThreshold = errors.New("match threshold must be within (0, 1]")
)
