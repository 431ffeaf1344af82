package provenance

import "errors"

// ErrInvalidSlotTable is returned when a slot table is empty or not monotonic.
var ErrInvalidSlotTable = errors.New("invalid slot table")
