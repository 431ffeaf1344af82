package scoring

import "errors"

var ErrInvalidScale = errors.New("invalid grade scale")
