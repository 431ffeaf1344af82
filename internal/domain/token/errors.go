package token

import "errors"

var ErrEmptyToken = errors.New("empty asset token")
