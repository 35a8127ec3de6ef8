package host

import "errors"

var (
	ErrArchUnsupported   = errors.New("architecture unsupported")
	ErrFlavorUnsupported = errors.New("state flavor unsupported")
	ErrRegInvalid        = errors.New("register invalid")
)
