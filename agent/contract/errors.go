package contract

import "errors"

var (
	ErrProductNotFound = errors.New("product not found")
	ErrEngineInvoke    = errors.New("reasoning engine invoke failed")
	ErrValidation      = errors.New("validation failed")
)
