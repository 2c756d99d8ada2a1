package service

import (
	"errors"
	"fmt"
)

// ErrInvalidInput agrupa los errores de entrada que se detectan antes de llamar al modelo.
var ErrInvalidInput = errors.New("invalid input")

var (
	ErrEmptyCVText = fmt.Errorf("%w: cv text is empty", ErrInvalidInput)
	ErrMissingName = fmt.Errorf("%w: cv data has no personal_info.name", ErrInvalidInput)
)
