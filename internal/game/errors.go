package game

import "errors"

var (
	ErrInvalidPosition = errors.New("invalid position")
	ErrInvalidSize     = errors.New("invalid board size")
)
