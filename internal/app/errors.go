package app

import "errors"

var (
	ErrInvalidInput    = errors.New("invalid input")
	ErrUnknownModel    = errors.New("unknown model")
	ErrNotAllowed      = errors.New("user is not on the allow-list")
	ErrNoExtractedText = errors.New("document contains no extractable text")
)
