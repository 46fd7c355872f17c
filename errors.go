package inflate

import "errors"

// Decode outcomes. Every error returned by the decoder wraps exactly one of
// ErrData, ErrBuffer or ErrWindowTooSmall; use errors.Is to branch on them.
var (
	ErrData           = errors.New("inflate: invalid compressed data")
	ErrBuffer         = errors.New("inflate: not enough room for output")
	ErrWindowTooSmall = errors.New("inflate: back-reference exceeds stream window")

	ErrInvalidWindowBits = errors.New("inflate: window bits out of range")
	ErrNilCallback       = errors.New("inflate: pull and push must not be nil")
)

var errUnexpectedEOF = errors.New("unexpected end of input")
