package model

import "errors"

// Error kinds shared by the loader, the indicator engine and the scanner.
var (
	ErrDataUnavailable     = errors.New("data unavailable")
	ErrInsufficientHistory = errors.New("insufficient history")
	ErrInvalidParameter    = errors.New("invalid parameter")
)

// FailureKind classifies a per-symbol failure.
type FailureKind string

const (
	FailureDataUnavailable     FailureKind = "data_unavailable"
	FailureInsufficientHistory FailureKind = "insufficient_history"
)

// KindOf maps an error to its failure kind. Anything that is not an
// insufficient-history error counts as unavailable data.
func KindOf(err error) FailureKind {
	if errors.Is(err, ErrInsufficientHistory) {
		return FailureInsufficientHistory
	}
	return FailureDataUnavailable
}
