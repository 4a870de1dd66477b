package util

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrSessionNotFound      = errors.New("session not found")
	ErrFeedbackNotFound     = errors.New("feedback record not found")
	ErrIncompleteRecord     = errors.New("incomplete record")
	ErrInvalidInput         = errors.New("invalid input")
	ErrSessionComplete      = errors.New("session already has all questions answered")
	ErrInvalidPeriod        = errors.New("invalid period")
	ErrEvaluatorUnavailable = errors.New("evaluator unavailable")
	ErrPermissionDenied     = errors.New("permission denied")
)

// InvalidInput 给 ErrInvalidInput 附加具体原因
func InvalidInput(msg string) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, strings.TrimSpace(msg))
}

// IncompleteRecord tags an error as a malformed evaluation record.
func IncompleteRecord(msg string) error {
	return fmt.Errorf("%w: %s", ErrIncompleteRecord, strings.TrimSpace(msg))
}

// InvalidPeriod tags an unparseable period token.
func InvalidPeriod(msg string) error {
	return fmt.Errorf("%w: %s", ErrInvalidPeriod, strings.TrimSpace(msg))
}
