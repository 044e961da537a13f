package usecase

import (
	crerr "github.com/cockroachdb/errors"
)

var (
	ErrInvalidInput = crerr.New("invalid input")
	ErrNotFound     = crerr.New("resource not found")
	// ErrSourceUnavailable marks any failure to obtain data from an upstream platform.
	ErrSourceUnavailable = crerr.New("source unavailable")
	ErrWriteFailure      = crerr.New("write failure")
	ErrPartialData       = crerr.New("partial data")
)

func IsSourceUnavailable(err error) bool {
	return err != nil && crerr.Is(err, ErrSourceUnavailable)
}

// SourceUnavailable marks err so callers can classify it with errors.Is.
func SourceUnavailable(err error) error {
	if err == nil {
		return nil
	}
	return crerr.Mark(err, ErrSourceUnavailable)
}

func WriteFailure(err error) error {
	if err == nil {
		return nil
	}
	return crerr.Mark(err, ErrWriteFailure)
}
