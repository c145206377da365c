package core

import (
	"errors"
	"fmt"
)

// Sentinel errors for the dataset load path. Callers classify with errors.Is;
// the message text is also matched by MapError, so keep the patterns stable.
var (
	// ErrSourceNotFound is returned when the configured CSV does not exist.
	ErrSourceNotFound = errors.New("source file not found")

	// ErrNoEncoding is returned when every candidate encoding failed to decode the file.
	ErrNoEncoding = errors.New("encoding error: no candidate encoding could decode the file")

	// ErrEmptyInput is returned when the file exists but holds no parsable data.
	ErrEmptyInput = errors.New("empty file: no columns to parse")

	// ErrMalformedRow is returned for structural failures under a decodable encoding.
	ErrMalformedRow = errors.New("invalid csv")

	// ErrFileTooLarge is returned when the source exceeds the configured size limit.
	ErrFileTooLarge = errors.New("file too large")

	// ErrUnknownEncoding is returned when a configured encoding name is not supported.
	ErrUnknownEncoding = errors.New("unknown encoding")
)

// DecodeError reports that a candidate encoding could not decode the source.
// It is the "try the next candidate" signal inside the loader.
type DecodeError struct {
	Encoding string
	Err      error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode as %s: %v", e.Encoding, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// IsDecodeError reports whether err is, or wraps, a DecodeError.
func IsDecodeError(err error) bool {
	var de *DecodeError
	return errors.As(err, &de)
}
