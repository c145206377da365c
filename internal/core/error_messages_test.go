package core

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestMapError(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		wantCode    string
		wantMessage string
	}{
		{
			name:        "nil error returns empty",
			err:         nil,
			wantCode:    "",
			wantMessage: "",
		},
		{
			name:        "file too large maps correctly",
			err:         fmt.Errorf("read x.csv: %w: more than 10 bytes", ErrFileTooLarge),
			wantCode:    "FILE001",
			wantMessage: "Source file exceeds the configured size limit",
		},
		{
			name:        "malformed row maps correctly",
			err:         fmt.Errorf("parse x.csv as utf-8: %w: line 3: expected 2 fields, saw 3", ErrMalformedRow),
			wantCode:    "FILE002",
			wantMessage: "Source file has a malformed row",
		},
		{
			name:        "no encoding maps correctly",
			err:         fmt.Errorf("x.csv: %w (tried utf-8)", ErrNoEncoding),
			wantCode:    "FILE003",
			wantMessage: "Failed to read or decode the source file",
		},
		{
			name:        "missing source maps correctly",
			err:         fmt.Errorf("%w: /data/x.csv", ErrSourceNotFound),
			wantCode:    "FILE004",
			wantMessage: "CSV file not found on the server",
		},
		{
			name:        "empty input maps correctly",
			err:         fmt.Errorf("x.csv: %w", ErrEmptyInput),
			wantCode:    "FILE005",
			wantMessage: "CSV file is empty",
		},
		{
			name:        "cancellation maps correctly",
			err:         context.Canceled,
			wantCode:    "REQ001",
			wantMessage: "Request was cancelled",
		},
		{
			name:        "timeout maps correctly",
			err:         context.DeadlineExceeded,
			wantCode:    "REQ002",
			wantMessage: "Request timed out",
		},
		{
			name:        "rate limit maps correctly",
			err:         errors.New("rate limit exceeded"),
			wantCode:    "REQ003",
			wantMessage: "Too many requests",
		},
		{
			name:        "unknown error returns default",
			err:         errors.New("some random internal error"),
			wantCode:    "ERR000",
			wantMessage: "Internal error while processing data",
		},
		{
			name:        "case insensitive matching",
			err:         errors.New("SOURCE FILE NOT FOUND"),
			wantCode:    "FILE004",
			wantMessage: "CSV file not found on the server",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MapError(tt.err)
			if got.Code != tt.wantCode {
				t.Errorf("MapError() code = %q, want %q", got.Code, tt.wantCode)
			}
			if got.Message != tt.wantMessage {
				t.Errorf("MapError() message = %q, want %q", got.Message, tt.wantMessage)
			}
		})
	}
}

func TestFormatUserError(t *testing.T) {
	result := FormatUserError(ErrSourceNotFound)

	expected := "CSV file not found on the server (Code: FILE004). Place the CSV at the configured path and retry"
	if result != expected {
		t.Errorf("FormatUserError() = %q, want %q", result, expected)
	}

	if got := FormatUserError(nil); got != "" {
		t.Errorf("FormatUserError(nil) = %q, want empty", got)
	}
}

func TestIsUserFacing(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{
			name: "nil error is not user facing",
			err:  nil,
			want: false,
		},
		{
			name: "known error is user facing",
			err:  ErrEmptyInput,
			want: true,
		},
		{
			name: "unknown error is not user facing",
			err:  errors.New("random internal error xyz"),
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := IsUserFacing(tt.err)
			if got != tt.want {
				t.Errorf("IsUserFacing() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDecodeError(t *testing.T) {
	inner := errors.New("invalid byte")
	err := fmt.Errorf("load: %w", &DecodeError{Encoding: "utf-8", Err: inner})

	if !IsDecodeError(err) {
		t.Error("IsDecodeError() = false, want true")
	}
	if !errors.Is(err, inner) {
		t.Error("DecodeError should unwrap to the underlying error")
	}
	if IsDecodeError(ErrMalformedRow) {
		t.Error("IsDecodeError(ErrMalformedRow) = true, want false")
	}
}
