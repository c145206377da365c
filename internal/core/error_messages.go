package core

// error_messages.go defines user-friendly error messages with codes for support reference.
// When the API returns an error, clients can quote the code to support staff
// for faster diagnosis.
//
// # File Errors (FILE001-FILE099)
//
// Errors related to locating, decoding and parsing the source CSV:
//
//	FILE001 - File too large: Source file exceeds the configured size limit
//	          Action: Raise SOURCE_MAX_FILE_SIZE or trim the file
//	          Patterns: "file too large"
//
//	FILE002 - Invalid CSV: Source file has a malformed row
//	          Action: Check the reported line for extra delimiters or broken quotes
//	          Patterns: "invalid csv"
//
//	FILE003 - Encoding error: No candidate encoding could decode the file
//	          Action: Save the file as UTF-8 or Latin-1, or extend SOURCE_ENCODINGS
//	          Patterns: "encoding error"
//
//	FILE004 - Not found: Source file is missing on the server
//	          Action: Place the CSV at SOURCE_PATH and retry
//	          Patterns: "source file not found"
//
//	FILE005 - Empty file: Source file contains no data
//	          Action: Replace it with a CSV that has a header row
//	          Patterns: "empty file"
//
// # Request Errors (REQ001-REQ099)
//
//	REQ001 - Request cancelled: Client went away before the load finished
//	         Patterns: "context canceled"
//
//	REQ002 - Request timeout: Load took longer than the request timeout
//	         Patterns: "context deadline exceeded"
//
//	REQ003 - Rate limited: Too many requests
//	         Patterns: "rate limit"
//
// # Default Error (ERR000)
//
// Fallback when no specific pattern matches. Check application logs for the
// original technical error.
//
// # Pattern Matching
//
// Error patterns are matched case-insensitively using strings.Contains.
// The first matching pattern wins, so more specific patterns should be
// defined before general ones.

import (
	"fmt"
	"strings"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string // What happened (user-friendly)
	Action  string // What to do about it
	Code    string // Error code for support reference
}

type errorPattern struct {
	pattern string
	msg     UserMessage
}

// errorPatterns maps technical error patterns (case-insensitive) to user messages.
// Order matters: the first match wins.
var errorPatterns = []errorPattern{
	// =========================================================================
	// File Errors (FILE001-FILE005)
	// =========================================================================
	{
		pattern: "file too large",
		msg: UserMessage{
			Message: "Source file exceeds the configured size limit",
			Action:  "Raise SOURCE_MAX_FILE_SIZE or trim the file",
			Code:    "FILE001",
		},
	},
	{
		pattern: "invalid csv",
		msg: UserMessage{
			Message: "Source file has a malformed row",
			Action:  "Check the reported line for extra delimiters or broken quotes",
			Code:    "FILE002",
		},
	},
	{
		pattern: "encoding error",
		msg: UserMessage{
			Message: "Failed to read or decode the source file",
			Action:  "Save the file as UTF-8 or Latin-1",
			Code:    "FILE003",
		},
	},
	{
		pattern: "source file not found",
		msg: UserMessage{
			Message: "CSV file not found on the server",
			Action:  "Place the CSV at the configured path and retry",
			Code:    "FILE004",
		},
	},
	{
		pattern: "empty file",
		msg: UserMessage{
			Message: "CSV file is empty",
			Action:  "Replace it with a CSV that has a header row",
			Code:    "FILE005",
		},
	},

	// =========================================================================
	// Request Errors (REQ001-REQ003)
	// =========================================================================
	{
		pattern: "context canceled",
		msg: UserMessage{
			Message: "Request was cancelled",
			Action:  "Please try again",
			Code:    "REQ001",
		},
	},
	{
		pattern: "context deadline exceeded",
		msg: UserMessage{
			Message: "Request timed out",
			Action:  "Please try again in a few moments",
			Code:    "REQ002",
		},
	},
	{
		pattern: "rate limit",
		msg: UserMessage{
			Message: "Too many requests",
			Action:  "Please wait a moment before trying again",
			Code:    "REQ003",
		},
	},
}

// defaultMessage is returned when no pattern matches (ERR000).
var defaultMessage = UserMessage{
	Message: "Internal error while processing data",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message.
// If no pattern matches, the generic ERR000 message is returned.
//
// Example:
//
//	msg := MapError(fmt.Errorf("load: %w", ErrEmptyInput))
//	// msg.Code == "FILE005"
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	errStr := strings.ToLower(err.Error())

	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
	}

	return defaultMessage
}

// FormatUserError creates a formatted error string for display.
// The format is: "Message (Code: XXX). Action"
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing reports whether err matches a known pattern rather than
// falling back to ERR000.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}
