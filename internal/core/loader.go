package core

// loader.go implements the encoding-resolving loader.
//
// The source file is read into memory once, then each candidate encoding is
// tried in order. A candidate produces one of three outcomes:
//
//   - decoded: the text decoded and parsed; later candidates are not tried
//   - decode_error: the bytes are not valid in this encoding; try the next one
//   - parse_error: the text decoded but the table is malformed; abort the load
//     (or, for a lenient loader, log it and try the next candidate)
//
// When no candidate succeeds the loader returns ErrNoEncoding.

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/JonMunkholm/operadoras/internal/logging"
)

// DefaultMaxFileSize is the default source size limit (100MB).
const DefaultMaxFileSize = 100 * 1024 * 1024

// AttemptOutcome is the result of trying one candidate encoding.
type AttemptOutcome string

const (
	OutcomeDecoded     AttemptOutcome = "decoded"
	OutcomeDecodeError AttemptOutcome = "decode_error"
	OutcomeParseError  AttemptOutcome = "parse_error"
)

// Attempt records one candidate encoding tried by the loader.
type Attempt struct {
	Encoding string         `json:"encoding"`
	Outcome  AttemptOutcome `json:"outcome"`
	Error    string         `json:"error,omitempty"`
}

// LoaderConfig holds loader settings.
type LoaderConfig struct {
	// Encodings is the ordered candidate list (default: DefaultEncodings)
	Encodings []string

	// Delimiter is the field separator (default: ';')
	Delimiter rune

	// InferTypes enables whole-column numeric/bool inference
	InferTypes bool

	// Lenient logs structural parse errors and moves on to the next
	// candidate instead of aborting the load
	Lenient bool

	// MaxFileSize is the maximum source size in bytes (default: 100MB)
	MaxFileSize int64
}

// Loader parses a delimited file whose text encoding is not known in advance.
type Loader struct {
	encodings   []Encoding
	parse       ParseOptions
	lenient     bool
	maxFileSize int64
	metrics     *Metrics
}

// LoadResult is a successfully parsed source file.
type LoadResult struct {
	Table     *Table
	Encoding  string
	Attempts  []Attempt
	SizeBytes int64
}

// NewLoader creates a Loader. Returns an error for unknown encoding names.
// metrics may be nil.
func NewLoader(cfg LoaderConfig, metrics *Metrics) (*Loader, error) {
	encs, err := LookupEncodings(cfg.Encodings)
	if err != nil {
		return nil, err
	}

	delim := cfg.Delimiter
	if delim == 0 {
		delim = ';'
	}
	maxSize := cfg.MaxFileSize
	if maxSize <= 0 {
		maxSize = DefaultMaxFileSize
	}

	return &Loader{
		encodings:   encs,
		parse:       ParseOptions{Delimiter: delim, InferTypes: cfg.InferTypes},
		lenient:     cfg.Lenient,
		maxFileSize: maxSize,
		metrics:     metrics,
	}, nil
}

// Encodings returns the candidate names in the order they are tried.
func (l *Loader) Encodings() []string {
	names := make([]string, len(l.encodings))
	for i, e := range l.encodings {
		names[i] = e.Name
	}
	return names
}

// InferTypes reports whether column type inference is enabled.
func (l *Loader) InferTypes() bool {
	return l.parse.InferTypes
}

// Load reads path and returns the table from the first candidate encoding
// that decodes and parses it.
//
// Returns ErrEmptyInput for a file with no data, ErrNoEncoding when every
// candidate failed, and a wrapped ErrMalformedRow for a structural failure
// under a decodable encoding (unless the loader is lenient).
func (l *Loader) Load(ctx context.Context, path string) (*LoadResult, error) {
	logger := logging.WithFields(ctx, "path", path)

	raw, err := l.readSource(path)
	if err != nil {
		return nil, err
	}
	logger.Debug("source read", "size", humanize.Bytes(uint64(len(raw))))

	if len(bytes.TrimSpace(bytes.TrimPrefix(raw, utf8BOM))) == 0 {
		return nil, fmt.Errorf("%s: %w", path, ErrEmptyInput)
	}

	attempts := make([]Attempt, 0, len(l.encodings))
	record := func(a Attempt) {
		attempts = append(attempts, a)
		l.metrics.observeAttempt(a)
	}

	for _, enc := range l.encodings {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		logger.Debug("trying encoding", "encoding", enc.Name)

		text, err := enc.Decode(raw)
		if err != nil {
			logger.Warn("decode failed", "encoding", enc.Name, "error", err)
			record(Attempt{Encoding: enc.Name, Outcome: OutcomeDecodeError, Error: err.Error()})
			continue
		}

		table, err := ParseTable(text, l.parse)
		if err != nil {
			record(Attempt{Encoding: enc.Name, Outcome: OutcomeParseError, Error: err.Error()})
			if errors.Is(err, ErrEmptyInput) {
				return nil, fmt.Errorf("%s: %w", path, err)
			}
			if l.lenient {
				logger.Warn("parse failed, trying next encoding", "encoding", enc.Name, "error", err)
				continue
			}
			return nil, fmt.Errorf("parse %s as %s: %w", path, enc.Name, err)
		}

		record(Attempt{Encoding: enc.Name, Outcome: OutcomeDecoded})
		logger.Info("source parsed",
			"encoding", enc.Name,
			"columns", len(table.Columns),
			"rows", len(table.Rows),
		)

		return &LoadResult{
			Table:     table,
			Encoding:  enc.Name,
			Attempts:  attempts,
			SizeBytes: int64(len(raw)),
		}, nil
	}

	logger.Error("no candidate encoding could read the source", "tried", strings.Join(l.Encodings(), ","))
	return nil, fmt.Errorf("%s: %w (tried %s)", path, ErrNoEncoding, strings.Join(l.Encodings(), ", "))
}

// readSource reads the whole file, enforcing the size limit.
func (l *Loader) readSource(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrSourceNotFound, path)
		}
		return nil, fmt.Errorf("open source: %w", err)
	}
	defer f.Close()

	cr := NewCountingReader(f, l.maxFileSize)
	raw, err := io.ReadAll(cr)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return raw, nil
}
