package core

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/unicode"
)

// latin1Razao is "Registro ANS;Razão Social\n12345;ACME SAÚDE\n" in Latin-1.
var latin1Razao = []byte("Registro ANS;Raz\xe3o Social\n12345;ACME SA\xdaDE\n")

func writeSource(t *testing.T, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "relatorio_operadoras_ativas.csv")
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func newTestLoader(t *testing.T, cfg LoaderConfig) *Loader {
	t.Helper()
	l, err := NewLoader(cfg, nil)
	require.NoError(t, err)
	return l
}

func attemptNames(attempts []Attempt) []string {
	names := make([]string, len(attempts))
	for i, a := range attempts {
		names[i] = a.Encoding + ":" + string(a.Outcome)
	}
	return names
}

func utf16WithBOM(t *testing.T, s string) []byte {
	t.Helper()
	b, err := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewEncoder().Bytes([]byte(s))
	require.NoError(t, err)
	return b
}

func TestLoader_StopsAtFirstDecodingCandidate(t *testing.T) {
	tests := []struct {
		name         string
		encodings    []string
		data         func(t *testing.T) []byte
		wantEncoding string
		wantAttempts []string
		wantCell     string
	}{
		{
			name:         "utf-8 file decoded by first candidate",
			data:         func(*testing.T) []byte { return []byte("Registro ANS;Razão Social\n1;SAÚDE\n") },
			wantEncoding: "utf-8",
			wantAttempts: []string{"utf-8:decoded"},
			wantCell:     "SAÚDE",
		},
		{
			name:         "utf-8 with BOM",
			data:         func(*testing.T) []byte { return append([]byte{0xEF, 0xBB, 0xBF}, "Registro ANS;Razão Social\n1;SAÚDE\n"...) },
			wantEncoding: "utf-8",
			wantAttempts: []string{"utf-8:decoded"},
			wantCell:     "SAÚDE",
		},
		{
			name:         "latin-1 file falls through utf-8",
			data:         func(*testing.T) []byte { return latin1Razao },
			wantEncoding: "latin-1",
			wantAttempts: []string{"utf-8:decode_error", "latin-1:decoded"},
			wantCell:     "ACME SAÚDE",
		},
		{
			name:         "iso-8859-1 reached when it is the only single-byte candidate",
			encodings:    []string{"utf-8", "utf-16", "iso-8859-1"},
			data:         func(*testing.T) []byte { return latin1Razao },
			wantEncoding: "iso-8859-1",
			wantAttempts: []string{"utf-8:decode_error", "utf-16:decode_error", "iso-8859-1:decoded"},
			wantCell:     "ACME SAÚDE",
		},
		{
			name:         "utf-16 decoded before later candidates",
			encodings:    []string{"utf-8", "utf-16", "latin-1"},
			data:         func(t *testing.T) []byte { return utf16WithBOM(t, "Registro ANS;Razão Social\n1;SAÚDE\n") },
			wantEncoding: "utf-16",
			wantAttempts: []string{"utf-8:decode_error", "utf-16:decoded"},
			wantCell:     "SAÚDE",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeSource(t, tt.data(t))
			l := newTestLoader(t, LoaderConfig{Encodings: tt.encodings})

			res, err := l.Load(context.Background(), path)
			require.NoError(t, err)

			assert.Equal(t, tt.wantEncoding, res.Encoding)
			assert.Equal(t, tt.wantAttempts, attemptNames(res.Attempts))
			require.Len(t, res.Table.Rows, 1)
			assert.Equal(t, tt.wantCell, res.Table.Rows[0][1])
			assert.Equal(t, "Registro ANS", res.Table.Columns[0])
		})
	}
}

func TestLoader_NoCandidateDecodes(t *testing.T) {
	path := writeSource(t, latin1Razao)
	l := newTestLoader(t, LoaderConfig{Encodings: []string{"utf-8", "utf-16"}})

	var res *LoadResult
	var err error
	assert.NotPanics(t, func() {
		res, err = l.Load(context.Background(), path)
	})

	assert.Nil(t, res)
	assert.ErrorIs(t, err, ErrNoEncoding)
	assert.Contains(t, err.Error(), "utf-8, utf-16")
}

func TestLoader_StructuralErrorAborts(t *testing.T) {
	path := writeSource(t, []byte("a;b\n1;2;3\n"))
	l := newTestLoader(t, LoaderConfig{})

	res, err := l.Load(context.Background(), path)

	assert.Nil(t, res)
	require.ErrorIs(t, err, ErrMalformedRow)
	assert.False(t, errors.Is(err, ErrNoEncoding))
	assert.Contains(t, err.Error(), "line 2")
	assert.Contains(t, err.Error(), "as utf-8")
}

func TestLoader_LenientKeepsTrying(t *testing.T) {
	path := writeSource(t, []byte("a;b\n1;2;3\n"))
	l := newTestLoader(t, LoaderConfig{Lenient: true})

	res, err := l.Load(context.Background(), path)

	assert.Nil(t, res)
	assert.ErrorIs(t, err, ErrNoEncoding)
}

func TestLoader_EmptyInput(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"zero bytes", nil},
		{"whitespace only", []byte(" \n\r\n\t")},
		{"BOM only", []byte{0xEF, 0xBB, 0xBF}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeSource(t, tt.data)
			l := newTestLoader(t, LoaderConfig{})

			res, err := l.Load(context.Background(), path)

			assert.Nil(t, res)
			assert.ErrorIs(t, err, ErrEmptyInput)
		})
	}
}

func TestLoader_HeaderOnly(t *testing.T) {
	path := writeSource(t, []byte("Registro ANS;Razao Social\n"))
	l := newTestLoader(t, LoaderConfig{InferTypes: true})

	res, err := l.Load(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, []string{"Registro ANS", "Razao Social"}, res.Table.Columns)
	assert.Empty(t, res.Table.Rows)
}

func TestLoader_FileTooLarge(t *testing.T) {
	path := writeSource(t, []byte("a;b\n1;2\n3;4\n"))
	l := newTestLoader(t, LoaderConfig{MaxFileSize: 4})

	_, err := l.Load(context.Background(), path)
	assert.ErrorIs(t, err, ErrFileTooLarge)
}

func TestLoader_MissingFile(t *testing.T) {
	l := newTestLoader(t, LoaderConfig{})

	_, err := l.Load(context.Background(), filepath.Join(t.TempDir(), "absent.csv"))
	assert.ErrorIs(t, err, ErrSourceNotFound)
}

func TestLoader_CancelledContext(t *testing.T) {
	path := writeSource(t, []byte("a;b\n1;2\n"))
	l := newTestLoader(t, LoaderConfig{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := l.Load(ctx, path)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestLoader_CustomDelimiter(t *testing.T) {
	path := writeSource(t, []byte("a,b\n1,x\n"))
	l := newTestLoader(t, LoaderConfig{Delimiter: ','})

	res, err := l.Load(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, res.Table.Columns)
}

func TestNewLoader_UnknownEncoding(t *testing.T) {
	_, err := NewLoader(LoaderConfig{Encodings: []string{"utf-8", "klingon"}}, nil)
	assert.ErrorIs(t, err, ErrUnknownEncoding)
}

func TestNewLoader_Defaults(t *testing.T) {
	l := newTestLoader(t, LoaderConfig{})
	assert.Equal(t, []string{"utf-8", "latin-1", "iso-8859-1"}, l.Encodings())
	assert.False(t, l.InferTypes())
}
