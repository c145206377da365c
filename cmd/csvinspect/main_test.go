package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

func writeFile(t *testing.T, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ops.csv")
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func TestRealMain_Summary(t *testing.T) {
	// 0xDA is Ú in Latin-1 and invalid as UTF-8 here
	path := writeFile(t, []byte("Registro ANS;Razao Social\n12345;ACME SA\xdaDE\n"))

	var stdout, stderr bytes.Buffer
	code := realMain(context.Background(), []string{"csvinspect", "--file", path}, &stdout, &stderr)

	require.Equal(t, 0, code, stderr.String())
	out := stdout.String()
	assert.Contains(t, out, "latin-1")
	assert.Contains(t, out, "decode_error")
	assert.Contains(t, out, "Registro ANS")
	assert.Contains(t, out, "ACME SAÚDE")
}

func TestRealMain_JSON(t *testing.T) {
	path := writeFile(t, []byte("a;b\n1;\n"))

	var stdout, stderr bytes.Buffer
	code := realMain(context.Background(), []string{"csvinspect", "-f", path, "--json", "--no-infer"}, &stdout, &stderr)

	require.Equal(t, 0, code, stderr.String())
	assert.Equal(t, "1", gjson.Get(stdout.String(), "0.a").Value())
	assert.Equal(t, gjson.Null, gjson.Get(stdout.String(), "0.b").Type)
}

func TestRealMain_MissingFile(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := realMain(context.Background(),
		[]string{"csvinspect", "--file", filepath.Join(t.TempDir(), "absent.csv")}, &stdout, &stderr)

	assert.Equal(t, 1, code)
	assert.Contains(t, stderr.String(), "FILE004")
}

func TestRealMain_BadDelimiter(t *testing.T) {
	path := writeFile(t, []byte("a;b\n"))

	var stdout, stderr bytes.Buffer
	code := realMain(context.Background(), []string{"csvinspect", "--file", path, "--delimiter", ";;"}, &stdout, &stderr)

	assert.Equal(t, 1, code)
	assert.Contains(t, stderr.String(), "single character")
}
