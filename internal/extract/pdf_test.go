package extract

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubRunner struct {
	stdout []byte
	stderr []byte
	err    error

	name string
	args []string
	seen []byte
}

func (s *stubRunner) Run(_ context.Context, name string, args ...string) ([]byte, []byte, error) {
	s.name = name
	s.args = args
	// second-to-last arg is the temp file path
	if len(args) >= 2 {
		s.seen, _ = os.ReadFile(args[len(args)-2])
	}
	return s.stdout, s.stderr, s.err
}

func TestPDFExtractor_Extract(t *testing.T) {
	r := &stubRunner{stdout: []byte("John Doe\n\nEngineer\f")}
	e := NewPDFExtractorWithRunner(Config{Pdftotext: "/usr/bin/pdftotext", TempDir: t.TempDir()}, r, nil)

	res, err := e.Extract(context.Background(), []byte("%PDF-1.7 body"))
	require.NoError(t, err)
	assert.Equal(t, "John Doe\n\nEngineer\f", res.Text)
	assert.Equal(t, 1, res.Pages)
	assert.Equal(t, "pdf-text", res.Method)
	assert.Equal(t, "/usr/bin/pdftotext", r.name)
	assert.Equal(t, []byte("%PDF-1.7 body"), r.seen)
	assert.Equal(t, "-", r.args[len(r.args)-1])
}

func TestPDFExtractor_MaxPages(t *testing.T) {
	r := &stubRunner{stdout: []byte("text")}
	e := NewPDFExtractorWithRunner(Config{MaxPages: 3, TempDir: t.TempDir()}, r, nil)

	_, err := e.Extract(context.Background(), []byte("%PDF-"))
	require.NoError(t, err)
	assert.Contains(t, r.args, "-l")
	assert.Contains(t, r.args, "3")
	assert.Equal(t, "pdftotext", r.name)
}

func TestPDFExtractor_EmptyText(t *testing.T) {
	r := &stubRunner{stdout: []byte(" \n\f\n ")}
	e := NewPDFExtractorWithRunner(Config{TempDir: t.TempDir()}, r, nil)

	_, err := e.Extract(context.Background(), []byte("%PDF-"))
	assert.ErrorIs(t, err, ErrNoContent)
}

func TestPDFExtractor_EmptyInput(t *testing.T) {
	r := &stubRunner{}
	e := NewPDFExtractorWithRunner(Config{}, r, nil)

	_, err := e.Extract(context.Background(), nil)
	assert.ErrorIs(t, err, ErrNoContent)
	assert.Empty(t, r.name, "runner must not be invoked for empty input")
}

func TestPDFExtractor_RunnerFailure(t *testing.T) {
	r := &stubRunner{stderr: []byte("Syntax Error"), err: errors.New("exit status 1")}
	e := NewPDFExtractorWithRunner(Config{TempDir: t.TempDir()}, r, nil)

	res, err := e.Extract(context.Background(), []byte("%PDF-"))
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNoContent)
	assert.Equal(t, []string{"Syntax Error"}, res.Warnings)
}

func TestPDFExtractor_RemovesTempFile(t *testing.T) {
	dir := t.TempDir()
	e := NewPDFExtractorWithRunner(Config{TempDir: dir}, &stubRunner{stdout: []byte("x")}, nil)

	_, err := e.Extract(context.Background(), []byte("%PDF-"))
	require.NoError(t, err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestLooksLikePDF(t *testing.T) {
	assert.True(t, LooksLikePDF([]byte("%PDF-1.4\n")))
	assert.False(t, LooksLikePDF([]byte("PK\x03\x04")))
	assert.False(t, LooksLikePDF(nil))
}
