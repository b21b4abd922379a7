package prompter

import (
	"bytes"
	"strings"
	"testing"

	"github.com/jeffreymutethia/Seattle-Pulse-sub000/pkg/output"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func feed(t *testing.T, input string) *bytes.Buffer {
	t.Helper()
	SetInput(strings.NewReader(input))
	t.Cleanup(func() { SetInput(nil) })

	var buf bytes.Buffer
	output.SetWriter(&buf)
	t.Cleanup(func() { output.SetWriter(nil) })
	return &buf
}

func TestPromptString(t *testing.T) {
	buf := feed(t, "  Ballard  \n")
	s, err := PromptString("Location: ")
	require.NoError(t, err)
	assert.Equal(t, "Ballard", s)
	assert.Equal(t, "Location: ", buf.String())
}

func TestPromptRequiredRepeats(t *testing.T) {
	feed(t, "\n  \nFerry delays\n")
	s, err := PromptRequired("Title: ")
	require.NoError(t, err)
	assert.Equal(t, "Ferry delays", s)
}

func TestPromptConfirm(t *testing.T) {
	feed(t, "YES\nn\n")
	ok, err := PromptConfirm("Post?")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = PromptConfirm("Post?")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestPromptSelect(t *testing.T) {
	feed(t, "2\n9\nx\n")
	options := []string{"Ballard", "Fremont"}

	idx, err := PromptSelect("Pick", options)
	require.NoError(t, err)
	assert.Equal(t, 1, idx)

	_, err = PromptSelect("Pick", options)
	assert.Error(t, err)
	_, err = PromptSelect("Pick", options)
	assert.Error(t, err)
}

func TestPromptMultiline(t *testing.T) {
	feed(t, "line one\nline two\n\nignored\n")
	s, err := PromptMultilineString("Body", 10)
	require.NoError(t, err)
	assert.Equal(t, "line one\nline two", s)
}

func TestPromptStringAtEOF(t *testing.T) {
	feed(t, "no newline")
	s, err := PromptString("> ")
	require.NoError(t, err)
	assert.Equal(t, "no newline", s)

	_, err = PromptString("> ")
	assert.Error(t, err)
}
