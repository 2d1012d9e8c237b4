package taskrunner

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPrefixWriterTagsCompleteLines(t *testing.T) {
	var buf bytes.Buffer
	w := &prefixWriter{prefix: "build", out: &buf}

	_, err := w.Write([]byte("line one\nline two\n"))
	assert.NoError(t, err)
	assert.Equal(t, "[build] line one\n[build] line two\n", buf.String())
}

func TestPrefixWriterBuffersPartialLineAcrossWrites(t *testing.T) {
	var buf bytes.Buffer
	w := &prefixWriter{prefix: "build", out: &buf}

	_, _ = w.Write([]byte("partial "))
	assert.Equal(t, "", buf.String(), "a chunk with no trailing newline must not be flushed yet")

	_, _ = w.Write([]byte("line\n"))
	assert.Equal(t, "[build] partial line\n", buf.String())
}
