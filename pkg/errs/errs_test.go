package errs_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rotehq/rote/pkg/errs"
)

func TestErrorMessageFormatting(t *testing.T) {
	cause := errors.New("boom")

	full := errs.InstallFailed("core:maven", "3.9.6", cause)
	assert.Equal(t, "install core:maven@3.9.6: boom", full.Error())

	noVersion := errs.UnknownBackend("bogus")
	assert.Equal(t, "lookup bogus: unknown_backend", noVersion.Error())

	opOnly := errs.ConfigInvalid("/tmp/proj", cause)
	assert.Equal(t, "load /tmp/proj: boom", opOnly.Error())
}

func TestErrorIsMatchesByKind(t *testing.T) {
	a := errs.InstallBusy("core:java", "21")
	b := errs.InstallBusy("core:node", "20")

	assert.True(t, errors.Is(a, b), "two errors of the same Kind should match via errors.Is")
	assert.False(t, errors.Is(a, errs.NoVersion("core:java")), "different Kinds should not match")
}

func TestErrorUnwrapExposesCause(t *testing.T) {
	cause := errors.New("checksum differs")
	err := errs.ChecksumMismatch("core:go", "1.22.0", cause)
	assert.Same(t, cause, errors.Unwrap(err))
}
