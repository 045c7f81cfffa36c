package errors

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWrap_PreservesCode(t *testing.T) {
	base := ConfigInvalid("bad setting")
	wrapped := Wrap(base, "loading config")

	assert.Equal(t, CodeConfigInvalid, GetCode(wrapped))
	assert.Contains(t, wrapped.Error(), "loading config")
}

func TestWrap_PlainErrorBecomesInternal(t *testing.T) {
	wrapped := Wrap(errors.New("boom"), "doing work")
	assert.Equal(t, CodeInternalError, GetCode(wrapped))
}

func TestWrap_NilPassesThrough(t *testing.T) {
	assert.Nil(t, Wrap(nil, "nothing"))
}

func TestUnwrap(t *testing.T) {
	cause := errors.New("boom")
	wrapped := IngestError("reading file", cause)
	assert.ErrorIs(t, wrapped, cause)
}

func TestGetCode_UnknownForForeignErrors(t *testing.T) {
	assert.Equal(t, "UNKNOWN", GetCode(errors.New("boom")))
}
