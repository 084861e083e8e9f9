package isgerr

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestErrorMessage(t *testing.T) {
	e := New(CodeFileNotFound, "no such file")
	require.Equal(t, "file-not-found: no such file", e.Error())

	wrapped := Wrap(CodeIO, "reading manifest", errors.New("disk full"))
	require.Equal(t, "io: reading manifest: disk full", wrapped.Error())
}

func TestWrapNilCause(t *testing.T) {
	require.Nil(t, Wrap(CodeIO, "no cause here", nil))
}

func TestUnwrap(t *testing.T) {
	cause := errors.New("underlying")
	e := Wrap(CodeCryptoIntegrity, "tag mismatch", cause)
	require.ErrorIs(t, e, cause)
	require.Equal(t, cause, errors.Unwrap(e))
}

func TestIsCategory(t *testing.T) {
	e := Wrap(CodeStorageNotFound, "missing", errors.New("404"))
	require.True(t, Is(e, CodeStorageNotFound))
	require.False(t, Is(e, CodeStorageNetwork))
	require.Equal(t, CodeStorageNotFound, CodeOf(e))
}

func TestCodeOfUntaggedError(t *testing.T) {
	require.Equal(t, CodeOther, CodeOf(errors.New("plain error")))
}

func TestErrorsAs(t *testing.T) {
	var target *Error
	err := error(Wrap(CodeErasureInsufficient, "too many missing shards", errors.New("k+1 blanked")))
	require.True(t, errors.As(err, &target))
	require.Equal(t, CodeErasureInsufficient, target.Code)
}
