package bytekv

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWrapPreservesKindForErrorsIs(t *testing.T) {
	err := Wrap(ErrNotFound, "key %x missing", []byte("abc"))
	require.True(t, errors.Is(err, ErrNotFound))
	require.False(t, errors.Is(err, ErrConflict))
}

func TestIsHelperMatchesStandardErrorsIs(t *testing.T) {
	err := Wrap(ErrConflict, "commit lock held")
	require.True(t, Is(err, ErrConflict))
	require.False(t, Is(err, ErrIo))
}

func TestKindString(t *testing.T) {
	require.Equal(t, "NotFound", ErrNotFound.Kind.String())
	require.Equal(t, "Conflict", ErrConflict.Kind.String())
}
