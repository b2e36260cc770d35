package errors

import (
	"log/slog"
	"slices"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAnnotatedError(t *testing.T) {
	err := New("test error", slog.String("id", "123"))
	require.Equal(t, "test error", err.Error())

	// Assert that wrapping sentinel errors work as expected.
	sentinel := NewSentinel("test error")
	require.NotErrorIs(t, err, NewSentinel("test error"))
	wrapped := Wrap(sentinel, "wrapped", slog.String("slide", "3"))
	require.ErrorIs(t, wrapped, sentinel)
	require.Equal(t, "wrapped: test error", wrapped.Error())

	// Ensure log values are coming through.
	var annotated AnnotatedError
	require.True(t, As(err, &annotated))
	group := annotated.LogValue().Group()
	require.Contains(t, group, slog.String("id", "123"))

	// Assert there's a valid source
	sourceIdx := slices.IndexFunc(group, func(attr slog.Attr) bool {
		return attr.Key == "source"
	})
	require.NotEqual(t, -1, sourceIdx)
	require.Contains(t, group[sourceIdx].Value.String(), "annotatederror_test.go")
}

func TestWrapCollectsInnerAttrs(t *testing.T) {
	inner := New("inner", slog.String("field", "selfie"))
	outer := Wrap(inner, "outer", slog.Int("position", 8))

	var annotated AnnotatedError
	require.True(t, As(outer, &annotated))
	group := annotated.LogValue().Group()
	require.Contains(t, group, slog.Int("position", 8))
	require.Contains(t, group, slog.String("field", "selfie"))
}

func TestWrapNil(t *testing.T) {
	require.NoError(t, Wrap(nil, "nothing to wrap"))
}

func TestSlogError(t *testing.T) {
	attr := SlogError(NewSentinel("plain"))
	require.Equal(t, "error", attr.Key)
	require.Equal(t, "plain", attr.Value.String())

	attr = SlogError(New("annotated"))
	require.Equal(t, slog.KindGroup, attr.Value.Resolve().Kind())
}
