package wizard_test

import (
	"testing"

	"github.com/myrjola/surprise/internal/wizard"
	"github.com/stretchr/testify/require"
)

func TestSlides(t *testing.T) {
	slides := wizard.Slides()
	require.Len(t, slides, 11)
	for i, slide := range slides {
		require.Equal(t, i, slide.Index)
		require.NotEmpty(t, slide.Title)
		got, ok := wizard.SlideAt(i)
		require.True(t, ok)
		require.Equal(t, slide, got)
	}
	require.Equal(t, wizard.KindSubmit, slides[wizard.SlideSelfie].Kind)
	require.Equal(t, wizard.KindGate, slides[wizard.SlidePassword].Kind)
	require.Equal(t, wizard.KindTerminal, slides[wizard.SlideReveal].Kind)

	_, ok := wizard.SlideAt(wizard.LastSlide + 1)
	require.False(t, ok)

	// Callers get their own copy of the catalogue.
	slides[0].Title = "changed"
	require.Equal(t, "Hey there", wizard.Slides()[0].Title)
}
