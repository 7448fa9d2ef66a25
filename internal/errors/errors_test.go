package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestErrorStringIncludesCategoryAndContext(t *testing.T) {
	err := SectionNotFound("introduction", "intro.md")
	require.Equal(t, CategoryContent, err.Category)
	require.Contains(t, err.Error(), "content (fatal)")
	require.Contains(t, err.Error(), "section=introduction")
	require.Contains(t, err.Error(), "path=intro.md")
}

func TestContextRenderingOrderIsStable(t *testing.T) {
	err := DataColumnNotNumeric("pressure", 3)
	require.Equal(t, err.Error(), err.Error())
	require.Contains(t, err.Error(), "[column=pressure] [row=3]")
}

func TestUnwrapExposesCause(t *testing.T) {
	cause := errors.New("boom")
	err := ConfigMalformed("bad json", cause)
	require.ErrorIs(t, err, cause)
}

func TestIsCategory(t *testing.T) {
	require.True(t, IsCategory(ImageTypeUnknown("sparkline"), CategoryImage))
	require.False(t, IsCategory(errors.New("plain"), CategoryImage))
	require.Equal(t, CategoryInternal, GetCategory(errors.New("plain")))
}

func TestWrappedErrorKeepsClassification(t *testing.T) {
	wrapped := fmt.Errorf("load study: %w", ConfigRequired("template"))
	require.True(t, IsCategory(wrapped, CategoryConfig))
	require.Equal(t, CategoryConfig, GetCategory(wrapped))
	require.Equal(t, 7, ExitCodeFor(wrapped))
}

func TestExitCodes(t *testing.T) {
	require.Equal(t, 0, ExitCodeFor(nil))
	require.Equal(t, 7, ExitCodeFor(ConfigRequired("template")))
	require.Equal(t, 3, ExitCodeFor(SectionNotFound("a", "b")))
	require.Equal(t, 3, ExitCodeFor(DataColumnUnknown("x")))
	require.Equal(t, 4, ExitCodeFor(PlaceholderUnresolved("avg_flow_rate")))
	require.Equal(t, 1, ExitCodeFor(errors.New("plain")))
}
