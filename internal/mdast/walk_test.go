package mdast

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleTree() *Root {
	return &Root{Container: Children(
		&Heading{Level: 1, Container: Children(&Text{Text: "Title"})},
		&Paragraph{Container: Children(
			&Text{Text: "Hello "},
			&Emphasis{Container: Children(&Text{Text: "world"})},
			&SpecialChar{Type: SpecialEllipsis},
		)},
	)}
}

func TestWalk_PreOrder(t *testing.T) {
	var kinds []Kind
	completed := Walk(sampleTree(), func(n Node) WalkStatus {
		kinds = append(kinds, n.Kind())
		return WalkContinue
	})

	require.True(t, completed)
	assert.Equal(t, []Kind{
		KindRoot, KindHeading, KindText, KindParagraph,
		KindText, KindEmphasis, KindText, KindSpecialChar,
	}, kinds)
}

func TestWalk_SkipAndStop(t *testing.T) {
	var kinds []Kind
	Walk(sampleTree(), func(n Node) WalkStatus {
		kinds = append(kinds, n.Kind())
		if n.Kind() == KindHeading {
			return WalkSkipChildren
		}
		return WalkContinue
	})
	assert.NotContains(t, kinds[:3], KindText, "heading children must be skipped")

	count := 0
	completed := Walk(sampleTree(), func(n Node) WalkStatus {
		count++
		if n.Kind() == KindParagraph {
			return WalkStop
		}
		return WalkContinue
	})
	assert.False(t, completed)
	assert.Equal(t, 4, count)
}

func TestTextContent(t *testing.T) {
	got := TextContent(sampleTree().Children)
	assert.Equal(t, "TitleHello world…", got)
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "TableCell", KindTableCell.String())
	assert.Equal(t, "Unknown", Kind(-1).String())
	assert.Equal(t, "Unknown", Kind(999).String())
	assert.Equal(t, "right", AlignRight.String())
	assert.Equal(t, "Single", QuoteSingle.String())
	assert.Equal(t, "Nbsp", SpecialNbsp.String())
}

func TestDump_NotEmpty(t *testing.T) {
	out := Dump(sampleTree())
	assert.Contains(t, out, "Heading")
	assert.NotContains(t, out, "\x1b[")
}
