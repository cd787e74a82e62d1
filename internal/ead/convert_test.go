package ead

import (
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/mdead/internal/foundation/errors"
	"git.home.luguber.info/inful/mdead/internal/mdast"
	"git.home.luguber.info/inful/mdead/internal/xmlfmt"
)

func TestConvert_WrapOnly(t *testing.T) {
	res, err := Convert(doc(para(text("x"))), ConvertOptions{Wrap: "odd"})
	require.NoError(t, err)
	assert.Equal(t, "<odd>\n  <p>x</p>\n</odd>", res.Markup)
}

func TestConvert_WrapAndPretty(t *testing.T) {
	res, err := Convert(doc(
		&mdast.Heading{Level: 1, Container: mdast.Children(text("T"))},
		para(text("wait"), &mdast.SpecialChar{Type: mdast.SpecialEllipsis}),
	), ConvertOptions{Wrap: "scopecontent", Pretty: true})
	require.NoError(t, err)
	assert.Equal(t, "<scopecontent>\n  <head>T</head>\n  <p>wait…</p>\n</scopecontent>", res.Markup)
}

func TestConvert_PrettyIsIdempotent(t *testing.T) {
	root := doc(
		&mdast.BulletList{Container: mdast.Children(item(para(text("a"))), item(para(text("b"))))},
		&mdast.Verbatim{Text: "\ncode"},
	)
	res, err := Convert(root, ConvertOptions{Pretty: true})
	require.NoError(t, err)

	again, err := xmlfmt.Format(res.Markup)
	require.NoError(t, err)
	assert.Equal(t, res.Markup, again)
	assert.Equal(t, "<list>\n  <item>a</item>\n  <item>b</item>\n</list>\n<pre>\n  <code><lb/>code</code>\n</pre>", res.Markup)
}

func TestConvert_FormatterFailureIsFormatError(t *testing.T) {
	_, err := Convert(doc(para(text("x"))), ConvertOptions{
		Pretty: true,
		Formatter: FormatterFunc(func(string) (string, error) {
			return "", stderrors.New("boom")
		}),
	})
	require.Error(t, err)
	assert.True(t, errors.IsFormat(err))
	assert.False(t, errors.IsMalformedTree(err))
}

func TestConvert_InvalidPassthroughFailsFormatting(t *testing.T) {
	_, err := Convert(doc(para(&mdast.InlineHTML{Text: "<span>"}, text("x"))), ConvertOptions{Pretty: true})
	require.Error(t, err)
	assert.True(t, errors.IsFormat(err))

	res, err := Convert(doc(para(&mdast.InlineHTML{Text: "<span>"}, text("x"))), ConvertOptions{})
	require.NoError(t, err)
	assert.Equal(t, "<p><span>x</p>", res.Markup)
}

func TestConvert_MalformedTreeStopsBeforeFormatting(t *testing.T) {
	called := false
	_, err := Convert(doc(para(nil)), ConvertOptions{Pretty: true, Formatter: FormatterFunc(func(raw string) (string, error) {
		called = true
		return raw, nil
	})})
	require.Error(t, err)
	assert.True(t, errors.IsMalformedTree(err))
	assert.False(t, called)
}
