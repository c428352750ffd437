package document

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const page = `<!DOCTYPE html>
<html>
<head><title>Page</title></head>
<body>
	<ul id="list"><li>first</li><li class="x">second <b>bold</b></li><li><!-- note -->third</li></ul>
	<a href="/foo?bar=1#top">link</a>
	<a>no href</a>
</body>
</html>`

func TestParseHTML_Select(t *testing.T) {
	doc, err := ParseHTML(page)
	require.NoError(t, err)
	assert.Equal(t, KindHTML, doc.Kind())

	nodes, err := doc.Select("#list li")
	require.NoError(t, err)
	require.Len(t, nodes, 3)
	assert.Equal(t, "first", nodes[0].TextContent())
	assert.Equal(t, "second bold", nodes[1].TextContent())
	assert.Equal(t, "third", nodes[2].TextContent())

	nodes, err = doc.Select("li.x")
	require.NoError(t, err)
	require.Len(t, nodes, 1)
	assert.Equal(t, 2, nodes[0].ChildCount())

	nodes, err = doc.Select("table")
	require.NoError(t, err)
	assert.Empty(t, nodes)
}

func TestParseHTML_XPath(t *testing.T) {
	doc, err := ParseHTML(page)
	require.NoError(t, err)

	nodes, err := doc.XPath("//a[@href]")
	require.NoError(t, err)
	require.Len(t, nodes, 1)

	href, ok := nodes[0].Attr("href")
	assert.True(t, ok)
	assert.Equal(t, "/foo?bar=1#top", href)

	_, ok = nodes[0].Attr("title")
	assert.False(t, ok)

	nodes, err = doc.XPath("//ul/li")
	require.NoError(t, err)
	assert.Len(t, nodes, 3)

	nodes, err = doc.XPath("//ul")
	require.NoError(t, err)
	require.Len(t, nodes, 1)
	assert.Equal(t, 3, nodes[0].ChildCount())
}

func TestParseHTML_Malformed(t *testing.T) {
	doc, err := ParseHTML(`<div><p>unclosed<span>text</div>`)
	require.NoError(t, err)

	nodes, err := doc.Select("span")
	require.NoError(t, err)
	require.Len(t, nodes, 1)
	assert.Equal(t, "text", nodes[0].TextContent())
}

func TestHTML_InvalidQueries(t *testing.T) {
	doc, err := ParseHTML(page)
	require.NoError(t, err)

	_, err = doc.Select("li[")
	var qerr *QueryError
	require.ErrorAs(t, err, &qerr)
	assert.Equal(t, "li[", qerr.Query)

	_, err = doc.XPath("//li[")
	require.ErrorAs(t, err, &qerr)
	assert.Equal(t, "//li[", qerr.Query)
}

func TestXPath_ScalarResultIsInvalid(t *testing.T) {
	htmlDoc, err := ParseHTML(page)
	require.NoError(t, err)
	xmlDoc, err := ParseXML(feed)
	require.NoError(t, err)

	for _, expr := range []string{"count(//li)", "string(//title)", "boolean(//Book)", "1 + 1"} {
		_, err := htmlDoc.XPath(expr)
		var qerr *QueryError
		require.ErrorAs(t, err, &qerr, expr)
		assert.ErrorIs(t, err, ErrNotNodeSet, expr)
		assert.Equal(t, expr, qerr.Query)

		_, err = xmlDoc.XPath(expr)
		assert.ErrorIs(t, err, ErrNotNodeSet, expr)
	}

	nodes, err := xmlDoc.XPath("(//Book)[2]")
	require.NoError(t, err)
	assert.Len(t, nodes, 1)
}

const feed = `<?xml version="1.0" encoding="UTF-8"?>
<catalog>
	<Book id="1"><title>Go</title></Book>
	<Book id="2"><title>XML</title><![CDATA[raw]]></Book>
</catalog>`

func TestParseXML_XPath(t *testing.T) {
	doc, err := ParseXML(feed)
	require.NoError(t, err)
	assert.Equal(t, KindXML, doc.Kind())

	nodes, err := doc.XPath("//Book")
	require.NoError(t, err)
	require.Len(t, nodes, 2)
	assert.Equal(t, "Go", nodes[0].TextContent())
	assert.Equal(t, "XMLraw", nodes[1].TextContent())

	id, ok := nodes[1].Attr("id")
	assert.True(t, ok)
	assert.Equal(t, "2", id)

	nodes, err = doc.XPath("//Book[@id='1']/title")
	require.NoError(t, err)
	require.Len(t, nodes, 1)
	assert.Equal(t, "Go", nodes[0].TextContent())
}

func TestParseXML_Select(t *testing.T) {
	doc, err := ParseXML(feed)
	require.NoError(t, err)

	nodes, err := doc.Select("book title")
	require.NoError(t, err)
	require.Len(t, nodes, 2)
	assert.Equal(t, "Go", nodes[0].TextContent())
	assert.Equal(t, "XML", nodes[1].TextContent())

	nodes, err = doc.Select(`book[id="2"]`)
	require.NoError(t, err)
	require.Len(t, nodes, 1)
	assert.Equal(t, 2, nodes[0].ChildCount())

	_, err = doc.Select("book[")
	var qerr *QueryError
	assert.ErrorAs(t, err, &qerr)
}

func TestParseXML_Errors(t *testing.T) {
	tests := []struct {
		name   string
		markup string
	}{
		{"empty", ``},
		{"plain text", `not xml at all`},
		{"mismatched tags", `<root><a></b></root>`},
		{"undefined entity", `<root>&nbsp;</root>`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseXML(tt.markup)
			var perr *ParseError
			require.ErrorAs(t, err, &perr)
			assert.Equal(t, KindXML, perr.Kind)
		})
	}
}

func TestParseXML_SuppressErrors(t *testing.T) {
	doc, err := ParseXML(`<root><item>a&nbsp;b</item></root>`, WithSuppressErrors(true))
	require.NoError(t, err)

	nodes, err := doc.XPath("//item")
	require.NoError(t, err)
	require.Len(t, nodes, 1)
	assert.Equal(t, "a\u00a0b", nodes[0].TextContent())
}
