package assertions

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abdul-hamid-achik/hitassert/packages/document"
)

func TestNodeList(t *testing.T) {
	tests := []struct {
		name   string
		markup string
		query  string
		assert func(*NodeList)
		want   string
	}{
		{
			name:   "count passes",
			markup: `<body><p></p><p></p></body>`,
			query:  "p",
			assert: func(l *NodeList) { l.Count(2) },
		},
		{
			name:   "count fails",
			markup: `<body><p></p><p></p></body>`,
			query:  "p",
			assert: func(l *NodeList) { l.Count(3) },
			want:   `Expected to find 3 elements matching the query "p", actual: 2`,
		},
		{
			name:   "exists fails",
			markup: `<body></body>`,
			query:  "p",
			assert: func(l *NodeList) { l.Exists() },
			want:   `Expected to find at least one element matching the query "p"`,
		},
		{
			name:   "not exists fails",
			markup: `<body><p></p></body>`,
			query:  "p",
			assert: func(l *NodeList) { l.NotExists() },
			want:   `Expected to find 0 elements matching the query "p", actual: 1`,
		},
		{
			name:   "children count without matches reports not found",
			markup: `<body></body>`,
			query:  "p",
			assert: func(l *NodeList) { l.ChildrenCount(1) },
			want:   `Expected to find at least one element matching the query "p"`,
		},
		{
			name:   "children count counts text nodes",
			markup: `<body><p>text<b>bold</b></p></body>`,
			query:  "p",
			assert: func(l *NodeList) { l.ChildrenCount(2) },
		},
		{
			name:   "children count sums over matches",
			markup: `<body><p>a</p><p>b<i>c</i></p></body>`,
			query:  "p",
			assert: func(l *NodeList) { l.ChildrenCount(3) },
		},
		{
			name:   "children count fails",
			markup: `<body><p>text<b>bold</b></p></body>`,
			query:  "p",
			assert: func(l *NodeList) { l.ChildrenCount(1) },
			want:   `Expected to find 1 child elements for the query "p", actual: 2`,
		},
		{
			name:   "empty passes",
			markup: `<body><p></p></body>`,
			query:  "p",
			assert: func(l *NodeList) { l.Empty() },
		},
		{
			name:   "empty fails",
			markup: `<body><p>a</p></body>`,
			query:  "p",
			assert: func(l *NodeList) { l.Empty() },
			want:   `Expected to find 0 child elements for the query "p", actual: 1`,
		},
		{
			name:   "not empty fails",
			markup: `<body><p></p></body>`,
			query:  "p",
			assert: func(l *NodeList) { l.NotEmpty() },
			want:   `Expected to find at least one child element matching the query "p"`,
		},
		{
			name:   "not empty without matches reports not found",
			markup: `<body></body>`,
			query:  "p",
			assert: func(l *NodeList) { l.NotEmpty() },
			want:   `Expected to find at least one element matching the query "p"`,
		},
		{
			name:   "text equals holds for one of many",
			markup: `<body><p>first</p><p>second</p></body>`,
			query:  "p",
			assert: func(l *NodeList) { l.TextEquals("second") },
		},
		{
			name:   "text equals is not containment",
			markup: `<body><p>first</p><p>second</p></body>`,
			query:  "p",
			assert: func(l *NodeList) { l.TextEquals("sec") },
			want:   `Expected to find at least one element matching the query "p" with the text "sec"`,
		},
		{
			name:   "text equals without matches",
			markup: `<body></body>`,
			query:  "p",
			assert: func(l *NodeList) { l.TextEquals("x") },
			want:   `Expected to find at least one element matching the query "p"`,
		},
		{
			name:   "text not equals fails when one element equals",
			markup: `<body><p>first</p><p>second</p></body>`,
			query:  "p",
			assert: func(l *NodeList) { l.TextNotEquals("second") },
			want:   `Expected to find no elements matching the query "p" with the text "second"`,
		},
		{
			name:   "text not equals passes",
			markup: `<body><p>first</p><p>second</p></body>`,
			query:  "p",
			assert: func(l *NodeList) { l.TextNotEquals("third") },
		},
		{
			name:   "text contains passes",
			markup: `<body><p>first</p><p>second</p></body>`,
			query:  "p",
			assert: func(l *NodeList) { l.TextContains("sec") },
		},
		{
			name:   "text contains fails",
			markup: `<body><p>first</p><p>second</p></body>`,
			query:  "p",
			assert: func(l *NodeList) { l.TextContains("third") },
			want:   `Expected to find at least one element matching the query "p" containing the text "third"`,
		},
		{
			name:   "text not contains fails",
			markup: `<body><p>first</p><p>second</p></body>`,
			query:  "p",
			assert: func(l *NodeList) { l.TextNotContains("sec") },
			want:   `Expected to find no elements matching the query "p" containing the text "sec"`,
		},
		{
			name:   "text not contains passes",
			markup: `<body><p>first</p><p>second</p></body>`,
			query:  "p",
			assert: func(l *NodeList) { l.TextNotContains("third") },
		},
		{
			name:   "matches regex passes",
			markup: `<body><p>12</p><p>34</p></body>`,
			query:  "p",
			assert: func(l *NodeList) { l.MatchesRegex(`/^\d+$/`) },
		},
		{
			name:   "matches regex fails on one element",
			markup: `<body><p>12</p><p>ab</p></body>`,
			query:  "p",
			assert: func(l *NodeList) { l.MatchesRegex(`/^\d+$/`) },
			want:   `Expected all elements at the query "p" to match the regular expression "/^\d+$/"`,
		},
		{
			name:   "not matches regex passes",
			markup: `<body><p>ab</p><p>cd</p></body>`,
			query:  "p",
			assert: func(l *NodeList) { l.NotMatchesRegex(`^\d+$`) },
		},
		{
			name:   "not matches regex fails on one element",
			markup: `<body><p>12</p><p>ab</p></body>`,
			query:  "p",
			assert: func(l *NodeList) { l.NotMatchesRegex(`/^\d+$/`) },
			want:   `Expected all elements at the query "p" not to match the regular expression "/^\d+$/"`,
		},
		{
			name:   "xpath routed from query",
			markup: `<body><ul><li>a</li><li>b</li></ul></body>`,
			query:  "//ul/li",
			assert: func(l *NodeList) { l.Count(2) },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := NewRecorder()
			tt.assert(NewHTML(rec, tt.markup).Query(tt.query))
			requireOutcome(t, rec, tt.want)
		})
	}
}

func TestNodeList_ChildrenCountPreconditionKind(t *testing.T) {
	rec := NewRecorder()
	NewHTML(rec, `<body></body>`).Query("p").ChildrenCount(1)
	requireKind(t, rec, NotFound)
}

func TestNodeList_InvalidQuery(t *testing.T) {
	rec := NewRecorder()
	doc := NewHTML(rec, `<body><p>a</p></body>`)

	doc.Query("p[").Count(0)
	requireKind(t, rec, InvalidQuery)

	doc.XPath("//p[").Exists()
	requireKind(t, rec, InvalidQuery)

	doc.Query("p").MatchesRegex("/(/")
	requireKind(t, rec, InvalidQuery)

	doc.XPath("count(//p)").NotExists()
	requireKind(t, rec, InvalidQuery)

	assert.Len(t, rec.Failures(), 4)
}

func TestNodeList_Idempotent(t *testing.T) {
	rec := NewRecorder()
	list := NewHTML(rec, `<body><p>first</p><p>second</p></body>`).Query("p")

	list.TextContains("third")
	list.TextContains("third")

	failures := rec.Failures()
	require.Len(t, failures, 2)
	assert.Equal(t, failures[0], failures[1])
}

func TestNodeList_Texts(t *testing.T) {
	list := NewHTML(NewRecorder(), `<ul><li>a</li><li>b <em>c</em></li></ul>`).Query("li")
	assert.Equal(t, 2, list.Len())
	assert.Equal(t, []string{"a", "b c"}, list.Texts())
	assert.Equal(t, "li", list.Query())
}

func TestNodeList_ExistentialDuality(t *testing.T) {
	markup := `<body><p>first</p><p>second</p></body>`
	for _, s := range []string{"first", "sec", "third", ""} {
		contains, notContains := NewRecorder(), NewRecorder()
		NewHTML(contains, markup).Query("p").TextContains(s)
		NewHTML(notContains, markup).Query("p").TextNotContains(s)
		assert.NotEqual(t, contains.Failed(), notContains.Failed(), s)

		equals, notEquals := NewRecorder(), NewRecorder()
		NewHTML(equals, markup).Query("p").TextEquals(s)
		NewHTML(notEquals, markup).Query("p").TextNotEquals(s)
		assert.NotEqual(t, equals.Failed(), notEquals.Failed(), s)
	}
}

func TestXML_Document(t *testing.T) {
	rec := NewRecorder()
	doc := NewXML(rec, `<?xml version="1.0"?><feed><entry id="1">One</entry><entry id="2">Two</entry></feed>`)

	doc.XPath("//entry").Count(2)
	doc.Query("entry").TextEquals("Two")
	doc.XPath("//entry[@id='1']").TextEquals("One")

	assert.False(t, rec.Failed())
	assert.Equal(t, 3, rec.Passes())
}

func TestXML_ParseErrorIsReportedOnce(t *testing.T) {
	rec := NewRecorder()
	doc := NewXML(rec, `<feed><entry></feed>`)

	doc.Query("entry").Count(1)
	doc.XPath("//entry").Exists()
	doc.AnchorExists("/", nil, nil)

	require.Len(t, rec.Results(), 1)
	requireKind(t, rec, ParseError)
}

func TestXML_SuppressErrors(t *testing.T) {
	rec := NewRecorder()
	doc := NewXML(rec, `<feed><entry>a&nbsp;b</entry></feed>`, document.WithSuppressErrors(true))
	doc.XPath("//entry").Count(1)
	assert.False(t, rec.Failed())
}

func TestT_Passes(t *testing.T) {
	doc := NewHTML(T(t), `<body><p>hello</p></body>`)
	doc.Query("p").Exists()
	doc.Query("p").TextEquals("hello")
	doc.Query("div").NotExists()
}
