// Package assertions provides fluent assertions over HTTP responses, HTML/XML
// documents and JSON documents.
//
// Every assertion reports exactly one outcome to a Reporter: Pass when it
// holds, Fail with a Failure otherwise. Failure messages are stable and
// include the query that produced the checked values.
//
//	doc := assertions.NewHTML(assertions.T(t), body)
//	doc.Query("ul > li").Count(3)
//	doc.Query("p").TextContains("hello")
//	doc.AnchorExists("/search", assertions.Params{"q": "go"}, nil)
//
//	js := assertions.NewJSON(assertions.T(t), body)
//	js.Count("$.items[*]", 2)
//	js.Contains("$.items[*]", map[string]any{"id": 1})
package assertions
