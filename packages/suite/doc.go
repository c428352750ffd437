// Package suite runs declarative assertion suites written in YAML.
//
// A suite lists checks. Each check names a subject (an HTTP request, a file
// or inline content) and the expectations to evaluate against it:
//
//	name: homepage
//	vars:
//	  base: http://localhost:8080
//	wait_for:
//	  url: "{{base}}/health"
//	checks:
//	  - name: index
//	    request:
//	      url: "{{base}}/"
//	    expect:
//	      - status: 200
//	      - content_type: text/html
//	      - css: {query: "nav a", count: 3}
//	      - anchor: {path: /login, query: {next: /}}
//	  - name: api
//	    request:
//	      url: "{{base}}/api/items"
//	    expect:
//	      - json: {path: "$.items[*].id", type: number}
//	    capture:
//	      first: items.0.id
//
// wait_for polls a URL until it answers before the first check runs.
// Every expectation is evaluated through the assertions package and recorded,
// so one run reports all failures of a check rather than the first.
package suite
