// Package http fetches and holds HTTP responses for assertion.
//
// Response is a fully read response with multi-valued headers; it satisfies
// assertions.ResponseReader, and can be built from a net/http response
// (FromStdlib), a handler recording (FromRecorder) or the Client:
//   - Configurable timeouts and redirect handling
//   - Default headers, basic/bearer/API key auth
//   - Client-side rate limiting
package http
