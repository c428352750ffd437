package env

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestResolver_Resolve(t *testing.T) {
	t.Setenv("HITASSERT_TEST_HOST", "example.com")

	tests := []struct {
		name      string
		input     string
		variables map[string]any
		captures  map[string]any
		expected  string
	}{
		{
			name:     "no placeholders",
			input:    "hello world",
			expected: "hello world",
		},
		{
			name:      "simple variable",
			input:     "hello {{name}}",
			variables: map[string]any{"name": "world"},
			expected:  "hello world",
		},
		{
			name:      "whitespace inside braces",
			input:     "{{ name }}",
			variables: map[string]any{"name": "x"},
			expected:  "x",
		},
		{
			name:      "non string variable",
			input:     "{{n}}/{{f}}/{{b}}",
			variables: map[string]any{"n": 3, "f": 1.5, "b": true},
			expected:  "3/1.5/true",
		},
		{
			name:      "capture shadows variable",
			input:     "{{id}}",
			variables: map[string]any{"id": "var"},
			captures:  map[string]any{"id": "cap"},
			expected:  "cap",
		},
		{
			name:     "environment variable",
			input:    "https://{{$HITASSERT_TEST_HOST}}/",
			expected: "https://example.com/",
		},
		{
			name:     "function call",
			input:    `Basic {{base64("u:p")}}`,
			expected: "Basic dTpw",
		},
		{
			name:     "unresolved stays as-is",
			input:    "hello {{unknown}} {{$HITASSERT_TEST_UNSET}} {{nope()}}",
			expected: "hello {{unknown}} {{$HITASSERT_TEST_UNSET}} {{nope()}}",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewResolver()
			r.SetVariables(tt.variables)
			for k, v := range tt.captures {
				r.SetCapture("", k, v)
			}
			assert.Equal(t, tt.expected, r.Resolve(tt.input))
		})
	}
}

func TestResolver_SetCapture(t *testing.T) {
	r := NewResolver()
	r.SetCapture("login", "token", "abc")

	assert.Equal(t, "abc/abc", r.Resolve("{{token}}/{{login.token}}"))
	assert.True(t, r.HasVariable("login.token"))
	assert.False(t, r.HasVariable("logout.token"))
}

func TestResolver_Unresolved(t *testing.T) {
	r := NewResolver()
	r.SetVariable("bar", "middle")

	assert.Nil(t, r.Unresolved("no placeholders"))
	assert.Equal(t, []string{"foo", "setup.id"}, r.Unresolved("{{foo}} and {{bar}} and {{ setup.id }}"))
	assert.Empty(t, r.Unresolved("{{uuid()}}"))
}

func TestResolver_LogsUnresolved(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	r := NewResolver()
	r.SetLogger(zap.New(core))

	r.Resolve("{{missing}} {{nope()}}")

	entries := logs.All()
	if assert.Len(t, entries, 2) {
		assert.Equal(t, "unresolved variable", entries[0].Message)
		assert.Equal(t, "function call failed", entries[1].Message)
		assert.True(t, strings.Contains(entries[1].ContextMap()["error"].(string), "unknown function"))
	}
}

func TestResolver_ResolveAll(t *testing.T) {
	r := NewResolver()
	r.SetVariable("token", "t")

	assert.Nil(t, r.ResolveAll(nil))
	assert.Equal(t,
		map[string]string{"Authorization": "Bearer t"},
		r.ResolveAll(map[string]string{"Authorization": "Bearer {{token}}"}))
}

func TestResolver_Clone(t *testing.T) {
	r := NewResolver()
	r.SetVariable("a", "1")

	clone := r.Clone()
	clone.SetVariable("a", "2")

	assert.Equal(t, "1", r.Resolve("{{a}}"))
	assert.Equal(t, "2", clone.Resolve("{{a}}"))
}
