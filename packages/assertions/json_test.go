package assertions

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abdul-hamid-achik/hitassert/packages/jsonvalue"
)

type jsonCase struct {
	name   string
	json   string
	assert func(*JSON)
	want   string
}

func runJSONCases(t *testing.T, tests []jsonCase) {
	t.Helper()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := NewRecorder()
			tt.assert(NewJSON(rec, tt.json))
			requireOutcome(t, rec, tt.want)
		})
	}
}

func TestJSON_Count(t *testing.T) {
	runJSONCases(t, []jsonCase{
		{"passes", `{"user": [{}, {}]}`, func(j *JSON) { j.Count("$.user[*]", 2) }, ""},
		{"fails", `{"user": [{}, {}]}`, func(j *JSON) { j.Count("$.user[*]", 3) },
			`Expected to find 3 elements matching the JSONPath "$.user[*]", actual: 2`},
		{"fails on empty array", `{"user": []}`, func(j *JSON) { j.Count("$.user[*]", 2) },
			`Expected to find 2 elements matching the JSONPath "$.user[*]", actual: 0`},
		{"fails on missing path", `{}`, func(j *JSON) { j.Count("$.user[*]", 2) },
			`Expected to find 2 elements matching the JSONPath "$.user[*]", actual: 0`},
	})
}

func TestJSON_Filter(t *testing.T) {
	users := `{"users": [{"name": "Ann", "age": 5}, {"name": "Bob", "age": 20}]}`
	runJSONCases(t, []jsonCase{
		{"count passes", users, func(j *JSON) { j.Count("$.users[?(@.age > 10)]", 1) }, ""},
		{"count fails", users, func(j *JSON) { j.Count("$.users[?(@.age > 10)]", 2) },
			`Expected to find 2 elements matching the JSONPath "$.users[?(@.age > 10)]", actual: 1`},
		{"not exists passes", users, func(j *JSON) { j.NotExists("$.users[?(@.age > 30)]") }, ""},
		{"equals on filtered field", users, func(j *JSON) { j.Equals(`$.users[?(@.age > 10)].name`, "Bob") }, ""},
		{"contains on filtered object", users, func(j *JSON) {
			j.Contains(`$.users[?(@.name == "Ann")]`, map[string]any{"age": 5})
		}, ""},
	})
}

func TestJSON_Exists(t *testing.T) {
	runJSONCases(t, []jsonCase{
		{"passes", `{"user": [{}, {}]}`, func(j *JSON) { j.Exists("$.user") }, ""},
		{"passes on empty string", `{"user": ""}`, func(j *JSON) { j.Exists("$.user") }, ""},
		{"passes on empty array", `{"user": []}`, func(j *JSON) { j.Exists("$.user") }, ""},
		{"passes on empty object", `{"user": {}}`, func(j *JSON) { j.Exists("$.user") }, ""},
		{"fails", `{}`, func(j *JSON) { j.Exists("$.user") },
			`Expected to find at least one element matching the JSONPath "$.user"`},
		{"not exists passes", `{}`, func(j *JSON) { j.NotExists("$.user") }, ""},
		{"not exists fails", `{"user": [{}, {}]}`, func(j *JSON) { j.NotExists("$.user") },
			`Expected to find 0 elements matching the JSONPath "$.user", actual: 1`},
	})
}

func TestJSON_Empty(t *testing.T) {
	runJSONCases(t, []jsonCase{
		{"passes", `{"user": [null, false, 0, "", [], {}]}`, func(j *JSON) { j.Empty("$.user[*]") }, ""},
		{"fails", `{"user": [null, false, 0, "", [null], {}]}`, func(j *JSON) { j.Empty("$.user[*]") },
			`Expected to find an empty element at position 4 matching the JSONPath "$.user[*]", actual: [null]`},
		{"fails on missing path", `{}`, func(j *JSON) { j.Empty("$.user[*]") },
			`Expected to find at least one element matching the JSONPath "$.user[*]"`},
		{"not empty passes", `{"user": [true, 1, "string", [null], {"a": 1}]}`, func(j *JSON) { j.NotEmpty("$.user[*]") }, ""},
		{"not empty fails", `{"user": [true, 1, "", [null], {"a": 1}]}`, func(j *JSON) { j.NotEmpty("$.user[*]") },
			`Expected to find a non-empty element at position 2 matching the JSONPath "$.user[*]", actual: ""`},
		{"not empty fails on missing path", `{}`, func(j *JSON) { j.NotEmpty("$.user[*]") },
			`Expected to find at least one element matching the JSONPath "$.user[*]"`},
	})
}

func TestJSON_Equals(t *testing.T) {
	runJSONCases(t, []jsonCase{
		{"null", `{"user": null}`, func(j *JSON) { j.Equals("$.user", nil) }, ""},
		{"boolean", `{"user": false}`, func(j *JSON) { j.Equals("$.user", false) }, ""},
		{"number", `{"user": 12}`, func(j *JSON) { j.Equals("$.user", 12) }, ""},
		{"string", `{"user": "string"}`, func(j *JSON) { j.Equals("$.user", "string") }, ""},
		{"array", `{"user": [null, false, 12, "string", [], {}]}`,
			func(j *JSON) { j.Equals("$.user", []any{nil, false, 12, "string", []any{}, []any{}}) }, ""},
		{"object", `{"user": {"age": 12}}`, func(j *JSON) { j.Equals("$.user", map[string]any{"age": 12}) }, ""},
		{"one of many", `{"user": [1, 2, {"age": 12}, 3]}`,
			func(j *JSON) { j.Equals("$.user[*]", map[string]any{"age": 12}) }, ""},
		{"null among many", `{"user": [1, 2, null, 3]}`, func(j *JSON) { j.Equals("$.user[*]", nil) }, ""},
		{"missing path", `{}`, func(j *JSON) { j.Equals("$.user", nil) },
			`Expected to find at least one element matching the JSONPath "$.user"`},
		{"object is not partial", `{"user": {"age": 12, "name": "John"}}`,
			func(j *JSON) { j.Equals("$.user", map[string]any{"age": 12}) },
			`Expected to find at least one element with the exact value {"age":12} matching the JSONPath "$.user"`},
		{"no element equal", `{"user": [{}, {"age": 12, "name": "John"}]}`,
			func(j *JSON) { j.Equals("$.user[*]", map[string]any{"age": 12}) },
			`Expected to find at least one element with the exact value {"age":12} matching the JSONPath "$.user[*]"`},
		{"number is not string", `{"user": 12}`, func(j *JSON) { j.Equals("$.user", "12") },
			`Expected to find at least one element with the exact value "12" matching the JSONPath "$.user"`},
	})
}

func TestJSON_NotEquals(t *testing.T) {
	runJSONCases(t, []jsonCase{
		{"one element", `{"user": "abc"}`, func(j *JSON) { j.NotEquals("$.user", "def") }, ""},
		{"many elements", `{"user": ["abc", "def"]}`, func(j *JSON) { j.NotEquals("$.user[*]", "ghi") }, ""},
		{"missing path", `{}`, func(j *JSON) { j.NotEquals("$.user", nil) },
			`Expected to find at least one element matching the JSONPath "$.user"`},
		{"equal", `{"user": "string"}`, func(j *JSON) { j.NotEquals("$.user", "string") },
			`Expected to find none elements with the exact value "string" matching the JSONPath "$.user"`},
		{"one of many equal", `{"user": ["first", "string"]}`, func(j *JSON) { j.NotEquals("$.user[*]", "string") },
			`Expected to find none elements with the exact value "string" matching the JSONPath "$.user[*]"`},
	})
}

func TestJSON_Contains(t *testing.T) {
	runJSONCases(t, []jsonCase{
		{"empty string", `{"user": ["first", true, 12, {}, "second"]}`, func(j *JSON) { j.Contains("$.user[*]", "") }, ""},
		{"substring", `{"user": ["first", true, 12, {}, "second"]}`, func(j *JSON) { j.Contains("$.user[*]", "sec") }, ""},
		{"empty array", `{"user": [{"a": 1, "b": 2}, true, 12, "string", {"c": 3}]}`,
			func(j *JSON) { j.Contains("$.user[*]", []any{}) }, ""},
		{"partial object", `{"user": [{"a": 1, "b": 2, "d": null}, true, 12, "string", {"c": 3}]}`,
			func(j *JSON) { j.Contains("$.user[*]", map[string]any{"b": 2, "d": nil}) }, ""},
		{"nested partial object", `{"user": [{"a": 1, "b": {"c": {"d": 4, "null": null}, "e": 5}}, true, 12, "string", {"f": 6}]}`,
			func(j *JSON) {
				j.Contains("$.user[*]", map[string]any{"b": map[string]any{"c": map[string]any{"d": 4, "null": nil}}})
			}, ""},
		{"missing path", `{}`, func(j *JSON) { j.Contains("$.user[*]", "") },
			`Expected to find at least one element matching the JSONPath "$.user[*]"`},
		{"string not contained", `{"user": ["first", "second"]}`, func(j *JSON) { j.Contains("$.user[*]", "third") },
			`Expected to find at least one element matching the JSONPath "$.user[*]" and containing "third"`},
		{"object not contained", `{"user": [{"a": 1, "b": 2}, {"c": 3}]}`,
			func(j *JSON) { j.Contains("$.user[*]", map[string]any{"d": 4}) },
			`Expected to find at least one element matching the JSONPath "$.user[*]" and containing {"d":4}`},
		{"no matches", `{"user": []}`, func(j *JSON) { j.Contains("$.user[*]", "third") },
			`Expected to find at least one element matching the JSONPath "$.user[*]"`},
	})
}

func TestJSON_NotContains(t *testing.T) {
	runJSONCases(t, []jsonCase{
		{"no matches", `{"user": []}`, func(j *JSON) { j.NotContains("$.user[*]", "thi") },
			`Expected to find at least one element matching the JSONPath "$.user[*]"`},
		{"string not contained", `{"user": ["first", true, 12, "second"]}`, func(j *JSON) { j.NotContains("$.user[*]", "thi") }, ""},
		{"object not contained", `{"user": [{"a": 1}, true, 12, {"c": 3}]}`,
			func(j *JSON) { j.NotContains("$.user[*]", map[string]any{"b": 2}) }, ""},
		{"nested kind mismatch", `{"user": [{"a": {"b": 2}}, {"c": 3}]}`,
			func(j *JSON) { j.NotContains("$.user[*]", map[string]any{"a": map[string]any{"b": nil}}) }, ""},
		{"empty string", `{"user": ["first", true, 12, "second"]}`, func(j *JSON) { j.NotContains("$.user[*]", "") },
			`Expected to find no elements matching the JSONPath "$.user[*]" and containing ""`},
		{"string contained", `{"user": ["first", true, 12, "second"]}`, func(j *JSON) { j.NotContains("$.user[*]", "second") },
			`Expected to find no elements matching the JSONPath "$.user[*]" and containing "second"`},
		{"object contained", `{"user": [{"a": 1, "b": 2, "c": null}, {"d": 4}]}`,
			func(j *JSON) { j.NotContains("$.user[*]", map[string]any{"b": 2, "c": nil}) },
			`Expected to find no elements matching the JSONPath "$.user[*]" and containing {"b":2,"c":null}`},
		{"nested object contained", `{"user": [{"a": 1, "b": {"c": 3, "d": null}}, {"d": 4}]}`,
			func(j *JSON) { j.NotContains("$.user[*]", map[string]any{"b": map[string]any{"c": 3, "d": nil}}) },
			`Expected to find no elements matching the JSONPath "$.user[*]" and containing {"b":{"c":3,"d":null}}`},
	})
}

func TestJSON_Regex(t *testing.T) {
	runJSONCases(t, []jsonCase{
		{"no elements", `{"user": []}`, func(j *JSON) { j.MatchesRegex("$.user[*]", `/^\d+$/`) },
			`Expected to find at least one element matching the JSONPath "$.user[*]"`},
		{"all match", `{"user": ["12", "23"]}`, func(j *JSON) { j.MatchesRegex("$.user[*]", `/^\d+$/`) }, ""},
		{"not a string", `{"user": [12, "23"]}`, func(j *JSON) { j.MatchesRegex("$.user[*]", `/^\d+$/`) },
			`Expected all elements to be string for the JSONPath "$.user[*]"`},
		{"one does not match", `{"user": ["12", "asd"]}`, func(j *JSON) { j.MatchesRegex("$.user[*]", `/^\d+$/`) },
			`Expected all elements matching the JSONPath "$.user[*]" to match regular expression "/^\d+$/"`},
		{"case insensitive flag", `{"user": ["ABC"]}`, func(j *JSON) { j.MatchesRegex("$.user[*]", `/^abc$/i`) }, ""},
		{"none match", `{"user": ["abc", "def"]}`, func(j *JSON) { j.NotMatchesRegex("$.user[*]", `/^\d+$/`) }, ""},
		{"one matches", `{"user": ["12", "ads"]}`, func(j *JSON) { j.NotMatchesRegex("$.user[*]", `/^\d+$/`) },
			`Expected all elements matching the JSONPath "$.user[*]" not to match regular expression "/^\d+$/"`},
		{"not a string when negated", `{"user": [12, "23"]}`, func(j *JSON) { j.NotMatchesRegex("$.user[*]", `/^\d+$/`) },
			`Expected all elements to be string for the JSONPath "$.user[*]"`},
		{"missing path", `{}`, func(j *JSON) { j.NotMatchesRegex("$.user[*]", `/^\d+$/`) },
			`Expected to find at least one element matching the JSONPath "$.user[*]"`},
	})
}

func TestJSON_Types(t *testing.T) {
	runJSONCases(t, []jsonCase{
		{"null", `{"user": [null, null]}`, func(j *JSON) { j.Null("$.user[*]") }, ""},
		{"null missing path", `{}`, func(j *JSON) { j.Null("$.user[*]") },
			`Expected to find at least one element matching the JSONPath "$.user[*]"`},
		{"null not all", `{"user": [null, 1]}`, func(j *JSON) { j.Null("$.user[*]") },
			`Expected all elements to be null for the JSONPath "$.user[*]"`},
		{"not null", `{"user": [1, 2]}`, func(j *JSON) { j.NotNull("$.user[*]") }, ""},
		{"not null with one null", `{"user": [null, 1]}`, func(j *JSON) { j.NotNull("$.user[*]") },
			`Expected all elements not to be null for the JSONPath "$.user[*]"`},
		{"boolean", `{"user": [true, false]}`, func(j *JSON) { j.Boolean("$.user[*]") }, ""},
		{"boolean not all", `{"user": [1, true]}`, func(j *JSON) { j.Boolean("$.user[*]") },
			`Expected all elements to be boolean for the JSONPath "$.user[*]"`},
		{"not boolean", `{"user": [1, 2]}`, func(j *JSON) { j.NotBoolean("$.user[*]") }, ""},
		{"not boolean with one", `{"user": [null, false]}`, func(j *JSON) { j.NotBoolean("$.user[*]") },
			`Expected all elements not to be boolean for the JSONPath "$.user[*]"`},
		{"number", `{"user": [12, 12.5]}`, func(j *JSON) { j.Number("$.user[*]") }, ""},
		{"number not all", `{"user": ["string", 1]}`, func(j *JSON) { j.Number("$.user[*]") },
			`Expected all elements to be number for the JSONPath "$.user[*]"`},
		{"not number", `{"user": [true, false]}`, func(j *JSON) { j.NotNumber("$.user[*]") }, ""},
		{"not number with float", `{"user": [null, 1.5]}`, func(j *JSON) { j.NotNumber("$.user[*]") },
			`Expected all elements not to be number for the JSONPath "$.user[*]"`},
		{"string", `{"user": ["abc", "def"]}`, func(j *JSON) { j.String("$.user[*]") }, ""},
		{"string not all", `{"user": ["string", 1]}`, func(j *JSON) { j.String("$.user[*]") },
			`Expected all elements to be string for the JSONPath "$.user[*]"`},
		{"not string", `{"user": [1, 2]}`, func(j *JSON) { j.NotString("$.user[*]") }, ""},
		{"not string with one", `{"user": [1, "string"]}`, func(j *JSON) { j.NotString("$.user[*]") },
			`Expected all elements not to be string for the JSONPath "$.user[*]"`},
		{"array", `{"user": [[], [null]]}`, func(j *JSON) { j.Array("$.user[*]") }, ""},
		{"empty object is an array", `{"user": [{}]}`, func(j *JSON) { j.Array("$.user[*]") }, ""},
		{"array not all", `{"user": [[], "string"]}`, func(j *JSON) { j.Array("$.user[*]") },
			`Expected all elements to be array for the JSONPath "$.user[*]"`},
		{"not array", `{"user": [12, "string"]}`, func(j *JSON) { j.NotArray("$.user[*]") }, ""},
		{"not array with one", `{"user": [[], "string"]}`, func(j *JSON) { j.NotArray("$.user[*]") },
			`Expected all elements not to be array for the JSONPath "$.user[*]"`},
		{"object", `{"user": [{"a": 1}, {"b": 2}]}`, func(j *JSON) { j.Object("$.user[*]") }, ""},
		{"object not all", `{"user": [{"a": 1}, "string"]}`, func(j *JSON) { j.Object("$.user[*]") },
			`Expected all elements to be object for the JSONPath "$.user[*]"`},
		{"not object", `{"user": [12, "string"]}`, func(j *JSON) { j.NotObject("$.user[*]") }, ""},
		{"not object with one", `{"user": [{"a": 1}, "string"]}`, func(j *JSON) { j.NotObject("$.user[*]") },
			`Expected all elements not to be object for the JSONPath "$.user[*]"`},
	})
}

func TestJSON_TypeKind(t *testing.T) {
	rec := NewRecorder()
	NewJSON(rec, `{"user": [null, 1]}`).Null("$.user[*]")
	requireKind(t, rec, WrongType)
}

func TestJSON_InvalidJSON(t *testing.T) {
	rec := NewRecorder()
	j := NewJSON(rec, `{"user": `)

	j.Exists("$.user")
	j.Count("$.user", 1)
	assert.Nil(t, j.Find("$.user"))
	assert.Nil(t, j.Root())

	require.Len(t, rec.Results(), 1)
	requireKind(t, rec, ParseError)
	assert.Equal(t, "string does not contain a valid JSON object", rec.Failures()[0].Message)
	assert.ErrorIs(t, rec.Failures()[0], jsonvalue.ErrInvalidJSON)
}

func TestJSON_InvalidQuery(t *testing.T) {
	rec := NewRecorder()
	j := NewJSON(rec, `{"user": []}`)

	j.Count("$.user[", 0)
	requireKind(t, rec, InvalidQuery)

	assert.Nil(t, j.Find("$.user["))
	assert.Len(t, rec.Failures(), 2)
}

func TestJSON_Find(t *testing.T) {
	j := NewJSON(NewRecorder(), `{"items": [{"id": 1}, {"id": 2}]}`)
	ids := j.Find("$.items[*].id")
	assert.Equal(t, []jsonvalue.Value{jsonvalue.Number(1), jsonvalue.Number(2)}, ids)
}

func TestJSON_ExistentialDuality(t *testing.T) {
	doc := `{"user": ["first", {"a": 1, "b": 2}, 12]}`
	for _, needle := range []any{"fir", "zzz", map[string]any{"a": 1}, map[string]any{"c": 3}, 12} {
		contains, notContains := NewRecorder(), NewRecorder()
		NewJSON(contains, doc).Contains("$.user[*]", needle)
		NewJSON(notContains, doc).NotContains("$.user[*]", needle)
		assert.NotEqual(t, contains.Failed(), notContains.Failed(), "%v", needle)

		equals, notEquals := NewRecorder(), NewRecorder()
		NewJSON(equals, doc).Equals("$.user[*]", needle)
		NewJSON(notEquals, doc).NotEquals("$.user[*]", needle)
		assert.NotEqual(t, equals.Failed(), notEquals.Failed(), "%v", needle)
	}
}

func TestJSON_NewJSONValue(t *testing.T) {
	rec := NewRecorder()
	j := NewJSONValue(rec, jsonvalue.MustFromGo(map[string]any{"a": []any{1, 2}}))
	j.Count("$.a[*]", 2)
	j.Array("$.a")
	assert.Equal(t, 2, rec.Passes())
}
