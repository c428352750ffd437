package builtin

import (
	"strconv"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_Call(t *testing.T) {
	r := NewRegistry()

	tests := []struct {
		expr string
		want string
	}{
		{`base64("user:pass")`, "dXNlcjpwYXNz"},
		{`base64Decode('dXNlcjpwYXNz')`, "user:pass"},
		{`urlEncode("a b&c")`, "a+b%26c"},
		{`sha256("abc")`, "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad"},
		{`random(4, 4)`, "4"},
		{`env("HITASSERT_TEST_MISSING", "fallback")`, "fallback"},
		{`now("2006")`, ""},
	}

	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			got, err := r.Call(tt.expr)
			require.NoError(t, err)
			if tt.want != "" {
				assert.Equal(t, tt.want, got)
			} else {
				assert.NotEmpty(t, got)
			}
		})
	}
}

func TestRegistry_CallGenerated(t *testing.T) {
	r := NewRegistry()

	id, err := r.Call("uuid()")
	require.NoError(t, err)
	_, err = uuid.Parse(id)
	assert.NoError(t, err)

	s, err := r.Call("randomString(12)")
	require.NoError(t, err)
	assert.Len(t, s, 12)

	ts, err := r.Call("timestamp()")
	require.NoError(t, err)
	_, err = strconv.ParseInt(ts, 10, 64)
	assert.NoError(t, err)

	n, err := r.Call("random(1, 6)")
	require.NoError(t, err)
	v, err := strconv.Atoi(n)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, v, 1)
	assert.LessOrEqual(t, v, 6)
}

func TestRegistry_CallErrors(t *testing.T) {
	r := NewRegistry()

	_, err := r.Call("plainVariable")
	assert.ErrorIs(t, err, ErrNotACall)

	_, err = r.Call("nope()")
	assert.ErrorIs(t, err, ErrUnknownFunc)

	_, err = r.Call("random(a, 2)")
	assert.ErrorContains(t, err, "not an integer")

	_, err = r.Call("base64()")
	assert.ErrorContains(t, err, "expected 1 argument")

	_, err = r.Call(`env("HITASSERT_TEST_MISSING")`)
	assert.ErrorContains(t, err, "is not set")
}

func TestRegistry_Register(t *testing.T) {
	r := NewRegistry()
	r.Register("join", func(args []string) (string, error) {
		return args[0] + "-" + args[1], nil
	})

	got, err := r.Call(`join("a,b", 'c')`)
	require.NoError(t, err)
	assert.Equal(t, "a,b-c", got)
}

func TestParseArgs(t *testing.T) {
	assert.Nil(t, parseArgs(""))
	assert.Equal(t, []string{"a", "b"}, parseArgs("a, b"))
	assert.Equal(t, []string{"x, y", "z"}, parseArgs(`"x, y", 'z'`))
	assert.Equal(t, []string{""}, parseArgs(`""`))
}
