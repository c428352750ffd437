package builtin

import (
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"math/rand"
	"net/url"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrNotACall is returned when an expression is not of the form name(args).
	ErrNotACall = errors.New("not a function call")
	// ErrUnknownFunc is returned for calls to unregistered names.
	ErrUnknownFunc = errors.New("unknown function")
)

// Func computes a substitution from already unquoted arguments.
type Func func(args []string) (string, error)

type Registry struct {
	funcs map[string]Func
}

func NewRegistry() *Registry {
	r := &Registry{
		funcs: map[string]Func{
			"uuid":         funcUUID,
			"now":          funcNow,
			"timestamp":    funcTimestamp,
			"timestampMs":  funcTimestampMs,
			"random":       funcRandom,
			"randomString": funcRandomString,
			"base64":       oneArg(func(s string) (string, error) { return base64.StdEncoding.EncodeToString([]byte(s)), nil }),
			"base64Decode": oneArg(funcBase64Decode),
			"sha256":       oneArg(funcSHA256),
			"urlEncode":    oneArg(func(s string) (string, error) { return url.QueryEscape(s), nil }),
			"env":          funcEnv,
		},
	}
	return r
}

func (r *Registry) Register(name string, fn Func) {
	r.funcs[name] = fn
}

var funcCallPattern = regexp.MustCompile(`^(\w+)\((.*)\)$`)

// Call evaluates expr, e.g. `random(1, 6)`.
func (r *Registry) Call(expr string) (string, error) {
	matches := funcCallPattern.FindStringSubmatch(strings.TrimSpace(expr))
	if matches == nil {
		return "", ErrNotACall
	}

	fn, ok := r.funcs[matches[1]]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownFunc, matches[1])
	}

	out, err := fn(parseArgs(matches[2]))
	if err != nil {
		return "", fmt.Errorf("%s(): %w", matches[1], err)
	}
	return out, nil
}

// parseArgs splits on commas outside single or double quotes and strips the
// quotes.
func parseArgs(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}

	var args []string
	var current strings.Builder
	var quote byte

	for i := 0; i < len(s); i++ {
		ch := s[i]
		switch {
		case quote == 0 && (ch == '"' || ch == '\''):
			quote = ch
		case quote != 0 && ch == quote:
			quote = 0
		case quote == 0 && ch == ',':
			args = append(args, strings.TrimSpace(current.String()))
			current.Reset()
		default:
			current.WriteByte(ch)
		}
	}

	return append(args, strings.TrimSpace(current.String()))
}

func oneArg(fn func(string) (string, error)) Func {
	return func(args []string) (string, error) {
		if len(args) != 1 {
			return "", fmt.Errorf("expected 1 argument, got %d", len(args))
		}
		return fn(args[0])
	}
}

func intArg(args []string, i, def int) (int, error) {
	if len(args) <= i {
		return def, nil
	}
	v, err := strconv.Atoi(args[i])
	if err != nil {
		return 0, fmt.Errorf("argument %d: %q is not an integer", i+1, args[i])
	}
	return v, nil
}

func funcUUID(_ []string) (string, error) {
	return uuid.NewString(), nil
}

// funcNow formats the current UTC time; the optional argument is a Go layout.
func funcNow(args []string) (string, error) {
	layout := time.RFC3339
	if len(args) > 0 && args[0] != "" {
		layout = args[0]
	}
	return time.Now().UTC().Format(layout), nil
}

func funcTimestamp(_ []string) (string, error) {
	return strconv.FormatInt(time.Now().Unix(), 10), nil
}

func funcTimestampMs(_ []string) (string, error) {
	return strconv.FormatInt(time.Now().UnixMilli(), 10), nil
}

func funcRandom(args []string) (string, error) {
	lo, err := intArg(args, 0, 0)
	if err != nil {
		return "", err
	}
	hi, err := intArg(args, 1, 100)
	if err != nil {
		return "", err
	}
	if hi < lo {
		return "", fmt.Errorf("max %d is less than min %d", hi, lo)
	}
	return strconv.Itoa(lo + rand.Intn(hi-lo+1)), nil
}

const alphanumeric = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

func funcRandomString(args []string) (string, error) {
	n, err := intArg(args, 0, 16)
	if err != nil {
		return "", err
	}
	if n < 0 {
		return "", fmt.Errorf("negative length %d", n)
	}
	b := make([]byte, n)
	for i := range b {
		b[i] = alphanumeric[rand.Intn(len(alphanumeric))]
	}
	return string(b), nil
}

func funcBase64Decode(s string) (string, error) {
	decoded, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return "", err
	}
	return string(decoded), nil
}

func funcSHA256(s string) (string, error) {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:]), nil
}

// funcEnv reads an environment variable, with an optional default.
func funcEnv(args []string) (string, error) {
	if len(args) == 0 || len(args) > 2 {
		return "", fmt.Errorf("expected 1 or 2 arguments, got %d", len(args))
	}
	if v, ok := os.LookupEnv(args[0]); ok {
		return v, nil
	}
	if len(args) == 2 {
		return args[1], nil
	}
	return "", fmt.Errorf("environment variable %s is not set", args[0])
}
