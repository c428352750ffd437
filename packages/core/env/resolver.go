package env

import (
	"fmt"
	"os"
	"regexp"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/abdul-hamid-achik/hitassert/packages/builtin"
)

var variablePattern = regexp.MustCompile(`\{\{([^}]+)\}\}`)

// Resolver substitutes placeholders. It is safe for concurrent use.
type Resolver struct {
	mu        sync.RWMutex
	variables map[string]any
	captures  map[string]any
	funcs     *builtin.Registry
	logger    *zap.Logger
}

func NewResolver() *Resolver {
	return &Resolver{
		variables: make(map[string]any),
		captures:  make(map[string]any),
		funcs:     builtin.NewRegistry(),
		logger:    zap.NewNop(),
	}
}

// SetLogger routes warnings about unresolved placeholders to logger.
func (r *Resolver) SetLogger(logger *zap.Logger) {
	if logger == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.logger = logger
}

func (r *Resolver) SetVariables(vars map[string]any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for k, v := range vars {
		r.variables[k] = v
	}
}

func (r *Resolver) SetVariable(name string, value any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.variables[name] = value
}

// SetCapture stores value under both name and check.name.
func (r *Resolver) SetCapture(check, name string, value any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if check != "" {
		r.captures[check+"."+name] = value
	}
	r.captures[name] = value
}

// Resolve replaces every placeholder it can. Unresolvable placeholders are
// left untouched and logged.
func (r *Resolver) Resolve(input string) string {
	return variablePattern.ReplaceAllStringFunc(input, func(match string) string {
		expr := strings.TrimSpace(match[2 : len(match)-2])
		if v, ok := r.lookup(expr); ok {
			return v
		}
		return match
	})
}

// Unresolved lists the placeholder expressions in input that Resolve would
// leave untouched, in order of appearance.
func (r *Resolver) Unresolved(input string) []string {
	var out []string
	for _, m := range variablePattern.FindAllStringSubmatch(input, -1) {
		expr := strings.TrimSpace(m[1])
		if _, ok := r.peek(expr); !ok {
			out = append(out, expr)
		}
	}
	return out
}

func (r *Resolver) lookup(expr string) (string, bool) {
	v, ok := r.peek(expr)
	if ok {
		return v, true
	}

	r.mu.RLock()
	logger := r.logger
	r.mu.RUnlock()

	switch {
	case strings.HasPrefix(expr, "$"):
		logger.Warn("unresolved environment variable", zap.String("name", expr[1:]))
	case strings.Contains(expr, "("):
		_, err := r.funcs.Call(expr)
		logger.Warn("function call failed", zap.String("call", expr), zap.Error(err))
	default:
		logger.Warn("unresolved variable", zap.String("name", expr))
	}
	return "", false
}

// peek resolves expr without logging.
func (r *Resolver) peek(expr string) (string, bool) {
	if strings.HasPrefix(expr, "$") {
		return os.LookupEnv(expr[1:])
	}

	if strings.Contains(expr, "(") {
		out, err := r.funcs.Call(expr)
		if err != nil {
			return "", false
		}
		return out, true
	}

	if v, ok := r.GetVariable(expr); ok {
		return fmt.Sprint(v), true
	}
	return "", false
}

func (r *Resolver) ResolveAll(values map[string]string) map[string]string {
	if values == nil {
		return nil
	}
	result := make(map[string]string, len(values))
	for k, v := range values {
		result[r.Resolve(k)] = r.Resolve(v)
	}
	return result
}

// GetVariable looks name up in captures first, then variables.
func (r *Resolver) GetVariable(name string) (any, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if v, ok := r.captures[name]; ok {
		return v, true
	}
	if v, ok := r.variables[name]; ok {
		return v, true
	}
	return nil, false
}

func (r *Resolver) HasVariable(name string) bool {
	_, ok := r.GetVariable(name)
	return ok
}

// Clone copies variables and captures; the logger is shared.
func (r *Resolver) Clone() *Resolver {
	r.mu.RLock()
	defer r.mu.RUnlock()
	clone := NewResolver()
	clone.logger = r.logger
	for k, v := range r.variables {
		clone.variables[k] = v
	}
	for k, v := range r.captures {
		clone.captures[k] = v
	}
	return clone
}
