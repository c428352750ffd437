package assertions

import (
	"fmt"
	"regexp"
	"strings"
)

// delimiters accepted around a pattern written as /body/flags.
const delimiters = "/#~!@%|"

// compileRegex compiles a Go regular expression. A pattern wrapped in
// delimiters with trailing flags, like /^\d+$/i, is unwrapped first and its
// i, m, s and U flags become inline flags. The u flag is accepted and ignored.
func compileRegex(pattern string) (*regexp.Regexp, error) {
	body, flags, ok := splitDelimited(pattern)
	if !ok {
		return regexp.Compile(pattern)
	}

	var inline strings.Builder
	for _, f := range flags {
		switch f {
		case 'i', 'm', 's', 'U':
			if !strings.ContainsRune(inline.String(), f) {
				inline.WriteRune(f)
			}
		case 'u':
		default:
			return nil, fmt.Errorf("regular expression %s: unsupported flag %q", pattern, f)
		}
	}
	if inline.Len() > 0 {
		body = "(?" + inline.String() + ")" + body
	}
	return regexp.Compile(body)
}

func splitDelimited(pattern string) (body, flags string, ok bool) {
	if len(pattern) < 2 || !strings.ContainsRune(delimiters, rune(pattern[0])) {
		return "", "", false
	}
	end := strings.LastIndexByte(pattern, pattern[0])
	if end == 0 {
		return "", "", false
	}
	flags = pattern[end+1:]
	for _, f := range flags {
		if f < 'A' || f > 'z' || (f > 'Z' && f < 'a') {
			return "", "", false
		}
	}
	return pattern[1:end], flags, true
}
