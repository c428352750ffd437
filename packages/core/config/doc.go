// Package config loads hitassert settings from .hitassert.yaml (or one of
// the other ConfigFilenames) and merges them with defaults and CLI flags.
// JSON files are accepted too, since the YAML decoder reads JSON.
package config
