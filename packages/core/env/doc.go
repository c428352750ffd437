// Package env resolves {{...}} placeholders in suite files.
//
// A placeholder is one of:
//   - {{name}}: a suite variable or a value captured by an earlier check
//   - {{check.name}}: a capture qualified by the check that produced it
//   - {{$NAME}}: a process environment variable
//   - {{fn(args)}}: a builtin function call
//
// Variables can be seeded from .env files and HITASSERT_VAR_ prefixed
// environment variables.
package env
