// Package cmd implements the hitassert CLI commands using Cobra.
//
// Available commands:
//   - run: Execute assertion suites
//   - validate: Check suite files without executing them
//   - list: Display the checks defined in suite files
//   - query: Print what a CSS, XPath or JSONPath query matches in a file
//   - init: Create a config file and an example suite
//   - version: Show version information
//
// run supports filtering by name and tag, several output formats and a
// watch mode that re-runs suites when files change.
package cmd
