package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abdul-hamid-achik/hitassert/packages/suite"
)

var listCmd = &cobra.Command{
	Use:   "list <file|directory>...",
	Short: "List the checks in suite files",
	Long: `List the checks defined in suite files with their subject and tags.

Examples:
  hitassert list checks/smoke.yaml
  hitassert list ./checks/`,
	Args: cobra.MinimumNArgs(1),
	RunE: listCommand,
}

func listCommand(cmd *cobra.Command, args []string) error {
	files, err := collectFiles(args)
	if err != nil {
		return withExitCode(ExitUsageError, err)
	}

	if len(files) == 0 {
		return withExitCode(ExitUsageError, errors.New("no .yaml or .yml suite files found"))
	}

	for _, file := range files {
		s, err := suite.Load(file)
		if err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "Error parsing %s: %v\n", file, err)
			continue
		}

		fmt.Fprintf(cmd.OutOrStdout(), "\n%s:\n", file)
		for i, c := range s.Checks {
			if c == nil {
				continue
			}
			fmt.Fprintf(cmd.OutOrStdout(), "  - %s (%s, %d expectations)\n", c.Label(i), describeSubject(c), len(c.Expect))
			if len(c.Tags) > 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "    tags: %s\n", strings.Join(c.Tags, ", "))
			}
		}
	}

	return nil
}

func describeSubject(c *suite.Check) string {
	switch {
	case c.Request != nil:
		method := c.Request.Method
		if method == "" {
			method = "GET"
		}
		return strings.ToUpper(method) + " " + c.Request.URL
	case c.File != "":
		return c.Type + " file " + c.File
	case c.Content != nil:
		return "inline " + c.Type
	}
	return "no subject"
}
