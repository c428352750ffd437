package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/abdul-hamid-achik/hitassert/packages/core/config"
)

var forceInit bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a new hitassert project",
	Long: `Initialize a new hitassert project in the current directory.

This creates:
  - .hitassert.yaml  - Configuration file with environments
  - example.yaml     - Example suite

Examples:
  hitassert init
  hitassert init --force`,
	RunE: initCommand,
}

func init() {
	initCmd.Flags().BoolVarP(&forceInit, "force", "f", false, "Overwrite existing files")
}

const exampleSuite = `name: example
checks:
  - name: health
    tags: [smoke]
    request:
      url: "{{baseUrl}}/health"
    expect:
      - status: 200
      - json: {path: "$.status", equals: ok}

  - name: home page
    tags: [smoke]
    request:
      url: "{{baseUrl}}/"
    expect:
      - status: 200
      - content_type: text/html
      - css: {query: "title", exists: true}
      - xpath: {query: "//a[@href]", empty: false}
      - anchor: {path: /login}

  - name: create
    request:
      method: POST
      url: "{{baseUrl}}/items"
      headers:
        Content-Type: application/json
      body: '{"name": "item-{{randomString(6)}}"}'
    expect:
      - status: 201
      - json: {path: "$.id", type: number}
    capture:
      id: id

  - name: fetch item
    request:
      url: "{{baseUrl}}/items/{{create.id}}"
    expect:
      - json: {path: "$.name", regex: "/^item-/"}
`

func initCommand(cmd *cobra.Command, args []string) error {
	cwd, err := os.Getwd()
	if err != nil {
		return err
	}

	configFile := filepath.Join(cwd, ".hitassert.yaml")
	exampleFile := filepath.Join(cwd, "example.yaml")

	if !forceInit {
		for _, f := range []string{configFile, exampleFile} {
			if _, err := os.Stat(f); err == nil {
				return fmt.Errorf("file already exists: %s (use --force to overwrite)", f)
			}
		}
	}

	cfg := config.DefaultConfig()
	cfg.Headers = map[string]string{
		"User-Agent": "hitassert/" + version,
	}
	cfg.Environments = map[string]map[string]any{
		"dev":     {"baseUrl": "http://localhost:3000"},
		"staging": {"baseUrl": "https://staging.api.example.com"},
		"prod":    {"baseUrl": "https://api.example.com"},
	}
	if err := cfg.SaveConfig(configFile); err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Created: %s\n", configFile)

	if err := os.WriteFile(exampleFile, []byte(exampleSuite), 0644); err != nil {
		return fmt.Errorf("failed to create example file: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Created: %s\n", exampleFile)

	fmt.Fprintf(cmd.OutOrStdout(), "\nhitassert project initialized!\n")
	fmt.Fprintf(cmd.OutOrStdout(), "Run 'hitassert run example.yaml' to execute the example suite.\n")

	return nil
}
