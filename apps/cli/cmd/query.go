package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abdul-hamid-achik/hitassert/packages/document"
	"github.com/abdul-hamid-achik/hitassert/packages/jsonquery"
	"github.com/abdul-hamid-achik/hitassert/packages/jsonvalue"
	"github.com/abdul-hamid-achik/hitassert/packages/suite"
)

var (
	queryTypeFlag  string
	queryXPathFlag bool
	queryCountFlag bool
	queryLaxFlag   bool
)

var queryCmd = &cobra.Command{
	Use:   "query <file|-> <expression>",
	Short: "Print what a CSS, XPath or JSONPath expression matches",
	Long: `Run one query against a file and print the matches, one per line.
HTML and XML documents take a CSS selector, or XPath with --xpath; JSON
documents take JSONPath. The type defaults to the file extension.

Examples:
  hitassert query page.html "ul > li"
  hitassert query feed.xml "//entry/title" --xpath
  curl -s https://api.example.com/items | hitassert query - '$.items[*].id' --type json`,
	Args: cobra.ExactArgs(2),
	RunE: queryCommand,
}

func init() {
	queryCmd.Flags().StringVar(&queryTypeFlag, "type", "", "Document type: html, xml or json (default: from the file extension)")
	queryCmd.Flags().BoolVar(&queryXPathFlag, "xpath", false, "Treat the expression as XPath instead of a CSS selector")
	queryCmd.Flags().BoolVarP(&queryCountFlag, "count", "c", false, "Print only the number of matches")
	queryCmd.Flags().BoolVar(&queryLaxFlag, "lax", false, "Parse XML leniently")
}

func queryCommand(cmd *cobra.Command, args []string) error {
	path, expr := args[0], args[1]

	typ := strings.ToLower(queryTypeFlag)
	if typ == "" {
		typ = typeFromExtension(path)
	}
	if typ == "" {
		return withExitCode(ExitUsageError, fmt.Errorf("cannot tell the document type of %s, use --type", path))
	}

	data, err := readInput(cmd, path)
	if err != nil {
		return withExitCode(ExitUsageError, err)
	}

	var matches []string
	switch typ {
	case suite.TypeJSON:
		matches, err = queryJSON(string(data), expr)
	case suite.TypeHTML, suite.TypeXML:
		matches, err = queryDocument(typ, string(data), expr)
	default:
		return withExitCode(ExitUsageError, fmt.Errorf("unknown type %q (want html, xml or json)", typ))
	}
	if err != nil {
		var docParse *document.ParseError
		if errors.As(err, &docParse) || errors.Is(err, jsonvalue.ErrInvalidJSON) {
			return withExitCode(ExitParseError, err)
		}
		return withExitCode(ExitUsageError, err)
	}

	out := cmd.OutOrStdout()
	if queryCountFlag {
		fmt.Fprintln(out, len(matches))
		return nil
	}
	for _, m := range matches {
		fmt.Fprintln(out, m)
	}
	if len(matches) == 0 {
		return withExitCode(ExitTestFailure, nil)
	}
	return nil
}

func typeFromExtension(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".html", ".htm":
		return suite.TypeHTML
	case ".xml", ".svg", ".rss", ".atom":
		return suite.TypeXML
	case ".json":
		return suite.TypeJSON
	}
	return ""
}

func readInput(cmd *cobra.Command, path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	return os.ReadFile(path)
}

func queryJSON(text, expr string) ([]string, error) {
	root, err := jsonvalue.Parse(text)
	if err != nil {
		return nil, err
	}
	values, err := jsonquery.Evaluate(root, expr)
	if err != nil {
		return nil, err
	}
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = jsonvalue.Encode(v)
	}
	return out, nil
}

func queryDocument(typ, markup, expr string) ([]string, error) {
	var (
		doc document.Document
		err error
	)
	if typ == suite.TypeXML {
		doc, err = document.ParseXML(markup, document.WithSuppressErrors(queryLaxFlag))
	} else {
		doc, err = document.ParseHTML(markup)
	}
	if err != nil {
		return nil, err
	}

	var nodes []document.Node
	if queryXPathFlag {
		nodes, err = doc.XPath(expr)
	} else {
		nodes, err = doc.Select(expr)
	}
	if err != nil {
		return nil, err
	}

	out := make([]string, len(nodes))
	for i, n := range nodes {
		out[i] = strings.TrimSpace(n.TextContent())
	}
	return out, nil
}
