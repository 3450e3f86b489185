package commands

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"gopkg.in/yaml.v3"

	"github.com/fivetwenty-io/restpath/internal/constants"
)

// result is what a request command prints.
type result struct {
	Status int             `json:"status,omitempty" yaml:"status,omitempty"`
	URL    string          `json:"url,omitempty"    yaml:"url,omitempty"`
	Body   json.RawMessage `json:"body"             yaml:"-"`
}

// render prints body in the chosen format. With status set, the status
// and URL are printed too.
func render(w io.Writer, format string, res result) error {
	switch format {
	case constants.FormatJSON:
		return renderJSON(w, res)
	case constants.FormatYAML:
		return renderYAML(w, res)
	default:
		return renderTable(w, res)
	}
}

func renderJSON(w io.Writer, res result) error {
	var out interface{} = res.Body
	if res.Status != 0 {
		out = res
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")

	return encoder.Encode(out)
}

func renderYAML(w io.Writer, res result) error {
	// JSON is valid YAML, so the body decodes straight into a node tree
	// that keeps key order.
	var body interface{}

	if len(bytes.TrimSpace(res.Body)) > 0 {
		var doc yaml.Node

		err := yaml.Unmarshal(res.Body, &doc)
		if err != nil {
			return fmt.Errorf("converting response to YAML: %w", err)
		}

		if doc.Kind == yaml.DocumentNode && len(doc.Content) > 0 {
			body = doc.Content[0]
		}
	}

	encoder := yaml.NewEncoder(w)
	defer func() { _ = encoder.Close() }()

	if res.Status == 0 {
		return encoder.Encode(body)
	}

	return encoder.Encode(yamlResult{Status: res.Status, URL: res.URL, Body: body})
}

type yamlResult struct {
	Status int         `yaml:"status"`
	URL    string      `yaml:"url"`
	Body   interface{} `yaml:"body"`
}

func renderTable(w io.Writer, res result) error {
	table := tablewriter.NewWriter(w)
	table.Header("Field", "Value")

	if res.Status != 0 {
		_ = table.Append("(status)", strconv.Itoa(res.Status))
		_ = table.Append("(url)", res.URL)
	}

	for _, row := range flatten(res.Body) {
		_ = table.Append(row[0], row[1])
	}

	if err := table.Render(); err != nil {
		return fmt.Errorf("failed to render table: %w", err)
	}

	return nil
}

// flatten lists the top-level fields of a JSON object, sorted by key.
// Nested values are shown as compact JSON. Non-objects become one row.
func flatten(body json.RawMessage) [][2]string {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return nil
	}

	var fields map[string]json.RawMessage

	if err := json.Unmarshal(trimmed, &fields); err != nil {
		return [][2]string{{"(body)", scalar(trimmed)}}
	}

	keys := make([]string, 0, len(fields))
	for key := range fields {
		keys = append(keys, key)
	}

	sort.Strings(keys)

	rows := make([][2]string, 0, len(keys))
	for _, key := range keys {
		rows = append(rows, [2]string{key, scalar(fields[key])})
	}

	return rows
}

func scalar(value json.RawMessage) string {
	var text string
	if err := json.Unmarshal(value, &text); err == nil {
		return text
	}

	var compact bytes.Buffer
	if err := json.Compact(&compact, value); err != nil {
		return string(value)
	}

	return compact.String()
}
