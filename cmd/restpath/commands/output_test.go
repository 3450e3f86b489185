package commands

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestFlatten(t *testing.T) {
	t.Parallel()

	rows := flatten(json.RawMessage(`{"user":"username","authenticated":true,"args":{"a":"2"}}`))
	assert.Equal(t, [][2]string{
		{"args", `{"a":"2"}`},
		{"authenticated", "true"},
		{"user", "username"},
	}, rows)

	assert.Equal(t, [][2]string{{"(body)", "[1,2]"}}, flatten(json.RawMessage(`[1, 2]`)))
	assert.Nil(t, flatten(nil))
}

func TestRender_JSON(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	require.NoError(t, render(&buf, "json", result{Body: json.RawMessage(`{"a":1}`)}))
	assert.JSONEq(t, `{"a":1}`, buf.String())

	buf.Reset()
	require.NoError(t, render(&buf, "json", result{Status: 200, URL: "http://h/delete?a=2&b=abcd", Body: json.RawMessage(`{"a":1}`)}))
	assert.JSONEq(t, `{"status":200,"url":"http://h/delete?a=2&b=abcd","body":{"a":1}}`, buf.String())
}

func TestRender_YAML(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	require.NoError(t, render(&buf, "yaml", result{Body: json.RawMessage(`{"b":"x","a":[1,2]}`)}))

	var decoded map[string]interface{}
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "x", decoded["b"])
	assert.Equal(t, []interface{}{1, 2}, decoded["a"])

	buf.Reset()
	require.NoError(t, render(&buf, "yaml", result{Status: 204, URL: "http://h/delete"}))

	decoded = nil
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, 204, decoded["status"])
	assert.Nil(t, decoded["body"])
}

func TestRender_Table(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	require.NoError(t, render(&buf, "table", result{
		Status: 200,
		URL:    "http://h/delete",
		Body:   json.RawMessage(`{"data":"test data"}`),
	}))

	out := buf.String()
	assert.Contains(t, out, "test data")
	assert.Contains(t, out, "http://h/delete")
	assert.Contains(t, out, "200")
}
