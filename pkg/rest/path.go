package rest

import (
	"fmt"
	"net/url"
	"strings"
)

// Pather is implemented by resource types that know where they live. The key
// type K selects the mapping: a record addressed by (user, repo) implements
// Pather[[2]string], one addressed by nothing implements Pather[struct{}].
//
// Path must be declared on a value receiver. It is called on the zero value of
// the implementing type and must not depend on its fields.
type Pather[K any] interface {
	Path(key K) (string, error)
}

// PathFunc adapts a plain function to Pather.
type PathFunc[K any] func(key K) (string, error)

// Path implements Pather.
func (f PathFunc[K]) Path(key K) (string, error) {
	return f(key)
}

// ResolvePath runs the mapping for key and normalizes the result. Mapping
// failures and empty paths are wrapped in ErrInvalidPath.
func ResolvePath[K any](mapping Pather[K], key K) (string, error) {
	path, err := mapping.Path(key)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidPath, err)
	}

	path = strings.TrimLeft(path, "/")
	if path == "" {
		return "", fmt.Errorf("%w: %w", ErrInvalidPath, ErrEmptyPath)
	}

	return path, nil
}

// Param is a single query parameter.
type Param struct {
	Key   string `json:"key"   yaml:"key"`
	Value string `json:"value" yaml:"value"`
}

// Query is an ordered list of query parameters. Unlike url.Values it keeps
// the order the caller gave, which is the order sent on the wire.
type Query []Param

// NewQuery builds a Query from alternating key, value pairs. A trailing key
// without a value is sent with an empty value.
func NewQuery(pairs ...string) Query {
	query := make(Query, 0, (len(pairs)+1)/2)

	for i := 0; i < len(pairs); i += 2 {
		param := Param{Key: pairs[i]}
		if i+1 < len(pairs) {
			param.Value = pairs[i+1]
		}

		query = append(query, param)
	}

	return query
}

// Add appends a parameter and returns the extended query.
func (q Query) Add(key, value string) Query {
	return append(q, Param{Key: key, Value: value})
}

// Encode renders the query as "a=2&b=abcd" in insertion order.
func (q Query) Encode() string {
	if len(q) == 0 {
		return ""
	}

	var builder strings.Builder

	for i, param := range q {
		if i > 0 {
			builder.WriteByte('&')
		}

		builder.WriteString(url.QueryEscape(param.Key))
		builder.WriteByte('=')
		builder.WriteString(url.QueryEscape(param.Value))
	}

	return builder.String()
}
