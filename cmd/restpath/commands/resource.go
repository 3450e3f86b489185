package commands

import "encoding/json"

// resource is an untyped JSON document addressed by its literal path, so the
// typed verbs can serve paths only known at run time.
type resource struct {
	raw json.RawMessage
}

func (resource) Path(path string) (string, error) {
	return path, nil
}

func (r resource) MarshalJSON() ([]byte, error) {
	if len(r.raw) == 0 {
		return []byte("null"), nil
	}

	return r.raw, nil
}

func (r *resource) UnmarshalJSON(data []byte) error {
	r.raw = append(r.raw[:0], data...)

	return nil
}
