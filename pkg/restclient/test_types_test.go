package restclient_test

import (
	"errors"
	"fmt"
	"strings"
)

var errEmptyUser = errors.New("user must not be empty")

// HTTPBinBasicAuth is addressed by a (user, password) pair.
type HTTPBinBasicAuth struct {
	Authenticated bool   `json:"authenticated"`
	User          string `json:"user"`
}

func (HTTPBinBasicAuth) Path(auth [2]string) (string, error) {
	user, pass := auth[0], auth[1]
	if user == "" {
		return "", errEmptyUser
	}

	return fmt.Sprintf("basic-auth/%s/%s", user, pass), nil
}

// HTTPBinDelete lives at a fixed path.
type HTTPBinDelete struct {
	Data string `json:"data"`
}

func (HTTPBinDelete) Path(struct{}) (string, error) {
	return "delete", nil
}

// HTTPBinDeleteResp is the echo envelope httpbin returns.
type HTTPBinDeleteResp struct {
	JSON HTTPBinDelete `json:"json"`
	URL  string        `json:"url"`
}

// HTTPBinAnything is addressed by a list of path segments under /anything.
type HTTPBinAnything struct {
	Data string `json:"data"`
}

func (HTTPBinAnything) Path(segments []string) (string, error) {
	return "anything/" + strings.Join(segments, "/"), nil
}

// HTTPBinAnythingByID maps the same record by a numeric id.
type HTTPBinAnythingByID HTTPBinAnything

func (HTTPBinAnythingByID) Path(id int) (string, error) {
	return fmt.Sprintf("anything/items/%d", id), nil
}

// HTTPBinEcho is the generic echo envelope.
type HTTPBinEcho struct {
	Args    map[string]string `json:"args"`
	Data    string            `json:"data"`
	Headers map[string]string `json:"headers"`
	Method  string            `json:"method"`
	URL     string            `json:"url"`
}

// HTTPBinPost, HTTPBinPut and HTTPBinPatch address the method echo endpoints.
type HTTPBinPost struct {
	Data string `json:"data"`
}

func (HTTPBinPost) Path(struct{}) (string, error) { return "post", nil }

type HTTPBinPut struct {
	Data string `json:"data"`
}

func (HTTPBinPut) Path(struct{}) (string, error) { return "put", nil }

type HTTPBinPatch struct {
	Data string `json:"data"`
}

func (HTTPBinPatch) Path(struct{}) (string, error) { return "patch", nil }

// HTTPBinGet echoes GET requests.
type HTTPBinGet HTTPBinEcho

func (HTTPBinGet) Path(struct{}) (string, error) { return "get", nil }

// HTTPBinStatus answers with the given status code.
type HTTPBinStatus struct{}

func (HTTPBinStatus) Path(code int) (string, error) { return fmt.Sprintf("status/%d", code), nil }

// HTTPBinDelay answers after the given number of seconds.
type HTTPBinDelay struct {
	URL string `json:"url"`
}

func (HTTPBinDelay) Path(seconds float64) (string, error) {
	return fmt.Sprintf("delay/%g", seconds), nil
}
