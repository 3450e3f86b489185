// Package httpbin is a small in-process stand-in for the httpbin.org
// endpoints the client is tested against: basic-auth checks and the
// method echo endpoints.
package httpbin

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"time"
)

// EchoResponse is the body returned by the method echo endpoints.
type EchoResponse struct {
	Args    map[string]string `json:"args"`
	Data    string            `json:"data"`
	JSON    json.RawMessage   `json:"json"`
	Headers map[string]string `json:"headers"`
	Method  string            `json:"method"`
	URL     string            `json:"url"`
}

// AuthResponse is the body returned by a successful basic-auth check.
type AuthResponse struct {
	Authenticated bool   `json:"authenticated"`
	User          string `json:"user"`
}

// Server is a running fake httpbin that counts hits per path.
type Server struct {
	*httptest.Server

	mu   sync.Mutex
	hits map[string]int
}

// NewServer starts a plain HTTP fake httpbin. Close it when done.
func NewServer() *Server {
	server := &Server{hits: make(map[string]int)}
	server.Server = httptest.NewServer(server.counting(Handler()))

	return server
}

// NewTLSServer starts an HTTPS fake httpbin.
func NewTLSServer() *Server {
	server := &Server{hits: make(map[string]int)}
	server.Server = httptest.NewTLSServer(server.counting(Handler()))

	return server
}

// Hits returns how many requests reached path.
func (s *Server) Hits(path string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.hits[path]
}

func (s *Server) counting(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		s.mu.Lock()
		s.hits[request.URL.Path]++
		s.mu.Unlock()

		next.ServeHTTP(writer, request)
	})
}

// Handler returns the fake httpbin routes.
func Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /basic-auth/{user}/{passwd}", basicAuth)
	mux.HandleFunc("GET /get", echo)
	mux.HandleFunc("POST /post", echo)
	mux.HandleFunc("PUT /put", echo)
	mux.HandleFunc("PATCH /patch", echo)
	mux.HandleFunc("DELETE /delete", echo)
	mux.HandleFunc("/anything", echo)
	mux.HandleFunc("/anything/{rest...}", echo)
	mux.HandleFunc("/status/{code}", status)
	mux.HandleFunc("GET /delay/{seconds}", delay)

	return mux
}

func writeJSON(writer http.ResponseWriter, code int, body interface{}) {
	writer.Header().Set("Content-Type", "application/json")
	writer.WriteHeader(code)
	_ = json.NewEncoder(writer).Encode(body)
}

func basicAuth(writer http.ResponseWriter, request *http.Request) {
	user, passwd, ok := request.BasicAuth()
	if !ok || user != request.PathValue("user") || passwd != request.PathValue("passwd") {
		writer.Header().Set("WWW-Authenticate", `Basic realm="Fake Realm"`)
		writer.WriteHeader(http.StatusUnauthorized)

		return
	}

	writeJSON(writer, http.StatusOK, AuthResponse{Authenticated: true, User: user})
}

func requestURL(request *http.Request) string {
	scheme := "http"
	if request.TLS != nil {
		scheme = "https"
	}

	return scheme + "://" + request.Host + request.URL.RequestURI()
}

func echo(writer http.ResponseWriter, request *http.Request) {
	body, err := io.ReadAll(request.Body)
	if err != nil {
		writer.WriteHeader(http.StatusBadRequest)

		return
	}

	args := make(map[string]string)
	for key, values := range request.URL.Query() {
		args[key] = values[0]
	}

	headers := make(map[string]string)
	for key, values := range request.Header {
		headers[key] = values[0]
	}

	response := EchoResponse{
		Args:    args,
		Data:    string(body),
		JSON:    json.RawMessage("null"),
		Headers: headers,
		Method:  request.Method,
		URL:     requestURL(request),
	}

	if json.Valid(body) {
		response.JSON = body
	}

	writer.Header().Set("ETag", strconv.Quote(strconv.Itoa(len(body))))
	writeJSON(writer, http.StatusOK, response)
}

func status(writer http.ResponseWriter, request *http.Request) {
	code, err := strconv.Atoi(request.PathValue("code"))
	if err != nil || code < 100 || code > 599 {
		writer.WriteHeader(http.StatusBadRequest)

		return
	}

	writer.WriteHeader(code)
}

func delay(writer http.ResponseWriter, request *http.Request) {
	seconds, err := strconv.ParseFloat(request.PathValue("seconds"), 64)
	if err != nil {
		writer.WriteHeader(http.StatusBadRequest)

		return
	}

	select {
	case <-time.After(time.Duration(seconds * float64(time.Second))):
	case <-request.Context().Done():
		return
	}

	writeJSON(writer, http.StatusOK, map[string]string{"url": requestURL(request)})
}
