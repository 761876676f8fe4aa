// Package graphtest provides fakes for exercising graph and messenger
// façades without reaching the real API.
package graphtest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"

	"github.com/go-chi/chi/v5"

	"github.com/wolfman30/fbgraph/pkg/graph"
)

// Captured is one request seen by a fake.
type Captured struct {
	Method string
	Path   string
	Query  url.Values
	Body   []byte
	Files  map[string]graph.File
	Header http.Header
}

// Server is an httptest server routing Graph paths through chi. Unrouted
// paths answer 404 with a Graph-style error body.
type Server struct {
	*httptest.Server

	router chi.Router

	mu       sync.Mutex
	requests []Captured
}

// NewServer starts a fake. Close it when done.
func NewServer() *Server {
	s := &Server{router: chi.NewRouter()}
	s.router.Use(s.capture)
	s.router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		WriteJSON(w, http.StatusNotFound, map[string]any{
			"error": map[string]any{
				"message": fmt.Sprintf("Unknown path components: %s", r.URL.Path),
				"type":    "OAuthException",
				"code":    2500,
			},
		})
	})
	s.Server = httptest.NewServer(s.router)
	return s
}

// Handle routes method+pattern (chi syntax, e.g. "/v2.6/{id}") to h.
func (s *Server) Handle(method, pattern string, h http.HandlerFunc) {
	s.router.MethodFunc(method, pattern, h)
}

// Reply routes method+pattern to a fixed JSON response.
func (s *Server) Reply(method, pattern string, status int, body any) {
	s.Handle(method, pattern, func(w http.ResponseWriter, _ *http.Request) {
		WriteJSON(w, status, body)
	})
}

// Requests returns a copy of everything received so far.
func (s *Server) Requests() []Captured {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Captured, len(s.requests))
	copy(out, s.requests)
	return out
}

// Last returns the most recent request.
func (s *Server) Last() (Captured, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.requests) == 0 {
		return Captured{}, false
	}
	return s.requests[len(s.requests)-1], true
}

func (s *Server) capture(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c := Captured{
			Method: r.Method,
			Path:   r.URL.Path,
			Query:  r.URL.Query(),
			Header: r.Header.Clone(),
		}
		if r.Body != nil {
			c.Body, _ = io.ReadAll(r.Body)
			r.Body = io.NopCloser(bytes.NewReader(c.Body))
		}
		if mediaType, params, err := mime.ParseMediaType(r.Header.Get("Content-Type")); err == nil && mediaType == "multipart/form-data" {
			c.Files = readParts(multipart.NewReader(bytes.NewReader(c.Body), params["boundary"]))
		}
		s.mu.Lock()
		s.requests = append(s.requests, c)
		s.mu.Unlock()
		next.ServeHTTP(w, r)
	})
}

func readParts(mr *multipart.Reader) map[string]graph.File {
	files := map[string]graph.File{}
	for {
		part, err := mr.NextPart()
		if err != nil {
			return files
		}
		data, _ := io.ReadAll(part)
		files[part.FormName()] = graph.File{Name: part.FileName(), Data: data}
		_ = part.Close()
	}
}

// WriteJSON writes body as JSON with status.
func WriteJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	switch b := body.(type) {
	case string:
		_, _ = io.WriteString(w, b)
	case []byte:
		_, _ = w.Write(b)
	default:
		_ = json.NewEncoder(w).Encode(b)
	}
}

// Recorder is a scripted graph.Transport. Responses are served in order;
// the last one repeats once the script is exhausted.
type Recorder struct {
	mu        sync.Mutex
	responses []Scripted
	calls     []*graph.Request
}

// Scripted is one canned transport outcome.
type Scripted struct {
	Status int
	Body   string
	Err    error
}

// NewRecorder builds a Recorder answering with the given script. An empty
// script answers 200 {}.
func NewRecorder(script ...Scripted) *Recorder {
	return &Recorder{responses: script}
}

// Do implements graph.Transport.
func (r *Recorder) Do(ctx context.Context, req *graph.Request) (*graph.Response, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, req)

	next := Scripted{Status: http.StatusOK, Body: "{}"}
	if len(r.responses) > 0 {
		next = r.responses[0]
		if len(r.responses) > 1 {
			r.responses = r.responses[1:]
		}
	}
	if next.Err != nil {
		return nil, next.Err
	}
	return &graph.Response{StatusCode: next.Status, Body: []byte(next.Body)}, nil
}

// Calls returns the number of requests made.
func (r *Recorder) Calls() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.calls)
}

// Request returns the i-th request.
func (r *Recorder) Request(i int) *graph.Request {
	r.mu.Lock()
	defer r.mu.Unlock()
	if i < 0 || i >= len(r.calls) {
		return nil
	}
	return r.calls[i]
}

// ErrUnreachable is a convenient transport failure for scripts.
var ErrUnreachable = errors.New("graphtest: host unreachable")
