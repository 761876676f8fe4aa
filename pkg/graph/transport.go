// Package graph is a client for the Graph API: object reads, connections,
// publishing, deletion and app-level administration. Every façade funnels
// through a single Dispatcher which attaches credentials, composes the URL
// and classifies the response into a typed error.
package graph

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"
)

const (
	defaultUserAgent   = "fbgraph/0.1"
	defaultHTTPTimeout = 10 * time.Second
)

// ErrTransport marks failures that happened before a response body was read.
var ErrTransport = errors.New("graph: transport failure")

// Params are query/form parameters sent with a call.
type Params map[string]string

// Merge layers parameter sets left to right; later layers win on key clashes.
func Merge(layers ...Params) Params {
	out := Params{}
	for _, layer := range layers {
		for k, v := range layer {
			out[k] = v
		}
	}
	return out
}

// File is a named payload uploaded as multipart form data.
type File struct {
	Name string
	Data []byte
}

// Request is one HTTP exchange handed to a Transport.
type Request struct {
	Method string
	URL    string
	Params Params
	JSON   []byte
	Files  map[string]File
}

// Response carries the raw status and body of one exchange.
type Response struct {
	StatusCode int
	Body       []byte
}

// Transport performs exactly one HTTP request. Implementations must not retry.
type Transport interface {
	Do(ctx context.Context, req *Request) (*Response, error)
}

// HTTPTransport is the net/http implementation of Transport.
type HTTPTransport struct {
	client    *http.Client
	userAgent string
}

// NewHTTPTransport wraps client (or a default one with a 10s timeout).
func NewHTTPTransport(client *http.Client, userAgent string) *HTTPTransport {
	if client == nil {
		client = &http.Client{Timeout: defaultHTTPTimeout}
	}
	userAgent = strings.TrimSpace(userAgent)
	if userAgent == "" {
		userAgent = defaultUserAgent
	}
	return &HTTPTransport{client: client, userAgent: userAgent}
}

// Do sends req. Params always travel in the query string; a JSON body or
// multipart files, when present, travel in the body.
func (t *HTTPTransport) Do(ctx context.Context, req *Request) (*Response, error) {
	u, err := url.Parse(req.URL)
	if err != nil {
		return nil, fmt.Errorf("parse url: %w", err)
	}
	if len(req.Params) > 0 {
		q := u.Query()
		for k, v := range req.Params {
			q.Set(k, v)
		}
		u.RawQuery = q.Encode()
	}

	var body io.Reader
	var contentType string
	switch {
	case len(req.Files) > 0:
		buf, ct, err := encodeMultipart(req.Files)
		if err != nil {
			return nil, err
		}
		body, contentType = buf, ct
	case req.JSON != nil:
		body, contentType = bytes.NewReader(req.JSON), "application/json"
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, u.String(), body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("User-Agent", t.userAgent)
	httpReq.Header.Set("Accept", "application/json")
	if contentType != "" {
		httpReq.Header.Set("Content-Type", contentType)
	}

	resp, err := t.client.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	return &Response{StatusCode: resp.StatusCode, Body: data}, nil
}

func encodeMultipart(files map[string]File) (*bytes.Buffer, string, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	fields := make([]string, 0, len(files))
	for field := range files {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	for _, field := range fields {
		f := files[field]
		name := f.Name
		if name == "" {
			name = field
		}
		part, err := writer.CreateFormFile(field, name)
		if err != nil {
			return nil, "", fmt.Errorf("create form file: %w", err)
		}
		if _, err := part.Write(f.Data); err != nil {
			return nil, "", fmt.Errorf("write form file: %w", err)
		}
	}
	if err := writer.Close(); err != nil {
		return nil, "", fmt.Errorf("close multipart writer: %w", err)
	}
	return &buf, writer.FormDataContentType(), nil
}

func encodeJSON(v any) ([]byte, error) {
	switch body := v.(type) {
	case nil:
		return nil, nil
	case json.RawMessage:
		return body, nil
	case []byte:
		return body, nil
	default:
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("graph: marshal body: %w", err)
		}
		return data, nil
	}
}
