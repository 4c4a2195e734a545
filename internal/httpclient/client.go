// Package httpclient is the shared request pipeline every resource service
// goes through. It attaches the session's bearer token to outgoing requests
// and collapses every failure into a single *RequestError.
package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/inkpress/blogkit/internal/session"
)

// DefaultTimeout bounds the lifetime of every call.
const DefaultTimeout = 15 * time.Second

// Response is a completed exchange. It is handed to callers unchanged.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// Exchange is what response stages observe and may rewrite.
type Exchange struct {
	Request  *http.Request
	Response *Response
	Err      error
	Elapsed  time.Duration
}

// RequestStage transforms an outgoing request. A returned error aborts the
// call before anything is sent.
type RequestStage func(req *http.Request) error

// ResponseStage observes or rewrites a finished exchange.
type ResponseStage func(ex *Exchange)

// Client sends requests relative to a base address.
type Client struct {
	baseURL string
	hc      *http.Client
	before  []RequestStage
	after   []ResponseStage
}

type Option func(*Client)

// WithHTTPClient replaces the underlying *http.Client. A zero Timeout is
// replaced with DefaultTimeout.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		copied := *hc
		if copied.Timeout <= 0 {
			copied.Timeout = DefaultTimeout
		}
		c.hc = &copied
	}
}

// WithRequestStage appends request stages. They run before the bearer stage.
func WithRequestStage(stages ...RequestStage) Option {
	return func(c *Client) { c.before = append(c.before, stages...) }
}

// WithResponseStage appends response stages. They run before error
// normalization, which is always last.
func WithResponseStage(stages ...ResponseStage) Option {
	return func(c *Client) { c.after = append(c.after, stages...) }
}

// New builds a Client. An empty baseURL keeps request URLs relative.
// The client has no cookie jar, so authentication is carried only by the
// bearer header taken from store.
func New(baseURL string, store session.Store, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		hc:      &http.Client{Timeout: DefaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	if store != nil {
		c.before = append(c.before, BearerAuth(store))
	}
	c.after = append(c.after, normalizeErrors)
	return c
}

// BaseURL returns the base address requests are resolved against.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Do sends one request through the pipeline. Any error it returns is a
// *RequestError.
func (c *Client) Do(ctx context.Context, method, path string, body io.Reader, header http.Header) (*Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, newRequestError(0, err.Error())
	}
	for k, v := range header {
		req.Header[k] = v
	}
	for _, stage := range c.before {
		if err := stage(req); err != nil {
			return nil, asRequestError(err)
		}
	}

	ex := &Exchange{Request: req}
	start := time.Now()
	ex.Response, ex.Err = c.send(req)
	ex.Elapsed = time.Since(start)

	for _, stage := range c.after {
		stage(ex)
	}
	if ex.Err != nil {
		return nil, asRequestError(ex.Err)
	}
	return ex.Response, nil
}

func (c *Client) send(req *http.Request) (*Response, error) {
	resp, err := c.hc.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	return &Response{StatusCode: resp.StatusCode, Header: resp.Header, Body: b}, nil
}

// Get performs a GET request. Only the keys present in query are sent.
func (c *Client) Get(ctx context.Context, path string, query url.Values) (*Response, error) {
	if len(query) > 0 {
		path += "?" + query.Encode()
	}
	return c.Do(ctx, http.MethodGet, path, nil, nil)
}

// PostJSON performs a POST request; a nil body sends no payload.
func (c *Client) PostJSON(ctx context.Context, path string, body any) (*Response, error) {
	return c.sendJSON(ctx, http.MethodPost, path, body)
}

// PutJSON performs a PUT request with a JSON payload.
func (c *Client) PutJSON(ctx context.Context, path string, body any) (*Response, error) {
	return c.sendJSON(ctx, http.MethodPut, path, body)
}

// Delete performs a DELETE request.
func (c *Client) Delete(ctx context.Context, path string) (*Response, error) {
	return c.Do(ctx, http.MethodDelete, path, nil, nil)
}

// PostMultipart uploads r as the single file field of a multipart form.
func (c *Client) PostMultipart(ctx context.Context, path, field, filename string, r io.Reader) (*Response, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile(field, filename)
	if err != nil {
		return nil, newRequestError(0, err.Error())
	}
	if _, err := io.Copy(part, r); err != nil {
		return nil, newRequestError(0, err.Error())
	}
	if err := mw.Close(); err != nil {
		return nil, newRequestError(0, err.Error())
	}

	header := http.Header{}
	header.Set("Content-Type", mw.FormDataContentType())
	return c.Do(ctx, http.MethodPost, path, &buf, header)
}

func (c *Client) sendJSON(ctx context.Context, method, path string, body any) (*Response, error) {
	if body == nil {
		return c.Do(ctx, method, path, nil, nil)
	}
	data, err := json.Marshal(body)
	if err != nil {
		return nil, newRequestError(0, "encode request: "+err.Error())
	}
	header := http.Header{}
	header.Set("Content-Type", "application/json")
	return c.Do(ctx, method, path, bytes.NewReader(data), header)
}

// DecodeJSON unmarshals the response body into v.
func DecodeJSON(resp *Response, v any) error {
	if err := json.Unmarshal(resp.Body, v); err != nil {
		return newRequestError(resp.StatusCode, "decode response: "+err.Error())
	}
	return nil
}
