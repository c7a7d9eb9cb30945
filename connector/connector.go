// Package connector issues calls against the OpenML REST API.
package connector

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/openml/openml-go/config"
	"github.com/openml/openml-go/xmlmap"
	"github.com/pkg/errors"
	"github.com/vova616/xxhash"
	"go.uber.org/zap"
)

const apiKeyParam = "api_key"

// File is a named attachment of a multipart POST.
type File struct {
	Field string
	Name  string
	Data  []byte
}

// FileFromPath reads the file at path into an attachment for field.
func FileFromPath(field string, path string) (File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return File{}, &IOError{Op: "read", Target: path, Err: err}
	}
	return File{Field: field, Name: filepath.Base(path), Data: data}, nil
}

// Request is a single API call. Path is relative to the API root.
type Request struct {
	Method string
	Path   string
	Query  url.Values
	Form   url.Values
	Files  []File
}

// Response is the raw answer to a successful call.
type Response struct {
	StatusCode int
	Body       []byte
}

// Connector issues API calls. It is safe for concurrent use.
type Connector struct {
	server *url.URL
	apiURL *url.URL
	apiKey string
	client *retryablehttp.Client
	logger *zap.SugaredLogger
}

// New creates a Connector from the environment in cfg.
func New(cfg *config.Config) (*Connector, error) {
	env := cfg.Environment
	if env == nil {
		env = config.Defaults()
	}

	server, err := url.Parse(env.Server)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid server url %s", env.Server)
	}
	if server.Scheme == "" || server.Host == "" {
		return nil, errors.Errorf("invalid server url %s", env.Server)
	}
	if !strings.HasSuffix(server.Path, "/") {
		server.Path += "/"
	}
	apiPath := strings.TrimPrefix(env.APIPath, "/")
	if apiPath != "" && !strings.HasSuffix(apiPath, "/") {
		apiPath += "/"
	}
	apiURL := server.ResolveReference(&url.URL{Path: apiPath})

	logger := cfg.Log()

	client := retryablehttp.NewClient()
	client.Logger = &leveledLogger{logger: logger}
	client.RetryMax = env.RetryMax
	client.RetryWaitMin = time.Duration(env.RetryWaitMinMs) * time.Millisecond
	client.RetryWaitMax = time.Duration(env.RetryWaitMaxMs) * time.Millisecond
	client.HTTPClient.Timeout = env.Timeout()
	// hand the final response back so error documents of 5xx answers stay readable
	client.ErrorHandler = retryablehttp.PassthroughErrorHandler

	return &Connector{
		server: server,
		apiURL: apiURL,
		apiKey: env.APIKey,
		client: client,
		logger: logger,
	}, nil
}

// APIURL returns the root all request paths are resolved against.
func (c *Connector) APIURL() string {
	return c.apiURL.String()
}

// ServerURL returns the server root, without the API path.
func (c *Connector) ServerURL() string {
	return c.server.String()
}

// HasKey reports whether calls are authenticated.
func (c *Connector) HasKey() bool {
	return c.apiKey != ""
}

// Get reads the resource at path.
func (c *Connector) Get(ctx context.Context, path string, query url.Values) (*Response, error) {
	return c.Do(ctx, Request{Method: http.MethodGet, Path: path, Query: query})
}

// Post sends form fields and files as a multipart body.
func (c *Connector) Post(ctx context.Context, path string, form url.Values, files ...File) (*Response, error) {
	return c.Do(ctx, Request{Method: http.MethodPost, Path: path, Form: form, Files: files})
}

// Delete removes the resource at path.
func (c *Connector) Delete(ctx context.Context, path string) (*Response, error) {
	return c.Do(ctx, Request{Method: http.MethodDelete, Path: path})
}

// Do issues req. A non-2xx status or an error document yields an *APIError, a
// transport failure an *IOError.
func (c *Connector) Do(ctx context.Context, req Request) (*Response, error) {
	if req.Method == "" {
		req.Method = http.MethodGet
	}
	target := c.resolve(req.Path, req.Query)

	var body interface{}
	contentType := ""
	if req.Method == http.MethodPost {
		buf, ct, err := encodeMultipart(req.Form, req.Files)
		if err != nil {
			return nil, &IOError{Op: "encode", Target: req.Path, Err: err}
		}
		body = buf
		contentType = ct
	}

	hreq, err := retryablehttp.NewRequestWithContext(ctx, req.Method, target, body)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to create %s request for %s", req.Method, req.Path)
	}
	if contentType != "" {
		hreq.Header.Set("Content-Type", contentType)
	}
	hreq.Header.Set("Accept", "application/xml")

	start := time.Now()
	resp, err := c.client.Do(hreq)
	if err != nil {
		return nil, &IOError{Op: strings.ToLower(req.Method), Target: Redact(target), Err: unwrapURLError(err)}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &IOError{Op: "read response of", Target: Redact(target), Err: err}
	}

	c.logger.Debugw("openml call",
		"method", req.Method,
		"path", req.Path,
		"query", queryChecksum(hreq.URL.RawQuery),
		"status", resp.StatusCode,
		"duration", time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, newAPIError(req.Method, target, resp.StatusCode, data)
	}
	if root, err := xmlmap.RootName(data); err == nil && root == ErrorEnvelopeTable.Root() {
		return nil, newAPIError(req.Method, target, resp.StatusCode, data)
	}
	return &Response{StatusCode: resp.StatusCode, Body: data}, nil
}

// Schema fetches the named XML schema document.
func (c *Connector) Schema(ctx context.Context, name string) ([]byte, error) {
	if name == "" {
		return nil, errors.New("schema name is required")
	}
	resp, err := c.Get(ctx, "xsd/"+name, nil)
	if err != nil {
		return nil, err
	}
	return resp.Body, nil
}

// Download streams the file at target into w. The api key is only sent to the
// configured server.
func (c *Connector) Download(ctx context.Context, target string, w io.Writer) (int64, error) {
	u, err := url.Parse(target)
	if err != nil {
		return 0, errors.Wrapf(err, "invalid download url %s", target)
	}
	if c.apiKey != "" && u.Host == c.server.Host {
		q := u.Query()
		q.Set(apiKeyParam, c.apiKey)
		u.RawQuery = q.Encode()
	}

	hreq, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return 0, errors.Wrapf(err, "failed to create download request for %s", Redact(u.String()))
	}
	resp, err := c.client.Do(hreq)
	if err != nil {
		return 0, &IOError{Op: "download", Target: Redact(u.String()), Err: unwrapURLError(err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
		return 0, newAPIError(http.MethodGet, u.String(), resp.StatusCode, data)
	}

	n, err := io.Copy(w, resp.Body)
	if err != nil {
		return n, &IOError{Op: "download", Target: Redact(u.String()), Err: err}
	}
	c.logger.Debugw("openml download", "host", u.Host, "path", u.Path, "bytes", n)
	return n, nil
}

func (c *Connector) resolve(path string, query url.Values) string {
	u := c.apiURL.ResolveReference(&url.URL{Path: strings.TrimPrefix(path, "/")})
	q := url.Values{}
	for k, v := range query {
		q[k] = v
	}
	if c.apiKey != "" {
		q.Set(apiKeyParam, c.apiKey)
	}
	u.RawQuery = q.Encode()
	return u.String()
}

func encodeMultipart(form url.Values, files []File) ([]byte, string, error) {
	buf := &bytes.Buffer{}
	mw := multipart.NewWriter(buf)

	keys := make([]string, 0, len(form))
	for k := range form {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		for _, v := range form[k] {
			if err := mw.WriteField(k, v); err != nil {
				return nil, "", errors.Wrapf(err, "failed to write field %s", k)
			}
		}
	}
	for _, f := range files {
		name := f.Name
		if name == "" {
			name = f.Field
		}
		part, err := mw.CreateFormFile(f.Field, name)
		if err != nil {
			return nil, "", errors.Wrapf(err, "failed to create part %s", f.Field)
		}
		if _, err := part.Write(f.Data); err != nil {
			return nil, "", errors.Wrapf(err, "failed to write part %s", f.Field)
		}
	}
	if err := mw.Close(); err != nil {
		return nil, "", errors.Wrap(err, "failed to close multipart body")
	}
	return buf.Bytes(), mw.FormDataContentType(), nil
}

func unwrapURLError(err error) error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return urlErr.Err
	}
	return err
}

func queryChecksum(rawQuery string) string {
	if rawQuery == "" {
		return ""
	}
	return fmt.Sprintf("%#x", xxhash.Checksum32([]byte(rawQuery)))
}
