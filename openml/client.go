// Package openml is a typed client for the OpenML REST API. Every call maps to one API
// action and returns the decoded response document.
package openml

import (
	"context"
	"net/url"
	"regexp"
	"strconv"

	"github.com/openml/openml-go/config"
	"github.com/openml/openml-go/connector"
	"github.com/openml/openml-go/xmlmap"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// Evaluation engine request modes.
const (
	ModeNormal = "normal"
	ModeRandom = "random"
)

var tagPattern = regexp.MustCompile(`^[a-zA-Z0-9_\-\.]{1,128}$`)

// Client calls the OpenML API. It holds no per-call state and is safe for concurrent
// use.
type Client struct {
	conn     *connector.Connector
	logger   *zap.SugaredLogger
	cacheDir string
}

// New creates a Client for the server configured in cfg.
func New(cfg *config.Config) (*Client, error) {
	conn, err := connector.New(cfg)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create connector")
	}
	cacheDir := ""
	if cfg.Environment != nil {
		cacheDir = cfg.Environment.CacheDir
	}
	return &Client{
		conn:     conn,
		logger:   cfg.Log(),
		cacheDir: cacheDir,
	}, nil
}

// Connector returns the underlying connector.
func (c *Client) Connector() *connector.Connector {
	return c.conn
}

func get[T any](ctx context.Context, c *Client, table *xmlmap.Table[T], path string, query url.Values) (*T, error) {
	resp, err := c.conn.Get(ctx, path, query)
	if err != nil {
		return nil, err
	}
	return decode(table, resp)
}

func post[T any](ctx context.Context, c *Client, table *xmlmap.Table[T], path string, form url.Values, files ...connector.File) (*T, error) {
	resp, err := c.conn.Post(ctx, path, form, files...)
	if err != nil {
		return nil, err
	}
	return decode(table, resp)
}

func del[T any](ctx context.Context, c *Client, table *xmlmap.Table[T], path string) (*T, error) {
	resp, err := c.conn.Delete(ctx, path)
	if err != nil {
		return nil, err
	}
	return decode(table, resp)
}

func decode[T any](table *xmlmap.Table[T], resp *connector.Response) (*T, error) {
	v, err := table.Unmarshal(resp.Body)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to decode %s response", table.Root())
	}
	return v, nil
}

// description renders a document as the description attachment of an upload.
func description[T any](op string, table *xmlmap.Table[T], v *T) (connector.File, error) {
	doc, err := table.Marshal(v)
	if err != nil {
		return connector.File{}, errors.Wrapf(err, "failed to write %s description", op)
	}
	return connector.File{Field: "description", Name: "description.xml", Data: doc}, nil
}

func checkID(op string, name string, id int) error {
	if id <= 0 {
		return usage(op, "%s must be positive, got %d", name, id)
	}
	return nil
}

func checkTag(op string, tag string) error {
	if !tagPattern.MatchString(tag) {
		return usage(op, "invalid tag %q", tag)
	}
	return nil
}

func checkMode(op string, mode string) error {
	if mode != ModeNormal && mode != ModeRandom {
		return usage(op, "mode must be %s or %s, got %q", ModeNormal, ModeRandom, mode)
	}
	return nil
}

func itoa(i int) string {
	return strconv.Itoa(i)
}

func tagForm(idField string, id int, tag string) url.Values {
	return url.Values{idField: {itoa(id)}, "tag": {tag}}
}
