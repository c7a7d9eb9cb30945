package openml

import (
	"context"

	"github.com/openml/openml-go/schema"
	"github.com/pkg/errors"
)

// Schema fetches and compiles the named schema document, such as openml.data.upload.
func (c *Client) Schema(ctx context.Context, name string) (*schema.Schema, error) {
	if name == "" {
		return nil, usage("schema", "a schema name is required")
	}
	doc, err := c.conn.Schema(ctx, name)
	if err != nil {
		return nil, err
	}
	s, err := schema.Compile(doc)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to compile schema %s", name)
	}
	return s, nil
}

// ValidateDocument checks doc against the named schema. A violation is returned as a
// *schema.ValidationError.
func (c *Client) ValidateDocument(ctx context.Context, name string, doc []byte) error {
	s, err := c.Schema(ctx, name)
	if err != nil {
		return err
	}
	return s.Validate(doc)
}
