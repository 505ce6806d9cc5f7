// Package datasource translates domain queries into backend calls and
// parses the responses into entity models. Data sources are stateless per
// call and blocking; repositories sit in front of them with a cache.
package datasource

import (
	"context"
	"encoding/json"

	"github.com/devidclub/devid-go/internal/client"
)

// base is embedded by every data source and holds the backend client.
type base struct {
	api *client.Client
}

// getJSON performs a GET and decodes the response into v. An empty body is
// ErrEmptyResponse; a malformed one is a ParseError naming the entity.
func (b base) getJSON(ctx context.Context, path, entity string, v any) error {
	body, err := b.api.Get(ctx, path)
	if err != nil {
		return err
	}
	return decode(body, entity, v)
}

func decode(body []byte, entity string, v any) error {
	if len(body) == 0 {
		return ErrEmptyResponse
	}
	if err := json.Unmarshal(body, v); err != nil {
		return &ParseError{Entity: entity, Err: err}
	}
	return nil
}
