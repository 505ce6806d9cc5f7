// Package cdn fetches static media (profile pictures, video streams) from
// the content delivery host, which is separate from the JSON API backend.
package cdn

import (
	"context"
	"fmt"
	"image"
	"io"
	"net/http"
	"strings"
	"time"

	// Profile pictures are served as JPEG or PNG.
	_ "image/jpeg"
	_ "image/png"

	"github.com/rs/zerolog"
)

const (
	profilePicturePath = "/pp/"
	videoPath          = "/video/"
	watchPath          = "/watch/"

	defaultTimeout = 30 * time.Second
)

// Client fetches media from the CDN root and builds share links against the
// public watch host.
type Client struct {
	root      string
	watchRoot string
	http      *http.Client
	logger    zerolog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithLogger sets the logger used for per-request debug lines.
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// New creates a CDN client. root serves the media paths; watchRoot is the
// public host that share links point at.
func New(root, watchRoot string, opts ...Option) *Client {
	c := &Client{
		root:      strings.TrimRight(root, "/"),
		watchRoot: strings.TrimRight(watchRoot, "/"),
		http:      &http.Client{Timeout: defaultTimeout},
		logger:    zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ProfilePicture downloads and decodes a user's profile picture.
func (c *Client) ProfilePicture(ctx context.Context, userID string) (image.Image, error) {
	body, err := c.get(ctx, profilePicturePath+userID)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	img, format, err := image.Decode(body)
	if err != nil {
		return nil, fmt.Errorf("failed to decode profile picture: %w", err)
	}
	c.logger.Debug().Str("user_id", userID).Str("format", format).Msg("decoded profile picture")
	return img, nil
}

// VideoStream opens the raw video stream in default quality. The caller
// owns the returned reader and must close it.
func (c *Client) VideoStream(ctx context.Context, videoID string) (io.ReadCloser, error) {
	return c.get(ctx, videoPath+videoID)
}

// ShareLink returns the public watch URL for a video.
func (c *Client) ShareLink(videoID string) string {
	return c.watchRoot + watchPath + videoID
}

func (c *Client) get(ctx context.Context, path string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.root+path, nil)
	if err != nil {
		return nil, fmt.Errorf("cdn request failed: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("cdn request failed: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("cdn request failed: unexpected status %s", resp.Status)
	}
	return resp.Body, nil
}
