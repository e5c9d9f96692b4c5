// Package client talks to a VU1 server.
//
// Every remote call runs through a transport.Policy and opens its own
// connection. Calls that target one dial resolve the role through the
// client's dial.Registry first, so an unknown role never reaches the
// network.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rileyhilliard/vu1/internal/config"
	"github.com/rileyhilliard/vu1/internal/dial"
	"github.com/rileyhilliard/vu1/internal/logger"
	"github.com/rileyhilliard/vu1/internal/transport"
)

const apiPrefix = "/api/v0/dial"

// Options configures a Client.
type Options struct {
	// BaseURL is the server root, e.g. http://localhost:5340.
	BaseURL string

	// Key is the static API key sent as the "key" query parameter.
	Key string

	// Timeout bounds a single attempt.
	Timeout time.Duration

	Policy transport.Policy
	Names  dial.Names
	Logger logger.Logger
}

// Client is a VU1 server client. It is not safe for concurrent use.
type Client struct {
	baseURL  string
	key      string
	timeout  time.Duration
	policy   transport.Policy
	registry *dial.Registry
	log      logger.Logger
}

// New creates a client. The registry is empty until Load is called.
func New(opts Options) *Client {
	log := opts.Logger
	if log == nil {
		log = logger.Noop()
	}
	return &Client{
		baseURL:  opts.BaseURL,
		key:      opts.Key,
		timeout:  opts.Timeout,
		policy:   opts.Policy,
		registry: dial.NewRegistry(opts.Names),
		log:      log,
	}
}

// FromConfig builds a client from the loaded configuration. onRetry may
// be nil.
func FromConfig(cfg *config.Config, log logger.Logger, onRetry func(attempt int, err error)) *Client {
	return New(Options{
		BaseURL: cfg.Server.URL(),
		Key:     cfg.Server.Key,
		Timeout: cfg.Server.Timeout,
		Policy: transport.Policy{
			MaxRetries:    cfg.Server.Retries,
			RetryInterval: cfg.Server.RetryInterval,
			OnRetry:       onRetry,
		},
		Names:  cfg.Dials.Names(),
		Logger: log,
	})
}

// Registry returns the client's role mapping.
func (c *Client) Registry() *dial.Registry {
	return c.registry
}

// Load fetches the dial listing once and binds roles to dials.
func (c *Client) Load(ctx context.Context) (map[dial.Role]dial.Dial, error) {
	dials, err := c.registry.Load(ctx, c.ListDials)
	if err != nil {
		return nil, err
	}
	for _, role := range c.registry.Roles() {
		c.log.Debug("found %s dial (uid %s)", role, dials[role].UID)
	}
	return dials, nil
}

// ListDials returns every dial the server reports, known or not.
func (c *Client) ListDials(ctx context.Context) ([]dial.Dial, error) {
	body, err := c.call(ctx, http.MethodGet, apiPrefix+"/list", nil, nil)
	if err != nil {
		return nil, err
	}

	var resp struct {
		Data []dial.Dial `json:"data"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to decode dial list: %w", err)
	}
	return resp.Data, nil
}

// SetValue moves the role's dial to value (0-100).
func (c *Client) SetValue(ctx context.Context, role dial.Role, value int) error {
	d, err := c.registry.Resolve(role)
	if err != nil {
		return err
	}

	params := url.Values{}
	params.Set("value", strconv.Itoa(value))
	_, err = c.call(ctx, http.MethodGet, dialPath(d, "set"), params, nil)
	return err
}

// SetBacklight sets the role's backlight, each channel 0-100.
func (c *Client) SetBacklight(ctx context.Context, role dial.Role, colour dial.Colour) error {
	d, err := c.registry.Resolve(role)
	if err != nil {
		return err
	}

	params := url.Values{}
	params.Set("red", strconv.Itoa(colour.Red))
	params.Set("green", strconv.Itoa(colour.Green))
	params.Set("blue", strconv.Itoa(colour.Blue))
	_, err = c.call(ctx, http.MethodGet, dialPath(d, "backlight"), params, nil)
	return err
}

// SetImage uploads the image at path to the role's dial. The file is
// validated before any request is made.
func (c *Client) SetImage(ctx context.Context, role dial.Role, path string) error {
	d, err := c.registry.Resolve(role)
	if err != nil {
		return err
	}

	if err := ValidateImage(path); err != nil {
		return err
	}

	form, err := newImageForm(path)
	if err != nil {
		return err
	}
	_, err = c.call(ctx, http.MethodPost, dialPath(d, "image/set"), nil, form)
	return err
}

// ResetValues sets every bound dial to 0.
func (c *Client) ResetValues(ctx context.Context) error {
	for _, role := range c.registry.Roles() {
		if err := c.SetValue(ctx, role, 0); err != nil {
			return fmt.Errorf("failed to reset %s dial: %w", role, err)
		}
	}
	return nil
}

// ResetBacklights turns every bound dial's backlight off.
func (c *Client) ResetBacklights(ctx context.Context) error {
	for _, role := range c.registry.Roles() {
		if err := c.SetBacklight(ctx, role, dial.Off); err != nil {
			return fmt.Errorf("failed to reset %s backlight: %w", role, err)
		}
	}
	return nil
}

// ResetImages uploads each bound dial's default image from dir.
func (c *Client) ResetImages(ctx context.Context, dir string) error {
	for _, role := range c.registry.Roles() {
		path := DefaultImagePath(dir, role)
		if err := c.SetImage(ctx, role, path); err != nil {
			return fmt.Errorf("failed to reset %s image: %w", role, err)
		}
	}
	return nil
}

func dialPath(d dial.Dial, action string) string {
	return fmt.Sprintf("%s/%s/%s", apiPrefix, url.PathEscape(d.UID), action)
}

// call runs one request under the retry policy and returns the response
// body. A fresh http.Client without keep-alives is used per attempt.
func (c *Client) call(ctx context.Context, method, path string, params url.Values, form *imageForm) ([]byte, error) {
	query := url.Values{}
	for k, v := range params {
		query[k] = v
	}
	query.Set("key", c.key)
	target := c.baseURL + path + "?" + query.Encode()

	var body []byte
	err := c.policy.Do(ctx, func(ctx context.Context) error {
		var reader io.Reader
		if form != nil {
			reader = bytes.NewReader(form.body)
		}

		req, err := http.NewRequestWithContext(ctx, method, target, reader)
		if err != nil {
			return err
		}
		if form != nil {
			req.Header.Set("Content-Type", form.contentType)
		}

		c.log.Debug("%s %s", method, path)
		resp, err := c.httpClient().Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return err
		}
		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			return &transport.StatusError{
				Method: method,
				Path:   path,
				Code:   resp.StatusCode,
				Body:   string(data),
			}
		}
		body = data
		return nil
	})
	return body, err
}

func (c *Client) httpClient() *http.Client {
	return &http.Client{
		Timeout:   c.timeout,
		Transport: &http.Transport{DisableKeepAlives: true},
	}
}
