package omero

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/ome/omero-cli-render/internal/render"
)

// ClientOptions configure the HTTP gateway.
type ClientOptions struct {
	BaseURL    string
	SessionKey string
	Timeout    time.Duration
	HTTPClient *http.Client
}

// NewClient builds a Gateway over the image service's JSON API.
func NewClient(opts ClientOptions) (*Client, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if baseURL == "" {
		return nil, fmt.Errorf("server url required")
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 60 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	return &Client{
		baseURL:    baseURL,
		sessionKey: strings.TrimSpace(opts.SessionKey),
		client:     httpClient,
	}, nil
}

// Client talks to the image service over HTTP. It implements Gateway.
type Client struct {
	baseURL    string
	sessionKey string
	client     *http.Client
}

var _ Gateway = (*Client)(nil)

// wireChannel is the JSON shape of one channel's settings.
type wireChannel struct {
	Active bool    `json:"active"`
	Color  string  `json:"color"`
	Label  string  `json:"label"`
	Start  float64 `json:"start"`
	End    float64 `json:"end"`
}

// wireState is the JSON shape of an image's rendering settings.
type wireState struct {
	ImageID      int64                  `json:"imageId"`
	Name         string                 `json:"name"`
	ChannelCount int                    `json:"channelCount"`
	SizeZ        int                    `json:"sizeZ"`
	SizeT        int                    `json:"sizeT"`
	Channels     map[string]wireChannel `json:"channels"`
	DefaultZ     int                    `json:"defaultZ"`
	DefaultT     int                    `json:"defaultT"`
	Greyscale    bool                   `json:"greyscale"`
}

func (w *wireState) toState() (*render.CurrentState, error) {
	state := &render.CurrentState{
		ImageID:      w.ImageID,
		Name:         w.Name,
		ChannelCount: w.ChannelCount,
		SizeZ:        w.SizeZ,
		SizeT:        w.SizeT,
		Channels:     make(map[int]render.ChannelState, len(w.Channels)),
		DefaultZ:     w.DefaultZ,
		DefaultT:     w.DefaultT,
		Greyscale:    w.Greyscale,
	}
	for key, ch := range w.Channels {
		idx, err := strconv.Atoi(key)
		if err != nil {
			return nil, fmt.Errorf("invalid channel index %q in response", key)
		}
		state.Channels[idx] = render.ChannelState{
			Active: ch.Active,
			Color:  ch.Color,
			Label:  ch.Label,
			Start:  ch.Start,
			End:    ch.End,
		}
	}
	return state, nil
}

func fromState(state *render.CurrentState) *wireState {
	w := &wireState{
		ImageID:      state.ImageID,
		Name:         state.Name,
		ChannelCount: state.ChannelCount,
		SizeZ:        state.SizeZ,
		SizeT:        state.SizeT,
		Channels:     make(map[string]wireChannel, len(state.Channels)),
		DefaultZ:     state.DefaultZ,
		DefaultT:     state.DefaultT,
		Greyscale:    state.Greyscale,
	}
	for idx, ch := range state.Channels {
		w.Channels[strconv.Itoa(idx)] = wireChannel{
			Active: ch.Active,
			Color:  ch.Color,
			Label:  ch.Label,
			Start:  ch.Start,
			End:    ch.End,
		}
	}
	return w
}

// OpenRendering acquires a server-side rendering engine for the image and
// wraps it in a handle. The handle holds the engine until Close.
func (c *Client) OpenRendering(ctx context.Context, imageID int64) (RenderingService, error) {
	var resp struct {
		Handle string `json:"handle"`
	}
	path := fmt.Sprintf("/api/images/%d/rendering/engine", imageID)
	if err := c.do(ctx, http.MethodPost, path, nil, &resp); err != nil {
		return nil, fmt.Errorf("open rendering engine for image %d: %w", imageID, err)
	}
	if resp.Handle == "" {
		return nil, fmt.Errorf("open rendering engine for image %d: empty handle", imageID)
	}
	return &httpRendering{client: c, imageID: imageID, handle: resp.Handle}, nil
}

// ListImages expands a target to image IDs. A plain image target is
// returned as-is after an existence check.
func (c *Client) ListImages(ctx context.Context, target Target) ([]int64, error) {
	if !target.IsContainer() {
		path := fmt.Sprintf("/api/images/%d", target.ID)
		if err := c.do(ctx, http.MethodGet, path, nil, nil); err != nil {
			return nil, err
		}
		return []int64{target.ID}, nil
	}
	var resp struct {
		Images []int64 `json:"images"`
	}
	path := fmt.Sprintf("/api/%ss/%d/images", strings.ToLower(string(target.Kind)), target.ID)
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, fmt.Errorf("list images of %s: %w", target, err)
	}
	return resp.Images, nil
}

func (c *Client) SetChannelNames(ctx context.Context, imageIDs []int64, names map[int]string) error {
	if len(imageIDs) == 0 || len(names) == 0 {
		return nil
	}
	body := struct {
		ImageIDs []int64        `json:"imageIds"`
		Names    map[int]string `json:"names"`
	}{ImageIDs: imageIDs, Names: names}
	if err := c.do(ctx, http.MethodPost, "/api/images/channelnames", body, nil); err != nil {
		return fmt.Errorf("set channel names: %w", err)
	}
	return nil
}

func (c *Client) CopySettings(ctx context.Context, fromImage int64, toImages []int64) (map[int64]error, error) {
	body := struct {
		Targets []int64 `json:"targets"`
	}{Targets: toImages}
	var resp struct {
		Failed map[string]string `json:"failed"`
	}
	path := fmt.Sprintf("/api/images/%d/rendering/copy", fromImage)
	if err := c.do(ctx, http.MethodPost, path, body, &resp); err != nil {
		return nil, fmt.Errorf("copy settings from image %d: %w", fromImage, err)
	}
	failed := make(map[int64]error, len(resp.Failed))
	for key, msg := range resp.Failed {
		id, err := strconv.ParseInt(key, 10, 64)
		if err != nil {
			continue
		}
		failed[id] = fmt.Errorf("%s", msg)
	}
	return failed, nil
}

func (c *Client) CheckPixels(ctx context.Context, imageID int64, force bool) (PixelsCheck, error) {
	var resp PixelsCheck
	path := fmt.Sprintf("/api/images/%d/pixels/check?force=%t", imageID, force)
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return PixelsCheck{}, fmt.Errorf("check pixels of image %d: %w", imageID, err)
	}
	return resp, nil
}

// do issues one JSON request. A nil out discards the response body.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.sessionKey != "" {
		req.Header.Set("X-OMERO-Session", c.sessionKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%w: %s %s", ErrNotFound, method, path)
	}
	if resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("server returned %d: %s", resp.StatusCode, strings.TrimSpace(string(detail)))
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// httpRendering is the per-image rendering handle over the JSON API.
type httpRendering struct {
	client  *Client
	imageID int64
	handle  string
	closed  bool
}

func (r *httpRendering) Fetch(ctx context.Context) (*render.CurrentState, error) {
	var resp wireState
	path := fmt.Sprintf("/api/rendering/%s/settings", r.handle)
	if err := r.client.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, FetchError(r.imageID, err)
	}
	state, err := resp.toState()
	if err != nil {
		return nil, FetchError(r.imageID, err)
	}
	return state, nil
}

func (r *httpRendering) Commit(ctx context.Context, state *render.CurrentState) error {
	path := fmt.Sprintf("/api/rendering/%s/settings", r.handle)
	if err := r.client.do(ctx, http.MethodPut, path, fromState(state), nil); err != nil {
		return CommitError(r.imageID, err)
	}
	return nil
}

// Close releases the server-side engine. Safe to call more than once; the
// release uses its own deadline because the command context may already be
// cancelled.
func (r *httpRendering) Close() error {
	if r.closed {
		return nil
	}
	r.closed = true
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	path := fmt.Sprintf("/api/rendering/%s", r.handle)
	return r.client.do(ctx, http.MethodDelete, path, nil, nil)
}
