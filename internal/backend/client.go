// Package backend is the REST client for the workshop backend.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"

	"workshop-dispatch/internal/metrics"
	"workshop-dispatch/internal/models"
)

// StaffHeader identifies the acting staff member on every request.
const StaffHeader = "x-staff-id"

type Config struct {
	BaseURL    string
	StaffID    string
	Timeout    time.Duration
	HTTPClient *http.Client
}

type Client struct {
	baseURL string
	staffID string
	client  *http.Client
}

func New(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, errors.New("backend base url required")
	}
	client := cfg.HTTPClient
	if client == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		client = &http.Client{Timeout: timeout}
	}
	return &Client{
		baseURL: strings.TrimSuffix(cfg.BaseURL, "/"),
		staffID: cfg.StaffID,
		client:  client,
	}, nil
}

type staffKey struct{}

// WithStaffID overrides the client's default staff id for calls made with ctx.
func WithStaffID(ctx context.Context, staffID string) context.Context {
	if staffID == "" {
		return ctx
	}
	return context.WithValue(ctx, staffKey{}, staffID)
}

func StaffIDFrom(ctx context.Context) string {
	v, _ := ctx.Value(staffKey{}).(string)
	return v
}

func (c *Client) Targets(ctx context.Context, regionID *int) ([]models.Target, error) {
	path := "/santa/targets"
	if regionID != nil {
		path += "?region_id=" + strconv.Itoa(*regionID)
	}
	var out []models.Target
	err := c.do(ctx, http.MethodGet, "/santa/targets", path, nil, &out)
	return out, err
}

func (c *Client) Wishlist(ctx context.Context, childID int) ([]models.WishItem, error) {
	var out models.Wishlist
	path := fmt.Sprintf("/list-elf/child/%d/wishlist", childID)
	if err := c.do(ctx, http.MethodGet, "/list-elf/child/{id}/wishlist", path, nil, &out); err != nil {
		return nil, err
	}
	return out.Wishlist, nil
}

func (c *Client) AvailableReindeer(ctx context.Context) ([]models.Reindeer, error) {
	var out []models.Reindeer
	err := c.do(ctx, http.MethodGet, "/reindeer/available", "/reindeer/available", nil, &out)
	return out, err
}

func (c *Client) Regions(ctx context.Context) ([]models.Region, error) {
	var out []models.Region
	err := c.do(ctx, http.MethodGet, "/regions/all", "/regions/all", nil, &out)
	return out, err
}

func (c *Client) Gifts(ctx context.Context) ([]models.Gift, error) {
	var out []models.Gift
	err := c.do(ctx, http.MethodGet, "/gift/", "/gift/", nil, &out)
	return out, err
}

func (c *Client) Groups(ctx context.Context, status models.GroupStatus) ([]models.GroupSummary, error) {
	path := "/santa/groups?status_filter=" + url.QueryEscape(string(status))
	var out []models.GroupSummary
	err := c.do(ctx, http.MethodGet, "/santa/groups", path, nil, &out)
	return out, err
}

func (c *Client) Group(ctx context.Context, groupID int) (models.GroupDetail, error) {
	var out models.GroupDetail
	err := c.do(ctx, http.MethodGet, "/santa/groups/{id}", fmt.Sprintf("/santa/groups/%d", groupID), nil, &out)
	return out, err
}

// CreateGroup returns the id of the new PENDING group.
func (c *Client) CreateGroup(ctx context.Context, req models.CreateGroupRequest) (int, error) {
	var id int
	err := c.do(ctx, http.MethodPost, "/santa/groups", "/santa/groups", req, &id)
	return id, err
}

func (c *Client) AddItem(ctx context.Context, groupID int, req models.AddItemRequest) error {
	path := fmt.Sprintf("/santa/groups/%d/items", groupID)
	return c.do(ctx, http.MethodPost, "/santa/groups/{id}/items", path, req, nil)
}

func (c *Client) Deliver(ctx context.Context, groupID int) (models.DeliverResponse, error) {
	var out models.DeliverResponse
	path := fmt.Sprintf("/santa/groups/%d/deliver", groupID)
	err := c.do(ctx, http.MethodPost, "/santa/groups/{id}/deliver", path, nil, &out)
	return out, err
}

func (c *Client) DeleteGroup(ctx context.Context, groupID int) error {
	path := fmt.Sprintf("/santa/groups/%d", groupID)
	return c.do(ctx, http.MethodDelete, "/santa/groups/{id}", path, nil, nil)
}

// AssignGifts runs the backend's own allocator.
func (c *Client) AssignGifts(ctx context.Context, regionID *int) ([]models.Assignment, error) {
	path := "/santa/assign-gifts"
	if regionID != nil {
		path += "?region_id=" + strconv.Itoa(*regionID)
	}
	var out []models.Assignment
	err := c.do(ctx, http.MethodGet, "/santa/assign-gifts", path, nil, &out)
	return out, err
}

func (c *Client) do(ctx context.Context, method, route, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return errors.Wrapf(err, "%s %s: marshal request", method, path)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return errors.Wrapf(err, "%s %s: build request", method, path)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if staff := c.staffFor(ctx); staff != "" {
		req.Header.Set(StaffHeader, staff)
	}

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		metrics.ObserveBackend(method, route, "error", time.Since(start))
		return &NetworkError{Method: method, Path: path, Err: err}
	}
	defer resp.Body.Close()
	metrics.ObserveBackend(method, route, strconv.Itoa(resp.StatusCode), time.Since(start))

	if resp.StatusCode >= 300 {
		return &Error{
			Method:     method,
			Path:       path,
			StatusCode: resp.StatusCode,
			Message:    readDetail(resp),
		}
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.Wrapf(err, "%s %s: decode response", method, path)
	}
	return nil
}

func (c *Client) staffFor(ctx context.Context) string {
	if id := StaffIDFrom(ctx); id != "" {
		return id
	}
	return c.staffID
}

// readDetail extracts the backend's message: {"detail": "..."} for rejections raised by the
// API layer, the raw body otherwise.
func readDetail(resp *http.Response) string {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	var payload struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(raw, &payload); err == nil && len(payload.Detail) > 0 {
		var s string
		if json.Unmarshal(payload.Detail, &s) == nil {
			return s
		}
		return string(payload.Detail)
	}
	if text := strings.TrimSpace(string(raw)); text != "" {
		return text
	}
	return http.StatusText(resp.StatusCode)
}
