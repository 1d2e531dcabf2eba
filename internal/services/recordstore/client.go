package recordstore

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"rotulo/internal/config"
	"rotulo/internal/inventory"
	"rotulo/internal/services"
)

const userAgent = "Rotulo-Go/0.1.0"

// Store is the remote record surface used by submission and sync.
type Store interface {
	// Write persists a record and returns its server-assigned identifier.
	Write(ctx context.Context, record *inventory.Record) (string, error)
	// List returns all records for the configured application.
	List(ctx context.Context) ([]inventory.Record, error)
	// Delete removes a record by its server-assigned identifier.
	Delete(ctx context.Context, storeID string) error
}

// Client is an HTTP implementation of Store.
type Client struct {
	baseURL  string
	apiToken string
	appID    string
	client   *http.Client
}

// NewClient builds a record store client from remote configuration.
func NewClient(cfg *config.Config) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(cfg.Remote.BaseURL), "/")
	if base == "" {
		return nil, services.Wrap(services.ErrConfiguration, "recordstore", "new", "remote base_url is not configured", nil)
	}
	if _, err := url.Parse(base); err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "recordstore", "new", "remote base_url is not a valid URL", err)
	}

	timeout := time.Duration(cfg.Remote.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &Client{
		baseURL:  base,
		apiToken: strings.TrimSpace(cfg.Remote.APIToken),
		appID:    cfg.Remote.AppID,
		client:   &http.Client{Timeout: timeout},
	}, nil
}

type writeResponse struct {
	ID string `json:"id"`
}

type listResponse struct {
	Records []inventory.Record `json:"records"`
}

// Write persists the record via POST and returns the server-assigned ID.
func (c *Client) Write(ctx context.Context, record *inventory.Record) (string, error) {
	body, err := json.Marshal(record)
	if err != nil {
		return "", services.Wrap(services.ErrWrite, "recordstore", "write", "encode record payload", err)
	}

	resp, err := c.do(ctx, http.MethodPost, c.recordsURL(), bytes.NewReader(body))
	if err != nil {
		return "", classify(err, "recordstore", "write", "record write request failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", services.Wrap(services.ErrWrite, "recordstore", "write",
			fmt.Sprintf("record API returned %d: %s", resp.StatusCode, readErrorBody(resp.Body)), nil)
	}

	var decoded writeResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", services.Wrap(services.ErrWrite, "recordstore", "write", "decode record write response", err)
	}
	return decoded.ID, nil
}

// List fetches every record in the application collection.
func (c *Client) List(ctx context.Context) ([]inventory.Record, error) {
	resp, err := c.do(ctx, http.MethodGet, c.recordsURL(), nil)
	if err != nil {
		return nil, classify(err, "recordstore", "list", "record list request failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, services.Wrap(services.ErrWrite, "recordstore", "list",
			fmt.Sprintf("record API returned %d: %s", resp.StatusCode, readErrorBody(resp.Body)), nil)
	}

	var decoded listResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, services.Wrap(services.ErrWrite, "recordstore", "list", "decode record list response", err)
	}
	return decoded.Records, nil
}

// Delete removes a record by server ID. A missing record is reported with
// the not-found marker so callers can treat repeats as already done.
func (c *Client) Delete(ctx context.Context, storeID string) error {
	storeID = strings.TrimSpace(storeID)
	if storeID == "" {
		return services.Wrap(services.ErrValidation, "recordstore", "delete", "record id is required", nil)
	}

	target := c.recordsURL() + "/" + url.PathEscape(storeID)
	resp, err := c.do(ctx, http.MethodDelete, target, nil)
	if err != nil {
		return classify(err, "recordstore", "delete", "record delete request failed")
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return services.Wrap(services.ErrNotFound, "recordstore", "delete",
			fmt.Sprintf("record %s does not exist", storeID), nil)
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return services.Wrap(services.ErrWrite, "recordstore", "delete",
			fmt.Sprintf("record API returned %d: %s", resp.StatusCode, readErrorBody(resp.Body)), nil)
	}
	io.Copy(io.Discard, resp.Body)
	return nil
}

func (c *Client) recordsURL() string {
	return fmt.Sprintf("%s/apps/%s/records", c.baseURL, url.PathEscape(c.appID))
}

func (c *Client) do(ctx context.Context, method, target string, body io.Reader) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiToken)
	}
	return c.client.Do(req)
}

// classify maps transport errors onto fault markers. Deadline and socket
// timeouts become timeout faults so the syncer counts them retryable.
func classify(err error, component, operation, message string) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return services.Wrap(services.ErrTimeout, component, operation, message, err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return services.Wrap(services.ErrTimeout, component, operation, message, err)
	}
	return services.Wrap(services.ErrWrite, component, operation, message, err)
}

func readErrorBody(r io.Reader) string {
	body, _ := io.ReadAll(io.LimitReader(r, 2048))
	text := strings.TrimSpace(string(body))
	if text == "" {
		return "no response body"
	}
	return text
}
