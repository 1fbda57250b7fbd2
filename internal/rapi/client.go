// Package rapi provides a typed client for the Ganeti Remote API (RAPI) and
// the job waiter that turns asynchronous job submissions into bounded-time
// results.
package rapi

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// ErrInstanceNotFound is returned by GetInstance when the controller reports
// that no instance with the given name exists.
var ErrInstanceNotFound = errors.New("instance not found")

// StatusError is a non-2xx response from the controller, carrying the HTTP
// status code and the response body text. It is never swallowed: callers
// decide whether a given code (such as 404 on lookup) has a meaning.
type StatusError struct {
	Code int
	Body string
}

// Error implements the error interface.
func (e *StatusError) Error() string {
	return fmt.Sprintf("API call failed with code %d: %s", e.Code, e.Body)
}

// Config holds the connection settings for a RAPI endpoint.
type Config struct {
	// Address is the host the RAPI listens on.
	Address string

	// Port is the RAPI port, 5080 by default.
	Port int

	// Username and Password enable HTTP basic authentication when both are
	// set. Ganeti RAPI write access always requires credentials.
	Username string
	Password string

	// VerifyTLS enables certificate verification. Ganeti clusters almost
	// always run self-signed RAPI certificates, so this is opt-in.
	VerifyTLS bool

	// Timeout bounds a single HTTP request. Zero means 30 seconds.
	Timeout time.Duration
}

// Client issues typed lifecycle requests against a cluster controller's RAPI.
//
// All lifecycle submissions (create, start, stop, reboot, delete) return a
// JobID; completion is tracked separately via GetJob, usually through a
// Waiter.
type Client struct {
	baseURL  string
	username string
	password string
	http     *http.Client
	log      zerolog.Logger
}

// NewClient creates a Client for the given endpoint.
func NewClient(cfg Config, log zerolog.Logger) *Client {
	address := cfg.Address
	if address == "" {
		address = "localhost"
	}
	port := cfg.Port
	if port == 0 {
		port = 5080
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	transport := &http.Transport{
		TLSClientConfig: &tls.Config{InsecureSkipVerify: !cfg.VerifyTLS}, //nolint:gosec // operator-controlled trust, see Config.VerifyTLS
	}

	return &Client{
		// The /2 prefix is the RAPI resource namespace version.
		baseURL:  fmt.Sprintf("https://%s:%d/2", address, port),
		username: cfg.Username,
		password: cfg.Password,
		http: &http.Client{
			Transport: transport,
			Timeout:   timeout,
		},
		log: log,
	}
}

// GetInstance fetches the observed state of an instance.
// Returns ErrInstanceNotFound when the controller reports 404.
func (c *Client) GetInstance(ctx context.Context, name string) (*Instance, error) {
	body, code, err := c.do(ctx, http.MethodGet, "/instances/"+name, nil)
	if err != nil {
		return nil, err
	}
	if code == http.StatusNotFound {
		return nil, fmt.Errorf("instance %s: %w", name, ErrInstanceNotFound)
	}
	if code != http.StatusOK {
		return nil, &StatusError{Code: code, Body: string(body)}
	}

	var inst Instance
	if err := json.Unmarshal(body, &inst); err != nil {
		return nil, fmt.Errorf("failed to decode instance %s: %w", name, err)
	}
	return &inst, nil
}

// CreateInstance submits an instance creation job.
// The payload is the document produced by the translate package.
func (c *Client) CreateInstance(ctx context.Context, payload interface{}) (JobID, error) {
	return c.submitJob(ctx, http.MethodPost, "/instances", payload)
}

// StartInstance submits a startup job for the named instance.
func (c *Client) StartInstance(ctx context.Context, name string) (JobID, error) {
	return c.submitJob(ctx, http.MethodPut, "/instances/"+name+"/startup", nil)
}

// StopInstance submits a shutdown job for the named instance.
func (c *Client) StopInstance(ctx context.Context, name string) (JobID, error) {
	return c.submitJob(ctx, http.MethodPut, "/instances/"+name+"/shutdown", nil)
}

// RebootInstance submits a reboot job for the named instance.
func (c *Client) RebootInstance(ctx context.Context, name string) (JobID, error) {
	return c.submitJob(ctx, http.MethodPost, "/instances/"+name+"/reboot", nil)
}

// DeleteInstance submits a destruction job for the named instance.
// This cannot be undone.
func (c *Client) DeleteInstance(ctx context.Context, name string) (JobID, error) {
	return c.submitJob(ctx, http.MethodDelete, "/instances/"+name, nil)
}

// GetJob fetches the current state of a job.
func (c *Client) GetJob(ctx context.Context, id JobID) (*Job, error) {
	body, code, err := c.do(ctx, http.MethodGet, fmt.Sprintf("/jobs/%d", id), nil)
	if err != nil {
		return nil, err
	}
	if code != http.StatusOK {
		return nil, &StatusError{Code: code, Body: string(body)}
	}

	var job Job
	if err := json.Unmarshal(body, &job); err != nil {
		return nil, fmt.Errorf("failed to decode job %d: %w", id, err)
	}
	job.ID = id
	return &job, nil
}

// submitJob issues a lifecycle request and parses the job id from the
// response body. Submission endpoints answer 200 with a bare job number.
func (c *Client) submitJob(ctx context.Context, method, resource string, payload interface{}) (JobID, error) {
	body, code, err := c.do(ctx, method, resource, payload)
	if err != nil {
		return 0, err
	}
	if code != http.StatusOK {
		return 0, &StatusError{Code: code, Body: string(body)}
	}

	id, err := strconv.ParseInt(strings.TrimSpace(string(body)), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("failed to parse job id from response %q: %w", string(body), err)
	}
	return JobID(id), nil
}

// do performs a single HTTP request and returns the response body and status
// code. Transport failures are returned as errors; HTTP status handling is
// left to the caller.
func (c *Client) do(ctx context.Context, method, resource string, payload interface{}) ([]byte, int, error) {
	var reqBody io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to encode request body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+resource, reqBody)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build %s %s request: %w", method, resource, err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-Id", uuid.New().String())
	if c.username != "" && c.password != "" {
		req.SetBasicAuth(c.username, c.password)
	}

	c.log.Debug().
		Str("method", method).
		Str("resource", resource).
		Str("request_id", req.Header.Get("X-Request-Id")).
		Msg("querying RAPI")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("%s %s failed: %w", method, resource, err)
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			c.log.Warn().Err(cerr).Msg("failed to close response body")
		}
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("failed to read %s %s response: %w", method, resource, err)
	}

	return body, resp.StatusCode, nil
}
