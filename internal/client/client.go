// Package client is the operator-facing HTTP client: it composes the
// archive, checksum, chunked-upload-coordinator, and deploy-trigger steps
// spec §4.4's "Client composes" line describes, talking to the server over
// the same HTTP surface internal/handler exposes.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"fde/internal/deployconfig"
)

// Client holds one environment's resolved serverUrl/token and the
// *http.Client used for every call against it, the same baseUrl +
// Authorization-header shape the teacher's API client uses for its own
// upstream.
type Client struct {
	baseURL    *url.URL
	token      string
	httpClient *http.Client
}

func New(env *deployconfig.Environment) (*Client, error) {
	baseURL, err := url.Parse(env.ServerURL)
	if err != nil {
		return nil, fmt.Errorf("client: parse serverUrl: %w", err)
	}
	return &Client{
		baseURL: baseURL,
		token:   env.Token,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}, nil
}

// apiError carries the status code back to callers that need to branch on
// it (409 cooldown, 404 unknown upload) without parsing the body twice.
type apiError struct {
	StatusCode int
	Message    string
}

func (e *apiError) Error() string {
	return fmt.Sprintf("server returned %d: %s", e.StatusCode, e.Message)
}

func isStatus(err error, status int) bool {
	apiErr, ok := err.(*apiError)
	return ok && apiErr.StatusCode == status
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	endpoint := c.baseURL.JoinPath(path).String()
	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", c.token)
	return req, nil
}

// doJSON sends reqBody (if non-nil) as JSON and decodes the response into
// result (if non-nil), the same "short endpoint, small body" shape as
// /verify, /upload/init, /upload/complete, /deploy (non-streamed).
func (c *Client) doJSON(ctx context.Context, method, path string, reqBody, result interface{}) error {
	var body io.Reader
	if reqBody != nil {
		data, err := json.Marshal(reqBody)
		if err != nil {
			return err
		}
		body = bytes.NewReader(data)
	}

	req, err := c.newRequest(ctx, method, path, body)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	return c.decode(resp, result)
}

func (c *Client) decode(resp *http.Response, result interface{}) error {
	if resp.StatusCode >= 400 {
		data, _ := io.ReadAll(resp.Body)
		var errBody struct {
			Error string `json:"error"`
		}
		_ = json.Unmarshal(data, &errBody)
		message := errBody.Error
		if message == "" {
			message = string(data)
		}
		return &apiError{StatusCode: resp.StatusCode, Message: message}
	}
	if result == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(result)
}
