// Package promptapi is an HTTP client for an upstream prompt service. The
// store uses it as a read mirror and a best-effort write target; the
// service is optional and the workspace stays functional without it.
package promptapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/EdnaValter/Tracknamic-AI-Lab/pkg/models"
)

// Client talks JSON to the upstream prompt service.
type Client struct {
	base string
	key  string
	http *http.Client
}

// New returns a client for the given base URL. apiKey may be empty.
func New(baseURL, apiKey string) *Client {
	return &Client{
		base: strings.TrimRight(baseURL, "/"),
		key:  apiKey,
		http: &http.Client{Timeout: 10 * time.Second},
	}
}

type listResponse struct {
	Prompts []models.Prompt `json:"prompts"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// List fetches the full prompt collection.
func (c *Client) List(ctx context.Context) ([]models.Prompt, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+"/v1/prompts", nil)
	if err != nil {
		return nil, err
	}
	var out listResponse
	if err := c.do(req, &out); err != nil {
		return nil, err
	}
	return out.Prompts, nil
}

// SavePrompt upserts one prompt record.
func (c *Client) SavePrompt(ctx context.Context, p models.Prompt) error {
	body, err := json.Marshal(p)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, c.base+"/v1/prompts/"+p.ID, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, nil)
}

// DeletePrompt removes one prompt record. A 404 from the upstream is
// treated as success; the record is gone either way.
func (c *Client) DeletePrompt(ctx context.Context, id string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.base+"/v1/prompts/"+id, nil)
	if err != nil {
		return err
	}
	if err := c.do(req, nil); err != nil {
		var se *StatusError
		if asStatusError(err, &se) && se.Code == http.StatusNotFound {
			return nil
		}
		return err
	}
	return nil
}

// StatusError carries a non-2xx upstream response.
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("prompt service: status %d: %s", e.Code, e.Message)
}

func asStatusError(err error, target **StatusError) bool {
	se, ok := err.(*StatusError)
	if ok {
		*target = se
	}
	return ok
}

func (c *Client) do(req *http.Request, out interface{}) error {
	if c.key != "" {
		req.Header.Set("Authorization", "Bearer "+c.key)
	}
	res, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		var eres errorResponse
		data, _ := io.ReadAll(io.LimitReader(res.Body, 4096))
		if jerr := json.Unmarshal(data, &eres); jerr != nil || eres.Error == "" {
			eres.Error = strings.TrimSpace(string(data))
		}
		return &StatusError{Code: res.StatusCode, Message: eres.Error}
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(res.Body).Decode(out)
}
