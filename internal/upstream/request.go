package upstream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

// APIError represents an unexpected response from the booking service.
type APIError struct {
	StatusCode int
	Message    string
	Body       []byte
}

func (e *APIError) Error() string {
	return fmt.Sprintf("snct api error %d: %s", e.StatusCode, e.Message)
}

// errNoResults marks the documented 400 response the service returns when a
// category has no bookable slots at all (some sites do not handle
// motorcycles, for example). Callers translate it into an empty result.
var errNoResults = errors.New("no technical results")

// technicalError is the body of that documented 400 response.
type technicalError struct {
	Code string `json:"code"`
	Type string `json:"type"`
}

// doGet performs a GET request and returns the raw body.
//
// A 400 with the documented technical-error body yields errNoResults; any
// other non-200 status yields an *APIError.
func (c *Client) doGet(ctx context.Context, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusOK:
		return body, nil
	case resp.StatusCode == http.StatusBadRequest:
		var te technicalError
		if json.Unmarshal(body, &te) == nil && te.Code == "1" && te.Type == "TECHNICAL" {
			return nil, errNoResults
		}
		fallthrough
	default:
		return nil, &APIError{
			StatusCode: resp.StatusCode,
			Message:    http.StatusText(resp.StatusCode),
			Body:       body,
		}
	}
}

// getJSON performs a GET request and unmarshals the body into result.
func (c *Client) getJSON(ctx context.Context, path string, result any) error {
	body, err := c.doGet(ctx, path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, result); err != nil {
		return fmt.Errorf("unmarshal response: %w", err)
	}
	return nil
}
