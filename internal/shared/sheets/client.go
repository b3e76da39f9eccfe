// Package sheets pushes rows to Google Sheets through an Apps Script
// web app endpoint, keeping service-account credentials out of the shop
// server entirely.
package sheets

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Client posts row batches to Apps Script webhooks.
type Client struct {
	httpClient *http.Client
}

// NewClient creates a sheets client with the given request timeout.
func NewClient(timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
	}
}

type pushPayload struct {
	Title   string          `json:"title"`
	Headers []string        `json:"headers"`
	Rows    [][]interface{} `json:"rows"`
}

type pushResult struct {
	OK           bool   `json:"ok"`
	UpdatedRange string `json:"updated_range"`
	Error        string `json:"error"`
}

// Push replaces or appends a titled table at the webhook URL. The Apps
// Script side decides placement; we only report transport failures and
// explicit errors from the script.
func (c *Client) Push(ctx context.Context, url, title string, headers []string, rows [][]interface{}) error {
	if url == "" {
		return fmt.Errorf("sheet webhook URL is not configured")
	}

	body, err := json.Marshal(pushPayload{Title: title, Headers: headers, Rows: rows})
	if err != nil {
		return fmt.Errorf("encode sheet payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create sheet request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("push to sheet: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("sheet webhook returned %d: %s", resp.StatusCode, string(data))
	}

	var result pushResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		// Apps Script deployments often return plain text on success.
		return nil
	}
	if result.Error != "" {
		return fmt.Errorf("sheet webhook error: %s", result.Error)
	}
	return nil
}

// AppendOrderRow appends a single purchase request row to the orders
// sheet and returns the updated range when the script reports one.
func (c *Client) AppendOrderRow(ctx context.Context, url string, row []interface{}) (string, error) {
	if url == "" {
		return "", nil
	}

	body, err := json.Marshal(map[string]interface{}{"rows": [][]interface{}{row}})
	if err != nil {
		return "", fmt.Errorf("encode order row: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create order request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("append order row: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("orders webhook returned %d: %s", resp.StatusCode, string(data))
	}

	var result pushResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", nil
	}
	if result.Error != "" {
		return "", fmt.Errorf("orders webhook error: %s", result.Error)
	}
	return result.UpdatedRange, nil
}
