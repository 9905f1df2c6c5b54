// Package workspace implements a read-only client for the external
// workspace-database API that holds the employee directory.
package workspace

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// APIVersion pins the request schema via the Workspace-Version header.
const APIVersion = "2022-06-28"

const pageSize = 100

// Record is one row of a workspace database with its typed property bag.
type Record struct {
	ID             string              `json:"id"`
	Properties     map[string]Property `json:"properties"`
	CreatedTime    time.Time           `json:"created_time"`
	LastEditedTime time.Time           `json:"last_edited_time"`
}

// Client queries a single workspace database.
type Client struct {
	baseURL    string
	token      string
	databaseID string
	httpClient *http.Client
}

// NewClient constructs a Client for the given database.
func NewClient(baseURL, token, databaseID string) *Client {
	return &Client{
		baseURL:    baseURL,
		token:      token,
		databaseID: databaseID,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

type queryRequest struct {
	StartCursor string `json:"start_cursor,omitempty"`
	PageSize    int    `json:"page_size"`
}

type queryResponse struct {
	Results    []Record `json:"results"`
	HasMore    bool     `json:"has_more"`
	NextCursor string   `json:"next_cursor"`
}

// ListAll pages through the database query endpoint until the cursor is
// exhausted and returns every record.
func (c *Client) ListAll(ctx context.Context) ([]Record, error) {
	var all []Record
	cursor := ""
	for {
		page, err := c.query(ctx, cursor)
		if err != nil {
			return nil, err
		}
		all = append(all, page.Results...)
		if !page.HasMore {
			return all, nil
		}
		if page.NextCursor == "" {
			// has_more without a cursor would re-query the first page
			// forever; treat it as the end of the result set.
			return all, nil
		}
		cursor = page.NextCursor
	}
}

func (c *Client) query(ctx context.Context, cursor string) (*queryResponse, error) {
	body, err := json.Marshal(queryRequest{StartCursor: cursor, PageSize: pageSize})
	if err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/v1/databases/%s/query", c.baseURL, c.databaseID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Workspace-Version", APIVersion)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("workspace: query database: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("workspace: query database: status %d: %s", resp.StatusCode, detail)
	}

	var out queryResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("workspace: decode response: %w", err)
	}
	return &out, nil
}
