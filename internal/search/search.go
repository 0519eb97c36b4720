// Package search talks to the OpenSearch cluster holding the legacy alerting
// index and the notification index.
package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	opensearch "github.com/opensearch-project/opensearch-go/v2"
	"github.com/opensearch-project/opensearch-go/v2/opensearchapi"

	"alerting-destinations/internal/models"
	"alerting-destinations/internal/store"
)

// Client wraps the OpenSearch client.
type Client struct {
	client *opensearch.Client
}

var _ store.DocumentSearcher = (*Client)(nil)

func New(addresses []string, username, password string) (*Client, error) {
	c, err := opensearch.NewClient(opensearch.Config{
		Addresses: addresses,
		Username:  username,
		Password:  password,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create opensearch client: %w", err)
	}
	return &Client{client: c}, nil
}

// Transport exposes the underlying client for raw API calls.
func (c *Client) Transport() opensearchapi.Transport {
	return c.client
}

// totalHits reads hits.total in either the object form or the legacy plain
// number form.
type totalHits int

func (t *totalHits) UnmarshalJSON(b []byte) error {
	var n int
	if err := json.Unmarshal(b, &n); err == nil {
		*t = totalHits(n)
		return nil
	}
	var obj struct {
		Value int `json:"value"`
	}
	if err := json.Unmarshal(b, &obj); err != nil {
		return err
	}
	*t = totalHits(obj.Value)
	return nil
}

type searchResponse struct {
	TimedOut bool `json:"timed_out"`
	Hits     struct {
		Total totalHits `json:"total"`
		Hits []struct {
			ID      string          `json:"_id"`
			Version int64           `json:"_version"`
			Source  json.RawMessage `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}

// Search runs body against index.
func (c *Client) Search(ctx context.Context, index string, body []byte) (store.SearchResult, error) {
	req := opensearchapi.SearchRequest{
		Index: []string{index},
		Body:  bytes.NewReader(body),
	}
	res, err := req.Do(ctx, c.client)
	if err != nil {
		return store.SearchResult{}, fmt.Errorf("failed to search: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return store.SearchResult{}, responseError("search", res)
	}

	var parsed searchResponse
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return store.SearchResult{}, fmt.Errorf("failed to decode search response: %w", err)
	}

	result := store.SearchResult{
		TimedOut:  parsed.TimedOut,
		TotalHits: int(parsed.Hits.Total),
		Hits:      make([]store.Hit, 0, len(parsed.Hits.Hits)),
	}
	for _, h := range parsed.Hits.Hits {
		result.Hits = append(result.Hits, store.Hit{ID: h.ID, Version: h.Version, Source: h.Source})
	}
	return result, nil
}

// IndexConfig writes the notification index document for info.
func (c *Client) IndexConfig(ctx context.Context, index string, info models.NotificationConfigInfo) error {
	body, err := json.Marshal(models.NewNotificationConfigDoc(info))
	if err != nil {
		return fmt.Errorf("failed to encode config document: %w", err)
	}
	req := opensearchapi.IndexRequest{
		Index:      index,
		DocumentID: info.ConfigID,
		Body:       bytes.NewReader(body),
		Refresh:    "true",
	}
	res, err := req.Do(ctx, c.client)
	if err != nil {
		return fmt.Errorf("failed to index config %s: %w", info.ConfigID, err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return responseError("index", res)
	}
	return nil
}

// DeleteConfig removes the document for id. A missing document is not an error.
func (c *Client) DeleteConfig(ctx context.Context, index, id string) error {
	req := opensearchapi.DeleteRequest{
		Index:      index,
		DocumentID: id,
		Refresh:    "true",
	}
	res, err := req.Do(ctx, c.client)
	if err != nil {
		return fmt.Errorf("failed to delete config %s: %w", id, err)
	}
	defer res.Body.Close()
	if res.StatusCode == http.StatusNotFound {
		return nil
	}
	if res.IsError() {
		return responseError("delete", res)
	}
	return nil
}

// responseError keeps the status but drops the body, which may name indices.
func responseError(op string, res *opensearchapi.Response) error {
	_, _ = io.Copy(io.Discard, res.Body)
	return &models.StatusError{Status: res.StatusCode, Message: fmt.Sprintf("%s request failed with status %d", op, res.StatusCode)}
}
