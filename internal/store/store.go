// Package store declares the backing stores the destination services talk to.
package store

import (
	"context"
	"encoding/json"

	"alerting-destinations/internal/models"
)

// Sort fields understood by the config store.
const (
	SortName        = "config.name.keyword"
	SortHost        = "config.smtp_account.host.keyword"
	SortFromAddress = "config.smtp_account.from_address.keyword"
	SortRecipient   = "config.email_group.recipient_list.recipient"
)

// Filter parameter keys understood by the config store.
const (
	FilterQuery      = "query"
	FilterConfigType = "config_type"
)

// GetConfigRequest selects configs by id set or by filter.
// An empty ConfigIDs matches every config that passes FilterParams.
type GetConfigRequest struct {
	ConfigIDs    []string
	FromIndex    int
	MaxItems     int
	SortField    string
	SortOrder    models.SortOrder
	FilterParams map[string]string
}

// GetConfigResponse holds one page of configs. TotalHits counts all matches.
type GetConfigResponse struct {
	TotalHits int
	Configs   []models.NotificationConfigInfo
}

// ConfigStore is the authoritative store of notification configs.
type ConfigStore interface {
	GetConfigs(ctx context.Context, req GetConfigRequest) (GetConfigResponse, error)
	// CreateConfig stores cfg under id, or under a generated id when id is nil.
	CreateConfig(ctx context.Context, cfg models.NotificationConfig, id *string) (string, error)
	UpdateConfig(ctx context.Context, id string, cfg models.NotificationConfig) (string, error)
	// DeleteConfigs returns the HTTP status of each deleted id. Absent ids are left out.
	DeleteConfigs(ctx context.Context, ids []string) (map[string]int, error)
}

// Hit is a single search hit.
type Hit struct {
	ID      string
	Version int64
	Source  json.RawMessage
}

// SearchResult is the outcome of a document search.
type SearchResult struct {
	TimedOut  bool
	TotalHits int
	Hits      []Hit
}

// DocumentSearcher runs a search body against an index.
type DocumentSearcher interface {
	Search(ctx context.Context, index string, body []byte) (SearchResult, error)
}
