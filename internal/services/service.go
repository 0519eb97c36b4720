// Package services serves the legacy email account and email group API on top
// of the notification config store and the legacy alerting index.
package services

import (
	"context"
	"strings"
	"time"

	"alerting-destinations/internal/events"
	"alerting-destinations/internal/logging"
	"alerting-destinations/internal/models"
	"alerting-destinations/internal/query"
	"alerting-destinations/internal/settings"
	"alerting-destinations/internal/store"
)

// Publisher announces config changes to the projection.
type Publisher interface {
	Publish(ctx context.Context, e events.ConfigChanged) error
}

// Deps are the collaborators shared by the destination services.
type Deps struct {
	Store     store.ConfigStore
	Searcher  store.DocumentSearcher
	AllowList *settings.AllowList
	// Publisher may be nil, in which case no events are sent.
	Publisher         Publisher
	Logger            *logging.Logger
	LegacyIndex       string
	NotificationIndex string
	// Resort orders merged search pages by the requested sort field.
	Resort bool
}

type base struct {
	Deps
	now func() time.Time
}

func newBase(d Deps) base {
	if d.Logger == nil {
		d.Logger = logging.Discard()
	}
	return base{Deps: d, now: time.Now}
}

// checkAllowed reads the allow list once. It runs before any store call.
func (b base) checkAllowed() error {
	if !b.AllowList.Allows(settings.DestinationEmail) {
		return models.Forbidden("This API is blocked since Destination type [EMAIL] is not allowed")
	}
	return nil
}

// publish never fails the request: the config is already stored.
func (b base) publish(ctx context.Context, id string, configType models.ConfigType, action string) {
	if b.Publisher == nil {
		return
	}
	e := events.NewConfigChanged(id, configType, action, b.now())
	if err := b.Publisher.Publish(ctx, e); err != nil {
		b.Logger.WithField("config_id", id).Warnf("Failed to publish %s event: %v", action, err)
	}
}

// SearchResponse is the search engine shaped answer of a raw query search.
// Hit sources hold legacy documents.
type SearchResponse struct {
	TimedOut bool       `json:"timed_out"`
	Hits     SearchHits `json:"hits"`
}

type SearchHits struct {
	Total SearchTotal `json:"total"`
	Hits  []SearchHit `json:"hits"`
}

type SearchTotal struct {
	Value    int    `json:"value"`
	Relation string `json:"relation"`
}

type SearchHit struct {
	ID      string      `json:"_id"`
	Version int64       `json:"_version"`
	Source  interface{} `json:"_source"`
}

// rawSearch runs a client supplied search body against the notification
// index. Hits convert rejects are left out of the page and the total.
func (b base) rawSearch(ctx context.Context, body []byte, configType models.ConfigType, fields map[string]string, convert func(store.Hit) (interface{}, bool)) (SearchResponse, error) {
	src, err := query.TranslateRaw(body, configType, fields)
	if err != nil {
		return SearchResponse{}, err
	}
	payload, err := src.Body()
	if err != nil {
		return SearchResponse{}, models.Invalid("failed to encode search body: %s", err.Error())
	}
	b.Logger.Debugf("%s query: %s", configType, payload)

	res, err := b.Searcher.Search(ctx, b.NotificationIndex, payload)
	if err != nil {
		return SearchResponse{}, err
	}
	if res.TimedOut {
		return SearchResponse{}, models.Timeout("Search request timed out")
	}

	out := SearchResponse{Hits: SearchHits{Hits: make([]SearchHit, 0, len(res.Hits))}}
	skipped := 0
	for _, hit := range res.Hits {
		doc, ok := convert(hit)
		if !ok {
			skipped++
			b.Logger.WithField("config_id", hit.ID).Warnf("Skipping hit that is not a %s", configType)
			continue
		}
		out.Hits.Hits = append(out.Hits.Hits, SearchHit{ID: hit.ID, Version: models.NoVersion, Source: doc})
	}
	out.Hits.Total = SearchTotal{Value: res.TotalHits - skipped, Relation: "eq"}
	return out, nil
}

// lessBy orders by key, descending when order is "desc". A nil key yields nil.
func lessBy[T any](order string, key func(T) string) func(a, b T) bool {
	if key == nil {
		return nil
	}
	if strings.EqualFold(order, string(models.SortDesc)) {
		return func(a, b T) bool { return key(a) > key(b) }
	}
	return func(a, b T) bool { return key(a) < key(b) }
}
