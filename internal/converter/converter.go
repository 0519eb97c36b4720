// Package converter translates between the legacy alerting destinations and the
// shared notification configs.
package converter

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sort"

	"alerting-destinations/internal/models"
	"alerting-destinations/internal/store"
)

func getByIDRequest(id string, kind string) (store.GetConfigRequest, error) {
	if id == "" {
		return store.GetConfigRequest{}, models.Invalid("%s id must not be empty", kind)
	}
	return store.GetConfigRequest{
		ConfigIDs:    []string{id},
		FromIndex:    0,
		MaxItems:     1,
		FilterParams: map[string]string{},
	}, nil
}

func deleteRequest(id string, kind string) ([]string, error) {
	if id == "" {
		return nil, models.Invalid("%s id must not be empty", kind)
	}
	return []string{id}, nil
}

// deleteResponse picks the first deleted id. Ids are ordered so the pick is stable.
func deleteResponse(requested string, statuses map[string]int, kind string) (models.DeleteResponse, error) {
	if len(statuses) == 0 {
		return models.DeleteResponse{}, models.NotFound("%s %s failed to be deleted.", kind, requested)
	}
	ids := make([]string, 0, len(statuses))
	for id := range statuses {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	id := ids[0]
	if statuses[id] != http.StatusOK {
		return models.DeleteResponse{}, &models.StatusError{Status: statuses[id], Message: fmt.Sprintf("%s %s failed to be deleted.", kind, id)}
	}
	return models.DeleteResponse{ID: id, Result: "deleted"}, nil
}

// createID returns nil for an empty legacy id so the store assigns one.
func createID(id string) *string {
	if id == "" {
		return nil
	}
	return &id
}

func tableRequest(t models.Table, sortFields map[string]string, configType models.ConfigType) (store.GetConfigRequest, error) {
	if err := t.Validate(); err != nil {
		return store.GetConfigRequest{}, err
	}
	order, err := models.ParseSortOrder(t.SortOrder)
	if err != nil {
		return store.GetConfigRequest{}, err
	}
	filter := map[string]string{store.FilterConfigType: string(configType)}
	if t.HasSearchString() {
		filter[store.FilterQuery] = t.SearchString
	}
	return store.GetConfigRequest{
		ConfigIDs:    []string{},
		FromIndex:    t.StartIndex,
		MaxItems:     t.Size,
		SortField:    sortFields[t.SortString],
		SortOrder:    order,
		FilterParams: filter,
	}, nil
}

// parseConfigDoc reads a notification index document.
func parseConfigDoc(src json.RawMessage) (models.NotificationConfigInfo, bool) {
	var doc models.NotificationConfigDoc
	if err := json.Unmarshal(src, &doc); err != nil {
		return models.NotificationConfigInfo{}, false
	}
	return models.NotificationConfigInfo{Config: doc.Config}, true
}
