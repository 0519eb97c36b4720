package query

import (
	"alerting-destinations/internal/models"
	"alerting-destinations/internal/remap"
)

// ConfigTypeField is the notification index field holding the config type.
const ConfigTypeField = "config.config_type"

// TranslateRaw rewrites a legacy search body so it runs against the
// notification index: the query is constrained to configType and every legacy
// field path in fields is replaced by its notification index path.
func TranslateRaw(body []byte, configType models.ConfigType, fields map[string]string) (SearchSource, error) {
	src, err := ParseSearchSource(body)
	if err != nil {
		return SearchSource{}, models.Invalid("%s", err.Error())
	}

	original := src.Query
	if len(original) == 0 {
		original = MatchAll()
	}
	src.Query = BoolMust(original, Match(ConfigTypeField, string(configType)))

	doc, err := src.ToMap()
	if err != nil {
		return SearchSource{}, models.Invalid("failed to convert search body: %s", err.Error())
	}
	remapped, err := FromMap(remap.Remap(doc, fields))
	if err != nil {
		return SearchSource{}, models.Invalid("failed to convert search body: %s", err.Error())
	}
	return remapped, nil
}

// Legacy describes how one entity type is searched in the legacy index.
type Legacy struct {
	// Marker is the top-level document key every document of the type carries.
	Marker       string
	SearchFields []string
}

var (
	LegacyEmailAccount = Legacy{
		Marker:       models.EmailAccountType,
		SearchFields: []string{"email_account.name", "email_account.host", "email_account.from"},
	}
	LegacyEmailGroup = Legacy{
		Marker:       models.EmailGroupType,
		SearchFields: []string{"email_group.name"},
	}
)

// Secondary builds the legacy index search that fills the size free slots left
// on a page by the config store.
func (l Legacy) Secondary(t models.Table, size int) SearchSource {
	clauses := []map[string]interface{}{Exists(l.Marker)}
	if t.HasSearchString() {
		clauses = append(clauses, QueryStringAnd(t.SearchString, l.SearchFields...))
	}
	from := t.StartIndex
	src := SearchSource{
		Query:            BoolMust(clauses...),
		From:             &from,
		Size:             &size,
		Source:           true,
		Version:          true,
		SeqNoPrimaryTerm: true,
	}
	if t.SortString != "" {
		order := t.SortOrder
		if order == "" {
			order = string(models.SortAsc)
		}
		src.Sort = []interface{}{FieldSort(t.SortString, order)}
	}
	return src
}
