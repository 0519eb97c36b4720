// Package query builds and translates search bodies.
package query

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// SearchSource is the body of a search request.
type SearchSource struct {
	Query            map[string]interface{} `json:"query,omitempty"`
	From             *int                   `json:"from,omitempty"`
	Size             *int                   `json:"size,omitempty"`
	Sort             []interface{}          `json:"sort,omitempty"`
	Source           interface{}            `json:"_source,omitempty"`
	TrackTotalHits   interface{}            `json:"track_total_hits,omitempty"`
	Aggregations     map[string]interface{} `json:"aggs,omitempty"`
	Version          bool                   `json:"version,omitempty"`
	SeqNoPrimaryTerm bool                   `json:"seq_no_primary_term,omitempty"`
	// Extra holds the top-level keys not modelled above, such as
	// aggregations, post_filter, highlight or search_after.
	Extra map[string]interface{} `json:"-"`
}

var modelledKeys = []string{
	"query", "from", "size", "sort", "_source", "track_total_hits",
	"aggs", "version", "seq_no_primary_term",
}

func isModelled(key string) bool {
	for _, k := range modelledKeys {
		if strings.EqualFold(k, key) {
			return true
		}
	}
	return false
}

func (s *SearchSource) UnmarshalJSON(b []byte) error {
	type plain SearchSource
	var p plain
	if err := json.Unmarshal(b, &p); err != nil {
		return err
	}
	var all map[string]interface{}
	if err := json.Unmarshal(b, &all); err != nil {
		return err
	}
	for k, v := range all {
		if isModelled(k) {
			continue
		}
		if p.Extra == nil {
			p.Extra = make(map[string]interface{})
		}
		p.Extra[k] = v
	}
	*s = SearchSource(p)
	return nil
}

func (s SearchSource) MarshalJSON() ([]byte, error) {
	type plain SearchSource
	b, err := json.Marshal(plain(s))
	if err != nil || len(s.Extra) == 0 {
		return b, err
	}
	var doc map[string]interface{}
	if err := json.Unmarshal(b, &doc); err != nil {
		return nil, err
	}
	for k, v := range s.Extra {
		if _, ok := doc[k]; !ok {
			doc[k] = v
		}
	}
	return json.Marshal(doc)
}

// ParseSearchSource decodes a search body. Top-level keys without a field of
// their own are kept in Extra. An empty body is a match_all search.
func ParseSearchSource(body []byte) (SearchSource, error) {
	var src SearchSource
	if len(bytes.TrimSpace(body)) == 0 {
		return src, nil
	}
	if err := json.Unmarshal(body, &src); err != nil {
		return SearchSource{}, fmt.Errorf("failed to parse search body: %w", err)
	}
	return src, nil
}

// Body encodes the search source.
func (s SearchSource) Body() ([]byte, error) {
	return json.Marshal(s)
}

// ToMap converts the search source into a generic document.
func (s SearchSource) ToMap() (map[string]interface{}, error) {
	b, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}
	var doc map[string]interface{}
	if err := json.Unmarshal(b, &doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// FromMap is the inverse of ToMap.
func FromMap(doc map[string]interface{}) (SearchSource, error) {
	b, err := json.Marshal(doc)
	if err != nil {
		return SearchSource{}, err
	}
	return ParseSearchSource(b)
}

func MatchAll() map[string]interface{} {
	return map[string]interface{}{"match_all": map[string]interface{}{}}
}

func Exists(field string) map[string]interface{} {
	return map[string]interface{}{"exists": map[string]interface{}{"field": field}}
}

func Match(field string, value interface{}) map[string]interface{} {
	return map[string]interface{}{"match": map[string]interface{}{field: value}}
}

// QueryStringAnd is a query_string query whose terms must all match.
func QueryStringAnd(q string, fields ...string) map[string]interface{} {
	fs := make([]interface{}, 0, len(fields))
	for _, f := range fields {
		fs = append(fs, f)
	}
	return map[string]interface{}{"query_string": map[string]interface{}{
		"query":            q,
		"fields":           fs,
		"default_operator": "and",
	}}
}

// BoolMust combines clauses that must all match.
func BoolMust(clauses ...map[string]interface{}) map[string]interface{} {
	must := make([]interface{}, 0, len(clauses))
	for _, c := range clauses {
		must = append(must, c)
	}
	return map[string]interface{}{"bool": map[string]interface{}{"must": must}}
}

// FieldSort sorts on field in the given order.
func FieldSort(field string, order string) map[string]interface{} {
	return map[string]interface{}{field: map[string]interface{}{"order": order}}
}
