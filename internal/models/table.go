package models

import "strings"

// SortOrder is the direction of a Table sort.
type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// ParseSortOrder accepts "asc" or "desc" in any case.
func ParseSortOrder(s string) (SortOrder, error) {
	switch SortOrder(strings.ToLower(s)) {
	case SortAsc:
		return SortAsc, nil
	case SortDesc:
		return SortDesc, nil
	}
	return "", Invalid("sort order [%s] must be asc or desc", s)
}

// Table describes one page of a legacy list request.
type Table struct {
	SortOrder    string `json:"sortOrder" form:"sortOrder"`
	SortString   string `json:"sortString" form:"sortString"`
	Size         int    `json:"size" form:"size"`
	StartIndex   int    `json:"startIndex" form:"startIndex"`
	SearchString string `json:"searchString" form:"searchString"`
}

// Validate checks the paging invariants.
func (t Table) Validate() error {
	if t.Size < 0 {
		return Invalid("size must not be negative")
	}
	if t.StartIndex < 0 {
		return Invalid("startIndex must not be negative")
	}
	if _, err := ParseSortOrder(t.SortOrder); err != nil {
		return err
	}
	return nil
}

// HasSearchString reports whether a non-blank free text search was given.
func (t Table) HasSearchString() bool {
	return strings.TrimSpace(t.SearchString) != ""
}
