package models

import "encoding/json"

// GetEmailAccountResponse is returned by get and index operations on accounts.
type GetEmailAccountResponse struct {
	ID           string
	Version      int64
	SeqNo        int64
	PrimaryTerm  int64
	Status       int
	EmailAccount *EmailAccount
}

func (r GetEmailAccountResponse) MarshalJSON() ([]byte, error) {
	out := map[string]interface{}{
		"_id":           r.ID,
		"_version":      r.Version,
		"_seq_no":       r.SeqNo,
		"_primary_term": r.PrimaryTerm,
	}
	if r.EmailAccount != nil {
		out[EmailAccountType] = EmailAccountDocument(*r.EmailAccount)[EmailAccountType]
	}
	return json.Marshal(out)
}

// GetEmailGroupResponse is returned by get and index operations on groups.
type GetEmailGroupResponse struct {
	ID          string
	Version     int64
	SeqNo       int64
	PrimaryTerm int64
	Status      int
	EmailGroup  *EmailGroup
}

func (r GetEmailGroupResponse) MarshalJSON() ([]byte, error) {
	out := map[string]interface{}{
		"_id":           r.ID,
		"_version":      r.Version,
		"_seq_no":       r.SeqNo,
		"_primary_term": r.PrimaryTerm,
	}
	if r.EmailGroup != nil {
		out[EmailGroupType] = EmailGroupDocument(*r.EmailGroup)[EmailGroupType]
	}
	return json.Marshal(out)
}

// DeleteResponse acknowledges a deleted destination.
type DeleteResponse struct {
	ID     string `json:"_id"`
	Result string `json:"result"`
}

// SearchEmailAccountResponse is one page of email accounts.
//
// TotalEmailAccounts counts every match across all pages, so it is usually
// larger than len(EmailAccounts).
type SearchEmailAccountResponse struct {
	Status             int            `json:"-"`
	TotalEmailAccounts *int           `json:"totalEmailAccounts"`
	EmailAccounts      []EmailAccount `json:"emailAccounts"`
}

// SearchEmailGroupResponse is one page of email groups.
type SearchEmailGroupResponse struct {
	Status           int          `json:"-"`
	TotalEmailGroups *int         `json:"totalEmailGroups"`
	EmailGroups      []EmailGroup `json:"emailGroups"`
}

// IntPtr is a helper for optional totals.
func IntPtr(v int) *int {
	return &v
}
