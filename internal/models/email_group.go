package models

import (
	"encoding/json"
	"fmt"
)

// EmailEntry is a single recipient of an email group.
type EmailEntry struct {
	Email string `json:"email"`
}

// EmailGroup is the alerting plugin's recipient list destination.
type EmailGroup struct {
	ID            string       `json:"id"`
	Version       int64        `json:"version"`
	SchemaVersion int          `json:"schema_version"`
	Name          string       `json:"name"`
	Emails        []EmailEntry `json:"emails"`
}

type emailGroupBody struct {
	SchemaVersion int          `json:"schema_version"`
	Name          string       `json:"name"`
	Emails        []EmailEntry `json:"emails"`
}

// EmailGroupDocument renders the group the way the legacy index stores it.
func EmailGroupDocument(g EmailGroup) map[string]interface{} {
	emails := g.Emails
	if emails == nil {
		emails = []EmailEntry{}
	}
	return map[string]interface{}{
		EmailGroupType: emailGroupBody{
			SchemaVersion: g.SchemaVersion,
			Name:          g.Name,
			Emails:        emails,
		},
	}
}

// ParseEmailGroupWithType parses a legacy {"email_group": {...}} document.
func ParseEmailGroupWithType(src []byte, id string, version int64) (EmailGroup, error) {
	var doc struct {
		Body *emailGroupBody `json:"email_group"`
	}
	if err := json.Unmarshal(src, &doc); err != nil {
		return EmailGroup{}, fmt.Errorf("failed to parse email group %s: %w", id, err)
	}
	if doc.Body == nil {
		return EmailGroup{}, fmt.Errorf("document %s is not an email group", id)
	}
	emails := doc.Body.Emails
	if emails == nil {
		emails = []EmailEntry{}
	}
	return EmailGroup{
		ID:            id,
		Version:       version,
		SchemaVersion: doc.Body.SchemaVersion,
		Name:          doc.Body.Name,
		Emails:        emails,
	}, nil
}
