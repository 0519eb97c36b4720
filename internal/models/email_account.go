package models

import (
	"encoding/json"
	"fmt"
	"strings"
)

const (
	// NoVersion marks an entity that was never versioned by the legacy index.
	NoVersion int64 = 1
	// NoSchemaVersion is used when a document carries no schema_version.
	NoSchemaVersion = 0

	EmailAccountType = "email_account"
	EmailGroupType   = "email_group"
)

// MethodType is the transport security of a legacy email account.
type MethodType string

const (
	MethodNone MethodType = "none"
	MethodSSL  MethodType = "ssl"
	MethodTLS  MethodType = "tls"
)

// ParseMethodType accepts the legacy method names case-insensitively.
func ParseMethodType(s string) (MethodType, error) {
	switch MethodType(strings.ToLower(s)) {
	case MethodNone:
		return MethodNone, nil
	case MethodSSL:
		return MethodSSL, nil
	case MethodTLS:
		return MethodTLS, nil
	}
	return "", fmt.Errorf("invalid method %q", s)
}

// EmailAccount is the alerting plugin's SMTP sender destination.
type EmailAccount struct {
	ID            string     `json:"id"`
	Version       int64      `json:"version"`
	SchemaVersion int        `json:"schema_version"`
	Name          string     `json:"name"`
	Email         string     `json:"email"`
	Host          string     `json:"host"`
	Port          int        `json:"port"`
	Method        MethodType `json:"method"`
	// Credentials live in secure settings and are never serialized.
	Username *string `json:"-"`
	Password *string `json:"-"`
}

// emailAccountBody is the legacy document body under the "email_account" key.
type emailAccountBody struct {
	SchemaVersion int        `json:"schema_version"`
	Name          string     `json:"name"`
	Email         string     `json:"email"`
	Host          string     `json:"host"`
	Port          int        `json:"port"`
	Method        MethodType `json:"method"`
}

// EmailAccountDocument renders the account the way the legacy index stores it.
func EmailAccountDocument(a EmailAccount) map[string]interface{} {
	return map[string]interface{}{
		EmailAccountType: emailAccountBody{
			SchemaVersion: a.SchemaVersion,
			Name:          a.Name,
			Email:         a.Email,
			Host:          a.Host,
			Port:          a.Port,
			Method:        a.Method,
		},
	}
}

// ParseEmailAccountWithType parses a legacy {"email_account": {...}} document.
func ParseEmailAccountWithType(src []byte, id string, version int64) (EmailAccount, error) {
	var doc struct {
		Body *emailAccountBody `json:"email_account"`
	}
	if err := json.Unmarshal(src, &doc); err != nil {
		return EmailAccount{}, fmt.Errorf("failed to parse email account %s: %w", id, err)
	}
	if doc.Body == nil {
		return EmailAccount{}, fmt.Errorf("document %s is not an email account", id)
	}
	method := MethodNone
	if doc.Body.Method != "" {
		m, err := ParseMethodType(string(doc.Body.Method))
		if err != nil {
			return EmailAccount{}, fmt.Errorf("email account %s: %w", id, err)
		}
		method = m
	}
	return EmailAccount{
		ID:            id,
		Version:       version,
		SchemaVersion: doc.Body.SchemaVersion,
		Name:          doc.Body.Name,
		Email:         doc.Body.Email,
		Host:          doc.Body.Host,
		Port:          doc.Body.Port,
		Method:        method,
	}, nil
}
