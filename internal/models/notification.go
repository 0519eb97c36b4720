package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// ConfigType discriminates the payload carried by a NotificationConfig.
type ConfigType string

const (
	ConfigTypeNone           ConfigType = "none"
	ConfigTypeSlack          ConfigType = "slack"
	ConfigTypeChime          ConfigType = "chime"
	ConfigTypeMicrosoftTeams ConfigType = "microsoft_teams"
	ConfigTypeWebhook        ConfigType = "webhook"
	ConfigTypeEmail          ConfigType = "email"
	ConfigTypeSNS            ConfigType = "sns"
	ConfigTypeSESAccount     ConfigType = "ses_account"
	ConfigTypeSmtpAccount    ConfigType = "smtp_account"
	ConfigTypeEmailGroup     ConfigType = "email_group"
)

// FeatureAlerting tags every config written on behalf of alerting.
const FeatureAlerting = "alerting"

// NotificationMethod is the transport security of a shared-store SMTP account.
type NotificationMethod string

const (
	NotificationMethodNone     NotificationMethod = "none"
	NotificationMethodSSL      NotificationMethod = "ssl"
	NotificationMethodStartTLS NotificationMethod = "start_tls"
)

// ConfigData is the payload of a NotificationConfig. The set of variants is closed.
type ConfigData interface {
	ConfigType() ConfigType
	isConfigData()
}

// SmtpAccount is the payload of a smtp_account config.
type SmtpAccount struct {
	Host        string             `json:"host"`
	Port        int                `json:"port"`
	Method      NotificationMethod `json:"method"`
	FromAddress string             `json:"from_address"`
}

func (SmtpAccount) ConfigType() ConfigType { return ConfigTypeSmtpAccount }
func (SmtpAccount) isConfigData()          {}

// EmailRecipient is one entry of an email_group config.
type EmailRecipient struct {
	Recipient string `json:"recipient"`
}

// EmailGroupConfig is the payload of an email_group config.
type EmailGroupConfig struct {
	Recipients []EmailRecipient `json:"recipient_list"`
}

func (EmailGroupConfig) ConfigType() ConfigType { return ConfigTypeEmailGroup }
func (EmailGroupConfig) isConfigData()          {}

// OpaqueConfigData holds payloads of config types this service does not interpret.
type OpaqueConfigData struct {
	Type ConfigType
	Raw  json.RawMessage
}

func (o OpaqueConfigData) ConfigType() ConfigType { return o.Type }
func (OpaqueConfigData) isConfigData()            {}

// NotificationConfig is the shared notification channel configuration.
type NotificationConfig struct {
	Name        string
	Description string
	ConfigType  ConfigType
	Features    []string
	IsEnabled   bool
	Data        ConfigData
}

// SmtpAccount returns the payload when the config is a smtp_account.
func (c NotificationConfig) SmtpAccount() (SmtpAccount, bool) {
	if c.ConfigType != ConfigTypeSmtpAccount {
		return SmtpAccount{}, false
	}
	s, ok := c.Data.(SmtpAccount)
	return s, ok
}

// EmailGroup returns the payload when the config is an email_group.
func (c NotificationConfig) EmailGroup() (EmailGroupConfig, bool) {
	if c.ConfigType != ConfigTypeEmailGroup {
		return EmailGroupConfig{}, false
	}
	g, ok := c.Data.(EmailGroupConfig)
	return g, ok
}

// MarshalJSON writes the payload under a key named after the config type.
func (c NotificationConfig) MarshalJSON() ([]byte, error) {
	features := c.Features
	if features == nil {
		features = []string{}
	}
	out := map[string]interface{}{
		"name":         c.Name,
		"description":  c.Description,
		"config_type":  c.ConfigType,
		"feature_list": features,
		"is_enabled":   c.IsEnabled,
	}
	if c.Data != nil {
		if c.Data.ConfigType() != c.ConfigType {
			return nil, fmt.Errorf("config payload %s does not match config type %s", c.Data.ConfigType(), c.ConfigType)
		}
		switch d := c.Data.(type) {
		case OpaqueConfigData:
			out[string(c.ConfigType)] = d.Raw
		default:
			out[string(c.ConfigType)] = d
		}
	}
	return json.Marshal(out)
}

// UnmarshalJSON selects the payload variant from config_type.
func (c *NotificationConfig) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	var aux struct {
		Name        string     `json:"name"`
		Description string     `json:"description"`
		ConfigType  ConfigType `json:"config_type"`
		Features    []string   `json:"feature_list"`
		IsEnabled   *bool      `json:"is_enabled"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if aux.ConfigType == "" {
		return fmt.Errorf("config_type is required")
	}
	c.Name = aux.Name
	c.Description = aux.Description
	c.ConfigType = aux.ConfigType
	c.Features = aux.Features
	c.IsEnabled = aux.IsEnabled == nil || *aux.IsEnabled
	c.Data = nil

	raw, ok := fields[string(aux.ConfigType)]
	if !ok {
		return nil
	}
	switch aux.ConfigType {
	case ConfigTypeSmtpAccount:
		var s SmtpAccount
		if err := json.Unmarshal(raw, &s); err != nil {
			return fmt.Errorf("invalid smtp_account payload: %w", err)
		}
		c.Data = s
	case ConfigTypeEmailGroup:
		var g EmailGroupConfig
		if err := json.Unmarshal(raw, &g); err != nil {
			return fmt.Errorf("invalid email_group payload: %w", err)
		}
		c.Data = g
	default:
		c.Data = OpaqueConfigData{Type: aux.ConfigType, Raw: append(json.RawMessage(nil), raw...)}
	}
	return nil
}

// NotificationConfigInfo is a stored config together with its identity.
type NotificationConfigInfo struct {
	ConfigID        string             `json:"config_id"`
	LastUpdatedTime time.Time          `json:"last_updated_time"`
	CreatedTime     time.Time          `json:"created_time"`
	Config          NotificationConfig `json:"config"`
}

// ConfigMetadata is the bookkeeping block of an indexed config document.
type ConfigMetadata struct {
	LastUpdatedTimeMs int64 `json:"last_updated_time_ms"`
	CreatedTimeMs     int64 `json:"created_time_ms"`
}

// NotificationConfigDoc is the shape of a config in the notification index.
type NotificationConfigDoc struct {
	Metadata ConfigMetadata     `json:"metadata"`
	Config   NotificationConfig `json:"config"`
}

// NewNotificationConfigDoc builds the index document for a stored config.
func NewNotificationConfigDoc(info NotificationConfigInfo) NotificationConfigDoc {
	return NotificationConfigDoc{
		Metadata: ConfigMetadata{
			LastUpdatedTimeMs: info.LastUpdatedTime.UnixMilli(),
			CreatedTimeMs:     info.CreatedTime.UnixMilli(),
		},
		Config: info.Config,
	}
}
