package converter

import (
	"encoding/json"
	"net/http"

	"alerting-destinations/internal/models"
	"alerting-destinations/internal/store"
)

const (
	emailGroupKind        = "Email Group"
	emailGroupDescription = "Email group created from the Alerting plugin"
)

// EmailGroupSortFields maps legacy sort paths to config store sort fields.
var EmailGroupSortFields = map[string]string{
	"email_group.name":         store.SortName,
	"email_group.name.keyword": store.SortName,
	"email_group.emails":       store.SortRecipient,
	"email_group.emails.email": store.SortRecipient,
}

// EmailGroupFields maps legacy email group paths to notification index paths.
var EmailGroupFields = map[string]string{
	"email_group.name":         "config.name",
	"email_group.name.keyword": "config.name.keyword",
	"email_group.emails":       "config.email_group.recipient_list",
	"email_group.emails.email": "config.email_group.recipient_list.recipient",
}

func GetEmailGroupRequest(id string) (store.GetConfigRequest, error) {
	return getByIDRequest(id, emailGroupKind)
}

func ToGetEmailGroupResponse(id string, resp store.GetConfigResponse) (models.GetEmailGroupResponse, error) {
	if resp.TotalHits == 0 || len(resp.Configs) == 0 {
		return models.GetEmailGroupResponse{}, models.NotFound("%s %s not found.", emailGroupKind, id)
	}
	info := resp.Configs[0]
	group, ok := ConfigToEmailGroup(info)
	if !ok {
		return models.GetEmailGroupResponse{}, models.NotFound("%s %s not found.", emailGroupKind, id)
	}
	return models.GetEmailGroupResponse{
		ID:         info.ConfigID,
		Version:    models.NoVersion,
		Status:     http.StatusOK,
		EmailGroup: &group,
	}, nil
}

func EmailGroupToConfig(g models.EmailGroup) models.NotificationConfig {
	recipients := make([]models.EmailRecipient, 0, len(g.Emails))
	for _, e := range g.Emails {
		recipients = append(recipients, models.EmailRecipient{Recipient: e.Email})
	}
	return models.NotificationConfig{
		Name:        g.Name,
		Description: emailGroupDescription,
		ConfigType:  models.ConfigTypeEmailGroup,
		Features:    []string{models.FeatureAlerting},
		IsEnabled:   true,
		Data:        models.EmailGroupConfig{Recipients: recipients},
	}
}

func CreateEmailGroupID(g models.EmailGroup) *string {
	return createID(g.ID)
}

func ToIndexEmailGroupResponse(id string, resp store.GetConfigResponse) (models.GetEmailGroupResponse, error) {
	out, err := ToGetEmailGroupResponse(id, resp)
	if err != nil {
		return models.GetEmailGroupResponse{}, models.NotFound("%s %s failed to be created/updated.", emailGroupKind, id)
	}
	return out, nil
}

func DeleteEmailGroupRequest(id string) ([]string, error) {
	return deleteRequest(id, emailGroupKind)
}

func ToDeleteEmailGroupResponse(id string, statuses map[string]int) (models.DeleteResponse, error) {
	return deleteResponse(id, statuses, emailGroupKind)
}

// ConfigToEmailGroup returns false unless info holds an email_group.
func ConfigToEmailGroup(info models.NotificationConfigInfo) (models.EmailGroup, bool) {
	payload, ok := info.Config.EmailGroup()
	if !ok {
		return models.EmailGroup{}, false
	}
	emails := make([]models.EmailEntry, 0, len(payload.Recipients))
	for _, r := range payload.Recipients {
		emails = append(emails, models.EmailEntry{Email: r.Recipient})
	}
	return models.EmailGroup{
		ID:            info.ConfigID,
		Version:       models.NoVersion,
		SchemaVersion: models.NoSchemaVersion,
		Name:          info.Config.Name,
		Emails:        emails,
	}, true
}

func TableToEmailGroupRequest(t models.Table) (store.GetConfigRequest, error) {
	return tableRequest(t, EmailGroupSortFields, models.ConfigTypeEmailGroup)
}

// ToSearchEmailGroupResponse converts a page of configs, dropping the ones that
// are not email groups and returning their ids.
func ToSearchEmailGroupResponse(resp store.GetConfigResponse) (models.SearchEmailGroupResponse, []string) {
	groups := make([]models.EmailGroup, 0, len(resp.Configs))
	var skipped []string
	for _, info := range resp.Configs {
		g, ok := ConfigToEmailGroup(info)
		if !ok {
			skipped = append(skipped, info.ConfigID)
			continue
		}
		groups = append(groups, g)
	}
	return models.SearchEmailGroupResponse{
		Status:           http.StatusOK,
		TotalEmailGroups: models.IntPtr(resp.TotalHits - len(skipped)),
		EmailGroups:      groups,
	}, skipped
}

func EmailGroupFromConfigDoc(id string, src json.RawMessage) (models.EmailGroup, bool) {
	info, ok := parseConfigDoc(src)
	if !ok {
		return models.EmailGroup{}, false
	}
	info.ConfigID = id
	return ConfigToEmailGroup(info)
}
