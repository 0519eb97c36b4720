package converter

import (
	"encoding/json"
	"net/http"

	"alerting-destinations/internal/models"
	"alerting-destinations/internal/store"
)

const (
	emailAccountKind        = "Email Account"
	emailAccountDescription = "Email account created from the Alerting plugin"
)

// EmailAccountSortFields maps legacy sort paths to config store sort fields.
var EmailAccountSortFields = map[string]string{
	"email_account.name":         store.SortName,
	"email_account.name.keyword": store.SortName,
	"email_account.host":         store.SortHost,
	"email_account.host.keyword": store.SortHost,
	"email_account.from":         store.SortFromAddress,
	"email_account.from.keyword": store.SortFromAddress,
}

// EmailAccountFields maps legacy email account paths to notification index paths.
var EmailAccountFields = map[string]string{
	"email_account.name":         "config.name",
	"email_account.name.keyword": "config.name.keyword",
	"email_account.host":         "config.smtp_account.host",
	"email_account.host.keyword": "config.smtp_account.host.keyword",
	"email_account.port":         "config.smtp_account.port",
	"email_account.method":       "config.smtp_account.method",
	"email_account.from":         "config.smtp_account.from_address",
	"email_account.from.keyword": "config.smtp_account.from_address.keyword",
}

// GetEmailAccountRequest looks up a single account by id.
func GetEmailAccountRequest(id string) (store.GetConfigRequest, error) {
	return getByIDRequest(id, emailAccountKind)
}

// ToGetEmailAccountResponse converts the first config of resp.
func ToGetEmailAccountResponse(id string, resp store.GetConfigResponse) (models.GetEmailAccountResponse, error) {
	if resp.TotalHits == 0 || len(resp.Configs) == 0 {
		return models.GetEmailAccountResponse{}, models.NotFound("%s %s not found.", emailAccountKind, id)
	}
	info := resp.Configs[0]
	account, ok := ConfigToEmailAccount(info)
	if !ok {
		return models.GetEmailAccountResponse{}, models.NotFound("%s %s not found.", emailAccountKind, id)
	}
	return models.GetEmailAccountResponse{
		ID:           info.ConfigID,
		Version:      models.NoVersion,
		Status:       http.StatusOK,
		EmailAccount: &account,
	}, nil
}

// EmailAccountToConfig builds the smtp_account config for a, tagged for alerting.
func EmailAccountToConfig(a models.EmailAccount) models.NotificationConfig {
	return models.NotificationConfig{
		Name:        a.Name,
		Description: emailAccountDescription,
		ConfigType:  models.ConfigTypeSmtpAccount,
		Features:    []string{models.FeatureAlerting},
		IsEnabled:   true,
		Data: models.SmtpAccount{
			Host:        a.Host,
			Port:        a.Port,
			Method:      MethodToNotification(a.Method),
			FromAddress: a.Email,
		},
	}
}

// CreateEmailAccountID returns the id to create a under, nil when the store picks it.
func CreateEmailAccountID(a models.EmailAccount) *string {
	return createID(a.ID)
}

// ToIndexEmailAccountResponse converts the re-read account after a create or update.
func ToIndexEmailAccountResponse(id string, resp store.GetConfigResponse) (models.GetEmailAccountResponse, error) {
	out, err := ToGetEmailAccountResponse(id, resp)
	if err != nil {
		return models.GetEmailAccountResponse{}, models.NotFound("%s %s failed to be created/updated.", emailAccountKind, id)
	}
	return out, nil
}

// DeleteEmailAccountRequest returns the id set to delete.
func DeleteEmailAccountRequest(id string) ([]string, error) {
	return deleteRequest(id, emailAccountKind)
}

// ToDeleteEmailAccountResponse converts the store's per-id delete statuses.
func ToDeleteEmailAccountResponse(id string, statuses map[string]int) (models.DeleteResponse, error) {
	return deleteResponse(id, statuses, emailAccountKind)
}

// ConfigToEmailAccount returns false unless info holds a smtp_account.
func ConfigToEmailAccount(info models.NotificationConfigInfo) (models.EmailAccount, bool) {
	smtp, ok := info.Config.SmtpAccount()
	if !ok {
		return models.EmailAccount{}, false
	}
	return models.EmailAccount{
		ID:            info.ConfigID,
		Version:       models.NoVersion,
		SchemaVersion: models.NoSchemaVersion,
		Name:          info.Config.Name,
		Email:         smtp.FromAddress,
		Host:          smtp.Host,
		Port:          smtp.Port,
		Method:        MethodFromNotification(smtp.Method),
	}, true
}

// MethodToNotification maps a legacy method. Unknown values map to none.
func MethodToNotification(m models.MethodType) models.NotificationMethod {
	switch m {
	case models.MethodSSL:
		return models.NotificationMethodSSL
	case models.MethodTLS:
		return models.NotificationMethodStartTLS
	default:
		return models.NotificationMethodNone
	}
}

// MethodFromNotification maps a store method. Unknown values map to none.
func MethodFromNotification(m models.NotificationMethod) models.MethodType {
	switch m {
	case models.NotificationMethodSSL:
		return models.MethodSSL
	case models.NotificationMethodStartTLS:
		return models.MethodTLS
	default:
		return models.MethodNone
	}
}

// TableToEmailAccountRequest translates a legacy page request.
func TableToEmailAccountRequest(t models.Table) (store.GetConfigRequest, error) {
	return tableRequest(t, EmailAccountSortFields, models.ConfigTypeSmtpAccount)
}

// ToSearchEmailAccountResponse converts a page of configs. Configs that are not
// smtp accounts are dropped and taken off the total; their ids are returned.
func ToSearchEmailAccountResponse(resp store.GetConfigResponse) (models.SearchEmailAccountResponse, []string) {
	accounts := make([]models.EmailAccount, 0, len(resp.Configs))
	var skipped []string
	for _, info := range resp.Configs {
		a, ok := ConfigToEmailAccount(info)
		if !ok {
			skipped = append(skipped, info.ConfigID)
			continue
		}
		accounts = append(accounts, a)
	}
	return models.SearchEmailAccountResponse{
		Status:             http.StatusOK,
		TotalEmailAccounts: models.IntPtr(resp.TotalHits - len(skipped)),
		EmailAccounts:      accounts,
	}, skipped
}

// EmailAccountFromConfigDoc converts a notification index hit source into the
// legacy account document.
func EmailAccountFromConfigDoc(id string, src json.RawMessage) (models.EmailAccount, bool) {
	info, ok := parseConfigDoc(src)
	if !ok {
		return models.EmailAccount{}, false
	}
	info.ConfigID = id
	return ConfigToEmailAccount(info)
}
