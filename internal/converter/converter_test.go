package converter

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"alerting-destinations/internal/models"
	"alerting-destinations/internal/store"
)

func TestEmailAccount_RoundTrip(t *testing.T) {
	for _, method := range []models.MethodType{models.MethodNone, models.MethodSSL, models.MethodTLS} {
		t.Run(string(method), func(t *testing.T) {
			in := models.EmailAccount{
				ID:      "acc-1",
				Version: models.NoVersion,
				Name:    "ops",
				Email:   "ops@example.com",
				Host:    "smtp.example.com",
				Port:    587,
				Method:  method,
			}
			cfg := EmailAccountToConfig(in)
			assert.Equal(t, []string{models.FeatureAlerting}, cfg.Features)
			assert.Equal(t, "Email account created from the Alerting plugin", cfg.Description)

			out, ok := ConfigToEmailAccount(models.NotificationConfigInfo{ConfigID: "acc-1", Config: cfg})
			require.True(t, ok)
			assert.Equal(t, in, out)
		})
	}
}

func TestEmailGroup_RoundTrip(t *testing.T) {
	in := models.EmailGroup{
		ID:      "grp-1",
		Version: models.NoVersion,
		Name:    "oncall",
		Emails:  []models.EmailEntry{{Email: "a@example.com"}, {Email: "b@example.com"}},
	}
	cfg := EmailGroupToConfig(in)
	payload, ok := cfg.EmailGroup()
	require.True(t, ok)
	assert.Equal(t, []models.EmailRecipient{{Recipient: "a@example.com"}, {Recipient: "b@example.com"}}, payload.Recipients)

	out, ok := ConfigToEmailGroup(models.NotificationConfigInfo{ConfigID: "grp-1", Config: cfg})
	require.True(t, ok)
	assert.Equal(t, in, out)
}

func TestMethodMapping_Total(t *testing.T) {
	assert.Equal(t, models.NotificationMethodNone, MethodToNotification(models.MethodNone))
	assert.Equal(t, models.NotificationMethodSSL, MethodToNotification(models.MethodSSL))
	assert.Equal(t, models.NotificationMethodStartTLS, MethodToNotification(models.MethodTLS))
	assert.Equal(t, models.NotificationMethodNone, MethodToNotification("bogus"))

	assert.Equal(t, models.MethodNone, MethodFromNotification(models.NotificationMethodNone))
	assert.Equal(t, models.MethodSSL, MethodFromNotification(models.NotificationMethodSSL))
	assert.Equal(t, models.MethodTLS, MethodFromNotification(models.NotificationMethodStartTLS))
	assert.Equal(t, models.MethodNone, MethodFromNotification("tls"))
}

func TestConfigToEmailAccount_WrongType(t *testing.T) {
	group := EmailGroupToConfig(models.EmailGroup{Name: "oncall"})
	_, ok := ConfigToEmailAccount(models.NotificationConfigInfo{ConfigID: "g", Config: group})
	assert.False(t, ok)

	mismatched := models.NotificationConfig{ConfigType: models.ConfigTypeSmtpAccount, Data: models.EmailGroupConfig{}}
	_, ok = ConfigToEmailAccount(models.NotificationConfigInfo{Config: mismatched})
	assert.False(t, ok)

	_, ok = ConfigToEmailGroup(models.NotificationConfigInfo{Config: EmailAccountToConfig(models.EmailAccount{})})
	assert.False(t, ok)
}

func TestGetEmailAccountRequest(t *testing.T) {
	req, err := GetEmailAccountRequest("acc-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"acc-1"}, req.ConfigIDs)
	assert.Equal(t, 0, req.FromIndex)
	assert.Equal(t, 1, req.MaxItems)

	_, err = GetEmailAccountRequest("")
	assert.Equal(t, http.StatusBadRequest, models.StatusOf(err))
}

func TestToGetEmailAccountResponse(t *testing.T) {
	_, err := ToGetEmailAccountResponse("acc-1", store.GetConfigResponse{})
	require.Error(t, err)
	assert.Equal(t, http.StatusNotFound, models.StatusOf(err))
	assert.Equal(t, "Email Account acc-1 not found.", err.Error())

	cfg := EmailAccountToConfig(models.EmailAccount{Name: "ops", Host: "h", Port: 465, Method: models.MethodSSL})
	resp, err := ToGetEmailAccountResponse("new-id", store.GetConfigResponse{
		TotalHits: 1,
		Configs:   []models.NotificationConfigInfo{{ConfigID: "new-id", Config: cfg}},
	})
	require.NoError(t, err)
	assert.Equal(t, "new-id", resp.ID)
	assert.Equal(t, models.NoVersion, resp.Version)
	assert.Equal(t, http.StatusOK, resp.Status)
	assert.Equal(t, models.MethodSSL, resp.EmailAccount.Method)
}

func TestToIndexEmailGroupResponse_Missing(t *testing.T) {
	_, err := ToIndexEmailGroupResponse("grp-1", store.GetConfigResponse{})
	require.Error(t, err)
	assert.Equal(t, http.StatusNotFound, models.StatusOf(err))
	assert.Equal(t, "Email Group grp-1 failed to be created/updated.", err.Error())
}

func TestCreateID(t *testing.T) {
	assert.Nil(t, CreateEmailAccountID(models.EmailAccount{}))
	id := CreateEmailGroupID(models.EmailGroup{ID: "grp-1"})
	require.NotNil(t, id)
	assert.Equal(t, "grp-1", *id)
}

func TestDeleteResponse(t *testing.T) {
	ids, err := DeleteEmailAccountRequest("acc-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"acc-1"}, ids)

	_, err = DeleteEmailGroupRequest("")
	assert.Equal(t, http.StatusBadRequest, models.StatusOf(err))

	_, err = ToDeleteEmailAccountResponse("acc-1", map[string]int{})
	assert.Equal(t, http.StatusNotFound, models.StatusOf(err))
	assert.Equal(t, "Email Account acc-1 failed to be deleted.", err.Error())

	resp, err := ToDeleteEmailGroupResponse("grp-1", map[string]int{"grp-1": http.StatusOK})
	require.NoError(t, err)
	assert.Equal(t, models.DeleteResponse{ID: "grp-1", Result: "deleted"}, resp)

	_, err = ToDeleteEmailGroupResponse("grp-1", map[string]int{"grp-1": http.StatusConflict})
	assert.Equal(t, http.StatusConflict, models.StatusOf(err))
	assert.Equal(t, "Email Group grp-1 failed to be deleted.", err.Error())
}

func TestTableToEmailAccountRequest(t *testing.T) {
	tests := []struct {
		name      string
		table     models.Table
		wantSort  string
		wantQuery bool
	}{
		{"name keyword", models.Table{SortOrder: "asc", SortString: "email_account.name.keyword", Size: 5}, store.SortName, false},
		{"host", models.Table{SortOrder: "desc", SortString: "email_account.host", Size: 5}, store.SortHost, false},
		{"from keyword", models.Table{SortOrder: "asc", SortString: "email_account.from.keyword", Size: 5}, store.SortFromAddress, false},
		{"unknown sort", models.Table{SortOrder: "asc", SortString: "email_account.port", Size: 5}, "", false},
		{"search string", models.Table{SortOrder: "asc", Size: 5, SearchString: "ops"}, "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := TableToEmailAccountRequest(tt.table)
			require.NoError(t, err)
			assert.Empty(t, req.ConfigIDs)
			assert.Equal(t, tt.table.StartIndex, req.FromIndex)
			assert.Equal(t, tt.table.Size, req.MaxItems)
			assert.Equal(t, tt.wantSort, req.SortField)
			assert.Equal(t, "smtp_account", req.FilterParams[store.FilterConfigType])
			_, hasQuery := req.FilterParams[store.FilterQuery]
			assert.Equal(t, tt.wantQuery, hasQuery)
		})
	}

	_, err := TableToEmailAccountRequest(models.Table{SortOrder: "sideways"})
	assert.Equal(t, http.StatusBadRequest, models.StatusOf(err))
}

func TestTableToEmailGroupRequest(t *testing.T) {
	req, err := TableToEmailGroupRequest(models.Table{SortOrder: "desc", SortString: "email_group.emails.email", Size: 10, StartIndex: 20})
	require.NoError(t, err)
	assert.Equal(t, store.SortRecipient, req.SortField)
	assert.Equal(t, models.SortDesc, req.SortOrder)
	assert.Equal(t, 20, req.FromIndex)
	assert.Equal(t, "email_group", req.FilterParams[store.FilterConfigType])
}

func TestToSearchEmailAccountResponse_SkipsOtherTypes(t *testing.T) {
	resp := store.GetConfigResponse{
		TotalHits: 10,
		Configs: []models.NotificationConfigInfo{
			{ConfigID: "a1", Config: EmailAccountToConfig(models.EmailAccount{Name: "one"})},
			{ConfigID: "g1", Config: EmailGroupToConfig(models.EmailGroup{Name: "group"})},
			{ConfigID: "a2", Config: EmailAccountToConfig(models.EmailAccount{Name: "two"})},
		},
	}
	out, skipped := ToSearchEmailAccountResponse(resp)
	assert.Equal(t, []string{"g1"}, skipped)
	require.NotNil(t, out.TotalEmailAccounts)
	assert.Equal(t, 9, *out.TotalEmailAccounts)
	require.Len(t, out.EmailAccounts, 2)
	assert.Equal(t, "a1", out.EmailAccounts[0].ID)
	assert.Equal(t, "a2", out.EmailAccounts[1].ID)
}

func TestEmailGroupFromConfigDoc(t *testing.T) {
	info := models.NotificationConfigInfo{
		ConfigID: "grp-1",
		Config:   EmailGroupToConfig(models.EmailGroup{Name: "oncall", Emails: []models.EmailEntry{{Email: "a@example.com"}}}),
	}
	src, err := json.Marshal(models.NewNotificationConfigDoc(info))
	require.NoError(t, err)

	g, ok := EmailGroupFromConfigDoc("grp-1", src)
	require.True(t, ok)
	assert.Equal(t, "oncall", g.Name)
	assert.Equal(t, "grp-1", g.ID)

	_, ok = EmailAccountFromConfigDoc("grp-1", src)
	assert.False(t, ok)
	_, ok = EmailGroupFromConfigDoc("x", json.RawMessage(`{"config":{}}`))
	assert.False(t, ok)
}
