package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"alerting-destinations/internal/events"
	"alerting-destinations/internal/logging"
	"alerting-destinations/internal/models"
	"alerting-destinations/internal/settings"
	"alerting-destinations/internal/store"
)

const (
	legacyIndex       = ".opendistro-alerting-config"
	notificationIndex = ".opensearch-notifications-config"
)

func newDeps(st *mockStore, se *mockSearcher, pub *mockPublisher, allow *settings.AllowList) Deps {
	d := Deps{
		Store:             st,
		Searcher:          se,
		AllowList:         allow,
		Logger:            logging.Discard(),
		LegacyIndex:       legacyIndex,
		NotificationIndex: notificationIndex,
	}
	if pub != nil {
		d.Publisher = pub
	}
	return d
}

func smtpInfo(id, name string) models.NotificationConfigInfo {
	return models.NotificationConfigInfo{
		ConfigID: id,
		Config: models.NotificationConfig{
			Name:       name,
			ConfigType: models.ConfigTypeSmtpAccount,
			Features:   []string{models.FeatureAlerting},
			IsEnabled:  true,
			Data: models.SmtpAccount{
				Host:        "smtp.example.com",
				Port:        465,
				Method:      models.NotificationMethodSSL,
				FromAddress: "a@example.com",
			},
		},
	}
}

func failingSearcher() *mockSearcher {
	return &mockSearcher{SearchFn: func(context.Context, string, []byte) (store.SearchResult, error) {
		return store.SearchResult{}, errors.New("unexpected search")
	}}
}

func TestAllowListGate(t *testing.T) {
	st := &mockStore{}
	se := &mockSearcher{}
	allow := settings.StaticAllowList("slack", "chime")
	accounts := NewEmailAccountService(newDeps(st, se, nil, allow))
	groups := NewEmailGroupService(newDeps(st, se, nil, allow))
	ctx := context.Background()
	table := models.Table{SortOrder: "asc", Size: 5}

	var errs []error
	_, err := accounts.Get(ctx, "a1")
	errs = append(errs, err)
	_, err = accounts.Delete(ctx, "a1")
	errs = append(errs, err)
	_, err = accounts.Search(ctx, table)
	errs = append(errs, err)
	_, err = accounts.SearchQuery(ctx, []byte(`{}`))
	errs = append(errs, err)
	_, err = accounts.Create(ctx, models.EmailAccount{Name: "x", Email: "a@example.com"})
	errs = append(errs, err)
	_, err = groups.Get(ctx, "g1")
	errs = append(errs, err)
	_, err = groups.Delete(ctx, "g1")
	errs = append(errs, err)
	_, err = groups.Search(ctx, table)
	errs = append(errs, err)
	_, err = groups.SearchQuery(ctx, []byte(`{}`))
	errs = append(errs, err)
	_, err = groups.Update(ctx, "g1", models.EmailGroup{Name: "x"})
	errs = append(errs, err)

	for i, err := range errs {
		require.Error(t, err, "call %d", i)
		assert.Equal(t, http.StatusForbidden, models.StatusOf(err), "call %d", i)
		assert.Equal(t, "This API is blocked since Destination type [EMAIL] is not allowed", err.Error())
	}
	assert.Zero(t, st.calls)
	assert.Empty(t, se.calls)
}

func TestEmailAccount_CreateThenGet(t *testing.T) {
	stored := map[string]models.NotificationConfig{}
	var createdWith *string
	st := &mockStore{
		CreateConfigFn: func(_ context.Context, cfg models.NotificationConfig, id *string) (string, error) {
			createdWith = id
			stored["generated-1"] = cfg
			return "generated-1", nil
		},
		GetConfigsFn: func(_ context.Context, req store.GetConfigRequest) (store.GetConfigResponse, error) {
			cfg, ok := stored[req.ConfigIDs[0]]
			if !ok {
				return store.GetConfigResponse{}, nil
			}
			return store.GetConfigResponse{TotalHits: 1, Configs: []models.NotificationConfigInfo{{ConfigID: req.ConfigIDs[0], Config: cfg}}}, nil
		},
	}
	pub := &mockPublisher{}
	svc := NewEmailAccountService(newDeps(st, failingSearcher(), pub, settings.StaticAllowList(settings.DestinationEmail)))

	in := models.EmailAccount{ID: "", Name: "acct1", Host: "smtp.example.com", Port: 465, Method: models.MethodSSL, Email: "a@example.com"}
	created, err := svc.Create(context.Background(), in)
	require.NoError(t, err)
	assert.Nil(t, createdWith)
	assert.Equal(t, "generated-1", created.ID)

	got, err := svc.Get(context.Background(), created.ID)
	require.NoError(t, err)
	require.NotNil(t, got.EmailAccount)
	assert.Equal(t, models.MethodSSL, got.EmailAccount.Method)
	assert.Equal(t, "acct1", got.EmailAccount.Name)
	assert.Equal(t, "smtp.example.com", got.EmailAccount.Host)
	assert.Equal(t, 465, got.EmailAccount.Port)
	assert.Equal(t, "a@example.com", got.EmailAccount.Email)

	require.Len(t, pub.published, 1)
	assert.Equal(t, "generated-1", pub.published[0].ConfigID)
	assert.Equal(t, models.ActionCreated, pub.published[0].Action)
}

func TestEmailAccount_CreateRejectsBadAddress(t *testing.T) {
	st := &mockStore{}
	svc := NewEmailAccountService(newDeps(st, failingSearcher(), nil, settings.StaticAllowList(settings.DestinationEmail)))

	_, err := svc.Create(context.Background(), models.EmailAccount{Name: "acct1", Email: "not-an-address"})
	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, models.StatusOf(err))
	assert.Zero(t, st.calls)
}

func TestEmailAccount_PublishFailureDoesNotFailWrite(t *testing.T) {
	st := &mockStore{
		UpdateConfigFn: func(_ context.Context, id string, _ models.NotificationConfig) (string, error) { return id, nil },
		GetConfigsFn: func(_ context.Context, req store.GetConfigRequest) (store.GetConfigResponse, error) {
			return store.GetConfigResponse{TotalHits: 1, Configs: []models.NotificationConfigInfo{smtpInfo(req.ConfigIDs[0], "acct1")}}, nil
		},
	}
	pub := &mockPublisher{PublishFn: func(context.Context, events.ConfigChanged) error { return errors.New("broker down") }}
	svc := NewEmailAccountService(newDeps(st, failingSearcher(), pub, settings.StaticAllowList(settings.DestinationEmail)))

	out, err := svc.Update(context.Background(), "a1", models.EmailAccount{Name: "acct1", Email: "a@example.com", Port: 465})
	require.NoError(t, err)
	assert.Equal(t, "a1", out.ID)
	assert.Len(t, pub.published, 1)
}

func TestEmailAccount_SearchFillsFreeSlotsFromLegacyIndex(t *testing.T) {
	var req store.GetConfigRequest
	st := &mockStore{GetConfigsFn: func(_ context.Context, r store.GetConfigRequest) (store.GetConfigResponse, error) {
		req = r
		return store.GetConfigResponse{TotalHits: 3, Configs: []models.NotificationConfigInfo{
			smtpInfo("c1", "alpha"), smtpInfo("c2", "bravo"), smtpInfo("c3", "charlie"),
		}}, nil
	}}
	se := &mockSearcher{SearchFn: func(context.Context, string, []byte) (store.SearchResult, error) {
		return store.SearchResult{TotalHits: 1, Hits: []store.Hit{{
			ID:      "legacy-1",
			Version: 4,
			Source:  json.RawMessage(`{"email_account":{"schema_version":1,"name":"aardvark","email":"l@example.com","host":"mail.example.com","port":25,"method":"none"}}`),
		}}}, nil
	}}
	svc := NewEmailAccountService(newDeps(st, se, nil, settings.StaticAllowList(settings.DestinationEmail)))

	out, err := svc.Search(context.Background(), models.Table{SortOrder: "asc", SortString: "email_account.name.keyword", Size: 5, StartIndex: 0})
	require.NoError(t, err)

	assert.Equal(t, store.SortName, req.SortField)
	assert.Equal(t, 5, req.MaxItems)
	assert.Equal(t, string(models.ConfigTypeSmtpAccount), req.FilterParams[store.FilterConfigType])
	_, hasQuery := req.FilterParams[store.FilterQuery]
	assert.False(t, hasQuery)

	require.Len(t, se.calls, 1)
	assert.Equal(t, legacyIndex, se.calls[0].Index)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(se.calls[0].Body), &body))
	assert.EqualValues(t, 2, body["size"])
	assert.EqualValues(t, 0, body["from"])

	require.NotNil(t, out.TotalEmailAccounts)
	assert.Equal(t, 4, *out.TotalEmailAccounts)
	require.Len(t, out.EmailAccounts, 4)
	assert.Equal(t, "legacy-1", out.EmailAccounts[0].ID)
	assert.Equal(t, int64(4), out.EmailAccounts[0].Version)
	assert.Equal(t, "c1", out.EmailAccounts[1].ID)
}

func groupInfo(id, name string, recipients ...string) models.NotificationConfigInfo {
	list := make([]models.EmailRecipient, 0, len(recipients))
	for _, r := range recipients {
		list = append(list, models.EmailRecipient{Recipient: r})
	}
	return models.NotificationConfigInfo{
		ConfigID: id,
		Config: models.NotificationConfig{
			Name:       name,
			ConfigType: models.ConfigTypeEmailGroup,
			Features:   []string{models.FeatureAlerting},
			IsEnabled:  true,
			Data:       models.EmailGroupConfig{Recipients: list},
		},
	}
}

func TestEmailGroup_SearchFillsFreeSlotsFromLegacyIndex(t *testing.T) {
	var req store.GetConfigRequest
	st := &mockStore{GetConfigsFn: func(_ context.Context, r store.GetConfigRequest) (store.GetConfigResponse, error) {
		req = r
		return store.GetConfigResponse{TotalHits: 2, Configs: []models.NotificationConfigInfo{
			groupInfo("g1", "ops", "a@example.com"), groupInfo("g2", "ops-oncall"),
		}}, nil
	}}
	se := &mockSearcher{SearchFn: func(context.Context, string, []byte) (store.SearchResult, error) {
		return store.SearchResult{TotalHits: 3, Hits: []store.Hit{{
			ID:      "legacy-g",
			Version: 7,
			Source:  json.RawMessage(`{"email_group":{"schema_version":1,"name":"ops-legacy","emails":[{"email":"l@example.com"}]}}`),
		}}}, nil
	}}
	svc := NewEmailGroupService(newDeps(st, se, nil, settings.StaticAllowList(settings.DestinationEmail)))

	out, err := svc.Search(context.Background(), models.Table{SortOrder: "asc", SortString: "email_group.name.keyword", Size: 3, StartIndex: 0, SearchString: "ops"})
	require.NoError(t, err)

	assert.Equal(t, store.SortName, req.SortField)
	assert.Equal(t, 3, req.MaxItems)
	assert.Equal(t, string(models.ConfigTypeEmailGroup), req.FilterParams[store.FilterConfigType])

	require.Len(t, se.calls, 1)
	assert.Equal(t, legacyIndex, se.calls[0].Index)
	assert.JSONEq(t, `{
		"from": 0,
		"size": 1,
		"_source": true,
		"version": true,
		"seq_no_primary_term": true,
		"sort": [{"email_group.name.keyword": {"order": "asc"}}],
		"query": {"bool": {"must": [
			{"exists": {"field": "email_group"}},
			{"query_string": {"query": "ops", "fields": ["email_group.name"], "default_operator": "and"}}
		]}}
	}`, se.calls[0].Body)

	require.NotNil(t, out.TotalEmailGroups)
	assert.Equal(t, 5, *out.TotalEmailGroups)
	require.Len(t, out.EmailGroups, 3)
	assert.Equal(t, models.EmailGroup{
		ID:            "legacy-g",
		Version:       7,
		SchemaVersion: 1,
		Name:          "ops-legacy",
		Emails:        []models.EmailEntry{{Email: "l@example.com"}},
	}, out.EmailGroups[0])
	assert.Equal(t, "g1", out.EmailGroups[1].ID)
	assert.Equal(t, []models.EmailEntry{{Email: "a@example.com"}}, out.EmailGroups[1].Emails)
	assert.Equal(t, "g2", out.EmailGroups[2].ID)
}

func TestEmailGroup_SearchDegradesOnUnparsableLegacyHit(t *testing.T) {
	st := &mockStore{GetConfigsFn: func(context.Context, store.GetConfigRequest) (store.GetConfigResponse, error) {
		return store.GetConfigResponse{TotalHits: 1, Configs: []models.NotificationConfigInfo{groupInfo("g1", "ops")}}, nil
	}}
	se := &mockSearcher{SearchFn: func(context.Context, string, []byte) (store.SearchResult, error) {
		return store.SearchResult{TotalHits: 1, Hits: []store.Hit{{ID: "acct", Source: json.RawMessage(`{"email_account":{"name":"x"}}`)}}}, nil
	}}
	svc := NewEmailGroupService(newDeps(st, se, nil, settings.StaticAllowList(settings.DestinationEmail)))

	out, err := svc.Search(context.Background(), models.Table{SortOrder: "asc", SortString: "email_group.name.keyword", Size: 5})
	require.NoError(t, err)
	assert.Equal(t, 1, *out.TotalEmailGroups)
	require.Len(t, out.EmailGroups, 1)
	assert.Equal(t, "g1", out.EmailGroups[0].ID)
}

func TestEmailAccount_SearchResort(t *testing.T) {
	st := &mockStore{GetConfigsFn: func(context.Context, store.GetConfigRequest) (store.GetConfigResponse, error) {
		return store.GetConfigResponse{TotalHits: 2, Configs: []models.NotificationConfigInfo{smtpInfo("c1", "bravo"), smtpInfo("c2", "delta")}}, nil
	}}
	se := &mockSearcher{SearchFn: func(context.Context, string, []byte) (store.SearchResult, error) {
		return store.SearchResult{TotalHits: 1, Hits: []store.Hit{{ID: "l1", Source: json.RawMessage(`{"email_account":{"name":"charlie","email":"c@example.com"}}`)}}}, nil
	}}
	d := newDeps(st, se, nil, settings.StaticAllowList(settings.DestinationEmail))
	d.Resort = true
	svc := NewEmailAccountService(d)

	out, err := svc.Search(context.Background(), models.Table{SortOrder: "desc", SortString: "email_account.name", Size: 3})
	require.NoError(t, err)
	var names []string
	for _, a := range out.EmailAccounts {
		names = append(names, a.Name)
	}
	assert.Equal(t, []string{"delta", "charlie", "bravo"}, names)
}

func TestEmailAccount_SearchFullPageSkipsLegacyIndex(t *testing.T) {
	st := &mockStore{GetConfigsFn: func(context.Context, store.GetConfigRequest) (store.GetConfigResponse, error) {
		return store.GetConfigResponse{TotalHits: 9, Configs: []models.NotificationConfigInfo{smtpInfo("c1", "a"), smtpInfo("c2", "b")}}, nil
	}}
	se := failingSearcher()
	svc := NewEmailAccountService(newDeps(st, se, nil, settings.StaticAllowList(settings.DestinationEmail)))

	out, err := svc.Search(context.Background(), models.Table{SortOrder: "asc", Size: 2})
	require.NoError(t, err)
	assert.Empty(t, se.calls)
	assert.Equal(t, 9, *out.TotalEmailAccounts)
	assert.Len(t, out.EmailAccounts, 2)
}

func TestEmailAccount_SearchDegradesOnLegacyFailure(t *testing.T) {
	st := &mockStore{GetConfigsFn: func(context.Context, store.GetConfigRequest) (store.GetConfigResponse, error) {
		return store.GetConfigResponse{TotalHits: 1, Configs: []models.NotificationConfigInfo{smtpInfo("c1", "a")}}, nil
	}}
	se := failingSearcher()
	svc := NewEmailAccountService(newDeps(st, se, nil, settings.StaticAllowList(settings.DestinationEmail)))

	out, err := svc.Search(context.Background(), models.Table{SortOrder: "asc", Size: 5, SearchString: "ops"})
	require.NoError(t, err)
	assert.Len(t, se.calls, 1)
	assert.Contains(t, se.calls[0].Body, `"query_string"`)
	assert.Equal(t, 1, *out.TotalEmailAccounts)
	require.Len(t, out.EmailAccounts, 1)
	assert.Equal(t, "c1", out.EmailAccounts[0].ID)
}

func TestEmailAccount_SearchPrimaryFailureAborts(t *testing.T) {
	st := &mockStore{GetConfigsFn: func(context.Context, store.GetConfigRequest) (store.GetConfigResponse, error) {
		return store.GetConfigResponse{}, fmt.Errorf("failed to count notification configs: %w", errors.New("connection reset"))
	}}
	se := failingSearcher()
	svc := NewEmailAccountService(newDeps(st, se, nil, settings.StaticAllowList(settings.DestinationEmail)))

	_, err := svc.Search(context.Background(), models.Table{SortOrder: "asc", Size: 5})
	require.Error(t, err)
	assert.Empty(t, se.calls)
}

func TestEmailAccount_SearchSkipsForeignConfigs(t *testing.T) {
	st := &mockStore{GetConfigsFn: func(context.Context, store.GetConfigRequest) (store.GetConfigResponse, error) {
		foreign := models.NotificationConfigInfo{ConfigID: "s1", Config: models.NotificationConfig{
			Name: "hook", ConfigType: models.ConfigTypeSlack,
			Data: models.OpaqueConfigData{Type: models.ConfigTypeSlack, Raw: json.RawMessage(`{"url":"https://hooks.example.com"}`)},
		}}
		return store.GetConfigResponse{TotalHits: 2, Configs: []models.NotificationConfigInfo{smtpInfo("c1", "a"), foreign}}, nil
	}}
	svc := NewEmailAccountService(newDeps(st, failingSearcher(), nil, settings.StaticAllowList(settings.DestinationEmail)))

	out, err := svc.Search(context.Background(), models.Table{SortOrder: "asc", Size: 2})
	require.NoError(t, err)
	assert.Equal(t, 1, *out.TotalEmailAccounts)
	assert.Len(t, out.EmailAccounts, 1)
}

func TestEmailAccount_SearchInvalidTable(t *testing.T) {
	st := &mockStore{}
	svc := NewEmailAccountService(newDeps(st, failingSearcher(), nil, settings.StaticAllowList(settings.DestinationEmail)))

	_, err := svc.Search(context.Background(), models.Table{SortOrder: "sideways", Size: 5})
	assert.Equal(t, http.StatusBadRequest, models.StatusOf(err))
	_, err = svc.Search(context.Background(), models.Table{SortOrder: "asc", Size: -1})
	assert.Equal(t, http.StatusBadRequest, models.StatusOf(err))
	assert.Zero(t, st.calls)
}

func TestEmailAccount_GetEmptyIDIsInvalid(t *testing.T) {
	st := &mockStore{}
	svc := NewEmailAccountService(newDeps(st, failingSearcher(), nil, settings.StaticAllowList(settings.DestinationEmail)))

	_, err := svc.Get(context.Background(), "")
	assert.Equal(t, http.StatusBadRequest, models.StatusOf(err))
	assert.Zero(t, st.calls)
}

func TestDeleteAbsent(t *testing.T) {
	st := &mockStore{DeleteConfigsFn: func(context.Context, []string) (map[string]int, error) {
		return map[string]int{}, nil
	}}
	pub := &mockPublisher{}
	allow := settings.StaticAllowList(settings.DestinationEmail)

	_, err := NewEmailAccountService(newDeps(st, failingSearcher(), pub, allow)).Delete(context.Background(), "missing")
	require.Error(t, err)
	assert.Equal(t, http.StatusNotFound, models.StatusOf(err))
	assert.Equal(t, "Email Account missing failed to be deleted.", err.Error())

	_, err = NewEmailGroupService(newDeps(st, failingSearcher(), pub, allow)).Delete(context.Background(), "missing")
	require.Error(t, err)
	assert.Equal(t, http.StatusNotFound, models.StatusOf(err))
	assert.Equal(t, "Email Group missing failed to be deleted.", err.Error())
	assert.Empty(t, pub.published)
}

func TestEmailGroup_DeletePublishes(t *testing.T) {
	st := &mockStore{DeleteConfigsFn: func(_ context.Context, ids []string) (map[string]int, error) {
		return map[string]int{ids[0]: http.StatusOK}, nil
	}}
	pub := &mockPublisher{}
	svc := NewEmailGroupService(newDeps(st, failingSearcher(), pub, settings.StaticAllowList(settings.DestinationEmail)))

	out, err := svc.Delete(context.Background(), "g1")
	require.NoError(t, err)
	assert.Equal(t, "g1", out.ID)
	require.Len(t, pub.published, 1)
	assert.Equal(t, models.ConfigTypeEmailGroup, pub.published[0].ConfigType)
	assert.Equal(t, models.ActionDeleted, pub.published[0].Action)
}

func TestEmailGroup_CreateValidatesRecipients(t *testing.T) {
	st := &mockStore{}
	svc := NewEmailGroupService(newDeps(st, failingSearcher(), nil, settings.StaticAllowList(settings.DestinationEmail)))

	_, err := svc.Create(context.Background(), models.EmailGroup{Name: "oncall", Emails: []models.EmailEntry{{Email: "ok@example.com"}, {Email: "nope"}}})
	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, models.StatusOf(err))
	assert.Contains(t, err.Error(), "nope")
	assert.Zero(t, st.calls)
}

func TestEmailGroup_SearchQuery(t *testing.T) {
	se := &mockSearcher{SearchFn: func(context.Context, string, []byte) (store.SearchResult, error) {
		return store.SearchResult{TotalHits: 2, Hits: []store.Hit{
			{ID: "g1", Source: json.RawMessage(`{"metadata":{},"config":{"name":"ops","config_type":"email_group","email_group":{"recipient_list":[{"recipient":"a@example.com"}]}}}`)},
			{ID: "x1", Source: json.RawMessage(`{"metadata":{},"config":{"name":"hook","config_type":"slack","slack":{"url":"https://hooks.example.com"}}}`)},
		}}, nil
	}}
	svc := NewEmailGroupService(newDeps(&mockStore{}, se, nil, settings.StaticAllowList(settings.DestinationEmail)))

	out, err := svc.SearchQuery(context.Background(), []byte(`{"query":{"match":{"email_group.name":"ops"}}}`))
	require.NoError(t, err)

	require.Len(t, se.calls, 1)
	assert.Equal(t, notificationIndex, se.calls[0].Index)
	assert.JSONEq(t, `{"query":{"bool":{"must":[
		{"match":{"config.name":"ops"}},
		{"match":{"config.config_type":"email_group"}}
	]}}}`, se.calls[0].Body)

	assert.Equal(t, 1, out.Hits.Total.Value)
	require.Len(t, out.Hits.Hits, 1)
	encoded, err := json.Marshal(out)
	require.NoError(t, err)
	assert.JSONEq(t, `{"timed_out":false,"hits":{"total":{"value":1,"relation":"eq"},"hits":[
		{"_id":"g1","_version":1,"_source":{"email_group":{"schema_version":0,"name":"ops","emails":[{"email":"a@example.com"}]}}}
	]}}`, string(encoded))
	assert.NotContains(t, string(encoded), notificationIndex)
}

func TestSearchQuery_TimedOut(t *testing.T) {
	se := &mockSearcher{SearchFn: func(context.Context, string, []byte) (store.SearchResult, error) {
		return store.SearchResult{TimedOut: true}, nil
	}}
	svc := NewEmailAccountService(newDeps(&mockStore{}, se, nil, settings.StaticAllowList(settings.DestinationEmail)))

	_, err := svc.SearchQuery(context.Background(), []byte(`{"query":{"match_all":{}}}`))
	require.Error(t, err)
	assert.Equal(t, http.StatusRequestTimeout, models.StatusOf(err))
}

func TestSearchQuery_InvalidBody(t *testing.T) {
	se := failingSearcher()
	svc := NewEmailAccountService(newDeps(&mockStore{}, se, nil, settings.StaticAllowList(settings.DestinationEmail)))

	_, err := svc.SearchQuery(context.Background(), []byte(`{"query":`))
	assert.Equal(t, http.StatusBadRequest, models.StatusOf(err))
	assert.Empty(t, se.calls)
}
