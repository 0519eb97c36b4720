package api

import (
	"context"

	"alerting-destinations/internal/models"
	"alerting-destinations/internal/services"
)

type mockAccounts struct {
	GetFn         func(ctx context.Context, id string) (models.GetEmailAccountResponse, error)
	CreateFn      func(ctx context.Context, a models.EmailAccount) (models.GetEmailAccountResponse, error)
	UpdateFn      func(ctx context.Context, id string, a models.EmailAccount) (models.GetEmailAccountResponse, error)
	DeleteFn      func(ctx context.Context, id string) (models.DeleteResponse, error)
	SearchFn      func(ctx context.Context, t models.Table) (models.SearchEmailAccountResponse, error)
	SearchQueryFn func(ctx context.Context, body []byte) (services.SearchResponse, error)
}

func (m *mockAccounts) Get(ctx context.Context, id string) (models.GetEmailAccountResponse, error) {
	return m.GetFn(ctx, id)
}

func (m *mockAccounts) Create(ctx context.Context, a models.EmailAccount) (models.GetEmailAccountResponse, error) {
	return m.CreateFn(ctx, a)
}

func (m *mockAccounts) Update(ctx context.Context, id string, a models.EmailAccount) (models.GetEmailAccountResponse, error) {
	return m.UpdateFn(ctx, id, a)
}

func (m *mockAccounts) Delete(ctx context.Context, id string) (models.DeleteResponse, error) {
	return m.DeleteFn(ctx, id)
}

func (m *mockAccounts) Search(ctx context.Context, t models.Table) (models.SearchEmailAccountResponse, error) {
	return m.SearchFn(ctx, t)
}

func (m *mockAccounts) SearchQuery(ctx context.Context, body []byte) (services.SearchResponse, error) {
	return m.SearchQueryFn(ctx, body)
}

type mockGroups struct {
	GetFn         func(ctx context.Context, id string) (models.GetEmailGroupResponse, error)
	CreateFn      func(ctx context.Context, g models.EmailGroup) (models.GetEmailGroupResponse, error)
	UpdateFn      func(ctx context.Context, id string, g models.EmailGroup) (models.GetEmailGroupResponse, error)
	DeleteFn      func(ctx context.Context, id string) (models.DeleteResponse, error)
	SearchFn      func(ctx context.Context, t models.Table) (models.SearchEmailGroupResponse, error)
	SearchQueryFn func(ctx context.Context, body []byte) (services.SearchResponse, error)
}

func (m *mockGroups) Get(ctx context.Context, id string) (models.GetEmailGroupResponse, error) {
	return m.GetFn(ctx, id)
}

func (m *mockGroups) Create(ctx context.Context, g models.EmailGroup) (models.GetEmailGroupResponse, error) {
	return m.CreateFn(ctx, g)
}

func (m *mockGroups) Update(ctx context.Context, id string, g models.EmailGroup) (models.GetEmailGroupResponse, error) {
	return m.UpdateFn(ctx, id, g)
}

func (m *mockGroups) Delete(ctx context.Context, id string) (models.DeleteResponse, error) {
	return m.DeleteFn(ctx, id)
}

func (m *mockGroups) Search(ctx context.Context, t models.Table) (models.SearchEmailGroupResponse, error) {
	return m.SearchFn(ctx, t)
}

func (m *mockGroups) SearchQuery(ctx context.Context, body []byte) (services.SearchResponse, error) {
	return m.SearchQueryFn(ctx, body)
}

type mockCluster struct {
	ExecuteFn func(ctx context.Context, path string) (map[string]interface{}, error)
}

func (m *mockCluster) Execute(ctx context.Context, path string) (map[string]interface{}, error) {
	return m.ExecuteFn(ctx, path)
}
