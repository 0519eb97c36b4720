package services

import (
	"context"

	"alerting-destinations/internal/events"
	"alerting-destinations/internal/models"
	"alerting-destinations/internal/store"
)

type mockStore struct {
	GetConfigsFn    func(ctx context.Context, req store.GetConfigRequest) (store.GetConfigResponse, error)
	CreateConfigFn  func(ctx context.Context, cfg models.NotificationConfig, id *string) (string, error)
	UpdateConfigFn  func(ctx context.Context, id string, cfg models.NotificationConfig) (string, error)
	DeleteConfigsFn func(ctx context.Context, ids []string) (map[string]int, error)

	calls int
}

func (m *mockStore) GetConfigs(ctx context.Context, req store.GetConfigRequest) (store.GetConfigResponse, error) {
	m.calls++
	return m.GetConfigsFn(ctx, req)
}

func (m *mockStore) CreateConfig(ctx context.Context, cfg models.NotificationConfig, id *string) (string, error) {
	m.calls++
	return m.CreateConfigFn(ctx, cfg, id)
}

func (m *mockStore) UpdateConfig(ctx context.Context, id string, cfg models.NotificationConfig) (string, error) {
	m.calls++
	return m.UpdateConfigFn(ctx, id, cfg)
}

func (m *mockStore) DeleteConfigs(ctx context.Context, ids []string) (map[string]int, error) {
	m.calls++
	return m.DeleteConfigsFn(ctx, ids)
}

type searchCall struct {
	Index string
	Body  string
}

type mockSearcher struct {
	SearchFn func(ctx context.Context, index string, body []byte) (store.SearchResult, error)

	calls []searchCall
}

func (m *mockSearcher) Search(ctx context.Context, index string, body []byte) (store.SearchResult, error) {
	m.calls = append(m.calls, searchCall{Index: index, Body: string(body)})
	return m.SearchFn(ctx, index, body)
}

type mockPublisher struct {
	PublishFn func(ctx context.Context, e events.ConfigChanged) error

	published []events.ConfigChanged
}

func (m *mockPublisher) Publish(ctx context.Context, e events.ConfigChanged) error {
	m.published = append(m.published, e)
	if m.PublishFn == nil {
		return nil
	}
	return m.PublishFn(ctx, e)
}
