package services

import (
	"context"
	"strings"

	"alerting-destinations/internal/converter"
	"alerting-destinations/internal/merge"
	"alerting-destinations/internal/models"
	"alerting-destinations/internal/query"
	"alerting-destinations/internal/store"
	"alerting-destinations/pkg/email"
)

type EmailGroupService struct {
	base
}

func NewEmailGroupService(d Deps) *EmailGroupService {
	return &EmailGroupService{base: newBase(d)}
}

func (s *EmailGroupService) Get(ctx context.Context, id string) (models.GetEmailGroupResponse, error) {
	if err := s.checkAllowed(); err != nil {
		return models.GetEmailGroupResponse{}, err
	}
	req, err := converter.GetEmailGroupRequest(id)
	if err != nil {
		return models.GetEmailGroupResponse{}, err
	}
	resp, err := s.Store.GetConfigs(ctx, req)
	if err != nil {
		return models.GetEmailGroupResponse{}, err
	}
	return converter.ToGetEmailGroupResponse(id, resp)
}

func (s *EmailGroupService) Create(ctx context.Context, g models.EmailGroup) (models.GetEmailGroupResponse, error) {
	if err := s.checkAllowed(); err != nil {
		return models.GetEmailGroupResponse{}, err
	}
	if err := validateGroup(g); err != nil {
		return models.GetEmailGroupResponse{}, err
	}
	id, err := s.Store.CreateConfig(ctx, converter.EmailGroupToConfig(g), converter.CreateEmailGroupID(g))
	if err != nil {
		return models.GetEmailGroupResponse{}, err
	}
	return s.afterWrite(ctx, id, models.ActionCreated)
}

func (s *EmailGroupService) Update(ctx context.Context, id string, g models.EmailGroup) (models.GetEmailGroupResponse, error) {
	if err := s.checkAllowed(); err != nil {
		return models.GetEmailGroupResponse{}, err
	}
	if id == "" {
		return models.GetEmailGroupResponse{}, models.Invalid("Email Group id must not be empty")
	}
	if err := validateGroup(g); err != nil {
		return models.GetEmailGroupResponse{}, err
	}
	if _, err := s.Store.UpdateConfig(ctx, id, converter.EmailGroupToConfig(g)); err != nil {
		return models.GetEmailGroupResponse{}, err
	}
	return s.afterWrite(ctx, id, models.ActionUpdated)
}

func (s *EmailGroupService) afterWrite(ctx context.Context, id, action string) (models.GetEmailGroupResponse, error) {
	req, err := converter.GetEmailGroupRequest(id)
	if err != nil {
		return models.GetEmailGroupResponse{}, err
	}
	resp, err := s.Store.GetConfigs(ctx, req)
	if err != nil {
		return models.GetEmailGroupResponse{}, err
	}
	out, err := converter.ToIndexEmailGroupResponse(id, resp)
	if err != nil {
		return models.GetEmailGroupResponse{}, err
	}
	s.publish(ctx, out.ID, models.ConfigTypeEmailGroup, action)
	return out, nil
}

func validateGroup(g models.EmailGroup) error {
	if strings.TrimSpace(g.Name) == "" {
		return models.Invalid("Email Group name must not be empty")
	}
	for _, e := range g.Emails {
		if err := email.Validate(e.Email); err != nil {
			return models.Invalid("%s", err.Error())
		}
	}
	return nil
}

func (s *EmailGroupService) Delete(ctx context.Context, id string) (models.DeleteResponse, error) {
	if err := s.checkAllowed(); err != nil {
		return models.DeleteResponse{}, err
	}
	ids, err := converter.DeleteEmailGroupRequest(id)
	if err != nil {
		return models.DeleteResponse{}, err
	}
	statuses, err := s.Store.DeleteConfigs(ctx, ids)
	if err != nil {
		return models.DeleteResponse{}, err
	}
	out, err := converter.ToDeleteEmailGroupResponse(id, statuses)
	if err != nil {
		return models.DeleteResponse{}, err
	}
	s.publish(ctx, out.ID, models.ConfigTypeEmailGroup, models.ActionDeleted)
	return out, nil
}

// Search returns one page of groups, filled up from the legacy index.
func (s *EmailGroupService) Search(ctx context.Context, t models.Table) (models.SearchEmailGroupResponse, error) {
	if err := s.checkAllowed(); err != nil {
		return models.SearchEmailGroupResponse{}, err
	}
	req, err := converter.TableToEmailGroupRequest(t)
	if err != nil {
		return models.SearchEmailGroupResponse{}, err
	}
	resp, err := s.Store.GetConfigs(ctx, req)
	if err != nil {
		return models.SearchEmailGroupResponse{}, err
	}
	primary, skipped := converter.ToSearchEmailGroupResponse(resp)
	if len(skipped) > 0 {
		s.Logger.Warnf("Skipped %d configs that are not email groups: %v", len(skipped), skipped)
	}

	m := merge.Merger[models.EmailGroup]{
		Resort: s.Resort,
		Less:   lessBy(t.SortOrder, groupSortKey(t.SortString)),
		OnSecondaryError: func(err error) {
			s.Logger.Warnf("Failed to search email groups from alerting config index: %v", err)
		},
	}
	page := m.Merge(ctx, merge.Page[models.EmailGroup]{Total: *primary.TotalEmailGroups, Items: primary.EmailGroups}, t.Size, s.legacyGroups(t))
	return models.SearchEmailGroupResponse{
		Status:           primary.Status,
		TotalEmailGroups: models.IntPtr(page.Total),
		EmailGroups:      page.Items,
	}, nil
}

func (s *EmailGroupService) legacyGroups(t models.Table) merge.SecondaryFunc[models.EmailGroup] {
	return func(ctx context.Context, size int) (merge.Page[models.EmailGroup], error) {
		body, err := query.LegacyEmailGroup.Secondary(t, size).Body()
		if err != nil {
			return merge.Page[models.EmailGroup]{}, err
		}
		res, err := s.Searcher.Search(ctx, s.LegacyIndex, body)
		if err != nil {
			return merge.Page[models.EmailGroup]{}, err
		}
		items := make([]models.EmailGroup, 0, len(res.Hits))
		for _, hit := range res.Hits {
			g, err := models.ParseEmailGroupWithType(hit.Source, hit.ID, hit.Version)
			if err != nil {
				return merge.Page[models.EmailGroup]{}, err
			}
			items = append(items, g)
		}
		return merge.Page[models.EmailGroup]{Total: res.TotalHits, Items: items}, nil
	}
}

func groupSortKey(sortString string) func(models.EmailGroup) string {
	switch strings.TrimSuffix(sortString, ".keyword") {
	case "email_group.name":
		return func(g models.EmailGroup) string { return g.Name }
	case "email_group.emails", "email_group.emails.email":
		return func(g models.EmailGroup) string {
			if len(g.Emails) == 0 {
				return ""
			}
			return g.Emails[0].Email
		}
	}
	return nil
}

// SearchQuery runs a raw search body written against legacy group fields.
func (s *EmailGroupService) SearchQuery(ctx context.Context, body []byte) (SearchResponse, error) {
	if err := s.checkAllowed(); err != nil {
		return SearchResponse{}, err
	}
	return s.rawSearch(ctx, body, models.ConfigTypeEmailGroup, converter.EmailGroupFields, func(hit store.Hit) (interface{}, bool) {
		g, ok := converter.EmailGroupFromConfigDoc(hit.ID, hit.Source)
		if !ok {
			return nil, false
		}
		return models.EmailGroupDocument(g), true
	})
}
