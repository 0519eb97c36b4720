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

type EmailAccountService struct {
	base
}

func NewEmailAccountService(d Deps) *EmailAccountService {
	return &EmailAccountService{base: newBase(d)}
}

// Get returns the account stored under id.
func (s *EmailAccountService) Get(ctx context.Context, id string) (models.GetEmailAccountResponse, error) {
	if err := s.checkAllowed(); err != nil {
		return models.GetEmailAccountResponse{}, err
	}
	req, err := converter.GetEmailAccountRequest(id)
	if err != nil {
		return models.GetEmailAccountResponse{}, err
	}
	resp, err := s.Store.GetConfigs(ctx, req)
	if err != nil {
		return models.GetEmailAccountResponse{}, err
	}
	return converter.ToGetEmailAccountResponse(id, resp)
}

// Create stores a new account. An empty a.ID lets the store pick the id.
func (s *EmailAccountService) Create(ctx context.Context, a models.EmailAccount) (models.GetEmailAccountResponse, error) {
	if err := s.checkAllowed(); err != nil {
		return models.GetEmailAccountResponse{}, err
	}
	if err := validateAccount(a); err != nil {
		return models.GetEmailAccountResponse{}, err
	}
	id, err := s.Store.CreateConfig(ctx, converter.EmailAccountToConfig(a), converter.CreateEmailAccountID(a))
	if err != nil {
		return models.GetEmailAccountResponse{}, err
	}
	return s.afterWrite(ctx, id, models.ActionCreated)
}

// Update replaces the account stored under id.
func (s *EmailAccountService) Update(ctx context.Context, id string, a models.EmailAccount) (models.GetEmailAccountResponse, error) {
	if err := s.checkAllowed(); err != nil {
		return models.GetEmailAccountResponse{}, err
	}
	if id == "" {
		return models.GetEmailAccountResponse{}, models.Invalid("Email Account id must not be empty")
	}
	if err := validateAccount(a); err != nil {
		return models.GetEmailAccountResponse{}, err
	}
	if _, err := s.Store.UpdateConfig(ctx, id, converter.EmailAccountToConfig(a)); err != nil {
		return models.GetEmailAccountResponse{}, err
	}
	return s.afterWrite(ctx, id, models.ActionUpdated)
}

func (s *EmailAccountService) afterWrite(ctx context.Context, id, action string) (models.GetEmailAccountResponse, error) {
	req, err := converter.GetEmailAccountRequest(id)
	if err != nil {
		return models.GetEmailAccountResponse{}, err
	}
	resp, err := s.Store.GetConfigs(ctx, req)
	if err != nil {
		return models.GetEmailAccountResponse{}, err
	}
	out, err := converter.ToIndexEmailAccountResponse(id, resp)
	if err != nil {
		return models.GetEmailAccountResponse{}, err
	}
	s.publish(ctx, out.ID, models.ConfigTypeSmtpAccount, action)
	return out, nil
}

func validateAccount(a models.EmailAccount) error {
	if strings.TrimSpace(a.Name) == "" {
		return models.Invalid("Email Account name must not be empty")
	}
	if err := email.Validate(a.Email); err != nil {
		return models.Invalid("%s", err.Error())
	}
	if a.Port < 0 || a.Port > 65535 {
		return models.Invalid("port %d is out of range", a.Port)
	}
	return nil
}

// Delete removes the account stored under id.
func (s *EmailAccountService) Delete(ctx context.Context, id string) (models.DeleteResponse, error) {
	if err := s.checkAllowed(); err != nil {
		return models.DeleteResponse{}, err
	}
	ids, err := converter.DeleteEmailAccountRequest(id)
	if err != nil {
		return models.DeleteResponse{}, err
	}
	statuses, err := s.Store.DeleteConfigs(ctx, ids)
	if err != nil {
		return models.DeleteResponse{}, err
	}
	out, err := converter.ToDeleteEmailAccountResponse(id, statuses)
	if err != nil {
		return models.DeleteResponse{}, err
	}
	s.publish(ctx, out.ID, models.ConfigTypeSmtpAccount, models.ActionDeleted)
	return out, nil
}

// Search returns one page of accounts. The config store is asked first; free
// slots left on the page are filled from the legacy index.
func (s *EmailAccountService) Search(ctx context.Context, t models.Table) (models.SearchEmailAccountResponse, error) {
	if err := s.checkAllowed(); err != nil {
		return models.SearchEmailAccountResponse{}, err
	}
	req, err := converter.TableToEmailAccountRequest(t)
	if err != nil {
		return models.SearchEmailAccountResponse{}, err
	}
	resp, err := s.Store.GetConfigs(ctx, req)
	if err != nil {
		return models.SearchEmailAccountResponse{}, err
	}
	primary, skipped := converter.ToSearchEmailAccountResponse(resp)
	if len(skipped) > 0 {
		s.Logger.Warnf("Skipped %d configs that are not email accounts: %v", len(skipped), skipped)
	}

	m := merge.Merger[models.EmailAccount]{
		Resort: s.Resort,
		Less:   lessBy(t.SortOrder, accountSortKey(t.SortString)),
		OnSecondaryError: func(err error) {
			s.Logger.Warnf("Failed to search email accounts from alerting config index: %v", err)
		},
	}
	page := m.Merge(ctx, merge.Page[models.EmailAccount]{Total: *primary.TotalEmailAccounts, Items: primary.EmailAccounts}, t.Size, s.legacyAccounts(t))
	return models.SearchEmailAccountResponse{
		Status:             primary.Status,
		TotalEmailAccounts: models.IntPtr(page.Total),
		EmailAccounts:      page.Items,
	}, nil
}

func (s *EmailAccountService) legacyAccounts(t models.Table) merge.SecondaryFunc[models.EmailAccount] {
	return func(ctx context.Context, size int) (merge.Page[models.EmailAccount], error) {
		body, err := query.LegacyEmailAccount.Secondary(t, size).Body()
		if err != nil {
			return merge.Page[models.EmailAccount]{}, err
		}
		res, err := s.Searcher.Search(ctx, s.LegacyIndex, body)
		if err != nil {
			return merge.Page[models.EmailAccount]{}, err
		}
		items := make([]models.EmailAccount, 0, len(res.Hits))
		for _, hit := range res.Hits {
			a, err := models.ParseEmailAccountWithType(hit.Source, hit.ID, hit.Version)
			if err != nil {
				return merge.Page[models.EmailAccount]{}, err
			}
			items = append(items, a)
		}
		return merge.Page[models.EmailAccount]{Total: res.TotalHits, Items: items}, nil
	}
}

func accountSortKey(sortString string) func(models.EmailAccount) string {
	switch strings.TrimSuffix(sortString, ".keyword") {
	case "email_account.name":
		return func(a models.EmailAccount) string { return a.Name }
	case "email_account.host":
		return func(a models.EmailAccount) string { return a.Host }
	case "email_account.from":
		return func(a models.EmailAccount) string { return a.Email }
	}
	return nil
}

// SearchQuery runs a raw search body written against legacy account fields.
func (s *EmailAccountService) SearchQuery(ctx context.Context, body []byte) (SearchResponse, error) {
	if err := s.checkAllowed(); err != nil {
		return SearchResponse{}, err
	}
	return s.rawSearch(ctx, body, models.ConfigTypeSmtpAccount, converter.EmailAccountFields, func(hit store.Hit) (interface{}, bool) {
		a, ok := converter.EmailAccountFromConfigDoc(hit.ID, hit.Source)
		if !ok {
			return nil, false
		}
		return models.EmailAccountDocument(a), true
	})
}
