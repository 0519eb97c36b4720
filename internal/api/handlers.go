package api

import (
	"bytes"
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"alerting-destinations/internal/logging"
	"alerting-destinations/internal/models"
	"alerting-destinations/internal/services"
)

type EmailAccountService interface {
	Get(ctx context.Context, id string) (models.GetEmailAccountResponse, error)
	Create(ctx context.Context, a models.EmailAccount) (models.GetEmailAccountResponse, error)
	Update(ctx context.Context, id string, a models.EmailAccount) (models.GetEmailAccountResponse, error)
	Delete(ctx context.Context, id string) (models.DeleteResponse, error)
	Search(ctx context.Context, t models.Table) (models.SearchEmailAccountResponse, error)
	SearchQuery(ctx context.Context, body []byte) (services.SearchResponse, error)
}

type EmailGroupService interface {
	Get(ctx context.Context, id string) (models.GetEmailGroupResponse, error)
	Create(ctx context.Context, g models.EmailGroup) (models.GetEmailGroupResponse, error)
	Update(ctx context.Context, id string, g models.EmailGroup) (models.GetEmailGroupResponse, error)
	Delete(ctx context.Context, id string) (models.DeleteResponse, error)
	Search(ctx context.Context, t models.Table) (models.SearchEmailGroupResponse, error)
	SearchQuery(ctx context.Context, body []byte) (services.SearchResponse, error)
}

type ClusterProxy interface {
	Execute(ctx context.Context, path string) (map[string]interface{}, error)
}

type Handler struct {
	accounts EmailAccountService
	groups   EmailGroupService
	cluster  ClusterProxy
	logger   *logging.Logger
}

func NewHandler(accounts EmailAccountService, groups EmailGroupService, cluster ClusterProxy, logger *logging.Logger) *Handler {
	return &Handler{accounts: accounts, groups: groups, cluster: cluster, logger: logger}
}

type emailAccountRequest struct {
	ID     string `json:"id"`
	Name   string `json:"name" binding:"required"`
	Email  string `json:"email" binding:"required"`
	Host   string `json:"host" binding:"required"`
	Port   int    `json:"port" binding:"required,min=1,max=65535"`
	Method string `json:"method"`
}

func (r emailAccountRequest) toModel() (models.EmailAccount, error) {
	method := models.MethodNone
	if r.Method != "" {
		m, err := models.ParseMethodType(r.Method)
		if err != nil {
			return models.EmailAccount{}, models.Invalid("%s", err.Error())
		}
		method = m
	}
	return models.EmailAccount{
		ID:            r.ID,
		Version:       models.NoVersion,
		SchemaVersion: models.NoSchemaVersion,
		Name:          r.Name,
		Email:         r.Email,
		Host:          r.Host,
		Port:          r.Port,
		Method:        method,
	}, nil
}

type emailGroupRequest struct {
	ID     string              `json:"id"`
	Name   string              `json:"name" binding:"required"`
	Emails []models.EmailEntry `json:"emails"`
}

func (r emailGroupRequest) toModel() models.EmailGroup {
	emails := r.Emails
	if emails == nil {
		emails = []models.EmailEntry{}
	}
	return models.EmailGroup{
		ID:            r.ID,
		Version:       models.NoVersion,
		SchemaVersion: models.NoSchemaVersion,
		Name:          r.Name,
		Emails:        emails,
	}
}

// tableQuery is the query string of the list endpoints.
type tableQuery struct {
	SortString   string `form:"sortString"`
	SortOrder    string `form:"sortOrder,default=asc"`
	Size         int    `form:"size,default=20"`
	StartIndex   int    `form:"startIndex,default=0"`
	SearchString string `form:"searchString"`
}

func (q tableQuery) toTable(defaultSort string) models.Table {
	sortString := q.SortString
	if sortString == "" {
		sortString = defaultSort
	}
	return models.Table{
		SortOrder:    q.SortOrder,
		SortString:   sortString,
		Size:         q.Size,
		StartIndex:   q.StartIndex,
		SearchString: q.SearchString,
	}
}

func (h *Handler) fail(c *gin.Context, op string, err error) {
	log := h.logger.WithField(requestIDKey, c.GetString(requestIDKey))
	if models.StatusOf(err) >= http.StatusInternalServerError {
		log.Errorf("%s failed: %v", op, err)
	} else {
		log.Warnf("%s failed: %v", op, err)
	}
	writeError(c, err)
}

type streamWriter interface {
	WriteStream(out *models.StreamOutput) error
}

// respondSearch writes a table search page as JSON, or in the binary stream
// encoding when the caller accepts only that.
func (h *Handler) respondSearch(c *gin.Context, op string, status int, resp streamWriter) {
	if c.GetHeader("Accept") != models.StreamContentType {
		c.JSON(status, resp)
		return
	}
	var buf bytes.Buffer
	if err := resp.WriteStream(models.NewStreamOutput(&buf)); err != nil {
		h.fail(c, op, err)
		return
	}
	c.Data(status, models.StreamContentType, buf.Bytes())
}

func (h *Handler) GetEmailAccount(c *gin.Context) {
	id := c.Param("id")
	resp, err := h.accounts.Get(c.Request.Context(), id)
	if err != nil {
		h.fail(c, "Get email account "+id, err)
		return
	}
	if c.Request.Method == http.MethodHead {
		c.Status(http.StatusOK)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) CreateEmailAccount(c *gin.Context) {
	var req emailAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, "Create email account", models.Invalid("Invalid request body: %s", err.Error()))
		return
	}
	a, err := req.toModel()
	if err != nil {
		h.fail(c, "Create email account", err)
		return
	}
	resp, err := h.accounts.Create(c.Request.Context(), a)
	if err != nil {
		h.fail(c, "Create email account", err)
		return
	}
	h.logger.Infof("Created email account: %s", resp.ID)
	c.JSON(http.StatusCreated, resp)
}

func (h *Handler) UpdateEmailAccount(c *gin.Context) {
	id := c.Param("id")
	var req emailAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, "Update email account "+id, models.Invalid("Invalid request body: %s", err.Error()))
		return
	}
	a, err := req.toModel()
	if err != nil {
		h.fail(c, "Update email account "+id, err)
		return
	}
	resp, err := h.accounts.Update(c.Request.Context(), id, a)
	if err != nil {
		h.fail(c, "Update email account "+id, err)
		return
	}
	h.logger.Infof("Updated email account: %s", id)
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) DeleteEmailAccount(c *gin.Context) {
	id := c.Param("id")
	resp, err := h.accounts.Delete(c.Request.Context(), id)
	if err != nil {
		h.fail(c, "Delete email account "+id, err)
		return
	}
	h.logger.Infof("Deleted email account: %s", id)
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) SearchEmailAccounts(c *gin.Context) {
	var q tableQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		h.fail(c, "Search email accounts", models.Invalid("Invalid query parameters: %s", err.Error()))
		return
	}
	resp, err := h.accounts.Search(c.Request.Context(), q.toTable("email_account.name.keyword"))
	if err != nil {
		h.fail(c, "Search email accounts", err)
		return
	}
	h.respondSearch(c, "Search email accounts", resp.Status, resp)
}

func (h *Handler) SearchEmailAccountsQuery(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		h.fail(c, "Search email accounts", models.Invalid("Invalid request body"))
		return
	}
	resp, err := h.accounts.SearchQuery(c.Request.Context(), body)
	if err != nil {
		h.fail(c, "Search email accounts", err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) GetEmailGroup(c *gin.Context) {
	id := c.Param("id")
	resp, err := h.groups.Get(c.Request.Context(), id)
	if err != nil {
		h.fail(c, "Get email group "+id, err)
		return
	}
	if c.Request.Method == http.MethodHead {
		c.Status(http.StatusOK)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) CreateEmailGroup(c *gin.Context) {
	var req emailGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, "Create email group", models.Invalid("Invalid request body: %s", err.Error()))
		return
	}
	resp, err := h.groups.Create(c.Request.Context(), req.toModel())
	if err != nil {
		h.fail(c, "Create email group", err)
		return
	}
	h.logger.Infof("Created email group: %s", resp.ID)
	c.JSON(http.StatusCreated, resp)
}

func (h *Handler) UpdateEmailGroup(c *gin.Context) {
	id := c.Param("id")
	var req emailGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, "Update email group "+id, models.Invalid("Invalid request body: %s", err.Error()))
		return
	}
	resp, err := h.groups.Update(c.Request.Context(), id, req.toModel())
	if err != nil {
		h.fail(c, "Update email group "+id, err)
		return
	}
	h.logger.Infof("Updated email group: %s", id)
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) DeleteEmailGroup(c *gin.Context) {
	id := c.Param("id")
	resp, err := h.groups.Delete(c.Request.Context(), id)
	if err != nil {
		h.fail(c, "Delete email group "+id, err)
		return
	}
	h.logger.Infof("Deleted email group: %s", id)
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) SearchEmailGroups(c *gin.Context) {
	var q tableQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		h.fail(c, "Search email groups", models.Invalid("Invalid query parameters: %s", err.Error()))
		return
	}
	resp, err := h.groups.Search(c.Request.Context(), q.toTable("email_group.name.keyword"))
	if err != nil {
		h.fail(c, "Search email groups", err)
		return
	}
	h.respondSearch(c, "Search email groups", resp.Status, resp)
}

func (h *Handler) SearchEmailGroupsQuery(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		h.fail(c, "Search email groups", models.Invalid("Invalid request body"))
		return
	}
	resp, err := h.groups.SearchQuery(c.Request.Context(), body)
	if err != nil {
		h.fail(c, "Search email groups", err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) ClusterAPI(c *gin.Context) {
	path := c.Query("path")
	if path == "" {
		h.fail(c, "Cluster API", models.Invalid("path is required"))
		return
	}
	resp, err := h.cluster.Execute(c.Request.Context(), path)
	if err != nil {
		h.fail(c, "Cluster API "+path, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
