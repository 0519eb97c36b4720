package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"alerting-destinations/internal/models"
	"alerting-destinations/internal/store"
)

const uniqueViolation = "23505"

// sortColumns maps store sort fields to SQL expressions.
var sortColumns = map[string]string{
	store.SortName:        "name",
	store.SortHost:        "config #>> '{smtp_account,host}'",
	store.SortFromAddress: "config #>> '{smtp_account,from_address}'",
	store.SortRecipient:   "config #>> '{email_group,recipient_list,0,recipient}'",
}

var _ store.ConfigStore = (*DB)(nil)

// GetConfigs returns the page of configs selected by req.
func (d *DB) GetConfigs(ctx context.Context, req store.GetConfigRequest) (store.GetConfigResponse, error) {
	where, args := whereClause(req)

	var total int
	countQuery := "SELECT COUNT(*) FROM notification_configs" + where
	if err := d.conn.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return store.GetConfigResponse{}, fmt.Errorf("failed to count notification configs: %w", err)
	}

	query := "SELECT config_id, config, created_at, updated_at FROM notification_configs" + where + orderClause(req)
	pageArgs := append(args, req.MaxItems, req.FromIndex)
	query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)

	rows, err := d.conn.QueryContext(ctx, query, pageArgs...)
	if err != nil {
		return store.GetConfigResponse{}, fmt.Errorf("failed to get notification configs: %w", err)
	}
	defer rows.Close()

	configs := []models.NotificationConfigInfo{}
	for rows.Next() {
		var info models.NotificationConfigInfo
		var raw []byte
		if err := rows.Scan(&info.ConfigID, &raw, &info.CreatedTime, &info.LastUpdatedTime); err != nil {
			return store.GetConfigResponse{}, fmt.Errorf("failed to scan notification config: %w", err)
		}
		if err := json.Unmarshal(raw, &info.Config); err != nil {
			return store.GetConfigResponse{}, fmt.Errorf("failed to decode notification config %s: %w", info.ConfigID, err)
		}
		configs = append(configs, info)
	}
	if err := rows.Err(); err != nil {
		return store.GetConfigResponse{}, fmt.Errorf("failed to read notification configs: %w", err)
	}
	return store.GetConfigResponse{TotalHits: total, Configs: configs}, nil
}

// CreateConfig inserts cfg. A nil id gets a generated one. An explicit id is
// upserted: an existing row under that id is replaced and keeps its created_at.
func (d *DB) CreateConfig(ctx context.Context, cfg models.NotificationConfig, id *string) (string, error) {
	configID := uuid.NewString()
	query := `
        INSERT INTO notification_configs (config_id, name, config_type, config, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6)`
	if id != nil {
		configID = *id
		query += `
        ON CONFLICT (config_id) DO UPDATE
        SET name = EXCLUDED.name, config_type = EXCLUDED.config_type,
            config = EXCLUDED.config, updated_at = EXCLUDED.updated_at`
	}
	raw, err := json.Marshal(cfg)
	if err != nil {
		return "", fmt.Errorf("failed to encode notification config: %w", err)
	}

	now := time.Now().UTC()
	_, err = d.conn.ExecContext(ctx, query, configID, cfg.Name, string(cfg.ConfigType), raw, now, now)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return "", &models.StatusError{Status: http.StatusConflict, Message: fmt.Sprintf("config %s already exists", configID)}
		}
		return "", fmt.Errorf("failed to create notification config: %w", err)
	}
	return configID, nil
}

// UpdateConfig replaces the config stored under id.
func (d *DB) UpdateConfig(ctx context.Context, id string, cfg models.NotificationConfig) (string, error) {
	raw, err := json.Marshal(cfg)
	if err != nil {
		return "", fmt.Errorf("failed to encode notification config: %w", err)
	}
	query := `
        UPDATE notification_configs
        SET name = $1, config_type = $2, config = $3, updated_at = $4
        WHERE config_id = $5`
	result, err := d.conn.ExecContext(ctx, query, cfg.Name, string(cfg.ConfigType), raw, time.Now().UTC(), id)
	if err != nil {
		return "", fmt.Errorf("failed to update notification config: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return "", fmt.Errorf("failed to update notification config: %w", err)
	}
	if rowsAffected == 0 {
		return "", models.NotFound("config %s not found", id)
	}
	return id, nil
}

// DeleteConfigs removes ids and reports 200 for each one that existed.
func (d *DB) DeleteConfigs(ctx context.Context, ids []string) (map[string]int, error) {
	statuses := map[string]int{}
	if len(ids) == 0 {
		return statuses, nil
	}
	placeholders, args := inList(ids, 0)
	rows, err := d.conn.QueryContext(ctx, "DELETE FROM notification_configs WHERE config_id IN ("+placeholders+") RETURNING config_id", args...)
	if err != nil {
		return nil, fmt.Errorf("failed to delete notification configs: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan deleted config id: %w", err)
		}
		statuses[id] = http.StatusOK
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to delete notification configs: %w", err)
	}
	return statuses, nil
}

// GetConfig returns a single config by id. Used by the projection workers.
func (d *DB) GetConfig(ctx context.Context, id string) (models.NotificationConfigInfo, error) {
	var info models.NotificationConfigInfo
	var raw []byte
	query := "SELECT config_id, config, created_at, updated_at FROM notification_configs WHERE config_id = $1"
	err := d.conn.QueryRowContext(ctx, query, id).Scan(&info.ConfigID, &raw, &info.CreatedTime, &info.LastUpdatedTime)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.NotificationConfigInfo{}, models.NotFound("config %s not found", id)
		}
		return models.NotificationConfigInfo{}, fmt.Errorf("failed to get notification config %s: %w", id, err)
	}
	if err := json.Unmarshal(raw, &info.Config); err != nil {
		return models.NotificationConfigInfo{}, fmt.Errorf("failed to decode notification config %s: %w", id, err)
	}
	return info, nil
}

func whereClause(req store.GetConfigRequest) (string, []interface{}) {
	var conds []string
	var args []interface{}

	if len(req.ConfigIDs) > 0 {
		placeholders, idArgs := inList(req.ConfigIDs, len(args))
		conds = append(conds, "config_id IN ("+placeholders+")")
		args = append(args, idArgs...)
	}
	if t := req.FilterParams[store.FilterConfigType]; t != "" {
		args = append(args, t)
		conds = append(conds, fmt.Sprintf("config_type = $%d", len(args)))
	}
	if q := strings.TrimSpace(req.FilterParams[store.FilterQuery]); q != "" {
		args = append(args, "%"+q+"%")
		conds = append(conds, fmt.Sprintf("(name ILIKE $%d OR config::text ILIKE $%d)", len(args), len(args)))
	}

	if len(conds) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func orderClause(req store.GetConfigRequest) string {
	col, ok := sortColumns[req.SortField]
	if !ok {
		return " ORDER BY updated_at DESC, config_id"
	}
	dir := "ASC"
	if req.SortOrder == models.SortDesc {
		dir = "DESC"
	}
	return fmt.Sprintf(" ORDER BY %s %s, config_id", col, dir)
}

func inList(values []string, offset int) (string, []interface{}) {
	placeholders := make([]string, len(values))
	args := make([]interface{}, len(values))
	for i, v := range values {
		placeholders[i] = fmt.Sprintf("$%d", offset+i+1)
		args[i] = v
	}
	return strings.Join(placeholders, ", "), args
}
