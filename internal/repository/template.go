package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/paiban/yaofang/pkg/model"
)

// ShiftTemplateRepository 班次模板仓储
// 角色要求以 JSONB 数组存储，保留模板内角色的声明顺序
type ShiftTemplateRepository struct {
	db DB
}

// NewShiftTemplateRepository 创建班次模板仓储
func NewShiftTemplateRepository(db DB) *ShiftTemplateRepository {
	return &ShiftTemplateRepository{db: db}
}

// Create 创建班次模板
func (r *ShiftTemplateRepository) Create(ctx context.Context, tmpl *model.ShiftTemplate) error {
	if tmpl.ID == uuid.Nil {
		tmpl.ID = uuid.New()
	}
	now := time.Now()
	tmpl.CreatedAt = now
	tmpl.UpdatedAt = now

	rolesJSON, err := json.Marshal(tmpl.Roles)
	if err != nil {
		return fmt.Errorf("序列化角色要求失败: %w", err)
	}

	query := `
		INSERT INTO shift_templates (
			id, name, start_time, end_time, roles, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err = r.db.ExecContext(ctx, query,
		tmpl.ID, tmpl.Name, tmpl.StartTime, tmpl.EndTime, rolesJSON,
		tmpl.CreatedAt, tmpl.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("创建班次模板失败: %w", err)
	}

	return nil
}

// GetByID 根据ID获取班次模板
func (r *ShiftTemplateRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.ShiftTemplate, error) {
	query := `
		SELECT id, name, start_time, end_time, roles, created_at, updated_at
		FROM shift_templates
		WHERE id = $1 AND deleted_at IS NULL
	`

	tmpl := &model.ShiftTemplate{}
	var rolesJSON []byte
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&tmpl.ID, &tmpl.Name, &tmpl.StartTime, &tmpl.EndTime, &rolesJSON,
		&tmpl.CreatedAt, &tmpl.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("查询班次模板失败: %w", err)
	}

	if err := json.Unmarshal(rolesJSON, &tmpl.Roles); err != nil {
		return nil, fmt.Errorf("解析角色要求失败: %w", err)
	}

	return tmpl, nil
}

// Update 更新班次模板
func (r *ShiftTemplateRepository) Update(ctx context.Context, tmpl *model.ShiftTemplate) error {
	tmpl.UpdatedAt = time.Now()

	rolesJSON, err := json.Marshal(tmpl.Roles)
	if err != nil {
		return fmt.Errorf("序列化角色要求失败: %w", err)
	}

	query := `
		UPDATE shift_templates SET
			name = $2, start_time = $3, end_time = $4, roles = $5, updated_at = $6
		WHERE id = $1 AND deleted_at IS NULL
	`

	result, err := r.db.ExecContext(ctx, query,
		tmpl.ID, tmpl.Name, tmpl.StartTime, tmpl.EndTime, rolesJSON, tmpl.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("更新班次模板失败: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("班次模板不存在")
	}

	return nil
}

// Delete 软删除班次模板
func (r *ShiftTemplateRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE shift_templates SET deleted_at = $2 WHERE id = $1 AND deleted_at IS NULL`

	result, err := r.db.ExecContext(ctx, query, id, time.Now())
	if err != nil {
		return fmt.Errorf("删除班次模板失败: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("班次模板不存在")
	}

	return nil
}

// ListAll 获取所有班次模板
// 按创建时间升序返回，模板顺序影响贪心分配的处理顺序
func (r *ShiftTemplateRepository) ListAll(ctx context.Context) ([]*model.ShiftTemplate, error) {
	query := `
		SELECT id, name, start_time, end_time, roles, created_at, updated_at
		FROM shift_templates
		WHERE deleted_at IS NULL
		ORDER BY created_at ASC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("查询班次模板失败: %w", err)
	}
	defer rows.Close()

	var templates []*model.ShiftTemplate
	for rows.Next() {
		tmpl := &model.ShiftTemplate{}
		var rolesJSON []byte
		if err := rows.Scan(
			&tmpl.ID, &tmpl.Name, &tmpl.StartTime, &tmpl.EndTime, &rolesJSON,
			&tmpl.CreatedAt, &tmpl.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("扫描行失败: %w", err)
		}
		if err := json.Unmarshal(rolesJSON, &tmpl.Roles); err != nil {
			return nil, fmt.Errorf("解析角色要求失败: %w", err)
		}
		templates = append(templates, tmpl)
	}

	return templates, nil
}
