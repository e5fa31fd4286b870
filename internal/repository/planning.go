package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/paiban/yaofang/pkg/model"
)

// TxRunner 提供事务执行能力
type TxRunner interface {
	Transaction(ctx context.Context, fn func(tx *sql.Tx) error) error
}

// PlanningRepository 排班结果仓储
type PlanningRepository struct {
	db DB
}

// NewPlanningRepository 创建排班结果仓储
func NewPlanningRepository(db DB) *PlanningRepository {
	return &PlanningRepository{db: db}
}

// SaveBatch 批量写入生成的班次
// 引擎一次生成整个周期，逐行插入太慢，按多值 INSERT 整批写入
func (r *PlanningRepository) SaveBatch(ctx context.Context, shifts []*model.GeneratedShift) error {
	if len(shifts) == 0 {
		return nil
	}

	var values []string
	var args []interface{}
	argIndex := 1

	now := time.Now()
	for _, s := range shifts {
		if s.ID == uuid.Nil {
			s.ID = uuid.New()
		}

		values = append(values, fmt.Sprintf(
			"($%d, $%d, $%d, $%d, $%d, $%d, $%d, $%d, $%d)",
			argIndex, argIndex+1, argIndex+2, argIndex+3, argIndex+4,
			argIndex+5, argIndex+6, argIndex+7, argIndex+8,
		))
		args = append(args,
			s.ID, s.Date, s.TemplateID, s.EmployeeID, s.Role,
			s.StartTime, s.EndTime, s.Hours, now,
		)
		argIndex += 9
	}

	query := fmt.Sprintf(`
		INSERT INTO generated_shifts (
			id, date, template_id, employee_id, role,
			start_time, end_time, hours, created_at
		) VALUES %s
	`, strings.Join(values, ", "))

	_, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("批量写入班次失败: %w", err)
	}

	return nil
}

// ListByPeriod 获取日期区间内的班次
func (r *PlanningRepository) ListByPeriod(ctx context.Context, startDate, endDate string) ([]*model.GeneratedShift, error) {
	query := `
		SELECT id, date, template_id, employee_id, role, start_time, end_time, hours
		FROM generated_shifts
		WHERE date >= $1 AND date <= $2
		ORDER BY date, start_time, role
	`

	rows, err := r.db.QueryContext(ctx, query, startDate, endDate)
	if err != nil {
		return nil, fmt.Errorf("查询班次失败: %w", err)
	}
	defer rows.Close()

	var shifts []*model.GeneratedShift
	for rows.Next() {
		s := &model.GeneratedShift{}
		if err := rows.Scan(
			&s.ID, &s.Date, &s.TemplateID, &s.EmployeeID, &s.Role,
			&s.StartTime, &s.EndTime, &s.Hours,
		); err != nil {
			return nil, fmt.Errorf("扫描行失败: %w", err)
		}
		shifts = append(shifts, s)
	}

	return shifts, nil
}

// GetByID 根据ID获取班次
func (r *PlanningRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.GeneratedShift, error) {
	query := `
		SELECT id, date, template_id, employee_id, role, start_time, end_time, hours
		FROM generated_shifts
		WHERE id = $1
	`

	s := &model.GeneratedShift{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&s.ID, &s.Date, &s.TemplateID, &s.EmployeeID, &s.Role,
		&s.StartTime, &s.EndTime, &s.Hours,
	)
	if err != nil {
		return nil, fmt.Errorf("查询班次失败: %w", err)
	}

	return s, nil
}

// DeleteByPeriod 删除日期区间内的班次
// 重新生成前先清空旧排班
func (r *PlanningRepository) DeleteByPeriod(ctx context.Context, startDate, endDate string) error {
	query := `DELETE FROM generated_shifts WHERE date >= $1 AND date <= $2`

	_, err := r.db.ExecContext(ctx, query, startDate, endDate)
	if err != nil {
		return fmt.Errorf("删除班次失败: %w", err)
	}

	return nil
}

// ReplacePeriod 在同一事务内删除旧排班并写入新结果
// 写入失败时整体回滚，避免周期被清空后留下真空
func (r *PlanningRepository) ReplacePeriod(ctx context.Context, runner TxRunner, startDate, endDate string, shifts []*model.GeneratedShift) error {
	return runner.Transaction(ctx, func(tx *sql.Tx) error {
		txRepo := NewPlanningRepository(tx)
		if err := txRepo.DeleteByPeriod(ctx, startDate, endDate); err != nil {
			return err
		}
		return txRepo.SaveBatch(ctx, shifts)
	})
}

// ReplaceEmployee 将班次改派给另一名员工
func (r *PlanningRepository) ReplaceEmployee(ctx context.Context, shiftID, newEmployeeID uuid.UUID) error {
	query := `UPDATE generated_shifts SET employee_id = $2 WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, shiftID, newEmployeeID)
	if err != nil {
		return fmt.Errorf("改派班次失败: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("班次不存在")
	}

	return nil
}
