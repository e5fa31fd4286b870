package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/paiban/yaofang/pkg/model"
)

// EmployeeRepository 员工仓储
type EmployeeRepository struct {
	db DB
}

// NewEmployeeRepository 创建员工仓储
func NewEmployeeRepository(db DB) *EmployeeRepository {
	return &EmployeeRepository{db: db}
}

// Create 创建员工
func (r *EmployeeRepository) Create(ctx context.Context, emp *model.Employee) error {
	if emp.ID == uuid.Nil {
		emp.ID = uuid.New()
	}
	now := time.Now()
	emp.CreatedAt = now
	emp.UpdatedAt = now

	query := `
		INSERT INTO employees (
			id, name, code, category, contract_hours, status, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.db.ExecContext(ctx, query,
		emp.ID, emp.Name, emp.Code, emp.Category, emp.ContractHours,
		emp.Status, emp.CreatedAt, emp.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("创建员工失败: %w", err)
	}

	return nil
}

// GetByID 根据ID获取员工
func (r *EmployeeRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Employee, error) {
	query := `
		SELECT id, name, code, category, contract_hours, status, created_at, updated_at
		FROM employees
		WHERE id = $1 AND deleted_at IS NULL
	`

	emp := &model.Employee{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&emp.ID, &emp.Name, &emp.Code, &emp.Category, &emp.ContractHours,
		&emp.Status, &emp.CreatedAt, &emp.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("查询员工失败: %w", err)
	}

	return emp, nil
}

// Update 更新员工
func (r *EmployeeRepository) Update(ctx context.Context, emp *model.Employee) error {
	emp.UpdatedAt = time.Now()

	query := `
		UPDATE employees SET
			name = $2, code = $3, category = $4, contract_hours = $5, status = $6, updated_at = $7
		WHERE id = $1 AND deleted_at IS NULL
	`

	result, err := r.db.ExecContext(ctx, query,
		emp.ID, emp.Name, emp.Code, emp.Category, emp.ContractHours, emp.Status, emp.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("更新员工失败: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("员工不存在")
	}

	return nil
}

// Delete 软删除员工
func (r *EmployeeRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE employees SET deleted_at = $2 WHERE id = $1 AND deleted_at IS NULL`

	result, err := r.db.ExecContext(ctx, query, id, time.Now())
	if err != nil {
		return fmt.Errorf("删除员工失败: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("员工不存在")
	}

	return nil
}

// List 查询员工列表
func (r *EmployeeRepository) List(ctx context.Context, filter ListFilter) ([]*model.Employee, int, error) {
	var conditions []string
	var args []interface{}
	argIndex := 1

	conditions = append(conditions, "deleted_at IS NULL")

	if filter.Status != "" {
		conditions = append(conditions, fmt.Sprintf("status = $%d", argIndex))
		args = append(args, filter.Status)
		argIndex++
	}

	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(name ILIKE $%d OR code ILIKE $%d)", argIndex, argIndex))
		args = append(args, "%"+filter.Search+"%")
		argIndex++
	}

	whereClause := strings.Join(conditions, " AND ")

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM employees WHERE %s", whereClause)
	var total int
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("查询总数失败: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT id, name, code, category, contract_hours, status, created_at, updated_at
		FROM employees
		WHERE %s
		ORDER BY name ASC
		LIMIT $%d OFFSET $%d
	`, whereClause, argIndex, argIndex+1)

	args = append(args, filter.Limit, filter.Offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("查询列表失败: %w", err)
	}
	defer rows.Close()

	var employees []*model.Employee
	for rows.Next() {
		emp := &model.Employee{}
		if err := rows.Scan(
			&emp.ID, &emp.Name, &emp.Code, &emp.Category, &emp.ContractHours,
			&emp.Status, &emp.CreatedAt, &emp.UpdatedAt,
		); err != nil {
			return nil, 0, fmt.Errorf("扫描行失败: %w", err)
		}
		employees = append(employees, emp)
	}

	return employees, total, nil
}

// ListActive 获取所有在职员工
// 顺序固定为姓名升序，花名册顺序影响贪心分配的平分取舍
func (r *EmployeeRepository) ListActive(ctx context.Context) ([]*model.Employee, error) {
	filter := DefaultListFilter().WithStatus("active").WithLimit(500)
	employees, _, err := r.List(ctx, filter)
	return employees, err
}

// ConstraintRepository 员工约束档案仓储
type ConstraintRepository struct {
	db DB
}

// NewConstraintRepository 创建约束档案仓储
func NewConstraintRepository(db DB) *ConstraintRepository {
	return &ConstraintRepository{db: db}
}

// Upsert 写入或更新员工的约束档案
func (r *ConstraintRepository) Upsert(ctx context.Context, c *model.EmployeeConstraint) error {
	preferred := make([]string, len(c.PreferredShifts))
	for i, id := range c.PreferredShifts {
		preferred[i] = id.String()
	}
	restDays := make([]int64, len(c.RestDays))
	for i, d := range c.RestDays {
		restDays[i] = int64(d)
	}

	query := `
		INSERT INTO employee_constraints (
			employee_id, min_hours_per_week, max_hours_per_week,
			unavailable_dates, preferred_shifts, rest_days, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (employee_id) DO UPDATE SET
			min_hours_per_week = EXCLUDED.min_hours_per_week,
			max_hours_per_week = EXCLUDED.max_hours_per_week,
			unavailable_dates = EXCLUDED.unavailable_dates,
			preferred_shifts = EXCLUDED.preferred_shifts,
			rest_days = EXCLUDED.rest_days,
			updated_at = EXCLUDED.updated_at
	`

	_, err := r.db.ExecContext(ctx, query,
		c.EmployeeID, c.MinHoursPerWeek, c.MaxHoursPerWeek,
		pq.Array(c.UnavailableDates), pq.Array(preferred), pq.Array(restDays), time.Now(),
	)
	if err != nil {
		return fmt.Errorf("写入约束档案失败: %w", err)
	}

	return nil
}

// ListAll 获取所有员工的约束档案
func (r *ConstraintRepository) ListAll(ctx context.Context) (map[uuid.UUID]*model.EmployeeConstraint, error) {
	query := `
		SELECT employee_id, min_hours_per_week, max_hours_per_week,
			unavailable_dates, preferred_shifts, rest_days
		FROM employee_constraints
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("查询约束档案失败: %w", err)
	}
	defer rows.Close()

	constraints := make(map[uuid.UUID]*model.EmployeeConstraint)
	for rows.Next() {
		c := &model.EmployeeConstraint{}
		var preferred []string
		var restDays []int64
		if err := rows.Scan(
			&c.EmployeeID, &c.MinHoursPerWeek, &c.MaxHoursPerWeek,
			pq.Array(&c.UnavailableDates), pq.Array(&preferred), pq.Array(&restDays),
		); err != nil {
			return nil, fmt.Errorf("扫描行失败: %w", err)
		}
		for _, s := range preferred {
			if id, err := uuid.Parse(s); err == nil {
				c.PreferredShifts = append(c.PreferredShifts, id)
			}
		}
		for _, d := range restDays {
			c.RestDays = append(c.RestDays, int(d))
		}
		constraints[c.EmployeeID] = c
	}

	return constraints, nil
}
