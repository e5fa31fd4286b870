// Package handler 提供HTTP请求处理器
package handler

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"

	"github.com/paiban/yaofang/pkg/errors"
	"github.com/paiban/yaofang/pkg/model"
)

// EmployeeInput 员工输入
type EmployeeInput struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	Code          string  `json:"code,omitempty"`
	Category      string  `json:"category"`
	ContractHours float64 `json:"contract_hours,omitempty"`
	Status        string  `json:"status,omitempty"`
}

// RoleInput 角色人数要求输入
type RoleInput struct {
	Role string `json:"role"`
	Min  int    `json:"min"`
	Max  int    `json:"max"`
}

// TemplateInput 班次模板输入
type TemplateInput struct {
	ID        string      `json:"id"`
	Name      string      `json:"name"`
	StartTime string      `json:"start_time"` // HH:MM
	EndTime   string      `json:"end_time"`   // HH:MM
	Roles     []RoleInput `json:"roles"`
}

// ConstraintInput 员工约束档案输入
type ConstraintInput struct {
	MinHoursPerWeek  float64  `json:"min_hours_per_week"`
	MaxHoursPerWeek  float64  `json:"max_hours_per_week"`
	UnavailableDates []string `json:"unavailable_dates,omitempty"`
	PreferredShifts  []string `json:"preferred_shifts,omitempty"`
	RestDays         []int    `json:"rest_days,omitempty"`
}

// buildEmployee 将输入转换为员工模型
func buildEmployee(in EmployeeInput) (*model.Employee, *errors.AppError) {
	id, err := uuid.Parse(in.ID)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInvalidInput, "无效的员工ID格式: "+in.ID)
	}
	emp := &model.Employee{
		BaseModel:     model.BaseModel{ID: id},
		Name:          in.Name,
		Code:          in.Code,
		Category:      model.Category(in.Category),
		ContractHours: in.ContractHours,
		Status:        in.Status,
	}
	if emp.Status == "" {
		emp.Status = "active"
	}
	return emp, nil
}

// buildTemplate 将输入转换为班次模板
func buildTemplate(in TemplateInput) (*model.ShiftTemplate, *errors.AppError) {
	id, err := uuid.Parse(in.ID)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInvalidInput, "无效的班次模板ID格式: "+in.ID)
	}
	tmpl := &model.ShiftTemplate{
		BaseModel: model.BaseModel{ID: id},
		Name:      in.Name,
		StartTime: in.StartTime,
		EndTime:   in.EndTime,
	}
	for _, r := range in.Roles {
		tmpl.Roles = append(tmpl.Roles, model.RoleRequirement{Role: r.Role, Min: r.Min, Max: r.Max})
	}
	return tmpl, nil
}

// buildConstraints 将输入转换为约束档案映射
func buildConstraints(in map[string]ConstraintInput) (map[uuid.UUID]*model.EmployeeConstraint, *errors.AppError) {
	if len(in) == 0 {
		return nil, nil
	}
	out := make(map[uuid.UUID]*model.EmployeeConstraint, len(in))
	for key, c := range in {
		empID, err := uuid.Parse(key)
		if err != nil {
			return nil, errors.Wrap(err, errors.CodeInvalidInput, "无效的员工ID格式: "+key)
		}
		constraint := &model.EmployeeConstraint{
			EmployeeID:       empID,
			MinHoursPerWeek:  c.MinHoursPerWeek,
			MaxHoursPerWeek:  c.MaxHoursPerWeek,
			UnavailableDates: c.UnavailableDates,
			RestDays:         c.RestDays,
		}
		for _, s := range c.PreferredShifts {
			id, err := uuid.Parse(s)
			if err != nil {
				return nil, errors.Wrap(err, errors.CodeInvalidInput, "无效的班次模板ID格式: "+s)
			}
			constraint.PreferredShifts = append(constraint.PreferredShifts, id)
		}
		out[empID] = constraint
	}
	return out, nil
}

// respondJSON 返回JSON响应
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// respondError 返回错误响应
func respondError(w http.ResponseWriter, err *errors.AppError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(err.HTTPStatus)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"error":   true,
		"code":    err.Code,
		"message": err.Message,
		"details": err.Details,
	})
}
