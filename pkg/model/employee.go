// Package model 定义药房排班引擎的核心数据模型
package model

import (
	"github.com/google/uuid"
)

// Category 员工类别
// 法国药房的固定岗位分类，多个类别可映射到同一角色
type Category string

const (
	CategoryTitulaire     Category = "pharmacien_titulaire" // 执业药师（店长级）
	CategoryAdjoint       Category = "pharmacien_adjoint"   // 副药师
	CategoryPreparateur   Category = "preparateur"          // 配药员
	CategoryConditionneur Category = "conditionneur"        // 理货员
	CategoryApprenti      Category = "apprenti"             // 学徒
	CategoryEtudiant      Category = "etudiant"             // 药学学生
)

// 角色名称（班次模板中按角色声明人数上下限）
const (
	RolePharmacien    = "Pharmacien"
	RolePreparateur   = "Preparateur"
	RoleConditionneur = "Conditionneur"
	RoleApprenti      = "Apprenti"
	RoleEtudiant      = "Etudiant"
)

// categoryRoles 类别到角色的固定映射表
var categoryRoles = map[Category]string{
	CategoryTitulaire:     RolePharmacien,
	CategoryAdjoint:       RolePharmacien,
	CategoryPreparateur:   RolePreparateur,
	CategoryConditionneur: RoleConditionneur,
	CategoryApprenti:      RoleApprenti,
	CategoryEtudiant:      RoleEtudiant,
}

// Role 返回类别对应的角色名称，未知类别返回空字符串
func (c Category) Role() string {
	return categoryRoles[c]
}

// IsPharmacien 检查类别是否属于药师
func (c Category) IsPharmacien() bool {
	return categoryRoles[c] == RolePharmacien
}

// Employee 员工
type Employee struct {
	BaseModel
	Name          string   `json:"name" db:"name"`
	Code          string   `json:"code" db:"code"`
	Category      Category `json:"category" db:"category"`
	ContractHours float64  `json:"contract_hours" db:"contract_hours"` // 合同周工时
	Status        string   `json:"status" db:"status"`                 // active/inactive
}

// IsActive 检查员工是否在职，只有在职员工参与排班
func (e *Employee) IsActive() bool {
	return e.Status == "active"
}

// EmployeeConstraint 员工约束档案
// 档案缺失表示中性默认：不检查休息日、不可用日期和自定义周工时上限
type EmployeeConstraint struct {
	EmployeeID       uuid.UUID   `json:"employee_id" db:"employee_id"`
	MinHoursPerWeek  float64     `json:"min_hours_per_week" db:"min_hours_per_week"`
	MaxHoursPerWeek  float64     `json:"max_hours_per_week" db:"max_hours_per_week"`
	UnavailableDates []string    `json:"unavailable_dates,omitempty" db:"unavailable_dates"` // YYYY-MM-DD
	PreferredShifts  []uuid.UUID `json:"preferred_shifts,omitempty" db:"preferred_shifts"`   // 偏好的班次模板
	RestDays         []int       `json:"rest_days,omitempty" db:"rest_days"`                 // 周一=0..周日=6
}

// HasRestDay 检查某星期索引是否为固定休息日
func (ec *EmployeeConstraint) HasRestDay(weekdayIdx int) bool {
	for _, d := range ec.RestDays {
		if d == weekdayIdx {
			return true
		}
	}
	return false
}

// IsUnavailable 检查某日期是否不可用
func (ec *EmployeeConstraint) IsUnavailable(date string) bool {
	for _, d := range ec.UnavailableDates {
		if d == date {
			return true
		}
	}
	return false
}

// Prefers 检查是否偏好某班次模板
func (ec *EmployeeConstraint) Prefers(templateID uuid.UUID) bool {
	for _, id := range ec.PreferredShifts {
		if id == templateID {
			return true
		}
	}
	return false
}
