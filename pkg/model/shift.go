// Package model 定义药房排班引擎的核心数据模型
package model

import (
	"time"

	"github.com/google/uuid"
)

// RoleRequirement 班次模板中单个角色的人数要求
// Max 为 0 表示该模板不使用此角色
type RoleRequirement struct {
	Role string `json:"role"`
	Min  int    `json:"min"`
	Max  int    `json:"max"`
}

// ShiftTemplate 班次模板
// 每个开放日都按模板展开；Roles 为有序列表，贪心分配按声明顺序处理
type ShiftTemplate struct {
	BaseModel
	Name      string            `json:"name" db:"name"`
	StartTime string            `json:"start_time" db:"start_time"` // HH:MM
	EndTime   string            `json:"end_time" db:"end_time"`     // HH:MM
	Roles     []RoleRequirement `json:"roles" db:"roles"`
}

// Hours 返回班次时长（小时），跨午夜班次按次日计算
func (t *ShiftTemplate) Hours() float64 {
	start, err1 := time.Parse("15:04", t.StartTime)
	end, err2 := time.Parse("15:04", t.EndTime)
	if err1 != nil || err2 != nil {
		return 0
	}
	if !end.After(start) {
		end = end.Add(24 * time.Hour)
	}
	return end.Sub(start).Hours()
}

// GeneratedShift 生成的班次分配
type GeneratedShift struct {
	ID         uuid.UUID `json:"id" db:"id"`
	Date       string    `json:"date" db:"date"` // YYYY-MM-DD
	TemplateID uuid.UUID `json:"template_id" db:"template_id"`
	EmployeeID uuid.UUID `json:"employee_id" db:"employee_id"`
	Role       string    `json:"role" db:"role"`
	StartTime  string    `json:"start_time" db:"start_time"`
	EndTime    string    `json:"end_time" db:"end_time"`
	Hours      float64   `json:"hours" db:"hours"`
}

// IsOnDate 检查分配是否在指定日期
func (s *GeneratedShift) IsOnDate(date string) bool {
	return s.Date == date
}
