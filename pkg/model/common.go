// Package model 定义药房排班引擎的核心数据模型
package model

import (
	"time"

	"github.com/google/uuid"
)

// BaseModel 基础模型（包含通用字段）
type BaseModel struct {
	ID        uuid.UUID  `json:"id" db:"id"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt time.Time  `json:"updated_at" db:"updated_at"`
	DeletedAt *time.Time `json:"-" db:"deleted_at"`
}

// NewBaseModel 创建新的基础模型
func NewBaseModel() BaseModel {
	now := time.Now()
	return BaseModel{
		ID:        uuid.New(),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Severity 冲突严重级别
type Severity string

const (
	SeverityError   Severity = "error"   // 违反法规，排班不可用
	SeverityWarning Severity = "warning" // 不理想但可接受
	SeverityInfo    Severity = "info"    // 提示信息
)

// Conflict 冲突记录
// 所有业务规则违反都以数据形式返回，引擎不抛出异常
type Conflict struct {
	Type         Severity `json:"type"`
	Message      string   `json:"message"`
	EmployeeName string   `json:"employee_name,omitempty"`
	Date         string   `json:"date,omitempty"`
	Solution     string   `json:"solution,omitempty"`
}

// GenerationStats 排班生成统计
type GenerationStats struct {
	TotalHours      float64 `json:"total_hours"`
	TotalShifts     int     `json:"total_shifts"`
	CoverageRate    int     `json:"coverage_rate"`    // 0-100
	LegalCompliance int     `json:"legal_compliance"` // 0-100
	BalanceScore    float64 `json:"balance_score"`    // 工时标准差，越低越均衡
}

// Result 排班生成结果
// Success 为真当且仅当不存在 error 级别冲突
type Result struct {
	Success   bool              `json:"success"`
	Shifts    []*GeneratedShift `json:"shifts"`
	Stats     *GenerationStats  `json:"stats"`
	Conflicts []Conflict        `json:"conflicts"`
}

// HasError 检查结果中是否存在 error 级别冲突
func (r *Result) HasError() bool {
	for _, c := range r.Conflicts {
		if c.Type == SeverityError {
			return true
		}
	}
	return false
}

// PeriodConfig 排班周期配置
// ActiveDays 以周一为 0、周日为 6 索引
type PeriodConfig struct {
	StartDate  string  `json:"start_date"` // YYYY-MM-DD
	EndDate    string  `json:"end_date"`   // YYYY-MM-DD
	ActiveDays [7]bool `json:"active_days"`
}

// GenerateConfig 排班生成配置
// Templates 的顺序和每个模板内角色的顺序都会影响贪心分配结果，
// 因此必须使用有序结构，不能依赖 map 的迭代顺序
type GenerateConfig struct {
	Period      PeriodConfig                      `json:"period"`
	Templates   []*ShiftTemplate                  `json:"templates"`
	Constraints map[uuid.UUID]*EmployeeConstraint `json:"constraints,omitempty"`
}

// ConstraintFor 获取员工的约束档案（不存在返回 nil，表示中性默认）
func (c *GenerateConfig) ConstraintFor(empID uuid.UUID) *EmployeeConstraint {
	if c.Constraints == nil {
		return nil
	}
	return c.Constraints[empID]
}
