package planning

import (
	"github.com/google/uuid"

	"github.com/paiban/yaofang/pkg/model"
)

// Workload 单个员工的工时累计
type Workload struct {
	TotalHours  float64            `json:"total_hours"`
	ShiftsCount int                `json:"shifts_count"`
	WeeklyHours map[string]float64 `json:"weekly_hours"` // ISO周标识 -> 小时数
}

// NewWorkload 创建空的工时累计
func NewWorkload() *Workload {
	return &Workload{WeeklyHours: make(map[string]float64)}
}

// WeekHours 返回某 ISO 周的已排工时
func (w *Workload) WeekHours(weekKey string) float64 {
	return w.WeeklyHours[weekKey]
}

// WorkloadTracker 跟踪所有员工的工时累计
// 由单次生成独占持有，按日期、模板、角色顺序串行更新，无并发访问
type WorkloadTracker struct {
	loads map[uuid.UUID]*Workload
}

// NewWorkloadTracker 创建工时跟踪器
func NewWorkloadTracker() *WorkloadTracker {
	return &WorkloadTracker{loads: make(map[uuid.UUID]*Workload)}
}

// Get 获取员工的工时累计（不存在则返回空累计）
func (t *WorkloadTracker) Get(empID uuid.UUID) *Workload {
	if w, ok := t.loads[empID]; ok {
		return w
	}
	w := NewWorkload()
	t.loads[empID] = w
	return w
}

// Record 记录一次班次分配
func (t *WorkloadTracker) Record(empID uuid.UUID, weekKey string, hours float64) {
	w := t.Get(empID)
	w.TotalHours += hours
	w.ShiftsCount++
	w.WeeklyHours[weekKey] += hours
}

// WeekHours 返回员工某 ISO 周的已排工时
func (t *WorkloadTracker) WeekHours(empID uuid.UUID, weekKey string) float64 {
	if w, ok := t.loads[empID]; ok {
		return w.WeekHours(weekKey)
	}
	return 0
}

// TotalHours 返回员工的总工时
func (t *WorkloadTracker) TotalHours(empID uuid.UUID) float64 {
	if w, ok := t.loads[empID]; ok {
		return w.TotalHours
	}
	return 0
}

// ShiftsCount 返回员工已分配的班次数
func (t *WorkloadTracker) ShiftsCount(empID uuid.UUID) int {
	if w, ok := t.loads[empID]; ok {
		return w.ShiftsCount
	}
	return 0
}

// BuildTracker 从已生成的班次重建工时跟踪器
// 用于替班推荐和事后校验等需要在既有排班上继续计算的场景
func BuildTracker(shifts []*model.GeneratedShift) *WorkloadTracker {
	t := NewWorkloadTracker()
	for _, s := range shifts {
		t.Record(s.EmployeeID, model.ISOWeekKey(s.Date), s.Hours)
	}
	return t
}
