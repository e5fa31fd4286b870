package stats

import (
	"github.com/google/uuid"

	"github.com/paiban/yaofang/pkg/model"
)

// EmployeeWorkload 员工工时报表条目
type EmployeeWorkload struct {
	EmployeeID    uuid.UUID          `json:"employee_id"`
	Name          string             `json:"name"`
	Role          string             `json:"role"`
	ContractHours float64            `json:"contract_hours"`
	TotalHours    float64            `json:"total_hours"`
	ShiftsCount   int                `json:"shifts_count"`
	WeeklyHours   map[string]float64 `json:"weekly_hours"`
}

// WorkloadReport 排班周期的工时报表
type WorkloadReport struct {
	Employees   []*EmployeeWorkload `json:"employees"`
	TotalHours  float64             `json:"total_hours"`
	TotalShifts int                 `json:"total_shifts"`
}

// BuildWorkloadReport 从班次列表和花名册构建工时报表
// 报表按花名册顺序列出所有在职员工，包括没有任何排班的员工
func BuildWorkloadReport(shifts []*model.GeneratedShift, roster []*model.Employee) *WorkloadReport {
	report := &WorkloadReport{}

	byEmployee := make(map[uuid.UUID]*EmployeeWorkload, len(roster))
	for _, emp := range roster {
		if !emp.IsActive() {
			continue
		}
		entry := &EmployeeWorkload{
			EmployeeID:    emp.ID,
			Name:          emp.Name,
			Role:          emp.Category.Role(),
			ContractHours: emp.ContractHours,
			WeeklyHours:   make(map[string]float64),
		}
		byEmployee[emp.ID] = entry
		report.Employees = append(report.Employees, entry)
	}

	for _, s := range shifts {
		entry, ok := byEmployee[s.EmployeeID]
		if !ok {
			continue
		}
		entry.TotalHours += s.Hours
		entry.ShiftsCount++
		entry.WeeklyHours[model.ISOWeekKey(s.Date)] += s.Hours

		report.TotalHours += s.Hours
		report.TotalShifts++
	}

	return report
}
