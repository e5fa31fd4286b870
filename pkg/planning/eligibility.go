package planning

import (
	"github.com/google/uuid"

	"github.com/paiban/yaofang/pkg/model"
)

// Checker 资格检查器
// 七条规则按固定顺序短路执行，顺序本身是行为契约的一部分
type Checker struct {
	rules LegalRules
}

// NewChecker 创建资格检查器
func NewChecker(rules LegalRules) *Checker {
	return &Checker{rules: rules}
}

// Slot 待分配的班次槽位
type Slot struct {
	Role     string
	Date     string
	WeekKey  string
	Template *model.ShiftTemplate
	Hours    float64
}

// IsEligible 检查员工是否可被分配到槽位
// 规则顺序：角色匹配、休息日、不可用日期、同模板重复、日上限、周法定上限、档案周上限
// 无约束档案时跳过休息日、不可用日期和档案周上限三条
func (c *Checker) IsEligible(emp *model.Employee, slot *Slot, constraint *model.EmployeeConstraint, tracker *WorkloadTracker, assigned []*model.GeneratedShift) bool {
	// 规则1: 员工类别必须映射到槽位角色
	if emp.Category.Role() != slot.Role {
		return false
	}

	// 规则2: 固定休息日
	if constraint != nil {
		if t, err := model.ParseDate(slot.Date); err == nil && constraint.HasRestDay(model.WeekdayIndex(t)) {
			return false
		}
	}

	// 规则3: 不可用日期
	if constraint != nil && constraint.IsUnavailable(slot.Date) {
		return false
	}

	// 规则4: 同一天不得重复分配同一模板
	if hasAssignment(assigned, emp.ID, slot.Date, slot.Template.ID) {
		return false
	}

	// 规则5: 当日工时加本班次不得超过日上限
	if dailyHours(assigned, emp.ID, slot.Date)+slot.Hours > c.rules.MaxHoursPerDay {
		return false
	}

	// 规则6: 当周工时加本班次不得超过法定周上限
	weekHours := tracker.WeekHours(emp.ID, slot.WeekKey)
	if weekHours+slot.Hours > c.rules.MaxHoursPerWeek {
		return false
	}

	// 规则7: 约束档案的自定义周上限
	if constraint != nil && weekHours+slot.Hours > constraint.MaxHoursPerWeek {
		return false
	}

	return true
}

// hasAssignment 检查员工在某日是否已分配某模板
func hasAssignment(assigned []*model.GeneratedShift, empID uuid.UUID, date string, templateID uuid.UUID) bool {
	for _, s := range assigned {
		if s.EmployeeID == empID && s.Date == date && s.TemplateID == templateID {
			return true
		}
	}
	return false
}

// dailyHours 统计员工某日已分配的工时
func dailyHours(assigned []*model.GeneratedShift, empID uuid.UUID, date string) float64 {
	var total float64
	for _, s := range assigned {
		if s.EmployeeID == empID && s.Date == date {
			total += s.Hours
		}
	}
	return total
}
