package planning

import (
	"github.com/paiban/yaofang/pkg/model"
)

// Scorer 优先级评分器
// 只对已通过资格检查的候选人打分，分数仅用于排序
type Scorer struct {
	weights ScoreWeights
}

// NewScorer 创建评分器
func NewScorer(weights ScoreWeights) *Scorer {
	return &Scorer{weights: weights}
}

// Score 计算员工对某槽位的优先级分数
// 无约束档案时返回中性分，有档案时累加各独立加分项
func (s *Scorer) Score(emp *model.Employee, slot *Slot, constraint *model.EmployeeConstraint, tracker *WorkloadTracker) float64 {
	if constraint == nil {
		return s.weights.Neutral
	}

	weekHours := tracker.WeekHours(emp.ID, slot.WeekKey)
	var score float64

	// 未达周最低工时的员工优先
	if under := constraint.MinHoursPerWeek - weekHours; under > 0 {
		score += under * s.weights.UnderMin
	}

	// 剩余周容量越大越优先，接近上限时为负值进一步降权
	score += (constraint.MaxHoursPerWeek - weekHours) * s.weights.Headroom

	// 偏好班次
	if constraint.Prefers(slot.Template.ID) {
		score += s.weights.Preferred
	}

	// 执业药师承担法定在岗义务，优先安排
	if emp.Category == model.CategoryTitulaire {
		score += s.weights.CriticalRole
	}

	// 轮换公平：本轮已分配班次越少越优先
	if rotation := s.weights.RotationTarget - float64(tracker.ShiftsCount(emp.ID)); rotation > 0 {
		score += rotation * s.weights.Rotation
	}

	// 距离合同工时目标越远越优先
	if emp.ContractHours > 0 {
		if ratio := (emp.ContractHours - tracker.TotalHours(emp.ID)) / emp.ContractHours; ratio > 0 {
			score += ratio * s.weights.ContractRatio
		}
	}

	return score
}
