// Package swap 提供替班推荐功能
// 在既有排班上为某个班次寻找可合规接替的员工
package swap

import (
	"sort"

	"github.com/google/uuid"

	"github.com/paiban/yaofang/pkg/model"
	"github.com/paiban/yaofang/pkg/planning"
)

// Recommender 替班推荐器
// 复用生成引擎的资格检查和评分逻辑，保证推荐结果与重新生成一致
type Recommender struct {
	checker *planning.Checker
	scorer  *planning.Scorer
}

// NewRecommender 创建替班推荐器
func NewRecommender(rules planning.LegalRules, weights planning.ScoreWeights) *Recommender {
	return &Recommender{
		checker: planning.NewChecker(rules),
		scorer:  planning.NewScorer(weights),
	}
}

// Recommendation 替班推荐
type Recommendation struct {
	Employee *model.Employee `json:"employee"`
	Score    float64         `json:"score"`
	Reason   string          `json:"reason"`
	Rank     int             `json:"rank"`
}

// Options 推荐选项
type Options struct {
	MaxRecommendations int         // 最大推荐数量
	Exclude            []uuid.UUID // 排除的员工
}

// DefaultOptions 返回默认选项
func DefaultOptions() *Options {
	return &Options{MaxRecommendations: 5}
}

// SuggestReplacements 为指定班次推荐替班人选
// 评估时先从排班中剔除原班次，被推荐者的工时按剩余排班计算
func (r *Recommender) SuggestReplacements(
	shift *model.GeneratedShift,
	template *model.ShiftTemplate,
	roster []*model.Employee,
	constraints map[uuid.UUID]*model.EmployeeConstraint,
	allShifts []*model.GeneratedShift,
	options *Options,
) []Recommendation {
	if options == nil {
		options = DefaultOptions()
	}

	excludeSet := make(map[uuid.UUID]bool)
	excludeSet[shift.EmployeeID] = true
	for _, id := range options.Exclude {
		excludeSet[id] = true
	}

	var remaining []*model.GeneratedShift
	for _, s := range allShifts {
		if s.ID != shift.ID {
			remaining = append(remaining, s)
		}
	}
	tracker := planning.BuildTracker(remaining)

	slot := &planning.Slot{
		Role:     shift.Role,
		Date:     shift.Date,
		WeekKey:  model.ISOWeekKey(shift.Date),
		Template: template,
		Hours:    shift.Hours,
	}

	var candidates []Recommendation
	for _, emp := range roster {
		if excludeSet[emp.ID] || !emp.IsActive() {
			continue
		}

		constraint := constraints[emp.ID]
		if !r.checker.IsEligible(emp, slot, constraint, tracker, remaining) {
			continue
		}

		score := r.scorer.Score(emp, slot, constraint, tracker)
		candidates = append(candidates, Recommendation{
			Employee: emp,
			Score:    score,
			Reason:   r.reason(emp, slot, constraint),
		})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Score > candidates[j].Score
	})

	if len(candidates) > options.MaxRecommendations {
		candidates = candidates[:options.MaxRecommendations]
	}
	for i := range candidates {
		candidates[i].Rank = i + 1
	}

	return candidates
}

// reason 生成推荐原因
func (r *Recommender) reason(emp *model.Employee, slot *planning.Slot, constraint *model.EmployeeConstraint) string {
	if constraint != nil && constraint.Prefers(slot.Template.ID) {
		return "偏好该班次"
	}
	if emp.Category == model.CategoryTitulaire {
		return "执业药师，满足在岗义务"
	}
	if constraint == nil {
		return "无约束限制，可直接接替"
	}
	return "角色匹配且工时合规"
}
