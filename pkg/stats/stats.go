// Package stats 计算排班结果的覆盖率、合规率和均衡度统计
package stats

import (
	"math"

	"github.com/google/uuid"

	"github.com/paiban/yaofang/pkg/model"
)

// Calculator 统计计算器
type Calculator struct {
	MaxHoursPerWeek   float64
	MinHoursTolerance float64
}

// NewCalculator 创建统计计算器
func NewCalculator(maxHoursPerWeek, minHoursTolerance float64) *Calculator {
	return &Calculator{
		MaxHoursPerWeek:   maxHoursPerWeek,
		MinHoursTolerance: minHoursTolerance,
	}
}

// EmptyStats 返回终止状态（空花名册或空日期区间）使用的统计
func EmptyStats() *model.GenerationStats {
	return &model.GenerationStats{
		TotalHours:      0,
		TotalShifts:     0,
		CoverageRate:    0,
		LegalCompliance: 100,
		BalanceScore:    0,
	}
}

// Calculate 从生成的班次计算统计指标
// 合规检查在此独立重算，不复用生成环节的中间结果
func (c *Calculator) Calculate(dates []string, cfg *model.GenerateConfig, shifts []*model.GeneratedShift) *model.GenerationStats {
	stats := &model.GenerationStats{}

	for _, s := range shifts {
		stats.TotalHours += s.Hours
	}
	stats.TotalShifts = len(shifts)

	stats.CoverageRate = c.coverageRate(dates, cfg.Templates, len(shifts))
	stats.LegalCompliance = c.legalCompliance(cfg, shifts)
	stats.BalanceScore = c.balanceScore(shifts)

	return stats
}

// coverageRate 最低人数槽位的填充率
// 期望值为每个开放日每个模板每个启用角色的 min 之和
func (c *Calculator) coverageRate(dates []string, templates []*model.ShiftTemplate, totalShifts int) int {
	expectedMin := 0
	for _, tmpl := range templates {
		for _, role := range tmpl.Roles {
			if role.Max > 0 {
				expectedMin += role.Min
			}
		}
	}
	expectedMin *= len(dates)

	if expectedMin == 0 {
		return 100
	}
	rate := int(math.Round(float64(totalShifts) / float64(expectedMin) * 100))
	if rate > 100 {
		return 100
	}
	return rate
}

// legalCompliance 工时上下限检查的通过率
// 两类检查：每个员工周桶不超法定上限、有档案员工的周均工时达到最低要求的容忍线
func (c *Calculator) legalCompliance(cfg *model.GenerateConfig, shifts []*model.GeneratedShift) int {
	weekly := make(map[uuid.UUID]map[string]float64)
	totals := make(map[uuid.UUID]float64)
	for _, s := range shifts {
		if weekly[s.EmployeeID] == nil {
			weekly[s.EmployeeID] = make(map[string]float64)
		}
		weekly[s.EmployeeID][model.ISOWeekKey(s.Date)] += s.Hours
		totals[s.EmployeeID] += s.Hours
	}

	passed, total := 0, 0

	for _, weeks := range weekly {
		for _, hours := range weeks {
			total++
			if hours <= c.MaxHoursPerWeek {
				passed++
			}
		}
	}

	for empID, constraint := range cfg.Constraints {
		if constraint == nil || constraint.MinHoursPerWeek <= 0 {
			continue
		}
		weeks := weekly[empID]
		if len(weeks) == 0 {
			continue
		}
		total++
		avgWeekly := totals[empID] / float64(len(weeks))
		if avgWeekly >= constraint.MinHoursPerWeek*c.MinHoursTolerance {
			passed++
		}
	}

	if total == 0 {
		return 100
	}
	rate := int(math.Round(float64(passed) / float64(total) * 100))
	if rate > 100 {
		rate = 100
	}
	if rate < 0 {
		rate = 0
	}
	return rate
}

// balanceScore 总工时的总体标准差，衡量班次分摊的均衡程度
// 只统计有排班的员工，不足两人时返回 0
func (c *Calculator) balanceScore(shifts []*model.GeneratedShift) float64 {
	totals := make(map[uuid.UUID]float64)
	for _, s := range shifts {
		totals[s.EmployeeID] += s.Hours
	}

	var hours []float64
	for _, h := range totals {
		if h > 0 {
			hours = append(hours, h)
		}
	}
	if len(hours) < 2 {
		return 0
	}

	var sum float64
	for _, h := range hours {
		sum += h
	}
	mean := sum / float64(len(hours))

	var variance float64
	for _, h := range hours {
		variance += (h - mean) * (h - mean)
	}
	variance /= float64(len(hours))

	return math.Round(math.Sqrt(variance)*10) / 10
}
