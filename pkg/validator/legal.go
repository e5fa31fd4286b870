// Package validator 实现排班结果的事后法规校验
package validator

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/paiban/yaofang/pkg/model"
)

// Config 法规校验配置
type Config struct {
	MaxHoursPerDay    float64
	MaxHoursPerWeek   float64
	MinHoursTolerance float64
}

// DefaultConfig 返回默认校验配置
func DefaultConfig() Config {
	return Config{
		MaxHoursPerDay:    10,
		MaxHoursPerWeek:   48,
		MinHoursTolerance: 0.8,
	}
}

// LegalValidator 法规校验器
// 独立于生成环节的过滤再做一遍完整检查，防止生成逻辑的遗漏被静默放过
type LegalValidator struct {
	cfg Config
}

// New 创建法规校验器
func New(cfg Config) *LegalValidator {
	return &LegalValidator{cfg: cfg}
}

// workerTotals 校验期间的员工工时汇总
type workerTotals struct {
	totalHours float64
	weekKeys   []string
	weekHours  map[string]float64
	dateKeys   []string
	dateHours  map[string]float64
}

// Validate 对完整排班结果执行四项法规检查
// 检查顺序固定：周均工时不足、单日超限、单周超限、药师在岗
// 所有聚合按班次列表的首次出现顺序遍历，保证结果可复现
func (v *LegalValidator) Validate(shifts []*model.GeneratedShift, roster []*model.Employee, constraints map[uuid.UUID]*model.EmployeeConstraint) []model.Conflict {
	names := make(map[uuid.UUID]string, len(roster))
	categories := make(map[uuid.UUID]model.Category, len(roster))
	for _, emp := range roster {
		names[emp.ID] = emp.Name
		categories[emp.ID] = emp.Category
	}

	var empOrder []uuid.UUID
	totals := make(map[uuid.UUID]*workerTotals)
	var dateOrder []string
	dateSeen := make(map[string]bool)
	dateHasPharmacien := make(map[string]bool)

	for _, s := range shifts {
		wt, ok := totals[s.EmployeeID]
		if !ok {
			wt = &workerTotals{
				weekHours: make(map[string]float64),
				dateHours: make(map[string]float64),
			}
			totals[s.EmployeeID] = wt
			empOrder = append(empOrder, s.EmployeeID)
		}
		wt.totalHours += s.Hours

		weekKey := model.ISOWeekKey(s.Date)
		if _, ok := wt.weekHours[weekKey]; !ok {
			wt.weekKeys = append(wt.weekKeys, weekKey)
		}
		wt.weekHours[weekKey] += s.Hours

		if _, ok := wt.dateHours[s.Date]; !ok {
			wt.dateKeys = append(wt.dateKeys, s.Date)
		}
		wt.dateHours[s.Date] += s.Hours

		if !dateSeen[s.Date] {
			dateSeen[s.Date] = true
			dateOrder = append(dateOrder, s.Date)
		}
		if categories[s.EmployeeID].IsPharmacien() {
			dateHasPharmacien[s.Date] = true
		}
	}

	var conflicts []model.Conflict

	// 检查1: 有约束档案的员工周均工时不得低于最低要求的容忍线
	for _, emp := range roster {
		constraint := constraints[emp.ID]
		if constraint == nil || constraint.MinHoursPerWeek <= 0 {
			continue
		}
		wt := totals[emp.ID]
		if wt == nil || len(wt.weekKeys) == 0 {
			continue
		}
		avgWeekly := wt.totalHours / float64(len(wt.weekKeys))
		if avgWeekly < constraint.MinHoursPerWeek*v.cfg.MinHoursTolerance {
			conflicts = append(conflicts, model.Conflict{
				Type: model.SeverityWarning,
				Message: fmt.Sprintf("%s 的周均工时 %.1f 小时低于最低要求 %.1f 小时的容忍线",
					emp.Name, avgWeekly, constraint.MinHoursPerWeek),
				EmployeeName: emp.Name,
				Solution:     "增加该员工的班次或下调其最低周工时",
			})
		}
	}

	// 检查2: 单日工时不得超过法定上限
	for _, empID := range empOrder {
		wt := totals[empID]
		for _, date := range wt.dateKeys {
			if wt.dateHours[date] > v.cfg.MaxHoursPerDay {
				conflicts = append(conflicts, model.Conflict{
					Type: model.SeverityError,
					Message: fmt.Sprintf("%s 在 %s 的工时 %.1f 小时超过单日上限 %.0f 小时",
						names[empID], date, wt.dateHours[date], v.cfg.MaxHoursPerDay),
					EmployeeName: names[empID],
					Date:         date,
					Solution:     "缩短班次时长或将部分班次改派他人",
				})
			}
		}
	}

	// 检查3: 单周工时不得超过法定上限
	for _, empID := range empOrder {
		wt := totals[empID]
		for _, weekKey := range wt.weekKeys {
			if wt.weekHours[weekKey] > v.cfg.MaxHoursPerWeek {
				conflicts = append(conflicts, model.Conflict{
					Type: model.SeverityError,
					Message: fmt.Sprintf("%s 在 %s 周的工时 %.1f 小时超过法定周上限 %.0f 小时",
						names[empID], weekKey, wt.weekHours[weekKey], v.cfg.MaxHoursPerWeek),
					EmployeeName: names[empID],
					Solution:     "将该周的部分班次改派他人",
				})
			}
		}
	}

	// 检查4: 每个营业日必须至少有一名药师在岗
	for _, date := range dateOrder {
		if !dateHasPharmacien[date] {
			conflicts = append(conflicts, model.Conflict{
				Type:     model.SeverityError,
				Message:  fmt.Sprintf("%s 无药师排班，违反药师在岗的法定义务", date),
				Date:     date,
				Solution: "为该日安排至少一名执业药师或副药师",
			})
		}
	}

	return conflicts
}
