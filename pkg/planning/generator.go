package planning

import (
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/paiban/yaofang/pkg/logger"
	"github.com/paiban/yaofang/pkg/model"
	"github.com/paiban/yaofang/pkg/stats"
	"github.com/paiban/yaofang/pkg/validator"
)

// Generator 排班生成器
// 单次调用内完成全部计算，不持有跨调用状态
type Generator struct {
	rules   LegalRules
	weights ScoreWeights
	checker *Checker
	scorer  *Scorer
	log     *logger.PlanningLogger
}

// NewGenerator 使用默认规则和权重创建生成器
func NewGenerator() *Generator {
	return NewGeneratorWith(DefaultLegalRules(), DefaultScoreWeights())
}

// NewGeneratorWith 使用指定规则和权重创建生成器
func NewGeneratorWith(rules LegalRules, weights ScoreWeights) *Generator {
	return &Generator{
		rules:   rules,
		weights: weights,
		checker: NewChecker(rules),
		scorer:  NewScorer(weights),
		log:     logger.NewPlanningLogger(),
	}
}

// Rules 返回生成器使用的法定规则
func (g *Generator) Rules() LegalRules {
	return g.rules
}

// candidate 一个槽位的候选人及其评分
type candidate struct {
	emp   *model.Employee
	score float64
}

// Generate 生成整个周期的排班
// 业务规则违反以冲突数据返回，不作为 error；Success 为真当且仅当无 error 级冲突
func (g *Generator) Generate(cfg *model.GenerateConfig, roster []*model.Employee) *model.Result {
	started := time.Now()

	var active []*model.Employee
	for _, emp := range roster {
		if emp.IsActive() {
			active = append(active, emp)
		}
	}
	if len(active) == 0 {
		return terminalResult(model.Conflict{
			Type:     model.SeverityError,
			Message:  "无在职员工可参与排班",
			Solution: "添加员工或将现有员工状态改为在职",
		})
	}

	dates := model.ExpandDateRange(cfg.Period.StartDate, cfg.Period.EndDate, cfg.Period.ActiveDays)
	if len(dates) == 0 {
		return terminalResult(model.Conflict{
			Type:     model.SeverityError,
			Message:  "排班周期内无开放日",
			Solution: "检查起止日期与每周开放日设置",
		})
	}

	g.log.StartGeneration(len(active), len(dates), len(cfg.Templates))

	tracker := NewWorkloadTracker()
	var shifts []*model.GeneratedShift
	var conflicts []model.Conflict

	// 日期、模板、角色三层都按声明顺序遍历，顺序决定平分时的取舍
	for _, date := range dates {
		weekKey := model.ISOWeekKey(date)
		for _, tmpl := range cfg.Templates {
			hours := tmpl.Hours()
			for _, role := range tmpl.Roles {
				if role.Max == 0 {
					continue
				}

				slot := &Slot{
					Role:     role.Role,
					Date:     date,
					WeekKey:  weekKey,
					Template: tmpl,
					Hours:    hours,
				}

				var candidates []candidate
				for _, emp := range active {
					constraint := cfg.ConstraintFor(emp.ID)
					if !g.checker.IsEligible(emp, slot, constraint, tracker, shifts) {
						continue
					}
					candidates = append(candidates, candidate{
						emp:   emp,
						score: g.scorer.Score(emp, slot, constraint, tracker),
					})
				}

				if len(candidates) == 0 {
					if role.Min > 0 {
						msg := fmt.Sprintf("%s 的 %s 班次缺少可排的 %s", date, tmpl.Name, role.Role)
						conflicts = append(conflicts, model.Conflict{
							Type:     model.SeverityError,
							Message:  msg,
							Date:     date,
							Solution: "补充该角色的在职员工或放宽其约束档案",
						})
						g.log.RuleViolation("no_eligible_employee", msg)
					}
					continue
				}

				// 稳定排序保留资格检查的扫描顺序，中性分打平时顺位在前者胜出
				sort.SliceStable(candidates, func(i, j int) bool {
					return candidates[i].score > candidates[j].score
				})

				count := role.Max
				if len(candidates) < count {
					count = len(candidates)
				}
				for i := 0; i < count; i++ {
					emp := candidates[i].emp
					shifts = append(shifts, &model.GeneratedShift{
						ID:         uuid.New(),
						Date:       date,
						TemplateID: tmpl.ID,
						EmployeeID: emp.ID,
						Role:       role.Role,
						StartTime:  tmpl.StartTime,
						EndTime:    tmpl.EndTime,
						Hours:      hours,
					})
					tracker.Record(emp.ID, weekKey, hours)
				}

				if count < role.Min {
					conflicts = append(conflicts, model.Conflict{
						Type: model.SeverityWarning,
						Message: fmt.Sprintf("%s 的 %s 班次只排到 %d 名 %s，低于最低要求 %d 名",
							date, tmpl.Name, count, role.Role, role.Min),
						Date:     date,
						Solution: "补充该角色人手或下调最低人数",
					})
					g.log.RoleShortage(role.Role, date, role.Min, count)
				}
			}
		}
	}

	legal := validator.New(validator.Config{
		MaxHoursPerDay:    g.rules.MaxHoursPerDay,
		MaxHoursPerWeek:   g.rules.MaxHoursPerWeek,
		MinHoursTolerance: g.rules.MinHoursTolerance,
	})
	conflicts = append(conflicts, legal.Validate(shifts, active, cfg.Constraints)...)

	calc := stats.NewCalculator(g.rules.MaxHoursPerWeek, g.rules.MinHoursTolerance)

	result := &model.Result{
		Shifts:    shifts,
		Stats:     calc.Calculate(dates, cfg, shifts),
		Conflicts: conflicts,
	}
	result.Success = !result.HasError()

	g.log.GenerationComplete(len(shifts), result.Stats.CoverageRate, time.Since(started))
	return result
}

// terminalResult 构造终止状态的结果，不进入生成主流程
func terminalResult(conflict model.Conflict) *model.Result {
	return &model.Result{
		Success:   false,
		Shifts:    nil,
		Stats:     stats.EmptyStats(),
		Conflicts: []model.Conflict{conflict},
	}
}
