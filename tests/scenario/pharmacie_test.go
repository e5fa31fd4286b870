// Package scenario 提供场景测试
package scenario

import (
	"testing"

	"github.com/google/uuid"

	"github.com/paiban/yaofang/pkg/model"
	"github.com/paiban/yaofang/pkg/planning"
	"github.com/paiban/yaofang/pkg/swap"
)

// TestPharmacieFullWeek 药房整周排班测试
// 周一到周六开放，早班和午后班两个模板，覆盖药师在岗义务和工时上限
func TestPharmacieFullWeek(t *testing.T) {
	claire := createEmployee("Claire", model.CategoryTitulaire, 35)
	luc := createEmployee("Luc", model.CategoryAdjoint, 35)
	marc := createEmployee("Marc", model.CategoryPreparateur, 35)
	sophie := createEmployee("Sophie", model.CategoryPreparateur, 35)
	julie := createEmployee("Julie", model.CategoryConditionneur, 28)
	thomas := createEmployee("Thomas", model.CategoryEtudiant, 10)
	roster := []*model.Employee{claire, luc, marc, sophie, julie, thomas}

	matin := createTemplate("早班", "09:00", "13:00",
		model.RoleRequirement{Role: model.RolePharmacien, Min: 1, Max: 1},
		model.RoleRequirement{Role: model.RolePreparateur, Min: 1, Max: 1},
	)
	apresMidi := createTemplate("午后班", "14:00", "19:00",
		model.RoleRequirement{Role: model.RolePharmacien, Min: 1, Max: 1},
		model.RoleRequirement{Role: model.RolePreparateur, Min: 1, Max: 2},
		model.RoleRequirement{Role: model.RoleConditionneur, Min: 0, Max: 1},
	)

	cfg := &model.GenerateConfig{
		Period: model.PeriodConfig{
			StartDate:  "2026-03-02",
			EndDate:    "2026-03-08",
			ActiveDays: [7]bool{true, true, true, true, true, true, false}, // 周日闭店
		},
		Templates: []*model.ShiftTemplate{matin, apresMidi},
		Constraints: map[uuid.UUID]*model.EmployeeConstraint{
			sophie.ID: {
				EmployeeID:      sophie.ID,
				MinHoursPerWeek: 20,
				MaxHoursPerWeek: 40,
				PreferredShifts: []uuid.UUID{matin.ID},
			},
		},
	}

	gen := planning.NewGenerator()
	result := gen.Generate(cfg, roster)

	t.Logf("排班成功: %v", result.Success)
	t.Logf("总班次: %d, 总工时: %.1f", result.Stats.TotalShifts, result.Stats.TotalHours)
	t.Logf("覆盖率: %d%%, 合规率: %d%%, 均衡度: %.1f",
		result.Stats.CoverageRate, result.Stats.LegalCompliance, result.Stats.BalanceScore)

	if !result.Success {
		t.Fatalf("整周排班应成功, 冲突: %+v", result.Conflicts)
	}
	for _, c := range result.Conflicts {
		if c.Type == model.SeverityError {
			t.Errorf("不应有error级冲突: %+v", c)
		}
	}
	if result.Stats.CoverageRate != 100 || result.Stats.LegalCompliance != 100 {
		t.Errorf("覆盖率和合规率应为100: %+v", result.Stats)
	}

	// 每个开放日都必须有药师在岗
	byName := make(map[uuid.UUID]*model.Employee)
	for _, emp := range roster {
		byName[emp.ID] = emp
	}
	pharmacistDates := make(map[string]bool)
	for _, s := range result.Shifts {
		if byName[s.EmployeeID].Category.IsPharmacien() {
			pharmacistDates[s.Date] = true
		}
	}
	openDates := model.ExpandDateRange(cfg.Period.StartDate, cfg.Period.EndDate, cfg.Period.ActiveDays)
	if len(openDates) != 6 {
		t.Fatalf("应有6个开放日, got %d", len(openDates))
	}
	for _, d := range openDates {
		if !pharmacistDates[d] {
			t.Errorf("%s 无药师在岗", d)
		}
	}

	// 单日和单周工时不得超限
	daily := make(map[string]float64)
	weekly := make(map[string]float64)
	seen := make(map[string]bool)
	for _, s := range result.Shifts {
		dayKey := s.EmployeeID.String() + "|" + s.Date
		daily[dayKey] += s.Hours
		weekly[s.EmployeeID.String()+"|"+model.ISOWeekKey(s.Date)] += s.Hours

		slotKey := dayKey + "|" + s.TemplateID.String()
		if seen[slotKey] {
			t.Errorf("同一员工同日同模板重复分配: %s %s", byName[s.EmployeeID].Name, s.Date)
		}
		seen[slotKey] = true
	}
	for key, hours := range daily {
		if hours > 10 {
			t.Errorf("单日工时超限: %s = %.1f", key, hours)
		}
	}
	for key, hours := range weekly {
		if hours > 48 {
			t.Errorf("单周工时超限: %s = %.1f", key, hours)
		}
	}

	// 员工工时汇总
	empHours := make(map[uuid.UUID]float64)
	for _, s := range result.Shifts {
		empHours[s.EmployeeID] += s.Hours
	}
	for _, emp := range roster {
		t.Logf("员工 %s 工时: %.1f", emp.Name, empHours[emp.ID])
	}

	// Sophie 受档案40小时上限约束
	if empHours[sophie.ID] > 40 {
		t.Errorf("Sophie 超过档案周上限: %.1f", empHours[sophie.ID])
	}
	// 学徒没有任何模板角色可匹配
	if empHours[thomas.ID] != 0 {
		t.Errorf("学员不应被排入药师或配药岗位: %.1f", empHours[thomas.ID])
	}
}

// TestPharmacieDeterministic 相同输入重复生成结果一致
func TestPharmacieDeterministic(t *testing.T) {
	roster := []*model.Employee{
		createEmployee("Claire", model.CategoryTitulaire, 35),
		createEmployee("Marc", model.CategoryPreparateur, 35),
		createEmployee("Sophie", model.CategoryPreparateur, 35),
	}
	tmpl := createTemplate("早班", "09:00", "13:00",
		model.RoleRequirement{Role: model.RolePharmacien, Min: 1, Max: 1},
		model.RoleRequirement{Role: model.RolePreparateur, Min: 1, Max: 1},
	)
	cfg := &model.GenerateConfig{
		Period: model.PeriodConfig{
			StartDate:  "2026-03-02",
			EndDate:    "2026-03-06",
			ActiveDays: [7]bool{true, true, true, true, true, false, false},
		},
		Templates: []*model.ShiftTemplate{tmpl},
	}

	gen := planning.NewGenerator()
	first := gen.Generate(cfg, roster)
	second := gen.Generate(cfg, roster)

	if len(first.Shifts) != len(second.Shifts) {
		t.Fatalf("两次生成班次数不同: %d vs %d", len(first.Shifts), len(second.Shifts))
	}
	for i := range first.Shifts {
		a, b := first.Shifts[i], second.Shifts[i]
		if a.EmployeeID != b.EmployeeID || a.Date != b.Date || a.Role != b.Role {
			t.Errorf("第%d个班次分配不一致: %+v vs %+v", i, a, b)
		}
	}
	if len(first.Conflicts) != len(second.Conflicts) {
		t.Errorf("两次生成冲突数不同: %d vs %d", len(first.Conflicts), len(second.Conflicts))
	}
}

// TestPharmacieSansPharmacien 无药师花名册触发在岗义务冲突
func TestPharmacieSansPharmacien(t *testing.T) {
	roster := []*model.Employee{
		createEmployee("Marc", model.CategoryPreparateur, 35),
		createEmployee("Julie", model.CategoryConditionneur, 28),
	}
	tmpl := createTemplate("早班", "09:00", "13:00",
		model.RoleRequirement{Role: model.RolePharmacien, Min: 1, Max: 1},
		model.RoleRequirement{Role: model.RolePreparateur, Min: 1, Max: 1},
	)
	cfg := &model.GenerateConfig{
		Period: model.PeriodConfig{
			StartDate:  "2026-03-02",
			EndDate:    "2026-03-02",
			ActiveDays: [7]bool{true, true, true, true, true, true, true},
		},
		Templates: []*model.ShiftTemplate{tmpl},
	}

	result := planning.NewGenerator().Generate(cfg, roster)

	if result.Success {
		t.Error("无药师可排时不应成功")
	}
	hasError := false
	for _, c := range result.Conflicts {
		if c.Type == model.SeverityError {
			hasError = true
			t.Logf("检测到冲突: %s", c.Message)
		}
	}
	if !hasError {
		t.Error("应有error级冲突记录")
	}
}

// TestPharmacieRemplacement 生成后为某个班次推荐替班人选
func TestPharmacieRemplacement(t *testing.T) {
	marc := createEmployee("Marc", model.CategoryPreparateur, 35)
	sophie := createEmployee("Sophie", model.CategoryPreparateur, 35)
	claire := createEmployee("Claire", model.CategoryTitulaire, 35)
	roster := []*model.Employee{marc, sophie, claire}

	tmpl := createTemplate("早班", "09:00", "13:00",
		model.RoleRequirement{Role: model.RolePharmacien, Min: 1, Max: 1},
		model.RoleRequirement{Role: model.RolePreparateur, Min: 1, Max: 1},
	)
	cfg := &model.GenerateConfig{
		Period: model.PeriodConfig{
			StartDate:  "2026-03-02",
			EndDate:    "2026-03-03",
			ActiveDays: [7]bool{true, true, true, true, true, true, true},
		},
		Templates: []*model.ShiftTemplate{tmpl},
	}

	result := planning.NewGenerator().Generate(cfg, roster)
	if !result.Success {
		t.Fatalf("排班应成功: %+v", result.Conflicts)
	}

	// 找一个配药员班次并为其找替班
	var target *model.GeneratedShift
	for _, s := range result.Shifts {
		if s.Role == model.RolePreparateur {
			target = s
			break
		}
	}
	if target == nil {
		t.Fatal("应有配药员班次")
	}

	r := swap.NewRecommender(planning.DefaultLegalRules(), planning.DefaultScoreWeights())
	recs := r.SuggestReplacements(target, tmpl, roster, cfg.Constraints, result.Shifts, nil)

	if len(recs) != 1 {
		t.Fatalf("应推荐另一名配药员, got %d", len(recs))
	}
	if recs[0].Employee.ID == target.EmployeeID {
		t.Error("不应推荐原班次员工本人")
	}
	if recs[0].Employee.Category != model.CategoryPreparateur {
		t.Errorf("替班人选角色不匹配: %s", recs[0].Employee.Category)
	}
	t.Logf("推荐替班: %s (得分 %.1f, %s)", recs[0].Employee.Name, recs[0].Score, recs[0].Reason)
}

// 辅助函数

func createEmployee(name string, category model.Category, contractHours float64) *model.Employee {
	return &model.Employee{
		BaseModel:     model.BaseModel{ID: uuid.New()},
		Name:          name,
		Category:      category,
		ContractHours: contractHours,
		Status:        "active",
	}
}

func createTemplate(name, startTime, endTime string, roles ...model.RoleRequirement) *model.ShiftTemplate {
	return &model.ShiftTemplate{
		BaseModel: model.BaseModel{ID: uuid.New()},
		Name:      name,
		StartTime: startTime,
		EndTime:   endTime,
		Roles:     roles,
	}
}
