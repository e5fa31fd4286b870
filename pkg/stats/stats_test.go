package stats

import (
	"math"
	"testing"

	"github.com/google/uuid"

	"github.com/paiban/yaofang/pkg/model"
)

func testConfig(templates ...*model.ShiftTemplate) *model.GenerateConfig {
	return &model.GenerateConfig{Templates: templates}
}

func testTemplate(roles ...model.RoleRequirement) *model.ShiftTemplate {
	return &model.ShiftTemplate{
		BaseModel: model.BaseModel{ID: uuid.New()},
		Name:      "测试班次",
		StartTime: "09:00",
		EndTime:   "17:00",
		Roles:     roles,
	}
}

func testShift(empID uuid.UUID, date string, hours float64) *model.GeneratedShift {
	return &model.GeneratedShift{
		ID:         uuid.New(),
		Date:       date,
		EmployeeID: empID,
		Hours:      hours,
	}
}

func TestEmptyStats(t *testing.T) {
	s := EmptyStats()
	if s.TotalHours != 0 || s.TotalShifts != 0 || s.CoverageRate != 0 {
		t.Errorf("终止状态统计应归零: %+v", s)
	}
	if s.LegalCompliance != 100 || s.BalanceScore != 0 {
		t.Errorf("终止状态合规率应为100: %+v", s)
	}
}

func TestCalculate_CoverageRate(t *testing.T) {
	calc := NewCalculator(48, 0.8)
	empA, empB := uuid.New(), uuid.New()

	tmpl := testTemplate(
		model.RoleRequirement{Role: model.RolePharmacien, Min: 1, Max: 1},
		model.RoleRequirement{Role: model.RolePreparateur, Min: 1, Max: 2},
		model.RoleRequirement{Role: model.RoleConditionneur, Min: 1, Max: 0}, // 未启用，不计入期望
	)
	cfg := testConfig(tmpl)
	dates := []string{"2026-03-02", "2026-03-03"}

	// 期望最低 2天 × 2 = 4，实际3个班次 → 75%
	shifts := []*model.GeneratedShift{
		testShift(empA, "2026-03-02", 8),
		testShift(empB, "2026-03-02", 8),
		testShift(empA, "2026-03-03", 8),
	}

	stats := calc.Calculate(dates, cfg, shifts)
	if stats.CoverageRate != 75 {
		t.Errorf("覆盖率应为75, got %d", stats.CoverageRate)
	}
	if stats.TotalShifts != 3 || stats.TotalHours != 24 {
		t.Errorf("总量统计错误: %+v", stats)
	}
}

func TestCalculate_CoverageClampedAt100(t *testing.T) {
	calc := NewCalculator(48, 0.8)
	empA := uuid.New()

	tmpl := testTemplate(model.RoleRequirement{Role: model.RolePreparateur, Min: 1, Max: 3})
	dates := []string{"2026-03-02"}

	// 最低1人，实际3人 → 不超过100
	shifts := []*model.GeneratedShift{
		testShift(empA, "2026-03-02", 4),
		testShift(uuid.New(), "2026-03-02", 4),
		testShift(uuid.New(), "2026-03-02", 4),
	}

	stats := calc.Calculate(dates, testConfig(tmpl), shifts)
	if stats.CoverageRate != 100 {
		t.Errorf("覆盖率应封顶100, got %d", stats.CoverageRate)
	}
}

func TestCalculate_CoverageWithoutExpectedSlots(t *testing.T) {
	calc := NewCalculator(48, 0.8)
	tmpl := testTemplate(model.RoleRequirement{Role: model.RolePreparateur, Min: 0, Max: 2})

	stats := calc.Calculate([]string{"2026-03-02"}, testConfig(tmpl), nil)
	if stats.CoverageRate != 100 {
		t.Errorf("无最低要求时覆盖率应为100, got %d", stats.CoverageRate)
	}
}

func TestCalculate_LegalCompliance(t *testing.T) {
	calc := NewCalculator(48, 0.8)
	empA, empB := uuid.New(), uuid.New()

	// empA 单周49小时超限；empB 周均10小时低于最低20的80%
	var shifts []*model.GeneratedShift
	dates := []string{
		"2026-03-02", "2026-03-03", "2026-03-04", "2026-03-05",
		"2026-03-06", "2026-03-07", "2026-03-08",
	}
	for _, d := range dates {
		shifts = append(shifts, testShift(empA, d, 7))
	}
	shifts = append(shifts, testShift(empB, "2026-03-02", 10))

	cfg := testConfig(testTemplate(model.RoleRequirement{Role: model.RolePreparateur, Min: 1, Max: 2}))
	cfg.Constraints = map[uuid.UUID]*model.EmployeeConstraint{
		empB: {EmployeeID: empB, MinHoursPerWeek: 20, MaxHoursPerWeek: 40},
	}

	// 检查项：empA周桶(不合格)、empB周桶(合格)、empB周均(不合格) → 1/3
	stats := calc.Calculate(dates, cfg, shifts)
	if stats.LegalCompliance != 33 {
		t.Errorf("合规率应为33, got %d", stats.LegalCompliance)
	}
}

func TestCalculate_LegalComplianceNoChecks(t *testing.T) {
	calc := NewCalculator(48, 0.8)
	cfg := testConfig(testTemplate(model.RoleRequirement{Role: model.RolePreparateur, Min: 1, Max: 1}))

	stats := calc.Calculate([]string{"2026-03-02"}, cfg, nil)
	if stats.LegalCompliance != 100 {
		t.Errorf("无可检查项时合规率应为100, got %d", stats.LegalCompliance)
	}
}

func TestCalculate_BalanceScore(t *testing.T) {
	calc := NewCalculator(48, 0.8)
	empA, empB := uuid.New(), uuid.New()
	cfg := testConfig(testTemplate(model.RoleRequirement{Role: model.RolePreparateur, Min: 1, Max: 2}))
	dates := []string{"2026-03-02"}

	// 两人总工时 10 和 20：总体标准差 = 5.0
	shifts := []*model.GeneratedShift{
		testShift(empA, "2026-03-02", 10),
		testShift(empB, "2026-03-02", 20),
	}
	stats := calc.Calculate(dates, cfg, shifts)
	if math.Abs(stats.BalanceScore-5.0) > 1e-9 {
		t.Errorf("均衡度应为5.0, got %v", stats.BalanceScore)
	}

	// 单人无从比较
	soloStats := calc.Calculate(dates, cfg, shifts[:1])
	if soloStats.BalanceScore != 0 {
		t.Errorf("少于两人时均衡度应为0, got %v", soloStats.BalanceScore)
	}
}

func TestBuildWorkloadReport(t *testing.T) {
	empA := &model.Employee{
		BaseModel: model.BaseModel{ID: uuid.New()}, Name: "Claire",
		Category: model.CategoryTitulaire, ContractHours: 35, Status: "active",
	}
	empB := &model.Employee{
		BaseModel: model.BaseModel{ID: uuid.New()}, Name: "Marc",
		Category: model.CategoryPreparateur, ContractHours: 35, Status: "active",
	}
	inactive := &model.Employee{
		BaseModel: model.BaseModel{ID: uuid.New()}, Name: "Zoe",
		Category: model.CategoryEtudiant, Status: "inactive",
	}

	shifts := []*model.GeneratedShift{
		testShift(empA.ID, "2026-03-02", 8),
		testShift(empA.ID, "2026-03-09", 6), // 下一ISO周
		testShift(empB.ID, "2026-03-02", 7),
	}

	report := BuildWorkloadReport(shifts, []*model.Employee{empA, empB, inactive})
	if len(report.Employees) != 2 {
		t.Fatalf("报表应只含在职员工, got %d", len(report.Employees))
	}
	if report.TotalHours != 21 || report.TotalShifts != 3 {
		t.Errorf("总量统计错误: %+v", report)
	}

	claire := report.Employees[0]
	if claire.Name != "Claire" || claire.TotalHours != 14 || claire.ShiftsCount != 2 {
		t.Errorf("Claire 工时统计错误: %+v", claire)
	}
	if claire.WeeklyHours["2026-W10"] != 8 || claire.WeeklyHours["2026-W11"] != 6 {
		t.Errorf("周桶拆分错误: %v", claire.WeeklyHours)
	}
}
