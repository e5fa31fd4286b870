package validator

import (
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/paiban/yaofang/pkg/model"
)

func testEmployee(name string, category model.Category) *model.Employee {
	return &model.Employee{
		BaseModel: model.BaseModel{ID: uuid.New()},
		Name:      name,
		Category:  category,
		Status:    "active",
	}
}

func testShift(empID uuid.UUID, date string, hours float64) *model.GeneratedShift {
	return &model.GeneratedShift{
		ID:         uuid.New(),
		Date:       date,
		TemplateID: uuid.New(),
		EmployeeID: empID,
		Hours:      hours,
	}
}

func TestValidate_CleanSchedule(t *testing.T) {
	v := New(DefaultConfig())
	pharmacien := testEmployee("Claire", model.CategoryTitulaire)
	prep := testEmployee("Marc", model.CategoryPreparateur)

	shifts := []*model.GeneratedShift{
		testShift(pharmacien.ID, "2026-03-02", 8),
		testShift(prep.ID, "2026-03-02", 7),
	}

	conflicts := v.Validate(shifts, []*model.Employee{pharmacien, prep}, nil)
	if len(conflicts) != 0 {
		t.Errorf("合规排班不应有冲突: %v", conflicts)
	}
}

func TestValidate_InsufficientHours(t *testing.T) {
	v := New(DefaultConfig())
	prep := testEmployee("Marc", model.CategoryPreparateur)
	pharmacien := testEmployee("Claire", model.CategoryTitulaire)

	// Marc 周均20小时，最低要求30小时，低于80%容忍线(24小时)
	shifts := []*model.GeneratedShift{
		testShift(pharmacien.ID, "2026-03-02", 8),
		testShift(pharmacien.ID, "2026-03-03", 8),
		testShift(prep.ID, "2026-03-02", 10),
		testShift(prep.ID, "2026-03-03", 10),
	}
	constraints := map[uuid.UUID]*model.EmployeeConstraint{
		prep.ID: {EmployeeID: prep.ID, MinHoursPerWeek: 30, MaxHoursPerWeek: 48},
	}

	conflicts := v.Validate(shifts, []*model.Employee{pharmacien, prep}, constraints)
	if len(conflicts) != 1 {
		t.Fatalf("应有1个冲突, got %v", conflicts)
	}
	if conflicts[0].Type != model.SeverityWarning || conflicts[0].EmployeeName != "Marc" {
		t.Errorf("应为Marc的warning冲突: %+v", conflicts[0])
	}
}

func TestValidate_DailyCapExceeded(t *testing.T) {
	v := New(DefaultConfig())
	pharmacien := testEmployee("Claire", model.CategoryTitulaire)

	// 同一天两个班次合计11小时
	shifts := []*model.GeneratedShift{
		testShift(pharmacien.ID, "2026-03-02", 6),
		testShift(pharmacien.ID, "2026-03-02", 5),
	}

	conflicts := v.Validate(shifts, []*model.Employee{pharmacien}, nil)
	if len(conflicts) != 1 {
		t.Fatalf("应有1个冲突, got %v", conflicts)
	}
	c := conflicts[0]
	if c.Type != model.SeverityError || c.Date != "2026-03-02" {
		t.Errorf("应为带日期的error冲突: %+v", c)
	}
}

func TestValidate_WeeklyCapExceeded(t *testing.T) {
	v := New(DefaultConfig())
	pharmacien := testEmployee("Claire", model.CategoryTitulaire)

	// 周一到周日每天7小时，单周49小时超过48小时上限
	dates := []string{
		"2026-03-02", "2026-03-03", "2026-03-04", "2026-03-05",
		"2026-03-06", "2026-03-07", "2026-03-08",
	}
	var shifts []*model.GeneratedShift
	for _, d := range dates {
		shifts = append(shifts, testShift(pharmacien.ID, d, 7))
	}

	conflicts := v.Validate(shifts, []*model.Employee{pharmacien}, nil)
	if len(conflicts) != 1 {
		t.Fatalf("应有1个冲突, got %v", conflicts)
	}
	if conflicts[0].Type != model.SeverityError || !strings.Contains(conflicts[0].Message, "2026-W10") {
		t.Errorf("应为周超限error冲突: %+v", conflicts[0])
	}
}

func TestValidate_NoPharmacistOnDate(t *testing.T) {
	v := New(DefaultConfig())
	pharmacien := testEmployee("Claire", model.CategoryTitulaire)
	prep := testEmployee("Marc", model.CategoryPreparateur)

	// 周二只有配药员在岗
	shifts := []*model.GeneratedShift{
		testShift(pharmacien.ID, "2026-03-02", 8),
		testShift(prep.ID, "2026-03-02", 7),
		testShift(prep.ID, "2026-03-03", 7),
	}

	conflicts := v.Validate(shifts, []*model.Employee{pharmacien, prep}, nil)
	if len(conflicts) != 1 {
		t.Fatalf("应有1个冲突, got %v", conflicts)
	}
	c := conflicts[0]
	if c.Type != model.SeverityError || c.Date != "2026-03-03" {
		t.Errorf("应为周二无药师的error冲突: %+v", c)
	}
}

func TestValidate_AdjointCountsAsPharmacist(t *testing.T) {
	v := New(DefaultConfig())
	adjoint := testEmployee("Luc", model.CategoryAdjoint)

	shifts := []*model.GeneratedShift{testShift(adjoint.ID, "2026-03-02", 8)}

	conflicts := v.Validate(shifts, []*model.Employee{adjoint}, nil)
	if len(conflicts) != 0 {
		t.Errorf("副药师在岗应满足药师义务: %v", conflicts)
	}
}

func TestValidate_ChecksAreOrdered(t *testing.T) {
	v := New(DefaultConfig())
	prep := testEmployee("Marc", model.CategoryPreparateur)

	// 同时触发：周均不足(警告在前)、单日超限、无药师在岗
	shifts := []*model.GeneratedShift{
		testShift(prep.ID, "2026-03-02", 6),
		testShift(prep.ID, "2026-03-02", 5),
	}
	constraints := map[uuid.UUID]*model.EmployeeConstraint{
		prep.ID: {EmployeeID: prep.ID, MinHoursPerWeek: 40, MaxHoursPerWeek: 48},
	}

	conflicts := v.Validate(shifts, []*model.Employee{prep}, constraints)
	if len(conflicts) != 3 {
		t.Fatalf("应有3个冲突, got %d: %v", len(conflicts), conflicts)
	}
	if conflicts[0].Type != model.SeverityWarning {
		t.Error("周均不足检查应最先输出")
	}
	if conflicts[1].Type != model.SeverityError || conflicts[1].Date != "2026-03-02" {
		t.Error("单日超限检查应第二输出")
	}
	if conflicts[2].Type != model.SeverityError {
		t.Error("无药师检查应最后输出")
	}
}
