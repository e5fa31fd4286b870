package planning

import (
	"testing"

	"github.com/google/uuid"

	"github.com/paiban/yaofang/pkg/model"
)

func TestScorer_NeutralWithoutProfile(t *testing.T) {
	scorer := NewScorer(DefaultScoreWeights())
	tracker := NewWorkloadTracker()
	emp := newTestEmployee(model.CategoryPreparateur)
	slot := newTestSlot(model.RolePreparateur, 4)

	if score := scorer.Score(emp, slot, nil, tracker); score != 100 {
		t.Errorf("无约束档案应返回中性分100, got %v", score)
	}
}

func TestScorer_AllBonuses(t *testing.T) {
	scorer := NewScorer(DefaultScoreWeights())
	tracker := NewWorkloadTracker()

	emp := newTestEmployee(model.CategoryTitulaire)
	slot := newTestSlot(model.RolePharmacien, 4)

	constraint := &model.EmployeeConstraint{
		EmployeeID:      emp.ID,
		MinHoursPerWeek: 20,
		MaxHoursPerWeek: 35,
		PreferredShifts: []uuid.UUID{slot.Template.ID},
	}

	// 未达最低 20*20 + 剩余容量 35*10 + 偏好 50 + 执业药师 30 + 轮换 20*2 + 合同 15
	expected := 400.0 + 350 + 50 + 30 + 40 + 15
	if score := scorer.Score(emp, slot, constraint, tracker); score != expected {
		t.Errorf("Score() = %v, expected %v", score, expected)
	}
}

func TestScorer_HeadroomCanGoNegative(t *testing.T) {
	scorer := NewScorer(DefaultScoreWeights())
	emp := newTestEmployee(model.CategoryPreparateur)
	emp.ContractHours = 0
	slot := newTestSlot(model.RolePreparateur, 4)

	tracker := NewWorkloadTracker()
	for i := 0; i < 5; i++ {
		tracker.Record(emp.ID, slot.WeekKey, 8)
	}

	constraint := &model.EmployeeConstraint{
		EmployeeID:      emp.ID,
		MinHoursPerWeek: 10,
		MaxHoursPerWeek: 35,
	}

	// 已排40小时：未达最低为0，剩余容量 (35-40)*10 = -50，轮换 (20-5)*2 = 30
	expected := -50.0 + 30
	if score := scorer.Score(emp, slot, constraint, tracker); score != expected {
		t.Errorf("Score() = %v, expected %v", score, expected)
	}
}

func TestScorer_ContractRatio(t *testing.T) {
	scorer := NewScorer(DefaultScoreWeights())
	emp := newTestEmployee(model.CategoryPreparateur)
	emp.ContractHours = 30
	slot := newTestSlot(model.RolePreparateur, 4)

	tracker := NewWorkloadTracker()
	tracker.Record(emp.ID, slot.WeekKey, 15)

	constraint := &model.EmployeeConstraint{
		EmployeeID:      emp.ID,
		MinHoursPerWeek: 0,
		MaxHoursPerWeek: 48,
	}

	// 剩余容量 (48-15)*10 + 轮换 (20-1)*2 + 合同 ((30-15)/30)*15
	expected := 330.0 + 38 + 7.5
	if score := scorer.Score(emp, slot, constraint, tracker); score != expected {
		t.Errorf("Score() = %v, expected %v", score, expected)
	}
}
