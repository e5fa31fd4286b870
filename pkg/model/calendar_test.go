package model

import (
	"testing"
	"time"
)

func TestWeekdayIndex(t *testing.T) {
	tests := []struct {
		name     string
		date     string
		expected int
	}{
		{"周一", "2026-03-02", 0},
		{"周四", "2026-03-05", 3},
		{"周日", "2026-03-08", 6},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := ParseDate(tt.date)
			if err != nil {
				t.Fatalf("ParseDate() error = %v", err)
			}
			if result := WeekdayIndex(d); result != tt.expected {
				t.Errorf("WeekdayIndex() = %v, expected %v", result, tt.expected)
			}
		})
	}
}

func TestExpandDateRange(t *testing.T) {
	allDays := [7]bool{true, true, true, true, true, true, true}
	weekdaysOnly := [7]bool{true, true, true, true, true, false, false}

	tests := []struct {
		name       string
		start      string
		end        string
		activeDays [7]bool
		expected   []string
	}{
		{
			name:       "单日区间",
			start:      "2026-03-02",
			end:        "2026-03-02",
			activeDays: allDays,
			expected:   []string{"2026-03-02"},
		},
		{
			name:       "整周全开",
			start:      "2026-03-02",
			end:        "2026-03-08",
			activeDays: allDays,
			expected: []string{
				"2026-03-02", "2026-03-03", "2026-03-04", "2026-03-05",
				"2026-03-06", "2026-03-07", "2026-03-08",
			},
		},
		{
			name:       "周末不开放",
			start:      "2026-03-02",
			end:        "2026-03-08",
			activeDays: weekdaysOnly,
			expected:   []string{"2026-03-02", "2026-03-03", "2026-03-04", "2026-03-05", "2026-03-06"},
		},
		{
			name:       "掩码全关",
			start:      "2026-03-02",
			end:        "2026-03-08",
			activeDays: [7]bool{},
			expected:   nil,
		},
		{
			name:       "结束早于开始",
			start:      "2026-03-08",
			end:        "2026-03-02",
			activeDays: allDays,
			expected:   nil,
		},
		{
			name:       "日期格式无效",
			start:      "not-a-date",
			end:        "2026-03-02",
			activeDays: allDays,
			expected:   nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ExpandDateRange(tt.start, tt.end, tt.activeDays)
			if len(result) != len(tt.expected) {
				t.Fatalf("ExpandDateRange() 返回 %d 个日期, expected %d", len(result), len(tt.expected))
			}
			for i, d := range tt.expected {
				if result[i] != d {
					t.Errorf("ExpandDateRange()[%d] = %v, expected %v", i, result[i], d)
				}
			}
		})
	}
}

func TestISOWeekKey(t *testing.T) {
	tests := []struct {
		name     string
		date     string
		expected string
	}{
		{"年初属于第一周", "2026-01-01", "2026-W01"},
		{"跨年周归属上一ISO年", "2027-01-01", "2026-W53"},
		{"三月第十周", "2026-03-02", "2026-W10"},
		{"周日与周一同周", "2026-03-08", "2026-W10"},
		{"无效日期返回空", "bad-date", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if result := ISOWeekKey(tt.date); result != tt.expected {
				t.Errorf("ISOWeekKey(%s) = %v, expected %v", tt.date, result, tt.expected)
			}
		})
	}
}

func TestShiftTemplate_Hours(t *testing.T) {
	tests := []struct {
		name     string
		start    string
		end      string
		expected float64
	}{
		{"上午班4小时", "09:00", "13:00", 4.0},
		{"下午班5小时", "14:00", "19:00", 5.0},
		{"半小时粒度", "08:30", "12:00", 3.5},
		{"跨午夜班次", "22:00", "06:00", 8.0},
		{"时间格式无效", "bad", "13:00", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tmpl := &ShiftTemplate{StartTime: tt.start, EndTime: tt.end}
			if result := tmpl.Hours(); result != tt.expected {
				t.Errorf("Hours() = %v, expected %v", result, tt.expected)
			}
		})
	}
}

func TestCategory_Role(t *testing.T) {
	tests := []struct {
		category Category
		expected string
	}{
		{CategoryTitulaire, RolePharmacien},
		{CategoryAdjoint, RolePharmacien},
		{CategoryPreparateur, RolePreparateur},
		{CategoryConditionneur, RoleConditionneur},
		{CategoryApprenti, RoleApprenti},
		{CategoryEtudiant, RoleEtudiant},
		{Category("unknown"), ""},
	}

	for _, tt := range tests {
		if result := tt.category.Role(); result != tt.expected {
			t.Errorf("Role(%s) = %v, expected %v", tt.category, result, tt.expected)
		}
	}

	if !CategoryTitulaire.IsPharmacien() || !CategoryAdjoint.IsPharmacien() {
		t.Error("药师类别应该返回true")
	}
	if CategoryPreparateur.IsPharmacien() {
		t.Error("配药员不是药师")
	}
}

func TestParseDate_LocalCalendar(t *testing.T) {
	d, err := ParseDate("2026-03-02")
	if err != nil {
		t.Fatalf("ParseDate() error = %v", err)
	}
	if d.Location() != time.Local {
		t.Error("日期应使用本地时区解析")
	}
	if d.Format("2006-01-02") != "2026-03-02" {
		t.Errorf("日期往返 = %v", d.Format("2006-01-02"))
	}
}
