// Package planning 实现药房排班的贪心生成引擎
package planning

// LegalRules 法定工时规则
// 默认值对应法国药房的劳动法规，可按辖区通过配置覆盖
type LegalRules struct {
	MaxHoursPerDay    float64 `json:"max_hours_per_day"`   // 单日最大工时
	MaxHoursPerWeek   float64 `json:"max_hours_per_week"`  // 单周最大工时（法定硬上限）
	MinHoursTolerance float64 `json:"min_hours_tolerance"` // 周最低工时的容忍系数
}

// DefaultLegalRules 返回默认法定规则
func DefaultLegalRules() LegalRules {
	return LegalRules{
		MaxHoursPerDay:    10,
		MaxHoursPerWeek:   48,
		MinHoursTolerance: 0.8,
	}
}

// ScoreWeights 优先级评分权重
// 启发式常量，无规范性依据，调整会改变贪心分配结果
type ScoreWeights struct {
	UnderMin       float64 `json:"under_min"`       // 未达周最低工时
	Headroom       float64 `json:"headroom"`        // 剩余周容量
	Preferred      float64 `json:"preferred"`       // 偏好班次
	CriticalRole   float64 `json:"critical_role"`   // 关键岗位（执业药师）
	Rotation       float64 `json:"rotation"`        // 轮换公平
	RotationTarget float64 `json:"rotation_target"` // 轮换基准班次数
	ContractRatio  float64 `json:"contract_ratio"`  // 合同工时完成度
	Neutral        float64 `json:"neutral"`         // 无约束档案时的中性分
}

// DefaultScoreWeights 返回默认评分权重
func DefaultScoreWeights() ScoreWeights {
	return ScoreWeights{
		UnderMin:       20,
		Headroom:       10,
		Preferred:      50,
		CriticalRole:   30,
		Rotation:       2,
		RotationTarget: 20,
		ContractRatio:  15,
		Neutral:        100,
	}
}
