package handler

import (
	"net/http"

	"github.com/paiban/yaofang/pkg/errors"
	"github.com/paiban/yaofang/pkg/model"
	"github.com/paiban/yaofang/pkg/planning"
)

// RuleDescription 单条规则描述
type RuleDescription struct {
	Name        string `json:"name"`
	Value       string `json:"value"`
	Description string `json:"description"`
}

// RulesResponse 规则清单响应
type RulesResponse struct {
	LegalRules    planning.LegalRules   `json:"legal_rules"`
	ScoreWeights  planning.ScoreWeights `json:"score_weights"`
	CategoryRoles map[string]string     `json:"category_roles"`
	Checks        []RuleDescription     `json:"checks"`
}

// RulesHandler 返回引擎当前生效的规则清单
// 法定参数可按辖区覆盖，这里暴露实际生效值供审计
func RulesHandler(gen *planning.Generator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			respondError(w, errors.New(errors.CodeInvalidInput, "仅支持GET方法"))
			return
		}

		rules := gen.Rules()
		resp := RulesResponse{
			LegalRules:   rules,
			ScoreWeights: planning.DefaultScoreWeights(),
			CategoryRoles: map[string]string{
				string(model.CategoryTitulaire):     model.RolePharmacien,
				string(model.CategoryAdjoint):       model.RolePharmacien,
				string(model.CategoryPreparateur):   model.RolePreparateur,
				string(model.CategoryConditionneur): model.RoleConditionneur,
				string(model.CategoryApprenti):      model.RoleApprenti,
				string(model.CategoryEtudiant):      model.RoleEtudiant,
			},
			Checks: []RuleDescription{
				{Name: "role_match", Value: "必须", Description: "员工类别必须映射到槽位角色"},
				{Name: "rest_days", Value: "有档案时检查", Description: "固定休息日不排班"},
				{Name: "unavailable_dates", Value: "有档案时检查", Description: "不可用日期不排班"},
				{Name: "no_double_booking", Value: "必须", Description: "同一天不重复分配同一模板"},
				{Name: "max_hours_per_day", Value: "10小时", Description: "单日工时硬上限"},
				{Name: "max_hours_per_week", Value: "48小时", Description: "单周工时法定硬上限"},
				{Name: "custom_weekly_cap", Value: "有档案时检查", Description: "约束档案的自定义周上限"},
				{Name: "pharmacist_presence", Value: "必须", Description: "每个营业日至少一名药师在岗"},
			},
		}

		respondJSON(w, http.StatusOK, resp)
	}
}
