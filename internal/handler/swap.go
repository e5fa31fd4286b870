package handler

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"

	"github.com/paiban/yaofang/pkg/errors"
	"github.com/paiban/yaofang/pkg/model"
	"github.com/paiban/yaofang/pkg/planning"
	"github.com/paiban/yaofang/pkg/swap"
)

// ReplacementHandler 替班推荐处理器
type ReplacementHandler struct {
	recommender *swap.Recommender
}

// NewReplacementHandler 创建替班推荐处理器
func NewReplacementHandler(rules planning.LegalRules, weights planning.ScoreWeights) *ReplacementHandler {
	return &ReplacementHandler{
		recommender: swap.NewRecommender(rules, weights),
	}
}

// ReplacementRequest 替班推荐请求
type ReplacementRequest struct {
	ShiftID     string                     `json:"shift_id"` // 需要替班的班次
	Shifts      []ShiftInput               `json:"shifts"`   // 当前周期的全部排班
	Template    TemplateInput              `json:"template"`
	Employees   []EmployeeInput            `json:"employees"`
	Constraints map[string]ConstraintInput `json:"constraints,omitempty"`
	Limit       int                        `json:"limit,omitempty"`
}

// ReplacementResponse 替班推荐响应
type ReplacementResponse struct {
	Recommendations []ReplacementOutput `json:"recommendations"`
}

// ReplacementOutput 单条推荐输出
type ReplacementOutput struct {
	EmployeeID   string  `json:"employee_id"`
	EmployeeName string  `json:"employee_name"`
	Score        float64 `json:"score"`
	Reason       string  `json:"reason"`
	Rank         int     `json:"rank"`
}

// Suggest 为指定班次推荐替班人选
func (h *ReplacementHandler) Suggest(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		respondError(w, errors.New(errors.CodeInvalidInput, "仅支持POST方法"))
		return
	}

	var req ReplacementRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, errors.Wrap(err, errors.CodeInvalidInput, "解析请求失败"))
		return
	}

	shiftID, err := uuid.Parse(req.ShiftID)
	if err != nil {
		respondError(w, errors.Wrap(err, errors.CodeInvalidInput, "无效的班次ID格式"))
		return
	}

	shifts, appErr := buildShifts(req.Shifts)
	if appErr != nil {
		respondError(w, appErr)
		return
	}

	var target *model.GeneratedShift
	for _, s := range shifts {
		if s.ID == shiftID {
			target = s
			break
		}
	}
	if target == nil {
		respondError(w, errors.NotFound("班次", req.ShiftID))
		return
	}

	template, appErr := buildTemplate(req.Template)
	if appErr != nil {
		respondError(w, appErr)
		return
	}

	roster := make([]*model.Employee, 0, len(req.Employees))
	for _, e := range req.Employees {
		emp, buildErr := buildEmployee(e)
		if buildErr != nil {
			respondError(w, buildErr)
			return
		}
		roster = append(roster, emp)
	}

	constraints, appErr := buildConstraints(req.Constraints)
	if appErr != nil {
		respondError(w, appErr)
		return
	}

	options := swap.DefaultOptions()
	if req.Limit > 0 {
		options.MaxRecommendations = req.Limit
	}

	recommendations := h.recommender.SuggestReplacements(target, template, roster, constraints, shifts, options)

	resp := ReplacementResponse{Recommendations: make([]ReplacementOutput, len(recommendations))}
	for i, rec := range recommendations {
		resp.Recommendations[i] = ReplacementOutput{
			EmployeeID:   rec.Employee.ID.String(),
			EmployeeName: rec.Employee.Name,
			Score:        rec.Score,
			Reason:       rec.Reason,
			Rank:         rec.Rank,
		}
	}

	respondJSON(w, http.StatusOK, resp)
}
