package handler

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/paiban/yaofang/internal/repository"
	"github.com/paiban/yaofang/pkg/errors"
	"github.com/paiban/yaofang/pkg/model"
)

// RosterHandler 花名册管理处理器
// 员工、约束档案和班次模板的增删改查，为按库存数据排班提供数据源
type RosterHandler struct {
	employees   *repository.EmployeeRepository
	constraints *repository.ConstraintRepository
	templates   *repository.ShiftTemplateRepository
}

// NewRosterHandler 创建花名册管理处理器
func NewRosterHandler(
	employees *repository.EmployeeRepository,
	constraints *repository.ConstraintRepository,
	templates *repository.ShiftTemplateRepository,
) *RosterHandler {
	return &RosterHandler{
		employees:   employees,
		constraints: constraints,
		templates:   templates,
	}
}

// EmployeeListResponse 员工列表响应
type EmployeeListResponse struct {
	Employees []*model.Employee `json:"employees"`
	Total     int               `json:"total"`
}

// Employees 处理员工集合请求（GET列表 / POST创建）
func (h *RosterHandler) Employees(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		filter := repository.DefaultListFilter()
		q := r.URL.Query()
		if status := q.Get("status"); status != "" {
			filter = filter.WithStatus(status)
		}
		if search := q.Get("search"); search != "" {
			filter.Search = search
		}
		if limit, err := strconv.Atoi(q.Get("limit")); err == nil && limit > 0 {
			filter = filter.WithLimit(limit)
		}
		if offset, err := strconv.Atoi(q.Get("offset")); err == nil && offset > 0 {
			filter.Offset = offset
		}

		employees, total, err := h.employees.List(r.Context(), filter)
		if err != nil {
			respondError(w, errors.Wrap(err, errors.CodeDatabaseError, "查询员工列表失败"))
			return
		}
		if employees == nil {
			employees = []*model.Employee{}
		}
		respondJSON(w, http.StatusOK, EmployeeListResponse{Employees: employees, Total: total})

	case http.MethodPost:
		var in EmployeeInput
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			respondError(w, errors.Wrap(err, errors.CodeInvalidInput, "解析请求失败"))
			return
		}
		if appErr := validateEmployeeInput(&in); appErr != nil {
			respondError(w, appErr)
			return
		}

		emp := &model.Employee{
			Name:          in.Name,
			Code:          in.Code,
			Category:      model.Category(in.Category),
			ContractHours: in.ContractHours,
			Status:        in.Status,
		}
		if emp.Status == "" {
			emp.Status = "active"
		}
		if in.ID != "" {
			id, err := uuid.Parse(in.ID)
			if err != nil {
				respondError(w, errors.Wrap(err, errors.CodeInvalidInput, "无效的员工ID格式: "+in.ID))
				return
			}
			emp.ID = id
		}

		if err := h.employees.Create(r.Context(), emp); err != nil {
			respondError(w, errors.Wrap(err, errors.CodeDatabaseError, "创建员工失败"))
			return
		}
		respondJSON(w, http.StatusCreated, emp)

	default:
		respondError(w, errors.New(errors.CodeInvalidInput, "仅支持GET和POST方法"))
	}
}

// EmployeeByID 处理单个员工请求（GET / PUT / DELETE）
func (h *RosterHandler) EmployeeByID(w http.ResponseWriter, r *http.Request) {
	id, appErr := parsePathID(r.URL.Path, "/api/v1/employees/")
	if appErr != nil {
		respondError(w, appErr)
		return
	}

	switch r.Method {
	case http.MethodGet:
		emp, err := h.employees.GetByID(r.Context(), id)
		if err != nil {
			respondError(w, errors.Wrap(err, errors.CodeDatabaseError, "查询员工失败"))
			return
		}
		if emp == nil {
			respondError(w, errors.NotFound("员工", id.String()))
			return
		}
		respondJSON(w, http.StatusOK, emp)

	case http.MethodPut:
		var in EmployeeInput
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			respondError(w, errors.Wrap(err, errors.CodeInvalidInput, "解析请求失败"))
			return
		}
		if appErr := validateEmployeeInput(&in); appErr != nil {
			respondError(w, appErr)
			return
		}

		emp := &model.Employee{
			BaseModel:     model.BaseModel{ID: id},
			Name:          in.Name,
			Code:          in.Code,
			Category:      model.Category(in.Category),
			ContractHours: in.ContractHours,
			Status:        in.Status,
		}
		if emp.Status == "" {
			emp.Status = "active"
		}
		if err := h.employees.Update(r.Context(), emp); err != nil {
			respondError(w, errors.Wrap(err, errors.CodeDatabaseError, "更新员工失败"))
			return
		}
		respondJSON(w, http.StatusOK, emp)

	case http.MethodDelete:
		if err := h.employees.Delete(r.Context(), id); err != nil {
			respondError(w, errors.Wrap(err, errors.CodeDatabaseError, "删除员工失败"))
			return
		}
		respondJSON(w, http.StatusOK, map[string]bool{"deleted": true})

	default:
		respondError(w, errors.New(errors.CodeInvalidInput, "仅支持GET、PUT和DELETE方法"))
	}
}

// ConstraintUpsertRequest 约束档案写入请求
type ConstraintUpsertRequest struct {
	EmployeeID string `json:"employee_id"`
	ConstraintInput
}

// Constraints 处理约束档案请求（GET全部 / PUT写入）
func (h *RosterHandler) Constraints(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		constraints, err := h.constraints.ListAll(r.Context())
		if err != nil {
			respondError(w, errors.Wrap(err, errors.CodeDatabaseError, "查询约束档案失败"))
			return
		}
		out := make(map[string]*model.EmployeeConstraint, len(constraints))
		for id, c := range constraints {
			out[id.String()] = c
		}
		respondJSON(w, http.StatusOK, map[string]interface{}{"constraints": out})

	case http.MethodPut:
		var req ConstraintUpsertRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, errors.Wrap(err, errors.CodeInvalidInput, "解析请求失败"))
			return
		}
		empID, err := uuid.Parse(req.EmployeeID)
		if err != nil {
			respondError(w, errors.Wrap(err, errors.CodeInvalidInput, "无效的员工ID格式: "+req.EmployeeID))
			return
		}

		constraint := &model.EmployeeConstraint{
			EmployeeID:       empID,
			MinHoursPerWeek:  req.MinHoursPerWeek,
			MaxHoursPerWeek:  req.MaxHoursPerWeek,
			UnavailableDates: req.UnavailableDates,
			RestDays:         req.RestDays,
		}
		for _, s := range req.PreferredShifts {
			id, err := uuid.Parse(s)
			if err != nil {
				respondError(w, errors.Wrap(err, errors.CodeInvalidInput, "无效的班次模板ID格式: "+s))
				return
			}
			constraint.PreferredShifts = append(constraint.PreferredShifts, id)
		}

		if err := h.constraints.Upsert(r.Context(), constraint); err != nil {
			respondError(w, errors.Wrap(err, errors.CodeDatabaseError, "写入约束档案失败"))
			return
		}
		respondJSON(w, http.StatusOK, constraint)

	default:
		respondError(w, errors.New(errors.CodeInvalidInput, "仅支持GET和PUT方法"))
	}
}

// Templates 处理班次模板集合请求（GET列表 / POST创建）
func (h *RosterHandler) Templates(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		templates, err := h.templates.ListAll(r.Context())
		if err != nil {
			respondError(w, errors.Wrap(err, errors.CodeDatabaseError, "查询班次模板失败"))
			return
		}
		if templates == nil {
			templates = []*model.ShiftTemplate{}
		}
		respondJSON(w, http.StatusOK, map[string]interface{}{"templates": templates})

	case http.MethodPost:
		var in TemplateInput
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			respondError(w, errors.Wrap(err, errors.CodeInvalidInput, "解析请求失败"))
			return
		}
		tmpl, appErr := buildStoredTemplate(in)
		if appErr != nil {
			respondError(w, appErr)
			return
		}
		if err := h.templates.Create(r.Context(), tmpl); err != nil {
			respondError(w, errors.Wrap(err, errors.CodeDatabaseError, "创建班次模板失败"))
			return
		}
		respondJSON(w, http.StatusCreated, tmpl)

	default:
		respondError(w, errors.New(errors.CodeInvalidInput, "仅支持GET和POST方法"))
	}
}

// TemplateByID 处理单个班次模板请求（GET / PUT / DELETE）
func (h *RosterHandler) TemplateByID(w http.ResponseWriter, r *http.Request) {
	id, appErr := parsePathID(r.URL.Path, "/api/v1/templates/")
	if appErr != nil {
		respondError(w, appErr)
		return
	}

	switch r.Method {
	case http.MethodGet:
		tmpl, err := h.templates.GetByID(r.Context(), id)
		if err != nil {
			respondError(w, errors.Wrap(err, errors.CodeDatabaseError, "查询班次模板失败"))
			return
		}
		if tmpl == nil {
			respondError(w, errors.NotFound("班次模板", id.String()))
			return
		}
		respondJSON(w, http.StatusOK, tmpl)

	case http.MethodPut:
		var in TemplateInput
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			respondError(w, errors.Wrap(err, errors.CodeInvalidInput, "解析请求失败"))
			return
		}
		tmpl, appErr := buildStoredTemplate(in)
		if appErr != nil {
			respondError(w, appErr)
			return
		}
		tmpl.ID = id
		if err := h.templates.Update(r.Context(), tmpl); err != nil {
			respondError(w, errors.Wrap(err, errors.CodeDatabaseError, "更新班次模板失败"))
			return
		}
		respondJSON(w, http.StatusOK, tmpl)

	case http.MethodDelete:
		if err := h.templates.Delete(r.Context(), id); err != nil {
			respondError(w, errors.Wrap(err, errors.CodeDatabaseError, "删除班次模板失败"))
			return
		}
		respondJSON(w, http.StatusOK, map[string]bool{"deleted": true})

	default:
		respondError(w, errors.New(errors.CodeInvalidInput, "仅支持GET、PUT和DELETE方法"))
	}
}

// parsePathID 从URL路径中提取末段的UUID
func parsePathID(path, prefix string) (uuid.UUID, *errors.AppError) {
	raw := strings.TrimPrefix(path, prefix)
	raw = strings.TrimSuffix(raw, "/")
	if raw == "" || strings.Contains(raw, "/") {
		return uuid.Nil, errors.New(errors.CodeInvalidInput, "路径中缺少有效的资源ID")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, errors.Wrap(err, errors.CodeInvalidInput, "无效的资源ID格式: "+raw)
	}
	return id, nil
}

// validateEmployeeInput 验证员工输入
func validateEmployeeInput(in *EmployeeInput) *errors.AppError {
	ve := &errors.ValidationErrors{}
	if in.Name == "" {
		ve.Add("name", "姓名不能为空")
	}
	if model.Category(in.Category).Role() == "" {
		ve.Add("category", "未知的员工类别: "+in.Category)
	}
	if in.ContractHours < 0 {
		ve.Add("contract_hours", "合同工时不能为负数")
	}
	if ve.HasErrors() {
		return ve.ToAppError()
	}
	return nil
}

// buildStoredTemplate 将输入转换为待落库的班次模板
// 与 buildTemplate 不同，ID 允许为空，由仓储生成
func buildStoredTemplate(in TemplateInput) (*model.ShiftTemplate, *errors.AppError) {
	ve := &errors.ValidationErrors{}
	if in.Name == "" {
		ve.Add("name", "模板名称不能为空")
	}
	if len(in.Roles) == 0 {
		ve.Add("roles", "角色要求列表不能为空")
	}
	if ve.HasErrors() {
		return nil, ve.ToAppError()
	}

	tmpl := &model.ShiftTemplate{
		Name:      in.Name,
		StartTime: in.StartTime,
		EndTime:   in.EndTime,
	}
	if in.ID != "" {
		id, err := uuid.Parse(in.ID)
		if err != nil {
			return nil, errors.Wrap(err, errors.CodeInvalidInput, "无效的班次模板ID格式: "+in.ID)
		}
		tmpl.ID = id
	}
	for _, r := range in.Roles {
		tmpl.Roles = append(tmpl.Roles, model.RoleRequirement{Role: r.Role, Min: r.Min, Max: r.Max})
	}
	if tmpl.Hours() <= 0 {
		return nil, errors.InvalidInput("start_time/end_time", "时间格式无效，应为HH:MM")
	}
	return tmpl, nil
}
