package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/paiban/yaofang/internal/database"
	"github.com/paiban/yaofang/internal/metrics"
	"github.com/paiban/yaofang/internal/repository"
	"github.com/paiban/yaofang/pkg/errors"
	"github.com/paiban/yaofang/pkg/model"
	"github.com/paiban/yaofang/pkg/planning"
	"github.com/paiban/yaofang/pkg/validator"
)

// RosterStore 按库存数据排班所需的仓储集合
type RosterStore struct {
	Employees   *repository.EmployeeRepository
	Constraints *repository.ConstraintRepository
	Templates   *repository.ShiftTemplateRepository
}

// PlanningHandler 排班处理器
// repo 为空时以无状态模式运行，结果只返回不落库
type PlanningHandler struct {
	gen   *planning.Generator
	repo  *repository.PlanningRepository
	store *RosterStore
	tx    repository.TxRunner
}

// NewPlanningHandler 创建排班处理器
func NewPlanningHandler(gen *planning.Generator, repo *repository.PlanningRepository, store *RosterStore, tx repository.TxRunner) *PlanningHandler {
	return &PlanningHandler{gen: gen, repo: repo, store: store, tx: tx}
}

// GenerateRequest 排班生成请求
type GenerateRequest struct {
	StartDate   string                     `json:"start_date"`
	EndDate     string                     `json:"end_date"`
	ActiveDays  [7]bool                    `json:"active_days"` // 周一=0..周日=6
	Templates   []TemplateInput            `json:"templates"`
	Employees   []EmployeeInput            `json:"employees"`
	Constraints map[string]ConstraintInput `json:"constraints,omitempty"`
	Persist     bool                       `json:"persist,omitempty"` // 是否将结果写入数据库
}

// GenerateResponse 排班生成响应
type GenerateResponse struct {
	Success   bool                    `json:"success"`
	Shifts    []ShiftOutput           `json:"shifts"`
	Stats     *model.GenerationStats  `json:"stats"`
	Conflicts []model.Conflict        `json:"conflicts"`
	Duration  string                  `json:"duration"`
}

// ShiftOutput 班次输出
type ShiftOutput struct {
	ID           string  `json:"id"`
	Date         string  `json:"date"`
	TemplateID   string  `json:"template_id"`
	TemplateName string  `json:"template_name,omitempty"`
	EmployeeID   string  `json:"employee_id"`
	EmployeeName string  `json:"employee_name,omitempty"`
	Role         string  `json:"role"`
	StartTime    string  `json:"start_time"`
	EndTime      string  `json:"end_time"`
	Hours        float64 `json:"hours"`
}

// Generate 生成排班
func (h *PlanningHandler) Generate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		respondError(w, errors.New(errors.CodeInvalidInput, "仅支持POST方法"))
		return
	}

	var req GenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, errors.Wrap(err, errors.CodeInvalidInput, "解析请求失败"))
		return
	}

	if appErr := validateGenerateRequest(&req); appErr != nil {
		respondError(w, appErr)
		return
	}

	cfg, roster, maps, appErr := buildGenerateConfig(&req)
	if appErr != nil {
		respondError(w, appErr)
		return
	}

	started := time.Now()
	result := h.gen.Generate(cfg, roster)
	duration := time.Since(started)

	errorCount, warningCount := 0, 0
	for _, c := range result.Conflicts {
		switch c.Type {
		case model.SeverityError:
			errorCount++
		case model.SeverityWarning:
			warningCount++
		}
	}
	metrics.RecordGeneration(result.Success, errorCount, warningCount, duration)
	metrics.SetGenerationStats(result.Stats.CoverageRate, result.Stats.LegalCompliance, result.Stats.BalanceScore)

	// 仅在结果合法时落库，含 error 冲突的排班不持久化
	if req.Persist && h.repo != nil && result.Success {
		if appErr := h.persist(r.Context(), req.StartDate, req.EndDate, result.Shifts); appErr != nil {
			respondError(w, appErr)
			return
		}
	}

	respondJSON(w, http.StatusOK, buildGenerateResponse(result, maps, duration))
}

// StoredGenerateRequest 按库存数据排班请求
// 花名册、约束档案和班次模板从数据库读取，请求只携带周期参数
type StoredGenerateRequest struct {
	StartDate  string  `json:"start_date"`
	EndDate    string  `json:"end_date"`
	ActiveDays [7]bool `json:"active_days"`
	Persist    bool    `json:"persist,omitempty"`
}

// GenerateStored 按库存数据生成排班
func (h *PlanningHandler) GenerateStored(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		respondError(w, errors.New(errors.CodeInvalidInput, "仅支持POST方法"))
		return
	}
	if h.store == nil {
		respondError(w, errors.New(errors.CodeDatabaseError, "数据库不可用，无法按库存数据排班"))
		return
	}

	var req StoredGenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, errors.Wrap(err, errors.CodeInvalidInput, "解析请求失败"))
		return
	}
	if _, err := model.ParseDate(req.StartDate); err != nil {
		respondError(w, errors.InvalidInput("start_date", "日期格式无效，应为YYYY-MM-DD"))
		return
	}
	if _, err := model.ParseDate(req.EndDate); err != nil {
		respondError(w, errors.InvalidInput("end_date", "日期格式无效，应为YYYY-MM-DD"))
		return
	}

	ctx := r.Context()
	roster, err := h.store.Employees.ListActive(ctx)
	if err != nil {
		respondError(w, errors.Wrap(err, errors.CodeDatabaseError, "读取花名册失败"))
		return
	}
	constraints, err := h.store.Constraints.ListAll(ctx)
	if err != nil {
		respondError(w, errors.Wrap(err, errors.CodeDatabaseError, "读取约束档案失败"))
		return
	}
	templates, err := h.store.Templates.ListAll(ctx)
	if err != nil {
		respondError(w, errors.Wrap(err, errors.CodeDatabaseError, "读取班次模板失败"))
		return
	}

	maps := &nameMaps{
		employees: make(map[uuid.UUID]string, len(roster)),
		templates: make(map[uuid.UUID]string, len(templates)),
	}
	for _, emp := range roster {
		maps.employees[emp.ID] = emp.Name
	}
	for _, tmpl := range templates {
		maps.templates[tmpl.ID] = tmpl.Name
	}

	cfg := &model.GenerateConfig{
		Period: model.PeriodConfig{
			StartDate:  req.StartDate,
			EndDate:    req.EndDate,
			ActiveDays: req.ActiveDays,
		},
		Templates:   templates,
		Constraints: constraints,
	}

	started := time.Now()
	result := h.gen.Generate(cfg, roster)
	duration := time.Since(started)

	errorCount, warningCount := 0, 0
	for _, c := range result.Conflicts {
		switch c.Type {
		case model.SeverityError:
			errorCount++
		case model.SeverityWarning:
			warningCount++
		}
	}
	metrics.RecordGeneration(result.Success, errorCount, warningCount, duration)
	metrics.SetGenerationStats(result.Stats.CoverageRate, result.Stats.LegalCompliance, result.Stats.BalanceScore)

	if req.Persist && h.repo != nil && result.Success {
		if appErr := h.persist(ctx, req.StartDate, req.EndDate, result.Shifts); appErr != nil {
			respondError(w, appErr)
			return
		}
	}

	respondJSON(w, http.StatusOK, buildGenerateResponse(result, maps, duration))
}

// persist 在单个事务内清空旧排班并整批写入新结果
func (h *PlanningHandler) persist(ctx context.Context, startDate, endDate string, shifts []*model.GeneratedShift) *errors.AppError {
	if err := h.repo.ReplacePeriod(ctx, h.tx, startDate, endDate, shifts); err != nil {
		if database.IsUniqueViolation(err) {
			return errors.Wrap(err, errors.CodePlanningConflict, "排班与数据库中已有班次冲突")
		}
		return errors.Wrap(err, errors.CodeDatabaseError, "保存排班失败")
	}
	return nil
}

// buildGenerateResponse 组装生成响应
func buildGenerateResponse(result *model.Result, maps *nameMaps, duration time.Duration) GenerateResponse {
	resp := GenerateResponse{
		Success:   result.Success,
		Shifts:    make([]ShiftOutput, len(result.Shifts)),
		Stats:     result.Stats,
		Conflicts: result.Conflicts,
		Duration:  duration.String(),
	}
	for i, s := range result.Shifts {
		resp.Shifts[i] = ShiftOutput{
			ID:           s.ID.String(),
			Date:         s.Date,
			TemplateID:   s.TemplateID.String(),
			TemplateName: maps.templates[s.TemplateID],
			EmployeeID:   s.EmployeeID.String(),
			EmployeeName: maps.employees[s.EmployeeID],
			Role:         s.Role,
			StartTime:    s.StartTime,
			EndTime:      s.EndTime,
			Hours:        s.Hours,
		}
	}
	return resp
}

// ListShifts 查询数据库中某日期区间的排班
func (h *PlanningHandler) ListShifts(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		respondError(w, errors.New(errors.CodeInvalidInput, "仅支持GET方法"))
		return
	}
	if h.repo == nil {
		respondError(w, errors.New(errors.CodeDatabaseError, "数据库不可用"))
		return
	}

	q := r.URL.Query()
	startDate, endDate := q.Get("start_date"), q.Get("end_date")
	if _, err := model.ParseDate(startDate); err != nil {
		respondError(w, errors.InvalidInput("start_date", "日期格式无效，应为YYYY-MM-DD"))
		return
	}
	if _, err := model.ParseDate(endDate); err != nil {
		respondError(w, errors.InvalidInput("end_date", "日期格式无效，应为YYYY-MM-DD"))
		return
	}

	shifts, err := h.repo.ListByPeriod(r.Context(), startDate, endDate)
	if err != nil {
		respondError(w, errors.Wrap(err, errors.CodeDatabaseError, "查询排班失败"))
		return
	}
	if shifts == nil {
		shifts = []*model.GeneratedShift{}
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"shifts": shifts})
}

// ApplyReplacementRequest 替班改派请求
type ApplyReplacementRequest struct {
	ShiftID    string `json:"shift_id"`
	EmployeeID string `json:"employee_id"`
}

// ApplyReplacement 将数据库中的班次改派给替班人选
// 改派本身不做资格检查，调用方应先通过替班推荐接口获取合规人选
func (h *PlanningHandler) ApplyReplacement(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		respondError(w, errors.New(errors.CodeInvalidInput, "仅支持POST方法"))
		return
	}
	if h.repo == nil {
		respondError(w, errors.New(errors.CodeDatabaseError, "数据库不可用"))
		return
	}

	var req ApplyReplacementRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, errors.Wrap(err, errors.CodeInvalidInput, "解析请求失败"))
		return
	}
	shiftID, err := uuid.Parse(req.ShiftID)
	if err != nil {
		respondError(w, errors.Wrap(err, errors.CodeInvalidInput, "无效的班次ID格式"))
		return
	}
	empID, err := uuid.Parse(req.EmployeeID)
	if err != nil {
		respondError(w, errors.Wrap(err, errors.CodeInvalidInput, "无效的员工ID格式"))
		return
	}

	ctx := r.Context()
	if err := h.repo.ReplaceEmployee(ctx, shiftID, empID); err != nil {
		respondError(w, errors.Wrap(err, errors.CodeDatabaseError, "改派班次失败"))
		return
	}

	shift, err := h.repo.GetByID(ctx, shiftID)
	if err != nil {
		respondError(w, errors.Wrap(err, errors.CodeDatabaseError, "查询班次失败"))
		return
	}
	respondJSON(w, http.StatusOK, shift)
}

// nameMaps ID到名称的映射，仅用于响应展示
type nameMaps struct {
	employees map[uuid.UUID]string
	templates map[uuid.UUID]string
}

// buildGenerateConfig 从请求构建生成配置和花名册
func buildGenerateConfig(req *GenerateRequest) (*model.GenerateConfig, []*model.Employee, *nameMaps, *errors.AppError) {
	maps := &nameMaps{
		employees: make(map[uuid.UUID]string, len(req.Employees)),
		templates: make(map[uuid.UUID]string, len(req.Templates)),
	}

	roster := make([]*model.Employee, 0, len(req.Employees))
	for _, e := range req.Employees {
		emp, appErr := buildEmployee(e)
		if appErr != nil {
			return nil, nil, nil, appErr
		}
		roster = append(roster, emp)
		maps.employees[emp.ID] = emp.Name
	}

	templates := make([]*model.ShiftTemplate, 0, len(req.Templates))
	for _, t := range req.Templates {
		tmpl, appErr := buildTemplate(t)
		if appErr != nil {
			return nil, nil, nil, appErr
		}
		templates = append(templates, tmpl)
		maps.templates[tmpl.ID] = tmpl.Name
	}

	constraints, appErr := buildConstraints(req.Constraints)
	if appErr != nil {
		return nil, nil, nil, appErr
	}

	cfg := &model.GenerateConfig{
		Period: model.PeriodConfig{
			StartDate:  req.StartDate,
			EndDate:    req.EndDate,
			ActiveDays: req.ActiveDays,
		},
		Templates:   templates,
		Constraints: constraints,
	}
	return cfg, roster, maps, nil
}

// validateGenerateRequest 验证请求
func validateGenerateRequest(req *GenerateRequest) *errors.AppError {
	ve := &errors.ValidationErrors{}

	if req.StartDate == "" {
		ve.Add("start_date", "开始日期不能为空")
	}
	if req.EndDate == "" {
		ve.Add("end_date", "结束日期不能为空")
	}
	if len(req.Employees) == 0 {
		ve.Add("employees", "员工列表不能为空")
	}
	if len(req.Templates) == 0 {
		ve.Add("templates", "班次模板列表不能为空")
	}

	if req.StartDate != "" {
		if _, err := model.ParseDate(req.StartDate); err != nil {
			ve.Add("start_date", "日期格式无效，应为YYYY-MM-DD")
		}
	}
	if req.EndDate != "" {
		if _, err := model.ParseDate(req.EndDate); err != nil {
			ve.Add("end_date", "日期格式无效，应为YYYY-MM-DD")
		}
	}

	for _, t := range req.Templates {
		if _, err := time.Parse("15:04", t.StartTime); err != nil {
			ve.Add("templates", "班次模板时间格式无效，应为HH:MM")
			break
		}
		if _, err := time.Parse("15:04", t.EndTime); err != nil {
			ve.Add("templates", "班次模板时间格式无效，应为HH:MM")
			break
		}
	}

	if ve.HasErrors() {
		return ve.ToAppError()
	}
	return nil
}

// ValidateRequest 排班验证请求
type ValidateRequest struct {
	Shifts      []ShiftInput               `json:"shifts"`
	Employees   []EmployeeInput            `json:"employees"`
	Constraints map[string]ConstraintInput `json:"constraints,omitempty"`
}

// ShiftInput 已有班次输入
type ShiftInput struct {
	ID         string  `json:"id,omitempty"`
	Date       string  `json:"date"`
	TemplateID string  `json:"template_id"`
	EmployeeID string  `json:"employee_id"`
	Role       string  `json:"role"`
	StartTime  string  `json:"start_time"`
	EndTime    string  `json:"end_time"`
	Hours      float64 `json:"hours"`
}

// ValidateResponse 验证响应
type ValidateResponse struct {
	IsValid   bool             `json:"is_valid"`
	Conflicts []model.Conflict `json:"conflicts"`
}

// Validate 对已有排班执行法规校验
func (h *PlanningHandler) Validate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		respondError(w, errors.New(errors.CodeInvalidInput, "仅支持POST方法"))
		return
	}

	var req ValidateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, errors.Wrap(err, errors.CodeInvalidInput, "解析请求失败"))
		return
	}

	roster := make([]*model.Employee, 0, len(req.Employees))
	for _, e := range req.Employees {
		emp, appErr := buildEmployee(e)
		if appErr != nil {
			respondError(w, appErr)
			return
		}
		roster = append(roster, emp)
	}

	shifts, appErr := buildShifts(req.Shifts)
	if appErr != nil {
		respondError(w, appErr)
		return
	}

	constraints, appErr := buildConstraints(req.Constraints)
	if appErr != nil {
		respondError(w, appErr)
		return
	}

	rules := h.gen.Rules()
	legal := validator.New(validator.Config{
		MaxHoursPerDay:    rules.MaxHoursPerDay,
		MaxHoursPerWeek:   rules.MaxHoursPerWeek,
		MinHoursTolerance: rules.MinHoursTolerance,
	})
	conflicts := legal.Validate(shifts, roster, constraints)

	isValid := true
	for _, c := range conflicts {
		if c.Type == model.SeverityError {
			isValid = false
			break
		}
	}
	if conflicts == nil {
		conflicts = []model.Conflict{}
	}

	respondJSON(w, http.StatusOK, ValidateResponse{IsValid: isValid, Conflicts: conflicts})
}

// buildShifts 将输入转换为班次列表
func buildShifts(in []ShiftInput) ([]*model.GeneratedShift, *errors.AppError) {
	shifts := make([]*model.GeneratedShift, 0, len(in))
	for _, s := range in {
		empID, err := uuid.Parse(s.EmployeeID)
		if err != nil {
			return nil, errors.Wrap(err, errors.CodeInvalidInput, "无效的员工ID格式: "+s.EmployeeID)
		}
		tmplID, err := uuid.Parse(s.TemplateID)
		if err != nil {
			return nil, errors.Wrap(err, errors.CodeInvalidInput, "无效的班次模板ID格式: "+s.TemplateID)
		}
		id := uuid.New()
		if s.ID != "" {
			parsed, err := uuid.Parse(s.ID)
			if err != nil {
				return nil, errors.Wrap(err, errors.CodeInvalidInput, "无效的班次ID格式: "+s.ID)
			}
			id = parsed
		}
		shifts = append(shifts, &model.GeneratedShift{
			ID:         id,
			Date:       s.Date,
			TemplateID: tmplID,
			EmployeeID: empID,
			Role:       s.Role,
			StartTime:  s.StartTime,
			EndTime:    s.EndTime,
			Hours:      s.Hours,
		})
	}
	return shifts, nil
}
