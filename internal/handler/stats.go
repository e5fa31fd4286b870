package handler

import (
	"encoding/json"
	"net/http"

	"github.com/paiban/yaofang/pkg/errors"
	"github.com/paiban/yaofang/pkg/model"
	"github.com/paiban/yaofang/pkg/stats"
)

// WorkloadRequest 工时报表请求
type WorkloadRequest struct {
	Shifts    []ShiftInput    `json:"shifts"`
	Employees []EmployeeInput `json:"employees"`
}

// WorkloadHandler 处理工时报表请求
func WorkloadHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		respondError(w, errors.New(errors.CodeInvalidInput, "仅支持POST方法"))
		return
	}

	var req WorkloadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, errors.Wrap(err, errors.CodeInvalidInput, "解析请求失败"))
		return
	}

	if len(req.Employees) == 0 {
		respondError(w, errors.New(errors.CodeInvalidInput, "员工列表不能为空"))
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

	report := stats.BuildWorkloadReport(shifts, roster)
	respondJSON(w, http.StatusOK, report)
}
