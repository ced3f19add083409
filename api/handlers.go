/*
handlers.go - HTTP API handlers for the payroll engine

PURPOSE:
  Exposes employees, shifts, templates, settings and payroll reports via
  REST. Handles HTTP request/response and JSON serialization, and delegates
  to the payroll package.

ENDPOINTS:
  Employees:
    GET    /api/employees                       List (?all=true includes inactive)
    POST   /api/employees                       Create employee
    GET    /api/employees/{id}                  Get employee
    PUT    /api/employees/{id}                  Update employee
    DELETE /api/employees/{id}                  Deactivate (?hard=true deletes with shifts)

  Shifts:
    GET    /api/employees/{id}/shifts           Shifts in ?start&end
    PUT    /api/employees/{id}/shifts/{date}    Set the shift for a day
    DELETE /api/employees/{id}/shifts/{date}    Remove the shift for a day
    GET    /api/shifts                          All shifts in ?start&end
    DELETE /api/shifts                          Clear all shifts in ?start&end

  Templates, settings, periods:
    GET/POST       /api/templates
    PUT/DELETE     /api/templates/{id}
    GET/PUT        /api/settings
    GET            /api/periods/week?date, /api/periods/biweekly?date
    GET            /api/hours?start&end&lunch_start&lunch_end

  Payroll:
    GET    /api/payroll                         Report for ?period&date or ?start&end
    GET    /api/payroll/export.csv              Same, as payroll CSV
    GET    /api/payroll/schedule.csv            Same, as schedule grid CSV
    GET    /api/employees/{id}/payroll          One employee

  Scheduler:
    GET    /api/scheduler/runs                  Period-close history
    POST   /api/scheduler/run                   Close the last period now

ERROR HANDLING:
  Errors are returned as JSON ErrorResponse with:
  - 400: Invalid input (times, dates, periods, settings)
  - 404: Unknown employee, template or shift
  - 500: Storage failures

SECURITY NOTE:
  No authentication or authorization. All endpoints are public.

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
*/
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/warp/payroll-engine/export"
	"github.com/warp/payroll-engine/payroll"
	"github.com/warp/payroll-engine/scheduler"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store  payroll.Store
	Calc   *payroll.Calculator
	Closer *scheduler.PeriodCloser // nil when the period-close job is disabled

	logger *zap.Logger
	now    func() time.Time
}

// NewHandler creates a new handler over store, computing payroll with calc.
func NewHandler(store payroll.Store, calc *payroll.Calculator, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		Store:  store,
		Calc:   calc,
		logger: logger,
		now:    time.Now,
	}
}

func (h *Handler) today() payroll.Date {
	return payroll.DateOf(h.now())
}

// =============================================================================
// EMPLOYEE HANDLERS
// =============================================================================

// ListEmployees returns active employees, or all with ?all=true.
func (h *Handler) ListEmployees(w http.ResponseWriter, r *http.Request) {
	all, _ := strconv.ParseBool(r.URL.Query().Get("all"))

	employees, err := h.Store.ListEmployees(r.Context(), !all)
	if err != nil {
		h.fail(w, "Failed to list employees", err)
		return
	}

	dtos := make([]EmployeeDTO, len(employees))
	for i, e := range employees {
		dtos[i] = toEmployeeDTO(e)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateEmployee adds an active employee with a generated ID.
func (h *Handler) CreateEmployee(w http.ResponseWriter, r *http.Request) {
	var req EmployeeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.Name == nil || strings.TrimSpace(*req.Name) == "" {
		writeError(w, http.StatusBadRequest, "name is required", nil)
		return
	}

	emp := payroll.Employee{
		ID:         payroll.EmployeeID(uuid.NewString()),
		HourlyRate: decimal.NewFromInt(10),
		IsActive:   true,
	}
	if msg := applyEmployee(&emp, req); msg != "" {
		writeError(w, http.StatusBadRequest, msg, nil)
		return
	}

	if err := h.Store.SaveEmployee(r.Context(), emp); err != nil {
		h.fail(w, "Failed to create employee", err)
		return
	}
	writeJSON(w, http.StatusCreated, toEmployeeDTO(emp))
}

// GetEmployee returns a single employee.
func (h *Handler) GetEmployee(w http.ResponseWriter, r *http.Request) {
	emp, ok := h.loadEmployee(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, toEmployeeDTO(*emp))
}

// UpdateEmployee changes the given fields of an existing employee.
func (h *Handler) UpdateEmployee(w http.ResponseWriter, r *http.Request) {
	emp, ok := h.loadEmployee(w, r)
	if !ok {
		return
	}

	var req EmployeeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if msg := applyEmployee(emp, req); msg != "" {
		writeError(w, http.StatusBadRequest, msg, nil)
		return
	}

	if err := h.Store.SaveEmployee(r.Context(), *emp); err != nil {
		h.fail(w, "Failed to update employee", err)
		return
	}
	writeJSON(w, http.StatusOK, toEmployeeDTO(*emp))
}

// DeleteEmployee deactivates an employee, or removes them and their shifts
// with ?hard=true.
func (h *Handler) DeleteEmployee(w http.ResponseWriter, r *http.Request) {
	id := payroll.EmployeeID(chi.URLParam(r, "id"))
	hard, _ := strconv.ParseBool(r.URL.Query().Get("hard"))

	if err := h.Store.DeleteEmployee(r.Context(), id, hard); err != nil {
		h.fail(w, "Failed to delete employee", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) loadEmployee(w http.ResponseWriter, r *http.Request) (*payroll.Employee, bool) {
	id := payroll.EmployeeID(chi.URLParam(r, "id"))
	emp, err := h.Store.GetEmployee(r.Context(), id)
	if err != nil {
		h.fail(w, "Failed to get employee", err)
		return nil, false
	}
	if emp == nil {
		h.fail(w, "Employee not found", &payroll.EmployeeNotFoundError{ID: id})
		return nil, false
	}
	return emp, true
}

// applyEmployee merges req into emp, returning a validation message.
func applyEmployee(emp *payroll.Employee, req EmployeeRequest) string {
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return "name must not be empty"
		}
		emp.Name = name
	}
	if req.HourlyRate != nil {
		if *req.HourlyRate < 0 {
			return "hourly_rate must not be negative"
		}
		emp.HourlyRate = decimal.NewFromFloat(*req.HourlyRate)
	}
	if req.IsActive != nil {
		emp.IsActive = *req.IsActive
	}
	return ""
}

// =============================================================================
// SHIFT HANDLERS
// =============================================================================

// ListEmployeeShifts returns one employee's shifts in ?start&end.
func (h *Handler) ListEmployeeShifts(w http.ResponseWriter, r *http.Request) {
	emp, ok := h.loadEmployee(w, r)
	if !ok {
		return
	}
	period, err := h.rangeFromQuery(r)
	if err != nil {
		h.fail(w, "Invalid date range", err)
		return
	}

	shifts, err := h.Store.ShiftsForEmployee(r.Context(), emp.ID, period.Start, period.End)
	if err != nil {
		h.fail(w, "Failed to list shifts", err)
		return
	}

	dtos := make([]ShiftDTO, len(shifts))
	for i, s := range shifts {
		dtos[i] = toShiftDTO(s, emp.Name)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// PutShift creates or replaces an employee's shift for a day.
func (h *Handler) PutShift(w http.ResponseWriter, r *http.Request) {
	emp, ok := h.loadEmployee(w, r)
	if !ok {
		return
	}
	date, err := payroll.ParseDate(chi.URLParam(r, "date"))
	if err != nil {
		h.fail(w, "Invalid date", err)
		return
	}

	var req ShiftRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	shift, err := h.buildShift(r.Context(), emp.ID, date, req)
	if err != nil {
		h.fail(w, "Invalid shift", err)
		return
	}

	if err := h.Store.SaveShift(r.Context(), shift); err != nil {
		h.fail(w, "Failed to save shift", err)
		return
	}
	writeJSON(w, http.StatusOK, toShiftDTO(shift, emp.Name))
}

func (h *Handler) buildShift(ctx context.Context, id payroll.EmployeeID, date payroll.Date, req ShiftRequest) (payroll.Shift, error) {
	if req.TemplateID != "" {
		tmpl, err := h.Store.GetTemplate(ctx, payroll.TemplateID(req.TemplateID))
		if err != nil {
			return payroll.Shift{}, err
		}
		if tmpl == nil {
			return payroll.Shift{}, fmt.Errorf("%w: %s", payroll.ErrTemplateNotFound, req.TemplateID)
		}
		return tmpl.Apply(id, date), nil
	}

	start, err := payroll.ParseTimeOfDay(req.StartTime)
	if err != nil {
		return payroll.Shift{}, err
	}
	end, err := payroll.ParseTimeOfDay(req.EndTime)
	if err != nil {
		return payroll.Shift{}, err
	}
	lunch, err := payroll.ParseLunch(req.LunchStart, req.LunchEnd)
	if err != nil {
		return payroll.Shift{}, err
	}
	if lunch == nil && req.AutoLunch {
		lunch = payroll.DefaultLunch(start, end)
	}

	return payroll.Shift{EmployeeID: id, Date: date, Start: start, End: end, Lunch: lunch}, nil
}

// DeleteShift removes an employee's shift for a day.
func (h *Handler) DeleteShift(w http.ResponseWriter, r *http.Request) {
	id := payroll.EmployeeID(chi.URLParam(r, "id"))
	date, err := payroll.ParseDate(chi.URLParam(r, "date"))
	if err != nil {
		h.fail(w, "Invalid date", err)
		return
	}

	if err := h.Store.DeleteShift(r.Context(), id, date); err != nil {
		h.fail(w, "Failed to delete shift", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListShifts returns every shift in ?start&end, by date then employee name.
func (h *Handler) ListShifts(w http.ResponseWriter, r *http.Request) {
	period, err := h.rangeFromQuery(r)
	if err != nil {
		h.fail(w, "Invalid date range", err)
		return
	}

	shifts, err := h.Store.ShiftsInRange(r.Context(), period.Start, period.End)
	if err != nil {
		h.fail(w, "Failed to list shifts", err)
		return
	}
	names, err := h.employeeNames(r.Context())
	if err != nil {
		h.fail(w, "Failed to list employees", err)
		return
	}

	dtos := make([]ShiftDTO, len(shifts))
	for i, s := range shifts {
		dtos[i] = toShiftDTO(s, names[s.EmployeeID])
	}
	writeJSON(w, http.StatusOK, dtos)
}

// ClearShifts deletes every shift in ?start&end. Both bounds are required.
func (h *Handler) ClearShifts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if q.Get("start") == "" || q.Get("end") == "" {
		writeError(w, http.StatusBadRequest, "start and end are required", nil)
		return
	}
	period, err := h.rangeFromQuery(r)
	if err != nil {
		h.fail(w, "Invalid date range", err)
		return
	}

	n, err := h.Store.ClearShifts(r.Context(), period.Start, period.End)
	if err != nil {
		h.fail(w, "Failed to clear shifts", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"deleted": n})
}

func (h *Handler) employeeNames(ctx context.Context) (map[payroll.EmployeeID]string, error) {
	employees, err := h.Store.ListEmployees(ctx, false)
	if err != nil {
		return nil, err
	}
	names := make(map[payroll.EmployeeID]string, len(employees))
	for _, e := range employees {
		names[e.ID] = e.Name
	}
	return names, nil
}

// =============================================================================
// TEMPLATE HANDLERS
// =============================================================================

// ListTemplates returns all shift templates ordered by start time.
func (h *Handler) ListTemplates(w http.ResponseWriter, r *http.Request) {
	templates, err := h.Store.ListTemplates(r.Context())
	if err != nil {
		h.fail(w, "Failed to list templates", err)
		return
	}

	dtos := make([]TemplateDTO, len(templates))
	for i, t := range templates {
		dtos[i] = toTemplateDTO(t)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateTemplate adds a template with a generated ID.
func (h *Handler) CreateTemplate(w http.ResponseWriter, r *http.Request) {
	h.saveTemplate(w, r, payroll.TemplateID(uuid.NewString()), http.StatusCreated)
}

// UpdateTemplate replaces an existing template.
func (h *Handler) UpdateTemplate(w http.ResponseWriter, r *http.Request) {
	id := payroll.TemplateID(chi.URLParam(r, "id"))
	existing, err := h.Store.GetTemplate(r.Context(), id)
	if err != nil {
		h.fail(w, "Failed to get template", err)
		return
	}
	if existing == nil {
		h.fail(w, "Template not found", payroll.ErrTemplateNotFound)
		return
	}
	h.saveTemplate(w, r, id, http.StatusOK)
}

func (h *Handler) saveTemplate(w http.ResponseWriter, r *http.Request, id payroll.TemplateID, status int) {
	var req TemplateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		writeError(w, http.StatusBadRequest, "name is required", nil)
		return
	}

	start, err := payroll.ParseTimeOfDay(req.StartTime)
	if err != nil {
		h.fail(w, "Invalid start_time", err)
		return
	}
	end, err := payroll.ParseTimeOfDay(req.EndTime)
	if err != nil {
		h.fail(w, "Invalid end_time", err)
		return
	}
	lunch, err := payroll.ParseLunch(req.LunchStart, req.LunchEnd)
	if err != nil {
		h.fail(w, "Invalid lunch", err)
		return
	}

	tmpl := payroll.ShiftTemplate{ID: id, Name: strings.TrimSpace(req.Name), Start: start, End: end, Lunch: lunch}
	if err := h.Store.SaveTemplate(r.Context(), tmpl); err != nil {
		h.fail(w, "Failed to save template", err)
		return
	}
	writeJSON(w, status, toTemplateDTO(tmpl))
}

// DeleteTemplate removes a template. Shifts created from it are kept.
func (h *Handler) DeleteTemplate(w http.ResponseWriter, r *http.Request) {
	id := payroll.TemplateID(chi.URLParam(r, "id"))
	if err := h.Store.DeleteTemplate(r.Context(), id); err != nil {
		h.fail(w, "Failed to delete template", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// SETTINGS HANDLERS
// =============================================================================

// GetSettings returns the current overtime rules.
func (h *Handler) GetSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := h.Store.LoadSettings(r.Context())
	if err != nil {
		h.fail(w, "Failed to load settings", err)
		return
	}
	writeJSON(w, http.StatusOK, toSettingsDTO(settings))
}

// UpdateSettings merges the given fields onto the current rules.
func (h *Handler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	var req SettingsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	current, err := h.Store.LoadSettings(r.Context())
	if err != nil {
		h.fail(w, "Failed to load settings", err)
		return
	}
	updated, err := req.apply(current)
	if err != nil {
		h.fail(w, "Invalid settings", err)
		return
	}
	if err := h.Store.SaveSettings(r.Context(), updated); err != nil {
		h.fail(w, "Failed to save settings", err)
		return
	}

	h.logger.Info("settings updated",
		zap.String("weekly_threshold", updated.WeeklyThreshold.String()),
		zap.String("daily_threshold", updated.DailyThreshold.String()),
		zap.String("multiplier", updated.OvertimeMultiplier.String()),
		zap.String("segmentation", string(updated.Segmentation)),
	)
	writeJSON(w, http.StatusOK, toSettingsDTO(updated))
}

// =============================================================================
// PERIOD AND HOURS HANDLERS
// =============================================================================

// GetWeek returns the Monday-Sunday week containing ?date (default today).
func (h *Handler) GetWeek(w http.ResponseWriter, r *http.Request) {
	h.writePeriod(w, r, payroll.PeriodWeek)
}

// GetBiweekly returns the biweekly pay period containing ?date (default today).
func (h *Handler) GetBiweekly(w http.ResponseWriter, r *http.Request) {
	h.writePeriod(w, r, payroll.PeriodBiweekly)
}

func (h *Handler) writePeriod(w http.ResponseWriter, r *http.Request, kind payroll.PeriodKind) {
	ref, err := h.refDate(r)
	if err != nil {
		h.fail(w, "Invalid date", err)
		return
	}
	period, err := payroll.PeriodFor(kind, ref)
	if err != nil {
		h.fail(w, "Invalid period", err)
		return
	}
	writeJSON(w, http.StatusOK, toPeriodDTO(period))
}

// GetHours computes the paid hours of a single shift.
func (h *Handler) GetHours(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	hours, err := payroll.CalculateShiftHours(q.Get("start"), q.Get("end"), q.Get("lunch_start"), q.Get("lunch_end"))
	if err != nil {
		h.fail(w, "Invalid shift times", err)
		return
	}
	writeJSON(w, http.StatusOK, HoursDTO{Hours: hours.InexactFloat64()})
}

// =============================================================================
// PAYROLL HANDLERS
// =============================================================================

// GetPayroll returns the payroll report for the requested period.
func (h *Handler) GetPayroll(w http.ResponseWriter, r *http.Request) {
	report, ok := h.report(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, toReportDTO(report))
}

// ExportPayroll returns the payroll report as CSV.
func (h *Handler) ExportPayroll(w http.ResponseWriter, r *http.Request) {
	report, ok := h.report(w, r)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := export.WritePayrollCSV(&buf, report); err != nil {
		h.fail(w, "Failed to export payroll", err)
		return
	}
	writeCSV(w, fmt.Sprintf("payroll_%s_to_%s.csv", report.Period.Start, report.Period.End), buf.Bytes())
}

// ExportSchedule returns the schedule grid for the requested period as CSV.
func (h *Handler) ExportSchedule(w http.ResponseWriter, r *http.Request) {
	report, ok := h.report(w, r)
	if !ok {
		return
	}
	shifts, err := h.Store.ShiftsInRange(r.Context(), report.Period.Start, report.Period.End)
	if err != nil {
		h.fail(w, "Failed to list shifts", err)
		return
	}

	var buf bytes.Buffer
	if err := export.WriteScheduleCSV(&buf, report, shifts); err != nil {
		h.fail(w, "Failed to export schedule", err)
		return
	}
	writeCSV(w, fmt.Sprintf("schedule_%s_to_%s.csv", report.Period.Start, report.Period.End), buf.Bytes())
}

// GetEmployeePayroll returns one employee's payroll, active or not, using the
// current settings.
func (h *Handler) GetEmployeePayroll(w http.ResponseWriter, r *http.Request) {
	id := payroll.EmployeeID(chi.URLParam(r, "id"))
	period, err := h.periodFromQuery(r)
	if err != nil {
		h.fail(w, "Invalid period", err)
		return
	}

	settings, err := h.Store.LoadSettings(r.Context())
	if err != nil {
		h.fail(w, "Failed to load settings", err)
		return
	}
	ep, err := h.Calc.EmployeePayroll(r.Context(), id, period, settings)
	if err != nil {
		h.fail(w, "Failed to compute payroll", err)
		return
	}
	writeJSON(w, http.StatusOK, toEmployeePayrollDTO(ep))
}

func (h *Handler) report(w http.ResponseWriter, r *http.Request) (payroll.Report, bool) {
	period, err := h.periodFromQuery(r)
	if err != nil {
		h.fail(w, "Invalid period", err)
		return payroll.Report{}, false
	}
	report, err := h.Calc.Report(r.Context(), period)
	if err != nil {
		h.fail(w, "Failed to generate report", err)
		return payroll.Report{}, false
	}
	return report, true
}

// =============================================================================
// SCHEDULER HANDLERS
// =============================================================================

// ListRuns returns the period-close history, newest first.
func (h *Handler) ListRuns(w http.ResponseWriter, r *http.Request) {
	if h.Closer == nil {
		writeError(w, http.StatusServiceUnavailable, "Period close is disabled", nil)
		return
	}

	runs := h.Closer.Runs()
	dtos := make([]RunDTO, len(runs))
	for i, run := range runs {
		dtos[i] = toRunDTO(run)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// TriggerRun closes the most recently ended period now.
func (h *Handler) TriggerRun(w http.ResponseWriter, r *http.Request) {
	if h.Closer == nil {
		writeError(w, http.StatusServiceUnavailable, "Period close is disabled", nil)
		return
	}

	run, err := h.Closer.RunOnce(r.Context(), h.now())
	if err != nil {
		h.fail(w, "Period close failed", err)
		return
	}
	writeJSON(w, http.StatusOK, toRunDTO(run))
}

// ResetDatabase clears all data (dev only). Stores without Reset reply 501.
func (h *Handler) ResetDatabase(w http.ResponseWriter, r *http.Request) {
	resetter, ok := h.Store.(interface{ Reset(context.Context) error })
	if !ok {
		writeError(w, http.StatusNotImplemented, "Store does not support reset", nil)
		return
	}
	if err := resetter.Reset(r.Context()); err != nil {
		h.fail(w, "Failed to reset database", err)
		return
	}
	h.logger.Warn("database reset")
	writeJSON(w, http.StatusOK, map[string]string{"status": "reset"})
}

// =============================================================================
// QUERY PARSING
// =============================================================================

// refDate reads ?date, defaulting to today.
func (h *Handler) refDate(r *http.Request) (payroll.Date, error) {
	if s := r.URL.Query().Get("date"); s != "" {
		return payroll.ParseDate(s)
	}
	return h.today(), nil
}

// periodFromQuery reads ?period=week|biweekly|custom (default week). Week and
// biweekly use ?date; custom requires ?start and ?end.
func (h *Handler) periodFromQuery(r *http.Request) (payroll.Period, error) {
	q := r.URL.Query()
	kind, err := payroll.ParsePeriodKind(q.Get("period"))
	if err != nil {
		return payroll.Period{}, err
	}
	if kind == payroll.PeriodCustom {
		return parseRange(q.Get("start"), q.Get("end"))
	}

	ref, err := h.refDate(r)
	if err != nil {
		return payroll.Period{}, err
	}
	return payroll.PeriodFor(kind, ref)
}

// rangeFromQuery reads ?start&end, defaulting to the current week.
func (h *Handler) rangeFromQuery(r *http.Request) (payroll.Period, error) {
	q := r.URL.Query()
	if q.Get("start") == "" && q.Get("end") == "" {
		return payroll.WeekOf(h.today()).Period, nil
	}
	return parseRange(q.Get("start"), q.Get("end"))
}

func parseRange(start, end string) (payroll.Period, error) {
	s, err := payroll.ParseDate(start)
	if err != nil {
		return payroll.Period{}, err
	}
	e, err := payroll.ParseDate(end)
	if err != nil {
		return payroll.Period{}, err
	}
	return payroll.NewPeriod(s, e)
}

// =============================================================================
// HELPERS
// =============================================================================

// fail maps err to a status code and writes it. Server errors are logged.
func (h *Handler) fail(w http.ResponseWriter, message string, err error) {
	status := http.StatusInternalServerError
	switch {
	case payroll.IsNotFound(err):
		status = http.StatusNotFound
	case payroll.IsClientError(err):
		status = http.StatusBadRequest
	default:
		h.logger.Error(message, zap.Error(err))
	}
	writeError(w, status, message, err)
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

func writeCSV(w http.ResponseWriter, filename string, body []byte) {
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	w.Write(body)
}
