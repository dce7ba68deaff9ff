package http

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/jwtauth/v5"
	"github.com/worklens-hr/attendance-backend-go/internal/domain/attendance"
	"github.com/worklens-hr/attendance-backend-go/internal/handler/http/response"
	"github.com/worklens-hr/attendance-backend-go/internal/pkg/clock"
	"github.com/worklens-hr/attendance-backend-go/internal/pkg/validator"
)

type AttendanceHandler interface {
	StartSession(w http.ResponseWriter, r *http.Request)
	EndSession(w http.ResponseWriter, r *http.Request)
	StartBreak(w http.ResponseWriter, r *http.Request)
	EndBreak(w http.ResponseWriter, r *http.Request)
	GetMyRecord(w http.ResponseWriter, r *http.Request)
	GetRecord(w http.ResponseWriter, r *http.Request)
	RunFinalization(w http.ResponseWriter, r *http.Request)
}

type attendanceHandlerImpl struct {
	attendanceService attendance.Service
	finalizer         attendance.FinalizationService
	clock             clock.Clock
}

func NewAttendanceHandler(attendanceService attendance.Service, finalizer attendance.FinalizationService, clk clock.Clock) AttendanceHandler {
	return &attendanceHandlerImpl{
		attendanceService: attendanceService,
		finalizer:         finalizer,
		clock:             clk,
	}
}

// employeeIDFromToken reads the caller's employee identity off the verified
// access token. The body never carries it; a client cannot act as someone else.
func employeeIDFromToken(r *http.Request) (string, bool) {
	_, claims, err := jwtauth.FromContext(r.Context())
	if err != nil {
		return "", false
	}
	employeeID, ok := claims["employee_id"].(string)
	if !ok || employeeID == "" {
		return "", false
	}
	return employeeID, true
}

// StartSession implements AttendanceHandler.
func (h *attendanceHandlerImpl) StartSession(w http.ResponseWriter, r *http.Request) {
	var req attendance.StartSessionRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("Failed to decode request body", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	employeeID, ok := employeeIDFromToken(r)
	if !ok {
		response.Unauthorized(w, "Invalid token")
		return
	}
	req.EmployeeID = employeeID

	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.attendanceService.StartSession(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Session started", result)
}

// EndSession implements AttendanceHandler.
func (h *attendanceHandlerImpl) EndSession(w http.ResponseWriter, r *http.Request) {
	var req attendance.EndSessionRequest

	if err := decodeOptionalBody(r, &req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	employeeID, ok := employeeIDFromToken(r)
	if !ok {
		response.Unauthorized(w, "Invalid token")
		return
	}
	req.EmployeeID = employeeID

	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.attendanceService.EndSession(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Session ended", result)
}

// StartBreak implements AttendanceHandler.
func (h *attendanceHandlerImpl) StartBreak(w http.ResponseWriter, r *http.Request) {
	var req attendance.StartBreakRequest

	if err := decodeOptionalBody(r, &req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	employeeID, ok := employeeIDFromToken(r)
	if !ok {
		response.Unauthorized(w, "Invalid token")
		return
	}
	req.EmployeeID = employeeID

	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.attendanceService.StartBreak(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Break started", result)
}

// EndBreak implements AttendanceHandler.
func (h *attendanceHandlerImpl) EndBreak(w http.ResponseWriter, r *http.Request) {
	var req attendance.EndBreakRequest

	if err := decodeOptionalBody(r, &req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	employeeID, ok := employeeIDFromToken(r)
	if !ok {
		response.Unauthorized(w, "Invalid token")
		return
	}
	req.EmployeeID = employeeID

	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.attendanceService.EndBreak(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Break ended", result)
}

// GetMyRecord implements AttendanceHandler.
func (h *attendanceHandlerImpl) GetMyRecord(w http.ResponseWriter, r *http.Request) {
	employeeID, ok := employeeIDFromToken(r)
	if !ok {
		response.Unauthorized(w, "Invalid token")
		return
	}

	date, err := h.parseDateParam(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.attendanceService.GetRecord(r.Context(), employeeID, date)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// GetRecord implements AttendanceHandler. Admin only.
func (h *attendanceHandlerImpl) GetRecord(w http.ResponseWriter, r *http.Request) {
	employeeID := chi.URLParam(r, "employeeID")
	if validator.IsEmpty(employeeID) {
		response.BadRequest(w, "Path parameter 'employeeID' is required", nil)
		return
	}

	date, err := h.parseDateParam(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.attendanceService.GetRecord(r.Context(), employeeID, date)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// RunFinalization implements AttendanceHandler. Admin only; lets operators
// re-run a day on demand instead of waiting for the scheduled midnight job.
func (h *attendanceHandlerImpl) RunFinalization(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Date string `json:"date"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("Failed to decode request body", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	date, ok := validator.IsValidDate(req.Date)
	if !ok {
		response.BadRequest(w, "Field 'date' must be in YYYY-MM-DD format", nil)
		return
	}

	summary, err := h.finalizer.RunFinalization(r.Context(), date)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Finalization complete", summary)
}

// decodeOptionalBody tolerates an empty body: end-session and break calls only
// need the token, the optional backdated timestamp is the lone body field.
func decodeOptionalBody(r *http.Request, dst interface{}) error {
	err := json.NewDecoder(r.Body).Decode(dst)
	if err != nil && !errors.Is(err, io.EOF) {
		slog.Error("Failed to decode request body", "error", err)
		return err
	}
	return nil
}

// parseDateParam reads the 'date' query parameter, defaulting to today on the
// handler's clock.
func (h *attendanceHandlerImpl) parseDateParam(r *http.Request) (time.Time, error) {
	raw := r.URL.Query().Get("date")
	if raw == "" {
		return h.clock.Now().UTC(), nil
	}
	date, ok := validator.IsValidDate(raw)
	if !ok {
		return time.Time{}, validator.ValidationErrors{{
			Field:   "date",
			Message: "date must be in YYYY-MM-DD format",
		}}
	}
	return date, nil
}
