package attendance

import (
	"time"

	"github.com/worklens-hr/attendance-backend-go/internal/pkg/validator"
)

// ========================================
// ATTENDANCE DTOs
// ========================================

// StartSessionRequest opens a new work session. At is optional and lets a
// client that buffered the event (offline mobile clock-in) report the real
// event time; it must not be in the future.
type StartSessionRequest struct {
	EmployeeID      string       `json:"employee_id"`
	WorkLocation    WorkLocation `json:"work_location"`
	LocationDetails *string      `json:"location_details,omitempty"`
	At              *time.Time   `json:"at,omitempty"`
}

func (r *StartSessionRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.EmployeeID) {
		errs = append(errs, validator.ValidationError{
			Field:   "employee_id",
			Message: "employee_id is required",
		})
	}

	if !r.WorkLocation.Valid() {
		errs = append(errs, validator.ValidationError{
			Field:   "work_location",
			Message: "work_location must be one of office, wfh, client_site",
		})
	}

	if r.WorkLocation == LocationClientSite && (r.LocationDetails == nil || validator.IsEmpty(*r.LocationDetails)) {
		errs = append(errs, validator.ValidationError{
			Field:   "location_details",
			Message: "location_details is required when work_location is client_site",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type EndSessionRequest struct {
	EmployeeID string     `json:"employee_id"`
	At         *time.Time `json:"at,omitempty"`
}

func (r *EndSessionRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.EmployeeID) {
		errs = append(errs, validator.ValidationError{
			Field:   "employee_id",
			Message: "employee_id is required",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type StartBreakRequest struct {
	EmployeeID string     `json:"employee_id"`
	At         *time.Time `json:"at,omitempty"`
}

func (r *StartBreakRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.EmployeeID) {
		errs = append(errs, validator.ValidationError{
			Field:   "employee_id",
			Message: "employee_id is required",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type EndBreakRequest struct {
	EmployeeID string     `json:"employee_id"`
	At         *time.Time `json:"at,omitempty"`
}

func (r *EndBreakRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.EmployeeID) {
		errs = append(errs, validator.ValidationError{
			Field:   "employee_id",
			Message: "employee_id is required",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

// ========================================
// RESPONSES
// ========================================

type BreakResponse struct {
	ID              string  `json:"id"`
	StartTime       string  `json:"start_time"`
	EndTime         *string `json:"end_time,omitempty"`
	DurationMinutes int     `json:"duration_minutes"`
}

type SessionResponse struct {
	ID                string          `json:"id"`
	CheckIn           string          `json:"check_in"`
	CheckOut          *string         `json:"check_out,omitempty"`
	WorkLocation      WorkLocation    `json:"work_location"`
	LocationDetails   *string         `json:"location_details,omitempty"`
	Status            SessionStatus   `json:"status"`
	Breaks            []BreakResponse `json:"breaks"`
	TotalBreakMinutes int             `json:"total_break_minutes"`
	WorkedMinutes     int             `json:"worked_minutes"`
}

type RemarkResponse struct {
	Source    string `json:"source"`
	Note      string `json:"note"`
	CreatedAt string `json:"created_at"`
}

type RecordResponse struct {
	ID             string            `json:"id"`
	EmployeeID     string            `json:"employee_id"`
	Date           string            `json:"date"`
	Status         DayStatus         `json:"status"`
	StatusReason   string            `json:"status_reason,omitempty"`
	IsLate         bool              `json:"is_late"`
	LateMinutes    int               `json:"late_minutes"`
	WorkedMinutes  int               `json:"worked_minutes"`
	WorkHours      float64           `json:"work_hours"`
	BreakMinutes   int               `json:"break_minutes"`
	ApprovalStatus ApprovalStatus    `json:"approval_status"`
	Sessions       []SessionResponse `json:"sessions"`
	Remarks        []RemarkResponse  `json:"remarks,omitempty"`
}

// FinalizationSummary reports what a finalization run did per category.
type FinalizationSummary struct {
	Date      string `json:"date"`
	Finalized int    `json:"finalized"`
	Skipped   int    `json:"skipped"`
	Flagged   int    `json:"flagged"`
	Errored   int    `json:"errored"`
}

const timestampFormat = "2006-01-02 15:04:05"

func timePtrToString(t *time.Time) *string {
	if t == nil {
		return nil
	}
	formatted := t.Format(timestampFormat)
	return &formatted
}

func NewBreakResponse(b *Break) BreakResponse {
	return BreakResponse{
		ID:              b.ID,
		StartTime:       b.StartTime.Format(timestampFormat),
		EndTime:         timePtrToString(b.EndTime),
		DurationMinutes: b.DurationMinutes,
	}
}

func NewSessionResponse(s *Session) SessionResponse {
	breaks := make([]BreakResponse, 0, len(s.Breaks))
	for i := range s.Breaks {
		breaks = append(breaks, NewBreakResponse(&s.Breaks[i]))
	}
	return SessionResponse{
		ID:                s.ID,
		CheckIn:           s.CheckIn.Format(timestampFormat),
		CheckOut:          timePtrToString(s.CheckOut),
		WorkLocation:      s.WorkLocation,
		LocationDetails:   s.LocationDetails,
		Status:            s.Status,
		Breaks:            breaks,
		TotalBreakMinutes: s.TotalBreakMinutes,
		WorkedMinutes:     s.WorkedMinutes,
	}
}

func NewRecordResponse(rec *AttendanceRecord) RecordResponse {
	sessions := make([]SessionResponse, 0, len(rec.Sessions))
	for i := range rec.Sessions {
		sessions = append(sessions, NewSessionResponse(&rec.Sessions[i]))
	}
	remarks := make([]RemarkResponse, 0, len(rec.Remarks))
	for i := range rec.Remarks {
		remarks = append(remarks, RemarkResponse{
			Source:    rec.Remarks[i].Source,
			Note:      rec.Remarks[i].Note,
			CreatedAt: rec.Remarks[i].CreatedAt.Format(timestampFormat),
		})
	}
	return RecordResponse{
		ID:             rec.ID,
		EmployeeID:     rec.EmployeeID,
		Date:           rec.Date.Format("2006-01-02"),
		Status:         rec.Status,
		StatusReason:   rec.StatusReason,
		IsLate:         rec.IsLate,
		LateMinutes:    rec.LateMinutes,
		WorkedMinutes:  rec.WorkedMinutes,
		WorkHours:      rec.WorkHours(),
		BreakMinutes:   rec.BreakMinutes,
		ApprovalStatus: rec.ApprovalStatus,
		Sessions:       sessions,
		Remarks:        remarks,
	}
}
