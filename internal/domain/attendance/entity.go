package attendance

import (
	"time"

	"github.com/google/uuid"
)

type DayStatus string

const (
	StatusInProgress        DayStatus = "in_progress"
	StatusPresent           DayStatus = "present"
	StatusHalfDay           DayStatus = "half_day"
	StatusAbsent            DayStatus = "absent"
	StatusWeekend           DayStatus = "weekend"
	StatusHoliday           DayStatus = "holiday"
	StatusPendingCorrection DayStatus = "pending_correction"
)

// Terminal reports whether the status is an end state the finalization job
// must not overwrite on re-runs.
func (s DayStatus) Terminal() bool {
	switch s {
	case StatusPresent, StatusHalfDay, StatusAbsent, StatusWeekend, StatusHoliday:
		return true
	}
	return false
}

type ApprovalStatus string

const (
	ApprovalNone     ApprovalStatus = "none"
	ApprovalPending  ApprovalStatus = "pending"
	ApprovalApproved ApprovalStatus = "approved"
	ApprovalRejected ApprovalStatus = "rejected"
)

type SessionStatus string

const (
	SessionActive    SessionStatus = "active"
	SessionOnBreak   SessionStatus = "on_break"
	SessionCompleted SessionStatus = "completed"
)

type WorkLocation string

const (
	LocationOffice     WorkLocation = "office"
	LocationWFH        WorkLocation = "wfh"
	LocationClientSite WorkLocation = "client_site"
)

func (l WorkLocation) Valid() bool {
	switch l {
	case LocationOffice, LocationWFH, LocationClientSite:
		return true
	}
	return false
}

// Break is one pause inside a session. EndTime is nil while the break is open.
type Break struct {
	ID              string
	StartTime       time.Time
	EndTime         *time.Time
	DurationMinutes int
}

func (b *Break) Open() bool {
	return b.EndTime == nil
}

// Session is one work stint bounded by a clock-in and, eventually, a clock-out.
type Session struct {
	ID                string
	CheckIn           time.Time
	CheckOut          *time.Time
	WorkLocation      WorkLocation
	LocationDetails   *string
	Status            SessionStatus
	Breaks            []Break
	TotalBreakMinutes int
	WorkedMinutes     int
}

func (s *Session) Open() bool {
	return s.Status == SessionActive || s.Status == SessionOnBreak
}

// OpenBreak returns the session's single open break, or nil.
func (s *Session) OpenBreak() *Break {
	for i := range s.Breaks {
		if s.Breaks[i].Open() {
			return &s.Breaks[i]
		}
	}
	return nil
}

// SpanMinutes is the whole check-in to check-out span, breaks included.
// Zero while the session is still open.
func (s *Session) SpanMinutes() int {
	if s.CheckOut == nil {
		return 0
	}
	return minutesBetween(s.CheckIn, *s.CheckOut)
}

type Remark struct {
	ID        string
	Source    string
	Note      string
	CreatedAt time.Time
}

// AttendanceRecord is the aggregate root: one per (employee, calendar date).
// Sessions and breaks are owned value slices; all mutation goes through the
// methods below so the single-open-session and ordering invariants hold.
type AttendanceRecord struct {
	ID             string
	EmployeeID     string
	Date           time.Time
	Sessions       []Session
	Status         DayStatus
	StatusReason   string
	IsLate         bool
	LateMinutes    int
	WorkedMinutes  int
	BreakMinutes   int
	ApprovalStatus ApprovalStatus
	Remarks        []Remark
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func NewRecord(employeeID string, date time.Time) *AttendanceRecord {
	return &AttendanceRecord{
		ID:             uuid.NewString(),
		EmployeeID:     employeeID,
		Date:           DateOnly(date),
		Status:         StatusInProgress,
		ApprovalStatus: ApprovalNone,
	}
}

// OpenSession returns the record's single open session, or nil.
func (r *AttendanceRecord) OpenSession() *Session {
	for i := range r.Sessions {
		if r.Sessions[i].Open() {
			return &r.Sessions[i]
		}
	}
	return nil
}

// StartSession opens a new session at the given instant.
// Fails with ErrSessionAlreadyOpen while another session is open.
func (r *AttendanceRecord) StartSession(at time.Time, location WorkLocation, details *string) (*Session, error) {
	if r.OpenSession() != nil {
		return nil, ErrSessionAlreadyOpen
	}
	r.Sessions = append(r.Sessions, Session{
		ID:              uuid.NewString(),
		CheckIn:         at,
		WorkLocation:    location,
		LocationDetails: details,
		Status:          SessionActive,
	})
	if r.Status == "" || !r.Status.Terminal() {
		r.Status = StatusInProgress
	}
	return &r.Sessions[len(r.Sessions)-1], nil
}

// EndSession closes the open session. Ending while a break is still open is
// rejected; the caller must end the break first.
func (r *AttendanceRecord) EndSession(at time.Time) (*Session, error) {
	open := r.OpenSession()
	if open == nil {
		return nil, ErrNoOpenSession
	}
	if open.Status == SessionOnBreak {
		return nil, ErrBreakInProgress
	}
	closeSession(open, at)
	r.Recompute()
	return open, nil
}

// StartBreak opens a break on the active session.
func (r *AttendanceRecord) StartBreak(at time.Time) (*Break, error) {
	open := r.OpenSession()
	if open == nil {
		return nil, ErrNoActiveSession
	}
	if open.Status == SessionOnBreak {
		return nil, ErrBreakAlreadyOpen
	}
	open.Breaks = append(open.Breaks, Break{
		ID:        uuid.NewString(),
		StartTime: at,
	})
	open.Status = SessionOnBreak
	return &open.Breaks[len(open.Breaks)-1], nil
}

// EndBreak closes the open break and returns the session to active.
func (r *AttendanceRecord) EndBreak(at time.Time) (*Break, error) {
	open := r.OpenSession()
	if open == nil {
		return nil, ErrNoOpenBreak
	}
	br := open.OpenBreak()
	if br == nil {
		return nil, ErrNoOpenBreak
	}
	closeBreak(open, br, at)
	open.Status = SessionActive
	r.Recompute()
	return br, nil
}

// ForceClose closes a dangling open break and session at the cutoff instant.
// Returns the closed session and whether anything was closed. Used by the
// finalization job; validation of the resulting timestamps is the consistency
// checker's job, not this method's.
func (r *AttendanceRecord) ForceClose(cutoff time.Time) (*Session, bool) {
	open := r.OpenSession()
	if open == nil {
		return nil, false
	}
	if br := open.OpenBreak(); br != nil {
		closeBreak(open, br, cutoff)
	}
	closeSession(open, cutoff)
	r.Recompute()
	return open, true
}

// Recompute refreshes the record-level aggregates from the sessions.
func (r *AttendanceRecord) Recompute() {
	worked, breaks := 0, 0
	for i := range r.Sessions {
		worked += r.Sessions[i].WorkedMinutes
		breaks += r.Sessions[i].TotalBreakMinutes
	}
	r.WorkedMinutes = worked
	r.BreakMinutes = breaks
}

func (r *AttendanceRecord) WorkHours() float64 {
	return float64(r.WorkedMinutes) / 60.0
}

func (r *AttendanceRecord) AppendRemark(source, note string, at time.Time) {
	r.Remarks = append(r.Remarks, Remark{
		ID:        uuid.NewString(),
		Source:    source,
		Note:      note,
		CreatedAt: at,
	})
}

// HasRemark reports whether an identical note was already appended. Keeps
// finalization re-runs from duplicating forced-closure remarks.
func (r *AttendanceRecord) HasRemark(note string) bool {
	for i := range r.Remarks {
		if r.Remarks[i].Note == note {
			return true
		}
	}
	return false
}

func closeSession(s *Session, at time.Time) {
	out := at
	s.CheckOut = &out
	s.Status = SessionCompleted
	s.WorkedMinutes = minutesBetween(s.CheckIn, out) - s.TotalBreakMinutes
}

func closeBreak(s *Session, b *Break, at time.Time) {
	end := at
	b.EndTime = &end
	b.DurationMinutes = minutesBetween(b.StartTime, end)
	s.TotalBreakMinutes += b.DurationMinutes
}

func minutesBetween(from, to time.Time) int {
	return int(to.Sub(from).Minutes())
}

// DateOnly truncates a timestamp to its calendar day (midnight UTC).
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
