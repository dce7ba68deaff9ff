package attendance

import "fmt"

type AnomalyKind string

const (
	AnomalyInvalidTimestampOrder AnomalyKind = "invalid_timestamp_order"
	AnomalyNegativeDuration      AnomalyKind = "negative_duration"
	AnomalyBreakOutsideSession   AnomalyKind = "break_outside_session"
	AnomalyBreakExceedsSession   AnomalyKind = "break_exceeds_session"
	AnomalySessionOverlap        AnomalyKind = "session_overlap"
)

// Anomaly is one structural inconsistency found in a record's timestamps.
type Anomaly struct {
	Kind      AnomalyKind
	SessionID string
	BreakID   string
	Detail    string
}

func (a Anomaly) String() string {
	if a.BreakID != "" {
		return fmt.Sprintf("%s (session %s, break %s): %s", a.Kind, a.SessionID, a.BreakID, a.Detail)
	}
	return fmt.Sprintf("%s (session %s): %s", a.Kind, a.SessionID, a.Detail)
}

// DetectAnomalies inspects a record's sessions and breaks for physically
// impossible or conflicting timestamps. It never mutates the record; the
// caller decides what to do with the findings (flag, don't fail).
func DetectAnomalies(rec *AttendanceRecord) []Anomaly {
	var found []Anomaly

	for i := range rec.Sessions {
		s := &rec.Sessions[i]

		if s.CheckOut != nil && s.CheckOut.Before(s.CheckIn) {
			found = append(found, Anomaly{
				Kind:      AnomalyInvalidTimestampOrder,
				SessionID: s.ID,
				Detail:    fmt.Sprintf("check-out %s precedes check-in %s", s.CheckOut.Format("15:04:05"), s.CheckIn.Format("15:04:05")),
			})
		}

		if s.Status == SessionCompleted && s.WorkedMinutes < 0 {
			found = append(found, Anomaly{
				Kind:      AnomalyNegativeDuration,
				SessionID: s.ID,
				Detail:    fmt.Sprintf("worked minutes is %d", s.WorkedMinutes),
			})
		}

		for j := range s.Breaks {
			b := &s.Breaks[j]

			if b.EndTime != nil && b.EndTime.Before(b.StartTime) {
				found = append(found, Anomaly{
					Kind:      AnomalyInvalidTimestampOrder,
					SessionID: s.ID,
					BreakID:   b.ID,
					Detail:    fmt.Sprintf("break end %s precedes break start %s", b.EndTime.Format("15:04:05"), b.StartTime.Format("15:04:05")),
				})
			}

			if b.DurationMinutes < 0 {
				found = append(found, Anomaly{
					Kind:      AnomalyNegativeDuration,
					SessionID: s.ID,
					BreakID:   b.ID,
					Detail:    fmt.Sprintf("break duration is %d minutes", b.DurationMinutes),
				})
			}

			if b.StartTime.Before(s.CheckIn) || (s.CheckOut != nil && b.EndTime != nil && b.EndTime.After(*s.CheckOut)) {
				found = append(found, Anomaly{
					Kind:      AnomalyBreakOutsideSession,
					SessionID: s.ID,
					BreakID:   b.ID,
					Detail:    "break falls outside the session's check-in/check-out window",
				})
			}
		}

		if s.CheckOut != nil && s.TotalBreakMinutes > s.SpanMinutes() {
			found = append(found, Anomaly{
				Kind:      AnomalyBreakExceedsSession,
				SessionID: s.ID,
				Detail:    fmt.Sprintf("total break of %d minutes exceeds session span of %d minutes", s.TotalBreakMinutes, s.SpanMinutes()),
			})
		}

		if i > 0 {
			prev := &rec.Sessions[i-1]
			if prev.CheckOut != nil && s.CheckIn.Before(*prev.CheckOut) {
				found = append(found, Anomaly{
					Kind:      AnomalySessionOverlap,
					SessionID: s.ID,
					Detail:    fmt.Sprintf("check-in %s precedes previous session's check-out %s", s.CheckIn.Format("15:04:05"), prev.CheckOut.Format("15:04:05")),
				})
			}
		}
	}

	return found
}

// SummarizeAnomalies produces the status reason recorded on a flagged record.
func SummarizeAnomalies(found []Anomaly) string {
	if len(found) == 1 {
		return fmt.Sprintf("1 anomaly detected, pending manual correction: %s", found[0].Kind)
	}
	return fmt.Sprintf("%d anomalies detected, pending manual correction", len(found))
}
