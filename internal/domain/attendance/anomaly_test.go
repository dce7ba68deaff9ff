package attendance

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func kinds(found []Anomaly) []AnomalyKind {
	out := make([]AnomalyKind, 0, len(found))
	for _, a := range found {
		out = append(out, a.Kind)
	}
	return out
}

func TestDetectAnomalies_CleanRecord(t *testing.T) {
	rec := NewRecord("emp-1", at(0, 0))
	_, err := rec.StartSession(at(9, 0), LocationOffice, nil)
	require.NoError(t, err)
	_, err = rec.StartBreak(at(12, 0))
	require.NoError(t, err)
	_, err = rec.EndBreak(at(12, 30))
	require.NoError(t, err)
	_, err = rec.EndSession(at(17, 0))
	require.NoError(t, err)

	assert.Empty(t, DetectAnomalies(rec))
}

func TestDetectAnomalies_InvalidTimestampOrder(t *testing.T) {
	out := at(8, 0) // before check-in
	rec := &AttendanceRecord{
		EmployeeID: "emp-1",
		Date:       DateOnly(at(0, 0)),
		Sessions: []Session{{
			ID:       "s1",
			CheckIn:  at(9, 0),
			CheckOut: &out,
			Status:   SessionCompleted,
		}},
	}

	found := DetectAnomalies(rec)
	assert.Contains(t, kinds(found), AnomalyInvalidTimestampOrder)
}

func TestDetectAnomalies_NegativeDuration(t *testing.T) {
	out := at(17, 0)
	rec := &AttendanceRecord{
		Sessions: []Session{{
			ID:            "s1",
			CheckIn:       at(9, 0),
			CheckOut:      &out,
			Status:        SessionCompleted,
			WorkedMinutes: -30,
		}},
	}

	found := DetectAnomalies(rec)
	assert.Contains(t, kinds(found), AnomalyNegativeDuration)
}

func TestDetectAnomalies_BreakOutsideSession(t *testing.T) {
	out := at(17, 0)
	breakEnd := at(8, 45)
	rec := &AttendanceRecord{
		Sessions: []Session{{
			ID:       "s1",
			CheckIn:  at(9, 0),
			CheckOut: &out,
			Status:   SessionCompleted,
			Breaks: []Break{{
				ID:        "b1",
				StartTime: at(8, 30), // before check-in
				EndTime:   &breakEnd,
			}},
		}},
	}

	found := DetectAnomalies(rec)
	assert.Contains(t, kinds(found), AnomalyBreakOutsideSession)
}

func TestDetectAnomalies_BreakExceedsSession(t *testing.T) {
	out := at(10, 0)
	rec := &AttendanceRecord{
		Sessions: []Session{{
			ID:                "s1",
			CheckIn:           at(9, 0),
			CheckOut:          &out,
			Status:            SessionCompleted,
			TotalBreakMinutes: 90, // longer than the 60 minute span
		}},
	}

	found := DetectAnomalies(rec)
	assert.Contains(t, kinds(found), AnomalyBreakExceedsSession)
}

func TestDetectAnomalies_SessionOverlap(t *testing.T) {
	firstOut := at(13, 0)
	secondOut := at(17, 0)
	rec := &AttendanceRecord{
		Sessions: []Session{
			{
				ID:       "s1",
				CheckIn:  at(9, 0),
				CheckOut: &firstOut,
				Status:   SessionCompleted,
			},
			{
				ID:       "s2",
				CheckIn:  at(12, 30), // starts before s1 ends
				CheckOut: &secondOut,
				Status:   SessionCompleted,
			},
		},
	}

	found := DetectAnomalies(rec)
	require.Len(t, found, 1)
	assert.Equal(t, AnomalySessionOverlap, found[0].Kind)
	assert.Equal(t, "s2", found[0].SessionID)
}

func TestDetectAnomalies_DoesNotMutate(t *testing.T) {
	out := at(8, 0)
	rec := &AttendanceRecord{
		Status: StatusInProgress,
		Sessions: []Session{{
			ID:       "s1",
			CheckIn:  at(9, 0),
			CheckOut: &out,
			Status:   SessionCompleted,
		}},
	}

	before := *rec
	_ = DetectAnomalies(rec)
	assert.Equal(t, before.Status, rec.Status)
	assert.Equal(t, before.ApprovalStatus, rec.ApprovalStatus)
}

func TestSummarizeAnomalies(t *testing.T) {
	one := []Anomaly{{Kind: AnomalySessionOverlap}}
	assert.Equal(t, "1 anomaly detected, pending manual correction: session_overlap", SummarizeAnomalies(one))

	two := append(one, Anomaly{Kind: AnomalyNegativeDuration})
	assert.Equal(t, "2 anomalies detected, pending manual correction", SummarizeAnomalies(two))
}

func TestAnomalyString(t *testing.T) {
	a := Anomaly{Kind: AnomalyNegativeDuration, SessionID: "s1", BreakID: "b1", Detail: "break duration is -5 minutes"}
	assert.Equal(t, "negative_duration (session s1, break b1): break duration is -5 minutes", a.String())
}
