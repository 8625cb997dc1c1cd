package review

import (
	"testing"
	"time"
)

var day0 = time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

const day = 24 * time.Hour

func TestNewState_FirstReviewNextDay(t *testing.T) {
	rs := newState("rag", day0)
	if rs.ItemID != "rag" || rs.Stage != 0 || rs.Graduated {
		t.Fatalf("unexpected state: %+v", rs)
	}
	if !rs.LastReviewDate.Equal(day0) || !rs.NextReviewDate.Equal(day0.AddDate(0, 0, 1)) {
		t.Errorf("dates = %v / %v", rs.LastReviewDate, rs.NextReviewDate)
	}
}

func TestIsDue(t *testing.T) {
	tests := []struct {
		name string
		next time.Time
		want bool
	}{
		{"before date", day0.Add(day), false},
		{"on date", day0, true},
		{"after date", day0.Add(-2 * day), true},
	}
	for _, tt := range tests {
		rs := &State{NextReviewDate: tt.next}
		if got := rs.IsDue(day0); got != tt.want {
			t.Errorf("%s: IsDue = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestLateAndDueIn(t *testing.T) {
	rs := &State{NextReviewDate: day0}

	if got := rs.Late(day0.Add(-time.Hour)); got != 0 {
		t.Errorf("Late before due = %s", got)
	}
	if got := rs.Late(day0.Add(3 * day)); got != 3*day {
		t.Errorf("Late = %s, want 72h", got)
	}
	if got := rs.DueIn(day0.Add(-36 * time.Hour)); got != 36*time.Hour {
		t.Errorf("DueIn = %s, want 36h", got)
	}
	if got := rs.DueIn(day0.Add(time.Hour)); got != 0 {
		t.Errorf("DueIn once due = %s", got)
	}
}

func TestInterval(t *testing.T) {
	for stage, days := range BaseIntervals {
		rs := &State{Stage: stage}
		if got := rs.Interval(); got != time.Duration(days)*day {
			t.Errorf("stage %d: got %s", stage, got)
		}
	}
	if got := (&State{Stage: 10}).Interval(); got != 60*day {
		t.Errorf("beyond last stage: got %s, want 60 days", got)
	}
	// Hand-edited state can carry a negative stage.
	if got := (&State{Stage: -3}).Interval(); got != day {
		t.Errorf("negative stage: got %s, want 1 day", got)
	}
	if got := (&State{Graduated: true}).Interval(); got != GraduatedIntervalDays*day {
		t.Errorf("graduated: got %s", got)
	}
}

func TestStatus(t *testing.T) {
	tests := []struct {
		name string
		rs   State
		now  time.Time
		want Status
	}{
		{"not due", State{Stage: 2, NextReviewDate: day0.Add(5 * day)}, day0, NotDue},
		{"due", State{Stage: 2, NextReviewDate: day0}, day0.Add(day), Due},
		// stage 2 is a 7-day interval, so overdue after 3.5 days
		{"within grace", State{Stage: 2, NextReviewDate: day0}, day0.Add(3 * day), Due},
		{"overdue", State{Stage: 2, NextReviewDate: day0}, day0.Add(4 * day), Overdue},
		{"first review a day late", State{NextReviewDate: day0}, day0.Add(day), Overdue},
		{"graduated", State{Stage: 6, Graduated: true, NextReviewDate: day0.Add(30 * day)}, day0, Graduated},
		{"graduated but due", State{Stage: 6, Graduated: true, NextReviewDate: day0}, day0.Add(10 * day), Due},
		{"graduated and overdue", State{Stage: 6, Graduated: true, NextReviewDate: day0}, day0.Add(50 * day), Overdue},
	}
	for _, tt := range tests {
		if got := tt.rs.Status(tt.now); got != tt.want {
			t.Errorf("%s: Status() = %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestAdvance_Graduation(t *testing.T) {
	rs := newState("x", day0)
	now := day0
	for i := 0; i < GraduationStage; i++ {
		if rs.Graduated {
			t.Fatalf("graduated early after %d reviews", i)
		}
		now = now.AddDate(0, 0, 1)
		rs.advance(now)
	}
	if !rs.Graduated {
		t.Fatal("expected graduation after 6 reviews")
	}
	if want := now.AddDate(0, 0, GraduatedIntervalDays); !rs.NextReviewDate.Equal(want) {
		t.Errorf("next review = %v, want %v", rs.NextReviewDate, want)
	}

	stage := rs.Stage
	rs.advance(now.AddDate(0, 0, GraduatedIntervalDays))
	if rs.Stage != stage || !rs.Graduated {
		t.Errorf("graduated items stay on the long interval, got %+v", rs)
	}
}
