package review

import "time"

// State is the review schedule of one finished roadmap item. It is created
// when the item reaches 100% and dropped when progress falls below that.
type State struct {
	ItemID         string    `json:"item_id"`
	Stage          int       `json:"stage"`
	NextReviewDate time.Time `json:"next_review_date"`
	// ConsecutiveHits counts reviews recorded since the item was finished.
	ConsecutiveHits int       `json:"consecutive_hits"`
	Graduated       bool      `json:"graduated"`
	LastReviewDate  time.Time `json:"last_review_date"`
}

func newState(id string, finished time.Time) *State {
	rs := &State{ItemID: id}
	rs.schedule(finished)
	return rs
}

// IsDue reports whether the review date has arrived.
func (rs *State) IsDue(now time.Time) bool {
	return !now.Before(rs.NextReviewDate)
}

// Late is how long the review has been due, zero before the review date.
func (rs *State) Late(now time.Time) time.Duration {
	return max(now.Sub(rs.NextReviewDate), 0)
}

// DueIn is how long until the review date, zero once it is due.
func (rs *State) DueIn(now time.Time) time.Duration {
	return max(rs.NextReviewDate.Sub(now), 0)
}

func (rs *State) intervalDays() int {
	if rs.Graduated {
		return GraduatedIntervalDays
	}
	stage := min(max(rs.Stage, 0), len(BaseIntervals)-1)
	return BaseIntervals[stage]
}

// Interval is the spacing the current review was scheduled with.
func (rs *State) Interval() time.Duration {
	return time.Duration(rs.intervalDays()) * 24 * time.Hour
}

// Status is how a review reads on the item detail screen and in
// `roadmapper review due`.
type Status string

const (
	NotDue    Status = "not_due"
	Due       Status = "due"
	Overdue   Status = "overdue"
	Graduated Status = "graduated"
)

// Status classifies rs at now. A review left undone for more than half of
// its interval is Overdue.
func (rs *State) Status(now time.Time) Status {
	switch {
	case !rs.IsDue(now) && rs.Graduated:
		return Graduated
	case !rs.IsDue(now):
		return NotDue
	case rs.Late(now) > rs.Interval()/2:
		return Overdue
	default:
		return Due
	}
}

// advance records a review done at now. Each review moves the item one
// step along BaseIntervals until it graduates.
func (rs *State) advance(now time.Time) {
	rs.ConsecutiveHits++
	if !rs.Graduated {
		rs.Stage++
		rs.Graduated = rs.ConsecutiveHits >= GraduationStage
	}
	rs.schedule(now)
}

func (rs *State) schedule(from time.Time) {
	rs.LastReviewDate = from
	rs.NextReviewDate = from.AddDate(0, 0, rs.intervalDays())
}
