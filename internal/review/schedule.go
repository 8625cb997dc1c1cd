package review

// BaseIntervals defines the expanding interval schedule in days.
// Stage 0 = first review after completion.
var BaseIntervals = []int{1, 3, 7, 14, 30, 60}

// GraduationStage is the number of consecutive successful reviews after
// which an item graduates to the long interval.
const GraduationStage = 6

// GraduatedIntervalDays is the review interval for graduated items.
const GraduatedIntervalDays = 90
