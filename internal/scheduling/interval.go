package scheduling

import "time"

// Interval is a half-open time span [Start, End).
type Interval struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Overlaps reports whether the two intervals share any instant.
func (iv Interval) Overlaps(o Interval) bool {
	return iv.Start.Before(o.End) && o.Start.Before(iv.End)
}

// Contains reports whether o lies entirely within iv.
func (iv Interval) Contains(o Interval) bool {
	return !o.Start.Before(iv.Start) && !o.End.After(iv.End)
}

// Subtract removes cut from iv. The result has zero, one or two intervals:
// cutting the middle out of a span splits it in two.
func (iv Interval) Subtract(cut Interval) []Interval {
	if !iv.Overlaps(cut) {
		return []Interval{iv}
	}
	var out []Interval
	if iv.Start.Before(cut.Start) {
		out = append(out, Interval{Start: iv.Start, End: cut.Start})
	}
	if cut.End.Before(iv.End) {
		out = append(out, Interval{Start: cut.End, End: iv.End})
	}
	return out
}

// subtractAll removes cut from every interval in the set.
func subtractAll(ivs []Interval, cut Interval) []Interval {
	out := make([]Interval, 0, len(ivs))
	for _, iv := range ivs {
		out = append(out, iv.Subtract(cut)...)
	}
	return out
}

// dateOf truncates a timestamp to midnight of its calendar date.
func dateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// atMinute returns the instant on the given date at minutes since midnight.
func atMinute(date time.Time, minute int) time.Time {
	return dateOf(date).Add(time.Duration(minute) * time.Minute)
}
