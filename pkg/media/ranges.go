package media

// TimeRange is a half-open span [Start, End) of buffered media, in seconds.
type TimeRange struct {
	Start float64
	End   float64
}

// TimeRanges is a set of disjoint ranges ordered by start time.
type TimeRanges []TimeRange

// Containing returns the range that covers t.
func (r TimeRanges) Containing(t float64) (TimeRange, bool) {
	for _, tr := range r {
		if t >= tr.Start && t <= tr.End {
			return tr, true
		}
	}
	return TimeRange{}, false
}

// End returns the end of the last range, or 0 if r is empty.
func (r TimeRanges) End() float64 {
	if len(r) == 0 {
		return 0
	}
	return r[len(r)-1].End
}
