package domain

// FilterAll is the sentinel meaning "no constraint" for a filter criterion.
const FilterAll = "all"

// BugFilter holds the dropdown filter selections for a bug list. Each field is
// either FilterAll (or empty, treated the same) or an exact-match value.
type BugFilter struct {
	Portal     string
	Status     string
	Priority   string
	AssignedTo string
}

// Matches reports whether the bug passes every non-"all" criterion.
func (f BugFilter) Matches(b Bug) bool {
	return matches(f.Portal, b.Portal) &&
		matches(f.Status, b.Status) &&
		matches(f.Priority, b.Priority) &&
		matches(f.AssignedTo, b.AssignedTo)
}

func matches(criterion, value string) bool {
	return criterion == "" || criterion == FilterAll || criterion == value
}

// FilterBugs returns the bugs matching the filter, preserving input order.
func FilterBugs(bugs []Bug, f BugFilter) []Bug {
	out := make([]Bug, 0, len(bugs))
	for _, b := range bugs {
		if f.Matches(b) {
			out = append(out, b)
		}
	}
	return out
}
