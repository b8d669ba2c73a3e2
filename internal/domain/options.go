package domain

import "sort"

// OptionCategory identifies one of the enum-like dropdown fields on a bug.
type OptionCategory string

const (
	OptionPortal     OptionCategory = "portal"
	OptionPriority   OptionCategory = "priority"
	OptionStatus     OptionCategory = "status"
	OptionAssignedTo OptionCategory = "assigned_to"
)

// Built-in option sets. These are always selectable, always listed first in
// this order, and can never be removed.
var (
	DefaultPortalOptions   = []string{"Admin Panel", "Customer Side"}
	DefaultPriorityOptions = []string{"Minor", "Medium", "Major", "Critical"}
	DefaultStatusOptions   = []string{
		"Open", "In Progress", "Ready for QA", "Closed",
		"Reopened", "Not a Bug", "Needs Clarification", "Out of Scope",
	}
	DefaultAssignedToOptions = []string{"Developer", "Frontend", "Backend"}
)

// DefaultOptions returns the built-in value set for a category, or nil for an
// unknown category.
func DefaultOptions(category OptionCategory) []string {
	switch category {
	case OptionPortal:
		return DefaultPortalOptions
	case OptionPriority:
		return DefaultPriorityOptions
	case OptionStatus:
		return DefaultStatusOptions
	case OptionAssignedTo:
		return DefaultAssignedToOptions
	default:
		return nil
	}
}

// IsDefaultOption reports whether value is one of the category's built-ins.
func IsDefaultOption(category OptionCategory, value string) bool {
	for _, v := range DefaultOptions(category) {
		if v == value {
			return true
		}
	}
	return false
}

// AvailableOptions computes the selectable value set for a dropdown: the
// built-ins in their fixed order, then the remaining members of
// custom ∪ observed, deduplicated and sorted lexicographically. Observed values
// keep historical data selectable even when the custom option that produced
// them was later removed.
func AvailableOptions(builtins, custom, observed []string) []string {
	seen := make(map[string]struct{}, len(builtins)+len(custom)+len(observed))
	out := make([]string, 0, len(builtins)+len(custom)+len(observed))

	for _, v := range builtins {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}

	var extra []string
	for _, v := range append(append([]string{}, custom...), observed...) {
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		extra = append(extra, v)
	}
	sort.Strings(extra)

	return append(out, extra...)
}
