package domain

import (
	"sort"
	"strings"
	"time"
)

// AppendNote returns the next full note sequence for one channel after a form
// submission. Blank input leaves the sequence untouched; otherwise the trimmed
// text is appended with the submission timestamp. The result is re-sorted
// ascending by timestamp before persisting (entries are expected to already be
// in order; the sort is defensive and stable).
func AppendNote(entries NoteList, input string, now time.Time) NoteList {
	text := strings.TrimSpace(input)
	if text == "" {
		return entries
	}

	next := make(NoteList, len(entries), len(entries)+1)
	copy(next, entries)
	next = append(next, NoteEntry{Note: text, Timestamp: now})
	sort.SliceStable(next, func(i, j int) bool {
		return next[i].Timestamp.Before(next[j].Timestamp)
	})
	return next
}

// SeedStatusHistory builds the history for a freshly created bug: exactly one
// entry carrying the initial status.
func SeedStatusHistory(status string, now time.Time) StatusHistory {
	return StatusHistory{{Status: status, Timestamp: now}}
}

// NextStatusHistory returns the history to persist after an edit. A new entry
// is appended only when the submitted status differs from the status captured
// at the start of the edit session; otherwise the prior history passes through
// unchanged. The bug's scalar status field is always set to the submitted
// value, regardless of whether history grew.
func NextStatusHistory(history StatusHistory, originalStatus, submitted string, now time.Time) StatusHistory {
	if submitted == originalStatus {
		return history
	}
	next := make(StatusHistory, len(history), len(history)+1)
	copy(next, history)
	return append(next, StatusEntry{Status: submitted, Timestamp: now})
}

// DisplayNote is a note prepared for presentation: latest first, but with the
// ordinal fixed to the entry's 1-based rank in ascending-timestamp order, so
// the oldest note is always "Note 1" no matter how many come after it.
type DisplayNote struct {
	Ordinal   int       `json:"ordinal"`
	Note      string    `json:"note"`
	Timestamp time.Time `json:"timestamp"`
}

// DisplayNotes converts a stored note sequence into display order.
func DisplayNotes(entries NoteList) []DisplayNote {
	asc := make(NoteList, len(entries))
	copy(asc, entries)
	sort.SliceStable(asc, func(i, j int) bool {
		return asc[i].Timestamp.Before(asc[j].Timestamp)
	})

	out := make([]DisplayNote, 0, len(asc))
	for i := len(asc) - 1; i >= 0; i-- {
		out = append(out, DisplayNote{
			Ordinal:   i + 1,
			Note:      asc[i].Note,
			Timestamp: asc[i].Timestamp,
		})
	}
	return out
}

// RemoveAttachment returns the attachment list without the named descriptor.
// The second result reports whether the name was present.
func RemoveAttachment(list AttachmentList, name string) (AttachmentList, bool) {
	out := make(AttachmentList, 0, len(list))
	found := false
	for _, a := range list {
		if !found && a.Name == name {
			found = true
			continue
		}
		out = append(out, a)
	}
	return out, found
}
