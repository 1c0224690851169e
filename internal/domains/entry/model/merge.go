package model

import "time"

// Merge applies an update to existing, field by field.
// A field is overwritten when the incoming value is present and differs,
// or when the existing value is empty. An absent value never clears a
// populated field. Title is not touched.
// Returns the names of the fields whose value actually changed.
func Merge(existing *Entry, in UpdateEntryRequest) []string {
	var changed []string

	// author and start_date are NOT NULL: they are never empty, so only a
	// present and different value writes.
	if in.Author != nil && *in.Author != existing.Author {
		existing.Author = *in.Author
		changed = append(changed, "author")
	}

	if in.StartDate != nil && (existing.StartDate.IsZero() || !SameDate(*in.StartDate, existing.StartDate)) {
		existing.StartDate = NormalizeDate(*in.StartDate)
		changed = append(changed, "start_date")
	}

	if mergeDate(&existing.EndDate, in.EndDate) {
		changed = append(changed, "end_date")
	}
	if mergeText(&existing.Rating, in.Rating) {
		changed = append(changed, "rating")
	}
	if mergeText(&existing.Notes, in.Notes) {
		changed = append(changed, "notes")
	}

	return changed
}

func mergeText(existing **string, in *string) bool {
	cur := *existing
	empty := cur == nil || *cur == ""
	differs := in != nil && (cur == nil || *cur != *in)
	if !differs && !empty {
		return false
	}

	var next *string
	if in != nil {
		v := *in
		next = &v
	}
	*existing = next
	return !equalText(cur, next)
}

func mergeDate(existing **time.Time, in *time.Time) bool {
	cur := *existing
	empty := cur == nil || cur.IsZero()
	differs := in != nil && (cur == nil || !SameDate(*cur, *in))
	if !differs && !empty {
		return false
	}

	var next *time.Time
	if in != nil {
		v := NormalizeDate(*in)
		next = &v
	}
	*existing = next
	return !equalDate(cur, next)
}

func equalText(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func equalDate(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == b
	}
	return SameDate(*a, *b)
}
