package model

import "fmt"

// CacheKeyAllEntries holds the cached Read-All payload.
const CacheKeyAllEntries = "entries:all"

func ToResponse(e *Entry) EntryResponse {
	resp := EntryResponse{
		Title:     e.Title,
		Author:    e.Author,
		StartDate: FormatDate(e.StartDate),
		Rating:    e.Rating,
		Notes:     e.Notes,
	}
	if e.EndDate != nil {
		end := FormatDate(*e.EndDate)
		resp.EndDate = &end
	}
	return resp
}

func ToResponses(entries []Entry) []EntryResponse {
	out := make([]EntryResponse, len(entries))
	for i := range entries {
		out[i] = ToResponse(&entries[i])
	}
	return out
}

// DeletedMessage echoes the title as the client typed it, not the resolved one.
func DeletedMessage(query string) string {
	return fmt.Sprintf("%s was deleted from the database", query)
}
