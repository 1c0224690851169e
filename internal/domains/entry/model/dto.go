package model

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// ============================================
// REQUESTS
// ============================================

// CreateEntryRequest is the validated input of the create operation.
type CreateEntryRequest struct {
	Title     string     `json:"title"`
	Author    string     `json:"author"`
	StartDate time.Time  `json:"start_date"`
	EndDate   *time.Time `json:"end_date"`
	Rating    *string    `json:"rating"`
	Notes     *string    `json:"notes"`
}

func (r CreateEntryRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Title,
			validation.Required.Error("title is required"),
			validation.RuneLength(1, MaxTitleLength).Error("title must be at most 30 characters"),
		),
		validation.Field(&r.Author,
			validation.Required.Error("author is required"),
		),
		validation.Field(&r.StartDate,
			validation.Required.Error("start_date is required"),
		),
		validation.Field(&r.Rating,
			validation.RuneLength(0, MaxTextLength).Error("rating must be at most 300 characters"),
		),
		validation.Field(&r.Notes,
			validation.RuneLength(0, MaxTextLength).Error("notes must be at most 300 characters"),
		),
	)
}

// ToEntry builds the entity to persist.
func (r CreateEntryRequest) ToEntry() *Entry {
	e := &Entry{
		Title:     r.Title,
		Author:    r.Author,
		StartDate: NormalizeDate(r.StartDate),
		Rating:    r.Rating,
		Notes:     r.Notes,
	}
	if r.EndDate != nil {
		end := NormalizeDate(*r.EndDate)
		e.EndDate = &end
	}
	return e
}

// UpdateEntryRequest is the validated input of the update operation.
// Title is only the lookup query, nil fields are absent.
type UpdateEntryRequest struct {
	Title     string     `json:"gettitle"`
	Author    *string    `json:"getauthor"`
	StartDate *time.Time `json:"getstart_date"`
	EndDate   *time.Time `json:"getend_date"`
	Rating    *string    `json:"getrating"`
	Notes     *string    `json:"getnotes"`
}

func (r UpdateEntryRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Title,
			validation.Required.Error("gettitle is required"),
		),
		validation.Field(&r.Author,
			validation.NilOrNotEmpty.Error("getauthor must not be empty"),
		),
		validation.Field(&r.StartDate,
			validation.NilOrNotEmpty.Error("getstart_date must not be empty"),
		),
		validation.Field(&r.Rating,
			validation.RuneLength(0, MaxTextLength).Error("getrating must be at most 300 characters"),
		),
		validation.Field(&r.Notes,
			validation.RuneLength(0, MaxTextLength).Error("getnotes must be at most 300 characters"),
		),
	)
}

// ============================================
// RESPONSES
// ============================================

// EntryResponse is the JSON shape of an entry. Dates are YYYY-MM-DD.
type EntryResponse struct {
	Title     string  `json:"title"`
	Author    string  `json:"author"`
	StartDate string  `json:"start_date"`
	EndDate   *string `json:"end_date"`
	Rating    *string `json:"rating"`
	Notes     *string `json:"notes"`
}
