package model

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// CreateEntryForm is the wire shape of POST /create-book.
// HTML forms submit blank inputs as "", which is read as absent.
type CreateEntryForm struct {
	Title     string `form:"title" json:"title"`
	Author    string `form:"author" json:"author"`
	StartDate string `form:"start_date" json:"start_date"`
	EndDate   string `form:"end_date" json:"end_date"`
	Rating    string `form:"rating" json:"rating"`
	Notes     string `form:"notes" json:"notes"`
}

// ToRequest decodes and validates the form.
func (f CreateEntryForm) ToRequest() (CreateEntryRequest, error) {
	req := CreateEntryRequest{
		Title:  f.Title,
		Author: f.Author,
		Rating: optionalString(f.Rating),
		Notes:  optionalString(f.Notes),
	}

	dateErrs := validation.Errors{}
	if f.StartDate != "" {
		start, err := ParseDate(f.StartDate)
		if err != nil {
			dateErrs["start_date"] = err
		}
		req.StartDate = start
	}
	end, err := optionalDate(f.EndDate)
	if err != nil {
		dateErrs["end_date"] = err
	}
	req.EndDate = end

	if len(dateErrs) > 0 {
		return CreateEntryRequest{}, NewValidationError(dateErrs)
	}
	if err := req.Validate(); err != nil {
		return CreateEntryRequest{}, NewValidationError(err)
	}
	return req, nil
}

// UpdateEntryForm is the wire shape of PUT /update-book.
type UpdateEntryForm struct {
	GetTitle     string `form:"gettitle" json:"gettitle"`
	GetAuthor    string `form:"getauthor" json:"getauthor"`
	GetStartDate string `form:"getstart_date" json:"getstart_date"`
	GetEndDate   string `form:"getend_date" json:"getend_date"`
	GetRating    string `form:"getrating" json:"getrating"`
	GetNotes     string `form:"getnotes" json:"getnotes"`
}

// ToRequest decodes and validates the form.
func (f UpdateEntryForm) ToRequest() (UpdateEntryRequest, error) {
	req := UpdateEntryRequest{
		Title:  f.GetTitle,
		Author: optionalString(f.GetAuthor),
		Rating: optionalString(f.GetRating),
		Notes:  optionalString(f.GetNotes),
	}

	dateErrs := validation.Errors{}
	start, err := optionalDate(f.GetStartDate)
	if err != nil {
		dateErrs["getstart_date"] = err
	}
	req.StartDate = start

	end, err := optionalDate(f.GetEndDate)
	if err != nil {
		dateErrs["getend_date"] = err
	}
	req.EndDate = end

	if len(dateErrs) > 0 {
		return UpdateEntryRequest{}, NewValidationError(dateErrs)
	}
	if err := req.Validate(); err != nil {
		return UpdateEntryRequest{}, NewValidationError(err)
	}
	return req, nil
}

func optionalString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func optionalDate(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := ParseDate(s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
