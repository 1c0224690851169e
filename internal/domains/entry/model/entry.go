package model

import "time"

// Entry is one book on the shelf. Title is the natural primary key.
type Entry struct {
	Title     string     `db:"title"`
	Author    string     `db:"author"`
	StartDate time.Time  `db:"start_date"`
	EndDate   *time.Time `db:"end_date"` // nil -> still reading / not tracked
	Rating    *string    `db:"rating"`
	Notes     *string    `db:"notes"`
}

const (
	MaxTitleLength = 30
	MaxTextLength  = 300
)
