// internal/model/book.go
package model

import (
	"time"

	"github.com/google/uuid"
)

// BookStatus is advisory. Workflows never recompute it from AvailableCopies.
type BookStatus string

const (
	BookAvailable   BookStatus = "available"
	BookReserved    BookStatus = "reserved"
	BookBorrowed    BookStatus = "borrowed"
	BookUnavailable BookStatus = "unavailable"
)

func (s BookStatus) Valid() bool {
	switch s {
	case BookAvailable, BookReserved, BookBorrowed, BookUnavailable:
		return true
	}
	return false
}

// Book represents a catalog item.
type Book struct {
	ID              uuid.UUID  `json:"id"`
	Title           string     `json:"title"`
	Author          string     `json:"author"`
	ISBN            string     `json:"isbn,omitempty"`
	Categories      []string   `json:"categories"`
	Description     string     `json:"description,omitempty"`
	TotalCopies     int        `json:"total_copies"`
	AvailableCopies int        `json:"available_copies"`
	Status          BookStatus `json:"status"`
	Rating          float64    `json:"rating"`
	CoverImage      string     `json:"cover_image,omitempty"`
	PDFFile         string     `json:"pdf_file,omitempty"`
	Tags            []string   `json:"tags"`
	AddedBy         uuid.UUID  `json:"added_by"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// Clone returns a copy that shares no slices with b.
func (b *Book) Clone() *Book {
	c := *b
	c.Categories = append([]string(nil), b.Categories...)
	c.Tags = append([]string(nil), b.Tags...)
	return &c
}

// BookSummary is the expanded form of a book reference.
type BookSummary struct {
	ID     uuid.UUID `json:"id"`
	Title  string    `json:"title"`
	Author string    `json:"author"`
	ISBN   string    `json:"isbn,omitempty"`
}

func (b *Book) Summary() *BookSummary {
	if b == nil {
		return nil
	}
	return &BookSummary{ID: b.ID, Title: b.Title, Author: b.Author, ISBN: b.ISBN}
}

// FindBook selects books. Nil fields are ignored.
type FindBook struct {
	ID       *uuid.UUID
	ISBN     *string
	Category *string
	// Search matches title or author, case-insensitive substring.
	Search *string
	Status *BookStatus
}
