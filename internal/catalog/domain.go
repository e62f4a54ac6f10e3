// internal/catalog/domain.go
package catalog

import (
	"strings"

	"github.com/Sudhirkumar6009/LibraXpert-sub000/internal/apperr"
	"github.com/Sudhirkumar6009/LibraXpert-sub000/internal/model"
)

const (
	actionAdded   = "added"
	actionUpdated = "updated"
	actionRemoved = "removed"
)

// BookInput carries the fields of a new catalog entry.
type BookInput struct {
	Title       string           `json:"title"`
	Author      string           `json:"author"`
	ISBN        string           `json:"isbn"`
	Categories  []string         `json:"categories"`
	Description string           `json:"description"`
	TotalCopies int              `json:"total_copies"`
	Status      model.BookStatus `json:"status"`
	Rating      float64          `json:"rating"`
	CoverImage  string           `json:"cover_image"`
	PDFFile     string           `json:"pdf_file"`
	Tags        []string         `json:"tags"`
}

func (in *BookInput) normalize() {
	in.Title = strings.TrimSpace(in.Title)
	in.Author = strings.TrimSpace(in.Author)
	in.ISBN = strings.TrimSpace(in.ISBN)
	if in.Status == "" {
		in.Status = model.BookAvailable
	}
}

func (in *BookInput) validate() error {
	switch {
	case in.Title == "":
		return apperr.Invalid("title is required")
	case in.Author == "":
		return apperr.Invalid("author is required")
	case in.TotalCopies < 0:
		return apperr.Invalid("total_copies cannot be negative")
	case !in.Status.Valid():
		return apperr.Invalid("unknown status %q", in.Status)
	case in.Rating < 0 || in.Rating > 5:
		return apperr.Invalid("rating must be between 0 and 5")
	}
	return nil
}

// BookPatch updates only the non-nil fields.
type BookPatch struct {
	Title       *string           `json:"title"`
	Author      *string           `json:"author"`
	ISBN        *string           `json:"isbn"`
	Categories  []string          `json:"categories"`
	Description *string           `json:"description"`
	TotalCopies *int              `json:"total_copies"`
	Status      *model.BookStatus `json:"status"`
	Rating      *float64          `json:"rating"`
	CoverImage  *string           `json:"cover_image"`
	PDFFile     *string           `json:"pdf_file"`
	Tags        []string          `json:"tags"`
}

// apply mutates b and returns it as an input for validation.
func (p *BookPatch) apply(b *model.Book) BookInput {
	if p.Title != nil {
		b.Title = *p.Title
	}
	if p.Author != nil {
		b.Author = *p.Author
	}
	if p.ISBN != nil {
		b.ISBN = *p.ISBN
	}
	if p.Categories != nil {
		b.Categories = p.Categories
	}
	if p.Description != nil {
		b.Description = *p.Description
	}
	if p.TotalCopies != nil {
		b.AvailableCopies = shiftAvailable(b.AvailableCopies, b.TotalCopies, *p.TotalCopies)
		b.TotalCopies = *p.TotalCopies
	}
	if p.Status != nil {
		b.Status = *p.Status
	}
	if p.Rating != nil {
		b.Rating = *p.Rating
	}
	if p.CoverImage != nil {
		b.CoverImage = *p.CoverImage
	}
	if p.PDFFile != nil {
		b.PDFFile = *p.PDFFile
	}
	if p.Tags != nil {
		b.Tags = p.Tags
	}

	in := BookInput{
		Title: b.Title, Author: b.Author, ISBN: b.ISBN,
		TotalCopies: b.TotalCopies, Status: b.Status, Rating: b.Rating,
	}
	in.normalize()
	b.Title, b.Author, b.ISBN = in.Title, in.Author, in.ISBN
	return in
}

// shiftAvailable moves available by the change in total copies, clamped to
// [0, newTotal].
func shiftAvailable(available, oldTotal, newTotal int) int {
	shifted := available + (newTotal - oldTotal)
	return min(max(shifted, 0), max(newTotal, 0))
}

// Query filters ListBooks. Empty fields are ignored.
type Query struct {
	Search   string
	Category string
	Status   model.BookStatus
}

func (q Query) filter() model.FindBook {
	var f model.FindBook
	if s := strings.TrimSpace(q.Search); s != "" {
		f.Search = &s
	}
	if q.Category != "" {
		f.Category = &q.Category
	}
	if q.Status != "" {
		f.Status = &q.Status
	}
	return f
}
