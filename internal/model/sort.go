// internal/model/sort.go
package model

// Sort orders the result of a Find call by a single field.
type Sort struct {
	Field string
	Desc  bool
}

// Sortable fields. Not every entity supports every field.
const (
	SortByCreatedAt          = "created_at"
	SortByRequestedAt        = "requested_at"
	SortByRenewalRequestedAt = "renewal_requested_at"
	SortByTitle              = "title"
	SortByName               = "name"
)

func Asc(field string) Sort {
	return Sort{Field: field}
}

func Desc(field string) Sort {
	return Sort{Field: field, Desc: true}
}
