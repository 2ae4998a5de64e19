package entities

import "net/url"

const (
	DefaultLimit = 50
	MaxLimit     = 200
)

// ListQuery carries pagination and filter parameters of a list action.
// Paginate is false when the client did not ask for a page; the whole
// collection is returned then.
type ListQuery struct {
	Paginate bool
	Limit    int
	Offset   int
	Filters  url.Values
}

// Page is the envelope of a paginated list response.
type Page[T any] struct {
	Total   int `json:"total"`
	Limit   int `json:"limit"`
	Offset  int `json:"offset"`
	Results []T `json:"results"`
}
