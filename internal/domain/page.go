package domain

// Page is the backend's pagination envelope. Every paginated query returns
// its items under content together with the page cursor fields.
type Page[T any] struct {
	Content       []T `json:"content"`
	TotalElements int `json:"totalElements"`
	TotalPages    int `json:"totalPages"`
	Page          int `json:"page"`
	Size          int `json:"size"`
}

// HasPrev reports whether a previous page exists.
func (p *Page[T]) HasPrev() bool {
	return p.Page > 0
}

// HasNext reports whether a next page exists.
func (p *Page[T]) HasNext() bool {
	return p.Page < p.TotalPages-1
}

// PageRequest carries the page/size pair parsed from list-view query strings.
type PageRequest struct {
	Page int
	Size int
}

// DefaultPageSize matches the backend's default page size.
const DefaultPageSize = 10

// Normalize clamps the request to sane bounds.
func (pr PageRequest) Normalize() PageRequest {
	if pr.Page < 0 {
		pr.Page = 0
	}
	if pr.Size <= 0 || pr.Size > 100 {
		pr.Size = DefaultPageSize
	}
	return pr
}
