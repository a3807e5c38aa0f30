package storage

// Pagination describes the page selected by a paginated query
type Pagination struct {
	StartLocation  int `json:"start_location"`
	Count          int `json:"count"`
	Pages          int `json:"pages"`
	CurrentPage    int `json:"current_page"`
	ResultsPerPage int `json:"results_per_page"`
}

// NewPagination computes page bounds for count rows. Pages are numbered from
// one; a current page below one selects the first page and a page past the end
// selects the last.
func NewPagination(count, currentPage, perPage int) *Pagination {
	if perPage <= 0 {
		perPage = 1
	}
	pages := (count + perPage - 1) / perPage
	if currentPage < 1 {
		currentPage = 1
	}
	if pages > 0 && currentPage > pages {
		currentPage = pages
	}
	return &Pagination{
		StartLocation:  (currentPage - 1) * perPage,
		Count:          count,
		Pages:          pages,
		CurrentPage:    currentPage,
		ResultsPerPage: perPage,
	}
}

// Map returns the pagination as a generic map, the shape stored in model collections
func (p *Pagination) Map() map[string]any {
	return map[string]any{
		"start_location":   p.StartLocation,
		"count":            p.Count,
		"pages":            p.Pages,
		"current_page":     p.CurrentPage,
		"results_per_page": p.ResultsPerPage,
	}
}
