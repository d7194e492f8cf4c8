package usecase

// Pagination is the shared 1-based page envelope for list responses.
type Pagination struct {
	Page  int
	Limit int
	Total int
	Pages int
}

func normalizePage(page, limit, defaultLimit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultLimit
	}
	if limit > 100 {
		limit = 100
	}

	return page, limit
}

func paginationFor(page, limit, total int) Pagination {
	pages := 0
	if limit > 0 {
		pages = (total + limit - 1) / limit
	}

	return Pagination{Page: page, Limit: limit, Total: total, Pages: pages}
}
