package order

// QueryOrdersModel represents filter parameters for querying orders
type QueryOrdersModel struct {
	Ids         []string `json:"ids,omitempty"`
	UserRefs    []string `json:"userRefs,omitempty"`
	Statuses    []Status `json:"statuses,omitempty"`
	IsPaid      *bool    `json:"isPaid,omitempty"`
	IsDelivered *bool    `json:"isDelivered,omitempty"`
	Limit       int      `json:"limit,omitempty"`
	Offset      int      `json:"offset,omitempty"`
}

// MaxPageSize caps the number of orders returned by one query.
const MaxPageSize = 200

// Page selects a 1-based page of results. A zero PageSize means no paging.
type Page struct {
	Page     int `schema:"page"`
	PageSize int `schema:"page_size"`
}

// Bounds returns the limit and offset selected by p.
// PageSize is capped at MaxPageSize before the offset is computed,
// so consecutive pages never leave a gap.
func (p Page) Bounds() (limit, offset int) {
	if p.PageSize <= 0 {
		return 0, 0
	}
	limit = min(p.PageSize, MaxPageSize)
	if p.Page > 1 {
		offset = (p.Page - 1) * limit
	}

	return limit, offset
}
