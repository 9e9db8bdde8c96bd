package pagination

import (
	"strings"

	"gorm.io/gorm"
)

const (
	DefaultPage     = 1
	DefaultPageSize = 10
	MaxPageSize     = 100
)

type Params struct {
	Page      int    `form:"page"`
	PageSize  int    `form:"pageSize"`
	OrderBy   string `form:"orderBy"`
	SortOrder string `form:"sortOrder"`
}

// Page is the list envelope returned by every paginated endpoint.
type Page[T any] struct {
	Data  []T   `json:"data"`
	Count int64 `json:"count"`
}

func NewPage[T any](data []T, count int64) Page[T] {
	if data == nil {
		data = []T{}
	}
	return Page[T]{Data: data, Count: count}
}

// Normalize clamps paging values and resolves OrderBy through the allowed map
// (API field name -> column). Unknown fields fall back to created_at.
func (p Params) Normalize(allowed map[string]string) Params {
	if p.Page < 1 {
		p.Page = DefaultPage
	}
	if p.PageSize < 1 {
		p.PageSize = DefaultPageSize
	}
	if p.PageSize > MaxPageSize {
		p.PageSize = MaxPageSize
	}
	col, ok := allowed[strings.TrimSpace(p.OrderBy)]
	if !ok {
		col = "created_at"
	}
	p.OrderBy = col
	if strings.EqualFold(strings.TrimSpace(p.SortOrder), "ASC") {
		p.SortOrder = "ASC"
	} else {
		p.SortOrder = "DESC"
	}
	return p
}

func (p Params) Offset() int {
	if p.Page < 1 {
		return 0
	}
	return (p.Page - 1) * p.PageSize
}

// Apply adds ORDER BY, LIMIT and OFFSET. table qualifies the order column when non-empty.
func (p Params) Apply(q *gorm.DB, table string) *gorm.DB {
	col := p.OrderBy
	if table != "" && !strings.Contains(col, ".") {
		col = table + "." + col
	}
	return q.Order(col + " " + p.SortOrder).Limit(p.PageSize).Offset(p.Offset())
}
