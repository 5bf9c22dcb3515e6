// Package query turns raw listing parameters (search term, exact-match
// filters, sort and page) into a gorm query plus pagination metadata. The
// same builder serves notes, categories and the admin user list.
package query

import (
	"context"
	"errors"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"unicode"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100
	DefaultSort  = "createdAt"
)

// ErrMissingOwner is returned when an owner-scoped Spec is queried without an owner.
var ErrMissingOwner = errors.New("query: owner id required")

// Options 分页/排序参数（原样来自 query string）
type Options struct {
	SortBy    string
	SortOrder string
	Limit     string
	Page      string
}

// Params 搜索 + 精确过滤
type Params struct {
	SearchTerm string
	Filters    map[string]string
}

// Spec describes what a resource allows to be searched, filtered and sorted.
// Column names are trusted constants, never request input.
type Spec struct {
	Search      []string          // LIKE 搜索列
	Filters     map[string]string // query key -> column
	Sorts       map[string]string // query key -> column
	OwnerColumn string            // 为空表示不按用户隔离（管理端）
	IDColumn    string            // 排序兜底，默认 id
}

// SortKeys maps camelCase query keys to their snake_case columns.
func SortKeys(keys ...string) map[string]string {
	m := make(map[string]string, len(keys)+2)
	for _, k := range append([]string{"createdAt", "updatedAt"}, keys...) {
		m[k] = toSnake(k)
	}
	return m
}

type Pagination struct {
	Page       int
	Limit      int
	Skip       int
	SortColumn string
	Desc       bool
}

type Meta struct {
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
}

type Result[T any] struct {
	Data []T `json:"data"`
	Meta Meta `json:"meta"`
}

// Pick 从 url.Values 中挑出已知的 key，其余忽略
func Pick(v url.Values, s Spec) (Params, Options) {
	p := Params{SearchTerm: v.Get("searchTerm"), Filters: map[string]string{}}
	for key := range s.Filters {
		if val := v.Get(key); val != "" {
			p.Filters[key] = val
		}
	}
	o := Options{
		SortBy:    v.Get("sortBy"),
		SortOrder: v.Get("sortOrder"),
		Limit:     v.Get("limit"),
		Page:      v.Get("page"),
	}
	return p, o
}

// Paginate resolves page/limit/sort. Non-numeric or non-positive page and limit
// fall back to the defaults; limit is capped at MaxLimit. Unknown sort keys use
// createdAt. Any sortOrder other than "asc" sorts descending.
func Paginate(o Options, s Spec) Pagination {
	page := atoiDefault(o.Page, DefaultPage)
	limit := atoiDefault(o.Limit, DefaultLimit)
	if limit > MaxLimit {
		limit = MaxLimit
	}
	sorts := s.Sorts
	if sorts == nil {
		sorts = SortKeys()
	}
	col, ok := sorts[o.SortBy]
	if !ok {
		col = toSnake(DefaultSort)
	}
	return Pagination{
		Page:       page,
		Limit:      limit,
		Skip:       (page - 1) * limit,
		SortColumn: col,
		Desc:       o.SortOrder != "asc",
	}
}

// Scope builds the WHERE part: owner equality, then the search OR-group, then
// each recognized exact-match filter, all joined with AND. The owner condition
// is separate from the caller-controlled filters so it cannot be overridden.
func (s Spec) Scope(ownerID string, p Params) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if s.OwnerColumn != "" {
			db = db.Where(s.OwnerColumn+" = ?", ownerID)
		}
		if term := strings.TrimSpace(p.SearchTerm); term != "" && len(s.Search) > 0 {
			like := "%" + escapeLike(strings.ToLower(term)) + "%"
			parts := make([]string, 0, len(s.Search))
			args := make([]any, 0, len(s.Search))
			for _, col := range s.Search {
				parts = append(parts, "LOWER("+col+") LIKE ? ESCAPE '!'")
				args = append(args, like)
			}
			db = db.Where("("+strings.Join(parts, " OR ")+")", args...)
		}
		keys := make([]string, 0, len(p.Filters))
		for k := range p.Filters {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			col, ok := s.Filters[k]
			if !ok || p.Filters[k] == "" {
				continue
			}
			db = db.Where(col+" = ?", p.Filters[k])
		}
		return db
	}
}

// Find counts all matching rows and fetches one page of them. extra scopes
// (preloads, selects) only apply to the page fetch.
func Find[T any](ctx context.Context, db *gorm.DB, s Spec, ownerID string, p Params, o Options, extra ...func(*gorm.DB) *gorm.DB) (*Result[T], error) {
	if s.OwnerColumn != "" && ownerID == "" {
		return nil, ErrMissingOwner
	}
	pg := Paginate(o, s)
	scope := s.Scope(ownerID, p)

	var total int64
	if err := db.WithContext(ctx).Model(new(T)).Scopes(scope).Count(&total).Error; err != nil {
		return nil, err
	}

	idCol := s.IDColumn
	if idCol == "" {
		idCol = "id"
	}
	items := make([]T, 0, pg.Limit)
	err := db.WithContext(ctx).Model(new(T)).Scopes(scope).Scopes(extra...).
		Order(clause.OrderByColumn{Column: clause.Column{Name: pg.SortColumn}, Desc: pg.Desc}).
		Order(clause.OrderByColumn{Column: clause.Column{Name: idCol}, Desc: pg.Desc}).
		Limit(pg.Limit).Offset(pg.Skip).
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return &Result[T]{Data: items, Meta: Meta{Page: pg.Page, Limit: pg.Limit, Total: total}}, nil
}

func escapeLike(s string) string {
	r := strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")
	return r.Replace(s)
}

func atoiDefault(s string, def int) int {
	if v, err := strconv.Atoi(strings.TrimSpace(s)); err == nil && v > 0 {
		return v
	}
	return def
}

func toSnake(s string) string {
	var b strings.Builder
	for i, r := range s {
		if unicode.IsUpper(r) {
			if i > 0 {
				b.WriteByte('_')
			}
			b.WriteRune(unicode.ToLower(r))
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Envelope splits the result for the response body.
func (r *Result[T]) Envelope() (data any, meta any) { return r.Data, r.Meta }
