package book

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// Query parameter names shared by the browser URL and the REST listing endpoint.
const (
	FieldTitle          = "title"
	FieldAuthor         = "author"
	FieldPublisher      = "publisher"
	FieldSubjects       = "subjects"
	FieldSynopsis       = "synopsis"
	FieldPagesMin       = "pages_min"
	FieldPagesMax       = "pages_max"
	FieldFormat         = "format"
	FieldOrderBy        = "order_by"
	FieldOrderDirection = "order_direction"
	FieldPage           = "page"
	FieldPageSize       = "page_size"
)

const (
	DirectionAsc  = "ASC"
	DirectionDesc = "DESC"
)

// TextFields are matched as case-insensitive substrings.
var TextFields = []string{FieldTitle, FieldAuthor, FieldPublisher, FieldSubjects, FieldSynopsis}

// AllFields lists every parameter Filters understands, in serialization order.
var AllFields = []string{
	FieldTitle, FieldAuthor, FieldPublisher, FieldSubjects, FieldSynopsis,
	FieldPagesMin, FieldPagesMax, FieldFormat, FieldOrderBy, FieldOrderDirection,
	FieldPage, FieldPageSize,
}

// ErrUnknownField is returned when a caller references a parameter Filters does not carry.
var ErrUnknownField = errors.New("unknown filter field")

// Filters narrows and pages the book list. Zero values mean "not set": empty strings and
// non-positive numbers are never serialized.
type Filters struct {
	Title          string
	Author         string
	Publisher      string
	Subjects       string
	Synopsis       string
	PagesMin       int
	PagesMax       int
	Format         string
	OrderBy        string
	OrderDirection string
	Page           int
	PageSize       int
}

// IsKnownField reports whether name is a Filters parameter.
func IsKnownField(name string) bool {
	for _, f := range AllFields {
		if f == name {
			return true
		}
	}
	return false
}

// ParseFilters reads filters from query parameters. Text values are trimmed, numbers that
// do not parse or are not positive are dropped, and the direction is normalized to ASC/DESC.
func ParseFilters(v url.Values) Filters {
	f := Filters{
		Title:     strings.TrimSpace(v.Get(FieldTitle)),
		Author:    strings.TrimSpace(v.Get(FieldAuthor)),
		Publisher: strings.TrimSpace(v.Get(FieldPublisher)),
		Subjects:  strings.TrimSpace(v.Get(FieldSubjects)),
		Synopsis:  strings.TrimSpace(v.Get(FieldSynopsis)),
		PagesMin:  positiveInt(v.Get(FieldPagesMin)),
		PagesMax:  positiveInt(v.Get(FieldPagesMax)),
		Format:    strings.TrimSpace(v.Get(FieldFormat)),
		OrderBy:   strings.TrimSpace(v.Get(FieldOrderBy)),
		Page:      positiveInt(v.Get(FieldPage)),
		PageSize:  positiveInt(v.Get(FieldPageSize)),
	}
	switch strings.ToUpper(strings.TrimSpace(v.Get(FieldOrderDirection))) {
	case DirectionAsc:
		f.OrderDirection = DirectionAsc
	case DirectionDesc:
		f.OrderDirection = DirectionDesc
	}
	return f
}

// ParseQuery parses a raw query string (with or without a leading '?').
func ParseQuery(raw string) (Filters, error) {
	v, err := url.ParseQuery(strings.TrimPrefix(raw, "?"))
	if err != nil {
		return Filters{}, fmt.Errorf("parse query: %w", err)
	}
	return ParseFilters(v), nil
}

func positiveInt(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n <= 0 {
		return 0
	}
	return n
}

// Values serializes the filters, omitting every unset field.
func (f Filters) Values() url.Values {
	v := url.Values{}
	setString(v, FieldTitle, f.Title)
	setString(v, FieldAuthor, f.Author)
	setString(v, FieldPublisher, f.Publisher)
	setString(v, FieldSubjects, f.Subjects)
	setString(v, FieldSynopsis, f.Synopsis)
	setInt(v, FieldPagesMin, f.PagesMin)
	setInt(v, FieldPagesMax, f.PagesMax)
	setString(v, FieldFormat, f.Format)
	setString(v, FieldOrderBy, f.OrderBy)
	setString(v, FieldOrderDirection, f.OrderDirection)
	setInt(v, FieldPage, f.Page)
	setInt(v, FieldPageSize, f.PageSize)
	return v
}

func setString(v url.Values, key, value string) {
	if value = strings.TrimSpace(value); value != "" {
		v.Set(key, value)
	}
}

func setInt(v url.Values, key string, value int) {
	if value > 0 {
		v.Set(key, strconv.Itoa(value))
	}
}

// QueryString encodes the filters without a leading '?'. Empty when nothing is set.
func (f Filters) QueryString() string {
	return f.Values().Encode()
}

// URL returns path with the encoded filters appended.
func (f Filters) URL(path string) string {
	if qs := f.QueryString(); qs != "" {
		return path + "?" + qs
	}
	return path
}

// Get returns the serialized value of a single field, or "" when unset.
func (f Filters) Get(field string) string {
	return f.Values().Get(field)
}

// With returns a copy with field set to raw. An empty raw value removes the field.
func (f Filters) With(field, raw string) (Filters, error) {
	if !IsKnownField(field) {
		return f, fmt.Errorf("%w: %s", ErrUnknownField, field)
	}
	v := f.Values()
	if strings.TrimSpace(raw) == "" {
		v.Del(field)
	} else {
		v.Set(field, raw)
	}
	return ParseFilters(v), nil
}

// WithoutPaging drops page so the next listing starts from the first page.
func (f Filters) WithoutPaging() Filters {
	f.Page = 0
	return f
}

// IsEmpty reports whether no narrowing or sorting field is set (paging is ignored).
func (f Filters) IsEmpty() bool {
	f.Page, f.PageSize = 0, 0
	return f == Filters{}
}

// CurrentPage returns the page, defaulting to 1.
func (f Filters) CurrentPage() int {
	if f.Page < 1 {
		return 1
	}
	return f.Page
}

// Applied returns the echo map used in filters_applied.
func (f Filters) Applied() map[string]any {
	out := map[string]any{}
	for key, vals := range f.Values() {
		if key == FieldPage || key == FieldPageSize {
			continue
		}
		if len(vals) > 0 {
			out[key] = vals[0]
		}
	}
	return out
}

// ActiveCount counts the sidebar filters in effect: the title search, paging, the default
// ASC direction and an empty sort column are not counted.
func (f Filters) ActiveCount() int {
	n := 0
	for key := range f.Values() {
		switch key {
		case FieldTitle, FieldPage, FieldPageSize:
			continue
		case FieldOrderDirection:
			if f.OrderDirection == DirectionAsc {
				continue
			}
		}
		n++
	}
	return n
}
