package book

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFilters(t *testing.T) {
	v := url.Values{
		"title":           {"  clean  "},
		"pages_min":       {"100"},
		"pages_max":       {"-4"},
		"page":            {"abc"},
		"page_size":       {"12"},
		"order_direction": {"desc"},
		"unknown":         {"x"},
	}

	f := ParseFilters(v)

	assert.Equal(t, Filters{Title: "clean", PagesMin: 100, PageSize: 12, OrderDirection: DirectionDesc}, f)
}

func TestParseFilters_DropsUnknownDirection(t *testing.T) {
	f := ParseFilters(url.Values{"order_direction": {"sideways"}})
	assert.Empty(t, f.OrderDirection)
}

func TestFilters_URL(t *testing.T) {
	tests := []struct {
		name string
		f    Filters
		want string
	}{
		{name: "empty has no query", f: Filters{}, want: "/"},
		{name: "zero numbers omitted", f: Filters{PagesMin: 0, Page: 0, Title: "go"}, want: "/?title=go"},
		{name: "keys sorted", f: Filters{Title: "a b", Format: "Digital", Page: 2}, want: "/?format=Digital&page=2&title=a+b"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.f.URL("/"))
		})
	}
}

func TestFilters_RoundTripThroughQuery(t *testing.T) {
	in := Filters{
		Title: "clean", Author: "Martin", Publisher: "O'Reilly", Subjects: "Agile", Synopsis: "craft",
		PagesMin: 10, PagesMax: 500, Format: "Physical", OrderBy: "pages", OrderDirection: DirectionAsc,
		Page: 3, PageSize: 12,
	}
	out, err := ParseQuery("?" + in.QueryString())
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestFilters_With(t *testing.T) {
	f := Filters{Title: "clean", Page: 3}

	next, err := f.With(FieldAuthor, "martin")
	require.NoError(t, err)
	assert.Equal(t, Filters{Title: "clean", Author: "martin", Page: 3}, next)

	next, err = next.With(FieldTitle, "")
	require.NoError(t, err)
	assert.Empty(t, next.Title)

	_, err = f.With("isbn", "1")
	assert.ErrorIs(t, err, ErrUnknownField)
	assert.Equal(t, Filters{Title: "clean", Page: 3}, f)
}

func TestFilters_IsEmptyIgnoresPaging(t *testing.T) {
	assert.True(t, Filters{Page: 4, PageSize: 12}.IsEmpty())
	assert.False(t, Filters{Format: "Digital"}.IsEmpty())
}

func TestFilters_ActiveCount(t *testing.T) {
	tests := []struct {
		name string
		f    Filters
		want int
	}{
		{name: "none", f: Filters{}, want: 0},
		{name: "title and paging ignored", f: Filters{Title: "x", Page: 2, PageSize: 12}, want: 0},
		{name: "asc ignored", f: Filters{OrderDirection: DirectionAsc}, want: 0},
		{name: "desc counted", f: Filters{OrderDirection: DirectionDesc}, want: 1},
		{name: "sidebar fields", f: Filters{Author: "a", Format: "Digital", PagesMin: 1, OrderBy: "title", OrderDirection: DirectionAsc}, want: 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.f.ActiveCount())
		})
	}
}

func TestFilters_Applied(t *testing.T) {
	f := Filters{Title: "go", PagesMax: 300, Page: 2, PageSize: 10}
	assert.Equal(t, map[string]any{"title": "go", "pages_max": "300"}, f.Applied())
}

func TestSlugify(t *testing.T) {
	assert.Equal(t, "robert-c-martin", Slugify("Robert C. Martin"))
	assert.Equal(t, "erich-gamma-richard-helm", Slugify("  Erich Gamma, Richard Helm "))
	assert.Equal(t, "", Slugify("..."))
}
