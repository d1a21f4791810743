package web

import (
	"embed"
	"html"
	"html/template"
	"net/url"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"

	"bookcatalog/internal/book"
)

//go:embed templates/*.html
var templateFS embed.FS

func parseTemplates() *template.Template {
	return template.Must(template.New("web").ParseFS(templateFS, "templates/*.html"))
}

const excerptLength = 150

// page carries what the layout needs on every view.
type page struct {
	Title        string
	PublicAPIURL string
	MockMode     bool
	Banner       *banner
}

type banner struct {
	Kind string
	Text string
}

type bookCard struct {
	book.Book
	Excerpt      string
	SynopsisHTML template.HTML
	ISBN13Text   string
	EditURL      string
	DeleteURL    string
}

type pageLink struct {
	Number   int
	URL      string
	Current  bool
	Ellipsis bool
}

type listView struct {
	page
	Filters     book.Filters
	Staged      book.Filters
	Query       string
	Books       []bookCard
	Pagination  book.Pagination
	Pages       []pageLink
	From, To    int
	FirstURL    string
	PrevURL     string
	NextURL     string
	LastURL     string
	ActiveCount int
	Formats     []string
	SortColumns []string
}

type formView struct {
	page
	BookID  int64
	Action  string
	Form    book.BookForm
	Errors  map[string]string
	Formats []string
}

// sanitizer renders book text that may carry markup from imported records.
type sanitizer struct {
	rich  *bluemonday.Policy
	plain *bluemonday.Policy
}

func newSanitizer() sanitizer {
	return sanitizer{rich: bluemonday.UGCPolicy(), plain: bluemonday.StrictPolicy()}
}

// text strips every tag and returns plain text ready for template escaping.
func (s sanitizer) text(in string) string {
	return strings.TrimSpace(html.UnescapeString(s.plain.Sanitize(in)))
}

func (s sanitizer) html(in string) template.HTML {
	return template.HTML(s.rich.Sanitize(in))
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return strings.TrimSpace(string(r[:n])) + "..."
}

func (s sanitizer) card(b book.Book) bookCard {
	c := bookCard{
		Book:         b,
		SynopsisHTML: s.html(b.Synopsis),
		EditURL:      "/books/" + strconv.FormatInt(b.ID, 10) + "/edit",
		DeleteURL:    "/books/" + strconv.FormatInt(b.ID, 10) + "/delete",
	}
	c.Title = s.text(b.Title)
	c.Author = s.text(b.Author)
	c.Publisher = s.text(b.Publisher)
	c.Subjects = s.text(b.Subjects)
	c.Format = s.text(b.Format)
	c.Excerpt = truncate(s.text(b.Synopsis), excerptLength)
	if b.ISBN13 != nil {
		c.ISBN13Text = strconv.FormatInt(*b.ISBN13, 10)
	}
	return c
}

func pageURL(f book.Filters, n int) string {
	f.Page = n
	return f.URL("/")
}

func newListView(p page, f book.Filters, staged book.Filters, res book.BooksResponse, s sanitizer) listView {
	v := listView{
		page:        p,
		Filters:     f,
		Staged:      staged,
		Query:       f.QueryString(),
		Pagination:  res.Pagination,
		ActiveCount: f.ActiveCount(),
		Formats:     book.Formats,
		SortColumns: book.SortColumns,
	}
	for _, b := range res.Books {
		v.Books = append(v.Books, s.card(b))
	}

	pg := res.Pagination
	v.From, v.To = book.ResultRange(pg.CurrentPage, pg.PageSize, pg.TotalCount)
	v.FirstURL = pageURL(f, 1)
	v.PrevURL = pageURL(f, pg.CurrentPage-1)
	v.NextURL = pageURL(f, pg.CurrentPage+1)
	v.LastURL = pageURL(f, pg.TotalPages)
	for _, n := range book.PageWindow(pg.CurrentPage, pg.TotalPages) {
		if n == book.Ellipsis {
			v.Pages = append(v.Pages, pageLink{Ellipsis: true})
			continue
		}
		v.Pages = append(v.Pages, pageLink{Number: n, URL: pageURL(f, n), Current: n == pg.CurrentPage})
	}
	return v
}

var bannerText = map[string]string{
	"created": "Book created successfully",
	"updated": "Book updated successfully",
	"deleted": "Book deleted successfully",
}

var errorText = map[string]string{
	"create-failed": "Failed to create book",
	"update-failed": "Failed to update book",
	"delete-failed": "Failed to delete book",
	"load-failed":   "Failed to load book",
}

// bannerFrom reads the status flags a mutation redirect leaves in the query.
func bannerFrom(q url.Values) *banner {
	if code := q.Get("error"); code != "" {
		text, ok := errorText[code]
		if !ok {
			text = "Something went wrong"
		}
		if msg := q.Get("message"); msg != "" {
			text += ": " + msg
		}
		return &banner{Kind: "error", Text: text}
	}
	for _, flag := range []string{"created", "updated", "deleted"} {
		if q.Get(flag) == "true" {
			return &banner{Kind: "success", Text: bannerText[flag]}
		}
	}
	return nil
}

func formErrors(errs []book.ValidationError) map[string]string {
	out := make(map[string]string, len(errs))
	for _, e := range errs {
		out[e.Field] = e.Message
	}
	return out
}
