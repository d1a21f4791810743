package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"text/tabwriter"

	"bookcatalog/internal/book"
	"bookcatalog/internal/filterstate"
)

// pageSize matches the browser grid.
const pageSize = book.BrowserPageSize

type lister interface {
	ListBooks(ctx context.Context, f book.Filters) (book.BooksResponse, error)
}

// browser is the terminal counterpart of the web list view: every committed URL is
// fetched and printed.
type browser struct {
	api lister
	out io.Writer

	mu   sync.Mutex
	last book.BooksResponse
}

// Navigate fetches the listing for rawURL and prints it. Debounced commits call it
// from timer goroutines, so output is serialized.
func (b *browser) Navigate(ctx context.Context, rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return err
	}
	f := book.ParseFilters(u.Query())
	f.PageSize = pageSize

	res, err := b.api.ListBooks(ctx, f)
	if err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.last = res
	fmt.Fprintf(b.out, "\n%s\n", rawURL)
	b.print(res)
	return nil
}

func (b *browser) totalPages() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.last.Pagination.TotalPages
}

func (b *browser) print(res book.BooksResponse) {
	p := res.Pagination
	if len(res.Books) == 0 {
		fmt.Fprintln(b.out, "No books found")
		return
	}

	tw := tabwriter.NewWriter(b.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tAUTHOR\tFORMAT\tPAGES")
	for _, bk := range res.Books {
		pages := "-"
		if bk.Pages != nil {
			pages = strconv.Itoa(*bk.Pages)
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n", bk.ID, bk.Title, bk.Author, bk.Format, pages)
	}
	_ = tw.Flush()

	from, to := book.ResultRange(p.CurrentPage, p.PageSize, p.TotalCount)
	fmt.Fprintf(b.out, "Showing %d to %d of %d results", from, to, p.TotalCount)
	if p.TotalPages > 1 {
		var links []string
		for _, n := range book.PageWindow(p.CurrentPage, p.TotalPages) {
			switch {
			case n == book.Ellipsis:
				links = append(links, "...")
			case n == p.CurrentPage:
				links = append(links, "["+strconv.Itoa(n)+"]")
			default:
				links = append(links, strconv.Itoa(n))
			}
		}
		fmt.Fprintf(b.out, "  pages: %s", strings.Join(links, " "))
	}
	fmt.Fprintln(b.out)
}

var errQuit = errors.New("quit")

const usage = `commands:
  title <text>          type into the search box (debounced)
  type <field> <text>   type into any text filter (title, author, publisher, subjects, synopsis)
  flush                 commit pending typing now
  set <field> <value>   stage a sidebar filter (empty value removes it)
  apply                 apply staged filters
  reset                 discard staged changes
  clear                 remove every filter
  page <n> | next | prev
  open <url>            load a URL such as /?author=martin
  show                  print current URL, staged filters and pending typing
  help | quit`

// shell maps command lines to synchronizer calls.
type shell struct {
	state *filterstate.Synchronizer
	nav   *browser
	out   io.Writer
}

func (s *shell) exec(ctx context.Context, line string) error {
	cmd, rest, _ := strings.Cut(strings.TrimSpace(line), " ")
	rest = strings.TrimSpace(rest)

	switch cmd {
	case "":
		return nil
	case "help", "?":
		fmt.Fprintln(s.out, usage)
		return nil
	case "quit", "exit":
		return errQuit
	case "title":
		return s.state.SetText(book.FieldTitle, rest)
	case "type":
		field, value, _ := strings.Cut(rest, " ")
		return s.state.SetText(field, strings.TrimSpace(value))
	case "flush":
		return s.state.Flush(ctx)
	case "set":
		field, value, _ := strings.Cut(rest, " ")
		return s.state.Stage(field, strings.TrimSpace(value))
	case "apply":
		return s.state.Apply(ctx)
	case "reset":
		s.state.ResetStaged()
		return nil
	case "clear":
		return s.state.Clear(ctx)
	case "page":
		n, err := strconv.Atoi(rest)
		if err != nil {
			return fmt.Errorf("page: %q is not a number", rest)
		}
		return s.state.SetPage(ctx, n)
	case "next":
		cur := s.state.Current().CurrentPage()
		if total := s.nav.totalPages(); cur >= total {
			return fmt.Errorf("already on the last page")
		}
		return s.state.SetPage(ctx, cur+1)
	case "prev":
		cur := s.state.Current().CurrentPage()
		if cur <= 1 {
			return fmt.Errorf("already on the first page")
		}
		return s.state.SetPage(ctx, cur-1)
	case "open":
		if err := s.state.Navigate(rest); err != nil {
			return err
		}
		return s.nav.Navigate(ctx, s.state.URL())
	case "show":
		s.show()
		return nil
	default:
		return fmt.Errorf("unknown command %q (try help)", cmd)
	}
}

func (s *shell) show() {
	fmt.Fprintf(s.out, "url:     %s\n", s.state.URL())
	fmt.Fprintf(s.out, "staged:  %s\n", s.state.Staged().QueryString())
	for _, field := range book.TextFields {
		if v, ok := s.state.PendingText(field); ok {
			fmt.Fprintf(s.out, "typing:  %s=%q\n", field, v)
		}
	}
	fmt.Fprintf(s.out, "filters: %d active\n", s.state.Current().ActiveCount())
}
