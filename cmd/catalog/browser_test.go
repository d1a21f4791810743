package main

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bookcatalog/internal/book"
	"bookcatalog/internal/filterstate"
	"bookcatalog/internal/mockapi"
	"bookcatalog/internal/platform/libraryapi"
)

func newShell(t *testing.T, opts ...mockapi.Option) (*shell, *bytes.Buffer) {
	t.Helper()
	opts = append([]mockapi.Option{mockapi.WithLatency(0)}, opts...)
	client := libraryapi.NewClient("http://backend:5000", time.Second, libraryapi.WithTransport(mockapi.New(opts...)))

	var out bytes.Buffer
	nav := &browser{api: client, out: &out}
	state, err := filterstate.New(nav, "/", filterstate.WithDebounce(time.Hour))
	require.NoError(t, err)
	t.Cleanup(state.Close)
	return &shell{state: state, nav: nav, out: &out}, &out
}

func manyBooks(n int) []book.Book {
	out := make([]book.Book, n)
	for i := range out {
		out[i] = book.Book{ID: int64(i + 1), Title: "Book", Author: "Author", Format: "Print"}
	}
	return out
}

func TestBrowser_PrintsListing(t *testing.T) {
	sh, out := newShell(t)

	require.NoError(t, sh.nav.Navigate(context.Background(), "/?author=martin"))
	s := out.String()
	assert.Contains(t, s, "/?author=martin")
	assert.Contains(t, s, "Clean Code")
	assert.Contains(t, s, "Showing 1 to 3 of 3 results")
	assert.NotContains(t, s, "JavaScript")
}

func TestBrowser_NoMatches(t *testing.T) {
	sh, out := newShell(t)

	require.NoError(t, sh.nav.Navigate(context.Background(), "/?title=zzz"))
	assert.Contains(t, out.String(), "No books found")
}

func TestShell_TitleFlush(t *testing.T) {
	sh, out := newShell(t)
	ctx := context.Background()

	require.NoError(t, sh.exec(ctx, "title javascript"))
	assert.Empty(t, out.String())

	require.NoError(t, sh.exec(ctx, "flush"))
	assert.Equal(t, "/?title=javascript", sh.state.URL())
	assert.Contains(t, out.String(), "JavaScript: The Good Parts")
}

func TestShell_StageApplyClear(t *testing.T) {
	sh, out := newShell(t)
	ctx := context.Background()

	require.NoError(t, sh.exec(ctx, "set format Digital"))
	require.NoError(t, sh.exec(ctx, "apply"))
	assert.Equal(t, "/?format=Digital&order_direction=ASC", sh.state.URL())

	require.NoError(t, sh.exec(ctx, "clear"))
	assert.Equal(t, "/", sh.state.URL())
	assert.Contains(t, out.String(), "\n/\n")
}

func TestShell_Paging(t *testing.T) {
	sh, out := newShell(t, mockapi.WithBooks(manyBooks(30)))
	ctx := context.Background()

	require.NoError(t, sh.nav.Navigate(ctx, sh.state.URL()))
	assert.Contains(t, out.String(), "pages: [1] 2 3")

	assert.Error(t, sh.exec(ctx, "prev"))
	require.NoError(t, sh.exec(ctx, "next"))
	require.NoError(t, sh.exec(ctx, "next"))
	assert.Equal(t, "/?page=3", sh.state.URL())
	assert.Contains(t, out.String(), "Showing 25 to 30 of 30 results")
	assert.Error(t, sh.exec(ctx, "next"))

	require.NoError(t, sh.exec(ctx, "page 1"))
	assert.Equal(t, "/?page=1", sh.state.URL())
	assert.Error(t, sh.exec(ctx, "page two"))
}

func TestShell_OpenAndShow(t *testing.T) {
	sh, out := newShell(t)
	ctx := context.Background()

	require.NoError(t, sh.exec(ctx, "open /?publisher=pearson"))
	assert.Equal(t, "/?publisher=pearson", sh.state.URL())

	require.NoError(t, sh.exec(ctx, "type author fowler"))
	out.Reset()
	require.NoError(t, sh.exec(ctx, "show"))
	assert.Contains(t, out.String(), "url:     /?publisher=pearson")
	assert.Contains(t, out.String(), `typing:  author="fowler"`)
	assert.Contains(t, out.String(), "filters: 1 active")
}

func TestShell_Errors(t *testing.T) {
	sh, _ := newShell(t)
	ctx := context.Background()

	assert.ErrorIs(t, sh.exec(ctx, "type format Digital"), filterstate.ErrNotTextField)
	assert.ErrorIs(t, sh.exec(ctx, "set title go"), filterstate.ErrNotSidebarField)
	assert.Error(t, sh.exec(ctx, "frobnicate"))
	assert.ErrorIs(t, sh.exec(ctx, "quit"), errQuit)
	assert.NoError(t, sh.exec(ctx, ""))
}
