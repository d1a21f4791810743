package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"math/rand"
	"os"

	"github.com/schollz/progressbar/v3"
	"github.com/sirupsen/logrus"

	"bookcatalog/internal/app"
	"bookcatalog/internal/book"
	"bookcatalog/internal/config"
	"bookcatalog/internal/logger"
	"bookcatalog/internal/mockapi"
)

type creator interface {
	CreateBook(ctx context.Context, b book.Book) (book.MutationResponse, error)
}

func main() {
	generate := flag.Int("generate", 0, "also create N synthetic books")
	flag.Parse()

	cfg := config.MustLoad()
	logger.Setup(cfg.LogLevel, cfg.LogJSON)

	// Seeding always targets a real backend and never caches.
	webCfg := cfg.Web
	webCfg.MockAPI, webCfg.CypressTest = false, false
	client := app.NewAPIClient(webCfg, nil, 0)

	books := append(mockapi.SeedData(), synthetic(rand.New(rand.NewSource(1)), *generate)...)
	logrus.WithFields(logrus.Fields{"api": cfg.Web.APIURL, "books": len(books)}).Info("seeding catalog")

	created, err := seed(context.Background(), client, books, os.Stderr)
	logrus.Infof("Successfully created %d/%d books", created, len(books))
	if err != nil {
		logrus.Fatalf("seed: %v", err)
	}
}

// seed creates books one by one and stops at the first failure.
func seed(ctx context.Context, api creator, books []book.Book, progress io.Writer) (int, error) {
	bar := progressbar.NewOptions(len(books),
		progressbar.OptionSetWriter(progress),
		progressbar.OptionSetDescription("creating books"),
		progressbar.OptionShowCount(),
	)
	defer func() { _ = bar.Finish() }()

	for i, b := range books {
		b.ID = 0
		if _, err := api.CreateBook(ctx, b); err != nil {
			return i, fmt.Errorf("create %q: %w", b.Title, err)
		}
		_ = bar.Add(1)
	}
	return len(books), nil
}

var (
	formats    = []string{"Print", "Digital", "Audio"}
	publishers = []string{"Penguin", "HarperCollins", "Oxford", "Cambridge", "MIT Press", "Springer", "Wiley", "O'Reilly Media"}
	subjects   = []string{"Fiction", "Science Fiction", "History", "Science", "Technology", "Romance", "Mystery", "Biography", "Philosophy", "Art"}
	words      = []string{
		"Adventure", "Mystery", "Journey", "Discovery", "Secrets", "Dreams", "Hope",
		"Love", "War", "Peace", "Science", "Nature", "Technology", "History", "Future",
		"Past", "Present", "Reality", "Imagination", "Wisdom", "Life", "Light",
		"Darkness", "World", "Universe", "Time", "Space", "Mind", "Soul",
	}
	authors = []string{"Ada Lovelace", "Grace Hopper", "Alan Turing", "Barbara Liskov", "Donald Knuth", "Edsger Dijkstra"}
)

func pick(r *rand.Rand, from []string) string {
	return from[r.Intn(len(from))]
}

func synthetic(r *rand.Rand, n int) []book.Book {
	out := make([]book.Book, 0, n)
	for i := 0; i < n; i++ {
		pages := 100 + r.Intn(800)
		isbn := int64(9780000000000 + i + 1)
		out = append(out, book.Book{
			Title:     fmt.Sprintf("Book Title %d - %s", i+1, pick(r, words)),
			Author:    pick(r, authors),
			Publisher: pick(r, publishers),
			Synopsis:  fmt.Sprintf("<p>This is a book about %s.</p>", pick(r, words)),
			Subjects:  pick(r, subjects) + ", " + pick(r, subjects),
			Pages:     &pages,
			Format:    pick(r, formats),
			Price:     fmt.Sprintf("%d.99", 9+r.Intn(50)),
			ISBN13:    &isbn,
		})
	}
	return out
}
