package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"
	"github.com/sirupsen/logrus"

	"bookcatalog/internal/app"
	"bookcatalog/internal/config"
	"bookcatalog/internal/filterstate"
	"bookcatalog/internal/logger"
)

var commands = []string{"title ", "type ", "flush", "set ", "apply", "reset", "clear", "page ", "next", "prev", "open ", "show", "help", "quit"}

func main() {
	start := flag.String("url", filterstate.RootPath, "initial catalog URL, for example /?author=martin")
	debounce := flag.Duration("debounce", filterstate.DefaultDebounce, "typing debounce delay")
	flag.Parse()

	cfg := config.MustLoad()
	logger.Setup(cfg.LogLevel, cfg.LogJSON)

	store, closeCache, err := app.NewCache(context.Background(), cfg.Cache)
	if err != nil {
		logrus.Fatalf("cache: %v", err)
	}
	defer closeCache()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	nav := &browser{api: app.NewAPIClient(cfg.Web, store, cfg.Cache.Duration), out: os.Stdout}
	state, err := filterstate.New(nav, *start, filterstate.WithDebounce(*debounce), filterstate.WithContext(ctx))
	if err != nil {
		logrus.Fatal(err)
	}
	defer state.Close()

	sh := &shell{state: state, nav: nav, out: os.Stdout}
	if err := nav.Navigate(ctx, state.URL()); err != nil {
		fmt.Fprintf(os.Stdout, "error: %v\n", err)
	}
	run(ctx, sh)
}

func historyPath() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "bookcatalog", "history")
}

func run(ctx context.Context, sh *shell) {
	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)
	line.SetCompleter(func(l string) (c []string) {
		for _, cmd := range commands {
			if strings.HasPrefix(cmd, strings.ToLower(l)) {
				c = append(c, cmd)
			}
		}
		return c
	})

	hist := historyPath()
	if hist != "" {
		if f, err := os.Open(hist); err == nil {
			_, _ = line.ReadHistory(f)
			_ = f.Close()
		}
		defer func() {
			_ = os.MkdirAll(filepath.Dir(hist), 0o755)
			if f, err := os.Create(hist); err == nil {
				_, _ = line.WriteHistory(f)
				_ = f.Close()
			}
		}()
	}

	fmt.Fprintln(sh.out, "type help for commands")
	for {
		input, err := line.Prompt("catalog> ")
		if errors.Is(err, liner.ErrPromptAborted) || errors.Is(err, io.EOF) {
			return
		}
		if err != nil {
			logrus.WithError(err).Error("read line")
			return
		}
		if strings.TrimSpace(input) != "" {
			line.AppendHistory(input)
		}

		if err := sh.exec(ctx, input); errors.Is(err, errQuit) {
			return
		} else if err != nil {
			fmt.Fprintf(sh.out, "error: %v\n", err)
		}
	}
}
