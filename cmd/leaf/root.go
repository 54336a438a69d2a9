package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/mmcdole/leaf/internal/adapter"
	"github.com/mmcdole/leaf/internal/reader"
	"github.com/mmcdole/leaf/internal/render"
	"github.com/mmcdole/leaf/internal/schedule"
	"github.com/mmcdole/leaf/internal/store"
	"github.com/mmcdole/leaf/internal/tui"
)

var (
	cfgFile     string
	startPage   int
	chapterName string
)

var rootCmd = &cobra.Command{
	Use:   "leaf FILE",
	Short: "Read a text book in the terminal, one page turn at a time",
	Long: `Leaf lays a plain text or Markdown book out as a two-page spread and
turns its pages with an animated leaf. Narrow terminals show one page.

Lines starting with "# " begin a new chapter. Images written as ![alt](path)
show as placeholders and open in an external viewer with "o".

Your place in every book is remembered between sessions.

Examples:
  leaf novel.md                  # Open where you left off
  leaf novel.md --page 120       # Open at page 120
  leaf novel.md --chapter river  # Open at the chapter best matching "river"`,
	Version:       Version,
	Args:          cobra.ExactArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runReader(args[0])
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile, "config", "", "config file (default: ~/.config/leaf/config.yaml)",
	)
	rootCmd.Flags().IntVarP(
		&startPage, "page", "p", 0, "page to open at, 1-based (default: last read position)",
	)
	rootCmd.Flags().StringVarP(
		&chapterName, "chapter", "c", "", "open at the chapter whose title best matches",
	)

	rootCmd.AddCommand(chaptersCmd, historyCmd, configCmd, versionCmd)
}

func runReader(path string) error {
	bookPath, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	if _, err := os.Stat(bookPath); err != nil {
		return fmt.Errorf("cannot open book: %w", err)
	}

	settings, err := adapter.LoadConfig(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	cfg := settings.Get()

	logger, logCloser, err := adapter.SetupLogger(&cfg.Logging)
	if err != nil {
		// Fall back to null logger if file logging fails
		logger = adapter.NullLogger()
	} else {
		defer logCloser.Close()
	}
	logger = logger.With("session", uuid.New().String())
	slog.SetDefault(logger)

	logger.Info("starting leaf", "version", Version, "book", bookPath)

	positions, err := openStore(cfg)
	if err != nil {
		logger.Warn("position store unavailable, positions will not persist", "error", err)
		positions, _ = store.NewPositionStore("")
	}
	defer positions.Close()

	start := cfg.Reader.StartPage
	if saved, ok := positions.LoadPosition(bookPath); ok {
		start = saved
	}
	if startPage > 0 {
		start = startPage - 1
	}

	width, height := terminalSize()
	loop := schedule.NewLoop(0)
	svc := reader.New(reader.Config{
		BookID:      bookPath,
		Width:       width,
		Height:      height - tui.ChromeHeight,
		Slots:       render.NewPanes(),
		CacheLimit:  cfg.Cache.Pages,
		ImageLimit:  cfg.Cache.Images,
		Scheduler:   loop,
		Timings:     settings,
		Paginator:   adapter.TextPaginator{},
		Sanitizer:   adapter.TextSanitizer{},
		Breakpoints: reader.NewBreakpoints(cfg.Reader.NarrowWidth),
		Positions:   positions,
		Signal: adapter.NewBell(os.Stdout, func() bool {
			return settings.Get().Reader.Sound
		}),
		Logger: logger,
	})

	model := tui.NewModel(tui.Options{
		Reader:       svc,
		Dispatcher:   loop,
		Loader:       adapter.NewFileLoader(logger),
		Images:       adapter.NewImageLauncher(cfg.Reader.ImageViewer, cfg.Reader.ImageViewerArgs, bookPath, logger),
		Bookmarks:    positions,
		Timings:      settings,
		Logger:       logger,
		BookPath:     bookPath,
		Title:        bookTitle(bookPath),
		StartPage:    start,
		ChapterQuery: chapterName,
		AutoOpen:     true,
	})

	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)
	loop.Attach(func(msg any) { p.Send(msg) })

	watcher, err := adapter.WatchFile(bookPath, 200*time.Millisecond, logger, func() {
		p.Send(tui.FileChangedMsg{})
	})
	if err != nil {
		logger.Warn("not watching book for changes", "error", err)
	} else {
		defer watcher.Close()
	}

	if settings.File() != "" {
		settings.OnChange(func(*adapter.Config) {
			p.Send(tui.ConfigChangedMsg{})
		})
		settings.WatchConfig()
	}

	logger.Info("starting TUI")

	if _, err := p.Run(); err != nil {
		logger.Error("TUI error", "error", err)
		return fmt.Errorf("TUI error: %w", err)
	}

	logger.Info("shutting down", "page", svc.CurrentIndex())
	return nil
}

// openStore opens the position database named by the config
func openStore(cfg *adapter.Config) (*store.PositionStore, error) {
	dir, err := cfg.Store.Dir()
	if err != nil {
		return nil, err
	}
	return store.NewPositionStore(dir)
}

// terminalSize returns the size of the controlling terminal, or 80x24
func terminalSize() (int, int) {
	w, h, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || w <= 0 || h <= 0 {
		return 80, 24
	}
	return w, h
}

// bookTitle derives a display title from the file name
func bookTitle(path string) string {
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return strings.NewReplacer("_", " ", "-", " ").Replace(name)
}
