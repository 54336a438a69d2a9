package adapter

import (
	"bytes"
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/charmbracelet/x/ansi"

	"github.com/mmcdole/leaf/internal/animate"
	"github.com/mmcdole/leaf/internal/domain"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	s, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	cfg := s.Get()
	if cfg.Reader.NarrowWidth != 100 {
		t.Errorf("narrow_width = %d, want 100", cfg.Reader.NarrowWidth)
	}
	if cfg.Cache.Pages != 12 || cfg.Cache.Images != 100 {
		t.Errorf("cache = %+v", cfg.Cache)
	}
	for key, want := range animate.Defaults {
		if got, ok := s.Duration(key); !ok || got != want {
			t.Errorf("Duration(%q) = %v, %v; want %v", key, got, ok, want)
		}
	}
	if _, ok := s.Duration("nonexistent"); ok {
		t.Error("unknown timing reported as set")
	}
}

func TestLoadConfigFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	writeFile(t, path, `
reader:
  narrow_width: 80
  sound: true
cache:
  pages: 6
timing:
  rotate: 900ms
logging:
  level: DEBUG
`)

	s, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	cfg := s.Get()
	if cfg.Reader.NarrowWidth != 80 || !cfg.Reader.Sound {
		t.Errorf("reader = %+v", cfg.Reader)
	}
	if cfg.Cache.Pages != 6 || cfg.Cache.Images != 100 {
		t.Errorf("cache = %+v, want pages from file and default images", cfg.Cache)
	}
	if d, _ := s.Duration(animate.KeyRotate); d != 900*time.Millisecond {
		t.Errorf("rotate = %v, want 900ms", d)
	}
	if d, _ := s.Duration(animate.KeyLift); d != animate.Defaults[animate.KeyLift] {
		t.Errorf("lift = %v, want default", d)
	}
	if s.File() != path {
		t.Errorf("File() = %q, want %q", s.File(), path)
	}
}

func TestLoadConfigEnvOverride(t *testing.T) {
	t.Setenv("LEAF_READER_NARROW_WIDTH", "72")
	t.Setenv("LEAF_TIMING_DROP", "40ms")

	s, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if got := s.Get().Reader.NarrowWidth; got != 72 {
		t.Errorf("narrow_width = %d, want 72", got)
	}
	if d, _ := s.Duration(animate.KeyDrop); d != 40*time.Millisecond {
		t.Errorf("drop = %v, want 40ms", d)
	}
}

func TestLoadConfigRejectsMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	writeFile(t, path, "reader: [unterminated")
	if _, err := LoadConfig(path); err == nil {
		t.Error("malformed config accepted")
	}
}

func TestWriteConfigRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := DefaultConfig()
	cfg.Reader.NarrowWidth = 90
	cfg.Timing[animate.KeyCover] = 750 * time.Millisecond

	if err := WriteConfig(path, cfg); err != nil {
		t.Fatalf("WriteConfig: %v", err)
	}
	s, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if s.Get().Reader.NarrowWidth != 90 {
		t.Errorf("narrow_width = %d, want 90", s.Get().Reader.NarrowWidth)
	}
	if d, _ := s.Duration(animate.KeyCover); d != 750*time.Millisecond {
		t.Errorf("cover = %v, want 750ms", d)
	}
}

func TestWatchConfigReloadsTimings(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	writeFile(t, path, "timing:\n  rotate: 300ms\n")

	s, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	var reloads atomic.Int32
	s.OnChange(func(*Config) { reloads.Add(1) })
	s.WatchConfig()

	// Give fsnotify time to set up the watcher
	time.Sleep(100 * time.Millisecond)
	writeFile(t, path, "timing:\n  rotate: 800ms\n")

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if d, _ := s.Duration(animate.KeyRotate); d == 800*time.Millisecond {
			break
		}
		time.Sleep(50 * time.Millisecond)
	}
	if d, _ := s.Duration(animate.KeyRotate); d != 800*time.Millisecond {
		t.Errorf("rotate = %v after reload, want 800ms", d)
	}
	if reloads.Load() == 0 {
		t.Error("change callback not invoked")
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := map[string]string{
		"debug":   "DEBUG",
		"WARNING": "WARN",
		"error":   "ERROR",
		"":        "INFO",
		"bogus":   "INFO",
	}
	for in, want := range tests {
		if got := ParseLogLevel(in).String(); got != want {
			t.Errorf("ParseLogLevel(%q) = %s, want %s", in, got, want)
		}
	}
}

func TestSetupLoggerWritesJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "leaf.log")
	logger, closer, err := SetupLogger(&LoggingConfig{File: path, Level: "DEBUG"})
	if err != nil {
		t.Fatalf("SetupLogger: %v", err)
	}
	logger.Debug("flip started", "direction", "next")
	closer.Close()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if !strings.Contains(string(data), `"msg":"flip started"`) {
		t.Errorf("log = %s", data)
	}
}

func TestSetupLoggerDisabled(t *testing.T) {
	logger, closer, err := SetupLogger(&LoggingConfig{})
	if err != nil || logger == nil {
		t.Fatalf("SetupLogger = %v, %v", logger, err)
	}
	if err := closer.Close(); err != nil {
		t.Errorf("Close: %v", err)
	}
}

func TestFileLoaderReadsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "book.txt")
	writeFile(t, path, "# One\nhello")
	l := NewFileLoader(NullLogger())

	text, err := l.Load(context.Background(), path)
	if err != nil || text != "# One\nhello" {
		t.Errorf("Load = %q, %v", text, err)
	}
}

func TestFileLoaderMissingFileFailsFast(t *testing.T) {
	l := &FileLoader{Attempts: 5, Delay: time.Second, Logger: NullLogger()}
	start := time.Now()
	_, err := l.Load(context.Background(), filepath.Join(t.TempDir(), "missing.txt"))
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("err = %v, want not-exist", err)
	}
	if time.Since(start) > 500*time.Millisecond {
		t.Error("missing file was retried")
	}
}

func TestFileLoaderRetriesEmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "book.txt")
	writeFile(t, path, "")
	l := &FileLoader{Attempts: 20, Delay: 20 * time.Millisecond, Logger: NullLogger()}

	go func() {
		time.Sleep(60 * time.Millisecond)
		tmp := path + ".tmp"
		os.WriteFile(tmp, []byte("finally"), 0644)
		os.Rename(tmp, path)
	}()

	text, err := l.Load(context.Background(), path)
	if err != nil || text != "finally" {
		t.Errorf("Load = %q, %v", text, err)
	}
}

func TestFileLoaderGivesUpOnEmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "book.txt")
	writeFile(t, path, "")
	l := &FileLoader{Attempts: 2, Delay: time.Millisecond, Logger: NullLogger()}
	if _, err := l.Load(context.Background(), path); !errors.Is(err, errPartialRead) {
		t.Errorf("err = %v, want errPartialRead", err)
	}
}

func TestWatchFileReportsWrites(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "book.txt")
	writeFile(t, path, "one")

	var changes atomic.Int32
	w, err := WatchFile(path, 20*time.Millisecond, NullLogger(), func() { changes.Add(1) })
	if err != nil {
		t.Fatalf("WatchFile: %v", err)
	}
	defer w.Close()

	writeFile(t, filepath.Join(dir, "other.txt"), "ignored")
	writeFile(t, path, "two")

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) && changes.Load() == 0 {
		time.Sleep(20 * time.Millisecond)
	}
	if changes.Load() == 0 {
		t.Fatal("write not reported")
	}
}

func TestSanitize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"escape sequences", "\x1b[31mred\x1b[0m text", "red text"},
		{"crlf", "a\r\nb\rc", "a\nb\nc"},
		{"tabs", "\tx", "    x"},
		{"controls", "be\x07ll\x00", "bell"},
		{"bom", "\ufeffstart", "start"},
		{"plain", "plain text\n", "plain text\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := (TextSanitizer{}).Sanitize(tt.in); got != tt.want {
				t.Errorf("Sanitize(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func pageText(res *domain.PaginationResult, page int) []string {
	s := domain.Surface{
		Page:   page,
		Source: res.Source,
		Offset: page * res.PageWidth,
		Width:  res.PageWidth,
		Height: res.PageHeight,
	}
	lines := s.Lines()
	for i, l := range lines {
		lines[i] = strings.TrimRight(ansi.Strip(l), " ")
	}
	return lines
}

func TestPaginateWrapsAndSplitsPages(t *testing.T) {
	raw := "one two three four five six seven eight nine ten"
	res, err := (TextPaginator{}).Paginate(context.Background(), raw, domain.Geometry{PageWidth: 10, PageHeight: 2})
	if err != nil {
		t.Fatalf("Paginate: %v", err)
	}
	if res.PageCount < 3 {
		t.Fatalf("PageCount = %d, want at least 3", res.PageCount)
	}
	if res.PageWidth != 10 || res.PageHeight != 2 {
		t.Errorf("page size = %dx%d", res.PageWidth, res.PageHeight)
	}
	if got := pageText(res, 0)[0]; got != "one two" {
		t.Errorf("first line = %q, want %q", got, "one two")
	}

	var words []string
	for p := 0; p < res.PageCount; p++ {
		for _, line := range pageText(res, p) {
			if ansi.StringWidth(line) > 10 {
				t.Errorf("page %d line %q exceeds width", p, line)
			}
			words = append(words, strings.Fields(line)...)
		}
	}
	if got := strings.Join(words, " "); got != raw {
		t.Errorf("text across pages = %q, want %q", got, raw)
	}
}

func TestPaginateChaptersStartFreshPages(t *testing.T) {
	raw := "# Opening\nfirst\n# Middle\nsecond\nthird\nfourth\n# End\nlast"
	res, err := (TextPaginator{}).Paginate(context.Background(), raw, domain.Geometry{PageWidth: 20, PageHeight: 3})
	if err != nil {
		t.Fatalf("Paginate: %v", err)
	}
	want := []domain.Chapter{{Title: "Opening", Page: 0}, {Title: "Middle", Page: 1}, {Title: "End", Page: 3}}
	if len(res.Chapters) != len(want) {
		t.Fatalf("chapters = %+v", res.Chapters)
	}
	for i := range want {
		if res.Chapters[i] != want[i] {
			t.Errorf("chapter %d = %+v, want %+v", i, res.Chapters[i], want[i])
		}
	}
	if got := pageText(res, 1)[0]; got != "Middle" {
		t.Errorf("page 1 starts with %q", got)
	}
	if got := pageText(res, 2)[0]; got != "third" {
		t.Errorf("page 2 starts with %q, want no leading blank", got)
	}
}

func TestPaginateRecordsImages(t *testing.T) {
	raw := "intro\n![map](img/map.png)\nmore"
	res, err := (TextPaginator{}).Paginate(context.Background(), raw, domain.Geometry{PageWidth: 20, PageHeight: 2})
	if err != nil {
		t.Fatalf("Paginate: %v", err)
	}
	if refs := res.Source.Images(0); len(refs) != 1 || refs[0] != "img/map.png" {
		t.Errorf("images on page 0 = %v", refs)
	}
	if got := pageText(res, 0)[1]; got != "[map]" {
		t.Errorf("placeholder = %q", got)
	}
	if refs := res.Source.Images(1); len(refs) != 0 {
		t.Errorf("images on page 1 = %v", refs)
	}
}

func TestPaginateStripLineMatchesPages(t *testing.T) {
	raw := "alpha\nbeta\ngamma\ndelta"
	res, err := (TextPaginator{}).Paginate(context.Background(), raw, domain.Geometry{PageWidth: 8, PageHeight: 2})
	if err != nil {
		t.Fatalf("Paginate: %v", err)
	}
	if res.Source.Width() != 16 {
		t.Errorf("strip width = %d, want 16", res.Source.Width())
	}
	if got := ansi.Strip(res.Source.Line(0)); got != "alpha   gamma   " {
		t.Errorf("strip line 0 = %q", got)
	}
}

func TestPaginateErrors(t *testing.T) {
	ctx := context.Background()
	if _, err := (TextPaginator{}).Paginate(ctx, "text", domain.Geometry{}); !errors.Is(err, domain.ErrInvalidGeometry) {
		t.Errorf("zero geometry: err = %v", err)
	}
	if _, err := (TextPaginator{}).Paginate(ctx, " \n\n ", domain.Geometry{PageWidth: 10, PageHeight: 5}); !errors.Is(err, domain.ErrEmptyContent) {
		t.Errorf("blank content: err = %v", err)
	}

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	if _, err := (TextPaginator{}).Paginate(cancelled, "text", domain.Geometry{PageWidth: 10, PageHeight: 5}); !errors.Is(err, context.Canceled) {
		t.Errorf("cancelled: err = %v", err)
	}
}

func TestBell(t *testing.T) {
	var out bytes.Buffer
	enabled := true
	b := NewBell(&out, func() bool { return enabled })

	b.Play("flip")
	b.Play("unknown")
	enabled = false
	b.Play("open")

	if out.String() != "\a" {
		t.Errorf("bell output = %q, want one BEL", out.String())
	}
}
