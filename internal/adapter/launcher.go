package adapter

import (
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
)

// ErrNoImages indicates the page has no image references to open
var ErrNoImages = errors.New("no images on this page")

// ImageLauncher opens the images referenced by a page in an external viewer.
// The terminal cannot show them itself.
type ImageLauncher struct {
	command string   // configured viewer, empty for the system default
	args    []string // extra arguments placed before the image paths
	baseDir string   // relative references resolve against the book's directory
	logger  *slog.Logger

	start func(name string, args ...string) error
}

// NewImageLauncher creates a launcher for images of the book at bookPath
func NewImageLauncher(command string, args []string, bookPath string, logger *slog.Logger) *ImageLauncher {
	if logger == nil {
		logger = slog.Default()
	}
	return &ImageLauncher{
		command: command,
		args:    args,
		baseDir: filepath.Dir(bookPath),
		logger:  logger,
		start:   startCommand,
	}
}

// Resolve turns image references into paths or URLs a viewer can open
func (l *ImageLauncher) Resolve(refs []string) []string {
	out := make([]string, 0, len(refs))
	for _, ref := range refs {
		switch {
		case strings.Contains(ref, "://"), filepath.IsAbs(ref):
			out = append(out, ref)
		default:
			out = append(out, filepath.Join(l.baseDir, ref))
		}
	}
	return out
}

// Launch opens refs in the configured viewer, or one at a time with the
// system default handler
func (l *ImageLauncher) Launch(refs []string) error {
	if len(refs) == 0 {
		return ErrNoImages
	}
	targets := l.Resolve(refs)

	if l.command != "" {
		args := append(append([]string{}, l.args...), targets...)
		l.logger.Info("launching image viewer", "command", l.command, "args", args)
		return l.start(l.command, args...)
	}

	name, prefix := defaultOpener()
	for _, target := range targets {
		l.logger.Info("opening image with system default", "os", runtime.GOOS, "target", target)
		if err := l.start(name, append(append([]string{}, prefix...), target)...); err != nil {
			return fmt.Errorf("open %s: %w", target, err)
		}
	}
	return nil
}

// defaultOpener returns the system handler command for the current OS
func defaultOpener() (string, []string) {
	switch runtime.GOOS {
	case "darwin":
		return "open", nil
	case "windows":
		return "cmd", []string{"/c", "start", ""}
	default:
		// Linux and other Unix-like systems
		return "xdg-open", nil
	}
}

func startCommand(name string, args ...string) error {
	if _, err := exec.LookPath(name); err != nil {
		return err
	}
	return exec.Command(name, args...).Start() // Start async, don't wait
}
