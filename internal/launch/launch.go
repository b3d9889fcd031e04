// Package launch opens URLs with the host's default handler.
package launch

import (
	"fmt"
	"net/url"
	"os/exec"
	"runtime"
)

// Opener opens a URL.
type Opener interface {
	Open(rawURL string) error
}

// CommandOpener opens URLs by starting the platform's handler program.
type CommandOpener struct {
	// GOOS selects the handler. Empty means the running platform.
	GOOS string

	// start runs the command without waiting for it. Nil means cmd.Start.
	start func(cmd *exec.Cmd) error
}

// Default opens URLs on the running platform.
var Default Opener = CommandOpener{}

// Open opens rawURL with the default handler.
func Open(rawURL string) error {
	return Default.Open(rawURL)
}

// Command returns the handler command for rawURL on goos.
func Command(goos, rawURL string) (*exec.Cmd, error) {
	switch goos {
	case "darwin":
		return exec.Command("open", rawURL), nil
	case "linux", "freebsd", "openbsd", "netbsd":
		return exec.Command("xdg-open", rawURL), nil
	case "windows":
		return exec.Command("rundll32", "url.dll,FileProtocolHandler", rawURL), nil
	default:
		return nil, fmt.Errorf("unsupported platform: %s", goos)
	}
}

// Open validates rawURL and starts the handler without waiting for it.
func (o CommandOpener) Open(rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("parse url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("refusing to open %q: scheme must be http or https", rawURL)
	}

	goos := o.GOOS
	if goos == "" {
		goos = runtime.GOOS
	}
	cmd, err := Command(goos, rawURL)
	if err != nil {
		return err
	}

	start := o.start
	if start == nil {
		start = (*exec.Cmd).Start
	}
	if err := start(cmd); err != nil {
		return fmt.Errorf("open %s: %w", rawURL, err)
	}
	return nil
}
