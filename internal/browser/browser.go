// Package browser opens URLs with the operating system's default handler.
package browser

import (
	"fmt"
	"os/exec"
	"runtime"
)

// Open opens url in the default browser without waiting for it to exit.
func Open(url string) error {
	cmd, err := Command(runtime.GOOS, url)
	if err != nil {
		return err
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("open %s: %w", url, err)
	}
	// Reap the child in the background.
	go func() { _ = cmd.Wait() }()
	return nil
}

// Command returns the command that opens url on goos.
func Command(goos, url string) (*exec.Cmd, error) {
	switch goos {
	case "darwin":
		return exec.Command("open", url), nil
	case "linux", "freebsd", "openbsd", "netbsd":
		return exec.Command("xdg-open", url), nil
	case "windows":
		return exec.Command("rundll32", "url.dll,FileProtocolHandler", url), nil
	default:
		return nil, fmt.Errorf("opening URLs is not supported on %s", goos)
	}
}
