package browser_test

import (
	"testing"

	"github.com/nikbrunner/bmc/internal/browser"
	"gotest.tools/v3/assert"
)

func TestCommand(t *testing.T) {
	tests := []struct {
		goos     string
		wantArgs []string
	}{
		{"darwin", []string{"open", "https://go.dev"}},
		{"linux", []string{"xdg-open", "https://go.dev"}},
		{"windows", []string{"rundll32", "url.dll,FileProtocolHandler", "https://go.dev"}},
	}

	for _, tt := range tests {
		t.Run(tt.goos, func(t *testing.T) {
			cmd, err := browser.Command(tt.goos, "https://go.dev")
			assert.NilError(t, err)
			assert.DeepEqual(t, cmd.Args, tt.wantArgs)
		})
	}
}

func TestCommand_Unsupported(t *testing.T) {
	_, err := browser.Command("plan9", "https://go.dev")
	assert.ErrorContains(t, err, "not supported")
}
