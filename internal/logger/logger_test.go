package logger_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nikbrunner/bmc/internal/logger"
	"gotest.tools/v3/assert"
)

func TestNew_WritesJSONToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "bmc.log")

	log, err := logger.New(logger.Params{Level: "debug", Path: path})
	assert.NilError(t, err)

	log.With(logger.String("component", "test")).Debug("hello", logger.Int("n", 3))
	_ = log.Sync()

	data, err := os.ReadFile(path)
	assert.NilError(t, err)

	line := string(data)
	assert.Assert(t, strings.Contains(line, `"msg":"hello"`), line)
	assert.Assert(t, strings.Contains(line, `"component":"test"`), line)
	assert.Assert(t, strings.Contains(line, `"n":3`), line)
}

func TestNew_LevelFiltersDebug(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bmc.log")

	log, err := logger.New(logger.Params{Level: "warn", Path: path})
	assert.NilError(t, err)

	log.Debug("hidden")
	log.Warn("shown")
	_ = log.Sync()

	data, err := os.ReadFile(path)
	assert.NilError(t, err)
	assert.Assert(t, !strings.Contains(string(data), "hidden"))
	assert.Assert(t, strings.Contains(string(data), "shown"))
}
