package config

import (
	"flag"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestApplyFileSetsFlagsNotSetExplicitly(t *testing.T) {
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	iterations := fs.Int("iterations", 5, "")
	reverse := fs.Bool("reverse", false, "")

	dir := t.TempDir()
	path := filepath.Join(dir, "conf.ini")
	assert.NoError(t, os.WriteFile(path, []byte("iterations=10\nreverse\n"), 0o644))

	assert.NoError(t, ApplyFile(fs, path, map[string]bool{}))
	assert.Equal(t, 10, *iterations)
	assert.True(t, *reverse)
}

func TestApplyFileSkipsExplicitlySetFlags(t *testing.T) {
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	iterations := fs.Int("iterations", 5, "")

	dir := t.TempDir()
	path := filepath.Join(dir, "conf.ini")
	assert.NoError(t, os.WriteFile(path, []byte("iterations=10\n"), 0o644))

	assert.NoError(t, ApplyFile(fs, path, map[string]bool{"iterations": true}))
	assert.Equal(t, 5, *iterations)
}

func TestApplyFileRejectsUnknownKey(t *testing.T) {
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	fs.Int("iterations", 5, "")

	dir := t.TempDir()
	path := filepath.Join(dir, "conf.ini")
	assert.NoError(t, os.WriteFile(path, []byte("bogus=1\n"), 0o644))

	err := ApplyFile(fs, path, map[string]bool{})
	assert.Error(t, err)
}

func TestApplyFileSkipsCommentsAndBlankLines(t *testing.T) {
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	iterations := fs.Int("iterations", 5, "")

	dir := t.TempDir()
	path := filepath.Join(dir, "conf.ini")
	assert.NoError(t, os.WriteFile(path, []byte("# a comment\n\niterations=7\n"), 0o644))

	assert.NoError(t, ApplyFile(fs, path, map[string]bool{}))
	assert.Equal(t, 7, *iterations)
}

func TestExplicitFlagsReflectsCommandLineOnly(t *testing.T) {
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	fs.Int("iterations", 5, "")
	fs.Bool("reverse", false, "")
	assert.NoError(t, fs.Parse([]string{"-iterations=3"}))

	explicit := ExplicitFlags(fs)
	assert.True(t, explicit["iterations"])
	assert.False(t, explicit["reverse"])
}
