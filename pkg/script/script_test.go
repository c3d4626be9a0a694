package script

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRender(t *testing.T) {
	p := DefaultParams("/tmp/spool")
	content, err := Render(p)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(content, "#!/bin/bash\n"))
	assert.Contains(t, content, "#SBATCH --job-name=sleepy")
	assert.Contains(t, content, "#SBATCH --output=/tmp/spool/%j.out")
	assert.Contains(t, content, "#SBATCH --error=/tmp/spool/%j.err")
	assert.Contains(t, content, "#SBATCH --ntasks=1")
	assert.Contains(t, content, "#SBATCH --time=00:01:00")
	assert.Contains(t, content, "sleep 30")
	assert.Contains(t, content, "hostname")
}

func TestRenderAppliesFallbacks(t *testing.T) {
	content, err := Render(Params{JobName: "j", OutputPattern: "o", ErrorPattern: "e"})
	require.NoError(t, err)
	assert.Contains(t, content, "sleep 30")
	assert.Contains(t, content, "--time=00:01:00")
}

func TestWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "job.sh")

	require.NoError(t, Write(path, DefaultParams(dir)))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.NotZero(t, info.Mode()&0100, "script must be executable")

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(content), "#SBATCH --job-name=sleepy")
}

func TestWriteFailureSurfaces(t *testing.T) {
	dir := t.TempDir()
	// Destination inside a path that is a file, not a directory.
	blocker := filepath.Join(dir, "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0644))

	err := Write(filepath.Join(blocker, "job.sh"), DefaultParams(dir))
	assert.Error(t, err)
}

func TestWallClock(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{time.Minute, "00:01:00"},
		{90 * time.Second, "00:01:30"},
		{2*time.Hour + 5*time.Minute, "02:05:00"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, WallClock(tt.d))
	}
}
