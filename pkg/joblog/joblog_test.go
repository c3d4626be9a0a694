package joblog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/presleydc/slurmboard/pkg/spool"
)

func newReader(t *testing.T) (*Reader, *spool.Spool) {
	t.Helper()
	sp := spool.New(t.TempDir())
	return NewReader(sp), sp
}

func TestCollectBothStreams(t *testing.T) {
	r, sp := newReader(t)
	require.NoError(t, os.WriteFile(sp.StdoutPath("42"), []byte("host: node001\n1700000000\n"), 0644))
	require.NoError(t, os.WriteFile(sp.StderrPath("42"), []byte("warning: something\n"), 0644))

	bundle := r.Collect("42")

	assert.Contains(t, bundle, "===== job 42 stdout =====")
	assert.Contains(t, bundle, "host: node001")
	assert.Contains(t, bundle, "===== job 42 stderr =====")
	assert.Contains(t, bundle, "warning: something")
}

func TestCollectMissingFilesUsePlaceholders(t *testing.T) {
	r, _ := newReader(t)

	bundle := r.Collect("7")

	assert.Contains(t, bundle, "===== job 7 stdout =====")
	assert.Contains(t, bundle, "no stdout file found")
	assert.Contains(t, bundle, "===== job 7 stderr =====")
	assert.Contains(t, bundle, "no stderr file found")
}

func TestCollectEmptyFile(t *testing.T) {
	r, sp := newReader(t)
	require.NoError(t, os.WriteFile(sp.StdoutPath("9"), nil, 0644))

	bundle := r.Collect("9")
	assert.Contains(t, bundle, "(empty)")
}

func TestCollectIsIdempotent(t *testing.T) {
	r, sp := newReader(t)
	require.NoError(t, os.WriteFile(sp.StdoutPath("11"), []byte("out\n"), 0644))
	require.NoError(t, os.WriteFile(sp.StderrPath("11"), []byte("err\n"), 0644))

	first := r.Collect("11")
	second := r.Collect("11")
	assert.Equal(t, first, second)
}

func TestCollectUnreadableFileReportsInline(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("file permissions are not enforced for root")
	}
	r, sp := newReader(t)
	path := sp.StdoutPath("13")
	require.NoError(t, os.WriteFile(path, []byte("secret"), 0644))
	require.NoError(t, os.Chmod(path, 0000))
	t.Cleanup(func() { _ = os.Chmod(path, 0644) })

	bundle := r.Collect("13")
	assert.Contains(t, bundle, "failed to read stdout")
	// The path helper still resolves under the spool dir.
	assert.Equal(t, filepath.Dir(path), sp.Dir())
}
