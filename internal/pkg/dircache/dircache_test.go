package dircache_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"fcp/internal/pkg/dircache"
)

func TestEnsure(t *testing.T) {
	c := dircache.New(16, time.Minute)

	dir := filepath.Join(t.TempDir(), "a", "b", "c")

	require.NoError(t, c.Ensure(dir, os.ModePerm))

	s, err := os.Stat(dir)
	require.NoError(t, err)
	require.True(t, s.IsDir())

	// cached hit, still fine
	require.NoError(t, c.Ensure(dir, os.ModePerm))
}
