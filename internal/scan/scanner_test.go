package scan

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fileorg/fileorg/internal/common"
	"github.com/fileorg/fileorg/internal/model"
)

func buildTree(t *testing.T, root string, paths ...string) {
	t.Helper()
	for _, p := range paths {
		full := filepath.Join(root, p)
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o750))
		require.NoError(t, os.WriteFile(full, []byte("x"), 0o600))
	}
}

func names(files []model.FileDescriptor) []string {
	out := make([]string, len(files))
	for i, f := range files {
		out[i] = f.Name
	}
	sort.Strings(out)
	return out
}

func TestScanFlatDirectory(t *testing.T) {
	root := t.TempDir()
	buildTree(t, root, "a.pdf", "b.jpg", "c.unknownext")

	files, err := New(nil).Scan(context.Background(), Options{Path: root}, nil)
	require.NoError(t, err)

	assert.Equal(t, []string{"a.pdf", "b.jpg", "c.unknownext"}, names(files))

	for _, f := range files {
		assert.NotEmpty(t, f.ID)
		assert.NotEmpty(t, f.Path)
		assert.Equal(t, int64(1), f.Size)
		assert.False(t, f.ModifiedAt.IsZero())
	}
}

func TestScanDescriptorFields(t *testing.T) {
	root := t.TempDir()
	buildTree(t, root, "report.pdf")

	files, err := New(nil).Scan(context.Background(), Options{Path: root}, nil)
	require.NoError(t, err)
	require.Len(t, files, 1)

	f := files[0]
	assert.Equal(t, "report.pdf", f.Name)
	assert.Equal(t, "pdf", f.Extension)
	assert.Equal(t, model.FileTypeDocument, f.FileType)
	assert.Equal(t, filepath.Join(root, "report.pdf"), f.Path)
}

func TestScanNonRecursiveSkipsSubdirectories(t *testing.T) {
	root := t.TempDir()
	buildTree(t, root, "top.txt", "sub/nested.txt")

	files, err := New(nil).Scan(context.Background(), Options{Path: root, Recursive: false}, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"top.txt"}, names(files))
}

func TestScanRecursive(t *testing.T) {
	root := t.TempDir()
	buildTree(t, root, "top.txt", "sub/nested.txt", "sub/deep/leaf.txt")

	files, err := New(nil).Scan(context.Background(), Options{Path: root, Recursive: true}, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"leaf.txt", "nested.txt", "top.txt"}, names(files))
}

func TestScanHiddenFiles(t *testing.T) {
	root := t.TempDir()
	buildTree(t, root, "visible.txt", ".hidden.txt", ".hiddendir/inside.txt")

	t.Run("excluded by default", func(t *testing.T) {
		files, err := New(nil).Scan(context.Background(), Options{Path: root, Recursive: true}, nil)
		require.NoError(t, err)
		assert.Equal(t, []string{"visible.txt"}, names(files))
	})

	t.Run("included on request", func(t *testing.T) {
		files, err := New(nil).Scan(context.Background(), Options{
			Path: root, Recursive: true, IncludeHidden: true,
		}, nil)
		require.NoError(t, err)
		assert.Equal(t, []string{".hidden.txt", "inside.txt", "visible.txt"}, names(files))
	})
}

func TestScanExcludePatterns(t *testing.T) {
	root := t.TempDir()
	buildTree(t, root, "keep.txt", "skip.tmp", "also.tmp", "keep.log")

	files, err := New(nil).Scan(context.Background(), Options{
		Path:            root,
		ExcludePatterns: []string{"*.tmp"},
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"keep.log", "keep.txt"}, names(files))
}

func TestScanInvalidExcludePatternSkipped(t *testing.T) {
	root := t.TempDir()
	buildTree(t, root, "a.txt")

	files, err := New(nil).Scan(context.Background(), Options{
		Path:            root,
		ExcludePatterns: []string{"[unclosed"},
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"a.txt"}, names(files))
}

func TestScanMissingPath(t *testing.T) {
	_, err := New(nil).Scan(context.Background(), Options{Path: "/no/such/dir"}, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrPathNotFound)
}

func TestScanFileInsteadOfDirectory(t *testing.T) {
	root := t.TempDir()
	buildTree(t, root, "a.txt")

	_, err := New(nil).Scan(context.Background(), Options{Path: filepath.Join(root, "a.txt")}, nil)
	require.Error(t, err)
}

func TestScanCancellation(t *testing.T) {
	root := t.TempDir()
	buildTree(t, root, "a.txt")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(nil).Scan(ctx, Options{Path: root}, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestScanEmitsProgress(t *testing.T) {
	root := t.TempDir()
	buildTree(t, root, "a.txt")

	progress := make(chan model.ScanProgress, 16)
	_, err := New(nil).Scan(context.Background(), Options{Path: root}, progress)
	require.NoError(t, err)
	close(progress)

	var events []model.ScanProgress
	for ev := range progress {
		events = append(events, ev)
	}
	require.NotEmpty(t, events)
	assert.Equal(t, model.EventStarted, events[0].Event)

	last := events[len(events)-1]
	assert.Equal(t, model.EventCompleted, last.Event)
	assert.Equal(t, 1, last.ScannedCount)
}
