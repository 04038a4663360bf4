package planner

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fileorg/fileorg/internal/model"
)

func testCategories() []model.Category {
	return []model.Category{
		{ID: "documents", Name: "Documents", TargetFolder: "Documents"},
		{ID: "images", Name: "Images", TargetFolder: "Images"},
	}
}

func TestPlanClassified(t *testing.T) {
	p := &Planner{CheckDisk: false}

	files := []model.FileDescriptor{
		{ID: "f1", Name: "report.pdf", Path: "/in/report.pdf"},
		{ID: "f2", Name: "photo.jpg", Path: "/in/photo.jpg"},
		{ID: "f3", Name: "mystery.bin", Path: "/in/mystery.bin"},
	}
	results := []model.ClassificationResult{
		{FilePath: "/in/report.pdf", SuggestedCategory: "Documents", Confidence: 1.0},
		{FilePath: "/in/photo.jpg", SuggestedCategory: "Images", Confidence: 1.0},
		{FilePath: "/in/mystery.bin", SuggestedCategory: "", Confidence: 0},
	}

	ops, err := p.PlanClassified(files, results, testCategories(), "/in")
	require.NoError(t, err)
	require.Len(t, ops, 2)

	assert.Equal(t, model.OpMove, ops[0].OperationType)
	assert.Equal(t, "/in/report.pdf", ops[0].Source)
	assert.Equal(t, filepath.Join("/in", "Documents", "report.pdf"), ops[0].Destination)
	assert.Equal(t, "Documents", ops[0].Category)

	assert.Equal(t, filepath.Join("/in", "Images", "photo.jpg"), ops[1].Destination)
}

func TestPlanClassifiedCountMismatch(t *testing.T) {
	p := &Planner{CheckDisk: false}

	_, err := p.PlanClassified(
		[]model.FileDescriptor{{Name: "a"}},
		nil,
		testCategories(), "/in")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mismatch")
}

func TestPlanClassifiedUnknownCategory(t *testing.T) {
	p := &Planner{CheckDisk: false}

	_, err := p.PlanClassified(
		[]model.FileDescriptor{{Name: "a.pdf", Path: "/in/a.pdf"}},
		[]model.ClassificationResult{{SuggestedCategory: "Spreadsheets"}},
		testCategories(), "/in")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Spreadsheets")
}

func TestPlanClassifiedAbsoluteTargetFolder(t *testing.T) {
	p := &Planner{CheckDisk: false}

	categories := []model.Category{
		{ID: "archive", Name: "Archive", TargetFolder: "/mnt/archive"},
	}
	ops, err := p.PlanClassified(
		[]model.FileDescriptor{{Name: "old.zip", Path: "/in/old.zip"}},
		[]model.ClassificationResult{{SuggestedCategory: "Archive"}},
		categories, "/in")
	require.NoError(t, err)
	require.Len(t, ops, 1)
	assert.Equal(t, filepath.Join("/mnt/archive", "old.zip"), ops[0].Destination)
}

func TestCollisionSuffixing(t *testing.T) {
	p := &Planner{CheckDisk: false}

	files := []model.FileDescriptor{
		{ID: "f1", Name: "report.pdf", Path: "/a/report.pdf"},
		{ID: "f2", Name: "report.pdf", Path: "/b/report.pdf"},
		{ID: "f3", Name: "report.pdf", Path: "/c/report.pdf"},
	}

	ops, err := p.PlanInto(files, "/dest", model.OpMove)
	require.NoError(t, err)
	require.Len(t, ops, 3)

	assert.Equal(t, filepath.Join("/dest", "report.pdf"), ops[0].Destination)
	assert.Equal(t, filepath.Join("/dest", "report (1).pdf"), ops[1].Destination)
	assert.Equal(t, filepath.Join("/dest", "report (2).pdf"), ops[2].Destination)
}

func TestCollisionSuffixingDeterministic(t *testing.T) {
	p := &Planner{CheckDisk: false}

	files := []model.FileDescriptor{
		{Name: "x.txt", Path: "/a/x.txt"},
		{Name: "x.txt", Path: "/b/x.txt"},
	}

	first, err := p.PlanInto(files, "/dest", model.OpMove)
	require.NoError(t, err)
	second, err := p.PlanInto(files, "/dest", model.OpMove)
	require.NoError(t, err)

	assert.Equal(t, first[0].Destination, second[0].Destination)
	assert.Equal(t, first[1].Destination, second[1].Destination)
}

func TestCollisionWithExistingFileOnDisk(t *testing.T) {
	dest := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dest, "report.pdf"), []byte("existing"), 0o600))

	p := New()
	ops, err := p.PlanInto(
		[]model.FileDescriptor{{Name: "report.pdf", Path: "/in/report.pdf"}},
		dest, model.OpMove)
	require.NoError(t, err)
	require.Len(t, ops, 1)
	assert.Equal(t, filepath.Join(dest, "report (1).pdf"), ops[0].Destination)
}

func TestPlanIntoRejectsRenameAndDelete(t *testing.T) {
	p := &Planner{CheckDisk: false}

	for _, opType := range []model.OperationType{model.OpRename, model.OpDelete} {
		_, err := p.PlanInto(nil, "/dest", opType)
		assert.Error(t, err, "opType %s", opType)
	}
}

func TestPlanRename(t *testing.T) {
	p := &Planner{CheckDisk: false}

	op := p.PlanRename(model.FileDescriptor{
		ID: "f1", Name: "draft.txt", Path: "/docs/draft.txt",
	}, "final.txt")

	assert.Equal(t, model.OpRename, op.OperationType)
	assert.Equal(t, "/docs/draft.txt", op.Source)
	assert.Equal(t, filepath.Join("/docs", "final.txt"), op.Destination)
}

func TestPlanDelete(t *testing.T) {
	p := &Planner{CheckDisk: false}

	ops := p.PlanDelete([]model.FileDescriptor{
		{ID: "f1", Name: "junk.tmp", Path: "/tmp/junk.tmp"},
		{ID: "f2", Name: "old.log", Path: "/tmp/old.log"},
	})

	require.Len(t, ops, 2)
	for _, op := range ops {
		assert.Equal(t, model.OpDelete, op.OperationType)
		assert.Empty(t, op.Destination)
	}
}

func TestSuffixAppliedBeforeExtension(t *testing.T) {
	p := &Planner{CheckDisk: false}

	files := []model.FileDescriptor{
		{Name: "archive.tar.gz", Path: "/a/archive.tar.gz"},
		{Name: "archive.tar.gz", Path: "/b/archive.tar.gz"},
		{Name: "noext", Path: "/a/noext"},
		{Name: "noext", Path: "/b/noext"},
	}

	ops, err := p.PlanInto(files, "/dest", model.OpCopy)
	require.NoError(t, err)
	require.Len(t, ops, 4)

	assert.Equal(t, filepath.Join("/dest", "archive.tar (1).gz"), ops[1].Destination)
	assert.Equal(t, filepath.Join("/dest", "noext (1)"), ops[3].Destination)
}
