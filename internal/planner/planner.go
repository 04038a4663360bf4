// Package planner turns classification decisions or user selections into
// concrete planned operations with collision-free destinations.
package planner

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fileorg/fileorg/internal/model"
)

// Planner builds planned operations. It never touches the filesystem except
// to probe destinations for existing names.
type Planner struct {
	// CheckDisk also treats names already present at the destination as
	// claimed. Disabled in tests that plan against virtual paths.
	CheckDisk bool
}

// New creates a planner with on-disk collision probing enabled.
func New() *Planner {
	return &Planner{CheckDisk: true}
}

// PlanClassified maps each classified file to a move into its category's
// target folder. Relative target folders are resolved against baseDir.
// Files whose result carries no category are skipped.
func (p *Planner) PlanClassified(files []model.FileDescriptor, results []model.ClassificationResult, categories []model.Category, baseDir string) ([]model.PlannedOperation, error) {
	if len(files) != len(results) {
		return nil, fmt.Errorf("descriptor/result count mismatch: %d vs %d", len(files), len(results))
	}

	byName := make(map[string]*model.Category, len(categories))
	for i := range categories {
		byName[strings.ToLower(categories[i].Name)] = &categories[i]
	}

	claimed := make(map[string]bool)
	var ops []model.PlannedOperation

	for i, file := range files {
		result := results[i]
		if result.SuggestedCategory == "" {
			continue
		}
		cat, ok := byName[strings.ToLower(result.SuggestedCategory)]
		if !ok {
			return nil, fmt.Errorf("unknown category %q for %s", result.SuggestedCategory, file.Name)
		}

		folder := cat.TargetFolder
		if !filepath.IsAbs(folder) {
			folder = filepath.Join(baseDir, folder)
		}

		ops = append(ops, model.PlannedOperation{
			FileID:        file.ID,
			FileName:      file.Name,
			OperationType: model.OpMove,
			Source:        file.Path,
			Destination:   p.uniqueDestination(folder, file.Name, claimed),
			Category:      cat.Name,
		})
	}

	return ops, nil
}

// PlanInto maps the selected files to opType operations into an explicit
// destination folder, with the same collision policy.
func (p *Planner) PlanInto(files []model.FileDescriptor, destinationFolder string, opType model.OperationType) ([]model.PlannedOperation, error) {
	switch opType {
	case model.OpMove, model.OpCopy:
	default:
		return nil, fmt.Errorf("unsupported operation type for folder planning: %s", opType)
	}

	claimed := make(map[string]bool)
	ops := make([]model.PlannedOperation, 0, len(files))

	for _, file := range files {
		ops = append(ops, model.PlannedOperation{
			FileID:        file.ID,
			FileName:      file.Name,
			OperationType: opType,
			Source:        file.Path,
			Destination:   p.uniqueDestination(destinationFolder, file.Name, claimed),
		})
	}

	return ops, nil
}

// PlanRename produces a same-directory rename for one file.
func (p *Planner) PlanRename(file model.FileDescriptor, newName string) model.PlannedOperation {
	return model.PlannedOperation{
		FileID:        file.ID,
		FileName:      file.Name,
		OperationType: model.OpRename,
		Source:        file.Path,
		Destination:   filepath.Join(filepath.Dir(file.Path), newName),
	}
}

// PlanDelete produces reversible deletes for the selected files.
func (p *Planner) PlanDelete(files []model.FileDescriptor) []model.PlannedOperation {
	ops := make([]model.PlannedOperation, 0, len(files))
	for _, file := range files {
		ops = append(ops, model.PlannedOperation{
			FileID:        file.ID,
			FileName:      file.Name,
			OperationType: model.OpDelete,
			Source:        file.Path,
		})
	}
	return ops
}

// uniqueDestination resolves collisions by appending a numeric suffix before
// the extension, deterministically in input order: report.pdf, report (1).pdf,
// report (2).pdf.
func (p *Planner) uniqueDestination(folder, name string, claimed map[string]bool) string {
	candidate := filepath.Join(folder, name)
	if !p.taken(candidate, claimed) {
		claimed[candidate] = true
		return candidate
	}

	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)

	for n := 1; ; n++ {
		candidate = filepath.Join(folder, fmt.Sprintf("%s (%d)%s", stem, n, ext))
		if !p.taken(candidate, claimed) {
			claimed[candidate] = true
			return candidate
		}
	}
}

func (p *Planner) taken(candidate string, claimed map[string]bool) bool {
	if claimed[candidate] {
		return true
	}
	if !p.CheckDisk {
		return false
	}
	_, err := os.Stat(candidate)
	return err == nil
}
