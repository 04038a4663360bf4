// Package scan walks a directory tree and produces read-only file
// descriptors for the classification engine.
package scan

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/djherbis/times"
	"github.com/gobwas/glob"
	"github.com/google/uuid"

	"github.com/fileorg/fileorg/internal/common"
	"github.com/fileorg/fileorg/internal/model"
)

// progressEvery controls how often a scanning event is emitted.
const progressEvery = 10

// Options configures one directory scan.
type Options struct {
	Path            string
	ExcludePatterns []string
	Recursive       bool
	IncludeHidden   bool
}

// Scanner walks directories. It is stateless and safe for concurrent use.
type Scanner struct {
	logger *slog.Logger
}

// New creates a scanner. A nil logger falls back to the default.
func New(logger *slog.Logger) *Scanner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scanner{logger: logger}
}

// Scan walks the tree rooted at opts.Path and returns a descriptor per
// regular file. Progress events are sent without blocking; a nil channel
// disables them. Cancellation is honored between entries, an in-flight stat
// is allowed to complete.
func (s *Scanner) Scan(ctx context.Context, opts Options, progress chan<- model.ScanProgress) ([]model.FileDescriptor, error) {
	info, err := os.Stat(opts.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, common.NewOpError("scan", opts.Path, common.ErrPathNotFound)
		}
		return nil, common.NewOpError("scan", opts.Path, err)
	}
	if !info.IsDir() {
		return nil, common.NewOpError("scan", opts.Path, fmt.Errorf("not a directory"))
	}

	excludes := make([]glob.Glob, 0, len(opts.ExcludePatterns))
	for _, pattern := range opts.ExcludePatterns {
		g, compileErr := glob.Compile(pattern)
		if compileErr != nil {
			s.logger.Warn("skipping invalid exclude pattern", "pattern", pattern, "error", compileErr)
			continue
		}
		excludes = append(excludes, g)
	}

	emit(progress, model.ScanProgress{Event: model.EventStarted})

	var files []model.FileDescriptor
	count := 0

	walkErr := filepath.WalkDir(opts.Path, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			// Unreadable entries are skipped, not fatal.
			s.logger.Warn("skipping unreadable entry", "path", path, "error", err)
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}

		if d.IsDir() {
			if path == opts.Path {
				return nil
			}
			if !opts.Recursive {
				return filepath.SkipDir
			}
			if !opts.IncludeHidden && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}

		if !d.Type().IsRegular() {
			return nil
		}
		if !opts.IncludeHidden && strings.HasPrefix(d.Name(), ".") {
			return nil
		}
		for _, g := range excludes {
			if g.Match(d.Name()) {
				return nil
			}
		}

		descriptor, statErr := describe(path, d.Name())
		if statErr != nil {
			s.logger.Warn("failed to stat file", "path", path, "error", statErr)
			return nil
		}

		files = append(files, descriptor)
		count++

		if count%progressEvery == 0 {
			emit(progress, model.ScanProgress{
				Event:        model.EventScanning,
				CurrentFile:  path,
				ScannedCount: count,
			})
		}
		return nil
	})
	if walkErr != nil {
		return nil, walkErr
	}

	emit(progress, model.ScanProgress{
		Event:        model.EventCompleted,
		ScannedCount: count,
		TotalCount:   count,
	})

	s.logger.Info("scan complete", "path", opts.Path, "files", count)
	return files, nil
}

// describe builds the immutable snapshot for one regular file.
func describe(path, name string) (model.FileDescriptor, error) {
	info, err := os.Stat(path)
	if err != nil {
		return model.FileDescriptor{}, err
	}

	ext := strings.TrimPrefix(filepath.Ext(name), ".")

	descriptor := model.FileDescriptor{
		ID:         uuid.NewString(),
		Path:       path,
		Name:       name,
		Extension:  ext,
		Size:       info.Size(),
		FileType:   model.FileTypeFromExtension(ext),
		ModifiedAt: info.ModTime(),
	}

	// Birth time is platform-dependent; fall back to mtime.
	descriptor.CreatedAt = info.ModTime()
	if ts := times.Get(info); ts.HasBirthTime() {
		descriptor.CreatedAt = ts.BirthTime()
	}

	return descriptor, nil
}

// emit sends a progress event without ever blocking the walk.
func emit(progress chan<- model.ScanProgress, event model.ScanProgress) {
	if progress == nil {
		return
	}
	select {
	case progress <- event:
	default:
	}
}
