package receipt

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"feeledger/internal/core"
	"feeledger/internal/log"
)

// Generator writes one HTML receipt per fee record.
type Generator struct {
	tmpl    *Template
	outDir  string
	workers int
}

// Result summarises one Generate run.
type Result struct {
	Written []string // file paths, sorted
	Failed  int
}

func NewGenerator(tmpl *Template, outDir string, workers int) *Generator {
	if workers < 1 {
		workers = 1
	}
	return &Generator{tmpl: tmpl, outDir: outDir, workers: workers}
}

// FileName returns the receipt file name for the record at 1-based
// position index, e.g. "3Physics.html".
func FileName(index int, department string) string {
	return fmt.Sprintf("%d%s.html", index, sanitize(department))
}

func sanitize(name string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|':
			return '_'
		}
		if r < 0x20 {
			return -1
		}
		return r
	}, strings.TrimSpace(name))
}

// Generate renders every record concurrently. A record that fails to
// render or write is logged and counted in Result.Failed; only context
// cancellation or an unusable output directory abort the run.
func (g *Generator) Generate(ctx context.Context, records []core.FeeRecord) (Result, error) {
	if err := os.MkdirAll(g.outDir, 0755); err != nil {
		return Result{}, fmt.Errorf("create output directory: %w", err)
	}

	logger := log.FromContext(ctx).WithComponent(log.ComponentReceipt)
	start := time.Now()
	total := len(records)
	var (
		mu      sync.Mutex
		written []string
		failed  atomic.Int64
		done    atomic.Int64
	)

	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(g.workers)

	for i, rec := range records {
		index := i + 1
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			path, err := g.writeOne(rec, index)
			n := done.Add(1)
			if err != nil {
				failed.Add(1)
				logger.ErrorContext(ctx, "Failed to generate receipt",
					append(log.NewFields().
						WithOperation(log.OpGenerate).
						WithFee(rec.Department, rec.Year, rec.Month, rec.Amount.String()).
						WithError(err).
						ToSlice(), "progress", fmt.Sprintf("%d/%d", n, total))...)
				return nil
			}

			mu.Lock()
			written = append(written, path)
			mu.Unlock()

			logger.InfoContext(ctx, "Receipt generated",
				log.FieldDepartment, rec.Department,
				log.FieldPath, path,
				"progress", fmt.Sprintf("%d/%d", n, total))
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return Result{Written: sortedPaths(written), Failed: int(failed.Load())}, err
	}

	result := Result{Written: sortedPaths(written), Failed: int(failed.Load())}
	logger.InfoContext(ctx, "Receipt generation finished",
		log.FieldOperation, log.OpGenerate,
		"written", len(result.Written),
		"failed", result.Failed,
		log.FieldDuration, time.Since(start).Milliseconds())
	return result, nil
}

func (g *Generator) writeOne(rec core.FeeRecord, index int) (string, error) {
	path := filepath.Join(g.outDir, FileName(index, rec.Department))

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create %s: %w", path, err)
	}
	w := bufio.NewWriter(f)
	if err := g.tmpl.Render(w, rec, index); err != nil {
		f.Close()
		os.Remove(path)
		return "", err
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close %s: %w", path, err)
	}
	return path, nil
}

func sortedPaths(paths []string) []string {
	sort.Slice(paths, func(i, j int) bool {
		return lessByDigits(filepath.Base(paths[i]), filepath.Base(paths[j]))
	})
	return paths
}
