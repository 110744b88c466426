package receipt

import (
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"math/big"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"feeledger/internal/log"
)

var ErrNoReceipts = errors.New("no receipts to merge")

// MergeResult summarises one Merge run.
type MergeResult struct {
	Merged  int
	Skipped int
}

// Merge combines the *.html receipts in dir into one document at out,
// ordered by the digits in each file name, with a page break between
// receipts. Files that cannot be read or hold no receipt are skipped.
func Merge(dir, out, title string) (MergeResult, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return MergeResult{}, fmt.Errorf("read receipt directory: %w", err)
	}

	outAbs, _ := filepath.Abs(out)
	var names []string
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".html") {
			continue
		}
		if abs, _ := filepath.Abs(filepath.Join(dir, e.Name())); abs == outAbs {
			continue
		}
		names = append(names, e.Name())
	}
	if len(names) == 0 {
		return MergeResult{}, fmt.Errorf("%s: %w", dir, ErrNoReceipts)
	}
	sort.Slice(names, func(i, j int) bool { return lessByDigits(names[i], names[j]) })

	var result MergeResult
	fragments := make([]template.HTML, 0, len(names))
	for i, name := range names {
		path := filepath.Join(dir, name)
		fragment, err := extractReceipts(path)
		if err != nil {
			result.Skipped++
			slog.Warn("Skipping receipt",
				log.FieldComponent, log.ComponentReceipt,
				log.FieldOperation, log.OpMerge,
				log.FieldPath, path,
				log.FieldError, err)
			continue
		}
		fragments = append(fragments, fragment)
		result.Merged++
		slog.Info("Receipt appended",
			log.FieldComponent, log.ComponentReceipt,
			log.FieldOperation, log.OpMerge,
			log.FieldPath, path,
			"progress", fmt.Sprintf("%d/%d", i+1, len(names)))
	}
	if result.Merged == 0 {
		return result, fmt.Errorf("%s: %w", dir, ErrNoReceipts)
	}

	if err := os.MkdirAll(filepath.Dir(out), 0755); err != nil {
		return result, fmt.Errorf("create merge directory: %w", err)
	}
	f, err := os.Create(out)
	if err != nil {
		return result, fmt.Errorf("create %s: %w", out, err)
	}
	if err := writePage(f, title, fragments); err != nil {
		f.Close()
		return result, err
	}
	if err := f.Close(); err != nil {
		return result, fmt.Errorf("close %s: %w", out, err)
	}

	slog.Info("Receipts merged",
		log.FieldComponent, log.ComponentReceipt,
		log.FieldOperation, log.OpMerge,
		log.FieldPath, out,
		"merged", result.Merged,
		"skipped", result.Skipped)
	return result, nil
}

// extractReceipts returns every marked receipt fragment in the file.
func extractReceipts(path string) (template.HTML, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}

	content := string(data)
	var parts []string
	for {
		start := strings.Index(content, beginMarker)
		if start < 0 {
			break
		}
		end := strings.Index(content[start:], endMarker)
		if end < 0 {
			return "", errors.New("unterminated receipt marker")
		}
		end += start + len(endMarker)
		parts = append(parts, content[start:end])
		content = content[end:]
	}
	if len(parts) == 0 {
		return "", errors.New("file holds no receipt")
	}
	return template.HTML(strings.Join(parts, "\n<div class=\"page-break\"></div>\n")), nil
}

// lessByDigits orders file names by the number formed from all their
// digits, so "10X.html" sorts after "9Y.html". Names without digits sort
// last; ties fall back to the name.
func lessByDigits(a, b string) bool {
	na, okA := digitsOf(a)
	nb, okB := digitsOf(b)
	switch {
	case okA && okB:
		if c := na.Cmp(nb); c != 0 {
			return c < 0
		}
	case okA != okB:
		return okA
	}
	return a < b
}

func digitsOf(name string) (*big.Int, bool) {
	var sb strings.Builder
	for _, r := range name {
		if r >= '0' && r <= '9' {
			sb.WriteRune(r)
		}
	}
	if sb.Len() == 0 {
		return nil, false
	}
	n, ok := new(big.Int).SetString(sb.String(), 10)
	return n, ok
}
