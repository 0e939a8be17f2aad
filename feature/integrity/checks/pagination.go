package checks

import (
	"context"
	"fmt"

	"objectfs/core/storage"
)

// PaginationReport compares a paged listing against a full one.
type PaginationReport struct {
	Prefix   string   `json:"prefix"`
	PageSize int64    `json:"page_size"`
	Pages    int      `json:"pages"`
	Paged    int      `json:"paged"`
	Listed   int      `json:"listed"`
	Matched  bool     `json:"matched"`
	Problems []string `json:"problems"`
}

// CheckPagination walks prefix one page of pageSize at a time and checks
// that the concatenation equals ListAll: no key lost, none duplicated,
// every key after the previous one.
func CheckPagination(ctx context.Context, engine *storage.Engine, prefix string, pageSize int64) (*PaginationReport, error) {
	if pageSize <= 0 {
		pageSize = storage.DefaultListLimit
	}
	report := &PaginationReport{Prefix: prefix, PageSize: pageSize, Problems: []string{}}

	all, err := engine.ListAll(ctx, prefix, "")
	if err != nil {
		return report, fmt.Errorf("failed to list %q: %w", prefix, err)
	}
	report.Listed = len(all)

	var paged []string
	marker := ""
	for {
		page, err := engine.List(ctx, prefix, marker, pageSize)
		if err != nil {
			return report, fmt.Errorf("failed to list page %d: %w", report.Pages+1, err)
		}
		report.Pages++
		paged = append(paged, page.Keys()...)
		if !page.Truncated {
			break
		}
		marker = page.NextMarker
	}
	report.Paged = len(paged)

	if report.Paged != report.Listed {
		report.Problems = append(report.Problems, fmt.Sprintf("paged %d keys, listed %d", report.Paged, report.Listed))
	}
	for i := 0; i < len(paged) && i < len(all); i++ {
		if paged[i] != all[i].Key {
			report.Problems = append(report.Problems, fmt.Sprintf("key %d: paged %q, listed %q", i, paged[i], all[i].Key))
			break
		}
	}

	report.Matched = len(report.Problems) == 0
	return report, nil
}
