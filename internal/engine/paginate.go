// SPDX-FileCopyrightText: 2026 Bonial International GmbH
// SPDX-License-Identifier: Apache-2.0

package engine

import "github.com/bonial-oss/vuln-browse/internal/types"

// PageView is one page of the current result set. Exactly one of Matches
// (GroupNone) or Groups (grouped modes) holds the page's units.
type PageView struct {
	Mode      GroupingMode  `json:"-"`
	Matches   []types.Match `json:"matches,omitempty"`
	Groups    []Group       `json:"groups,omitempty"`
	PageIndex int           `json:"page"`
	PageCount int           `json:"pageCount"`
	PageSize  int           `json:"pageSize"`
	// TotalCount is the number of pagination units: matches when ungrouped,
	// groups otherwise.
	TotalCount    int `json:"totalCount"`
	FilteredCount int `json:"filteredCount"`
	RecordCount   int `json:"recordCount"`
}

// Len returns the number of units on the page.
func (v PageView) Len() int {
	if v.Mode == GroupNone {
		return len(v.Matches)
	}
	return len(v.Groups)
}

// pageBounds computes the clamped page and the [start, end) unit window.
// Groups are atomic units, so a page never splits one.
func pageBounds(total, pageSize, requested int) (page, pageCount, start, end int) {
	if pageSize < 1 {
		pageSize = 1
	}
	pageCount = (total + pageSize - 1) / pageSize
	if pageCount < 1 {
		pageCount = 1
	}
	page = clamp(requested, 1, pageCount)
	start = (page - 1) * pageSize
	if start > total {
		start = total
	}
	end = start + pageSize
	if end > total {
		end = total
	}
	return page, pageCount, start, end
}

// Paginate slices units into the requested page.
func Paginate[T any](units []T, pageSize, requested int) (items []T, page, pageCount int) {
	page, pageCount, start, end := pageBounds(len(units), pageSize, requested)
	return units[start:end:end], page, pageCount
}

// PageCount returns ceil(total/pageSize), at least 1.
func PageCount(total, pageSize int) int {
	_, n, _, _ := pageBounds(total, pageSize, 1)
	return n
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
