// SPDX-FileCopyrightText: 2026 Bonial International GmbH
// SPDX-License-Identifier: Apache-2.0

// Package engine turns normalized matches, filter criteria, grouping mode,
// collapse state and page position into a paginated view. Every call
// recomputes the whole pipeline (filter, sort, group, paginate); the only
// state carried between calls is the collapse map and the order memory.
//
// An Engine is not safe for concurrent use.
package engine

import (
	"errors"
	"fmt"

	"github.com/bonial-oss/vuln-browse/internal/input"
	"github.com/bonial-oss/vuln-browse/internal/types"
)

// DefaultPageSize matches the page length of the original HTML viewer.
const DefaultPageSize = 50

// ErrInvalidPageSize is returned for page sizes below 1.
var ErrInvalidPageSize = errors.New("page size must be at least 1")

// Options seed a new Engine.
type Options struct {
	PageSize int
	Criteria FilterCriteria
	Mode     GroupingMode
	// Order is the manual ordering every load starts from.
	Order SortOrder
}

// Engine holds one browsing session over a loaded report.
type Engine struct {
	records  []types.Match
	criteria FilterCriteria
	mode     GroupingMode
	order    SortOrder
	page     int
	pageSize int

	initial   SortOrder
	memory    OrderMemory
	collapsed CollapseState

	generation uint64
}

// New creates an empty engine.
func New(opts Options) (*Engine, error) {
	if opts.PageSize == 0 {
		opts.PageSize = DefaultPageSize
	}
	if opts.PageSize < 1 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidPageSize, opts.PageSize)
	}
	if !opts.Mode.valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownGroupingMode, int(opts.Mode))
	}
	if err := opts.Order.validate(); err != nil {
		return nil, err
	}

	e := &Engine{
		criteria: opts.Criteria.Clone(),
		page:     1,
		pageSize: opts.PageSize,
	}
	e.initial = opts.Order.clone()
	e.mode = opts.Mode
	e.resetOrder()
	return e, nil
}

// LoadDocument parses and normalizes a raw report and, only if every step
// succeeds, replaces the loaded records. On error the previous session is
// left untouched.
func (e *Engine) LoadDocument(data []byte) (int, error) {
	records, _, err := input.Load(data)
	if err != nil {
		return 0, err
	}
	e.Load(records)
	return len(records), nil
}

// Load replaces the session with already-normalized records. Collapse state
// is cleared and the manual order goes back to Options.Order; criteria and
// grouping mode are kept.
func (e *Engine) Load(records []types.Match) {
	e.records = append([]types.Match(nil), records...)
	e.collapsed.Reset()
	e.resetOrder()
	e.page = 1
	e.generation++
}

func (e *Engine) resetOrder() {
	e.memory.Reset()
	e.order = e.initial.clone()
	if e.mode != GroupNone {
		e.memory.Snapshot(e.order)
		e.order = nil
	}
}

// Generation counts successful loads. Callers acquiring documents
// asynchronously compare it to drop results that a newer load superseded.
func (e *Engine) Generation() uint64 {
	return e.generation
}

// SetFilterCriteria replaces the criteria and returns to page 1.
func (e *Engine) SetFilterCriteria(c FilterCriteria) PageView {
	e.criteria = c.Clone()
	e.page = 1
	return e.PageView()
}

// Criteria returns a copy of the active criteria.
func (e *Engine) Criteria() FilterCriteria {
	return e.criteria.Clone()
}

// SetGroupingMode switches grouping. Leaving GroupNone snapshots the manual
// sort order; returning to GroupNone restores it. Switching between two
// grouped modes keeps the original snapshot. Any change returns to page 1.
func (e *Engine) SetGroupingMode(mode GroupingMode) (PageView, error) {
	if !mode.valid() {
		return e.PageView(), fmt.Errorf("%w: %d", ErrUnknownGroupingMode, int(mode))
	}
	if mode == e.mode {
		return e.PageView(), nil
	}

	switch {
	case e.mode == GroupNone:
		e.memory.Snapshot(e.order)
		e.order = nil
	case mode == GroupNone:
		order, _ := e.memory.Restore()
		e.order = order
	}
	e.mode = mode
	e.page = 1
	return e.PageView(), nil
}

// Mode returns the active grouping mode.
func (e *Engine) Mode() GroupingMode {
	return e.mode
}

// SetSortOrder sets the manual ordering and returns to page 1. While
// grouped it orders members within each bucket.
func (e *Engine) SetSortOrder(order SortOrder) (PageView, error) {
	if err := order.validate(); err != nil {
		return e.PageView(), err
	}
	e.order = order.clone()
	e.page = 1
	return e.PageView(), nil
}

// SortOrder returns the manual ordering currently applied.
func (e *Engine) SortOrder() SortOrder {
	return e.order.clone()
}

// SetPage moves to page n, clamped into [1, pageCount].
func (e *Engine) SetPage(n int) PageView {
	e.page, _, _, _ = pageBounds(e.unitCount(), e.pageSize, n)
	return e.PageView()
}

// SetPageSize changes the page size. The page index is kept unless the new
// page count forces a clamp.
func (e *Engine) SetPageSize(n int) (PageView, error) {
	if n < 1 {
		return e.PageView(), fmt.Errorf("%w: %d", ErrInvalidPageSize, n)
	}
	e.pageSize = n
	e.page, _, _, _ = pageBounds(e.unitCount(), n, e.page)
	return e.PageView(), nil
}

// ToggleGroupCollapsed flips the collapse state of label. Membership and
// page count are unaffected.
func (e *Engine) ToggleGroupCollapsed(label string) PageView {
	e.collapsed.Toggle(label)
	return e.PageView()
}

// CollapseAll collapses every group of the current filtered result. It is a
// no-op when ungrouped.
func (e *Engine) CollapseAll() PageView {
	if e.mode == GroupNone {
		return e.PageView()
	}
	e.collapsed.Reset()
	for _, g := range GroupMatches(e.filtered(), e.mode, nil) {
		e.collapsed.Set(g.Label, true)
	}
	return e.PageView()
}

// ExpandAll expands every group. It is a no-op when ungrouped.
func (e *Engine) ExpandAll() PageView {
	if e.mode == GroupNone {
		return e.PageView()
	}
	e.collapsed.Reset()
	return e.PageView()
}

// PageView recomputes the current page without changing any state.
func (e *Engine) PageView() PageView {
	filtered := e.filtered()
	view := PageView{
		Mode:          e.mode,
		PageSize:      e.pageSize,
		FilteredCount: len(filtered),
		RecordCount:   len(e.records),
	}

	if e.mode == GroupNone {
		view.Matches, view.PageIndex, view.PageCount = Paginate(filtered, e.pageSize, e.page)
		view.TotalCount = len(filtered)
		return view
	}

	groups := GroupMatches(filtered, e.mode, &e.collapsed)
	view.Groups, view.PageIndex, view.PageCount = Paginate(groups, e.pageSize, e.page)
	view.TotalCount = len(groups)
	return view
}

// Records returns a copy of every loaded match in document order.
func (e *Engine) Records() []types.Match {
	return append([]types.Match(nil), e.records...)
}

// Severities lists distinct severity labels in first-seen order.
func (e *Engine) Severities() []string {
	return e.distinct(func(m *types.Match) string { return m.Severity })
}

// FixStates lists distinct fix states in first-seen order.
func (e *Engine) FixStates() []string {
	return e.distinct(func(m *types.Match) string { return m.FixState })
}

func (e *Engine) distinct(attr func(*types.Match) string) []string {
	seen := make(map[string]bool)
	var out []string
	for i := range e.records {
		v := attr(&e.records[i])
		if seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}

// filtered runs the filter and the manual sort.
func (e *Engine) filtered() []types.Match {
	return SortMatches(Filter(e.records, e.criteria), e.order)
}

// unitCount returns the number of pagination units: matches when
// ungrouped, groups otherwise.
func (e *Engine) unitCount() int {
	filtered := e.filtered()
	if e.mode == GroupNone {
		return len(filtered)
	}
	return len(GroupMatches(filtered, e.mode, nil))
}
