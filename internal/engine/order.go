// SPDX-FileCopyrightText: 2026 Bonial International GmbH
// SPDX-License-Identifier: Apache-2.0

package engine

// OrderMemory keeps the manual sort order that was in effect before grouping
// was switched on.
type OrderMemory struct {
	saved SortOrder
	held  bool
}

// Snapshot saves order unless one is already held. It reports whether it
// saved.
func (m *OrderMemory) Snapshot(order SortOrder) bool {
	if m.held {
		return false
	}
	m.saved = order.clone()
	m.held = true
	return true
}

// Restore returns the held order and clears it.
func (m *OrderMemory) Restore() (SortOrder, bool) {
	if !m.held {
		return nil, false
	}
	order := m.saved
	m.saved = nil
	m.held = false
	return order, true
}

// Held reports whether an order is saved.
func (m *OrderMemory) Held() bool {
	return m.held
}

// Reset drops any held order.
func (m *OrderMemory) Reset() {
	m.saved = nil
	m.held = false
}
