// SPDX-FileCopyrightText: 2026 Bonial International GmbH
// SPDX-License-Identifier: Apache-2.0

package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOrderMemory(t *testing.T) {
	var m OrderMemory
	first := SortOrder{{Column: ColumnRisk, Desc: true}}

	assert.True(t, m.Snapshot(first))
	assert.False(t, m.Snapshot(SortOrder{{Column: ColumnID}}), "an existing snapshot is kept")
	assert.True(t, m.Held())

	got, ok := m.Restore()
	assert.True(t, ok)
	assert.Equal(t, first, got)
	assert.False(t, m.Held())

	_, ok = m.Restore()
	assert.False(t, ok)
}

func TestOrderMemory_SnapshotIsCopied(t *testing.T) {
	var m OrderMemory
	order := SortOrder{{Column: ColumnRisk}}
	m.Snapshot(order)
	order[0].Desc = true

	got, _ := m.Restore()
	assert.False(t, got[0].Desc)
}

func TestOrderMemory_Reset(t *testing.T) {
	var m OrderMemory
	m.Snapshot(SortOrder{{Column: ColumnRisk}})
	m.Reset()
	assert.False(t, m.Held())
}
