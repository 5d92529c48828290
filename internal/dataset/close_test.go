package dataset

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadCloses(t *testing.T) {
	header := []string{"区分", colCloseOwner, colCloseCompleted}
	rows := [][]any{
		{"A", "佐藤", at(10, 0)},
		{"A", "鈴木", at(11, 0)},
		{"A", "佐藤", "2026/10/18 12:30:00"},
		{"A", "佐藤", yesterday(12, 0)},
		{"A", "", at(12, 0)},
		{"A", "田中", ""},
	}
	path := writeWorkbook(t, "close.xlsx", header, rows)

	got, err := LoadCloses(path, testNow)
	require.NoError(t, err)
	assert.Equal(t, []OwnerCloses{{Name: "佐藤", Closes: 2}, {Name: "鈴木", Closes: 1}}, got)
}

func TestLoadRoster(t *testing.T) {
	header := []string{colRosterName, colRosterSweet, "CTStage"}
	rows := [][]any{
		{"佐藤 花子", "sato.h", "op101"},
		{"鈴木 一郎", "suzuki.i", ""},
		{"", "ghost", "op999"},
	}
	r, err := LoadRoster(writeWorkbook(t, "operators.xlsx", header, rows))
	require.NoError(t, err)

	name, ok := r.FromSweet("sato.h")
	require.True(t, ok)
	assert.Equal(t, "佐藤 花子", name)
	_, ok = r.FromSweet("ghost")
	assert.False(t, ok)
	assert.Equal(t, 2, r.Len())
}
