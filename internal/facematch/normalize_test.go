package facematch

import (
	"testing"

	"github.com/kozaktomas/fras/internal/database"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateLabel(t *testing.T) {
	for _, input := range []string{"alice", "Alice", " bob ", "Jose\u0301", "Jiří"} {
		assert.NoError(t, ValidateLabel(input), "input %q", input)
	}
}

func TestValidateLabel_Invalid(t *testing.T) {
	for _, input := range []string{"", "   ", "\t\n", "\xff\xfe"} {
		assert.ErrorIs(t, ValidateLabel(input), ErrInvalidLabel, "input %q", input)
	}
}

func TestSortLabels(t *testing.T) {
	labels := []database.LabelCount{
		{Label: "zoe", Count: 1},
		{Label: "Émile", Count: 2},
		{Label: "adam", Count: 1},
		{Label: "Bob", Count: 3},
	}

	SortLabels(labels)

	var got []string
	for _, l := range labels {
		got = append(got, l.Label)
	}
	assert.Equal(t, []string{"adam", "Bob", "Émile", "zoe"}, got)
}

func TestSortLabels_DecomposedSortsWithComposed(t *testing.T) {
	labels := []database.LabelCount{
		{Label: "Zoe", Count: 1},
		{Label: "E\u0301mile", Count: 1},
		{Label: "Adam", Count: 1},
	}

	SortLabels(labels)

	require.Len(t, labels, 3)
	assert.Equal(t, "E\u0301mile", labels[1].Label, "label must be kept as stored")
}
