package types

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPattern_Matches(t *testing.T) {
	t.Parallel()

	p := &Pattern{
		ID:      "structured-memory",
		Title:   "Structured Memory",
		Summary: "Important information persists, unimportant information is evicted.",
		Tags:    []string{"memory", "context"},
	}

	require.True(t, p.Matches("memory"))
	require.True(t, p.Matches("MEMORY"))
	require.True(t, p.Matches("evicted"))
	require.True(t, p.Matches("context"))
	require.True(t, p.Matches(""))
	require.False(t, p.Matches("scheduler"))
}

func TestValidMaturity(t *testing.T) {
	t.Parallel()

	require.True(t, ValidMaturity(MaturityExperimental))
	require.True(t, ValidMaturity(MaturityEstablished))
	require.False(t, ValidMaturity(Maturity("alpha")))
	require.False(t, ValidMaturity(Maturity("")))
}
