package main

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestImportArgs(t *testing.T) {
	t.Parallel()

	paths, isImport, err := importArgs([]string{"cashfolio"})
	require.NoError(t, err)
	require.False(t, isImport)
	require.Nil(t, paths)

	paths, isImport, err = importArgs([]string{"cashfolio", "import", "a.csv", "b.csv"})
	require.NoError(t, err)
	require.True(t, isImport)
	require.Equal(t, []string{"a.csv", "b.csv"}, paths)

	// a bare import must fail instead of starting the UI
	_, isImport, err = importArgs([]string{"cashfolio", "import"})
	require.True(t, isImport)
	require.Error(t, err)
}
