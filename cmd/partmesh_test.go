package cmd

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRunPartMeshAcrossMultipleRanks(t *testing.T) {
	path := buildTestStore(t)
	require.NoError(t, runPartMesh(path, 2, false))
}

func TestRunPartMeshSingleRank(t *testing.T) {
	path := buildTestStore(t)
	require.NoError(t, runPartMesh(path, 1, false))
}
