package db

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTableCountsRequiresConnection(t *testing.T) {
	require.Nil(t, DB)

	counts, err := TableCounts(context.Background())
	assert.Error(t, err)
	assert.Nil(t, counts)
}

func TestTablesCoveredBySchema(t *testing.T) {
	for _, table := range Tables {
		assert.True(t, strings.Contains(CreateAllTablesSQL, "CREATE TABLE IF NOT EXISTS "+table+" ("), table)
		assert.True(t, strings.Contains(DropAllTablesSQL, "DROP TABLE IF EXISTS "+table+";"), table)
	}
}
