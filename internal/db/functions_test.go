package db

import (
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCasefold(t *testing.T) {
	db := openTestDB(t)

	var folded string
	require.NoError(t, db.QueryRow("SELECT casefold(?)", "ÜBERPRÜFUNG Ærø").Scan(&folded))
	assert.Equal(t, "überprüfung ærø", folded)

	var null sql.NullString
	require.NoError(t, db.QueryRow("SELECT casefold(NULL)").Scan(&null))
	assert.False(t, null.Valid)
}
