package database

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConnectionSQLiteMigrates(t *testing.T) {
	db, err := NewConnection("sqlite", "file::memory:", zerolog.Nop())
	require.NoError(t, err)

	for _, m := range Models() {
		assert.True(t, db.Migrator().HasTable(m))
	}
}

func TestNewConnectionRejectsUnknownDriver(t *testing.T) {
	_, err := NewConnection("mysql", "", zerolog.Nop())
	assert.Error(t, err)
}
