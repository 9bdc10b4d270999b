package db_test

import (
	"testing"

	"kodbank/internal/db"
	"kodbank/internal/domain"
	"kodbank/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrate_Idempotent(t *testing.T) {
	gormDB := testutil.NewDB(t)

	require.NoError(t, db.Migrate(gormDB))

	m := gormDB.Migrator()
	assert.True(t, m.HasTable(&domain.Account{}))
	assert.True(t, m.HasTable(&domain.SessionToken{}))
	assert.True(t, m.HasIndex(&domain.Account{}, "Username"))
	assert.True(t, m.HasIndex(&domain.Account{}, "Email"))
}

func TestMigrate_DefaultBalance(t *testing.T) {
	gormDB := testutil.NewDB(t)

	// Rows inserted outside the application still get the default balance and role
	require.NoError(t, gormDB.Exec(
		"INSERT INTO accounts (username, email, password, created_at) VALUES (?, ?, ?, CURRENT_TIMESTAMP)",
		"raw", "raw@test.com", "x",
	).Error)

	var acct domain.Account
	require.NoError(t, gormDB.Where("username = ?", "raw").Take(&acct).Error)
	assert.Equal(t, "100000.00", acct.Balance.StringFixed(2))
	assert.Equal(t, domain.RoleCustomer, acct.Role)
}
