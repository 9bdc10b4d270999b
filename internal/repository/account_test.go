package repository

import (
	"context"
	"testing"

	"kodbank/internal/domain"
	"kodbank/internal/testutil"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAccount(username, email string) *domain.Account {
	return &domain.Account{
		Username:     username,
		Email:        email,
		PasswordHash: "$2a$10$placeholderplaceholderplaceholderplaceholderplaceho",
		Balance:      domain.DefaultBalance,
		Role:         domain.RoleCustomer,
	}
}

func TestAccountRepository_CreateAndFind(t *testing.T) {
	repo := NewAccountRepository(testutil.NewDB(t))
	ctx := context.Background()

	acct := newAccount("alice", "alice@test.com")
	require.NoError(t, repo.Create(ctx, acct))
	require.NotZero(t, acct.ID)

	byName, err := repo.FindByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, acct.ID, byName.ID)
	assert.Equal(t, "alice@test.com", byName.Email)
	assert.Equal(t, domain.RoleCustomer, byName.Role)
	assert.True(t, byName.Balance.Equal(decimal.RequireFromString("100000.00")))

	byID, err := repo.FindByID(ctx, acct.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", byID.Username)
}

func TestAccountRepository_Duplicates(t *testing.T) {
	repo := NewAccountRepository(testutil.NewDB(t))
	ctx := context.Background()
	require.NoError(t, repo.Create(ctx, newAccount("alice", "alice@test.com")))

	err := repo.Create(ctx, newAccount("alice", "other@test.com"))
	assert.ErrorIs(t, err, domain.ErrConflict, "same username")

	err = repo.Create(ctx, newAccount("otherName", "alice@test.com"))
	assert.ErrorIs(t, err, domain.ErrConflict, "same email")

	// Uniqueness is case-sensitive
	require.NoError(t, repo.Create(ctx, newAccount("Alice", "Alice@test.com")))
}

func TestAccountRepository_NotFound(t *testing.T) {
	repo := NewAccountRepository(testutil.NewDB(t))
	ctx := context.Background()
	require.NoError(t, repo.Create(ctx, newAccount("alice", "alice@test.com")))

	for _, username := range []string{"bob", "ALICE", "' OR '1'='1", ""} {
		_, err := repo.FindByUsername(ctx, username)
		assert.ErrorIs(t, err, domain.ErrNotFound, "username %q", username)
	}

	_, err := repo.FindByID(ctx, 999)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = repo.Balance(ctx, 999)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestAccountRepository_Balance(t *testing.T) {
	repo := NewAccountRepository(testutil.NewDB(t))
	ctx := context.Background()

	acct := newAccount("alice", "alice@test.com")
	acct.Balance = decimal.RequireFromString("1234.56")
	require.NoError(t, repo.Create(ctx, acct))

	balance, err := repo.Balance(ctx, acct.ID)
	require.NoError(t, err)
	assert.Equal(t, "1234.56", balance.StringFixed(2))
}

func TestAccountRepository_List(t *testing.T) {
	repo := NewAccountRepository(testutil.NewDB(t))
	ctx := context.Background()
	for _, name := range []string{"a", "b", "c"} {
		require.NoError(t, repo.Create(ctx, newAccount(name, name+"@test.com")))
	}

	page, total, err := repo.List(ctx, 1, 1)
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	require.Len(t, page, 1)
	assert.Equal(t, "b", page[0].Username)
}
