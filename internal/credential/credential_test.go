package credential

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndVerify(t *testing.T) {
	h, err := Hash("s3cret")
	require.NoError(t, err)

	assert.Len(t, h, 60)
	assert.True(t, IsHash(h))
	assert.True(t, Verify("s3cret", h))
	assert.False(t, Verify("wrong", h))

	h2, err := Hash("s3cret")
	require.NoError(t, err)
	assert.NotEqual(t, h, h2, "hashes must be salted")
}

func TestIsHash(t *testing.T) {
	assert.False(t, IsHash("plaintext1"))
	assert.False(t, IsHash(""))
	assert.False(t, IsHash("$2a$"+strings.Repeat("x", 10)))
	assert.False(t, IsHash("$3a$"+strings.Repeat("x", 56)))
	assert.True(t, IsHash("$2y$"+strings.Repeat("x", 56)))
}

func TestMatches(t *testing.T) {
	h, err := Hash("pw")
	require.NoError(t, err)

	assert.True(t, Matches("pw", h, false))
	assert.False(t, Matches("nope", h, true))
	assert.True(t, Matches("legacy", "legacy", true))
	assert.False(t, Matches("legacy", "legacy", false))
	assert.False(t, Matches("", "", true))
}

type memAccounts struct {
	accounts []Account
	setErr   error
	writes   int
}

func (m *memAccounts) ListAccounts(ctx context.Context) ([]Account, error) {
	out := make([]Account, len(m.accounts))
	copy(out, m.accounts)
	return out, nil
}

func (m *memAccounts) SetPassword(ctx context.Context, id, password string) error {
	if m.setErr != nil {
		return m.setErr
	}
	for i := range m.accounts {
		if m.accounts[i].ID == id {
			m.accounts[i].Password = password
			m.writes++
			return nil
		}
	}
	return errors.New("no such account")
}

func TestMigrator_Run(t *testing.T) {
	existing, err := Hash("already")
	require.NoError(t, err)

	store := &memAccounts{accounts: []Account{
		{ID: "1", Username: "alice", Password: "plaintext1"},
		{ID: "2", Username: "bob", Password: existing},
	}}
	updates := 0
	m := NewMigrator(store, func() { updates++ })

	n, err := m.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, 1, updates)

	migrated := store.accounts[0].Password
	assert.Len(t, migrated, 60)
	assert.True(t, IsHash(migrated))
	assert.True(t, Verify("plaintext1", migrated))
	assert.Equal(t, existing, store.accounts[1].Password)

	n, err = m.Run(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Equal(t, migrated, store.accounts[0].Password)
	assert.Equal(t, 1, store.writes)
}

func TestMigrator_Run_StoreError(t *testing.T) {
	store := &memAccounts{
		accounts: []Account{{ID: "1", Username: "alice", Password: "plain"}},
		setErr:   errors.New("db down"),
	}

	n, err := NewMigrator(store, nil).Run(context.Background())

	assert.Zero(t, n)
	assert.ErrorContains(t, err, "db down")
}

func TestHash_TooLong(t *testing.T) {
	_, err := Hash(strings.Repeat("a", MaxPasswordBytes+1))
	assert.ErrorIs(t, err, ErrPasswordTooLong)

	h, err := Hash(strings.Repeat("a", MaxPasswordBytes))
	require.NoError(t, err)
	assert.True(t, IsHash(h))
}

func TestReject(t *testing.T) {
	assert.False(t, Reject("anything"))
	assert.False(t, Reject("not-a-real-password"))
	assert.True(t, IsHash(string(dummyHash)))
}

func TestMigrator_Run_SkipsUnhashableAndContinues(t *testing.T) {
	store := &memAccounts{accounts: []Account{
		{ID: "1", Username: "aaa", Password: strings.Repeat("x", 80)},
		{ID: "2", Username: "bbb", Password: "plaintext1"},
	}}
	m := NewMigrator(store, nil)

	n, err := m.Run(context.Background())
	assert.Equal(t, 1, n)
	assert.ErrorIs(t, err, ErrPasswordTooLong)
	assert.ErrorContains(t, err, "aaa")
	var partial *PartialError
	require.ErrorAs(t, err, &partial)
	assert.Len(t, partial.Failed, 1)
	assert.True(t, Verify("plaintext1", store.accounts[1].Password))
	assert.Equal(t, strings.Repeat("x", 80), store.accounts[0].Password)

	n, err = m.Run(context.Background())
	assert.Zero(t, n)
	assert.ErrorIs(t, err, ErrPasswordTooLong)
	assert.Equal(t, 1, store.writes)
}
