package domain_test

import (
	"strings"
	"testing"

	"github.com/felixgeelhaar/consulta/internal/identity/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEmail_NormalizesForLogin(t *testing.T) {
	// Registration and login must agree on the stored form.
	for in, want := range map[string]string{
		"ada@consulta.app":             "ada@consulta.app",
		"  Ada.Lovelace@Consulta.APP ": "ada.lovelace@consulta.app",
		"ops+billing@team.consulta.io": "ops+billing@team.consulta.io",
	} {
		email, err := domain.NewEmail(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, email.String())
	}
}

func TestNewEmail_Rejects(t *testing.T) {
	for _, in := range []string{
		"",
		"   ",
		"ada.consulta.app",
		"ada@",
		"@consulta.app",
		"ada@@consulta.app",
		"ada@consulta",
	} {
		_, err := domain.NewEmail(in)
		assert.ErrorIs(t, err, domain.ErrInvalidEmail, "%q", in)
	}
}

func TestEmail_ZeroAndEquals(t *testing.T) {
	lower, err := domain.NewEmail("grace@consulta.app")
	require.NoError(t, err)
	upper, err := domain.NewEmail("GRACE@consulta.app")
	require.NoError(t, err)
	other, err := domain.NewEmail("linus@consulta.app")
	require.NoError(t, err)

	assert.True(t, lower.Equals(upper))
	assert.False(t, lower.Equals(other))
	assert.False(t, lower.IsZero())
	assert.True(t, domain.Email{}.IsZero())
}

func TestNewName(t *testing.T) {
	name, err := domain.NewName("  Grace  ")
	require.NoError(t, err)
	assert.Equal(t, "Grace", name.String())

	longest := strings.Repeat("x", domain.MaxNameLength)
	name, err = domain.NewName(longest)
	require.NoError(t, err)
	assert.Equal(t, longest, name.String())

	_, err = domain.NewName(" \t ")
	assert.ErrorIs(t, err, domain.ErrEmptyName)
	_, err = domain.NewName(longest + "x")
	assert.ErrorIs(t, err, domain.ErrNameTooLong)

	same, _ := domain.NewName("Grace")
	diff, _ := domain.NewName("Ada")
	assert.True(t, same.Equals(mustName(t, "Grace")))
	assert.False(t, same.Equals(diff))
}

func mustName(t *testing.T, v string) domain.Name {
	t.Helper()
	n, err := domain.NewName(v)
	require.NoError(t, err)
	return n
}

func TestValidatePassword(t *testing.T) {
	assert.NoError(t, domain.ValidatePassword("hunter2", "hunter2"))
	assert.NoError(t, domain.ValidatePassword(strings.Repeat("p", domain.MinPasswordLength), strings.Repeat("p", domain.MinPasswordLength)))
	assert.ErrorIs(t, domain.ValidatePassword("abc12", "abc12"), domain.ErrPasswordTooShort)
	assert.ErrorIs(t, domain.ValidatePassword("hunter2", "hunter3"), domain.ErrPasswordMismatch)
}
