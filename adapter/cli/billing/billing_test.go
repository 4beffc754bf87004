package billing_test

import (
	"strings"
	"testing"

	"github.com/felixgeelhaar/consulta/adapter/cli"
	"github.com/felixgeelhaar/consulta/adapter/cli/billing"
	"github.com/felixgeelhaar/consulta/adapter/cli/clitest"
	"github.com/felixgeelhaar/consulta/internal/billing/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	return clitest.Execute(t, billing.Cmd, stdin, args...)
}

func TestStatus_NoApp(t *testing.T) {
	cli.SetApp(nil)

	_, err := run(t, "", "status")
	assert.ErrorIs(t, err, cli.ErrNoDatabase)
}

func TestStatus_RequiresLogin(t *testing.T) {
	clitest.NewApp(t, nil)

	_, err := run(t, "", "status")
	assert.ErrorIs(t, err, cli.ErrNotLoggedIn)
}

func TestStatus_Trial(t *testing.T) {
	a, _, box := clitest.NewApp(t, nil)
	clitest.SignIn(t, a, box, "ada@example.com")

	out, err := run(t, "", "status")
	require.NoError(t, err)
	assert.Contains(t, out, "User Standard (user-standard)")
	assert.Contains(t, out, "Status:     trial")
	assert.Contains(t, out, "Period:     trial")
	assert.Contains(t, out, "Progress:   100%")
	assert.Contains(t, out, "Assistants: GPTOSS")
}

func TestEntitlements_Anonymous(t *testing.T) {
	clitest.NewApp(t, nil)

	out, err := run(t, "", "entitlements")
	require.NoError(t, err)
	assert.Contains(t, out, "Anonymous visitor")
	assert.Contains(t, out, "Support:    "+string(domain.SupportSelfServe))
	assert.Contains(t, out, "Automation: not included")
}

func TestCheckout_ActivatesPlan(t *testing.T) {
	a, _, box := clitest.NewApp(t, nil)
	clitest.SignIn(t, a, box, "ada@example.com")

	out, err := run(t, "", "checkout", "--plan", "business", "--period", "annual",
		"--cardholder", "Ada Lovelace", "--card", "4242424242424242", "--expiry", "12/30", "--cvv", "123")
	require.NoError(t, err)
	assert.Contains(t, out, "Charging €576.00 for Business (annual)")
	assert.Contains(t, out, "card ending 4242")
	assert.Contains(t, box.Subjects(), "Your Consulta receipt")

	out, err = run(t, "", "entitlements")
	require.NoError(t, err)
	assert.Contains(t, out, "Plan:       business")
	assert.Contains(t, out, "Automation: 3 workflows")
	assert.Contains(t, out, "Phone support included")

	out, err = run(t, "", "status")
	require.NoError(t, err)
	assert.Contains(t, out, "Status:     active")
	assert.Contains(t, out, "Period:     annual")
}

func TestCheckout_BillingAddress(t *testing.T) {
	a, _, box := clitest.NewApp(t, nil)
	clitest.SignIn(t, a, box, "ada@example.com")

	out, err := run(t, "", "checkout", "--plan", "user-premium",
		"--cardholder", "Ada Lovelace", "--card", "4242424242424242", "--expiry", "12/30", "--cvv", "123",
		"--address-line1", "12 Analytical Way", "--city", "London", "--postal-code", "N1 9GU", "--country", "gb")
	require.NoError(t, err)
	assert.Contains(t, out, "Billed to: 12 Analytical Way, N1 9GU London, GB")

	out, err = run(t, "", "checkout", "--plan", "user-premium",
		"--cardholder", "Ada Lovelace", "--card", "4242424242424242", "--expiry", "12/30", "--cvv", "123")
	require.NoError(t, err)
	assert.NotContains(t, out, "Billed to")
}

func TestCheckout_PromptsForCard(t *testing.T) {
	a, _, box := clitest.NewApp(t, nil)
	clitest.SignIn(t, a, box, "ada@example.com")

	out, err := run(t, "Ada Lovelace\n4111 1111 1111 1111\n01/29\n321\n", "checkout", "--plan", "user-premium")
	require.NoError(t, err)
	assert.Contains(t, out, "Charging €40.00 for User Premium (monthly)")
	assert.Contains(t, out, "card ending 1111")
}

func TestCheckout_Rejects(t *testing.T) {
	a, _, box := clitest.NewApp(t, nil)
	clitest.SignIn(t, a, box, "ada@example.com")

	_, err := run(t, "", "checkout", "--plan", "gold")
	assert.True(t, domain.IsUnknownPlan(err))

	_, err = run(t, "", "checkout", "--plan", "business", "--period", "weekly")
	assert.True(t, domain.IsValidation(err))

	_, err = run(t, "", "checkout", "--plan", "business",
		"--cardholder", "Ada", "--card", "4242", "--expiry", "12/30", "--cvv", "123")
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "card_number", verr.Field)
}

func TestCheckout_Declined(t *testing.T) {
	cfg := clitest.Config(t)
	cfg.PaymentFailureRate = 1
	a, _, box := clitest.NewApp(t, cfg)
	clitest.SignIn(t, a, box, "ada@example.com")

	_, err := run(t, "", "checkout", "--plan", "business",
		"--cardholder", "Ada", "--card", "4242424242424242", "--expiry", "12/30", "--cvv", "123")
	assert.True(t, domain.IsDeclined(err))

	out, err := run(t, "", "status")
	require.NoError(t, err)
	assert.Contains(t, out, "Status:     trial")
}

func TestWatch_StopsAfterCount(t *testing.T) {
	a, _, box := clitest.NewApp(t, nil)
	clitest.SignIn(t, a, box, "ada@example.com")

	out, err := run(t, "", "watch", "--interval", "5ms", "--count", "3")
	require.NoError(t, err)
	assert.Len(t, strings.Split(strings.TrimSpace(out), "\n"), 3)
	assert.Contains(t, out, "trial")
}
