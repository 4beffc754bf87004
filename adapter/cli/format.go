package cli

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	billingDomain "github.com/felixgeelhaar/consulta/internal/billing/domain"
)

// Euros formats an amount in the catalog currency.
func Euros(amount float64) string {
	return fmt.Sprintf("€%.2f", amount)
}

// Assistants joins assistant display names.
func Assistants(list []billingDomain.Assistant) string {
	names := make([]string, 0, len(list))
	for _, a := range list {
		names = append(names, a.DisplayName())
	}
	return strings.Join(names, ", ")
}

// Automation describes a workflow quota.
func Automation(quota int) string {
	switch {
	case quota == billingDomain.UnlimitedAutomation:
		return "unlimited workflows"
	case quota == 0:
		return "not included"
	case quota == 1:
		return "1 workflow"
	default:
		return fmt.Sprintf("%d workflows", quota)
	}
}

// NewTable returns a tab-aligned writer. Callers must Flush it.
func NewTable(out io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
}
