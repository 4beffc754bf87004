package domain

import (
	"context"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

var (
	expiryPattern = regexp.MustCompile(`^\d{2}/\d{2}$`)
	digitsPattern = regexp.MustCompile(`^\d+$`)
)

const (
	cardNumberDigits = 16
	cvvDigits        = 3
)

// Address is the optional billing address collected at checkout.
type Address struct {
	Line1      string
	City       string
	PostalCode string
	Country    string
}

// Normalized trims every field and upper-cases the country code.
func (a Address) Normalized() Address {
	return Address{
		Line1:      strings.TrimSpace(a.Line1),
		City:       strings.TrimSpace(a.City),
		PostalCode: strings.TrimSpace(a.PostalCode),
		Country:    strings.ToUpper(strings.TrimSpace(a.Country)),
	}
}

// IsZero reports whether no address field was given.
func (a Address) IsZero() bool {
	return a.Normalized() == Address{}
}

// String joins the given fields on one line, as printed on receipts.
func (a Address) String() string {
	n := a.Normalized()
	var parts []string
	for _, v := range []string{n.Line1, strings.TrimSpace(n.PostalCode + " " + n.City), n.Country} {
		if v != "" {
			parts = append(parts, v)
		}
	}
	return strings.Join(parts, ", ")
}

// PaymentDetails is the card data submitted with a checkout.
type PaymentDetails struct {
	CardholderName string
	CardNumber     string
	Expiry         string
	CVV            string
	Address        Address
}

// NormalizedCardNumber strips the spaces users type between digit groups.
func (p PaymentDetails) NormalizedCardNumber() string {
	return strings.ReplaceAll(p.CardNumber, " ", "")
}

// Last4 returns the last four digits of the card, for receipts.
func (p PaymentDetails) Last4() string {
	n := p.NormalizedCardNumber()
	if len(n) < 4 {
		return n
	}
	return n[len(n)-4:]
}

// Validate checks the card fields and returns the first failing one.
func (p PaymentDetails) Validate() error {
	number := p.NormalizedCardNumber()
	if len(number) != cardNumberDigits || !digitsPattern.MatchString(number) {
		return &ValidationError{Field: "card_number", Reason: "must contain exactly 16 digits"}
	}
	if !expiryPattern.MatchString(p.Expiry) {
		return &ValidationError{Field: "expiry", Reason: "must be in MM/YY format"}
	}
	if len(p.CVV) != cvvDigits || !digitsPattern.MatchString(p.CVV) {
		return &ValidationError{Field: "cvv", Reason: "must contain exactly 3 digits"}
	}
	if strings.TrimSpace(p.CardholderName) == "" {
		return &ValidationError{Field: "cardholder_name", Reason: "is required"}
	}
	return nil
}

// Charge is a single payment request sent to a gateway.
type Charge struct {
	AccountID   uuid.UUID
	Plan        PlanID
	Period      BillingPeriod
	Amount      float64
	Currency    string
	Payment     PaymentDetails
	Description string
}

// AmountCents returns the charge amount in minor units.
func (c Charge) AmountCents() int64 {
	return int64(c.Amount*100 + 0.5)
}

// Receipt confirms a successful charge.
type Receipt struct {
	Reference string
	Amount    float64
	Currency  string
	Last4     string
}

// PaymentGateway settles a charge. A decline is reported as *PaymentDeclinedError.
type PaymentGateway interface {
	Charge(ctx context.Context, charge Charge) (Receipt, error)
}
