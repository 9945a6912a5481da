package domain

import (
	"encoding/json"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
)

// CartItem is a single domain-name line in a cart. DomainName is the unique
// key within a cart; Price is the per-year unit price.
type CartItem struct {
	DomainName         string
	Price              decimal.Decimal
	Currency           string
	RegistrationPeriod int
}

// cartItemWire is the JSON shape shared by the Cart API and local storage.
// Price travels as a bare JSON number.
type cartItemWire struct {
	DomainName         string      `json:"domainName"`
	Price              json.Number `json:"price"`
	Currency           string      `json:"currency"`
	RegistrationPeriod int         `json:"registrationPeriod"`
}

func (i CartItem) MarshalJSON() ([]byte, error) {
	return json.Marshal(cartItemWire{
		DomainName:         i.DomainName,
		Price:              json.Number(i.Price.String()),
		Currency:           i.Currency,
		RegistrationPeriod: i.RegistrationPeriod,
	})
}

func (i *CartItem) UnmarshalJSON(data []byte) error {
	var wire cartItemWire
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}

	price := decimal.Zero
	if wire.Price != "" {
		parsed, err := decimal.NewFromString(wire.Price.String())
		if err != nil {
			return err
		}
		price = parsed
	}

	i.DomainName = wire.DomainName
	i.Price = price
	i.Currency = wire.Currency
	i.RegistrationPeriod = wire.RegistrationPeriod
	return nil
}

// LineTotal is price multiplied by the registration period in years.
func (i CartItem) LineTotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.RegistrationPeriod)))
}

// CartEnvelope wraps a cart for the wire: {"cart": [...]}.
type CartEnvelope struct {
	Cart []CartItem `json:"cart"`
}

// TLD returns the lowercased suffix after the last dot of a fully qualified
// domain name, or "" when the name has no usable suffix.
func TLD(domainName string) string {
	idx := strings.LastIndex(domainName, ".")
	if idx < 0 || idx == len(domainName)-1 {
		return ""
	}
	return strings.ToLower(domainName[idx+1:])
}

// NormalizeCurrency upper-cases well-formed ISO 4217 codes and passes
// anything unparseable through untouched; the cart never rejects an item
// over its currency string.
func NormalizeCurrency(code string) string {
	unit, err := currency.ParseISO(code)
	if err != nil {
		return code
	}
	return unit.String()
}
