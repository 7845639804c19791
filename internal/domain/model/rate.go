package model

import (
	"fmt"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// Rate is a published exchange rate or a threshold bound. Decimal rather
// than float so that values survive the document round-trip exactly.
type Rate struct {
	decimal.Decimal
}

func NewRate(s string) (Rate, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Rate{}, fmt.Errorf("invalid rate %q: %w", s, err)
	}
	return Rate{Decimal: d}, nil
}

func (r Rate) Less(o Rate) bool {
	return r.Decimal.LessThan(o.Decimal)
}

func (r Rate) Greater(o Rate) bool {
	return r.Decimal.GreaterThan(o.Decimal)
}

func (r Rate) Equal(o Rate) bool {
	return r.Decimal.Equal(o.Decimal)
}

// MarshalYAML emits the rate as a plain numeric scalar so the document
// stays human-editable.
func (r Rate) MarshalYAML() (interface{}, error) {
	return &yaml.Node{Kind: yaml.ScalarNode, Value: r.Decimal.String()}, nil
}

func (r *Rate) UnmarshalYAML(value *yaml.Node) error {
	d, err := decimal.NewFromString(value.Value)
	if err != nil {
		return fmt.Errorf("invalid rate %q: %w", value.Value, err)
	}
	r.Decimal = d
	return nil
}

// RateRow holds the published values for one currency. Rate types absent
// from the page (blank cells) are simply missing from Values. Time is the
// publication timestamp column, kept verbatim.
type RateRow struct {
	Values map[RateType]Rate
	Time   string
}

// RateTable maps the source page's currency label to its published row.
type RateTable map[string]RateRow
