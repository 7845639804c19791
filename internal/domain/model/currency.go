package model

import "strings"

// RateType identifies one of the four published exchange-rate columns.
type RateType string

const (
	SpotBuying  RateType = "spot_buying_rate"
	CashBuying  RateType = "cash_buying_rate"
	SpotSelling RateType = "spot_selling_rate"
	CashSelling RateType = "cash_selling_rate"
)

// RateTypes lists the canonical rate types in the order the source page
// publishes them (columns 1 through 4 of the rate table).
var RateTypes = []RateType{SpotBuying, CashBuying, SpotSelling, CashSelling}

func ParseRateType(s string) (RateType, bool) {
	rt := RateType(strings.ToLower(s))
	for _, known := range RateTypes {
		if rt == known {
			return known, true
		}
	}
	return "", false
}

func (rt RateType) String() string {
	return string(rt)
}

// Side names one bound of a Threshold.
type Side string

const (
	SideMin Side = "min"
	SideMax Side = "max"
)

func ParseSide(s string) (Side, bool) {
	switch Side(strings.ToLower(s)) {
	case SideMin:
		return SideMin, true
	case SideMax:
		return SideMax, true
	}
	return "", false
}

func (s Side) String() string {
	return string(s)
}

// Threshold holds the optional min/max bounds for one rate type. A missing
// bound means no limit on that side; a Threshold with neither bound set is
// meaningless and must be removed rather than stored.
type Threshold struct {
	Min *Rate `yaml:"min,omitempty"`
	Max *Rate `yaml:"max,omitempty"`
}

func (t *Threshold) Bound(side Side) *Rate {
	if t == nil {
		return nil
	}
	if side == SideMin {
		return t.Min
	}
	return t.Max
}

func (t *Threshold) SetBound(side Side, r Rate) {
	if side == SideMin {
		t.Min = &r
	} else {
		t.Max = &r
	}
}

func (t *Threshold) ClearBound(side Side) {
	if side == SideMin {
		t.Min = nil
	} else {
		t.Max = nil
	}
}

func (t *Threshold) Empty() bool {
	return t == nil || (t.Min == nil && t.Max == nil)
}

// Valid reports whether min <= max; thresholds with a single bound are
// always valid.
func (t *Threshold) Valid() bool {
	if t == nil || t.Min == nil || t.Max == nil {
		return true
	}
	return !t.Min.Greater(*t.Max)
}

func (t *Threshold) Clone() *Threshold {
	if t == nil {
		return &Threshold{}
	}
	c := &Threshold{}
	if t.Min != nil {
		m := *t.Min
		c.Min = &m
	}
	if t.Max != nil {
		m := *t.Max
		c.Max = &m
	}
	return c
}

// Currency is one monitored currency. Code uniquely addresses the currency
// in reply commands; Name must match the label the source page uses, or the
// evaluator will never find its row.
type Currency struct {
	Name       string                  `yaml:"name"`
	Code       string                  `yaml:"code"`
	Conditions map[RateType]*Threshold `yaml:"conditions,omitempty"`
}

func (c *Currency) Clone() *Currency {
	clone := &Currency{Name: c.Name, Code: c.Code}
	if c.Conditions != nil {
		clone.Conditions = make(map[RateType]*Threshold, len(c.Conditions))
		for rt, th := range c.Conditions {
			clone.Conditions[rt] = th.Clone()
		}
	}
	return clone
}
