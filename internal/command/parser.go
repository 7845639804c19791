package command

import (
	"strings"

	"github.com/shopspring/decimal"

	"exchange-rate-monitor/internal/domain/model"
)

// Rejection reasons reported back to the sender.
const (
	ReasonUnknownCommand  = "unknown command"
	ReasonUnknownRateType = "unknown rate type"
	ReasonUnknownSide     = "unknown side"
	ReasonInvalidNumber   = "invalid number"
	ReasonWrongArgCount   = "wrong number of arguments"
	ReasonMissingBound    = "missing min/max bound"
)

// Parse splits text into lines and parses each non-blank line independently,
// returning one ParseResult per line in input order. A malformed line never
// aborts the rest of the message.
func Parse(text string) []ParseResult {
	var results []ParseResult
	for _, line := range strings.Split(text, "\n") {
		raw := strings.TrimSpace(line)
		if raw == "" {
			continue
		}
		results = append(results, parseLine(raw))
	}
	return results
}

func parseLine(raw string) ParseResult {
	tokens := strings.Fields(raw)
	switch strings.ToUpper(tokens[0]) {
	case "ADJUST":
		return parseAdjust(raw, tokens[1:])
	case "SET":
		return parseSet(raw, tokens[1:])
	case "REMOVE":
		return parseRemove(raw, tokens[1:])
	default:
		return rejected(raw, ReasonUnknownCommand)
	}
}

// ADJUST <CODE> <RATE_TYPE> (min|max) <NUMBER>
func parseAdjust(raw string, args []string) ParseResult {
	if len(args) != 4 {
		return rejected(raw, ReasonWrongArgCount)
	}
	rt, ok := model.ParseRateType(args[1])
	if !ok {
		return rejected(raw, ReasonUnknownRateType)
	}
	side, ok := model.ParseSide(args[2])
	if !ok {
		return rejected(raw, ReasonUnknownSide)
	}
	value, ok := parseNumber(args[3])
	if !ok {
		return rejected(raw, ReasonInvalidNumber)
	}
	return ParseResult{Raw: raw, Command: Adjust{
		Code:     strings.ToUpper(args[0]),
		RateType: rt,
		Side:     side,
		Value:    value,
	}}
}

// SET <CODE> <RATE_TYPE> [min <NUMBER>] [max <NUMBER>]
func parseSet(raw string, args []string) ParseResult {
	if len(args) < 2 || len(args)%2 != 0 {
		return rejected(raw, ReasonWrongArgCount)
	}
	rt, ok := model.ParseRateType(args[1])
	if !ok {
		return rejected(raw, ReasonUnknownRateType)
	}
	cmd := Set{Code: strings.ToUpper(args[0]), RateType: rt}
	for i := 2; i < len(args); i += 2 {
		side, ok := model.ParseSide(args[i])
		if !ok {
			return rejected(raw, ReasonUnknownSide)
		}
		value, ok := parseNumber(args[i+1])
		if !ok {
			return rejected(raw, ReasonInvalidNumber)
		}
		// A repeated side within one SET keeps the last value.
		if side == model.SideMin {
			cmd.Min = &value
		} else {
			cmd.Max = &value
		}
	}
	if cmd.Min == nil && cmd.Max == nil {
		return rejected(raw, ReasonMissingBound)
	}
	return ParseResult{Raw: raw, Command: cmd}
}

// REMOVE <CODE> <RATE_TYPE> (min|max)
func parseRemove(raw string, args []string) ParseResult {
	if len(args) != 3 {
		return rejected(raw, ReasonWrongArgCount)
	}
	rt, ok := model.ParseRateType(args[1])
	if !ok {
		return rejected(raw, ReasonUnknownRateType)
	}
	side, ok := model.ParseSide(args[2])
	if !ok {
		return rejected(raw, ReasonUnknownSide)
	}
	return ParseResult{Raw: raw, Command: Remove{
		Code:     strings.ToUpper(args[0]),
		RateType: rt,
		Side:     side,
	}}
}

// parseNumber accepts non-negative decimals only.
func parseNumber(tok string) (model.Rate, bool) {
	d, err := decimal.NewFromString(tok)
	if err != nil || d.IsNegative() {
		return model.Rate{}, false
	}
	return model.Rate{Decimal: d}, true
}

func rejected(raw, reason string) ParseResult {
	return ParseResult{Raw: raw, Reason: reason}
}
