// Package command implements the reply-command subsystem: parsing free-form
// reply text into structured mutation commands and applying them to a
// snapshot of the conditions document.
package command

import "exchange-rate-monitor/internal/domain/model"

// Command is a parsed mutation request. Exactly one of Adjust, Set or
// Remove; dispatch is an exhaustive type switch, never string matching.
type Command interface {
	isCommand()
}

// Adjust sets one bound of one threshold, leaving the other bound and all
// other rate types untouched. Missing currency or threshold entries are
// created.
type Adjust struct {
	Code     string
	RateType model.RateType
	Side     model.Side
	Value    model.Rate
}

// Set replaces the whole threshold for a (currency, rate type) pair with
// exactly the given bounds; a side not given becomes absent, not unchanged.
type Set struct {
	Code     string
	RateType model.RateType
	Min      *model.Rate
	Max      *model.Rate
}

// Remove clears one bound; when the threshold ends up with neither bound the
// rate-type entry is deleted. The currency entry always stays.
type Remove struct {
	Code     string
	RateType model.RateType
	Side     model.Side
}

func (Adjust) isCommand() {}
func (Set) isCommand()    {}
func (Remove) isCommand() {}

// ParseResult is the outcome of parsing one non-blank line: either a valid
// Command or a rejection with the raw line and a reason.
type ParseResult struct {
	Raw     string
	Command Command
	Reason  string
}

func (r ParseResult) Rejected() bool {
	return r.Command == nil
}

// Outcome reports what applying one command did. Detail carries either a
// human-readable description of the change or the rejection reason.
type Outcome struct {
	Applied bool
	Detail  string
}
