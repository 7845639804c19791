package command

import (
	"fmt"

	"exchange-rate-monitor/internal/domain/model"
)

// Apply runs commands in order against a deep copy of doc and returns the
// new snapshot plus one Outcome per command. The input document is never
// mutated. Each command sees the effects of the commands before it; a
// rejected command leaves the snapshot exactly as the previous command left
// it.
func Apply(doc *model.Document, cmds []Command) (*model.Document, []Outcome) {
	next := doc.Clone()
	outcomes := make([]Outcome, 0, len(cmds))
	for _, cmd := range cmds {
		outcomes = append(outcomes, applyOne(next, cmd))
	}
	return next, outcomes
}

func applyOne(doc *model.Document, cmd Command) Outcome {
	switch c := cmd.(type) {
	case Adjust:
		return applyAdjust(doc, c)
	case Set:
		return applySet(doc, c)
	case Remove:
		return applyRemove(doc, c)
	default:
		return reject("unsupported command")
	}
}

func applyAdjust(doc *model.Document, c Adjust) Outcome {
	// Validate against a scratch copy first so a rejected command creates
	// no currency or threshold entries.
	var existing *model.Threshold
	if cur := doc.Find(c.Code); cur != nil {
		existing = cur.Conditions[c.RateType]
	}
	candidate := existing.Clone()
	candidate.SetBound(c.Side, c.Value)
	if !candidate.Valid() {
		return reject(fmt.Sprintf("min %s exceeds max %s", candidate.Min, candidate.Max))
	}

	cur := doc.Ensure(c.Code)
	if cur.Conditions == nil {
		cur.Conditions = make(map[model.RateType]*model.Threshold)
	}
	cur.Conditions[c.RateType] = candidate
	return applied(fmt.Sprintf("%s %s %s -> %s", cur.Code, c.RateType, c.Side, c.Value))
}

func applySet(doc *model.Document, c Set) Outcome {
	if c.Min == nil && c.Max == nil {
		return reject(ReasonMissingBound)
	}
	if c.Min != nil && c.Max != nil && c.Min.Greater(*c.Max) {
		return reject(fmt.Sprintf("min %s exceeds max %s", c.Min, c.Max))
	}

	th := &model.Threshold{}
	detail := fmt.Sprintf("%s %s ->", c.Code, c.RateType)
	if c.Min != nil {
		th.SetBound(model.SideMin, *c.Min)
		detail += fmt.Sprintf(" min %s", c.Min)
	}
	if c.Max != nil {
		th.SetBound(model.SideMax, *c.Max)
		detail += fmt.Sprintf(" max %s", c.Max)
	}

	cur := doc.Ensure(c.Code)
	if cur.Conditions == nil {
		cur.Conditions = make(map[model.RateType]*model.Threshold)
	}
	cur.Conditions[c.RateType] = th
	return applied(detail)
}

func applyRemove(doc *model.Document, c Remove) Outcome {
	cur := doc.Find(c.Code)
	if cur == nil {
		return reject("no such condition")
	}
	th := cur.Conditions[c.RateType]
	if th.Bound(c.Side) == nil {
		return reject("no such condition")
	}
	th.ClearBound(c.Side)
	if th.Empty() {
		delete(cur.Conditions, c.RateType)
	}
	return applied(fmt.Sprintf("%s %s %s cleared", cur.Code, c.RateType, c.Side))
}

func applied(detail string) Outcome {
	return Outcome{Applied: true, Detail: detail}
}

func reject(reason string) Outcome {
	return Outcome{Detail: reason}
}
