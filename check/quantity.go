package check

import (
	"fmt"

	qv "github.com/reason-healthcare/qrvalidator"
	"github.com/reason-healthcare/qrvalidator/model"
)

// checkQuantity validates a quantity answer against the unitOption
// extension and the minValue/maxValue bounds. Bounds need a unit oracle
// and formal unit codes on both sides; without them the bound reports
// an incomparable quantity rather than guessing.
func (c *Checker) checkQuantity(item *model.Item, ans model.Answer, path string, r *qv.Result) {
	q, ok := ans.Quantity()
	if !ok {
		return
	}

	if opts := item.Constraints.UnitOptions; len(opts) > 0 {
		unit := q.UnitCode()
		permitted := false
		for _, opt := range opts {
			if opt.Code == unit {
				permitted = true
				break
			}
		}
		if !permitted {
			r.AddError(qv.IssueTypeCodeInvalid,
				fmt.Sprintf("The unit '%s' is not in the set of permitted units", unit),
				path)
		}
	}

	if c.units == nil || !q.HasValue {
		return
	}
	if min := item.Constraints.MinQuantity; min != nil {
		c.quantityBound(q, min, true, path, r)
	}
	if max := item.Constraints.MaxQuantity; max != nil {
		c.quantityBound(q, max, false, path, r)
	}
}

// quantityBound compares the answer against one bound through the unit
// oracle. Oracle comparison failures skip the bound silently; missing
// or incompatible units report instead of comparing.
func (c *Checker) quantityBound(q model.AnswerQuantity, bound *model.Quantity, lower bool, path string, r *qv.Result) {
	if q.Code == "" || bound.Code == "" {
		r.AddError(qv.IssueTypeInvariant,
			"The quantity cannot be compared because no formal units are specified",
			path)
		return
	}
	if !c.units.Compatible(q.Code, bound.Code) {
		r.AddError(qv.IssueTypeInvariant,
			fmt.Sprintf("The units '%s' and '%s' are not comparable", q.Code, bound.Code),
			path)
		return
	}
	cmp, err := c.units.Compare(q.Value, q.Code, bound.Value, bound.Code)
	if err != nil {
		return
	}
	if lower && cmp < 0 {
		r.AddError(qv.IssueTypeInvariant,
			fmt.Sprintf("The quantity %s %s is less than the allowed minimum of %s %s",
				q.ValueText, unitLabel(q.Unit, q.Code), bound.Value, unitLabel(bound.Unit, bound.Code)),
			path)
	}
	if !lower && cmp > 0 {
		r.AddError(qv.IssueTypeInvariant,
			fmt.Sprintf("The quantity %s %s is greater than the allowed maximum of %s %s",
				q.ValueText, unitLabel(q.Unit, q.Code), bound.Value, unitLabel(bound.Unit, bound.Code)),
			path)
	}
}

// unitLabel picks the human-readable unit when present, falling back to
// the formal code.
func unitLabel(unit, code string) string {
	if unit != "" {
		return unit
	}
	return code
}
