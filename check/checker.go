// Package check implements the per-item and per-answer checks the
// traversal engine dispatches to: answer typing, cardinality, option
// membership, and the typed constraint family.
//
// Checkers only append issues; they never short-circuit their siblings,
// so one answer can accumulate several findings.
package check

import (
	"context"

	qv "github.com/reason-healthcare/qrvalidator"
	"github.com/reason-healthcare/qrvalidator/model"
	"github.com/reason-healthcare/qrvalidator/service"
)

// Checker runs the item and answer checks. Both oracles are optional; a
// nil oracle disables the checks that depend on it.
type Checker struct {
	valueSets service.ValueSetOracle
	units     service.UnitOracle
}

// New creates a Checker over the given oracles, either of which may be
// nil.
func New(valueSets service.ValueSetOracle, units service.UnitOracle) *Checker {
	return &Checker{valueSets: valueSets, units: units}
}

// Answer runs every check applicable to a single answer: typing first,
// then the constraints scoped to the item's declared type, then inline
// option and external value set membership, then reference checks keyed
// on the populated slot. A type-mismatched answer still gets the checks
// its actual content supports.
func (c *Checker) Answer(ctx context.Context, item *model.Item, ans model.Answer, path string, r *qv.Result) {
	c.typing(item, ans, path, r)

	switch item.Type {
	case model.ItemTypeDecimal:
		c.checkDecimal(item, ans, path, r)
	case model.ItemTypeInteger:
		c.checkInteger(item, ans, path, r)
	case model.ItemTypeString, model.ItemTypeText:
		c.checkString(item, ans, path, r)
	case model.ItemTypeDate, model.ItemTypeDateTime:
		c.checkDate(item, ans, path, r)
	case model.ItemTypeURL:
		c.checkURL(ans, path, r)
	case model.ItemTypeAttachment:
		c.checkAttachment(item, ans, path, r)
	case model.ItemTypeQuantity:
		c.checkQuantity(item, ans, path, r)
	}

	if len(item.Options) > 0 {
		c.checkOptionMembership(item, ans, path, r)
	}
	if item.OptionsValueSet != "" && c.valueSets != nil {
		c.checkValueSetMembership(ctx, item, ans, path, r)
	}
	if _, ok := ans.Reference(); ok {
		c.checkReference(item, ans, path, r)
	}
}
