package check

import (
	"context"
	"fmt"

	qv "github.com/reason-healthcare/qrvalidator"
	"github.com/reason-healthcare/qrvalidator/model"
)

// checkValueSetMembership asks the value set oracle about coded
// answers, and about string answers on open-choice items. Oracle
// failures are treated as inconclusive and produce no issue.
func (c *Checker) checkValueSetMembership(ctx context.Context, item *model.Item, ans model.Answer, path string, r *qv.Result) {
	if coding, ok := ans.Coding(); ok {
		member, err := c.valueSets.ContainsCoding(ctx, item.OptionsValueSet, coding.System, coding.Code)
		if err == nil && !member {
			r.AddError(qv.IssueTypeCodeInvalid,
				fmt.Sprintf("The code %s::%s is not a member of the value set '%s'",
					coding.System, coding.Code, item.OptionsValueSet),
				path)
		}
		return
	}
	if item.Type != model.ItemTypeOpenChoice {
		return
	}
	if s, ok := ans.Text(); ok {
		member, err := c.valueSets.ContainsString(ctx, item.OptionsValueSet, s)
		if err == nil && !member {
			r.AddError(qv.IssueTypeInvariant,
				fmt.Sprintf("The value '%s' is not a member of the value set '%s'", s, item.OptionsValueSet),
				path)
		}
	}
}
