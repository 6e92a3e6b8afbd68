package check

import (
	"fmt"

	qv "github.com/reason-healthcare/qrvalidator"
	"github.com/reason-healthcare/qrvalidator/model"
)

// checkDate enforces minValue and maxValue on date and dateTime
// answers. ISO 8601 forms order lexicographically, so the bounds
// compare as plain strings.
func (c *Checker) checkDate(item *model.Item, ans model.Answer, path string, r *qv.Result) {
	var value string
	var ok bool
	if item.Type == model.ItemTypeDate {
		value, ok = ans.Date()
	} else {
		value, ok = ans.DateTime()
	}
	if !ok {
		return
	}
	if min := item.Constraints.MinDate; min != "" && value < min {
		r.AddError(qv.IssueTypeValue,
			fmt.Sprintf("The value %s is less than the allowed minimum of %s", value, min),
			path)
	}
	if max := item.Constraints.MaxDate; max != "" && value > max {
		r.AddError(qv.IssueTypeValue,
			fmt.Sprintf("The value %s is greater than the allowed maximum of %s", value, max),
			path)
	}
}
