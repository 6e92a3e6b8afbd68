package check

import (
	"fmt"
	"strings"

	qv "github.com/reason-healthcare/qrvalidator"
	"github.com/reason-healthcare/qrvalidator/model"
)

// checkDecimal enforces minValue, maxValue, and maxDecimalPlaces on a
// decimal answer. Decimal places are counted on the textual form, so a
// submitted "3.100" has three even though its value only needs one.
func (c *Checker) checkDecimal(item *model.Item, ans model.Answer, path string, r *qv.Result) {
	value, ok := ans.Decimal()
	if !ok {
		return
	}
	if min := item.Constraints.MinDecimal; min != nil && value.Cmp(*min) < 0 {
		r.AddError(qv.IssueTypeValue,
			fmt.Sprintf("The value %s is less than the allowed minimum of %s", value, min),
			path)
	}
	if max := item.Constraints.MaxDecimal; max != nil && value.Cmp(*max) > 0 {
		r.AddError(qv.IssueTypeValue,
			fmt.Sprintf("The value %s is greater than the allowed maximum of %s", value, max),
			path)
	}
	if limit := item.Constraints.MaxDecimalPlaces; limit != nil {
		text, _ := ans.DecimalText()
		if places := decimalPlaces(text); places > *limit {
			r.AddError(qv.IssueTypeValue,
				fmt.Sprintf("The value %s has too many decimal places (limit = %d)", text, *limit),
				path)
		}
	}
}

// checkInteger enforces minValue and maxValue on an integer answer.
func (c *Checker) checkInteger(item *model.Item, ans model.Answer, path string, r *qv.Result) {
	n, ok := ans.Int()
	if !ok {
		return
	}
	if min := item.Constraints.MinInteger; min != nil && n < *min {
		r.AddError(qv.IssueTypeValue,
			fmt.Sprintf("The value %d is less than the allowed minimum of %d", n, *min),
			path)
	}
	if max := item.Constraints.MaxInteger; max != nil && n > *max {
		r.AddError(qv.IssueTypeValue,
			fmt.Sprintf("The value %d is greater than the allowed maximum of %d", n, *max),
			path)
	}
}

// decimalPlaces counts the digits after the decimal point in the
// textual form of a number. Exponent notation counts as zero.
func decimalPlaces(text string) int {
	dot := strings.IndexByte(text, '.')
	if dot < 0 {
		return 0
	}
	frac := text[dot+1:]
	if strings.ContainsAny(frac, "eE") {
		return 0
	}
	return len(frac)
}
