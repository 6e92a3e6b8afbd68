package check

import (
	"fmt"

	qv "github.com/reason-healthcare/qrvalidator"
	"github.com/reason-healthcare/qrvalidator/model"
)

// checkString enforces maxLength and the regex extension on a string
// answer. Length is measured in bytes, matching the wire form.
func (c *Checker) checkString(item *model.Item, ans model.Answer, path string, r *qv.Result) {
	s, ok := ans.Text()
	if !ok {
		return
	}
	if item.MaxLength > 0 && len(s) > item.MaxLength {
		r.AddError(qv.IssueTypeValue,
			fmt.Sprintf("The string length %d exceeds the maximum length of %d", len(s), item.MaxLength),
			path)
	}
	if pattern := item.Constraints.Pattern; pattern != nil && !pattern.MatchString(s) {
		r.AddError(qv.IssueTypeValue,
			fmt.Sprintf("The value '%s' does not match the required pattern", s),
			path)
	}
}
