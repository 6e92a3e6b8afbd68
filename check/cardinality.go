package check

import (
	"fmt"

	qv "github.com/reason-healthcare/qrvalidator"
	"github.com/reason-healthcare/qrvalidator/model"
)

// Cardinality checks the answer count against the item's occurrence
// bounds. The minOccurs/maxOccurs extensions and the single-answer rule
// for non-repeating questions apply independently.
func (c *Checker) Cardinality(item *model.Item, answerCount int, path string, r *qv.Result) {
	if min := item.Constraints.MinOccurs; min != nil && answerCount < *min {
		r.AddError(qv.IssueTypeInvalid,
			fmt.Sprintf("The minimum number of answers is %d but this has %d answers", *min, answerCount),
			path)
	}
	if max := item.Constraints.MaxOccurs; max != nil && answerCount > *max {
		r.AddError(qv.IssueTypeInvalid,
			fmt.Sprintf("The maximum number of answers is %d but this has %d answers", *max, answerCount),
			path)
	}
	if !item.Repeats && item.IsQuestion() && answerCount > 1 {
		r.AddError(qv.IssueTypeInvalid,
			fmt.Sprintf("Only one answer is allowed but found %d answers", answerCount),
			path)
	}
}
