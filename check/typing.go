package check

import (
	"fmt"

	qv "github.com/reason-healthcare/qrvalidator"
	"github.com/reason-healthcare/qrvalidator/model"
)

// typing verifies the answer's populated value[x] slot against the slots
// the item's type accepts. The message names the item type as declared
// and the offending slot by its value[x] suffix. Unknown item types
// accept anything.
func (c *Checker) typing(item *model.Item, ans model.Answer, path string, r *qv.Result) {
	if item.Type.AcceptsSlot(ans.Slot) {
		return
	}
	r.AddError(qv.IssueTypeInvariant,
		fmt.Sprintf("Answer value must be of the type %s not %s", item.Type, ans.Slot.ShortName()),
		path)
}

// Prohibitions flags answers on items that must not carry any. Group
// items may nest answered children but never answer directly; display
// items never answer at all.
func (c *Checker) Prohibitions(item *model.Item, hasAnswers bool, path string, r *qv.Result) {
	if !hasAnswers {
		return
	}
	switch {
	case item.IsDisplay():
		r.AddError(qv.IssueTypeInvariant, "Items of type 'display' cannot have answers", path)
	case item.IsGroup():
		r.AddError(qv.IssueTypeInvariant, "Items of type 'group' cannot have direct answers", path)
	}
}
