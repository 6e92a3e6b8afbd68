package check

import (
	"fmt"

	qv "github.com/reason-healthcare/qrvalidator"
	"github.com/reason-healthcare/qrvalidator/model"
)

// checkOptionMembership verifies the answer against the item's inline
// answerOption list. Open-choice items accept arbitrary string answers,
// so only their coded answers are held to the list.
func (c *Checker) checkOptionMembership(item *model.Item, ans model.Answer, path string, r *qv.Result) {
	if item.Type == model.ItemTypeOpenChoice && ans.Slot == model.SlotString {
		return
	}
	for _, opt := range item.Options {
		if matchesOption(opt, ans) {
			return
		}
	}
	r.AddError(qv.IssueTypeInvariant,
		fmt.Sprintf("The code %s is not in the set of permitted values", optionDisplay(ans)),
		path)
}

// Exclusive flags combinations of an exclusive option with any other
// answer. Only the first exclusive answer is reported.
func (c *Checker) Exclusive(item *model.Item, answers []model.Answer, itemPath string, r *qv.Result) {
	if len(answers) < 2 {
		return
	}
	for i, ans := range answers {
		for _, opt := range item.Options {
			if !opt.Exclusive || !matchesOption(opt, ans) {
				continue
			}
			r.AddError(qv.IssueTypeInvariant,
				"The answer references an exclusive option and cannot be combined with other answers",
				fmt.Sprintf("%s.answer[%d]", itemPath, i))
			return
		}
	}
}

// matchesOption reports whether the answer selects the given option.
// Coding options match on code, which must be present on both sides;
// an absent system on either side acts as a wildcard.
func matchesOption(opt model.AnswerOption, ans model.Answer) bool {
	switch {
	case opt.Coding != nil:
		coding, ok := ans.Coding()
		if !ok {
			return false
		}
		if coding.Code == "" || opt.Coding.Code == "" || coding.Code != opt.Coding.Code {
			return false
		}
		return coding.System == "" || opt.Coding.System == "" || coding.System == opt.Coding.System
	case opt.String != nil:
		s, ok := ans.Text()
		return ok && s == *opt.String
	case opt.Integer != nil:
		n, ok := ans.Int()
		return ok && n == *opt.Integer
	case opt.Date != nil:
		d, ok := ans.Date()
		return ok && d == *opt.Date
	}
	return false
}

// optionDisplay renders the answer for option membership diagnostics.
func optionDisplay(ans model.Answer) string {
	if coding, ok := ans.Coding(); ok {
		return fmt.Sprintf("%s::%s", coding.System, coding.Code)
	}
	if s, ok := ans.Text(); ok {
		return s
	}
	if n, ok := ans.Int(); ok {
		return fmt.Sprintf("%d", n)
	}
	if d, ok := ans.Date(); ok {
		return d
	}
	return "unknown"
}
