// Package enable evaluates conditional activation rules against the
// answers present in a response. Activation only gates required-presence
// checking; answers that are present anyway are always validated.
package enable

import (
	"github.com/reason-healthcare/qrvalidator/model"
)

// Evaluator decides whether items are active for one response. It indexes
// the response tree once at construction and is read-only afterwards.
//
// Conditions are evaluated against the response alone, never by resolving
// other items' own activation, so rule cycles between items cannot loop.
type Evaluator struct {
	// first response item per linkId, in pre-order
	targets map[string]map[string]any
}

// NewEvaluator indexes a response tree. For each linkId the first response
// item in pre-order is the comparison target; within an item, items nested
// under answers precede directly nested items.
func NewEvaluator(rootItems []map[string]any) *Evaluator {
	e := &Evaluator{targets: make(map[string]map[string]any)}
	e.index(rootItems)
	return e
}

func (e *Evaluator) index(items []map[string]any) {
	for _, ri := range items {
		if id := model.LinkID(ri); id != "" {
			if _, seen := e.targets[id]; !seen {
				e.targets[id] = ri
			}
		}
		for _, ans := range model.Answers(ri) {
			e.index(ans.Items())
		}
		if children, ok := model.ChildItems(ri); ok {
			e.index(children)
		}
	}
}

// Active reports whether the item's conditions allow it to participate in
// required-presence checks. Items without conditions are always active.
func (e *Evaluator) Active(item *model.Item) bool {
	if len(item.EnableWhen) == 0 {
		return true
	}

	all := item.EnableBehavior == model.EnableBehaviorAll
	for _, cond := range item.EnableWhen {
		holds := e.holds(cond)
		if all && !holds {
			return false
		}
		if !all && holds {
			return true
		}
	}
	return all
}

// holds evaluates one condition. The condition's typed comparison value
// selects which answer slot is read; a condition that cannot read its slot
// from the target answer does not hold, under any operator.
func (e *Evaluator) holds(cond model.EnableWhen) bool {
	answers := model.Answers(e.targets[cond.Question])

	if cond.Operator == model.OpExists {
		expected := true
		if cond.AnswerBoolean != nil {
			expected = *cond.AnswerBoolean
		}
		return (len(answers) > 0) == expected
	}

	if len(answers) == 0 {
		return false
	}
	target := answers[0]

	switch cond.Operator {
	case model.OpEquals:
		eq, ok := equals(cond, target)
		return ok && eq
	case model.OpNotEquals:
		eq, ok := equals(cond, target)
		return ok && !eq
	case model.OpGreater:
		cmp, ok := order(cond, target)
		return ok && cmp > 0
	case model.OpLess:
		cmp, ok := order(cond, target)
		return ok && cmp < 0
	case model.OpGreaterOrEqual:
		if cmp, ok := order(cond, target); ok && cmp > 0 {
			return true
		}
		eq, ok := equals(cond, target)
		return ok && eq
	case model.OpLessOrEqual:
		if cmp, ok := order(cond, target); ok && cmp < 0 {
			return true
		}
		eq, ok := equals(cond, target)
		return ok && eq
	}
	return false
}

// equals compares the condition value with the target answer for
// equality. The second result reports whether the comparison was possible.
func equals(cond model.EnableWhen, ans model.Answer) (bool, bool) {
	switch {
	case cond.AnswerBoolean != nil:
		v, ok := ans.Bool()
		return ok && v == *cond.AnswerBoolean, ok
	case cond.AnswerDecimal != nil:
		v, ok := ans.Decimal()
		return ok && v.Cmp(*cond.AnswerDecimal) == 0, ok
	case cond.AnswerInteger != nil:
		v, ok := ans.Int()
		return ok && v == *cond.AnswerInteger, ok
	case cond.AnswerDate != nil:
		v, ok := ans.Date()
		return ok && v == *cond.AnswerDate, ok
	case cond.AnswerDateTime != nil:
		v, ok := ans.DateTime()
		return ok && v == *cond.AnswerDateTime, ok
	case cond.AnswerTime != nil:
		v, ok := ans.Time()
		return ok && v == *cond.AnswerTime, ok
	case cond.AnswerString != nil:
		v, ok := ans.Text()
		return ok && v == *cond.AnswerString, ok
	case cond.AnswerCoding != nil:
		c, ok := ans.Coding()
		if !ok {
			return false, false
		}
		want := cond.AnswerCoding
		if want.Code == "" || c.Code != want.Code {
			return false, true
		}
		if want.System != "" && c.System != want.System {
			return false, true
		}
		return true, true
	case cond.AnswerQuantity != nil:
		q, ok := ans.Quantity()
		if !ok || !q.HasValue {
			return false, false
		}
		want := cond.AnswerQuantity
		wantCode := want.Code
		if wantCode == "" {
			wantCode = want.Unit
		}
		// Magnitudes are only comparable when unit codes agree; unit
		// conversion is the constraint checkers' business, not ours.
		if q.UnitCode() != wantCode {
			return false, false
		}
		return q.Value.Cmp(want.Value) == 0, true
	case cond.AnswerReference != nil:
		v, ok := ans.Reference()
		return ok && v == *cond.AnswerReference, ok
	}
	return false, false
}

// order compares the condition value with the target answer, returning a
// sign. Booleans, codings and references carry no ordering.
func order(cond model.EnableWhen, ans model.Answer) (int, bool) {
	switch {
	case cond.AnswerDecimal != nil:
		v, ok := ans.Decimal()
		if !ok {
			return 0, false
		}
		return v.Cmp(*cond.AnswerDecimal), true
	case cond.AnswerInteger != nil:
		v, ok := ans.Int()
		if !ok {
			return 0, false
		}
		return compareInt(v, *cond.AnswerInteger), true
	case cond.AnswerDate != nil:
		v, ok := ans.Date()
		if !ok {
			return 0, false
		}
		return compareString(v, *cond.AnswerDate), true
	case cond.AnswerDateTime != nil:
		v, ok := ans.DateTime()
		if !ok {
			return 0, false
		}
		return compareString(v, *cond.AnswerDateTime), true
	case cond.AnswerTime != nil:
		v, ok := ans.Time()
		if !ok {
			return 0, false
		}
		return compareString(v, *cond.AnswerTime), true
	case cond.AnswerString != nil:
		v, ok := ans.Text()
		if !ok {
			return 0, false
		}
		return compareString(v, *cond.AnswerString), true
	case cond.AnswerQuantity != nil:
		q, ok := ans.Quantity()
		if !ok || !q.HasValue {
			return 0, false
		}
		want := cond.AnswerQuantity
		wantCode := want.Code
		if wantCode == "" {
			wantCode = want.Unit
		}
		if q.UnitCode() != wantCode {
			return 0, false
		}
		return q.Value.Cmp(want.Value), true
	}
	return 0, false
}

func compareInt(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func compareString(a, b string) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
