package engine

import (
	"context"
	"fmt"

	qv "github.com/reason-healthcare/qrvalidator"
	"github.com/reason-healthcare/qrvalidator/check"
	"github.com/reason-healthcare/qrvalidator/enable"
	"github.com/reason-healthcare/qrvalidator/model"
	"github.com/reason-healthcare/qrvalidator/pool"
)

// walker carries the state shared by the answer walk and the required
// pass over a single response.
type walker struct {
	ctx     context.Context
	checker *check.Checker
	index   *model.FormIndex
	enable  *enable.Evaluator
	result  *qv.Result

	path   *pool.PathBuilder
	pooled bool

	rootItems []map[string]any
	metrics   *qv.Metrics
}

func newWalker(ctx context.Context, v *Validator, index *model.FormIndex, responseMap map[string]any, result *qv.Result) *walker {
	rootItems := model.ItemList(responseMap["item"])

	w := &walker{
		ctx:       ctx,
		checker:   v.checker,
		index:     index,
		enable:    enable.NewEvaluator(rootItems),
		result:    result,
		rootItems: rootItems,
		metrics:   v.metrics,
	}

	if v.options.EnablePooling {
		w.path = pool.AcquirePathBuilder()
		w.pooled = true
		w.metrics.RecordPoolAcquire()
	} else {
		w.path = &pool.PathBuilder{}
	}
	w.path.WriteString(v.options.RootLabel)

	return w
}

// close returns the path builder to the pool.
func (w *walker) close() {
	if w.pooled {
		w.path.Release()
		w.metrics.RecordPoolRelease()
	}
	w.path = nil
}

// walkAnswers runs the answer pass over every item in the response.
func (w *walker) walkAnswers() {
	w.walkItems(w.rootItems)
}

func (w *walker) walkItems(items []map[string]any) {
	for i, item := range items {
		mark := w.path.Len()
		w.path.WriteString(".item")
		w.path.AppendIndex(i)
		w.walkItem(item)
		w.path.Truncate(mark)
	}
}

// walkItem checks one response item and its answers. Items whose linkId
// is not in the questionnaire are reported and not descended into.
func (w *walker) walkItem(item map[string]any) {
	itemPath := w.path.String()

	q, ok := w.index.Get(model.LinkID(item))
	if !ok {
		w.result.AddError(qv.IssueTypeStructure,
			fmt.Sprintf("LinkId '%s' not found in questionnaire", model.LinkID(item)), itemPath)
		return
	}

	w.checker.Prohibitions(q, model.HasAnswers(item), itemPath, w.result)

	answers := model.Answers(item)
	w.checker.Cardinality(q, len(answers), itemPath, w.result)
	w.checker.Exclusive(q, answers, itemPath, w.result)

	for k, ans := range answers {
		mark := w.path.Len()
		w.path.WriteString(".answer")
		w.path.AppendIndex(k)
		w.checker.Answer(w.ctx, q, ans, w.path.String(), w.result)
		w.path.Truncate(mark)
	}

	if sub, ok := model.ChildItems(item); ok {
		w.walkItems(sub)
	}
}

// walkRequired runs the required pass over the questionnaire tree,
// matching each form item against the response items at the same level.
// Items whose enableWhen conditions do not hold are skipped along with
// their subtrees.
func (w *walker) walkRequired(formItems []*model.Item) {
	w.requiredPass(formItems, w.rootItems)
}

func (w *walker) requiredPass(formItems []*model.Item, responseItems []map[string]any) {
	for _, q := range formItems {
		if !w.enable.Active(q) {
			continue
		}

		foundIdx := -1
		var found map[string]any
		for i, ri := range responseItems {
			if model.LinkID(ri) == q.LinkID {
				foundIdx = i
				found = ri
				break
			}
		}

		if found == nil {
			if q.Required {
				switch {
				case q.IsGroup() && len(q.Items) > 0:
					w.result.AddError(qv.IssueTypeRequired,
						fmt.Sprintf("No response found for required group '%s'", q.LinkID), w.path.String())
				case !q.IsGroup():
					w.result.AddError(qv.IssueTypeRequired,
						fmt.Sprintf("No response answer found for required item '%s'", q.LinkID), w.path.String())
				}
			}
			continue
		}

		if q.Required {
			if q.IsGroup() && len(q.Items) > 0 {
				if sub, ok := model.ChildItems(found); !ok || len(sub) == 0 {
					w.result.AddError(qv.IssueTypeInvariant,
						"No sub-items found for required group",
						pool.AppendArrayIndex(w.path.String()+".item", foundIdx))
				}
			} else if q.IsQuestion() && len(model.Answers(found)) == 0 {
				w.result.AddError(qv.IssueTypeRequired,
					fmt.Sprintf("No response answer found for required item '%s'", q.LinkID), w.path.String())
			}
		}

		if sub, ok := model.ChildItems(found); ok {
			mark := w.path.Len()
			w.path.WriteString(".item")
			w.path.AppendIndex(foundIdx)
			w.requiredPass(q.Items, sub)
			w.path.Truncate(mark)
		}
	}
}
