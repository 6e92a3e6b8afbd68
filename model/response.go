package model

// Helpers for walking decoded QuestionnaireResponse trees. Responses stay
// as map[string]any throughout validation; these accessors tolerate any
// malformed shape and report absence instead of panicking.

// ItemList coerces a decoded value into a list of response items. Entries
// that are not JSON objects become nil maps, which downstream accessors
// treat as items with no fields.
func ItemList(v any) []map[string]any {
	arr, ok := v.([]any)
	if !ok {
		return nil
	}
	items := make([]map[string]any, len(arr))
	for i, e := range arr {
		m, _ := e.(map[string]any)
		items[i] = m
	}
	return items
}

// LinkID returns the linkId of a response item, or "" when absent.
func LinkID(item map[string]any) string {
	v, _ := item["linkId"].(string)
	return v
}

// HasAnswers reports whether the item carries an answer element at all,
// even an empty or malformed one.
func HasAnswers(item map[string]any) bool {
	_, ok := item["answer"]
	return ok
}

// Answers returns the item's answers as typed views. A missing or
// non-array answer element yields an empty list.
func Answers(item map[string]any) []Answer {
	arr, ok := item["answer"].([]any)
	if !ok {
		return nil
	}
	answers := make([]Answer, len(arr))
	for i, e := range arr {
		m, _ := e.(map[string]any)
		answers[i] = NewAnswer(m)
	}
	return answers
}

// ChildItems returns the item's nested response items. The second result
// reports whether a nested item array is present, which gates recursion.
func ChildItems(item map[string]any) ([]map[string]any, bool) {
	arr, ok := item["item"].([]any)
	if !ok {
		return nil, false
	}
	return ItemList(arr), true
}
