package model

import "fmt"

// FormIndex maps linkIds to items for constant-time lookup during
// validation. It is built once per form in a single pre-order pass and is
// safe for concurrent readers afterwards.
type FormIndex struct {
	byLink  map[string]*Item
	ordered []*Item
}

// BuildIndex walks the form tree and indexes every item by linkId.
// A duplicated linkId makes lookups ambiguous, so it fails the build.
func BuildIndex(f *Form) (*FormIndex, error) {
	ix := &FormIndex{byLink: make(map[string]*Item)}
	if err := ix.add(f.Items); err != nil {
		return nil, err
	}
	return ix, nil
}

func (ix *FormIndex) add(items []*Item) error {
	for _, it := range items {
		if _, dup := ix.byLink[it.LinkID]; dup {
			return fmt.Errorf("duplicate linkId %q", it.LinkID)
		}
		ix.byLink[it.LinkID] = it
		ix.ordered = append(ix.ordered, it)
		if err := ix.add(it.Items); err != nil {
			return err
		}
	}
	return nil
}

// Get returns the item with the given linkId.
func (ix *FormIndex) Get(linkID string) (*Item, bool) {
	it, ok := ix.byLink[linkID]
	return it, ok
}

// Items returns all indexed items in document order. The slice is shared;
// callers must not modify it.
func (ix *FormIndex) Items() []*Item {
	return ix.ordered
}

// Len reports the number of indexed items.
func (ix *FormIndex) Len() int {
	return len(ix.byLink)
}
