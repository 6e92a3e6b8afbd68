package model

import "testing"

func TestItemTypeAcceptsSlot(t *testing.T) {
	tests := []struct {
		name string
		typ  ItemType
		slot Slot
		want bool
	}{
		{"boolean accepts boolean", ItemTypeBoolean, SlotBoolean, true},
		{"boolean rejects string", ItemTypeBoolean, SlotString, false},
		{"decimal accepts decimal", ItemTypeDecimal, SlotDecimal, true},
		{"decimal rejects integer", ItemTypeDecimal, SlotInteger, false},
		{"integer accepts integer", ItemTypeInteger, SlotInteger, true},
		{"date accepts date", ItemTypeDate, SlotDate, true},
		{"date rejects dateTime", ItemTypeDate, SlotDateTime, false},
		{"dateTime accepts dateTime", ItemTypeDateTime, SlotDateTime, true},
		{"time accepts time", ItemTypeTime, SlotTime, true},
		{"string accepts string", ItemTypeString, SlotString, true},
		{"text accepts string", ItemTypeText, SlotString, true},
		{"text rejects uri", ItemTypeText, SlotURI, false},
		{"url accepts uri", ItemTypeURL, SlotURI, true},
		{"url rejects string", ItemTypeURL, SlotString, false},
		{"choice accepts coding", ItemTypeChoice, SlotCoding, true},
		{"choice accepts string", ItemTypeChoice, SlotString, true},
		{"choice accepts integer", ItemTypeChoice, SlotInteger, true},
		{"choice accepts date", ItemTypeChoice, SlotDate, true},
		{"choice accepts time", ItemTypeChoice, SlotTime, true},
		{"choice accepts reference", ItemTypeChoice, SlotReference, true},
		{"choice rejects boolean", ItemTypeChoice, SlotBoolean, false},
		{"choice rejects quantity", ItemTypeChoice, SlotQuantity, false},
		{"open-choice accepts string", ItemTypeOpenChoice, SlotString, true},
		{"open-choice rejects attachment", ItemTypeOpenChoice, SlotAttachment, false},
		{"attachment accepts attachment", ItemTypeAttachment, SlotAttachment, true},
		{"reference accepts reference", ItemTypeReference, SlotReference, true},
		{"quantity accepts quantity", ItemTypeQuantity, SlotQuantity, true},
		{"quantity rejects decimal", ItemTypeQuantity, SlotDecimal, false},
		{"group accepts anything", ItemTypeGroup, SlotString, true},
		{"display accepts anything", ItemTypeDisplay, SlotCoding, true},
		{"unknown type accepts anything", ItemType("custom"), SlotQuantity, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.typ.AcceptsSlot(tt.slot); got != tt.want {
				t.Errorf("AcceptsSlot(%q, %q) = %v, want %v", tt.typ, tt.slot, got, tt.want)
			}
		})
	}
}

func TestItemKindPredicates(t *testing.T) {
	group := &Item{LinkID: "g", Type: ItemTypeGroup}
	display := &Item{LinkID: "d", Type: ItemTypeDisplay}
	question := &Item{LinkID: "q", Type: ItemTypeInteger}

	if !group.IsGroup() || group.IsDisplay() || group.IsQuestion() {
		t.Error("group item misclassified")
	}
	if display.IsGroup() || !display.IsDisplay() || display.IsQuestion() {
		t.Error("display item misclassified")
	}
	if question.IsGroup() || question.IsDisplay() || !question.IsQuestion() {
		t.Error("question item misclassified")
	}
}

func TestAnswerQuantityUnitCode(t *testing.T) {
	tests := []struct {
		name string
		q    AnswerQuantity
		want string
	}{
		{"code preferred", AnswerQuantity{Unit: "kilogram", Code: "kg"}, "kg"},
		{"falls back to unit", AnswerQuantity{Unit: "kilogram"}, "kilogram"},
		{"empty", AnswerQuantity{}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.q.UnitCode(); got != tt.want {
				t.Errorf("UnitCode() = %q, want %q", got, tt.want)
			}
		})
	}
}
