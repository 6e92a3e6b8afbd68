// Package model defines the in-memory questionnaire and answer model the
// validator operates on. Forms are strongly typed and immutable once built;
// responses stay dynamic (JSON-shaped) and are viewed through the Answer
// type.
package model

import (
	"regexp"

	"github.com/shopspring/decimal"
)

// ItemType identifies the kind of a questionnaire item.
// Maps to Questionnaire.item.type in FHIR.
type ItemType string

const (
	ItemTypeGroup      ItemType = "group"
	ItemTypeDisplay    ItemType = "display"
	ItemTypeBoolean    ItemType = "boolean"
	ItemTypeDecimal    ItemType = "decimal"
	ItemTypeInteger    ItemType = "integer"
	ItemTypeDate       ItemType = "date"
	ItemTypeDateTime   ItemType = "dateTime"
	ItemTypeTime       ItemType = "time"
	ItemTypeString     ItemType = "string"
	ItemTypeText       ItemType = "text"
	ItemTypeURL        ItemType = "url"
	ItemTypeChoice     ItemType = "choice"
	ItemTypeOpenChoice ItemType = "open-choice"
	ItemTypeAttachment ItemType = "attachment"
	ItemTypeReference  ItemType = "reference"
	ItemTypeQuantity   ItemType = "quantity"
)

// AcceptsSlot reports whether an answer populating the given slot is type
// correct for items of this type. Group, display and unrecognized types
// carry no slot discipline; their structural rules are enforced elsewhere.
func (t ItemType) AcceptsSlot(s Slot) bool {
	switch t {
	case ItemTypeBoolean:
		return s == SlotBoolean
	case ItemTypeDecimal:
		return s == SlotDecimal
	case ItemTypeInteger:
		return s == SlotInteger
	case ItemTypeDate:
		return s == SlotDate
	case ItemTypeDateTime:
		return s == SlotDateTime
	case ItemTypeTime:
		return s == SlotTime
	case ItemTypeString, ItemTypeText:
		return s == SlotString
	case ItemTypeURL:
		return s == SlotURI
	case ItemTypeChoice, ItemTypeOpenChoice:
		switch s {
		case SlotCoding, SlotString, SlotInteger, SlotDate, SlotTime, SlotReference:
			return true
		}
		return false
	case ItemTypeAttachment:
		return s == SlotAttachment
	case ItemTypeReference:
		return s == SlotReference
	case ItemTypeQuantity:
		return s == SlotQuantity
	default:
		return true
	}
}

// Form is a parsed questionnaire: an identified, versioned document with an
// ordered tree of items.
type Form struct {
	URL     string
	Version string
	Title   string
	Status  string
	Items   []*Item
}

// Item is one node of the questionnaire tree.
type Item struct {
	LinkID   string
	Type     ItemType
	Text     string
	Required bool
	Repeats  bool

	// MaxLength bounds string answers by byte count. Zero means unset.
	MaxLength int

	// Options enumerates permitted answers inline.
	Options []AnswerOption

	// OptionsValueSet is the canonical URL of an external value set
	// constraining coded answers, resolved through the terminology oracle.
	OptionsValueSet string

	EnableWhen     []EnableWhen
	EnableBehavior EnableBehavior

	Constraints Constraints

	Items []*Item
}

// IsGroup reports whether the item is a group.
func (i *Item) IsGroup() bool { return i.Type == ItemTypeGroup }

// IsDisplay reports whether the item is display-only.
func (i *Item) IsDisplay() bool { return i.Type == ItemTypeDisplay }

// IsQuestion reports whether the item expects answers.
func (i *Item) IsQuestion() bool {
	return i.Type != ItemTypeGroup && i.Type != ItemTypeDisplay
}

// Coding is a (system, code, display) triple denoting a concept from a
// named code system.
type Coding struct {
	System  string
	Code    string
	Display string
}

// Quantity is a measured amount with a coded unit, used for quantity
// bounds and enableWhen comparison values.
type Quantity struct {
	Value  decimal.Decimal
	Unit   string
	System string
	Code   string
}

// AnswerOption is one inline permitted answer. Exactly one value field is
// populated.
type AnswerOption struct {
	Coding  *Coding
	String  *string
	Integer *int64
	Date    *string

	// Exclusive marks an option that cannot be combined with other answers.
	Exclusive bool
}

// EnableBehavior selects how multiple enableWhen conditions combine.
type EnableBehavior string

const (
	// EnableBehaviorAny activates the item when any condition holds.
	EnableBehaviorAny EnableBehavior = "any"
	// EnableBehaviorAll activates the item only when every condition holds.
	EnableBehaviorAll EnableBehavior = "all"
)

// EnableOperator is the comparison operator of an enableWhen condition.
type EnableOperator string

const (
	OpExists         EnableOperator = "exists"
	OpEquals         EnableOperator = "="
	OpNotEquals      EnableOperator = "!="
	OpGreater        EnableOperator = ">"
	OpLess           EnableOperator = "<"
	OpGreaterOrEqual EnableOperator = ">="
	OpLessOrEqual    EnableOperator = "<="
)

// EnableWhen is one activation condition referencing another item by
// linkId. Exactly one Answer* field is populated; its type selects which
// answer slot is read during evaluation.
type EnableWhen struct {
	Question string
	Operator EnableOperator

	AnswerBoolean   *bool
	AnswerDecimal   *decimal.Decimal
	AnswerInteger   *int64
	AnswerDate      *string
	AnswerDateTime  *string
	AnswerTime      *string
	AnswerString    *string
	AnswerCoding    *Coding
	AnswerQuantity  *Quantity
	AnswerReference *string
}

// Constraints is the typed bag of modifiers attached to an item. All
// fields are optional; nil or zero means unset. Bounds are inclusive.
type Constraints struct {
	MinDecimal *decimal.Decimal
	MaxDecimal *decimal.Decimal

	MinInteger *int64
	MaxInteger *int64

	// MinDate and MaxDate hold canonical ISO-8601 lexical forms and apply
	// to date and dateTime answers. Empty means unset.
	MinDate string
	MaxDate string

	MinQuantity *Quantity
	MaxQuantity *Quantity

	MaxDecimalPlaces *int

	// Pattern is compiled once when the form is built.
	Pattern *regexp.Regexp

	MaxSize   *int64
	MimeTypes []string

	UnitOptions []Coding

	ReferenceTypes []string

	MinOccurs *int
	MaxOccurs *int
}
