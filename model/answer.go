package model

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Slot names the value[x] field populated on a response answer.
type Slot string

const (
	SlotNone       Slot = ""
	SlotBoolean    Slot = "valueBoolean"
	SlotDecimal    Slot = "valueDecimal"
	SlotInteger    Slot = "valueInteger"
	SlotDate       Slot = "valueDate"
	SlotDateTime   Slot = "valueDateTime"
	SlotTime       Slot = "valueTime"
	SlotString     Slot = "valueString"
	SlotURI        Slot = "valueUri"
	SlotCoding     Slot = "valueCoding"
	SlotAttachment Slot = "valueAttachment"
	SlotReference  Slot = "valueReference"
	SlotQuantity   Slot = "valueQuantity"
)

// slotOrder fixes the inspection order for slot detection. Detection is by
// key presence, so an explicit JSON null still selects its slot.
var slotOrder = []Slot{
	SlotBoolean,
	SlotDecimal,
	SlotInteger,
	SlotDate,
	SlotDateTime,
	SlotTime,
	SlotString,
	SlotURI,
	SlotCoding,
	SlotAttachment,
	SlotReference,
	SlotQuantity,
}

// DetectSlot returns the first populated value[x] key of an answer element,
// or SlotNone when the answer carries no recognized value.
func DetectSlot(answer map[string]any) Slot {
	for _, s := range slotOrder {
		if _, ok := answer[string(s)]; ok {
			return s
		}
	}
	return SlotNone
}

// ShortName renders the slot for diagnostics, with the value prefix
// stripped ("String", "Coding"). SlotNone renders as "unknown".
func (s Slot) ShortName() string {
	if s == SlotNone {
		return "unknown"
	}
	return strings.TrimPrefix(string(s), "value")
}

// Answer is a typed view over one answer element of a decoded response.
// Accessors read the underlying fields directly, so a type-mismatched
// answer still exposes whatever values it carries.
type Answer struct {
	Slot Slot
	raw  map[string]any
}

// NewAnswer wraps a decoded answer element. A nil map yields an answer
// with no detected slot.
func NewAnswer(raw map[string]any) Answer {
	return Answer{Slot: DetectSlot(raw), raw: raw}
}

// Bool returns the valueBoolean field.
func (a Answer) Bool() (bool, bool) {
	v, ok := a.raw[string(SlotBoolean)].(bool)
	return v, ok
}

// Decimal returns the valueDecimal field as an exact decimal.
func (a Answer) Decimal() (decimal.Decimal, bool) {
	return toDecimal(a.raw[string(SlotDecimal)])
}

// DecimalText returns the textual form of valueDecimal as it appeared in
// the source document, for decimal-places inspection.
func (a Answer) DecimalText() (string, bool) {
	return numberText(a.raw[string(SlotDecimal)])
}

// Int returns the valueInteger field. Numbers written with a fraction part
// do not qualify.
func (a Answer) Int() (int64, bool) {
	return toInt64(a.raw[string(SlotInteger)])
}

// Text returns the valueString field.
func (a Answer) Text() (string, bool) {
	v, ok := a.raw[string(SlotString)].(string)
	return v, ok
}

// URI returns the valueUri field.
func (a Answer) URI() (string, bool) {
	v, ok := a.raw[string(SlotURI)].(string)
	return v, ok
}

// Date returns the valueDate field.
func (a Answer) Date() (string, bool) {
	v, ok := a.raw[string(SlotDate)].(string)
	return v, ok
}

// DateTime returns the valueDateTime field.
func (a Answer) DateTime() (string, bool) {
	v, ok := a.raw[string(SlotDateTime)].(string)
	return v, ok
}

// Time returns the valueTime field.
func (a Answer) Time() (string, bool) {
	v, ok := a.raw[string(SlotTime)].(string)
	return v, ok
}

// Coding returns the valueCoding field. Absent sub-fields come back empty.
func (a Answer) Coding() (Coding, bool) {
	m, ok := a.raw[string(SlotCoding)].(map[string]any)
	if !ok {
		return Coding{}, false
	}
	return Coding{
		System:  stringField(m, "system"),
		Code:    stringField(m, "code"),
		Display: stringField(m, "display"),
	}, true
}

// AnswerQuantity is the decoded valueQuantity of an answer.
type AnswerQuantity struct {
	Value     decimal.Decimal
	HasValue  bool
	ValueText string
	Unit      string
	System    string
	Code      string
}

// UnitCode returns the formal unit code, falling back to the display unit
// when no code is present.
func (q AnswerQuantity) UnitCode() string {
	if q.Code != "" {
		return q.Code
	}
	return q.Unit
}

// Quantity returns the valueQuantity field.
func (a Answer) Quantity() (AnswerQuantity, bool) {
	m, ok := a.raw[string(SlotQuantity)].(map[string]any)
	if !ok {
		return AnswerQuantity{}, false
	}
	q := AnswerQuantity{
		Unit:   stringField(m, "unit"),
		System: stringField(m, "system"),
		Code:   stringField(m, "code"),
	}
	if v, ok := toDecimal(m["value"]); ok {
		q.Value = v
		q.HasValue = true
	}
	if t, ok := numberText(m["value"]); ok {
		q.ValueText = t
	}
	return q, true
}

// AnswerAttachment is the decoded valueAttachment of an answer.
type AnswerAttachment struct {
	ContentType string
	Data        string
	HasData     bool
	Size        int64
	HasSize     bool
}

// Attachment returns the valueAttachment field.
func (a Answer) Attachment() (AnswerAttachment, bool) {
	m, ok := a.raw[string(SlotAttachment)].(map[string]any)
	if !ok {
		return AnswerAttachment{}, false
	}
	att := AnswerAttachment{ContentType: stringField(m, "contentType")}
	if d, ok := m["data"].(string); ok {
		att.Data = d
		att.HasData = true
	}
	if s, ok := toInt64(m["size"]); ok {
		att.Size = s
		att.HasSize = true
	}
	return att, true
}

// Reference returns the literal reference string of the valueReference
// field. A reference element without a reference string reports false.
func (a Answer) Reference() (string, bool) {
	m, ok := a.raw[string(SlotReference)].(map[string]any)
	if !ok {
		return "", false
	}
	v, ok := m["reference"].(string)
	return v, ok
}

// Items returns response items nested directly under the answer.
func (a Answer) Items() []map[string]any {
	return ItemList(a.raw["item"])
}

func stringField(m map[string]any, key string) string {
	v, _ := m[key].(string)
	return v
}

// toDecimal converts a decoded JSON number into an exact decimal. Decoders
// configured with UseNumber yield json.Number; plain decoding yields
// float64.
func toDecimal(v any) (decimal.Decimal, bool) {
	switch n := v.(type) {
	case json.Number:
		d, err := decimal.NewFromString(n.String())
		if err != nil {
			return decimal.Decimal{}, false
		}
		return d, true
	case float64:
		return decimal.NewFromFloat(n), true
	case int:
		return decimal.NewFromInt(int64(n)), true
	case int64:
		return decimal.NewFromInt(n), true
	}
	return decimal.Decimal{}, false
}

// toInt64 converts a decoded JSON number to an integer. Values carrying a
// fraction part, even a zero one in json.Number form, do not convert.
func toInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case json.Number:
		i, err := strconv.ParseInt(n.String(), 10, 64)
		if err != nil {
			return 0, false
		}
		return i, true
	case float64:
		if n != math.Trunc(n) || n > math.MaxInt64 || n < math.MinInt64 {
			return 0, false
		}
		return int64(n), true
	case int:
		return int64(n), true
	case int64:
		return n, true
	}
	return 0, false
}

// numberText renders a decoded JSON number in its source textual form
// where that form is known.
func numberText(v any) (string, bool) {
	switch n := v.(type) {
	case json.Number:
		return n.String(), true
	case float64:
		return strconv.FormatFloat(n, 'f', -1, 64), true
	case int:
		return strconv.Itoa(n), true
	case int64:
		return strconv.FormatInt(n, 10), true
	}
	return "", false
}
