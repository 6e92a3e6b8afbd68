package loader

import (
	"encoding/json"
	"fmt"
	"regexp"

	"github.com/shopspring/decimal"

	"github.com/reason-healthcare/qrvalidator/logger"
	"github.com/reason-healthcare/qrvalidator/model"
)

// Extension URLs carrying item constraints. The questionnaire-* URLs are
// SDC extensions; the rest are FHIR core.
const (
	extMinValue          = "http://hl7.org/fhir/StructureDefinition/minValue"
	extMaxValue          = "http://hl7.org/fhir/StructureDefinition/maxValue"
	extMaxDecimalPlaces  = "http://hl7.org/fhir/StructureDefinition/maxDecimalPlaces"
	extRegex             = "http://hl7.org/fhir/StructureDefinition/regex"
	extMaxSize           = "http://hl7.org/fhir/StructureDefinition/maxSize"
	extMimeType          = "http://hl7.org/fhir/StructureDefinition/mimeType"
	extMinOccurs         = "http://hl7.org/fhir/StructureDefinition/questionnaire-minOccurs"
	extMaxOccurs         = "http://hl7.org/fhir/StructureDefinition/questionnaire-maxOccurs"
	extUnitOption        = "http://hl7.org/fhir/StructureDefinition/questionnaire-unitOption"
	extReferenceResource = "http://hl7.org/fhir/StructureDefinition/questionnaire-referenceResource"
	extOptionExclusive   = "http://hl7.org/fhir/StructureDefinition/questionnaire-optionExclusive"
)

// r4Questionnaire mirrors the JSON shape of an R4 Questionnaire, limited
// to the fields the validator consumes.
type r4Questionnaire struct {
	ResourceType string   `json:"resourceType"`
	URL          string   `json:"url"`
	Version      string   `json:"version"`
	Title        string   `json:"title"`
	Status       string   `json:"status"`
	Item         []r4Item `json:"item"`
}

type r4Item struct {
	LinkID         string           `json:"linkId"`
	Type           string           `json:"type"`
	Text           string           `json:"text"`
	Required       bool             `json:"required"`
	Repeats        bool             `json:"repeats"`
	MaxLength      int              `json:"maxLength"`
	EnableWhen     []r4EnableWhen   `json:"enableWhen"`
	EnableBehavior string           `json:"enableBehavior"`
	AnswerOption   []r4AnswerOption `json:"answerOption"`
	AnswerValueSet string           `json:"answerValueSet"`
	Extension      []r4Extension    `json:"extension"`
	Item           []r4Item         `json:"item"`
}

type r4EnableWhen struct {
	Question        string       `json:"question"`
	Operator        string       `json:"operator"`
	AnswerBoolean   *bool        `json:"answerBoolean"`
	AnswerDecimal   *json.Number `json:"answerDecimal"`
	AnswerInteger   *int64       `json:"answerInteger"`
	AnswerDate      *string      `json:"answerDate"`
	AnswerDateTime  *string      `json:"answerDateTime"`
	AnswerTime      *string      `json:"answerTime"`
	AnswerString    *string      `json:"answerString"`
	AnswerCoding    *r4Coding    `json:"answerCoding"`
	AnswerQuantity  *r4Quantity  `json:"answerQuantity"`
	AnswerReference *r4Reference `json:"answerReference"`
}

type r4AnswerOption struct {
	ValueCoding  *r4Coding     `json:"valueCoding"`
	ValueString  *string       `json:"valueString"`
	ValueInteger *int64        `json:"valueInteger"`
	ValueDate    *string       `json:"valueDate"`
	Extension    []r4Extension `json:"extension"`
}

type r4Extension struct {
	URL           string       `json:"url"`
	ValueBoolean  *bool        `json:"valueBoolean"`
	ValueDecimal  *json.Number `json:"valueDecimal"`
	ValueInteger  *int64       `json:"valueInteger"`
	ValueString   *string      `json:"valueString"`
	ValueCode     *string      `json:"valueCode"`
	ValueDate     *string      `json:"valueDate"`
	ValueDateTime *string      `json:"valueDateTime"`
	ValueCoding   *r4Coding    `json:"valueCoding"`
	ValueQuantity *r4Quantity  `json:"valueQuantity"`
}

type r4Coding struct {
	System  string `json:"system"`
	Code    string `json:"code"`
	Display string `json:"display"`
}

type r4Quantity struct {
	Value  *json.Number `json:"value"`
	Unit   string       `json:"unit"`
	System string       `json:"system"`
	Code   string       `json:"code"`
}

type r4Reference struct {
	Reference string `json:"reference"`
}

// R4Converter builds model.Form values from R4 Questionnaire JSON.
type R4Converter struct{}

// NewR4Converter creates a converter.
func NewR4Converter() *R4Converter {
	return &R4Converter{}
}

// Convert parses an R4 Questionnaire document into the validator's form
// model. Constraint extensions become typed constraints; regex patterns
// are compiled here, once, and invalid patterns are dropped with a
// warning.
func (c *R4Converter) Convert(data []byte) (*model.Form, error) {
	var q r4Questionnaire
	if err := json.Unmarshal(data, &q); err != nil {
		return nil, fmt.Errorf("parse questionnaire: %w", err)
	}
	if q.ResourceType != "Questionnaire" {
		return nil, fmt.Errorf("expected Questionnaire, got %q", q.ResourceType)
	}

	form := &model.Form{
		URL:     q.URL,
		Version: q.Version,
		Title:   q.Title,
		Status:  q.Status,
		Items:   c.convertItems(q.Item),
	}
	return form, nil
}

func (c *R4Converter) convertItems(items []r4Item) []*model.Item {
	if len(items) == 0 {
		return nil
	}
	out := make([]*model.Item, 0, len(items))
	for i := range items {
		out = append(out, c.convertItem(&items[i]))
	}
	return out
}

func (c *R4Converter) convertItem(src *r4Item) *model.Item {
	item := &model.Item{
		LinkID:          src.LinkID,
		Type:            model.ItemType(src.Type),
		Text:            src.Text,
		Required:        src.Required,
		Repeats:         src.Repeats,
		MaxLength:       src.MaxLength,
		OptionsValueSet: src.AnswerValueSet,
		EnableBehavior:  convertBehavior(src.EnableBehavior),
		Items:           c.convertItems(src.Item),
	}

	for i := range src.EnableWhen {
		item.EnableWhen = append(item.EnableWhen, convertEnableWhen(&src.EnableWhen[i]))
	}
	for i := range src.AnswerOption {
		if opt, ok := convertAnswerOption(&src.AnswerOption[i]); ok {
			item.Options = append(item.Options, opt)
		}
	}
	c.applyExtensions(item, src.Extension)

	return item
}

func convertBehavior(s string) model.EnableBehavior {
	if s == string(model.EnableBehaviorAll) {
		return model.EnableBehaviorAll
	}
	return model.EnableBehaviorAny
}

func convertEnableWhen(src *r4EnableWhen) model.EnableWhen {
	ew := model.EnableWhen{
		Question:       src.Question,
		Operator:       model.EnableOperator(src.Operator),
		AnswerBoolean:  src.AnswerBoolean,
		AnswerInteger:  src.AnswerInteger,
		AnswerDate:     src.AnswerDate,
		AnswerDateTime: src.AnswerDateTime,
		AnswerTime:     src.AnswerTime,
		AnswerString:   src.AnswerString,
	}
	if d, ok := toDecimalValue(src.AnswerDecimal); ok {
		ew.AnswerDecimal = &d
	}
	if src.AnswerCoding != nil {
		coding := convertCoding(src.AnswerCoding)
		ew.AnswerCoding = &coding
	}
	if q, ok := convertQuantity(src.AnswerQuantity); ok {
		ew.AnswerQuantity = &q
	}
	if src.AnswerReference != nil && src.AnswerReference.Reference != "" {
		ref := src.AnswerReference.Reference
		ew.AnswerReference = &ref
	}
	return ew
}

func convertAnswerOption(src *r4AnswerOption) (model.AnswerOption, bool) {
	opt := model.AnswerOption{
		String:  src.ValueString,
		Integer: src.ValueInteger,
		Date:    src.ValueDate,
	}
	if src.ValueCoding != nil {
		coding := convertCoding(src.ValueCoding)
		opt.Coding = &coding
	}
	for i := range src.Extension {
		ext := &src.Extension[i]
		if ext.URL == extOptionExclusive && ext.ValueBoolean != nil {
			opt.Exclusive = *ext.ValueBoolean
		}
	}
	populated := opt.Coding != nil || opt.String != nil || opt.Integer != nil || opt.Date != nil
	return opt, populated
}

// applyExtensions folds constraint extensions into the item's typed
// constraint bag. Which field a minValue/maxValue lands in follows the
// populated value[x] of the extension, not the item type; a bound whose
// type cannot apply to the item is simply never consulted.
func (c *R4Converter) applyExtensions(item *model.Item, exts []r4Extension) {
	cons := &item.Constraints

	for i := range exts {
		ext := &exts[i]
		switch ext.URL {
		case extMinValue:
			if d, ok := toDecimalValue(ext.ValueDecimal); ok {
				cons.MinDecimal = &d
			}
			if ext.ValueInteger != nil {
				cons.MinInteger = ext.ValueInteger
			}
			if s := dateValue(ext); s != "" {
				cons.MinDate = s
			}
			if q, ok := convertQuantity(ext.ValueQuantity); ok {
				cons.MinQuantity = &q
			}
		case extMaxValue:
			if d, ok := toDecimalValue(ext.ValueDecimal); ok {
				cons.MaxDecimal = &d
			}
			if ext.ValueInteger != nil {
				cons.MaxInteger = ext.ValueInteger
			}
			if s := dateValue(ext); s != "" {
				cons.MaxDate = s
			}
			if q, ok := convertQuantity(ext.ValueQuantity); ok {
				cons.MaxQuantity = &q
			}
		case extMaxDecimalPlaces:
			if ext.ValueInteger != nil {
				places := int(*ext.ValueInteger)
				cons.MaxDecimalPlaces = &places
			}
		case extRegex:
			if ext.ValueString != nil {
				pattern, err := regexp.Compile(*ext.ValueString)
				if err != nil {
					logger.Warn("item %s: dropping invalid regex %q: %v", item.LinkID, *ext.ValueString, err)
					continue
				}
				cons.Pattern = pattern
			}
		case extMaxSize:
			if d, ok := toDecimalValue(ext.ValueDecimal); ok {
				size := d.IntPart()
				cons.MaxSize = &size
			} else if ext.ValueInteger != nil {
				size := *ext.ValueInteger
				cons.MaxSize = &size
			}
		case extMimeType:
			if ext.ValueCode != nil {
				cons.MimeTypes = append(cons.MimeTypes, *ext.ValueCode)
			}
		case extMinOccurs:
			if ext.ValueInteger != nil {
				n := int(*ext.ValueInteger)
				cons.MinOccurs = &n
			}
		case extMaxOccurs:
			if ext.ValueInteger != nil {
				n := int(*ext.ValueInteger)
				cons.MaxOccurs = &n
			}
		case extUnitOption:
			if ext.ValueCoding != nil {
				cons.UnitOptions = append(cons.UnitOptions, convertCoding(ext.ValueCoding))
			}
		case extReferenceResource:
			if ext.ValueCode != nil {
				cons.ReferenceTypes = append(cons.ReferenceTypes, *ext.ValueCode)
			}
		}
	}
}

func convertCoding(src *r4Coding) model.Coding {
	return model.Coding{
		System:  src.System,
		Code:    src.Code,
		Display: src.Display,
	}
}

func convertQuantity(src *r4Quantity) (model.Quantity, bool) {
	if src == nil {
		return model.Quantity{}, false
	}
	q := model.Quantity{
		Unit:   src.Unit,
		System: src.System,
		Code:   src.Code,
	}
	v, ok := toDecimalValue(src.Value)
	if !ok {
		return model.Quantity{}, false
	}
	q.Value = v
	return q, true
}

// dateValue returns the date or dateTime value of an extension, whichever
// is populated.
func dateValue(ext *r4Extension) string {
	if ext.ValueDate != nil {
		return *ext.ValueDate
	}
	if ext.ValueDateTime != nil {
		return *ext.ValueDateTime
	}
	return ""
}

func toDecimalValue(n *json.Number) (decimal.Decimal, bool) {
	if n == nil {
		return decimal.Decimal{}, false
	}
	d, err := decimal.NewFromString(n.String())
	if err != nil {
		return decimal.Decimal{}, false
	}
	return d, true
}
