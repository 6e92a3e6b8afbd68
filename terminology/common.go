package terminology

// loadCommonCodeSystems loads code systems that questionnaire answers
// commonly draw on.
func (s *InMemoryValueSetService) loadCommonCodeSystems() {
	// Administrative Gender
	s.addCodeSystem("http://hl7.org/fhir/administrative-gender", map[string]string{
		"male":    "Male",
		"female":  "Female",
		"other":   "Other",
		"unknown": "Unknown",
	})

	// Yes/No
	s.addCodeSystem("http://terminology.hl7.org/CodeSystem/v2-0136", map[string]string{
		"Y": "Yes",
		"N": "No",
	})

	// Null Flavor (subset used by questionnaire answers)
	s.addCodeSystem("http://terminology.hl7.org/CodeSystem/v3-NullFlavor", map[string]string{
		"NI":   "NoInformation",
		"UNK":  "unknown",
		"ASKU": "asked but unknown",
		"NASK": "not asked",
		"NAV":  "temporarily unavailable",
		"MSK":  "masked",
		"NA":   "not applicable",
		"OTH":  "other",
	})

	// Questionnaire Item Type
	s.addCodeSystem("http://hl7.org/fhir/item-type", map[string]string{
		"group":       "Group",
		"display":     "Display",
		"boolean":     "Boolean",
		"decimal":     "Decimal",
		"integer":     "Integer",
		"date":        "Date",
		"dateTime":    "Date Time",
		"time":        "Time",
		"string":      "String",
		"text":        "Text",
		"url":         "Url",
		"choice":      "Choice",
		"open-choice": "Open Choice",
		"attachment":  "Attachment",
		"reference":   "Reference",
		"quantity":    "Quantity",
	})

	// QuestionnaireResponse Status
	s.addCodeSystem("http://hl7.org/fhir/questionnaire-answers-status", map[string]string{
		"in-progress":      "In Progress",
		"completed":        "Completed",
		"amended":          "Amended",
		"entered-in-error": "Entered in Error",
		"stopped":          "Stopped",
	})

	// Publication Status
	s.addCodeSystem("http://hl7.org/fhir/publication-status", map[string]string{
		"draft":   "Draft",
		"active":  "Active",
		"retired": "Retired",
		"unknown": "Unknown",
	})

	// Create common ValueSets that reference these code systems
	s.addValueSetFromCodeSystem(
		"http://hl7.org/fhir/ValueSet/administrative-gender",
		"http://hl7.org/fhir/administrative-gender",
	)
	s.addValueSetFromCodeSystem(
		"http://hl7.org/fhir/ValueSet/item-type",
		"http://hl7.org/fhir/item-type",
	)
	s.addValueSetFromCodeSystem(
		"http://hl7.org/fhir/ValueSet/questionnaire-answers-status",
		"http://hl7.org/fhir/questionnaire-answers-status",
	)
	s.addValueSetFromCodeSystem(
		"http://hl7.org/fhir/ValueSet/publication-status",
		"http://hl7.org/fhir/publication-status",
	)

	// yesnodontknow draws from two systems
	s.valueSets["http://hl7.org/fhir/ValueSet/yesnodontknow"] = &valueSetData{
		url: "http://hl7.org/fhir/ValueSet/yesnodontknow",
		codes: map[string]map[string]codeEntry{
			"http://terminology.hl7.org/CodeSystem/v2-0136": {
				"Y": {code: "Y", display: "Yes", system: "http://terminology.hl7.org/CodeSystem/v2-0136"},
				"N": {code: "N", display: "No", system: "http://terminology.hl7.org/CodeSystem/v2-0136"},
			},
			"http://terminology.hl7.org/CodeSystem/v3-NullFlavor": {
				"ASKU": {code: "ASKU", display: "Don't know", system: "http://terminology.hl7.org/CodeSystem/v3-NullFlavor"},
			},
		},
	}
}

// addCodeSystem adds a simple code system to the service.
func (s *InMemoryValueSetService) addCodeSystem(url string, codes map[string]string) {
	csData := &codeSystemData{
		url:   url,
		codes: make(map[string]codeEntry, len(codes)),
	}

	for code, display := range codes {
		csData.codes[code] = codeEntry{
			code:    code,
			display: display,
			system:  url,
		}
	}

	s.codeSystems[url] = csData
}

// addValueSetFromCodeSystem creates a ValueSet that includes all codes from a CodeSystem.
func (s *InMemoryValueSetService) addValueSetFromCodeSystem(vsURL, csURL string) {
	cs, ok := s.codeSystems[csURL]
	if !ok {
		return
	}

	vsData := &valueSetData{
		url:   vsURL,
		codes: make(map[string]map[string]codeEntry),
	}

	vsData.codes[csURL] = make(map[string]codeEntry, len(cs.codes))
	for code, entry := range cs.codes {
		vsData.codes[csURL][code] = entry
	}

	s.valueSets[vsURL] = vsData
}

// AddCustomValueSet adds a custom ValueSet with explicit codes.
func (s *InMemoryValueSetService) AddCustomValueSet(url, system string, codes map[string]string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	vsData := &valueSetData{
		url:   url,
		codes: make(map[string]map[string]codeEntry),
	}

	vsData.codes[system] = make(map[string]codeEntry, len(codes))
	for code, display := range codes {
		vsData.codes[system][code] = codeEntry{
			code:    code,
			display: display,
			system:  system,
		}
	}

	s.valueSets[url] = vsData
}

// AddCustomCodeSystem adds a custom CodeSystem.
func (s *InMemoryValueSetService) AddCustomCodeSystem(url string, codes map[string]string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.addCodeSystem(url, codes)
}
