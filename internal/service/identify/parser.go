package identify

import (
	"encoding/json"
	"errors"
	"plantidentifier/internal/model"
	"regexp"
	"strings"
)

var errMissingFields = errors.New("response does not contain name and description fields")

var (
	namePattern        = regexp.MustCompile(`(?i)name["']?\s*:\s*["']?([^"'\n]+)`)
	descriptionPattern = regexp.MustCompile(`(?i)description["']?\s*:\s*["']?([^"'\n]+)`)
)

// Parse turns raw model output into a result. Strict JSON decoding is tried
// first; if it fails for any reason the lenient key:value extraction runs.
// When neither recovers both fields the returned *Error carries the raw text.
func Parse(raw string) (model.IdentificationResult, error) {
	if result, err := ParseStrict(raw); err == nil {
		return result, nil
	}
	if result, ok := ParseLenient(raw); ok {
		return result, nil
	}
	return model.IdentificationResult{}, &Error{Kind: KindMalformedResponse, Raw: raw}
}

// ParseStrict decodes raw as a JSON object with non-empty name and description.
func ParseStrict(raw string) (model.IdentificationResult, error) {
	var result model.IdentificationResult
	if err := json.Unmarshal([]byte(raw), &result); err != nil {
		return model.IdentificationResult{}, err
	}
	if !result.Valid() {
		return model.IdentificationResult{}, errMissingFields
	}
	return result, nil
}

// ParseLenient searches raw independently for a name and a description value.
// It only succeeds when both are found.
func ParseLenient(raw string) (model.IdentificationResult, bool) {
	name, ok := findValue(namePattern, raw)
	if !ok {
		return model.IdentificationResult{}, false
	}
	description, ok := findValue(descriptionPattern, raw)
	if !ok {
		return model.IdentificationResult{}, false
	}
	return model.IdentificationResult{Name: name, Description: description}, true
}

// findValue returns the first non-empty value captured by pattern, with
// surrounding whitespace and quotes removed.
func findValue(pattern *regexp.Regexp, raw string) (string, bool) {
	for _, match := range pattern.FindAllStringSubmatch(raw, -1) {
		value := strings.TrimSpace(strings.Trim(strings.TrimSpace(match[1]), `"'`))
		if value != "" {
			return value, true
		}
	}
	return "", false
}
