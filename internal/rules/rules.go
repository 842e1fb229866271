// Package rules loads the bundled per-country regulations document and
// answers list/compare queries over it. The document is an ordered list of
// questions, each with per-country answers; answers may be plain text or a
// nested structure.
package rules

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/airpath/airpath/internal/core"
)

// Question is one entry of the rules document.
type Question struct {
	ID       string                     `json:"question_id,omitempty"`
	Question string                     `json:"question"`
	Category string                     `json:"category,omitempty"`
	Answers  map[string]json.RawMessage `json:"answers_by_country"`
}

// Answer returns the country's answer rendered as display text, and whether
// a non-blank answer exists. Nested structures render as compact JSON.
func (q Question) Answer(country string) (string, bool) {
	raw, ok := q.Answers[strings.ToUpper(country)]
	if !ok {
		// Documents are not consistent about key casing.
		for c, v := range q.Answers {
			if strings.EqualFold(c, country) {
				raw, ok = v, true
				break
			}
		}
	}
	if !ok || len(raw) == 0 {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if strings.TrimSpace(s) == "" {
			return "", false
		}
		return s, true
	}
	return string(raw), true
}

// Document is the loaded, indexed rules file.
type Document struct {
	Questions []Question
}

// Load reads the rules document. Both a bare array and a wrapper object with
// a "questions" key are accepted. A missing or unreadable file yields a
// DataUnavailableError; tools recover it per-call.
func Load(path string, log *zap.Logger) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &core.DataUnavailableError{Store: path, Cause: err}
	}

	var qs []Question
	if err := json.Unmarshal(data, &qs); err != nil {
		var wrapper struct {
			Questions []Question `json:"questions"`
		}
		if werr := json.Unmarshal(data, &wrapper); werr != nil {
			return nil, &core.DataUnavailableError{Store: path, Cause: fmt.Errorf("parse rules: %w", err)}
		}
		qs = wrapper.Questions
	}

	log.Debug("rules document loaded", zap.String("path", path), zap.Int("questions", len(qs)))
	return &Document{Questions: qs}, nil
}

// CountryRule pairs a question with one country's answer.
type CountryRule struct {
	Question string `json:"question"`
	Category string `json:"category,omitempty"`
	Answer   string `json:"answer"`
}

// ForCountry returns every question with a non-blank answer for the country,
// in document order. Returns a NotFoundError when the country has none.
func (d *Document) ForCountry(country string) ([]CountryRule, error) {
	var out []CountryRule
	for _, q := range d.Questions {
		if ans, ok := q.Answer(country); ok {
			out = append(out, CountryRule{Question: q.Question, Category: q.Category, Answer: ans})
		}
	}
	if len(out) == 0 {
		return nil, &core.NotFoundError{Kind: "country", Ref: strings.ToUpper(country)}
	}
	return out, nil
}

// Comparison pairs two countries' answers for one question; a side with no
// answer reads "N/A".
type Comparison struct {
	Question string `json:"question"`
	Category string `json:"category,omitempty"`
	Answer1  string `json:"answer_1"`
	Answer2  string `json:"answer_2"`
}

// Compare returns every question where at least one of the two countries has
// an answer. Returns a NotFoundError when neither country appears at all.
func (d *Document) Compare(c1, c2 string) ([]Comparison, error) {
	var out []Comparison
	for _, q := range d.Questions {
		a1, ok1 := q.Answer(c1)
		a2, ok2 := q.Answer(c2)
		if !ok1 && !ok2 {
			continue
		}
		if !ok1 {
			a1 = "N/A"
		}
		if !ok2 {
			a2 = "N/A"
		}
		out = append(out, Comparison{Question: q.Question, Category: q.Category, Answer1: a1, Answer2: a2})
	}
	if len(out) == 0 {
		return nil, &core.NotFoundError{Kind: "country", Ref: strings.ToUpper(c1) + "," + strings.ToUpper(c2)}
	}
	return out, nil
}
