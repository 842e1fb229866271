package rules

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/airpath/airpath/internal/core"
)

const fixtureJSON = `{
  "questions": [
    {
      "question_id": "q1",
      "question": "Is a flight plan required for VFR?",
      "category": "Flight Planning",
      "answers_by_country": {"FR": "Only for border crossings", "DE": "Yes, when crossing borders", "GB": ""}
    },
    {
      "question_id": "q2",
      "question": "What is the VFR transponder code?",
      "category": "Operations",
      "answers_by_country": {"FR": "7000", "GB": "7000"}
    },
    {
      "question_id": "q3",
      "question": "Customs notification lead time?",
      "category": "Border",
      "answers_by_country": {"DE": {"standard": "24h", "weekend": "48h"}}
    }
  ]
}`

func writeRules(t *testing.T, content string) *Document {
	t.Helper()
	path := filepath.Join(t.TempDir(), "rules.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	doc, err := Load(path, zap.NewNop())
	require.NoError(t, err)
	return doc
}

func TestLoadAcceptsBareArray(t *testing.T) {
	doc := writeRules(t, `[{"question":"Q?","answers_by_country":{"FR":"A"}}]`)
	assert.Len(t, doc.Questions, 1)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.json"), zap.NewNop())
	var dataErr *core.DataUnavailableError
	assert.True(t, errors.As(err, &dataErr))
}

func TestForCountry(t *testing.T) {
	doc := writeRules(t, fixtureJSON)

	fr, err := doc.ForCountry("fr")
	require.NoError(t, err)
	require.Len(t, fr, 2)
	assert.Equal(t, "Only for border crossings", fr[0].Answer)

	// GB has a blank answer for q1; only q2 counts.
	gb, err := doc.ForCountry("GB")
	require.NoError(t, err)
	assert.Len(t, gb, 1)

	// Nested answers render as JSON, not silently vanish.
	de, err := doc.ForCountry("DE")
	require.NoError(t, err)
	require.Len(t, de, 2)
	assert.Contains(t, de[1].Answer, "48h")
}

func TestForCountryUnknownIsError(t *testing.T) {
	doc := writeRules(t, fixtureJSON)
	_, err := doc.ForCountry("ZZ")
	var nf *core.NotFoundError
	require.True(t, errors.As(err, &nf))
}

func TestCompare(t *testing.T) {
	doc := writeRules(t, fixtureJSON)

	cmp, err := doc.Compare("FR", "DE")
	require.NoError(t, err)
	require.Len(t, cmp, 3)
	assert.Equal(t, "7000", cmp[1].Answer1)
	assert.Equal(t, "N/A", cmp[1].Answer2)
	assert.Equal(t, "N/A", cmp[2].Answer1)

	_, err = doc.Compare("ZZ", "XX")
	var nf *core.NotFoundError
	assert.True(t, errors.As(err, &nf))
}
