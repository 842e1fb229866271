package tools

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/airpath/airpath/internal/core"
)

func (d *Dispatcher) rulesForCountry(ctx context.Context, args Args) (string, error) {
	doc, err := d.rulesDoc()
	if err != nil {
		return "", err
	}
	country, ok := args.String("country", "country_code", "code")
	if !ok {
		return "", &core.ArgumentError{Tool: "list_rules_for_country", Param: "country"}
	}

	found, err := doc.ForCountry(country)
	if err != nil {
		return "", err
	}
	b, err := json.Marshal(map[string]any{
		"country": strings.ToUpper(country),
		"count":   len(found),
		"rules":   found,
	})
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (d *Dispatcher) compareRules(ctx context.Context, args Args) (string, error) {
	doc, err := d.rulesDoc()
	if err != nil {
		return "", err
	}
	c1, ok := args.String("country1", "country_1", "first")
	if !ok {
		return "", &core.ArgumentError{Tool: "compare_rules_between_countries", Param: "country1"}
	}
	c2, ok := args.String("country2", "country_2", "second")
	if !ok {
		return "", &core.ArgumentError{Tool: "compare_rules_between_countries", Param: "country2"}
	}

	cmp, err := doc.Compare(c1, c2)
	if err != nil {
		return "", err
	}
	b, err := json.Marshal(map[string]any{
		"country_1":   strings.ToUpper(c1),
		"country_2":   strings.ToUpper(c2),
		"count":       len(cmp),
		"comparisons": cmp,
	})
	if err != nil {
		return "", err
	}
	return string(b), nil
}
