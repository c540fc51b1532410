package config

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// Sources maps a category name (ministry, department, service area) to
// the URLs monitored under it.
type Sources map[string][]string

// LoadSources reads a YAML sources file.
//
//	immigration:
//	  - https://immigration.gov.example/visa
//	  - https://immigration.gov.example/passport
//	motor_traffic:
//	  - https://dmt.gov.example/licence
func LoadSources(path string) (Sources, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read sources file: %w", err)
	}

	var sources Sources
	if err := yaml.Unmarshal(data, &sources); err != nil {
		return nil, fmt.Errorf("failed to parse sources file: %w", err)
	}

	return sources, nil
}

// URLs flattens all categories into a deduplicated list with a stable
// order. A URL listed under two categories is monitored once.
func (s Sources) URLs() []string {
	categories := make([]string, 0, len(s))
	for category := range s {
		categories = append(categories, category)
	}
	sort.Strings(categories)

	var all []string
	for _, category := range categories {
		all = append(all, s[category]...)
	}
	return dedupe(all)
}

func dedupe(urls []string) []string {
	seen := make(map[string]struct{}, len(urls))
	out := make([]string, 0, len(urls))
	for _, u := range urls {
		if u == "" {
			continue
		}
		if _, ok := seen[u]; ok {
			continue
		}
		seen[u] = struct{}{}
		out = append(out, u)
	}
	return out
}
