package corpus

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadTaxonomyYAML reads a category taxonomy of the form
//
//	flour: [all purpose flour, cake flour]
//	fat: [butter]
func LoadTaxonomyYAML(path string) (map[string][]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read taxonomy %s: %w", path, err)
	}
	var taxonomy map[string][]string
	if err := yaml.Unmarshal(data, &taxonomy); err != nil {
		return nil, fmt.Errorf("%w: taxonomy %s: %v", ErrMalformed, path, err)
	}
	if len(taxonomy) == 0 {
		return nil, fmt.Errorf("%w: taxonomy %s is empty", ErrMalformed, path)
	}
	return taxonomy, nil
}
