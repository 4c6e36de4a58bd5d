package eligibility

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadDefaults reads a partial policy from a YAML file and overlays it on
// DefaultPolicy. An empty path or a missing file yields DefaultPolicy.
//
// Example file:
//
//	min_passport_validity_months: 3
//	prohibited_nationalities: [XXA]
//	visa_type_rules:
//	  student:
//	    min_age: 16
//	    max_stay_days: 365
func LoadDefaults(path string) (Policy, error) {
	if path == "" {
		return DefaultPolicy(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return DefaultPolicy(), nil
		}
		return Policy{}, fmt.Errorf("read policy file: %w", err)
	}

	var in PolicyInput
	if err := yaml.Unmarshal(data, &in); err != nil {
		return Policy{}, fmt.Errorf("parse policy file: %w", err)
	}
	if err := in.Validate(); err != nil {
		return Policy{}, fmt.Errorf("invalid policy file: %w", err)
	}

	return Sanitize(&in, DefaultPolicy()), nil
}
