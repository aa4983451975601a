package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ledgerPolicyFile mirrors the optional YAML points policy document.
//
//	yearRequirements: [100, 100, 120, 120]
//	defaultProgramYears: 4
//	facultyMaxPoints: 40
type ledgerPolicyFile struct {
	YearRequirements    []int `yaml:"yearRequirements"`
	DefaultProgramYears *int  `yaml:"defaultProgramYears"`
	FacultyMaxPoints    *int  `yaml:"facultyMaxPoints"`
}

// applyPolicyFile overlays the YAML policy on top of env derived ledger settings.
func applyPolicyFile(cfg *LedgerConfig, path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read ledger policy file: %w", err)
	}
	return applyPolicy(cfg, raw)
}

func applyPolicy(cfg *LedgerConfig, raw []byte) error {
	var policy ledgerPolicyFile
	if err := yaml.Unmarshal(raw, &policy); err != nil {
		return fmt.Errorf("parse ledger policy file: %w", err)
	}
	if len(policy.YearRequirements) > LedgerYears {
		return fmt.Errorf("ledger policy lists %d years, at most %d allowed", len(policy.YearRequirements), LedgerYears)
	}
	if len(policy.YearRequirements) > 0 {
		last := 0
		for i := 0; i < LedgerYears; i++ {
			if i < len(policy.YearRequirements) {
				last = policy.YearRequirements[i]
			}
			if last < 0 {
				return fmt.Errorf("ledger policy requirement for year %d is negative", i+1)
			}
			cfg.YearRequirements[i] = last
		}
	}
	if policy.DefaultProgramYears != nil {
		if *policy.DefaultProgramYears < 1 || *policy.DefaultProgramYears > LedgerYears {
			return fmt.Errorf("ledger policy defaultProgramYears must be between 1 and %d", LedgerYears)
		}
		cfg.DefaultProgramYears = *policy.DefaultProgramYears
	}
	if policy.FacultyMaxPoints != nil {
		cfg.FacultyMaxPoints = *policy.FacultyMaxPoints
	}
	return nil
}
