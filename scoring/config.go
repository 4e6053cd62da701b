package scoring

import (
	"gsp/models"
	"log"

	"gorm.io/gorm"
)

// LoadRules reads the configured scoring rules, falling back to the defaults
// when the key is absent or the blob does not parse. Scoring never fails on
// missing config.
func LoadRules(db *gorm.DB) Rules {
	var rules Rules
	if err := models.GetConfigValue(db, models.ConfigScoringRules, &rules); err != nil {
		if err != gorm.ErrRecordNotFound {
			log.Printf("Error loading scoring rules, using defaults: %v", err)
		}
		return DefaultRules()
	}
	if rules.RationCard == nil {
		return DefaultRules()
	}
	return rules
}

// LoadThresholds reads the configured status thresholds with per-key
// default fallbacks.
func LoadThresholds(db *gorm.DB) Thresholds {
	thresholds := DefaultThresholds()

	var eligibility int
	if err := models.GetConfigValue(db, models.ConfigEligibilityThreshold, &eligibility); err == nil {
		thresholds.Eligibility = eligibility
	}

	var borderline int
	if err := models.GetConfigValue(db, models.ConfigBorderlineThreshold, &borderline); err == nil {
		thresholds.Borderline = borderline
	}

	return thresholds
}
