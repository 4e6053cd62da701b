package models

import (
	"encoding/json"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Policy configuration keys
const (
	ConfigScoringRules         = "scoringRules"
	ConfigEligibilityThreshold = "eligibilityThreshold"
	ConfigBorderlineThreshold  = "borderlineThreshold"
	ConfigAuditSamplingRate    = "auditSamplingRate"
	ConfigSubsidyAmount        = "subsidyAmount"
	ConfigIncomeLimit          = "incomeLimit"
)

// SystemConfig is a key/value store of tunable policy parameters.
// Values are opaque JSON blobs; last writer wins, no versioning.
type SystemConfig struct {
	gorm.Model
	Key         string         `json:"key" gorm:"unique;not null"`
	Value       datatypes.JSON `json:"value" gorm:"not null"`
	Description string         `json:"description" gorm:"default:''"`
	UpdatedByID *uint          `json:"updatedBy"`
}

// GetConfigValue unmarshals the stored blob for key into out. Returns
// gorm.ErrRecordNotFound when the key has never been configured.
func GetConfigValue(db *gorm.DB, key string, out interface{}) error {
	var cfg SystemConfig
	if err := db.Where("key = ?", key).First(&cfg).Error; err != nil {
		return err
	}
	return json.Unmarshal(cfg.Value, out)
}

// UpsertConfig writes a policy value, creating the key if needed.
func UpsertConfig(db *gorm.DB, key string, value interface{}, description string, updatedBy uint) (*SystemConfig, error) {
	raw, err := json.Marshal(value)
	if err != nil {
		return nil, err
	}

	var cfg SystemConfig
	err = db.Where("key = ?", key).First(&cfg).Error
	if err == gorm.ErrRecordNotFound {
		cfg = SystemConfig{Key: key, Value: raw, Description: description, UpdatedByID: &updatedBy}
		if err := db.Create(&cfg).Error; err != nil {
			return nil, err
		}
		return &cfg, nil
	}
	if err != nil {
		return nil, err
	}

	cfg.Value = raw
	if description != "" {
		cfg.Description = description
	}
	cfg.UpdatedByID = &updatedBy
	if err := db.Save(&cfg).Error; err != nil {
		return nil, err
	}
	return &cfg, nil
}

// defaultConfigs mirrors the policy shipped with a fresh installation.
var defaultConfigs = map[string]interface{}{
	ConfigIncomeLimit:          50000, // annual income limit in INR
	ConfigEligibilityThreshold: 100,
	ConfigBorderlineThreshold:  80,
	ConfigAuditSamplingRate:    0.1, // 10% random audit
	ConfigSubsidyAmount:        200, // per cylinder subsidy in INR
	ConfigScoringRules: map[string]interface{}{
		"rationCard": map[string]interface{}{
			"AAY": 70,
			"BPL": 50,
			"APL": 0,
		},
		"incomeCertificate":      50,
		"noITR":                  20,
		"electricityConsumption": 20,
		"familySize": map[string]interface{}{
			"base":       0,
			"perMember":  10,
			"maxMembers": 4,
		},
	},
}

// InitializeDefaultConfigs seeds any missing policy keys. Existing values
// are left untouched so administrator overrides survive restarts.
func InitializeDefaultConfigs(db *gorm.DB) error {
	for key, value := range defaultConfigs {
		var existing SystemConfig
		err := db.Where("key = ?", key).First(&existing).Error
		if err == nil {
			continue
		}
		if err != gorm.ErrRecordNotFound {
			return err
		}

		raw, err := json.Marshal(value)
		if err != nil {
			return err
		}
		cfg := SystemConfig{Key: key, Value: raw, Description: "Default " + key + " configuration"}
		if err := db.Create(&cfg).Error; err != nil {
			return err
		}
	}
	return nil
}
