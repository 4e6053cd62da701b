// Package audit implements the random compliance sampling of approved
// applications, distinct from the append-only audit trail.
package audit

import (
	"encoding/json"
	"gsp/models"
	"log"
	"math"
	"math/rand"
	"time"

	"gorm.io/gorm"
)

// SamplingConfig controls the monthly compliance draw. Seed is optional;
// when unset the draw is non-deterministic, which is the default policy.
type SamplingConfig struct {
	Rate float64 `json:"rate"`
	Seed *int64  `json:"seed,omitempty"`
}

// UnmarshalJSON accepts either a bare number (the historical format for the
// auditSamplingRate key) or a {rate, seed} object.
func (s *SamplingConfig) UnmarshalJSON(data []byte) error {
	var rate float64
	if err := json.Unmarshal(data, &rate); err == nil {
		s.Rate = rate
		s.Seed = nil
		return nil
	}

	type alias SamplingConfig
	var obj alias
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	*s = SamplingConfig(obj)
	return nil
}

// DefaultSamplingConfig is the fallback when no auditSamplingRate config
// exists: a 10% unseeded draw.
func DefaultSamplingConfig() SamplingConfig {
	return SamplingConfig{Rate: 0.1}
}

// LoadSamplingConfig reads the configured sampling rate with a default
// fallback on a missing or malformed key.
func LoadSamplingConfig(db *gorm.DB) SamplingConfig {
	var cfg SamplingConfig
	if err := models.GetConfigValue(db, models.ConfigAuditSamplingRate, &cfg); err != nil {
		if err != gorm.ErrRecordNotFound {
			log.Printf("Error loading audit sampling config, using defaults: %v", err)
		}
		return DefaultSamplingConfig()
	}
	return cfg
}

// SelectRandomAudits samples approved applications created in the given
// month for compliance audit and marks each selected one individually.
// Re-running the same window only draws from the remaining not_selected
// pool, so a partially completed batch is safe to resume. triggeredBy is
// the administrator who forced the run; nil for the scheduled sweep.
func SelectRandomAudits(db *gorm.DB, month, year int, cfg SamplingConfig, triggeredBy *uint) ([]models.Application, error) {
	startDate := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.Local)
	endDate := startDate.AddDate(0, 1, 0).Add(-time.Second)

	var eligible []models.Application
	err := db.
		Where("status = ? AND audit_status = ?", models.StatusApproved, models.AuditNotSelected).
		Where("created_at BETWEEN ? AND ?", startDate, endDate).
		Find(&eligible).Error
	if err != nil {
		return nil, err
	}

	sampleSize := int(math.Ceil(float64(len(eligible)) * cfg.Rate))
	if sampleSize > len(eligible) {
		sampleSize = len(eligible)
	}
	if sampleSize <= 0 {
		return []models.Application{}, nil
	}

	rng := newRand(cfg.Seed)
	rng.Shuffle(len(eligible), func(i, j int) {
		eligible[i], eligible[j] = eligible[j], eligible[i]
	})

	selected := make([]models.Application, 0, sampleSize)
	now := time.Now()
	for _, app := range eligible[:sampleSize] {
		app := app
		// Each selection is its own transaction so a crash mid-batch leaves
		// the already processed applications consistent.
		err := db.Transaction(func(tx *gorm.DB) error {
			result := tx.Model(&models.Application{}).
				Where("id = ? AND audit_status = ?", app.ID, models.AuditNotSelected).
				Updates(map[string]interface{}{"audit_status": models.AuditSelected, "audit_date": now})
			if result.Error != nil {
				return result.Error
			}
			if result.RowsAffected == 0 {
				// Another run got here first; skip silently.
				return nil
			}
			if triggeredBy != nil {
				appID := app.ID
				return models.RecordAudit(tx, &appID, *triggeredBy, models.ActionAuditSelected,
					map[string]interface{}{"month": month, "year": year}, "")
			}
			return nil
		})
		if err != nil {
			log.Printf("Error selecting application %d for audit: %v", app.ID, err)
			continue
		}
		app.AuditStatus = models.AuditSelected
		app.AuditDate = &now
		selected = append(selected, app)
	}

	return selected, nil
}

func newRand(seed *int64) *rand.Rand {
	if seed != nil {
		return rand.New(rand.NewSource(*seed))
	}
	return rand.New(rand.NewSource(time.Now().UnixNano()))
}
