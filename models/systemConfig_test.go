package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupConfigDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&SystemConfig{}))
	return db
}

func TestInitializeDefaultConfigs(t *testing.T) {
	db := setupConfigDB(t)

	require.NoError(t, InitializeDefaultConfigs(db))

	var count int64
	require.NoError(t, db.Model(&SystemConfig{}).Count(&count).Error)
	assert.EqualValues(t, len(defaultConfigs), count)

	var threshold int
	require.NoError(t, GetConfigValue(db, ConfigEligibilityThreshold, &threshold))
	assert.Equal(t, 100, threshold)

	var rate float64
	require.NoError(t, GetConfigValue(db, ConfigAuditSamplingRate, &rate))
	assert.Equal(t, 0.1, rate)
}

func TestInitializeDefaultConfigs_PreservesOverrides(t *testing.T) {
	db := setupConfigDB(t)

	_, err := UpsertConfig(db, ConfigEligibilityThreshold, 120, "tuned", 1)
	require.NoError(t, err)

	// Re-seeding must not clobber an admin's override.
	require.NoError(t, InitializeDefaultConfigs(db))

	var threshold int
	require.NoError(t, GetConfigValue(db, ConfigEligibilityThreshold, &threshold))
	assert.Equal(t, 120, threshold)
}

func TestUpsertConfig_UpdatesInPlace(t *testing.T) {
	db := setupConfigDB(t)

	_, err := UpsertConfig(db, ConfigSubsidyAmount, 250, "revised subsidy", 7)
	require.NoError(t, err)
	updated, err := UpsertConfig(db, ConfigSubsidyAmount, 300, "revised again", 7)
	require.NoError(t, err)
	require.NotNil(t, updated.UpdatedByID)
	assert.EqualValues(t, 7, *updated.UpdatedByID)

	var count int64
	require.NoError(t, db.Model(&SystemConfig{}).Where("key = ?", ConfigSubsidyAmount).Count(&count).Error)
	assert.EqualValues(t, 1, count)

	var amount int
	require.NoError(t, GetConfigValue(db, ConfigSubsidyAmount, &amount))
	assert.Equal(t, 300, amount)
}

func TestGetConfigValue_MissingKey(t *testing.T) {
	db := setupConfigDB(t)

	var out int
	err := GetConfigValue(db, "no-such-key", &out)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
