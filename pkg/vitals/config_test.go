package vitals

import (
	"bytes"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zapcore"

	"telecare.dev/vitals-alert-service/pkg/common"
	"telecare.dev/vitals-alert-service/pkg/models"
	_ "telecare.dev/vitals-alert-service/pkg/testing"
)

func TestUpsertThreshold(t *testing.T) {
	common.SetTestLoggerNop()

	ctrl, vitalsObj, _, _ := GetMockVitalsWithMemorySqliteDialector(t, EngineOpts{})
	defer ctrl.Finish()

	// a synthetic vital key so parallel test runs cannot collide
	vitalKey := uuid.NewString()

	input := &models.ThresholdSpec{
		VitalKey: vitalKey, DisplayName: "Test Vital", Unit: "u",
		NormalMin: bound(10), NormalMax: bound(20),
		CriticalMin: bound(5), CriticalMax: bound(25),
	}

	err := vitalsObj.Threshold.UpsertThreshold(input)
	assert.NoError(t, err)

	// persisted
	var saved models.ThresholdSpec
	err = vitalsObj.Db.Conn.Where("vital_key = ?", vitalKey).First(&saved).Error
	assert.NoError(t, err)
	assert.Equal(t, 10.0, *saved.NormalMin)

	// visible in the effective table immediately
	table := vitalsObj.Threshold.GetThresholds()
	assert.Equal(t, 20.0, *table[vitalKey].NormalMax)

	// update in place
	updated := &models.ThresholdSpec{
		VitalKey: vitalKey, DisplayName: "Test Vital", Unit: "u",
		NormalMin: bound(12), NormalMax: bound(22),
	}
	err = vitalsObj.Threshold.UpsertThreshold(updated)
	assert.NoError(t, err)

	err = vitalsObj.Db.Conn.Where("vital_key = ?", vitalKey).First(&saved).Error
	assert.NoError(t, err)
	assert.Equal(t, 12.0, *saved.NormalMin)
	assert.Equal(t, 22.0, *vitalsObj.Threshold.GetThresholds()[vitalKey].NormalMax)
}

func TestUpsertThreshold_RejectsInvalid(t *testing.T) {
	common.SetTestLoggerNop()

	ctrl, vitalsObj, _, _ := GetMockVitalsWithMemorySqliteDialector(t, EngineOpts{})
	defer ctrl.Finish()

	before := len(vitalsObj.Threshold.GetThresholds())

	err := vitalsObj.Threshold.UpsertThreshold(&models.ThresholdSpec{
		VitalKey: uuid.NewString(), Unit: "u",
		NormalMin: bound(20), NormalMax: bound(10),
	})
	assert.Error(t, err)
	assert.Len(t, vitalsObj.Threshold.GetThresholds(), before)
}

func TestUpsertThreshold_WithLog(t *testing.T) {
	var buf = &bytes.Buffer{}
	common.SetTestCaptureLogger(buf, zapcore.InfoLevel)

	ctrl, vitalsObj, _, _ := GetMockVitalsWithMemorySqliteDialector(t, EngineOpts{})
	defer ctrl.Finish()

	vitalKey := uuid.NewString()

	err := vitalsObj.Threshold.UpsertThreshold(&models.ThresholdSpec{
		VitalKey: vitalKey, DisplayName: "Test Vital", Unit: "u",
		NormalMin: bound(10), NormalMax: bound(20),
	})
	assert.NoError(t, err)

	logs := ParseLogs(buf)

	{
		found := false
		for _, log := range logs {
			lobj := log.(map[string]any)
			if lobj["category"] == "threshold" &&
				lobj["logger"] == "vitals_core" &&
				lobj["msg"] == "Received threshold for vital" &&
				lobj["threshold"].(map[string]any)["vital_key"] == vitalKey {
				found = true
			}
		}
		assert.True(t, found, "log not found")
	}

	{
		found := false
		for _, log := range logs {
			lobj := log.(map[string]any)
			if lobj["category"] == "threshold" &&
				lobj["logger"] == "vitals_core" &&
				lobj["msg"] == "Upserted threshold for vital" &&
				lobj["threshold"].(map[string]any)["vital_key"] == vitalKey {
				found = true
			}
		}
		assert.True(t, found, "log not found")
	}
}
