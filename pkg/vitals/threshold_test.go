package vitals

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"telecare.dev/vitals-alert-service/pkg/models"
)

func TestDefaultThresholds_AllValid(t *testing.T) {
	for _, spec := range DefaultThresholds() {
		assert.NoError(t, spec.Validate(), "spec %s", spec.VitalKey)
	}
}

func TestBuildThresholdTable_OverridePrecedence(t *testing.T) {
	table, err := BuildThresholdTable(
		DefaultThresholds(),
		[]models.ThresholdSpec{
			{VitalKey: "heartRate", DisplayName: "Heart Rate", Unit: "bpm",
				NormalMin: bound(55), NormalMax: bound(105)},
		},
	)
	require.NoError(t, err)

	// override replaces the built-in heartRate spec wholesale
	assert.Equal(t, 55.0, *table["heartRate"].NormalMin)
	assert.Nil(t, table["heartRate"].CriticalMin)

	// untouched vitals keep their defaults
	assert.Equal(t, 95.0, *table["spo2"].NormalMin)
	assert.Len(t, table.Keys(), len(DefaultThresholds()))
}

func TestBuildThresholdTable_RejectsOutOfOrderBounds(t *testing.T) {
	_, err := BuildThresholdTable([]models.ThresholdSpec{
		{VitalKey: "heartRate", Unit: "bpm",
			NormalMin: bound(100), NormalMax: bound(60)},
	})
	assert.Error(t, err)

	_, err = BuildThresholdTable([]models.ThresholdSpec{
		{VitalKey: "heartRate", Unit: "bpm",
			CriticalMin: bound(70), NormalMin: bound(60)},
	})
	assert.Error(t, err)

	_, err = BuildThresholdTable([]models.ThresholdSpec{
		{Unit: "bpm", NormalMin: bound(60)},
	})
	assert.Error(t, err, "missing vital_key")
}

func TestLoadThresholdFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "thresholds.yaml")

	content := `thresholds:
  - vital_key: heartRate
    display_name: Heart Rate
    unit: bpm
    normal_min: 55
    normal_max: 105
    critical_min: 45
    critical_max: 130
  - vital_key: roomHumidity
    display_name: Room Humidity
    unit: "%"
    normal_min: 30
    normal_max: 60
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	specs, err := LoadThresholdFile(path)
	require.NoError(t, err)
	require.Len(t, specs, 2)

	assert.Equal(t, "heartRate", specs[0].VitalKey)
	assert.Equal(t, 55.0, *specs[0].NormalMin)
	assert.Equal(t, 130.0, *specs[0].CriticalMax)
	assert.Equal(t, "roomHumidity", specs[1].VitalKey)
	assert.Nil(t, specs[1].CriticalMin)
}

func TestLoadThresholdFile_Errors(t *testing.T) {
	_, err := LoadThresholdFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	badPath := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(badPath, []byte("thresholds: {not a list}"), 0o644))
	_, err = LoadThresholdFile(badPath)
	assert.Error(t, err)

	invalidPath := filepath.Join(t.TempDir(), "invalid.yaml")
	invalid := `thresholds:
  - vital_key: heartRate
    unit: bpm
    normal_min: 100
    normal_max: 60
`
	require.NoError(t, os.WriteFile(invalidPath, []byte(invalid), 0o644))
	_, err = LoadThresholdFile(invalidPath)
	assert.Error(t, err)
}

func TestDescribeThreshold(t *testing.T) {
	full := models.ThresholdSpec{
		VitalKey: "heartRate", Unit: "bpm",
		NormalMin: bound(60), NormalMax: bound(100),
		CriticalMin: bound(50), CriticalMax: bound(120),
	}
	assert.Equal(t, "normal 60-100 bpm, critical outside 50-120 bpm", DescribeThreshold(full))

	oneSided := models.ThresholdSpec{
		VitalKey: "spo2", Unit: "%",
		NormalMin: bound(95), CriticalMin: bound(90),
	}
	assert.Equal(t, "normal >=95 %, critical outside >=90 %", DescribeThreshold(oneSided))

	empty := models.ThresholdSpec{VitalKey: "custom", Unit: "u"}
	assert.Equal(t, "no bounds configured", DescribeThreshold(empty))
}
