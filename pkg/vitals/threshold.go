package vitals

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
	"telecare.dev/vitals-alert-service/pkg/common"
	"telecare.dev/vitals-alert-service/pkg/models"
)

// atomicTable holds the current threshold table. Tables are immutable once
// stored; updates swap in a rebuilt copy.
type atomicTable struct {
	mu    sync.RWMutex
	table ThresholdTable
}

func (a *atomicTable) store(t ThresholdTable) {
	a.mu.Lock()
	a.table = t
	a.mu.Unlock()
}

func (a *atomicTable) load() ThresholdTable {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.table
}

// ThresholdTable is the effective per-vital configuration, keyed by vital key.
// It is replaced wholesale on update and never mutated in place, so readers
// need no locking once they hold a reference.
type ThresholdTable map[string]models.ThresholdSpec

func (t ThresholdTable) Keys() []string {
	keys := make([]string, 0, len(t))
	for k := range t {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (t ThresholdTable) Specs() []models.ThresholdSpec {
	return common.Mapper(t.Keys(), func(k string) models.ThresholdSpec {
		return t[k]
	})
}

// BuildThresholdTable folds spec lists into a table; later lists override
// earlier ones per vital key. Invalid specs are rejected as a whole.
func BuildThresholdTable(specLists ...[]models.ThresholdSpec) (ThresholdTable, error) {
	for _, specs := range specLists {
		for i := range specs {
			if err := specs[i].Validate(); err != nil {
				return nil, err
			}
		}
	}

	return common.Reducer(specLists,
		func(table ThresholdTable, specs []models.ThresholdSpec) ThresholdTable {
			for _, spec := range specs {
				table[spec.VitalKey] = spec
			}
			return table
		},
		ThresholdTable{},
	), nil
}

type thresholdFile struct {
	Thresholds []models.ThresholdSpec `yaml:"thresholds"`
}

// LoadThresholdFile reads threshold overrides from a YAML file.
func LoadThresholdFile(path string) ([]models.ThresholdSpec, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read thresholds file: %w", err)
	}

	var f thresholdFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse thresholds file: %w", err)
	}

	for i := range f.Thresholds {
		if err := f.Thresholds[i].Validate(); err != nil {
			return nil, err
		}
	}

	return f.Thresholds, nil
}

// DescribeThreshold renders the bounds of a spec for alert payloads, e.g.
// "normal 60-100 bpm, critical outside 50-120 bpm".
func DescribeThreshold(spec models.ThresholdSpec) string {
	var parts []string
	if spec.NormalMin != nil || spec.NormalMax != nil {
		parts = append(parts, fmt.Sprintf("normal %s %s", describeRange(spec.NormalMin, spec.NormalMax), spec.Unit))
	}
	if spec.CriticalMin != nil || spec.CriticalMax != nil {
		parts = append(parts, fmt.Sprintf("critical outside %s %s", describeRange(spec.CriticalMin, spec.CriticalMax), spec.Unit))
	}
	if len(parts) == 0 {
		return "no bounds configured"
	}
	return strings.Join(parts, ", ")
}

func describeRange(min, max *float64) string {
	switch {
	case min != nil && max != nil:
		return fmt.Sprintf("%g-%g", *min, *max)
	case min != nil:
		return fmt.Sprintf(">=%g", *min)
	case max != nil:
		return fmt.Sprintf("<=%g", *max)
	default:
		return "unbounded"
	}
}

func bound(v float64) *float64 { return &v }

// DefaultThresholds returns the built-in clinical threshold table for adult
// patients. Overridable via the thresholds YAML file or the thresholds API.
func DefaultThresholds() []models.ThresholdSpec {
	return []models.ThresholdSpec{
		{
			VitalKey: "heartRate", DisplayName: "Heart Rate", Unit: "bpm",
			NormalMin: bound(60), NormalMax: bound(100),
			CriticalMin: bound(50), CriticalMax: bound(120),
		},
		{
			VitalKey: "spo2", DisplayName: "Blood Oxygen Saturation", Unit: "%",
			NormalMin: bound(95), NormalMax: bound(100),
			CriticalMin: bound(90),
		},
		{
			VitalKey: "bodyTemp", DisplayName: "Body Temperature", Unit: "C",
			NormalMin: bound(36.1), NormalMax: bound(37.2),
			CriticalMin: bound(35.0), CriticalMax: bound(39.4),
		},
		{
			VitalKey: "bloodSugar", DisplayName: "Blood Sugar", Unit: "mg/dL",
			NormalMin: bound(70), NormalMax: bound(140),
			CriticalMin: bound(54), CriticalMax: bound(250),
		},
		{
			VitalKey: "bloodPressureSystolic", DisplayName: "Systolic Blood Pressure", Unit: "mmHg",
			NormalMin: bound(90), NormalMax: bound(120),
			CriticalMin: bound(80), CriticalMax: bound(180),
		},
		{
			VitalKey: "bloodPressureDiastolic", DisplayName: "Diastolic Blood Pressure", Unit: "mmHg",
			NormalMin: bound(60), NormalMax: bound(80),
			CriticalMin: bound(50), CriticalMax: bound(120),
		},
		{
			VitalKey: "ambientTemp", DisplayName: "Ambient Temperature", Unit: "C",
			NormalMin: bound(18), NormalMax: bound(30),
			CriticalMin: bound(10), CriticalMax: bound(40),
		},
		{
			VitalKey: "accMagnitude", DisplayName: "Acceleration Magnitude", Unit: "g",
			NormalMax:   bound(2.5),
			CriticalMax: bound(4.0),
		},
	}
}
