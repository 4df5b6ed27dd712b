package models

import (
	"fmt"
	"time"
)

type VitalStatus string

const (
	StatusNormal   VitalStatus = "normal"
	StatusWarning  VitalStatus = "warning"
	StatusCritical VitalStatus = "critical"
	StatusUnknown  VitalStatus = "unknown"
)

// FallVitalKey is the sentinel vital key used on alert events produced by the
// fall-detection channel. It never appears in the threshold table.
const FallVitalKey = "fall"

// ThresholdSpec holds the clinical bounds for one vital. Any bound may be nil,
// meaning unbounded on that side. Values outside the critical bounds classify
// as critical, outside the normal bounds as warning; the bounds themselves are
// on the normal side.
type ThresholdSpec struct {
	VitalKey    string   `gorm:"primaryKey" json:"vital_key" yaml:"vital_key"`
	DisplayName string   `json:"display_name" yaml:"display_name"`
	Unit        string   `json:"unit" yaml:"unit"`
	NormalMin   *float64 `json:"normal_min" yaml:"normal_min"`
	NormalMax   *float64 `json:"normal_max" yaml:"normal_max"`
	CriticalMin *float64 `json:"critical_min" yaml:"critical_min"`
	CriticalMax *float64 `json:"critical_max" yaml:"critical_max"`
}

// Validate enforces criticalMin <= normalMin <= normalMax <= criticalMax for
// whichever bounds are present.
func (s *ThresholdSpec) Validate() error {
	if s.VitalKey == "" {
		return fmt.Errorf("threshold spec missing vital_key")
	}

	ordered := []*float64{s.CriticalMin, s.NormalMin, s.NormalMax, s.CriticalMax}
	var prev *float64
	for _, b := range ordered {
		if b == nil {
			continue
		}
		if prev != nil && *b < *prev {
			return fmt.Errorf("threshold spec for %q has out-of-order bounds", s.VitalKey)
		}
		prev = b
	}
	return nil
}

// Reading is one ingested sample batch for a device. Readings are consumed
// once and never persisted; a nil value in Vitals means the sensor produced
// no observation for that vital on this tick.
type Reading struct {
	DeviceID     string              `json:"device_id"`
	Timestamp    time.Time           `json:"timestamp"`
	Vitals       map[string]*float64 `json:"vitals"`
	FallDetected bool                `json:"fall_detected"`
}

// AlertEvent is the value crossing the core -> dispatcher boundary. Dispatched
// events are also kept as history rows.
type AlertEvent struct {
	ID                   string      `gorm:"primaryKey" json:"id"`
	DeviceID             string      `gorm:"index" json:"device_id"`
	VitalKey             string      `json:"vital_key"`
	Value                *float64    `json:"value"`
	Status               VitalStatus `gorm:"type:varchar(20)" json:"status"`
	ConsecutiveCount     int         `json:"consecutive_count"`
	ThresholdDescription string      `json:"threshold_description"`
	Timestamp            time.Time   `json:"timestamp"`
}

// CooldownStatus reports whether a vital's alert cooldown is active and how
// long until it expires.
type CooldownStatus struct {
	Active    bool          `json:"active"`
	Remaining time.Duration `json:"remaining"`
}

// DeviceStatus is the read-only introspection snapshot for one device. The
// fall channel appears under FallVitalKey.
type DeviceStatus struct {
	DeviceID            string                    `json:"device_id"`
	ConsecutiveCounters map[string]int            `json:"consecutive_counters"`
	Cooldowns           map[string]CooldownStatus `json:"cooldowns"`
}
