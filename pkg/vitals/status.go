package vitals

import (
	"telecare.dev/vitals-alert-service/pkg/models"
)

// getDeviceStatus returns the introspection snapshot for one device: the
// consecutive counters and cooldown state per tracked vital plus the fall
// channel. A device with no readings yet reports empty maps.
func (v *Vitals) getDeviceStatus(deviceID string) (*models.DeviceStatus, error) {
	status := &models.DeviceStatus{
		DeviceID:            deviceID,
		ConsecutiveCounters: map[string]int{},
		Cooldowns:           map[string]models.CooldownStatus{},
	}

	snap, exists := v.states.snapshot(deviceID)
	if !exists {
		return status, nil
	}

	now := v.Clock.Now()

	for key, st := range snap.vitals {
		status.ConsecutiveCounters[key] = st.ConsecutiveAbnormalCount
		remaining, active := v.cooldownRemaining(st.LastAlertAt, now)
		status.Cooldowns[key] = models.CooldownStatus{Active: active, Remaining: remaining}
	}

	status.ConsecutiveCounters[models.FallVitalKey] = snap.fall.ConsecutiveFallCount
	remaining, active := v.cooldownRemaining(snap.fall.LastAlertAt, now)
	status.Cooldowns[models.FallVitalKey] = models.CooldownStatus{Active: active, Remaining: remaining}

	return status, nil
}

type IStatusImpl struct {
	vitals *Vitals
}

func (is *IStatusImpl) GetDeviceStatus(deviceID string) (*models.DeviceStatus, error) {
	return is.vitals.getDeviceStatus(deviceID)
}

func (v *Vitals) GetIStatus() IStatus {
	return &IStatusImpl{vitals: v}
}
