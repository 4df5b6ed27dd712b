package vitals

import (
	"sync"
	"time"
)

// VitalState tracks the consecutive-abnormal streak and last successful alert
// for one (device, vital) pair.
type VitalState struct {
	ConsecutiveAbnormalCount int
	LastAlertAt              *time.Time
}

// FallState tracks the fall-detection channel for one device. The counter is
// kept even though the fall trigger is 1, to keep the contract uniform with
// the vital path.
type FallState struct {
	ConsecutiveFallCount int
	LastAlertAt          *time.Time
}

// deviceState is all mutable state for one device. Its mutex serializes
// evaluation per device; readings for different devices proceed in parallel.
type deviceState struct {
	mu       sync.Mutex
	vitals   map[string]*VitalState
	fall     FallState
	lastSeen time.Time
}

// vital returns the state entry for a vital key, creating it on first use.
// Caller must hold d.mu.
func (d *deviceState) vital(key string) *VitalState {
	st, exists := d.vitals[key]
	if !exists {
		st = &VitalState{}
		d.vitals[key] = st
	}
	return st
}

// DeviceStateStore manages per-device escalation state: device_id -> state.
// Entries are created lazily on first reading and live until evicted.
type DeviceStateStore struct {
	mu      sync.Mutex
	devices map[string]*deviceState
}

func NewDeviceStateStore() *DeviceStateStore {
	return &DeviceStateStore{
		devices: make(map[string]*deviceState),
	}
}

func (s *DeviceStateStore) acquire(deviceID string) *deviceState {
	s.mu.Lock()
	defer s.mu.Unlock()

	dev, exists := s.devices[deviceID]
	if !exists {
		dev = &deviceState{vitals: make(map[string]*VitalState)}
		s.devices[deviceID] = dev
	}
	return dev
}

// deviceSnapshot is a point-in-time copy of one device's counters, safe to
// read without holding the device lock.
type deviceSnapshot struct {
	vitals   map[string]VitalState
	fall     FallState
	lastSeen time.Time
}

func (s *DeviceStateStore) snapshot(deviceID string) (deviceSnapshot, bool) {
	s.mu.Lock()
	dev, exists := s.devices[deviceID]
	s.mu.Unlock()

	if !exists {
		return deviceSnapshot{}, false
	}

	dev.mu.Lock()
	defer dev.mu.Unlock()

	snap := deviceSnapshot{
		vitals:   make(map[string]VitalState, len(dev.vitals)),
		fall:     dev.fall,
		lastSeen: dev.lastSeen,
	}
	for key, st := range dev.vitals {
		snap.vitals[key] = *st
	}
	return snap, true
}

// EvictIdle removes devices with no readings since before now-idleFor and
// returns the evicted device IDs. Advisory memory cleanup only; a re-appearing
// device simply starts from fresh state.
func (s *DeviceStateStore) EvictIdle(now time.Time, idleFor time.Duration) []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	var evicted []string
	for deviceID, dev := range s.devices {
		dev.mu.Lock()
		idle := dev.lastSeen.Before(now.Add(-idleFor))
		dev.mu.Unlock()

		if idle {
			delete(s.devices, deviceID)
			evicted = append(evicted, deviceID)
		}
	}
	return evicted
}

func (s *DeviceStateStore) DeviceCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.devices)
}
