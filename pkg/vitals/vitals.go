package vitals

import (
	"context"
	"time"

	"telecare.dev/vitals-alert-service/pkg/db"
	"telecare.dev/vitals-alert-service/pkg/models"
)

type IReading interface {
	Evaluate(ctx context.Context, reading *models.Reading) ([]models.AlertEvent, error)
}

type IAlert interface {
	RecordAlert(event *models.AlertEvent) error
	GetDeviceAlerts(deviceID string) ([]models.AlertEvent, error)
}

type IThreshold interface {
	UpsertThreshold(spec *models.ThresholdSpec) error
	GetThresholds() ThresholdTable
}

type IStatus interface {
	GetDeviceStatus(deviceID string) (*models.DeviceStatus, error)
}

// EngineOpts are the externally configurable escalation knobs.
type EngineOpts struct {
	// TriggerCount is the consecutive-abnormal streak required before a vital
	// alert fires. Single noisy samples must not page anyone.
	TriggerCount int
	// FallTriggerCount is the streak required on the fall channel. Falls are a
	// different risk class, so the default is 1 (immediate).
	FallTriggerCount int
	// Cooldown suppresses re-alerting for a sustained condition that is
	// already being attended to.
	Cooldown time.Duration
	// DispatchTimeout bounds the dispatcher call, which runs while the
	// per-device lock is held.
	DispatchTimeout time.Duration
}

const (
	DefaultTriggerCount     = 3
	DefaultFallTriggerCount = 1
	DefaultCooldown         = 10 * time.Minute
	DefaultDispatchTimeout  = 5 * time.Second
)

func (o EngineOpts) withDefaults() EngineOpts {
	if o.TriggerCount <= 0 {
		o.TriggerCount = DefaultTriggerCount
	}
	if o.FallTriggerCount <= 0 {
		o.FallTriggerCount = DefaultFallTriggerCount
	}
	if o.Cooldown <= 0 {
		o.Cooldown = DefaultCooldown
	}
	if o.DispatchTimeout <= 0 {
		o.DispatchTimeout = DefaultDispatchTimeout
	}
	return o
}

type Vitals struct {
	Db         db.DB
	Dispatcher Dispatcher
	Clock      Clock
	Opts       EngineOpts

	Reading   IReading
	Alert     IAlert
	Threshold IThreshold
	Status    IStatus

	states *DeviceStateStore
	table  atomicTable
}

// NewVitals builds the core with the effective threshold table: built-in
// defaults, overridden by fileSpecs (thresholds YAML), overridden by rows
// already persisted in the database.
func NewVitals(dbInstance db.DB, fileSpecs []models.ThresholdSpec, opts EngineOpts) (*Vitals, error) {
	v := &Vitals{
		Db:     dbInstance,
		Clock:  SystemClock(),
		Opts:   opts.withDefaults(),
		states: NewDeviceStateStore(),
	}

	var stored []models.ThresholdSpec
	if err := v.Db.Conn.Find(&stored).Error; err != nil {
		return nil, err
	}

	table, err := BuildThresholdTable(DefaultThresholds(), fileSpecs, stored)
	if err != nil {
		return nil, err
	}
	v.table.store(table)

	return v, nil
}

type ServiceOpts struct {
	Reading   IReading
	Alert     IAlert
	Threshold IThreshold
	Status    IStatus
}

func (v *Vitals) WithServices(opts ServiceOpts) *Vitals {
	if opts.Reading != nil {
		v.Reading = opts.Reading
	}
	if opts.Alert != nil {
		v.Alert = opts.Alert
	}
	if opts.Threshold != nil {
		v.Threshold = opts.Threshold
	}
	if opts.Status != nil {
		v.Status = opts.Status
	}
	return v
}

func (v *Vitals) WithDispatcher(d Dispatcher) *Vitals {
	v.Dispatcher = d
	return v
}

func (v *Vitals) WithClock(c Clock) *Vitals {
	v.Clock = c
	return v
}

// States exposes the state store for operational cleanup (idle eviction).
func (v *Vitals) States() *DeviceStateStore {
	return v.states
}
