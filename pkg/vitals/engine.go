package vitals

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"telecare.dev/vitals-alert-service/pkg/common"
	"telecare.dev/vitals-alert-service/pkg/models"
)

var ErrInvalidReading = fmt.Errorf("invalid reading: missing device id")

// evaluateReading runs one reading batch through the escalation state machine
// and returns the alert events that were actually dispatched.
//
// The per-device lock is held for the whole evaluate-and-dispatch sequence;
// the dispatcher call is bounded by Opts.DispatchTimeout so a slow provider
// cannot stall the device's ingestion indefinitely. Readings for one device
// must arrive in temporal order; devices are independent of each other.
func (v *Vitals) evaluateReading(ctx context.Context, reading *models.Reading) ([]models.AlertEvent, error) {
	if reading == nil || reading.DeviceID == "" {
		return nil, ErrInvalidReading
	}

	logger := common.GetLoggerWith(
		common.LoggerNameVitalsCore,
		zap.String(common.LoggerFieldVitalsCategory, common.LoggerCategoryReading),
		zap.String("device_id", reading.DeviceID),
	)
	alertLogger := common.GetLoggerWith(
		common.LoggerNameVitalsCore,
		zap.String(common.LoggerFieldVitalsCategory, common.LoggerCategoryAlert),
		zap.String("device_id", reading.DeviceID),
	)

	table := v.table.load()
	now := v.Clock.Now()

	dev := v.states.acquire(reading.DeviceID)
	dev.mu.Lock()
	defer dev.mu.Unlock()

	dev.lastSeen = now

	var dispatched []models.AlertEvent

	// Vital keys in the reading but absent from the table are ignored; each
	// tracked vital is evaluated independently.
	for _, key := range table.Keys() {
		spec := table[key]
		value := reading.Vitals[key]
		status := Classify(spec, value)

		st := dev.vital(key)

		if !Abnormal(status) {
			// A missing sample (unknown) clears the streak the same way a
			// normal one does. Deliberate: mirrors the observed behavior of
			// the monitor this engine replaces.
			st.ConsecutiveAbnormalCount = 0
			continue
		}

		st.ConsecutiveAbnormalCount++

		if st.ConsecutiveAbnormalCount < v.Opts.TriggerCount {
			continue
		}

		if remaining, active := v.cooldownRemaining(st.LastAlertAt, now); active {
			// Counter keeps growing here, so the first abnormal reading after
			// cooldown expiry re-fires without three fresh strikes.
			logger.Debug("Alert suppressed by cooldown",
				zap.String("vital_key", key),
				zap.Int("consecutive_count", st.ConsecutiveAbnormalCount),
				zap.Duration("cooldown_remaining", remaining),
			)
			continue
		}

		event := models.AlertEvent{
			ID:                   uuid.NewString(),
			DeviceID:             reading.DeviceID,
			VitalKey:             key,
			Value:                value,
			Status:               status,
			ConsecutiveCount:     st.ConsecutiveAbnormalCount,
			ThresholdDescription: DescribeThreshold(spec),
			Timestamp:            now,
		}

		alertLogger.Info("Alert found", zap.Reflect("event", event))

		if err := v.dispatch(ctx, &event); err != nil {
			// Counters and lastAlertAt stay as-is so the next abnormal
			// reading retries the dispatch.
			alertLogger.Error("Alert dispatch failed",
				zap.String("vital_key", key),
				zap.Error(err),
			)
			continue
		}

		alertAt := now
		st.LastAlertAt = &alertAt
		st.ConsecutiveAbnormalCount = 0

		v.recordAlert(alertLogger, &event)
		dispatched = append(dispatched, event)
	}

	if event := v.evaluateFall(ctx, dev, reading.DeviceID, reading.FallDetected, now); event != nil {
		dispatched = append(dispatched, *event)
	}

	return dispatched, nil
}

// evaluateFall is the low-latency escalation path for the boolean fall
// signal: trigger count 1 by default, same cooldown window, tracked
// independently of the vital channels. Caller must hold dev.mu.
func (v *Vitals) evaluateFall(ctx context.Context, dev *deviceState, deviceID string, fallDetected bool, now time.Time) *models.AlertEvent {
	if !fallDetected {
		dev.fall.ConsecutiveFallCount = 0
		return nil
	}

	logger := common.GetLoggerWith(
		common.LoggerNameVitalsCore,
		zap.String(common.LoggerFieldVitalsCategory, common.LoggerCategoryFall),
		zap.String("device_id", deviceID),
	)

	dev.fall.ConsecutiveFallCount++

	if dev.fall.ConsecutiveFallCount < v.Opts.FallTriggerCount {
		return nil
	}

	if remaining, active := v.cooldownRemaining(dev.fall.LastAlertAt, now); active {
		logger.Debug("Fall alert suppressed by cooldown",
			zap.Int("consecutive_count", dev.fall.ConsecutiveFallCount),
			zap.Duration("cooldown_remaining", remaining),
		)
		return nil
	}

	event := models.AlertEvent{
		ID:                   uuid.NewString(),
		DeviceID:             deviceID,
		VitalKey:             models.FallVitalKey,
		Status:               models.StatusCritical,
		ConsecutiveCount:     dev.fall.ConsecutiveFallCount,
		ThresholdDescription: "fall detected",
		Timestamp:            now,
	}

	logger.Info("Alert found", zap.Reflect("event", event))

	if err := v.dispatch(ctx, &event); err != nil {
		logger.Error("Fall alert dispatch failed", zap.Error(err))
		return nil
	}

	alertAt := now
	dev.fall.LastAlertAt = &alertAt
	dev.fall.ConsecutiveFallCount = 0

	v.recordAlert(logger, &event)
	return &event
}

func (v *Vitals) cooldownRemaining(lastAlertAt *time.Time, now time.Time) (time.Duration, bool) {
	if lastAlertAt == nil {
		return 0, false
	}
	elapsed := now.Sub(*lastAlertAt)
	if elapsed >= v.Opts.Cooldown {
		return 0, false
	}
	return v.Opts.Cooldown - elapsed, true
}

func (v *Vitals) dispatch(ctx context.Context, event *models.AlertEvent) error {
	if v.Dispatcher == nil {
		return fmt.Errorf("dispatcher not available")
	}

	ctx, cancel := context.WithTimeout(ctx, v.Opts.DispatchTimeout)
	defer cancel()

	return v.Dispatcher.Send(ctx, event)
}

// recordAlert persists a dispatched event for the alert-history query. A
// failed write never undoes the dispatch decision.
func (v *Vitals) recordAlert(logger *zap.Logger, event *models.AlertEvent) {
	if v.Alert == nil {
		return
	}
	if err := v.Alert.RecordAlert(event); err != nil {
		logger.Error("Failed to record dispatched alert", zap.Error(err))
		return
	}
	logger.Info("Alert saved", zap.Reflect("event", event))
}

type IReadingImpl struct {
	vitals *Vitals
}

func (ir *IReadingImpl) Evaluate(ctx context.Context, reading *models.Reading) ([]models.AlertEvent, error) {
	return ir.vitals.evaluateReading(ctx, reading)
}

func (v *Vitals) GetIReading() IReading {
	return &IReadingImpl{vitals: v}
}
