package vitals

import (
	"telecare.dev/vitals-alert-service/pkg/models"
)

func (v *Vitals) recordAlertRow(event *models.AlertEvent) error {
	return v.Db.Conn.Create(event).Error
}

func (v *Vitals) getDeviceAlerts(deviceID string) ([]models.AlertEvent, error) {
	var alerts []models.AlertEvent
	err := v.Db.Conn.
		Where("device_id = ?", deviceID).
		Order("timestamp desc").
		Find(&alerts).Error
	return alerts, err
}

type IAlertImpl struct {
	vitals *Vitals
}

func (ia *IAlertImpl) RecordAlert(event *models.AlertEvent) error {
	return ia.vitals.recordAlertRow(event)
}

func (ia *IAlertImpl) GetDeviceAlerts(deviceID string) ([]models.AlertEvent, error) {
	return ia.vitals.getDeviceAlerts(deviceID)
}

func (v *Vitals) GetIAlert() IAlert {
	return &IAlertImpl{vitals: v}
}
