package vitals

import (
	"go.uber.org/zap"
	"gorm.io/gorm/clause"
	"telecare.dev/vitals-alert-service/pkg/common"
	"telecare.dev/vitals-alert-service/pkg/models"
)

// upsertThreshold persists one threshold override and swaps in a rebuilt
// table. Running state machines pick up the new bounds on their next reading.
func (v *Vitals) upsertThreshold(input *models.ThresholdSpec) error {
	logger := common.GetLoggerWith(
		common.LoggerNameVitalsCore,
		zap.String(common.LoggerFieldVitalsCategory, common.LoggerCategoryThreshold),
	)

	if err := input.Validate(); err != nil {
		return err
	}

	logger.Info("Received threshold for vital", zap.Reflect("threshold", input))

	err := v.Db.Conn.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "vital_key"}},
		UpdateAll: true,
	}).Create(input).Error
	if err != nil {
		return err
	}

	current := v.table.load()
	next := make(ThresholdTable, len(current)+1)
	for key, spec := range current {
		next[key] = spec
	}
	next[input.VitalKey] = *input
	v.table.store(next)

	logger.Info("Upserted threshold for vital", zap.Reflect("threshold", input))
	return nil
}

func (v *Vitals) getThresholds() ThresholdTable {
	return v.table.load()
}

type IThresholdImpl struct {
	vitals *Vitals
}

func (it *IThresholdImpl) UpsertThreshold(spec *models.ThresholdSpec) error {
	return it.vitals.upsertThreshold(spec)
}

func (it *IThresholdImpl) GetThresholds() ThresholdTable {
	return it.vitals.getThresholds()
}

func (v *Vitals) GetIThreshold() IThreshold {
	return &IThresholdImpl{vitals: v}
}
