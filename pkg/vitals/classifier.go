package vitals

import (
	"math"

	"telecare.dev/vitals-alert-service/pkg/models"
)

// Classify maps one observed value to a status against a threshold spec.
// A nil or NaN value is "no observation" and classifies as unknown. Values
// outside the critical bounds are critical, outside the normal bounds are
// warning, everything else is normal. Bound values themselves count as the
// inner (normal) side.
func Classify(spec models.ThresholdSpec, value *float64) models.VitalStatus {
	if value == nil || math.IsNaN(*value) {
		return models.StatusUnknown
	}

	v := *value

	if spec.CriticalMin != nil && v < *spec.CriticalMin {
		return models.StatusCritical
	}
	if spec.CriticalMax != nil && v > *spec.CriticalMax {
		return models.StatusCritical
	}

	if spec.NormalMin != nil && v < *spec.NormalMin {
		return models.StatusWarning
	}
	if spec.NormalMax != nil && v > *spec.NormalMax {
		return models.StatusWarning
	}

	return models.StatusNormal
}

// Abnormal reports whether a status counts toward the consecutive-abnormal
// streak.
func Abnormal(status models.VitalStatus) bool {
	return status == models.StatusWarning || status == models.StatusCritical
}
