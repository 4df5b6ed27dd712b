package http

import (
	"errors"
	"net/http"
	"time"

	"telecare.dev/vitals-alert-service/pkg/models"
	"telecare.dev/vitals-alert-service/pkg/vitals"

	"github.com/gin-gonic/gin"

	z "github.com/Oudwins/zog"
)

type ReadingRequest struct {
	Timestamp    time.Time           `json:"timestamp"`
	Vitals       map[string]*float64 `json:"vitals"`
	FallDetected bool                `json:"fall_detected"`
}

// Vitals is a free-form key -> value map; keys outside the threshold table
// are ignored downstream, so only the timestamp needs schema validation here.
var readingRequestSchema = z.Struct(z.Shape{
	"Timestamp": z.Time().Required(),
})

func (rs *RestfulServer) PostReadings(c *gin.Context) {
	deviceID := c.Param("device_id")

	if !rs.CheckDeviceLimiter(deviceID) {
		c.Status(http.StatusTooManyRequests)
		return
	}

	var req ReadingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := readingRequestSchema.Validate(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err})
		return
	}

	reading := &models.Reading{
		DeviceID:     deviceID,
		Timestamp:    req.Timestamp,
		Vitals:       req.Vitals,
		FallDetected: req.FallDetected,
	}

	dispatched, err := rs.Vitals.Reading.Evaluate(c.Request.Context(), reading)
	if err != nil {
		if errors.Is(err, vitals.ErrInvalidReading) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, err)
		return
	}

	if dispatched == nil {
		dispatched = []models.AlertEvent{}
	}
	c.JSON(http.StatusOK, gin.H{"dispatched": dispatched})
}

func (rs *RestfulServer) GetDeviceStatus(c *gin.Context) {
	deviceID := c.Param("device_id")

	if !rs.CheckDeviceLimiter(deviceID) {
		c.Status(http.StatusTooManyRequests)
		return
	}

	status, err := rs.Vitals.Status.GetDeviceStatus(deviceID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, err)
		return
	}

	c.JSON(http.StatusOK, status)
}

func (rs *RestfulServer) GetAlerts(c *gin.Context) {
	deviceID := c.Param("device_id")

	if !rs.CheckDeviceLimiter(deviceID) {
		c.Status(http.StatusTooManyRequests)
		return
	}

	var alerts []models.AlertEvent
	var err error
	if alerts, err = rs.Vitals.Alert.GetDeviceAlerts(deviceID); err != nil {
		c.JSON(http.StatusInternalServerError, err)
		return
	}

	c.JSON(http.StatusOK, alerts)
}

type ThresholdRequest struct {
	DisplayName string   `json:"display_name"`
	Unit        string   `json:"unit"`
	NormalMin   *float64 `json:"normal_min"`
	NormalMax   *float64 `json:"normal_max"`
	CriticalMin *float64 `json:"critical_min"`
	CriticalMax *float64 `json:"critical_max"`
}

var thresholdRequestSchema = z.Struct(z.Shape{
	"DisplayName": z.String().Required(),
	"Unit":        z.String().Required(),
})

func (rs *RestfulServer) PutThreshold(c *gin.Context) {
	vitalKey := c.Param("vital_key")

	var req ThresholdRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := thresholdRequestSchema.Validate(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err})
		return
	}

	spec := models.ThresholdSpec{
		VitalKey:    vitalKey,
		DisplayName: req.DisplayName,
		Unit:        req.Unit,
		NormalMin:   req.NormalMin,
		NormalMax:   req.NormalMax,
		CriticalMin: req.CriticalMin,
		CriticalMax: req.CriticalMax,
	}

	// Bound ordering is enforced by ThresholdSpec.Validate.
	if err := rs.Vitals.Threshold.UpsertThreshold(&spec); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.Status(http.StatusOK)
}

func (rs *RestfulServer) GetThresholds(c *gin.Context) {
	c.JSON(http.StatusOK, rs.Vitals.Threshold.GetThresholds().Specs())
}

type LimiterRequest struct {
	Rate  float64 `json:"rate"`
	Burst int     `json:"burst"`
}

var limiterRequestSchema = z.Struct(z.Shape{
	"rate":  z.Float64().Required(),
	"burst": z.Int().Required(),
})

func (rs *RestfulServer) PostLimiter(c *gin.Context) {
	deviceID := c.Param("device_id")

	var req LimiterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := limiterRequestSchema.Validate(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err})
		return
	}

	rs.SetLimiter(deviceID, req.Rate, req.Burst)

	c.Status(http.StatusOK)
}

func (rs *RestfulServer) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
