package http

import (
	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
	"telecare.dev/vitals-alert-service/pkg/vitals"
)

type RestfulServer struct {
	Server           *gin.Engine
	Vitals           *vitals.Vitals
	RateLimiterStore *vitals.RateLimiterStore
}

func (rs *RestfulServer) GetLimiter(deviceID string) *rate.Limiter {
	if rs.RateLimiterStore == nil {
		return nil
	} else {
		return rs.RateLimiterStore.GetLimiter(deviceID)
	}
}

func (rs *RestfulServer) CheckDeviceLimiter(deviceID string) bool {
	limiter := rs.GetLimiter(deviceID)
	if limiter == nil {
		return true
	}
	return limiter.Allow()
}

func (rs *RestfulServer) SetLimiter(deviceID string, deviceRate float64, deviceBurst int) {
	if rs.RateLimiterStore == nil {
		return
	}
	rs.RateLimiterStore.SetLimiter(deviceID, rate.Limit(deviceRate), deviceBurst)
}

func (rs *RestfulServer) Setup() {
	rs.Server.GET("/healthz", rs.HealthCheck)

	rs.Server.GET("/thresholds", rs.GetThresholds)
	rs.Server.PUT("/thresholds/:vital_key", rs.PutThreshold)

	devices := rs.Server.Group("/devices/:device_id")
	{
		devices.POST("/readings", rs.PostReadings)
		devices.GET("/status", rs.GetDeviceStatus)
		devices.GET("/alerts", rs.GetAlerts)
		devices.POST("/limiter", rs.PostLimiter)
	}
}
