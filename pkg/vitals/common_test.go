package vitals

import (
	"bufio"
	"encoding/json"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"telecare.dev/vitals-alert-service/pkg/db"
	"telecare.dev/vitals-alert-service/pkg/models"
	"telecare.dev/vitals-alert-service/pkg/vitals/mocks"
)

// fakeClock lets tests move through cooldown windows without sleeping.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock(start time.Time) *fakeClock {
	return &fakeClock{now: start}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

var testClockStart = time.Date(2026, 1, 15, 8, 0, 0, 0, time.UTC)

func GetMockVitalsWithMemorySqliteDialector(t *testing.T, opts EngineOpts) (
	*gomock.Controller,
	*Vitals,
	*mocks.MockDispatcher,
	*fakeClock,
) {
	ctrl := gomock.NewController(t)

	mockDispatcher := mocks.NewMockDispatcher(ctrl)
	dbInstance := db.GetInstance(db.UseMemorySqliteDialector()) // ensure migrations

	vitalsInstance, err := NewVitals(*dbInstance, nil, opts)
	require.NoError(t, err)

	clock := newFakeClock(testClockStart)
	vitalsInstance.WithClock(clock).WithDispatcher(mockDispatcher)
	vitalsInstance.WithServices(ServiceOpts{
		Reading:   vitalsInstance.GetIReading(),
		Alert:     vitalsInstance.GetIAlert(),
		Threshold: vitalsInstance.GetIThreshold(),
		Status:    vitalsInstance.GetIStatus(),
	})

	return ctrl, vitalsInstance, mockDispatcher, clock
}

// readingWith builds a single-vital reading stamped with the fake clock epoch.
func readingWith(deviceID, vitalKey string, value float64) *models.Reading {
	return &models.Reading{
		DeviceID:  deviceID,
		Timestamp: testClockStart,
		Vitals:    map[string]*float64{vitalKey: &value},
	}
}

func ParseLogs(r io.Reader) []any {
	scanner := bufio.NewScanner(r)
	var logs []any

	for scanner.Scan() {
		line := scanner.Text()
		var j any
		if err := json.Unmarshal([]byte(line), &j); err == nil {
			logs = append(logs, j)
		}
	}
	return logs
}
