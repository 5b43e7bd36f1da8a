package tiercache

import (
	"github.com/LavishGent/tiercache/internal/types"
)

type (
	HealthStatus        = types.HealthStatus
	HealthMetrics       = types.HealthMetrics
	LocalHealthMetrics  = types.LocalHealthMetrics
	RemoteHealthMetrics = types.RemoteHealthMetrics
	MetricsSnapshot     = types.MetricsSnapshot
)

const (
	HealthStatusHealthy   = types.HealthStatusHealthy
	HealthStatusDegraded  = types.HealthStatusDegraded
	HealthStatusUnhealthy = types.HealthStatusUnhealthy
)
