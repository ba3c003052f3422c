package metrics

import (
	"strconv"
	"time"
)

// RecordHTTPRequest records one completed HTTP request.
func (m *Metrics) RecordHTTPRequest(method, endpoint string, status int, duration time.Duration) {
	m.safeExecute("RecordHTTPRequest", func() {
		m.HTTPRequestsTotal.WithLabelValues(method, endpoint, strconv.Itoa(status)).Inc()
		m.HTTPRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
	})
}

func (m *Metrics) RequestStarted() {
	m.safeExecute("RequestStarted", func() { m.HTTPRequestsInFlight.Inc() })
}

func (m *Metrics) RequestFinished() {
	m.safeExecute("RequestFinished", func() { m.HTTPRequestsInFlight.Dec() })
}

// RecordConnectionOpened counts a registered realtime connection.
func (m *Metrics) RecordConnectionOpened() {
	m.safeExecute("RecordConnectionOpened", func() {
		m.WSConnectionsTotal.Inc()
		m.WSActiveConnections.Inc()
	})
}

func (m *Metrics) RecordConnectionClosed() {
	m.safeExecute("RecordConnectionClosed", func() { m.WSActiveConnections.Dec() })
}

func (m *Metrics) RecordHandshakeRejected() {
	m.safeExecute("RecordHandshakeRejected", func() { m.WSRejectedHandshakes.Inc() })
}

// RecordDispatch counts one routed event and the recipients it could not reach.
func (m *Metrics) RecordDispatch(event string, dropped int) {
	m.safeExecute("RecordDispatch", func() {
		m.RealtimeEventsTotal.WithLabelValues(event).Inc()
		if dropped > 0 {
			m.RealtimeDroppedTotal.WithLabelValues(event).Add(float64(dropped))
		}
	})
}

func (m *Metrics) RecordPresenceTransition(online bool) {
	m.safeExecute("RecordPresenceTransition", func() {
		state := "offline"
		if online {
			state = "online"
		}
		m.PresenceTransitions.WithLabelValues(state).Inc()
	})
}

func (m *Metrics) RecordPresenceError() {
	m.safeExecute("RecordPresenceError", func() { m.PresenceBookkeepErrors.Inc() })
}

func (m *Metrics) RecordMessageSent() {
	m.safeExecute("RecordMessageSent", func() { m.MessagesSentTotal.Inc() })
}

func (m *Metrics) RecordStatusPosted() {
	m.safeExecute("RecordStatusPosted", func() { m.StatusesPostedTotal.Inc() })
}

func (m *Metrics) RecordUpload(fileType string) {
	m.safeExecute("RecordUpload", func() { m.UploadsTotal.WithLabelValues(fileType).Inc() })
}

func (m *Metrics) RecordRateLimited(limiter string) {
	m.safeExecute("RecordRateLimited", func() { m.RateLimitedTotal.WithLabelValues(limiter).Inc() })
}

func (m *Metrics) RecordExpiredStatusesDeleted(n int64) {
	m.safeExecute("RecordExpiredStatusesDeleted", func() { m.ExpiredStatusesDel.Add(float64(n)) })
}
