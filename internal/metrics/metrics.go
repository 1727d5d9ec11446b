// Package metrics exposes the server's internal performance and health
// counters over Prometheus, grounded on
// iamvalenciia-kick-game-stream/fight-club-go's internal/api/observability.go
// (bounded-cardinality metrics plus a loopback-only debug HTTP server).
package metrics

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// TickDuration records how long one simulation tick (phases 1-7) takes,
	// so a slow tick that risks missing the 50ms budget (spec §5) is visible
	// before it causes a dropped frame.
	TickDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "asteroids_tick_duration_seconds",
		Help:    "Time spent running one simulation tick.",
		Buckets: []float64{0.001, 0.005, 0.01, 0.02, 0.03, 0.04, 0.05, 0.075, 0.1},
	})

	// ActiveSessions tracks how many sessions are currently registered.
	ActiveSessions = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "asteroids_active_sessions",
		Help: "Number of currently connected player sessions.",
	})

	// AsteroidCount mirrors the world's live asteroid count.
	AsteroidCount = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "asteroids_live_asteroid_count",
		Help: "Number of asteroids currently alive in the world.",
	})

	// FramesSent counts frames successfully written to a session's writer.
	FramesSent = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "asteroids_frames_sent_total",
		Help: "Total frames written to client sessions, by frame type.",
	}, []string{"type"}) // bounded: "state", "chat", "welcome", "bye"

	// FramesDropped counts frames dropped due to outbound backpressure
	// (spec §4.5: "a full outbound queue drops the oldest state frame").
	FramesDropped = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "asteroids_frames_dropped_total",
		Help: "Total outbound frames dropped, by reason.",
	}, []string{"reason"}) // bounded: "queue_full", "slow_consumer"

	// SessionsTerminated counts sessions closed, by cause.
	SessionsTerminated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "asteroids_sessions_terminated_total",
		Help: "Total sessions terminated, by cause.",
	}, []string{"reason"}) // bounded: "peer_close", "protocol_error", "slow_consumer", "flood", "shutdown"
)

// RecordTick observes one tick's wall-clock duration.
func RecordTick(d time.Duration) {
	TickDuration.Observe(d.Seconds())
}

// StartDebugServer starts the loopback-only metrics/health endpoint in the
// background. It never binds beyond loopback unless addr is explicitly set
// to something else by the operator (spec's debug endpoint is opt-in and
// deliberately not exposed by default, mirroring the teacher pack's
// "never expose pprof/metrics externally by default" posture).
func StartDebugServer(ctx context.Context, addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	srv := &http.Server{Addr: addr, Handler: mux}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	go func() {
		log.Printf("metrics: debug server listening on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("metrics: debug server error: %v", err)
		}
	}()
}
