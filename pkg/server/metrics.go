package server

import (
	"log"
	"net/http"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/attorneyonline/tsugo/pkg/game"
)

// Metrics holds the Prometheus metric descriptors for the server.
type Metrics struct {
	game      *game.Server
	startTime time.Time

	playersConnected prometheus.Gauge
	connectionsTotal *prometheus.CounterVec
	commandsTotal    *prometheus.CounterVec
	uptimeSeconds    prometheus.Gauge
	memoryHeapBytes  prometheus.Gauge
	goroutines       prometheus.Gauge
}

// NewMetrics creates and registers the Prometheus metrics.
func NewMetrics(g *game.Server) *Metrics {
	m := &Metrics{
		game:      g,
		startTime: time.Now(),
		playersConnected: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "tsugo_players_connected",
			Help: "Number of currently connected players.",
		}),
		connectionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tsugo_connections_total",
			Help: "Total connections since server start.",
		}, []string{"transport"}),
		commandsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tsugo_commands_processed_total",
			Help: "Total network commands processed since server start.",
		}, []string{"command"}),
		uptimeSeconds: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "tsugo_uptime_seconds",
			Help: "Server uptime in seconds.",
		}),
		memoryHeapBytes: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "tsugo_memory_heap_bytes",
			Help: "Go heap memory allocated in bytes.",
		}),
		goroutines: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "tsugo_goroutines",
			Help: "Number of active goroutines.",
		}),
	}

	prometheus.MustRegister(
		m.playersConnected,
		m.connectionsTotal,
		m.commandsTotal,
		m.uptimeSeconds,
		m.memoryHeapBytes,
		m.goroutines,
	)
	return m
}

// ConnectionOpened counts one accepted connection.
func (m *Metrics) ConnectionOpened(transport string) {
	m.connectionsTotal.WithLabelValues(transport).Inc()
}

// CommandProcessed counts one dispatched network command; the protocol
// engine calls it through its hook.
func (m *Metrics) CommandProcessed(name string) {
	m.commandsTotal.WithLabelValues(name).Inc()
}

// update refreshes the sampled gauges before a scrape.
func (m *Metrics) update() {
	m.playersConnected.Set(float64(m.game.Clients.Count()))
	m.uptimeSeconds.Set(time.Since(m.startTime).Seconds())
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	m.memoryHeapBytes.Set(float64(ms.HeapAlloc))
	m.goroutines.Set(float64(runtime.NumGoroutine()))
}

// Serve exposes /metrics on addr. It blocks.
func (m *Metrics) Serve(addr string) error {
	mux := http.NewServeMux()
	handler := promhttp.Handler()
	mux.HandleFunc("/metrics", func(w http.ResponseWriter, r *http.Request) {
		m.update()
		handler.ServeHTTP(w, r)
	})
	log.Printf("metrics listening on %s", addr)
	return http.ListenAndServe(addr, mux)
}
