package service

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"he-demo/models"
)

// MetricsCollector tracks demo activity across all sessions
type MetricsCollector struct {
	mu sync.RWMutex

	runsStarted   int
	runsCompleted int
	resets        int
	decryptOK     int
	decryptFailed int
	stageTotal    map[models.Step]time.Duration
	stageCount    map[models.Step]int
	lastRunStart  time.Time
	lastRunEnd    time.Time

	runs     *prometheus.CounterVec
	decrypts *prometheus.CounterVec
	stages   *prometheus.HistogramVec
}

// StageMetrics contains timing information for one step
type StageMetrics struct {
	Count          int   `json:"count"`
	ProcessingTime int64 `json:"processing_time_ms"`
}

// MetricsResponse provides the metrics for all operations
type MetricsResponse struct {
	RunsStarted    int                          `json:"runs_started"`
	RunsCompleted  int                          `json:"runs_completed"`
	Resets         int                          `json:"resets"`
	DecryptSuccess int                          `json:"decrypt_success"`
	DecryptFailure int                          `json:"decrypt_failure"`
	LastRunStart   time.Time                    `json:"last_run_start"`
	LastRunEnd     time.Time                    `json:"last_run_end"`
	Stages         map[models.Step]StageMetrics `json:"stages"`
}

// NewMetricsCollector creates a collector and registers its Prometheus
// series on reg. A nil reg skips registration.
func NewMetricsCollector(reg prometheus.Registerer) *MetricsCollector {
	mc := &MetricsCollector{
		stageTotal: make(map[models.Step]time.Duration),
		stageCount: make(map[models.Step]int),
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "he_demo",
			Name:      "runs_total",
			Help:      "Demo runs by outcome.",
		}, []string{"event"}),
		decrypts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "he_demo",
			Name:      "decrypt_attempts_total",
			Help:      "Decrypt attempts by result.",
		}, []string{"result"}),
		stages: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "he_demo",
			Name:      "stage_seconds",
			Help:      "Time spent in each timed step.",
			Buckets:   []float64{0.1, 0.5, 1, 1.5, 2, 3, 5},
		}, []string{"step"}),
	}

	if reg != nil {
		reg.MustRegister(mc.runs, mc.decrypts, mc.stages)
	}
	return mc
}

func (mc *MetricsCollector) RecordRunStart() {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	mc.runsStarted++
	mc.lastRunStart = time.Now()
	mc.runs.WithLabelValues("started").Inc()
}

func (mc *MetricsCollector) RecordRunComplete() {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	mc.runsCompleted++
	mc.lastRunEnd = time.Now()
	mc.runs.WithLabelValues("completed").Inc()
}

func (mc *MetricsCollector) RecordReset() {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	mc.resets++
	mc.runs.WithLabelValues("reset").Inc()
}

// RecordStage adds the time spent in step
func (mc *MetricsCollector) RecordStage(step models.Step, d time.Duration) {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	mc.stageTotal[step] += d
	mc.stageCount[step]++
	mc.stages.WithLabelValues(string(step)).Observe(d.Seconds())
}

func (mc *MetricsCollector) RecordDecrypt(success bool) {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	if success {
		mc.decryptOK++
		mc.decrypts.WithLabelValues("success").Inc()
	} else {
		mc.decryptFailed++
		mc.decrypts.WithLabelValues("invalid_key").Inc()
	}
}

// GetMetrics returns current metrics for all operations
func (mc *MetricsCollector) GetMetrics() MetricsResponse {
	mc.mu.RLock()
	defer mc.mu.RUnlock()

	stages := make(map[models.Step]StageMetrics, len(mc.stageCount))
	for step, count := range mc.stageCount {
		stages[step] = StageMetrics{
			Count:          count,
			ProcessingTime: mc.stageTotal[step].Milliseconds(),
		}
	}

	return MetricsResponse{
		RunsStarted:    mc.runsStarted,
		RunsCompleted:  mc.runsCompleted,
		Resets:         mc.resets,
		DecryptSuccess: mc.decryptOK,
		DecryptFailure: mc.decryptFailed,
		LastRunStart:   mc.lastRunStart,
		LastRunEnd:     mc.lastRunEnd,
		Stages:         stages,
	}
}
