package manager

import (
	"context"
	"sync"
	"time"

	"meshassist/config"
	"meshassist/metrics"
)

// DefaultModel is the bucket used for models without an explicit limit.
const DefaultModel = "default"

// ModelMetrics holds the metrics for a specific model.
type ModelMetrics struct {
	Model                  string
	QueueSize              int
	ProcessingCount        int
	LastLogTime            time.Time
	queueSizeChanged       bool
	processingCountChanged bool
	mu                     sync.Mutex
}

// ConcurrencyManager bounds in-flight inference calls per model.
type ConcurrencyManager struct {
	semMap       map[string]chan struct{}
	metricsMap   map[string]*ModelMetrics
	mu           sync.Mutex
	defaultSize  int
	queueTimeout time.Duration
	logInterval  time.Duration
	done         chan struct{}
	shutdownOnce sync.Once
}

// NewConcurrencyManager initializes a new ConcurrencyManager with model limits and a default concurrency limit.
func NewConcurrencyManager(limits []config.ModelLimit, defaultSize int, queueTimeout time.Duration) *ConcurrencyManager {
	cm := &ConcurrencyManager{
		semMap:       make(map[string]chan struct{}),
		metricsMap:   make(map[string]*ModelMetrics),
		defaultSize:  defaultSize,
		queueTimeout: queueTimeout,
		logInterval:  time.Second,
		done:         make(chan struct{}),
	}

	for _, limit := range limits {
		size := limit.Size
		if size <= 0 {
			size = 10
			log.Warnf("Model '%s' has invalid size %d. Setting to default size %d.", limit.Name, limit.Size, size)
		}
		cm.semMap[limit.Name] = make(chan struct{}, size)
		cm.metricsMap[limit.Name] = &ModelMetrics{Model: limit.Name}
	}

	cm.semMap[DefaultModel] = make(chan struct{}, cm.defaultSize)
	cm.metricsMap[DefaultModel] = &ModelMetrics{Model: DefaultModel}

	for _, m := range cm.metricsMap {
		go cm.monitorMetrics(m)
	}

	return cm
}

// Acquire waits for a slot for the given model. It gives up after the queue
// timeout or when ctx ends, returning ok=false. The returned release func must
// be called exactly once when ok is true.
func (cm *ConcurrencyManager) Acquire(ctx context.Context, model string) (func(), bool) {
	cm.mu.Lock()
	sem, exists := cm.semMap[model]
	if !exists {
		sem = cm.semMap[DefaultModel]
		model = DefaultModel
	}
	m := cm.metricsMap[model]
	cm.mu.Unlock()

	m.incrementQueue()

	timer := time.NewTimer(cm.queueTimeout)
	defer timer.Stop()

	select {
	case sem <- struct{}{}:
		m.decrementQueue()
		m.incrementProcessing()

		var once sync.Once
		return func() {
			once.Do(func() {
				m.decrementProcessing()
				<-sem
			})
		}, true
	case <-timer.C:
		m.decrementQueue()
		return nil, false
	case <-ctx.Done():
		m.decrementQueue()
		return nil, false
	}
}

// Snapshot returns the current queue and processing counts for a model bucket.
func (cm *ConcurrencyManager) Snapshot(model string) (queued, processing int) {
	cm.mu.Lock()
	m, ok := cm.metricsMap[model]
	if !ok {
		m = cm.metricsMap[DefaultModel]
	}
	cm.mu.Unlock()

	m.mu.Lock()
	defer m.mu.Unlock()
	return m.QueueSize, m.ProcessingCount
}

// monitorMetrics logs changes in the metrics at most once per logInterval.
func (cm *ConcurrencyManager) monitorMetrics(m *ModelMetrics) {
	ticker := time.NewTicker(cm.logInterval / 2)
	defer ticker.Stop()

	for {
		select {
		case <-cm.done:
			return
		case <-ticker.C:
		}

		m.mu.Lock()
		now := time.Now()
		if (m.queueSizeChanged || m.processingCountChanged) && now.Sub(m.LastLogTime) >= cm.logInterval {
			log.Infof("Model: %s | Queued: %d | Processing: %d", m.Model, m.QueueSize, m.ProcessingCount)
			m.LastLogTime = now
			m.resetChangeFlags()
		}
		m.mu.Unlock()
	}
}

// Methods for ModelMetrics

func (m *ModelMetrics) incrementQueue() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.QueueSize++
	m.queueSizeChanged = true
	metrics.Queued.WithLabelValues(m.Model).Inc()
}

func (m *ModelMetrics) decrementQueue() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.QueueSize > 0 {
		m.QueueSize--
		m.queueSizeChanged = true
		metrics.Queued.WithLabelValues(m.Model).Dec()
	}
}

func (m *ModelMetrics) incrementProcessing() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ProcessingCount++
	m.processingCountChanged = true
	metrics.Processing.WithLabelValues(m.Model).Inc()
}

func (m *ModelMetrics) decrementProcessing() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ProcessingCount > 0 {
		m.ProcessingCount--
		m.processingCountChanged = true
		metrics.Processing.WithLabelValues(m.Model).Dec()
	}
}

func (m *ModelMetrics) resetChangeFlags() {
	m.queueSizeChanged = false
	m.processingCountChanged = false
}

// Shutdown stops the metric monitors. Slots already held stay valid.
func (cm *ConcurrencyManager) Shutdown() {
	cm.shutdownOnce.Do(func() {
		close(cm.done)
	})
}
