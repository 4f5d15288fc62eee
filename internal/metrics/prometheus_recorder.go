package metrics

import (
	"sync"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	once            sync.Once
	linkParses      *prom.CounterVec
	linksExtracted  prom.Counter
	mentionsIndexed prom.Counter
	threadsCreated  prom.Counter
	postsCreated    prom.Counter
	eventPublishes  *prom.CounterVec
	reindexDuration prom.Histogram
}

// NewPrometheusRecorder constructs and registers Prometheus metrics (idempotent).
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{}
	pr.once.Do(func() {
		pr.linkParses = prom.NewCounterVec(prom.CounterOpts{
			Namespace: "catlink",
			Name:      "link_parses_total",
			Help:      "Strict link parse attempts by result",
		}, []string{"result"})
		pr.linksExtracted = prom.NewCounter(prom.CounterOpts{
			Namespace: "catlink",
			Name:      "links_extracted_total",
			Help:      "Entity links extracted from free-form text",
		})
		pr.mentionsIndexed = prom.NewCounter(prom.CounterOpts{
			Namespace: "catlink",
			Name:      "mentions_indexed_total",
			Help:      "Mention rows written to the feed index",
		})
		pr.threadsCreated = prom.NewCounter(prom.CounterOpts{
			Namespace: "catlink",
			Name:      "threads_created_total",
			Help:      "Feed threads created",
		})
		pr.postsCreated = prom.NewCounter(prom.CounterOpts{
			Namespace: "catlink",
			Name:      "posts_created_total",
			Help:      "Feed posts created",
		})
		pr.eventPublishes = prom.NewCounterVec(prom.CounterOpts{
			Namespace: "catlink",
			Name:      "event_publishes_total",
			Help:      "Mention event publish attempts by result",
		}, []string{"result"})
		pr.reindexDuration = prom.NewHistogram(prom.HistogramOpts{
			Namespace: "catlink",
			Name:      "reindex_duration_seconds",
			Help:      "Duration of scheduled mention index rebuilds",
			Buckets:   prom.DefBuckets,
		})
		reg.MustRegister(pr.linkParses, pr.linksExtracted, pr.mentionsIndexed, pr.threadsCreated, pr.postsCreated, pr.eventPublishes, pr.reindexDuration)
	})
	return pr
}

func (p *PrometheusRecorder) IncLinkParse(result ResultLabel) {
	if p == nil || p.linkParses == nil {
		return
	}
	p.linkParses.WithLabelValues(string(result)).Inc()
}

func (p *PrometheusRecorder) AddLinksExtracted(n int) {
	if p == nil || p.linksExtracted == nil || n <= 0 {
		return
	}
	p.linksExtracted.Add(float64(n))
}

func (p *PrometheusRecorder) AddMentionsIndexed(n int) {
	if p == nil || p.mentionsIndexed == nil || n <= 0 {
		return
	}
	p.mentionsIndexed.Add(float64(n))
}

func (p *PrometheusRecorder) IncThreadCreated() {
	if p == nil || p.threadsCreated == nil {
		return
	}
	p.threadsCreated.Inc()
}

func (p *PrometheusRecorder) IncPostCreated() {
	if p == nil || p.postsCreated == nil {
		return
	}
	p.postsCreated.Inc()
}

func (p *PrometheusRecorder) IncEventPublish(success bool) {
	if p == nil || p.eventPublishes == nil {
		return
	}
	res := "failed"
	if success {
		res = "success"
	}
	p.eventPublishes.WithLabelValues(res).Inc()
}

func (p *PrometheusRecorder) ObserveReindexDuration(d time.Duration) {
	if p == nil || p.reindexDuration == nil {
		return
	}
	p.reindexDuration.Observe(d.Seconds())
}
