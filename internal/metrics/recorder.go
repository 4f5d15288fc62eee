package metrics

import "time"

// ResultLabel enumerates parse result categories for counters.
type ResultLabel string

const (
	ResultSuccess   ResultLabel = "success"
	ResultMalformed ResultLabel = "malformed"
	ResultAmbiguous ResultLabel = "ambiguous"
)

// Recorder defines observability hooks for link and feed metrics. Implementations
// may forward to Prometheus, OpenTelemetry, etc. All methods must be safe for nil receivers
// when using the NoopRecorder (allowing optional injection).
type Recorder interface {
	IncLinkParse(result ResultLabel)
	AddLinksExtracted(n int)
	AddMentionsIndexed(n int)
	IncThreadCreated()
	IncPostCreated()
	IncEventPublish(success bool)
	ObserveReindexDuration(d time.Duration)
}

// NoopRecorder is a Recorder that does nothing (default when metrics not configured).
type NoopRecorder struct{}

func (NoopRecorder) IncLinkParse(ResultLabel)            {}
func (NoopRecorder) AddLinksExtracted(int)               {}
func (NoopRecorder) AddMentionsIndexed(int)              {}
func (NoopRecorder) IncThreadCreated()                   {}
func (NoopRecorder) IncPostCreated()                     {}
func (NoopRecorder) IncEventPublish(bool)                {}
func (NoopRecorder) ObserveReindexDuration(time.Duration) {}
