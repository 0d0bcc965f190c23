package observer

import (
	"context"
	"sync"
	"time"

	"github.com/anime-shed/blur-inspector-go/internal/logger"
	"github.com/anime-shed/blur-inspector-go/internal/syncx"
	"github.com/sirupsen/logrus"
)

// ScoringEvent represents a step in the life of one scoring request
type ScoringEvent struct {
	EventType      EventType              `json:"event_type"`
	Timestamp      time.Time              `json:"timestamp"`
	Source         string                 `json:"source"`
	Mode           string                 `json:"mode,omitempty"`
	ProcessingTime time.Duration          `json:"processing_time"`
	Success        bool                   `json:"success"`
	ErrorMessage   string                 `json:"error_message,omitempty"`
	Score          float64                `json:"score,omitempty"`
	Blurry         bool                   `json:"blurry,omitempty"`
	Metadata       map[string]interface{} `json:"metadata,omitempty"`
}

// EventType represents the type of scoring event
type EventType string

const (
	// ScoringStarted when a request is accepted
	ScoringStarted EventType = "scoring_started"
	// ScoringCompleted when a score was produced
	ScoringCompleted EventType = "scoring_completed"
	// ScoringFailed when no score could be produced
	ScoringFailed EventType = "scoring_failed"
	// ImageFetched when the image was fetched and decoded
	ImageFetched EventType = "image_fetched"
	// ImageFetchFailed when the image could not be fetched or decoded
	ImageFetchFailed EventType = "image_fetch_failed"
)

// Observer defines the interface for event observers
type Observer interface {
	OnEvent(ctx context.Context, event ScoringEvent)
	GetObserverName() string
}

// Subject defines the interface for event publishers
type Subject interface {
	Subscribe(observer Observer)
	Unsubscribe(observer Observer)
	NotifyObservers(ctx context.Context, event ScoringEvent)
}

// LoggingObserver logs scoring events
type LoggingObserver struct {
	logger *logrus.Logger
}

// NewLoggingObserver creates a new logging observer
func NewLoggingObserver(logger *logrus.Logger) Observer {
	return &LoggingObserver{
		logger: logger,
	}
}

// OnEvent handles scoring events by logging them
func (o *LoggingObserver) OnEvent(ctx context.Context, event ScoringEvent) {
	fields := logrus.Fields{
		"event_type":      event.EventType,
		"source":          event.Source,
		"processing_time": event.ProcessingTime,
		"success":         event.Success,
	}
	if event.Mode != "" {
		fields["mode"] = event.Mode
	}
	if event.ErrorMessage != "" {
		fields["error"] = event.ErrorMessage
	}
	if event.EventType == ScoringCompleted {
		fields["score"] = event.Score
		fields["blurry"] = event.Blurry
	}
	for k, v := range event.Metadata {
		fields[k] = v
	}

	switch event.EventType {
	case ScoringStarted:
		o.logger.WithFields(fields).Debug("Blur scoring started")
	case ScoringCompleted:
		o.logger.WithFields(fields).Info("Blur scoring completed")
	case ScoringFailed:
		o.logger.WithFields(fields).Error("Blur scoring failed")
	case ImageFetched:
		o.logger.WithFields(fields).Debug("Image fetched successfully")
	case ImageFetchFailed:
		o.logger.WithFields(fields).Error("Image fetch failed")
	default:
		o.logger.WithFields(fields).Info("Scoring event occurred")
	}
}

// GetObserverName returns the observer name
func (o *LoggingObserver) GetObserverName() string {
	return "logging_observer"
}

// Stats is a snapshot of the counters kept by MetricsObserver
type Stats struct {
	TotalRequests       int64            `json:"total_requests"`
	Completed           int64            `json:"completed"`
	Failed              int64            `json:"failed"`
	FetchFailures       int64            `json:"fetch_failures"`
	Blurry              int64            `json:"blurry"`
	Sharp               int64            `json:"sharp"`
	ByMode              map[string]int64 `json:"by_mode"`
	AvgScore            float64          `json:"avg_score"`
	AvgProcessingTimeMs float64          `json:"avg_processing_time_ms"`
	LastScoredAt        *time.Time       `json:"last_scored_at,omitempty"`
	totals              metricsAccumulator
}

type metricsAccumulator struct {
	score          float64
	processingTime time.Duration
}

// MetricsObserver collects in-memory counters from scoring events
type MetricsObserver struct {
	stats *syncx.Guard[Stats]
}

// NewMetricsObserver creates a new metrics observer
func NewMetricsObserver() *MetricsObserver {
	return &MetricsObserver{stats: syncx.NewGuard(Stats{ByMode: map[string]int64{}})}
}

// OnEvent handles scoring events by updating counters
func (o *MetricsObserver) OnEvent(ctx context.Context, event ScoringEvent) {
	o.stats.Write(func(s *Stats) {
		switch event.EventType {
		case ScoringStarted:
			s.TotalRequests++
		case ScoringCompleted:
			s.Completed++
			if event.Blurry {
				s.Blurry++
			} else {
				s.Sharp++
			}
			if event.Mode != "" {
				s.ByMode[event.Mode]++
			}
			s.totals.score += event.Score
			s.totals.processingTime += event.ProcessingTime
			at := event.Timestamp
			s.LastScoredAt = &at
		case ScoringFailed:
			s.Failed++
		case ImageFetchFailed:
			s.FetchFailures++
		}
	})
}

// GetObserverName returns the observer name
func (o *MetricsObserver) GetObserverName() string {
	return "metrics_observer"
}

// GetMetrics returns a copy of the current counters with averages filled in
func (o *MetricsObserver) GetMetrics() Stats {
	var out Stats
	o.stats.Read(func(s Stats) {
		out = s
		out.ByMode = make(map[string]int64, len(s.ByMode))
		for k, v := range s.ByMode {
			out.ByMode[k] = v
		}
	})
	if out.Completed > 0 {
		out.AvgScore = out.totals.score / float64(out.Completed)
		out.AvgProcessingTimeMs = float64(out.totals.processingTime.Milliseconds()) / float64(out.Completed)
	}
	return out
}

// EventPublisher implements the Subject interface
type EventPublisher struct {
	mu        sync.RWMutex
	observers []Observer
	pending   sync.WaitGroup
}

// NewEventPublisher creates a new event publisher
func NewEventPublisher() *EventPublisher {
	return &EventPublisher{
		observers: make([]Observer, 0),
	}
}

// Subscribe adds an observer
func (p *EventPublisher) Subscribe(observer Observer) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.observers = append(p.observers, observer)
}

// Unsubscribe removes an observer
func (p *EventPublisher) Unsubscribe(observer Observer) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for i, obs := range p.observers {
		if obs.GetObserverName() == observer.GetObserverName() {
			p.observers = append(p.observers[:i], p.observers[i+1:]...)
			break
		}
	}
}

// NotifyObservers delivers event to every observer on its own goroutine
func (p *EventPublisher) NotifyObservers(ctx context.Context, event ScoringEvent) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	p.mu.RLock()
	observers := make([]Observer, len(p.observers))
	copy(observers, p.observers)
	p.mu.RUnlock()

	// Request contexts end with the handler; observers outlive it
	ctx = context.WithoutCancel(ctx)
	for _, observer := range observers {
		p.pending.Add(1)
		go func(obs Observer) {
			defer p.pending.Done()
			defer func() {
				if r := recover(); r != nil {
					logger.WithFields(logrus.Fields{
						"observer": obs.GetObserverName(),
						"panic":    r,
					}).Error("Observer panicked while handling event")
				}
			}()
			obs.OnEvent(ctx, event)
		}(observer)
	}
}

// Flush waits until every delivered event has been handled
func (p *EventPublisher) Flush() {
	p.pending.Wait()
}
