package strategy

import (
	"errors"
	"fmt"
	"image"
	"sort"

	"github.com/anime-shed/blur-inspector-go/internal/analyzer"
	"github.com/anime-shed/blur-inspector-go/internal/cvref"
)

// Scoring modes accepted by Registry.Get
const (
	ModeWindow    = "window"
	ModeFullFrame = "full_frame"
	ModeReference = "reference"
)

// ErrUnknownMode indicates a scoring mode with no registered strategy
var ErrUnknownMode = errors.New("unknown scoring mode")

// ScoringStrategy defines the interface for different scoring strategies
type ScoringStrategy interface {
	Score(img image.Image, options analyzer.AnalysisOptions) (analyzer.Result, error)
	GetStrategyName() string
}

// WindowStrategy scores the window centred on the strongest edge
type WindowStrategy struct {
	analyzer analyzer.ImageAnalyzer
}

// NewWindowStrategy creates a new peak-window strategy
func NewWindowStrategy(a analyzer.ImageAnalyzer) ScoringStrategy {
	return &WindowStrategy{analyzer: a}
}

// Score performs peak-window scoring
func (s *WindowStrategy) Score(img image.Image, options analyzer.AnalysisOptions) (analyzer.Result, error) {
	options.FullFrame = false
	return s.analyzer.AnalyzeWithOptions(img, options)
}

// GetStrategyName returns the strategy name
func (s *WindowStrategy) GetStrategyName() string {
	return ModeWindow
}

// FullFrameStrategy scores the whole edge map
type FullFrameStrategy struct {
	analyzer analyzer.ImageAnalyzer
}

// NewFullFrameStrategy creates a new full-frame strategy
func NewFullFrameStrategy(a analyzer.ImageAnalyzer) ScoringStrategy {
	return &FullFrameStrategy{analyzer: a}
}

// Score performs full-frame scoring
func (s *FullFrameStrategy) Score(img image.Image, options analyzer.AnalysisOptions) (analyzer.Result, error) {
	options.FullFrame = true
	return s.analyzer.AnalyzeWithOptions(img, options)
}

// GetStrategyName returns the strategy name
func (s *FullFrameStrategy) GetStrategyName() string {
	return ModeFullFrame
}

// ReferenceStrategy scores through OpenCV
type ReferenceStrategy struct{}

// NewReferenceStrategy creates a new OpenCV reference strategy
func NewReferenceStrategy() ScoringStrategy {
	return &ReferenceStrategy{}
}

// Score performs OpenCV scoring; it fails with cvref.ErrUnavailable
// unless built with the gocv tag
func (s *ReferenceStrategy) Score(img image.Image, options analyzer.AnalysisOptions) (analyzer.Result, error) {
	return cvref.Analyze(img, options)
}

// GetStrategyName returns the strategy name
func (s *ReferenceStrategy) GetStrategyName() string {
	return ModeReference
}

// Registry maps scoring modes to strategies
type Registry struct {
	strategies map[string]ScoringStrategy
}

// NewRegistry registers the window and full-frame strategies over a, plus
// the reference strategy when OpenCV is compiled in
func NewRegistry(a analyzer.ImageAnalyzer) *Registry {
	r := &Registry{strategies: make(map[string]ScoringStrategy)}
	r.Register(NewWindowStrategy(a))
	r.Register(NewFullFrameStrategy(a))
	if cvref.Available() {
		r.Register(NewReferenceStrategy())
	}
	return r
}

// Register adds or replaces a strategy under its name
func (r *Registry) Register(s ScoringStrategy) {
	r.strategies[s.GetStrategyName()] = s
}

// Get returns the strategy for mode; an empty mode selects the window strategy
func (r *Registry) Get(mode string) (ScoringStrategy, error) {
	if mode == "" {
		mode = ModeWindow
	}
	s, ok := r.strategies[mode]
	if !ok {
		return nil, fmt.Errorf("%w %q (available: %v)", ErrUnknownMode, mode, r.Names())
	}
	return s, nil
}

// Names returns the registered modes in sorted order
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.strategies))
	for name := range r.strategies {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
