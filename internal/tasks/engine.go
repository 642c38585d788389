// package tasks implements the multilink pipeline: recognize a link, extract the track, search the other services.
package tasks

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/multilink/internal/formatter"
	"github.com/desertthunder/multilink/internal/models"
	"github.com/desertthunder/multilink/internal/services"
	"github.com/desertthunder/multilink/internal/shared"
)

// Fixed user-facing texts. Diagnostics never reach the user.
const (
	WelcomeMessage  = "Hello! Send me a music track link from Spotify, Yandex Music, or MTS Music, and I'll provide you with multi-links to the track on other services."
	InvalidMessage  = "Please send a valid music track link from Spotify, Yandex Music, or MTS Music."
	ErrorMessage    = "Error parsing the link."
	ProgressMessage = "Parsing your link..."
)

const (
	DefaultExtractTimeout = 10 * time.Second
	DefaultSearchTimeout  = 8 * time.Second
)

// Resolution is the structured outcome of one pipeline run.
type Resolution struct {
	RequestID string                      `json:"request_id"`
	Track     models.TrackReference       `json:"track"`
	Results   []models.CrossServiceResult `json:"results"`
	Duration  time.Duration               `json:"duration"`
}

// Pipeline turns inbound message text into a reply.
type Pipeline interface {
	// Handle runs the whole pipeline and never fails: every outcome is a [models.Reply].
	Handle(ctx context.Context, text string) models.Reply

	// Resolve runs recognition, extraction and the fan-out without formatting.
	//
	// It returns [shared.ErrUnrecognizedLink] when text carries no supported link and the extractor's error
	// when the link cannot be parsed.
	Resolve(ctx context.Context, text string, progress chan<- ProgressUpdate) (*Resolution, error)
}

// EngineOpts configures an [Engine]. Zero timeouts select the defaults.
type EngineOpts struct {
	Registry       *services.Registry
	Formatter      *formatter.Formatter
	Logger         *log.Logger
	ExtractTimeout time.Duration
	SearchTimeout  time.Duration
}

// Engine implements [Pipeline] over a [services.Registry].
type Engine struct {
	registry       *services.Registry
	formatter      *formatter.Formatter
	logger         *log.Logger
	extractTimeout time.Duration
	searchTimeout  time.Duration
}

// NewEngine creates a new Engine with the provided services.
func NewEngine(opts EngineOpts) *Engine {
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Formatter == nil {
		opts.Formatter = formatter.New(opts.Registry.Descriptors(), formatter.MarkdownV1)
	}
	if opts.ExtractTimeout <= 0 {
		opts.ExtractTimeout = DefaultExtractTimeout
	}
	if opts.SearchTimeout <= 0 {
		opts.SearchTimeout = DefaultSearchTimeout
	}

	return &Engine{
		registry:       opts.Registry,
		formatter:      opts.Formatter,
		logger:         shared.WithLogger(opts.Logger, "component", "pipeline"),
		extractTimeout: opts.ExtractTimeout,
		searchTimeout:  opts.SearchTimeout,
	}
}

// Formatter returns the formatter replies are rendered with.
func (e *Engine) Formatter() *formatter.Formatter {
	return e.formatter
}

// sendProgress sends a progress update through the channel without blocking.
func (e *Engine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

// Handle runs the pipeline for one inbound message.
func (e *Engine) Handle(ctx context.Context, text string) models.Reply {
	res, err := e.Resolve(ctx, text, nil)
	switch {
	case errors.Is(err, shared.ErrUnrecognizedLink):
		return models.Reply{Kind: models.ReplyInvalid, Text: InvalidMessage}
	case err != nil:
		return models.Reply{Kind: models.ReplyError, Text: ErrorMessage}
	}

	track := res.Track
	return models.Reply{
		Kind:    models.ReplyTrack,
		Text:    e.formatter.Format(track, res.Results),
		Plain:   e.formatter.Plain(track, res.Results),
		Track:   &track,
		Results: res.Results,
	}
}

// Resolve recognizes the link in text, extracts the track and searches every other registered service.
func (e *Engine) Resolve(ctx context.Context, text string, progress chan<- ProgressUpdate) (*Resolution, error) {
	start := time.Now()
	id := shared.GenerateID()
	logger := shared.WithLogger(e.logger, "request", id)

	origin, link, ok := e.registry.Recognize(text)
	if !ok {
		logger.Debug("no supported link in message")
		return nil, shared.ErrUnrecognizedLink
	}
	desc := origin.Descriptor()
	e.sendProgress(progress, recognizedUpdate(desc, link))
	logger.Info("link recognized", "service", desc.ID, "url", link)

	e.sendProgress(progress, extractingUpdate(desc))
	track, err := e.extract(ctx, origin, link)
	if err != nil {
		logger.Error("extraction failed", "service", desc.ID, "err", err, "duration", time.Since(start))
		return nil, err
	}
	e.sendProgress(progress, extractedUpdate(track))
	logger.Info("track extracted", "service", desc.ID, "title", track.Title, "performer", track.Performer,
		"duration", time.Since(start))

	results := e.fanOut(ctx, logger, origin, track, progress)

	res := &Resolution{RequestID: id, Track: track, Results: results, Duration: time.Since(start)}
	logger.Info("request resolved", "found", countFound(results), "searched", len(results), "duration", res.Duration)
	return res, nil
}

func (e *Engine) extract(ctx context.Context, svc services.Service, link string) (models.TrackReference, error) {
	callCtx, cancel := context.WithTimeout(ctx, e.extractTimeout)
	defer cancel()

	ref, err := svc.Extract(callCtx, link)
	if err != nil {
		return models.TrackReference{}, err
	}
	ref.Origin = svc.Descriptor().ID
	if ref.SourceURL == "" {
		ref.SourceURL = link
	}
	return ref, nil
}

type indexedResult struct {
	index  int
	result models.CrossServiceResult
}

// fanOut searches every service except origin concurrently and returns the results in table order.
func (e *Engine) fanOut(
	ctx context.Context,
	logger *log.Logger,
	origin services.Service,
	track models.TrackReference,
	progress chan<- ProgressUpdate,
) []models.CrossServiceResult {
	var targets []services.Service
	for _, svc := range e.registry.Services() {
		if svc.Descriptor().ID != origin.Descriptor().ID {
			targets = append(targets, svc)
		}
	}

	total := len(targets)
	out := make([]models.CrossServiceResult, total)
	resultsCh := make(chan indexedResult, total)
	e.sendProgress(progress, searchingUpdate(total))

	var wg sync.WaitGroup
	for i, svc := range targets {
		wg.Add(1)
		go func() {
			defer wg.Done()
			resultsCh <- indexedResult{index: i, result: e.search(ctx, logger, svc, track)}
		}()
	}

	go func() {
		wg.Wait()
		close(resultsCh)
	}()

	completed := 0
	for r := range resultsCh {
		completed++
		out[r.index] = r.result
		e.sendProgress(progress, searchedUpdate(completed, total, targets[r.index].Descriptor().DisplayName, r.result))
	}
	return out
}

// search runs one bounded search. Panics and deadline overruns become failed results.
func (e *Engine) search(
	ctx context.Context,
	logger *log.Logger,
	svc services.Service,
	track models.TrackReference,
) models.CrossServiceResult {
	id := svc.Descriptor().ID
	start := time.Now()
	callCtx, cancel := context.WithTimeout(ctx, e.searchTimeout)
	defer cancel()

	done := make(chan models.CrossServiceResult, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- models.CrossServiceResult{Service: id, Err: fmt.Sprintf("search panicked: %v", r)}
			}
		}()
		done <- svc.Search(callCtx, track.Title, track.Performer)
	}()

	var res models.CrossServiceResult
	select {
	case res = <-done:
	case <-callCtx.Done():
		res = models.CrossServiceResult{Err: fmt.Errorf("%w: %v", shared.ErrTimeout, callCtx.Err()).Error()}
	}

	res.Service = id
	if !res.Found() && res.Err == "" {
		res.Err = shared.ErrTrackNotFound.Error()
	}

	if res.Found() {
		logger.Debug("search finished", "service", id, "url", res.URL, "fallback", res.Fallback,
			"score", fmt.Sprintf("%.2f", res.Score), "duration", time.Since(start))
	} else {
		logger.Warn("search failed", "service", id, "err", res.Err, "duration", time.Since(start))
	}
	return res
}

func countFound(results []models.CrossServiceResult) int {
	n := 0
	for _, r := range results {
		if r.Found() {
			n++
		}
	}
	return n
}
