// -----------------------------------------------------------------------
// Assembly Service - normalise, extract, sample, highlight, cover, merge
// -----------------------------------------------------------------------

package assembly

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"
	"unicode/utf8"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/docmark/internal/common"
	"github.com/ternarybob/docmark/internal/interfaces"
	"github.com/ternarybob/docmark/internal/models"
	"github.com/ternarybob/docmark/internal/services/delivery"
)

// Stage names reported in PipelineError.Stage and in logs
const (
	StageNormalize = "normalize"
	StageExtract   = "extract"
	StageSample    = "sample"
	StageHighlight = "highlight"
	StageInspect   = "inspect"
	StageCover     = "cover"
	StageMerge     = "merge"
)

// PercentageKey is the cover parameter carrying the resolved highlight percentage
const PercentageKey = "highlight"

// Options controls pipeline behaviour that is not owned by the engine
type Options struct {
	UseReflowLayout bool
	FilenamePrefix  string
	Extension       string
}

// OptionsFromConfig maps [layout] and [delivery] onto Options
func OptionsFromConfig(cfg *common.Config) Options {
	return Options{
		UseReflowLayout: cfg.Layout.UseReflowLayout,
		FilenamePrefix:  cfg.Delivery.FilenamePrefix,
		Extension:       cfg.Delivery.Extension,
	}
}

// Service implements interfaces.AssemblyService
type Service struct {
	engine  interfaces.DocumentEngine
	sampler interfaces.HighlightSampler
	cover   interfaces.CoverService
	opts    Options
	logger  arbor.ILogger
	newRand func() models.IntN
}

// Compile-time assertion
var _ interfaces.AssemblyService = (*Service)(nil)

// ServiceOption configures the Service
type ServiceOption func(*Service)

// WithRandSource replaces the per-request random source factory
func WithRandSource(factory func() models.IntN) ServiceOption {
	return func(s *Service) {
		s.newRand = factory
	}
}

// NewService creates a new assembly service
func NewService(
	engine interfaces.DocumentEngine,
	sampler interfaces.HighlightSampler,
	cover interfaces.CoverService,
	opts Options,
	logger arbor.ILogger,
	serviceOpts ...ServiceOption,
) *Service {
	s := &Service{
		engine:  engine,
		sampler: sampler,
		cover:   cover,
		opts:    opts,
		logger:  logger,
		newRand: func() models.IntN {
			return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
		},
	}
	for _, opt := range serviceOpts {
		opt(s)
	}
	return s
}

// Assemble runs every stage in order for one submission. Each stage runs
// panic-guarded and is abandoned when ctx is done. Any error aborts the
// pipeline with no partial output.
func (s *Service) Assemble(ctx context.Context, req models.AssembleRequest) (*models.Artifact, error) {
	if req.RequestID == "" {
		req.RequestID = common.NewRequestID()
	}
	logger := s.logger.WithCorrelationId(req.RequestID)
	rng := s.newRand()
	started := time.Now()

	logger.Info().
		Str("filename", req.Document.Filename).
		Str("kind", string(req.Document.Kind)).
		Int("bytes", len(req.Document.Data)).
		Str("percentage", req.Percentage.String()).
		Msg("Assembly started")

	normalized, err := runStage(ctx, logger, StageNormalize, func() (*models.NormalizedDocument, error) {
		return s.engine.Normalize(ctx, req.Document)
	})
	if err != nil {
		return nil, s.fail(logger, StageNormalize, err)
	}

	fragments, err := runStage(ctx, logger, StageExtract, func() ([]models.Fragment, error) {
		if s.opts.UseReflowLayout && normalized.Reflowed {
			return normalized.Layout, nil
		}
		return s.engine.ExtractLayout(ctx, normalized.Data)
	})
	if err != nil {
		return nil, s.fail(logger, StageExtract, err)
	}

	percentage := req.Percentage.Resolve(rng)
	selection, err := runStage(ctx, logger, StageSample, func() (models.Selection, error) {
		return s.sampler.Select(fragments, percentage, rng), nil
	})
	if err != nil {
		return nil, s.fail(logger, StageSample, err)
	}
	logger.Debug().
		Int("fragments", len(fragments)).
		Int("percentage", percentage).
		Int("total_words", selection.Stats.TotalWords).
		Int("target_words", selection.Stats.TargetWords).
		Int("selected_words", selection.Stats.SelectedWords).
		Int("selected_chunks", selection.Stats.SelectedChunks).
		Msg("Selected fragments")

	highlighted, err := runStage(ctx, logger, StageHighlight, func() (models.HighlightResult, error) {
		return s.engine.DrawHighlights(ctx, normalized.Data, selection.Fragments), nil
	})
	if err != nil {
		return nil, s.fail(logger, StageHighlight, err)
	}
	if highlighted.Status == models.HighlightUnchanged && !selection.Empty() {
		logger.Warn().Str("reason", highlighted.Reason).Msg("Highlighting skipped, continuing with original body")
	}

	body, err := runStage(ctx, logger, StageInspect, func() (*models.DocumentInfo, error) {
		return s.engine.Inspect(ctx, highlighted.Data)
	})
	if err != nil {
		return nil, s.fail(logger, StageInspect, err)
	}

	text := models.JoinText(fragments)
	coverReq := models.CoverRequest{
		Title:       req.Title,
		Filename:    req.Document.Filename,
		WordCount:   models.CountWords(text),
		CharCount:   utf8.RuneCountInString(text),
		Percentages: map[string]int{PercentageKey: percentage},
		FileSize:    int64(len(req.Document.Data)),
		PageCount:   body.PageCount,
	}
	if coverReq.Title == "" {
		coverReq.Title = req.Document.BaseName()
	}
	for name, value := range req.ExtraPercentages {
		if name != PercentageKey {
			coverReq.Percentages[name] = value
		}
	}

	coverPDF, err := runStage(ctx, logger, StageCover, func() ([]byte, error) {
		return s.cover.RenderCover(ctx, coverReq)
	})
	if err != nil {
		return nil, s.fail(logger, StageCover, err)
	}

	merged, err := runStage(ctx, logger, StageMerge, func() ([]byte, error) {
		return s.engine.CopyPages(ctx, coverPDF, highlighted.Data)
	})
	if err != nil {
		return nil, s.fail(logger, StageMerge, err)
	}

	final, err := runStage(ctx, logger, StageInspect, func() (*models.DocumentInfo, error) {
		return s.engine.Inspect(ctx, merged)
	})
	if err != nil {
		return nil, s.fail(logger, StageMerge, err)
	}

	artifact := &models.Artifact{
		RequestID:   req.RequestID,
		Filename:    delivery.OutputFilename(s.opts.FilenamePrefix, req.Document.Filename, s.opts.Extension),
		ContentType: "application/pdf",
		Data:        merged,
		PageCount:   final.PageCount,
		CoverPages:  final.PageCount - body.PageCount,
		BodyPages:   body.PageCount,
		Highlight:   highlighted,
		Selection:   selection.Stats,
	}
	artifact.Highlight.Data = nil

	logger.Info().
		Str("output", artifact.Filename).
		Int("pages", artifact.PageCount).
		Int("cover_pages", artifact.CoverPages).
		Int("body_pages", artifact.BodyPages).
		Str("highlight", string(highlighted.Status)).
		Int("highlights", highlighted.Drawn).
		Dur("duration", time.Since(started)).
		Msg("Assembly completed")

	return artifact, nil
}

func runStage[T any](ctx context.Context, logger arbor.ILogger, stage string, fn func() (T, error)) (T, error) {
	start := time.Now()
	v, err := common.RunGuarded(ctx, logger, stage, fn)
	if err == nil {
		logger.Trace().Str("stage", stage).Dur("duration", time.Since(start)).Msg("Stage finished")
	}
	return v, err
}

// fail classifies err and logs it. Cancellation passes through unchanged.
func (s *Service) fail(logger arbor.ILogger, stage string, err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		logger.Warn().Str("stage", stage).Err(err).Msg("Assembly abandoned")
		return err
	}

	kind := defaultKind(stage)
	for _, k := range []error{models.ErrUnsupportedFormat, models.ErrMalformedDocument, models.ErrDependencyFailure} {
		if errors.Is(err, k) {
			kind = k
			break
		}
	}

	var panicErr *common.PanicError
	if errors.As(err, &panicErr) {
		err = fmt.Errorf("internal error in %s", stage)
	}

	logger.Error().Str("stage", stage).Str("kind", kind.Error()).Err(err).Msg("Assembly failed")
	return models.NewPipelineError(kind, stage, err)
}

func defaultKind(stage string) error {
	if stage == StageCover {
		return models.ErrDependencyFailure
	}
	return models.ErrMalformedDocument
}
