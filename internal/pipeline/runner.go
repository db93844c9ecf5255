package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"strings"
	"time"

	"github.com/google/uuid"

	"dealflow/internal/config"
	"dealflow/internal/extraction"
	"dealflow/internal/interview"
	"dealflow/internal/logging"
	"dealflow/internal/mapping"
	"dealflow/internal/memo"
	"dealflow/internal/scoring"
	"dealflow/internal/services"
	"dealflow/internal/services/llm"
	"dealflow/internal/services/publicdata"
	"dealflow/internal/startup"
	"dealflow/internal/store"
	"dealflow/internal/verification"
)

// ErrPanic marks a phase that panicked.
var ErrPanic = errors.New("phase panicked")

// PhaseResult records the outcome of one phase.
type PhaseResult struct {
	Name     string        `json:"phase"`
	Success  bool          `json:"success"`
	Optional bool          `json:"optional,omitempty"`
	Error    string        `json:"error,omitempty"`
	Duration time.Duration `json:"duration_ns"`

	err error
}

// Result is the outcome of one evaluation. A failed run carries the outputs
// of every phase that completed in Partial.
type Result struct {
	EvaluationID   string            `json:"evaluation_id"`
	Source         extraction.Source `json:"source,omitempty"`
	Company        string            `json:"company,omitempty"`
	Success        bool              `json:"success"`
	Error          string            `json:"error,omitempty"`
	Phases         []PhaseResult     `json:"phases"`
	AgentsExecuted []string          `json:"agents_executed"`
	Partial        map[string]any    `json:"partial_results,omitempty"`
	Memo           *startup.Memo     `json:"memo,omitempty"`
	DealNote       string            `json:"deal_note,omitempty"`

	// State is the final phase record, kept for callers that want the
	// intermediate outputs of a successful run.
	State State `json:"-"`
	Err   error `json:"-"`
}

// Status maps the result onto the persisted evaluation status.
func (r Result) Status() store.Status {
	if r.Success {
		return store.StatusCompleted
	}
	return services.FailureStatus(r.Err)
}

// Phase returns the recorded result for name.
func (r Result) Phase(name string) (PhaseResult, bool) {
	for _, p := range r.Phases {
		if p.Name == name {
			return p, true
		}
	}
	return PhaseResult{}, false
}

// Option customizes a Runner.
type Option func(*options)

type options struct {
	gen         llm.TextGenerator
	source      publicdata.Source
	extractor   extraction.Extractor
	interviewer interview.Interviewer
	estimator   scoring.Estimator
	now         func() time.Time
	prefs       *startup.InvestorPreferences
}

// WithGenerator replaces the text generator built from config.
func WithGenerator(gen llm.TextGenerator) Option {
	return func(o *options) { o.gen = gen }
}

// WithPublicData replaces the configured public data source.
func WithPublicData(src publicdata.Source) Option {
	return func(o *options) { o.source = src }
}

// WithExtractor replaces the document extractor.
func WithExtractor(ex extraction.Extractor) Option {
	return func(o *options) { o.extractor = ex }
}

// WithInterviewer replaces the interviewer.
func WithInterviewer(i interview.Interviewer) Option {
	return func(o *options) { o.interviewer = i }
}

// WithEstimator replaces the founder fit and differentiation estimator.
func WithEstimator(est scoring.Estimator) Option {
	return func(o *options) { o.estimator = est }
}

// WithClock overrides the time source used for memo and interview timestamps.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// WithPreferences overrides the configured investor preferences.
func WithPreferences(prefs startup.InvestorPreferences) Option {
	return func(o *options) { o.prefs = &prefs }
}

// Runner sequences the evaluation phases.
type Runner struct {
	logger       *slog.Logger
	phases       []Phase
	prefs        startup.InvestorPreferences
	phaseTimeout time.Duration
}

// New wires the default collaborators from cfg. Text generation is disabled
// when no API key is configured, and every collaborator then uses its
// deterministic fallback.
func New(cfg *config.Config, logger *slog.Logger, opts ...Option) *Runner {
	if cfg == nil {
		def := config.Default()
		cfg = &def
	}
	o := options{}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	if o.now == nil {
		o.now = time.Now
	}
	if o.gen == nil {
		o.gen = llm.New(cfg.GetLLM())
	}
	callTimeout := time.Duration(cfg.LLM.TimeoutSeconds) * time.Second
	if o.estimator == nil {
		o.estimator = scoring.NewAIEstimator(o.gen, callTimeout, logger)
	}
	if o.source == nil {
		o.source = publicdata.New(cfg.PublicData)
	}
	if o.extractor == nil {
		o.extractor = extraction.New(o.gen, callTimeout, logger)
	}
	if o.interviewer == nil {
		o.interviewer = interview.NewInterviewer(o.gen, callTimeout, logger)
	}
	prefs := cfg.Preferences()
	if o.prefs != nil {
		prefs = *o.prefs
	}

	phases := []Phase{
		extractionPhase{extractor: o.extractor},
		publicDataPhase{
			source:     o.source,
			mapper:     mapping.New(o.estimator, logger),
			comparator: verification.New(o.gen, callTimeout, logger),
			logger:     logging.NewComponentLogger(logger, "pipeline"),
		},
		analysisPhase{estimator: o.estimator, now: o.now},
	}
	if cfg.Interview.Enabled && !cfg.Pipeline.SkipInterview {
		phases = append(phases, interviewPhase{
			scheduler:   interview.NewScheduler(cfg.Interview, cfg.InterviewLocation(), interview.WithClock(o.now)),
			interviewer: o.interviewer,
		})
	}
	phases = append(phases, refinementPhase{refiner: memo.NewRefiner(o.gen, callTimeout, logger)})

	return &Runner{
		logger:       logging.NewComponentLogger(logger, "pipeline"),
		phases:       phases,
		prefs:        prefs,
		phaseTimeout: cfg.PhaseTimeout(),
	}
}

// PhaseNames lists the configured phases in execution order.
func (r *Runner) PhaseNames() []string {
	names := make([]string, 0, len(r.phases))
	for _, p := range r.phases {
		names = append(names, p.Name())
	}
	return names
}

// Evaluate runs every phase for in. It never panics and never returns a
// raw phase error; failures are described by the Result.
func (r *Runner) Evaluate(ctx context.Context, in extraction.Input) Result {
	if ctx == nil {
		ctx = context.Background()
	}
	id := uuid.NewString()
	ctx = services.WithEvaluationID(ctx, id)
	logger := logging.WithContext(ctx, r.logger)

	state := State{EvaluationID: id, Input: in, Preferences: r.prefs}
	result := Result{EvaluationID: id, Source: in.Source()}
	logger.Info("evaluation started",
		logging.String(logging.FieldEventType, "evaluation_start"),
		logging.String("source", string(in.Source())),
		logging.String("input", in.Label()),
	)

	for _, phase := range r.phases {
		out, pr := r.runPhase(ctx, phase, state)
		result.Phases = append(result.Phases, pr)
		result.AgentsExecuted = append(result.AgentsExecuted, pr.Name)
		if pr.Success {
			state = out.apply(state)
			continue
		}
		if phase.Optional() {
			continue
		}

		result.State = state
		result.Company = state.CompanyName()
		result.Err = pr.err
		result.Error = pr.Error
		result.Partial = partialResults(state, result.Phases)
		logging.ErrorWithContext(logger, "evaluation failed", "evaluation_failure",
			logging.String("failed_phase", pr.Name),
			logging.String("error_message", pr.Error),
			logging.String(logging.FieldErrorHint, errorHint(pr.err)),
		)
		return result
	}

	memoOut, _ := state.FinalMemo()
	result.Success = true
	result.State = state
	result.Company = memoOut.Profile.CompanyName
	result.Memo = &memoOut
	if state.Refinement != nil {
		result.DealNote = state.Refinement.DealNote
	} else {
		result.DealNote = memo.DealNote(memoOut)
	}
	logger.Info("evaluation completed",
		logging.String(logging.FieldEventType, "evaluation_complete"),
		logging.String("company", memoOut.Profile.CompanyName),
		logging.Float64("investment_score", memoOut.InvestmentScore),
		logging.String("recommendation", memoOut.Recommendation),
	)
	return result
}

func (r *Runner) runPhase(ctx context.Context, phase Phase, st State) (Output, PhaseResult) {
	name := phase.Name()
	phaseCtx := services.WithPhase(ctx, name)
	logger := logging.WithContext(phaseCtx, r.logger)
	pr := PhaseResult{Name: name, Optional: phase.Optional()}

	logger.Info("phase started", logging.String(logging.FieldEventType, "phase_start"))
	start := time.Now()
	out, err := r.invoke(phaseCtx, phase, st)
	pr.Duration = time.Since(start)
	if err == nil && out == nil {
		err = services.Wrap(services.ErrExternalTool, name, "run", "phase produced no output", nil)
	}
	if err != nil {
		pr.err = err
		pr.Error = strings.TrimSpace(err.Error())
		attrs := []logging.Attr{
			logging.String(logging.FieldEventType, "phase_failure"),
			logging.Bool("optional", pr.Optional),
			logging.Duration("phase_duration", pr.Duration),
			logging.Error(err),
		}
		if pr.Optional {
			logging.WarnWithContext(logger, "phase failed", "phase_failure",
				append(attrs,
					logging.String(logging.FieldErrorHint, errorHint(err)),
					logging.String(logging.FieldImpact, "evaluation continued without "+name+" output"),
				)...)
		} else {
			logging.ErrorWithContext(logger, "phase failed", "phase_failure",
				append(attrs, logging.String(logging.FieldErrorHint, errorHint(err)))...)
		}
		return nil, pr
	}

	pr.Success = true
	logger.Info("phase completed",
		logging.String(logging.FieldEventType, "phase_complete"),
		logging.Duration("phase_duration", pr.Duration),
	)
	return out, pr
}

func (r *Runner) invoke(ctx context.Context, phase Phase, st State) (out Output, err error) {
	if r.phaseTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.phaseTimeout)
		defer cancel()
	}
	defer func() {
		if rec := recover(); rec != nil {
			logging.WithContext(ctx, r.logger).Debug("phase panic recovered",
				logging.String("panic", fmt.Sprint(rec)),
				logging.String("stack", string(debug.Stack())),
			)
			out = nil
			err = services.Wrap(ErrPanic, phase.Name(), "run", fmt.Sprint(rec), nil)
		}
	}()
	return phase.Run(ctx, st)
}

func partialResults(st State, phases []PhaseResult) map[string]any {
	out := make(map[string]any)
	for _, p := range phases {
		if !p.Success {
			continue
		}
		if payload := st.payload(p.Name); payload != nil {
			out[p.Name] = payload
		}
	}
	return out
}

func errorHint(err error) string {
	switch {
	case errors.Is(err, services.ErrValidation):
		return "check the submitted pitch material"
	case errors.Is(err, services.ErrNotFound):
		return "check the input file path"
	case errors.Is(err, services.ErrUnavailable):
		return "configure llm.api_key to enable model-backed steps"
	case errors.Is(err, services.ErrTimeout):
		return "raise pipeline.phase_timeout_seconds or llm.timeout_seconds"
	case errors.Is(err, ErrPanic):
		return "report the panic with debug logs attached"
	default:
		return "check logs for details"
	}
}
