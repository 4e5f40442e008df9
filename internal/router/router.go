package router

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/upb/chat-edge/internal/observability"
	"github.com/upb/chat-edge/internal/providers"
	"go.uber.org/zap"
)

// Request outcomes recorded in metrics
const (
	OutcomeSuccess   = "success"
	OutcomeFatal     = "fatal"
	OutcomeExhausted = "exhausted"
)

// AdapterLookup finds the wire adapter for a protocol
type AdapterLookup interface {
	Get(protocol providers.Protocol) (providers.Adapter, bool)
}

// Adapters is an AdapterLookup backed by a map
type Adapters map[providers.Protocol]providers.Adapter

// NewAdapters indexes adapters by protocol; a later adapter replaces an
// earlier one with the same protocol.
func NewAdapters(adapters ...providers.Adapter) Adapters {
	out := make(Adapters, len(adapters))
	for _, a := range adapters {
		out[a.Protocol()] = a
	}
	return out
}

// Get implements AdapterLookup
func (a Adapters) Get(protocol providers.Protocol) (providers.Adapter, bool) {
	adapter, ok := a[protocol]
	return adapter, ok
}

// Router resolves candidates for a chat request and walks them until one
// succeeds or the fallback policy gives up
type Router struct {
	table    ProviderTable
	adapters AdapterLookup
	pick     Picker
	logger   observability.Logger
	metrics  observability.Metrics
}

// Option configures a Router
type Option func(*Router)

// WithPicker overrides the random source used for auto requests
func WithPicker(p Picker) Option {
	return func(r *Router) {
		if p != nil {
			r.pick = p
		}
	}
}

// WithLogger sets the logger
func WithLogger(l observability.Logger) Option {
	return func(r *Router) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithMetrics sets the metrics sink
func WithMetrics(m observability.Metrics) Option {
	return func(r *Router) {
		if m != nil {
			r.metrics = m
		}
	}
}

// New creates a router. The table is copied so later changes by the caller
// are not observed. A nil lookup means no adapters.
func New(table ProviderTable, adapters AdapterLookup, opts ...Option) *Router {
	if adapters == nil {
		adapters = Adapters{}
	}
	r := &Router{
		table:    make(ProviderTable, len(table)),
		adapters: adapters,
		pick:     RandomPicker,
		logger:   observability.NewLogger(nil),
		metrics:  observability.NopMetrics{},
	}
	for name, spec := range table {
		r.table[name] = spec
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Route produces exactly one reply for req. Cancelling ctx does not abort
// in-flight upstream calls; its values (request ID) still flow.
func (r *Router) Route(ctx context.Context, req *ChatRequest) Reply {
	ctx = context.WithoutCancel(ctx)

	requested := Requested(req.Chatbot)
	auto := requested == ModeAuto
	mode := "pinned"
	if auto {
		mode = ModeAuto
	}

	candidates := Candidates(requested, req.ClientChosen, r.pick)

	r.logger.Info(ctx, "start request",
		zap.String("requested", requested),
		zap.String("initial", string(candidates[0])),
		zap.Strings("candidates", names(candidates)),
		zap.String("client_chosen", req.ClientChosen))

	var last *Failure
	for _, candidate := range candidates {
		out := r.attempt(ctx, candidate, req, auto)

		switch out.kind {
		case outcomeSuccess:
			r.metrics.RecordRequest(ctx, observability.RequestLabels{Mode: mode, Outcome: OutcomeSuccess})
			return out.reply
		case outcomeFatal:
			r.metrics.RecordRequest(ctx, observability.RequestLabels{Mode: mode, Outcome: OutcomeFatal})
			return out.reply
		}
		last = out.failure
	}

	fields := []zap.Field{zap.Strings("candidates", names(candidates))}
	if last != nil {
		fields = append(fields,
			zap.String("last_candidate", string(last.Candidate)),
			zap.String("last_kind", last.Kind),
			zap.String("last_error", last.Message))
	}
	r.logger.Error(ctx, "all models failed", fields...)
	r.metrics.RecordRequest(ctx, observability.RequestLabels{Mode: mode, Outcome: OutcomeExhausted})

	return errorReply(http.StatusBadGateway, errorEnvelope{Error: msgAllFailed})
}

// attempt runs a single candidate. In pinned mode every failure is fatal;
// in auto mode it is skipped.
func (r *Router) attempt(ctx context.Context, candidate ProviderName, req *ChatRequest, auto bool) outcome {
	spec, known := r.table[candidate]
	model := req.Model
	if model == "" {
		model = spec.DefaultModel
	}

	r.logger.Info(ctx, "attempt",
		zap.String("trying", string(candidate)),
		zap.String("protocol", string(spec.Protocol)),
		zap.String("model", model),
		zap.Bool("has_key", known && spec.APIKey != ""))

	fail := func(f *Failure) outcome {
		r.metrics.RecordAttempt(ctx, observability.AttemptLabels{
			Provider: string(candidate),
			Protocol: string(spec.Protocol),
			Outcome:  f.Kind,
		})
		if auto {
			return skip(f)
		}
		return fatal(f)
	}

	if !known || spec.APIKey == "" {
		f := keyMissing(candidate)
		r.logger.Warn(ctx, "skip", zap.String("candidate", string(candidate)), zap.String("error", f.Message))
		return fail(f)
	}

	adapter, ok := r.adapters.Get(spec.Protocol)
	if !ok {
		f := &Failure{
			Kind:      FailureTransport,
			Candidate: candidate,
			Message:   fmt.Sprintf("no adapter for protocol %q", spec.Protocol),
		}
		r.logger.Error(ctx, "request error", zap.String("candidate", string(candidate)), zap.String("error", f.Message))
		return fail(f)
	}

	labels := observability.AttemptLabels{Provider: string(candidate), Protocol: string(spec.Protocol)}
	start := time.Now()
	completion, err := adapter.ChatCompletion(ctx, &providers.ChatRequest{
		APIKey:   spec.APIKey,
		Model:    model,
		Messages: req.Messages,
	})
	r.metrics.RecordUpstreamLatency(ctx, time.Since(start).Seconds(), labels)

	if err != nil {
		f := classify(candidate, adapter.DisplayName(), err)
		r.logFailure(ctx, f)
		return fail(f)
	}

	r.logger.Info(ctx, "attempt result",
		zap.String("candidate", string(candidate)),
		zap.Int("status", completion.StatusCode),
		zap.Int("len", completion.UpstreamBytes))

	labels.Outcome = OutcomeSuccess
	r.metrics.RecordAttempt(ctx, labels)

	return success(Reply{
		Status:         completion.StatusCode,
		Body:           completion.Body,
		AllowAnyOrigin: true,
	})
}

func (r *Router) logFailure(ctx context.Context, f *Failure) {
	switch f.Kind {
	case FailureStatus:
		r.logger.Info(ctx, "attempt result",
			zap.String("candidate", string(f.Candidate)),
			zap.Int("status", f.StatusCode),
			zap.Int("len", len(f.Body)))
		r.logger.Warn(ctx, "model error",
			zap.String("candidate", string(f.Candidate)),
			zap.String("provider", f.Provider),
			zap.Int("status", f.StatusCode),
			zap.String("body", truncate(string(f.Body), detailMaxRunes)))
	case FailureDecode:
		r.logger.Info(ctx, "attempt result",
			zap.String("candidate", string(f.Candidate)),
			zap.Int("status", f.StatusCode),
			zap.Int("len", len(f.Body)))
		r.logger.Error(ctx, "parse error",
			zap.String("candidate", string(f.Candidate)),
			zap.String("error", f.Message),
			zap.String("detail", truncate(string(f.Body), detailMaxRunes)))
	default:
		r.logger.Error(ctx, "request error",
			zap.String("candidate", string(f.Candidate)),
			zap.String("error", f.Message))
	}
}

func names(candidates []ProviderName) []string {
	out := make([]string, len(candidates))
	for i, c := range candidates {
		out[i] = string(c)
	}
	return out
}
