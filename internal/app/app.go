// Package app is the method surface exposed to the UI host. Every method
// returns a value the host can render directly; failures are reported in the
// result rather than as Go errors.
package app

import (
	"context"

	"go.uber.org/zap"

	"github.com/kiassist/kiassist/internal/kicad"
	"github.com/kiassist/kiassist/internal/llm"
	"github.com/kiassist/kiassist/internal/logging"
	"github.com/kiassist/kiassist/internal/recent"
	"github.com/kiassist/kiassist/internal/wizard"
)

// Credentials stores the Gemini API key.
type Credentials interface {
	Get() (string, bool)
	Has() bool
	Set(secret string) (warning string, err error)
	Clear()
}

// Detector finds running KiCad instances.
type Detector interface {
	Detect() []kicad.Instance
}

// Options wires an App. Agent defaults to the built-in prompt and Model to
// llm.DefaultAlias.
type Options struct {
	Credentials Credentials
	Detector    Detector
	Recent      *recent.Ledger
	NewSender   llm.SenderFunc
	Agent       *wizard.Agent
	Model       string
	Logger      *zap.Logger
}

type App struct {
	creds     Credentials
	detector  Detector
	recent    *recent.Ledger
	newSender llm.SenderFunc
	agent     wizard.Agent
	prompts   *wizard.Builder
	model     string
	logger    *zap.Logger
}

func New(opts Options) *App {
	a := &App{
		creds:     opts.Credentials,
		detector:  opts.Detector,
		recent:    opts.Recent,
		newSender: opts.NewSender,
		model:     opts.Model,
		logger:    logging.OrNop(opts.Logger),
	}
	if opts.Agent != nil {
		a.agent = *opts.Agent
	} else {
		a.agent = wizard.FallbackAgent()
	}
	if a.model == "" {
		a.model = llm.DefaultAlias
	}
	if a.newSender == nil {
		a.newSender = llm.NewSenderFunc(a.logger)
	}
	a.prompts = wizard.NewBuilder(a.agent.Prompt)
	return a
}

// Result is the common success/error envelope.
type Result struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

func ok() Result { return Result{Success: true} }

func fail(msg string) Result { return Result{Error: msg} }

// Echo returns message prefixed with "Echo: ".
func (a *App) Echo(message string) string {
	return "Echo: " + message
}

// DetectInstances probes every KiCad socket. It never returns nil.
func (a *App) DetectInstances() []kicad.Instance {
	if a.detector == nil {
		return []kicad.Instance{}
	}
	return a.detector.Detect()
}

// send resolves the key and a model and sends prompt. Errors are ready for
// display.
func (a *App) send(ctx context.Context, prompt, model string) (string, string) {
	key, found := a.creds.Get()
	if !found {
		return "", ErrAPIKeyNotConfigured
	}
	if model == "" {
		model = a.model
	}

	sender, err := a.newSender(ctx, key)
	if err != nil {
		a.logger.Warn("could not create LLM client", zap.Error(err))
		return "", "gemini API error: " + err.Error()
	}
	text, err := sender.Send(ctx, prompt, model)
	if err != nil {
		a.logger.Warn("LLM request failed", zap.String("model", model), zap.Error(err))
		return "", err.Error()
	}
	return text, ""
}

// ErrAPIKeyNotConfigured is reported when an LLM call is made without a key.
const ErrAPIKeyNotConfigured = "API key not configured"
