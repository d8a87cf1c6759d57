// Package openai implements the text-generation port on top of an OpenAI-compatible
// chat completions API.
package openai

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	goopenai "github.com/sashabaranov/go-openai"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/time/rate"

	"github.com/yungbote/vorhaben-backend/internal/observability"
	"github.com/yungbote/vorhaben-backend/internal/pkg/httpx"
	"github.com/yungbote/vorhaben-backend/internal/platform/envutil"
	"github.com/yungbote/vorhaben-backend/internal/platform/logger"
	"github.com/yungbote/vorhaben-backend/internal/platform/promptstyle"
)

// Request is one completion call. JSONMode asks the provider for a single JSON object.
// Timeout bounds the whole call including retries; zero uses the client default.
type Request struct {
	System      string
	User        string
	JSONMode    bool
	Temperature *float64
	MaxTokens   int
	Timeout     time.Duration
	// NoRetry disables transport-level retries for callers that own their retry policy.
	NoRetry bool
	// Style selects the prompt guidance block: "json", "edit" or "" for free text.
	Style string
}

type Response struct {
	Text             string
	Model            string
	FinishReason     string
	PromptTokens     int
	CompletionTokens int
}

// Client is the text-generation port used by generation, editing and chat answering.
type Client interface {
	Complete(ctx context.Context, req Request) (Response, error)
}

type Config struct {
	APIKey              string
	BaseURL             string
	Model               string
	Timeout             time.Duration
	MaxRetries          int
	Temperature         *float64
	NoTemperatureModels string
	NoTemperatureTTL    time.Duration
	RequestsPerSecond   float64
	Burst               int
}

// ConfigFromEnv reads OPENAI_* variables. Temperature defaults to 0.2 and can be
// switched off with OPENAI_TEMPERATURE=off or OPENAI_DISABLE_TEMPERATURE=true.
func ConfigFromEnv() Config {
	cfg := Config{
		APIKey:              envutil.String("OPENAI_API_KEY", ""),
		BaseURL:             strings.TrimRight(envutil.String("OPENAI_BASE_URL", ""), "/"),
		Model:               envutil.String("OPENAI_MODEL", "gpt-4o"),
		Timeout:             envutil.Seconds("OPENAI_TIMEOUT_SECONDS", 180*time.Second),
		MaxRetries:          envutil.Int("OPENAI_MAX_RETRIES", 4),
		NoTemperatureModels: envutil.String("OPENAI_NO_TEMPERATURE_MODELS", ""),
		NoTemperatureTTL:    envutil.Seconds("OPENAI_NO_TEMPERATURE_TTL_SECONDS", 24*time.Hour),
		RequestsPerSecond:   envutil.Float("OPENAI_RPS", 0),
		Burst:               envutil.Int("OPENAI_BURST", 2),
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	raw := strings.ToLower(envutil.String("OPENAI_TEMPERATURE", ""))
	disabled := envutil.Bool("OPENAI_DISABLE_TEMPERATURE", false) ||
		raw == "off" || raw == "none" || raw == "nil" || raw == "false"
	if !disabled {
		t := envutil.Float("OPENAI_TEMPERATURE", 0.2)
		cfg.Temperature = &t
	}
	return cfg
}

type client struct {
	log        *logger.Logger
	api        *goopenai.Client
	model      string
	timeout    time.Duration
	maxRetries int
	limiter    *rate.Limiter

	temperature *float64
	noTemp      noTempRules

	noTempMu   sync.RWMutex
	noTempSeen map[string]time.Time
	noTempTTL  time.Duration
}

func NewClient(log *logger.Logger, cfg Config) (Client, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("missing OPENAI_API_KEY")
	}
	apiCfg := goopenai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		apiCfg.BaseURL = cfg.BaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 180 * time.Second
	}
	if strings.TrimSpace(cfg.Model) == "" {
		cfg.Model = "gpt-4o"
	}
	var limiter *rate.Limiter
	if cfg.RequestsPerSecond > 0 {
		burst := cfg.Burst
		if burst <= 0 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), burst)
	}
	return &client{
		log:         log.With("service", "OpenAIClient"),
		api:         goopenai.NewClientWithConfig(apiCfg),
		model:       cfg.Model,
		timeout:     cfg.Timeout,
		maxRetries:  cfg.MaxRetries,
		limiter:     limiter,
		temperature: cfg.Temperature,
		noTemp:      parseNoTempModelRules(cfg.NoTemperatureModels),
		noTempSeen:  map[string]time.Time{},
		noTempTTL:   cfg.NoTemperatureTTL,
	}, nil
}

func (c *client) Complete(ctx context.Context, req Request) (Response, error) {
	timeout := req.Timeout
	if timeout <= 0 {
		timeout = c.timeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	mode := "text"
	if req.JSONMode {
		mode = "json"
	}
	ctx, span := otel.Tracer("vorhaben/openai").Start(ctx, "openai.complete")
	span.SetAttributes(
		attribute.String("llm.model", c.model),
		attribute.String("llm.mode", mode),
		attribute.Int("llm.prompt_chars", len(req.System)+len(req.User)),
	)
	defer span.End()

	start := time.Now()
	resp, err := c.completeWithTempFallback(ctx, req)
	status := "ok"
	if err != nil {
		status = errorStatus(err)
		span.RecordError(err)
		span.SetStatus(codes.Error, status)
	}
	if m := observability.Current(); m != nil {
		m.ObserveLLMRequest(c.model, mode, status, time.Since(start), resp.PromptTokens, resp.CompletionTokens)
	}
	return resp, err
}

// completeWithTempFallback retries once without temperature when the model rejects it.
func (c *client) completeWithTempFallback(ctx context.Context, req Request) (Response, error) {
	chatReq := c.buildRequest(req)
	resp, err := c.doWithRetry(ctx, chatReq, req.NoRetry)
	if err == nil || chatReq.Temperature == 0 || !isUnsupportedTemperatureParam(err) {
		return resp, err
	}
	c.noteNoTempModel(chatReq.Model)
	chatReq.Temperature = 0
	return c.doWithRetry(ctx, chatReq, req.NoRetry)
}

func (c *client) buildRequest(req Request) goopenai.ChatCompletionRequest {
	style := req.Style
	if style == "" && req.JSONMode {
		style = "json"
	}
	out := goopenai.ChatCompletionRequest{
		Model: c.model,
		Messages: []goopenai.ChatCompletionMessage{
			{Role: goopenai.ChatMessageRoleSystem, Content: promptstyle.ApplySystem(req.System, style)},
			{Role: goopenai.ChatMessageRoleUser, Content: req.User},
		},
	}
	if req.JSONMode {
		out.ResponseFormat = &goopenai.ChatCompletionResponseFormat{Type: goopenai.ChatCompletionResponseFormatTypeJSONObject}
	}
	if req.MaxTokens > 0 {
		out.MaxCompletionTokens = req.MaxTokens
	}
	temp := c.temperature
	if req.Temperature != nil {
		temp = req.Temperature
	}
	if temp != nil && !c.modelIsNoTemp(out.Model) {
		out.Temperature = float32(*temp)
	}
	return out
}

func (c *client) doWithRetry(ctx context.Context, chatReq goopenai.ChatCompletionRequest, noRetry bool) (Response, error) {
	maxRetries := c.maxRetries
	if noRetry {
		maxRetries = 0
	}
	backoff := 1 * time.Second
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return Response{}, err
		}
		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				return Response{}, err
			}
		}
		resp, err := c.api.CreateChatCompletion(ctx, chatReq)
		if err == nil {
			return toResponse(resp)
		}
		err = wrapStatus(err)
		if !httpx.IsRetryableError(err) || attempt == maxRetries || ctx.Err() != nil {
			return Response{}, err
		}

		sleepFor := httpx.JitterSleep(backoff)
		c.log.Warn("OpenAI request retrying",
			"model", chatReq.Model,
			"attempt", attempt+1,
			"max_retries", maxRetries,
			"sleep", sleepFor.String(),
			"error", err.Error(),
		)
		if err := httpx.Sleep(ctx, sleepFor); err != nil {
			return Response{}, err
		}
		backoff = httpx.NextBackoff(backoff, 10*time.Second)
	}
	return Response{}, fmt.Errorf("unreachable retry loop")
}

func toResponse(resp goopenai.ChatCompletionResponse) (Response, error) {
	if len(resp.Choices) == 0 {
		return Response{}, errors.New("openai returned no choices")
	}
	choice := resp.Choices[0]
	return Response{
		Text:             choice.Message.Content,
		Model:            resp.Model,
		FinishReason:     string(choice.FinishReason),
		PromptTokens:     resp.Usage.PromptTokens,
		CompletionTokens: resp.Usage.CompletionTokens,
	}, nil
}
