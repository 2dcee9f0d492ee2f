// Package oracle implements the nutrition oracle and the food identifier on
// top of the Google GenAI API. One client backs both: text mode for verdicts,
// vision mode for identifying food photos.
package oracle

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"google.golang.org/genai"

	"github.com/aeturnus/vitality-system/internal/core/domain"
)

const (
	defaultModel       = "gemini-2.5-flash"
	defaultVisionModel = "gemini-2.5-flash"
	defaultTimeout     = 60 * time.Second
)

// Config captures the settings for the GenAI-backed oracle.
type Config struct {
	APIKey      string
	Model       string
	VisionModel string
	Timeout     time.Duration
}

// Gemini implements ports.NutritionOracle and ports.FoodIdentifier.
// It holds no per-call state; every evaluation is a single upstream request
// with no retries.
type Gemini struct {
	client      *genai.Client
	model       string
	visionModel string
	timeout     time.Duration
	log         zerolog.Logger
}

// New creates the GenAI client and verifies the configuration.
func New(ctx context.Context, cfg Config, log zerolog.Logger) (*Gemini, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("oracle: API key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("oracle: create genai client: %w", err)
	}

	model := cfg.Model
	if model == "" {
		model = defaultModel
	}
	visionModel := cfg.VisionModel
	if visionModel == "" {
		visionModel = defaultVisionModel
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	return &Gemini{
		client:      client,
		model:       model,
		visionModel: visionModel,
		timeout:     timeout,
		log:         log,
	}, nil
}

// Evaluate asks the model for a dual-outcome verdict on one food, personalised
// to the player's dossier. The model reply is untrusted free text: it is
// fence-stripped, strictly decoded, and run through one defaulting pass so
// every verdict leaves here fully populated.
func (g *Gemini) Evaluate(ctx context.Context, foodName string, player *domain.Player) (*domain.ScanVerdict, error) {
	if foodName == "" {
		return nil, &domain.OracleError{Kind: domain.OracleMalformedResponse, Message: "empty food name"}
	}

	callCtx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	prompt := buildVerdictPrompt(foodName, player)

	resp, err := g.client.Models.GenerateContent(callCtx, g.model, genai.Text(prompt), &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
	})
	if err != nil {
		return nil, g.callError(ctx, err, "generate verdict")
	}

	raw := resp.Text()
	if raw == "" {
		return nil, &domain.OracleError{Kind: domain.OracleMalformedResponse, Message: "model returned empty response"}
	}

	verdict, err := parseVerdict(raw, foodName)
	if err != nil {
		g.log.Warn().Err(err).Str("food", foodName).Msg("unparseable oracle response")
		return nil, &domain.OracleError{Kind: domain.OracleMalformedResponse, Message: err.Error()}
	}

	return verdict, nil
}

// callError maps an upstream failure to the oracle taxonomy. A cancelled
// parent context wins over whatever the transport reported.
func (g *Gemini) callError(parent context.Context, err error, op string) error {
	if parent.Err() != nil {
		return &domain.OracleError{Kind: domain.OracleCancelled, Message: parent.Err().Error()}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return &domain.OracleError{Kind: domain.OracleUnreachable, Message: "model call timed out"}
	}
	return &domain.OracleError{Kind: domain.OracleUnreachable, Message: fmt.Sprintf("%s: %v", op, err)}
}
