package oracle

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/aeturnus/vitality-system/internal/core/domain"
)

// allowedImageTypes is the identification upload allow-list.
var allowedImageTypes = map[string]struct{}{
	"image/jpeg": {},
	"image/png":  {},
	"image/webp": {},
	"image/gif":  {},
}

type rawIdentification struct {
	FoodName   string `json:"food_name"`
	Confidence string `json:"confidence"`
}

// Identify resolves a food photo to a name plus a coarse confidence tier. The
// vision model exposes no calibrated probability, so its self-reported tier is
// passed through (unknown values degrade to low). Upstream failure is
// surfaced, never papered over with a guess.
func (g *Gemini) Identify(ctx context.Context, image []byte, mimeType string) (*domain.IdentifiedFood, error) {
	if _, ok := allowedImageTypes[mimeType]; !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnsupportedImageType, mimeType)
	}
	if len(image) == 0 {
		return nil, fmt.Errorf("%w: empty payload", domain.ErrUnsupportedImageType)
	}
	if len(image) > domain.MaxImageBytes {
		return nil, fmt.Errorf("%w: %d bytes", domain.ErrImageTooLarge, len(image))
	}

	callCtx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{
			genai.NewPartFromBytes(image, mimeType),
			genai.NewPartFromText(identifyPrompt),
		}, genai.RoleUser),
	}

	resp, err := g.client.Models.GenerateContent(callCtx, g.visionModel, contents, &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
	})
	if err != nil {
		if ctx.Err() != nil {
			return nil, &domain.OracleError{Kind: domain.OracleCancelled, Message: ctx.Err().Error()}
		}
		return nil, identifyError(err)
	}

	raw := resp.Text()
	if raw == "" {
		return nil, &domain.IdentifyError{Message: "vision model returned empty response"}
	}

	var rid rawIdentification
	if err := json.Unmarshal([]byte(stripFences(raw)), &rid); err != nil {
		return nil, &domain.IdentifyError{Message: fmt.Sprintf("unparseable identification: %v", err)}
	}
	if rid.FoodName == "" {
		return nil, &domain.IdentifyError{Message: "no food recognized in image"}
	}

	g.log.Debug().Str("food", rid.FoodName).Str("confidence", rid.Confidence).Msg("food identified")

	return &domain.IdentifiedFood{
		Name:       rid.FoodName,
		Confidence: parseConfidence(rid.Confidence),
	}, nil
}

func parseConfidence(s string) domain.ConfidenceTier {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "high":
		return domain.ConfidenceHigh
	case "medium":
		return domain.ConfidenceMedium
	default:
		return domain.ConfidenceLow
	}
}

// identifyError carries the upstream HTTP status through when the SDK
// reports one.
func identifyError(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return &domain.IdentifyError{Status: apiErr.Code, Message: apiErr.Message}
	}
	return &domain.IdentifyError{Message: err.Error()}
}
