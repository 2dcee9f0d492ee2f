package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/aeturnus/vitality-system/internal/api/metrics"
	"github.com/aeturnus/vitality-system/internal/core/domain"
	"github.com/aeturnus/vitality-system/internal/core/ports"
)

// ScanHandler handles HTTP requests for the scan-to-reward flow.
type ScanHandler struct {
	service ports.ScanService
}

func NewScanHandler(service ports.ScanService) *ScanHandler {
	return &ScanHandler{service: service}
}

// Start handles POST /v1/scan — free-text food input.
//
// @Summary      Scan a food by name
// @Tags         scans
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      startScanRequest  true  "Food input"
// @Success      200   {object}  envelope
// @Failure      400   {object}  envelope
// @Failure      502   {object}  envelope
// @Failure      503   {object}  envelope
// @Router       /v1/scan [post]
func (h *ScanHandler) Start(c echo.Context) error {
	var req startScanRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errEnvelope("invalid payload"))
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errEnvelope(err.Error()))
	}

	playerID, _, err := ctxPlayer(c)
	if err != nil {
		return err
	}

	result, err := h.service.StartScan(c.Request().Context(), ports.StartScanInput{
		PlayerID:  playerID,
		FoodInput: req.FoodInput,
	})
	if err != nil {
		return scanError(c, err)
	}

	metrics.ScansStartedTotal.WithLabelValues("text").Inc()
	return c.JSON(http.StatusOK, okEnvelope(toScanResponse(result)))
}

// StartImage handles POST /v1/scan/image — multipart photo input.
//
// @Summary      Scan a food from a photo
// @Tags         scans
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        image  formData  file  true  "Food photo (jpeg/png/webp/gif, max 10 MiB)"
// @Success      200    {object}  envelope
// @Failure      400    {object}  envelope
// @Failure      502    {object}  envelope
// @Failure      503    {object}  envelope
// @Router       /v1/scan/image [post]
func (h *ScanHandler) StartImage(c echo.Context) error {
	playerID, _, err := ctxPlayer(c)
	if err != nil {
		return err
	}

	fileHeader, err := c.FormFile("image")
	if err != nil {
		return c.JSON(http.StatusBadRequest, errEnvelope("missing image file"))
	}
	if fileHeader.Size > domain.MaxImageBytes {
		return c.JSON(http.StatusBadRequest, errEnvelope("image exceeds size limit"))
	}

	file, err := fileHeader.Open()
	if err != nil {
		return c.JSON(http.StatusBadRequest, errEnvelope("unreadable image file"))
	}
	defer file.Close()

	image, err := io.ReadAll(io.LimitReader(file, domain.MaxImageBytes+1))
	if err != nil {
		return c.JSON(http.StatusBadRequest, errEnvelope("unreadable image file"))
	}

	result, err := h.service.StartImageScan(c.Request().Context(), ports.StartImageScanInput{
		PlayerID: playerID,
		Image:    image,
		MimeType: fileHeader.Header.Get("Content-Type"),
	})
	if err != nil {
		return scanError(c, err)
	}

	metrics.ScansStartedTotal.WithLabelValues("image").Inc()
	return c.JSON(http.StatusOK, okEnvelope(toScanResponse(result)))
}

// Commit handles POST /v1/choice — records the player's decision.
//
// @Summary      Commit a choice for an open scan
// @Tags         scans
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      commitChoiceRequest  true  "Chosen outcome"
// @Success      200   {object}  envelope
// @Failure      400   {object}  envelope
// @Failure      404   {object}  envelope
// @Failure      409   {object}  envelope
// @Failure      503   {object}  envelope
// @Router       /v1/choice [post]
func (h *ScanHandler) Commit(c echo.Context) error {
	var req commitChoiceRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errEnvelope("invalid payload"))
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errEnvelope(err.Error()))
	}

	playerID, _, err := ctxPlayer(c)
	if err != nil {
		return err
	}

	tag, err := domain.ParseChoiceTag(req.ChosenTag)
	if err != nil {
		return c.JSON(http.StatusBadRequest, errEnvelope("chosen_tag must be A or B"))
	}

	result, err := h.service.CommitChoice(c.Request().Context(), ports.CommitChoiceInput{
		PlayerID: playerID,
		ScanID:   req.ScanID,
		Tag:      tag,
	})
	if err != nil {
		return commitError(c, err)
	}

	metrics.ChoicesCommittedTotal.WithLabelValues(string(tag)).Inc()
	return c.JSON(http.StatusOK, okEnvelope(commitChoiceResponse{
		NewVitality:    result.NewVitality,
		NewExperience:  result.NewExperience,
		NewLevel:       result.NewLevel,
		NewRank:        string(result.NewRank),
		NewStreak:      result.NewStreak,
		NewGoodChoices: result.NewGoodChoices,
		NewBadChoices:  result.NewBadChoices,
	}))
}

// scanError maps start-scan failures: caller faults are 400, a reply the
// oracle could not parse is a bad gateway, everything unreachable is 503.
func scanError(c echo.Context, err error) error {
	var oe *domain.OracleError
	if errors.As(err, &oe) {
		metrics.ScanErrorsTotal.WithLabelValues(string(oe.Kind)).Inc()
		switch oe.Kind {
		case domain.OracleMalformedResponse:
			return c.JSON(http.StatusBadGateway, errEnvelope("oracle returned malformed output"))
		case domain.OracleCancelled:
			return c.JSON(http.StatusRequestTimeout, errEnvelope("scan cancelled"))
		default:
			return c.JSON(http.StatusServiceUnavailable, errEnvelope("oracle unreachable"))
		}
	}

	var ie *domain.IdentifyError
	switch {
	case errors.As(err, &ie):
		metrics.ScanErrorsTotal.WithLabelValues("identify").Inc()
		return c.JSON(http.StatusBadGateway, errEnvelope(ie.Message))
	case errors.Is(err, domain.ErrUnsupportedImageType), errors.Is(err, domain.ErrImageTooLarge):
		return c.JSON(http.StatusBadRequest, errEnvelope(err.Error()))
	case errors.Is(err, domain.ErrPlayerNotFound):
		return c.JSON(http.StatusNotFound, errEnvelope("player not found"))
	case errors.Is(err, domain.ErrPersistenceUnavailable):
		metrics.ScanErrorsTotal.WithLabelValues("persistence").Inc()
		return c.JSON(http.StatusServiceUnavailable, errEnvelope("temporarily unavailable, retry"))
	}

	metrics.ScanErrorsTotal.WithLabelValues("internal").Inc()
	return c.JSON(http.StatusInternalServerError, errEnvelope("internal error"))
}

// commitError maps choice failures. Conflict-class errors are 409 and
// retryable with the same scan id; an expired or foreign session is 404.
func commitError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, domain.ErrUnknownChoiceTag):
		return c.JSON(http.StatusBadRequest, errEnvelope("chosen_tag must be A or B"))
	case errors.Is(err, domain.ErrScanNotFound):
		return c.JSON(http.StatusNotFound, errEnvelope("scan not found or expired"))
	case errors.Is(err, domain.ErrChoiceAlreadyCommitted):
		return c.JSON(http.StatusConflict, errEnvelope("choice already committed"))
	case errors.Is(err, domain.ErrCommitInProgress):
		return c.JSON(http.StatusConflict, errEnvelope("commit already in progress"))
	case errors.Is(err, domain.ErrWriteConflict):
		metrics.ChoiceConflictsTotal.Inc()
		return c.JSON(http.StatusConflict, errEnvelope("concurrent update, retry"))
	case errors.Is(err, domain.ErrInvalidScanTransition):
		return c.JSON(http.StatusConflict, errEnvelope("scan is not awaiting a choice"))
	case errors.Is(err, domain.ErrPlayerNotFound):
		return c.JSON(http.StatusNotFound, errEnvelope("player not found"))
	case errors.Is(err, domain.ErrPersistenceUnavailable):
		return c.JSON(http.StatusServiceUnavailable, errEnvelope("temporarily unavailable, retry"))
	}

	return c.JSON(http.StatusInternalServerError, errEnvelope("internal error"))
}

func toScanResponse(result *ports.ScanResult) scanResponse {
	v := result.Verdict
	resp := scanResponse{
		ScanID:        result.ScanID,
		FoodName:      result.FoodName,
		SensorReadout: v.SensorReadout,
		Nutrition: nutritionResponse{
			Calories: v.Nutrition.Calories,
			SugarG:   v.Nutrition.SugarG,
			SodiumMg: v.Nutrition.SodiumMg,
			ProteinG: v.Nutrition.ProteinG,
		},
		Warnings:  v.Warnings,
		IsHealthy: v.IsHealthy,
		Indulgent: outcomeResponse{
			Tag:             string(domain.ChoiceIndulgent),
			Narrative:       v.Indulgent.Narrative,
			VitalityDelta:   v.Indulgent.VitalityDelta,
			ExperienceDelta: v.Indulgent.ExperienceDelta,
		},
		Optimized: outcomeResponse{
			Tag:             string(domain.ChoiceOptimized),
			Narrative:       v.Optimized.Narrative,
			VitalityDelta:   v.Optimized.VitalityDelta,
			ExperienceDelta: v.Optimized.ExperienceDelta,
		},
	}
	if result.Identified != nil {
		resp.Identified = &identifiedResponse{
			Name:       result.Identified.Name,
			Confidence: string(result.Identified.Confidence),
		}
	}
	return resp
}
