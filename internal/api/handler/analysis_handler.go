package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/loanlens/analysis-api/internal/core/domain"
	"github.com/loanlens/analysis-api/internal/core/ports"
	"github.com/loanlens/analysis-api/internal/infrastructure/metrics"
)

// User-facing failure messages.
const (
	ScoringFailureMessage     = "Failed to fetch loan prediction. Please try again."
	ExplanationFailureMessage = "Failed to generate loan explanation. Please try again."
)

// AnalysisHandler handles loan analysis requests.
type AnalysisHandler struct {
	service         ports.AnalysisService
	requireIdentity bool
	log             zerolog.Logger
}

// NewAnalysisHandler creates an AnalysisHandler. When requireIdentity is set,
// name and creditScore are mandatory in the request body.
func NewAnalysisHandler(service ports.AnalysisService, requireIdentity bool, log zerolog.Logger) *AnalysisHandler {
	return &AnalysisHandler{service: service, requireIdentity: requireIdentity, log: log}
}

// Analyse handles POST /analyse.
//
// @Summary      Explain a loan eligibility decision
// @Tags         analysis
// @Accept       json
// @Produce      json
// @Param        body  body      analyseRequest   true  "Applicant financial profile"
// @Success      200   {object}  analyseResponse
// @Failure      400   {object}  errorResponse
// @Failure      429   {object}  errorResponse
// @Failure      502   {object}  errorResponse
// @Router       /analyse [post]
func (h *AnalysisHandler) Analyse(c echo.Context) error {
	var req analyseRequest
	if err := c.Bind(&req); err != nil {
		return h.badPayload(c, err)
	}
	if err := c.Validate(&req); err != nil {
		return h.invalid(c, err)
	}

	record, err := domain.NewApplicantRecord(toApplicantInput(req), h.requireIdentity)
	if err != nil {
		return h.invalid(c, err)
	}

	result, err := h.service.Analyse(c.Request().Context(), ports.AnalyseInput{
		RequestID: c.Response().Header().Get(echo.HeaderXRequestID),
		Record:    record,
	})
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrScoringFailed):
			return c.JSON(http.StatusBadGateway, errorResponse{Error: ScoringFailureMessage})
		case errors.Is(err, domain.ErrExplanationFailed):
			return c.JSON(http.StatusBadGateway, errorResponse{Error: ExplanationFailureMessage})
		}
		return err
	}

	return c.JSON(http.StatusOK, analyseResponse{Message: result.Message})
}

// badPayload answers bind failures. A value of the wrong JSON type is reported
// against its field; anything else is a generic invalid payload.
func (h *AnalysisHandler) badPayload(c echo.Context, err error) error {
	var ute *json.UnmarshalTypeError
	if errors.As(err, &ute) && ute.Field != "" {
		metrics.ValidationErrorsTotal.WithLabelValues(ute.Field).Inc()
		return c.JSON(http.StatusBadRequest, errorResponse{
			Error: ute.Field + " must be " + typeName(ute),
			Field: ute.Field,
		})
	}

	var he *echo.HTTPError
	if errors.As(err, &he) && he.Code == http.StatusUnsupportedMediaType {
		return c.JSON(he.Code, errorResponse{Error: "content type must be application/json"})
	}
	return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid payload"})
}

func (h *AnalysisHandler) invalid(c echo.Context, err error) error {
	var ve *domain.ValidationError
	if !errors.As(err, &ve) {
		return err
	}
	metrics.ValidationErrorsTotal.WithLabelValues(ve.Field).Inc()
	return c.JSON(http.StatusBadRequest, errorResponse{Error: ve.Error(), Field: ve.Field})
}

func typeName(ute *json.UnmarshalTypeError) string {
	if ute.Type == nil {
		return "a valid value"
	}
	switch ute.Type.Kind().String() {
	case "float64", "float32", "int", "int64":
		return "a number"
	case "string":
		return "a string"
	}
	return "a " + ute.Type.String()
}
