package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/guttosm/bistpulse/internal/domain/dto"
	"github.com/guttosm/bistpulse/internal/service"
)

// Handler provides HTTP handlers for price summary endpoints.
//
// Responsibilities:
//   - Validate incoming HTTP query parameters
//   - Interact with the service layer for data access
//   - Translate service results into response DTOs
//   - Return structured JSON responses with appropriate HTTP status codes
type Handler struct {
	svc service.SummaryService
}

// NewHandler constructs a new Handler instance.
func NewHandler(svc service.SummaryService) *Handler {
	return &Handler{svc: svc}
}

// GetSummary handles GET /api/v1/summary requests.
//
// Query Parameters:
//   - ticker (string, required): BIST ticker symbol (e.g., "THYAO" or "THYAO.IS").
//   - interval (string, optional): Bar interval, defaults to "1d".
//   - from (string, optional): Minimum bar date in YYYY-MM-DD format.
//   - to (string, optional): Maximum bar date in YYYY-MM-DD format.
//
// Responses:
//   - 200 OK: Returns SummaryResponse for the stored bars.
//   - 400 Bad Request: Missing or invalid query parameters.
//   - 404 Not Found: No bars stored for the given ticker/interval/window.
//   - 500 Internal Server Error: Failure in repository or database layer.
func (h *Handler) GetSummary(c *gin.Context) {
	ticker := strings.ToUpper(strings.TrimSpace(c.Query("ticker")))
	if ticker == "" {
		c.JSON(http.StatusBadRequest, dto.NewErrorResponse("ticker is required", nil))
		return
	}
	// Bare symbols are assumed to be Borsa Istanbul listings.
	if !strings.Contains(ticker, ".") {
		ticker += ".IS"
	}

	interval := strings.TrimSpace(c.Query("interval"))
	if interval == "" {
		interval = "1d"
	}

	var from, to *time.Time
	if s := c.Query("from"); s != "" {
		parsed, err := time.Parse("2006-01-02", s)
		if err != nil {
			c.JSON(http.StatusBadRequest, dto.NewErrorResponse("invalid from format, expected YYYY-MM-DD", err))
			return
		}
		from = &parsed
	}
	if s := c.Query("to"); s != "" {
		parsed, err := time.Parse("2006-01-02", s)
		if err != nil {
			c.JSON(http.StatusBadRequest, dto.NewErrorResponse("invalid to format, expected YYYY-MM-DD", err))
			return
		}
		to = &parsed
	}

	summary, err := h.svc.GetSummary(c.Request.Context(), ticker, interval, from, to)
	if err != nil {
		c.JSON(http.StatusInternalServerError, dto.NewErrorResponse("failed to fetch summary", err))
		return
	}
	if summary == nil {
		c.JSON(http.StatusNotFound, dto.NewErrorResponse("no data found", nil))
		return
	}

	resp := dto.SummaryResponse{
		Ticker:         summary.Ticker,
		Interval:       summary.Interval,
		Bars:           summary.Bars,
		FirstTimestamp: summary.FirstTimestamp,
		LastTimestamp:  summary.LastTimestamp,
		MinLow:         summary.MinLow,
		MaxHigh:        summary.MaxHigh,
		LastClose:      summary.LastClose,
		TotalVolume:    summary.TotalVolume,
	}

	c.JSON(http.StatusOK, resp)
}
