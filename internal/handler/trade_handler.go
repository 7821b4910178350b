package handler

import (
	"net/http"
	"time"

	"github.com/go-orz/orz"
	"github.com/labstack/echo/v4"
	"github.com/spf13/cast"
	"go.uber.org/zap"

	"tradebook/internal/engine"
	"tradebook/internal/service"
	"tradebook/internal/xe"
)

// TradeHandler is the journal's HTTP surface.
type TradeHandler struct {
	tradeService  *service.TradeService
	statsService  *service.StatsService
	importService *service.ImportService
	reviewService *service.ReviewService
	logger        *zap.Logger
}

func NewTradeHandler(
	tradeService *service.TradeService,
	statsService *service.StatsService,
	importService *service.ImportService,
	reviewService *service.ReviewService,
	logger *zap.Logger,
) *TradeHandler {
	return &TradeHandler{
		tradeService:  tradeService,
		statsService:  statsService,
		importService: importService,
		reviewService: reviewService,
		logger:        logger,
	}
}

type plannedExitRequest struct {
	Seq       int     `json:"seq" validate:"gte=0"`
	ExitType  string  `json:"exit_type" validate:"required,oneof=stop target partial manual"`
	Price     float64 `json:"price" validate:"required,gt=0"`
	Contracts int     `json:"contracts" validate:"required,gt=0"`
	Notes     string  `json:"notes"`
}

type createTradeRequest struct {
	Asset        string               `json:"asset" validate:"required"`
	Direction    string               `json:"direction" validate:"required,oneof=long short"`
	EntryPrice   float64              `json:"entry_price" validate:"required,gt=0"`
	EntryTime    time.Time            `json:"entry_time" validate:"required"`
	Contracts    int                  `json:"contracts" validate:"required,gt=0"`
	ExitPrice    *float64             `json:"exit_price" validate:"omitempty,gt=0"`
	ExitTime     *time.Time           `json:"exit_time"`
	StopPrice    *float64             `json:"stop_price" validate:"omitempty,gt=0"`
	TargetPrice  *float64             `json:"target_price" validate:"omitempty,gt=0"`
	Mep          *float64             `json:"mep"`
	Men          *float64             `json:"men"`
	Notes        string               `json:"notes"`
	Tags         []string             `json:"tags"`
	PlannedExits []plannedExitRequest `json:"planned_exits" validate:"dive"`
}

type updateTradeRequest struct {
	StopPrice   *float64 `json:"stop_price" validate:"omitempty,gt=0"`
	TargetPrice *float64 `json:"target_price" validate:"omitempty,gt=0"`
	Mep         *float64 `json:"mep"`
	Men         *float64 `json:"men"`
	Notes       string   `json:"notes"`
	Tags        []string `json:"tags"`
}

type replacePlanRequest struct {
	PlannedExits []plannedExitRequest `json:"planned_exits" validate:"dive"`
}

type registerExitRequest struct {
	ExitType      string    `json:"exit_type" validate:"required,oneof=stop target partial manual"`
	Price         float64   `json:"price" validate:"required,gt=0"`
	Contracts     int       `json:"contracts" validate:"required,gt=0"`
	ExitTime      time.Time `json:"exit_time" validate:"required"`
	PlannedExitID *string   `json:"planned_exit_id"`
	Notes         string    `json:"notes"`
}

func plannedExitInputs(reqs []plannedExitRequest) []service.PlannedExitInput {
	legs := make([]service.PlannedExitInput, 0, len(reqs))
	for _, r := range reqs {
		legs = append(legs, service.PlannedExitInput{
			Seq:       r.Seq,
			ExitType:  r.ExitType,
			Price:     r.Price,
			Contracts: r.Contracts,
			Notes:     r.Notes,
		})
	}
	return legs
}

// ListTrades returns the trade collection with the adherence filter and
// sort projection applied.
// GET /api/trades?plan_adherence=respected_stop&sort_by=result&order=desc
func (h *TradeHandler) ListTrades(c echo.Context) error {
	ctx := c.Request().Context()

	trades, err := h.tradeService.ListTrades(ctx, service.ListQuery{
		Asset:         c.QueryParam("asset"),
		Status:        c.QueryParam("status"),
		PlanAdherence: c.QueryParam("plan_adherence"),
		SortBy:        c.QueryParam("sort_by"),
		Desc:          c.QueryParam("order") == "desc",
		Limit:         cast.ToInt(c.QueryParam("limit")),
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, orz.Map{
		"count":  len(trades),
		"trades": trades,
	})
}

// CreateTrade records a new trade.
// POST /api/trades
func (h *TradeHandler) CreateTrade(c echo.Context) error {
	var req createTradeRequest
	if err := c.Bind(&req); err != nil {
		return xe.ErrInvalidParams
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	trade, err := h.tradeService.CreateTrade(c.Request().Context(), service.CreateTradeInput{
		Asset:        req.Asset,
		Direction:    req.Direction,
		EntryPrice:   req.EntryPrice,
		EntryTime:    req.EntryTime,
		Contracts:    req.Contracts,
		ExitPrice:    req.ExitPrice,
		ExitTime:     req.ExitTime,
		StopPrice:    req.StopPrice,
		TargetPrice:  req.TargetPrice,
		Mep:          req.Mep,
		Men:          req.Men,
		Notes:        req.Notes,
		Tags:         req.Tags,
		PlannedExits: plannedExitInputs(req.PlannedExits),
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, trade)
}

// GetTrade returns one trade with its plan and exits.
// GET /api/trades/:id
func (h *TradeHandler) GetTrade(c echo.Context) error {
	trade, err := h.tradeService.GetTrade(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, trade)
}

// UpdateTrade edits the mutable attributes of a trade.
// PUT /api/trades/:id
func (h *TradeHandler) UpdateTrade(c echo.Context) error {
	var req updateTradeRequest
	if err := c.Bind(&req); err != nil {
		return xe.ErrInvalidParams
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	trade, err := h.tradeService.UpdateTrade(c.Request().Context(), c.Param("id"), service.UpdateTradeInput{
		StopPrice:   req.StopPrice,
		TargetPrice: req.TargetPrice,
		Mep:         req.Mep,
		Men:         req.Men,
		Notes:       req.Notes,
		Tags:        req.Tags,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, trade)
}

// DeleteTrade removes a trade and its exits.
// DELETE /api/trades/:id
func (h *TradeHandler) DeleteTrade(c echo.Context) error {
	if err := h.tradeService.DeleteTrade(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// ReplacePlan swaps a trade's exit plan wholesale.
// PUT /api/trades/:id/plan
func (h *TradeHandler) ReplacePlan(c echo.Context) error {
	var req replacePlanRequest
	if err := c.Bind(&req); err != nil {
		return xe.ErrInvalidParams
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	trade, err := h.tradeService.ReplacePlan(c.Request().Context(), c.Param("id"), plannedExitInputs(req.PlannedExits))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, trade)
}

// RegisterExit records one realized exit against a trade.
// POST /api/trades/:id/exits
func (h *TradeHandler) RegisterExit(c echo.Context) error {
	var req registerExitRequest
	if err := c.Bind(&req); err != nil {
		return xe.ErrInvalidParams
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	trade, err := h.tradeService.RegisterExit(c.Request().Context(), c.Param("id"), engine.ExitRequest{
		ExitType:      req.ExitType,
		Price:         req.Price,
		Contracts:     req.Contracts,
		ExitTime:      req.ExitTime,
		PlannedExitID: req.PlannedExitID,
		Notes:         req.Notes,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, trade)
}

// ImportTrades loads trades from a CSV request body.
// POST /api/trades/import
func (h *TradeHandler) ImportTrades(c echo.Context) error {
	report, err := h.importService.ImportCSV(c.Request().Context(), c.Request().Body)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, report)
}

// GetAdherenceStats returns the plan-adherence summary.
// GET /api/stats/adherence
func (h *TradeHandler) GetAdherenceStats(c echo.Context) error {
	summary, err := h.statsService.GetAdherenceStats(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, summary)
}

// GetPerformanceStats returns the realized performance summary.
// GET /api/stats/performance
func (h *TradeHandler) GetPerformanceStats(c echo.Context) error {
	summary, err := h.statsService.GetPerformanceSummary(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, summary)
}

// GenerateReview asks the configured LLM for a journal critique.
// POST /api/review
func (h *TradeHandler) GenerateReview(c echo.Context) error {
	review, err := h.reviewService.GenerateReview(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, orz.Map{
		"review": review,
	})
}

// RegisterRoutes wires the journal routes onto the API group.
func (h *TradeHandler) RegisterRoutes(g *echo.Group) {
	trades := g.Group("/trades")

	trades.GET("", h.ListTrades)
	trades.POST("", h.CreateTrade)
	trades.POST("/import", h.ImportTrades)
	trades.GET("/:id", h.GetTrade)
	trades.PUT("/:id", h.UpdateTrade)
	trades.DELETE("/:id", h.DeleteTrade)
	trades.PUT("/:id/plan", h.ReplacePlan)
	trades.POST("/:id/exits", h.RegisterExit)

	stats := g.Group("/stats")
	stats.GET("/adherence", h.GetAdherenceStats)
	stats.GET("/performance", h.GetPerformanceStats)

	g.POST("/review", h.GenerateReview)
}
