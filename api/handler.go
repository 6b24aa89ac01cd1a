package api

import (
	"encoding/csv"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v4/pgxpool"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"alphatrawler/internal/analytics"
	"alphatrawler/internal/config"
	"alphatrawler/internal/engine"
	"alphatrawler/internal/infrastructure"
	"alphatrawler/internal/stats"
)

type Handler struct {
	db     *pgxpool.Pool
	loader *engine.PairLoader
	sweep  *engine.SweepRunner
	cfg    config.Config
	logger *zap.Logger
}

func NewHandler(db *pgxpool.Pool, cfg config.Config, logger *zap.Logger) *Handler {
	return &Handler{
		db:     db,
		loader: engine.NewPairLoader(db),
		sweep:  engine.NewSweepRunner(0, logger),
		cfg:    cfg,
		logger: logger,
	}
}

// NormalizeSymbol unifies symbol formats into a standard one (e.g. BTCUSDT)
func NormalizeSymbol(s string) string {
	s = strings.ToUpper(s)
	s = strings.ReplaceAll(s, "-", "")
	s = strings.ReplaceAll(s, "/", "")
	s = strings.ReplaceAll(s, "_", "")
	return s
}

// Auth Handlers

func (h *Handler) Register(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required,min=6"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to hash password"})
		return
	}

	var userID int64
	err = h.db.QueryRow(c.Request.Context(),
		"INSERT INTO users (email, password_hash) VALUES ($1, $2) RETURNING id",
		req.Email, string(hash)).Scan(&userID)

	if err != nil {
		h.logger.Error("failed to register user", zap.Error(err))
		c.JSON(http.StatusConflict, gin.H{"error": "email already exists"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "user created", "id": userID})
}

func (h *Handler) Login(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var userID int64
	var hash string
	err := h.db.QueryRow(c.Request.Context(),
		"SELECT id, password_hash FROM users WHERE email = $1", req.Email).Scan(&userID, &hash)

	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid email or password"})
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(req.Password)); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid email or password"})
		return
	}

	token, err := GenerateToken(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to generate token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token})
}

// Data Handlers

func (h *Handler) GetHistoryBars(c *gin.Context) {
	symbol := NormalizeSymbol(c.Param("symbol"))
	period := c.DefaultQuery("period", h.cfg.BarResolution)
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "1000"))
	if err != nil || limit <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
		return
	}

	bars, err := h.loader.LoadBars(c.Request.Context(), symbol, period, limit)
	if err != nil {
		h.logger.Error("failed to query bars", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	c.JSON(http.StatusOK, bars)
}

// runRequest is shared by the analytics, backtest, adf and export endpoints:
// a pair, a time range and an optional parameter override.
type runRequest struct {
	Target    string         `json:"target"`
	Reference string         `json:"reference"`
	Period    string         `json:"period"`
	StartTime time.Time      `json:"start_time" binding:"required"`
	EndTime   time.Time      `json:"end_time" binding:"required"`
	Params    *config.Params `json:"params"`
}

func (h *Handler) resolve(req *runRequest) config.Params {
	if req.Target == "" {
		req.Target = h.cfg.TargetSymbol
	}
	if req.Reference == "" {
		req.Reference = h.cfg.RefSymbol
	}
	req.Target = NormalizeSymbol(req.Target)
	req.Reference = NormalizeSymbol(req.Reference)
	if req.Period == "" {
		req.Period = h.cfg.BarResolution
	}
	if req.Params == nil {
		return config.DefaultParams()
	}
	return *req.Params
}

func (h *Handler) runPipeline(c *gin.Context) (*engine.Result, config.Params, bool) {
	var req runRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return nil, config.Params{}, false
	}
	params := h.resolve(&req)

	points, err := h.loader.LoadPair(c.Request.Context(), req.Target, req.Reference, req.Period, req.StartTime, req.EndTime)
	if err != nil {
		h.logger.Error("failed to load pair", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch data"})
		return nil, config.Params{}, false
	}

	started := time.Now()
	result, err := engine.Run(points, params, h.logger)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return nil, config.Params{}, false
	}
	infrastructure.BacktestRuns.Inc()
	infrastructure.BacktestDuration.Observe(time.Since(started).Seconds())
	return result, params, true
}

// RunBacktest runs the full pipeline and returns the augmented table plus
// the backtest report.
func (h *Handler) RunBacktest(c *gin.Context) {
	result, _, ok := h.runPipeline(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, result)
}

// RunADF computes the spread for the requested slice and runs the
// stationarity test over its most recent defined values.
func (h *Handler) RunADF(c *gin.Context) {
	result, params, ok := h.runPipeline(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, analytics.ADF(result.DefinedSpread(0), params))
}

// RunSweep fans a list of parameter sets out over the worker pool against
// one shared data slice.
func (h *Handler) RunSweep(c *gin.Context) {
	var req struct {
		Target    string          `json:"target"`
		Reference string          `json:"reference"`
		Period    string          `json:"period"`
		StartTime time.Time       `json:"start_time" binding:"required"`
		EndTime   time.Time       `json:"end_time" binding:"required"`
		ParamSets []config.Params `json:"param_sets" binding:"required,min=1"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	base := runRequest{Target: req.Target, Reference: req.Reference, Period: req.Period}
	h.resolve(&base)

	points, err := h.loader.LoadPair(c.Request.Context(), base.Target, base.Reference, base.Period, req.StartTime, req.EndTime)
	if err != nil {
		h.logger.Error("failed to load pair", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch data"})
		return
	}

	c.JSON(http.StatusOK, h.sweep.Run(c.Request.Context(), points, req.ParamSets))
}

// ExportCSV streams the augmented table (price, beta, alpha, spread, zscore,
// signal, position) as a CSV download. Undefined values export as blanks.
func (h *Handler) ExportCSV(c *gin.Context) {
	result, _, ok := h.runPipeline(c)
	if !ok {
		return
	}

	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", `attachment; filename="analytics.csv"`)

	w := csv.NewWriter(c.Writer)
	_ = w.Write([]string{"time", "target", "reference", "beta", "alpha", "spread", "zscore", "signal", "position"})
	for _, row := range result.Rows {
		_ = w.Write([]string{
			row.Timestamp.UTC().Format(time.RFC3339Nano),
			formatF(row.Target),
			formatF(row.Reference),
			formatV(row.Beta),
			formatV(row.Alpha),
			formatV(row.Spread),
			formatV(row.ZScore),
			string(row.Signal),
			string(row.Position),
		})
	}
	w.Flush()
}

func formatF(f float64) string { return strconv.FormatFloat(f, 'g', -1, 64) }

func formatV(v stats.Value) string {
	if !v.Valid {
		return ""
	}
	return formatF(v.Float)
}
