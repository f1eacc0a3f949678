// Package server exposes the index calculations as a JSON API.
package server

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/etnz/rpi"
	"github.com/etnz/rpi/date"
	"github.com/gin-gonic/gin"
	"github.com/oklog/ulid/v2"
)

// Handler serves the API on a Calculator.
type Handler struct {
	calc   *rpi.Calculator
	basket rpi.Basket
	// Today returns the current day, date.Today if nil.
	Today func() date.Date
}

// New returns a Handler computing indexes with calc, for basket unless a request
// provides its own.
func New(calc *rpi.Calculator, basket rpi.Basket) *Handler {
	return &Handler{calc: calc, basket: basket}
}

func (h *Handler) today() date.Date {
	if h.Today == nil {
		return date.Today()
	}
	return h.Today()
}

// Router returns the engine serving the health check and the API.
func (h *Handler) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())

	// CORS middleware
	r.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	})

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	SetupRoutes(r.Group("/api/v1"), h)
	return r
}

// SetupRoutes registers the API routes on r.
func SetupRoutes(r *gin.RouterGroup, h *Handler) {
	r.POST("/index", h.Index)
	r.GET("/history", h.History)
	r.GET("/basket", h.Basket)
}

// indexRequest is the body of POST /index.
type indexRequest struct {
	Basket  *rpi.Basket  `json:"basket"`
	From    date.Date    `json:"from"`
	To      date.Date    `json:"to"`
	Average bool         `json:"average"`
	Period  *date.Period `json:"period"` // monthly if nil
}

// Index computes the index of a basket between two dates, or two periods when
// average is true. Dates default to the last 365 days.
func (h *Handler) Index(c *gin.Context) {
	var req indexRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	basket := h.basket
	if req.Basket != nil {
		basket = *req.Basket
	}
	if req.To.IsZero() {
		req.To = h.today()
	}
	if req.From.IsZero() {
		req.From = req.To.Add(-365)
	}

	var res *rpi.Result
	var err error
	if req.Average {
		period := date.Monthly
		if req.Period != nil {
			period = *req.Period
		}
		res, err = h.calc.ComputeAverage(c.Request.Context(), basket, date.NewRange(req.From, period), date.NewRange(req.To, period))
	} else {
		res, err = h.calc.Compute(c.Request.Context(), basket, req.From, req.To)
	}
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": ulid.Make().String(), "result": res})
}

// History returns the year over year index of the default basket, oldest first.
func (h *Handler) History(c *gin.Context) {
	opts := rpi.HistoryOptions{Today: h.today()}
	if g := c.Query("granularity"); g != "" {
		var err error
		if opts.Granularity, err = rpi.ParseGranularity(g); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}
	if l := c.Query("limit"); l != "" {
		limit, err := strconv.Atoi(l)
		if err != nil || limit < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
			return
		}
		opts.Limit = limit
	}

	points, err := h.calc.CollectHistory(c.Request.Context(), h.basket, opts)
	if err != nil {
		h.fail(c, err)
		return
	}
	if points == nil {
		points = []rpi.Point{}
	}
	c.JSON(http.StatusOK, gin.H{
		"id":          ulid.Make().String(),
		"granularity": opts.Granularity.String(),
		"points":      points,
	})
}

// Basket returns the default basket.
func (h *Handler) Basket(c *gin.Context) {
	c.JSON(http.StatusOK, h.basket)
}

// fail reports err with the status matching its kind.
func (h *Handler) fail(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, rpi.ErrEmptyBasket), errors.Is(err, rpi.ErrInvalidWeight), errors.Is(err, rpi.ErrInvalidWindow):
		status = http.StatusBadRequest
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		status = http.StatusServiceUnavailable
	default:
		log.Printf("%s %s: %v", c.Request.Method, c.Request.URL.Path, err)
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
