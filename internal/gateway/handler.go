// Package gateway exposes the contract engine over HTTP. The gateway is the
// host side of the boundary: it authenticates callers, assigns transaction IDs
// and logical timestamps, and maps typed contract errors to HTTP statuses.
// Everything below Submit/Evaluate stays deterministic.
package gateway

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Boiya123/agritrack-ledger/internal/contract"
	"github.com/Boiya123/agritrack-ledger/internal/contract/model"
	"github.com/Boiya123/agritrack-ledger/internal/identity"
)

// Handler handles transaction submission and queries.
type Handler struct {
	engine *contract.Engine
	tokens *identity.Issuer
	logger *zap.Logger
}

// NewHandler creates a Handler.
func NewHandler(engine *contract.Engine, tokens *identity.Issuer, logger *zap.Logger) *Handler {
	return &Handler{engine: engine, tokens: tokens, logger: logger}
}

// Register mounts the transaction routes on the provided router group.
func (h *Handler) Register(rg *gin.RouterGroup) {
	tx := rg.Group("/transactions")
	tx.Use(identity.RequireToken(h.tokens))
	{
		tx.POST("/submit", h.Submit)
		tx.POST("/evaluate", h.Evaluate)
	}
}

type invokeRequest struct {
	Operation string   `json:"operation" binding:"required"`
	Args      []string `json:"args"`
}

// Submit handles POST /transactions/submit — executes a state-changing
// operation. The gateway assigns the transaction ID and the logical timestamp
// so the contract core never reads a clock.
func (h *Handler) Submit(c *gin.Context) {
	claims := identity.ClaimsFromCtx(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	var req invokeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	call := contract.Call{
		TxID:      uuid.New().String(),
		Timestamp: time.Now().UTC(),
		Role:      model.Role(claims.Role),
	}

	result, err := h.engine.Submit(c.Request.Context(), call, req.Operation, req.Args)
	RecordTransaction(req.Operation, err == nil)
	if err != nil {
		h.renderError(c, req.Operation, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"tx_id": call.TxID, "result": result})
}

// Evaluate handles POST /transactions/evaluate — executes a read-only
// operation against committed state.
func (h *Handler) Evaluate(c *gin.Context) {
	var req invokeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.engine.Evaluate(c.Request.Context(), req.Operation, req.Args)
	if err != nil {
		h.renderError(c, req.Operation, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"result": result})
}

// renderError maps typed contract errors onto HTTP statuses.
func (h *Handler) renderError(c *gin.Context, operation string, err error) {
	var (
		authErr  *model.AuthorizationError
		valErr   *model.ValidationError
		nfErr    *model.NotFoundError
		confErr  *model.ConflictError
		transErr *model.TransitionError
	)
	switch {
	case errors.As(err, &authErr):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.As(err, &valErr):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.As(err, &nfErr):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.As(err, &confErr):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.As(err, &transErr):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		h.logger.Error("operation failed", zap.String("operation", operation), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

// Sink is the gateway's event sink: it records event metrics, logs each
// event, and forwards to any attached downstream sinks (webhooks).
type Sink struct {
	logger   *zap.Logger
	forwards []contract.EventSink
}

// NewSink creates a Sink forwarding to the given downstream sinks.
func NewSink(logger *zap.Logger, forwards ...contract.EventSink) *Sink {
	return &Sink{logger: logger, forwards: forwards}
}

// Emit implements contract.EventSink.
func (s *Sink) Emit(ctx context.Context, event model.Event) {
	RecordEvent(string(event.Type))
	if event.Type == model.EventTemperatureViolation {
		RecordViolation()
	}
	s.logger.Info("ledger event",
		zap.String("type", string(event.Type)),
		zap.String("tx_id", event.TxID),
		zap.Any("payload", event.Payload),
	)
	for _, f := range s.forwards {
		f.Emit(ctx, event)
	}
}
