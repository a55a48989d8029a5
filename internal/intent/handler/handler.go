package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"wasales_backend/internal/intent/domain"
	"wasales_backend/internal/intent/ports"
	"wasales_backend/internal/intent/service"
	"wasales_backend/internal/intent/transport"
	"wasales_backend/platform/httpkit"
	"wasales_backend/platform/logger"
	"wasales_backend/platform/validator"
)

const (
	msgInvalidRequest = "invalid request"
	msgMissingID      = "conversation id is required"
)

// Handler handles HTTP requests for conversation intent.
type Handler struct {
	svc      *service.Service
	products ports.ProductReader
	val      *validator.Validator
	log      *logger.Logger
}

// New creates a new intent handler. products may be nil when no catalog is
// configured; responses then carry bare product ids.
func New(svc *service.Service, products ports.ProductReader, val *validator.Validator, log *logger.Logger) *Handler {
	return &Handler{svc: svc, products: products, val: val, log: log}
}

// RegisterRoutes mounts the intent routes on the provided group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/conversations/:id/turns", h.ApplyTurn)
	rg.GET("/conversations/:id/intent", h.GetIntent)
	rg.GET("/conversations/:id/intent/history", h.GetHistory)
}

// conversationID extracts and validates the :id path parameter. On failure
// it writes the error response and returns false.
func (h *Handler) conversationID(c *gin.Context) (string, bool) {
	id := c.Param("id")
	if err := h.val.Var(id, "required,max=128"); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgMissingID, nil)
		return "", false
	}
	return id, true
}

// ApplyTurn applies one inbound conversation turn synchronously.
// POST /api/v1/conversations/:id/turns
func (h *Handler) ApplyTurn(c *gin.Context) {
	conversationID, ok := h.conversationID(c)
	if !ok {
		return
	}

	var req transport.ApplyTurnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, err.Error())
		return
	}

	record, err := h.svc.ApplyTurn(c.Request.Context(), conversationID, req.ToDomain(time.Now()))
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, transport.FromDomain(record, h.lookupProductNames(c, record)))
}

// GetIntent fetches the current intent record.
// GET /api/v1/conversations/:id/intent
func (h *Handler) GetIntent(c *gin.Context) {
	conversationID, ok := h.conversationID(c)
	if !ok {
		return
	}

	record, err := h.svc.Get(c.Request.Context(), conversationID)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, transport.FromDomain(record, h.lookupProductNames(c, record)))
}

// GetHistory returns the bounded transition trail, oldest first.
// GET /api/v1/conversations/:id/intent/history
func (h *Handler) GetHistory(c *gin.Context) {
	conversationID, ok := h.conversationID(c)
	if !ok {
		return
	}

	history, err := h.svc.History(c.Request.Context(), conversationID)
	if httpkit.HandleError(c, err) {
		return
	}

	entries := make([]transport.TransitionResponse, 0, len(history))
	for _, t := range history {
		entries = append(entries, transport.TransitionResponse(t))
	}
	httpkit.OK(c, gin.H{"history": entries})
}

// lookupProductNames is best-effort decoration; a catalog failure never
// fails the intent request.
func (h *Handler) lookupProductNames(c *gin.Context, record *domain.ConversationIntent) map[string]string {
	if h.products == nil || len(record.ProductsOfInterest) == 0 {
		return nil
	}

	ids := make([]string, 0, len(record.ProductsOfInterest))
	for id := range record.ProductsOfInterest {
		ids = append(ids, id)
	}

	infos, err := h.products.GetProducts(c.Request.Context(), ids)
	if err != nil {
		h.log.Warn("product name lookup failed", "error", err)
		return nil
	}

	names := make(map[string]string, len(infos))
	for id, info := range infos {
		names[id] = info.Name
	}
	return names
}
