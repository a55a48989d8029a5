package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"wasales_backend/internal/catalog/service"
	"wasales_backend/internal/catalog/transport"
	"wasales_backend/platform/httpkit"
)

const msgInvalidID = "invalid product ID"

// Handler handles HTTP requests for the product catalog.
type Handler struct {
	svc *service.Service
}

// New creates a new catalog handler.
func New(svc *service.Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes mounts the catalog routes on the provided group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.List)
	rg.GET("/:id", h.Get)
}

// List retrieves all active products.
// GET /api/v1/products
func (h *Handler) List(c *gin.Context) {
	products, err := h.svc.ListActive(c.Request.Context())
	if httpkit.HandleError(c, err) {
		return
	}

	items := make([]transport.ProductResponse, 0, len(products))
	for _, p := range products {
		items = append(items, transport.FromProduct(p))
	}
	httpkit.OK(c, gin.H{"products": items})
}

// Get retrieves one product by id.
// GET /api/v1/products/:id
func (h *Handler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidID, nil)
		return
	}

	product, err := h.svc.Get(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, transport.FromProduct(*product))
}
