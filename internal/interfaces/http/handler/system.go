package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/shopcart/backend/internal/infrastructure/connector"
	"github.com/shopcart/backend/internal/interfaces/http/router"
)

// SystemHandler serves the health and metrics endpoints
type SystemHandler struct {
	store   string
	status  connector.Status
	metrics http.Handler
}

// NewSystemHandler creates a SystemHandler reporting the connection state of
// the named backing store. metrics may be nil.
func NewSystemHandler(store string, status connector.Status, metrics http.Handler) *SystemHandler {
	return &SystemHandler{store: store, status: status, metrics: metrics}
}

// Routes returns the system route group
func (h *SystemHandler) Routes() *router.DomainGroup {
	group := router.NewDomainGroup("system", "").GET("/health", h.Health)
	if h.metrics != nil {
		group.GET("/metrics", gin.WrapH(h.metrics))
	}
	return group
}

// Health godoc
// @ID           health
// @Summary      Health check
// @Description  Reports the application as up along with the backing store connection state. It never touches the store itself.
// @Tags         system
// @Produce      json
// @Success      200 {object} map[string]any
// @Router       /health [get]
func (h *SystemHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"app":   "OK",
		h.store: h.status.Connected(),
	})
}
