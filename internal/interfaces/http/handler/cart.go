package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/shopcart/backend/internal/domain/cart"
	"github.com/shopcart/backend/internal/interfaces/http/router"
)

// CartService is the application service behind CartHandler
type CartService interface {
	GetCart(ctx context.Context, id string) (*cart.Cart, error)
	DeleteCart(ctx context.Context, id string) error
}

// CartHandler serves stored carts
type CartHandler struct {
	BaseHandler
	service CartService
}

// NewCartHandler creates a new CartHandler
func NewCartHandler(service CartService) *CartHandler {
	return &CartHandler{service: service}
}

// Routes returns the cart route group
func (h *CartHandler) Routes() *router.DomainGroup {
	return router.NewDomainGroup("cart", "/cart").
		GET("/:id", h.GetCart).
		DELETE("/:id", h.DeleteCart)
}

// GetCart godoc
// @ID           getCart
// @Summary      Get a cart
// @Description  Returns the stored cart with catalogue data merged into each item as productInfo
// @Tags         cart
// @Produce      json
// @Param        id path string true "Cart ID"
// @Success      200 {object} cart.Cart
// @Failure      404 {string} string "Cart not found"
// @Failure      500 {string} string
// @Router       /cart/{id} [get]
func (h *CartHandler) GetCart(c *gin.Context) {
	result, err := h.service.GetCart(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// DeleteCart godoc
// @ID           deleteCart
// @Summary      Delete a cart
// @Description  Removes the cart. Deleting a missing cart succeeds.
// @Tags         cart
// @Produce      plain
// @Param        id path string true "Cart ID"
// @Success      200 {string} string "OK"
// @Failure      500 {string} string
// @Router       /cart/{id} [delete]
func (h *CartHandler) DeleteCart(c *gin.Context) {
	if err := h.service.DeleteCart(c.Request.Context(), c.Param("id")); err != nil {
		h.HandleError(c, err)
		return
	}
	h.OK(c)
}
