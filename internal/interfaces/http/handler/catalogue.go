package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/shopcart/backend/internal/domain/catalog"
	"github.com/shopcart/backend/internal/interfaces/http/middleware"
	"github.com/shopcart/backend/internal/interfaces/http/router"
)

// ProductService is the application service behind CatalogueHandler
type ProductService interface {
	ListProducts(ctx context.Context) ([]catalog.Product, error)
	GetProduct(ctx context.Context, sku string) (*catalog.Product, error)
	ListByCategory(ctx context.Context, category string) ([]catalog.Product, error)
	ListCategories(ctx context.Context) ([]string, error)
	Search(ctx context.Context, text string) ([]catalog.Product, error)
}

// ProductResponse is the wire shape of a product. Price is a JSON number
// written with the exact digits of the stored decimal.
type ProductResponse struct {
	SKU         string      `json:"sku"`
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Price       json.Number `json:"price" swaggertype:"number"`
	InStock     int         `json:"instock"`
	Categories  []string    `json:"categories"`
}

// ToProductResponse converts a domain product to its wire shape
func ToProductResponse(p *catalog.Product) ProductResponse {
	categories := p.Categories
	if categories == nil {
		categories = []string{}
	}
	return ProductResponse{
		SKU:         p.SKU,
		Name:        p.Name,
		Description: p.Description,
		Price:       json.Number(p.Price.String()),
		InStock:     p.InStock,
		Categories:  categories,
	}
}

func toProductResponses(products []catalog.Product) []ProductResponse {
	out := make([]ProductResponse, len(products))
	for i := range products {
		out[i] = ToProductResponse(&products[i])
	}
	return out
}

// skuParam binds the :sku path parameter
type skuParam struct {
	SKU string `uri:"sku" binding:"required,sku"`
}

// CatalogueHandler serves the product catalogue
type CatalogueHandler struct {
	BaseHandler
	service ProductService
}

// NewCatalogueHandler creates a new CatalogueHandler
func NewCatalogueHandler(service ProductService) *CatalogueHandler {
	middleware.SetupValidator()
	return &CatalogueHandler{service: service}
}

// Routes returns the catalogue route group
func (h *CatalogueHandler) Routes() *router.DomainGroup {
	return router.NewDomainGroup("catalogue", "").
		GET("/products", h.ListProducts).
		GET("/product/:sku", h.GetProduct).
		GET("/products/:cat", h.ListByCategory).
		GET("/categories", h.ListCategories).
		GET("/search/:text", h.Search)
}

// ListProducts godoc
// @ID           listProducts
// @Summary      List products
// @Tags         catalogue
// @Produce      json
// @Success      200 {array} ProductResponse
// @Failure      500 {string} string
// @Router       /products [get]
func (h *CatalogueHandler) ListProducts(c *gin.Context) {
	products, err := h.service.ListProducts(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, toProductResponses(products))
}

// GetProduct godoc
// @ID           getProduct
// @Summary      Get product by SKU
// @Tags         catalogue
// @Produce      json
// @Param        sku path string true "Product SKU"
// @Success      200 {object} ProductResponse
// @Failure      400 {string} string "invalid SKU"
// @Failure      404 {string} string "SKU not found"
// @Failure      500 {string} string "database not available"
// @Router       /product/{sku} [get]
func (h *CatalogueHandler) GetProduct(c *gin.Context) {
	var params skuParam
	if err := c.ShouldBindUri(&params); err != nil {
		h.HandleError(c, catalog.ErrInvalidSKU)
		return
	}

	product, err := h.service.GetProduct(c.Request.Context(), params.SKU)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, ToProductResponse(product))
}

// ListByCategory godoc
// @ID           listProductsByCategory
// @Summary      List products of a category
// @Description  Returns the products of a category sorted by name
// @Tags         catalogue
// @Produce      json
// @Param        cat path string true "Category name"
// @Success      200 {array} ProductResponse
// @Failure      500 {string} string
// @Router       /products/{cat} [get]
func (h *CatalogueHandler) ListByCategory(c *gin.Context) {
	products, err := h.service.ListByCategory(c.Request.Context(), c.Param("cat"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, toProductResponses(products))
}

// ListCategories godoc
// @ID           listCategories
// @Summary      List categories
// @Tags         catalogue
// @Produce      json
// @Success      200 {array} string
// @Failure      500 {string} string
// @Router       /categories [get]
func (h *CatalogueHandler) ListCategories(c *gin.Context) {
	categories, err := h.service.ListCategories(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, categories)
}

// Search godoc
// @ID           searchProducts
// @Summary      Search products
// @Description  Full text search over name and description
// @Tags         catalogue
// @Produce      json
// @Param        text path string true "Search text"
// @Success      200 {array} ProductResponse
// @Failure      400 {string} string
// @Failure      500 {string} string
// @Router       /search/{text} [get]
func (h *CatalogueHandler) Search(c *gin.Context) {
	products, err := h.service.Search(c.Request.Context(), c.Param("text"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, toProductResponses(products))
}
