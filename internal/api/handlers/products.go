package handlers

import (
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"collect-and-cruise/internal/apperr"
	"collect-and-cruise/internal/services"

	"github.com/gin-gonic/gin"
)

type reviewRequest struct {
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

type ProductHandler struct {
	catalog *services.CatalogService
}

func NewProductHandler(catalog *services.CatalogService) *ProductHandler {
	return &ProductHandler{catalog: catalog}
}

func (h *ProductHandler) List(c *gin.Context) {
	products, err := h.catalog.List(c.Request.Context(), c.Query("keyword"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, products)
}

func (h *ProductHandler) Get(c *gin.Context) {
	p, err := h.catalog.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *ProductHandler) AddReview(c *gin.Context) {
	user, ok := caller(c)
	if !ok {
		return
	}
	var req reviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, err)
		return
	}
	p, err := h.catalog.AddReview(c.Request.Context(), user, c.Param("id"), req.Rating, req.Comment)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

// Create expects a multipart form with the product fields and an "image"
// file.
func (h *ProductHandler) Create(c *gin.Context) {
	in, err := productForm(c)
	if err != nil {
		fail(c, err)
		return
	}
	image, closeImage, err := formImage(c)
	if err != nil {
		fail(c, err)
		return
	}
	defer closeImage()

	p, err := h.catalog.Create(c.Request.Context(), in, image)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

// Update accepts the same form as Create; every field and the image are
// optional.
func (h *ProductHandler) Update(c *gin.Context) {
	in, err := productForm(c)
	if err != nil {
		fail(c, err)
		return
	}
	image, closeImage, err := formImage(c)
	if err != nil {
		fail(c, err)
		return
	}
	defer closeImage()

	p, err := h.catalog.Update(c.Request.Context(), c.Param("id"), in, image)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *ProductHandler) Delete(c *gin.Context) {
	if err := h.catalog.Delete(c.Request.Context(), c.Param("id")); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, messageResponse{Message: "Product removed"})
}

func productForm(c *gin.Context) (services.ProductInput, error) {
	var in services.ProductInput
	if v, ok := c.GetPostForm("name"); ok {
		in.Name = &v
	}
	if v, ok := c.GetPostForm("description"); ok {
		in.Description = &v
	}
	if v, ok := c.GetPostForm("category"); ok {
		in.Category = &v
	}
	if v, ok := c.GetPostForm("price"); ok {
		price, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return in, apperr.BadRequest("Price must be a number")
		}
		in.Price = &price
	}
	if v, ok := c.GetPostForm("stockQuantity"); ok {
		stock, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return in, apperr.BadRequest("Stock quantity must be an integer")
		}
		in.StockQuantity = &stock
	}
	return in, nil
}

// formImage opens the optional "image" file. The returned func closes it.
func formImage(c *gin.Context) (*services.Image, func(), error) {
	header, err := c.FormFile("image")
	if err != nil {
		return nil, func() {}, nil
	}
	f, err := header.Open()
	if err != nil {
		return nil, func() {}, apperr.BadRequest("Unreadable image file")
	}
	return &services.Image{Filename: header.Filename, Body: f}, closer(f), nil
}

func closer(f multipart.File) func() {
	return func() { _ = f.Close() }
}
