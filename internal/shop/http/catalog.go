package http

import (
	"net/http"

	"github.com/aussiebroadwan/storefront/internal/shop/service"
	"github.com/aussiebroadwan/storefront/pkg/httpx"
	"github.com/aussiebroadwan/storefront/pkg/slogx"
	"github.com/aussiebroadwan/storefront/pkg/upload"
)

type ProductsHandler struct {
	CatalogService *service.CatalogService
}

// HandleList lists every product with its category name.
//
//	@Summary	List products
//	@Tags		Catalog
//	@Produce	json
//	@Success	200	{object}	ProductsResponse	"Products, newest first"
//	@Failure	500	{object}	ErrorResponse		"Internal server error"
//	@Router		/api/v1/products [get].
func (h *ProductsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	products, err := h.CatalogService.ListProducts(r.Context())
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, ProductsResponse{Message: "Product Found", Products: products})
}

// HandleCreate creates a product from a multipart form. The image has
// already been validated and stored by the upload stage.
//
//	@Summary		Create product
//	@Description	Administrator only. Multipart form with product_name, description, price, category_id and a product_image file (jpg, jpeg, png or webp, at most 5 MiB). Images larger than 500x500 are scaled down.
//	@Tags			Catalog
//	@Accept			multipart/form-data
//	@Produce		json
//	@Param			product_name	formData	string	true	"Name"
//	@Param			description		formData	string	true	"Description"
//	@Param			price			formData	number	true	"Price"
//	@Param			category_id		formData	string	true	"Category"
//	@Param			product_image	formData	file	true	"Image"
//	@Success		201				{object}	ProductResponse	"Created product"
//	@Failure		400				{object}	ErrorResponse	"Missing field, bad file or unknown category"
//	@Failure		401				{object}	ErrorResponse	"No valid session"
//	@Failure		403				{object}	ErrorResponse	"Not an administrator"
//	@Failure		500				{object}	ErrorResponse	"Upload or server failure"
//	@Security		SessionCookie
//	@Router			/api/v1/products [post].
func (h *ProductsHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var in service.ProductInput
	if err := httpx.DecodeJSON(w, r, &in); err != nil {
		httpx.WriteError(w, r, err)
		return
	}

	in.ImageURL = ""
	if res, ok := upload.FromContext(r.Context()); ok {
		in.ImageURL = res.URL
	}

	p, err := h.CatalogService.CreateProduct(r.Context(), in)
	if err != nil {
		if res, ok := upload.FromContext(r.Context()); ok {
			slogx.FromContext(r.Context()).Warn("stored image left unreferenced", "key", res.Key, "err", err)
		}
		httpx.WriteError(w, r, apiError(err))
		return
	}

	slogx.FromContext(r.Context()).Info("product created", "product_id", p.ID, "category_id", p.CategoryID)
	httpx.WriteJSON(w, http.StatusCreated, ProductResponse{Message: "Product created successfully", Product: p})
}

type CategoriesHandler struct {
	CatalogService *service.CatalogService
}

// HandleList lists every category.
//
//	@Summary	List categories
//	@Tags		Catalog
//	@Produce	json
//	@Success	200	{object}	CategoriesResponse	"Categories"
//	@Failure	500	{object}	ErrorResponse		"Internal server error"
//	@Router		/api/v1/categories [get].
func (h *CategoriesHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	cats, err := h.CatalogService.ListCategories(r.Context())
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, CategoriesResponse{Message: "Categories Found", Categories: cats})
}

// HandleCreate creates a category.
//
//	@Summary		Create category
//	@Description	Administrator only.
//	@Tags			Catalog
//	@Accept			json
//	@Produce		json
//	@Param			body	body		service.CategoryInput	true	"Category"
//	@Success		201		{object}	CategoryResponse		"Created category"
//	@Failure		400		{object}	ErrorResponse			"Missing field"
//	@Failure		401		{object}	ErrorResponse			"No valid session"
//	@Failure		403		{object}	ErrorResponse			"Not an administrator"
//	@Security		SessionCookie
//	@Router			/api/v1/category [post].
func (h *CategoriesHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var in service.CategoryInput
	if err := httpx.DecodeJSON(w, r, &in); err != nil {
		httpx.WriteError(w, r, err)
		return
	}

	c, err := h.CatalogService.CreateCategory(r.Context(), in)
	if err != nil {
		httpx.WriteError(w, r, apiError(err))
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, CategoryResponse{Message: "Category created successfully", Category: c})
}
