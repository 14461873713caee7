package shopsdk

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
)

// ImageField is the multipart field the server reads the product image from.
const ImageField = "product_image"

func (c *Client) ListProducts(ctx context.Context) ([]Product, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, "/api/v1/products", nil, nil)
	if err != nil {
		return nil, err
	}

	var out productsEnvelope
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return out.Products, nil
}

// CreateProduct uploads the image and creates the product in one request.
// Requires an admin session.
func (c *Client) CreateProduct(ctx context.Context, req ProductRequest) (*Product, error) {
	body, contentType, err := productForm(req)
	if err != nil {
		return nil, err
	}

	resp, err := c.doRequest(ctx, http.MethodPost, "/api/v1/products", body, map[string]string{
		"Content-Type": contentType,
	})
	if err != nil {
		return nil, err
	}

	var out productEnvelope
	if err := decodeJSON(resp, &out, http.StatusCreated); err != nil {
		return nil, err
	}
	return &out.Product, nil
}

func (c *Client) ListCategories(ctx context.Context) ([]Category, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, "/api/v1/categories", nil, nil)
	if err != nil {
		return nil, err
	}

	var out categoriesEnvelope
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return out.Categories, nil
}

// CreateCategory requires an admin session.
func (c *Client) CreateCategory(ctx context.Context, req CategoryRequest) (*Category, error) {
	resp, err := c.doJSON(ctx, http.MethodPost, "/api/v1/category", req)
	if err != nil {
		return nil, err
	}

	var out categoryEnvelope
	if err := decodeJSON(resp, &out, http.StatusCreated); err != nil {
		return nil, err
	}
	return &out.Category, nil
}

// productForm writes the text fields first so the image is the last part.
// Empty fields are left out, as a browser form would send them.
func productForm(req ProductRequest) (*bytes.Buffer, string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	fields := [][2]string{
		{"product_name", req.Name},
		{"description", req.Description},
		{"price", req.Price},
		{"category_id", req.CategoryID},
	}
	for _, f := range fields {
		if f[1] == "" {
			continue
		}
		if err := mw.WriteField(f[0], f[1]); err != nil {
			return nil, "", fmt.Errorf("failed to write form field: %w", err)
		}
	}

	if req.Image.Data != nil {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`, ImageField, escapeQuotes(req.Image.Filename)))
		if req.Image.ContentType != "" {
			h.Set("Content-Type", req.Image.ContentType)
		}
		w, err := mw.CreatePart(h)
		if err != nil {
			return nil, "", fmt.Errorf("failed to create image part: %w", err)
		}
		if _, err := w.Write(req.Image.Data); err != nil {
			return nil, "", fmt.Errorf("failed to write image part: %w", err)
		}
	}

	if err := mw.Close(); err != nil {
		return nil, "", fmt.Errorf("failed to close form: %w", err)
	}
	return &buf, mw.FormDataContentType(), nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string { return quoteEscaper.Replace(s) }
