package shop_test

import (
	"bytes"
	"image"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/aussiebroadwan/storefront/pkg/shopsdk"
	"github.com/stretchr/testify/require"
)

// TestCatalogFlow creates a category and a product as an admin, then reads
// both back anonymously and fetches the stored image.
func TestCatalogFlow(t *testing.T) {
	baseURL := setupShop(t, nil)
	runCatalogFlow(t, baseURL)
}

// TestCatalogFlowPostgres runs the same flow against a real Postgres.
func TestCatalogFlowPostgres(t *testing.T) {
	dbURL := setupPostgres(t)
	baseURL := setupShop(t, map[string]string{
		"DATABASE_DRIVER": "postgres",
		"DATABASE_URL":    dbURL,
	})
	runCatalogFlow(t, baseURL)
}

func runCatalogFlow(t *testing.T, baseURL string) {
	t.Helper()
	admin := adminClient(t, baseURL)
	anon := newClient(t, baseURL)

	category, err := admin.CreateCategory(t.Context(), shopsdk.CategoryRequest{Name: "Kitchen", Description: "Cups and plates"})
	require.NoError(t, err)
	require.NotEmpty(t, category.ID)

	product, err := admin.CreateProduct(t.Context(), shopsdk.ProductRequest{
		Name:        "Mug",
		Description: "Holds coffee",
		Price:       "12.50",
		CategoryID:  category.ID,
		Image:       shopsdk.Image{Filename: "mug.png", ContentType: "image/png", Data: pngImage(t, 800, 400)},
	})
	require.NoError(t, err)
	require.Equal(t, "Mug", product.Name)
	require.InDelta(t, 12.50, product.Price, 1e-9)
	require.True(t, strings.HasPrefix(product.ImageURL, baseURL+"/media/ecommerce-images/"), product.ImageURL)

	categories, err := anon.ListCategories(t.Context())
	require.NoError(t, err)
	require.Len(t, categories, 1)
	require.Equal(t, "Kitchen", categories[0].Name)

	products, err := anon.ListProducts(t.Context())
	require.NoError(t, err)
	require.Len(t, products, 1)
	require.Equal(t, product.ID, products[0].ID)
	require.Equal(t, "Kitchen", products[0].CategoryName)

	resp, err := anon.HTTPClient.Get(product.ImageURL)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	require.NoError(t, err)
	require.Equal(t, "png", format)
	require.Equal(t, 500, cfg.Width)
	require.Equal(t, 250, cfg.Height)
}

func TestCatalogAuthorization(t *testing.T) {
	baseURL := setupShop(t, nil)
	admin := adminClient(t, baseURL)

	user := newClient(t, baseURL)
	_, err := user.SignUp(t.Context(), shopsdk.SignUpRequest{FirstName: "A", LastName: "B", Email: userEmail, Password: userPassword})
	require.NoError(t, err)

	_, err = user.CreateCategory(t.Context(), shopsdk.CategoryRequest{Name: "Nope"})
	requireAPIError(t, err, http.StatusUnauthorized, shopsdk.CodeUnauthenticated)

	_, err = user.Login(t.Context(), userEmail, userPassword)
	require.NoError(t, err)

	_, err = user.CreateCategory(t.Context(), shopsdk.CategoryRequest{Name: "Nope"})
	requireAPIError(t, err, http.StatusForbidden, shopsdk.CodeForbidden)

	category, err := admin.CreateCategory(t.Context(), shopsdk.CategoryRequest{Name: "Kitchen", Description: "Cups"})
	require.NoError(t, err)

	_, err = user.CreateProduct(t.Context(), shopsdk.ProductRequest{
		Name: "Mug", Description: "d", Price: "1", CategoryID: category.ID,
		Image: shopsdk.Image{Filename: "mug.png", ContentType: "image/png", Data: pngImage(t, 10, 10)},
	})
	requireAPIError(t, err, http.StatusForbidden, shopsdk.CodeForbidden)

	products, err := admin.ListProducts(t.Context())
	require.NoError(t, err)
	require.Empty(t, products)
}

func TestCreateProductErrors(t *testing.T) {
	baseURL := setupShop(t, nil)
	admin := adminClient(t, baseURL)

	category, err := admin.CreateCategory(t.Context(), shopsdk.CategoryRequest{Name: "Kitchen", Description: "Cups"})
	require.NoError(t, err)

	valid := func() shopsdk.ProductRequest {
		return shopsdk.ProductRequest{
			Name: "Mug", Description: "d", Price: "3.20", CategoryID: category.ID,
			Image: shopsdk.Image{Filename: "mug.png", ContentType: "image/png", Data: pngImage(t, 20, 20)},
		}
	}

	t.Run("not an image", func(t *testing.T) {
		req := valid()
		req.Image = shopsdk.Image{Filename: "doc.pdf", ContentType: "application/pdf", Data: []byte("%PDF-1.4")}
		_, err := admin.CreateProduct(t.Context(), req)
		requireAPIError(t, err, http.StatusBadRequest, shopsdk.CodeInvalidFileType)
	})

	t.Run("missing image", func(t *testing.T) {
		req := valid()
		req.Image = shopsdk.Image{}
		_, err := admin.CreateProduct(t.Context(), req)
		requireAPIError(t, err, http.StatusBadRequest, shopsdk.CodeMissingField)
	})

	t.Run("unknown category", func(t *testing.T) {
		req := valid()
		req.CategoryID = "does-not-exist"
		_, err := admin.CreateProduct(t.Context(), req)
		requireAPIError(t, err, http.StatusBadRequest, shopsdk.CodeInvalidCategory)
	})

	t.Run("negative price", func(t *testing.T) {
		req := valid()
		req.Price = "-1"
		_, err := admin.CreateProduct(t.Context(), req)
		requireAPIError(t, err, http.StatusBadRequest, shopsdk.CodeValidation)
	})

	products, err := admin.ListProducts(t.Context())
	require.NoError(t, err)
	require.Empty(t, products)
}
