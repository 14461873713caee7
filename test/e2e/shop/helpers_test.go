package shop_test

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/aussiebroadwan/storefront/internal/shop/app"
	"github.com/aussiebroadwan/storefront/pkg/shopsdk"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

/*
 * Helpers for storefront end-to-end tests. Each test boots the full
 * application on a real listener and drives it through shopsdk.
 */

const (
	adminEmail    = "admin@example.com"
	adminPassword = "Admin123!"
	userEmail     = "user@example.com"
	userPassword  = "User123!"
)

// setupShop starts the application with the given extra environment and
// returns the base URL. Uploads land in a temp dir and are served back
// under /media.
func setupShop(t *testing.T, env map[string]string) string {
	t.Helper()

	srv := httptest.NewUnstartedServer(nil)
	baseURL := "http://" + srv.Listener.Addr().String()

	vars := map[string]string{
		"ENV":                  "test",
		"LOG_LEVEL":            "error",
		"SECRET_TOKEN":         "e2e-secret",
		"BCRYPT_COST":          "4",
		"DATABASE_DRIVER":      "sqlite",
		"DATABASE_FILE":        ":memory:",
		"BLOB_DRIVER":          "local",
		"BLOB_LOCAL_DIR":       t.TempDir(),
		"BLOB_PUBLIC_BASE_URL": baseURL + "/media",
		"CORS_ORIGINS":         "http://localhost:5173",

		// Tests make many rapid requests from one address.
		"RATELIMIT_STRICT_REQUESTS":  "1000",
		"RATELIMIT_STRICT_WINDOW":    "1m",
		"RATELIMIT_STRICT_BURST":     "1000",
		"RATELIMIT_LENIENT_REQUESTS": "1000",
		"RATELIMIT_LENIENT_WINDOW":   "1m",
		"RATELIMIT_LENIENT_BURST":    "1000",
	}
	for k, v := range env {
		vars[k] = v
	}
	for k, v := range vars {
		t.Setenv(k, v)
	}

	cfg, err := app.LoadConfig()
	require.NoError(t, err)

	a, err := app.New(context.Background(), cfg)
	require.NoError(t, err)

	srv.Config.Handler = a.Handler()
	srv.Start()
	t.Cleanup(func() {
		srv.Close()
		_ = a.Shutdown()
	})

	return baseURL
}

func newClient(t *testing.T, baseURL string) *shopsdk.Client {
	t.Helper()
	client, err := shopsdk.NewClient(baseURL)
	require.NoError(t, err)
	return client
}

// adminClient signs up an admin and returns a logged-in client.
func adminClient(t *testing.T, baseURL string) *shopsdk.Client {
	t.Helper()
	client := newClient(t, baseURL)
	role := shopsdk.RoleAdmin

	_, err := client.SignUp(t.Context(), shopsdk.SignUpRequest{
		FirstName: "Ada",
		LastName:  "Admin",
		Email:     adminEmail,
		Password:  adminPassword,
		UserRole:  &role,
	})
	require.NoError(t, err)

	user, err := client.Login(t.Context(), adminEmail, adminPassword)
	require.NoError(t, err)
	require.True(t, user.IsAdmin())
	return client
}

// pngImage encodes a solid w x h PNG.
func pngImage(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			img.Set(x, y, color.RGBA{R: 200, G: 80, B: 40, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

// requireAPIError asserts err is an *APIError with the given status and code.
func requireAPIError(t *testing.T, err error, status int, code string) {
	t.Helper()
	require.Error(t, err)
	apiErr, ok := err.(*shopsdk.APIError)
	require.True(t, ok, "expected *shopsdk.APIError, got %T: %v", err, err)
	require.Equal(t, status, apiErr.StatusCode, apiErr.Message)
	require.Equal(t, code, apiErr.Code)
}

// setupPostgres starts a throwaway Postgres and returns its URL.
func setupPostgres(t *testing.T) string {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping postgres e2e in short mode")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)

	ctx := context.Background()
	req := testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "shop",
			"POSTGRES_PASSWORD": "shop",
			"POSTGRES_DB":       "shop",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432")
	require.NoError(t, err)

	return fmt.Sprintf("postgres://shop:shop@%s:%s/shop?sslmode=disable", host, port.Port())
}
