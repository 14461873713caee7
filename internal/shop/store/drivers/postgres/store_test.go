package postgres_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/aussiebroadwan/storefront/internal/shop/domain"
	"github.com/aussiebroadwan/storefront/internal/shop/store"
	"github.com/aussiebroadwan/storefront/internal/shop/store/drivers/postgres"
	"github.com/aussiebroadwan/storefront/pkg/idx"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// setupPostgres starts a throwaway postgres container and returns a
// migrated store bound to it.
func setupPostgres(t *testing.T) *postgres.Store {
	t.Helper()
	if testing.Short() {
		t.Skip("postgres container tests skipped in -short mode")
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

	url := fmt.Sprintf("postgres://shop:shop@%s:%s/shop?sslmode=disable", host, port.Port())
	s, err := postgres.NewStore(ctx, url)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	require.NoError(t, s.ApplyMigrations(ctx))
	return s
}

func TestPostgresStore(t *testing.T) {
	s := setupPostgres(t)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Microsecond)

	t.Run("users", func(t *testing.T) {
		u := domain.User{
			ID:           idx.New().String(),
			FirstName:    "Grace",
			LastName:     "Hopper",
			Email:        "grace@example.com",
			PasswordHash: "$2a$10$hash",
			Role:         domain.RoleStandard,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		require.NoError(t, s.Users().CreateUser(ctx, u))

		got, err := s.Users().GetUserByEmail(ctx, "grace@example.com")
		require.NoError(t, err)
		require.Equal(t, u.ID, got.ID)
		require.Nil(t, got.Phone)

		dup := u
		dup.ID = idx.New().String()
		require.ErrorIs(t, s.Users().CreateUser(ctx, dup), store.ErrAlreadyExists)

		_, err = s.Users().GetUserByID(ctx, "missing")
		require.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("catalog", func(t *testing.T) {
		cat := domain.Category{ID: idx.New().String(), Name: "Tea", Description: "Leaves", CreatedAt: now}
		require.NoError(t, s.Categories().CreateCategory(ctx, cat))

		p := domain.Product{
			ID: idx.New().String(), Name: "Oolong", Description: "Half oxidised",
			Price: 12.5, ImageURL: "http://cdn/x.png", CategoryID: cat.ID, CreatedAt: now,
		}
		require.NoError(t, s.Products().CreateProduct(ctx, p))

		orphan := p
		orphan.ID = idx.New().String()
		orphan.CategoryID = "nope"
		require.ErrorIs(t, s.Products().CreateProduct(ctx, orphan), store.ErrNotFound)

		list, err := s.Products().ListProducts(ctx)
		require.NoError(t, err)
		require.Len(t, list, 1)
		require.Equal(t, "Tea", list[0].CategoryName)
		require.InDelta(t, 12.5, list[0].Price, 0.001)
	})
}
