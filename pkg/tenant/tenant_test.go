package tenant_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/facturio/facturio/pkg/tenant"
)

func TestRequireActive(t *testing.T) {
	t.Parallel()

	t.Run("active tenant passes", func(t *testing.T) {
		t.Parallel()

		store := tenant.NewMemoryStore()
		id := uuid.New()
		require.NoError(t, store.Save(context.Background(), &tenant.Tenant{
			ID: id, Name: "Tacos El Güero", RFC: "XAXX010101000", Active: true,
		}))

		got, err := tenant.RequireActive(context.Background(), store, id)
		require.NoError(t, err)
		assert.Equal(t, "XAXX010101000", got.RFC)
	})

	t.Run("inactive tenant rejected", func(t *testing.T) {
		t.Parallel()

		store := tenant.NewMemoryStore()
		id := uuid.New()
		require.NoError(t, store.Save(context.Background(), &tenant.Tenant{
			ID: id, Name: "Cerrado SA", RFC: "XAXX010101000", Active: false,
		}))

		_, err := tenant.RequireActive(context.Background(), store, id)
		assert.ErrorIs(t, err, tenant.ErrInactiveTenant)
	})

	t.Run("unknown tenant not found", func(t *testing.T) {
		t.Parallel()

		_, err := tenant.RequireActive(context.Background(), tenant.NewMemoryStore(), uuid.New())
		assert.ErrorIs(t, err, tenant.ErrTenantNotFound)
	})
}

func TestContext(t *testing.T) {
	t.Parallel()

	ten := &tenant.Tenant{ID: uuid.New(), Name: "Prueba"}

	ctx := tenant.WithTenant(context.Background(), ten)

	got, ok := tenant.FromContext(ctx)
	require.True(t, ok)
	assert.Equal(t, ten.ID, got.ID)

	id, ok := tenant.IDFromContext(ctx)
	require.True(t, ok)
	assert.Equal(t, ten.ID, id)

	attr, ok := tenant.LogAttr(ctx)
	require.True(t, ok)
	assert.Equal(t, "tenant_id", attr.Key)

	_, ok = tenant.FromContext(context.Background())
	assert.False(t, ok)
}
