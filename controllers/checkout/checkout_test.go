package checkoutControllers

import (
	"testing"
	"time"

	"github.com/John-Gaitho/branded-in-grace-api/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewReference(t *testing.T) {
	now := time.UnixMilli(1756540800000)
	assert.Equal(t, "BIG-1756540800000", NewReference(now))
}

func TestSnapshotItemsCapturesPriceAtSubmitTime(t *testing.T) {
	items := []models.CartItem{
		{
			ProductID: 1,
			Product:   models.Product{ID: 1, Name: "Tote Bag", Price: 500},
			Quantity:  2,
		},
		{ProductID: 99, Quantity: 1}, // deleted product, dropped from the snapshot
	}

	snapshot := snapshotItems(items)

	require.Len(t, snapshot, 1)
	assert.Equal(t, uint(1), snapshot[0].ProductID)
	assert.Equal(t, "Tote Bag", snapshot[0].ProductName)
	assert.Equal(t, 500.0, snapshot[0].Price)
	assert.Equal(t, 2, snapshot[0].Quantity)
}
