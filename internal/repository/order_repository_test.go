package repository

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"procurement-service/internal/models"
)

type orderFixture struct {
	orders   *OrderRepository
	catalog  *CatalogRepository
	users    *UserRepository
	user     *models.User
	contact  *models.Contact
	listing  *models.Listing
	sellerID uuid.UUID
}

func newOrderFixture(t *testing.T) *orderFixture {
	t.Helper()

	db := newTestDB(t)
	f := &orderFixture{
		orders:  NewOrderRepository(db),
		catalog: NewCatalogRepository(db, nil),
		users:   NewUserRepository(db),
	}
	ctx := context.Background()

	f.user = registerTestUser(t, f.users, "buyer@example.com")

	var err error
	f.contact, err = f.users.CreateContact(ctx, f.user.ID, &models.CreateContactRequest{
		Country: "US", Region: "CA", Zip: "94107", City: "SF", Street: "Main", House: "1", Phone: "x",
	})
	require.NoError(t, err)

	f.sellerID = uuid.New()
	shop, err := f.catalog.GetOrCreateShop(ctx, "Acme", f.sellerID)
	require.NoError(t, err)
	_, err = f.catalog.UpsertCategory(ctx, 1, "Tools")
	require.NoError(t, err)
	product, err := f.catalog.GetOrCreateProduct(ctx, "Hammer", "h-1", 1)
	require.NoError(t, err)
	f.listing, _, err = f.catalog.UpsertListing(ctx, shop.ID, product.ID, 100, 10, 400, 500)
	require.NoError(t, err)

	return f
}

func TestGetOrCreateBasket(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()

	basket, err := f.orders.GetOrCreateBasket(ctx, f.user.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStateBasket, basket.State)

	again, err := f.orders.GetOrCreateBasket(ctx, f.user.ID)
	require.NoError(t, err)
	assert.Equal(t, basket.ID, again.ID)
}

func TestAddItem_SumsQuantities(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()

	basket, err := f.orders.GetOrCreateBasket(ctx, f.user.ID)
	require.NoError(t, err)

	_, err = f.orders.AddItem(ctx, basket.ID, f.listing.ID, 2)
	require.NoError(t, err)
	item, err := f.orders.AddItem(ctx, basket.ID, f.listing.ID, 3)
	require.NoError(t, err)
	assert.Equal(t, 5, item.Quantity)

	loaded, err := f.orders.GetBasket(ctx, f.user.ID)
	require.NoError(t, err)
	require.Len(t, loaded.Items, 1)
	assert.Equal(t, 5, loaded.Items[0].Quantity)
}

func TestPlaceOrder(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()

	basket, err := f.orders.GetOrCreateBasket(ctx, f.user.ID)
	require.NoError(t, err)
	_, err = f.orders.AddItem(ctx, basket.ID, f.listing.ID, 2)
	require.NoError(t, err)

	order, err := f.orders.PlaceOrder(ctx, f.user.ID, f.contact.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStateNew, order.State)
	require.NotNil(t, order.ContactID)
	assert.Equal(t, f.contact.ID, *order.ContactID)

	// the basket was promoted, so a fresh one is created on next access
	fresh, err := f.orders.GetOrCreateBasket(ctx, f.user.ID)
	require.NoError(t, err)
	assert.NotEqual(t, order.ID, fresh.ID)

	orders, err := f.orders.GetOrders(ctx, f.user.ID)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	require.Len(t, orders[0].Items, 1)
	require.NotNil(t, orders[0].Items[0].Listing)
}

func TestPlaceOrder_EmptyBasket(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()

	_, err := f.orders.GetOrCreateBasket(ctx, f.user.ID)
	require.NoError(t, err)

	_, err = f.orders.PlaceOrder(ctx, f.user.ID, f.contact.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestRemoveItems(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()

	basket, err := f.orders.GetOrCreateBasket(ctx, f.user.ID)
	require.NoError(t, err)
	item, err := f.orders.AddItem(ctx, basket.ID, f.listing.ID, 2)
	require.NoError(t, err)

	removed, err := f.orders.RemoveItems(ctx, basket.ID, []uuid.UUID{item.ID})
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)

	loaded, err := f.orders.GetBasket(ctx, f.user.ID)
	require.NoError(t, err)
	assert.Empty(t, loaded.Items)
}

func TestSetState(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()

	basket, err := f.orders.GetOrCreateBasket(ctx, f.user.ID)
	require.NoError(t, err)
	_, err = f.orders.AddItem(ctx, basket.ID, f.listing.ID, 1)
	require.NoError(t, err)
	order, err := f.orders.PlaceOrder(ctx, f.user.ID, f.contact.ID)
	require.NoError(t, err)

	require.NoError(t, f.orders.SetState(ctx, order.ID, models.OrderStateConfirmed, f.user.ID, nil))
	reloaded, err := f.orders.GetOrder(ctx, f.user.ID, order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStateConfirmed, reloaded.State)

	// unknown order id
	err = f.orders.SetState(ctx, uuid.New(), models.OrderStateCanceled, f.user.ID, nil)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestSetState_OtherUsersOrderDenied(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()

	basket, err := f.orders.GetOrCreateBasket(ctx, f.user.ID)
	require.NoError(t, err)
	_, err = f.orders.AddItem(ctx, basket.ID, f.listing.ID, 1)
	require.NoError(t, err)
	order, err := f.orders.PlaceOrder(ctx, f.user.ID, f.contact.ID)
	require.NoError(t, err)

	// a different user without a shop cannot touch the order
	err = f.orders.SetState(ctx, order.ID, models.OrderStateCanceled, uuid.New(), nil)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	// nor can a seller whose shop has no listings in it
	foreignShop, err := f.catalog.GetOrCreateShop(ctx, "Bolt Depot", uuid.New())
	require.NoError(t, err)
	err = f.orders.SetState(ctx, order.ID, models.OrderStateCanceled, uuid.New(), &foreignShop.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	reloaded, err := f.orders.GetOrder(ctx, f.user.ID, order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStateNew, reloaded.State)
}

func TestSetState_SellerOfContainedListing(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()

	basket, err := f.orders.GetOrCreateBasket(ctx, f.user.ID)
	require.NoError(t, err)
	_, err = f.orders.AddItem(ctx, basket.ID, f.listing.ID, 1)
	require.NoError(t, err)
	order, err := f.orders.PlaceOrder(ctx, f.user.ID, f.contact.ID)
	require.NoError(t, err)

	// the selling shop may advance the order even though it is not the owner
	err = f.orders.SetState(ctx, order.ID, models.OrderStateConfirmed, f.sellerID, &f.listing.ShopID)
	require.NoError(t, err)

	reloaded, err := f.orders.GetOrder(ctx, f.user.ID, order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStateConfirmed, reloaded.State)
}

func TestGetShopOrders(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()

	basket, err := f.orders.GetOrCreateBasket(ctx, f.user.ID)
	require.NoError(t, err)
	_, err = f.orders.AddItem(ctx, basket.ID, f.listing.ID, 1)
	require.NoError(t, err)
	order, err := f.orders.PlaceOrder(ctx, f.user.ID, f.contact.ID)
	require.NoError(t, err)

	orders, err := f.orders.GetShopOrders(ctx, f.listing.ShopID)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, order.ID, orders[0].ID)

	// a shop with no listings in any order sees nothing
	none, err := f.orders.GetShopOrders(ctx, uuid.New())
	require.NoError(t, err)
	assert.Empty(t, none)
}
