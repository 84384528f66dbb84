package services

import (
	"context"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hotel-booking/internal/status"
	"hotel-booking/models"
	"hotel-booking/store"
)

var testCheckoutTime = time.Date(2025, 8, 1, 12, 0, 0, 0, time.UTC)

func setupTestCheckoutService() (*CheckoutService, redismock.ClientMock, *store.MemoryStore) {
	db, redisMock := redismock.NewClientMock()

	memStore := store.NewMemoryStore()
	tickets := NewTicketService(memStore, nil, "NGN")
	tickets.now = func() time.Time { return testCheckoutTime }
	tickets.newID = func() string { return "TICKET-1754049600000-1" }

	service := NewCheckoutService(db, tickets, nil, nil, nil, "pk_test_123", "NGN", 15*time.Minute)
	service.now = func() time.Time { return testCheckoutTime }
	service.newRef = func() string { return "REF-1754049600000" }

	return service, redisMock, memStore
}

func TestInitiate_Unauthenticated(t *testing.T) {
	service, redisMock, _ := setupTestCheckoutService()
	defer redisMock.ClearExpect()

	_, err := service.Initiate(context.Background(), models.Identity{},
		models.ContactForm{Name: "Ada Obi", Phone: "0800000000"},
		models.RoomSnapshot{Title: "Standard Room", Price: "25,500"})

	assert.ErrorIs(t, err, status.ErrUnauthenticated)
	assert.NoError(t, redisMock.ExpectationsWereMet())
}

func TestInitiate_MissingContactDetails(t *testing.T) {
	service, redisMock, _ := setupTestCheckoutService()
	defer redisMock.ClearExpect()

	_, err := service.Initiate(context.Background(), models.Identity{ID: "u1"},
		models.ContactForm{Name: "", Phone: ""},
		models.RoomSnapshot{Title: "Standard Room", Price: "25,500"})

	assert.ErrorIs(t, err, status.ErrInvalidInput)
	assert.NoError(t, redisMock.ExpectationsWereMet())
}

func TestInitiate_BadCatalogPrice(t *testing.T) {
	service, redisMock, _ := setupTestCheckoutService()
	defer redisMock.ClearExpect()

	_, err := service.Initiate(context.Background(), models.Identity{ID: "u1"},
		models.ContactForm{Name: "Ada Obi", Phone: "0800000000"},
		models.RoomSnapshot{Title: "Standard Room", Price: "not a price"})

	assert.Error(t, err)
}

func TestInitiate_Success(t *testing.T) {
	service, redisMock, _ := setupTestCheckoutService()
	defer redisMock.ClearExpect()

	checkoutID := "checkout_u1_1754049600"
	redisMock.ExpectHSet("checkout:"+checkoutID, map[string]any{
		"owner_id":     "u1",
		"email":        "ada@example.com",
		"name":         "Ada Obi",
		"phone":        "0800000000",
		"room_title":   "Standard Room",
		"room_price":   "25,500",
		"amount_minor": int64(2550000),
		"currency":     "NGN",
		"reference":    "REF-1754049600000",
		"status":       models.CheckoutStatusAwaitingPayment,
		"created_at":   int64(1754049600),
	}).SetVal(11)
	redisMock.ExpectExpire("checkout:"+checkoutID, 15*time.Minute).SetVal(true)
	redisMock.ExpectSet("checkout_ref:REF-1754049600000", checkoutID, 15*time.Minute).SetVal("OK")

	session, err := service.Initiate(context.Background(),
		models.Identity{ID: "u1", Email: "ada@example.com"},
		models.ContactForm{Name: "Ada Obi", Phone: "0800000000"},
		models.RoomSnapshot{Title: "Standard Room", Price: "25,500"})
	require.NoError(t, err)

	assert.Equal(t, checkoutID, session.ID)
	assert.Equal(t, models.CheckoutStatusAwaitingPayment, session.Status)
	assert.Equal(t, int64(2550000), session.AmountMinor)
	assert.Equal(t, "REF-1754049600000", session.Reference)

	assert.Equal(t, "pk_test_123", session.Widget.PublicKey)
	assert.Equal(t, "ada@example.com", session.Widget.Email)
	assert.Equal(t, int64(2550000), session.Widget.AmountMinor)
	assert.Equal(t, "Ada", session.Widget.FirstName)
	assert.Equal(t, "Obi", session.Widget.LastName)

	assert.NoError(t, redisMock.ExpectationsWereMet())
}

func checkoutSessionData() map[string]string {
	return map[string]string{
		"owner_id":     "u1",
		"email":        "ada@example.com",
		"name":         "Ada Obi",
		"phone":        "0800000000",
		"room_title":   "Standard Room",
		"room_price":   "25,500",
		"amount_minor": "2550000",
		"currency":     "NGN",
		"reference":    "REF-1754049600000",
		"status":       models.CheckoutStatusAwaitingPayment,
		"created_at":   "1754049600",
	}
}

func TestHandleSuccess_RecordsTicketAndSettles(t *testing.T) {
	service, redisMock, memStore := setupTestCheckoutService()
	defer redisMock.ClearExpect()

	checkoutID := "checkout_u1_1754049600"
	redisMock.ExpectHGetAll("checkout:" + checkoutID).SetVal(checkoutSessionData())
	redisMock.ExpectHSet("checkout:"+checkoutID, map[string]any{
		"status": models.CheckoutStatusSucceeded,
	}).SetVal(0)

	ticket, err := service.HandleSuccess(context.Background(), checkoutID, models.PaymentOutcome{
		Reference:   "REF-1754049600000",
		AmountMinor: 2550000,
		Currency:    "NGN",
	})
	require.NoError(t, err)

	assert.Equal(t, "REF-1754049600000", ticket.TransactionReference)
	assert.True(t, ticket.Amount.Equal(decimal.NewFromInt(25500)), "got %s", ticket.Amount)

	snapshot, _ := memStore.Collection(context.Background(), store.TicketsPath("u1"))
	assert.Len(t, snapshot, 1)
	assert.NoError(t, redisMock.ExpectationsWereMet())
}

func TestHandleSuccess_FillsReferenceFromSession(t *testing.T) {
	service, redisMock, _ := setupTestCheckoutService()
	defer redisMock.ClearExpect()

	checkoutID := "checkout_u1_1754049600"
	redisMock.ExpectHGetAll("checkout:" + checkoutID).SetVal(checkoutSessionData())
	redisMock.ExpectHSet("checkout:"+checkoutID, map[string]any{
		"status": models.CheckoutStatusSucceeded,
	}).SetVal(0)

	ticket, err := service.HandleSuccess(context.Background(), checkoutID, models.PaymentOutcome{
		AmountMinor: 2550000,
	})
	require.NoError(t, err)

	assert.Equal(t, "REF-1754049600000", ticket.TransactionReference)
}

func TestHandleSuccess_UnknownCheckout(t *testing.T) {
	service, redisMock, _ := setupTestCheckoutService()
	defer redisMock.ClearExpect()

	redisMock.ExpectHGetAll("checkout:missing").SetVal(map[string]string{})

	_, err := service.HandleSuccess(context.Background(), "missing", models.PaymentOutcome{})
	assert.ErrorIs(t, err, status.ErrCheckoutNotFound)
}

func TestHandleClose_SettlesCancelled(t *testing.T) {
	service, redisMock, _ := setupTestCheckoutService()
	defer redisMock.ClearExpect()

	checkoutID := "checkout_u1_1754049600"
	redisMock.ExpectHGetAll("checkout:" + checkoutID).SetVal(checkoutSessionData())
	redisMock.ExpectHSet("checkout:"+checkoutID, map[string]any{
		"status": models.CheckoutStatusCancelled,
	}).SetVal(0)

	err := service.HandleClose(context.Background(), checkoutID)
	require.NoError(t, err)
	assert.NoError(t, redisMock.ExpectationsWereMet())
}

func TestHandleGatewayNotification_IgnoresNonSuccess(t *testing.T) {
	service, redisMock, _ := setupTestCheckoutService()
	defer redisMock.ClearExpect()

	err := service.HandleGatewayNotification(context.Background(), &status.Transaction{
		Reference: "REF-1754049600000",
		Status:    "failed",
	})

	assert.NoError(t, err)
	assert.NoError(t, redisMock.ExpectationsWereMet())
}

func TestHandleGatewayNotification_UnknownReference(t *testing.T) {
	service, redisMock, _ := setupTestCheckoutService()
	defer redisMock.ClearExpect()

	redisMock.ExpectGet("checkout_ref:REF-unknown").RedisNil()

	err := service.HandleGatewayNotification(context.Background(), &status.Transaction{
		Reference: "REF-unknown",
		Status:    "success",
		Amount:    decimal.NewFromInt(2550000),
	})

	assert.ErrorIs(t, err, status.ErrCheckoutNotFound)
}

func TestHandleGatewayNotification_SettlesFromReference(t *testing.T) {
	service, redisMock, memStore := setupTestCheckoutService()
	defer redisMock.ClearExpect()

	checkoutID := "checkout_u1_1754049600"
	redisMock.ExpectGet("checkout_ref:REF-1754049600000").SetVal(checkoutID)
	redisMock.ExpectHGetAll("checkout:" + checkoutID).SetVal(checkoutSessionData())
	redisMock.ExpectHSet("checkout:"+checkoutID, map[string]any{
		"status": models.CheckoutStatusSucceeded,
	}).SetVal(0)

	err := service.HandleGatewayNotification(context.Background(), &status.Transaction{
		Reference: "REF-1754049600000",
		Status:    "success",
		Amount:    decimal.NewFromInt(2550000),
		Currency:  "NGN",
	})
	require.NoError(t, err)

	snapshot, _ := memStore.Collection(context.Background(), store.TicketsPath("u1"))
	require.Len(t, snapshot, 1)
	assert.NoError(t, redisMock.ExpectationsWereMet())
}

func TestAuthorize_Owner(t *testing.T) {
	service, redisMock, _ := setupTestCheckoutService()
	defer redisMock.ClearExpect()

	checkoutID := "checkout_u1_1754049600"
	redisMock.ExpectHGetAll("checkout:" + checkoutID).SetVal(checkoutSessionData())

	session, err := service.Authorize(context.Background(), checkoutID, "u1")
	require.NoError(t, err)
	assert.Equal(t, "u1", session.OwnerID)
}

func TestAuthorize_OtherUsersCheckout(t *testing.T) {
	service, redisMock, memStore := setupTestCheckoutService()
	defer redisMock.ClearExpect()

	// Checkout ids are predictable, so a guessed id must not grant access
	// to someone else's in-flight session.
	checkoutID := "checkout_u1_1754049600"
	redisMock.ExpectHGetAll("checkout:" + checkoutID).SetVal(checkoutSessionData())

	_, err := service.Authorize(context.Background(), checkoutID, "intruder")
	assert.ErrorIs(t, err, status.ErrForbidden)

	// No settlement write and no ticket issued for the intruder.
	snapshot, _ := memStore.Collection(context.Background(), store.TicketsPath("intruder"))
	assert.Empty(t, snapshot)
	assert.NoError(t, redisMock.ExpectationsWereMet())
}

func TestAuthorize_UnknownCheckout(t *testing.T) {
	service, redisMock, _ := setupTestCheckoutService()
	defer redisMock.ClearExpect()

	redisMock.ExpectHGetAll("checkout:missing").SetVal(map[string]string{})

	_, err := service.Authorize(context.Background(), "missing", "u1")
	assert.ErrorIs(t, err, status.ErrCheckoutNotFound)
}

func TestLoad_ParsesSessionFields(t *testing.T) {
	service, redisMock, _ := setupTestCheckoutService()
	defer redisMock.ClearExpect()

	checkoutID := "checkout_u1_1754049600"
	redisMock.ExpectHGetAll("checkout:" + checkoutID).SetVal(checkoutSessionData())

	session, err := service.Load(context.Background(), checkoutID)
	require.NoError(t, err)

	assert.Equal(t, "u1", session.OwnerID)
	assert.Equal(t, int64(2550000), session.AmountMinor)
	assert.Equal(t, "Standard Room", session.Room.Title)
	assert.Equal(t, time.Unix(1754049600, 0), session.CreatedAt)
}

func TestMinorUnitsFromPrice(t *testing.T) {
	minor, err := minorUnitsFromPrice("25,500")
	require.NoError(t, err)
	assert.Equal(t, int64(2550000), minor)

	minor, err = minorUnitsFromPrice("600")
	require.NoError(t, err)
	assert.Equal(t, int64(60000), minor)

	_, err = minorUnitsFromPrice("free")
	assert.Error(t, err)
}

func TestSplitName(t *testing.T) {
	first, last := splitName("Ada Obi")
	assert.Equal(t, "Ada", first)
	assert.Equal(t, "Obi", last)

	first, last = splitName("Ada")
	assert.Equal(t, "Ada", first)
	assert.Equal(t, "", last)

	first, last = splitName("")
	assert.Equal(t, "", first)
	assert.Equal(t, "", last)
}
