package handlers

import (
	"net/http"
	"strconv"

	"github.com/pocketbase/pocketbase/apis"
	"github.com/pocketbase/pocketbase/core"

	"hotel-booking/models"
	"hotel-booking/services"
)

type OrderHandler struct {
	ledgerService *services.LedgerService
	badgeService  *services.BadgeService
	pageSize      int
}

func NewOrderHandler(ledgerService *services.LedgerService, badgeService *services.BadgeService, pageSize int) *OrderHandler {
	if pageSize < 1 {
		pageSize = services.DefaultPageSize
	}
	return &OrderHandler{
		ledgerService: ledgerService,
		badgeService:  badgeService,
		pageSize:      pageSize,
	}
}

// ListOrders - One page of the caller's ticket ledger, newest first
func (h *OrderHandler) ListOrders(e *core.RequestEvent) error {
	if e.Auth == nil {
		return apis.NewUnauthorizedError("Unauthorized", nil)
	}

	page := 1
	if raw := e.Request.URL.Query().Get("page"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			return apis.NewBadRequestError("Invalid page number", err)
		}
		page = parsed
	}

	tickets, err := h.ledgerService.ListTickets(e.Request.Context(), e.Auth.Id)
	if err != nil {
		return apis.NewBadRequestError("Failed to load orders", err)
	}

	items := services.Page(tickets, page, h.pageSize)
	rows := make([]models.TicketRow, 0, len(items))
	for _, ticket := range items {
		rows = append(rows, services.RowFor(ticket))
	}

	return e.JSON(http.StatusOK, map[string]any{
		"page":    page,
		"pages":   services.TotalPages(len(tickets), h.pageSize),
		"total":   len(tickets),
		"tickets": items,
		"rows":    rows,
	})
}

// GetBadge - Unread ticket count for the navigation badge
func (h *OrderHandler) GetBadge(e *core.RequestEvent) error {
	if e.Auth == nil {
		return apis.NewUnauthorizedError("Unauthorized", nil)
	}

	count, err := h.badgeService.Unread(e.Request.Context(), e.Auth.Id)
	if err != nil {
		return apis.NewBadRequestError("Failed to load badge", err)
	}

	return e.JSON(http.StatusOK, map[string]int{"unread": count})
}

// MarkBadgeSeen - Reset the badge, as opening the order screen does
func (h *OrderHandler) MarkBadgeSeen(e *core.RequestEvent) error {
	if e.Auth == nil {
		return apis.NewUnauthorizedError("Unauthorized", nil)
	}

	h.badgeService.MarkSeen(e.Auth.Id)
	return e.JSON(http.StatusOK, map[string]string{"status": "ok"})
}
