package handlers

import (
	"net/http"

	"github.com/pocketbase/pocketbase/apis"
	"github.com/pocketbase/pocketbase/core"
	"github.com/redis/go-redis/v9"

	"hotel-booking/services"
)

type AdminHandler struct {
	ticketService *services.TicketService
	redis         *redis.Client
}

func NewAdminHandler(ticketService *services.TicketService, redisClient *redis.Client) *AdminHandler {
	return &AdminHandler{
		ticketService: ticketService,
		redis:         redisClient,
	}
}

// AllocateTicket - Staff marks a ticket's room as handed over
func (h *AdminHandler) AllocateTicket(e *core.RequestEvent) error {
	if e.Auth == nil || !e.Auth.IsSuperuser() {
		return apis.NewForbiddenError("Staff access required", nil)
	}

	var req struct {
		OwnerID  string `json:"owner_id"`
		StoreKey string `json:"store_key"`
	}
	if err := e.BindBody(&req); err != nil {
		return apis.NewBadRequestError("Invalid request", err)
	}
	if req.OwnerID == "" || req.StoreKey == "" {
		return apis.NewBadRequestError("owner_id and store_key are required", nil)
	}

	ticket, err := h.ticketService.AllocateTicket(e.Request.Context(), req.OwnerID, req.StoreKey)
	if err != nil {
		return apis.NewBadRequestError("Failed to allocate ticket", err)
	}

	return e.JSON(http.StatusOK, map[string]any{"ticket": ticket})
}

// CheckoutDashboard - Snapshot of live checkout sessions by status
func (h *AdminHandler) CheckoutDashboard(e *core.RequestEvent) error {
	if e.Auth == nil || !e.Auth.IsSuperuser() {
		return apis.NewForbiddenError("Staff access required", nil)
	}

	ctx := e.Request.Context()
	keys, err := h.redis.Keys(ctx, "checkout:*").Result()
	if err != nil {
		return apis.NewBadRequestError("Failed to load sessions", err)
	}

	byStatus := map[string]int{}
	for _, key := range keys {
		sessionStatus, err := h.redis.HGet(ctx, key, "status").Result()
		if err != nil {
			continue
		}
		byStatus[sessionStatus]++
	}

	return e.JSON(http.StatusOK, map[string]any{
		"total":     len(keys),
		"by_status": byStatus,
	})
}
