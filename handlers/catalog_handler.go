package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/pocketbase/dbx"
	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/apis"
	"github.com/pocketbase/pocketbase/core"

	"hotel-booking/models"
)

type CatalogHandler struct {
	app *pocketbase.PocketBase
}

func NewCatalogHandler(app *pocketbase.PocketBase) *CatalogHandler {
	return &CatalogHandler{app: app}
}

// GetRooms - Bookable room catalog
func (h *CatalogHandler) GetRooms(e *core.RequestEvent) error {
	var records []dbx.NullStringMap
	err := h.app.DB().
		NewQuery("SELECT id, title, price, image, tags FROM rooms ORDER BY title").
		All(&records)
	if err != nil {
		return apis.NewBadRequestError("Failed to load rooms", err)
	}

	rooms := make([]models.Room, 0, len(records))
	for _, record := range records {
		room := models.Room{
			ID:    record["id"].String,
			Title: record["title"].String,
			Price: record["price"].String,
			Image: record["image"].String,
		}
		if raw := record["tags"].String; raw != "" {
			if err := json.Unmarshal([]byte(raw), &room.Tags); err != nil {
				room.Tags = nil
			}
		}
		rooms = append(rooms, room)
	}

	return e.JSON(http.StatusOK, rooms)
}

// GetFoods - Restaurant menu, optionally filtered by section
func (h *CatalogHandler) GetFoods(e *core.RequestEvent) error {
	query := "SELECT id, title, price, image, section FROM foods ORDER BY section, title"
	params := dbx.Params{}

	if section := e.Request.URL.Query().Get("section"); section != "" {
		query = "SELECT id, title, price, image, section FROM foods WHERE section = {:section} ORDER BY title"
		params["section"] = section
	}

	var records []dbx.NullStringMap
	if err := h.app.DB().NewQuery(query).Bind(params).All(&records); err != nil {
		return apis.NewBadRequestError("Failed to load foods", err)
	}

	foods := make([]models.FoodItem, 0, len(records))
	for _, record := range records {
		foods = append(foods, models.FoodItem{
			ID:      record["id"].String,
			Title:   record["title"].String,
			Price:   record["price"].String,
			Image:   record["image"].String,
			Section: record["section"].String,
		})
	}

	return e.JSON(http.StatusOK, foods)
}
