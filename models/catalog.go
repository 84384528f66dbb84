package models

// Room is a bookable room type from the catalog.
type Room struct {
	ID    string   `json:"id"`
	Title string   `json:"title"`
	Price string   `json:"price"` // display-formatted major units per night
	Image string   `json:"image"`
	Tags  []string `json:"tags"`
}

// FoodItem is a menu entry. Section is breakfast or dinner.
type FoodItem struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Price   string `json:"price"`
	Image   string `json:"image"`
	Section string `json:"section"`
}
