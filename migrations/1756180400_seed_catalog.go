package migrations

import (
	"github.com/pocketbase/pocketbase/core"
	m "github.com/pocketbase/pocketbase/migrations"
)

type seedRoom struct {
	title string
	price string
	image string
	tags  []string
}

type seedFood struct {
	title   string
	price   string
	image   string
	section string
}

var seedRooms = []seedRoom{
	{"Standard Room", "25,500", "images/Standard.png", []string{"WIFI", "Security"}},
	{"Presidential Suite", "85,300", "images/Presidential.png", []string{"WIFI", "BreakFast", "Security"}},
	{"VIP Suite", "55,550", "images/Vip.png", []string{"WIFI", "BreakFast", "Security"}},
	{"Business Suite", "45,250", "images/business.png", []string{"WIFI", "Security"}},
}

var seedFoods = []seedFood{
	{"Chips Omelet", "3,000", "images/dinner/chip-omlette.png", "breakfast"},
	{"Bread, Sadden", "2,000", "images/dinner/bread-sadden.png", "breakfast"},
	{"Plain Toast Bread", "600", "images/dinner/platain-bread.png", "breakfast"},
	{"Bread & Tea", "1,200", "images/dinner/bread-tea.png", "breakfast"},
	{"Only Tea", "600", "images/dinner/tea.png", "breakfast"},
	{"Custard / Milk", "1,500", "images/dinner/custard.png", "breakfast"},
	{"Only Fried Rice", "1,000", "images/dinner/fried-rice.png", "dinner"},
	{"White Rice, Stew with Beans & Chicken", "4,500", "images/dinner/rice-stew.png", "dinner"},
	{"Only Jollof Rice", "1,500", "images/dinner/jallof.png", "dinner"},
	{"Beef Pepper Soup with Chips", "2,500", "images/dinner/pepper-soup.png", "dinner"},
	{"Tuwo Rice Draw, Goat Meat or Beef", "3,500", "images/dinner/tuwo.png", "dinner"},
	{"Jollof Spaghetti, Chicken or Fish", "3,500", "images/dinner/spagetti.png", "dinner"},
}

func init() {
	m.Register(func(app core.App) error {
		rooms, err := app.FindCollectionByNameOrId("rooms")
		if err != nil {
			return err
		}

		for _, room := range seedRooms {
			record := core.NewRecord(rooms)
			record.Set("title", room.title)
			record.Set("price", room.price)
			record.Set("image", room.image)
			record.Set("tags", room.tags)
			if err := app.Save(record); err != nil {
				return err
			}
		}

		foods, err := app.FindCollectionByNameOrId("foods")
		if err != nil {
			return err
		}

		for _, food := range seedFoods {
			record := core.NewRecord(foods)
			record.Set("title", food.title)
			record.Set("price", food.price)
			record.Set("image", food.image)
			record.Set("section", food.section)
			if err := app.Save(record); err != nil {
				return err
			}
		}

		return nil
	}, func(app core.App) error {
		for _, name := range []string{"rooms", "foods"} {
			records, err := app.FindAllRecords(name)
			if err != nil {
				continue
			}
			for _, record := range records {
				if err := app.Delete(record); err != nil {
					return err
				}
			}
		}
		return nil
	})
}
