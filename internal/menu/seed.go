package menu

import (
	"context"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/poornima-canteen/canteen-backend/pkg/db/models"
	"github.com/poornima-canteen/canteen-backend/pkg/logger"
)

type seedItem struct {
	name  string
	price string
	desc  string
}

type seedSection struct {
	name  string
	items []seedItem
}

var defaultMenu = []seedSection{
	{
		name: "Breakfast",
		items: []seedItem{
			{name: "Poha", price: "25.00", desc: "Flattened rice with peanuts and curry leaves"},
			{name: "Idli Sambhar", price: "40.00", desc: "Two steamed idlis with sambhar and chutney"},
			{name: "Aloo Paratha", price: "35.00", desc: "Stuffed paratha with curd and pickle"},
		},
	},
	{
		name: "Lunch",
		items: []seedItem{
			{name: "Veg Thali", price: "80.00", desc: "Dal, sabzi, rice, roti and salad"},
			{name: "Chole Bhature", price: "60.00", desc: "Spicy chickpeas with two bhature"},
			{name: "Paneer Rice Bowl", price: "90.00", desc: "Paneer tikka over jeera rice"},
		},
	},
	{
		name: "Snacks",
		items: []seedItem{
			{name: "Samosa", price: "15.00", desc: "Crisp pastry with spiced potato filling"},
			{name: "Vada Pav", price: "20.00", desc: "Mumbai style with dry garlic chutney"},
			{name: "Veg Maggi", price: "30.00", desc: "Masala maggi with vegetables"},
		},
	},
	{
		name: "Beverages",
		items: []seedItem{
			{name: "Masala Chai", price: "10.00", desc: "Kadak chai with ginger and cardamom"},
			{name: "Cold Coffee", price: "40.00", desc: "Blended with ice cream"},
			{name: "Sweet Lassi", price: "30.00", desc: "Thick curd lassi"},
		},
	},
}

// Seed installs the default catalog on first boot. An already populated
// catalog is never touched.
func Seed(ctx context.Context, repo Repository, logg *logger.Logger) error {
	count, err := repo.CountSections(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	for position, def := range defaultMenu {
		section := &models.MenuSection{
			ID:       def.name,
			Name:     def.name,
			Position: position,
		}
		if err := repo.CreateSection(ctx, section); err != nil {
			return err
		}
		for i, item := range def.items {
			desc := item.desc
			record := &models.MenuItem{
				ID:          itemID(i),
				SectionID:   section.ID,
				Name:        item.name,
				Price:       decimal.RequireFromString(item.price),
				Description: &desc,
			}
			if err := repo.CreateItem(ctx, record); err != nil {
				return err
			}
		}
	}
	if logg != nil {
		logg.Info(ctx, "default menu seeded")
	}
	return nil
}

func itemID(index int) string {
	return strconv.Itoa(index + 1)
}
