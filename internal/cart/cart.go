package cart

import (
	"github.com/shopspring/decimal"
)

// CatalogItem is the slice of a menu item the cart needs to open a line.
type CatalogItem struct {
	ID        string
	Name      string
	UnitPrice decimal.Decimal
	ImageURL  string
}

// Line is one product at one quantity. Lines are addressed by the
// (item id, name) pair: upstream item ids are only unique within their
// menu section, so the id alone cannot identify "the same" product.
type Line struct {
	ItemID    string          `json:"id"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
	ImageURL  string          `json:"image_url,omitempty"`
}

func (l Line) matches(itemID, name string) bool {
	return l.ItemID == itemID && l.Name == name
}

// Cart is an ordered collection of lines. Insertion order matters only for
// display; totals are order-independent.
type Cart struct {
	lines []Line
}

// New returns an empty cart.
func New() *Cart {
	return &Cart{}
}

// SetQuantity is the sole mutation entry point: it sets the matched line to
// the absolute target quantity. A target below 1 on an existing line is a
// silent no-op; an absent line is inserted with quantity max(1, quantity).
// At most one line ever exists per (id, name) pair.
func (c *Cart) SetQuantity(item CatalogItem, quantity int) (Line, bool) {
	for i := range c.lines {
		if c.lines[i].matches(item.ID, item.Name) {
			if quantity < 1 {
				return c.lines[i], false
			}
			c.lines[i].Quantity = quantity
			return c.lines[i], true
		}
	}

	if quantity < 1 {
		quantity = 1
	}
	line := Line{
		ItemID:    item.ID,
		Name:      item.Name,
		UnitPrice: item.UnitPrice,
		Quantity:  quantity,
		ImageURL:  item.ImageURL,
	}
	c.lines = append(c.lines, line)
	return line, true
}

// Increment adjusts the matched line by delta on top of SetQuantity.
func (c *Cart) Increment(item CatalogItem, delta int) (Line, bool) {
	return c.SetQuantity(item, c.Quantity(item.ID, item.Name)+delta)
}

// Remove deletes exactly one line by its composite key. Removing an absent
// line is a no-op.
func (c *Cart) Remove(itemID, name string) bool {
	for i := range c.lines {
		if c.lines[i].matches(itemID, name) {
			c.lines = append(c.lines[:i], c.lines[i+1:]...)
			return true
		}
	}
	return false
}

// Quantity returns the matched line's quantity, or 0 when absent.
func (c *Cart) Quantity(itemID, name string) int {
	for i := range c.lines {
		if c.lines[i].matches(itemID, name) {
			return c.lines[i].Quantity
		}
	}
	return 0
}

// TotalPaise sums price x quantity over all lines in integer paise, so
// repeated additions can never drift the way float accumulation would.
func (c *Cart) TotalPaise() int64 {
	var total int64
	for i := range c.lines {
		linePaise := c.lines[i].UnitPrice.Shift(2).IntPart()
		total += linePaise * int64(c.lines[i].Quantity)
	}
	return total
}

// Total returns the display total in major currency units.
func (c *Cart) Total() decimal.Decimal {
	return decimal.New(c.TotalPaise(), -2)
}

// Lines returns a copy of the lines in insertion order.
func (c *Cart) Lines() []Line {
	out := make([]Line, len(c.lines))
	copy(out, c.lines)
	return out
}

// Len reports the number of distinct lines.
func (c *Cart) Len() int { return len(c.lines) }

// IsEmpty reports whether no lines are present.
func (c *Cart) IsEmpty() bool { return len(c.lines) == 0 }

// Clear drops every line.
func (c *Cart) Clear() {
	c.lines = nil
}

func (c *Cart) replace(lines []Line) {
	c.lines = lines
}
