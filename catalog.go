package rpi

import (
	"slices"
	"strings"
)

// ItemCatalog maps human readable item names to identifiers, case-insensitively.
type ItemCatalog interface {
	Lookup(name string) (ItemID, bool)
}

// Catalog is an in-memory ItemCatalog.
//
// The zero value is an empty catalog ready to use.
type Catalog struct {
	ids   map[string]ItemID
	names []string // sorted folded names
}

// fold is the single case-folding point of item names.
func fold(name string) string { return strings.ToLower(strings.TrimSpace(name)) }

// Add registers an item, replacing any item with the same folded name.
func (c *Catalog) Add(name string, id ItemID) *Catalog {
	key := fold(name)
	if c.ids == nil {
		c.ids = make(map[string]ItemID)
	}
	if _, exists := c.ids[key]; !exists {
		i, _ := slices.BinarySearch(c.names, key)
		c.names = slices.Insert(c.names, i, key)
	}
	c.ids[key] = id
	return c
}

// Lookup implements ItemCatalog.
func (c *Catalog) Lookup(name string) (ItemID, bool) {
	id, ok := c.ids[fold(name)]
	return id, ok
}

// Len returns the number of items in the catalog.
func (c *Catalog) Len() int { return len(c.names) }

// Names returns all the folded item names, sorted.
func (c *Catalog) Names() []string { return slices.Clone(c.names) }

// Search returns the folded names containing text, sorted.
func (c *Catalog) Search(text string) []string {
	text = fold(text)
	var found []string
	for _, name := range c.names {
		if strings.Contains(name, text) {
			found = append(found, name)
		}
	}
	return found
}
