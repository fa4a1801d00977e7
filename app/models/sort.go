package models

import (
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// SortClients orders by last name then first name, case-insensitively and
// locale-aware. Ties keep their incoming order.
func SortClients(items []Client) {
	// a Collator is not safe for concurrent use
	c := collate.New(language.Und, collate.IgnoreCase)
	sort.SliceStable(items, func(i, j int) bool {
		if cmp := c.CompareString(items[i].LastName, items[j].LastName); cmp != 0 {
			return cmp < 0
		}
		return c.CompareString(items[i].FirstName, items[j].FirstName) < 0
	})
}

// SortProperties orders by address line 1, case-insensitively
func SortProperties(items []Property) {
	sort.SliceStable(items, func(i, j int) bool {
		return strings.ToLower(items[i].AddressLine1) < strings.ToLower(items[j].AddressLine1)
	})
}
