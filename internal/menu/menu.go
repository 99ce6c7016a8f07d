// Package menu maps wall-clock time to one of the three fixed canteen menus.
package menu

import (
	"time"

	"github.com/facegate/canteen/internal/config"
)

// Bucket identifies one of the fixed time-of-day menus.
type Bucket string

const (
	Morning Bucket = "morning"
	Midday  Bucket = "midday"
	Evening Bucket = "evening"
)

// Hour boundaries between buckets. All buckets are half-open:
// [06,11) morning, [11,16) midday, everything else evening/snacks.
const (
	morningStartHour = 6
	middayStartHour  = 11
	eveningStartHour = 16
)

// Catalog holds the three ordered dish lists.
type Catalog struct {
	menus map[Bucket][]string
}

// NewCatalog builds a catalog from loaded configuration.
func NewCatalog(cfg config.MenusConfig) *Catalog {
	menus := make(map[Bucket][]string, len(cfg.Menus))
	for name, dishes := range cfg.Menus {
		menus[Bucket(name)] = dishes
	}
	return &Catalog{menus: menus}
}

// BucketFor returns the menu bucket for an instant in the given timezone.
func BucketFor(instant time.Time, tz *time.Location) Bucket {
	hour := instant.In(tz).Hour()
	switch {
	case hour >= morningStartHour && hour < middayStartHour:
		return Morning
	case hour >= middayStartHour && hour < eveningStartHour:
		return Midday
	default:
		return Evening
	}
}

// MenuFor returns the ordered dish list for an instant in the given timezone.
func (c *Catalog) MenuFor(instant time.Time, tz *time.Location) []string {
	return c.menus[BucketFor(instant, tz)]
}

// Menu returns the dish list for an explicit bucket.
func (c *Catalog) Menu(b Bucket) []string {
	return c.menus[b]
}
