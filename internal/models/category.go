package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// CategoryLevel is one tier of a category, e.g. {"National", 20}.
type CategoryLevel struct {
	Name   string `json:"name"`
	Points int    `json:"points"`
}

// CategoryLevels is persisted as a JSONB array.
type CategoryLevels []CategoryLevel

// Value marshals levels to JSON for persistence.
func (l CategoryLevels) Value() (driver.Value, error) {
	if l == nil {
		l = CategoryLevels{}
	}
	data, err := json.Marshal([]CategoryLevel(l))
	if err != nil {
		return nil, fmt.Errorf("marshal category levels: %w", err)
	}
	return data, nil
}

// Scan unmarshals a JSON array into levels.
func (l *CategoryLevels) Scan(value interface{}) error {
	if value == nil {
		*l = nil
		return nil
	}
	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported type %T for CategoryLevels", value)
	}
	if len(data) == 0 {
		*l = nil
		return nil
	}
	var levels []CategoryLevel
	if err := json.Unmarshal(data, &levels); err != nil {
		return fmt.Errorf("unmarshal category levels: %w", err)
	}
	*l = levels
	return nil
}

// Category groups certificates and defines how many points they are worth.
type Category struct {
	ID        string         `db:"id" json:"id"`
	Name      string         `db:"name" json:"name"`
	Points    *int           `db:"points" json:"points,omitempty"`
	Levels    CategoryLevels `db:"levels" json:"levels"`
	CreatedAt time.Time      `db:"created_at" json:"createdAt"`
}

// Flat reports whether the category uses the legacy single value shape.
func (c Category) Flat() bool {
	return len(c.Levels) == 0
}

// PointsFor returns the points of the named level. Flat categories accept
// only the empty level.
func (c Category) PointsFor(level string) (int, bool) {
	level = strings.TrimSpace(level)
	if c.Flat() {
		if level != "" || c.Points == nil {
			return 0, false
		}
		return *c.Points, true
	}
	for _, l := range c.Levels {
		if l.Name == level {
			return l.Points, true
		}
	}
	return 0, false
}
