package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// DepartmentYears lists the ordinal names a department's program runs through.
type DepartmentYears []string

// Value marshals years to JSON for persistence.
func (y DepartmentYears) Value() (driver.Value, error) {
	if y == nil {
		y = DepartmentYears{}
	}
	data, err := json.Marshal([]string(y))
	if err != nil {
		return nil, fmt.Errorf("marshal department years: %w", err)
	}
	return data, nil
}

// Scan unmarshals a JSON array into years.
func (y *DepartmentYears) Scan(value interface{}) error {
	if value == nil {
		*y = nil
		return nil
	}
	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported type %T for DepartmentYears", value)
	}
	if len(data) == 0 {
		*y = nil
		return nil
	}
	var years []string
	if err := json.Unmarshal(data, &years); err != nil {
		return fmt.Errorf("unmarshal department years: %w", err)
	}
	*y = years
	return nil
}

// Department owns students, faculty and an upload window.
type Department struct {
	ID        string          `db:"id" json:"id"`
	Name      string          `db:"name" json:"name"`
	Years     DepartmentYears `db:"years" json:"years"`
	CreatedAt time.Time       `db:"created_at" json:"createdAt"`
}

// ProgramLength is the number of ordinal years, or fallback when unset.
func (d Department) ProgramLength(fallback int) int {
	if len(d.Years) == 0 {
		return fallback
	}
	return len(d.Years)
}
