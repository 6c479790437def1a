package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// JSONColumn stores a value as a JSON document (jsonb on Postgres, text on SQLite)
type JSONColumn[T any] struct {
	Data T
}

// NewJSONColumn wraps v for storage
func NewJSONColumn[T any](v T) JSONColumn[T] {
	return JSONColumn[T]{Data: v}
}

// Value implements the driver.Valuer interface
func (c JSONColumn[T]) Value() (driver.Value, error) {
	b, err := json.Marshal(c.Data)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements the sql.Scanner interface
func (c *JSONColumn[T]) Scan(value interface{}) error {
	var bytes []byte
	switch v := value.(type) {
	case nil:
		var zero T
		c.Data = zero
		return nil
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return fmt.Errorf("unsupported JSON column type %T", value)
	}
	return json.Unmarshal(bytes, &c.Data)
}

func (c JSONColumn[T]) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.Data)
}

func (c *JSONColumn[T]) UnmarshalJSON(b []byte) error {
	return json.Unmarshal(b, &c.Data)
}
