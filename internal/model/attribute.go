package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

const (
	AttributeText     = "text"
	AttributeDropdown = "dropdown"
	AttributeCheckbox = "checkbox"
)

func IsValidAttributeType(t string) bool {
	return t == AttributeText || t == AttributeDropdown || t == AttributeCheckbox
}

// StringList is stored as a JSON array in a text column.
type StringList []string

func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	b, err := json.Marshal([]string(l))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (l *StringList) Scan(src interface{}) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*l = StringList{}
		return nil
	case string:
		raw = []byte(v)
	case []byte:
		raw = v
	default:
		return fmt.Errorf("StringList: unsupported type %T", src)
	}
	if len(raw) == 0 {
		*l = StringList{}
		return nil
	}
	return json.Unmarshal(raw, (*[]string)(l))
}

type AttributeDefinition struct {
	ID        string     `db:"id" json:"id"`
	Name      string     `db:"name" json:"name"`
	Type      string     `db:"type" json:"type"`
	Options   StringList `db:"options" json:"options"`
	Required  bool       `db:"required" json:"required"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
}

type ProductAttribute struct {
	ID          string `db:"id" json:"id"`
	ProductID   string `db:"product_id" json:"product_id"`
	AttributeID string `db:"attribute_id" json:"attribute_id"`
	Value       string `db:"value" json:"value"`
}

// ProductAttributeValue is a binding joined with its definition.
type ProductAttributeValue struct {
	AttributeID string `db:"attribute_id" json:"attribute_id"`
	Name        string `db:"name" json:"name"`
	Type        string `db:"type" json:"type"`
	Value       string `db:"value" json:"value"`
}
