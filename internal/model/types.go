package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// StringList 以 JSON 字符串数组存储的列（图片、卖点等）
type StringList []string

// Value 写入时编码为 JSON 文本
func (s StringList) Value() (driver.Value, error) {
	if s == nil {
		return "[]", nil
	}
	b, err := json.Marshal([]string(s))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan 读取时解码；内容损坏时返回空数组而不是报错
func (s *StringList) Scan(src interface{}) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*s = StringList{}
		return nil
	case string:
		raw = []byte(v)
	case []byte:
		raw = v
	default:
		return fmt.Errorf("StringList: unsupported type %T", src)
	}
	*s = ParseStringList(string(raw))
	return nil
}

// ParseStringList 容错解析 JSON 字符串数组
func ParseStringList(raw string) StringList {
	var out []string
	if err := json.Unmarshal([]byte(raw), &out); err != nil || out == nil {
		return StringList{}
	}
	return out
}

// First 第一个元素，空时返回 ""
func (s StringList) First() string {
	if len(s) == 0 {
		return ""
	}
	return s[0]
}

// All 返回需要迁移的全部模型
func All() []interface{} {
	return []interface{}{
		&User{},
		&Address{},
		&Category{},
		&Product{},
		&CartItem{},
		&Order{},
		&OrderItem{},
		&ProductReview{},
	}
}
