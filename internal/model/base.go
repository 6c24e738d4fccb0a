package model

import (
	"database/sql/driver"
	"fmt"
	"strconv"
	"strings"
	"time"

	"gorm.io/gorm"
)

// ── PostgreSQL INT[] 自定义类型 ──

// IntArray 对应 PostgreSQL INT[] 类型，实现 GORM Scanner/Valuer 接口。
type IntArray []int

// Scan 将 PostgreSQL 返回的 {1,2,3} 文本解析为 []int。
func (a *IntArray) Scan(src interface{}) error {
	if src == nil {
		*a = nil
		return nil
	}
	var s string
	switch v := src.(type) {
	case []byte:
		s = string(v)
	case string:
		s = v
	default:
		return fmt.Errorf("IntArray.Scan: unsupported type %T", src)
	}
	s = strings.Trim(s, "{}")
	if s == "" {
		*a = IntArray{}
		return nil
	}
	parts := strings.Split(s, ",")
	arr := make(IntArray, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "NULL" {
			arr = append(arr, 0)
			continue
		}
		n, err := strconv.Atoi(p)
		if err != nil {
			return fmt.Errorf("IntArray.Scan: invalid element %q: %w", p, err)
		}
		arr = append(arr, n)
	}
	*a = arr
	return nil
}

// Value 将 []int 序列化为 PostgreSQL {1,2,3} 文本。
func (a IntArray) Value() (driver.Value, error) {
	if a == nil {
		return "{}", nil
	}
	parts := make([]string, len(a))
	for i, n := range a {
		parts[i] = strconv.Itoa(n)
	}
	return "{" + strings.Join(parts, ",") + "}", nil
}

// ── 按天覆盖值 ──
// 按天覆盖值以数组存储：下标 i 对应第 i+1 天，0 表示沿用标准值。

// DayOverrides 转换为 天序号 → 覆盖值
func (a IntArray) DayOverrides() map[int]int {
	out := make(map[int]int)
	for i, n := range a {
		if n > 0 {
			out[i+1] = n
		}
	}
	return out
}

// IntArrayFromOverrides 由 天序号 → 覆盖值 构建数组；超出天数或非正的值被丢弃
func IntArrayFromOverrides(overrides map[int]int, days int) IntArray {
	if len(overrides) == 0 || days <= 0 {
		return IntArray{}
	}
	arr := make(IntArray, days)
	used := false
	for day, n := range overrides {
		if day >= 1 && day <= days && n > 0 {
			arr[day-1] = n
			used = true
		}
	}
	if !used {
		return IntArray{}
	}
	return arr
}

// BaseModel 通用审计字段
type BaseModel struct {
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// SoftDeleteModel 支持软删除的审计字段
type SoftDeleteModel struct {
	BaseModel
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

// VersionedModel 支持乐观锁的软删除模型
type VersionedModel struct {
	SoftDeleteModel
	Version int `gorm:"not null;default:1" json:"version"`
}
