package dto

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// FlexInt 宽松整数
//
// 接受 JSON 数字（截断小数）和以整数开头的字符串（"12"、" 7 rooms"）；
// 其余任何值都视为未填写，不会让整个请求解析失败。
type FlexInt struct {
	Value int
	Set   bool
}

// Int 返回整数值，未填写时为 0
func (f FlexInt) Int() int {
	if !f.Set {
		return 0
	}
	return f.Value
}

// NewFlexInt 构造已填写的 FlexInt
func NewFlexInt(v int) FlexInt {
	return FlexInt{Value: v, Set: true}
}

func (f *FlexInt) UnmarshalJSON(b []byte) error {
	*f = FlexInt{}

	var raw interface{}
	if err := json.Unmarshal(b, &raw); err != nil {
		return nil
	}

	switch v := raw.(type) {
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil
		}
		f.Value, f.Set = clampInt(math.Trunc(v)), true
	case string:
		f.Value, f.Set = leadingInt(v)
	}
	return nil
}

func (f FlexInt) MarshalJSON() ([]byte, error) {
	if !f.Set {
		return []byte("null"), nil
	}
	return []byte(strconv.Itoa(f.Value)), nil
}

// leadingInt 解析字符串开头的整数部分
func leadingInt(s string) (int, bool) {
	s = strings.TrimSpace(s)
	end := 0
	if end < len(s) && (s[end] == '+' || s[end] == '-') {
		end++
	}
	digits := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == digits {
		return 0, false
	}
	n, err := strconv.ParseFloat(s[:end], 64)
	if err != nil {
		return 0, false
	}
	return clampInt(n), true
}

func clampInt(v float64) int {
	if v > math.MaxInt32 {
		return math.MaxInt32
	}
	if v < math.MinInt32 {
		return math.MinInt32
	}
	return int(v)
}

// FlexIntMap 天序号 → 值；无法解析的天序号被忽略
type FlexIntMap map[string]FlexInt

// Days 转换为 天序号 → 值（未填写的项被忽略）
func (m FlexIntMap) Days() map[int]int {
	out := make(map[int]int, len(m))
	for k, v := range m {
		day, ok := leadingInt(k)
		if !ok || !v.Set {
			continue
		}
		out[day] = v.Value
	}
	return out
}

func (m *FlexIntMap) UnmarshalJSON(b []byte) error {
	var raw map[string]FlexInt
	if err := json.Unmarshal(b, &raw); err != nil {
		*m = nil
		return nil
	}
	*m = raw
	return nil
}
