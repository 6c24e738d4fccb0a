package planner

import (
	"fmt"
	"sort"
)

// Position 网格中的一个位置：第 Day 天（从 1 开始）第 Slot 个时段（从 0 开始）第 Index 个场次位
type Position struct {
	Day   int `json:"day"`
	Slot  int `json:"slot"`
	Index int `json:"position"`
}

// Key 位置键，与会话定制记录共用
func (p Position) Key() string {
	return fmt.Sprintf("day%d_slot%d_pos%d", p.Day, p.Slot, p.Index)
}

// ParsePositionKey 解析 Key() 生成的位置键
func ParsePositionKey(key string) (Position, bool) {
	var p Position
	n, err := fmt.Sscanf(key, "day%d_slot%d_pos%d", &p.Day, &p.Slot, &p.Index)
	if err != nil || n != 3 || p.Key() != key {
		return Position{}, false
	}
	return p, true
}

// InRange 位置是否落在当天的网格内
func (p Parameters) InRange(pos Position) bool {
	slots, _, perSlot := p.Day(pos.Day)
	return pos.Slot >= 0 && pos.Slot < slots && pos.Index >= 0 && pos.Index < perSlot
}

// Layout 用户摆放结果：位置 → 论文场次编号，圆桌编号 → 起始位置
//
// 圆桌从起始位置开始，在同一天同一位置上连续占用 RoundTableDuration 个时段。
type Layout struct {
	Papers      map[Position]int
	RoundTables map[int]Position
}

// NewLayout 空布局
func NewLayout() Layout {
	return Layout{
		Papers:      make(map[Position]int),
		RoundTables: make(map[int]Position),
	}
}

// RoundTableAt 返回覆盖该位置的圆桌编号
func (l Layout) RoundTableAt(pos Position, duration int) (int, bool) {
	duration = max(duration, 1)
	for id, start := range l.RoundTables {
		if start.Day == pos.Day && start.Index == pos.Index &&
			pos.Slot >= start.Slot && pos.Slot < start.Slot+duration {
			return id, true
		}
	}
	return 0, false
}

// Occupied 位置上是否已有论文场次或圆桌
func (l Layout) Occupied(pos Position, duration int) bool {
	if _, ok := l.Papers[pos]; ok {
		return true
	}
	_, ok := l.RoundTableAt(pos, duration)
	return ok
}

// NextPaperSession 下一个尚未摆放的论文场次编号（从 1 开始取最小空缺）
func (l Layout) NextPaperSession() int {
	used := make(map[int]bool, len(l.Papers))
	for _, n := range l.Papers {
		used[n] = true
	}
	n := 1
	for used[n] {
		n++
	}
	return n
}

// FirstFreePosition 某天某时段第一个空闲位置
func (l Layout) FirstFreePosition(p Parameters, day, slot int) (Position, bool) {
	_, _, perSlot := p.Day(day)
	for i := 0; i < perSlot; i++ {
		pos := Position{Day: day, Slot: slot, Index: i}
		if p.InRange(pos) && !l.Occupied(pos, p.RoundTableDuration) {
			return pos, true
		}
	}
	return Position{}, false
}

// UnplacedRoundTables 尚未摆放的圆桌编号（升序）
func (l Layout) UnplacedRoundTables(total int) []int {
	var out []int
	for id := 1; id <= total; id++ {
		if _, ok := l.RoundTables[id]; !ok {
			out = append(out, id)
		}
	}
	return out
}

// PlacedPositions 已摆放论文场次的位置（按天、时段、位置排序）
func (l Layout) PlacedPositions() []Position {
	out := make([]Position, 0, len(l.Papers))
	for pos := range l.Papers {
		out = append(out, pos)
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Day != b.Day {
			return a.Day < b.Day
		}
		if a.Slot != b.Slot {
			return a.Slot < b.Slot
		}
		return a.Index < b.Index
	})
	return out
}

// ════════════════════════════════════════════════════════════
// AutoPopulate — 自动摆放
// ════════════════════════════════════════════════════════════

// AutoPopulate 按 天 → 时段 → 位置 顺序摆放
//
// 每个时段的最后一个位置优先给下一个圆桌（当天剩余时段足够容纳其时长时），
// 其余位置依次放论文场次；圆桌放完后最后一个位置也放论文场次。
// 全部摆放完即停止。
func AutoPopulate(p Parameters, paperSessions, roundTables int) Layout {
	l := NewLayout()
	papers, tables := 0, 0
	duration := max(p.RoundTableDuration, 1)

	for day := 1; day <= p.ConventionDays; day++ {
		slots, _, perSlot := p.Day(day)
		for slot := 0; slot < slots; slot++ {
			for i := 0; i < perSlot; i++ {
				if papers >= paperSessions && tables >= roundTables {
					return l
				}
				pos := Position{Day: day, Slot: slot, Index: i}
				if _, busy := l.RoundTableAt(pos, duration); busy {
					continue
				}

				last := i == perSlot-1
				if last && tables < roundTables && slot+duration <= slots {
					tables++
					l.RoundTables[tables] = pos
					continue
				}
				if papers < paperSessions {
					papers++
					l.Papers[pos] = papers
				}
			}
		}
	}
	return l
}
