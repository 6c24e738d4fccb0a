package planner

import (
	"fmt"
	"math"
	"sort"
)

// SessionType 场次类型
type SessionType string

const (
	SessionTypePaper      SessionType = "paper"
	SessionTypeRoundTable SessionType = "round_table"
)

// SizeClass 场次规模（仅作展示标签）
type SizeClass string

const (
	SizeSmall    SizeClass = "small"
	SizeStandard SizeClass = "standard"
	SizeLarge    SizeClass = "large"
)

// Session 一个论文场次或圆桌场次
type Session struct {
	ID         int         `json:"id"`
	PaperCount int         `json:"paper_count"`
	Title      string      `json:"title"`
	Type       SessionType `json:"type"`
	Category   string      `json:"category,omitempty"`
	SizeClass  SizeClass   `json:"size_class,omitempty"`
	Duration   int         `json:"duration,omitempty"`
}

// CategoryStats 单个分类的统计
type CategoryStats struct {
	Sessions int `json:"sessions"`
	Papers   int `json:"papers"`
}

// Stats 论文场次统计
type Stats struct {
	Small               int                      `json:"small"`
	Standard            int                      `json:"standard"`
	Large               int                      `json:"large"`
	AvgPapersPerSession float64                  `json:"avg_papers_per_session"`
	MinActual           int                      `json:"min_actual"`
	MaxActual           int                      `json:"max_actual"`
	ByCategory          map[string]CategoryStats `json:"by_category,omitempty"`
}

// Distribution 论文分配结果
type Distribution struct {
	Sessions         []Session `json:"sessions"`
	TotalPapers      int       `json:"total_papers"`
	Categorized      bool      `json:"categorized"`
	CategoryMismatch bool      `json:"category_mismatch,omitempty"`
	Warnings         []string  `json:"warnings,omitempty"`
	Stats            Stats     `json:"stats"`
}

type sizeBounds struct {
	min, max, standard int
}

// boundsOf 上下限可能被填反，这里统一规整；目标值夹在 [min, max] 之间
func boundsOf(p Parameters) sizeBounds {
	lo, hi := p.MinPapersPerSession, p.MaxPapersPerSession
	if lo > hi {
		lo, hi = hi, lo
	}
	if lo < 1 {
		lo = 1
	}
	if hi < lo {
		hi = lo
	}
	return sizeBounds{min: lo, max: hi, standard: clamp(p.PapersPerSession, lo, hi)}
}

// ════════════════════════════════════════════════════════════
// DistributePapers — 贪心分配（不分类）
// ════════════════════════════════════════════════════════════

// DistributePapers 将全部论文按贪心规则切分为论文场次
func DistributePapers(p Parameters) []Session {
	return distribute(nil, p.TotalPapers, boundsOf(p), "", 1)
}

// DistributeByCategory 按分类切分：论文数多的分类优先，同数保持输入顺序；
// 合并尾部余量只发生在同一分类内部
func DistributeByCategory(p Parameters) []Session {
	b := boundsOf(p)

	cats := make([]Category, 0, len(p.Categories))
	for _, c := range p.Categories {
		if c.PaperCount > 0 {
			cats = append(cats, c)
		}
	}
	sort.SliceStable(cats, func(i, j int) bool {
		return cats[i].PaperCount > cats[j].PaperCount
	})

	var sessions []Session
	for _, c := range cats {
		sessions = distribute(sessions, c.PaperCount, b, c.Name, len(sessions)+1)
	}
	return sessions
}

// Distribute 选择分配方式并汇总统计
//
// 分类论文数之和与论文总数不一致时回退到不分类的算法，并给出告警。
func Distribute(p Parameters) Distribution {
	d := Distribution{TotalPapers: p.TotalPapers}

	if len(p.Categories) > 0 {
		sum := 0
		for _, c := range p.Categories {
			sum += c.PaperCount
		}
		if sum == p.TotalPapers {
			d.Categorized = true
			d.Sessions = DistributeByCategory(p)
		} else {
			d.CategoryMismatch = true
			d.Warnings = append(d.Warnings,
				fmt.Sprintf("分类论文数之和 (%d) 与论文总数 (%d) 不一致，已按不分类方式分配", sum, p.TotalPapers))
		}
	}
	if !d.Categorized {
		d.Sessions = DistributePapers(p)
	}
	if d.Sessions == nil {
		d.Sessions = []Session{}
	}

	d.Stats = SessionStats(d.Sessions, d.Categorized)
	return d
}

// distribute 单一分类（或全局）的贪心循环，结果追加到 sessions 之后
func distribute(sessions []Session, total int, b sizeBounds, category string, firstID int) []Session {
	start := len(sessions)
	remaining := total
	id := firstID

	for remaining > 0 {
		var size int

		if remaining <= b.max {
			// 1. 最后一场：够下限直接成场
			if remaining >= b.min {
				size = remaining
			} else if len(sessions) > start && sessions[len(sessions)-1].PaperCount+remaining <= b.max {
				// 2. 不够下限：并入同分类的上一场
				// 走到这里时要么没有上一场（单个偏小输入），要么上一场由拆分产生且 上一场 + remaining > max，
				// 因此该条件实际不会成立
				last := &sessions[len(sessions)-1]
				last.PaperCount += remaining
				last.Title = paperSessionTitle(last.ID, last.PaperCount, category)
				last.SizeClass = classify(last.PaperCount, b)
				break
			} else {
				// 3. 无法合并：保留一个偏小的场次
				size = remaining
			}
		} else {
			estimated := ceilDiv(remaining, b.standard)
			size = clamp(ceilDiv(remaining, estimated), b.min, b.max)
			// 避免剩下不足下限的尾巴
			if left := remaining - size; left > 0 && left < b.min {
				size = max(b.min, remaining-b.min)
			}
		}

		sessions = append(sessions, Session{
			ID:         id,
			PaperCount: size,
			Title:      paperSessionTitle(id, size, category),
			Type:       SessionTypePaper,
			Category:   category,
			SizeClass:  classify(size, b),
		})
		remaining -= size
		id++
	}

	return sessions
}

func classify(size int, b sizeBounds) SizeClass {
	switch {
	case size <= b.min+1:
		return SizeSmall
	case size >= b.max-1:
		return SizeLarge
	default:
		return SizeStandard
	}
}

func paperSessionTitle(id, papers int, category string) string {
	if category != "" {
		return fmt.Sprintf("%s Session %d (%d papers)", category, id, papers)
	}
	return fmt.Sprintf("Paper Session %d (%d papers)", id, papers)
}

// SessionStats 论文场次统计；byCategory 为 true 时附带分类维度
func SessionStats(sessions []Session, byCategory bool) Stats {
	var st Stats
	if len(sessions) == 0 {
		return st
	}
	if byCategory {
		st.ByCategory = make(map[string]CategoryStats)
	}

	total := 0
	st.MinActual = math.MaxInt
	for _, s := range sessions {
		switch s.SizeClass {
		case SizeSmall:
			st.Small++
		case SizeLarge:
			st.Large++
		default:
			st.Standard++
		}
		total += s.PaperCount
		st.MinActual = min(st.MinActual, s.PaperCount)
		st.MaxActual = max(st.MaxActual, s.PaperCount)

		if byCategory {
			cs := st.ByCategory[s.Category]
			cs.Sessions++
			cs.Papers += s.PaperCount
			st.ByCategory[s.Category] = cs
		}
	}
	st.AvgPapersPerSession = round1(float64(total) / float64(len(sessions)))
	return st
}

// RoundTableSessions 圆桌场次列表，编号从 1 开始
func RoundTableSessions(p Parameters) []Session {
	out := make([]Session, 0, p.TotalRoundTables)
	for i := 1; i <= p.TotalRoundTables; i++ {
		out = append(out, Session{
			ID:       i,
			Title:    fmt.Sprintf("Round Table %d", i),
			Type:     SessionTypeRoundTable,
			Duration: p.RoundTableDuration,
		})
	}
	return out
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
