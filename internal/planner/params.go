package planner

// ── 表单缺省值 ──
// 与前端输入框的缺省值保持一致：缺失、非数字、≤0 的输入一律回落到这些值。

const (
	DefaultConventionDays      = 3
	DefaultTimeSlotsPerDay     = 4
	DefaultRoomsPerDay         = 10
	DefaultSessionsPerSlot     = 3
	DefaultPapersPerSession    = 4
	DefaultMinPapersPerSession = 2
	DefaultMaxPapersPerSession = 6
	DefaultRoundTableDuration  = 1
)

// ── 上限 ──
// 计算量与网格大小随这些值线性增长，超过上限的输入按上限处理。

const (
	LimitConventionDays  = 31
	LimitTimeSlotsPerDay = 48
	LimitSessionsPerSlot = 100
	LimitRoomsPerDay     = 500
	LimitTotalPapers     = 10000
	LimitRoundTables     = 1000
)

// Defaults 可配置的表单缺省值（来自 config.PlannerConfig）
type Defaults struct {
	ConventionDays      int
	TimeSlotsPerDay     int
	RoomsPerDay         int
	SessionsPerSlot     int
	PapersPerSession    int
	MinPapersPerSession int
	MaxPapersPerSession int
	RoundTableDuration  int
	Limits              Limits
}

// Limits 各参数的上限；≤0 表示使用内置上限
type Limits struct {
	ConventionDays  int
	TimeSlotsPerDay int
	SessionsPerSlot int
	RoomsPerDay     int
	TotalPapers     int
	RoundTables     int
}

// StandardLimits 返回内置上限
func StandardLimits() Limits {
	return Limits{
		ConventionDays:  LimitConventionDays,
		TimeSlotsPerDay: LimitTimeSlotsPerDay,
		SessionsPerSlot: LimitSessionsPerSlot,
		RoomsPerDay:     LimitRoomsPerDay,
		TotalPapers:     LimitTotalPapers,
		RoundTables:     LimitRoundTables,
	}
}

// StandardDefaults 返回内置缺省值
func StandardDefaults() Defaults {
	return Defaults{
		ConventionDays:      DefaultConventionDays,
		TimeSlotsPerDay:     DefaultTimeSlotsPerDay,
		RoomsPerDay:         DefaultRoomsPerDay,
		SessionsPerSlot:     DefaultSessionsPerSlot,
		PapersPerSession:    DefaultPapersPerSession,
		MinPapersPerSession: DefaultMinPapersPerSession,
		MaxPapersPerSession: DefaultMaxPapersPerSession,
		RoundTableDuration:  DefaultRoundTableDuration,
		Limits:              StandardLimits(),
	}
}

// sanitize 配置里的缺省值本身也可能缺失；缺省值同样受上限约束
func (d Defaults) sanitize() Defaults {
	std := StandardDefaults()
	stdLim := std.Limits
	lim := Limits{
		ConventionDays:  orDefault(d.Limits.ConventionDays, stdLim.ConventionDays),
		TimeSlotsPerDay: orDefault(d.Limits.TimeSlotsPerDay, stdLim.TimeSlotsPerDay),
		SessionsPerSlot: orDefault(d.Limits.SessionsPerSlot, stdLim.SessionsPerSlot),
		RoomsPerDay:     orDefault(d.Limits.RoomsPerDay, stdLim.RoomsPerDay),
		TotalPapers:     orDefault(d.Limits.TotalPapers, stdLim.TotalPapers),
		RoundTables:     orDefault(d.Limits.RoundTables, stdLim.RoundTables),
	}
	return Defaults{
		ConventionDays:      min(orDefault(d.ConventionDays, std.ConventionDays), lim.ConventionDays),
		TimeSlotsPerDay:     min(orDefault(d.TimeSlotsPerDay, std.TimeSlotsPerDay), lim.TimeSlotsPerDay),
		RoomsPerDay:         min(orDefault(d.RoomsPerDay, std.RoomsPerDay), lim.RoomsPerDay),
		SessionsPerSlot:     min(orDefault(d.SessionsPerSlot, std.SessionsPerSlot), lim.SessionsPerSlot),
		PapersPerSession:    min(orDefault(d.PapersPerSession, std.PapersPerSession), lim.TotalPapers),
		MinPapersPerSession: min(orDefault(d.MinPapersPerSession, std.MinPapersPerSession), lim.TotalPapers),
		MaxPapersPerSession: min(orDefault(d.MaxPapersPerSession, std.MaxPapersPerSession), lim.TotalPapers),
		RoundTableDuration:  min(orDefault(d.RoundTableDuration, std.RoundTableDuration), lim.TimeSlotsPerDay),
		Limits:              lim,
	}
}

// Category 论文分类及其论文数
type Category struct {
	Name       string `json:"name"`
	PaperCount int    `json:"paper_count"`
}

// Input 原始表单输入（未做缺省处理）
//
// Custom* 为按天覆盖值，key 为天序号（从 1 开始）。
type Input struct {
	ConventionDays      int
	TimeSlotsPerDay     int
	RoomsPerDay         int
	SessionsPerSlot     int
	CustomTimeSlots     map[int]int
	CustomRooms         map[int]int
	CustomSessionsSlot  map[int]int
	TotalPapers         int
	PapersPerSession    int
	MinPapersPerSession int
	MaxPapersPerSession int
	TotalRoundTables    int
	RoundTableDuration  int
	Categories          []Category
}

// Parameters 规整后的排期参数，每次重算都重新生成，不做增量修改
type Parameters struct {
	ConventionDays          int        `json:"convention_days"`
	StandardTimeSlots       int        `json:"standard_time_slots"`
	StandardRooms           int        `json:"standard_rooms"`
	StandardSessionsPerSlot int        `json:"standard_sessions_per_slot"`
	TimeSlotsPerDay         []int      `json:"time_slots_per_day"`
	RoomsPerDay             []int      `json:"rooms_per_day"`
	SessionsPerSlotPerDay   []int      `json:"sessions_per_slot_per_day"`
	CustomDaily             bool       `json:"custom_daily"`
	TotalPapers             int        `json:"total_papers"`
	PapersPerSession        int        `json:"papers_per_session"`
	MinPapersPerSession     int        `json:"min_papers_per_session"`
	MaxPapersPerSession     int        `json:"max_papers_per_session"`
	TotalRoundTables        int        `json:"total_round_tables"`
	RoundTableDuration      int        `json:"round_table_duration"`
	Categories              []Category `json:"categories,omitempty"`
}

// Parameters 使用内置缺省值规整输入
func (in Input) Parameters() Parameters {
	return in.ParametersWith(StandardDefaults())
}

// ParametersWith 使用给定缺省值规整输入
//
// 规则：
//   - 天数、时段、会议室、每时段场次、每场论文数、上下限、圆桌时长：≤0 → 缺省值
//   - 论文总数、圆桌总数：负数 → 0
//   - 按天覆盖值仅在为正且不同于标准值时生效；任一覆盖生效即视为自定义日配置
//   - 所有值（含按天覆盖值与分类论文数）截断到 d.Limits
func (in Input) ParametersWith(d Defaults) Parameters {
	d = d.sanitize()
	lim := d.Limits

	p := Parameters{
		ConventionDays:          min(orDefault(in.ConventionDays, d.ConventionDays), lim.ConventionDays),
		StandardTimeSlots:       min(orDefault(in.TimeSlotsPerDay, d.TimeSlotsPerDay), lim.TimeSlotsPerDay),
		StandardRooms:           min(orDefault(in.RoomsPerDay, d.RoomsPerDay), lim.RoomsPerDay),
		StandardSessionsPerSlot: min(orDefault(in.SessionsPerSlot, d.SessionsPerSlot), lim.SessionsPerSlot),
		TotalPapers:             min(nonNegative(in.TotalPapers), lim.TotalPapers),
		PapersPerSession:        min(orDefault(in.PapersPerSession, d.PapersPerSession), lim.TotalPapers),
		MinPapersPerSession:     min(orDefault(in.MinPapersPerSession, d.MinPapersPerSession), lim.TotalPapers),
		MaxPapersPerSession:     min(orDefault(in.MaxPapersPerSession, d.MaxPapersPerSession), lim.TotalPapers),
		TotalRoundTables:        min(nonNegative(in.TotalRoundTables), lim.RoundTables),
		RoundTableDuration:      min(orDefault(in.RoundTableDuration, d.RoundTableDuration), lim.TimeSlotsPerDay),
	}

	p.TimeSlotsPerDay = make([]int, p.ConventionDays)
	p.RoomsPerDay = make([]int, p.ConventionDays)
	p.SessionsPerSlotPerDay = make([]int, p.ConventionDays)

	for day := 1; day <= p.ConventionDays; day++ {
		i := day - 1
		var custom bool
		p.TimeSlotsPerDay[i], custom = override(in.CustomTimeSlots, day, p.StandardTimeSlots, lim.TimeSlotsPerDay)
		p.CustomDaily = p.CustomDaily || custom
		p.RoomsPerDay[i], custom = override(in.CustomRooms, day, p.StandardRooms, lim.RoomsPerDay)
		p.CustomDaily = p.CustomDaily || custom
		p.SessionsPerSlotPerDay[i], custom = override(in.CustomSessionsSlot, day, p.StandardSessionsPerSlot, lim.SessionsPerSlot)
		p.CustomDaily = p.CustomDaily || custom
	}

	for _, c := range in.Categories {
		p.Categories = append(p.Categories, Category{Name: c.Name, PaperCount: min(nonNegative(c.PaperCount), lim.TotalPapers)})
	}

	return p
}

// TotalTimeSlots 全部天数的时段总数
func (p Parameters) TotalTimeSlots() int {
	total := 0
	for _, n := range p.TimeSlotsPerDay {
		total += n
	}
	return total
}

// RoundTableSessionCount 圆桌占用的场次数（圆桌数 × 时长）
func (p Parameters) RoundTableSessionCount() int {
	return p.TotalRoundTables * p.RoundTableDuration
}

// Day 第 day 天（从 1 开始）的时段数、会议室数与每时段场次数；越界返回 0
func (p Parameters) Day(day int) (slots, rooms, perSlot int) {
	if day < 1 || day > len(p.TimeSlotsPerDay) {
		return 0, 0, 0
	}
	i := day - 1
	return p.TimeSlotsPerDay[i], p.RoomsPerDay[i], p.SessionsPerSlotPerDay[i]
}

func override(custom map[int]int, day, standard, limit int) (int, bool) {
	v, ok := custom[day]
	if ok {
		v = min(v, limit)
	}
	if !ok || v <= 0 || v == standard {
		return standard, false
	}
	return v, true
}

func orDefault(v, def int) int {
	if v > 0 {
		return v
	}
	return def
}

func nonNegative(v int) int {
	if v < 0 {
		return 0
	}
	return v
}

func ceilDiv(a, b int) int {
	if b <= 0 {
		return 0
	}
	return (a + b - 1) / b
}
