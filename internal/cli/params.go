package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"convention-planner/config"
	"convention-planner/internal/planner"
)

// paramFlags 排期参数相关的命令行标志
type paramFlags struct {
	configFile     string
	categories     []string
	customSlots    map[string]int
	customRooms    map[string]int
	customSessions map[string]int
	asJSON         bool
}

// scalarFlags 数值标志与参数文件键的对应关系；键名与 HTTP 接口的 JSON 字段一致
var scalarFlags = []struct {
	flag  string
	key   string
	usage string
}{
	{"days", "convention_days", "number of convention days"},
	{"slots", "time_slots_per_day", "time slots per day"},
	{"rooms", "available_rooms", "rooms available per day"},
	{"sessions-per-slot", "sessions_per_time_slot", "parallel sessions per time slot"},
	{"papers", "total_papers", "total number of papers"},
	{"papers-per-session", "papers_per_session", "target papers per session"},
	{"min-papers", "min_papers_per_session", "minimum papers per session"},
	{"max-papers", "max_papers_per_session", "maximum papers per session"},
	{"round-tables", "total_round_tables", "number of round tables"},
	{"round-table-duration", "round_table_duration", "time slots occupied by each round table"},
}

func addParamFlags(cmd *cobra.Command, pf *paramFlags) {
	fs := cmd.Flags()
	for _, f := range scalarFlags {
		fs.Int(f.flag, 0, f.usage)
	}
	fs.StringVar(&pf.configFile, "config", "", "parameter file (yaml, toml or json); flags override its values")
	fs.StringArrayVar(&pf.categories, "category", nil, "paper category as name=papers; repeat in session order")
	fs.StringToIntVar(&pf.customSlots, "custom-slots", nil, "per-day time slots, e.g. 2=3,3=5")
	fs.StringToIntVar(&pf.customRooms, "custom-rooms", nil, "per-day rooms, e.g. 1=8")
	fs.StringToIntVar(&pf.customSessions, "custom-sessions", nil, "per-day sessions per slot, e.g. 3=2")
	fs.BoolVar(&pf.asJSON, "json", false, "print JSON instead of text")
}

// fileParams 参数文件内容；planner 段可覆盖表单缺省值
type fileParams struct {
	ConventionDays        int                  `mapstructure:"convention_days"`
	TimeSlotsPerDay       int                  `mapstructure:"time_slots_per_day"`
	AvailableRooms        int                  `mapstructure:"available_rooms"`
	SessionsPerTimeSlot   int                  `mapstructure:"sessions_per_time_slot"`
	CustomTimeSlots       map[int]int          `mapstructure:"custom_time_slots"`
	CustomRooms           map[int]int          `mapstructure:"custom_rooms"`
	CustomSessionsPerSlot map[int]int          `mapstructure:"custom_sessions_per_slot"`
	TotalPapers           int                  `mapstructure:"total_papers"`
	PapersPerSession      int                  `mapstructure:"papers_per_session"`
	MinPapersPerSession   int                  `mapstructure:"min_papers_per_session"`
	MaxPapersPerSession   int                  `mapstructure:"max_papers_per_session"`
	TotalRoundTables      int                  `mapstructure:"total_round_tables"`
	RoundTableDuration    int                  `mapstructure:"round_table_duration"`
	Categories            []fileCategory       `mapstructure:"categories"`
	Planner               config.PlannerConfig `mapstructure:"planner"`
}

type fileCategory struct {
	Name       string `mapstructure:"name"`
	PaperCount int    `mapstructure:"paper_count"`
}

// loadParameters 依次合并 缺省值 → 参数文件 → 命令行标志，并规整为排期参数
func loadParameters(cmd *cobra.Command, pf *paramFlags) (planner.Parameters, config.PlannerConfig, error) {
	v := viper.New()
	config.SetDefaults(v)

	if pf.configFile != "" {
		v.SetConfigFile(pf.configFile)
		if err := v.ReadInConfig(); err != nil {
			return planner.Parameters{}, config.PlannerConfig{}, fmt.Errorf("read parameter file: %w", err)
		}
	}

	for _, f := range scalarFlags {
		if err := v.BindPFlag(f.key, cmd.Flags().Lookup(f.flag)); err != nil {
			return planner.Parameters{}, config.PlannerConfig{}, err
		}
	}

	var fp fileParams
	if err := v.Unmarshal(&fp); err != nil {
		return planner.Parameters{}, config.PlannerConfig{}, fmt.Errorf("parse parameters: %w", err)
	}

	in := planner.Input{
		ConventionDays:      fp.ConventionDays,
		TimeSlotsPerDay:     fp.TimeSlotsPerDay,
		RoomsPerDay:         fp.AvailableRooms,
		SessionsPerSlot:     fp.SessionsPerTimeSlot,
		CustomTimeSlots:     fp.CustomTimeSlots,
		CustomRooms:         fp.CustomRooms,
		CustomSessionsSlot:  fp.CustomSessionsPerSlot,
		TotalPapers:         fp.TotalPapers,
		PapersPerSession:    fp.PapersPerSession,
		MinPapersPerSession: fp.MinPapersPerSession,
		MaxPapersPerSession: fp.MaxPapersPerSession,
		TotalRoundTables:    fp.TotalRoundTables,
		RoundTableDuration:  fp.RoundTableDuration,
	}
	for _, c := range fp.Categories {
		in.Categories = append(in.Categories, planner.Category{Name: c.Name, PaperCount: c.PaperCount})
	}

	var err error
	if cmd.Flags().Changed("category") {
		if in.Categories, err = parseCategories(pf.categories); err != nil {
			return planner.Parameters{}, config.PlannerConfig{}, err
		}
	}
	if in.CustomTimeSlots, err = mergeDays(in.CustomTimeSlots, pf.customSlots, "custom-slots"); err != nil {
		return planner.Parameters{}, config.PlannerConfig{}, err
	}
	if in.CustomRooms, err = mergeDays(in.CustomRooms, pf.customRooms, "custom-rooms"); err != nil {
		return planner.Parameters{}, config.PlannerConfig{}, err
	}
	if in.CustomSessionsSlot, err = mergeDays(in.CustomSessionsSlot, pf.customSessions, "custom-sessions"); err != nil {
		return planner.Parameters{}, config.PlannerConfig{}, err
	}

	return in.ParametersWith(fp.Planner.Defaults()), fp.Planner, nil
}

// parseCategories 解析 name=papers，保持给定顺序
func parseCategories(values []string) ([]planner.Category, error) {
	categories := make([]planner.Category, 0, len(values))
	for _, raw := range values {
		name, count, ok := strings.Cut(raw, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid --category %q: want name=papers", raw)
		}
		n, err := strconv.Atoi(strings.TrimSpace(count))
		if err != nil {
			return nil, fmt.Errorf("invalid --category %q: %w", raw, err)
		}
		categories = append(categories, planner.Category{Name: name, PaperCount: n})
	}
	return categories, nil
}

// mergeDays 标志中的按天覆盖值优先于参数文件
func mergeDays(base map[int]int, flags map[string]int, flag string) (map[int]int, error) {
	if len(flags) == 0 {
		return base, nil
	}
	merged := make(map[int]int, len(base)+len(flags))
	for day, n := range base {
		merged[day] = n
	}
	for key, n := range flags {
		day, err := strconv.Atoi(strings.TrimSpace(key))
		if err != nil || day < 1 {
			return nil, fmt.Errorf("invalid --%s day %q", flag, key)
		}
		merged[day] = n
	}
	return merged, nil
}
