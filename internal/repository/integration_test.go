//go:build integration

package repository_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"convention-planner/internal/model"
	"convention-planner/internal/repository"
	"convention-planner/pkg/database"
	pkgerrors "convention-planner/pkg/errors"
)

// ═══════════════════════════════════════════════════════════
// Test Setup
// ═══════════════════════════════════════════════════════════

var testDB *gorm.DB

func TestMain(m *testing.M) {
	dsn := os.Getenv("TEST_DATABASE_DSN")
	if dsn == "" {
		dsn = "host=localhost port=5433 user=postgres password=postgres dbname=convention_planner_test sslmode=disable TimeZone=UTC"
	}

	var err error
	testDB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "无法连接测试数据库: %v\n", err)
		os.Exit(1)
	}

	sqlDB, err := testDB.DB()
	if err != nil {
		fmt.Fprintf(os.Stderr, "获取底层连接失败: %v\n", err)
		os.Exit(1)
	}
	if err := database.RunMigrations(sqlDB, zap.NewNop()); err != nil {
		fmt.Fprintf(os.Stderr, "迁移失败: %v\n", err)
		os.Exit(1)
	}

	code := m.Run()
	os.Exit(code)
}

// setupConvention 创建一个会议并返回清理函数（子表随 ON DELETE CASCADE 一并删除）
func setupConvention(t *testing.T) (*model.Convention, func()) {
	t.Helper()

	conv := &model.Convention{
		Name:                fmt.Sprintf("测试会议-%d", time.Now().UnixNano()),
		ConventionDays:      2,
		TimeSlotsPerDay:     3,
		AvailableRooms:      4,
		SessionsPerTimeSlot: 2,
		CustomTimeSlots:     model.IntArray{0, 5},
		CustomRooms:         model.IntArray{},
		CustomSessions:      model.IntArray{},
		PapersPerSession:    4,
		MinPapersPerSession: 2,
		MaxPapersPerSession: 6,
		RoundTableDuration:  1,
		Categories:          []model.CategoryEntry{{Name: "AI", PaperCount: 8}},
		SlotLabels:          map[int][]string{1: {"Morning"}},
		SlotTimes:           map[string]string{"1:0": "09:00"},
		SessionLabels:       map[string]string{"paper_session_1": "Keynote"},
	}
	if err := testDB.WithContext(context.Background()).Create(conv).Error; err != nil {
		t.Fatalf("创建会议失败: %v", err)
	}

	cleanup := func() {
		testDB.Unscoped().Where("convention_id = ?", conv.ConventionID).Delete(&model.Convention{})
	}
	return conv, cleanup
}

// ═══════════════════════════════════════════════════════════
// Test: Convention
// ═══════════════════════════════════════════════════════════

func TestConvention_RoundTrip(t *testing.T) {
	conv, cleanup := setupConvention(t)
	defer cleanup()

	repo := repository.NewRepository(testDB)
	found, err := repo.Convention.GetByID(context.Background(), conv.ConventionID)
	if err != nil {
		t.Fatalf("查询会议失败: %v", err)
	}

	if got := found.CustomTimeSlots.DayOverrides(); got[2] != 5 || len(got) != 1 {
		t.Errorf("按天覆盖值不符: %v", got)
	}
	if len(found.Categories) != 1 || found.Categories[0].Name != "AI" {
		t.Errorf("分类不符: %+v", found.Categories)
	}
	if found.SlotLabels[1][0] != "Morning" {
		t.Errorf("时段标签不符: %+v", found.SlotLabels)
	}
	if found.SlotTimes["1:0"] != "09:00" {
		t.Errorf("开始时间不符: %+v", found.SlotTimes)
	}
	if found.SessionLabels["paper_session_1"] != "Keynote" {
		t.Errorf("场次标签不符: %+v", found.SessionLabels)
	}
	if found.Version != 1 {
		t.Errorf("期望初始版本 1，实际 %d", found.Version)
	}
}

func TestConvention_SoftDelete(t *testing.T) {
	conv, cleanup := setupConvention(t)
	defer cleanup()

	repo := repository.NewRepository(testDB)
	ctx := context.Background()

	if err := repo.Convention.Delete(ctx, conv.ConventionID); err != nil {
		t.Fatalf("删除会议失败: %v", err)
	}
	if _, err := repo.Convention.GetByID(ctx, conv.ConventionID); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Errorf("期望删除后查不到，实际 err=%v", err)
	}
	if err := repo.Convention.Delete(ctx, conv.ConventionID); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Errorf("重复删除应返回 ErrRecordNotFound，实际 %v", err)
	}
}

// ═══════════════════════════════════════════════════════════
// Test: Optimistic Lock
// ═══════════════════════════════════════════════════════════

func TestOptimisticLock_Convention_ConflictDetected(t *testing.T) {
	conv, cleanup := setupConvention(t)
	defer cleanup()

	repo := repository.NewRepository(testDB)
	ctx := context.Background()

	// 模拟并发：获取两份副本
	copy1, _ := repo.Convention.GetByID(ctx, conv.ConventionID)
	copy2, _ := repo.Convention.GetByID(ctx, conv.ConventionID)

	copy1.TotalPapers = 20
	if err := repo.Convention.Update(ctx, copy1); err != nil {
		t.Fatalf("第一次更新失败: %v", err)
	}
	if copy1.Version != 2 {
		t.Errorf("期望版本 2，实际 %d", copy1.Version)
	}

	copy2.TotalPapers = 30
	err := repo.Convention.Update(ctx, copy2)
	if !errors.Is(err, pkgerrors.ErrOptimisticLock) {
		t.Fatalf("期望 ErrOptimisticLock，实际 %v", err)
	}
	if copy2.Version != 1 {
		t.Errorf("冲突后版本应回退为 1，实际 %d", copy2.Version)
	}

	found, _ := repo.Convention.GetByID(ctx, conv.ConventionID)
	if found.TotalPapers != 20 {
		t.Errorf("期望保留第一次更新的 20，实际 %d", found.TotalPapers)
	}
}

// ═══════════════════════════════════════════════════════════
// Test: Transaction
// ═══════════════════════════════════════════════════════════

func TestTransaction_Rollback(t *testing.T) {
	conv, cleanup := setupConvention(t)
	defer cleanup()

	repo := repository.NewRepository(testDB)
	ctx := context.Background()

	tx, err := repo.BeginTx(ctx)
	if err != nil {
		t.Fatalf("BeginTx 失败: %v", err)
	}
	txRepo := repo.WithTx(tx)

	paper := &model.Paper{ConventionID: conv.ConventionID, Title: "T", StudentName: "S", School: "U", Category: "AI"}
	if err := txRepo.Paper.Create(ctx, paper); err != nil {
		tx.Rollback()
		t.Fatalf("事务内创建论文失败: %v", err)
	}
	tx.Rollback()

	if _, err := repo.Paper.GetByID(ctx, conv.ConventionID, paper.PaperID); err == nil {
		t.Fatal("期望回滚后查不到论文，但实际查到了")
	}
}

// ═══════════════════════════════════════════════════════════
// Test: Papers & Assignments
// ═══════════════════════════════════════════════════════════

func TestPaperAssignment_ReassignMovesPaper(t *testing.T) {
	conv, cleanup := setupConvention(t)
	defer cleanup()

	repo := repository.NewRepository(testDB)
	ctx := context.Background()

	papers := []model.Paper{
		{ConventionID: conv.ConventionID, Title: "P1", StudentName: "A", School: "X", Category: "AI"},
		{ConventionID: conv.ConventionID, Title: "P2", StudentName: "B", School: "Y", Category: "AI"},
	}
	if err := repo.Paper.BatchCreate(ctx, papers); err != nil {
		t.Fatalf("批量创建论文失败: %v", err)
	}

	if err := repo.Assignment.Assign(ctx, &model.PaperAssignment{ConventionID: conv.ConventionID, SessionNumber: 1, PaperID: papers[0].PaperID}); err != nil {
		t.Fatalf("分配失败: %v", err)
	}
	// 同一论文再次分配即改挂
	if err := repo.Assignment.Assign(ctx, &model.PaperAssignment{ConventionID: conv.ConventionID, SessionNumber: 2, PaperID: papers[0].PaperID}); err != nil {
		t.Fatalf("改挂失败: %v", err)
	}

	list, err := repo.Assignment.ListByConvention(ctx, conv.ConventionID)
	if err != nil {
		t.Fatalf("查询分配失败: %v", err)
	}
	if len(list) != 1 || list[0].SessionNumber != 2 {
		t.Fatalf("期望唯一分配在场次 2，实际 %+v", list)
	}
	if list[0].Paper == nil || list[0].Paper.Title != "P1" {
		t.Errorf("期望预加载论文 P1，实际 %+v", list[0].Paper)
	}

	n, _ := repo.Assignment.CountBySession(ctx, conv.ConventionID, 1)
	if n != 0 {
		t.Errorf("场次 1 应为空，实际 %d", n)
	}

	removed, err := repo.Assignment.Remove(ctx, conv.ConventionID, 2, papers[0].PaperID)
	if err != nil || !removed {
		t.Errorf("移除失败: removed=%v err=%v", removed, err)
	}
	removed, _ = repo.Assignment.Remove(ctx, conv.ConventionID, 2, papers[0].PaperID)
	if removed {
		t.Error("重复移除应返回 false")
	}
}

func TestPaperAssignment_ConcurrentAssignRespectsCapacity(t *testing.T) {
	conv, cleanup := setupConvention(t)
	defer cleanup()

	repo := repository.NewRepository(testDB)
	ctx := context.Background()

	papers := make([]model.Paper, 6)
	for i := range papers {
		papers[i] = model.Paper{ConventionID: conv.ConventionID, Title: fmt.Sprintf("P%d", i+1), StudentName: "S", School: "U", Category: "AI"}
	}
	if err := repo.Paper.BatchCreate(ctx, papers); err != nil {
		t.Fatalf("批量创建论文失败: %v", err)
	}

	const capacity = 2
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		ok   int
		full int
	)
	for i := range papers {
		wg.Add(1)
		go func(paperID string) {
			defer wg.Done()
			err := repo.Assignment.AssignWithinCapacity(ctx, &model.PaperAssignment{
				ConventionID: conv.ConventionID, SessionNumber: 1, PaperID: paperID,
			}, capacity)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				ok++
			case errors.Is(err, pkgerrors.ErrCapacityExceeded):
				full++
			default:
				t.Errorf("分配失败: %v", err)
			}
		}(papers[i].PaperID)
	}
	wg.Wait()

	if ok != capacity || full != len(papers)-capacity {
		t.Errorf("期望 %d 个成功、%d 个满员，实际 %d / %d", capacity, len(papers)-capacity, ok, full)
	}
	n, err := repo.Assignment.CountBySession(ctx, conv.ConventionID, 1)
	if err != nil {
		t.Fatalf("统计场次论文数失败: %v", err)
	}
	if n != capacity {
		t.Errorf("场次 1 应恰好有 %d 篇论文，实际 %d", capacity, n)
	}

	// 已在场次内的论文不占用新的名额
	if err := repo.Assignment.AssignWithinCapacity(ctx, &model.PaperAssignment{
		ConventionID: conv.ConventionID, SessionNumber: 1, PaperID: firstAssigned(t, repo, conv.ConventionID),
	}, capacity); err != nil {
		t.Errorf("重复写入已在场次内的论文应成功: %v", err)
	}
}

func firstAssigned(t *testing.T, repo *repository.Repository, conventionID string) string {
	t.Helper()
	list, err := repo.Assignment.ListByConvention(context.Background(), conventionID)
	if err != nil || len(list) == 0 {
		t.Fatalf("查询分配失败: %v", err)
	}
	return list[0].PaperID
}

// ═══════════════════════════════════════════════════════════
// Test: Placements
// ═══════════════════════════════════════════════════════════

func TestPlacement_ReplaceAndUpsert(t *testing.T) {
	conv, cleanup := setupConvention(t)
	defer cleanup()

	repo := repository.NewRepository(testDB)
	ctx := context.Background()
	id := conv.ConventionID

	papers := []model.PaperSessionPlacement{
		{ConventionID: id, Day: 1, SlotIndex: 0, Position: 0, SessionNumber: 1},
		{ConventionID: id, Day: 1, SlotIndex: 0, Position: 1, SessionNumber: 2},
	}
	tables := []model.RoundTablePlacement{
		{ConventionID: id, RoundTableID: 1, Day: 1, SlotIndex: 1, Position: 1},
	}
	if err := repo.Placement.Replace(ctx, id, papers, tables); err != nil {
		t.Fatalf("Replace 失败: %v", err)
	}

	// 再次摆放同一圆桌即移动
	if err := repo.Placement.UpsertRoundTable(ctx, &model.RoundTablePlacement{ConventionID: id, RoundTableID: 1, Day: 2, SlotIndex: 0, Position: 0}); err != nil {
		t.Fatalf("UpsertRoundTable 失败: %v", err)
	}
	rts, _ := repo.Placement.ListRoundTables(ctx, id)
	if len(rts) != 1 || rts[0].Day != 2 || rts[0].SlotIndex != 0 {
		t.Errorf("期望圆桌移动到 (2,0)，实际 %+v", rts)
	}

	// 同一位置不能放两个论文场次
	dup := &model.PaperSessionPlacement{ConventionID: id, Day: 1, SlotIndex: 0, Position: 0, SessionNumber: 3}
	if err := repo.Placement.CreatePaperSession(ctx, dup); err == nil {
		t.Error("期望唯一约束冲突")
	}

	removed, err := repo.Placement.DeletePaperSessionAt(ctx, id, 1, 0, 1)
	if err != nil || !removed {
		t.Errorf("删除位置失败: removed=%v err=%v", removed, err)
	}

	if err := repo.Placement.Clear(ctx, id); err != nil {
		t.Fatalf("Clear 失败: %v", err)
	}
	ps, _ := repo.Placement.ListPaperSessions(ctx, id)
	rts, _ = repo.Placement.ListRoundTables(ctx, id)
	if len(ps) != 0 || len(rts) != 0 {
		t.Errorf("Clear 后应为空，实际 %d 个论文场次、%d 个圆桌", len(ps), len(rts))
	}
}

// ═══════════════════════════════════════════════════════════
// Test: People & Customizations
// ═══════════════════════════════════════════════════════════

func TestCustomization_UpsertWithPeople(t *testing.T) {
	conv, cleanup := setupConvention(t)
	defer cleanup()

	repo := repository.NewRepository(testDB)
	ctx := context.Background()
	id := conv.ConventionID

	mod := &model.Person{ConventionID: id, Role: model.RoleModerator, Name: "王主持"}
	if err := repo.Person.Create(ctx, mod); err != nil {
		t.Fatalf("创建主持人失败: %v", err)
	}
	chairs, _ := repo.Person.ListByConvention(ctx, id, model.RoleChair)
	if len(chairs) != 0 {
		t.Errorf("按角色过滤失败: %+v", chairs)
	}

	c := &model.SessionCustomization{ConventionID: id, PositionKey: "day1_slot0_pos0", SessionType: "paper", PaperCount: 5, ModeratorID: &mod.PersonID}
	if err := repo.Customization.Upsert(ctx, c); err != nil {
		t.Fatalf("Upsert 失败: %v", err)
	}
	c2 := &model.SessionCustomization{ConventionID: id, PositionKey: "day1_slot0_pos0", SessionType: "paper", PaperCount: 3, Notes: "改"}
	if err := repo.Customization.Upsert(ctx, c2); err != nil {
		t.Fatalf("二次 Upsert 失败: %v", err)
	}

	got, err := repo.Customization.GetByKey(ctx, id, "day1_slot0_pos0")
	if err != nil {
		t.Fatalf("GetByKey 失败: %v", err)
	}
	if got.PaperCount != 3 || got.Notes != "改" {
		t.Errorf("期望覆盖后的值，实际 %+v", got)
	}

	list, _ := repo.Customization.ListByConvention(ctx, id)
	if len(list) != 1 {
		t.Errorf("同一位置应只有一条定制，实际 %d", len(list))
	}

	if err := repo.Customization.Delete(ctx, id, "day1_slot0_pos0"); err != nil {
		t.Errorf("删除定制失败: %v", err)
	}
}

func TestRoomNames_Replace(t *testing.T) {
	conv, cleanup := setupConvention(t)
	defer cleanup()

	repo := repository.NewRepository(testDB)
	ctx := context.Background()
	id := conv.ConventionID

	first := []model.RoomName{{ConventionID: id, RoomNumber: 1, Name: "Hall A"}, {ConventionID: id, RoomNumber: 2, Name: "Hall B"}}
	if err := repo.RoomName.Replace(ctx, id, first); err != nil {
		t.Fatalf("Replace 失败: %v", err)
	}
	second := []model.RoomName{{ConventionID: id, RoomNumber: 1, Name: "Main"}}
	if err := repo.RoomName.Replace(ctx, id, second); err != nil {
		t.Fatalf("第二次 Replace 失败: %v", err)
	}

	names, _ := repo.RoomName.ListByConvention(ctx, id)
	if len(names) != 1 || names[0].Name != "Main" {
		t.Errorf("期望仅剩 Main，实际 %+v", names)
	}
}
