package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"convention-planner/internal/model"
)

// PlacementRepository 网格摆放数据访问接口
type PlacementRepository interface {
	ListPaperSessions(ctx context.Context, conventionID string) ([]model.PaperSessionPlacement, error)
	ListRoundTables(ctx context.Context, conventionID string) ([]model.RoundTablePlacement, error)
	CreatePaperSession(ctx context.Context, p *model.PaperSessionPlacement) error
	DeletePaperSessionAt(ctx context.Context, conventionID string, day, slot, position int) (bool, error)
	UpsertRoundTable(ctx context.Context, p *model.RoundTablePlacement) error
	DeleteRoundTable(ctx context.Context, conventionID string, roundTableID int) (bool, error)
	Replace(ctx context.Context, conventionID string, papers []model.PaperSessionPlacement, tables []model.RoundTablePlacement) error
	Clear(ctx context.Context, conventionID string) error
}

type placementRepo struct {
	db *gorm.DB
}

// NewPlacementRepo 创建 PlacementRepository 实例
func NewPlacementRepo(db *gorm.DB) PlacementRepository {
	return &placementRepo{db: db}
}

func (r *placementRepo) ListPaperSessions(ctx context.Context, conventionID string) ([]model.PaperSessionPlacement, error) {
	var list []model.PaperSessionPlacement
	err := r.db.WithContext(ctx).
		Where("convention_id = ?", conventionID).
		Order("day ASC, slot_index ASC, position ASC").
		Find(&list).Error
	return list, err
}

func (r *placementRepo) ListRoundTables(ctx context.Context, conventionID string) ([]model.RoundTablePlacement, error) {
	var list []model.RoundTablePlacement
	err := r.db.WithContext(ctx).
		Where("convention_id = ?", conventionID).
		Order("round_table_id ASC").
		Find(&list).Error
	return list, err
}

func (r *placementRepo) CreatePaperSession(ctx context.Context, p *model.PaperSessionPlacement) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *placementRepo) DeletePaperSessionAt(ctx context.Context, conventionID string, day, slot, position int) (bool, error) {
	result := r.db.WithContext(ctx).
		Where("convention_id = ? AND day = ? AND slot_index = ? AND position = ?", conventionID, day, slot, position).
		Delete(&model.PaperSessionPlacement{})
	return result.RowsAffected > 0, result.Error
}

// UpsertRoundTable 同一圆桌只有一个起始位置，再次摆放即移动
func (r *placementRepo) UpsertRoundTable(ctx context.Context, p *model.RoundTablePlacement) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "convention_id"}, {Name: "round_table_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"day", "slot_index", "position"}),
		}).
		Create(p).Error
}

func (r *placementRepo) DeleteRoundTable(ctx context.Context, conventionID string, roundTableID int) (bool, error) {
	result := r.db.WithContext(ctx).
		Where("convention_id = ? AND round_table_id = ?", conventionID, roundTableID).
		Delete(&model.RoundTablePlacement{})
	return result.RowsAffected > 0, result.Error
}

func (r *placementRepo) Replace(ctx context.Context, conventionID string, papers []model.PaperSessionPlacement, tables []model.RoundTablePlacement) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := clearPlacements(tx, conventionID); err != nil {
			return err
		}
		if len(papers) > 0 {
			if err := tx.Create(&papers).Error; err != nil {
				return err
			}
		}
		if len(tables) > 0 {
			if err := tx.Create(&tables).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *placementRepo) Clear(ctx context.Context, conventionID string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return clearPlacements(tx, conventionID)
	})
}

func clearPlacements(tx *gorm.DB, conventionID string) error {
	if err := tx.Where("convention_id = ?", conventionID).Delete(&model.PaperSessionPlacement{}).Error; err != nil {
		return err
	}
	return tx.Where("convention_id = ?", conventionID).Delete(&model.RoundTablePlacement{}).Error
}
