package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"convention-planner/internal/model"
)

// SessionCustomizationRepository 场次定制数据访问接口
type SessionCustomizationRepository interface {
	ListByConvention(ctx context.Context, conventionID string) ([]model.SessionCustomization, error)
	GetByKey(ctx context.Context, conventionID, positionKey string) (*model.SessionCustomization, error)
	Upsert(ctx context.Context, c *model.SessionCustomization) error
	Delete(ctx context.Context, conventionID, positionKey string) error
}

type sessionCustomizationRepo struct {
	db *gorm.DB
}

// NewSessionCustomizationRepo 创建 SessionCustomizationRepository 实例
func NewSessionCustomizationRepo(db *gorm.DB) SessionCustomizationRepository {
	return &sessionCustomizationRepo{db: db}
}

func (r *sessionCustomizationRepo) ListByConvention(ctx context.Context, conventionID string) ([]model.SessionCustomization, error) {
	var list []model.SessionCustomization
	err := r.db.WithContext(ctx).
		Preload("Moderator").
		Preload("Chair").
		Where("convention_id = ?", conventionID).
		Order("position_key ASC").
		Find(&list).Error
	return list, err
}

func (r *sessionCustomizationRepo) GetByKey(ctx context.Context, conventionID, positionKey string) (*model.SessionCustomization, error) {
	var c model.SessionCustomization
	err := r.db.WithContext(ctx).
		Preload("Moderator").
		Preload("Chair").
		Where("convention_id = ? AND position_key = ?", conventionID, positionKey).
		First(&c).Error
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *sessionCustomizationRepo) Upsert(ctx context.Context, c *model.SessionCustomization) error {
	return r.db.WithContext(ctx).
		Omit(clause.Associations).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "convention_id"}, {Name: "position_key"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"session_type", "paper_count", "category", "preferred_room",
				"notes", "moderator_id", "chair_id", "updated_at",
			}),
		}).
		Create(c).Error
}

func (r *sessionCustomizationRepo) Delete(ctx context.Context, conventionID, positionKey string) error {
	result := r.db.WithContext(ctx).
		Where("convention_id = ? AND position_key = ?", conventionID, positionKey).
		Delete(&model.SessionCustomization{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
