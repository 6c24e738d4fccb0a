package repository

import (
	"context"

	"gorm.io/gorm"

	"convention-planner/internal/model"
	pkgerrors "convention-planner/pkg/errors"
)

// ConventionRepository 会议数据访问接口
type ConventionRepository interface {
	Create(ctx context.Context, conv *model.Convention) error
	GetByID(ctx context.Context, id string) (*model.Convention, error)
	List(ctx context.Context, offset, limit int) ([]model.Convention, int64, error)
	Update(ctx context.Context, conv *model.Convention) error
	Delete(ctx context.Context, id string) error
}

type conventionRepo struct {
	db *gorm.DB
}

// NewConventionRepo 创建 ConventionRepository 实例
func NewConventionRepo(db *gorm.DB) ConventionRepository {
	return &conventionRepo{db: db}
}

func (r *conventionRepo) Create(ctx context.Context, conv *model.Convention) error {
	return r.db.WithContext(ctx).Create(conv).Error
}

func (r *conventionRepo) GetByID(ctx context.Context, id string) (*model.Convention, error) {
	var conv model.Convention
	err := r.db.WithContext(ctx).
		Where("convention_id = ?", id).
		First(&conv).Error
	if err != nil {
		return nil, err
	}
	return &conv, nil
}

func (r *conventionRepo) List(ctx context.Context, offset, limit int) ([]model.Convention, int64, error) {
	var (
		list  []model.Convention
		total int64
	)
	db := r.db.WithContext(ctx).Model(&model.Convention{})
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := db.Order("updated_at DESC").
		Offset(offset).Limit(limit).
		Find(&list).Error
	return list, total, err
}

// Update 乐观锁更新；JSONB 列需要走结构体更新才能经过 serializer
func (r *conventionRepo) Update(ctx context.Context, conv *model.Convention) error {
	oldVersion := conv.Version
	conv.Version = oldVersion + 1

	result := r.db.WithContext(ctx).
		Model(conv).
		Where("version = ?", oldVersion).
		Select(
			"name", "convention_days", "time_slots_per_day", "available_rooms", "sessions_per_time_slot",
			"custom_time_slots", "custom_rooms", "custom_sessions",
			"total_papers", "papers_per_session", "min_papers_per_session", "max_papers_per_session",
			"total_round_tables", "round_table_duration",
			"categories", "slot_labels", "slot_times", "session_labels",
			"passcode_hash", "version",
		).
		Updates(conv)
	if result.Error != nil {
		conv.Version = oldVersion
		return result.Error
	}
	if result.RowsAffected == 0 {
		conv.Version = oldVersion
		return pkgerrors.ErrOptimisticLock
	}
	return nil
}

func (r *conventionRepo) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).
		Where("convention_id = ?", id).
		Delete(&model.Convention{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
