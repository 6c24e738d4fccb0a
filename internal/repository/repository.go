package repository

import (
	"context"

	"gorm.io/gorm"
)

// Repository 所有 Repository 的聚合入口
type Repository struct {
	db *gorm.DB

	Convention    ConventionRepository
	RoomName      RoomNameRepository
	Paper         PaperRepository
	Assignment    PaperAssignmentRepository
	Person        PersonRepository
	Placement     PlacementRepository
	Customization SessionCustomizationRepository
}

// NewRepository 创建 Repository 聚合
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		db:            db,
		Convention:    NewConventionRepo(db),
		RoomName:      NewRoomNameRepo(db),
		Paper:         NewPaperRepo(db),
		Assignment:    NewPaperAssignmentRepo(db),
		Person:        NewPersonRepo(db),
		Placement:     NewPlacementRepo(db),
		Customization: NewSessionCustomizationRepo(db),
	}
}

// BeginTx 开启事务
func (r *Repository) BeginTx(ctx context.Context) (*gorm.DB, error) {
	tx := r.db.WithContext(ctx).Begin()
	return tx, tx.Error
}

// WithTx 返回绑定到事务的 Repository 聚合
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return NewRepository(tx)
}
