package repository

import (
	"context"

	"gorm.io/gorm"

	"convention-planner/internal/model"
)

// PersonRepository 主持人 / 主席数据访问接口
type PersonRepository interface {
	Create(ctx context.Context, p *model.Person) error
	GetByID(ctx context.Context, conventionID, id string) (*model.Person, error)
	ListByConvention(ctx context.Context, conventionID, role string) ([]model.Person, error)
	Update(ctx context.Context, p *model.Person) error
	Delete(ctx context.Context, conventionID, role, id string) error
}

// RoomNameRepository 会议室名称数据访问接口
type RoomNameRepository interface {
	ListByConvention(ctx context.Context, conventionID string) ([]model.RoomName, error)
	Replace(ctx context.Context, conventionID string, names []model.RoomName) error
}

// ── Person Repository 实现 ──

type personRepo struct {
	db *gorm.DB
}

// NewPersonRepo 创建 PersonRepository 实例
func NewPersonRepo(db *gorm.DB) PersonRepository {
	return &personRepo{db: db}
}

func (r *personRepo) Create(ctx context.Context, p *model.Person) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *personRepo) GetByID(ctx context.Context, conventionID, id string) (*model.Person, error) {
	var p model.Person
	err := r.db.WithContext(ctx).
		Where("convention_id = ? AND person_id = ?", conventionID, id).
		First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *personRepo) ListByConvention(ctx context.Context, conventionID, role string) ([]model.Person, error) {
	var list []model.Person
	db := r.db.WithContext(ctx).Where("convention_id = ?", conventionID)
	if role != "" {
		db = db.Where("role = ?", role)
	}
	err := db.Order("name ASC").Find(&list).Error
	return list, err
}

func (r *personRepo) Update(ctx context.Context, p *model.Person) error {
	return r.db.WithContext(ctx).
		Model(p).
		Select("name", "school", "email").
		Updates(p).Error
}

func (r *personRepo) Delete(ctx context.Context, conventionID, role, id string) error {
	result := r.db.WithContext(ctx).
		Where("convention_id = ? AND role = ? AND person_id = ?", conventionID, role, id).
		Delete(&model.Person{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ── RoomName Repository 实现 ──

type roomNameRepo struct {
	db *gorm.DB
}

// NewRoomNameRepo 创建 RoomNameRepository 实例
func NewRoomNameRepo(db *gorm.DB) RoomNameRepository {
	return &roomNameRepo{db: db}
}

func (r *roomNameRepo) ListByConvention(ctx context.Context, conventionID string) ([]model.RoomName, error) {
	var list []model.RoomName
	err := r.db.WithContext(ctx).
		Where("convention_id = ?", conventionID).
		Order("room_number ASC").
		Find(&list).Error
	return list, err
}

// Replace 整体替换：先删后插
func (r *roomNameRepo) Replace(ctx context.Context, conventionID string, names []model.RoomName) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("convention_id = ?", conventionID).Delete(&model.RoomName{}).Error; err != nil {
			return err
		}
		if len(names) == 0 {
			return nil
		}
		return tx.Create(&names).Error
	})
}
