package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"convention-planner/internal/model"
	pkgerrors "convention-planner/pkg/errors"
)

// PaperRepository 论文数据访问接口
type PaperRepository interface {
	Create(ctx context.Context, paper *model.Paper) error
	BatchCreate(ctx context.Context, papers []model.Paper) error
	GetByID(ctx context.Context, conventionID, id string) (*model.Paper, error)
	ListByConvention(ctx context.Context, conventionID string) ([]model.Paper, error)
	Update(ctx context.Context, paper *model.Paper) error
	Delete(ctx context.Context, conventionID, id string) error
}

// PaperAssignmentRepository 论文 → 场次 数据访问接口
type PaperAssignmentRepository interface {
	ListByConvention(ctx context.Context, conventionID string) ([]model.PaperAssignment, error)
	CountBySession(ctx context.Context, conventionID string, sessionNumber int) (int64, error)
	Assign(ctx context.Context, a *model.PaperAssignment) error
	AssignWithinCapacity(ctx context.Context, a *model.PaperAssignment, capacity int) error
	Remove(ctx context.Context, conventionID string, sessionNumber int, paperID string) (bool, error)
	Replace(ctx context.Context, conventionID string, list []model.PaperAssignment) error
	DeleteByConvention(ctx context.Context, conventionID string) error
}

// ── Paper Repository 实现 ──

type paperRepo struct {
	db *gorm.DB
}

// NewPaperRepo 创建 PaperRepository 实例
func NewPaperRepo(db *gorm.DB) PaperRepository {
	return &paperRepo{db: db}
}

func (r *paperRepo) Create(ctx context.Context, paper *model.Paper) error {
	return r.db.WithContext(ctx).Create(paper).Error
}

func (r *paperRepo) BatchCreate(ctx context.Context, papers []model.Paper) error {
	if len(papers) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).CreateInBatches(&papers, 200).Error
}

func (r *paperRepo) GetByID(ctx context.Context, conventionID, id string) (*model.Paper, error) {
	var paper model.Paper
	err := r.db.WithContext(ctx).
		Where("convention_id = ? AND paper_id = ?", conventionID, id).
		First(&paper).Error
	if err != nil {
		return nil, err
	}
	return &paper, nil
}

func (r *paperRepo) ListByConvention(ctx context.Context, conventionID string) ([]model.Paper, error) {
	var papers []model.Paper
	err := r.db.WithContext(ctx).
		Where("convention_id = ?", conventionID).
		Order("category ASC, title ASC").
		Find(&papers).Error
	return papers, err
}

func (r *paperRepo) Update(ctx context.Context, paper *model.Paper) error {
	return r.db.WithContext(ctx).
		Model(paper).
		Select("title", "student_name", "school", "category").
		Updates(paper).Error
}

func (r *paperRepo) Delete(ctx context.Context, conventionID, id string) error {
	result := r.db.WithContext(ctx).
		Where("convention_id = ? AND paper_id = ?", conventionID, id).
		Delete(&model.Paper{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ── PaperAssignment Repository 实现 ──

type paperAssignmentRepo struct {
	db *gorm.DB
}

// NewPaperAssignmentRepo 创建 PaperAssignmentRepository 实例
func NewPaperAssignmentRepo(db *gorm.DB) PaperAssignmentRepository {
	return &paperAssignmentRepo{db: db}
}

func (r *paperAssignmentRepo) ListByConvention(ctx context.Context, conventionID string) ([]model.PaperAssignment, error) {
	var list []model.PaperAssignment
	err := r.db.WithContext(ctx).
		Preload("Paper").
		Where("convention_id = ?", conventionID).
		Order("session_number ASC, created_at ASC").
		Find(&list).Error
	return list, err
}

func (r *paperAssignmentRepo) CountBySession(ctx context.Context, conventionID string, sessionNumber int) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&model.PaperAssignment{}).
		Where("convention_id = ? AND session_number = ?", conventionID, sessionNumber).
		Count(&n).Error
	return n, err
}

// Assign 论文已在其他场次时直接改挂到新场次
func (r *paperAssignmentRepo) Assign(ctx context.Context, a *model.PaperAssignment) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "convention_id"}, {Name: "paper_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"session_number", "updated_at"}),
		}).
		Create(a).Error
}

// AssignWithinCapacity 在同一事务内检查场次容量并写入；
// 锁住会议行使同一会议的并发分配串行执行，满员时返回 ErrCapacityExceeded
func (r *paperAssignmentRepo) AssignWithinCapacity(ctx context.Context, a *model.PaperAssignment, capacity int) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var conv model.Convention
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Select("convention_id").
			Where("convention_id = ?", a.ConventionID).
			Take(&conv).Error; err != nil {
			return err
		}

		var n int64
		if err := tx.Model(&model.PaperAssignment{}).
			Where("convention_id = ? AND session_number = ? AND paper_id <> ?", a.ConventionID, a.SessionNumber, a.PaperID).
			Count(&n).Error; err != nil {
			return err
		}
		if n >= int64(capacity) {
			return pkgerrors.ErrCapacityExceeded
		}

		return (&paperAssignmentRepo{db: tx}).Assign(ctx, a)
	})
}

func (r *paperAssignmentRepo) Remove(ctx context.Context, conventionID string, sessionNumber int, paperID string) (bool, error) {
	result := r.db.WithContext(ctx).
		Where("convention_id = ? AND session_number = ? AND paper_id = ?", conventionID, sessionNumber, paperID).
		Delete(&model.PaperAssignment{})
	return result.RowsAffected > 0, result.Error
}

func (r *paperAssignmentRepo) Replace(ctx context.Context, conventionID string, list []model.PaperAssignment) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("convention_id = ?", conventionID).Delete(&model.PaperAssignment{}).Error; err != nil {
			return err
		}
		if len(list) == 0 {
			return nil
		}
		return tx.Create(&list).Error
	})
}

func (r *paperAssignmentRepo) DeleteByConvention(ctx context.Context, conventionID string) error {
	return r.db.WithContext(ctx).
		Where("convention_id = ?", conventionID).
		Delete(&model.PaperAssignment{}).Error
}
