package repository

import (
	"gorm.io/gorm"

	"plew-backend/internal/model"
)

type CompletedPackRepository interface {
	CreatePack(pack *model.CompletedPack) error
	CreateAnswers(answers []model.UserAnswer) error
	GetByUser(email string) ([]model.CompletedPack, error)
	GetByID(id uint) (*model.CompletedPack, error)
}

type completedPackRepository struct {
	db *gorm.DB
}

func NewCompletedPackRepository(db *gorm.DB) CompletedPackRepository {
	return &completedPackRepository{db: db}
}

// CreatePack inserts the pack row only. Answer rows are inserted separately
// because their failure must not roll back the pack itself.
func (r *completedPackRepository) CreatePack(pack *model.CompletedPack) error {
	return r.db.Omit("Answers").Create(pack).Error
}

func (r *completedPackRepository) CreateAnswers(answers []model.UserAnswer) error {
	if len(answers) == 0 {
		return nil
	}
	return r.db.Create(&answers).Error
}

func (r *completedPackRepository) GetByUser(email string) ([]model.CompletedPack, error) {
	var packs []model.CompletedPack
	err := r.db.Where("user_email = ?", email).
		Order("completed_at DESC").
		Find(&packs).Error
	return packs, err
}

func (r *completedPackRepository) GetByID(id uint) (*model.CompletedPack, error) {
	var pack model.CompletedPack
	if err := r.db.Preload("Answers").First(&pack, id).Error; err != nil {
		return nil, err
	}
	return &pack, nil
}
