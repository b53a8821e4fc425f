package repository

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"plew-backend/internal/model"
)

type UsedQuestionRepository interface {
	MarkUsed(email string, level int, questionObjectIDs []string) error
	GetUsed(email string, level int) (map[string]struct{}, error)
}

type usedQuestionRepository struct {
	db *gorm.DB
}

func NewUsedQuestionRepository(db *gorm.DB) UsedQuestionRepository {
	return &usedQuestionRepository{db: db}
}

// MarkUsed records the given questions as consumed. Rows that already exist
// are skipped at the database level, which is what makes marking idempotent
// under concurrent completions with overlapping questions.
func (r *usedQuestionRepository) MarkUsed(email string, level int, questionObjectIDs []string) error {
	if len(questionObjectIDs) == 0 {
		return nil
	}
	records := make([]model.UsedQuestion, 0, len(questionObjectIDs))
	for _, id := range questionObjectIDs {
		if id == "" {
			continue
		}
		records = append(records, model.UsedQuestion{
			UserEmail:        email,
			QuestionObjectID: id,
			Level:            level,
		})
	}
	if len(records) == 0 {
		return nil
	}
	return r.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&records).Error
}

func (r *usedQuestionRepository) GetUsed(email string, level int) (map[string]struct{}, error) {
	var ids []string
	err := r.db.Model(&model.UsedQuestion{}).
		Where("user_email = ? AND level = ?", email, level).
		Pluck("question_object_id", &ids).Error
	if err != nil {
		return nil, err
	}
	used := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		used[id] = struct{}{}
	}
	return used, nil
}
