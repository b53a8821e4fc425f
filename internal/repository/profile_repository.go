package repository

import (
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"plew-backend/internal/model"
)

type ProfileRepository interface {
	GetOrCreate(email string) (*model.UserProfile, error)
	IncrementQuestionsCompleted(email string, count int) error
	Upgrade(email string) error
	MarkDemoCompleted(email string) error
}

type profileRepository struct {
	db *gorm.DB
}

func NewProfileRepository(db *gorm.DB) ProfileRepository {
	return &profileRepository{db: db}
}

// GetOrCreate returns the profile for email, inserting the free-tier default
// row if none exists yet.
func (r *profileRepository) GetOrCreate(email string) (*model.UserProfile, error) {
	var profile model.UserProfile
	err := r.db.Where("email = ?", email).
		Attrs(model.UserProfile{Email: email, Tier: model.TierFree}).
		FirstOrCreate(&profile).Error
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

// IncrementQuestionsCompleted adds count to the quota counter with a single
// upsert so concurrent completions for the same user never lose updates. A
// read-modify-write here would be a correctness bug.
func (r *profileRepository) IncrementQuestionsCompleted(email string, count int) error {
	profile := model.UserProfile{
		Email:              email,
		Tier:               model.TierFree,
		QuestionsCompleted: count,
	}
	return r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "email"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"questions_completed": gorm.Expr("user_profiles.questions_completed + EXCLUDED.questions_completed"),
			"updated_at":          time.Now(),
		}),
	}).Create(&profile).Error
}

// Upgrade flips the tier to premium. Re-running it keeps the original
// upgraded_at, so webhook redelivery is a no-op.
func (r *profileRepository) Upgrade(email string) error {
	now := time.Now()
	profile := model.UserProfile{
		Email:      email,
		Tier:       model.TierPremium,
		UpgradedAt: &now,
	}
	return r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "email"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"tier":        string(model.TierPremium),
			"upgraded_at": gorm.Expr("COALESCE(user_profiles.upgraded_at, EXCLUDED.upgraded_at)"),
			"updated_at":  now,
		}),
	}).Create(&profile).Error
}

func (r *profileRepository) MarkDemoCompleted(email string) error {
	profile := model.UserProfile{
		Email:         email,
		Tier:          model.TierFree,
		DemoCompleted: true,
	}
	return r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "email"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"demo_completed": true,
			"updated_at":     time.Now(),
		}),
	}).Create(&profile).Error
}
