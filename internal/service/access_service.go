package service

import (
	"plew-backend/internal/model"
	"plew-backend/internal/repository"
	logger "plew-backend/pkg/logging"
	"plew-backend/utilities"
)

// FreeQuestionLimit is how many questions a free-tier user may complete
// before being prompted to upgrade.
const FreeQuestionLimit = 1

// UnlimitedQuestions is the questionsRemaining sentinel for premium users.
const UnlimitedQuestions = -1

const upgradeReason = "Free limit reached. Upgrade to premium for unlimited question packs."

// AccessStatus is the quota decision for one user.
type AccessStatus struct {
	CanAccess          bool       `json:"canAccess"`
	Tier               model.Tier `json:"tier"`
	QuestionsCompleted int        `json:"questionsCompleted"`
	QuestionsRemaining int        `json:"questionsRemaining"`
	DemoCompleted      bool       `json:"demoCompleted"`
	Reason             string     `json:"reason,omitempty"`
}

// AccessService is the quota ledger: it decides access per user and owns the
// tier/counter mutations.
type AccessService interface {
	CheckAccess(email string) (*model.UserProfile, *AccessStatus, error)
	Increment(email string, count int) error
	Upgrade(email string) error
	MarkDemoCompleted(email string) error
}

type accessService struct {
	profileRepo repository.ProfileRepository
}

func NewAccessService(profileRepo repository.ProfileRepository) AccessService {
	return &accessService{profileRepo: profileRepo}
}

// CheckAccess loads (or lazily creates) the profile and computes the access
// decision. A missing profile is simply a new free user.
func (s *accessService) CheckAccess(email string) (*model.UserProfile, *AccessStatus, error) {
	profile, err := s.profileRepo.GetOrCreate(email)
	if err != nil {
		return nil, nil, err
	}

	status := &AccessStatus{
		Tier:               profile.Tier,
		QuestionsCompleted: profile.QuestionsCompleted,
		DemoCompleted:      profile.DemoCompleted,
	}

	if profile.Tier == model.TierPremium {
		status.CanAccess = true
		status.QuestionsRemaining = UnlimitedQuestions
		return profile, status, nil
	}

	status.CanAccess = profile.QuestionsCompleted < FreeQuestionLimit
	status.QuestionsRemaining = FreeQuestionLimit - profile.QuestionsCompleted
	if status.QuestionsRemaining < 0 {
		status.QuestionsRemaining = 0
	}
	if !status.CanAccess {
		status.Reason = upgradeReason
	}
	return profile, status, nil
}

// Increment advances the completion counter. The add happens at the storage
// layer in one statement, so concurrent completions cannot lose updates.
func (s *accessService) Increment(email string, count int) error {
	if count <= 0 {
		return nil
	}
	return s.profileRepo.IncrementQuestionsCompleted(email, count)
}

// Upgrade flips the user to premium. Idempotent: redelivered payment events
// land on the same state.
func (s *accessService) Upgrade(email string) error {
	if err := s.profileRepo.Upgrade(email); err != nil {
		return err
	}
	logger.Info("upgraded %s to premium", email)
	utilities.GlobalEventBus.Publish(utilities.EventUserUpgraded, email)
	return nil
}

func (s *accessService) MarkDemoCompleted(email string) error {
	return s.profileRepo.MarkDemoCompleted(email)
}
