package service

import (
	"fmt"
	"time"

	"plew-backend/internal/model"
	"plew-backend/internal/repository"
	logger "plew-backend/pkg/logging"
	"plew-backend/utilities"
)

const (
	maxPackSize     = 100
	maxLevel        = 5
	maxQuestionText = 10000
	maxAnswerText   = 1000
)

// AnswerInput is one answered question in a completion payload.
type AnswerInput struct {
	QuestionObjectID string    `json:"questionObjectId"`
	QuestionText     string    `json:"questionText"`
	SelectedAnswer   string    `json:"selectedAnswer"`
	CorrectAnswer    string    `json:"correctAnswer"`
	IsCorrect        bool      `json:"isCorrect"`
	AnsweredAt       time.Time `json:"answeredAt"`
}

// CompletionInput is a finished practice session as submitted by the client.
type CompletionInput struct {
	UserEmail        string        `json:"userEmail"`
	PackID           string        `json:"packId"`
	PackSize         int           `json:"packSize"`
	Level            int           `json:"level"`
	Score            int           `json:"score"`
	TotalQuestions   int           `json:"totalQuestions"`
	TimeTakenSeconds int           `json:"timeTakenSeconds"`
	StartedAt        time.Time     `json:"startedAt"`
	Answers          []AnswerInput `json:"answers"`
	IsDemo           bool          `json:"isDemo"`
}

// CompletionService persists finished packs and feeds the dedup tracker and
// the quota ledger.
//
// The steps after the pack row insert are independent: answer rows, dedup
// marks, and the quota increment are each logged and tolerated on failure.
// The pack score is the durable source of truth.
type CompletionService interface {
	RecordCompletion(identityEmail string, input CompletionInput) (uint, error)
}

type completionService struct {
	packRepo      repository.CompletedPackRepository
	usedRepo      repository.UsedQuestionRepository
	accessService AccessService
}

func NewCompletionService(packRepo repository.CompletedPackRepository, usedRepo repository.UsedQuestionRepository, accessService AccessService) CompletionService {
	return &completionService{
		packRepo:      packRepo,
		usedRepo:      usedRepo,
		accessService: accessService,
	}
}

func (s *completionService) RecordCompletion(identityEmail string, input CompletionInput) (uint, error) {
	// A user must never record completions under another identity. This
	// check precedes every write.
	if identityEmail == "" || identityEmail != input.UserEmail {
		return 0, ErrForbidden
	}

	if err := validateCompletion(&input); err != nil {
		return 0, err
	}

	completedAt := time.Now()
	pack := &model.CompletedPack{
		UserEmail:        input.UserEmail,
		SourcePackID:     input.PackID,
		PackSize:         input.PackSize,
		Level:            input.Level,
		Score:            input.Score,
		TotalQuestions:   input.TotalQuestions,
		TimeTakenSeconds: input.TimeTakenSeconds,
		StartedAt:        input.StartedAt,
		CompletedAt:      completedAt,
	}

	// The pack row is the one fatal step; nothing downstream runs without it.
	if err := s.packRepo.CreatePack(pack); err != nil {
		return 0, fmt.Errorf("saving completed pack: %w", err)
	}

	answers := make([]model.UserAnswer, 0, len(input.Answers))
	questionIDs := make([]string, 0, len(input.Answers))
	for _, a := range input.Answers {
		answers = append(answers, model.UserAnswer{
			CompletedPackID:  pack.ID,
			QuestionObjectID: a.QuestionObjectID,
			QuestionText:     a.QuestionText,
			SelectedAnswer:   a.SelectedAnswer,
			CorrectAnswer:    a.CorrectAnswer,
			IsCorrect:        a.IsCorrect,
			AnsweredAt:       a.AnsweredAt,
		})
		questionIDs = append(questionIDs, a.QuestionObjectID)
	}
	if err := s.packRepo.CreateAnswers(answers); err != nil {
		logger.Error("answer rows failed for pack %d: %v", pack.ID, err)
	}

	if err := s.usedRepo.MarkUsed(input.UserEmail, input.Level, questionIDs); err != nil {
		logger.Error("dedup mark failed for pack %d: %v", pack.ID, err)
	}

	if input.IsDemo {
		if err := s.accessService.MarkDemoCompleted(input.UserEmail); err != nil {
			logger.Error("demo flag update failed for %s: %v", input.UserEmail, err)
		}
	} else {
		if err := s.accessService.Increment(input.UserEmail, input.TotalQuestions); err != nil {
			logger.Error("quota increment failed for %s: %v", input.UserEmail, err)
		}
	}

	utilities.GlobalEventBus.Publish(utilities.EventPackCompleted, pack.ID)
	return pack.ID, nil
}

func validateCompletion(input *CompletionInput) error {
	switch {
	case input.PackSize < 1 || input.PackSize > maxPackSize:
		return &ValidationError{Field: "packSize", Message: fmt.Sprintf("must be between 1 and %d", maxPackSize)}
	case input.Level < 1 || input.Level > maxLevel:
		return &ValidationError{Field: "level", Message: fmt.Sprintf("must be between 1 and %d", maxLevel)}
	case input.TotalQuestions < 1 || input.TotalQuestions > maxPackSize:
		return &ValidationError{Field: "totalQuestions", Message: fmt.Sprintf("must be between 1 and %d", maxPackSize)}
	case input.Score < 0 || input.Score > input.TotalQuestions:
		return &ValidationError{Field: "score", Message: "must be between 0 and totalQuestions"}
	case input.TimeTakenSeconds < 0:
		return &ValidationError{Field: "timeTakenSeconds", Message: "must not be negative"}
	case input.StartedAt.IsZero():
		return &ValidationError{Field: "startedAt", Message: "required"}
	case input.StartedAt.After(time.Now().Add(time.Minute)):
		return &ValidationError{Field: "startedAt", Message: "must not be in the future"}
	case len(input.Answers) > input.TotalQuestions:
		return &ValidationError{Field: "answers", Message: "more answers than questions"}
	}
	for i, a := range input.Answers {
		switch {
		case a.QuestionObjectID == "":
			return &ValidationError{Field: fmt.Sprintf("answers[%d].questionObjectId", i), Message: "required"}
		case len(a.QuestionText) > maxQuestionText:
			return &ValidationError{Field: fmt.Sprintf("answers[%d].questionText", i), Message: "too long"}
		case len(a.SelectedAnswer) > maxAnswerText:
			return &ValidationError{Field: fmt.Sprintf("answers[%d].selectedAnswer", i), Message: "too long"}
		case len(a.CorrectAnswer) > maxAnswerText:
			return &ValidationError{Field: fmt.Sprintf("answers[%d].correctAnswer", i), Message: "too long"}
		}
	}
	return nil
}
