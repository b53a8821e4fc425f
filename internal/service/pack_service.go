package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"plew-backend/internal/model"
	"plew-backend/internal/repository"
	"plew-backend/internal/search"
	logger "plew-backend/pkg/logging"
)

// CreatePackInput describes one pack request.
type CreatePackInput struct {
	UserEmail  string
	Level      int
	Size       int
	PackID     string           // optional caller-supplied id
	QuestionID string           // optional: build a single-question pack
	Questions  []model.Question // optional: pre-fetched curated/shared pack
	IsDemo     bool
}

// PackService assembles practice packs of previously-unseen questions. It
// has no side effects; nothing is persisted until the pack is completed.
type PackService interface {
	CreatePack(input CreatePackInput) (*model.Pack, error)
}

type packService struct {
	accessService AccessService
	usedRepo      repository.UsedQuestionRepository
	index         search.QuestionIndex
}

func NewPackService(accessService AccessService, usedRepo repository.UsedQuestionRepository, index search.QuestionIndex) PackService {
	return &packService{
		accessService: accessService,
		usedRepo:      usedRepo,
		index:         index,
	}
}

func (s *packService) CreatePack(input CreatePackInput) (*model.Pack, error) {
	// Demo packs bypass the quota gate; the demo is how a new user decides
	// whether to pay at all. They still never increment the ledger.
	if !input.IsDemo {
		_, status, err := s.accessService.CheckAccess(input.UserEmail)
		if err != nil {
			return nil, err
		}
		if !status.CanAccess {
			return nil, &AccessDeniedError{
				Tier:               status.Tier,
				QuestionsCompleted: status.QuestionsCompleted,
			}
		}
	}

	// Curated/shared pack: the client already holds the questions.
	if len(input.Questions) > 0 {
		return s.buildPack(input, input.Questions, ""), nil
	}

	// Single explicit question.
	if input.QuestionID != "" {
		question, err := s.index.GetQuestion(input.QuestionID)
		if err != nil {
			logger.Warn("question %s not found in index: %v", input.QuestionID, err)
			return nil, ErrNotFound
		}
		return s.buildPack(input, []model.Question{*question}, ""), nil
	}

	used, err := s.usedRepo.GetUsed(input.UserEmail, input.Level)
	if err != nil {
		// Dedup is a best-effort optimization; an unreadable used-set must
		// not block the user from practicing.
		logger.Error("used-question lookup failed for %s: %v", input.UserEmail, err)
		used = map[string]struct{}{}
	}

	// Over-fetch when there is anything to filter against, to absorb the
	// candidates the dedup pass will discard.
	fetch := input.Size
	if len(used) > 0 {
		fetch = input.Size * 2
	}

	candidates, err := s.index.SearchQuestions("", input.Level, fetch)
	if err != nil {
		return nil, fmt.Errorf("fetching candidates: %w", err)
	}
	if len(candidates) == 0 {
		return nil, ErrNotFound
	}

	// Keep index order; no re-ranking.
	selected := make([]model.Question, 0, input.Size)
	for _, candidate := range candidates {
		if _, seen := used[candidate.ObjectID]; seen {
			continue
		}
		selected = append(selected, candidate)
		if len(selected) == input.Size {
			break
		}
	}

	if len(selected) == 0 {
		return nil, ErrNotFound
	}

	warning := ""
	if len(selected) < input.Size {
		// An under-filled pack is a soft condition, not an error.
		warning = fmt.Sprintf("only %d unseen questions available at level %d", len(selected), input.Level)
	}

	return s.buildPack(input, selected, warning), nil
}

func (s *packService) buildPack(input CreatePackInput, questions []model.Question, warning string) *model.Pack {
	packID := input.PackID
	if packID == "" {
		packID = newPackID()
	}
	return &model.Pack{
		ID:        packID,
		Questions: questions,
		Size:      len(questions),
		Level:     input.Level,
		CreatedAt: time.Now(),
		Warning:   warning,
	}
}

// newPackID combines a millisecond timestamp with a random suffix; collisions
// across concurrent requests are negligible.
func newPackID() string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return fmt.Sprintf("pack_%d_%s", time.Now().UnixMilli(), suffix)
}
