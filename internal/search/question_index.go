package search

import (
	"fmt"

	"github.com/algolia/algoliasearch-client-go/v3/algolia/opt"
	"github.com/algolia/algoliasearch-client-go/v3/algolia/search"

	"plew-backend/internal/model"
)

// QuestionIndex is the question search collaborator. The backend never ranks
// or filters text itself; it forwards a query plus a level facet and trusts
// the index ordering.
type QuestionIndex interface {
	SearchQuestions(query string, level int, limit int) ([]model.Question, error)
	GetQuestion(objectID string) (*model.Question, error)
	SaveQuestions(questions []model.Question) error
}

type algoliaIndex struct {
	index *search.Index
}

func NewQuestionIndex(appID, apiKey, indexName string) QuestionIndex {
	client := search.NewClient(appID, apiKey)
	return &algoliaIndex{index: client.InitIndex(indexName)}
}

func (a *algoliaIndex) SearchQuestions(query string, level int, limit int) ([]model.Question, error) {
	res, err := a.index.Search(query,
		opt.Filters(fmt.Sprintf("level:%d", level)),
		opt.HitsPerPage(limit),
	)
	if err != nil {
		return nil, fmt.Errorf("question index search: %w", err)
	}

	var questions []model.Question
	if err := res.UnmarshalHits(&questions); err != nil {
		return nil, fmt.Errorf("question index hits: %w", err)
	}
	return questions, nil
}

func (a *algoliaIndex) GetQuestion(objectID string) (*model.Question, error) {
	var question model.Question
	if err := a.index.GetObject(objectID, &question); err != nil {
		return nil, err
	}
	return &question, nil
}

// SaveQuestions pushes question objects to the index; used by the seeder.
func (a *algoliaIndex) SaveQuestions(questions []model.Question) error {
	_, err := a.index.SaveObjects(questions)
	return err
}
