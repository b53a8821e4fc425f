package service

import (
	"context"
	"errors"
	"sync"

	"plew-backend/internal/llm"
	"plew-backend/internal/model"
)

// In-memory repository fakes shared by the service tests.

type fakeProfileRepo struct {
	mu            sync.Mutex
	profiles      map[string]*model.UserProfile
	failIncrement error
	failDemo      error
	increments    int
}

func newFakeProfileRepo() *fakeProfileRepo {
	return &fakeProfileRepo{profiles: make(map[string]*model.UserProfile)}
}

func (f *fakeProfileRepo) GetOrCreate(email string) (*model.UserProfile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if p, ok := f.profiles[email]; ok {
		copied := *p
		return &copied, nil
	}
	p := &model.UserProfile{Email: email, Tier: model.TierFree}
	f.profiles[email] = p
	copied := *p
	return &copied, nil
}

func (f *fakeProfileRepo) IncrementQuestionsCompleted(email string, count int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failIncrement != nil {
		return f.failIncrement
	}
	f.increments++
	p, ok := f.profiles[email]
	if !ok {
		p = &model.UserProfile{Email: email, Tier: model.TierFree}
		f.profiles[email] = p
	}
	p.QuestionsCompleted += count
	return nil
}

func (f *fakeProfileRepo) Upgrade(email string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.profiles[email]
	if !ok {
		p = &model.UserProfile{Email: email}
		f.profiles[email] = p
	}
	p.Tier = model.TierPremium
	return nil
}

func (f *fakeProfileRepo) MarkDemoCompleted(email string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failDemo != nil {
		return f.failDemo
	}
	p, ok := f.profiles[email]
	if !ok {
		p = &model.UserProfile{Email: email, Tier: model.TierFree}
		f.profiles[email] = p
	}
	p.DemoCompleted = true
	return nil
}

func (f *fakeProfileRepo) get(email string) *model.UserProfile {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.profiles[email]
}

func (f *fakeProfileRepo) set(p *model.UserProfile) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.profiles[p.Email] = p
}

type fakeUsedRepo struct {
	mu       sync.Mutex
	used     map[string]map[string]struct{} // key: email|level
	failMark error
	failGet  error
	marks    int
}

func newFakeUsedRepo() *fakeUsedRepo {
	return &fakeUsedRepo{used: make(map[string]map[string]struct{})}
}

func usedKey(email string, level int) string {
	return email + "|" + string(rune('0'+level))
}

func (f *fakeUsedRepo) MarkUsed(email string, level int, ids []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failMark != nil {
		return f.failMark
	}
	f.marks++
	key := usedKey(email, level)
	if f.used[key] == nil {
		f.used[key] = make(map[string]struct{})
	}
	for _, id := range ids {
		f.used[key][id] = struct{}{}
	}
	return nil
}

func (f *fakeUsedRepo) GetUsed(email string, level int) (map[string]struct{}, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failGet != nil {
		return nil, f.failGet
	}
	out := make(map[string]struct{})
	for id := range f.used[usedKey(email, level)] {
		out[id] = struct{}{}
	}
	return out, nil
}

func (f *fakeUsedRepo) seed(email string, level int, ids ...string) {
	_ = f.MarkUsed(email, level, ids)
}

type fakePackRepo struct {
	mu          sync.Mutex
	packs       []*model.CompletedPack
	answers     []model.UserAnswer
	failPack    error
	failAnswers error
	nextID      uint
}

func newFakePackRepo() *fakePackRepo {
	return &fakePackRepo{nextID: 1}
}

func (f *fakePackRepo) CreatePack(pack *model.CompletedPack) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failPack != nil {
		return f.failPack
	}
	pack.ID = f.nextID
	f.nextID++
	f.packs = append(f.packs, pack)
	return nil
}

func (f *fakePackRepo) CreateAnswers(answers []model.UserAnswer) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failAnswers != nil {
		return f.failAnswers
	}
	f.answers = append(f.answers, answers...)
	return nil
}

func (f *fakePackRepo) GetByUser(email string) ([]model.CompletedPack, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.CompletedPack
	for _, p := range f.packs {
		if p.UserEmail == email {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (f *fakePackRepo) GetByID(id uint) (*model.CompletedPack, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.packs {
		if p.ID == id {
			copied := *p
			return &copied, nil
		}
	}
	return nil, errors.New("record not found")
}

type fakeUsageRepo struct {
	mu         sync.Mutex
	records    []*model.UsageRecord
	failCreate error
	failTotals error
}

func (f *fakeUsageRepo) Create(record *model.UsageRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failCreate != nil {
		return f.failCreate
	}
	f.records = append(f.records, record)
	return nil
}

func (f *fakeUsageRepo) Totals() (float64, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failTotals != nil {
		return 0, 0, f.failTotals
	}
	var total float64
	for _, r := range f.records {
		total += r.CostUSD
	}
	return total, int64(len(f.records)), nil
}

type fakeQuestionIndex struct {
	hits      []model.Question
	byID      map[string]model.Question
	searchErr error
	lastLimit int
	calls     int
}

func (f *fakeQuestionIndex) SearchQuestions(query string, level, limit int) ([]model.Question, error) {
	f.calls++
	f.lastLimit = limit
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	if limit > len(f.hits) {
		limit = len(f.hits)
	}
	return f.hits[:limit], nil
}

func (f *fakeQuestionIndex) GetQuestion(objectID string) (*model.Question, error) {
	q, ok := f.byID[objectID]
	if !ok {
		return nil, errors.New("ObjectID does not exist")
	}
	return &q, nil
}

func (f *fakeQuestionIndex) SaveQuestions(questions []model.Question) error {
	return nil
}

type fakeChatClient struct {
	reply string
	usage llm.Usage
	err   error
	calls int
}

func (f *fakeChatClient) ChatCompletion(ctx context.Context, system string, messages []llm.Message) (string, llm.Usage, error) {
	f.calls++
	if f.err != nil {
		return "", llm.Usage{}, f.err
	}
	return f.reply, f.usage, nil
}

func (f *fakeChatClient) Model() string {
	return "gpt-4o-mini"
}
