package controller

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"plew-backend/internal/model"
	"plew-backend/internal/service"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// identityMiddleware stands in for the auth middleware in tests.
func identityMiddleware(email string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("email", email)
		c.Next()
	}
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

type stubPackService struct {
	pack  *model.Pack
	err   error
	input service.CreatePackInput
}

func (s *stubPackService) CreatePack(input service.CreatePackInput) (*model.Pack, error) {
	s.input = input
	return s.pack, s.err
}

type stubCompletionService struct {
	id       uint
	err      error
	identity string
}

func (s *stubCompletionService) RecordCompletion(identityEmail string, input service.CompletionInput) (uint, error) {
	s.identity = identityEmail
	return s.id, s.err
}

type stubPackReader struct {
	packs []model.CompletedPack
	byID  map[uint]*model.CompletedPack
}

func (s *stubPackReader) GetByUser(email string) ([]model.CompletedPack, error) {
	return s.packs, nil
}

func (s *stubPackReader) GetByID(id uint) (*model.CompletedPack, error) {
	if p, ok := s.byID[id]; ok {
		return p, nil
	}
	return nil, service.ErrNotFound
}

type stubReportService struct{ pdf []byte }

func (s *stubReportService) GenerateStudyReport(email string) ([]byte, error) {
	return s.pdf, nil
}

type stubBillingService struct {
	err     error
	payload []byte
	sig     string
}

func (s *stubBillingService) CreateCheckoutSession(email string) (string, error) {
	return "https://checkout.example/session", nil
}

func (s *stubBillingService) HandleWebhookEvent(payload []byte, signatureHeader string) error {
	s.payload = payload
	s.sig = signatureHeader
	return s.err
}

type stubChatService struct {
	reply *service.ChatReply
	err   error
}

func (s *stubChatService) Chat(ctx context.Context, input service.ChatInput) (*service.ChatReply, error) {
	return s.reply, s.err
}

type stubUsageService struct{ summary *service.UsageSummary }

func (s *stubUsageService) IsLimitExceeded() bool { return false }

func (s *stubUsageService) Record(modelName string, inputTokens, outputTokens int, endpoint string) error {
	return nil
}

func (s *stubUsageService) Summary() (*service.UsageSummary, error) {
	return s.summary, nil
}

func newPackRouter(email string, pc *PackController) *gin.Engine {
	r := gin.New()
	r.Use(identityMiddleware(email))
	r.POST("/packs", pc.CreatePack)
	r.POST("/packs/complete", pc.RecordCompletion)
	r.GET("/packs/completed", pc.GetCompletedPacks)
	r.GET("/packs/completed/:id", pc.GetCompletedPack)
	return r
}

func TestCreatePackQuotaDeniedPayload(t *testing.T) {
	packs := &stubPackService{err: &service.AccessDeniedError{Tier: model.TierFree, QuestionsCompleted: 1}}
	pc := NewPackController(packs, &stubCompletionService{}, &stubPackReader{}, &stubReportService{})
	router := newPackRouter("a@x.com", pc)

	w := doJSON(t, router, http.MethodPost, "/packs", gin.H{"size": 5, "level": 2})
	assert.Equal(t, http.StatusForbidden, w.Code)

	body := decodeBody(t, w)
	assert.Equal(t, "free", body["tier"])
	assert.Equal(t, float64(1), body["questionsCompleted"])
	assert.Equal(t, true, body["requiresUpgrade"])
}

func TestCreatePackRejectsMismatchedEmail(t *testing.T) {
	packs := &stubPackService{pack: &model.Pack{}}
	pc := NewPackController(packs, &stubCompletionService{}, &stubPackReader{}, &stubReportService{})
	router := newPackRouter("a@x.com", pc)

	w := doJSON(t, router, http.MethodPost, "/packs", gin.H{"size": 5, "userEmail": "b@x.com"})
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Empty(t, packs.input.UserEmail, "service must not be reached")
}

func TestCreatePackValidatesSizeAndLevel(t *testing.T) {
	packs := &stubPackService{pack: &model.Pack{}}
	pc := NewPackController(packs, &stubCompletionService{}, &stubPackReader{}, &stubReportService{})
	router := newPackRouter("a@x.com", pc)

	for _, body := range []gin.H{
		{"size": 0},
		{"size": 101},
		{"size": 5, "level": 6},
	} {
		w := doJSON(t, router, http.MethodPost, "/packs", body)
		assert.Equal(t, http.StatusBadRequest, w.Code, "body %v", body)
	}
}

func TestCreatePackDefaultsLevelToOne(t *testing.T) {
	packs := &stubPackService{pack: &model.Pack{ID: "pack_1", Level: 1}}
	pc := NewPackController(packs, &stubCompletionService{}, &stubPackReader{}, &stubReportService{})
	router := newPackRouter("a@x.com", pc)

	w := doJSON(t, router, http.MethodPost, "/packs", gin.H{"size": 3})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, packs.input.Level)
	assert.Equal(t, "a@x.com", packs.input.UserEmail)
}

func TestCreatePackNoQuestionsIsNotFound(t *testing.T) {
	packs := &stubPackService{err: service.ErrNotFound}
	pc := NewPackController(packs, &stubCompletionService{}, &stubPackReader{}, &stubReportService{})
	router := newPackRouter("a@x.com", pc)

	w := doJSON(t, router, http.MethodPost, "/packs", gin.H{"size": 3})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRecordCompletionErrorMapping(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
	}{
		{"forbidden", service.ErrForbidden, http.StatusForbidden},
		{"validation", &service.ValidationError{Field: "score", Message: "score cannot exceed totalQuestions"}, http.StatusBadRequest},
		{"internal", assert.AnError, http.StatusInternalServerError},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			completion := &stubCompletionService{err: tc.err}
			pc := NewPackController(&stubPackService{}, completion, &stubPackReader{}, &stubReportService{})
			router := newPackRouter("a@x.com", pc)

			w := doJSON(t, router, http.MethodPost, "/packs/complete", gin.H{
				"userEmail": "a@x.com", "packId": "pack_1", "score": 1, "totalQuestions": 1,
			})
			assert.Equal(t, tc.wantCode, w.Code)
			if tc.wantCode == http.StatusBadRequest {
				assert.Equal(t, "score", decodeBody(t, w)["field"])
			}
		})
	}
}

func TestRecordCompletionReturnsPackRowID(t *testing.T) {
	completion := &stubCompletionService{id: 42}
	pc := NewPackController(&stubPackService{}, completion, &stubPackReader{}, &stubReportService{})
	router := newPackRouter("a@x.com", pc)

	w := doJSON(t, router, http.MethodPost, "/packs/complete", gin.H{
		"userEmail": "a@x.com", "packId": "pack_1", "score": 1, "totalQuestions": 1,
	})
	require.Equal(t, http.StatusOK, w.Code)

	body := decodeBody(t, w)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, float64(42), body["completedPackId"])
	assert.Equal(t, "a@x.com", completion.identity)
}

func TestGetCompletedPackOwnership(t *testing.T) {
	reader := &stubPackReader{byID: map[uint]*model.CompletedPack{
		7: {UserEmail: "b@x.com", Score: 2, TotalQuestions: 4},
	}}
	pc := NewPackController(&stubPackService{}, &stubCompletionService{}, reader, &stubReportService{})
	router := newPackRouter("a@x.com", pc)

	w := doJSON(t, router, http.MethodGet, "/packs/completed/7", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = doJSON(t, router, http.MethodGet, "/packs/completed/404", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetCompletedPacksIncludesScorePercentage(t *testing.T) {
	reader := &stubPackReader{packs: []model.CompletedPack{
		{UserEmail: "a@x.com", Score: 2, TotalQuestions: 3},
	}}
	pc := NewPackController(&stubPackService{}, &stubCompletionService{}, reader, &stubReportService{})
	router := newPackRouter("a@x.com", pc)

	w := doJSON(t, router, http.MethodGet, "/packs/completed", nil)
	require.Equal(t, http.StatusOK, w.Code)

	body := decodeBody(t, w)
	packs := body["completedPacks"].([]interface{})
	require.Len(t, packs, 1)
	entry := packs[0].(map[string]interface{})
	assert.Equal(t, float64(67), entry["scorePercentage"])
}

func TestWebhookSignatureFailureIs400(t *testing.T) {
	billing := &stubBillingService{err: service.ErrInvalidSignature}
	bc := NewBillingController(billing)

	router := gin.New()
	router.POST("/billing/webhook", bc.Webhook)

	req := httptest.NewRequest(http.MethodPost, "/billing/webhook", bytes.NewBufferString(`{"type":"checkout.session.completed"}`))
	req.Header.Set("Stripe-Signature", "t=1,v1=bad")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "t=1,v1=bad", billing.sig)
	assert.JSONEq(t, `{"type":"checkout.session.completed"}`, string(billing.payload))
}

func TestWebhookSuccessIs200(t *testing.T) {
	bc := NewBillingController(&stubBillingService{})

	router := gin.New()
	router.POST("/billing/webhook", bc.Webhook)

	req := httptest.NewRequest(http.MethodPost, "/billing/webhook", bytes.NewBufferString(`{}`))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestChatBudgetExceededIs429WithRemaining(t *testing.T) {
	chat := &stubChatService{err: service.ErrBudgetExceeded}
	usage := &stubUsageService{summary: &service.UsageSummary{RemainingBudget: 0}}
	cc := NewChatController(chat, usage)

	router := gin.New()
	router.Use(identityMiddleware("a@x.com"))
	router.POST("/chat", cc.Chat)

	w := doJSON(t, router, http.MethodPost, "/chat", gin.H{"message": "help me"})
	assert.Equal(t, http.StatusTooManyRequests, w.Code)

	body := decodeBody(t, w)
	assert.Contains(t, body, "remainingBudget")
}

func TestChatRejectsEmptyMessage(t *testing.T) {
	cc := NewChatController(&stubChatService{}, &stubUsageService{})

	router := gin.New()
	router.POST("/chat", cc.Chat)

	w := doJSON(t, router, http.MethodPost, "/chat", gin.H{"message": ""})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestChatReturnsReply(t *testing.T) {
	chat := &stubChatService{reply: &service.ChatReply{Response: "ok", Timestamp: time.Now()}}
	cc := NewChatController(chat, &stubUsageService{})

	router := gin.New()
	router.POST("/chat", cc.Chat)

	w := doJSON(t, router, http.MethodPost, "/chat", gin.H{"message": "hi"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", decodeBody(t, w)["response"])
}
