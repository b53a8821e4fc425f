package service

import (
	"plew-backend/internal/model"
	"plew-backend/internal/repository"
	logger "plew-backend/pkg/logging"
)

// UsageLimitUSD is the deployment-wide LLM spend ceiling. It is shared by
// every user; this is not a per-user budget.
const UsageLimitUSD = 10.0

// Prices are USD per one million tokens.
type tokenPrice struct {
	Input  float64
	Output float64
}

var modelPrices = map[string]tokenPrice{
	"gpt-4o-mini": {Input: 0.15, Output: 0.60},
	"gpt-4o":      {Input: 2.50, Output: 10.00},
	"gpt-4.1":     {Input: 2.00, Output: 8.00},
}

// defaultPrice covers models missing from the table; priced at the most
// expensive known entry so an unknown model can only over-count, never
// under-count.
var defaultPrice = tokenPrice{Input: 2.50, Output: 10.00}

// UsageSummary is the aggregate spend picture.
type UsageSummary struct {
	TotalCost       float64 `json:"totalCost"`
	TotalRequests   int64   `json:"totalRequests"`
	RemainingBudget float64 `json:"remainingBudget"`
	LimitExceeded   bool    `json:"limitExceeded"`
	Limit           float64 `json:"limit"`
	PercentageUsed  float64 `json:"percentageUsed"`
}

// UsageService meters LLM spend against the global ceiling.
//
// The ceiling is a soft limit: two concurrent chat turns can both pass the
// check and overshoot it by one call's cost. Nothing serializes chat requests
// globally.
type UsageService interface {
	IsLimitExceeded() bool
	Record(modelName string, inputTokens, outputTokens int, endpoint string) error
	Summary() (*UsageSummary, error)
}

type usageService struct {
	usageRepo repository.UsageRepository
}

func NewUsageService(usageRepo repository.UsageRepository) UsageService {
	return &usageService{usageRepo: usageRepo}
}

// IsLimitExceeded reports whether cumulative recorded cost has reached the
// ceiling. If the read itself fails the answer is false: an unavailable
// usage table must degrade the budget check, not take down chat entirely.
func (s *usageService) IsLimitExceeded() bool {
	totalCost, _, err := s.usageRepo.Totals()
	if err != nil {
		logger.Error("usage limit check failed, failing open: %v", err)
		return false
	}
	return totalCost >= UsageLimitUSD
}

// Record appends one usage row with its derived cost.
func (s *usageService) Record(modelName string, inputTokens, outputTokens int, endpoint string) error {
	return s.usageRepo.Create(&model.UsageRecord{
		Model:        modelName,
		InputTokens:  inputTokens,
		OutputTokens: outputTokens,
		CostUSD:      CostUSD(modelName, inputTokens, outputTokens),
		Endpoint:     endpoint,
	})
}

func (s *usageService) Summary() (*UsageSummary, error) {
	totalCost, totalRequests, err := s.usageRepo.Totals()
	if err != nil {
		return nil, err
	}
	remaining := UsageLimitUSD - totalCost
	if remaining < 0 {
		remaining = 0
	}
	return &UsageSummary{
		TotalCost:       totalCost,
		TotalRequests:   totalRequests,
		RemainingBudget: remaining,
		LimitExceeded:   totalCost >= UsageLimitUSD,
		Limit:           UsageLimitUSD,
		PercentageUsed:  totalCost / UsageLimitUSD * 100,
	}, nil
}

// CostUSD converts token counts to dollars using the per-model price table.
func CostUSD(modelName string, inputTokens, outputTokens int) float64 {
	price, ok := modelPrices[modelName]
	if !ok {
		price = defaultPrice
	}
	return float64(inputTokens)*price.Input/1e6 + float64(outputTokens)*price.Output/1e6
}
