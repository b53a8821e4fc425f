package service

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"plew-backend/internal/model"
)

func TestCostUSD(t *testing.T) {
	// 1M input + 1M output tokens at the gpt-4o-mini rates.
	assert.InDelta(t, 0.75, CostUSD("gpt-4o-mini", 1_000_000, 1_000_000), 1e-9)
	// Unknown models fall back to the most expensive entry.
	assert.InDelta(t, 12.50, CostUSD("mystery-model", 1_000_000, 1_000_000), 1e-9)
	assert.Zero(t, CostUSD("gpt-4o-mini", 0, 0))
}

func TestRecordDerivesCost(t *testing.T) {
	repo := &fakeUsageRepo{}
	svc := NewUsageService(repo)

	require.NoError(t, svc.Record("gpt-4o-mini", 2000, 1000, "chat"))

	require.Len(t, repo.records, 1)
	rec := repo.records[0]
	assert.Equal(t, "chat", rec.Endpoint)
	assert.InDelta(t, CostUSD("gpt-4o-mini", 2000, 1000), rec.CostUSD, 1e-12)
}

func TestIsLimitExceededBoundary(t *testing.T) {
	repo := &fakeUsageRepo{}
	svc := NewUsageService(repo)

	assert.False(t, svc.IsLimitExceeded())

	repo.records = append(repo.records, &model.UsageRecord{CostUSD: UsageLimitUSD - 0.01})
	assert.False(t, svc.IsLimitExceeded())

	repo.records = append(repo.records, &model.UsageRecord{CostUSD: 0.01})
	assert.True(t, svc.IsLimitExceeded())
}

func TestIsLimitExceededFailsOpen(t *testing.T) {
	repo := &fakeUsageRepo{failTotals: errors.New("storage down")}
	svc := NewUsageService(repo)

	assert.False(t, svc.IsLimitExceeded())
}

func TestSummary(t *testing.T) {
	repo := &fakeUsageRepo{}
	repo.records = append(repo.records,
		&model.UsageRecord{CostUSD: 2.0},
		&model.UsageRecord{CostUSD: 0.5},
	)
	svc := NewUsageService(repo)

	summary, err := svc.Summary()
	require.NoError(t, err)

	assert.InDelta(t, 2.5, summary.TotalCost, 1e-9)
	assert.Equal(t, int64(2), summary.TotalRequests)
	assert.InDelta(t, 7.5, summary.RemainingBudget, 1e-9)
	assert.False(t, summary.LimitExceeded)
	assert.InDelta(t, 25.0, summary.PercentageUsed, 1e-9)
	assert.Equal(t, UsageLimitUSD, summary.Limit)
}

func TestSummaryRemainingNeverNegative(t *testing.T) {
	repo := &fakeUsageRepo{}
	repo.records = append(repo.records, &model.UsageRecord{CostUSD: UsageLimitUSD + 3})
	svc := NewUsageService(repo)

	summary, err := svc.Summary()
	require.NoError(t, err)
	assert.Zero(t, summary.RemainingBudget)
	assert.True(t, summary.LimitExceeded)
}
