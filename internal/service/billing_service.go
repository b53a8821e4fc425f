package service

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/checkout/session"
	"github.com/stripe/stripe-go/v79/webhook"

	"plew-backend/internal/config"
	logger "plew-backend/pkg/logging"
)

// BillingService wraps the hosted checkout provider: it starts checkout
// sessions and consumes the signed confirmation webhook.
type BillingService interface {
	CreateCheckoutSession(email string) (string, error)
	HandleWebhookEvent(payload []byte, signatureHeader string) error
}

type billingService struct {
	accessService AccessService
	webhookSecret string
	priceID       string
	frontendURL   string
}

func NewBillingService(accessService AccessService, cfg *config.BillingConfig) BillingService {
	stripe.Key = cfg.SecretKey
	return &billingService{
		accessService: accessService,
		webhookSecret: cfg.WebhookSecret,
		priceID:       cfg.PriceID,
		frontendURL:   strings.TrimRight(cfg.FrontendURL, "/"),
	}
}

// CreateCheckoutSession starts a subscription checkout for the given user
// and returns the hosted payment page URL.
func (s *billingService) CreateCheckoutSession(email string) (string, error) {
	if s.priceID == "" || s.frontendURL == "" {
		return "", fmt.Errorf("billing not configured")
	}

	params := &stripe.CheckoutSessionParams{
		Mode:          stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		CustomerEmail: stripe.String(email),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Price:    stripe.String(s.priceID),
				Quantity: stripe.Int64(1),
			},
		},
		SuccessURL: stripe.String(s.frontendURL + "/upgrade/success"),
		CancelURL:  stripe.String(s.frontendURL + "/upgrade/cancel"),
	}

	sess, err := session.New(params)
	if err != nil {
		return "", fmt.Errorf("creating checkout session: %w", err)
	}
	return sess.URL, nil
}

// HandleWebhookEvent verifies the event signature and applies the tier
// upgrade for completed checkouts. Verification failure produces no side
// effects at all.
func (s *billingService) HandleWebhookEvent(payload []byte, signatureHeader string) error {
	event, err := webhook.ConstructEventWithOptions(
		payload,
		signatureHeader,
		s.webhookSecret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true},
	)
	if err != nil {
		logger.Warn("webhook signature verification failed: %v", err)
		return ErrInvalidSignature
	}

	switch event.Type {
	case "checkout.session.completed":
		var sess stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
			return fmt.Errorf("decoding checkout session: %w", err)
		}
		email := checkoutEmail(&sess)
		if email == "" {
			return fmt.Errorf("checkout session %s has no customer email", sess.ID)
		}
		// Upgrade is idempotent, so redelivered events are harmless.
		if err := s.accessService.Upgrade(email); err != nil {
			return fmt.Errorf("upgrading %s: %w", email, err)
		}
	case "customer.subscription.deleted":
		// Observed but not acted on: premium is not revoked on cancellation.
		// Whether it ever should be is a pending product decision.
		logger.Info("subscription cancelled (no tier change applied): %s", event.ID)
	default:
		logger.Debug("ignoring webhook event type %s", event.Type)
	}

	return nil
}

func checkoutEmail(sess *stripe.CheckoutSession) string {
	if sess.CustomerDetails != nil && sess.CustomerDetails.Email != "" {
		return sess.CustomerDetails.Email
	}
	return sess.CustomerEmail
}
