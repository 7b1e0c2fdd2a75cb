package tool

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"strings"

	"github.com/rs/zerolog/log"

	contractx "github.com/bkocaman/supplypilot/agent/contract"
	guardrailx "github.com/bkocaman/supplypilot/agent/guardrail"
)

const (
	// DefaultRecipient receives notifications when the model omits one.
	DefaultRecipient = "executive@enterprise.com"

	supplierName = "Global Pharma Logistics Ltd."
	senderName   = "Autonomous_Supply_Chain_Agent"
)

// Handlers holds the four deterministic action implementations. Store and
// notifier failures are absorbed here: handlers return a payload or an
// error, and the router turns errors into tool-result error payloads. No
// fault escapes past this boundary.
type Handlers struct {
	store    contractx.ProductStore
	notifier contractx.Notifier

	// poNumber generates purchase order ids; overridable in tests.
	poNumber func() string
}

func NewHandlers(store contractx.ProductStore, notifier contractx.Notifier) (*Handlers, error) {
	if store == nil {
		return nil, errors.New("product store is required")
	}
	if notifier == nil {
		return nil, errors.New("notifier is required")
	}
	return &Handlers{
		store:    store,
		notifier: notifier,
		poNumber: func() string {
			return fmt.Sprintf("PO%d", 10000+rand.Intn(90000))
		},
	}, nil
}

// FetchMarketData is a read-only lookup of the full record.
func (h *Handlers) FetchMarketData(ctx context.Context, args map[string]any) (map[string]any, error) {
	productID, err := stringArg(args, "product_id")
	if err != nil {
		return nil, err
	}

	rec, err := h.store.Get(ctx, productID)
	if err != nil {
		if errors.Is(err, contractx.ErrProductNotFound) {
			return nil, errors.New("Product not found")
		}
		return nil, err
	}

	return map[string]any{
		"drug_id":          rec.DrugID,
		"product_name":     rec.ProductName,
		"stock_level":      rec.StockLevel,
		"current_price":    rec.CurrentPrice,
		"competitor_price": rec.CompetitorPrice,
		"cost_price":       rec.CostPrice,
		"category":         rec.Category,
	}, nil
}

// UpdatePrice overwrites current_price. The requested price is clamped up
// to the floor before persisting, so a model that ignores the margin rule
// cannot make the store violate it. The audit records the clamp.
func (h *Handlers) UpdatePrice(ctx context.Context, args map[string]any, audit *guardrailx.Audit) (map[string]any, error) {
	productID, err := stringArg(args, "product_id")
	if err != nil {
		return nil, err
	}
	newPrice, err := numberArg(args, "new_price")
	if err != nil {
		return nil, err
	}
	reason, err := stringArg(args, "reason")
	if err != nil {
		return nil, err
	}
	if newPrice <= 0 {
		return nil, errors.New("new_price must be positive")
	}

	rec, err := h.store.Get(ctx, productID)
	if err != nil {
		if errors.Is(err, contractx.ErrProductNotFound) {
			return nil, errors.New("Product not found")
		}
		return nil, err
	}

	applied, clamped := guardrailx.ClampPrice(newPrice, rec.CostPrice)
	if clamped {
		audit.RecordClamp()
		log.Warn().
			Str("product_id", productID).
			Float64("requested_price", newPrice).
			Float64("applied_price", applied).
			Msg("guardrail_clamp")
	}

	if err := h.store.SetPrice(ctx, productID, applied); err != nil {
		return nil, err
	}
	audit.RecordMutation()

	log.Info().
		Str("product_id", productID).
		Float64("price", applied).
		Str("reason", reason).
		Msg("price_updated")

	payload := map[string]any{
		"status":        "success",
		"message":       "Price updated successfully",
		"applied_price": applied,
	}
	if clamped {
		payload["clamped"] = true
		payload["floor_price"] = guardrailx.FloorPrice(rec.CostPrice)
		payload["message"] = "Price clamped to floor and updated"
	}
	return payload, nil
}

// CreateRestock increments stock_level and issues a purchase order against
// the fixed supplier. The PO exists only in the result payload.
func (h *Handlers) CreateRestock(ctx context.Context, args map[string]any, audit *guardrailx.Audit) (map[string]any, error) {
	productID, err := stringArg(args, "product_id")
	if err != nil {
		return nil, err
	}
	quantity, err := integerArg(args, "quantity")
	if err != nil {
		return nil, err
	}
	if quantity <= 0 {
		return nil, errors.New("quantity must be positive")
	}

	if err := h.store.AddStock(ctx, productID, quantity); err != nil {
		if errors.Is(err, contractx.ErrProductNotFound) {
			return nil, errors.New("Product not found")
		}
		return nil, err
	}
	audit.RecordMutation()

	po := h.poNumber()
	log.Info().
		Str("product_id", productID).
		Int64("quantity", quantity).
		Str("po_number", po).
		Msg("restock_ordered")

	return map[string]any{
		"status":  "success",
		"message": "Order placed",
		"po_details": map[string]any{
			"po_number": po,
			"supplier":  supplierName,
		},
	}, nil
}

// SendEmail formats the notice and hands it to the notifier. Delivery
// failures are logged, not surfaced: the formatted content is the result.
func (h *Handlers) SendEmail(ctx context.Context, args map[string]any, audit *guardrailx.Audit) (map[string]any, error) {
	subject, err := stringArg(args, "subject")
	if err != nil {
		return nil, err
	}
	body, err := stringArg(args, "body")
	if err != nil {
		return nil, err
	}
	recipient := optionalStringArg(args, "recipient", DefaultRecipient)

	content := formatEmail(recipient, subject, body)
	notice := contractx.Notice{Recipient: recipient, Subject: subject, Body: body}
	if err := h.notifier.Deliver(ctx, notice); err != nil {
		log.Warn().Err(err).Str("recipient", recipient).Msg("notification_delivery_failed")
	}
	audit.RecordNotification()

	log.Info().Str("recipient", recipient).Str("subject", subject).Msg("email_dispatched")

	return map[string]any{
		"status":  "email_sent",
		"content": content,
	}, nil
}

func formatEmail(recipient, subject, body string) string {
	return fmt.Sprintf(`================ [ PRIORITY NOTIFICATION ] ================
TO: %s
FROM: %s
SUBJECT: %s
--------------------------------------------------------------
%s
--------------------------------------------------------------
[System: Delivered via Internal Secure Relay]
==============================================================`,
		recipient, senderName, subject, body)
}

func stringArg(args map[string]any, key string) (string, error) {
	raw, ok := args[key]
	if !ok {
		return "", fmt.Errorf("%s is required", key)
	}
	s, ok := raw.(string)
	if !ok {
		return "", fmt.Errorf("%s must be a string", key)
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return "", fmt.Errorf("%s is required", key)
	}
	return s, nil
}

func optionalStringArg(args map[string]any, key, fallback string) string {
	raw, ok := args[key]
	if !ok {
		return fallback
	}
	s, ok := raw.(string)
	if !ok || strings.TrimSpace(s) == "" {
		return fallback
	}
	return strings.TrimSpace(s)
}

// numberArg tolerates the numeric shapes different engines decode into.
func numberArg(args map[string]any, key string) (float64, error) {
	raw, ok := args[key]
	if !ok {
		return 0, fmt.Errorf("%s is required", key)
	}
	switch v := raw.(type) {
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case int:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return 0, fmt.Errorf("%s must be a number", key)
		}
		return f, nil
	default:
		return 0, fmt.Errorf("%s must be a number", key)
	}
}

func integerArg(args map[string]any, key string) (int64, error) {
	f, err := numberArg(args, key)
	if err != nil {
		return 0, err
	}
	n := int64(f)
	if float64(n) != f {
		return 0, fmt.Errorf("%s must be an integer", key)
	}
	return n, nil
}
