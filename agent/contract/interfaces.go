package contract

import "context"

// ProductStore is the key-value record access used by the action handlers.
// Get must be strongly consistent; AddStock is additive and clamps the
// stock level at zero.
type ProductStore interface {
	Get(ctx context.Context, id string) (ProductRecord, error)
	SetPrice(ctx context.Context, id string, price float64) error
	AddStock(ctx context.Context, id string, qty int64) error
}

// ScenarioStore extends ProductStore with the field-set operations that
// scenario injection and provisioning need.
type ScenarioStore interface {
	ProductStore
	SetStock(ctx context.Context, id string, qty int64) error
	AddCompetitorPrice(ctx context.Context, id string, delta float64) error
	Put(ctx context.Context, rec ProductRecord) error
}

// ReasoningEngine is the request/response capability behind the agent: one
// call, one think step, either tool requests or a final answer.
type ReasoningEngine interface {
	Converse(ctx context.Context, req ConverseRequest) (ConverseResponse, error)
}

// Notifier delivers a formatted notice. Delivery is best effort; the
// notification tool succeeds with the formatted content regardless.
type Notifier interface {
	Deliver(ctx context.Context, n Notice) error
}
