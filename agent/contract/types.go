package contract

// TriggerReason classifies the anomaly that activated the agent. Only the
// two recognized values unlock a rule branch; anything else is treated as a
// general health check and the agent may observe but not mutate.
type TriggerReason string

const (
	TriggerLowStock          TriggerReason = "Low Stock"
	TriggerPriceDisadvantage TriggerReason = "Price Disadvantage"
	TriggerGeneralCheck      TriggerReason = "Genel Kontrol"
)

func (t TriggerReason) Recognized() bool {
	return t == TriggerLowStock || t == TriggerPriceDisadvantage
}

// ProductRecord mirrors one item of the pharma_products table.
type ProductRecord struct {
	DrugID          string  `json:"drug_id"`
	ProductName     string  `json:"product_name,omitempty"`
	StockLevel      int64   `json:"stock_level"`
	CurrentPrice    float64 `json:"current_price"`
	CompetitorPrice float64 `json:"competitor_price"`
	CostPrice       float64 `json:"cost_price"`
	Category        string  `json:"category,omitempty"`
}

type Role string

const (
	RoleUser  Role = "user"
	RoleModel Role = "model"
)

// Message is one entry of the in-memory conversation. The conversation is
// append-only within an invocation and discarded when it ends.
type Message struct {
	Role         Role          `json:"role"`
	Text         string        `json:"text,omitempty"`
	ToolRequests []ToolRequest `json:"tool_requests,omitempty"`
	ToolResults  []ToolResult  `json:"tool_results,omitempty"`
}

// ToolRequest is a model-proposed action. ID is the correlation id the
// engine assigned; results must echo it back.
type ToolRequest struct {
	ID   string         `json:"id"`
	Name string         `json:"name"`
	Args map[string]any `json:"args,omitempty"`
}

type ToolResult struct {
	ID      string         `json:"id"`
	Name    string         `json:"name"`
	Payload map[string]any `json:"payload,omitempty"`
	Error   string         `json:"error,omitempty"`
}

type StopReason string

const (
	StopToolUse StopReason = "tool_use"
	StopEndTurn StopReason = "end_turn"
)

// ToolParam describes one argument of a tool. Type uses JSON-schema
// primitive names ("string", "number", "integer").
type ToolParam struct {
	Type     string `json:"type"`
	Desc     string `json:"description"`
	Required bool   `json:"required"`
}

// ToolSpec is the declarative schema of a tool, supplied to the reasoning
// engine on every call.
type ToolSpec struct {
	Name   string               `json:"name"`
	Desc   string               `json:"description"`
	Params map[string]ToolParam `json:"params"`
}

// ConverseRequest is one turn's input to the reasoning engine.
type ConverseRequest struct {
	System   string
	Tools    []ToolSpec
	Messages []Message
}

type ConverseResponse struct {
	StopReason StopReason
	Message    Message
}

// Notice is a formatted notification handed to the Notifier.
type Notice struct {
	Recipient string `json:"recipient"`
	Subject   string `json:"subject"`
	Body      string `json:"body"`
}

type RunState string

const (
	RunCompleted  RunState = "completed"
	RunIncomplete RunState = "incomplete"
	RunFailed     RunState = "failed"
)

// AuditReport summarizes guardrail-relevant activity of one invocation.
// ReportMissing marks a run that mutated the store without sending the
// mandatory notification.
type AuditReport struct {
	Mutations     int  `json:"mutations"`
	Clamps        int  `json:"clamps"`
	Notifications int  `json:"notifications"`
	Denials       int  `json:"denials"`
	ReportMissing bool `json:"report_missing,omitempty"`
}

// Outcome is the only externally observable result shape of a run: success
// with final text, a benign incomplete notice, or a failure with message.
type Outcome struct {
	State      RunState    `json:"state"`
	StatusCode int         `json:"status_code"`
	Body       string      `json:"body"`
	RunID      string      `json:"run_id"`
	Turns      int         `json:"turns"`
	Audit      AuditReport `json:"audit"`
}
