package bedrock

import (
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime/document"
	brtypes "github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"

	contractx "github.com/bkocaman/supplypilot/agent/contract"
)

func TestMapStopReason(t *testing.T) {
	t.Parallel()

	if got := mapStopReason(brtypes.StopReasonToolUse); got != contractx.StopToolUse {
		t.Fatalf("unexpected stop reason: %s", got)
	}
	if got := mapStopReason(brtypes.StopReasonEndTurn); got != contractx.StopEndTurn {
		t.Fatalf("unexpected stop reason: %s", got)
	}
	if got := mapStopReason(brtypes.StopReasonMaxTokens); got != contractx.StopReason("max_tokens") {
		t.Fatalf("unexpected stop reason: %s", got)
	}
}

func TestToMessagesRolesAndBlocks(t *testing.T) {
	t.Parallel()

	msgs, err := toMessages([]contractx.Message{
		{Role: contractx.RoleUser, Text: "check the market"},
		{Role: contractx.RoleModel, ToolRequests: []contractx.ToolRequest{{
			ID:   "t1",
			Name: "get_product_market_data",
			Args: map[string]any{"product_id": "OTC_VIT_C_ZINC"},
		}}},
		{Role: contractx.RoleUser, ToolResults: []contractx.ToolResult{{
			ID:   "t1",
			Name: "get_product_market_data",
			Payload: map[string]any{
				"drug_id": "OTC_VIT_C_ZINC",
			},
		}}},
	})
	if err != nil {
		t.Fatalf("to messages: %v", err)
	}
	if len(msgs) != 3 {
		t.Fatalf("unexpected message count: %d", len(msgs))
	}
	if msgs[0].Role != brtypes.ConversationRoleUser || msgs[1].Role != brtypes.ConversationRoleAssistant {
		t.Fatalf("unexpected roles: %v %v", msgs[0].Role, msgs[1].Role)
	}

	tu, ok := msgs[1].Content[0].(*brtypes.ContentBlockMemberToolUse)
	if !ok {
		t.Fatalf("unexpected block type %T", msgs[1].Content[0])
	}
	if aws.ToString(tu.Value.ToolUseId) != "t1" || aws.ToString(tu.Value.Name) != "get_product_market_data" {
		t.Fatalf("unexpected tool use: %+v", tu.Value)
	}

	tr, ok := msgs[2].Content[0].(*brtypes.ContentBlockMemberToolResult)
	if !ok {
		t.Fatalf("unexpected block type %T", msgs[2].Content[0])
	}
	if tr.Value.Status != brtypes.ToolResultStatusSuccess {
		t.Fatalf("unexpected status: %v", tr.Value.Status)
	}
}

func TestToMessagesNeverEmitsEmptyContent(t *testing.T) {
	t.Parallel()

	msgs, err := toMessages([]contractx.Message{{Role: contractx.RoleModel}})
	if err != nil {
		t.Fatalf("to messages: %v", err)
	}
	if len(msgs[0].Content) == 0 {
		t.Fatal("empty content must be padded")
	}
}

func TestToToolResultBlockError(t *testing.T) {
	t.Parallel()

	block := toToolResultBlock(contractx.ToolResult{
		ID:    "t1",
		Name:  "update_product_price",
		Error: "Product not found",
	})
	tr, ok := block.(*brtypes.ContentBlockMemberToolResult)
	if !ok {
		t.Fatalf("unexpected block type %T", block)
	}
	if tr.Value.Status != brtypes.ToolResultStatusError {
		t.Fatalf("unexpected status: %v", tr.Value.Status)
	}

	jsonBlock, ok := tr.Value.Content[0].(*brtypes.ToolResultContentBlockMemberJson)
	if !ok {
		t.Fatalf("unexpected content type %T", tr.Value.Content[0])
	}
	var payload map[string]any
	if err := jsonBlock.Value.UnmarshalSmithyDocument(&payload); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if payload["error"] != "Product not found" {
		t.Fatalf("unexpected payload: %v", payload)
	}
}

func TestFromMessage(t *testing.T) {
	t.Parallel()

	msg, err := fromMessage(brtypes.Message{
		Role: brtypes.ConversationRoleAssistant,
		Content: []brtypes.ContentBlock{
			&brtypes.ContentBlockMemberText{Value: "Checking the record first."},
			&brtypes.ContentBlockMemberToolUse{Value: brtypes.ToolUseBlock{
				ToolUseId: aws.String("t1"),
				Name:      aws.String("get_product_market_data"),
				Input:     document.NewLazyDocument(map[string]any{"product_id": "OTC_VIT_C_ZINC"}),
			}},
		},
	})
	if err != nil {
		t.Fatalf("from message: %v", err)
	}
	if msg.Role != contractx.RoleModel {
		t.Fatalf("unexpected role: %s", msg.Role)
	}
	if msg.Text != "Checking the record first." {
		t.Fatalf("unexpected text: %q", msg.Text)
	}
	if len(msg.ToolRequests) != 1 {
		t.Fatalf("unexpected tool requests: %+v", msg.ToolRequests)
	}
	req := msg.ToolRequests[0]
	if req.ID != "t1" || req.Name != "get_product_market_data" {
		t.Fatalf("unexpected request: %+v", req)
	}
	if req.Args["product_id"] != "OTC_VIT_C_ZINC" {
		t.Fatalf("unexpected args: %v", req.Args)
	}
}

func TestToToolConfig(t *testing.T) {
	t.Parallel()

	if toToolConfig(nil) != nil {
		t.Fatal("no specs must yield a nil config")
	}

	cfg := toToolConfig([]contractx.ToolSpec{{
		Name: "update_product_price",
		Desc: "Overwrite the current price.",
		Params: map[string]contractx.ToolParam{
			"product_id": {Type: "string", Desc: "Product identifier.", Required: true},
			"new_price":  {Type: "number", Desc: "New unit price.", Required: true},
			"reason":     {Type: "string", Desc: "Why the price changed.", Required: true},
		},
	}})
	if len(cfg.Tools) != 1 {
		t.Fatalf("unexpected tool count: %d", len(cfg.Tools))
	}

	spec, ok := cfg.Tools[0].(*brtypes.ToolMemberToolSpec)
	if !ok {
		t.Fatalf("unexpected tool type %T", cfg.Tools[0])
	}
	if aws.ToString(spec.Value.Name) != "update_product_price" {
		t.Fatalf("unexpected name: %v", spec.Value.Name)
	}

	jsonSchema, ok := spec.Value.InputSchema.(*brtypes.ToolInputSchemaMemberJson)
	if !ok {
		t.Fatalf("unexpected schema type %T", spec.Value.InputSchema)
	}
	var schema struct {
		Type       string         `json:"type"`
		Properties map[string]any `json:"properties"`
		Required   []string       `json:"required"`
	}
	if err := jsonSchema.Value.UnmarshalSmithyDocument(&schema); err != nil {
		t.Fatalf("decode schema: %v", err)
	}
	if schema.Type != "object" || len(schema.Properties) != 3 {
		t.Fatalf("unexpected schema: %+v", schema)
	}
	// Required list is sorted for a stable wire shape.
	want := []string{"new_price", "product_id", "reason"}
	if len(schema.Required) != len(want) {
		t.Fatalf("unexpected required list: %v", schema.Required)
	}
	for i, name := range want {
		if schema.Required[i] != name {
			t.Fatalf("unexpected required list: %v", schema.Required)
		}
	}
}
