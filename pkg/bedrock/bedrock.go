// Package bedrock adapts the AWS Bedrock Converse API to the agent's
// reasoning engine contract.
package bedrock

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime/document"
	brtypes "github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"

	contractx "github.com/bkocaman/supplypilot/agent/contract"
)

type Config struct {
	Region      string  `split_words:"true" default:"us-east-1"`
	ModelID     string  `envconfig:"MODEL_ID" split_words:"true" default:"amazon.nova-micro-v1:0"`
	MaxTokens   int32   `split_words:"true" default:"2000"`
	Temperature float32 `split_words:"true" default:"0.5"`
}

// Engine drives a Bedrock conversation model. Timeouts and retries are the
// SDK's concern; a failed call is fatal to the invocation by contract.
type Engine struct {
	client  *bedrockruntime.Client
	modelID string
	cfg     Config
}

func NewEngine(ctx context.Context, cfg Config) (*Engine, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(strings.TrimSpace(cfg.Region)))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return NewEngineFromClient(bedrockruntime.NewFromConfig(awsCfg), cfg), nil
}

func NewEngineFromClient(client *bedrockruntime.Client, cfg Config) *Engine {
	return &Engine{client: client, modelID: strings.TrimSpace(cfg.ModelID), cfg: cfg}
}

func (e *Engine) Converse(ctx context.Context, req contractx.ConverseRequest) (contractx.ConverseResponse, error) {
	msgs, err := toMessages(req.Messages)
	if err != nil {
		return contractx.ConverseResponse{}, err
	}

	out, err := e.client.Converse(ctx, &bedrockruntime.ConverseInput{
		ModelId:  aws.String(e.modelID),
		Messages: msgs,
		System: []brtypes.SystemContentBlock{
			&brtypes.SystemContentBlockMemberText{Value: req.System},
		},
		ToolConfig: toToolConfig(req.Tools),
		InferenceConfig: &brtypes.InferenceConfiguration{
			MaxTokens:   aws.Int32(e.cfg.MaxTokens),
			Temperature: aws.Float32(e.cfg.Temperature),
		},
	})
	if err != nil {
		return contractx.ConverseResponse{}, fmt.Errorf("%w: %v", contractx.ErrEngineInvoke, err)
	}

	outMsg, ok := out.Output.(*brtypes.ConverseOutputMemberMessage)
	if !ok {
		return contractx.ConverseResponse{}, fmt.Errorf("%w: unexpected converse output %T", contractx.ErrEngineInvoke, out.Output)
	}

	msg, err := fromMessage(outMsg.Value)
	if err != nil {
		return contractx.ConverseResponse{}, err
	}

	return contractx.ConverseResponse{
		StopReason: mapStopReason(out.StopReason),
		Message:    msg,
	}, nil
}

func mapStopReason(sr brtypes.StopReason) contractx.StopReason {
	switch sr {
	case brtypes.StopReasonToolUse:
		return contractx.StopToolUse
	case brtypes.StopReasonEndTurn:
		return contractx.StopEndTurn
	default:
		return contractx.StopReason(sr)
	}
}

func toMessages(msgs []contractx.Message) ([]brtypes.Message, error) {
	out := make([]brtypes.Message, 0, len(msgs))
	for _, m := range msgs {
		var blocks []brtypes.ContentBlock
		if m.Text != "" {
			blocks = append(blocks, &brtypes.ContentBlockMemberText{Value: m.Text})
		}
		for _, tr := range m.ToolRequests {
			args := tr.Args
			if args == nil {
				args = map[string]any{}
			}
			blocks = append(blocks, &brtypes.ContentBlockMemberToolUse{
				Value: brtypes.ToolUseBlock{
					ToolUseId: aws.String(tr.ID),
					Name:      aws.String(tr.Name),
					Input:     document.NewLazyDocument(args),
				},
			})
		}
		for _, res := range m.ToolResults {
			blocks = append(blocks, toToolResultBlock(res))
		}
		if len(blocks) == 0 {
			// Bedrock rejects empty content; keep the slot with a blank text
			// block so correlation order survives.
			blocks = append(blocks, &brtypes.ContentBlockMemberText{Value: " "})
		}

		role := brtypes.ConversationRoleUser
		if m.Role == contractx.RoleModel {
			role = brtypes.ConversationRoleAssistant
		}
		out = append(out, brtypes.Message{Role: role, Content: blocks})
	}
	return out, nil
}

func toToolResultBlock(res contractx.ToolResult) brtypes.ContentBlock {
	payload := res.Payload
	status := brtypes.ToolResultStatusSuccess
	if res.Error != "" {
		payload = map[string]any{"error": res.Error}
		status = brtypes.ToolResultStatusError
	}
	if payload == nil {
		payload = map[string]any{}
	}
	return &brtypes.ContentBlockMemberToolResult{
		Value: brtypes.ToolResultBlock{
			ToolUseId: aws.String(res.ID),
			Status:    status,
			Content: []brtypes.ToolResultContentBlock{
				&brtypes.ToolResultContentBlockMemberJson{Value: document.NewLazyDocument(payload)},
			},
		},
	}
}

func fromMessage(msg brtypes.Message) (contractx.Message, error) {
	out := contractx.Message{Role: contractx.RoleModel}
	var texts []string
	for _, block := range msg.Content {
		switch b := block.(type) {
		case *brtypes.ContentBlockMemberText:
			texts = append(texts, b.Value)
		case *brtypes.ContentBlockMemberToolUse:
			args := map[string]any{}
			if b.Value.Input != nil {
				if err := b.Value.Input.UnmarshalSmithyDocument(&args); err != nil {
					return contractx.Message{}, fmt.Errorf("%w: decode tool input: %v", contractx.ErrEngineInvoke, err)
				}
			}
			out.ToolRequests = append(out.ToolRequests, contractx.ToolRequest{
				ID:   aws.ToString(b.Value.ToolUseId),
				Name: aws.ToString(b.Value.Name),
				Args: args,
			})
		}
	}
	out.Text = strings.Join(texts, "\n")
	return out, nil
}

func toToolConfig(specs []contractx.ToolSpec) *brtypes.ToolConfiguration {
	if len(specs) == 0 {
		return nil
	}
	tools := make([]brtypes.Tool, 0, len(specs))
	for _, spec := range specs {
		properties := map[string]any{}
		var required []string
		for name, p := range spec.Params {
			properties[name] = map[string]any{
				"type":        p.Type,
				"description": p.Desc,
			}
			if p.Required {
				required = append(required, name)
			}
		}
		schema := map[string]any{
			"type":       "object",
			"properties": properties,
		}
		if len(required) > 0 {
			sort.Strings(required)
			schema["required"] = required
		}
		tools = append(tools, &brtypes.ToolMemberToolSpec{
			Value: brtypes.ToolSpecification{
				Name:        aws.String(spec.Name),
				Description: aws.String(spec.Desc),
				InputSchema: &brtypes.ToolInputSchemaMemberJson{
					Value: document.NewLazyDocument(schema),
				},
			},
		})
	}
	return &brtypes.ToolConfiguration{Tools: tools}
}
