// Package openrouter adapts an OpenRouter-hosted chat model (through the
// eino openai component) to the agent's reasoning engine contract.
package openrouter

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	openaimodel "github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	contractx "github.com/bkocaman/supplypilot/agent/contract"
)

type Config struct {
	BaseURL            string        `envconfig:"BASE_URL" split_words:"true" default:"https://openrouter.ai/api/v1"`
	APIKey             string        `envconfig:"API_KEY" split_words:"true" required:"true"`
	Model              string        `envconfig:"MODEL" split_words:"true" required:"true"`
	MaxCompletionToken *int          `envconfig:"MAX_COMPLETION_TOKEN" split_words:"true" default:"2000"`
	Temperature        float32       `envconfig:"TEMPERATURE" split_words:"true" default:"0.5"`
	Timeout            time.Duration `envconfig:"TIMEOUT" split_words:"true" default:"30s"`
}

func (c *Config) newChatModel(ctx context.Context) (model.ToolCallingChatModel, error) {
	conf := &openaimodel.ChatModelConfig{
		BaseURL:     strings.TrimRight(c.BaseURL, "/"),
		APIKey:      strings.TrimSpace(c.APIKey),
		Model:       strings.TrimSpace(c.Model),
		MaxTokens:   c.MaxCompletionToken,
		Temperature: &c.Temperature,
		Timeout:     c.Timeout,
	}

	m, err := openaimodel.NewChatModel(ctx, conf)
	if err != nil {
		return nil, fmt.Errorf("openrouter: create chat model: %w", err)
	}
	return m, nil
}

// Engine implements the reasoning engine contract on top of an eino
// tool-calling chat model. Tools are bound per call from the request's
// catalog.
type Engine struct {
	chatModel model.ToolCallingChatModel
}

func NewEngine(ctx context.Context, cfg Config) (*Engine, error) {
	m, err := cfg.newChatModel(ctx)
	if err != nil {
		return nil, err
	}
	return &Engine{chatModel: m}, nil
}

// NewEngineFromModel wires an already-built chat model; used by tests.
func NewEngineFromModel(m model.ToolCallingChatModel) *Engine {
	return &Engine{chatModel: m}
}

func (e *Engine) Converse(ctx context.Context, req contractx.ConverseRequest) (contractx.ConverseResponse, error) {
	bound, err := e.chatModel.WithTools(toToolInfos(req.Tools))
	if err != nil {
		return contractx.ConverseResponse{}, fmt.Errorf("%w: bind tools: %v", contractx.ErrEngineInvoke, err)
	}

	msgs, err := toSchemaMessages(req.System, req.Messages)
	if err != nil {
		return contractx.ConverseResponse{}, err
	}

	out, err := bound.Generate(ctx, msgs)
	if err != nil {
		return contractx.ConverseResponse{}, fmt.Errorf("%w: %v", contractx.ErrEngineInvoke, err)
	}
	if out == nil {
		return contractx.ConverseResponse{}, fmt.Errorf("%w: empty model response", contractx.ErrEngineInvoke)
	}

	return fromSchemaMessage(out)
}

func toSchemaMessages(system string, msgs []contractx.Message) ([]*schema.Message, error) {
	out := make([]*schema.Message, 0, len(msgs)+1)
	out = append(out, schema.SystemMessage(system))

	for _, m := range msgs {
		switch m.Role {
		case contractx.RoleModel:
			assistant := &schema.Message{
				Role:    schema.Assistant,
				Content: m.Text,
			}
			for _, tr := range m.ToolRequests {
				args, err := json.Marshal(tr.Args)
				if err != nil {
					return nil, fmt.Errorf("%w: encode tool args: %v", contractx.ErrValidation, err)
				}
				assistant.ToolCalls = append(assistant.ToolCalls, schema.ToolCall{
					ID:   tr.ID,
					Type: "function",
					Function: schema.FunctionCall{
						Name:      tr.Name,
						Arguments: string(args),
					},
				})
			}
			out = append(out, assistant)

		default:
			if len(m.ToolResults) > 0 {
				for _, res := range m.ToolResults {
					payload := map[string]any{}
					for k, v := range res.Payload {
						payload[k] = v
					}
					if res.Error != "" {
						payload["error"] = res.Error
					}
					content, err := json.Marshal(payload)
					if err != nil {
						return nil, fmt.Errorf("%w: encode tool result: %v", contractx.ErrValidation, err)
					}
					out = append(out, schema.ToolMessage(string(content), res.ID))
				}
				continue
			}
			out = append(out, schema.UserMessage(m.Text))
		}
	}
	return out, nil
}

func fromSchemaMessage(msg *schema.Message) (contractx.ConverseResponse, error) {
	if len(msg.ToolCalls) == 0 {
		return contractx.ConverseResponse{
			StopReason: contractx.StopEndTurn,
			Message: contractx.Message{
				Role: contractx.RoleModel,
				Text: msg.Content,
			},
		}, nil
	}

	reqs := make([]contractx.ToolRequest, 0, len(msg.ToolCalls))
	for _, call := range msg.ToolCalls {
		name := strings.TrimSpace(call.Function.Name)
		if name == "" {
			return contractx.ConverseResponse{}, fmt.Errorf("%w: tool call name is empty", contractx.ErrEngineInvoke)
		}
		args := map[string]any{}
		if raw := strings.TrimSpace(call.Function.Arguments); raw != "" {
			if err := json.Unmarshal([]byte(raw), &args); err != nil {
				return contractx.ConverseResponse{}, fmt.Errorf("%w: invalid tool args for tool=%s: %v", contractx.ErrEngineInvoke, name, err)
			}
		}
		reqs = append(reqs, contractx.ToolRequest{ID: call.ID, Name: name, Args: args})
	}

	return contractx.ConverseResponse{
		StopReason: contractx.StopToolUse,
		Message: contractx.Message{
			Role:         contractx.RoleModel,
			Text:         msg.Content,
			ToolRequests: reqs,
		},
	}, nil
}

func toToolInfos(specs []contractx.ToolSpec) []*schema.ToolInfo {
	infos := make([]*schema.ToolInfo, 0, len(specs))
	for _, spec := range specs {
		params := make(map[string]*schema.ParameterInfo, len(spec.Params))
		for name, p := range spec.Params {
			params[name] = &schema.ParameterInfo{
				Type:     toDataType(p.Type),
				Desc:     p.Desc,
				Required: p.Required,
			}
		}
		infos = append(infos, &schema.ToolInfo{
			Name:        spec.Name,
			Desc:        spec.Desc,
			ParamsOneOf: schema.NewParamsOneOfByParams(params),
		})
	}
	return infos
}

func toDataType(t string) schema.DataType {
	switch t {
	case "number":
		return schema.Number
	case "integer":
		return schema.Integer
	case "boolean":
		return schema.Boolean
	default:
		return schema.String
	}
}
