//
// Tencent is pleased to support the open source community by making
// trpc-coinsight-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-coinsight-go is licensed under the Apache License Version 2.0.
//
//

// Package openai implements the chat model interface on the OpenAI
// chat completions API.
package openai

import (
	"context"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"trpc.group/trpc-go/trpc-coinsight-go/model"
)

const defaultModel = openai.ChatModelGPT4oMini

// Model drives OpenAI chat completions with function tool calling.
type Model struct {
	client openai.Client
	name   openai.ChatModel
}

var _ model.Model = (*Model)(nil)

// Option configures the model.
type Option func(*config)

type config struct {
	name    openai.ChatModel
	reqOpts []option.RequestOption
}

// WithModel overrides the chat model name.
func WithModel(name string) Option {
	return func(c *config) {
		if name != "" {
			c.name = openai.ChatModel(name)
		}
	}
}

// WithRequestOptions forwards options to the OpenAI client, e.g. a custom
// base URL for tests.
func WithRequestOptions(opts ...option.RequestOption) Option {
	return func(c *config) { c.reqOpts = append(c.reqOpts, opts...) }
}

// New creates an OpenAI chat model authenticated with apiKey.
func New(apiKey string, opts ...Option) *Model {
	cfg := config{name: defaultModel}
	for _, opt := range opts {
		opt(&cfg)
	}
	reqOpts := append([]option.RequestOption{option.WithAPIKey(apiKey)},
		cfg.reqOpts...)
	return &Model{
		client: openai.NewClient(reqOpts...),
		name:   cfg.name,
	}
}

// Generate produces the next assistant turn, surfacing any tool calls the
// model requested.
func (m *Model) Generate(
	ctx context.Context,
	messages []model.Message,
	tools []model.ToolDeclaration,
) (*model.Response, error) {
	params := openai.ChatCompletionNewParams{
		Model:    m.name,
		Messages: convertMessages(messages),
	}
	if len(tools) > 0 {
		params.Tools = convertTools(tools)
	}

	resp, err := m.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("chat completion: no choices returned")
	}

	choice := resp.Choices[0].Message
	out := &model.Response{Content: choice.Content}
	for _, tc := range choice.ToolCalls {
		out.ToolCalls = append(out.ToolCalls, model.ToolCall{
			ID:        tc.ID,
			Name:      tc.Function.Name,
			Arguments: tc.Function.Arguments,
		})
	}
	return out, nil
}

func convertMessages(
	messages []model.Message,
) []openai.ChatCompletionMessageParamUnion {
	out := make([]openai.ChatCompletionMessageParamUnion, 0, len(messages))
	for _, msg := range messages {
		switch msg.Role {
		case model.RoleSystem:
			out = append(out, openai.SystemMessage(msg.Content))
		case model.RoleAssistant:
			out = append(out, assistantParam(msg))
		case model.RoleTool:
			out = append(out, openai.ToolMessage(msg.Content, msg.ToolCallID))
		default:
			out = append(out, openai.UserMessage(msg.Content))
		}
	}
	return out
}

func assistantParam(msg model.Message) openai.ChatCompletionMessageParamUnion {
	assistant := openai.ChatCompletionAssistantMessageParam{}
	if msg.Content != "" {
		assistant.Content.OfString = openai.String(msg.Content)
	}
	for _, tc := range msg.ToolCalls {
		assistant.ToolCalls = append(assistant.ToolCalls,
			openai.ChatCompletionMessageToolCallParam{
				ID: tc.ID,
				Function: openai.ChatCompletionMessageToolCallFunctionParam{
					Name:      tc.Name,
					Arguments: tc.Arguments,
				},
			})
	}
	return openai.ChatCompletionMessageParamUnion{OfAssistant: &assistant}
}

func convertTools(
	tools []model.ToolDeclaration,
) []openai.ChatCompletionToolParam {
	out := make([]openai.ChatCompletionToolParam, 0, len(tools))
	for _, t := range tools {
		out = append(out, openai.ChatCompletionToolParam{
			Function: openai.FunctionDefinitionParam{
				Name:        t.Name,
				Description: openai.String(t.Description),
				Parameters:  openai.FunctionParameters(t.Parameters),
			},
		})
	}
	return out
}
