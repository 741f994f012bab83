//
// Tencent is pleased to support the open source community by making
// trpc-coinsight-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-coinsight-go is licensed under the Apache License Version 2.0.
//
//

package openai

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/openai/openai-go/option"
	"github.com/stretchr/testify/require"

	"trpc.group/trpc-go/trpc-coinsight-go/model"
)

// capturingServer records the request body and replies with a fixed
// chat completion payload.
func capturingServer(t *testing.T, payload string) (*httptest.Server, *map[string]any) {
	t.Helper()
	var body map[string]any
	srv := httptest.NewServer(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			raw, err := io.ReadAll(r.Body)
			require.NoError(t, err)
			require.NoError(t, json.Unmarshal(raw, &body))
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(payload))
		}))
	t.Cleanup(srv.Close)
	return srv, &body
}

func newTestModel(srv *httptest.Server) *Model {
	return New("test-key",
		WithModel("gpt-4"),
		WithRequestOptions(option.WithBaseURL(srv.URL)))
}

func TestGenerate_PlainAnswer(t *testing.T) {
	srv, body := capturingServer(t, `{
		"choices": [{"message": {"role": "assistant", "content": "hello"}}]
	}`)
	m := newTestModel(srv)

	resp, err := m.Generate(context.Background(), []model.Message{
		model.SystemMessage("be brief"),
		model.UserMessage("hi"),
	}, nil)
	require.NoError(t, err)
	require.Equal(t, "hello", resp.Content)
	require.Empty(t, resp.ToolCalls)

	require.Equal(t, "gpt-4", (*body)["model"])
	messages := (*body)["messages"].([]any)
	require.Len(t, messages, 2)
	first := messages[0].(map[string]any)
	require.Equal(t, "system", first["role"])
	require.Equal(t, "be brief", first["content"])
}

func TestGenerate_SurfacesToolCalls(t *testing.T) {
	srv, _ := capturingServer(t, `{
		"choices": [{"message": {
			"role": "assistant",
			"content": "",
			"tool_calls": [{
				"id": "call_1",
				"type": "function",
				"function": {"name": "get_coin_info", "arguments": "{\"coin_query\":\"btc\"}"}
			}]
		}}]
	}`)
	m := newTestModel(srv)

	resp, err := m.Generate(context.Background(), []model.Message{
		model.UserMessage("what is btc"),
	}, []model.ToolDeclaration{{
		Name:        "get_coin_info",
		Description: "Look up a coin",
		Parameters:  map[string]any{"type": "object"},
	}})
	require.NoError(t, err)
	require.Len(t, resp.ToolCalls, 1)
	require.Equal(t, "call_1", resp.ToolCalls[0].ID)
	require.Equal(t, "get_coin_info", resp.ToolCalls[0].Name)
	require.JSONEq(t, `{"coin_query":"btc"}`, resp.ToolCalls[0].Arguments)
}

func TestGenerate_SendsToolDeclarations(t *testing.T) {
	srv, body := capturingServer(t, `{
		"choices": [{"message": {"role": "assistant", "content": "ok"}}]
	}`)
	m := newTestModel(srv)

	_, err := m.Generate(context.Background(), []model.Message{
		model.UserMessage("hi"),
	}, []model.ToolDeclaration{{
		Name:        "price_analysis",
		Description: "Analyze price",
		Parameters:  map[string]any{"type": "object"},
	}})
	require.NoError(t, err)

	tools := (*body)["tools"].([]any)
	require.Len(t, tools, 1)
	tool := tools[0].(map[string]any)
	require.Equal(t, "function", tool["type"])
	fn := tool["function"].(map[string]any)
	require.Equal(t, "price_analysis", fn["name"])
	require.Equal(t, "Analyze price", fn["description"])
}

func TestGenerate_EchoesAssistantToolCalls(t *testing.T) {
	srv, body := capturingServer(t, `{
		"choices": [{"message": {"role": "assistant", "content": "done"}}]
	}`)
	m := newTestModel(srv)

	_, err := m.Generate(context.Background(), []model.Message{
		model.UserMessage("analyze btc"),
		{
			Role: model.RoleAssistant,
			ToolCalls: []model.ToolCall{{
				ID:        "call_9",
				Name:      "price_analysis",
				Arguments: `{"coin_query":"btc"}`,
			}},
		},
		model.ToolResultMessage("call_9", "price report"),
	}, nil)
	require.NoError(t, err)

	messages := (*body)["messages"].([]any)
	require.Len(t, messages, 3)

	assistant := messages[1].(map[string]any)
	require.Equal(t, "assistant", assistant["role"])
	calls := assistant["tool_calls"].([]any)
	require.Len(t, calls, 1)
	call := calls[0].(map[string]any)
	require.Equal(t, "call_9", call["id"])
	require.Equal(t, "function", call["type"])
	fn := call["function"].(map[string]any)
	require.Equal(t, "price_analysis", fn["name"])

	toolMsg := messages[2].(map[string]any)
	require.Equal(t, "tool", toolMsg["role"])
	require.Equal(t, "call_9", toolMsg["tool_call_id"])
	require.Equal(t, "price report", toolMsg["content"])
}

func TestGenerate_NoChoicesFails(t *testing.T) {
	srv, _ := capturingServer(t, `{"choices": []}`)
	m := newTestModel(srv)

	_, err := m.Generate(context.Background(), []model.Message{
		model.UserMessage("hi"),
	}, nil)
	require.ErrorContains(t, err, "no choices")
}
