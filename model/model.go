//
// Tencent is pleased to support the open source community by making
// trpc-coinsight-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-coinsight-go is licensed under the Apache License Version 2.0.
//
//

// Package model defines the chat model interface the agent drives,
// including function tool calling.
package model

import "context"

// Role identifies a conversation participant.
type Role string

// Conversation roles.
const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// ToolCall is a model request to invoke one declared tool.
type ToolCall struct {
	ID        string
	Name      string
	Arguments string // JSON-encoded arguments
}

// Message is one turn of a conversation.
type Message struct {
	Role    Role
	Content string

	// ToolCalls is set on assistant messages that request tool invocations.
	ToolCalls []ToolCall

	// ToolCallID links a tool-role message to the call it answers.
	ToolCallID string
}

// SystemMessage builds a system-role message.
func SystemMessage(content string) Message {
	return Message{Role: RoleSystem, Content: content}
}

// UserMessage builds a user-role message.
func UserMessage(content string) Message {
	return Message{Role: RoleUser, Content: content}
}

// AssistantMessage builds an assistant-role message.
func AssistantMessage(content string) Message {
	return Message{Role: RoleAssistant, Content: content}
}

// ToolResultMessage builds a tool-role message answering toolCallID.
func ToolResultMessage(toolCallID, content string) Message {
	return Message{Role: RoleTool, Content: content, ToolCallID: toolCallID}
}

// ToolDeclaration describes one callable tool to the model.
type ToolDeclaration struct {
	Name        string
	Description string
	Parameters  map[string]any // JSON schema
}

// Response is the model's reply: either text, tool calls, or both.
type Response struct {
	Content   string
	ToolCalls []ToolCall
}

// Model generates the next assistant turn for a conversation.
type Model interface {
	Generate(
		ctx context.Context,
		messages []Message,
		tools []ToolDeclaration,
	) (*Response, error)
}
