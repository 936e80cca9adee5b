// Package model defines the provider‑agnostic abstractions and concrete
// helpers for interacting with language / reasoning models inside teamflow.
//
// Core goals:
//   - Unify streaming + non‑streaming generation behind a single interface
//   - Surface reasoning fragments separately from visible text
//   - Normalize tool / function call representation (ToolDefinition, ToolCall)
//   - Facilitate lightweight mocking for tests (MockModel)
//
// Providers (OpenAI, Anthropic) implement the Model interface from this
// package so agents remain decoupled from vendor SDKs.
package model
