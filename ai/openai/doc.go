// Package openai implements the ai interfaces against OpenAI-compatible APIs.
//
// It works with any service exposing the OpenAI wire format, including local
// Ollama, LocalAI and vLLM deployments. Hosts are normalized to carry the /v1
// suffix the protocol requires.
package openai
