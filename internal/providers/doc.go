// Package providers defines the wire adapters for upstream LLM providers.
//
// This package provides:
//   - The Adapter interface implemented by each wire protocol
//   - The protocol-neutral ChatRequest and Completion types
//   - ProviderError, the upstream failure taxonomy shared by all adapters
//
// Adapters are pure transforms: they build the upstream request, perform a
// single HTTP call and classify the result. They never retry and never decide
// on fallback; that is the router's job.
package providers
