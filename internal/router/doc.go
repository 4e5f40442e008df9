// Package router selects upstream providers for a chat request and applies
// the fallback policy.
//
// A request either pins one provider (chatbot=grok|gpt5|gemini) or defers the
// choice (chatbot=auto). Pinned requests get exactly one attempt and surface
// its failure verbatim. Auto requests walk every provider in order and only
// report a generic error once all of them have failed.
//
// Attempts are strictly sequential. Each one ends in an outcome: Success
// and Fatal terminate the request, Skip advances to the next candidate.
package router
