package router

import "math/rand"

// Picker returns a uniformly distributed index in [0, n)
type Picker func(n int) int

// RandomPicker draws from the process-wide random source
func RandomPicker(n int) int {
	return rand.Intn(n)
}

// Requested returns the chatbot named by the request, defaulting to grok
func Requested(chatbot string) string {
	if chatbot == "" {
		return string(DefaultProvider)
	}
	return chatbot
}

// Candidates returns the ordered providers to attempt. A pinned request
// yields exactly the requested name, known or not. An auto request starts
// with clientChosen when it is a known provider, otherwise with a random
// one, followed by the rest in canonical order.
func Candidates(requested, clientChosen string, pick Picker) []ProviderName {
	if requested != ModeAuto {
		return []ProviderName{ProviderName(requested)}
	}

	initial := ProviderName(clientChosen)
	if !initial.Known() {
		initial = CanonicalOrder[pick(len(CanonicalOrder))]
	}

	candidates := make([]ProviderName, 0, len(CanonicalOrder))
	candidates = append(candidates, initial)
	for _, p := range CanonicalOrder {
		if p != initial {
			candidates = append(candidates, p)
		}
	}
	return candidates
}
