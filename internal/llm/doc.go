// Package llm asks a large language model for personalised hygiene advice.
//
// A Generator turns a prompt into text; Gemini and Ollama are the two
// backends. The Advisor builds the prompt from a model.AdviceRequest,
// extracts and validates the JSON object in the reply with ParseAdvice,
// and caches the result for identical requests. Anything that goes wrong
// comes back as an error: the caller keeps its rule-based advice and moves on.
package llm
