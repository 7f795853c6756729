// Package provider defines the uniform contract for external generative-AI
// backends used for OCR and translation, together with the registry that
// holds the configured clients. It abstracts the details of each vendor API
// (Gemini, Mistral), allowing route handlers to run OCR and translation
// without coupling to specific external services. The package also owns the
// shared retry and throttling machinery every client is expected to wrap
// around its outbound calls.
package provider
