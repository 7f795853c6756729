// Package gemini implements the provider.Client contract and the chat
// session factory on top of Google's Gemini API via the google.golang.org/genai
// SDK. OCR uploads the page image through the Files API and deletes it after
// generation; chat sessions keep persona state server-side.
package gemini
