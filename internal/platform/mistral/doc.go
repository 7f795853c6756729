// Package mistral implements the provider.Client contract against the
// Mistral REST API: the dedicated OCR endpoint for page digitization and
// chat completions for translation. There is no official Go SDK for the OCR
// endpoint, so the package carries its own thin HTTP client.
//
// Mistral OCR returns page markdown plus any embedded images it extracted as
// base64. Those images are uploaded to the injected asset store and their
// markdown placeholders rewritten to the uploaded public URLs; a placeholder
// whose upload failed is left unresolved rather than dropped.
package mistral
