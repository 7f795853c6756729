// Package redact strips credentials from strings before they are logged or
// returned in error responses. Upstream AI providers echo request URLs in
// their error messages, and those URLs can carry API keys as query
// parameters; asset URLs may be pre-signed. Redacting at the logging boundary
// keeps those secrets out of log aggregators.
package redact

import "regexp"

const (
	RedactedKeyPlaceholder        = "[REDACTED_KEY]"
	RedactedCredentialPlaceholder = "[REDACTED_CREDENTIAL]"
)

var (
	// key=... style query parameters (Gemini passes the API key this way).
	keyParamRegex = regexp.MustCompile(`(?i)([?&](?:key|api[_-]?key|token|signature|x-amz-credential)=)[^&\s'"]+`)

	// Authorization headers and api-key fields echoed into error text.
	bearerRegex = regexp.MustCompile(`(?i)(bearer\s+)[A-Za-z0-9_\-.~+/]{8,}`)
	apiKeyRegex = regexp.MustCompile(`(?i)(api[_-]?key|secret|token|access[_-]?key)(['"\s:=]+)[A-Za-z0-9_\-.~+/]{8,}`)

	// Three-part base64url JWTs.
	jwtTokenRegex = regexp.MustCompile(`eyJ[a-zA-Z0-9_-]+\.eyJ[a-zA-Z0-9_-]+\.[a-zA-Z0-9_-]+`)
)

// String redacts credentials from the input string.
func String(input string) string {
	if input == "" {
		return input
	}

	result := keyParamRegex.ReplaceAllString(input, "${1}"+RedactedKeyPlaceholder)
	result = bearerRegex.ReplaceAllString(result, "${1}"+RedactedCredentialPlaceholder)
	result = apiKeyRegex.ReplaceAllString(result, "${1}${2}"+RedactedKeyPlaceholder)
	result = jwtTokenRegex.ReplaceAllString(result, "[REDACTED_JWT]")
	return result
}

// Error redacts credentials from an error's Error() output.
func Error(err error) string {
	if err == nil {
		return ""
	}
	return String(err.Error())
}
