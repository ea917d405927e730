package clients

import "time"

const (
	USER_AGENT = "sentitable-client/1.0 (+https://github.com/spacesedan/sentitable)"

	GEMINI_BASE_URL      = "https://generativelanguage.googleapis.com"
	GEMINI_DEFAULT_MODEL = "gemini-1.5-flash"
	OPENAI_DEFAULT_MODEL = "gpt-4o-mini"

	HEALTHCHECK_TIMEOUT = 5 * time.Second

	GENAI_CLIENT_CACHE_SIZE = 8
)

// Decoding settings shared by every remote classifier. Only a one word label
// is expected back.
const (
	CLASSIFY_TEMPERATURE = 0.2
	CLASSIFY_TOP_K       = 1
	CLASSIFY_TOP_P       = 0.8
	CLASSIFY_MAX_TOKENS  = 20
)
