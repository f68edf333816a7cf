package errors

// ErrorCodeInfo contains metadata about an error code.
type ErrorCodeInfo struct {
	Code            ErrorCode
	Description     string
	SuggestedAction string
}

// ErrorCodeRegistry maps error codes to their metadata.
var ErrorCodeRegistry = map[ErrorCode]ErrorCodeInfo{
	ErrTimeout: {
		Code:            ErrTimeout,
		Description:     "Backend call exceeded the configured timeout",
		SuggestedAction: "Raise the limit: minutes config set timeout 10m",
	},
	ErrContextCancelled: {
		Code:            ErrContextCancelled,
		Description:     "Processing cancelled by user or signal",
		SuggestedAction: "Re-run the command",
	},
	ErrRateLimit: {
		Code:            ErrRateLimit,
		Description:     "Summarization backend rate limit exceeded",
		SuggestedAction: "Wait and re-run, or use --summarizer extractive",
	},
	ErrBackendUnavailable: {
		Code:            ErrBackendUnavailable,
		Description:     "Optional backend unreachable or missing",
		SuggestedAction: "Check summarizer.base_url and diarization.turns_file: minutes config show",
	},
	ErrUnauthenticated: {
		Code:            ErrUnauthenticated,
		Description:     "Summarization backend rejected the API key",
		SuggestedAction: "Store a valid key: minutes auth login",
	},
	ErrParseError: {
		Code:            ErrParseError,
		Description:     "Input or backend response could not be parsed",
		SuggestedAction: "Inspect the input: minutes parse <file> -o json",
	},
	ErrEmptyContent: {
		Code:            ErrEmptyContent,
		Description:     "Transcript is empty",
		SuggestedAction: "Verify the transcript file has text",
	},
	ErrContentTooLarge: {
		Code:            ErrContentTooLarge,
		Description:     "Input exceeds the backend context window",
		SuggestedAction: "Lower the chunk budget: minutes process --max-chars 1200",
	},
	ErrProcessingError: {
		Code:            ErrProcessingError,
		Description:     "Unclassified processing error",
		SuggestedAction: "Re-run with --debug for details",
	},
}

// GetSuggestedAction returns the suggested action for the given error code.
func GetSuggestedAction(code ErrorCode) string {
	if info, ok := ErrorCodeRegistry[code]; ok {
		return info.SuggestedAction
	}
	return "Re-run with --debug for details"
}

// GetDescription returns the human-readable description for the given error code.
func GetDescription(code ErrorCode) string {
	if info, ok := ErrorCodeRegistry[code]; ok {
		return info.Description
	}
	return "Unknown error"
}
