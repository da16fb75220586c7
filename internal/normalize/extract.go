package normalize

import "strings"

// extractJSON pulls a JSON object out of model output that may wrap it in a
// markdown fence or surround it with prose.
func extractJSON(response string) string {
	response = strings.TrimSpace(response)
	const fence = "```"

	startIdx := strings.Index(response, fence)
	if startIdx == -1 {
		startIdx = strings.Index(response, "{")
		if startIdx == -1 {
			return response
		}
		endIdx := strings.LastIndex(response, "}")
		if endIdx < startIdx {
			return response
		}
		return strings.TrimSpace(response[startIdx : endIdx+1])
	}

	endIdx := strings.Index(response[startIdx+len(fence):], fence)
	if endIdx == -1 {
		return response
	}
	endIdx += startIdx + len(fence)

	content := response[startIdx+len(fence) : endIdx]
	// drop the language tag, e.g. ```json
	lines := strings.Split(strings.TrimSpace(content), "\n")
	if len(lines) > 0 {
		tag := strings.ToLower(strings.TrimSpace(lines[0]))
		if tag == "json" || tag == "" {
			content = strings.Join(lines[1:], "\n")
		}
	}
	return strings.TrimSpace(content)
}
