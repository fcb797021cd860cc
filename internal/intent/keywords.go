package intent

import (
	"strings"

	"golang.org/x/text/cases"

	"easyvideo/internal/domain"
)

// videoKeywords mark a prompt as a video request when the remote classifier
// is unavailable. Matching is by substring on the case-folded prompt.
var videoKeywords = []string{
	"video", "animation", "movie", "film", "animate", "motion", "moving",
	"sequence", "clip", "footage", "cinematic", "dynamic", "flowing",
	"视频", "动画", "电影",
}

// KeywordIntent classifies a prompt without any remote call.
func KeywordIntent(prompt string) domain.Intent {
	if HasVideoKeyword(prompt) {
		return domain.IntentVideo
	}
	return domain.IntentImage
}

// HasVideoKeyword reports whether any video keyword occurs in prompt.
func HasVideoKeyword(prompt string) bool {
	folded := fold(prompt)
	for _, kw := range videoKeywords {
		if strings.Contains(folded, kw) {
			return true
		}
	}
	return false
}

func fold(s string) string {
	return cases.Fold().String(strings.TrimSpace(s))
}
