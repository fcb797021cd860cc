package prompt

import (
	"fmt"
	"strings"

	"easyvideo/internal/domain"
)

const imageTemplate = `You are an expert at creating detailed image generation prompts.
Convert this user request into a detailed, specific prompt for image generation:

User request: "%s"

Create a detailed prompt that includes:
- Visual style and aesthetic
- Composition and framing
- Lighting and colors
- Any relevant artistic techniques
- High quality descriptors

Keep it concise but descriptive. Respond with just the enhanced prompt.`

const videoTemplate = `You are an expert at creating detailed video generation prompts.
Convert this user request into a detailed, specific prompt for video generation:

User request: "%s"

Create a detailed prompt that includes:
- Scene description and setting
- Camera movements and angles
- Animation style and motion
- Duration suggestions
- Visual effects and transitions
- Mood and atmosphere

Keep it concise but descriptive. Respond with just the enhanced prompt.`

const videoWithReferencesTemplate = `You are an expert at creating detailed video generation prompts.
Convert this user request into a detailed, specific prompt for video generation, incorporating the context from previously generated images.

User request: "%s"

Previously generated images that should be considered for video context:
%s

Create a cohesive video prompt that:
1. Fulfills the user's request for video generation
2. Incorporates relevant visual elements, themes, or styles from the previously generated images
3. Ensures smooth transitions and visual continuity if applicable
4. Provides detailed descriptions of motion, lighting, and camera movements
5. Maintains thematic consistency with the existing images

Return only the enhanced video generation prompt without any additional explanation:`

// Template builds the instruction sent to the text model for the given
// intent. References are only used for video.
func Template(userPrompt string, intent domain.Intent, refs []domain.ReferenceImage) string {
	if intent != domain.IntentVideo {
		return fmt.Sprintf(imageTemplate, userPrompt)
	}
	if len(refs) == 0 {
		return fmt.Sprintf(videoTemplate, userPrompt)
	}
	return fmt.Sprintf(videoWithReferencesTemplate, userPrompt, describeReferences(refs))
}

func describeReferences(refs []domain.ReferenceImage) string {
	lines := make([]string, len(refs))
	for i, ref := range refs {
		desc := strings.TrimSpace(ref.Description)
		if desc == "" {
			desc = "Generated image"
		}
		lines[i] = fmt.Sprintf("Image %d: %s", i+1, desc)
	}
	return strings.Join(lines, "\n")
}
