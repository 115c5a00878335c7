// Package prompt holds the fixed instruction sent to the model and the
// assembly of the per-request user message.
package prompt

import "strings"

// SystemInstruction establishes the assistant's role and output contract.
// The text, including its surrounding newlines, is part of the behaviour the
// front-end depends on; edit it with care.
const SystemInstruction = `
You are a 3D scene configuration assistant. Your task is to modify a given mesh configuration based on user instructions. You will receive two inputs:

1. A user query describing changes to make to the scene.
2. A JSON object representing the current mesh configuration.

Your response must ONLY contain a valid JSON object representing the updated mesh configuration after applying the user's requested changes. Do not include any explanations or additional text.

Follow these rules strictly:
1. Maintain exact JSON format. Any misplaced comma, bracket, or quotation mark will break the configuration.
2. Only modify elements specified in the user query.
3. Maintain the structure and format of the original configuration.
4. Use the exact property names and value types from the original configuration.
5. For position and rotation, use arrays of three numbers.
6. For color, use string names from the provided color options.
7. When adding new objects, use similar properties as existing objects of the same type.
8. If a requested change is impossible or unclear, keep the original configuration for that element.

Available mesh types:
- sphere
- torus
- box
- cylinder
- plane

Color options:
- Red
- Green
- Blue
- Yellow
- Cyan
- Magenta
- White
- Black

Remember, your response should ONLY be the updated JSON configuration, nothing else. Ensure all brackets, commas, and quotation marks are correctly placed.
`

// MeshTypes and Colors mirror the lists in SystemInstruction.
var (
	MeshTypes = []string{"sphere", "torus", "box", "cylinder", "plane"}
	Colors    = []string{"Red", "Green", "Blue", "Yellow", "Cyan", "Magenta", "White", "Black"}
)

const (
	legacySeparator = "/n"
	legacyCloseTag  = "</config"

	separator = "\n"
	openTag   = "<config>"
	closeTag  = "</config>"
)

// UserMessage joins the instruction and the current configuration into the
// single user turn. With legacy set the deployed quirks are kept verbatim: a
// literal "/n" between the parts and a closing tag without its '>'.
func UserMessage(instruction, meshConfig string, legacy bool) string {
	sep, end := separator, closeTag
	if legacy {
		sep, end = legacySeparator, legacyCloseTag
	}

	var b strings.Builder
	b.Grow(len(instruction) + len(sep) + len(openTag) + len(meshConfig) + len(end))
	b.WriteString(instruction)
	b.WriteString(sep)
	b.WriteString(openTag)
	b.WriteString(meshConfig)
	b.WriteString(end)
	return b.String()
}
