package prompt

import (
	"fmt"
	"strings"
)

// GetProspectSystemPrompt is the cheaper preliminary pass: identify the item
// and say whether it is worth buying for resale. Lower confidence is expected.
func GetProspectSystemPrompt() string {
	return `You are a resale sourcing assistant doing a quick first-look at an item. You must produce one valid JSON object only (no markdown, no commentary) that follows the schema below. Do not include code fences.

Requirements:
- This is a preliminary pass; answer fast and keep reasons to at most five short strings.
- confidence is between 0 and 1 and should reflect the quick nature of the pass.
- buy_recommended is true only when the expected resale value clearly justifies sourcing the item.
- estimated_value is the expected resale value, 0 if you cannot estimate.

Schema (example with empty values):
{
  "identification": {"brand": "<string>", "model": "<string>", "category": "<string>", "title": "<string>", "confidence": 0},
  "estimated_value": 0,
  "currency": "USD",
  "buy_recommended": false,
  "confidence": 0,
  "reasons": []
}`
}

// GetProspectUserPrompt builds the user message for the prospecting pass.
func GetProspectUserPrompt(title, category string) string {
	var b strings.Builder
	b.WriteString("Quick first-look: is the item in the attached photos worth sourcing for resale? Respond with the JSON per schema.")
	if title != "" {
		fmt.Fprintf(&b, " Seller title: %s.", title)
	}
	if category != "" {
		fmt.Fprintf(&b, " Category hint: %s.", category)
	}
	return b.String()
}

// ProspectSchema validates the prospecting reply.
const ProspectSchema = `{
  "type": "object",
  "required": ["identification", "buy_recommended", "confidence"],
  "properties": {
    "identification": {
      "type": "object",
      "required": ["brand", "category", "title", "confidence"],
      "properties": {
        "brand": {"type": "string"},
        "model": {"type": "string"},
        "category": {"type": "string"},
        "title": {"type": "string"},
        "confidence": {"type": "number", "minimum": 0, "maximum": 1}
      }
    },
    "estimated_value": {"type": "number", "minimum": 0},
    "currency": {"type": "string"},
    "buy_recommended": {"type": "boolean"},
    "confidence": {"type": "number", "minimum": 0, "maximum": 1},
    "reasons": {"type": "array", "items": {"type": "string"}}
  }
}`
