package prompt

import (
	"fmt"
	"strings"
)

// GetItemSystemPrompt provides strict directions and schema for the full
// analysis pass. One valid JSON object only, no markdown.
func GetItemSystemPrompt() string {
	return `You are an expert resale analyst for secondhand goods. You must produce one valid JSON object only (no markdown, no commentary) that follows the schema below. Do not include code fences.

Requirements:
- Output must be a single JSON object.
- Use lowercase enum values: demand/competition are low|moderate|high, price_stability is volatile|stable|rising.
- confidence values are between 0 and 1.
- selling_points, risks, indicators, red_flags are short string lists; keep items concise.
- estimated_price is the expected resale value in the given currency, 0 if you cannot estimate.
- For authentication, judge from visible logos, stitching, serials, and materials; be conservative and list red_flags when unsure.

Schema (example with empty values):
{
  "identification": {"brand": "<string>", "model": "<string>", "category": "<string>", "title": "<string>", "confidence": 0},
  "market": {"demand": "<low|moderate|high>", "competition": "<low|moderate|high>", "price_stability": "<volatile|stable|rising>", "selling_points": [], "risks": []},
  "authentication": {"authentic": true, "confidence": 0, "indicators": [], "red_flags": []},
  "estimated_price": 0,
  "currency": "USD"
}`
}

// GetItemUserPrompt builds the user message around the seller's hints.
func GetItemUserPrompt(title, category, condition string) string {
	var b strings.Builder
	b.WriteString("Analyze the item in the attached photos and respond with the JSON per schema.")
	if title != "" {
		fmt.Fprintf(&b, " Seller title: %s.", title)
	}
	if category != "" {
		fmt.Fprintf(&b, " Category hint: %s.", category)
	}
	if condition != "" {
		fmt.Fprintf(&b, " Declared condition: %s.", condition)
	}
	return b.String()
}

// ItemSchema validates the full-analysis reply.
const ItemSchema = `{
  "type": "object",
  "required": ["identification", "market", "authentication"],
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
    "market": {
      "type": "object",
      "required": ["demand", "competition", "price_stability"],
      "properties": {
        "demand": {"type": "string", "enum": ["low", "moderate", "high"]},
        "competition": {"type": "string", "enum": ["low", "moderate", "high"]},
        "price_stability": {"type": "string", "enum": ["volatile", "stable", "rising"]},
        "selling_points": {"type": "array", "items": {"type": "string"}},
        "risks": {"type": "array", "items": {"type": "string"}}
      }
    },
    "authentication": {
      "type": "object",
      "required": ["authentic", "confidence"],
      "properties": {
        "authentic": {"type": "boolean"},
        "confidence": {"type": "number", "minimum": 0, "maximum": 1},
        "indicators": {"type": "array", "items": {"type": "string"}},
        "red_flags": {"type": "array", "items": {"type": "string"}}
      }
    },
    "estimated_price": {"type": "number", "minimum": 0},
    "currency": {"type": "string"}
  }
}`
