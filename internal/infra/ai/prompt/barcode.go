package prompt

import "fmt"

// GetBarcodeSystemPrompt asks the model to read a barcode and identify the product.
func GetBarcodeSystemPrompt() string {
	return `You identify retail products from barcodes. You must produce one valid JSON object only (no markdown, no commentary) that follows the schema below. Do not include code fences.

Requirements:
- barcode is the digits exactly as read (UPC/EAN), empty string if unreadable.
- confidence is between 0 and 1; use 0 when the product cannot be identified.
- Leave product_name empty rather than guessing wildly.

Schema (example with empty values):
{
  "barcode": "<string>",
  "product_name": "<string>",
  "brand": "<string>",
  "category": "<string>",
  "confidence": 0
}`
}

// GetBarcodeImagePrompt builds the user message for a barcode photo.
func GetBarcodeImagePrompt() string {
	return "Read the barcode in the attached photo and identify the product. Respond with the JSON per schema."
}

// GetBarcodeLookupPrompt builds the user message for a raw barcode value.
func GetBarcodeLookupPrompt(barcode string) string {
	return fmt.Sprintf("Identify the retail product with barcode %s. Respond with the JSON per schema.", barcode)
}

// BarcodeSchema validates the barcode reply.
const BarcodeSchema = `{
  "type": "object",
  "required": ["barcode", "product_name", "confidence"],
  "properties": {
    "barcode": {"type": "string"},
    "product_name": {"type": "string"},
    "brand": {"type": "string"},
    "category": {"type": "string"},
    "confidence": {"type": "number", "minimum": 0, "maximum": 1}
  }
}`
