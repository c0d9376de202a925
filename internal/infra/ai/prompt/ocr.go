package prompt

// GetOCRSystemPrompt asks for a plain transcription of visible text.
func GetOCRSystemPrompt() string {
	return `You transcribe text visible in photos. You must produce one valid JSON object only (no markdown, no commentary) that follows the schema below. Do not include code fences.

Requirements:
- lines contains every distinct piece of visible text, top to bottom, one entry per label/line.
- Transcribe exactly what is printed; do not translate or correct spelling.
- Return an empty lines array when no text is visible.

Schema (example with empty values):
{
  "lines": []
}`
}

// GetOCRUserPrompt builds the user message for a transcription request.
func GetOCRUserPrompt() string {
	return "Transcribe all text visible in the attached photo. Respond with the JSON per schema."
}

// OCRSchema validates the transcription reply.
const OCRSchema = `{
  "type": "object",
  "required": ["lines"],
  "properties": {
    "lines": {"type": "array", "items": {"type": "string"}}
  }
}`
