package prompt

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"github.com/bryanwahyu/resale-intel/internal/domain/ai"
)

// Validate checks a model reply against one of the schemas above. Any
// mismatch is surfaced as ai.ErrParse so the router can map it.
func Validate(schema, document string) error {
	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(schema),
		gojsonschema.NewStringLoader(document),
	)
	if err != nil {
		return fmt.Errorf("%w: %v", ai.ErrParse, err)
	}
	if result.Valid() {
		return nil
	}
	msgs := make([]string, 0, len(result.Errors()))
	for _, e := range result.Errors() {
		msgs = append(msgs, e.String())
	}
	return fmt.Errorf("%w: %s", ai.ErrParse, strings.Join(msgs, "; "))
}
