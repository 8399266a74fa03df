package style

import (
	"errors"
	"fmt"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func structValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

// Validate checks the structural shape of the document and its invariants:
// unique layer ids, resolvable sources, and properties legal for each
// layer's type. Failures are KindInvalidDocument.
func Validate(doc *Document) error {
	if doc == nil {
		return Errorf(KindInvalidDocument, "validate", "document is empty")
	}
	if err := structValidator().Struct(doc); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return Errorf(KindInvalidDocument, "validate", "%s failed %q", fe.Namespace(), fe.Tag())
		}
		return Wrap(KindInvalidDocument, "validate", err)
	}

	seen := make(map[string]struct{}, len(doc.Layers))
	for i := range doc.Layers {
		l := &doc.Layers[i]
		if _, dup := seen[l.ID]; dup {
			return Errorf(KindInvalidDocument, "validate", "duplicate layer id %q", l.ID)
		}
		seen[l.ID] = struct{}{}

		if l.Source != "" {
			if _, ok := doc.Sources[l.Source]; !ok {
				return Errorf(KindInvalidDocument, "validate", "layer %q references unknown source %q", l.ID, l.Source)
			}
		}
		if l.InlineSource != nil {
			if err := structValidator().Struct(l.InlineSource); err != nil {
				return Wrap(KindInvalidDocument, "validate", fmt.Errorf("layer %q inline source: %w", l.ID, err))
			}
		}
		if err := checkProperties(l, Paint, l.Paint); err != nil {
			return err
		}
		if err := checkProperties(l, Layout, l.Layout); err != nil {
			return err
		}
	}
	return nil
}

func checkProperties(l *Layer, ns Namespace, props Properties) error {
	for name := range props {
		if err := CheckProperty(l.Type, ns, name); err != nil {
			return Errorf(KindInvalidDocument, "validate", "layer %q: %s.%s is not valid for %s layers", l.ID, ns, name, l.Type)
		}
	}
	return nil
}
