package model

// Decorator enriches a document after it was loaded and before a renderer
// draws it.
type Decorator interface {
	Decorate(*Document) error
}

// DecoratorFunc adapts a function into a Decorator.
type DecoratorFunc func(*Document) error

// Decorate calls the underlying function.
func (fn DecoratorFunc) Decorate(doc *Document) error {
	return fn(doc)
}

// WithTitle returns a Decorator that renames the document when title is not
// empty.
func WithTitle(title string) Decorator {
	return DecoratorFunc(func(doc *Document) error {
		if title != "" {
			doc.Name = title
		}
		return nil
	})
}
