package style

import "github.com/brunoga/deep"

// Clone returns a deep copy of the document. Nothing in the copy aliases d.
func (d Document) Clone() Document {
	return deep.MustCopy(d)
}

// Clone returns a deep copy of the layer.
func (l Layer) Clone() Layer {
	return deep.MustCopy(l)
}

// Clone returns a deep copy of the source.
func (s Source) Clone() Source {
	return deep.MustCopy(s)
}

// CloneValue deep-copies a JSON value.
func CloneValue(v any) any {
	if v == nil {
		return nil
	}
	return deep.MustCopy(v)
}
