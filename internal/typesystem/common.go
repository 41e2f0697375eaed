package typesystem

// CommonTypeFinder determines the least upper bound of the types it is told
// about, e.g. the element type of a list literal without expectation.
type CommonTypeFinder struct {
	firstTypeFound bool
	commonType     Type
	ambiguous      bool
}

// AddType tells the finder about the type of another element.
func (f *CommonTypeFinder) AddType(t Type, ctx TypeContext) {
	if !f.firstTypeFound {
		f.firstTypeFound = true
		f.commonType = t
		return
	}
	if t.CompatibleTo(f.commonType, ctx, nil) {
		return
	}
	if f.commonType.CompatibleTo(t, ctx, nil) {
		f.commonType = t
		return
	}
	// No direction works; widen to the top type.
	if t.kind == TypeClass && f.commonType.kind == TypeClass {
		f.commonType = Someobject
	} else {
		f.commonType = Something
	}
	f.ambiguous = true
}

// CommonType returns the reconciled type. Without any element the common
// type is Something.
func (f *CommonTypeFinder) CommonType() Type {
	if !f.firstTypeFound {
		return Something
	}
	return f.commonType
}

// Ambiguous reports whether the finder had to fall back to a top type; the
// caller warns in that case.
func (f *CommonTypeFinder) Ambiguous() bool {
	return f.ambiguous || !f.firstTypeFound
}
