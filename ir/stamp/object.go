package stamp

import "strings"

// ObjectStamp is the stamp of an object reference. Type names a class
// without a hierarchy: the empty name stands for any object, and
// distinct names are unrelated unless one of them is empty. Exact
// excludes subtypes of the named type.
type ObjectStamp struct {
	typ        string
	exact      bool
	nonNull    bool
	alwaysNull bool
}

// NewObjectStamp returns an object stamp.
func NewObjectStamp(typ string, exact, nonNull, alwaysNull bool) ObjectStamp {
	if nonNull && alwaysNull {
		return ObjectStamp{nonNull: true, alwaysNull: true}
	}
	if typ == "" {
		exact = false
	}
	return ObjectStamp{typ, exact, nonNull, alwaysNull}
}

// ObjectUnrestricted returns the stamp of any object or null.
func ObjectUnrestricted() ObjectStamp { return ObjectStamp{} }

// ObjectNull returns the stamp containing only null.
func ObjectNull() ObjectStamp { return ObjectStamp{alwaysNull: true} }

// ObjectNonNull returns the stamp of any non-null object.
func ObjectNonNull() ObjectStamp { return ObjectStamp{nonNull: true} }

// Type returns the named type, or "" for any object.
func (s ObjectStamp) Type() string { return s.typ }

// IsExact reports whether subtypes are excluded.
func (s ObjectStamp) IsExact() bool { return s.exact }

// NonNull reports whether null is excluded.
func (s ObjectStamp) NonNull() bool { return s.nonNull }

// AlwaysNull reports whether null is the only value.
func (s ObjectStamp) AlwaysNull() bool { return s.alwaysNull }

func (s ObjectStamp) Kind() Kind  { return ObjectKind }
func (s ObjectStamp) Bits() uint8 { return 0 }

func (s ObjectStamp) Empty() Stamp        { return NewObjectStamp("", false, true, true) }
func (s ObjectStamp) Unrestricted() Stamp { return ObjectUnrestricted() }

func (s ObjectStamp) IsEmpty() bool        { return s.nonNull && s.alwaysNull }
func (s ObjectStamp) IsUnrestricted() bool { return s == ObjectStamp{} }

func (s ObjectStamp) AsConstant() (Const, bool) {
	if s.alwaysNull && !s.nonNull {
		return NullConst(), true
	}
	return Const{}, false
}

func (s ObjectStamp) Equals(other Stamp) bool {
	t, ok := other.(ObjectStamp)
	return ok && s == t
}

func (s ObjectStamp) IsCompatible(other Stamp) bool {
	_, ok := other.(ObjectStamp)
	return ok
}

func (s ObjectStamp) other(o Stamp) ObjectStamp {
	t, ok := o.(ObjectStamp)
	if !ok {
		panic(incompatible(s, o))
	}
	return t
}

func (s ObjectStamp) Meet(o Stamp) Stamp {
	t := s.other(o)
	switch {
	case s.IsEmpty():
		return t
	case t.IsEmpty():
		return s
	case s.alwaysNull && t.alwaysNull:
		return s
	case s.alwaysNull:
		return NewObjectStamp(t.typ, t.exact, false, false)
	case t.alwaysNull:
		return NewObjectStamp(s.typ, s.exact, false, false)
	}
	typ, exact := s.typ, s.exact && t.exact
	if s.typ != t.typ {
		typ, exact = "", false
	}
	return NewObjectStamp(typ, exact, s.nonNull && t.nonNull, false)
}

func (s ObjectStamp) Join(o Stamp) Stamp {
	t := s.other(o)
	nonNull := s.nonNull || t.nonNull
	alwaysNull := s.alwaysNull || t.alwaysNull
	typ, exact := s.typ, s.exact || t.exact
	switch {
	case s.typ == "":
		typ = t.typ
	case t.typ == "" || s.typ == t.typ:
	case s.exact && t.exact:
		// Unrelated exact types share only null.
		alwaysNull = true
	case t.exact:
		typ = t.typ
	}
	if typ == "" {
		exact = false
	}
	return NewObjectStamp(typ, exact, nonNull, alwaysNull)
}

func (s ObjectStamp) String() string {
	if s.IsEmpty() {
		return "object empty"
	}
	if s.alwaysNull {
		return "object null"
	}
	var b strings.Builder
	b.WriteString("object")
	if s.typ != "" {
		b.WriteString(" " + s.typ)
	}
	if s.exact {
		b.WriteString(" exact")
	}
	if s.nonNull {
		b.WriteString(" nonnull")
	}
	return b.String()
}
