package script

import "strconv"

// KeyKind identifies the lexical form of a statement key.
type KeyKind uint8

const (
	// KeyIdent is a bare identifier key such as owner.
	KeyIdent KeyKind = iota
	// KeyInt is a bare integer key, typically a province id.
	KeyInt
	// KeyQualified is a dotted key A.B used for array-append statements.
	KeyQualified
	// KeyDate is a Y.M.D key used by dated history blocks.
	KeyDate
)

func (k KeyKind) String() string {
	switch k {
	case KeyIdent:
		return "ident"
	case KeyInt:
		return "int"
	case KeyQualified:
		return "qualified"
	case KeyDate:
		return "date"
	default:
		return "KeyKind(" + strconv.Itoa(int(k)) + ")"
	}
}

// Key is a statement key. Keys are comparable and may be used as map keys.
type Key struct {
	Kind KeyKind
	// Name holds the identifier, the qualifier of a qualified key,
	// or the date text.
	Name string
	// Member is the right-hand part of a qualified key.
	Member string
	// Int is the value of an integer key.
	Int int64
}

// Ident returns an identifier key.
func Ident(name string) Key {
	return Key{Kind: KeyIdent, Name: name}
}

// IntKey returns an integer key.
func IntKey(n int64) Key {
	return Key{Kind: KeyInt, Int: n}
}

// Qualified returns the dotted key qualifier.member.
func Qualified(qualifier, member string) Key {
	return Key{Kind: KeyQualified, Name: qualifier, Member: member}
}

// DateKey returns a date key such as 1936.1.1.
func DateKey(text string) Key {
	return Key{Kind: KeyDate, Name: text}
}

// String returns the key as it would appear in source text.
func (k Key) String() string {
	switch k.Kind {
	case KeyInt:
		return strconv.FormatInt(k.Int, 10)
	case KeyQualified:
		return k.Name + "." + k.Member
	default:
		return k.Name
	}
}
