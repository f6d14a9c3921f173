package syntax

type token uint

const (
	EOF token = iota + 1
	Word

	Equals
	Comma
	LBrack
	RBrack
	Bang
	Colon
	Newline
)

func (tok token) String() string {
	switch tok {
	case EOF:
		return "eof"
	case Word:
		return "word"
	case Equals:
		return "'='"
	case Comma:
		return "','"
	case LBrack:
		return "'['"
	case RBrack:
		return "']'"
	case Bang:
		return "'!'"
	case Colon:
		return "':'"
	case Newline:
		return "newline"
	default:
		return "badtoken"
	}
}

var punct = map[byte]token{
	'=':  Equals,
	',':  Comma,
	'[':  LBrack,
	']':  RBrack,
	'!':  Bang,
	':':  Colon,
	'\n': Newline,
}
