package lexer

import "fmt"

// TokenType represents the matcher rule a span was consumed by.
type TokenType int

const (
	// Special tokens
	EOF TokenType = iota
	ILLEGAL

	RENAMED_ATTR // name = new_name : dtype
	ATTR         // name : dtype
	LONE_TYPE    // bare datatype identifier
	OPEN         // ( [ { <
	CLOSE        // ) ] } >
)

var tokenNames = [...]string{
	EOF:          "EOF",
	ILLEGAL:      "ILLEGAL",
	RENAMED_ATTR: "RENAMED_ATTR",
	ATTR:         "ATTR",
	LONE_TYPE:    "LONE_TYPE",
	OPEN:         "OPEN",
	CLOSE:        "CLOSE",
}

func (t TokenType) String() string {
	if int(t) < len(tokenNames) && int(t) >= 0 {
		return tokenNames[t]
	}
	return fmt.Sprintf("TokenType(%d)", int(t))
}

// Token is one consumed span of schema source.
//
// Name is set for RENAMED_ATTR and ATTR, RenamedTo for RENAMED_ATTR only,
// DType for the three attribute forms. Value holds the full matched text;
// for ILLEGAL it holds the entire unconsumed remainder so the error path
// can point at it.
type Token struct {
	Type      TokenType
	Name      string
	RenamedTo string
	DType     string
	Value     string
	Offset    int // byte offset of the match start in the source
}
