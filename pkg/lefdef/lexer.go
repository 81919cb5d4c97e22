package lefdef

import (
	"io"
	"strconv"
	"strings"

	"github.com/alecthomas/participle/v2/lexer"

	"github.com/cloudcalvin/gdsutil/pkg/errors"
)

// Lexer splits LEF and DEF text into tokens. Both formats are sequences of
// whitespace-separated words and statements terminated by ";". Parentheses
// group DEF points and connections; keywords, names and numbers are all
// words and are told apart by the parser.
var Lexer = lexer.MustSimple([]lexer.SimpleRule{
	// Comments start with # at a token boundary and run to end of line.
	{Name: "Comment", Pattern: `#[^\n]*`},
	{Name: "Whitespace", Pattern: `\s+`},
	{Name: "String", Pattern: `"[^"]*"`},
	{Name: "Punct", Pattern: `[;()]`},
	{Name: "Word", Pattern: `[^\s;()"]+`},
})

var (
	tokComment    = Lexer.Symbols()["Comment"]
	tokWhitespace = Lexer.Symbols()["Whitespace"]
	tokString     = Lexer.Symbols()["String"]
	tokPunct      = Lexer.Symbols()["Punct"]
)

// scanner is a cursor over the significant tokens of one file.
type scanner struct {
	file string
	toks []lexer.Token
	pos  int
	eof  lexer.Token
}

func scan(file string, r io.Reader) (*scanner, error) {
	lex, err := Lexer.Lex(file, r)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeParse, err, "read %s", file).For(file)
	}
	s := &scanner{file: file}
	for {
		tok, err := lex.Next()
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeParse, err, "tokenize %s", file).For(file)
		}
		if tok.EOF() {
			s.eof = tok
			return s, nil
		}
		switch tok.Type {
		case tokComment, tokWhitespace:
			continue
		case tokString:
			tok.Value = strings.Trim(tok.Value, `"`)
		}
		s.toks = append(s.toks, tok)
	}
}

func (s *scanner) done() bool { return s.pos >= len(s.toks) }

func (s *scanner) peek() lexer.Token {
	if s.done() {
		return s.eof
	}
	return s.toks[s.pos]
}

// lookahead returns the token i places after the next one.
func (s *scanner) lookahead(i int) lexer.Token {
	if s.pos+i >= len(s.toks) {
		return s.eof
	}
	return s.toks[s.pos+i]
}

func (s *scanner) next() lexer.Token {
	tok := s.peek()
	if !s.done() {
		s.pos++
	}
	return tok
}

// is reports whether the next token is the keyword or punctuation kw.
func (s *scanner) is(kw string) bool {
	if s.done() {
		return false
	}
	tok := s.toks[s.pos]
	return tok.Type != tokString && strings.EqualFold(tok.Value, kw)
}

func (s *scanner) accept(kw string) bool {
	if s.is(kw) {
		s.pos++
		return true
	}
	return false
}

func (s *scanner) expect(kw string) error {
	if !s.accept(kw) {
		return s.errorf("expected %q, found %s", kw, describe(s.peek()))
	}
	return nil
}

// word returns the next name or keyword.
func (s *scanner) word() (string, error) {
	tok := s.peek()
	if s.done() || tok.Type == tokPunct {
		return "", s.errorf("expected a name, found %s", describe(tok))
	}
	s.pos++
	return tok.Value, nil
}

func (s *scanner) number() (float64, error) {
	tok := s.peek()
	v, err := strconv.ParseFloat(tok.Value, 64)
	if s.done() || tok.Type == tokPunct || err != nil {
		return 0, s.errorf("expected a number, found %s", describe(tok))
	}
	s.pos++
	return v, nil
}

func (s *scanner) integer() (int64, error) {
	tok := s.peek()
	v, err := strconv.ParseInt(tok.Value, 10, 64)
	if s.done() || tok.Type == tokPunct || err != nil {
		return 0, s.errorf("expected an integer, found %s", describe(tok))
	}
	s.pos++
	return v, nil
}

// rest returns the words up to the next ";" and consumes it.
func (s *scanner) rest() ([]string, error) {
	var out []string
	for !s.done() {
		tok := s.next()
		if tok.Type == tokPunct && tok.Value == ";" {
			return out, nil
		}
		out = append(out, tok.Value)
	}
	return nil, s.errorf("missing \";\"")
}

func (s *scanner) skipStatement() error {
	_, err := s.rest()
	return err
}

// skipUntil skips past the next keyword kw.
func (s *scanner) skipUntil(kw string) error {
	for !s.done() {
		if s.accept(kw) {
			return nil
		}
		s.pos++
	}
	return s.errorf("missing %s", kw)
}

// skipBlock skips past the tokens END name.
func (s *scanner) skipBlock(name string) error {
	for !s.done() {
		if s.accept("END") && s.accept(name) {
			return nil
		}
		if !s.is("END") {
			s.pos++
		}
	}
	return s.errorf("missing END %s", name)
}

func (s *scanner) errorf(format string, args ...any) *errors.Error {
	pos := s.peek().Pos
	return errors.New(errors.ErrCodeParse, "%s: "+format, append([]any{pos}, args...)...).For(s.file)
}

func describe(tok lexer.Token) string {
	if tok.EOF() {
		return "end of file"
	}
	return strconv.Quote(tok.Value)
}
