package dom

import (
	"strings"

	parse "github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/css"
	"golang.org/x/net/html"
)

// Declaration is a single property from an inline style attribute.
type Declaration struct {
	Property  string
	Value     string
	Important bool
}

// String formats the declaration as it appears inside a style attribute.
func (d Declaration) String() string {
	if d.Important {
		return d.Property + ": " + d.Value + " !important"
	}
	return d.Property + ": " + d.Value
}

// ParseStyle parses the contents of a style attribute into declarations.
// Malformed declarations are skipped.
func ParseStyle(style string) []Declaration {
	if strings.TrimSpace(style) == "" {
		return nil
	}

	p := css.NewParser(parse.NewInputString(style), true)
	var decls []Declaration
	for {
		gt, _, data := p.Next()
		switch gt {
		case css.ErrorGrammar:
			if p.Err() != nil {
				return decls
			}
		case css.DeclarationGrammar, css.CustomPropertyGrammar:
			d := declarationFromTokens(string(data), p.Values())
			if d.Property != "" && d.Value != "" {
				decls = append(decls, d)
			}
		}
	}
}

func declarationFromTokens(prop string, tokens []css.Token) Declaration {
	d := Declaration{Property: strings.ToLower(strings.TrimSpace(prop))}

	// drop a trailing "!important"
	end := len(tokens)
	for end > 0 && tokens[end-1].TokenType == css.WhitespaceToken {
		end--
	}
	if end > 0 && tokens[end-1].TokenType == css.IdentToken && strings.EqualFold(string(tokens[end-1].Data), "important") {
		i := end - 2
		for i >= 0 && tokens[i].TokenType == css.WhitespaceToken {
			i--
		}
		if i >= 0 && tokens[i].TokenType == css.DelimToken && string(tokens[i].Data) == "!" {
			d.Important = true
			end = i
		}
	}

	var parts []string
	for _, t := range tokens[:end] {
		if t.TokenType != css.WhitespaceToken {
			parts = append(parts, string(t.Data))
		} else if len(parts) > 0 {
			parts = append(parts, " ")
		}
	}
	d.Value = strings.TrimSpace(strings.Join(parts, ""))
	return d
}

// FormatStyle joins declarations back into a style attribute value.
func FormatStyle(decls []Declaration) string {
	parts := make([]string, 0, len(decls))
	for _, d := range decls {
		parts = append(parts, d.String())
	}
	return strings.Join(parts, "; ")
}

// Style returns the parsed inline style of n.
func Style(n *html.Node) []Declaration {
	v, _ := Attr(n, "style")
	return ParseStyle(v)
}

// StyleProperty returns the inline declaration of prop on n.
func StyleProperty(n *html.Node, prop string) (Declaration, bool) {
	for _, d := range Style(n) {
		if d.Property == prop {
			return d, true
		}
	}
	return Declaration{}, false
}

// SetStyleProperty sets prop on n's inline style, replacing any existing
// declaration of the same property.
func SetStyleProperty(n *html.Node, prop, value string, important bool) {
	if n == nil || n.Type != html.ElementNode {
		return
	}
	decls := Style(n)
	d := Declaration{Property: prop, Value: value, Important: important}
	replaced := false
	for i := range decls {
		if decls[i].Property == prop {
			decls[i] = d
			replaced = true
		}
	}
	if !replaced {
		decls = append(decls, d)
	}
	SetAttr(n, "style", FormatStyle(decls))
}

// RemoveStyleProperty removes prop from n's inline style and reports whether
// it was present. The style attribute is dropped once it is empty.
func RemoveStyleProperty(n *html.Node, prop string) bool {
	if n == nil || n.Type != html.ElementNode {
		return false
	}
	decls := Style(n)
	kept := decls[:0]
	removed := false
	for _, d := range decls {
		if d.Property == prop {
			removed = true
			continue
		}
		kept = append(kept, d)
	}
	if !removed {
		return false
	}
	if len(kept) == 0 {
		RemoveAttr(n, "style")
	} else {
		SetAttr(n, "style", FormatStyle(kept))
	}
	return true
}
