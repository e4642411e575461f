// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package markup turns the HTML subset carried by chat turns into text a
// terminal can show: Markdown for glamour, or plain text for line mode.
//
// The subset is what the exchange layer produces: b, strong, i, em, br, div,
// p, a and img, with everything else escaped. Unknown tags are dropped and
// their text kept.
package markup

import (
	"regexp"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

var (
	whitespaceRun = regexp.MustCompile(`[ \t\r\n\f]+`)
	blankLines    = regexp.MustCompile(`\n{3,}`)

	markdownEscaper = strings.NewReplacer(
		`\`, `\\`,
		"`", "\\`",
		`*`, `\*`,
		`_`, `\_`,
		`[`, `\[`,
		`]`, `\]`,
		`<`, `\<`,
		`>`, `\>`,
		`#`, `\#`,
		`|`, `\|`,
	)
)

// sink accumulates output for one of the two targets.
type sink struct {
	out       strings.Builder
	lineStart bool
}

func (s *sink) text(t string) {
	if t == "" {
		return
	}
	if s.lineStart {
		t = strings.TrimLeft(t, " ")
		if t == "" {
			return
		}
	}
	s.out.WriteString(t)
	s.lineStart = false
}

func (s *sink) raw(t string) {
	s.out.WriteString(t)
	s.lineStart = strings.HasSuffix(t, "\n")
}

// block ends the current block with sep unless nothing has been written or the
// output already ends in a newline.
func (s *sink) block(sep string) {
	cur := s.out.String()
	if cur == "" {
		return
	}
	trimmed := strings.TrimRight(cur, " ")
	if strings.HasSuffix(trimmed, sep) {
		return
	}
	if len(trimmed) != len(cur) {
		s.out.Reset()
		s.out.WriteString(trimmed)
	}
	s.raw(sep)
}

type link struct {
	href string
	text strings.Builder
}

// walk tokenizes src and hands every token to fn. Text inside script and
// style elements is skipped.
func walk(src string, fn func(tok html.Token)) {
	z := html.NewTokenizer(strings.NewReader(src))
	skip := 0
	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			// io.EOF or a tokenizer error; either way nothing more to read.
			return
		}
		tok := z.Token()
		switch tok.DataAtom {
		case atom.Script, atom.Style:
			switch tok.Type {
			case html.StartTagToken:
				skip++
			case html.EndTagToken:
				if skip > 0 {
					skip--
				}
			}
			continue
		}
		if skip > 0 {
			continue
		}
		fn(tok)
	}
}

func attr(tok html.Token, name string) string {
	for _, a := range tok.Attr {
		if a.Key == name {
			return strings.TrimSpace(a.Val)
		}
	}
	return ""
}

func collapse(t string) string {
	return whitespaceRun.ReplaceAllString(t, " ")
}

func finish(s string) string {
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		// Keep the two-space hard break marker.
		if strings.HasSuffix(l, "  ") && i < len(lines)-1 {
			lines[i] = strings.TrimRight(l, " ") + "  "
			continue
		}
		lines[i] = strings.TrimRight(l, " ")
	}
	s = strings.Join(lines, "\n")
	s = blankLines.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}

// =============================================================================
// MARKDOWN
// =============================================================================

// ToMarkdown converts turn markup to CommonMark. Text is escaped so that
// backend content cannot inject Markdown.
func ToMarkdown(src string) string {
	var (
		s     sink
		links []*link
	)
	s.lineStart = true

	write := func(t string) {
		if n := len(links); n > 0 {
			links[n-1].text.WriteString(t)
			return
		}
		s.text(t)
	}

	walk(src, func(tok html.Token) {
		switch tok.Type {
		case html.TextToken:
			write(markdownEscaper.Replace(collapse(tok.Data)))

		case html.StartTagToken, html.SelfClosingTagToken:
			switch tok.DataAtom {
			case atom.B, atom.Strong:
				write("**")
			case atom.I, atom.Em:
				write("_")
			case atom.Br:
				if len(links) > 0 {
					write(" ")
					return
				}
				s.raw("  \n")
			case atom.Div, atom.P:
				s.block("\n\n")
			case atom.A:
				if tok.Type == html.StartTagToken {
					links = append(links, &link{href: attr(tok, "href")})
				}
			case atom.Img:
				if src := attr(tok, "src"); src != "" {
					write("![" + markdownEscaper.Replace(attr(tok, "alt")) + "](" + destination(src) + ")")
					if len(links) == 0 {
						s.raw("  \n")
					}
				}
			}

		case html.EndTagToken:
			switch tok.DataAtom {
			case atom.B, atom.Strong:
				write("**")
			case atom.I, atom.Em:
				write("_")
			case atom.Div, atom.P:
				s.block("\n\n")
			case atom.A:
				n := len(links)
				if n == 0 {
					return
				}
				l := links[n-1]
				links = links[:n-1]
				text := strings.TrimSpace(l.text.String())
				switch {
				case l.href == "":
					write(text)
				case text == "":
					write("[" + markdownEscaper.Replace(l.href) + "](" + destination(l.href) + ")")
				default:
					write("[" + text + "](" + destination(l.href) + ")")
				}
			}
		}
	})

	// Unclosed anchors keep their text.
	for len(links) > 0 {
		l := links[len(links)-1]
		links = links[:len(links)-1]
		write(l.text.String())
	}

	return finish(s.out.String())
}

// destination formats a link target, using the angle-bracket form when the
// URL would otherwise end the link early.
func destination(href string) string {
	if strings.ContainsAny(href, " ()") {
		return "<" + strings.NewReplacer("<", "%3C", ">", "%3E").Replace(href) + ">"
	}
	return href
}

// =============================================================================
// PLAIN TEXT
// =============================================================================

// ToPlain converts turn markup to plain text. Links keep their target in
// parentheses and images show their alt text.
func ToPlain(src string) string {
	var (
		s     sink
		links []*link
	)
	s.lineStart = true

	write := func(t string) {
		if n := len(links); n > 0 {
			links[n-1].text.WriteString(t)
			return
		}
		s.text(t)
	}

	walk(src, func(tok html.Token) {
		switch tok.Type {
		case html.TextToken:
			write(collapse(tok.Data))

		case html.StartTagToken, html.SelfClosingTagToken:
			switch tok.DataAtom {
			case atom.Br:
				if len(links) > 0 {
					write(" ")
					return
				}
				s.raw("\n")
			case atom.Div, atom.P:
				s.block("\n")
			case atom.A:
				if tok.Type == html.StartTagToken {
					links = append(links, &link{href: attr(tok, "href")})
				}
			case atom.Img:
				if alt := attr(tok, "alt"); alt != "" {
					write("[" + alt + "]")
					if len(links) == 0 {
						s.raw("\n")
					}
				}
			}

		case html.EndTagToken:
			switch tok.DataAtom {
			case atom.Div, atom.P:
				s.block("\n")
			case atom.A:
				n := len(links)
				if n == 0 {
					return
				}
				l := links[n-1]
				links = links[:n-1]
				text := strings.TrimSpace(l.text.String())
				switch {
				case l.href == "" || l.href == text:
					write(text)
				case text == "":
					write(l.href)
				default:
					write(text + " (" + l.href + ")")
				}
			}
		}
	})

	for len(links) > 0 {
		l := links[len(links)-1]
		links = links[:len(links)-1]
		write(l.text.String())
	}

	return finish(s.out.String())
}
