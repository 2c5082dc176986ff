package parsers

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/tolkachev/bsema/internal/symbols"
	"github.com/tolkachev/bsema/internal/text"
)

// BSLParser parses BSL source using a line-oriented scanner.
//
// It covers the declaration grammar and qualified calls, which is what the
// semantic backend needs; it is not a full grammar implementation.
type BSLParser struct {
	methodRe    *regexp.Regexp
	methodEndRe *regexp.Regexp
	regionRe    *regexp.Regexp
	regionEndRe *regexp.Regexp
	varRe       *regexp.Regexp
	exportRe    *regexp.Regexp
	callRe      *regexp.Regexp
	localCallRe *regexp.Regexp
}

// Qualifiers that name the current object rather than a module.
var selfQualifiers = map[string]struct{}{
	"этотобъект": {},
	"thisobject": {},
	"этаформа":   {},
	"thisform":   {},
}

// NewBSLParser creates a new BSL parser.
func NewBSLParser() *BSLParser {
	const ident = `[\p{L}_][\p{L}\p{N}_]*`
	return &BSLParser{
		methodRe:    regexp.MustCompile(`(?i)^\s*(?:процедура|функция|procedure|function)\s+(` + ident + `)`),
		// \b is ASCII-only in RE2 and misfires after Cyrillic letters,
		// hence the explicit anchors on keyword patterns.
		methodEndRe: regexp.MustCompile(`(?i)^\s*(?:конецпроцедуры|конецфункции|endprocedure|endfunction)\s*;?\s*$`),
		regionRe:    regexp.MustCompile(`(?i)^\s*#(?:область|region)\s+(` + ident + `)`),
		regionEndRe: regexp.MustCompile(`(?i)^\s*#(?:конецобласти|endregion)\s*$`),
		varRe:       regexp.MustCompile(`(?i)^\s*(?:перем|var)\s+(` + ident + `)`),
		exportRe:    regexp.MustCompile(`(?i)(?:^|\s)(?:экспорт|export)\s*;?\s*$`),
		callRe:      regexp.MustCompile(`(` + ident + `)\s*\.\s*(` + ident + `)\s*\(`),
		localCallRe: regexp.MustCompile(`(?:^|[^\p{L}\p{N}_.])(` + ident + `)\s*\(`),
	}
}

// Parse extracts symbols and qualified call sites from BSL source.
func (p *BSLParser) Parse(uri string, content []byte) (*ParseResult, error) {
	lines := strings.Split(string(content), "\n")

	root := &symbols.Symbol{
		Kind:  symbols.KindModule,
		Range: text.NewRange(0, 0, len(lines)-1, utf8.RuneCountInString(lines[len(lines)-1])),
	}

	result := &ParseResult{Root: root}

	// Region nesting; methods and variables attach to the innermost open
	// region, or to the module itself.
	regionStack := []*symbols.Symbol{}
	var currentMethod *symbols.Symbol

	attach := func(sym *symbols.Symbol) {
		if len(regionStack) > 0 {
			top := regionStack[len(regionStack)-1]
			top.Children = append(top.Children, sym)
		} else {
			root.Children = append(root.Children, sym)
		}
	}

	for lineNum, rawLine := range lines {
		line := maskLine(rawLine)

		if m := p.regionRe.FindStringSubmatchIndex(line); m != nil {
			region := &symbols.Symbol{
				Name:           line[m[2]:m[3]],
				Kind:           symbols.KindRegion,
				Range:          text.NewRange(lineNum, 0, lineNum, runeLen(line)),
				SelectionRange: tokenRange(line, lineNum, m[2], m[3]),
			}
			attach(region)
			regionStack = append(regionStack, region)
			continue
		}

		if p.regionEndRe.MatchString(line) {
			if len(regionStack) > 0 {
				top := regionStack[len(regionStack)-1]
				top.Range.End = text.Position{Line: lineNum, Character: runeLen(line)}
				regionStack = regionStack[:len(regionStack)-1]
			}
			continue
		}

		if m := p.methodRe.FindStringSubmatchIndex(line); m != nil {
			if currentMethod == nil {
				currentMethod = &symbols.Symbol{
					Name:           line[m[2]:m[3]],
					Kind:           symbols.KindMethod,
					Range:          text.NewRange(lineNum, 0, lineNum, runeLen(line)),
					SelectionRange: tokenRange(line, lineNum, m[2], m[3]),
					Exported:       p.exportRe.MatchString(strings.TrimRight(line, " \t\r")),
				}
			}
			continue
		}

		if p.methodEndRe.MatchString(line) && currentMethod != nil {
			currentMethod.Range.End = text.Position{Line: lineNum, Character: runeLen(line)}
			attach(currentMethod)
			currentMethod = nil
			continue
		}

		if m := p.varRe.FindStringSubmatchIndex(line); m != nil && currentMethod == nil {
			attach(&symbols.Symbol{
				Name:           line[m[2]:m[3]],
				Kind:           symbols.KindVariable,
				Range:          text.NewRange(lineNum, 0, lineNum, runeLen(line)),
				SelectionRange: tokenRange(line, lineNum, m[2], m[3]),
				Exported:       p.exportRe.MatchString(strings.TrimRight(line, " \t\r;")),
			})
			continue
		}

		result.Calls = append(result.Calls, p.scanCalls(line, lineNum)...)
	}

	// Unterminated declarations are closed at end of file.
	if currentMethod != nil {
		currentMethod.Range.End = root.Range.End
		attach(currentMethod)
	}
	for len(regionStack) > 0 {
		top := regionStack[len(regionStack)-1]
		top.Range.End = root.Range.End
		regionStack = regionStack[:len(regionStack)-1]
	}

	return result, nil
}

// scanCalls finds every call occurrence on a masked line: qualified
// Module.Method( calls and unqualified local calls.
func (p *BSLParser) scanCalls(line string, lineNum int) []CallSite {
	var calls []CallSite
	for _, m := range p.callRe.FindAllStringSubmatchIndex(line, -1) {
		// Skip chained access: in A.B.C() the call target is ambiguous
		// without type information, and B is not a module qualifier.
		if m[0] > 0 && line[m[0]-1] == '.' {
			continue
		}

		qualifier := line[m[2]:m[3]]
		module := qualifier
		if _, ok := selfQualifiers[strings.ToLower(qualifier)]; ok {
			// ThisObject.Method() is a call into the current module.
			module = ""
		}

		calls = append(calls, CallSite{
			Module: module,
			Method: line[m[4]:m[5]],
			Range:  tokenRange(line, lineNum, m[4], m[5]),
		})
	}

	// Unqualified calls target the current module. Keywords and platform
	// builtins match too; their names never resolve to a declared method,
	// so they drop out at query time.
	for _, m := range p.localCallRe.FindAllStringSubmatchIndex(line, -1) {
		if precededByDot(line, m[2]) {
			continue
		}
		calls = append(calls, CallSite{
			Method: line[m[2]:m[3]],
			Range:  tokenRange(line, lineNum, m[2], m[3]),
		})
	}
	return calls
}

// precededByDot reports whether the nearest non-space character before the
// byte offset is a dot, which marks a qualified or chained member access.
func precededByDot(line string, offset int) bool {
	for n := offset - 1; n >= 0; n-- {
		switch line[n] {
		case ' ', '\t':
			continue
		case '.':
			return true
		default:
			return false
		}
	}
	return false
}

// maskLine blanks out string literal contents and comments, preserving the
// column of every remaining character so token ranges stay exact.
func maskLine(line string) string {
	runes := []rune(line)

	// A leading | is a multi-line string continuation.
	trimmed := strings.TrimLeft(line, " \t")
	if strings.HasPrefix(trimmed, "|") {
		return strings.Repeat(" ", len(runes))
	}

	masked := make([]rune, len(runes))
	inString := false
	for n := 0; n < len(runes); n++ {
		r := runes[n]
		switch {
		case r == '"':
			inString = !inString
			masked[n] = '"'
		case inString:
			masked[n] = ' '
		case r == '/' && n+1 < len(runes) && runes[n+1] == '/':
			for ; n < len(runes); n++ {
				masked[n] = ' '
			}
		default:
			masked[n] = r
		}
	}
	return string(masked)
}

// tokenRange converts byte offsets inside a line into a rune-addressed range.
func tokenRange(line string, lineNum, startByte, endByte int) text.Range {
	start := utf8.RuneCountInString(line[:startByte])
	end := start + utf8.RuneCountInString(line[startByte:endByte])
	return text.NewRange(lineNum, start, lineNum, end)
}

func runeLen(line string) int {
	return utf8.RuneCountInString(strings.TrimRight(line, "\r"))
}
