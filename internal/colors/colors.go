// Package colors extracts color literals from BSL source.
//
// The platform spells colors two ways: constructor calls like
// "Новый Цвет(255, 0, 0)" and web color constants like "WebЦвета.Красный".
// Both have Russian and English spellings.
package colors

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/tolkachev/bsema/internal/modules"
	"github.com/tolkachev/bsema/internal/text"
)

const colorMaxValue = 255

// Color is an RGBA value with channels normalized to [0, 1].
type Color struct {
	Red   float64 `json:"red"`
	Green float64 `json:"green"`
	Blue  float64 `json:"blue"`
	Alpha float64 `json:"alpha"`
}

// Information is one color literal found in a document.
type Information struct {
	URI   string     `json:"uri"`
	Range text.Range `json:"range"`
	Color Color      `json:"color"`
}

// Presentation is one way to spell a color in source.
type Presentation struct {
	Label string `json:"label"`
	Text  string `json:"text"`
}

var (
	// Новый Цвет(255, 0, 0) / New Color(255, 0, 0)
	constructorRe = regexp.MustCompile(`(?i)(?:новый|new)\s+(?:цвет|color)\s*\(([^()]*)\)`)

	// Новый("Цвет", 255, 0, 0) / New("Color", 255, 0, 0)
	typeNameRe = regexp.MustCompile(`(?i)(?:новый|new)\s*\(\s*"(?:цвет|color)"\s*(?:,([^()]*))?\)`)

	// WebЦвета.Красный / WebColors.Red
	webColorRe = regexp.MustCompile(`(?i)(?:^|[^\p{L}\p{N}_.])((?:webцвета|webcolors)\s*\.\s*([\p{L}][\p{L}\p{N}_]*))`)
)

// DocumentColors scans the document source for color literals.
func DocumentColors(doc *modules.Document) []Information {
	var found []Information
	for lineNum, rawLine := range strings.Split(doc.Source, "\n") {
		line := stripComment(rawLine)

		for _, m := range constructorRe.FindAllStringSubmatchIndex(line, -1) {
			found = append(found, Information{
				URI:   doc.URI,
				Range: byteRange(line, lineNum, m[0], m[1]),
				Color: colorFromArgs(line[m[2]:m[3]]),
			})
		}
		for _, m := range typeNameRe.FindAllStringSubmatchIndex(line, -1) {
			args := ""
			if m[2] >= 0 {
				args = line[m[2]:m[3]]
			}
			found = append(found, Information{
				URI:   doc.URI,
				Range: byteRange(line, lineNum, m[0], m[1]),
				Color: colorFromArgs(args),
			})
		}
		for _, m := range webColorRe.FindAllStringSubmatchIndex(line, -1) {
			color, ok := webColorsByName[strings.ToLower(line[m[4]:m[5]])]
			if !ok {
				continue
			}
			found = append(found, Information{
				URI:   doc.URI,
				Range: byteRange(line, lineNum, m[2], m[3]),
				Color: color.normalized(),
			})
		}
	}
	return found
}

// Presentations returns the source spellings of a color: always the
// constructor form, plus the web constant when the value has a name.
func Presentations(color Color) []Presentation {
	red := int(color.Red * colorMaxValue)
	green := int(color.Green * colorMaxValue)
	blue := int(color.Blue * colorMaxValue)

	presentations := []Presentation{{
		Label: "Через конструктор",
		Text:  fmt.Sprintf("Новый Цвет(%d, %d, %d)", red, green, blue),
	}}

	if webColor, ok := findWebColor(red, green, blue); ok {
		presentations = append(presentations, Presentation{
			Label: "Через WebЦвет",
			Text:  "WebЦвета." + webColor.Ru,
		})
	}
	return presentations
}

// colorFromArgs parses up to three integer channel arguments. Anything
// unparsable counts as zero, matching platform behavior for defaults.
func colorFromArgs(args string) Color {
	channels := [3]float64{}
	for n, arg := range strings.Split(args, ",") {
		if n >= len(channels) {
			break
		}
		value, err := strconv.Atoi(strings.TrimSpace(arg))
		if err != nil {
			continue
		}
		channels[n] = float64(value) / colorMaxValue
	}
	return Color{Red: channels[0], Green: channels[1], Blue: channels[2], Alpha: 1.0}
}

// stripComment cuts a trailing // comment, honoring string literals.
func stripComment(line string) string {
	inString := false
	runes := []rune(line)
	for n := 0; n < len(runes); n++ {
		switch {
		case runes[n] == '"':
			inString = !inString
		case !inString && runes[n] == '/' && n+1 < len(runes) && runes[n+1] == '/':
			return string(runes[:n])
		}
	}
	return line
}

// byteRange converts byte offsets inside a line into a rune-addressed range.
func byteRange(line string, lineNum, startByte, endByte int) text.Range {
	start := utf8.RuneCountInString(line[:startByte])
	end := start + utf8.RuneCountInString(line[startByte:endByte])
	return text.NewRange(lineNum, start, lineNum, end)
}
