package colors

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tolkachev/bsema/internal/modules"
	"github.com/tolkachev/bsema/internal/text"
)

func docWith(source string) *modules.Document {
	return &modules.Document{URI: "form.bsl", Source: source}
}

func TestDocumentColorsConstructor(t *testing.T) {
	t.Parallel()

	source := strings.Join([]string{
		`Цвет = Новый Цвет(255, 0, 0);`,
		`Other = New Color(0, 128, 255);`,
	}, "\n")

	found := DocumentColors(docWith(source))
	require.Len(t, found, 2)

	assert.Equal(t, Color{Red: 1, Green: 0, Blue: 0, Alpha: 1}, found[0].Color)
	assert.Equal(t, text.NewRange(0, 7, 0, 28), found[0].Range)
	assert.InDelta(t, 128.0/255, found[1].Color.Green, 1e-9)
	assert.InDelta(t, 1.0, found[1].Color.Blue, 1e-9)
}

func TestDocumentColorsTypeNameForm(t *testing.T) {
	t.Parallel()

	found := DocumentColors(docWith(`Цвет = Новый("Цвет", 255, 215, 0);`))
	require.Len(t, found, 1)
	assert.InDelta(t, 1.0, found[0].Color.Red, 1e-9)
	assert.InDelta(t, 215.0/255, found[0].Color.Green, 1e-9)
}

func TestDocumentColorsWebConstants(t *testing.T) {
	t.Parallel()

	source := strings.Join([]string{
		`Фон = WebЦвета.Малиновый;`,
		`Border = WebColors.CornFlowerBlue;`,
		`Unknown = WebЦвета.НетТакогоЦвета;`,
	}, "\n")

	found := DocumentColors(docWith(source))
	require.Len(t, found, 2)

	crimson := found[0].Color
	assert.InDelta(t, 220.0/255, crimson.Red, 1e-9)
	assert.InDelta(t, 20.0/255, crimson.Green, 1e-9)
	assert.InDelta(t, 60.0/255, crimson.Blue, 1e-9)

	assert.Equal(t, 1, found[1].Range.Start.Line)
}

func TestDocumentColorsSkipsComments(t *testing.T) {
	t.Parallel()

	found := DocumentColors(docWith(`// Цвет = Новый Цвет(1, 2, 3);`))
	assert.Empty(t, found)
}

func TestDocumentColorsMalformedArgsDefaultToZero(t *testing.T) {
	t.Parallel()

	found := DocumentColors(docWith(`Цвет = Новый Цвет(Красный, 128);`))
	require.Len(t, found, 1)
	assert.Equal(t, 0.0, found[0].Color.Red)
	assert.InDelta(t, 128.0/255, found[0].Color.Green, 1e-9)
	assert.Equal(t, 0.0, found[0].Color.Blue)
}

func TestPresentations(t *testing.T) {
	t.Parallel()

	t.Run("NamedColor", func(t *testing.T) {
		t.Parallel()

		presentations := Presentations(Color{Red: 1, Green: 0, Blue: 0, Alpha: 1})
		require.Len(t, presentations, 2)
		assert.Equal(t, "Новый Цвет(255, 0, 0)", presentations[0].Text)
		assert.Equal(t, "WebЦвета.Красный", presentations[1].Text)
	})

	t.Run("UnnamedColor", func(t *testing.T) {
		t.Parallel()

		presentations := Presentations(Color{Red: 1.0 / 255, Green: 2.0 / 255, Blue: 3.0 / 255, Alpha: 1})
		require.Len(t, presentations, 1)
		assert.Equal(t, "Новый Цвет(1, 2, 3)", presentations[0].Text)
	})
}

func TestWebColorNameLookupIsCaseInsensitive(t *testing.T) {
	t.Parallel()

	found := DocumentColors(docWith(`Фон = webцвета.красный;`))
	require.Len(t, found, 1)
	assert.InDelta(t, 1.0, found[0].Color.Red, 1e-9)
}
