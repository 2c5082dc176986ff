package colors

import "strings"

// WebColor is a named platform color with its Russian and English spellings.
type WebColor struct {
	Ru    string
	En    string
	Red   int
	Green int
	Blue  int
}

func (c WebColor) normalized() Color {
	return Color{
		Red:   float64(c.Red) / colorMaxValue,
		Green: float64(c.Green) / colorMaxValue,
		Blue:  float64(c.Blue) / colorMaxValue,
		Alpha: 1.0,
	}
}

// findWebColor returns the first named color with the exact channel values.
func findWebColor(red, green, blue int) (WebColor, bool) {
	for _, color := range webColors {
		if color.Red == red && color.Green == green && color.Blue == blue {
			return color, true
		}
	}
	return WebColor{}, false
}

// webColorsByName indexes the palette by both spellings, case-folded.
var webColorsByName = func() map[string]WebColor {
	byName := make(map[string]WebColor, 2*len(webColors))
	for _, color := range webColors {
		byName[strings.ToLower(color.Ru)] = color
		byName[strings.ToLower(color.En)] = color
	}
	return byName
}()

// The platform web color palette.
var webColors = []WebColor{
	{"Аквамарин", "Aquamarine", 127, 255, 212},
	{"АкварельноСиний", "AliceBlue", 240, 248, 255},
	{"АнтикБелый", "AntiqueWhite", 250, 235, 215},
	{"Бежевый", "Beige", 245, 245, 220},
	{"Белоснежный", "Snow", 255, 250, 250},
	{"Белый", "White", 255, 255, 255},
	{"Бирюзовый", "Turquoise", 64, 224, 208},
	{"БледноБирюзовый", "PaleTurquoise", 175, 238, 238},
	{"БледноЗеленый", "PaleGreen", 152, 251, 152},
	{"БледноЗолотистый", "PaleGoldenrod", 238, 232, 170},
	{"БледноКрасноФиолетовый", "PaleVioletRed", 219, 112, 147},
	{"БледноЛиловый", "Lavender", 230, 230, 250},
	{"БледноМиндальный", "BlanchedAlmond", 255, 235, 205},
	{"БледноСиреневый", "Thistle", 216, 191, 216},
	{"Васильковый", "CornFlowerBlue", 100, 149, 237},
	{"ВесеннеЗеленый", "SpringGreen", 0, 255, 127},
	{"Голубой", "LightBlue", 173, 216, 230},
	{"ГолубойСКраснымОттенком", "LavenderBlush", 255, 240, 245},
	{"ГолубойСоСтальнымОттенком", "LightSteelBlue", 176, 196, 222},
	{"ГрифельноСерый", "SlateGray", 112, 128, 144},
	{"ГрифельноСиний", "SlateBlue", 106, 90, 205},
	{"Древесный", "BurlyWood", 222, 184, 184},
	{"ДымчатоБелый", "WhiteSmoke", 245, 245, 245},
	{"ЖелтоЗеленый", "YellowGreen", 154, 205, 50},
	{"Желтый", "Yellow", 255, 255, 0},
	{"ЗамшаСветлый", "Moccasin", 255, 228, 181},
	{"ЗеленаяЛужайка", "LawnGreen", 124, 252, 0},
	{"ЗеленоватоЖелтый", "Chartreuse", 127, 255, 0},
	{"ЗеленоватоЛимонный", "Lime", 0, 255, 0},
	{"ЗеленоЖелтый", "GreenYellow", 173, 255, 47},
	{"Зеленый", "Green", 0, 255, 0},
	{"ЗеленыйЛес", "ForestGreen", 34, 139, 34},
	{"Золотистый", "Goldenrod", 218, 165, 32},
	{"Золотой", "Gold", 255, 215, 0},
	{"Индиго", "Indigo", 75, 0, 130},
	{"Киноварь", "IndianRed", 205, 92, 92},
	{"Кирпичный", "FireBrick", 178, 34, 34},
	{"КожаноКоричневый", "SaddleBrown", 139, 69, 19},
	{"Коралловый", "Coral", 255, 127, 80},
	{"Коричневый", "Brown", 165, 42, 42},
	{"КоролевскиГолубой", "RoyalBlue", 65, 105, 225},
	{"КрасноФиолетовый", "VioletRed", 208, 32, 144},
	{"Красный", "Red", 255, 0, 0},
	{"Кремовый", "Cream", 255, 251, 240},
	{"Лазурный", "Azure", 240, 255, 255},
	{"ЛимонноЗеленый", "LimeGreen", 50, 205, 50},
	{"Лимонный", "LemonChiffon", 255, 250, 205},
	{"Лосось", "Salmon", 250, 128, 114},
	{"ЛососьСветлый", "LightSalmon", 255, 160, 122},
	{"ЛососьТемный", "DarkSalmon", 233, 150, 122},
	{"Льняной", "Linen", 250, 240, 230},
	{"Малиновый", "Crimson", 220, 20, 60},
	{"МятныйКрем", "MintCream", 245, 255, 250},
	{"НавахоБелый", "NavajoWhite", 255, 222, 173},
	{"НасыщенноНебесноГолубой", "DeepSkyBlue", 0, 191, 255},
	{"НасыщенноРозовый", "DeepPink", 255, 20, 147},
	{"НебесноГолубой", "SkyBlue", 135, 206, 235},
	{"НейтральноАквамариновый", "MediumAquaMarine", 102, 205, 170},
	{"НейтральноБирюзовый", "MediumTurquoise", 72, 209, 204},
	{"НейтральноГрифельноСиний", "MediumSlateBlue", 123, 104, 238},
	{"НейтральноЗеленый", "MediumGreen", 192, 220, 192},
	{"НейтральноКоричневый", "Peru", 205, 133, 63},
	{"НейтральноПурпурный", "MediumPurple", 147, 112, 219},
	{"НейтральноСиний", "MediumBlue", 0, 0, 205},
	{"НейтральноФиолетовоКрасный", "MediumVioletRed", 199, 21, 133},
	{"ОранжевоКрасный", "OrangeRed", 255, 69, 0},
	{"Оранжевый", "Orange", 255, 165, 0},
	{"Орхидея", "Orchid", 218, 112, 214},
	{"ОрхидеяНейтральный", "MediumOrchid", 186, 85, 211},
	{"ОрхидеяТемный", "DarkOrchid", 153, 50, 204},
	{"Охра", "Sienna", 160, 82, 45},
	{"Персиковый", "PeachPuff", 255, 218, 185},
	{"ПесочноКоричневый", "SandyBrown", 244, 164, 96},
	{"ПолночноСиний", "MidnightBlue", 25, 25, 112},
	{"ПризрачноБелый", "GhostWhite", 248, 248, 255},
	{"Пурпурный", "Purple", 160, 32, 240},
	{"Пшеничный", "Wheat", 245, 222, 179},
	{"РозовоКоричневый", "RosyBrown", 188, 143, 143},
	{"Розовый", "Pink", 255, 192, 203},
	{"РыжеватоКоричневый", "Tan", 210, 180, 140},
	{"СветлоГрифельноСерый", "LightSlateGray", 119, 136, 153},
	{"СветлоГрифельноСиний", "LightSlateBlue", 132, 112, 255},
	{"СветлоЖелтый", "LightYellow", 255, 255, 224},
	{"СветлоЗеленый", "LightGreen", 144, 238, 144},
	{"СветлоЗолотистый", "LightGoldenRod", 238, 221, 130},
	{"СветлоКоралловый", "LightCoral", 240, 128, 128},
	{"СветлоКоричневый", "Bisque", 255, 228, 196},
	{"СветлоНебесноГолубой", "LightSkyBlue", 135, 206, 250},
	{"СветлоРозовый", "LightPink", 255, 182, 193},
	{"СветлоСерый", "LightGray", 211, 211, 211},
	{"СеребристоСерый", "Gainsboro", 220, 220, 220},
	{"СероСиний", "CadetBlue", 95, 158, 160},
	{"СинеСерый", "DodgerBlue", 30, 144, 255},
	{"СинеФиолетовый", "BlueViolet", 138, 43, 226},
	{"Синий", "Blue", 0, 0, 255},
	{"СинийСоСтальнымОттенком", "SteelBlue", 70, 130, 180},
	{"СинийСПороховымОттенком", "PowderBlue", 176, 224, 230},
	{"Сливовый", "Plum", 221, 160, 221},
	{"СлоноваяКость", "Ivory", 255, 255, 240},
	{"СтароеКружево", "OldLace", 253, 245, 230},
	{"ТемноБирюзовый", "DarkTurquoise", 0, 206, 209},
	{"ТемноБордовый", "Maroon", 176, 48, 96},
	{"ТемноГрифельноСерый", "DarkSlateGray", 47, 79, 79},
	{"ТемноГрифельноСиний", "DarkSlateBlue", 72, 61, 139},
	{"ТемноЗеленый", "DarkGreen", 0, 100, 0},
	{"ТемноКрасный", "DarkRed", 139, 0, 0},
	{"ТемноОливковоЗеленый", "DarkOliveGreen", 85, 107, 47},
	{"ТемноОранжевый", "DarkOrange", 255, 140, 0},
	{"ТемноСиний", "DarkBlue", 0, 0, 139},
	{"ТемноФиолетовый", "DarkViolet", 148, 0, 211},
	{"ТеплоРозовый", "HotPink", 255, 105, 180},
	{"Томатный", "Tomato", 255, 99, 71},
	{"ТопленоеМолоко", "PapayaWhip", 255, 239, 213},
	{"ТусклоРозовый", "MistyRose", 255, 228, 225},
	{"Фиолетовый", "Violet", 238, 130, 238},
	{"Фуксин", "Magenta", 255, 0, 255},
	{"ФуксинТемный", "DarkMagenta", 139, 0, 139},
	{"ХакиТемный", "DarkKhaki", 189, 183, 107},
	{"ЦветМорскойВолныНейтральный", "MediumSeaGreen", 60, 179, 113},
	{"ЦветМорскойВолныСветлый", "LightSeaGreen", 32, 178, 170},
	{"ЦветМорскойВолныТемный", "DarkSeaGreen", 143, 188, 143},
	{"ЦветокБелый", "FloralWhite", 255, 250, 240},
	{"Циан", "Cyan", 0, 255, 255},
	{"ЦианСветлый", "LightCyan", 224, 255, 255},
	{"ЦианТемный", "DarkCyan", 0, 139, 139},
	{"Черный", "Black", 0, 0, 0},
	{"Шоколадный", "Chocolate", 210, 105, 30},
	{"НейтральноВесеннеЗеленый", "MediumSpringGreen", 0, 250, 154},
	{"НейтральноСерый", "MediumGray", 160, 160, 164},
	{"Оливковый", "Olive", 128, 128, 0},
	{"Перламутровый", "SeaShell", 255, 245, 238},
	{"Роса", "HoneyDew", 240, 255, 240},
	{"СветлоЖелтыйЗолотистый", "LightGoldenRodYellow", 250, 250, 210},
	{"Серебряный", "Silver", 192, 192, 192},
	{"Серый", "Gray", 128, 128, 128},
	{"ТемноЗолотистый", "DarkGoldenRod", 184, 134, 11},
	{"ТемноСерый", "DarkGray", 169, 169, 169},
	{"ТусклоОливковый", "OliveDrab", 107, 142, 35},
	{"ТусклоСерый", "DimGray", 105, 105, 105},
	{"Ультрамарин", "Navy", 0, 0, 128},
	{"Фуксия", "Fuchsia", 255, 0, 255},
	{"Хаки", "Khaki", 240, 230, 140},
	{"ЦветМорскойВолны", "SeaGreen", 46, 139, 87},
	{"ЦианАкварельный", "Aqua", 0, 255, 255},
	{"ЦианНейтральный", "Teal", 0, 128, 128},
	{"ШелковыйОттенок", "CornSilk", 255, 248, 220},
}
