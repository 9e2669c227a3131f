package ledger

// DefaultCategory is assigned when no token of the note resolves to a category.
const DefaultCategory = "прочее"

// defaultAliases is the built-in category table. Order matters: when an alias
// occurs under two categories, the later entry wins, and persisted categories
// override built-ins afterwards.
var defaultAliases = []struct {
	Name    string
	Aliases []string
}{
	{"alcohol", []string{
		"алкоголь", "алко", "пиво", "вино", "джин", "ром", "текила", "водка", "коньяк", "бар",
	}},
	{"food", []string{
		"еда", "ресторан", "рестик", "суши", "бургер", "кофе", "кафе", "пицца", "доставка",
	}},
	{"smoking", []string{
		"курилки", "сигареты", "сигара", "вейп", "iqos", "табак",
	}},
	{"fun", []string{
		"развлечения", "кино", "концерт", "бар", "игры", "клуб",
	}},
	{"tech", []string{
		"техника", "гаджеты", "электроника", "кабели", "наушники",
	}},
	{"clothes", []string{
		"одежда", "куртка", "кроссовки", "кеды", "штаны", "футболка",
	}},
	{"transport", []string{
		"такси", "бензин", "топливо", "метро", "транспорт",
	}},
	{DefaultCategory, []string{
		"прочее", "другое", "без категории",
	}},
}

// DefaultCategoryNames returns the built-in category names in table order.
func DefaultCategoryNames() []string {
	names := make([]string, len(defaultAliases))
	for i, c := range defaultAliases {
		names[i] = c.Name
	}
	return names
}
