package gurps

// Choice is one entry of an enumerated character field.
type Choice struct {
	Value int    `json:"value"`
	Label string `json:"label"`
}

// AppearanceChoices price a character's looks.
var AppearanceChoices = []Choice{
	{-30, "Horrific"},
	{-25, "Monstrous"},
	{-20, "Hideous"},
	{-10, "Ugly"},
	{-5, "Unattractive"},
	{0, "Average"},
	{5, "Attractive"},
	{15, "Handsome/Beautiful"},
	{25, "Very Handsome/Beautiful"},
	{35, "Entrancing"},
}

// WealthChoices price starting wealth.
var WealthChoices = []Choice{
	{-25, "Dead Broke"},
	{-15, "Poor"},
	{-10, "Struggling"},
	{0, "Average"},
	{10, "Comfortable"},
	{20, "Wealthy"},
	{30, "Very Wealthy"},
	{50, "Filthy Rich"},
}

// MemoryChoices applies to both eidetic and muscle memory.
var MemoryChoices = []Choice{
	{0, "None"},
	{30, "Partial"},
	{60, "Full"},
}

// ChoiceLabel returns the label for v, or "" when v is not a legal choice.
func ChoiceLabel(choices []Choice, v int) string {
	for _, c := range choices {
		if c.Value == v {
			return c.Label
		}
	}
	return ""
}
