package search

// Category is a user-facing filter and the provider codes tried for it, in order
type Category struct {
	Key   string
	Label string
	Codes []string
}

// categories is the static mapping table, in display order
var categories = []Category{
	{Key: "hospital", Label: "Hospitals", Codes: []string{"hospital", "health"}},
	{Key: "farmacia", Label: "Pharmacies", Codes: []string{"pharmacy", "drugstore"}},
	{Key: "upa", Label: "Urgent care (UPA)", Codes: []string{"hospital", "health", "doctor", "emergency_room"}},
	{Key: "prontosocorro", Label: "Emergency rooms", Codes: []string{"hospital", "emergency_room", "health"}},
	{Key: "delegacia", Label: "Police stations", Codes: []string{"police", "local_government_office"}},
}

var categoryIndex = func() map[string]Category {
	m := make(map[string]Category, len(categories))
	for _, c := range categories {
		m[c.Key] = c
	}
	return m
}()

// Categories returns the recognised categories in display order
func Categories() []Category {
	out := make([]Category, len(categories))
	for i, c := range categories {
		out[i] = Category{Key: c.Key, Label: c.Label, Codes: append([]string(nil), c.Codes...)}
	}
	return out
}

// Lookup returns the category registered under key
func Lookup(key string) (Category, bool) {
	c, ok := categoryIndex[key]
	return c, ok
}

// Codes returns the provider codes for key. Unrecognised keys map to
// themselves as the sole code.
func Codes(key string) []string {
	if c, ok := categoryIndex[key]; ok {
		return append([]string(nil), c.Codes...)
	}
	return []string{key}
}
