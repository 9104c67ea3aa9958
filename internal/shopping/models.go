package shopping

// Grocery categories the list is organized into.
const (
	CategoryVegetables = "Vegetables"
	CategoryFruit      = "Fruit"
	CategoryDairy      = "Dairy & Alternatives"
	CategoryGrains     = "Grains & Legumes"
	CategoryProteins   = "Proteins"
	CategoryPantry     = "Spices & Pantry"
)

// Categories lists the grocery categories in checklist order.
var Categories = []string{
	CategoryVegetables,
	CategoryFruit,
	CategoryDairy,
	CategoryGrains,
	CategoryProteins,
	CategoryPantry,
}

// Item is one line of the grocery list. Quantity is free text, e.g. "500g".
type Item struct {
	Name     string `json:"name"`
	Quantity string `json:"quantity"`
}

// Category groups the items of one grocery category.
type Category struct {
	Category string `json:"category"`
	Items    []Item `json:"items"`
}

// List is the decoded grocery reply.
type List struct {
	Categories []Category `json:"categories"`
}

// ItemCount is the number of items across all categories.
func ItemCount(categories []Category) int {
	n := 0
	for _, c := range categories {
		n += len(c.Items)
	}
	return n
}
