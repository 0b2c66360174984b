package enums

import "fmt"

// MenuCategory groups items on the weekly menu.
type MenuCategory string

const (
	MenuCategoryBread    MenuCategory = "bread"
	MenuCategoryPastry   MenuCategory = "pastry"
	MenuCategoryCake     MenuCategory = "cake"
	MenuCategoryCookie   MenuCategory = "cookie"
	MenuCategorySeasonal MenuCategory = "seasonal"
)

var validMenuCategories = []MenuCategory{
	MenuCategoryBread,
	MenuCategoryPastry,
	MenuCategoryCake,
	MenuCategoryCookie,
	MenuCategorySeasonal,
}

func (c MenuCategory) String() string {
	return string(c)
}

// IsValid reports whether the value is a known MenuCategory.
func (c MenuCategory) IsValid() bool {
	for _, candidate := range validMenuCategories {
		if candidate == c {
			return true
		}
	}
	return false
}

// ParseMenuCategory converts raw input into a MenuCategory.
func ParseMenuCategory(value string) (MenuCategory, error) {
	for _, candidate := range validMenuCategories {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid menu category %q", value)
}
