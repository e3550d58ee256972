package utils

import (
	"strings"
	"time"

	"github.com/openbrewed/barback/pkg/models"
)

const (
	DateLayoutFormat = "2006-01-02 15:04:05"

	// maxBarWidth caps the menu board parts bar so oversized recipes do
	// not break the layout.
	maxBarWidth = 12
)

func FormatDate(t time.Time) string {
	return t.Format(DateLayoutFormat)
}

// TotalParts sums the parts of a drink's public recipe.
func TotalParts(recipe []models.IngredientSummary) int {
	total := 0
	for _, ingredient := range recipe {
		total += ingredient.Parts
	}
	return total
}

// PartsBar renders the proportion bar shown next to each ingredient on
// the menu board.
func PartsBar(parts int) string {
	if parts < 0 {
		parts = 0
	}
	if parts > maxBarWidth {
		parts = maxBarWidth
	}
	return strings.Repeat("|", parts)
}
