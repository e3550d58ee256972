package handlers

import (
	"net/http"
	"sort"

	"github.com/gin-gonic/gin"
	"golang.org/x/exp/maps"
	"gorm.io/gorm"

	"github.com/openbrewed/barback/pkg/models"
)

// MenuHandler renders the public menu board and serves the ingredient
// usage summary.
type MenuHandler struct {
	db *gorm.DB
}

func NewMenuHandler(db *gorm.DB) *MenuHandler {
	return &MenuHandler{db: db}
}

// IngredientUsage aggregates how often and how heavily an ingredient
// appears across the catalog.
type IngredientUsage struct {
	Name   string `json:"name"`
	Drinks int    `json:"drinks"`
	Parts  int    `json:"parts"`
}

// GetMenu renders the HTML menu board. Only summary data reaches the
// template, so the page stays public.
func (h *MenuHandler) GetMenu(c *gin.Context) {
	var drinks []models.Drink
	if result := h.db.Order("title").Find(&drinks); result.Error != nil {
		c.String(http.StatusInternalServerError, "internal server error")
		return
	}

	summaries := make([]models.DrinkSummary, 0, len(drinks))
	for i := range drinks {
		summary, err := drinks[i].Short()
		if err != nil {
			c.String(http.StatusInternalServerError, "internal server error")
			return
		}
		summaries = append(summaries, summary)
	}

	c.HTML(http.StatusOK, "menu.html", gin.H{
		"title":  "Drink Menu",
		"drinks": summaries,
	})
}

// GetDrinksSummary aggregates ingredient usage across every recipe. The
// payload names ingredients, so the route sits behind the same
// permission as the detail listing.
func (h *MenuHandler) GetDrinksSummary(c *gin.Context) {
	var drinks []models.Drink
	if result := h.db.Find(&drinks); result.Error != nil {
		errorResponse(c, http.StatusInternalServerError, "internal server error")
		return
	}

	usage := map[string]*IngredientUsage{}
	for i := range drinks {
		ingredients, err := drinks[i].Ingredients()
		if err != nil {
			errorResponse(c, http.StatusInternalServerError, "internal server error")
			return
		}
		for _, ingredient := range ingredients {
			entry, ok := usage[ingredient.Name]
			if !ok {
				entry = &IngredientUsage{Name: ingredient.Name}
				usage[ingredient.Name] = entry
			}
			entry.Drinks++
			entry.Parts += ingredient.Parts
		}
	}

	names := maps.Keys(usage)
	sort.Strings(names)
	ingredients := make([]IngredientUsage, 0, len(names))
	for _, name := range names {
		ingredients = append(ingredients, *usage[name])
	}

	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"drinks":      len(drinks),
		"ingredients": ingredients,
	})
}
