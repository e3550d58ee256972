package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/openbrewed/barback/pkg/models"
	"github.com/openbrewed/barback/pkg/utils"
)

// DrinkHandler serves the drink catalog endpoints.
type DrinkHandler struct {
	db *gorm.DB
}

func NewDrinkHandler(db *gorm.DB) *DrinkHandler {
	return &DrinkHandler{db: db}
}

// drinkRequest is the create/update payload. Recipe stays raw until
// models.NormalizeRecipe has shaped it; Title is a pointer so updates
// can tell an absent field from an empty one.
type drinkRequest struct {
	Title  *string         `json:"title"`
	Recipe json.RawMessage `json:"recipe"`
}

func errorResponse(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{
		"success": false,
		"error":   status,
		"message": message,
	})
}

// Ping reports service liveness.
func (h *DrinkHandler) Ping(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "Barback is running!"})
}

// GetDrinks returns every drink in its summary form. The route is
// public; ingredient names never appear in the payload.
func (h *DrinkHandler) GetDrinks(c *gin.Context) {
	var drinks []models.Drink
	if result := h.db.Order("id").Find(&drinks); result.Error != nil {
		utils.GetLogger().Error("[DRINKS]: listing drinks failed", result.Error)
		errorResponse(c, http.StatusInternalServerError, "internal server error")
		return
	}

	summaries := make([]models.DrinkSummary, 0, len(drinks))
	for i := range drinks {
		summary, err := drinks[i].Short()
		if err != nil {
			utils.GetLogger().Error("[DRINKS]: stored recipe is not decodable", err)
			errorResponse(c, http.StatusInternalServerError, "internal server error")
			return
		}
		summaries = append(summaries, summary)
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "drinks": summaries})
}

// GetDrinksDetail returns every drink with full recipes.
func (h *DrinkHandler) GetDrinksDetail(c *gin.Context) {
	var drinks []models.Drink
	if result := h.db.Order("id").Find(&drinks); result.Error != nil {
		utils.GetLogger().Error("[DRINKS]: listing drinks failed", result.Error)
		errorResponse(c, http.StatusInternalServerError, "internal server error")
		return
	}

	details := make([]models.DrinkDetail, 0, len(drinks))
	for i := range drinks {
		detail, err := drinks[i].Long()
		if err != nil {
			utils.GetLogger().Error("[DRINKS]: stored recipe is not decodable", err)
			errorResponse(c, http.StatusInternalServerError, "internal server error")
			return
		}
		details = append(details, detail)
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "drinks": details})
}

// CreateDrink inserts a new drink. The recipe may arrive as an array or
// a single ingredient object.
func (h *DrinkHandler) CreateDrink(c *gin.Context) {
	var request drinkRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		errorResponse(c, http.StatusBadRequest, "bad request")
		return
	}
	if request.Title == nil || *request.Title == "" || len(request.Recipe) == 0 {
		errorResponse(c, http.StatusUnprocessableEntity, "unprocessable")
		return
	}

	ingredients, err := models.NormalizeRecipe(request.Recipe)
	if err != nil || len(ingredients) == 0 {
		errorResponse(c, http.StatusUnprocessableEntity, "unprocessable")
		return
	}

	drink := models.Drink{Title: *request.Title}
	if err := drink.SetIngredients(ingredients); err != nil {
		errorResponse(c, http.StatusUnprocessableEntity, "unprocessable")
		return
	}

	if result := h.db.Create(&drink); result.Error != nil {
		errorResponse(c, http.StatusBadRequest, "bad request")
		return
	}

	detail, err := drink.Long()
	if err != nil {
		errorResponse(c, http.StatusInternalServerError, "internal server error")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "drinks": []models.DrinkDetail{detail}})
}

// UpdateDrink applies title and recipe changes to an existing drink.
// Fields absent from the body are left alone.
func (h *DrinkHandler) UpdateDrink(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		errorResponse(c, http.StatusNotFound, "resource not found")
		return
	}

	var drink models.Drink
	if result := h.db.First(&drink, id); result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			errorResponse(c, http.StatusNotFound, "resource not found")
			return
		}
		utils.GetLogger().Error("[DRINKS]: loading drink failed", result.Error)
		errorResponse(c, http.StatusInternalServerError, "internal server error")
		return
	}

	var request drinkRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		errorResponse(c, http.StatusBadRequest, "bad request")
		return
	}
	if request.Title != nil {
		if *request.Title == "" {
			errorResponse(c, http.StatusUnprocessableEntity, "unprocessable")
			return
		}
		drink.Title = *request.Title
	}
	if len(request.Recipe) > 0 {
		ingredients, err := models.NormalizeRecipe(request.Recipe)
		if err != nil || len(ingredients) == 0 {
			errorResponse(c, http.StatusUnprocessableEntity, "unprocessable")
			return
		}
		if err := drink.SetIngredients(ingredients); err != nil {
			errorResponse(c, http.StatusUnprocessableEntity, "unprocessable")
			return
		}
	}

	if result := h.db.Save(&drink); result.Error != nil {
		errorResponse(c, http.StatusBadRequest, "bad request")
		return
	}

	detail, err := drink.Long()
	if err != nil {
		errorResponse(c, http.StatusInternalServerError, "internal server error")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "drinks": []models.DrinkDetail{detail}})
}

// DeleteDrink removes a drink and echoes the deleted id.
func (h *DrinkHandler) DeleteDrink(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		errorResponse(c, http.StatusNotFound, "resource not found")
		return
	}

	var drink models.Drink
	if result := h.db.First(&drink, id); result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			errorResponse(c, http.StatusNotFound, "resource not found")
			return
		}
		utils.GetLogger().Error("[DRINKS]: loading drink failed", result.Error)
		errorResponse(c, http.StatusInternalServerError, "internal server error")
		return
	}

	if result := h.db.Delete(&drink); result.Error != nil {
		utils.GetLogger().Error("[DRINKS]: deleting drink failed", result.Error)
		errorResponse(c, http.StatusInternalServerError, "internal server error")
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "delete": id})
}
