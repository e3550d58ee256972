package models

import (
	"bytes"
	"encoding/json"
)

// Ingredient is one component of a drink recipe. Parts is the relative
// share of the ingredient within the drink.
type Ingredient struct {
	Color string `json:"color"`
	Name  string `json:"name"`
	Parts int    `json:"parts"`
}

// IngredientSummary is the public projection of an Ingredient. The name
// stays hidden so a recipe cannot be reproduced from the public menu.
type IngredientSummary struct {
	Color string `json:"color"`
	Parts int    `json:"parts"`
}

type Drink struct {
	ID    uint64 `json:"id" gorm:"primaryKey"`
	Title string `json:"title" gorm:"size:80;uniqueIndex"`
	// Recipe holds the JSON-encoded ingredient list exactly as stored in
	// the recipe column; use Ingredients/SetIngredients instead of
	// touching it directly.
	Recipe string `json:"-" gorm:"column:recipe;size:180"`
}

type DrinkSummary struct {
	ID     uint64              `json:"id"`
	Title  string              `json:"title"`
	Recipe []IngredientSummary `json:"recipe"`
}

type DrinkDetail struct {
	ID     uint64       `json:"id"`
	Title  string       `json:"title"`
	Recipe []Ingredient `json:"recipe"`
}

// NormalizeRecipe parses a recipe payload. A single ingredient object is
// accepted and wrapped into a one-element list; older clients sent
// recipes that way.
func NormalizeRecipe(raw json.RawMessage) ([]Ingredient, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil, nil
	}
	if trimmed[0] == '{' {
		var single Ingredient
		if err := json.Unmarshal(trimmed, &single); err != nil {
			return nil, err
		}
		return []Ingredient{single}, nil
	}
	var ingredients []Ingredient
	if err := json.Unmarshal(trimmed, &ingredients); err != nil {
		return nil, err
	}
	return ingredients, nil
}

// Ingredients decodes the stored recipe column.
func (d *Drink) Ingredients() ([]Ingredient, error) {
	return NormalizeRecipe(json.RawMessage(d.Recipe))
}

// SetIngredients encodes ingredients into the stored recipe column.
func (d *Drink) SetIngredients(ingredients []Ingredient) error {
	encoded, err := json.Marshal(ingredients)
	if err != nil {
		return err
	}
	d.Recipe = string(encoded)
	return nil
}

// Short returns the public menu representation of the drink.
func (d *Drink) Short() (DrinkSummary, error) {
	ingredients, err := d.Ingredients()
	if err != nil {
		return DrinkSummary{}, err
	}
	summary := make([]IngredientSummary, 0, len(ingredients))
	for _, ingredient := range ingredients {
		summary = append(summary, IngredientSummary{Color: ingredient.Color, Parts: ingredient.Parts})
	}
	return DrinkSummary{ID: d.ID, Title: d.Title, Recipe: summary}, nil
}

// Long returns the full representation including ingredient names.
func (d *Drink) Long() (DrinkDetail, error) {
	ingredients, err := d.Ingredients()
	if err != nil {
		return DrinkDetail{}, err
	}
	return DrinkDetail{ID: d.ID, Title: d.Title, Recipe: ingredients}, nil
}
