package datamigrations

import (
	"gorm.io/gorm"

	"github.com/openbrewed/barback/pkg/models"
	"github.com/openbrewed/barback/pkg/utils"
)

// BackfillRecipeArrays rewrites rows whose recipe column still holds a
// bare ingredient object. Old clients stored single-ingredient drinks
// that way; the API always serves arrays.
func BackfillRecipeArrays(db *gorm.DB) {

	var legacyCount int64
	db.Model(&models.Drink{}).Where("recipe LIKE '{%'").Count(&legacyCount)
	if legacyCount == 0 {
		utils.GetLogger().Info("[MIGRATE]: no legacy recipe rows, skipping backfill")
		return
	}

	const batchSize = 100
	var lastID uint64

	utils.GetLogger().Info("[MIGRATE]: rewriting legacy recipe rows")
	for {
		var drinks []models.Drink

		err := db.Where("recipe LIKE '{%' AND id > ?", lastID).
			Order("id").
			Limit(batchSize).
			Find(&drinks).Error
		if err != nil {
			utils.GetLogger().Error("[MIGRATE]: legacy recipe lookup failed", err)
			return
		}

		if len(drinks) == 0 {
			break
		}

		for i := range drinks {
			lastID = drinks[i].ID

			ingredients, err := drinks[i].Ingredients()
			if err != nil {
				utils.GetLogger().Warn("[MIGRATE]: skipping undecodable recipe on drink " + drinks[i].Title)
				continue
			}
			if err := drinks[i].SetIngredients(ingredients); err != nil {
				utils.GetLogger().Warn("[MIGRATE]: skipping unencodable recipe on drink " + drinks[i].Title)
				continue
			}

			if err := db.Model(&models.Drink{}).
				Where("id = ?", drinks[i].ID).
				Update("recipe", drinks[i].Recipe).Error; err != nil {
				utils.GetLogger().Error("[MIGRATE]: rewriting recipe failed", err)
			}
		}
	}

	utils.GetLogger().Info("[MIGRATE]: legacy recipe rewrite complete")
}
