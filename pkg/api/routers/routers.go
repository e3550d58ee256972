package routers

import (
	"github.com/openbrewed/barback/config"
	"github.com/openbrewed/barback/pkg/api/handlers"
	"github.com/openbrewed/barback/pkg/api/middleware"
	"github.com/openbrewed/barback/pkg/auth"
	"github.com/openbrewed/barback/pkg/db"

	"github.com/gin-gonic/gin"
)

// Permissions the token issuer must grant for the gated routes.
const (
	PermGetDrinksDetail = "get:drinks-detail"
	PermPostDrinks      = "post:drinks"
	PermPatchDrinks     = "patch:drinks"
	PermDeleteDrinks    = "delete:drinks"
)

func RegisterRouters(router *gin.Engine) {
	drinkHandler := handlers.NewDrinkHandler(db.GetDb())
	menuHandler := handlers.NewMenuHandler(db.GetDb())

	authConfig := config.GetAuth()

	var authorizer *auth.Authorizer
	if authConfig.Enabled {
		authorizer = auth.NewAuthorizer(auth.Config{
			JwksUrl:           authConfig.JwksUrl,
			Issuer:            authConfig.Issuer,
			Audience:          authConfig.Audience,
			AllowedAlgorithms: authConfig.AllowedAlgorithms,
			PermissionsClaim:  authConfig.PermissionsClaim,
			ClockSkew:         authConfig.ClockSkew,
			Fetcher:           &auth.DefaultKeyFetcher{Timeout: authConfig.FetchTimeout},
		})
	}

	guard := func(permission string) gin.HandlerFunc {
		if authorizer == nil {
			return func(c *gin.Context) { c.Next() }
		}
		return auth.Middleware(authorizer, permission)
	}

	router.Use(middleware.RequestLogger())

	drinks := router.Group("/drinks")
	{
		drinks.GET("", drinkHandler.GetDrinks)
		drinks.POST("", guard(PermPostDrinks), drinkHandler.CreateDrink)
		drinks.PATCH("/:id", guard(PermPatchDrinks), drinkHandler.UpdateDrink)
		drinks.DELETE("/:id", guard(PermDeleteDrinks), drinkHandler.DeleteDrink)
	}

	router.GET("/drinks-detail", guard(PermGetDrinksDetail), drinkHandler.GetDrinksDetail)
	router.GET("/drinks-summary", guard(PermGetDrinksDetail), menuHandler.GetDrinksSummary)

	menu := router.Group("/menu")
	{
		menu.GET("", menuHandler.GetMenu)
	}

	router.GET("/ping", drinkHandler.Ping)
}
