// Package router contains routing and server setup for the HTTP delivery.
package router

import (
	"greencycle/internal/delivery/api/router/handler"

	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

type RouterParams struct {
	fx.In

	CollectionHandler *handler.CollectionHandler
	RatingHandler     *handler.RatingHandler
	CatalogHandler    *handler.CatalogHandler
	AccountHandler    *handler.AccountHandler
}

// router holds all the handlers that need to be registered.
type router struct {
	collectionHandler *handler.CollectionHandler
	ratingHandler     *handler.RatingHandler
	catalogHandler    *handler.CatalogHandler
	accountHandler    *handler.AccountHandler
}

// NewRouter is the constructor for the Router.
// Fx will inject the required handlers here.
func NewRouter(params RouterParams) *router {
	return &router{
		collectionHandler: params.CollectionHandler,
		ratingHandler:     params.RatingHandler,
		catalogHandler:    params.CatalogHandler,
		accountHandler:    params.AccountHandler,
	}
}

// RegisterRoutes sets up all the API routes for the application.
func (r *router) RegisterRoutes(e *echo.Echo) {
	// Health check endpoint
	e.GET("/health", handler.HealthCheck)

	// Collection lifecycle
	collectionsGroup := e.Group("/collections")
	{
		collectionsGroup.POST("", r.collectionHandler.CreateCollection)
		collectionsGroup.GET("/:id", r.collectionHandler.GetCollection)
		collectionsGroup.POST("/:id/accept", r.collectionHandler.Accept)
		collectionsGroup.POST("/:id/mark-collected", r.collectionHandler.MarkCollected)
		collectionsGroup.POST("/:id/cancel", r.collectionHandler.Cancel)
		collectionsGroup.POST("/:id/finalize", r.collectionHandler.Finalize)
		collectionsGroup.GET("/pending-for-partner/:partner_id", r.collectionHandler.ListPendingForPartner)

		// Pickup confirmation by QR code
		collectionsGroup.GET("/:id/pickup-qr", r.collectionHandler.GeneratePickupQR)
		collectionsGroup.POST("/scan-pickup", r.collectionHandler.ScanPickup)

		// Photos
		collectionsGroup.POST("/:id/images", r.collectionHandler.AddImage)
		collectionsGroup.DELETE("/:id/images/:image_id", r.collectionHandler.DeleteImage)
	}

	ratingsGroup := e.Group("/ratings")
	{
		ratingsGroup.POST("/rate-partner", r.ratingHandler.RatePartner)
		ratingsGroup.POST("/rate-client", r.ratingHandler.RateClient)
		ratingsGroup.GET("/collection/:id", r.ratingHandler.GetByCollection)
		ratingsGroup.GET("/statistics/client/:id", r.ratingHandler.ClientStatistics)
		ratingsGroup.GET("/statistics/partner/:id", r.ratingHandler.PartnerStatistics)
	}

	// Reference data
	materialsGroup := e.Group("/materials")
	{
		materialsGroup.POST("", r.catalogHandler.CreateMaterial)
		materialsGroup.GET("", r.catalogHandler.ListMaterials)
		materialsGroup.GET("/:id", r.catalogHandler.GetMaterial)
	}

	addressesGroup := e.Group("/addresses")
	{
		addressesGroup.POST("", r.catalogHandler.CreateAddress)
		addressesGroup.GET("/:id", r.catalogHandler.GetAddress)
		addressesGroup.PUT("/:id", r.catalogHandler.UpdateAddress)
	}

	// Accounts
	clientsGroup := e.Group("/clients")
	{
		clientsGroup.POST("", r.accountHandler.RegisterClient)
		clientsGroup.GET("/:id", r.accountHandler.GetClient)
	}

	partnersGroup := e.Group("/partners")
	{
		partnersGroup.POST("", r.accountHandler.RegisterPartner)
		partnersGroup.GET("/:id", r.accountHandler.GetPartner)
		partnersGroup.PUT("/:id/materials", r.accountHandler.UpdatePartnerMaterials)
	}
}
