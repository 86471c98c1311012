package api

import (
	"github.com/SlpAus/pvp-rankings-backend/internal/move"
	"github.com/SlpAus/pvp-rankings-backend/internal/pokemon"
	"github.com/SlpAus/pvp-rankings-backend/internal/ranking"
	"github.com/gin-gonic/gin"
)

// Handlers bundles the per-module HTTP handlers.
type Handlers struct {
	Moves    *move.Handler
	Pokemon  *pokemon.Handler
	Rankings *ranking.Handler
}

// SetupRoutes registers every API route under /api.
func SetupRoutes(router *gin.Engine, h Handlers) {
	api := router.Group("/api")
	{
		api.GET("/formats", h.Rankings.ListFormats)

		rankingRoutes := api.Group("/rankings/:cup/:cp/:category")
		{
			rankingRoutes.GET("", h.Rankings.ListRankings)
			rankingRoutes.GET("/:position", h.Rankings.GetRanking)
		}

		api.GET("/pokemon/:id", h.Pokemon.GetPokemon)

		moveRoutes := api.Group("/moves")
		{
			moveRoutes.GET("/fast/:id", h.Moves.GetFastMove)
			moveRoutes.GET("/charged/:id", h.Moves.GetChargedMove)
			moveRoutes.GET("/sequence", h.Moves.GetSequence)
			moveRoutes.GET("/cycle", h.Pokemon.GetCycle)
		}
	}
}
