package pokemon

import (
	"net/http"

	"github.com/SlpAus/pvp-rankings-backend/internal/apperr"
	"github.com/SlpAus/pvp-rankings-backend/internal/move"
	"github.com/gin-gonic/gin"
)

// --- API Response Models ---

type ProfileResponse struct {
	*Profile
	Shadow       bool              `json:"shadow"`
	FastMoveInfo []FastMoveInfo    `json:"fastMoveInfo"`
	ChargedInfo  []ChargedMoveInfo `json:"chargedMoveInfo"`
}

type CycleResponse struct {
	SpeciesID string          `json:"speciesId"`
	Fast      FastMoveInfo    `json:"fast"`
	Charged   ChargedMoveInfo `json:"charged"`
	Cycle     move.Cycle      `json:"cycle"`
}

// Handler serves species profiles and per-species move bundles.
type Handler struct {
	data Source
}

func NewHandler(data Source) *Handler {
	return &Handler{data: data}
}

func respondError(c *gin.Context, err error) {
	c.JSON(apperr.HTTPStatus(err), gin.H{"error": err.Error()})
}

// --- Handlers ---

// GetPokemon returns a profile with display bundles for every learnable move.
func (h *Handler) GetPokemon(c *gin.Context) {
	ds := h.data()
	p, err := ds.Store.Get(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	resp := ProfileResponse{
		Profile:      p,
		Shadow:       p.IsShadow(),
		FastMoveInfo: make([]FastMoveInfo, 0, len(p.FastMoves)),
		ChargedInfo:  make([]ChargedMoveInfo, 0, len(p.ChargedMoves)),
	}
	for _, id := range p.FastMoves {
		m, err := ds.Catalog.Fast(id)
		if err != nil {
			respondError(c, err)
			return
		}
		info, err := FastInfo(ds.Catalog, p, m)
		if err != nil {
			respondError(c, err)
			return
		}
		resp.FastMoveInfo = append(resp.FastMoveInfo, info)
	}
	for _, id := range p.ChargedMoves {
		m, err := ds.Catalog.Charged(id)
		if err != nil {
			respondError(c, err)
			return
		}
		info, err := ChargedInfo(ds.Catalog, p, m)
		if err != nil {
			respondError(c, err)
			return
		}
		resp.ChargedInfo = append(resp.ChargedInfo, info)
	}
	c.JSON(http.StatusOK, resp)
}

// GetCycle returns the cycle bundle for ?pokemon=&fast=&charged=.
func (h *Handler) GetCycle(c *gin.Context) {
	speciesID, fastID, chargedID := c.Query("pokemon"), c.Query("fast"), c.Query("charged")
	if speciesID == "" || fastID == "" || chargedID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "pokemon, fast and charged must all be provided"})
		return
	}

	ds := h.data()
	p, err := ds.Store.Get(speciesID)
	if err != nil {
		respondError(c, err)
		return
	}
	fast, err := ds.Catalog.Fast(fastID)
	if err != nil {
		respondError(c, err)
		return
	}
	charged, err := ds.Catalog.Charged(chargedID)
	if err != nil {
		respondError(c, err)
		return
	}
	cycle, err := CycleInfo(p, fast, charged)
	if err != nil {
		respondError(c, err)
		return
	}
	fastInfo, err := FastInfo(ds.Catalog, p, fast)
	if err != nil {
		respondError(c, err)
		return
	}
	chargedInfo, err := ChargedInfo(ds.Catalog, p, charged)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, CycleResponse{
		SpeciesID: p.SpeciesID,
		Fast:      fastInfo,
		Charged:   chargedInfo,
		Cycle:     cycle,
	})
}
