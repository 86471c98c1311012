package move

import (
	"net/http"

	"github.com/SlpAus/pvp-rankings-backend/internal/apperr"
	"github.com/gin-gonic/gin"
)

// --- API Response Models ---

type FastMoveResponse struct {
	*FastMove
	Turns      int     `json:"turns"`
	DPT        float64 `json:"dpt"`
	EPT        float64 `json:"ept"`
	Archetype  string  `json:"archetype"`
	StyleClass string  `json:"styleClass"`
}

type ChargedMoveResponse struct {
	*ChargedMove
	DPE        float64 `json:"dpe"`
	Archetype  string  `json:"archetype"`
	StyleClass string  `json:"styleClass"`
}

type SequenceResponse struct {
	Fast     string   `json:"fast"`
	Charged  string   `json:"charged"`
	Sequence Sequence `json:"moveCountSequence"`
	Label    string   `json:"label"`
}

// Handler serves catalog lookups over HTTP.
type Handler struct {
	catalog CatalogSource
}

func NewHandler(catalog CatalogSource) *Handler {
	return &Handler{catalog: catalog}
}

func respondError(c *gin.Context, err error) {
	c.JSON(apperr.HTTPStatus(err), gin.H{"error": err.Error()})
}

// --- Handlers ---

// GetFastMove returns one fast move with its derived rates and archetype.
func (h *Handler) GetFastMove(c *gin.Context) {
	catalog := h.catalog()
	m, err := catalog.Fast(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	archetype, err := catalog.FastArchetype(m.MoveID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, FastMoveResponse{
		FastMove:   m,
		Turns:      m.Turns(),
		DPT:        m.DPT(),
		EPT:        m.EPT(),
		Archetype:  archetype,
		StyleClass: FastStyleClass(archetype),
	})
}

// GetChargedMove returns one charged move with its DPE and archetype.
func (h *Handler) GetChargedMove(c *gin.Context) {
	catalog := h.catalog()
	m, err := catalog.Charged(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	archetype, err := catalog.ChargedArchetype(m.MoveID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ChargedMoveResponse{
		ChargedMove: m,
		DPE:         m.DPE(),
		Archetype:   archetype,
		StyleClass:  ChargedStyleClass(archetype),
	})
}

// GetSequence returns the move-count sequence for ?fast=&charged=.
func (h *Handler) GetSequence(c *gin.Context) {
	fastID, chargedID := c.Query("fast"), c.Query("charged")
	if fastID == "" || chargedID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "both fast and charged must be provided"})
		return
	}

	seq, err := h.catalog().Sequence(fastID, chargedID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, SequenceResponse{
		Fast:     fastID,
		Charged:  chargedID,
		Sequence: seq,
		Label:    seq.Label(),
	})
}
