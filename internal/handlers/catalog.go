package handlers

import (
	"net/http"
	"sort"

	"github.com/gin-gonic/gin"
	"photo-enhance-backend/internal/models"
	"photo-enhance-backend/internal/topaz"
)

type CatalogHandler struct{}

func NewCatalogHandler() *CatalogHandler {
	return &CatalogHandler{}
}

// GetCatalog godoc
// @Summary     List processing modes and models
// @Description Returns every (mode, model) combination the service accepts, with generative-family flags.
// @Tags        catalog
// @Produce     json
// @Security    Bearer
// @Success     200 {object} models.CatalogResponse
// @Router      /models [get]
func (h *CatalogHandler) GetCatalog(c *gin.Context) {
	catalog := topaz.Catalog()

	resp := models.CatalogResponse{Modes: make([]models.CatalogMode, 0, len(catalog))}
	for mode, modelNames := range catalog {
		entry := models.CatalogMode{Mode: string(mode)}
		for _, name := range modelNames {
			entry.Models = append(entry.Models, models.CatalogModel{
				Name:       name,
				Generative: topaz.IsGenerative(mode, name),
			})
		}
		resp.Modes = append(resp.Modes, entry)
	}
	sort.Slice(resp.Modes, func(i, j int) bool {
		return resp.Modes[i].Mode < resp.Modes[j].Mode
	})

	c.JSON(http.StatusOK, resp)
}
