package search

import (
	"net/http"
	"strconv"
	"time"

	"realtor/core/router"
	"realtor/core/types"
)

type SearchController struct {
	Service *SearchService
}

func NewSearchController(service *SearchService) *SearchController {
	return &SearchController{
		Service: service,
	}
}

func (c *SearchController) Routes(router *router.RouterGroup) {
	router.GET("/search", c.Search)
}

// Search godoc
// @Summary Global search across modules
// @Description Search clients and properties with the list matching rules
// @Tags Core/Search
// @Produce json
// @Param q query string true "Search query (minimum 2 characters)" example("ruiz")
// @Param modules query string false "Comma-separated modules to search" example("clients,properties")
// @Param limit query int false "Results per module (default: 10)" example(20)
// @Success 200 {object} search.SearchResponse
// @Failure 400 {object} types.ErrorResponse
// @Failure 500 {object} types.ErrorResponse
// @Router /search [get]
func (c *SearchController) Search(ctx *router.Context) error {
	startTime := time.Now()

	query := ctx.Query("q")
	if query == "" {
		return ctx.JSON(http.StatusBadRequest, types.ErrorResponse{Error: "Search query (q) is required"})
	}
	if len([]rune(query)) < 2 {
		return ctx.JSON(http.StatusBadRequest, types.ErrorResponse{Error: "Search query must be at least 2 characters"})
	}

	limit := DefaultLimit
	if parsed, err := strconv.Atoi(ctx.Query("limit")); err == nil && parsed > 0 {
		limit = parsed
	}

	response, err := c.Service.GlobalSearch(ctx.Request.Context(), query, ctx.Query("modules"), limit)
	if err != nil {
		return ctx.JSON(http.StatusInternalServerError, types.ErrorResponse{Error: "Search failed"})
	}

	response.Duration = time.Since(startTime).String()
	return ctx.JSON(http.StatusOK, response)
}
