package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/ifcet/aula/core/library"
)

type libraryApi struct {
	catalog *library.Catalog
}

func registerLibraryAPI(g *echo.Group, catalog *library.Catalog) {
	api := libraryApi{catalog: catalog}

	lg := g.Group("/library")
	lg.GET("", api.query)
	lg.GET("/categories", api.categories)
}

// query filters the books by `q` and `categoria`.
func (api *libraryApi) query(ctx echo.Context) error {
	books := api.catalog.Filter(ctx.QueryParam("q"), ctx.QueryParam("categoria"))
	return ctx.JSON(http.StatusOK, LibraryResponse{
		Books:      books,
		Categories: api.catalog.Categories(),
		Total:      len(books),
	})
}

func (api *libraryApi) categories(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, api.catalog.Categories())
}
