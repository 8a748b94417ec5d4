package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nmhoang/libshelf/internal/catalog"
)

// BooksController exposes catalog browsing and search. These routes
// need no session: the catalog is public.
type BooksController struct {
	catalog *catalog.Client
}

func NewBooksController(catalog *catalog.Client) *BooksController {
	return &BooksController{catalog: catalog}
}

// BrowseSubject lists catalog works under a subject.
// GET /api/books?subject=&page=
func (bc *BooksController) BrowseSubject(c *gin.Context) {
	subject := c.DefaultQuery("subject", "fiction")

	page, pagination, err := bc.catalog.BrowseSubject(c.Request.Context(), subject, parseQueryPage(c))
	if err != nil {
		respondInternalError(c, err, "browse subject")
		return
	}
	c.JSON(http.StatusOK, PaginatedResponse{
		Data:       page,
		Page:       pagination.Page,
		Size:       pagination.Size,
		Total:      pagination.TotalItems,
		TotalPages: pagination.TotalPages,
	})
}

// Search runs a catalog search.
// GET /api/books/search?q=&page=
func (bc *BooksController) Search(c *gin.Context) {
	q := c.Query("q")
	if q == "" {
		respondBadRequest(c, "q is required")
		return
	}

	results, pagination, err := bc.catalog.Search(c.Request.Context(), q, parseQueryPage(c))
	if err != nil {
		respondInternalError(c, err, "search")
		return
	}
	c.JSON(http.StatusOK, PaginatedResponse{
		Data:       results,
		Page:       pagination.Page,
		Size:       pagination.Size,
		Total:      pagination.TotalItems,
		TotalPages: pagination.TotalPages,
	})
}

// GetWork fetches one catalog work.
// GET /api/books/:key
func (bc *BooksController) GetWork(c *gin.Context) {
	book, err := bc.catalog.GetWork(c.Request.Context(), c.Param("key"))
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "book not found"})
			return
		}
		respondInternalError(c, err, "get work")
		return
	}
	c.JSON(http.StatusOK, book)
}
