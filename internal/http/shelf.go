package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/nmhoang/libshelf/internal/entities"
	"github.com/nmhoang/libshelf/internal/shelf"
)

// ShelfController exposes the reading shelves and folders over the API.
type ShelfController struct {
	service *shelf.Service
}

func NewShelfController(service *shelf.Service) *ShelfController {
	return &ShelfController{service: service}
}

// AddToShelf puts a book on a status shelf.
// POST /api/shelf/:bookId?status=
func (sc *ShelfController) AddToShelf(c *gin.Context) {
	if err := sc.service.AddToShelf(c.Request.Context(), c.Param("bookId"), c.Query("status")); err != nil {
		respondServiceError(c, err, "add to shelf")
		return
	}
	respondSuccess(c, "book shelved")
}

// RemoveFromShelf takes a book off its status shelf.
// DELETE /api/shelf/:bookId
func (sc *ShelfController) RemoveFromShelf(c *gin.Context) {
	if err := sc.service.RemoveFromShelf(c.Request.Context(), c.Param("bookId")); err != nil {
		respondServiceError(c, err, "remove from shelf")
		return
	}
	respondSuccess(c, "book removed")
}

// ChangeStatus moves a book between status shelves.
// PUT /api/shelf/:bookId?from=&to=
func (sc *ShelfController) ChangeStatus(c *gin.Context) {
	from, err := entities.ParseStatus(c.Query("from"))
	if err != nil {
		respondBadRequest(c, err.Error())
		return
	}
	to, err := entities.ParseStatus(c.Query("to"))
	if err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	if err := sc.service.ChangeStatus(c.Request.Context(), c.Param("bookId"), from, to); err != nil {
		respondServiceError(c, err, "change status")
		return
	}
	respondSuccess(c, "status changed")
}

// Rate stores a star rating for a book.
// POST /api/shelf/:bookId/rating?stars=
func (sc *ShelfController) Rate(c *gin.Context) {
	stars, err := strconv.Atoi(c.Query("stars"))
	if err != nil {
		respondBadRequest(c, "stars must be a number")
		return
	}

	accepted, err := sc.service.Rate(c.Request.Context(), c.Param("bookId"), stars)
	if err != nil {
		respondServiceError(c, err, "rate book")
		return
	}
	c.JSON(http.StatusOK, gin.H{"stars": accepted})
}

// ListByStatus pages through the books on one status shelf.
// GET /api/shelf?status=&page=
func (sc *ShelfController) ListByStatus(c *gin.Context) {
	status, err := entities.ParseStatus(c.Query("status"))
	if err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	page, pagination, err := sc.service.ListByStatus(c.Request.Context(), status, parseQueryPage(c))
	if err != nil {
		respondServiceError(c, err, "list shelf")
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

// CreateFolder creates a custom list.
// POST /api/folders
func (sc *ShelfController) CreateFolder(c *gin.Context) {
	var req struct {
		Title string `json:"title" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "title is required")
		return
	}

	folder, err := sc.service.CreateFolder(c.Request.Context(), req.Title)
	if err != nil {
		respondServiceError(c, err, "create folder")
		return
	}
	c.JSON(http.StatusCreated, folder)
}

// ListFolders lists the user's folders with book counts.
// GET /api/folders
func (sc *ShelfController) ListFolders(c *gin.Context) {
	folders, err := sc.service.ListFolders(c.Request.Context())
	if err != nil {
		respondServiceError(c, err, "list folders")
		return
	}
	c.JSON(http.StatusOK, gin.H{"folders": folders})
}

// DeleteFolder removes a custom list, leaving its books shelved.
// DELETE /api/folders/:id
func (sc *ShelfController) DeleteFolder(c *gin.Context) {
	id, ok := parseFolderID(c, "id")
	if !ok {
		return
	}
	if err := sc.service.DeleteFolder(c.Request.Context(), id); err != nil {
		respondServiceError(c, err, "delete folder")
		return
	}
	respondSuccess(c, "folder deleted")
}

// ListFolder pages through the books in one folder.
// GET /api/folders/:id/books?page=
func (sc *ShelfController) ListFolder(c *gin.Context) {
	id, ok := parseFolderID(c, "id")
	if !ok {
		return
	}

	page, pagination, err := sc.service.ListFolder(c.Request.Context(), id, parseQueryPage(c))
	if err != nil {
		respondServiceError(c, err, "list folder")
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

// AddToFolder puts a book into a folder.
// POST /api/folders/:id/books/:bookId
func (sc *ShelfController) AddToFolder(c *gin.Context) {
	id, ok := parseFolderID(c, "id")
	if !ok {
		return
	}
	if err := sc.service.AddToFolder(c.Request.Context(), c.Param("bookId"), id); err != nil {
		respondServiceError(c, err, "add to folder")
		return
	}
	respondSuccess(c, "book added to folder")
}

// RemoveFromFolder takes a book out of a folder.
// DELETE /api/folders/:id/books/:bookId
func (sc *ShelfController) RemoveFromFolder(c *gin.Context) {
	id, ok := parseFolderID(c, "id")
	if !ok {
		return
	}
	if err := sc.service.RemoveFromFolder(c.Request.Context(), c.Param("bookId"), id); err != nil {
		respondServiceError(c, err, "remove from folder")
		return
	}
	respondSuccess(c, "book removed from folder")
}
