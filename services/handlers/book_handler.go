package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/psikotes-ai/psikotes_api/dto"
	"github.com/psikotes-ai/psikotes_api/shared"
)

type BookHandler struct {
	bookSvc BookServiceInterface
}

func NewBookHandler(bookSvc BookServiceInterface) *BookHandler {
	return &BookHandler{bookSvc: bookSvc}
}

// @Summary Upload a book
// @Description Upload a PDF with optional title and author form fields
// @Tags books
// @Accept multipart/form-data
// @Produce json
// @Security Bearer
// @Param file formData file true "PDF file"
// @Param title formData string false "Title"
// @Param author formData string false "Author"
// @Success 201 {object} shared.Response{data=dto.BookResponse}
// @Router /api/v1/books [post]
func (h *BookHandler) Upload(c *fiber.Ctx) error {
	userID := c.Locals(shared.UserID).(string)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return shared.NewBadRequestError(err, "Berkas tidak ditemukan pada permintaan")
	}

	file, err := fileHeader.Open()
	if err != nil {
		return shared.NewBadRequestError(err, "Berkas tidak dapat dibaca")
	}
	defer file.Close()

	resp, err := h.bookSvc.UploadBook(c.UserContext(), userID,
		c.FormValue("title"), c.FormValue("author"),
		fileHeader.Filename, fileHeader.Size, file)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, http.StatusCreated, "Buku diunggah", resp)
}

// @Summary Upload a book cover
// @Tags books
// @Accept multipart/form-data
// @Produce json
// @Security Bearer
// @Param id path string true "Book ID"
// @Param file formData file true "Cover image"
// @Success 200 {object} shared.Response{data=dto.BookResponse}
// @Router /api/v1/books/{id}/cover [post]
func (h *BookHandler) UploadCover(c *fiber.Ctx) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return shared.NewBadRequestError(err, "Berkas tidak ditemukan pada permintaan")
	}

	file, err := fileHeader.Open()
	if err != nil {
		return shared.NewBadRequestError(err, "Berkas tidak dapat dibaca")
	}
	defer file.Close()

	contentType := fileHeader.Header.Get("Content-Type")
	resp, err := h.bookSvc.UploadCover(c.UserContext(), c.Params("id"), contentType, fileHeader.Size, file)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, http.StatusOK, "Sampul diunggah", resp)
}

// @Summary List books
// @Tags books
// @Produce json
// @Security Bearer
// @Success 200 {object} shared.Response{data=dto.BookListResponse}
// @Router /api/v1/books [get]
func (h *BookHandler) List(c *fiber.Ctx) error {
	resp, err := h.bookSvc.ListBooks(c.UserContext())
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, http.StatusOK, "OK", resp)
}

// @Summary Get a book
// @Tags books
// @Produce json
// @Security Bearer
// @Param id path string true "Book ID"
// @Success 200 {object} shared.Response{data=dto.BookResponse}
// @Router /api/v1/books/{id} [get]
func (h *BookHandler) Get(c *fiber.Ctx) error {
	resp, err := h.bookSvc.GetBook(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, http.StatusOK, "OK", resp)
}

// @Summary Get the book file
// @Description Redirect to a presigned download URL
// @Tags books
// @Security Bearer
// @Param id path string true "Book ID"
// @Success 302
// @Router /api/v1/books/{id}/file [get]
func (h *BookHandler) GetFile(c *fiber.Ctx) error {
	fileURL, err := h.bookSvc.BookFileURL(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	if fileURL == "" {
		return shared.NewServiceUnavailableError("Berkas tidak tersedia saat ini", nil)
	}

	return c.Redirect(fileURL, fiber.StatusFound)
}

// @Summary Delete a book
// @Tags books
// @Produce json
// @Security Bearer
// @Param id path string true "Book ID"
// @Success 200 {object} shared.Response{data=nil}
// @Router /api/v1/books/{id} [delete]
func (h *BookHandler) Delete(c *fiber.Ctx) error {
	if err := h.bookSvc.DeleteBook(c.UserContext(), c.Params("id")); err != nil {
		return err
	}

	return shared.ResponseJSON(c, http.StatusOK, "Buku dihapus", nil)
}

// @Summary Get reading progress
// @Tags books
// @Produce json
// @Security Bearer
// @Param id path string true "Book ID"
// @Success 200 {object} shared.Response{data=model.BookProgress}
// @Router /api/v1/books/{id}/progress [get]
func (h *BookHandler) GetProgress(c *fiber.Ctx) error {
	userID := c.Locals(shared.UserID).(string)

	progress, err := h.bookSvc.GetProgress(c.UserContext(), c.Params("id"), userID)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, http.StatusOK, "OK", progress)
}

// @Summary Save reading progress
// @Tags books
// @Accept json
// @Produce json
// @Security Bearer
// @Param id path string true "Book ID"
// @Param progressRequest body dto.SaveProgressRequest true "Progress"
// @Success 200 {object} shared.Response{data=model.BookProgress}
// @Router /api/v1/books/{id}/progress [put]
func (h *BookHandler) SaveProgress(c *fiber.Ctx) error {
	userID := c.Locals(shared.UserID).(string)

	var req dto.SaveProgressRequest
	if err := c.BodyParser(&req); err != nil {
		return err
	}

	if err := req.Validate(); err != nil {
		validationResp := dto.CreateValidationErrorResponse(err)
		return c.Status(fiber.StatusBadRequest).JSON(validationResp)
	}

	progress, err := h.bookSvc.SaveProgress(c.UserContext(), c.Params("id"), userID, req)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, http.StatusOK, "Progres tersimpan", progress)
}

// @Summary List annotations
// @Tags books
// @Produce json
// @Security Bearer
// @Param id path string true "Book ID"
// @Success 200 {object} shared.Response{data=[]model.BookAnnotation}
// @Router /api/v1/books/{id}/annotations [get]
func (h *BookHandler) ListAnnotations(c *fiber.Ctx) error {
	userID := c.Locals(shared.UserID).(string)

	annotations, err := h.bookSvc.ListAnnotations(c.UserContext(), c.Params("id"), userID)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, http.StatusOK, "OK", annotations)
}

// @Summary Create an annotation
// @Tags books
// @Accept json
// @Produce json
// @Security Bearer
// @Param id path string true "Book ID"
// @Param annotationRequest body dto.CreateAnnotationRequest true "Annotation"
// @Success 201 {object} shared.Response{data=model.BookAnnotation}
// @Router /api/v1/books/{id}/annotations [post]
func (h *BookHandler) CreateAnnotation(c *fiber.Ctx) error {
	userID := c.Locals(shared.UserID).(string)

	var req dto.CreateAnnotationRequest
	if err := c.BodyParser(&req); err != nil {
		return err
	}

	if err := req.Validate(); err != nil {
		validationResp := dto.CreateValidationErrorResponse(err)
		return c.Status(fiber.StatusBadRequest).JSON(validationResp)
	}

	annotation, err := h.bookSvc.CreateAnnotation(c.UserContext(), c.Params("id"), userID, req)
	if err != nil {
		return err
	}

	return shared.ResponseJSON(c, http.StatusCreated, "Anotasi tersimpan", annotation)
}

// @Summary Delete an annotation
// @Tags books
// @Produce json
// @Security Bearer
// @Param id path string true "Book ID"
// @Param annId path string true "Annotation ID"
// @Success 200 {object} shared.Response{data=nil}
// @Router /api/v1/books/{id}/annotations/{annId} [delete]
func (h *BookHandler) DeleteAnnotation(c *fiber.Ctx) error {
	userID := c.Locals(shared.UserID).(string)

	if err := h.bookSvc.DeleteAnnotation(c.UserContext(), c.Params("id"), userID, c.Params("annId")); err != nil {
		return err
	}

	return shared.ResponseJSON(c, http.StatusOK, "Anotasi dihapus", nil)
}
