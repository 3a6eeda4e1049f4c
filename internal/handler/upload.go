package handler

import (
    "net/http"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/coach-court-booking/internal/storage"
)

// maxProofBytes caps proof uploads at 10 MiB.
const maxProofBytes = 10 << 20

// ProofHandler accepts multipart payment-proof uploads ahead of
// checkout and returns the reference the client then submits with the
// booking request.
type ProofHandler struct {
    store storage.ProofStore
}

// NewProofHandler returns a handler bound to the proof store.
func NewProofHandler(store storage.ProofStore) *ProofHandler {
    return &ProofHandler{store: store}
}

// Upload stores the "file" form part and returns its reference.
func (h *ProofHandler) Upload(c echo.Context) error {
    fh, err := c.FormFile("file")
    if err != nil {
        return echo.NewHTTPError(http.StatusBadRequest, "missing file part")
    }
    if fh.Size > maxProofBytes {
        return echo.NewHTTPError(http.StatusRequestEntityTooLarge, "proof too large")
    }
    src, err := fh.Open()
    if err != nil {
        return echo.NewHTTPError(http.StatusBadRequest, "unreadable file part")
    }
    defer src.Close()

    ref, err := h.store.Save(fh.Filename, src)
    if err != nil {
        return echo.NewHTTPError(http.StatusInternalServerError, "could not store proof")
    }
    return c.JSON(http.StatusCreated, echo.Map{"ref": ref})
}
