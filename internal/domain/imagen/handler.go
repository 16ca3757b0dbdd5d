package imagen

import (
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/ehr/radiologia/internal/domain/identity"
	"github.com/ehr/radiologia/internal/platform/apperr"
	"github.com/ehr/radiologia/internal/platform/blobstore"
)

const (
	imagePart    = "image"
	pacientePart = "paciente"
)

type Handler struct {
	svc      *Service
	maxBytes int64
}

// NewHandler rejects uploads larger than maxBytes with 413.
func NewHandler(svc *Service, maxBytes int64) *Handler {
	if maxBytes <= 0 {
		maxBytes = blobstore.DefaultMaxSize
	}
	return &Handler{svc: svc, maxBytes: maxBytes}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.POST("/imagen", h.Upload)
	api.GET("/imagen/:id", h.GetBytes)
	api.GET("/imagen/info/:id", h.GetInfo)
	api.GET("/imagen/predict/:id", h.Predict)
	api.GET("/imagen/paciente/:id", h.ListByPaciente)
	api.DELETE("/imagen/:id", h.Delete)
}

func (h *Handler) Upload(c echo.Context) error {
	file, err := c.FormFile(imagePart)
	if err != nil {
		var he *echo.HTTPError
		if errors.As(err, &he) && he.Code == http.StatusRequestEntityTooLarge {
			return he
		}
		return echo.NewHTTPError(http.StatusBadRequest, "missing multipart part \"image\"").SetInternal(err)
	}
	if file.Filename == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "image filename is required")
	}
	if file.Size > h.maxBytes {
		return echo.NewHTTPError(http.StatusRequestEntityTooLarge, blobstore.ErrFileTooLarge.Error())
	}
	pacienteID, err := pacienteRef(c)
	if err != nil {
		return err
	}

	src, err := file.Open()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "unreadable image part").SetInternal(err)
	}
	defer src.Close()

	if _, err := h.svc.Upload(c.Request().Context(), pacienteID, file.Filename, src); err != nil {
		if errors.Is(err, blobstore.ErrFileTooLarge) {
			return echo.NewHTTPError(http.StatusRequestEntityTooLarge, blobstore.ErrFileTooLarge.Error())
		}
		return apperr.HTTPError(err)
	}
	return c.Blob(http.StatusOK, echo.MIMEApplicationJSON, uploadResponse(file.Filename))
}

// pacienteRef reads the owner id from the "paciente" JSON part, sent either
// as a plain form value or as a file part.
func pacienteRef(c echo.Context) (int64, error) {
	raw := []byte(c.FormValue(pacientePart))
	if len(raw) == 0 {
		fh, err := c.FormFile(pacientePart)
		if err != nil {
			return 0, echo.NewHTTPError(http.StatusBadRequest, "missing multipart part \"paciente\"")
		}
		raw, err = readPart(fh)
		if err != nil {
			return 0, echo.NewHTTPError(http.StatusBadRequest, "unreadable paciente part").SetInternal(err)
		}
	}
	var ref struct {
		ID int64 `json:"id"`
	}
	if err := json.Unmarshal(raw, &ref); err != nil {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid paciente part").SetInternal(err)
	}
	if ref.ID <= 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "paciente id is required")
	}
	return ref.ID, nil
}

func readPart(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(io.LimitReader(f, 64<<10))
}

// uploadResponse renders the upload acknowledgement. Clients match it
// literally, including the space before the colon.
func uploadResponse(filename string) []byte {
	quoted, _ := json.Marshal(filename)
	name := string(quoted[1 : len(quoted)-1])
	return []byte(`{"response" : "file uploaded successfully : ` + name + `"}`)
}

func (h *Handler) GetBytes(c echo.Context) error {
	id, err := identity.ParseID(c, "id")
	if err != nil {
		return err
	}
	data, ct, err := h.svc.FetchBytes(c.Request().Context(), id)
	if err != nil {
		return apperr.HTTPError(err)
	}
	return c.Blob(http.StatusOK, ct, data)
}

func (h *Handler) GetInfo(c echo.Context) error {
	id, err := identity.ParseID(c, "id")
	if err != nil {
		return err
	}
	img, err := h.svc.FetchMetadata(c.Request().Context(), id)
	if err != nil {
		return apperr.HTTPError(err)
	}
	return c.JSON(http.StatusOK, img)
}

func (h *Handler) Predict(c echo.Context) error {
	id, err := identity.ParseID(c, "id")
	if err != nil {
		return err
	}
	res, err := h.svc.Predict(c.Request().Context(), id)
	if err != nil {
		return apperr.HTTPError(err)
	}
	return c.JSON(http.StatusOK, map[string]string{"prediction": res.String()})
}

func (h *Handler) ListByPaciente(c echo.Context) error {
	id, err := identity.ParseID(c, "id")
	if err != nil {
		return err
	}
	items, err := h.svc.ListByPatient(c.Request().Context(), id)
	if err != nil {
		return apperr.HTTPError(err)
	}
	if items == nil {
		items = []*Imagen{}
	}
	return c.JSON(http.StatusOK, items)
}

func (h *Handler) Delete(c echo.Context) error {
	id, err := identity.ParseID(c, "id")
	if err != nil {
		return err
	}
	if err := h.svc.Delete(c.Request().Context(), id); err != nil {
		return apperr.HTTPError(err)
	}
	return c.NoContent(http.StatusNoContent)
}
