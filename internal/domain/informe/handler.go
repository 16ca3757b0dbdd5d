package informe

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/ehr/radiologia/internal/domain/identity"
	"github.com/ehr/radiologia/internal/platform/apperr"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.POST("/informe", h.Create)
	api.GET("/informe/:id", h.Get)
	api.GET("/informe/imagen/:id", h.ListByImagen)
	api.DELETE("/informe/:id", h.Delete)
}

func (h *Handler) Create(c echo.Context) error {
	var req CreateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body").SetInternal(err)
	}
	inf, err := h.svc.Create(c.Request().Context(), req.Contenido, req.Imagen.ID)
	if err != nil {
		return apperr.HTTPError(err)
	}
	return c.JSON(http.StatusCreated, inf)
}

func (h *Handler) Get(c echo.Context) error {
	id, err := identity.ParseID(c, "id")
	if err != nil {
		return err
	}
	inf, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return apperr.HTTPError(err)
	}
	return c.JSON(http.StatusOK, inf)
}

func (h *Handler) ListByImagen(c echo.Context) error {
	id, err := identity.ParseID(c, "id")
	if err != nil {
		return err
	}
	items, err := h.svc.ListByImagen(c.Request().Context(), id)
	if err != nil {
		return apperr.HTTPError(err)
	}
	if items == nil {
		items = []*Informe{}
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
