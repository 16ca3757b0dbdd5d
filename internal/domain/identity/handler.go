package identity

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/ehr/radiologia/internal/platform/apperr"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.POST("/medico", h.CreateMedico)
	api.PUT("/medico", h.UpdateMedico)
	api.GET("/medico/:id", h.GetMedico)
	api.GET("/medico/dni/:dni", h.GetMedicoByDNI)
	api.DELETE("/medico/:id", h.DeleteMedico)

	api.POST("/paciente", h.CreatePaciente)
	api.PUT("/paciente", h.UpdatePaciente)
	api.GET("/paciente/:id", h.GetPaciente)
	api.GET("/paciente/medico/:id", h.ListPacientesByMedico)
	api.DELETE("/paciente/:id", h.DeletePaciente)
}

// ParseID reads a positive int64 path parameter.
func ParseID(c echo.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid "+name)
	}
	return id, nil
}

func bind(c echo.Context, v interface{}) error {
	if err := c.Bind(v); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body").SetInternal(err)
	}
	return nil
}

func (h *Handler) CreateMedico(c echo.Context) error {
	var m Medico
	if err := bind(c, &m); err != nil {
		return err
	}
	if err := h.svc.CreateMedico(c.Request().Context(), &m); err != nil {
		return apperr.HTTPError(err)
	}
	return c.JSON(http.StatusCreated, m)
}

func (h *Handler) UpdateMedico(c echo.Context) error {
	var m Medico
	if err := bind(c, &m); err != nil {
		return err
	}
	if err := h.svc.UpdateMedico(c.Request().Context(), &m); err != nil {
		return apperr.HTTPError(err)
	}
	return c.JSON(http.StatusOK, m)
}

func (h *Handler) GetMedico(c echo.Context) error {
	id, err := ParseID(c, "id")
	if err != nil {
		return err
	}
	m, err := h.svc.GetMedico(c.Request().Context(), id)
	if err != nil {
		return apperr.HTTPError(err)
	}
	return c.JSON(http.StatusOK, m)
}

func (h *Handler) GetMedicoByDNI(c echo.Context) error {
	m, err := h.svc.GetMedicoByDNI(c.Request().Context(), c.Param("dni"))
	if err != nil {
		return apperr.HTTPError(err)
	}
	return c.JSON(http.StatusOK, m)
}

func (h *Handler) DeleteMedico(c echo.Context) error {
	id, err := ParseID(c, "id")
	if err != nil {
		return err
	}
	if err := h.svc.DeleteMedico(c.Request().Context(), id); err != nil {
		return apperr.HTTPError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) CreatePaciente(c echo.Context) error {
	var p Paciente
	if err := bind(c, &p); err != nil {
		return err
	}
	if err := h.svc.CreatePaciente(c.Request().Context(), &p); err != nil {
		return apperr.HTTPError(err)
	}
	return c.JSON(http.StatusCreated, p)
}

func (h *Handler) UpdatePaciente(c echo.Context) error {
	var p Paciente
	if err := bind(c, &p); err != nil {
		return err
	}
	if err := h.svc.UpdatePaciente(c.Request().Context(), &p); err != nil {
		return apperr.HTTPError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) GetPaciente(c echo.Context) error {
	id, err := ParseID(c, "id")
	if err != nil {
		return err
	}
	p, err := h.svc.GetPaciente(c.Request().Context(), id)
	if err != nil {
		return apperr.HTTPError(err)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) ListPacientesByMedico(c echo.Context) error {
	id, err := ParseID(c, "id")
	if err != nil {
		return err
	}
	items, err := h.svc.ListPacientesByMedico(c.Request().Context(), id)
	if err != nil {
		return apperr.HTTPError(err)
	}
	if items == nil {
		items = []*Paciente{}
	}
	return c.JSON(http.StatusOK, items)
}

func (h *Handler) DeletePaciente(c echo.Context) error {
	id, err := ParseID(c, "id")
	if err != nil {
		return err
	}
	if err := h.svc.DeletePaciente(c.Request().Context(), id); err != nil {
		return apperr.HTTPError(err)
	}
	return c.NoContent(http.StatusNoContent)
}
