package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"clinica-agenda-api/internal/model"
)

func (h *Handler) SearchPatients(c echo.Context) error {
	patients, err := h.patients.SearchPatients(c.Request().Context(), c.QueryParam("q"))
	if err != nil {
		return domainError(err)
	}
	if patients == nil {
		patients = []model.Patient{}
	}
	return c.JSON(http.StatusOK, patients)
}

func (h *Handler) GetPatient(c echo.Context) error {
	p, err := h.patients.GetPatient(c.Request().Context(), c.Param("id"))
	if err != nil {
		return domainError(err)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) CreatePatient(c echo.Context) error {
	var p model.Patient
	if err := c.Bind(&p); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed body")
	}
	if strings.TrimSpace(p.ID) == "" || strings.TrimSpace(p.Name) == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "id and name required")
	}
	if err := h.patients.CreatePatient(c.Request().Context(), &p); err != nil {
		return domainError(err)
	}
	return c.JSON(http.StatusCreated, p)
}

func (h *Handler) UpdatePatient(c echo.Context) error {
	var p model.Patient
	if err := c.Bind(&p); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed body")
	}
	p.ID = c.Param("id")
	if strings.TrimSpace(p.Name) == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "name required")
	}
	if err := h.patients.UpdatePatient(c.Request().Context(), &p); err != nil {
		return domainError(err)
	}
	return c.JSON(http.StatusOK, p)
}
