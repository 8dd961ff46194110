package catalog

import (
	"net/http"
	"strconv"

	"gymops/internal/api"

	"github.com/gin-gonic/gin"
)

var errInvalidPackageID = api.InvalidInput("INVALID_PACKAGE_ID", "invalid package id")

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// ListPackages godoc
// @Summary      List packages
// @Description  Returns active packages ordered by price.
// @Tags         packages
// @Produce      json
// @Success      200  {array}   Package
// @Router       /packages [get]
func (h *Handler) ListPackages(c *gin.Context) {
	packages, err := h.service.ListActive(c.Request.Context())
	if err != nil {
		api.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, packages)
}

// GetPackage godoc
// @Summary      Get package
// @Tags         packages
// @Produce      json
// @Param        packageID  path      int  true  "Package ID"
// @Success      200        {object}  Package
// @Failure      404        {object}  api.ErrorResponse
// @Router       /packages/{packageID} [get]
func (h *Handler) GetPackage(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("packageID"))
	if err != nil {
		api.RespondError(c, errInvalidPackageID)
		return
	}

	p, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		api.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// CreatePackage godoc
// @Summary      Create package
// @Tags         packages
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        request  body      CreatePackageRequest  true  "Package"
// @Success      201      {object}  Package
// @Failure      400      {object}  api.ErrorResponse
// @Router       /packages [post]
func (h *Handler) CreatePackage(c *gin.Context) {
	var req CreatePackageRequest
	if !api.BindJSON(c, &req) {
		return
	}

	p, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		api.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

// DeactivatePackage godoc
// @Summary      Deactivate package
// @Tags         packages
// @Security     BearerAuth
// @Produce      json
// @Param        packageID  path      int  true  "Package ID"
// @Success      200        {object}  api.MessageResponse
// @Failure      404        {object}  api.ErrorResponse
// @Router       /packages/{packageID}/deactivate [post]
func (h *Handler) DeactivatePackage(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("packageID"))
	if err != nil {
		api.RespondError(c, errInvalidPackageID)
		return
	}

	if err := h.service.Deactivate(c.Request.Context(), id); err != nil {
		api.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, api.MessageResponse{Message: "package deactivated"})
}
