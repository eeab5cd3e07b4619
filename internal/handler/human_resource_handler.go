package handler

import (
	"net/http"

	"taskflow/internal/middleware"
	"taskflow/internal/model"
	"taskflow/internal/service"
	"taskflow/pkg/pagination"
	"taskflow/pkg/response"

	"github.com/gin-gonic/gin"
)

type HumanResourceHandler struct {
	hrService service.HumanResourceService
}

func NewHumanResourceHandler(hrService service.HumanResourceService) *HumanResourceHandler {
	return &HumanResourceHandler{hrService: hrService}
}

func (h *HumanResourceHandler) RegisterRoutes(router *gin.RouterGroup) {
	profiles := router.Group("/human-resources")
	{
		profiles.GET("", middleware.RequireRole(model.RoleAdmin), h.ListProfiles)
		profiles.POST("", middleware.RequireRole(model.RoleAdmin), h.CreateProfile)
		profiles.GET("/:userID", middleware.RequireRole(), h.GetProfile)
		profiles.PUT("/:userID", middleware.RequireRole(), h.UpdateProfile)

		profiles.GET("/:userID/companies", middleware.RequireRole(), h.ListLinkedCompanies)
		profiles.POST("/:userID/companies/:companyID", middleware.RequireRole(model.RoleAdmin), h.LinkCompany)
		profiles.DELETE("/:userID/companies/:companyID", middleware.RequireRole(model.RoleAdmin), h.UnlinkCompany)
	}
}

// CreateProfile builds the employment profile for a user; clients may not
// carry a department
func (h *HumanResourceHandler) CreateProfile(c *gin.Context) {
	actorID, ok := middleware.ActorID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Invalid session"))
		return
	}

	var req service.CreateHumanResourceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	profile, err := h.hrService.Create(c.Request.Context(), actorID, req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, profile))
}

func (h *HumanResourceHandler) ListProfiles(c *gin.Context) {
	actorID, ok := middleware.ActorID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Invalid session"))
		return
	}

	params := pagination.Parse(c)
	profiles, total, err := h.hrService.List(c.Request.Context(), actorID, params.Page, params.Limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Paginated(http.StatusOK, profiles, total, params.Page, params.Limit))
}

func (h *HumanResourceHandler) GetProfile(c *gin.Context) {
	actorID, ok := middleware.ActorID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Invalid session"))
		return
	}
	userID, ok := pathID(c, "userID")
	if !ok {
		return
	}

	profile, err := h.hrService.GetByUserID(c.Request.Context(), actorID, userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, profile))
}

func (h *HumanResourceHandler) UpdateProfile(c *gin.Context) {
	actorID, ok := middleware.ActorID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Invalid session"))
		return
	}
	userID, ok := pathID(c, "userID")
	if !ok {
		return
	}

	var req service.UpdateHumanResourceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	profile, err := h.hrService.Update(c.Request.Context(), actorID, userID, req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, profile))
}

func (h *HumanResourceHandler) ListLinkedCompanies(c *gin.Context) {
	actorID, ok := middleware.ActorID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Invalid session"))
		return
	}
	userID, ok := pathID(c, "userID")
	if !ok {
		return
	}

	companies, err := h.hrService.ListLinkedCompanies(c.Request.Context(), actorID, userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, companies))
}

// LinkCompany attaches an extra company to a Client profile
func (h *HumanResourceHandler) LinkCompany(c *gin.Context) {
	actorID, ok := middleware.ActorID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Invalid session"))
		return
	}
	userID, ok := pathID(c, "userID")
	if !ok {
		return
	}
	companyID, ok := pathID(c, "companyID")
	if !ok {
		return
	}

	if err := h.hrService.LinkCompany(c.Request.Context(), actorID, userID, companyID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, gin.H{"message": "company linked"}))
}

func (h *HumanResourceHandler) UnlinkCompany(c *gin.Context) {
	actorID, ok := middleware.ActorID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Invalid session"))
		return
	}
	userID, ok := pathID(c, "userID")
	if !ok {
		return
	}
	companyID, ok := pathID(c, "companyID")
	if !ok {
		return
	}

	if err := h.hrService.UnlinkCompany(c.Request.Context(), actorID, userID, companyID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"message": "company unlinked"}))
}
