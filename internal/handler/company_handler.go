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

type CompanyHandler struct {
	companyService service.CompanyService
}

func NewCompanyHandler(companyService service.CompanyService) *CompanyHandler {
	return &CompanyHandler{companyService: companyService}
}

func (h *CompanyHandler) RegisterRoutes(router *gin.RouterGroup) {
	companies := router.Group("/companies")
	{
		companies.GET("", middleware.RequireRole(), h.ListCompanies)
		companies.GET("/:id", middleware.RequireRole(), h.GetCompany)
		companies.POST("", middleware.RequireRole(model.RoleAdmin), h.CreateCompany)
		companies.PUT("/:id", middleware.RequireRole(model.RoleAdmin), h.UpdateCompany)
		companies.DELETE("/:id", middleware.RequireRole(model.RoleAdmin), h.DeleteCompany)
		companies.PUT("/:id/activate", middleware.RequireRole(model.RoleAdmin), h.ActivateCompany)
	}
}

func (h *CompanyHandler) CreateCompany(c *gin.Context) {
	actorID, ok := middleware.ActorID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Invalid session"))
		return
	}

	var req service.CompanyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	company, err := h.companyService.Create(c.Request.Context(), actorID, req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, company))
}

func (h *CompanyHandler) ListCompanies(c *gin.Context) {
	params := pagination.Parse(c)
	companies, total, err := h.companyService.List(c.Request.Context(), params.Page, params.Limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Paginated(http.StatusOK, companies, total, params.Page, params.Limit))
}

func (h *CompanyHandler) GetCompany(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	company, err := h.companyService.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, company))
}

func (h *CompanyHandler) UpdateCompany(c *gin.Context) {
	actorID, ok := middleware.ActorID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Invalid session"))
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req service.CompanyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	company, err := h.companyService.Update(c.Request.Context(), actorID, id, req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, company))
}

// DeleteCompany soft-deletes; refused while active petitions or profiles
// still reference the company
func (h *CompanyHandler) DeleteCompany(c *gin.Context) {
	actorID, ok := middleware.ActorID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Invalid session"))
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.companyService.SoftDelete(c.Request.Context(), actorID, id); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"message": "company deleted"}))
}

func (h *CompanyHandler) ActivateCompany(c *gin.Context) {
	actorID, ok := middleware.ActorID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Invalid session"))
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.companyService.Activate(c.Request.Context(), actorID, id); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"message": "company restored"}))
}
