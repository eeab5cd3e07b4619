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

type DepartmentHandler struct {
	departmentService service.DepartmentService
}

func NewDepartmentHandler(departmentService service.DepartmentService) *DepartmentHandler {
	return &DepartmentHandler{departmentService: departmentService}
}

func (h *DepartmentHandler) RegisterRoutes(router *gin.RouterGroup) {
	departments := router.Group("/departments")
	{
		departments.GET("", middleware.RequireRole(), h.ListDepartments)
		departments.GET("/:id", middleware.RequireRole(), h.GetDepartment)
		departments.POST("", middleware.RequireRole(model.RoleAdmin), h.CreateDepartment)
		departments.PUT("/:id", middleware.RequireRole(model.RoleAdmin), h.UpdateDepartment)
		departments.DELETE("/:id", middleware.RequireRole(model.RoleAdmin), h.DeleteDepartment)
		departments.PUT("/:id/activate", middleware.RequireRole(model.RoleAdmin), h.ActivateDepartment)
	}
}

func (h *DepartmentHandler) CreateDepartment(c *gin.Context) {
	actorID, ok := middleware.ActorID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Invalid session"))
		return
	}

	var req service.DepartmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	department, err := h.departmentService.Create(c.Request.Context(), actorID, req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, department))
}

func (h *DepartmentHandler) ListDepartments(c *gin.Context) {
	params := pagination.Parse(c)
	departments, total, err := h.departmentService.List(c.Request.Context(), params.Page, params.Limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Paginated(http.StatusOK, departments, total, params.Page, params.Limit))
}

func (h *DepartmentHandler) GetDepartment(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	department, err := h.departmentService.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, department))
}

func (h *DepartmentHandler) UpdateDepartment(c *gin.Context) {
	actorID, ok := middleware.ActorID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Invalid session"))
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req service.DepartmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	department, err := h.departmentService.Update(c.Request.Context(), actorID, id, req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, department))
}

// DeleteDepartment soft-deletes; refused while active petitions reference it
func (h *DepartmentHandler) DeleteDepartment(c *gin.Context) {
	actorID, ok := middleware.ActorID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Invalid session"))
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.departmentService.SoftDelete(c.Request.Context(), actorID, id); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"message": "department deleted"}))
}

func (h *DepartmentHandler) ActivateDepartment(c *gin.Context) {
	actorID, ok := middleware.ActorID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Invalid session"))
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.departmentService.Activate(c.Request.Context(), actorID, id); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"message": "department restored"}))
}
