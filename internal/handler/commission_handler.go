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

type CommissionHandler struct {
	commissionService service.CommissionService
}

func NewCommissionHandler(commissionService service.CommissionService) *CommissionHandler {
	return &CommissionHandler{commissionService: commissionService}
}

func (h *CommissionHandler) RegisterRoutes(router *gin.RouterGroup) {
	commissions := router.Group("/commissions")
	{
		commissions.GET("", middleware.RequireRole(), h.ListCommissions)
		commissions.GET("/:id", middleware.RequireRole(), h.GetCommission)
		commissions.POST("", middleware.RequireRole(), h.CreateCommission)
		commissions.PUT("/:id", middleware.RequireRole(), h.UpdateCommission)
		commissions.DELETE("/:id", middleware.RequireRole(model.RoleAdmin), h.DeleteCommission)
		commissions.PUT("/:id/activate", middleware.RequireRole(model.RoleAdmin), h.ActivateCommission)

		commissions.POST("/:id/assign-users", middleware.RequireRole(), h.AssignUsers)
		commissions.POST("/:id/remove-users", middleware.RequireRole(), h.RemoveUsers)

		commissions.GET("/:id/documents", middleware.RequireRole(), h.ListDocuments)
		commissions.POST("/:id/documents", middleware.RequireRole(), h.AddDocument)
		commissions.DELETE("/:id/documents/:docID", middleware.RequireRole(), h.RemoveDocument)
	}
}

// CreateCommission attaches a commission to a non-main petition
func (h *CommissionHandler) CreateCommission(c *gin.Context) {
	actorID, ok := middleware.ActorID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Invalid session"))
		return
	}

	var req service.CreateCommissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	commission, err := h.commissionService.Create(c.Request.Context(), actorID, req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, commission))
}

// ListCommissions returns commissions, optionally filtered by petition or
// assigned user
func (h *CommissionHandler) ListCommissions(c *gin.Context) {
	actorID, ok := middleware.ActorID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Invalid session"))
		return
	}

	params := pagination.Parse(c)
	commissions, total, err := h.commissionService.List(c.Request.Context(), actorID, c.Query("petition_id"), c.Query("user_id"), params.Page, params.Limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Paginated(http.StatusOK, commissions, total, params.Page, params.Limit))
}

func (h *CommissionHandler) GetCommission(c *gin.Context) {
	actorID, ok := middleware.ActorID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Invalid session"))
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	commission, err := h.commissionService.Get(c.Request.Context(), actorID, id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, commission))
}

func (h *CommissionHandler) UpdateCommission(c *gin.Context) {
	actorID, ok := middleware.ActorID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Invalid session"))
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req service.UpdateCommissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	commission, err := h.commissionService.Update(c.Request.Context(), actorID, id, req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, commission))
}

// DeleteCommission soft-deletes; refused while active documents remain
func (h *CommissionHandler) DeleteCommission(c *gin.Context) {
	actorID, ok := middleware.ActorID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Invalid session"))
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.commissionService.SoftDelete(c.Request.Context(), actorID, id); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"message": "commission deleted"}))
}

func (h *CommissionHandler) ActivateCommission(c *gin.Context) {
	actorID, ok := middleware.ActorID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Invalid session"))
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.commissionService.Activate(c.Request.Context(), actorID, id); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"message": "commission restored"}))
}

// AssignUsers adds users to the commission; already-assigned users are no-ops
func (h *CommissionHandler) AssignUsers(c *gin.Context) {
	actorID, ok := middleware.ActorID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Invalid session"))
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req service.AssignUsersRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	commission, err := h.commissionService.AssignUsers(c.Request.Context(), actorID, id, req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, commission))
}

// RemoveUsers drops users from the commission; non-assigned users are no-ops
func (h *CommissionHandler) RemoveUsers(c *gin.Context) {
	actorID, ok := middleware.ActorID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Invalid session"))
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req service.AssignUsersRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	commission, err := h.commissionService.RemoveUsers(c.Request.Context(), actorID, id, req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, commission))
}

func (h *CommissionHandler) AddDocument(c *gin.Context) {
	actorID, ok := middleware.ActorID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Invalid session"))
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req service.CreateDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	doc, err := h.commissionService.AddDocument(c.Request.Context(), actorID, id, req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, doc))
}

func (h *CommissionHandler) ListDocuments(c *gin.Context) {
	actorID, ok := middleware.ActorID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Invalid session"))
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	docs, err := h.commissionService.ListDocuments(c.Request.Context(), actorID, id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, docs))
}

func (h *CommissionHandler) RemoveDocument(c *gin.Context) {
	actorID, ok := middleware.ActorID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Invalid session"))
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	docID, ok := pathID(c, "docID")
	if !ok {
		return
	}

	if err := h.commissionService.RemoveDocument(c.Request.Context(), actorID, id, docID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"message": "document deleted"}))
}
