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

type PetitionHandler struct {
	petitionService service.PetitionService
}

func NewPetitionHandler(petitionService service.PetitionService) *PetitionHandler {
	return &PetitionHandler{petitionService: petitionService}
}

func (h *PetitionHandler) RegisterRoutes(router *gin.RouterGroup) {
	petitions := router.Group("/petitions")
	{
		petitions.GET("", middleware.RequireRole(), h.ListPetitions)
		petitions.GET("/:id", middleware.RequireRole(), h.GetPetition)
		petitions.POST("", middleware.RequireRole(), h.CreatePetition)
		petitions.PUT("/:id", middleware.RequireRole(), h.UpdatePetition)
		petitions.DELETE("/:id", middleware.RequireRole(model.RoleAdmin), h.DeletePetition)
		petitions.PUT("/:id/activate", middleware.RequireRole(model.RoleAdmin), h.ActivatePetition)
	}
}

// CreatePetition creates a petition in WAITING state and triggers the fan-out
// @Summary      Create petition
// @Tags         petitions
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.CreatePetitionRequest  true  "Petition Payload"
// @Success      201      {object}  response.Response{data=service.PetitionResponse}
// @Failure      400      {object}  response.Response
// @Router       /petitions [post]
func (h *PetitionHandler) CreatePetition(c *gin.Context) {
	actorID, ok := middleware.ActorID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Invalid session"))
		return
	}

	var req service.CreatePetitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	petition, err := h.petitionService.Create(c.Request.Context(), actorID, req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, petition))
}

// ListPetitions returns petitions visible to the acting user, filterable by
// title, status, department, company, author and creation date range
// @Summary      List petitions
// @Tags         petitions
// @Produce      json
// @Security     BearerAuth
// @Param        title            query     string  false  "Title substring"
// @Param        status_approval  query     string  false  "Status filter"
// @Param        department_id    query     string  false  "Department filter"
// @Param        company_id       query     string  false  "Company filter"
// @Param        user_id          query     string  false  "Author filter"
// @Param        date_from        query     string  false  "Created from (YYYY-MM-DD)"
// @Param        date_until       query     string  false  "Created until (YYYY-MM-DD)"
// @Success      200              {object}  response.Response{data=response.List}
// @Router       /petitions [get]
func (h *PetitionHandler) ListPetitions(c *gin.Context) {
	actorID, ok := middleware.ActorID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Invalid session"))
		return
	}

	params := pagination.Parse(c)
	filter := service.PetitionListFilter{
		Title:          c.Query("title"),
		StatusApproval: c.Query("status_approval"),
		DepartmentID:   c.Query("department_id"),
		CompanyID:      c.Query("company_id"),
		UserID:         c.Query("user_id"),
		DateFrom:       c.Query("date_from"),
		DateUntil:      c.Query("date_until"),
		Page:           params.Page,
		Limit:          params.Limit,
	}

	petitions, total, err := h.petitionService.List(c.Request.Context(), actorID, filter)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Paginated(http.StatusOK, petitions, total, params.Page, params.Limit))
}

// GetPetition returns one petition with commissions preloaded
func (h *PetitionHandler) GetPetition(c *gin.Context) {
	actorID, ok := middleware.ActorID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Invalid session"))
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	petition, err := h.petitionService.Get(c.Request.Context(), actorID, id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, petition))
}

// UpdatePetition edits fields and drives the status machine; approval
// outcomes trigger the fan-out
func (h *PetitionHandler) UpdatePetition(c *gin.Context) {
	actorID, ok := middleware.ActorID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Invalid session"))
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req service.UpdatePetitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	petition, err := h.petitionService.Update(c.Request.Context(), actorID, id, req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, petition))
}

// DeletePetition soft-deletes, admin only
func (h *PetitionHandler) DeletePetition(c *gin.Context) {
	actorID, ok := middleware.ActorID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Invalid session"))
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.petitionService.SoftDelete(c.Request.Context(), actorID, id); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"message": "petition deleted"}))
}

// ActivatePetition restores a soft-deleted petition unless it is DONE
func (h *PetitionHandler) ActivatePetition(c *gin.Context) {
	actorID, ok := middleware.ActorID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Invalid session"))
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.petitionService.Activate(c.Request.Context(), actorID, id); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"message": "petition restored"}))
}
