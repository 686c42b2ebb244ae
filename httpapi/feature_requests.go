package httpapi

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/samber/lo"

	"newsroom/domain"
	"newsroom/repositories"
)

type featureRequestResponse struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Status      string `json:"status"`
	AuthorID    int64  `json:"author_id"`
	Priority    int    `json:"priority"`
	Rating      int    `json:"rating"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
}

func toFeatureRequestResponse(fr domain.FeatureRequest) featureRequestResponse {
	return featureRequestResponse{
		ID:          fr.ID,
		Title:       fr.Title,
		Description: fr.Description,
		Status:      string(fr.Status),
		AuthorID:    fr.AuthorID,
		Priority:    fr.Priority,
		Rating:      fr.Rating,
		CreatedAt:   fr.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   fr.UpdatedAt.Format(time.RFC3339),
	}
}

type submitFeatureRequest struct {
	Title       string `json:"title" binding:"required,min=3,max=500"`
	Description string `json:"description" binding:"required"`
	Priority    int    `json:"priority" binding:"gte=0,lte=5"`
}

// SubmitFeatureRequest files a new suggestion. It always starts out
// pending; only an admin moves it from there.
func (h *Handler) SubmitFeatureRequest(c *gin.Context) {
	var req submitFeatureRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": err.Error()})
		return
	}
	actor, _ := currentActor(c)

	now := time.Now().UTC()
	created, err := h.features.Create(domain.FeatureRequest{
		Title:       req.Title,
		Description: req.Description,
		Status:      domain.FeatureStatusPending,
		AuthorID:    actor.ID,
		Priority:    req.Priority,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	h.log.Info("Feature request submitted", "id", created.ID, "author_id", actor.ID)
	c.JSON(http.StatusCreated, toFeatureRequestResponse(created))
}

// ListFeatureRequests pages through suggestions. Regular users only
// see their own; admins see everyone's.
func (h *Handler) ListFeatureRequests(c *gin.Context) {
	actor, _ := currentActor(c)

	filter := repositories.FeatureRequestFilter{
		Limit:  intQuery(c, "limit", 10),
		Offset: intQuery(c, "offset", 0),
	}
	if actor.Role != domain.RoleAdmin {
		filter.AuthorID = actor.ID
	}
	if raw := c.Query("status"); raw != "" {
		status, err := domain.ParseFeatureRequestStatus(raw)
		if err != nil {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": err.Error()})
			return
		}
		filter.Status = status
	}

	items, total, err := h.features.List(filter)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"items": lo.Map(items, func(fr domain.FeatureRequest, _ int) featureRequestResponse {
			return toFeatureRequestResponse(fr)
		}),
		"total":  total,
		"limit":  filter.Limit,
		"offset": filter.Offset,
	})
}

type updateFeatureRequest struct {
	Status   *string `json:"status"`
	Priority *int    `json:"priority" binding:"omitempty,gte=0,lte=5"`
	Rating   *int    `json:"rating" binding:"omitempty,gte=0,lte=5"`
}

// UpdateFeatureRequest is the admin review action: any subset of
// status, priority and rating may change in one call.
func (h *Handler) UpdateFeatureRequest(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"detail": "Not found"})
		return
	}

	var req updateFeatureRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": err.Error()})
		return
	}

	patch := domain.FeatureRequestPatch{Priority: req.Priority, Rating: req.Rating}
	if req.Status != nil {
		status, err := domain.ParseFeatureRequestStatus(*req.Status)
		if err != nil {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": err.Error()})
			return
		}
		patch.Status = &status
	}

	fr, err := h.features.Get(id)
	if err != nil {
		writeError(c, err)
		return
	}
	patch.Apply(&fr)
	fr.UpdatedAt = time.Now().UTC()

	if err := h.features.Update(fr); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toFeatureRequestResponse(fr))
}
