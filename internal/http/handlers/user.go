package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/studybuddy-backend/internal/http/response"
	"github.com/yungbote/studybuddy-backend/internal/services"
)

type UserHandler struct {
	userService services.UserService
}

func NewUserHandler(userService services.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

type detailsRequest struct {
	Name         *string  `json:"name"`
	DOB          *string  `json:"dob"`
	Phone        *string  `json:"phoneno"`
	SchoolName   *string  `json:"schoolName"`
	Class        *string  `json:"class"`
	Subjects     []string `json:"subjects"`
	ProfileImage *string  `json:"profileImage"`
}

func (r detailsRequest) input() services.DetailsInput {
	return services.DetailsInput{
		Name:         r.Name,
		DOB:          r.DOB,
		Phone:        r.Phone,
		SchoolName:   r.SchoolName,
		Class:        r.Class,
		Subjects:     r.Subjects,
		ProfileImage: r.ProfileImage,
	}
}

// POST /users/user-details
func (uh *UserHandler) CreateDetails(c *gin.Context) {
	var req detailsRequest
	if !bindJSON(c, &req) {
		return
	}
	details, err := uh.userService.CreateDetails(c.Request.Context(), req.input())
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondCreated(c, details)
}

// GET /users/user-details
func (uh *UserHandler) GetDetails(c *gin.Context) {
	details, err := uh.userService.GetDetails(c.Request.Context())
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, details)
}

// PUT /users/user-details
func (uh *UserHandler) UpdateDetails(c *gin.Context) {
	var req detailsRequest
	if !bindJSON(c, &req) {
		return
	}
	details, err := uh.userService.UpdateDetails(c.Request.Context(), req.input())
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, details)
}

// GET /users (admin)
func (uh *UserHandler) ListUsers(c *gin.Context) {
	users, err := uh.userService.ListUsers(c.Request.Context())
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, users)
}

// PUT /users?id= (admin)
func (uh *UserHandler) UpdateUser(c *gin.Context) {
	id, ok := requiredQueryUUID(c, "id")
	if !ok {
		return
	}
	var req struct {
		Email    *string `json:"email"`
		Password *string `json:"password"`
		Role     *string `json:"role"`
	}
	if !bindJSON(c, &req) {
		return
	}
	u, err := uh.userService.UpdateUser(c.Request.Context(), id, services.UserUpdate{
		Email:    req.Email,
		Password: req.Password,
		Role:     req.Role,
	})
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, u)
}

// DELETE /users?id= (admin)
func (uh *UserHandler) DeleteUser(c *gin.Context) {
	id, ok := requiredQueryUUID(c, "id")
	if !ok {
		return
	}
	if err := uh.userService.DeleteUser(c.Request.Context(), id); err != nil {
		response.RespondServiceError(c, err)
		return
	}
	success(c)
}
