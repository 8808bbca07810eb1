package handlers

import (
	"net/http"

	"construction_manager/internal/ledger"
	"construction_manager/internal/models"
	"construction_manager/internal/services"

	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	userService services.UserService
}

func NewUserHandler(userService services.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

func (h *UserHandler) CreateUser(c *gin.Context) {
	var body struct {
		Username    string `json:"username"`
		Email       string `json:"email"`
		PhoneNumber string `json:"phone_number"`
		Role        string `json:"role"`
		Password    string `json:"password"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		respondError(c, &ledger.ValidationError{Msg: "invalid request format"})
		return
	}
	if body.Username == "" || body.Password == "" {
		respondError(c, &ledger.ValidationError{Msg: "username and password are required"})
		return
	}
	if !models.ValidRole(body.Role) {
		respondError(c, &ledger.ValidationError{Msg: "unknown role: " + body.Role})
		return
	}

	user := &models.User{
		Username:    body.Username,
		Email:       body.Email,
		PhoneNumber: body.PhoneNumber,
		Role:        body.Role,
	}
	if err := h.userService.CreateUser(user, body.Password); err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusCreated, user, "user created")
}

func (h *UserHandler) GetUsers(c *gin.Context) {
	users, err := h.userService.GetAllUsers()
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, users, "")
}

func (h *UserHandler) GetUser(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	user, err := h.userService.GetUserByID(id)
	if err != nil {
		respondError(c, &ledger.NotFoundError{Entity: "user", ID: id})
		return
	}
	respondOK(c, http.StatusOK, user, "")
}
