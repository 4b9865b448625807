package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"resumehub/internal/account"
	"resumehub/internal/model"
)

type registerRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
	Role     string `json:"role" binding:"required,accountrole"`
	College  string `json:"college"`
	Company  string `json:"company"`
	Phone    string `json:"phone"`
	Address  string `json:"address"`
	State    string `json:"state"`
	District string `json:"district"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
	Role     string `json:"role" binding:"required,accountrole"`
}

type forgotPasswordRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type resetPasswordRequest struct {
	Password string `json:"password" binding:"required"`
}

type accountURI struct {
	ID string `uri:"id" binding:"required,uuid"`
}

type profileUpdateRequest struct {
	Name     *string `json:"name"`
	Email    *string `json:"email" binding:"omitempty,email"`
	Phone    *string `json:"phone"`
	College  *string `json:"college"`
	Company  *string `json:"company"`
	Address  *string `json:"address"`
	State    *string `json:"state"`
	District *string `json:"district"`
}

func (r profileUpdateRequest) toUpdate() model.AccountUpdate {
	return model.AccountUpdate{
		Name: r.Name, Email: r.Email, Phone: r.Phone, College: r.College,
		Company: r.Company, Address: r.Address, State: r.State, District: r.District,
	}
}

func (h *handler) register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	role, _ := model.ParseRole(req.Role)
	acc, err := h.Accounts.Register(c.Request.Context(), account.RegisterInput{
		Name: req.Name, Email: req.Email, Password: req.Password, Role: role,
		College: req.College, Company: req.Company, Phone: req.Phone,
		Address: req.Address, State: req.State, District: req.District,
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "User registered successfully", "user": acc})
}

func (h *handler) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	role, _ := model.ParseRole(req.Role)
	res, err := h.Accounts.Login(c.Request.Context(), req.Email, req.Password, role)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *handler) forgotPassword(c *gin.Context) {
	var req forgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	if err := h.Accounts.RequestPasswordReset(c.Request.Context(), req.Email); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Reset link sent to your email"})
}

func (h *handler) resetPassword(c *gin.Context) {
	var req resetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	if err := h.Accounts.ResetPassword(c.Request.Context(), c.Param("token"), req.Password); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Password updated successfully"})
}

func (h *handler) listHR(c *gin.Context) {
	list, err := h.Accounts.ListHR(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *handler) listColleges(c *gin.Context) {
	list, err := h.Accounts.ListColleges(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *handler) getProfile(c *gin.Context) {
	var uri accountURI
	if err := c.ShouldBindUri(&uri); err != nil {
		respondBindError(c, err)
		return
	}
	acc, err := h.Accounts.GetProfile(c.Request.Context(), uri.ID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, acc)
}

func (h *handler) updateProfile(c *gin.Context) {
	var uri accountURI
	if err := c.ShouldBindUri(&uri); err != nil {
		respondBindError(c, err)
		return
	}
	var req profileUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	acc, err := h.Accounts.UpdateProfile(c.Request.Context(), uri.ID, req.toUpdate())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, acc)
}
