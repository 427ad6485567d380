package controllers

import (
	"github.com/nutrieve/nutrieve/app/services"
	"github.com/nutrieve/nutrieve/pkg/ctx"
)

// forgotPasswordMessage is sent whether or not the email is registered.
const forgotPasswordMessage = "If the email is registered, a reset code has been sent"

type AuthController struct {
	service *services.AuthService
}

func NewAuthController(s *services.AuthService) *AuthController {
	return &AuthController{service: s}
}

// Signup handles POST /api/auth/signup.
func (a *AuthController) Signup(c *ctx.Context) {
	var in services.SignupInput
	if !c.BindJSON(&in) {
		return
	}
	res, err := a.service.Signup(c.Context(), in)
	if err != nil {
		fail(c, err)
		return
	}
	c.Created(res)
}

// Login handles POST /api/auth/login.
func (a *AuthController) Login(c *ctx.Context) {
	var in services.LoginInput
	if !c.BindJSON(&in) {
		return
	}
	res, err := a.service.Login(c.Context(), in)
	if err != nil {
		fail(c, err)
		return
	}
	c.Success(res)
}

// Me handles GET /api/auth/me.
func (a *AuthController) Me(c *ctx.Context) {
	user, err := a.service.Me(c.Context(), c.UserID())
	if err != nil {
		fail(c, err)
		return
	}
	c.Success(user)
}

func (a *AuthController) ForgotPassword(c *ctx.Context) {
	var in services.ForgotPasswordInput
	if !c.BindJSON(&in) {
		return
	}
	if err := a.service.ForgotPassword(c.Context(), in); err != nil {
		fail(c, err)
		return
	}
	c.SuccessMessage(forgotPasswordMessage)
}

func (a *AuthController) ResetPassword(c *ctx.Context) {
	var in services.ResetPasswordInput
	if !c.BindJSON(&in) {
		return
	}
	if err := a.service.ResetPassword(c.Context(), in); err != nil {
		fail(c, err)
		return
	}
	c.SuccessMessage("Password has been reset")
}
