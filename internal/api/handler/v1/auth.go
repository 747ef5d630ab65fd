package v1

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/eventgate/backend/internal/api/handler/v1/request"
	"github.com/eventgate/backend/internal/api/handler/v1/response"
	"github.com/eventgate/backend/internal/config"
	"github.com/eventgate/backend/internal/domain"
	"github.com/eventgate/backend/internal/pkg/jwthelper"
	"github.com/eventgate/backend/internal/repository"
	"github.com/eventgate/backend/internal/service"
)

// Fixed user-facing login messages, keyed off the auth failure kind.
var (
	errUserNotFound    = errors.New("User not found")
	errInvalidLogin    = errors.New("Invalid email or password")
	errInvalidEmail    = errors.New("Invalid email")
	errMissingPassword = errors.New("Password is required")
	errTooManyAttempts = errors.New("Too many attempts. Try again later")
	errUserBlocked     = errors.New("This user is blocked")
)

type AuthService interface {
	Signup(ctx context.Context, user domain.User) (domain.User, error)
	Login(ctx context.Context, email, password string) (domain.User, error)
	ForgotPassword(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, email, code, newPassword string) error
}

type AuthHandler struct {
	conf *config.APIConfig
	svc  AuthService
}

func NewAuthHandler(conf *config.APIConfig, svc AuthService) *AuthHandler {
	return &AuthHandler{
		conf: conf,
		svc:  svc,
	}
}

// HandleSignup godoc
// @Summary      Signup a new user
// @Tags         auth
// @Produce      json
// @Param        request   body      request.SignupRequest true "request body"
// @Success      201      {object}   domain.User
// @Failure      400      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /auth/signup [post]
func (h *AuthHandler) HandleSignup(ctx *gin.Context) {
	var req request.SignupRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	user, err := h.svc.Signup(ctx.Request.Context(), domain.User{
		Email:    req.Email,
		Password: req.Password,
		Name:     req.Name,
		Role:     req.Role,
		Image:    req.Image,
	})
	if err != nil {
		if errors.Is(err, service.ErrUserEmailExists) {
			response.RenderErr(ctx, response.ErrBadRequest(service.ErrUserEmailExists))
			return
		}

		err = fmt.Errorf("v1.HandleSignup -> h.svc.Signup -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusCreated, user)
}

// HandleLogin godoc
// @Summary      Login a user
// @Tags         auth
// @Produce      json
// @Param        request   body      request.LoginRequest true "request body"
// @Success      200      {object}   response.LoginResponse
// @Failure      401      {object}   response.Err
// @Failure      429      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /auth/login [post]
func (h *AuthHandler) HandleLogin(ctx *gin.Context) {
	req := request.LoginRequest{}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	if err := req.Validate(); err != nil {
		switch {
		case errors.Is(err, request.ErrMissingPassword):
			response.RenderErr(ctx, response.ErrBadRequest(errMissingPassword))
		case errors.Is(err, request.ErrInvalidEmail):
			response.RenderErr(ctx, response.ErrBadRequest(errInvalidEmail))
		default:
			response.RenderErr(ctx, response.ErrBadRequest(err))
		}

		return
	}

	user, err := h.svc.Login(ctx.Request.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUserNotFound):
			response.RenderErr(ctx, response.ErrWrongCredentials(errUserNotFound))
		case errors.Is(err, service.ErrWrongPassword):
			response.RenderErr(ctx, response.ErrWrongCredentials(errInvalidLogin))
		case errors.Is(err, service.ErrUserBlocked):
			response.RenderErr(ctx, response.ErrPermissionDenied(errUserBlocked))
		case errors.Is(err, service.ErrTooManyAttempts):
			response.RenderErr(ctx, response.ErrTooManyRequests(errTooManyAttempts))
		default:
			err = fmt.Errorf("v1.HandleLogin -> h.svc.Login -> %w", err)
			response.RenderErr(ctx, response.ErrInternalServerError(err))
		}

		return
	}

	token, err := jwthelper.GenerateToken([]byte(h.conf.JWTSigningKey), user.ID, ctx.Request.UserAgent())
	if err != nil {
		err = fmt.Errorf("v1.HandleLogin -> jwthelper.GenerateToken -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))

		return
	}

	ctx.JSON(http.StatusOK, response.LoginResponse{
		Token: token,
		User:  user,
	})
}

// HandleForgotPassword godoc
// @Summary      Request a password reset code
// @Tags         auth
// @Produce      json
// @Param        request   body      request.ForgotPasswordRequest true "request body"
// @Success      202
// @Failure      400      {object}   response.Err
// @Failure      503      {object}   response.Err
// @Router       /auth/password/forgot [post]
func (h *AuthHandler) HandleForgotPassword(ctx *gin.Context) {
	var req request.ForgotPasswordRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := h.svc.ForgotPassword(ctx.Request.Context(), req.Email); err != nil {
		if errors.Is(err, repository.ErrAuthCacheUnavailable) {
			response.RenderErr(ctx, response.ErrServiceUnavailable(err))
			return
		}

		err = fmt.Errorf("v1.HandleForgotPassword -> h.svc.ForgotPassword -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	// Always 202, an attacker must not learn whether the email exists.
	ctx.Status(http.StatusAccepted)
}

// HandleResetPassword godoc
// @Summary      Reset password with a one-time code
// @Tags         auth
// @Produce      json
// @Param        request   body      request.ResetPasswordRequest true "request body"
// @Success      200
// @Failure      400      {object}   response.Err
// @Failure      503      {object}   response.Err
// @Router       /auth/password/reset [post]
func (h *AuthHandler) HandleResetPassword(ctx *gin.Context) {
	var req request.ResetPasswordRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	err := h.svc.ResetPassword(ctx.Request.Context(), req.Email, req.Code, req.NewPassword)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidResetCode), errors.Is(err, service.ErrUserNotFound):
			response.RenderErr(ctx, response.ErrBadRequest(service.ErrInvalidResetCode))
		case errors.Is(err, repository.ErrAuthCacheUnavailable):
			response.RenderErr(ctx, response.ErrServiceUnavailable(err))
		default:
			err = fmt.Errorf("v1.HandleResetPassword -> h.svc.ResetPassword -> %w", err)
			response.RenderErr(ctx, response.ErrInternalServerError(err))
		}

		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "password has been reset"})
}
