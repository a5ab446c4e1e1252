package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/mail"
	"strings"

	"github.com/rblessings/urlradar/internal/identity/service"
	"github.com/rblessings/urlradar/pkg/httpx"
	"github.com/rblessings/urlradar/pkg/slogx"
)

const minPasswordLength = 8

// internalErrorMessage is the only text a 500 ever carries; the cause is
// logged server side.
const internalErrorMessage = "An unexpected error occurred. Please try again later."

// UsersHandler serves the user registry endpoints.
type UsersHandler struct {
	UserService *service.UserService
}

type registerUserRequest struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Password  string `json:"password"`
}

func (req registerUserRequest) validate() error {
	if strings.TrimSpace(req.FirstName) == "" {
		return errors.New("firstName must not be blank")
	}
	if strings.TrimSpace(req.LastName) == "" {
		return errors.New("lastName must not be blank")
	}
	if strings.TrimSpace(req.Email) == "" {
		return errors.New("email must not be blank")
	}
	if _, err := mail.ParseAddress(strings.TrimSpace(req.Email)); err != nil {
		return errors.New("email must be a well-formed email address")
	}
	if len(req.Password) < minPasswordLength {
		return fmt.Errorf("password must be at least %d characters long", minPasswordLength)
	}
	return nil
}

// HandleRegister creates a new user identity.
func (h *UsersHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req registerUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteEnvelope(w, httpx.Error(http.StatusBadRequest, "request body must be valid JSON"))
		return
	}
	if err := req.validate(); err != nil {
		httpx.WriteEnvelope(w, httpx.Error(http.StatusBadRequest, err.Error()))
		return
	}

	view, err := h.UserService.Register(ctx, service.RegisterUserRequest{
		FirstName: strings.TrimSpace(req.FirstName),
		LastName:  strings.TrimSpace(req.LastName),
		Email:     req.Email,
		Password:  req.Password,
	})
	if err != nil {
		var inUse *service.EmailInUseError
		if errors.As(err, &inUse) {
			httpx.WriteEnvelope(w, httpx.Error(http.StatusBadRequest, inUse.Error()))
			return
		}
		log.Error("user registration failed", "err", err)
		httpx.WriteEnvelope(w, httpx.Error(http.StatusInternalServerError, internalErrorMessage))
		return
	}

	w.Header().Set("Location", "/api/v1/users/"+view.ID)
	httpx.WriteEnvelope(w, httpx.Success(http.StatusCreated, view))
}

// HandleGetByID returns a user by id.
func (h *UsersHandler) HandleGetByID(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	id := r.PathValue("id")
	if id == "" {
		httpx.WriteEnvelope(w, httpx.Error(http.StatusBadRequest, "id must not be blank"))
		return
	}

	view, err := h.UserService.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			httpx.WriteEnvelope(w, httpx.Error(http.StatusNotFound,
				fmt.Sprintf("User with ID %s not found", id)))
			return
		}
		log.Error("user lookup failed", "user_id", id, "err", err)
		httpx.WriteEnvelope(w, httpx.Error(http.StatusInternalServerError, internalErrorMessage))
		return
	}

	httpx.WriteEnvelope(w, httpx.Success(http.StatusOK, view))
}
