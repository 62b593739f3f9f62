package rest

import (
	"net/http"
	"strings"

	"github.com/dmitrijs2005/rentfinder/internal/server/access"
	"github.com/dmitrijs2005/rentfinder/internal/server/models"
	"github.com/dmitrijs2005/rentfinder/internal/server/services"
	"github.com/dmitrijs2005/rentfinder/internal/server/sessions"
)

type registerResponse struct {
	Account  *models.Account `json:"account"`
	Redirect string          `json:"redirect"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type forgotPasswordRequest struct {
	Email string `json:"email"`
}

type resetPasswordRequest struct {
	Token    string `json:"token"`
	Password string `json:"password"`
}

func (s *HTTPServer) health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "OK"})
}

func (s *HTTPServer) areas(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, models.Areas)
}

// register takes a multipart form: name, email, password, role and an
// optional photo file, which owners must send.
func (s *HTTPServer) register(w http.ResponseWriter, r *http.Request) {
	if err := parseMultipart(w, r); err != nil {
		s.fail(w, r, err)
		return
	}
	photos, err := openUploads(r, "photo")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	defer photos.Close()

	in := services.SignUpInput{
		Name:     r.FormValue("name"),
		Email:    r.FormValue("email"),
		Password: r.FormValue("password"),
		Role:     r.FormValue("role"),
	}
	if len(photos.files) > 0 {
		in.Photo = &photos.files[0]
	}

	account, err := s.identity.SignUp(r.Context(), in)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	s.logger.Info(r.Context(), "Registered", "account_id", account.ID)
	respondJSON(w, http.StatusCreated, registerResponse{Account: account, Redirect: access.RouteLogin})
}

func (s *HTTPServer) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		s.fail(w, r, err)
		return
	}

	res, err := s.identity.SignIn(r.Context(), req.Email, req.Password)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, res)
}

func (s *HTTPServer) logout(w http.ResponseWriter, r *http.Request) {
	if err := s.identity.SignOut(r.Context(), sessions.FromContext(r.Context())); err != nil {
		s.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, redirectResponse{Redirect: access.RouteLogin})
}

func (s *HTTPServer) refresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := decodeJSON(r, &req); err != nil {
		s.fail(w, r, err)
		return
	}

	pair, err := s.identity.Refresh(r.Context(), strings.TrimSpace(req.RefreshToken))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, pair)
}

func (s *HTTPServer) forgotPassword(w http.ResponseWriter, r *http.Request) {
	var req forgotPasswordRequest
	if err := decodeJSON(r, &req); err != nil {
		s.fail(w, r, err)
		return
	}

	if err := s.identity.ResetPassword(r.Context(), req.Email); err != nil {
		s.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, messageResponse{Message: "Password reset email sent. Check your inbox."})
}

func (s *HTTPServer) resetPassword(w http.ResponseWriter, r *http.Request) {
	var req resetPasswordRequest
	if err := decodeJSON(r, &req); err != nil {
		s.fail(w, r, err)
		return
	}

	if err := s.identity.ConfirmReset(r.Context(), req.Token, req.Password); err != nil {
		s.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, messageResponse{Message: "Password updated", Redirect: access.RouteLogin})
}
