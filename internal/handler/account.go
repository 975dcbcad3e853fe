package handler

import (
	"net/http"

	"github.com/sportlink-dev/sportlink/internal/domain"
	"github.com/sportlink-dev/sportlink/internal/errors"
	"github.com/sportlink-dev/sportlink/internal/middleware"
	"github.com/sportlink-dev/sportlink/internal/utils"
)

type registerRequest struct {
	Email    string         `validate:"required" json:"email"`
	Password string         `validate:"required" json:"password"`
	Profile  domain.Profile `json:"profile"`
}

type credentials struct {
	Email    string `validate:"required" json:"email"`
	Password string `validate:"required" json:"password"`
}

type verifyEmailRequest struct {
	Token string `validate:"required" json:"token"`
	Email string `validate:"required" json:"email"`
}

type emailRequest struct {
	Email string `validate:"required" json:"email"`
}

type resetPasswordRequest struct {
	Token    string `validate:"required" json:"token"`
	Email    string `validate:"required" json:"email"`
	Password string `validate:"required" json:"password"`
	Confirm  string `validate:"required" json:"confirm"`
}

type messageResponse struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := utils.DecodeValidate(r.Body, &req); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	account, err := h.accounts.Register(req.Email, req.Password, req.Profile)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	utils.WriteJSONStatus(w, http.StatusCreated, struct {
		Account  domain.PublicAccount `json:"account"`
		NextStep string               `json:"nextStep"`
	}{account, errors.CodeVerificationRequired})
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var creds credentials
	if err := utils.DecodeValidate(r.Body, &creds); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	account, accessToken, err := h.accounts.Login(creds.Email, creds.Password)
	if err != nil {
		// The unverified case echoes the email back so the caller can offer
		// a resend; it is the only failure class that does.
		if e, ok := err.(*errors.ErrorWithStatusCode); ok && e.Code == errors.CodeEmailNotVerified {
			utils.WriteJSONStatus(w, e.StatusCode, struct {
				Message string `json:"message"`
				Code    string `json:"code"`
				Email   string `json:"email"`
			}{e.Message, e.Code, creds.Email})
			return
		}
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	cookie := &http.Cookie{
		Path:     "/",
		Name:     "accessToken",
		Value:    accessToken,
		MaxAge:   int(h.cfg.SessionTTL().Seconds()),
		HttpOnly: true,
		Secure:   h.cfg.Public.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	}
	http.SetCookie(w, cookie)

	utils.WriteJSON(w, struct {
		Account     domain.PublicAccount `json:"account"`
		AccessToken string               `json:"accessToken"`
	}{account, accessToken})
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	cookie := &http.Cookie{
		Path:     "/",
		Name:     "accessToken",
		Value:    "",
		MaxAge:   -1,
		HttpOnly: true,
	}
	http.SetCookie(w, cookie)

	w.WriteHeader(http.StatusOK)
}

func (h *Handler) VerifyEmail(w http.ResponseWriter, r *http.Request) {
	var req verifyEmailRequest
	if err := utils.DecodeValidate(r.Body, &req); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	code, err := h.accounts.VerifyEmail(req.Email, req.Token)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	message := "Email verified, you can log in now"
	if code == errors.CodeAlreadyVerified {
		message = "Email is already verified"
	}
	utils.WriteJSON(w, messageResponse{Message: message, Code: code})
}

func (h *Handler) ResendVerification(w http.ResponseWriter, r *http.Request) {
	var req emailRequest
	if err := utils.DecodeValidate(r.Body, &req); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	if err := h.accounts.ResendVerification(req.Email); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	utils.WriteJSON(w, messageResponse{Message: "Verification email sent"})
}

func (h *Handler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req emailRequest
	if err := utils.DecodeValidate(r.Body, &req); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	if err := h.accounts.ForgotPassword(req.Email); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	// Byte-for-byte identical whether or not the account exists.
	utils.WriteJSON(w, messageResponse{Message: "If an account exists for this address, password reset instructions have been sent"})
}

func (h *Handler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req resetPasswordRequest
	if err := utils.DecodeValidate(r.Body, &req); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	if err := h.accounts.ResetPassword(req.Email, req.Token, req.Password, req.Confirm); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	utils.WriteJSON(w, messageResponse{Message: "Password updated, you can log in now"})
}

// Me returns the public account of the authenticated caller.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	session := middleware.GetSessionFromContext(r)
	if session == nil {
		http.Error(w, "Please sign in", http.StatusUnauthorized)
		return
	}

	utils.WriteJSON(w, struct {
		Id       domain.AccountId `json:"id"`
		Email    string           `json:"email"`
		Verified bool             `json:"verified"`
		Admin    bool             `json:"admin"`
	}{session.AccountId, session.Email, session.Verified, session.Admin})
}
