package walletauth

import (
	"encoding/json"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	apperrors "github.com/lancehub/wallet-sso/pkg/app/errors"
	apphttp "github.com/lancehub/wallet-sso/pkg/app/http"
	"github.com/lancehub/wallet-sso/pkg/session"
	"github.com/lancehub/wallet-sso/pkg/user"
)

// Handler exposes the wallet auth service over HTTP.
type Handler struct {
	svc          Service
	cookieName   string
	cookieSecure bool
	sessionTTL   time.Duration
}

// NewHandler creates a new wallet auth HTTP handler
func NewHandler(svc Service, cookieName string, cookieSecure bool, sessionTTL time.Duration) *Handler {
	if sessionTTL <= 0 {
		sessionTTL = session.DefaultTTL
	}
	return &Handler{
		svc:          svc,
		cookieName:   cookieName,
		cookieSecure: cookieSecure,
		sessionTTL:   sessionTTL,
	}
}

// RegisterRoutes mounts the wallet auth endpoints on the router.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/auth/wallet", apphttp.HandleError(h.requestChallenge))
	r.Post("/auth/wallet", apphttp.HandleError(h.login))
	r.Post("/auth/wallet/logout", apphttp.HandleError(h.logout))
	r.Get("/auth/wallet/me", apphttp.HandleError(h.currentUser))
}

// accountPayload is the client-facing account representation.
type accountPayload struct {
	ID            int64  `json:"id"`
	Email         string `json:"email"`
	FullName      string `json:"full_name"`
	UserType      string `json:"user_type"`
	AvatarURL     string `json:"avatar_url"`
	WalletAddress string `json:"wallet_address"`
}

func toAccountPayload(acct *user.Account) *accountPayload {
	return &accountPayload{
		ID:            acct.ID,
		Email:         acct.Email,
		FullName:      acct.FullName,
		UserType:      string(acct.UserType),
		AvatarURL:     acct.AvatarURL,
		WalletAddress: acct.WalletAddress,
	}
}

type loginResponse struct {
	Message   string          `json:"message"`
	IsNewUser bool            `json:"isNewUser"`
	User      *accountPayload `json:"user"`
}

type messageResponse struct {
	Message string `json:"message"`
}

type currentUserResponse struct {
	User *accountPayload `json:"user"`
}

func (h *Handler) requestChallenge(w http.ResponseWriter, r *http.Request) error {
	address := r.URL.Query().Get("address")

	resp, err := h.svc.RequestChallenge(r.Context(), address)
	if err != nil {
		return err
	}

	apphttp.WriteJSON(w, http.StatusOK, resp)
	return nil
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) error {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return apperrors.BadRequestError(err, "invalid request body")
	}

	result, err := h.svc.VerifyAndLogin(r.Context(), &req, session.RequestMetadata{
		IPAddress: clientIP(r),
		UserAgent: r.UserAgent(),
	})
	if err != nil {
		return err
	}

	h.setSessionCookie(w, result.Token)

	apphttp.WriteJSON(w, http.StatusOK, &loginResponse{
		Message:   "Login successful",
		IsNewUser: result.IsNewUser,
		User:      toAccountPayload(result.Account),
	})
	return nil
}

func (h *Handler) logout(w http.ResponseWriter, r *http.Request) error {
	token, ok := h.sessionToken(r)
	if !ok {
		return apperrors.UnAuthorizedError(session.ErrInvalidToken, "no session token provided")
	}

	if err := h.svc.Logout(r.Context(), token); err != nil {
		return err
	}

	h.clearSessionCookie(w)

	apphttp.WriteJSON(w, http.StatusOK, &messageResponse{Message: "Logged out"})
	return nil
}

func (h *Handler) currentUser(w http.ResponseWriter, r *http.Request) error {
	token, ok := h.sessionToken(r)
	if !ok {
		return apperrors.UnAuthorizedError(session.ErrInvalidToken, "no session token provided")
	}

	acct, err := h.svc.CurrentUser(r.Context(), token)
	if err != nil {
		return err
	}

	apphttp.WriteJSON(w, http.StatusOK, &currentUserResponse{User: toAccountPayload(acct)})
	return nil
}

// sessionToken extracts the session token from the cookie or, failing that,
// a bearer Authorization header.
func (h *Handler) sessionToken(r *http.Request) (string, bool) {
	if c, err := r.Cookie(h.cookieName); err == nil && c.Value != "" {
		return c.Value, true
	}

	header := r.Header.Get("Authorization")
	if token, ok := strings.CutPrefix(header, "Bearer "); ok && token != "" {
		return token, true
	}

	return "", false
}

func (h *Handler) setSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     h.cookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(h.sessionTTL / time.Second),
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *Handler) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     h.cookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

// clientIP prefers the chi RealIP-populated RemoteAddr, stripping any port.
func clientIP(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
