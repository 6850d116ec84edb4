package httpapi

import (
	"context"
	"net/http"
	"strings"

	"github.com/dwikikusuma/storefront/internal/apperr"
	"github.com/golang-jwt/jwt/v5"
)

// Principal identifies a cart/order owner: a registered user (from a bearer
// token) or a guest (from an opaque token). Token issuance lives in the auth
// service; this layer only verifies.
type Principal struct {
	UserID     string
	GuestToken string
	Role       string
}

func (p Principal) IsUser() bool  { return p.UserID != "" }
func (p Principal) IsGuest() bool { return p.UserID == "" && p.GuestToken != "" }
func (p Principal) IsAdmin() bool { return p.Role == "admin" }

// Key is the cart/order ownership key. Registered and guest principals get
// disjoint namespaces so a forged guest token can never alias a user.
func (p Principal) Key() string {
	switch {
	case p.UserID != "":
		return "user:" + p.UserID
	case p.GuestToken != "":
		return "guest:" + p.GuestToken
	default:
		return ""
	}
}

type principalCtxKey struct{}

func principalFrom(ctx context.Context) Principal {
	p, _ := ctx.Value(principalCtxKey{}).(Principal)
	return p
}

// withPrincipal resolves the caller's identity from the Authorization header
// or, failing that, the guest token header. Requests without either proceed
// anonymously; the require* middlewares decide what each route needs.
func (s *Server) withPrincipal(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var p Principal

		if auth := r.Header.Get("Authorization"); strings.HasPrefix(auth, "Bearer ") {
			claims, err := s.parseToken(strings.TrimPrefix(auth, "Bearer "))
			if err != nil {
				s.respondError(w, r, apperr.Unauthorized("invalid or expired token"))
				return
			}
			p = claims
		} else if tok := r.Header.Get("X-Guest-Token"); tok != "" {
			p = Principal{GuestToken: tok}
		}

		ctx := context.WithValue(r.Context(), principalCtxKey{}, p)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *Server) parseToken(raw string) (Principal, error) {
	token, err := jwt.Parse(raw, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, apperr.Unauthorized("unexpected signing method")
		}
		return s.jwtSecret, nil
	})
	if err != nil || !token.Valid {
		return Principal{}, apperr.Unauthorized("invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return Principal{}, apperr.Unauthorized("invalid claims")
	}
	sub, _ := claims["sub"].(string)
	if sub == "" {
		return Principal{}, apperr.Unauthorized("missing subject")
	}
	role, _ := claims["role"].(string)

	return Principal{UserID: sub, Role: role}, nil
}

// requireOwner admits registered users and guests, rejecting anonymous calls.
func (s *Server) requireOwner(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if principalFrom(r.Context()).Key() == "" {
			s.respondError(w, r, apperr.Unauthorized("authentication required"))
			return
		}
		next(w, r)
	}
}

func (s *Server) requireUser(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !principalFrom(r.Context()).IsUser() {
			s.respondError(w, r, apperr.Unauthorized("please sign in"))
			return
		}
		next(w, r)
	}
}

func (s *Server) requireAdmin(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p := principalFrom(r.Context())
		if !p.IsUser() {
			s.respondError(w, r, apperr.Unauthorized("please sign in"))
			return
		}
		if !p.IsAdmin() {
			s.respondError(w, r, apperr.Forbidden("admin role required"))
			return
		}
		next(w, r)
	}
}
