package web

import (
	"net/http"

	"golang.org/x/crypto/bcrypt"
)

// authUser is the fixed basic auth user name, only the password is configurable
const authUser = "organizer"

// authMiddleware checks basic auth credentials against the configured bcrypt hash
func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		username, password, ok := r.BasicAuth()
		if ok && username == authUser {
			if err := bcrypt.CompareHashAndPassword([]byte(s.passwordHash), []byte(password)); err == nil {
				next.ServeHTTP(w, r)
				return
			}
		}

		w.Header().Set("WWW-Authenticate", `Basic realm="Organizer"`)
		s.writeJSONError(w, http.StatusUnauthorized, "unauthorized")
	})
}
