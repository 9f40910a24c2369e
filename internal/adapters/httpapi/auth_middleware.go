package httpapi

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"github.com/giftflow/giftflow-api/internal/domain"
	"github.com/giftflow/giftflow-api/internal/ports/out/ledgerstore"
)

// unauthenticated endpoints used by infra checks and scrapers.
func isOpenPath(path string) bool {
	return path == "/healthz" || path == "/metrics"
}

// NewAuthMiddleware enforces Authorization: Basic <credentials> for all
// API endpoints. Credentials are checked against the ledger's member
// records; deactivated members are rejected.
//
// On success, the authenticated member's Identity is stored in request
// context.
func NewAuthMiddleware(ledger *ledgerstore.Handle, log *logrus.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if isOpenPath(r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}

			username, password, ok := r.BasicAuth()
			if !ok {
				w.Header().Set("WWW-Authenticate", `Basic realm="giftflow"`)
				writeError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "missing or malformed Authorization header", nil)
				return
			}

			member, ok, err := lookupMember(r, ledger, username)
			if err != nil {
				writeAppError(w, r, log, err)
				return
			}
			if !ok || !member.IsActive {
				writeError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "invalid credentials", nil)
				return
			}
			if bcrypt.CompareHashAndPassword([]byte(member.PasswordHash), []byte(password)) != nil {
				writeError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "invalid credentials", nil)
				return
			}

			id := domain.Identity{MemberID: member.ID, Admin: member.Admin}
			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id)))
		})
	}
}

func lookupMember(r *http.Request, ledger *ledgerstore.Handle, username string) (domain.Member, bool, error) {
	var (
		member domain.Member
		found  bool
	)
	err := ledger.View(r.Context(), func(doc *ledgerstore.Document) error {
		want := strings.ToLower(strings.TrimSpace(username))
		for _, m := range doc.Members {
			if m.Username == want {
				member = m
				found = true
				return nil
			}
		}
		return nil
	})
	return member, found, err
}

// NewDevAuthMiddleware is a local/dev-only auth shim.
//
// It accepts an explicit member id via X-Debug-Member and stores the
// matching Identity in request context. If the header is absent, it falls
// back to defaultMemberID (if nonzero).
//
// This is intended for local workflows where seeding credentials is
// overkill. Do NOT use this in production deployments.
func NewDevAuthMiddleware(ledger *ledgerstore.Handle, defaultMemberID domain.MemberID, log *logrus.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if isOpenPath(r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}

			memberID := defaultMemberID
			if raw := strings.TrimSpace(r.Header.Get("X-Debug-Member")); raw != "" {
				n, err := strconv.ParseInt(raw, 10, 64)
				if err != nil {
					writeError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "invalid X-Debug-Member header", nil)
					return
				}
				memberID = domain.MemberID(n)
			}
			if memberID == 0 {
				writeError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "missing member (set X-Debug-Member)", nil)
				return
			}

			var member domain.Member
			found := false
			err := ledger.View(r.Context(), func(doc *ledgerstore.Document) error {
				if i := doc.MemberByID(memberID); i >= 0 {
					member = doc.Members[i]
					found = true
				}
				return nil
			})
			if err != nil {
				writeAppError(w, r, log, err)
				return
			}
			if !found {
				writeError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "unknown member", nil)
				return
			}

			id := domain.Identity{MemberID: member.ID, Admin: member.Admin}
			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id)))
		})
	}
}
