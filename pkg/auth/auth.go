// Package auth resolves request identity for the workspace. Sign-in is
// email based and gated to an allowlist of company domains; requests
// without an identity header run as the shared demo user so the workspace
// stays usable out of the box.
package auth

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/EdnaValter/Tracknamic-AI-Lab/pkg/logger"
	"github.com/EdnaValter/Tracknamic-AI-Lab/pkg/models"
	"github.com/EdnaValter/Tracknamic-AI-Lab/pkg/store"
	"github.com/EdnaValter/Tracknamic-AI-Lab/pkg/utils"
)

// DefaultAllowedDomains gates sign-in when no domains are configured.
var DefaultAllowedDomains = []string{"tracknamic.com", "tracknamic.ai"}

// Demo user served when a request carries no identity header.
const (
	DemoEmail = "casey@tracknamic.com"
	DemoName  = "Casey Demo"
)

// IdentityHeader names the request header carrying the caller's email.
const IdentityHeader = "X-User-Email"

// Service manages user records and request identity resolution.
type Service struct {
	snap    *store.Snapshot
	domains []string
}

// NewService builds a Service and ensures the demo user exists. domains
// may be nil to use DefaultAllowedDomains.
func NewService(snap *store.Snapshot, domains []string) (*Service, error) {
	if len(domains) == 0 {
		domains = DefaultAllowedDomains
	}
	s := &Service{snap: snap, domains: domains}
	if _, ok := snap.GetUser(DemoEmail); !ok {
		demo := models.User{
			ID:        utils.GenUserID(),
			Name:      DemoName,
			Email:     DemoEmail,
			CreatedTS: time.Now().UTC().UnixNano(),
		}
		if err := snap.SaveUser(demo); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Login signs a user in by email. The email's domain must be on the
// allowlist; first-time users get a record named after the given display
// name, or one derived from the local part when name is empty.
func (s *Service) Login(email, name string) (models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || !strings.Contains(email, "@") {
		return models.User{}, fmt.Errorf("%w: a valid email is required", store.ErrValidation)
	}
	if !s.domainAllowed(email) {
		return models.User{}, fmt.Errorf("%w: email domain is not allowed", store.ErrValidation)
	}
	if u, ok := s.snap.GetUser(email); ok {
		return u, nil
	}
	name = strings.TrimSpace(name)
	if name == "" {
		name = deriveName(email)
	}
	u := models.User{
		ID:        utils.GenUserID(),
		Name:      name,
		Email:     email,
		CreatedTS: time.Now().UTC().UnixNano(),
	}
	if err := s.snap.SaveUser(u); err != nil {
		return models.User{}, err
	}
	logger.Log.Info("user_created", "id", u.ID, "email", u.Email)
	return u, nil
}

// CurrentUser resolves the caller of a request. An unknown or missing
// identity header falls back to the demo user.
func (s *Service) CurrentUser(r *http.Request) models.User {
	email := strings.ToLower(strings.TrimSpace(r.Header.Get(IdentityHeader)))
	if email != "" && s.domainAllowed(email) {
		if u, ok := s.snap.GetUser(email); ok {
			return u
		}
		if u, err := s.Login(email, ""); err == nil {
			return u
		}
	}
	u, _ := s.snap.GetUser(DemoEmail)
	return u
}

func (s *Service) domainAllowed(email string) bool {
	at := strings.LastIndex(email, "@")
	if at < 0 {
		return false
	}
	domain := email[at+1:]
	for _, d := range s.domains {
		if strings.EqualFold(domain, d) {
			return true
		}
	}
	return false
}

// deriveName turns the email local part into a display name:
// "jane.doe" -> "Jane Doe".
func deriveName(email string) string {
	local := email[:strings.Index(email, "@")]
	fields := strings.FieldsFunc(local, func(r rune) bool {
		return r == '.' || r == '_' || r == '-' || r == '+'
	})
	if len(fields) == 0 {
		return local
	}
	for i, f := range fields {
		fields[i] = strings.ToUpper(f[:1]) + f[1:]
	}
	return strings.Join(fields, " ")
}
