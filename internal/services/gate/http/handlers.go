// Package http provides the gate HTTP transport
package http

import (
	stdhttp "net/http"
	"sync"
	"time"

	"ballotgate/internal/core/capture"
	"ballotgate/internal/modkit/httpkit"
	perr "ballotgate/internal/platform/errors"
	pnet "ballotgate/internal/platform/net"
	"ballotgate/internal/platform/net/http/bind"
	"ballotgate/internal/platform/net/middleware"
	"ballotgate/internal/services/gate/domain"
	svc "ballotgate/internal/services/gate/service"
)

// Landing routes a successful login redirects to
const (
	ElectorLanding    = "/lets-vote"
	ContestantLanding = "/contestants/dashboard"
)

// Tickets issues admission tickets after a successful login
type Tickets interface {
	Issue(p pnet.Principal) (string, time.Time, error)
}

var registerTags sync.Once

// Register mounts the gate endpoints; auth guards the landing routes
func Register(r httpkit.Router, s svc.Service, t Tickets, auth middleware.AuthPort) {
	registerTags.Do(func() {
		_ = bind.RegisterValidation("participant_id", "{0} may only contain letters, digits, '-', '_' and '.'", func(fl bind.FieldLevel) bool {
			_, err := domain.NormalizeID(fl.Field().String())
			return err == nil
		})
	})

	for _, c := range domain.Classes {
		h := &handlers{svc: s, tickets: t, class: c}
		base := "/" + c.String() + "s"
		httpkit.PostJSON[domain.RegisterInput](r, base+"/register", h.register)
		httpkit.PostJSON[domain.LoginInput](r, base+"/login", h.login)
	}

	httpkit.ProtectedFor(r, auth, []string{domain.ClassElector.String()}, func(pr httpkit.Router) {
		httpkit.Get(pr, ElectorLanding, landing("lets-vote"))
	})
	httpkit.ProtectedFor(r, auth, []string{domain.ClassContestant.String()}, func(pr httpkit.Router) {
		httpkit.Get(pr, ContestantLanding, landing("contestant-dashboard"))
	})
}

type handlers struct {
	svc     svc.Service
	tickets Tickets
	class   domain.Class
}

// swagger:route POST /electors/register Gate electorRegister
// @Summary Enroll a participant with a live face capture
// @Tags Gate
// @Accept json
// @Produce json
// @Param payload body domain.RegisterInput true "Participant"
// @Success 201 {object} domain.RegisterOutput "enrolled; secret is shown once"
// @Failure 409 {object} httpkit.Envelope "id already enrolled"
// @Failure 422 {object} httpkit.Envelope "capture failed"
// @Router /electors/register [post]
func (h *handlers) register(r *stdhttp.Request, in domain.RegisterInput) (any, error) {
	res, err := h.svc.Enroll(r.Context(), h.class, in.ID, in.Name, in.Secret)
	if err != nil {
		if perr.IsCode(err, perr.ErrorCodeCapture) {
			return httpkit.ErrorWith(err, map[string]string{"detail": detail(err)}), nil
		}
		return nil, err
	}
	return httpkit.Created(domain.RegisterOutput{
		Class:  res.Participant.Class,
		ID:     res.Participant.ID,
		Name:   res.Participant.DisplayName,
		Secret: res.Secret,
	}), nil
}

// swagger:route POST /electors/login Gate electorLogin
// @Summary Authenticate with secret and live face
// @Tags Gate
// @Accept json
// @Produce json
// @Param payload body domain.LoginInput true "Credentials"
// @Success 200 {object} domain.LoginOutput "admitted"
// @Failure 401 {object} httpkit.Envelope "authentication failed"
// @Router /electors/login [post]
func (h *handlers) login(r *stdhttp.Request, in domain.LoginInput) (any, error) {
	res := h.svc.Authenticate(r.Context(), h.class, in.ID, in.Secret)
	out := domain.LoginOutput{Reason: res.Reason, Detail: res.Detail}

	switch res.Reason {
	case domain.ReasonSuccess:
	case domain.ReasonUnavailable:
		return httpkit.ErrorWith(perr.Unavailablef("authentication unavailable"), out), nil
	default:
		return httpkit.ErrorWith(perr.Unauthorizedf("authentication failed"), out), nil
	}

	tok, exp, err := h.tickets.Issue(pnet.Principal{Subject: res.ParticipantID, Class: h.class.String()})
	if err != nil {
		return nil, err
	}
	out.Ticket = tok
	out.ExpiresAt = &exp
	out.Redirect = ElectorLanding
	if h.class == domain.ClassContestant {
		out.Redirect = ContestantLanding
	}
	return out, nil
}

// landing serves a protected page for the principal on the request
func landing(page string) func(*stdhttp.Request) (any, error) {
	return func(r *stdhttp.Request) (any, error) {
		pr, err := httpkit.Who(r)
		if err != nil {
			return nil, err
		}
		return domain.Page{Page: page, Class: domain.Class(pr.Class), Participant: pr.Subject}, nil
	}
}

func detail(err error) string {
	if st := capture.StateOf(err); st != capture.Idle {
		return st.String()
	}
	return capture.DeviceFailure.String()
}
