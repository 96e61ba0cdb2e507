// Package service runs the gate workflows: authentication and enrollment
package service

import (
	"context"
	"strings"

	"ballotgate/internal/core/capture"
	"ballotgate/internal/core/credential"
	"ballotgate/internal/core/facematch"
	"ballotgate/internal/modkit/repokit"
	perr "ballotgate/internal/platform/errors"
	"ballotgate/internal/platform/logger"
	"ballotgate/internal/services/gate/domain"
)

// Service is the gate service contract
type Service interface{ domain.ServicePort }

// Capturer runs one face capture
type Capturer interface {
	Acquire(ctx context.Context, req capture.Request) (capture.Sample, error)
}

// Samples is the face image store
type Samples interface {
	facematch.Opener
	ReferencePath(class, id string) (string, error)
	Commit(handle, class, id string) (string, error)
	Discard(handle string) error
	RemoveReference(class, id string) error
}

// Deps are the collaborators of Svc; all are required except SecretLength
type Deps struct {
	DB           repokit.TxRunner
	Binder       repokit.Binder[domain.Repo]
	Capture      Capturer
	Samples      Samples
	Matcher      *facematch.Matcher
	Hasher       credential.Hasher
	SecretLength int
}

// Svc implements Service
type Svc struct {
	Repo domain.Repo

	db      repokit.TxRunner
	binder  repokit.Binder[domain.Repo]
	capture Capturer
	samples Samples
	match   *facematch.Matcher
	hasher  credential.Hasher
	secretN int
}

// New creates the gate service
func New(d Deps) *Svc {
	switch {
	case d.DB == nil:
		panic("gate.Service requires a non nil TxRunner")
	case d.Binder == nil:
		panic("gate.Service requires a non nil Repo binder")
	case d.Capture == nil || d.Samples == nil:
		panic("gate.Service requires a capturer and a sample store")
	case d.Matcher == nil || d.Hasher == nil:
		panic("gate.Service requires a matcher and a hasher")
	}
	if d.SecretLength <= 0 {
		d.SecretLength = credential.DefaultSecretLength
	}
	return &Svc{
		Repo:    d.Binder.Bind(d.DB),
		db:      d.DB,
		binder:  d.Binder,
		capture: d.Capture,
		samples: d.Samples,
		match:   d.Matcher,
		hasher:  d.Hasher,
		secretN: d.SecretLength,
	}
}

// Authenticate checks id and secret plus a live face against the enrolled reference
// It never writes participant records; the attempt sample is discarded afterwards
func (s *Svc) Authenticate(ctx context.Context, class domain.Class, id, secret string) domain.AuthResult {
	log := logger.C(ctx).With().Str("op", "authenticate").Str("class", class.String()).Logger()

	nid, err := domain.NormalizeID(id)
	if err != nil || !class.Valid() {
		log.Info().Str("reason", string(domain.ReasonNotFound)).Msg("rejected id")
		return domain.AuthResult{Reason: domain.ReasonNotFound}
	}
	log = log.With().Str("participant_id", nid).Logger()

	p, err := s.Repo.FindByID(ctx, class, nid)
	if perr.IsCode(err, perr.ErrorCodeNotFound) {
		log.Info().Msg("participant not found")
		return domain.AuthResult{Reason: domain.ReasonNotFound}
	}
	if err != nil {
		log.Error().Err(err).Msg("record store lookup failed")
		return domain.AuthResult{Reason: domain.ReasonUnavailable}
	}

	sample, err := s.capture.Acquire(ctx, capture.Request{ParticipantID: nid, Class: class.String(), Purpose: capture.PurposeVerify})
	if err != nil {
		st := capture.StateOf(err)
		log.Info().Err(err).Str("state", st.String()).Msg("capture failed")
		return domain.AuthResult{Reason: domain.ReasonCaptureFailed, Detail: captureDetail(err)}
	}
	defer func() {
		if err := s.samples.Discard(sample.Handle); err != nil {
			log.Warn().Err(err).Msg("attempt sample not discarded")
		}
	}()

	res := domain.AuthResult{
		CredentialOK: credential.Verify(secret, p.CredentialHash),
		BiometricOK:  sample.Image != nil && s.match.MatchReference(s.samples, sample.Image, p.ReferenceImage),
	}
	if res.CredentialOK && res.BiometricOK {
		res.Reason = domain.ReasonSuccess
		res.ParticipantID = p.ID
	} else {
		res.Reason = domain.ReasonMismatch
	}
	log.Info().
		Bool("credential_ok", res.CredentialOK).
		Bool("biometric_ok", res.BiometricOK).
		Str("reason", string(res.Reason)).
		Msg("authentication finished")
	return res
}

// Enroll registers a participant with a fresh reference image
// A nil or empty secret is generated; a blank or overlong one is a validation error.
// The secret is returned once in plaintext.
func (s *Svc) Enroll(ctx context.Context, class domain.Class, id, displayName string, secret *string) (domain.EnrollResult, error) {
	if !class.Valid() {
		return domain.EnrollResult{}, perr.WithField(perr.Validationf("unknown class %q", class.String()), "class")
	}
	nid, err := domain.NormalizeID(id)
	if err != nil {
		return domain.EnrollResult{}, err
	}
	name, err := domain.NormalizeName(displayName)
	if err != nil {
		return domain.EnrollResult{}, err
	}
	if err := checkSecret(secret); err != nil {
		return domain.EnrollResult{}, err
	}
	log := logger.C(ctx).With().Str("op", "enroll").Str("class", class.String()).Str("participant_id", nid).Logger()

	// fast path, the primary key settles races below
	if _, err := s.Repo.FindByID(ctx, class, nid); err == nil {
		return domain.EnrollResult{}, domain.ErrDuplicateID
	} else if !perr.IsCode(err, perr.ErrorCodeNotFound) {
		return domain.EnrollResult{}, perr.Wrap(err, perr.ErrorCodeUnavailable, "record store unavailable")
	}

	plain, err := s.secretFor(secret)
	if err != nil {
		return domain.EnrollResult{}, err
	}
	hash, err := s.hasher.Hash(plain)
	if perr.IsCode(err, perr.ErrorCodeValidation) {
		return domain.EnrollResult{}, err
	}
	if err != nil {
		return domain.EnrollResult{}, perr.Wrap(err, perr.ErrorCodeUnknown, "hash secret")
	}
	ref, err := s.samples.ReferencePath(class.String(), nid)
	if err != nil {
		return domain.EnrollResult{}, err
	}

	sample, err := s.capture.Acquire(ctx, capture.Request{ParticipantID: nid, Class: class.String(), Purpose: capture.PurposeEnroll})
	if err != nil {
		log.Info().Err(err).Msg("enrollment capture failed")
		return domain.EnrollResult{}, domain.CaptureFailed(err)
	}

	p := domain.Participant{
		Class:          class,
		ID:             nid,
		DisplayName:    name,
		CredentialHash: hash,
		ReferenceImage: ref,
	}
	committed := false
	err = repokit.WithTx(ctx, s.db, func(q repokit.Queryer) error {
		if err := s.binder.Bind(q).Insert(ctx, p); err != nil {
			return err
		}
		if _, err := s.samples.Commit(sample.Handle, class.String(), nid); err != nil {
			return err
		}
		committed = true
		return nil
	})
	if err != nil {
		s.cleanup(log, sample.Handle, class, nid, committed)
		if perr.IsCode(err, perr.ErrorCodeDuplicateKey) {
			return domain.EnrollResult{}, domain.ErrDuplicateID
		}
		log.Error().Err(err).Msg("enrollment not stored")
		return domain.EnrollResult{}, err
	}

	log.Info().Str("reference", ref).Msg("participant enrolled")
	return domain.EnrollResult{Participant: p, Secret: plain}, nil
}

// cleanup undoes the file side of a failed enrollment
func (s *Svc) cleanup(log logger.Logger, staged string, class domain.Class, id string, committed bool) {
	var err error
	if committed {
		err = s.samples.RemoveReference(class.String(), id)
	} else {
		err = s.samples.Discard(staged)
	}
	if err != nil {
		log.Warn().Err(err).Bool("committed", committed).Msg("enrollment cleanup failed")
	}
}

// checkSecret rejects supplied secrets no hasher would accept
func checkSecret(secret *string) error {
	switch {
	case secret == nil || *secret == "":
		return nil
	case strings.TrimSpace(*secret) == "":
		return perr.WithField(perr.Validationf("secret must not be blank"), "secret")
	case len(*secret) > credential.MaxSecretLen:
		return perr.WithField(perr.Validationf("secret must be at most %d bytes", credential.MaxSecretLen), "secret")
	}
	return nil
}

func (s *Svc) secretFor(secret *string) (string, error) {
	if secret != nil && *secret != "" {
		return *secret, nil
	}
	plain, err := credential.GenerateSecret(s.secretN)
	if err != nil {
		return "", perr.Wrap(err, perr.ErrorCodeUnknown, "generate secret")
	}
	return plain, nil
}

// captureDetail is the terminal capture state shown to the caller
func captureDetail(err error) string {
	if st := capture.StateOf(err); st != capture.Idle {
		return st.String()
	}
	return "device_failure"
}
