package usecase

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/Redabouizer/crealik-auth/internal/core/domain"
	"github.com/Redabouizer/crealik-auth/internal/core/port"
	"github.com/Redabouizer/crealik-auth/internal/repository"
)

type testAccount struct {
	uid         string
	password    string
	displayName string
	methods     []string
}

// testIdentityProvider is an in-memory stand-in for the external provider.
type testIdentityProvider struct {
	mu       sync.Mutex
	accounts map[string]*testAccount
	nextUID  int

	createErr       error
	authenticateErr error
	signedOut       []string
	updated         map[string]string
}

func newTestIdentityProvider() *testIdentityProvider {
	return &testIdentityProvider{
		accounts: make(map[string]*testAccount),
		updated:  make(map[string]string),
	}
}

func (p *testIdentityProvider) seed(email, password string, methods ...string) string {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.nextUID++
	uid := fmt.Sprintf("uid-%d", p.nextUID)
	p.accounts[email] = &testAccount{uid: uid, password: password, methods: methods}
	return uid
}

func (p *testIdentityProvider) CreateAccount(_ context.Context, email, password, displayName string) (*port.Identity, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.createErr != nil {
		return nil, p.createErr
	}
	if _, ok := p.accounts[email]; ok {
		return nil, &port.ProviderError{Code: "auth/email-already-in-use"}
	}

	p.nextUID++
	uid := fmt.Sprintf("uid-%d", p.nextUID)
	p.accounts[email] = &testAccount{
		uid:         uid,
		password:    password,
		displayName: displayName,
		methods:     []string{port.SignInMethodPassword},
	}

	return &port.Identity{
		UID:         uid,
		Email:       email,
		DisplayName: displayName,
		Token:       "token-" + uid,
	}, nil
}

func (p *testIdentityProvider) Authenticate(_ context.Context, email, password string) (*port.Identity, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.authenticateErr != nil {
		return nil, p.authenticateErr
	}

	account, ok := p.accounts[email]
	if !ok {
		return nil, &port.ProviderError{Code: "auth/user-not-found"}
	}
	if account.password != password {
		return nil, &port.ProviderError{Code: "auth/wrong-password"}
	}

	return &port.Identity{
		UID:         account.uid,
		Email:       email,
		DisplayName: account.displayName,
		Token:       "token-" + account.uid,
	}, nil
}

func (p *testIdentityProvider) UpdatePassword(_ context.Context, email, newPassword string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	account, ok := p.accounts[email]
	if !ok {
		return &port.ProviderError{Code: "auth/user-not-found"}
	}
	account.password = newPassword
	p.updated[email] = newPassword
	return nil
}

func (p *testIdentityProvider) SignInMethods(_ context.Context, email string) ([]string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	account, ok := p.accounts[email]
	if !ok {
		return nil, nil
	}
	return append([]string(nil), account.methods...), nil
}

func (p *testIdentityProvider) SignOut(_ context.Context, token string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.signedOut = append(p.signedOut, token)
	return nil
}

// testProfileRepo keeps profiles in a map keyed by UID.
type testProfileRepo struct {
	mu       sync.Mutex
	profiles map[string]domain.Profile
}

func newTestProfileRepo() *testProfileRepo {
	return &testProfileRepo{profiles: make(map[string]domain.Profile)}
}

func (r *testProfileRepo) Upsert(_ context.Context, profile domain.Profile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.profiles[profile.UID] = profile
	return nil
}

func (r *testProfileRepo) GetByUID(_ context.Context, uid string) (*domain.Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if profile, ok := r.profiles[uid]; ok {
		copy := profile
		return &copy, nil
	}
	return nil, repository.ErrNotFound
}

func (r *testProfileRepo) GetByEmail(_ context.Context, email string) (*domain.Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, profile := range r.profiles {
		if strings.EqualFold(profile.Email, email) {
			copy := profile
			return &copy, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *testProfileRepo) IsComplete(_ context.Context, uid string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if profile, ok := r.profiles[uid]; ok {
		return profile.ProfileComplete, nil
	}
	return false, nil
}

// testSessionStore keeps sessions keyed by raw token.
type testSessionStore struct {
	mu       sync.Mutex
	sessions map[string]domain.Session
}

func newTestSessionStore() *testSessionStore {
	return &testSessionStore{sessions: make(map[string]domain.Session)}
}

func (s *testSessionStore) Put(_ context.Context, session domain.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.Token] = session
	return nil
}

func (s *testSessionStore) Get(_ context.Context, token string) (*domain.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if session, ok := s.sessions[token]; ok {
		copy := session
		return &copy, nil
	}
	return nil, repository.ErrNotFound
}

func (s *testSessionStore) Delete(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, token)
	return nil
}

// testVerificationStore appends codes per purpose and address, newest last.
type testVerificationStore struct {
	mu    sync.Mutex
	codes map[string][]domain.VerificationCode
}

func newTestVerificationStore() *testVerificationStore {
	return &testVerificationStore{codes: make(map[string][]domain.VerificationCode)}
}

func (s *testVerificationStore) Append(_ context.Context, code domain.VerificationCode, _ time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := string(code.Purpose) + ":" + strings.ToLower(code.Email)
	s.codes[key] = append(s.codes[key], code)
	return nil
}

func (s *testVerificationStore) Latest(_ context.Context, purpose domain.VerificationPurpose, email string) (*domain.VerificationCode, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := string(purpose) + ":" + strings.ToLower(email)
	history := s.codes[key]
	if len(history) == 0 {
		return nil, repository.ErrNotFound
	}
	copy := history[len(history)-1]
	return &copy, nil
}

// testPublisher records published events and can be told to fail.
type testPublisher struct {
	mu sync.Mutex

	issueErr error

	codeIssued      []domain.CodeIssuedEvent
	userRegistered  []domain.UserRegisteredEvent
	logins          []domain.LoginEvent
	passwordChanges []domain.PasswordChangedEvent
	sessionsEnded   []domain.SessionEndedEvent
}

func newTestPublisher() *testPublisher {
	return &testPublisher{}
}

func (p *testPublisher) PublishCodeIssued(_ context.Context, event domain.CodeIssuedEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.issueErr != nil {
		return p.issueErr
	}
	p.codeIssued = append(p.codeIssued, event)
	return nil
}

func (p *testPublisher) PublishUserRegistered(_ context.Context, event domain.UserRegisteredEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.userRegistered = append(p.userRegistered, event)
	return nil
}

func (p *testPublisher) PublishLogin(_ context.Context, event domain.LoginEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.logins = append(p.logins, event)
	return nil
}

func (p *testPublisher) PublishPasswordChanged(_ context.Context, event domain.PasswordChangedEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.passwordChanges = append(p.passwordChanges, event)
	return nil
}

func (p *testPublisher) PublishSessionEnded(_ context.Context, event domain.SessionEndedEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sessionsEnded = append(p.sessionsEnded, event)
	return nil
}
