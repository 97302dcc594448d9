// Package session keeps per-browser state: the role token, the guest id and
// the picker snapshots of each surface.
package session

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/tablesideapp/tableside/internal/ordering"
)

const (
	cookieName = "tableside_session"
	ttl        = 24 * time.Hour
)

// Roles carried by backend-issued tokens.
const (
	RoleCustomer = "customer"
	RoleEmployee = "employee"
	RoleAdmin    = "admin"
)

var ErrNoSession = errors.New("no session")

// Data represents the data stored in a session
type Data struct {
	CustomerID   string                       `json:"customer_id,omitempty"`
	GuestID      string                       `json:"guest_id,omitempty"`
	Role         string                       `json:"role,omitempty"`
	AccessToken  string                       `json:"access_token,omitempty"`
	DraftOrderID uuid.UUID                    `json:"draft_order_id"`
	Pickers      map[string]ordering.Snapshot `json:"pickers,omitempty"`
	CreatedAt    int64                        `json:"created_at"`

	id string
}

// Authenticated reports whether a verified token backs the session.
func (d *Data) Authenticated() bool {
	return d != nil && d.AccessToken != ""
}

// HasRole reports whether the session's role is one of roles.
func (d *Data) HasRole(roles ...string) bool {
	if !d.Authenticated() {
		return false
	}
	for _, role := range roles {
		if d.Role == role {
			return true
		}
	}
	return false
}

// Subject identifies who acts on the backend: the customer id when signed in,
// otherwise the guest id.
func (d *Data) Subject() string {
	if d == nil {
		return ""
	}
	if d.CustomerID != "" {
		return d.CustomerID
	}
	return d.GuestID
}

// Picker returns the stored picker snapshot for a surface.
func (d *Data) Picker(surface string) ordering.Snapshot {
	if d == nil || d.Pickers == nil {
		return ordering.Snapshot{}
	}
	return d.Pickers[surface]
}

// SetPicker stores or, for a zero snapshot, drops the snapshot of a surface.
func (d *Data) SetPicker(surface string, snap ordering.Snapshot) {
	if snap.IsZero() {
		delete(d.Pickers, surface)
		return
	}
	if d.Pickers == nil {
		d.Pickers = make(map[string]ordering.Snapshot)
	}
	d.Pickers[surface] = snap
}

// Manager handles session creation, validation, and storage
type Manager struct {
	store  Store
	secure bool
	sealer TokenSealer
}

// TokenSealer encrypts access tokens before they are written to the store.
type TokenSealer interface {
	Seal(plaintext string) (string, error)
	Open(sealed string) (string, error)
}

type Option func(*Manager)

// WithTokenSealer keeps access tokens encrypted at rest.
func WithTokenSealer(sealer TokenSealer) Option {
	return func(m *Manager) {
		m.sealer = sealer
	}
}

// Store defines the interface for session storage
type Store interface {
	Get(ctx context.Context, key string) (*Data, bool)
	Set(ctx context.Context, key string, data *Data, ttl time.Duration)
	Delete(ctx context.Context, key string)
	Close() error
}

// NewManager creates a new session manager
func NewManager(store Store, secure bool, opts ...Option) *Manager {
	m := &Manager{
		store:  store,
		secure: secure,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Manager) Close() error {
	if m == nil || m.store == nil {
		return nil
	}
	return m.store.Close()
}

// CreateSession creates a new session and sets the cookie
func (m *Manager) CreateSession(ctx context.Context, w http.ResponseWriter, data *Data) (*Data, error) {
	if ctx == nil {
		return nil, fmt.Errorf("context is required")
	}
	if data == nil {
		return nil, fmt.Errorf("session data is required")
	}

	sessionData := cloneData(data)
	sessionData.id = generateSessionID()
	sessionData.CreatedAt = time.Now().Unix()
	if err := m.put(ctx, sessionData.id, sessionData); err != nil {
		return nil, err
	}

	http.SetCookie(w, &http.Cookie{
		Name:     cookieName,
		Value:    sessionData.id,
		Path:     "/",
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})

	return sessionData, nil
}

// GetSession retrieves the session data from the request
func (m *Manager) GetSession(ctx context.Context, r *http.Request) (*Data, error) {
	cookie, err := r.Cookie(cookieName)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoSession, err)
	}

	if ctx == nil {
		ctx = r.Context()
	}

	data, ok := m.store.Get(ctx, cookie.Value)
	if !ok {
		return nil, fmt.Errorf("%w: not found or expired", ErrNoSession)
	}

	if time.Now().Unix()-data.CreatedAt > int64(ttl.Seconds()) {
		m.store.Delete(ctx, cookie.Value)
		return nil, fmt.Errorf("%w: expired", ErrNoSession)
	}

	if m.sealer != nil && data.AccessToken != "" {
		token, err := m.sealer.Open(data.AccessToken)
		if err != nil {
			m.store.Delete(ctx, cookie.Value)
			return nil, fmt.Errorf("%w: unreadable token: %v", ErrNoSession, err)
		}
		data.AccessToken = token
	}

	data.id = cookie.Value
	return data, nil
}

// EnsureSession returns the request's session, starting a guest session when
// there is none.
func (m *Manager) EnsureSession(ctx context.Context, w http.ResponseWriter, r *http.Request) (*Data, error) {
	if data := GetSessionFromContext(r.Context()); data != nil {
		return data, nil
	}
	if data, err := m.GetSession(ctx, r); err == nil {
		return data, nil
	}
	return m.CreateSession(ctx, w, &Data{
		GuestID: uuid.NewString(),
		Role:    RoleCustomer,
	})
}

// DestroySession removes the session and clears the cookie
func (m *Manager) DestroySession(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	cookie, err := r.Cookie(cookieName)
	if ctx == nil {
		ctx = r.Context()
	}
	if err == nil {
		m.store.Delete(ctx, cookie.Value)
	}

	http.SetCookie(w, &http.Cookie{
		Name:     cookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})

	return nil
}

// UpdateSession writes data back under its session ID. Sessions loaded or
// created by this manager remember their ID; otherwise the request cookie is used.
func (m *Manager) UpdateSession(ctx context.Context, r *http.Request, data *Data) error {
	if data == nil {
		return fmt.Errorf("session data is required")
	}

	id := data.id
	if id == "" {
		cookie, err := r.Cookie(cookieName)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrNoSession, err)
		}
		id = cookie.Value
	}

	if ctx == nil {
		ctx = r.Context()
	}

	sessionData := cloneData(data)
	sessionData.CreatedAt = time.Now().Unix()
	return m.put(ctx, id, sessionData)
}

// put writes data, sealing its access token when a sealer is configured.
func (m *Manager) put(ctx context.Context, id string, data *Data) error {
	stored := data
	if m.sealer != nil && data.AccessToken != "" {
		sealed, err := m.sealer.Seal(data.AccessToken)
		if err != nil {
			return fmt.Errorf("failed to seal session token: %w", err)
		}
		stored = cloneData(data)
		stored.AccessToken = sealed
	}
	m.store.Set(ctx, id, stored, ttl)
	return nil
}

func generateSessionID() string {
	return uuid.NewString()
}

func cloneData(data *Data) *Data {
	if data == nil {
		return nil
	}
	cloned := *data
	if data.Pickers != nil {
		cloned.Pickers = make(map[string]ordering.Snapshot, len(data.Pickers))
		for surface, snap := range data.Pickers {
			snap.Selection = maps.Clone(snap.Selection)
			cloned.Pickers[surface] = snap
		}
	}
	return &cloned
}
