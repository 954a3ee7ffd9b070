package admin

import (
	"context"
	"sync"
	"time"

	"github.com/upb/seo-audit-console/models"
	"github.com/upb/seo-audit-console/services"
	"go.uber.org/zap"
)

// OverviewFetcher loads the per-user rollup from the audit backend
type OverviewFetcher interface {
	GetAdminUsersOverview(ctx context.Context) ([]models.AdminUserOverview, error)
}

// PrivilegeChecker decides whether the current credential is the admin
type PrivilegeChecker interface {
	IsPrivileged(adminEmail string) bool
}

// State is what the admin view renders
type State struct {
	Open      bool                       `json:"open"`
	Loading   bool                       `json:"loading"`
	Error     string                     `json:"error,omitempty"`
	Items     []models.AdminUserOverview `json:"items"`
	FetchedAt *time.Time                 `json:"fetched_at,omitempty"`
}

// RenderFunc is called each time a fetch result is applied
type RenderFunc func(State)

// Panel is the read-only admin aggregation view. Every open starts a fresh
// fetch tagged with a new epoch; a response whose epoch is no longer current
// is dropped.
type Panel struct {
	fetcher    OverviewFetcher
	privileges PrivilegeChecker
	adminEmail string
	logger     *zap.Logger

	mu      sync.Mutex
	epoch   uint64
	cancel  context.CancelFunc
	state   State
	renders []RenderFunc
}

// NewPanel creates a closed panel
func NewPanel(fetcher OverviewFetcher, privileges PrivilegeChecker, adminEmail string, logger *zap.Logger) *Panel {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Panel{
		fetcher:    fetcher,
		privileges: privileges,
		adminEmail: adminEmail,
		logger:     logger.Named("admin_panel"),
		state:      State{Items: []models.AdminUserOverview{}},
	}
}

// OnRender registers a render callback
func (p *Panel) OnRender(fn RenderFunc) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.renders = append(p.renders, fn)
}

// Privileged reports whether the current credential may open the panel
func (p *Panel) Privileged() bool {
	return p.adminEmail != "" && p.privileges.IsPrivileged(p.adminEmail)
}

// Open enters the admin context and starts a fetch. Opening an open panel
// re-fetches. The fetch outlives ctx; Close abandons it.
func (p *Panel) Open(ctx context.Context) error {
	if !p.Privileged() {
		return services.ErrNotPrivileged
	}

	fetchCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))

	p.mu.Lock()
	if p.cancel != nil {
		p.cancel()
	}
	p.epoch++
	epoch := p.epoch
	p.cancel = cancel
	p.state = State{Open: true, Loading: true, Items: []models.AdminUserOverview{}}
	p.mu.Unlock()

	p.logger.Debug("admin panel opened", zap.Uint64("epoch", epoch))
	go p.fetch(fetchCtx, epoch)
	return nil
}

// Close leaves the admin context. Nothing is cached for the next open.
func (p *Panel) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.cancel != nil {
		p.cancel()
		p.cancel = nil
	}
	p.epoch++
	p.state = State{Items: []models.AdminUserOverview{}}
}

// State returns a copy of the current view state
func (p *Panel) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()

	state := p.state
	state.Items = append([]models.AdminUserOverview{}, p.state.Items...)
	return state
}

func (p *Panel) fetch(ctx context.Context, epoch uint64) {
	items, err := p.fetcher.GetAdminUsersOverview(ctx)

	p.mu.Lock()
	if epoch != p.epoch {
		p.mu.Unlock()
		p.logger.Debug("discarding stale admin overview", zap.Uint64("epoch", epoch))
		return
	}

	now := time.Now().UTC()
	p.state.Loading = false
	p.state.FetchedAt = &now
	if err != nil {
		p.state.Error = services.UserMessage(err)
		p.state.Items = []models.AdminUserOverview{}
	} else {
		p.state.Error = ""
		p.state.Items = items
		if p.state.Items == nil {
			p.state.Items = []models.AdminUserOverview{}
		}
	}
	if p.cancel != nil {
		p.cancel()
		p.cancel = nil
	}
	state := p.state
	renders := append([]RenderFunc{}, p.renders...)
	p.mu.Unlock()

	if err != nil {
		p.logger.Warn("admin overview fetch failed", zap.Error(err))
	} else {
		p.logger.Debug("admin overview loaded", zap.Int("users", len(items)))
	}

	for _, fn := range renders {
		fn(state)
	}
}
