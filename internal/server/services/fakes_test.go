package services

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/dmitrijs2005/rentfinder/internal/common"
	"github.com/dmitrijs2005/rentfinder/internal/logging"
	"github.com/dmitrijs2005/rentfinder/internal/server/config"
	"github.com/dmitrijs2005/rentfinder/internal/server/media"
	"github.com/dmitrijs2005/rentfinder/internal/server/metrics"
	"github.com/dmitrijs2005/rentfinder/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/rentfinder/internal/server/sessions"
)

type fakeUploader struct {
	mu     sync.Mutex
	sent   []string
	failOn string
}

func (u *fakeUploader) UploadOne(_ context.Context, f media.File) (string, error) {
	if err := media.Validate(f); err != nil {
		return "", err
	}
	if u.failOn != "" && f.Name == u.failOn {
		return "", common.ErrUploadFailure
	}
	u.mu.Lock()
	defer u.mu.Unlock()
	u.sent = append(u.sent, f.Name)
	return "https://img.test/" + f.Name, nil
}

func (u *fakeUploader) count() int {
	u.mu.Lock()
	defer u.mu.Unlock()
	return len(u.sent)
}

type fakeMailer struct {
	to, link string
	err      error
}

func (m *fakeMailer) SendPasswordReset(_ context.Context, to, link string) error {
	m.to, m.link = to, link
	return m.err
}

type fakePublisher struct {
	mu       sync.Mutex
	subjects []string
	err      error
}

func (p *fakePublisher) Publish(_ context.Context, subject string, _ any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.subjects = append(p.subjects, subject)
	return p.err
}

func (p *fakePublisher) Close() {}

func image(name string) media.File {
	return media.File{Name: name, ContentType: "image/jpeg", Size: 1024, Body: strings.NewReader("img")}
}

type env struct {
	repos    *repomanager.MemoryRepositoryManager
	registry *sessions.MemoryRegistry
	uploader *fakeUploader
	mailer   *fakeMailer
	events   *fakePublisher
	cfg      *config.Config
	identity *IdentityService
	listings *ListingService
}

func newEnv(t *testing.T, tweak ...func(*config.Config)) *env {
	t.Helper()
	cfg := &config.Config{}
	cfg.LoadDefaults()
	for _, f := range tweak {
		f(cfg)
	}

	e := &env{
		repos:    repomanager.NewMemoryRepositoryManager(),
		registry: sessions.NewMemoryRegistry(),
		uploader: &fakeUploader{},
		mailer:   &fakeMailer{},
		events:   &fakePublisher{},
		cfg:      cfg,
	}
	m := metrics.New("test")
	e.identity = NewIdentityService(e.repos, e.registry, e.uploader, e.mailer, m, logging.Nop{}, cfg)
	e.listings = NewListingService(e.repos, e.uploader, e.events, m, logging.Nop{})
	return e
}
