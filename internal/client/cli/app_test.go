package cli

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dmitrijs2005/rentfinder/internal/client/config"
	"github.com/dmitrijs2005/rentfinder/internal/client/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewApp_BadServerURL(t *testing.T) {
	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.ServerURL = "not a url"

	_, err := NewApp(cfg)
	require.Error(t, err)
}

func TestGetStatus(t *testing.T) {
	s := &fakeService{}
	a, _ := newTestApp(t, s)
	assert.Equal(t, "", a.getStatus())

	a.setMode(context.Background(), ModeOnline)
	assert.Equal(t, "(online)", a.getStatus())

	s.session = &models.Session{Account: &models.Account{Name: "Olga", Role: models.RoleOwner}}
	assert.Equal(t, "(Olga/owner online)", a.getStatus())
}

func TestCheckOnline(t *testing.T) {
	s := &fakeService{pingErr: errors.New("down")}
	a, _ := newTestApp(t, s)

	a.checkOnline(context.Background())
	assert.Equal(t, ModeOffline, a.getMode())

	s.pingErr = nil
	a.checkOnline(context.Background())
	assert.Equal(t, ModeOnline, a.getMode())
}

func TestStartOnlineStatusWatcher_StopsOnCancel(t *testing.T) {
	a, _ := newTestApp(t, &fakeService{})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		a.StartOnlineStatusWatcher(ctx, 10*time.Millisecond)
		close(done)
	}()

	require.Eventually(t, func() bool { return a.getMode() == ModeOnline }, time.Second, 5*time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("watcher did not stop")
	}
}

func TestRun_LogsOutOnExit(t *testing.T) {
	s := &fakeService{session: &models.Session{Account: &models.Account{Name: "Olga", Role: models.RoleRenter}}}
	a, out := newTestApp(t, s, "help", "exit")
	a.config.OnlineCheckInterval = 0

	a.Run(context.Background())

	assert.True(t, s.loggedOut)
	assert.Contains(t, out.String(), "Welcome to RentFinder")
	assert.Contains(t, out.String(), helpLoggedIn)
}
