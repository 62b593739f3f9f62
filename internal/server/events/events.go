// Package events publishes listing lifecycle events.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/dmitrijs2005/rentfinder/internal/server/models"
	"github.com/nats-io/nats.go"
)

const (
	SubjectListingCreated       = "listing.created"
	SubjectListingUpdated       = "listing.updated"
	SubjectListingStatusChanged = "listing.status_changed"
	SubjectListingDeleted       = "listing.deleted"
)

const (
	connectWait   = 5 * time.Second
	maxReconnects = 5
	reconnectWait = 2 * time.Second
)

// ListingEvent is the payload of every listing subject.
type ListingEvent struct {
	ListingID string               `json:"listingId"`
	OwnerID   string               `json:"ownerId"`
	Status    models.ListingStatus `json:"status,omitempty"`
	At        time.Time            `json:"at"`
}

type Publisher interface {
	Publish(ctx context.Context, subject string, payload any) error
	Close()
}

// NATSPublisher sends JSON payloads over core NATS.
type NATSPublisher struct {
	conn    *nats.Conn
	publish func(subject string, data []byte) error
}

func NewNATSPublisher(url string) (*NATSPublisher, error) {
	conn, err := nats.Connect(url,
		nats.Name("rentfinder"),
		nats.Timeout(connectWait),
		nats.MaxReconnects(maxReconnects),
		nats.ReconnectWait(reconnectWait),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS at %s: %w", url, err)
	}
	return &NATSPublisher{conn: conn, publish: conn.Publish}, nil
}

func (p *NATSPublisher) Publish(_ context.Context, subject string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return p.publish(subject, data)
}

func (p *NATSPublisher) Close() {
	if p.conn != nil {
		p.conn.Close()
	}
}

// Noop drops every event.
type Noop struct{}

func (Noop) Publish(context.Context, string, any) error { return nil }
func (Noop) Close() {}
