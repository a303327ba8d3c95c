package notify

import (
	"context"
	"encoding/json"
	"log"
	"net/http"

	"bet-tracker-go/internal/models"

	"github.com/SherClockHolmes/webpush-go"
)

// SubscriptionStore is the slice of the storage layer the broadcaster needs.
type SubscriptionStore interface {
	GetPushSubscriptions(ctx context.Context) ([]models.PushSubscription, error)
	DeletePushSubscription(ctx context.Context, endpoint string) error
}

// Broadcaster sends a payload to every stored subscription. Subscriptions the
// push service reports gone are pruned along the way.
type Broadcaster struct {
	Store           SubscriptionStore
	VAPIDPublicKey  string
	VAPIDPrivateKey string
	Subscriber      string // mailto: contact sent to the push service
}

func NewBroadcaster(store SubscriptionStore, publicKey, privateKey, subscriber string) *Broadcaster {
	return &Broadcaster{
		Store:           store,
		VAPIDPublicKey:  publicKey,
		VAPIDPrivateKey: privateKey,
		Subscriber:      subscriber,
	}
}

// Broadcast normalizes p and pushes it to all subscribers. Per-subscription
// failures are logged and counted, not fatal.
func (b *Broadcaster) Broadcast(ctx context.Context, p Payload) (sent, failed int, err error) {
	subs, err := b.Store.GetPushSubscriptions(ctx)
	if err != nil {
		return 0, 0, err
	}

	message, err := json.Marshal(p.Normalize())
	if err != nil {
		return 0, 0, err
	}

	for _, sub := range subs {
		s := &webpush.Subscription{
			Endpoint: sub.Endpoint,
			Keys: webpush.Keys{
				P256dh: sub.P256dh,
				Auth:   sub.Auth,
			},
		}

		resp, err := webpush.SendNotification(message, s, &webpush.Options{
			Subscriber:      b.Subscriber,
			VAPIDPublicKey:  b.VAPIDPublicKey,
			VAPIDPrivateKey: b.VAPIDPrivateKey,
			TTL:             30,
		})
		if err != nil {
			log.Printf("Failed to send push to %s: %v", sub.Endpoint, err)
			failed++
			continue
		}

		// The push service says this channel no longer exists; drop it.
		if resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone {
			if err := b.Store.DeletePushSubscription(ctx, sub.Endpoint); err != nil {
				log.Printf("Failed to prune subscription %s: %v", sub.Endpoint, err)
			}
			failed++
		} else {
			sent++
		}
		resp.Body.Close()
	}

	return sent, failed, nil
}
