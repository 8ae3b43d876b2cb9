package events

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/walthampeppinosdosa/peppinos-api/models"
)

func TestObserversReceiveInRegistrationOrder(t *testing.T) {
	pub := NewCartPublisher()

	var calls []string
	pub.Subscribe(CartObserverFunc(func(ownerID string, cart models.Cart) {
		calls = append(calls, "first:"+ownerID)
	}))
	pub.Subscribe(CartObserverFunc(func(ownerID string, cart models.Cart) {
		calls = append(calls, "second:"+ownerID)
	}))

	pub.Publish("guest_1_ab", models.Cart{})
	assert.Equal(t, []string{"first:guest_1_ab", "second:guest_1_ab"}, calls)
}

func TestReentrantPublishDoesNotDeadlock(t *testing.T) {
	pub := NewCartPublisher()

	var delivered int
	published := false
	pub.Subscribe(CartObserverFunc(func(ownerID string, cart models.Cart) {
		delivered++
		// An observer reacting to a change by publishing again must not
		// deadlock or be suppressed; it just produces another notification.
		if !published {
			published = true
			pub.Publish(ownerID, cart)
		}
	}))

	pub.Publish("user_7", models.Cart{})
	assert.Equal(t, 2, delivered)
}

func TestSubscribeDuringPublish(t *testing.T) {
	pub := NewCartPublisher()

	var lateCalls int
	pub.Subscribe(CartObserverFunc(func(ownerID string, cart models.Cart) {
		pub.Subscribe(CartObserverFunc(func(string, models.Cart) {
			lateCalls++
		}))
	}))

	pub.Publish("user_1", models.Cart{})
	assert.Zero(t, lateCalls, "late subscriber must not see the in-flight event")

	pub.Publish("user_1", models.Cart{})
	assert.Equal(t, 1, lateCalls)
}
