package websocket

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func receive(t *testing.T, c *Client) []byte {
	t.Helper()
	select {
	case msg := <-c.Send:
		return msg
	case <-time.After(time.Second):
		t.Fatal("expected a payload, got none")
		return nil
	}
}

func assertSilent(t *testing.T, c *Client) {
	t.Helper()
	select {
	case msg := <-c.Send:
		t.Fatalf("unexpected payload: %s", msg)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHubDeliversOnlyToAddressedRecipients(t *testing.T) {
	h := NewHub()
	go h.Run()

	aliceID := uuid.New()
	bobID := uuid.New()
	alice := &Client{Hub: h, UserID: aliceID, Send: make(chan []byte, 4)}
	bob := &Client{Hub: h, UserID: bobID, Send: make(chan []byte, 4)}
	h.register <- alice
	h.register <- bob

	payload := []byte(`{"message":"Se ha creado una nueva petición: Confidencial"}`)
	h.Notify <- Notification{RecipientIDs: []uuid.UUID{aliceID}, Payload: payload}

	assert.JSONEq(t, string(payload), string(receive(t, alice)))
	assertSilent(t, bob)
}

func TestHubFansOutToEveryConnectionOfARecipient(t *testing.T) {
	h := NewHub()
	go h.Run()

	userID := uuid.New()
	first := &Client{Hub: h, UserID: userID, Send: make(chan []byte, 4)}
	second := &Client{Hub: h, UserID: userID, Send: make(chan []byte, 4)}
	other := &Client{Hub: h, UserID: uuid.New(), Send: make(chan []byte, 4)}
	h.register <- first
	h.register <- second
	h.register <- other

	h.Notify <- Notification{RecipientIDs: []uuid.UUID{userID}, Payload: []byte(`{"n":1}`)}

	require.Equal(t, `{"n":1}`, string(receive(t, first)))
	require.Equal(t, `{"n":1}`, string(receive(t, second)))
	assertSilent(t, other)
}

func TestHubUnregisterStopsDelivery(t *testing.T) {
	h := NewHub()
	go h.Run()

	userID := uuid.New()
	client := &Client{Hub: h, UserID: userID, Send: make(chan []byte, 4)}
	h.register <- client
	h.unregister <- client

	// The send channel is closed on unregister.
	_, open := <-client.Send
	require.False(t, open)
}
