package bus

import "context"

// Channel identifies a display surface subscription topic.
type Channel string

const (
	// ChannelToast carries toast display payloads.
	ChannelToast Channel = "toast"
	// ChannelAlert carries modal alert display payloads.
	ChannelAlert Channel = "alert"
	// ChannelInput carries input alert display payloads.
	ChannelInput Channel = "input"
	// ChannelPrompt carries pincode prompt display payloads.
	ChannelPrompt Channel = "prompt"
	// ChannelNotification carries generic notification payloads.
	ChannelNotification Channel = "notification"
)

// Channels returns all known channels.
func Channels() []Channel {
	return []Channel{ChannelToast, ChannelAlert, ChannelInput, ChannelPrompt, ChannelNotification}
}

// Valid reports whether the channel is one of the known topics.
func (c Channel) Valid() bool {
	switch c {
	case ChannelToast, ChannelAlert, ChannelInput, ChannelPrompt, ChannelNotification:
		return true
	}
	return false
}

// Envelope is a message delivered on a channel.
type Envelope struct {
	Channel Channel        `json:"channel"`
	Payload map[string]any `json:"payload"`
}

// Subscriber receives envelopes posted to a channel.
// Implementations must be safe for concurrent use.
type Subscriber interface {
	// ID returns the unique identifier assigned at subscription time.
	ID() string

	// Receive returns the channel envelopes arrive on. The channel is closed
	// when the subscription is closed; lifetime is governed by the Subscribe
	// context and Close.
	Receive() <-chan Envelope

	// Close detaches the subscriber. Close is idempotent.
	Close() error
}

// PresenceFunc is invoked when a channel gains its first subscriber or loses
// its last one.
type PresenceFunc func(channel Channel, attached bool)

// Bus fans display payloads out to attached subscribers and reports channel
// presence transitions.
type Bus interface {
	// Subscribe attaches a new subscriber to the given channel. The
	// subscription is cleaned up when the context is cancelled or the
	// subscriber is closed.
	Subscribe(ctx context.Context, channel Channel) (Subscriber, error)

	// Post sends a payload to all subscribers of the channel. Posting never
	// blocks; each subscriber sees envelopes in post order.
	Post(ctx context.Context, channel Channel, payload map[string]any) error

	// Attached reports whether the channel currently has any subscribers.
	Attached(channel Channel) bool

	// OnPresence registers a callback for presence transitions on any channel.
	OnPresence(fn PresenceFunc)

	// Close shuts the bus down and closes all subscribers.
	Close() error
}
