package events

import "context"

// Topics carrying domain events.
const (
	TopicUserEvents    = "user_events"
	TopicProductEvents = "product_events"
	TopicCartEvents    = "cart_events"
	TopicOrderEvents   = "order_events"
)

// Publisher is what handlers depend on; the kafka producer implements it in
// production and tests substitute an in-memory capture.
type Publisher interface {
	PublishEvent(ctx context.Context, topic, key string, event any) error
}
