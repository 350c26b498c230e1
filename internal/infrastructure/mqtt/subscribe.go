package mqtt

import "fmt"

// Subscribe registers a handler for a topic filter.
//
// The subscription is tracked and automatically restored if the connection
// drops and reconnects. Subscribing to the same filter twice replaces the
// previous handler.
//
// Parameters:
//   - topic: Topic filter, wildcards allowed (e.g. "andon/+/event")
//   - handler: Callback invoked for each matching message
//
// Returns:
//   - error: ErrSubscribeFailed if the broker rejects the subscription
func (c *Client) Subscribe(topic string, handler MessageHandler) error {
	token := c.client.Subscribe(topic, byte(c.cfg.QoS), c.wrapHandler(handler))
	if !token.WaitTimeout(defaultConnectTimeout) {
		return fmt.Errorf("%w: timeout subscribing to %s", ErrSubscribeFailed, topic)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrSubscribeFailed, topic, err)
	}

	c.subMu.Lock()
	c.subscriptions[topic] = subscription{
		topic:   topic,
		qos:     byte(c.cfg.QoS),
		handler: handler,
	}
	c.subMu.Unlock()

	return nil
}

// Unsubscribe removes a subscription.
//
// Parameters:
//   - topic: Topic filter previously passed to Subscribe
//
// Returns:
//   - error: If the broker rejects the unsubscribe
func (c *Client) Unsubscribe(topic string) error {
	token := c.client.Unsubscribe(topic)
	if !token.WaitTimeout(defaultConnectTimeout) {
		return fmt.Errorf("mqtt: timeout unsubscribing from %s", topic)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("mqtt: unsubscribing from %s: %w", topic, err)
	}

	c.subMu.Lock()
	delete(c.subscriptions, topic)
	c.subMu.Unlock()

	return nil
}
