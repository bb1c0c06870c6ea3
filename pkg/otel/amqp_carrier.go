package otel

import amqp "github.com/rabbitmq/amqp091-go"

// AMQPHeadersCarrier adapts AMQP message headers to propagation.TextMapCarrier.
type AMQPHeadersCarrier amqp.Table

func (c AMQPHeadersCarrier) Get(key string) string {
	switch v := c[key].(type) {
	case string:
		return v
	case []byte:
		return string(v)
	}
	return ""
}

func (c AMQPHeadersCarrier) Set(key string, value string) {
	c[key] = value
}

func (c AMQPHeadersCarrier) Keys() []string {
	keys := make([]string, 0, len(c))
	for k := range c {
		keys = append(keys, k)
	}
	return keys
}
