// Package events defines the notifications emitted by the matching engine.
//
// Available event types:
//   - MatchEvent: a load group was computed for a request (topic crs.load.match)
//
// Publishers are chosen when the service is composed: Kafka, MQTT,
// RabbitMQ, the in-process bus or NopPublisher.
package events
