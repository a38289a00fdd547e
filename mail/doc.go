// Package mail delivers boardauth's templated emails.
//
// SMTP sends directly. Outbox publishes each message to a NATS JetStream
// subject, and Relay consumes that subject and hands messages to another
// Mailer. Log only writes to a zerolog logger and is meant for development.
package mail
