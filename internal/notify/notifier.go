package notify

import "context"

// DeliveryResult is the outcome of one notification attempt. Delivery is
// best-effort: transport errors are captured here, never returned as errors,
// so a failed SMS can degrade response wording without failing the operation.
type DeliveryResult struct {
	Sent   bool
	Reason string
}

func Delivered() DeliveryResult {
	return DeliveryResult{Sent: true}
}

func Failed(reason string) DeliveryResult {
	return DeliveryResult{Sent: false, Reason: reason}
}

// Notifier delivers a human-readable text message to an operator's phone
// over an external messaging gateway.
type Notifier interface {
	Notify(ctx context.Context, phone, message string) DeliveryResult
}

// NopNotifier drops every message. Used when no SMS gateway is configured.
type NopNotifier struct{}

func (NopNotifier) Notify(context.Context, string, string) DeliveryResult {
	return Failed("sms gateway not configured")
}
