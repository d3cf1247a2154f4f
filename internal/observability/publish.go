package observability

import "context"

type Publisher interface {
	Publish(ctx context.Context, routingKey string, event any, headers map[string]string) error
}

var defaultPublisher Publisher

func SetPublisher(publisher Publisher) {
	defaultPublisher = publisher
}

func PublishEvent(ctx context.Context, routingKey string, message any, headers map[string]string) error {
	if defaultPublisher == nil {
		return nil
	}
	return Publish(ctx, defaultPublisher, routingKey, message, headers)
}

// Publish sends message through publisher and counts failed publishes.
func Publish(ctx context.Context, publisher Publisher, routingKey string, message any, headers map[string]string) error {
	err := publisher.Publish(ctx, routingKey, message, headers)
	if err != nil {
		IncAMQPPublishError()
	}
	return err
}
