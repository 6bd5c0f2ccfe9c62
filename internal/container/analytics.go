package container

import (
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/samber/do"
	"github.com/serroba/shorty/internal/analytics"
	analyticsstore "github.com/serroba/shorty/internal/analytics/store"
	"github.com/serroba/shorty/internal/messaging"
	"go.uber.org/zap"
)

// AnalyticsPackage provides the analytics store, the event handlers and
// the typed publish functions.
func AnalyticsPackage(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (analytics.Store, error) {
		storage := do.MustInvoke[*Storage](i)
		if storage.Pool != nil {
			return analyticsstore.NewPostgres(storage.Pool), nil
		}

		return analyticsstore.NewNoop(do.MustInvoke[*zap.Logger](i)), nil
	})

	do.Provide(i, func(i *do.Injector) (*analytics.Handlers, error) {
		return analytics.NewHandlers(do.MustInvoke[analytics.Store](i), analytics.NewUserAgentParser()), nil
	})

	do.Provide(i, func(i *do.Injector) (analytics.Publishers, error) {
		pub := do.MustInvoke[*messaging.PublisherGroup](i).Publisher()

		return analytics.Publishers{
			Created: messaging.NewPublishFunc[analytics.LinkCreatedEvent](pub, analytics.TopicLinkCreated),
			Visited: messaging.NewPublishFunc[analytics.LinkVisitedEvent](pub, analytics.TopicLinkVisited),
			Deleted: messaging.NewPublishFunc[analytics.LinkDeletedEvent](pub, analytics.TopicLinkDeleted),
		}, nil
	})
}

// ConsumerGroupPackage provides the *messaging.ConsumerGroup feeding link
// events to the analytics handlers.
func ConsumerGroupPackage(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (*messaging.ConsumerGroup, error) {
		sub := do.MustInvoke[message.Subscriber](i)
		handlers := do.MustInvoke[*analytics.Handlers](i)
		logger := do.MustInvoke[*zap.Logger](i)

		group := messaging.NewConsumerGroup(sub, logger)
		group.Add(
			messaging.NewConsumer(sub, analytics.TopicLinkCreated, handlers.LinkCreated, logger),
			messaging.NewConsumer(sub, analytics.TopicLinkVisited, handlers.LinkVisited, logger),
			messaging.NewConsumer(sub, analytics.TopicLinkDeleted, handlers.LinkDeleted, logger),
		)

		return group, nil
	})
}
