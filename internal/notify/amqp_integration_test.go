//go:build integration

// ABOUTME: Integration tests for the RabbitMQ event publisher
// ABOUTME: Starts a disposable broker container and consumes what was published

package notify

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/rabbitmq"
	"github.com/testcontainers/testcontainers-go/wait"
)

type AMQPIntegrationSuite struct {
	suite.Suite
	ctx       context.Context
	container *rabbitmq.RabbitMQContainer
	amqpURL   string
}

func (s *AMQPIntegrationSuite) SetupSuite() {
	s.ctx = context.Background()

	container, err := rabbitmq.Run(s.ctx,
		"rabbitmq:3.13-management-alpine",
		testcontainers.WithWaitStrategy(
			wait.ForLog("Server startup complete").
				WithStartupTimeout(60*time.Second),
		),
	)
	s.Require().NoError(err)
	s.container = container

	amqpURL, err := container.AmqpURL(s.ctx)
	s.Require().NoError(err)
	s.amqpURL = amqpURL
}

func (s *AMQPIntegrationSuite) TearDownSuite() {
	if s.container != nil {
		_ = s.container.Terminate(s.ctx)
	}
}

func TestAMQPIntegrationSuite(t *testing.T) {
	suite.Run(t, new(AMQPIntegrationSuite))
}

func (s *AMQPIntegrationSuite) TestPublish() {
	cfg := AMQPConfig{
		URL:        s.amqpURL,
		Exchange:   "podplay_test",
		RoutingKey: "events",
		QueueName:  "podplay_events_test",
	}

	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel)

	pub, err := NewAMQPPublisher(cfg, logrus.NewEntry(logger))
	s.Require().NoError(err)
	defer pub.Close()

	event := Event{
		Kind:     EpisodesAdded,
		FeedURL:  "https://example.com/feed.xml",
		Title:    "Show",
		NewCount: 3,
		At:       time.Now().UTC().Truncate(time.Second),
	}
	s.Require().NoError(pub.Notify(s.ctx, event))

	conn, err := amqp.Dial(s.amqpURL)
	s.Require().NoError(err)
	defer conn.Close()

	ch, err := conn.Channel()
	s.Require().NoError(err)
	defer ch.Close()

	var msg amqp.Delivery
	var ok bool
	s.Eventually(func() bool {
		msg, ok, err = ch.Get(cfg.QueueName, true)
		return err == nil && ok
	}, 5*time.Second, 100*time.Millisecond)

	s.Equal("application/json", msg.ContentType)
	s.Equal(string(EpisodesAdded), msg.Type)
	s.NotEmpty(msg.MessageId)

	var got Event
	s.Require().NoError(json.Unmarshal(msg.Body, &got))
	s.Equal(event.FeedURL, got.FeedURL)
	s.Equal(3, got.NewCount)
	s.True(event.At.Equal(got.At))
}
