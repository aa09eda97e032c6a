package events

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"cloud.google.com/go/pubsub"
	"cloud.google.com/go/pubsub/pstest"
	"google.golang.org/api/option"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/ramitaha13/KamelStore/internal/services"
)

func newTestTopic(t *testing.T) (*pstest.Server, *pubsub.Topic) {
	t.Helper()
	ctx := context.Background()
	srv := pstest.NewServer()
	t.Cleanup(func() { _ = srv.Close() })

	client, err := pubsub.NewClient(ctx, "test-project",
		option.WithEndpoint(srv.Addr),
		option.WithoutAuthentication(),
		option.WithGRPCDialOption(grpc.WithTransportCredentials(insecure.NewCredentials())),
	)
	if err != nil {
		t.Fatalf("pubsub.NewClient: %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })

	topic, err := client.CreateTopic(ctx, "orders")
	if err != nil {
		t.Fatalf("CreateTopic: %v", err)
	}
	t.Cleanup(topic.Stop)
	return srv, topic
}

func TestPubSubOrderPublisherPublishesMessage(t *testing.T) {
	srv, topic := newTestTopic(t)

	publisher, err := NewPubSubOrderPublisher(topic)
	if err != nil {
		t.Fatalf("NewPubSubOrderPublisher: %v", err)
	}

	event := services.OrderPlacedEvent{
		OrderID:       "01HZX3",
		TotalAmount:   240,
		Items:         2,
		Units:         3,
		PaymentMethod: "bank",
		Town:          "Nazareth",
		PlacedAt:      time.Date(2025, 5, 6, 9, 0, 0, 0, time.UTC),
	}
	id, err := publisher.PublishOrderPlaced(context.Background(), event)
	if err != nil {
		t.Fatalf("PublishOrderPlaced: %v", err)
	}
	if id == "" {
		t.Fatalf("expected message id")
	}

	messages := srv.Messages()
	if len(messages) != 1 {
		t.Fatalf("expected 1 message, got %d", len(messages))
	}

	var payload services.OrderPlacedEvent
	if err := json.Unmarshal(messages[0].Data, &payload); err != nil {
		t.Fatalf("unmarshal payload: %v", err)
	}
	if payload.OrderID != event.OrderID || payload.Units != 3 || payload.Town != "Nazareth" {
		t.Fatalf("unexpected payload %#v", payload)
	}
	attrs := messages[0].Attributes
	if attrs["orderId"] != "01HZX3" || attrs["paymentMethod"] != "bank" || attrs["eventType"] != EventTypeOrderPlaced {
		t.Fatalf("unexpected attributes %v", attrs)
	}
}

func TestPubSubOrderPublisherRequiresOrderID(t *testing.T) {
	_, topic := newTestTopic(t)
	publisher, err := NewPubSubOrderPublisher(topic)
	if err != nil {
		t.Fatalf("NewPubSubOrderPublisher: %v", err)
	}
	if _, err := publisher.PublishOrderPlaced(context.Background(), services.OrderPlacedEvent{}); err == nil {
		t.Fatalf("expected error for missing order id")
	}
}

func TestNewPubSubOrderPublisherRequiresTopic(t *testing.T) {
	if _, err := NewPubSubOrderPublisher(nil); err == nil {
		t.Fatalf("expected error for nil topic")
	}
}
