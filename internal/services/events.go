package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/staffdesk/apiserver/internal/mq"
	"github.com/staffdesk/apiserver/types"
)

// Publisher sends raw messages to a named channel.
type Publisher interface {
	Publish(ctx context.Context, channel string, data []byte, attrs map[string]string) (string, error)
}

// MQLeaveNotifier publishes leave events as JSON messages.
type MQLeaveNotifier struct {
	publisher Publisher
	channel   string
}

var _ LeaveNotifier = (*MQLeaveNotifier)(nil)

// NewMQLeaveNotifier publishes leave events to channel through the queue.
func NewMQLeaveNotifier(queue *mq.MQ, channel string) *MQLeaveNotifier {
	return &MQLeaveNotifier{publisher: queue, channel: channel}
}

func (n *MQLeaveNotifier) NotifyLeave(ctx context.Context, event types.LeaveEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode leave event: %w", err)
	}
	attrs := map[string]string{
		mq.AttrEventID:     event.ID,
		mq.AttrEventType:   string(event.Type),
		mq.AttrOrderingKey: strconv.Itoa(event.LeaveID),
	}
	if _, err := n.publisher.Publish(ctx, n.channel, data, attrs); err != nil {
		return fmt.Errorf("publish leave event: %w", err)
	}
	return nil
}

// DecodeLeaveEvent parses a message published by MQLeaveNotifier.
func DecodeLeaveEvent(msg mq.Message) (types.LeaveEvent, error) {
	var event types.LeaveEvent
	if err := json.Unmarshal(msg.Data, &event); err != nil {
		return types.LeaveEvent{}, fmt.Errorf("decode leave event %s: %w", msg.ID, err)
	}
	if event.Type == "" || event.LeaveID == 0 {
		return types.LeaveEvent{}, fmt.Errorf("decode leave event %s: missing type or leave id", msg.ID)
	}
	return event, nil
}
