package messaging

import (
	"context"
	"encoding/json"
)

type Service interface {
	DispatchBroadcast(ctx context.Context, req BroadcastRequest) (*BroadcastRecord, error)
	ListBroadcasts(ctx context.Context) []*BroadcastRecord
	SendTemplateMessage(ctx context.Context, req TemplateMessageRequest) (json.RawMessage, error)
	SendTextMessage(ctx context.Context, req TextMessageRequest) (json.RawMessage, error)
}
