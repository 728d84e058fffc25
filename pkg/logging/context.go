package logging

import (
	"context"
)

const (
	RequestIDKey   = "request_id"
	SubjectKey     = "subject"
	BroadcastIDKey = "broadcast_id"
	ServiceNameKey = "service_name"
)

func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, RequestIDKey, requestID)
}

func WithSubject(ctx context.Context, subject string) context.Context {
	return context.WithValue(ctx, SubjectKey, subject)
}

func WithBroadcastID(ctx context.Context, broadcastID string) context.Context {
	return context.WithValue(ctx, BroadcastIDKey, broadcastID)
}

func WithServiceName(ctx context.Context, serviceName string) context.Context {
	return context.WithValue(ctx, ServiceNameKey, serviceName)
}

func GetRequestID(ctx context.Context) string {
	if requestID, ok := ctx.Value(RequestIDKey).(string); ok {
		return requestID
	}
	return ""
}

func GetSubject(ctx context.Context) string {
	if subject, ok := ctx.Value(SubjectKey).(string); ok {
		return subject
	}
	return ""
}

func GetBroadcastID(ctx context.Context) string {
	if broadcastID, ok := ctx.Value(BroadcastIDKey).(string); ok {
		return broadcastID
	}
	return ""
}

func GetServiceName(ctx context.Context) string {
	if serviceName, ok := ctx.Value(ServiceNameKey).(string); ok {
		return serviceName
	}
	return ""
}

func GetLogFields(ctx context.Context) []interface{} {
	fields := make([]interface{}, 0, 8)

	if requestID := GetRequestID(ctx); requestID != "" {
		fields = append(fields, "request_id", requestID)
	}

	if subject := GetSubject(ctx); subject != "" {
		fields = append(fields, "subject", subject)
	}

	if broadcastID := GetBroadcastID(ctx); broadcastID != "" {
		fields = append(fields, "broadcast_id", broadcastID)
	}

	if serviceName := GetServiceName(ctx); serviceName != "" {
		fields = append(fields, "service_name", serviceName)
	}

	return fields
}
