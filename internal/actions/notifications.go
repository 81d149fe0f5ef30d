package actions

import (
	"context"
	"fmt"
	"strings"

	"famiglia/internal/action"
	"famiglia/internal/backend"
	"famiglia/internal/core"
)

func (s *Service) Notifications(ctx context.Context, page, size int) action.Result[backend.Page[core.Notification]] {
	p, err := s.notifications(ctx, page, size)
	if err != nil {
		return action.Fail[backend.Page[core.Notification]](err, "알림을 불러오지 못했습니다")
	}
	return action.OK(p)
}

func (s *Service) notifications(ctx context.Context, page, size int) (backend.Page[core.Notification], error) {
	var zero backend.Page[core.Notification]
	id, err := s.resolver.Identity(ctx)
	if err != nil {
		return zero, err
	}
	query, err := backend.PageQuery(page, size)
	if err != nil {
		return zero, action.InvalidInput("page", fmt.Sprintf("%d/%d", page, size), "페이지 범위가 올바르지 않습니다")
	}

	var p backend.Page[core.Notification]
	if err := s.api.Get(ctx, id.Token, "/notifications?"+query, &p); err != nil {
		return zero, fmt.Errorf("list notifications: %w", err)
	}
	return p, nil
}

func (s *Service) MarkNotificationRead(ctx context.Context, notificationUUID string) action.Result[struct{}] {
	if err := s.markNotificationRead(ctx, notificationUUID); err != nil {
		return action.Fail[struct{}](err, "알림을 읽음 처리하지 못했습니다")
	}
	s.views.Invalidate(ctx, ViewNotifications)
	return action.OK(struct{}{})
}

func (s *Service) markNotificationRead(ctx context.Context, notificationUUID string) error {
	id, err := s.resolver.Identity(ctx)
	if err != nil {
		return err
	}
	if strings.TrimSpace(notificationUUID) == "" {
		return action.InvalidInput("notificationUuid", notificationUUID, "알림을 찾을 수 없습니다")
	}
	body := map[string]any{"read": true}
	if err := s.api.Patch(ctx, id.Token, "/notifications/"+notificationUUID, body, nil); err != nil {
		return fmt.Errorf("mark notification read: %w", err)
	}
	return nil
}
