package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/studybuddy-backend/internal/domain/chat"
	"github.com/yungbote/studybuddy-backend/internal/platform/apierr"
	"github.com/yungbote/studybuddy-backend/internal/platform/ctxutil"
)

// Clock is injected so day boundaries can be tested.
type Clock func() time.Time

func systemClock() time.Time { return time.Now().UTC() }

func dayOf(t time.Time) string {
	return t.UTC().Format(chat.DayLayout)
}

func requireUser(ctx context.Context) (uuid.UUID, error) {
	id := ctxutil.UserID(ctx)
	if id == uuid.Nil {
		return uuid.Nil, apierr.Unauthorized("unauthorized", "missing authenticated user")
	}
	return id, nil
}
