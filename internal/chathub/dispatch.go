package chathub

import (
	"cinesocial/backend/internal/models"
	"context"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"
)

var validate = validator.New()

// HandleInvocation decodes one client frame and runs the named hub method on
// behalf of c. Replies, including errors, go back to c only. The sender of a
// message is always c's user, whatever the frame says.
func (m *ManagerService) HandleInvocation(ctx context.Context, c Client, raw []byte) {
	var inv models.Invocation
	if err := json.Unmarshal(raw, &inv); err != nil {
		m.replyError(c, 0, fmt.Errorf("%w: invalid frame: %v", ErrMalformedInput, err))
		return
	}

	var err error
	switch inv.Method {
	case models.MethodSendMessage:
		err = m.invokeSendMessage(ctx, c, inv)
	case models.MethodGetChatHistory:
		err = m.invokeGetChatHistory(ctx, c, inv)
	case models.MethodCheckUserOnline:
		err = m.invokeCheckUserOnline(c, inv)
	default:
		err = fmt.Errorf("%w: unknown method %q", ErrMalformedInput, inv.Method)
	}

	if err != nil {
		m.replyError(c, inv.ID, err)
	}
}

func (m *ManagerService) invokeSendMessage(ctx context.Context, c Client, inv models.Invocation) error {
	var args models.SendMessageArgs
	if err := decodeArgs(inv.Args, &args); err != nil {
		return err
	}

	msg, err := m.SendMessage(ctx, c.GetUserID(), args.ReceiverID, args.Text)
	if err != nil {
		return err
	}
	m.push(c, models.Frame{ID: inv.ID, Event: models.EventMessageSent, Data: msg})
	return nil
}

func (m *ManagerService) invokeGetChatHistory(ctx context.Context, c Client, inv models.Invocation) error {
	var args models.GetChatHistoryArgs
	if err := decodeArgs(inv.Args, &args); err != nil {
		return err
	}

	msgs, err := m.GetChatHistory(ctx, c.GetUserID(), args.ReceiverID, args.PageSize, args.Before)
	if err != nil {
		return err
	}
	m.push(c, models.Frame{
		ID:    inv.ID,
		Event: models.EventReceiveChatHistory,
		Data:  models.ChatHistoryPayload{With: args.ReceiverID, Messages: msgs},
	})
	return nil
}

func (m *ManagerService) invokeCheckUserOnline(c Client, inv models.Invocation) error {
	var args models.CheckUserOnlineArgs
	if err := decodeArgs(inv.Args, &args); err != nil {
		return err
	}

	online := m.CheckUserOnline(c, args.UserID)
	m.push(c, models.Frame{
		ID:    inv.ID,
		Event: models.EventReceiveOnlineStatus,
		Data:  models.PresencePayload{UserID: args.UserID, Online: online},
	})
	return nil
}

func decodeArgs(raw []byte, dst any) error {
	if len(raw) == 0 {
		return fmt.Errorf("%w: missing args", ErrMalformedInput)
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("%w: invalid args: %v", ErrMalformedInput, err)
	}
	if err := validate.Struct(dst); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedInput, err)
	}
	return nil
}

func (m *ManagerService) replyError(c Client, id int64, err error) {
	code := models.ErrCodeBadRequest
	msg := "invalid request"
	if errors.Is(err, ErrStoreUnavailable) {
		code = models.ErrCodeStoreUnavailable
		msg = "failed to send"
	} else if errors.Is(err, ErrMalformedInput) {
		msg = err.Error()
	}

	m.log.Debug().Err(err).Uint("user_id", c.GetUserID()).Int64("invocation_id", id).Msg("invocation failed")
	m.push(c, models.Frame{
		ID:    id,
		Event: models.EventError,
		Data:  models.ErrorPayload{Code: code, Message: msg},
	})
}
