package controller

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/Zuo-Peng/mdc/internal/backend"
	"github.com/Zuo-Peng/mdc/internal/session"
)

// Chatter runs one question/answer turn at a time against the session.
// Turns are not serialized: overlapping calls append their answers in
// whatever order the calls settle.
type Chatter struct {
	session  *session.ClientSession
	answerer backend.Answerer
	log      *zap.Logger
}

func NewChatter(s *session.ClientSession, a backend.Answerer, log *zap.Logger) *Chatter {
	if log == nil {
		log = zap.NewNop()
	}
	return &Chatter{session: s, answerer: a, log: log}
}

// SendMessage appends text as a user message, asks the service and appends
// the answer. Every accepted call grows the transcript by exactly two
// messages; a failed call gets a fixed error entry instead of an answer.
func (c *Chatter) SendMessage(ctx context.Context, text string) (session.Message, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return session.Message{}, ErrEmptyMessage
	}

	sessionID, _, ok := c.session.BeginTurn(text)
	if !ok {
		c.session.Notify(NoticeNoActiveSession)
		return session.Message{}, ErrNoActiveSession
	}
	defer c.session.EndThinking()

	ans, err := c.answerer.AskQuestion(ctx, sessionID, text)
	if err != nil {
		msg := c.session.Append(session.RoleAssistant, AnswerErrorText)
		c.session.Notify(NoticeChatError)
		c.log.Error("chat failed", zap.Error(err), zap.String("session_id", sessionID))
		return msg, fmt.Errorf("%w: %w", ErrAnswerFailure, err)
	}

	answer := ans.Answer
	if answer == "" {
		answer = AnswerPlaceholder
	}
	return c.session.Append(session.RoleAssistant, answer), nil
}
