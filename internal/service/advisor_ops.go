package service

import (
	"context"
	"strings"

	"agent-advisor/internal/model"
	"agent-advisor/pkg/logger"
)

func chatResponse(sess *session, msgs []model.ChatMessage) model.ChatResponse {
	if msgs == nil {
		msgs = []model.ChatMessage{}
	}
	return model.ChatResponse{
		SessionID: sess.id,
		State:     string(sess.chat.State().Name()),
		Busy:      sess.chat.Busy(),
		Messages:  msgs,
	}
}

// SendMessage runs one chat turn and returns the messages it appended.
func (s *AdvisorService) SendMessage(ctx context.Context, sessionID, text string) (model.ChatResponse, error) {
	return s.StreamMessage(ctx, sessionID, text, nil)
}

// StreamMessage is SendMessage with emit called for each message as soon as
// it is appended.
func (s *AdvisorService) StreamMessage(ctx context.Context, sessionID, text string, emit func(model.ChatMessage)) (model.ChatResponse, error) {
	sess, err := s.lookup(ctx, sessionID)
	if err != nil {
		return model.ChatResponse{}, err
	}
	s.autoTitle(sess, text)

	var turn []model.ChatMessage
	sess.chat.SendFunc(ctx, text, func(m model.ChatMessage) {
		turn = append(turn, m)
		if emit != nil {
			emit(m)
		}
	})
	s.persist(ctx, sess)

	resp := chatResponse(sess, turn)
	logger.Session(sessionID).WithField("state", resp.State).Debugf("chat turn appended %d messages", len(turn))
	return resp, nil
}

// autoTitle replaces a default title with the start of the first user
// message.
func (s *AdvisorService) autoTitle(sess *session, text string) {
	sess.mu.Lock()
	defer sess.mu.Unlock()

	text = strings.TrimSpace(text)
	if text == "" || !strings.HasPrefix(sess.title, defaultTitlePrefix) {
		return
	}
	for _, m := range sess.chat.Messages() {
		if m.Role == model.RoleUser {
			return
		}
	}
	runes := []rune(text)
	if len(runes) > titleLimit {
		runes = runes[:titleLimit]
	}
	sess.title = string(runes)
}

func (s *AdvisorService) Messages(ctx context.Context, sessionID string) ([]model.ChatMessage, error) {
	sess, err := s.lookup(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return sess.chat.Messages(), nil
}

func (s *AdvisorService) ResetChat(ctx context.Context, sessionID string) (model.ChatResponse, error) {
	sess, err := s.lookup(ctx, sessionID)
	if err != nil {
		return model.ChatResponse{}, err
	}

	msgs := sess.chat.Reset()
	s.persist(ctx, sess)
	logger.Session(sessionID).Info("chat reset")
	return chatResponse(sess, msgs), nil
}

func formView(sess *session) model.FormView {
	v := sess.form.View()
	v.SessionID = sess.id
	return v
}

// formAction runs fn against the session's form and persists the result.
func (s *AdvisorService) formAction(ctx context.Context, sessionID string, fn func(*session) error) (model.FormView, error) {
	sess, err := s.lookup(ctx, sessionID)
	if err != nil {
		return model.FormView{}, err
	}
	if err := fn(sess); err != nil {
		return formView(sess), err
	}
	s.persist(ctx, sess)
	return formView(sess), nil
}

func (s *AdvisorService) FormView(ctx context.Context, sessionID string) (model.FormView, error) {
	sess, err := s.lookup(ctx, sessionID)
	if err != nil {
		return model.FormView{}, err
	}
	return formView(sess), nil
}

func (s *AdvisorService) SetFormField(ctx context.Context, sessionID string, field model.Field, value string) (model.FormView, error) {
	return s.formAction(ctx, sessionID, func(sess *session) error {
		return sess.form.SetField(field, value)
	})
}

func (s *AdvisorService) ToggleFormPriority(ctx context.Context, sessionID string, tag model.Priority) (model.FormView, error) {
	return s.formAction(ctx, sessionID, func(sess *session) error {
		return sess.form.TogglePriority(tag)
	})
}

// SubmitForm blocks until the orchestration finished; the returned view shows
// its outcome.
func (s *AdvisorService) SubmitForm(ctx context.Context, sessionID string) (model.FormView, error) {
	return s.formAction(ctx, sessionID, func(sess *session) error {
		return sess.form.Submit(ctx)
	})
}

func (s *AdvisorService) ShowFrameworks(ctx context.Context, sessionID string) (model.FormView, error) {
	return s.formAction(ctx, sessionID, func(sess *session) error {
		return sess.form.ShowFrameworks(ctx)
	})
}

func (s *AdvisorService) SelectUseCase(ctx context.Context, sessionID string, index int) (model.FormView, error) {
	return s.formAction(ctx, sessionID, func(sess *session) error {
		return sess.form.SelectUseCase(index)
	})
}

func (s *AdvisorService) BackToUseCases(ctx context.Context, sessionID string) (model.FormView, error) {
	return s.formAction(ctx, sessionID, func(sess *session) error {
		return sess.form.BackToUseCases()
	})
}

func (s *AdvisorService) ResetForm(ctx context.Context, sessionID string) (model.FormView, error) {
	return s.formAction(ctx, sessionID, func(sess *session) error {
		sess.form.Reset()
		return nil
	})
}
