package sessions

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/smizereens/TMDB/internal/domain"
)

// SessionStates хранит состояние чатов в памяти процесса. Состояния разных
// чатов изолированы друг от друга, обращения к одному чату обрабатываются
// последовательно циклом обновлений.
type SessionStates struct {
	states map[int64]*domain.SessionState
	mu     sync.RWMutex
}

func NewSessionStates() *SessionStates {
	states := make(map[int64]*domain.SessionState)
	return &SessionStates{
		states: states,
		mu:     sync.RWMutex{},
	}
}

func (s *SessionStates) GetStateByID(ctx context.Context, chatID int64) *domain.SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.states[chatID]; !ok {
		s.states[chatID] = &domain.SessionState{}
	}
	return s.states[chatID]
}

func (s *SessionStates) ResetUserState(ctx context.Context, chatID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.states, chatID)
}

func (s *SessionStates) GetCorrelationID(ctx context.Context, chatID int64) string {
	state := s.GetStateByID(ctx, chatID)
	if state.CorrelationID == "" {
		state.CorrelationID = uuid.New().String()
	}
	return state.CorrelationID
}
