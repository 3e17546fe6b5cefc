package bot

import (
	"sync"

	"github.com/markdavidb/loan-manager-bot/internal/domain"
)

// Conversation states for the multi-step flows. Telegram messages arrive
// one at a time, so each chat carries a small in-memory draft between
// steps.
type state int

const (
	stateIdle state = iota
	stateLoanName
	stateLoanAmount
	stateLoanPayments
	stateLoanConfirm
	stateSearchName
)

type loanDraft struct {
	Name          string
	Amount        float64
	Frequency     domain.Frequency
	Payments      int
	PaymentAmount float64
}

type session struct {
	State state
	Draft loanDraft
}

type sessions struct {
	mu sync.Mutex
	m  map[int64]*session
}

func newSessions() *sessions {
	return &sessions{m: make(map[int64]*session)}
}

func (s *sessions) get(chatID int64) *session {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.m[chatID]
	if !ok {
		sess = &session{}
		s.m[chatID] = sess
	}
	return sess
}

func (s *sessions) clear(chatID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.m, chatID)
}
