package store

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/kenechi-dev/gighall/internal/apperr"
	"github.com/kenechi-dev/gighall/internal/model"
)

// Memory is the default backing store: plain maps behind a single RWMutex.
// Holding one lock across all tables is what makes AcceptBid atomic for
// direct readers of the store. Values are copied in and out so callers never
// alias store-owned state.
type Memory struct {
	mu                 sync.RWMutex
	users              map[string]model.User
	usersByEmail       map[string]string
	clientProfiles     map[string]model.ClientProfile
	freelancerProfiles map[string]model.FreelancerProfile
	requests           map[string]model.ServiceRequest
	bids               map[string]model.Bid
	messages           []model.Message
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		users:              make(map[string]model.User),
		usersByEmail:       make(map[string]string),
		clientProfiles:     make(map[string]model.ClientProfile),
		freelancerProfiles: make(map[string]model.FreelancerProfile),
		requests:           make(map[string]model.ServiceRequest),
		bids:               make(map[string]model.Bid),
	}
}

// ----- UserStore -----

func (s *Memory) CreateUser(ctx context.Context, u *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := strings.ToLower(u.Email)
	if _, exists := s.usersByEmail[key]; exists {
		return apperr.Conflictf("email %s already registered", u.Email)
	}
	s.users[u.ID] = *u
	s.usersByEmail[key] = u.ID
	return nil
}

func (s *Memory) GetUser(ctx context.Context, id string) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return nil, apperr.NotFoundf("user %s", id)
	}
	return &u, nil
}

func (s *Memory) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.usersByEmail[strings.ToLower(email)]
	if !ok {
		return nil, apperr.NotFoundf("user with email %s", email)
	}
	u := s.users[id]
	return &u, nil
}

func (s *Memory) SaveClientProfile(ctx context.Context, userID string, p *model.ClientProfile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[userID]; !ok {
		return apperr.NotFoundf("user %s", userID)
	}
	s.clientProfiles[userID] = *p
	return nil
}

func (s *Memory) SaveFreelancerProfile(ctx context.Context, userID string, p *model.FreelancerProfile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[userID]; !ok {
		return apperr.NotFoundf("user %s", userID)
	}
	cp := *p
	cp.Skills = append([]string(nil), p.Skills...)
	s.freelancerProfiles[userID] = cp
	return nil
}

// ----- RequestStore -----

func (s *Memory) CreateRequest(ctx context.Context, r *model.ServiceRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *r
	cp.SkillsRequired = append([]string(nil), r.SkillsRequired...)
	s.requests[r.ID] = cp
	return nil
}

func (s *Memory) GetRequest(ctx context.Context, id string) (*model.ServiceRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.requests[id]
	if !ok {
		return nil, apperr.NotFoundf("service request %s", id)
	}
	r.SkillsRequired = append([]string(nil), r.SkillsRequired...)
	return &r, nil
}

func (s *Memory) UpdateRequestStatus(ctx context.Context, id, status string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.requests[id]
	if !ok {
		return apperr.NotFoundf("service request %s", id)
	}
	r.Status = status
	s.requests[id] = r
	return nil
}

func (s *Memory) ListRequestsByClient(ctx context.Context, clientID string) ([]model.ServiceRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []model.ServiceRequest
	for _, r := range s.requests {
		if r.ClientID == clientID {
			r.SkillsRequired = append([]string(nil), r.SkillsRequired...)
			out = append(out, r)
		}
	}
	sortRequests(out)
	return out, nil
}

func (s *Memory) ListOpenRequests(ctx context.Context) ([]model.ServiceRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []model.ServiceRequest
	for _, r := range s.requests {
		if r.Status == model.RequestOpen {
			r.SkillsRequired = append([]string(nil), r.SkillsRequired...)
			out = append(out, r)
		}
	}
	sortRequests(out)
	return out, nil
}

// ----- BidStore -----

func (s *Memory) CreateBid(ctx context.Context, b *model.Bid) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bids[b.ID] = *b
	return nil
}

func (s *Memory) GetBid(ctx context.Context, id string) (*model.Bid, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.bids[id]
	if !ok {
		return nil, apperr.NotFoundf("bid %s", id)
	}
	return &b, nil
}

func (s *Memory) ListBidsByRequest(ctx context.Context, requestID string) ([]model.Bid, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []model.Bid
	for _, b := range s.bids {
		if b.RequestID == requestID {
			out = append(out, b)
		}
	}
	sortBids(out)
	return out, nil
}

func (s *Memory) ListBidsByFreelancer(ctx context.Context, freelancerID string) ([]model.Bid, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []model.Bid
	for _, b := range s.bids {
		if b.FreelancerID == freelancerID {
			out = append(out, b)
		}
	}
	sortBids(out)
	return out, nil
}

// AcceptBid applies the whole accept transaction under the store write lock:
// target bid accepted, every sibling pending bid rejected, parent request
// moved to in_progress. Precondition checks live in the bid ledger; here the
// state is assumed already validated under the ledger's per-request lock.
func (s *Memory) AcceptBid(ctx context.Context, requestID, bidID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	target, ok := s.bids[bidID]
	if !ok || target.RequestID != requestID {
		return apperr.NotFoundf("bid %s on request %s", bidID, requestID)
	}
	r, ok := s.requests[requestID]
	if !ok {
		return apperr.NotFoundf("service request %s", requestID)
	}

	target.Status = model.BidAccepted
	s.bids[bidID] = target
	for id, b := range s.bids {
		if b.RequestID == requestID && id != bidID && b.Status == model.BidPending {
			b.Status = model.BidRejected
			s.bids[id] = b
		}
	}
	r.Status = model.RequestInProgress
	s.requests[requestID] = r
	return nil
}

// ----- MessageStore -----

func (s *Memory) AppendMessage(ctx context.Context, m *model.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = append(s.messages, *m)
	return nil
}

func (s *Memory) Conversation(ctx context.Context, a, b string) ([]model.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []model.Message
	for _, m := range s.messages {
		if betweenPair(&m, a, b) {
			out = append(out, m)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s *Memory) MarkConversationRead(ctx context.Context, receiverID, senderID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.messages {
		if s.messages[i].ReceiverID == receiverID && s.messages[i].SenderID == senderID {
			s.messages[i].Read = true
		}
	}
	return nil
}

func (s *Memory) HasConversation(ctx context.Context, a, b string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := range s.messages {
		if betweenPair(&s.messages[i], a, b) {
			return true, nil
		}
	}
	return false, nil
}

func betweenPair(m *model.Message, a, b string) bool {
	return (m.SenderID == a && m.ReceiverID == b) || (m.SenderID == b && m.ReceiverID == a)
}

func sortRequests(rs []model.ServiceRequest) {
	sort.SliceStable(rs, func(i, j int) bool { return rs[i].CreatedAt.Before(rs[j].CreatedAt) })
}

func sortBids(bs []model.Bid) {
	sort.SliceStable(bs, func(i, j int) bool { return bs[i].CreatedAt.Before(bs[j].CreatedAt) })
}
