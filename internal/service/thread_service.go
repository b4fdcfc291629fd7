package service

import (
	"github.com/courierlab/messenger-backend/internal/common"
	"github.com/courierlab/messenger-backend/internal/domain"
	"github.com/courierlab/messenger-backend/internal/repository"
)

// ThreadService read-only materialization of conversation reply
// forests.
type ThreadService interface {
	GetConversationThread(userA, userB uint64) ([]*domain.ThreadNode, error)
}

type threadService struct {
	messages repository.MessageRepository
}

// NewThreadService creates a new ThreadService
func NewThreadService(messages repository.MessageRepository) ThreadService {
	return &threadService{messages: messages}
}

// GetConversationThread fetches the conversation between two users in
// one round trip and materializes it into a reply forest.
func (s *threadService) GetConversationThread(userA, userB uint64) ([]*domain.ThreadNode, error) {
	messages, err := s.messages.FindConversation(userA, userB)
	if err != nil {
		return nil, err
	}
	return MaterializeForest(messages)
}

// MaterializeForest builds a reply forest from a flat message set.
// An adjacency map is built in one pass over the input, so no further
// store round trips happen per node. Top-level messages (no parent, or
// parent outside the input set) become roots; replies keep the input's
// sibling order. The same input always yields the same forest.
//
// A parent cycle in the input leaves its members unreachable from any
// root, which is reported as ErrCycleDetected instead of recursing
// forever. The store prevents cycles at write time, so this path is
// defensive.
func MaterializeForest(messages []domain.Message) ([]*domain.ThreadNode, error) {
	if len(messages) == 0 {
		return []*domain.ThreadNode{}, nil
	}

	nodes := make(map[uint64]*domain.ThreadNode, len(messages))
	for i := range messages {
		nodes[messages[i].ID] = &domain.ThreadNode{Message: messages[i]}
	}

	var roots []*domain.ThreadNode
	for i := range messages {
		m := &messages[i]
		if m.ParentID != nil && *m.ParentID == m.ID {
			return nil, common.ErrCycleDetected
		}
		if m.ParentID == nil {
			roots = append(roots, nodes[m.ID])
			continue
		}
		parent, ok := nodes[*m.ParentID]
		if !ok {
			// Parent not part of this fetch: treat the reply as a root
			// rather than dropping it.
			roots = append(roots, nodes[m.ID])
			continue
		}
		parent.Replies = append(parent.Replies, nodes[m.ID])
	}

	// Every message carries at most one parent, so any node left
	// unreachable from the roots sits on a parent cycle.
	reached := 0
	var visit func(node *domain.ThreadNode)
	visit = func(node *domain.ThreadNode) {
		reached++
		for _, reply := range node.Replies {
			visit(reply)
		}
	}
	for _, root := range roots {
		visit(root)
	}
	if reached != len(nodes) {
		return nil, common.ErrCycleDetected
	}

	return roots, nil
}
