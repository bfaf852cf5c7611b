package usecases

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/samirrijal/trigo/internal/core/domain"
	"github.com/samirrijal/trigo/internal/core/ports"
)

// MaxChatBody is the longest accepted message, in characters.
const MaxChatBody = 1000

// ChatService relays messages between a passenger and their trider.
type ChatService struct {
	rides     ports.RideRepository
	publisher ports.EventPublisher
	now       func() time.Time
}

// NewChatService creates a new ChatService.
func NewChatService(rides ports.RideRepository, publisher ports.EventPublisher) *ChatService {
	return &ChatService{rides: rides, publisher: publisher, now: time.Now}
}

// Send publishes a message on a ride that has a trider assigned.
func (s *ChatService) Send(ctx context.Context, rideID, senderID, body string) (*domain.ChatMessage, error) {
	body = strings.TrimSpace(body)
	if n := utf8.RuneCountInString(body); n == 0 || n > MaxChatBody {
		return nil, fmt.Errorf("%w: message must be 1-%d characters", domain.ErrInvalidInput, MaxChatBody)
	}

	ride, err := s.rides.GetByID(ctx, rideID)
	if err != nil {
		return nil, err
	}
	if ride.Status != domain.RideAssigned && ride.Status != domain.RideInProgress {
		return nil, fmt.Errorf("%w: chat is closed for a %s ride", domain.ErrInvalidTransition, ride.Status)
	}

	var role domain.ChatRole
	switch senderID {
	case ride.PassengerID:
		role = domain.ChatPassenger
	case ride.AssignedTriderID:
		role = domain.ChatTrider
	default:
		return nil, fmt.Errorf("%w: sender is not part of ride %s", domain.ErrInvalidInput, rideID)
	}

	if s.publisher == nil {
		return nil, fmt.Errorf("%w: chat relay is not connected", domain.ErrUnavailable)
	}

	msg := &domain.ChatMessage{
		ID:         newID(),
		RideID:     rideID,
		SenderID:   senderID,
		SenderRole: role,
		Body:       body,
		SentAt:     s.now(),
	}
	if err := s.publisher.PublishChatMessage(ctx, msg); err != nil {
		return nil, fmt.Errorf("publish chat message: %w", err)
	}
	return msg, nil
}
