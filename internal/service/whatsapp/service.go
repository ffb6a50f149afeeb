package whatsapp

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/stocktake/internal/config"
	"github.com/mamadbah2/stocktake/internal/domain/models"
)

const failureReply = "Sorry, that could not be saved. Please try again."

// MessagingService describes the operations the HTTP layer can perform.
type MessagingService interface {
	VerifyWebhookToken(mode, verifyToken, challenge string) (string, error)
	HandleWebhook(ctx context.Context, payload models.WebhookPayload) error
}

// Sender delivers text replies.
type Sender interface {
	SendText(ctx context.Context, to, body string) (string, error)
}

// Dispatcher executes a parsed command and returns the reply text.
type Dispatcher interface {
	HandleCommand(ctx context.Context, cmd models.Command, sender string) (string, error)
}

// MetaWhatsAppService is the production implementation backed by WhatsApp Cloud API.
type MetaWhatsAppService struct {
	verifyToken string
	allowed     map[string]struct{}
	sender      Sender
	dispatcher  Dispatcher
	logger      *zap.Logger
}

// NewMetaWhatsAppService wires a new service instance. An empty allow list
// accepts commands from any number.
func NewMetaWhatsAppService(cfg config.WhatsAppConfig, sender Sender, dispatcher Dispatcher, logger *zap.Logger) *MetaWhatsAppService {
	svc := &MetaWhatsAppService{
		verifyToken: cfg.VerifyToken,
		allowed:     make(map[string]struct{}, len(cfg.AllowedSenders)),
		sender:      sender,
		dispatcher:  dispatcher,
		logger:      logger,
	}
	for _, number := range cfg.AllowedSenders {
		svc.allowed[number] = struct{}{}
	}
	if svc.logger == nil {
		svc.logger = zap.NewNop()
	}
	return svc
}

// VerifyWebhookToken validates the callback verification token.
func (s *MetaWhatsAppService) VerifyWebhookToken(mode, verifyToken, challenge string) (string, error) {
	if mode == "" || verifyToken == "" {
		return "", errors.New("missing mode or verify token")
	}

	if !strings.EqualFold(mode, "subscribe") {
		return "", fmt.Errorf("unsupported hub.mode %s", mode)
	}

	if verifyToken != s.verifyToken {
		return "", errors.New("invalid verify token")
	}

	return challenge, nil
}

// HandleWebhook processes inbound webhook payloads. It returns the first
// reply delivery failure; command failures are answered and logged.
func (s *MetaWhatsAppService) HandleWebhook(ctx context.Context, payload models.WebhookPayload) error {
	var firstErr error

	for _, entry := range payload.Entry {
		for _, change := range entry.Changes {
			for _, msg := range change.Value.Messages {
				if err := s.handleInboundMessage(ctx, msg); err != nil {
					s.logger.Error("failed to handle inbound message", zap.Error(err), zap.String("message_id", msg.ID))
					if firstErr == nil {
						firstErr = err
					}
				}
			}
		}
	}

	return firstErr
}

func (s *MetaWhatsAppService) handleInboundMessage(ctx context.Context, msg models.InboundMessage) error {
	if !s.isAllowed(msg.From) {
		s.logger.Warn("ignoring message from unknown sender", zap.String("from", msg.From))
		return nil
	}

	text := extractMessageText(msg)
	if text == "" {
		s.logger.Debug("ignoring message without text", zap.String("type", msg.Type))
		return nil
	}

	cmd := models.ParseCommand(text)
	s.logger.Info("parsed inbound command",
		zap.String("from", msg.From),
		zap.String("command", string(cmd.Type)),
		zap.Strings("args", cmd.Args))

	reply, err := s.dispatcher.HandleCommand(ctx, cmd, msg.From)
	if err != nil {
		s.logger.Error("command failed", zap.String("command", string(cmd.Type)), zap.Error(err))
		reply = failureReply
	}

	ctxWithTimeout, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if _, err := s.sender.SendText(ctxWithTimeout, msg.From, reply); err != nil {
		return fmt.Errorf("reply to %s: %w", msg.From, err)
	}
	return nil
}

func (s *MetaWhatsAppService) isAllowed(from string) bool {
	if len(s.allowed) == 0 {
		return true
	}
	_, ok := s.allowed[from]
	return ok
}

func extractMessageText(msg models.InboundMessage) string {
	if msg.Text != nil {
		return strings.TrimSpace(msg.Text.Body)
	}

	if msg.Interactive != nil {
		if msg.Interactive.ButtonReply != nil {
			return msg.Interactive.ButtonReply.ID
		}
		if msg.Interactive.ListReply != nil {
			return msg.Interactive.ListReply.ID
		}
	}

	return ""
}
