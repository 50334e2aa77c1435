package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"telehealth/internal/domain"
	"telehealth/internal/extraction"
	"telehealth/internal/port"
	"telehealth/internal/prompt"
)

const (
	defaultChatHistory = 10
	maxChatMessageLen  = 4000
)

// chatShape is the assistant's reply. A plain-prose reply is used verbatim.
var chatShape = extraction.Shape{
	{Name: "reply", Type: extraction.String, Default: extraction.RawText},
	{Name: "follow_up_questions", Type: extraction.StringList, Optional: true, Default: extraction.Empty},
	{Name: "urgent", Type: extraction.Bool, Optional: true},
}

// SendMessageInput is the DTO for a patient chat message.
type SendMessageInput struct {
	Message string `json:"message" binding:"required"`
}

// ChatExchange is a stored user message and the assistant's reply to it.
type ChatExchange struct {
	Message *domain.ChatMessage `json:"message"`
	Reply   *domain.ChatMessage `json:"reply"`
}

// ChatService defines the AI assistant chat contract.
type ChatService interface {
	Send(ctx context.Context, userID uuid.UUID, input SendMessageInput) (*ChatExchange, error)
	History(ctx context.Context, userID uuid.UUID, offset, limit int) ([]domain.ChatMessage, int, error)
	Clear(ctx context.Context, userID uuid.UUID) error
}

type chatService struct {
	repo         port.ChatMessageRepository
	patientRepo  port.PatientRepository
	extractor    extraction.Extractor
	historyLimit int
	logger       *slog.Logger
}

// NewChatService creates a new ChatService. historyLimit bounds how many past
// messages are sent with each prompt.
func NewChatService(
	repo port.ChatMessageRepository,
	patientRepo port.PatientRepository,
	extractor extraction.Extractor,
	historyLimit int,
	logger *slog.Logger,
) ChatService {
	if historyLimit <= 0 {
		historyLimit = defaultChatHistory
	}
	return &chatService{
		repo:         repo,
		patientRepo:  patientRepo,
		extractor:    extractor,
		historyLimit: historyLimit,
		logger:       logger,
	}
}

// Send stores the patient's message, asks the model, and stores the reply.
// When the completion call fails the patient's message stays saved and the
// error is returned so the client can offer a retry.
func (s *chatService) Send(ctx context.Context, userID uuid.UUID, input SendMessageInput) (*ChatExchange, error) {
	text := strings.TrimSpace(input.Message)
	if text == "" {
		return nil, domain.ErrEmptyMessage
	}
	if r := []rune(text); len(r) > maxChatMessageLen {
		text = string(r[:maxChatMessageLen])
	}

	patient, err := patientFor(ctx, s.patientRepo, userID)
	if err != nil {
		return nil, err
	}

	history, err := s.repo.ListRecent(ctx, patient.ID, s.historyLimit)
	if err != nil {
		return nil, fmt.Errorf("chat.Send history: %w", err)
	}

	userMsg := &domain.ChatMessage{
		PatientID:        patient.ID,
		Role:             domain.ChatRoleUser,
		Content:          text,
		ExtractionStatus: domain.ExtractionNone,
	}
	if err := s.repo.Create(ctx, userMsg); err != nil {
		return nil, err
	}

	turns := make([]map[string]any, 0, len(history))
	for _, m := range history {
		role := "patient"
		if m.Role == domain.ChatRoleAssistant {
			role = "assistant"
		}
		turns = append(turns, map[string]any{"role": role, "content": m.Content})
	}

	result, err := s.extractor.Extract(ctx, extraction.Request{
		PromptTemplate: prompt.MustTemplate(prompt.Chat),
		Vars: map[string]any{
			"patient_name": patient.FullName,
			"has_history":  len(turns) > 0,
			"history":      turns,
			"message":      text,
		},
		Shape: chatShape,
	})
	if err != nil {
		s.logger.Warn("chat.Send: no reply", "patient_id", patient.ID, "error", err)
		return &ChatExchange{Message: userMsg}, err
	}

	reply := &domain.ChatMessage{
		PatientID:         patient.ID,
		Role:              domain.ChatRoleAssistant,
		Content:           strings.TrimSpace(result.String("reply")),
		FollowUpQuestions: cleanList(result.Strings("follow_up_questions")),
		Urgent:            result.Bool("urgent"),
		ExtractionStatus:  result.Status,
		ModelUsed:         result.Model,
	}
	if reply.Content == "" {
		reply.Content = "Sorry, I could not answer that. Please try rephrasing your question."
	}
	if err := s.repo.Create(ctx, reply); err != nil {
		return nil, err
	}
	return &ChatExchange{Message: userMsg, Reply: reply}, nil
}

func (s *chatService) History(ctx context.Context, userID uuid.UUID, offset, limit int) ([]domain.ChatMessage, int, error) {
	patient, err := patientFor(ctx, s.patientRepo, userID)
	if err != nil {
		return nil, 0, err
	}
	return s.repo.ListByPatient(ctx, patient.ID, offset, limit)
}

func (s *chatService) Clear(ctx context.Context, userID uuid.UUID) error {
	patient, err := patientFor(ctx, s.patientRepo, userID)
	if err != nil {
		return err
	}
	return s.repo.DeleteByPatient(ctx, patient.ID)
}
