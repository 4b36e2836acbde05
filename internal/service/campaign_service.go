package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"connectrpc.com/connect"

	"github.com/mmynk/clubportal/internal/mail"
	"github.com/mmynk/clubportal/internal/middleware"
	"github.com/mmynk/clubportal/internal/storage"
)

// CampaignService sends markdown email campaigns through the email function.
type CampaignService struct {
	store  storage.Store
	sender mail.Sender
}

// NewCampaignService creates a new CampaignService. A nil sender disables
// sending: every campaign is refused with Unavailable.
func NewCampaignService(store storage.Store, sender mail.Sender) *CampaignService {
	return &CampaignService{store: store, sender: sender}
}

// SendCampaign sends one email per recipient. Recipients listed by user ID
// are resolved first and appended after the explicit ones. Failed
// recipients are reported, not returned as an error.
func (s *CampaignService) SendCampaign(ctx context.Context, req *connect.Request[SendCampaignRequest]) (*connect.Response[SendCampaignResponse], error) {
	slog.Info("SendCampaign request received",
		"subject", req.Msg.Subject,
		"recipients", len(req.Msg.Recipients),
		"user_ids", len(req.Msg.UserIDs),
		"admin_id", middleware.GetAdminID(ctx),
	)

	if s.sender == nil {
		return nil, connect.NewError(connect.CodeUnavailable, errors.New("l'envoi d'emails n'est pas configuré"))
	}
	if err := validateRequest(req.Msg); err != nil {
		return nil, err
	}

	recipients, err := s.recipients(ctx, req.Msg)
	if err != nil {
		slog.Error("SendCampaign failed", "error", err)
		return nil, toConnectError("impossible de charger les destinataires", err)
	}

	report, err := mail.SendCampaign(ctx, s.sender, mail.Campaign{
		Subject:      req.Msg.Subject,
		BodyMarkdown: req.Msg.BodyMarkdown,
		Recipients:   recipients,
	})
	if err != nil {
		slog.Error("SendCampaign failed", "attempted", report.Attempted, "error", err)
		return nil, toConnectError("impossible d'envoyer la campagne", err)
	}

	slog.Info("SendCampaign successful", "sent", report.Sent, "failed", report.Failed())
	return connect.NewResponse(&SendCampaignResponse{Report: report}), nil
}

// recipients merges the explicit recipients with the users named by ID.
// Users without an email address are skipped; unknown IDs are not an error.
func (s *CampaignService) recipients(ctx context.Context, msg *SendCampaignRequest) ([]mail.Recipient, error) {
	out := make([]mail.Recipient, 0, len(msg.Recipients)+len(msg.UserIDs))
	out = append(out, msg.Recipients...)
	if len(msg.UserIDs) == 0 {
		return out, nil
	}

	users, err := s.store.GetUsersByIDs(ctx, msg.UserIDs)
	if err != nil {
		return nil, err
	}
	for _, id := range msg.UserIDs {
		u, ok := users[id]
		if !ok {
			slog.Warn("Campaign recipient not found", "user_id", id)
			continue
		}
		if strings.TrimSpace(u.Email) == "" {
			slog.Warn("Campaign recipient has no email", "user_id", id)
			continue
		}
		out = append(out, mail.Recipient{Email: u.Email, Name: u.Name})
	}
	return out, nil
}
