package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"connectrpc.com/connect"
	"github.com/google/uuid"

	"github.com/mmynk/clubportal/internal/calendar"
	"github.com/mmynk/clubportal/internal/document"
	"github.com/mmynk/clubportal/internal/metrics"
	"github.com/mmynk/clubportal/internal/models"
	"github.com/mmynk/clubportal/internal/pricing"
	"github.com/mmynk/clubportal/internal/storage"
)

// MembershipService manages club memberships and keeps their fees current.
type MembershipService struct {
	store    storage.Store
	compiler *document.Compiler
	now      func() time.Time
}

// NewMembershipService creates a new MembershipService with the given storage backend.
func NewMembershipService(store storage.Store, compiler *document.Compiler) *MembershipService {
	return &MembershipService{store: store, compiler: compiler, now: time.Now}
}

func (s *MembershipService) today() calendar.Date {
	return calendar.Today(s.now)
}

// membership is a profile with its plan and members.
type membership struct {
	profile *models.ClubProfile
	plan    models.Plan
	members []models.FamilyMember
}

// load reads a profile, its plan and its members. An unknown plan code
// yields a zero plan: every fee is then zero.
func (s *MembershipService) load(ctx context.Context, profileID string) (*membership, error) {
	profile, err := s.store.GetProfile(ctx, profileID)
	if err != nil {
		return nil, err
	}

	m := &membership{profile: profile}
	plan, err := s.store.GetPlan(ctx, profile.PlanCode)
	switch {
	case err == nil:
		m.plan = *plan
	case errors.Is(err, storage.ErrNotFound):
		slog.Warn("Membership plan not found", "profile_id", profile.ID, "plan_code", profile.PlanCode)
	default:
		return nil, err
	}

	if m.members, err = s.store.ListFamilyMembers(ctx, profile.ID); err != nil {
		return nil, err
	}
	return m, nil
}

// recompute prices the membership on today's date and persists the member
// change, the monthly fee and every member fee that changed together.
func (s *MembershipService) recompute(ctx context.Context, m *membership, reason pricing.Reason, change storage.MemberChange) (pricing.Quote, error) {
	quote := pricing.MonthlyFee(*m.profile, m.plan, m.members, s.today())
	changed := quote.Apply(m.profile, m.members)

	if err := s.store.UpdateProfile(ctx, m.profile, change, changed); err != nil {
		return quote, err
	}

	metrics.FeeRecomputations.WithLabelValues(string(reason)).Inc()
	slog.Info("Monthly fee recomputed",
		"profile_id", m.profile.ID,
		"reason", reason,
		"monthly_fee", quote.Total,
		"changed_members", len(changed),
	)
	return quote, nil
}

func (s *MembershipService) respond(m *membership, quote pricing.Quote) *connect.Response[MembershipResponse] {
	members := m.members
	if members == nil {
		members = []models.FamilyMember{}
	}
	return connect.NewResponse(&MembershipResponse{
		Profile: *m.profile,
		Plan:    m.plan,
		Members: members,
		Quote:   quote,
	})
}

// GetMembership returns a membership with a fresh quote. Nothing is written.
func (s *MembershipService) GetMembership(ctx context.Context, req *connect.Request[GetMembershipRequest]) (*connect.Response[MembershipResponse], error) {
	slog.Info("GetMembership request received", "profile_id", req.Msg.ProfileID)

	if err := validateRequest(req.Msg); err != nil {
		return nil, err
	}
	m, err := s.load(ctx, req.Msg.ProfileID)
	if err != nil {
		slog.Error("GetMembership failed", "profile_id", req.Msg.ProfileID, "error", err)
		return nil, toConnectError("adhésion introuvable", err)
	}

	quote := pricing.MonthlyFee(*m.profile, m.plan, m.members, s.today())
	return s.respond(m, quote), nil
}

// AddFamilyMember adds a dependent and recomputes the fees.
func (s *MembershipService) AddFamilyMember(ctx context.Context, req *connect.Request[AddFamilyMemberRequest]) (*connect.Response[MembershipResponse], error) {
	slog.Info("AddFamilyMember request received", "profile_id", req.Msg.ProfileID, "relation", req.Msg.Member.Relation)

	if err := validateRequest(req.Msg); err != nil {
		return nil, err
	}
	member, err := req.Msg.Member.toModel()
	if err != nil {
		return nil, invalid("date de naissance invalide", err)
	}

	m, err := s.load(ctx, req.Msg.ProfileID)
	if err != nil {
		slog.Error("AddFamilyMember failed", "profile_id", req.Msg.ProfileID, "error", err)
		return nil, toConnectError("adhésion introuvable", err)
	}

	// The quote keys fees by member ID, so the new member gets one up front.
	member.ID = uuid.New().String()
	member.ProfileID = m.profile.ID
	m.members = append(m.members, member)
	added := &m.members[len(m.members)-1]

	quote, err := s.recompute(ctx, m, pricing.ReasonMemberAdded, storage.MemberChange{Add: added})
	if err != nil {
		slog.Error("AddFamilyMember failed", "profile_id", m.profile.ID, "error", err)
		return nil, toConnectError("impossible d'ajouter le membre", err)
	}

	slog.Info("AddFamilyMember successful", "profile_id", m.profile.ID, "member_id", member.ID)
	return s.respond(m, quote), nil
}

// UpdateFamilyMember rewrites a dependent and recomputes the fees.
func (s *MembershipService) UpdateFamilyMember(ctx context.Context, req *connect.Request[UpdateFamilyMemberRequest]) (*connect.Response[MembershipResponse], error) {
	slog.Info("UpdateFamilyMember request received", "profile_id", req.Msg.ProfileID, "member_id", req.Msg.MemberID)

	if err := validateRequest(req.Msg); err != nil {
		return nil, err
	}
	update, err := req.Msg.Member.toModel()
	if err != nil {
		return nil, invalid("date de naissance invalide", err)
	}

	m, err := s.load(ctx, req.Msg.ProfileID)
	if err != nil {
		slog.Error("UpdateFamilyMember failed", "profile_id", req.Msg.ProfileID, "error", err)
		return nil, toConnectError("adhésion introuvable", err)
	}

	i := indexOfMember(m.members, req.Msg.MemberID)
	if i < 0 {
		return nil, toConnectError("membre introuvable", storage.ErrNotFound)
	}
	member := &m.members[i]
	member.Name = update.Name
	member.Relation = update.Relation
	member.BirthDate = update.BirthDate

	quote, err := s.recompute(ctx, m, pricing.ReasonMemberUpdated, storage.MemberChange{Update: member})
	if err != nil {
		slog.Error("UpdateFamilyMember failed", "member_id", member.ID, "error", err)
		return nil, toConnectError("impossible de modifier le membre", err)
	}

	slog.Info("UpdateFamilyMember successful", "profile_id", m.profile.ID, "member_id", member.ID)
	return s.respond(m, quote), nil
}

// RemoveFamilyMember removes a dependent and recomputes the fees.
func (s *MembershipService) RemoveFamilyMember(ctx context.Context, req *connect.Request[RemoveFamilyMemberRequest]) (*connect.Response[MembershipResponse], error) {
	slog.Info("RemoveFamilyMember request received", "profile_id", req.Msg.ProfileID, "member_id", req.Msg.MemberID)

	if err := validateRequest(req.Msg); err != nil {
		return nil, err
	}
	m, err := s.load(ctx, req.Msg.ProfileID)
	if err != nil {
		slog.Error("RemoveFamilyMember failed", "profile_id", req.Msg.ProfileID, "error", err)
		return nil, toConnectError("adhésion introuvable", err)
	}

	i := indexOfMember(m.members, req.Msg.MemberID)
	if i < 0 {
		return nil, toConnectError("membre introuvable", storage.ErrNotFound)
	}
	m.members = append(m.members[:i], m.members[i+1:]...)

	quote, err := s.recompute(ctx, m, pricing.ReasonMemberRemoved, storage.MemberChange{Remove: req.Msg.MemberID})
	if err != nil {
		slog.Error("RemoveFamilyMember failed", "member_id", req.Msg.MemberID, "error", err)
		return nil, toConnectError("impossible de retirer le membre", err)
	}

	slog.Info("RemoveFamilyMember successful", "profile_id", m.profile.ID, "member_id", req.Msg.MemberID)
	return s.respond(m, quote), nil
}

// ChangePlan switches a membership to another plan and recomputes the fees.
func (s *MembershipService) ChangePlan(ctx context.Context, req *connect.Request[ChangePlanRequest]) (*connect.Response[MembershipResponse], error) {
	slog.Info("ChangePlan request received", "profile_id", req.Msg.ProfileID, "plan_code", req.Msg.PlanCode, "couple", req.Msg.Couple)

	if err := validateRequest(req.Msg); err != nil {
		return nil, err
	}
	code := strings.TrimSpace(req.Msg.PlanCode)
	plan, err := s.store.GetPlan(ctx, code)
	if err != nil {
		slog.Error("ChangePlan failed", "plan_code", code, "error", err)
		return nil, toConnectError("formule introuvable", err)
	}

	m, err := s.load(ctx, req.Msg.ProfileID)
	if err != nil {
		slog.Error("ChangePlan failed", "profile_id", req.Msg.ProfileID, "error", err)
		return nil, toConnectError("adhésion introuvable", err)
	}
	m.profile.PlanCode = plan.Code
	m.profile.Couple = req.Msg.Couple
	m.plan = *plan

	quote, err := s.recompute(ctx, m, pricing.ReasonPlanChanged, storage.MemberChange{})
	if err != nil {
		slog.Error("ChangePlan recompute failed", "profile_id", m.profile.ID, "error", err)
		return nil, toConnectError("impossible de changer de formule", err)
	}

	slog.Info("ChangePlan successful", "profile_id", m.profile.ID, "plan_code", plan.Code, "monthly_fee", quote.Total)
	return s.respond(m, quote), nil
}

// RenderMembershipSheet compiles the membership sheet of a profile.
func (s *MembershipService) RenderMembershipSheet(ctx context.Context, req *connect.Request[RenderMembershipSheetRequest]) (*connect.Response[RenderMembershipSheetResponse], error) {
	slog.Info("RenderMembershipSheet request received", "profile_id", req.Msg.ProfileID)

	if err := validateRequest(req.Msg); err != nil {
		return nil, err
	}
	m, err := s.load(ctx, req.Msg.ProfileID)
	if err != nil {
		slog.Error("RenderMembershipSheet failed", "profile_id", req.Msg.ProfileID, "error", err)
		return nil, toConnectError("adhésion introuvable", err)
	}

	// A missing holder renders with empty member fields.
	var holder models.User
	if u, err := s.store.GetUser(ctx, m.profile.UserID); err == nil {
		holder = *u
	} else if !errors.Is(err, storage.ErrNotFound) {
		return nil, toConnectError("impossible de charger l'adhérent", err)
	}

	tmpl, err := loadTemplate(ctx, s.store, document.KindFicheTechnique)
	if err != nil {
		return nil, toConnectError("impossible de charger le modèle", err)
	}

	html, err := s.compiler.CompileMembershipSheet(tmpl, document.MembershipRecord{
		Member:  document.PartyFromUser(holder),
		Profile: *m.profile,
		Plan:    m.plan,
		Family:  m.members,
		Today:   s.today(),
	})
	if err != nil {
		slog.Error("RenderMembershipSheet failed", "profile_id", m.profile.ID, "error", err)
		return nil, toConnectError("impossible de générer la fiche", err)
	}

	metrics.DocumentsCompiled.WithLabelValues(string(document.KindFicheTechnique)).Inc()
	slog.Info("RenderMembershipSheet successful", "profile_id", m.profile.ID, "bytes", len(html))
	return connect.NewResponse(&RenderMembershipSheetResponse{HTML: html}), nil
}

func (in FamilyMemberInput) toModel() (models.FamilyMember, error) {
	birth, err := calendar.Parse(in.BirthDate)
	if err != nil {
		return models.FamilyMember{}, err
	}
	return models.FamilyMember{
		Name:      strings.TrimSpace(in.Name),
		Relation:  models.Relation(in.Relation),
		BirthDate: birth,
	}, nil
}

func indexOfMember(members []models.FamilyMember, id string) int {
	for i, m := range members {
		if m.ID == id {
			return i
		}
	}
	return -1
}
