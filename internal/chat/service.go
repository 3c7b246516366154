// Package chat orchestrates one conversational turn: audit the incoming
// message, extract an expense or query through the configured path, normalize
// the candidate and either persist it or ask for clarification.
package chat

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/hippocampus-app/hippocampus/constants"
	"github.com/hippocampus-app/hippocampus/internal/classify"
	"github.com/hippocampus-app/hippocampus/internal/entity"
	"github.com/hippocampus-app/hippocampus/internal/llm"
	"github.com/hippocampus-app/hippocampus/internal/normalize"
	"github.com/hippocampus-app/hippocampus/internal/repair"
	"github.com/hippocampus-app/hippocampus/internal/repository"
)

// ReplyKind tells the caller what a turn produced.
type ReplyKind string

const (
	ReplyLogged        ReplyKind = "logged"
	ReplyTotal         ReplyKind = "total"
	ReplyClarification ReplyKind = "clarification"
)

// Reply is the assistant's answer to one turn.
type Reply struct {
	Kind    ReplyKind       `json:"kind"`
	Text    string          `json:"text"`
	Expense *entity.Expense `json:"expense,omitempty"`
	Total   *TotalResult    `json:"total,omitempty"`
}

// TotalResult carries the figures behind a spending answer.
type TotalResult struct {
	Start    string  `json:"start"`
	End      string  `json:"end"` // exclusive
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency"`
	Category string  `json:"category,omitempty"`
	Scope    string  `json:"scope"`
}

// MonthlySummary is the current-month dashboard payload.
type MonthlySummary struct {
	Start      string             `json:"start"`
	End        string             `json:"end"`
	Total      float64            `json:"total"`
	Currency   string             `json:"currency"`
	ByCategory map[string]float64 `json:"by_category"`
	ByMember   map[string]float64 `json:"by_member"`
}

// Service wires the extraction paths to the store. The router is nil when
// text messages are handled by the local classifier alone.
type Service struct {
	store      repository.Store
	router     llm.Router
	extractor  llm.ReceiptExtractor
	classifier *classify.Classifier
	normalizer *normalize.Normalizer

	householdName   string
	defaultCurrency string
	logger          *slog.Logger
	now             func() time.Time
}

func NewService(store repository.Store, router llm.Router, extractor llm.ReceiptExtractor,
	householdName, defaultCurrency string, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	if defaultCurrency == "" {
		defaultCurrency = constants.DefaultCurrency
	}
	return &Service{
		store:           store,
		router:          router,
		extractor:       extractor,
		classifier:      classify.NewClassifier(defaultCurrency),
		normalizer:      normalize.New(defaultCurrency),
		householdName:   householdName,
		defaultCurrency: defaultCurrency,
		logger:          logger,
		now:             time.Now,
	}
}

// HandleMessage processes one chat utterance from a member.
func (s *Service) HandleMessage(ctx context.Context, memberName, text string) (Reply, error) {
	rid := uuid.New().String()
	start := s.now()

	household, member, err := s.identity(ctx, memberName)
	if err != nil {
		return Reply{}, err
	}
	if err := s.audit(ctx, household.ID, member.ID, "user", text); err != nil {
		return Reply{}, err
	}

	reply, err := s.route(ctx, rid, household, member, text)
	if err != nil {
		return Reply{}, err
	}

	if err := s.audit(ctx, household.ID, member.ID, "assistant", reply.Text); err != nil {
		return Reply{}, err
	}
	s.logger.Info("chat.turn.ok", "req_id", rid, "member", memberName, "kind", reply.Kind,
		"elapsed_ms", time.Since(start).Milliseconds())
	return reply, nil
}

func (s *Service) route(ctx context.Context, rid string, household entity.Household, member entity.Member, text string) (Reply, error) {
	if s.router == nil {
		result := s.classifier.Classify(text, member.DisplayName, s.now())
		if result.Expense != nil {
			return s.logExpense(ctx, household, member, *result.Expense)
		}
		return s.answerQuery(ctx, household, member, *result.Query)
	}

	out, err := s.router.Route(ctx, text, member.DisplayName)
	if err != nil {
		if llm.IsBadShape(err) {
			s.logger.Warn("chat.route.bad_shape", "req_id", rid, "error", err)
			return Reply{Kind: ReplyClarification,
				Text: "I couldn't quite understand that. Could you rephrase, e.g. \"Spent 350 on groceries\"?"}, nil
		}
		return Reply{}, err
	}

	switch out.Kind {
	case llm.OutcomeExpense:
		candidate := normalize.ExpenseFromSeed(*out.Expense, constants.SourceText, text)
		return s.logExpense(ctx, household, member, candidate)
	case llm.OutcomeQuery:
		query := normalize.QueryFromSeed(*out.Query, member.DisplayName)
		return s.answerQuery(ctx, household, member, query)
	default:
		return Reply{Kind: ReplyClarification, Text: out.Clarification}, nil
	}
}

// HandleReceipt processes an uploaded receipt or payment screenshot. The
// image goes through the vision extractor, the transcript repairs and then
// the same normalizer as text. Image expenses always use the household
// default currency.
func (s *Service) HandleReceipt(ctx context.Context, memberName string, image []byte) (Reply, error) {
	rid := uuid.New().String()
	start := s.now()

	if s.extractor == nil {
		return Reply{}, fmt.Errorf("no receipt extractor configured")
	}

	household, member, err := s.identity(ctx, memberName)
	if err != nil {
		return Reply{}, err
	}

	seed, err := s.extractor.Extract(ctx, image)
	if err != nil {
		return Reply{}, fmt.Errorf("extracting receipt: %w", err)
	}
	seed = repair.Repair(seed, s.now())

	candidate := normalize.ExpenseFromSeed(seed, constants.SourceImage, seed.RawText)
	candidate.Currency = s.defaultCurrency

	reply, err := s.logExpense(ctx, household, member, candidate)
	if err != nil {
		return Reply{}, err
	}
	if err := s.audit(ctx, household.ID, member.ID, "assistant", reply.Text); err != nil {
		return Reply{}, err
	}
	s.logger.Info("chat.receipt.ok", "req_id", rid, "member", memberName, "kind", reply.Kind,
		"elapsed_ms", time.Since(start).Milliseconds())
	return reply, nil
}

func (s *Service) logExpense(ctx context.Context, household entity.Household, member entity.Member, candidate entity.ExpenseCandidate) (Reply, error) {
	normalized, err := s.normalizer.NormalizeExpense(candidate)
	if err != nil {
		if msg, ok := normalize.AsClarification(err); ok {
			return Reply{Kind: ReplyClarification, Text: msg}, nil
		}
		return Reply{}, err
	}

	exp := entity.Expense{
		ID:          uuid.New(),
		HouseholdID: household.ID,
		MemberID:    member.ID,
		Amount:      normalized.Amount,
		Currency:    normalized.Currency,
		Category:    normalized.Category,
		ExpenseDate: normalized.ExpenseDate,
		Description: normalized.Description,
		Source:      normalized.Source,
		RawText:     normalized.RawText,
	}
	if err := s.store.InsertExpense(ctx, exp); err != nil {
		return Reply{}, err
	}

	text := fmt.Sprintf("Logged: %s %.2f · %s · %s",
		exp.Currency, exp.Amount, exp.Category, exp.ExpenseDate)
	return Reply{Kind: ReplyLogged, Text: text, Expense: &exp}, nil
}

func (s *Service) answerQuery(ctx context.Context, household entity.Household, member entity.Member, q entity.QueryCandidate) (Reply, error) {
	q = s.normalizer.NormalizeQuery(q, s.now())

	filter := repository.ExpenseFilter{
		HouseholdID: household.ID,
		Start:       q.Start,
		End:         q.End,
		Category:    q.Category,
	}
	if q.Scope == constants.ScopeSelf {
		filter.MemberID = &member.ID
	}

	total, err := s.store.SumExpenses(ctx, filter)
	if err != nil {
		return Reply{}, err
	}

	result := &TotalResult{
		Start:    q.Start,
		End:      q.End,
		Amount:   total,
		Currency: s.defaultCurrency,
		Scope:    string(q.Scope),
	}
	if q.Category != nil {
		result.Category = string(*q.Category)
	}

	subject := "You"
	if q.Scope == constants.ScopeHousehold {
		subject = "Together you"
	}
	what := "in total"
	if q.Category != nil {
		what = "on " + string(*q.Category)
	}
	text := fmt.Sprintf("%s spent %s %.2f %s between %s and %s.",
		subject, result.Currency, total, what, q.Start, q.End)
	return Reply{Kind: ReplyTotal, Text: text, Total: result}, nil
}

// MonthlyTotals reports the current calendar month for the whole household.
func (s *Service) MonthlyTotals(ctx context.Context) (MonthlySummary, error) {
	household, err := s.store.EnsureHousehold(ctx, s.householdName)
	if err != nil {
		return MonthlySummary{}, err
	}

	start, end := classify.MonthWindow(s.now())
	filter := repository.ExpenseFilter{HouseholdID: household.ID, Start: start, End: end}

	total, err := s.store.SumExpenses(ctx, filter)
	if err != nil {
		return MonthlySummary{}, err
	}
	byCat, err := s.store.SumByCategory(ctx, filter)
	if err != nil {
		return MonthlySummary{}, err
	}
	byMember, err := s.store.SumByMember(ctx, filter)
	if err != nil {
		return MonthlySummary{}, err
	}

	summary := MonthlySummary{
		Start:      start,
		End:        end,
		Total:      total,
		Currency:   s.defaultCurrency,
		ByCategory: make(map[string]float64, len(byCat)),
		ByMember:   byMember,
	}
	for cat, sum := range byCat {
		summary.ByCategory[string(cat)] = sum
	}
	return summary, nil
}

// ExportFilter builds the household-wide filter for a date window, defaulting
// to the current month when the window is absent or malformed.
func (s *Service) ExportFilter(ctx context.Context, start, end string) (repository.ExpenseFilter, error) {
	household, err := s.store.EnsureHousehold(ctx, s.householdName)
	if err != nil {
		return repository.ExpenseFilter{}, err
	}
	q := s.normalizer.NormalizeQuery(entity.QueryCandidate{Start: start, End: end, Scope: constants.ScopeHousehold}, s.now())
	return repository.ExpenseFilter{HouseholdID: household.ID, Start: q.Start, End: q.End}, nil
}

// SeedDemo inserts a small set of example expenses for a fresh install,
// split between the acting member and their partner so the per-member
// totals have something to show.
func (s *Service) SeedDemo(ctx context.Context, memberName string) error {
	household, first, err := s.identity(ctx, memberName)
	if err != nil {
		return err
	}
	partnerName := "Partner 2"
	if first.DisplayName == partnerName {
		partnerName = "Partner 1"
	}
	second, err := s.store.EnsureMember(ctx, household.ID, partnerName)
	if err != nil {
		return err
	}

	today := s.now().UTC()
	day := func(offset int) string {
		return today.AddDate(0, 0, -offset).Format("2006-01-02")
	}

	demo := []entity.Expense{
		{MemberID: first.ID, Amount: 350, Category: constants.Groceries, ExpenseDate: day(1), Description: "Weekly vegetables"},
		{MemberID: first.ID, Amount: 1200, Category: constants.Fuel, ExpenseDate: day(2), Description: "Petrol top-up"},
		{MemberID: second.ID, Amount: 499, Category: constants.Entertainment, ExpenseDate: day(3), Description: "Streaming subscription"},
		{MemberID: second.ID, Amount: 220, Category: constants.FoodAndDining, ExpenseDate: day(4), Description: "Lunch out"},
	}
	for i := range demo {
		demo[i].ID = uuid.New()
		demo[i].HouseholdID = household.ID
		demo[i].Currency = s.defaultCurrency
		demo[i].Source = constants.SourceText
	}
	if err := s.store.InsertExpenses(ctx, demo); err != nil {
		return fmt.Errorf("seeding demo expenses: %w", err)
	}
	s.logger.Info("chat.seed.ok", "rows", len(demo), "household_id", household.ID)
	return nil
}

func (s *Service) identity(ctx context.Context, memberName string) (entity.Household, entity.Member, error) {
	household, err := s.store.EnsureHousehold(ctx, s.householdName)
	if err != nil {
		return entity.Household{}, entity.Member{}, err
	}
	member, err := s.store.EnsureMember(ctx, household.ID, memberName)
	if err != nil {
		return entity.Household{}, entity.Member{}, err
	}
	return household, member, nil
}

func (s *Service) audit(ctx context.Context, householdID, memberID uuid.UUID, role, content string) error {
	msg := entity.Message{
		ID:          uuid.New(),
		HouseholdID: householdID,
		MemberID:    memberID,
		Role:        role,
		Content:     content,
	}
	if err := s.store.InsertMessage(ctx, msg); err != nil {
		return fmt.Errorf("recording %s message: %w", role, err)
	}
	return nil
}
