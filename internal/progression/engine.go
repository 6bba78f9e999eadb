package progression

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"strings"
	"time"

	"github.com/dawnhollow/memquest/internal/cloze"
	"github.com/dawnhollow/memquest/internal/domain"
)

// Store is the slice of the record store the engine needs. Row-level
// operations only; the engine owns the read-decide-write sequencing.
type Store interface {
	FindQuestByName(ctx context.Context, name string) (*domain.QuestUnit, error)
	GetCardRecord(ctx context.Context, userID, questName string, typ domain.CardType) (*domain.CardRecord, error)
	AppendCardRecord(ctx context.Context, rec *domain.CardRecord) (int64, error)
	UpdateCardRecord(ctx context.Context, rec *domain.CardRecord) error
	GetMnemonic(ctx context.Context, userID, questName string) (*domain.Mnemonic, error)
	UpsertMnemonic(ctx context.Context, m *domain.Mnemonic) error
	GetOrCreateUser(ctx context.Context, userID string) (*domain.UserProgress, error)
	UpdateUserLevelXP(ctx context.Context, user *domain.UserProgress) error
	DeleteCardRecords(ctx context.Context, userID string) error
	DeleteMnemonics(ctx context.Context, userID string) error
}

// OpenResult is what gets presented when a quest is opened in a zone. Zone is
// the effective zone after routing, which may differ from the requested one.
type OpenResult struct {
	Zone     domain.Zone
	Quest    string
	Exercise *cloze.Exercise // nil in register_mnemonic
	Hint     string          // stored mnemonic, abbrev only
	Prompt   string          // clean content to memorize, register_mnemonic only
}

// Outcome reports the result of completing an exercise.
type Outcome struct {
	Passed    bool
	Status    string // "NEW", "UPGRADE", or "" on a fail
	XPGained  int
	CardLevel int
	CardGrade domain.CardGrade
	UserLevel int
	UserXP    int
	Title     string
}

// Engine is the progression state machine over quests, cards, and user XP.
type Engine struct {
	store Store
	cfg   *Config
	rng   *rand.Rand
}

// NewEngine builds an engine. A nil rng gets a time-seeded default; tests
// inject a fixed source instead.
func NewEngine(store Store, cfg *Config, rng *rand.Rand) *Engine {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Engine{store: store, cfg: cfg, rng: rng}
}

// Open resolves the effective zone for a (user, quest) pair and builds the
// exercise to present. A review open on a card sitting exactly at the
// mnemonic threshold, with no mnemonic stored yet, is intercepted into
// register_mnemonic.
func (e *Engine) Open(ctx context.Context, userID, questName string, requested domain.Zone) (*OpenResult, error) {
	quest, err := e.store.FindQuestByName(ctx, questName)
	if err != nil {
		return nil, err
	}
	if quest == nil {
		return nil, fmt.Errorf("open %q: %w", questName, domain.ErrQuestNotFound)
	}

	card, err := e.store.GetCardRecord(ctx, userID, questName, domain.TypeBlank)
	if err != nil {
		return nil, err
	}

	zone, err := e.route(ctx, userID, questName, card, requested)
	if err != nil {
		return nil, err
	}

	res := &OpenResult{Zone: zone, Quest: questName}
	switch zone {
	case domain.ZoneAcquire, domain.ZoneReview:
		ex := cloze.Parse(quest.Content)
		res.Exercise = &ex
	case domain.ZoneAbbrev:
		ex := cloze.ParseRecall(quest.Content)
		res.Exercise = &ex
		mn, err := e.store.GetMnemonic(ctx, userID, questName)
		if err != nil {
			return nil, err
		}
		if mn != nil {
			res.Hint = mn.Text
		}
	case domain.ZoneRegisterMnemonic:
		res.Prompt = strings.TrimSpace(cloze.Strip(quest.Content))
	}
	return res, nil
}

// route maps a requested zone to the effective one given the card state.
func (e *Engine) route(ctx context.Context, userID, questName string, card *domain.CardRecord, requested domain.Zone) (domain.Zone, error) {
	switch requested {
	case domain.ZoneAcquire, domain.ZoneReview:
		if card == nil {
			return domain.ZoneAcquire, nil
		}
		if card.Level == e.cfg.MnemonicLevel {
			mn, err := e.store.GetMnemonic(ctx, userID, questName)
			if err != nil {
				return 0, err
			}
			if mn == nil {
				return domain.ZoneRegisterMnemonic, nil
			}
		}
		return domain.ZoneReview, nil
	case domain.ZoneAbbrev, domain.ZoneRegisterMnemonic:
		if card == nil {
			return 0, fmt.Errorf("%s for %q: %w", requested, questName, domain.ErrNotEligible)
		}
		return requested, nil
	default:
		return 0, fmt.Errorf("unhandled zone %v", requested)
	}
}

// Complete applies a grading result. A fail mutates nothing and is not an
// error. On a pass the matching card record is created or leveled up, the XP
// award (reduced by caller-supplied penalties) is pushed through the ledger,
// and the updated user state is persisted.
func (e *Engine) Complete(ctx context.Context, userID, questName string, zone domain.Zone, passed bool, penalties int) (*Outcome, error) {
	if zone == domain.ZoneRegisterMnemonic {
		return nil, fmt.Errorf("register_mnemonic is completed via RegisterMnemonic, not grading")
	}
	if !passed {
		return &Outcome{Passed: false}, nil
	}

	quest, err := e.store.FindQuestByName(ctx, questName)
	if err != nil {
		return nil, err
	}
	if quest == nil {
		return nil, fmt.Errorf("complete %q: %w", questName, domain.ErrQuestNotFound)
	}

	typ := domain.TypeBlank
	if zone == domain.ZoneAbbrev {
		typ = domain.TypeAbbrev
	}
	out, err := e.completeCard(ctx, userID, quest, typ)
	if err != nil {
		return nil, err
	}

	out.XPGained = cloze.PenalizedXP(out.XPGained, penalties)
	if err := e.awardXP(ctx, userID, out); err != nil {
		return nil, err
	}

	slog.Info("exercise completed",
		"user", userID,
		"quest", questName,
		"zone", zone.String(),
		"status", out.Status,
		"xp", out.XPGained,
		"card_level", out.CardLevel,
	)
	return out, nil
}

// completeCard creates or levels up the card record for one pass.
func (e *Engine) completeCard(ctx context.Context, userID string, quest *domain.QuestUnit, typ domain.CardType) (*Outcome, error) {
	card, err := e.store.GetCardRecord(ctx, userID, quest.Name, typ)
	if err != nil {
		return nil, err
	}

	snapshot := strings.TrimSpace(cloze.Strip(quest.Content))
	if card == nil {
		grade := e.cfg.RollGrade(e.rng)
		rec := &domain.CardRecord{
			UserID:      userID,
			QuestName:   quest.Name,
			Type:        typ,
			Level:       1,
			Grade:       grade,
			CardText:    snapshot,
			CollectedAt: time.Now(),
		}
		if _, err := e.store.AppendCardRecord(ctx, rec); err != nil {
			return nil, err
		}
		xp := e.cfg.AcquireXP
		if typ == domain.TypeAbbrev {
			xp = e.cfg.AbbrevCreateXP
		}
		return &Outcome{Passed: true, Status: "NEW", XPGained: xp, CardLevel: 1, CardGrade: grade}, nil
	}

	// Reward scales with the pre-increment level.
	xp := e.cfg.ReviewBaseXP + card.Level*e.cfg.ReviewLevelXP
	if typ == domain.TypeAbbrev {
		xp = e.cfg.AbbrevRepeatXP
	}
	card.Level++
	card.Grade = e.cfg.UpgradeGrade(card.Grade, card.Level)
	card.CardText = snapshot
	card.CollectedAt = time.Now()
	if err := e.store.UpdateCardRecord(ctx, card); err != nil {
		return nil, err
	}
	return &Outcome{Passed: true, Status: "UPGRADE", XPGained: xp, CardLevel: card.Level, CardGrade: card.Grade}, nil
}

// RegisterMnemonic stores a user-authored mnemonic for a quest and awards
// review-mode XP as if that review cycle had been completed. The card level
// is left untouched; the stored mnemonic itself releases the review lockout.
func (e *Engine) RegisterMnemonic(ctx context.Context, userID, questName, text string) (*Outcome, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, errors.New("mnemonic text is empty")
	}

	quest, err := e.store.FindQuestByName(ctx, questName)
	if err != nil {
		return nil, err
	}
	if quest == nil {
		return nil, fmt.Errorf("register mnemonic for %q: %w", questName, domain.ErrQuestNotFound)
	}
	card, err := e.store.GetCardRecord(ctx, userID, questName, domain.TypeBlank)
	if err != nil {
		return nil, err
	}
	if card == nil {
		return nil, fmt.Errorf("register mnemonic for %q: %w", questName, domain.ErrNotEligible)
	}

	if err := e.store.UpsertMnemonic(ctx, &domain.Mnemonic{
		UserID:    userID,
		QuestName: questName,
		Text:      text,
		UpdatedAt: time.Now(),
	}); err != nil {
		return nil, err
	}

	out := &Outcome{
		Passed:    true,
		Status:    "UPGRADE",
		XPGained:  e.cfg.ReviewBaseXP + card.Level*e.cfg.ReviewLevelXP,
		CardLevel: card.Level,
		CardGrade: card.Grade,
	}
	if err := e.awardXP(ctx, userID, out); err != nil {
		return nil, err
	}
	slog.Info("mnemonic registered", "user", userID, "quest", questName, "xp", out.XPGained)
	return out, nil
}

// ResetProgress wipes all of a user's cards and mnemonics and returns the
// user to the initial level/XP state. This is the only path back to the
// acquire zone for already-collected quests.
func (e *Engine) ResetProgress(ctx context.Context, userID string) error {
	if err := e.store.DeleteCardRecords(ctx, userID); err != nil {
		return err
	}
	if err := e.store.DeleteMnemonics(ctx, userID); err != nil {
		return err
	}
	fresh := domain.NewUserProgress(userID)
	if err := e.store.UpdateUserLevelXP(ctx, fresh); err != nil {
		return err
	}
	slog.Info("progress reset", "user", userID)
	return nil
}

func (e *Engine) awardXP(ctx context.Context, userID string, out *Outcome) error {
	user, err := e.store.GetOrCreateUser(ctx, userID)
	if err != nil {
		return err
	}
	ApplyXP(user, out.XPGained)
	if err := e.store.UpdateUserLevelXP(ctx, user); err != nil {
		return err
	}
	out.UserLevel = user.Level
	out.UserXP = user.XP
	out.Title = user.Title
	return nil
}
