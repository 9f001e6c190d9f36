// Package kiosk coordinates registration, navigation, submissions and persistence.
package kiosk

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/verte-zerg/blindcode/internal/catalog"
	"github.com/verte-zerg/blindcode/internal/evaluator"
	"github.com/verte-zerg/blindcode/internal/judge"
	"github.com/verte-zerg/blindcode/internal/model"
	"github.com/verte-zerg/blindcode/internal/results"
)

// PhoneDigits is the required phone number length.
const PhoneDigits = 10

var (
	// ErrNotRegistered is returned when an operation needs a participant.
	ErrNotRegistered = errors.New("no participant registered")
	// ErrInvalidRegistration wraps registration validation failures.
	ErrInvalidRegistration = errors.New("invalid registration")
)

// Store persists kiosk state.
type Store interface {
	SaveRegistration(ctx context.Context, reg model.Registration) error
	LoadRegistration(ctx context.Context) (model.Registration, bool, error)
	SaveIndex(ctx context.Context, index int) error
	LoadIndex(ctx context.Context) (int, bool, error)
	SaveResults(ctx context.Context, results []model.ChallengeResult) error
	LoadResults(ctx context.Context) ([]model.ChallengeResult, error)
	InsertAttempt(ctx context.Context, a model.Attempt) (string, error)
	Clear(ctx context.Context) error
}

// Options configures a Service.
type Options struct {
	Language model.Language
	Logger   *zap.Logger
	Now      func() time.Time
}

// Service owns the participant's progress through the catalog.
// Execute is safe to call from any goroutine; every other method must be called from
// the goroutine that owns the service.
type Service struct {
	catalog  *catalog.Catalog
	executor judge.Executor
	store    Store
	logger   *zap.Logger
	now      func() time.Time
	lang     model.Language

	ledger     *evaluator.Ledger
	reg        model.Registration
	registered bool
	index      int
}

// New returns a Service with an empty ledger.
func New(cat *catalog.Catalog, executor judge.Executor, st Store, opts Options) *Service {
	if opts.Language == "" {
		opts.Language = model.LanguagePython
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Service{
		catalog:  cat,
		executor: executor,
		store:    st,
		logger:   opts.Logger,
		now:      opts.Now,
		lang:     opts.Language,
		ledger:   evaluator.NewLedger(nil),
	}
}

// ValidateRegistration checks the registration form fields.
func ValidateRegistration(name, regNumber, phone string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidRegistration)
	}
	if strings.TrimSpace(regNumber) == "" {
		return fmt.Errorf("%w: registration number is required", ErrInvalidRegistration)
	}
	phone = strings.TrimSpace(phone)
	if len(phone) != PhoneDigits {
		return fmt.Errorf("%w: phone number must be exactly %d digits", ErrInvalidRegistration, PhoneDigits)
	}
	for _, r := range phone {
		if r > unicode.MaxASCII || !unicode.IsDigit(r) {
			return fmt.Errorf("%w: phone number must be exactly %d digits", ErrInvalidRegistration, PhoneDigits)
		}
	}
	return nil
}

// Register starts a new participant. Previous results and progress are discarded.
func (s *Service) Register(ctx context.Context, name, regNumber, phone string) (model.Registration, error) {
	if err := ValidateRegistration(name, regNumber, phone); err != nil {
		return model.Registration{}, err
	}
	reg := model.Registration{
		ID:                 uuid.NewString(),
		Name:               strings.TrimSpace(name),
		RegistrationNumber: strings.TrimSpace(regNumber),
		Phone:              strings.TrimSpace(phone),
		CreatedAt:          s.now(),
	}
	if err := s.store.SaveRegistration(ctx, reg); err != nil {
		return model.Registration{}, fmt.Errorf("failed to save registration: %w", err)
	}
	s.reg = reg
	s.registered = true
	s.index = 0
	s.ledger.Clear()
	s.logger.Info("participant registered", zap.String("registration_id", reg.ID))
	return reg, nil
}

// Resume reloads the stored participant, position and ledger.
func (s *Service) Resume(ctx context.Context) (model.Registration, error) {
	reg, ok, err := s.store.LoadRegistration(ctx)
	if err != nil {
		return model.Registration{}, fmt.Errorf("failed to load registration: %w", err)
	}
	if !ok {
		return model.Registration{}, ErrNotRegistered
	}
	index, ok, err := s.store.LoadIndex(ctx)
	if err != nil {
		return model.Registration{}, fmt.Errorf("failed to load progress: %w", err)
	}
	if !ok || index < 0 || index >= s.catalog.Count() {
		index = 0
	}
	stored, err := s.store.LoadResults(ctx)
	if err != nil {
		return model.Registration{}, fmt.Errorf("failed to load results: %w", err)
	}
	s.reg = reg
	s.registered = true
	s.index = index
	s.ledger = evaluator.NewLedger(stored)
	s.logger.Info("participant resumed",
		zap.String("registration_id", reg.ID),
		zap.Int("index", index),
		zap.Int("results", s.ledger.Len()),
	)
	return reg, nil
}

// Registration returns the current participant.
func (s *Service) Registration() (model.Registration, bool) {
	return s.reg, s.registered
}

// Catalog returns the challenge catalog.
func (s *Service) Catalog() *catalog.Catalog {
	return s.catalog
}

// Language returns the submission language.
func (s *Service) Language() model.Language {
	return s.lang
}

// Index returns the current challenge index.
func (s *Service) Index() int {
	return s.index
}

// Current returns the current challenge.
func (s *Service) Current() model.Challenge {
	return s.catalog.Get(s.index)
}

// Execute runs code for the challenge at index and evaluates the outcome.
// It does not touch the ledger.
func (s *Service) Execute(ctx context.Context, index int, code string) evaluator.Evaluation {
	challenge := s.catalog.Get(index)
	outcome := s.executor.Execute(ctx, code, s.lang, challenge.Stdin)
	ev := evaluator.Evaluate(outcome, challenge)
	if outcome.Failed() {
		s.logger.Warn("submission failed to run",
			zap.String("challenge", challenge.Title),
			zap.String("failure", string(outcome.Failure)),
		)
	}
	return ev
}

// Record folds a verdict into the ledger, persists it and appends the attempt history.
func (s *Service) Record(ctx context.Context, index int, ev evaluator.Evaluation) (model.ChallengeResult, error) {
	if !s.registered {
		return model.ChallengeResult{}, ErrNotRegistered
	}
	title := s.catalog.Get(index).Title
	before, existed := s.ledger.Find(title)
	result := s.ledger.Apply(title, ev.Success, s.lang)
	if existed && before == result {
		return result, nil
	}
	if err := s.store.SaveResults(ctx, s.ledger.Results()); err != nil {
		return result, fmt.Errorf("failed to save results: %w", err)
	}
	_, err := s.store.InsertAttempt(ctx, model.Attempt{
		RegistrationID: s.reg.ID,
		Challenge:      title,
		Attempt:        result.Attempts,
		Language:       s.lang,
		Success:        ev.Success,
		Output:         ev.DisplayText,
		CreatedAt:      s.now(),
	})
	if err != nil {
		return result, fmt.Errorf("failed to save attempt: %w", err)
	}
	s.logger.Info("submission recorded",
		zap.String("challenge", title),
		zap.Int("attempt", result.Attempts),
		zap.Bool("success", result.Success),
		zap.Bool("bonus", result.Bonus),
	)
	return result, nil
}

// Skip records a skip for the challenge at index and moves to the next one.
// done is true when there is no next challenge.
func (s *Service) Skip(ctx context.Context, index int) (next int, done bool, err error) {
	if !s.registered {
		return s.index, false, ErrNotRegistered
	}
	title := s.catalog.Get(index).Title
	if s.ledger.Skip(title) {
		if err := s.store.SaveResults(ctx, s.ledger.Results()); err != nil {
			return s.index, false, fmt.Errorf("failed to save results: %w", err)
		}
		s.logger.Info("challenge skipped", zap.String("challenge", title))
	}
	s.index = index
	return s.Advance(ctx)
}

// Advance moves to the next challenge. done is true after the last one.
func (s *Service) Advance(ctx context.Context) (next int, done bool, err error) {
	next, ok := s.catalog.Next(s.index)
	if !ok {
		return s.index, true, nil
	}
	return s.moveTo(ctx, next)
}

// Select jumps to a challenge; the index is clamped to the catalog.
func (s *Service) Select(ctx context.Context, i int) (int, error) {
	next, _, err := s.moveTo(ctx, s.catalog.Clamp(i))
	return next, err
}

func (s *Service) moveTo(ctx context.Context, i int) (int, bool, error) {
	s.index = i
	if !s.registered {
		return i, false, nil
	}
	if err := s.store.SaveIndex(ctx, i); err != nil {
		return i, false, fmt.Errorf("failed to save progress: %w", err)
	}
	return i, false, nil
}

// Find returns the ledger record for a challenge title.
func (s *Service) Find(title string) (model.ChallengeResult, bool) {
	return s.ledger.Find(title)
}

// Results returns a copy of the ledger.
func (s *Service) Results() []model.ChallengeResult {
	return s.ledger.Results()
}

// Summary aggregates the ledger against the catalog.
func (s *Service) Summary() results.Summary {
	return results.Summarize(s.ledger.Results(), s.catalog.Count())
}

// Card renders the results card for the current participant.
func (s *Service) Card(opts results.CardOptions) string {
	return results.FormatCard(s.reg, s.ledger.Results(), s.catalog.Count(), opts)
}

// Reset forgets the participant and all stored progress.
func (s *Service) Reset(ctx context.Context) error {
	if err := s.store.Clear(ctx); err != nil {
		return fmt.Errorf("failed to clear kiosk state: %w", err)
	}
	s.reg = model.Registration{}
	s.registered = false
	s.index = 0
	s.ledger.Clear()
	s.logger.Info("kiosk reset")
	return nil
}
