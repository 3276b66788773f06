package service

import (
	"github.com/sirupsen/logrus"

	"github.com/psych-instrument-server/internal/domain"
)

// ScoringService is the evaluation pipeline behind the API: active-set
// resolution, validation, aggregation and categorization in one call.
// It is stateless; arbitrarily many evaluations may run concurrently.
type ScoringService struct {
	logger      *logrus.Logger
	validator   *Validator
	aggregator  *Aggregator
	categorizer *Categorizer
}

// NewScoringService wires the engine components.
func NewScoringService(logger *logrus.Logger) *ScoringService {
	return &ScoringService{
		logger:      logger,
		validator:   NewValidator(logger),
		aggregator:  NewAggregator(logger),
		categorizer: NewCategorizer(logger),
	}
}

// Validate checks an answer set without scoring it.
func (s *ScoringService) Validate(ins *domain.Instrument, answers domain.Answers, ctx domain.Context) *domain.ValidationResult {
	return s.validator.Validate(ins, answers, ctx)
}

// Evaluate runs the full pipeline. A rejected answer set returns the
// validation result with a nil score; warnings always travel with the
// score they accompany. A non-nil error is a definition error and must be
// treated as a hard failure, never as a scoreable outcome.
func (s *ScoringService) Evaluate(ins *domain.Instrument, answers domain.Answers, ctx domain.Context) (*domain.ValidationResult, *domain.ScoreResult, error) {
	validation := s.validator.Validate(ins, answers, ctx)
	if !validation.Valid {
		return validation, nil, nil
	}

	score, err := s.aggregator.Score(ins, answers, ctx)
	if err != nil {
		return validation, nil, err
	}
	category, err := s.categorizer.Categorize(ins, score.Total, answers, ctx)
	if err != nil {
		return validation, nil, err
	}
	score.Category = category

	s.logger.WithFields(logrus.Fields{
		"instrument": ins.ID,
		"total":      score.Total,
		"category":   score.Category,
		"warnings":   len(validation.Warnings),
	}).Info("Evaluation completed")
	return validation, score, nil
}
