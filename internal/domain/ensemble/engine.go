// Package ensemble объединяет прогноз классификатора и ответ
// визуальной языковой модели в один диагноз с объяснением.
package ensemble

import (
	"errors"
	"fmt"
	"math"

	"plant-doctor/internal/domain/entity"
	"plant-doctor/internal/domain/knowledge"
)

// ErrNoInput: не передан ни один прогноз.
var ErrNoInput = errors.New("no input provided: classifier and language model predictions are both missing")

// Engine выбирает политику объединения по набору доступных источников.
// Состояния между вызовами не хранит, безопасен для параллельной работы.
type Engine struct {
	kb      *knowledge.Base
	weights *WeightCalculator
	p       Params
}

// New создаёт движок со справочником классов и параметрами.
func New(kb *knowledge.Base, p Params) *Engine {
	return &Engine{
		kb:      kb,
		weights: NewWeightCalculator(kb, p.Weights),
		p:       p,
	}
}

// Weights возвращает калькулятор весов движка.
func (e *Engine) Weights() *WeightCalculator {
	return e.weights
}

type decideConfig struct {
	imageQuality float64
}

// DecideOption настраивает отдельный вызов Decide.
type DecideOption func(*decideConfig)

// WithImageQuality передаёт оценку качества снимка в [0,1] (по умолчанию 1).
func WithImageQuality(q float64) DecideOption {
	return func(c *decideConfig) {
		c.imageQuality = q
	}
}

// Набор доступных источников. Ветка выбирается один раз в Decide.
type (
	sources interface{ sources() }

	classifierOnly struct {
		c *entity.ClassifierPrediction
	}
	languageModelOnly struct {
		l *entity.LanguageModelPrediction
	}
	bothSources struct {
		c *entity.ClassifierPrediction
		l *entity.LanguageModelPrediction
	}
)

func (classifierOnly) sources()    {}
func (languageModelOnly) sources() {}
func (bothSources) sources()       {}

func selectSources(c *entity.ClassifierPrediction, l *entity.LanguageModelPrediction) (sources, error) {
	if c != nil {
		if err := c.Validate(); err != nil {
			return nil, err
		}
	}
	if l != nil {
		if err := l.Validate(); err != nil {
			return nil, err
		}
	}

	switch {
	case c != nil && l != nil:
		return bothSources{c: c, l: l}, nil
	case c != nil:
		return classifierOnly{c: c}, nil
	case l != nil:
		return languageModelOnly{l: l}, nil
	default:
		return nil, ErrNoInput
	}
}

// Decide объединяет прогнозы. Любой из них может быть nil, но не оба сразу.
func (e *Engine) Decide(c *entity.ClassifierPrediction, l *entity.LanguageModelPrediction, opts ...DecideOption) (*entity.EnsembleDecision, error) {
	cfg := decideConfig{imageQuality: 1.0}
	for _, opt := range opts {
		opt(&cfg)
	}
	if err := entity.ValidateImageQuality(cfg.imageQuality); err != nil {
		return nil, err
	}

	in, err := selectSources(c, l)
	if err != nil {
		return nil, err
	}

	var d entity.EnsembleDecision
	switch in := in.(type) {
	case classifierOnly:
		d = e.decideClassifierOnly(in.c)
	case languageModelOnly:
		d = e.decideLanguageModelOnly(in.l)
	case bothSources:
		d = e.decideBoth(in.c, in.l, cfg.imageQuality)
	}

	return finalize(d), nil
}

func (e *Engine) decideClassifierOnly(c *entity.ClassifierPrediction) entity.EnsembleDecision {
	d := entity.EnsembleDecision{
		Label:      c.Label,
		Confidence: c.Confidence,
		Source:     entity.SourceClassifier,
		Weights:    entity.Weights{Classifier: 1},
	}

	switch {
	case c.Confidence >= e.p.HighConfidence:
		d.Rationale = fmt.Sprintf("классификатор уверен (%s), подтверждение не требуется", percent(c.Confidence))
		d.Recommendations = []string{"можно опираться на результат классификатора"}
	case c.Confidence >= e.p.MediumConfidence:
		d.Rationale = fmt.Sprintf("классификатор умеренно уверен (%s), рекомендуется подтверждение", percent(c.Confidence))
		d.Recommendations = []string{
			"результат классификатора взят за основу",
			"рекомендуется подтвердить диагноз второй моделью или осмотром",
		}
	default:
		d.Confidence = c.Confidence * e.p.LowConfidenceScale
		d.Rationale = fmt.Sprintf("классификатор не уверен (%s), результат считается второстепенным сигналом", percent(c.Confidence))
		d.Recommendations = []string{
			"считать результат второстепенным сигналом",
			"сделайте снимок крупнее и при хорошем освещении",
		}
	}
	return d
}

func (e *Engine) decideLanguageModelOnly(l *entity.LanguageModelPrediction) entity.EnsembleDecision {
	if l.IsUncertain {
		return entity.EnsembleDecision{
			Label:      entity.NoFindingLabel,
			Confidence: e.p.LanguageModelUnsureScore,
			Source:     entity.SourceLanguageModel,
			Weights:    entity.Weights{LanguageModel: 1},
			Rationale:  "языковая модель не нашла явных признаков болезни или вредителя",
			Recommendations: []string{
				"сделайте более чёткий снимок",
				"осмотрите растение самостоятельно",
			},
		}
	}
	return entity.EnsembleDecision{
		Label:      l.Label,
		Confidence: e.p.LanguageModelConfidence,
		Source:     entity.SourceLanguageModel,
		Weights:    entity.Weights{LanguageModel: 1},
		Rationale:  "диагноз дала только языковая модель, классификатор недоступен",
		Recommendations: []string{
			"результат языковой модели взят за основу",
		},
	}
}

func (e *Engine) decideBoth(c *entity.ClassifierPrediction, l *entity.LanguageModelPrediction, imageQuality float64) entity.EnsembleDecision {
	cw := e.weights.ClassifierWeight(c, imageQuality)
	lw := e.weights.LanguageModelWeight(l, c)
	total := cw + lw
	normalized := entity.Weights{Classifier: cw / total, LanguageModel: lw / total}

	// У классификатора нет класса «здоров», поэтому на здоровом листе он
	// всё равно выбирает болезнь. Ответ «здоров» от модели важнее.
	if l.IsUncertain || e.kb.IsHealthy(l.Label) {
		return e.decideHealthy(c)
	}

	if c.Label == l.Label {
		conf := min(e.p.AgreementCap, max(c.Confidence, e.p.AgreementFloor)+e.p.AgreementBonus)
		return entity.EnsembleDecision{
			Label:      c.Label,
			Confidence: conf,
			Source:     entity.SourceEnsemble,
			Weights:    normalized,
			Rationale:  fmt.Sprintf("классификатор и языковая модель согласны: %s", c.Label),
			Recommendations: []string{
				"высокая уверенность, результат можно использовать",
			},
		}
	}

	return e.decideDisagreement(c, l, normalized)
}

func (e *Engine) decideHealthy(c *entity.ClassifierPrediction) entity.EnsembleDecision {
	// Метка классификатора уже заменена порогом: оба источника ничего не нашли.
	bothHealthy := c.Label == entity.NoFindingLabel
	if !bothHealthy && c.Confidence > e.p.SuspiciousConfidence {
		return entity.EnsembleDecision{
			Label:      c.Label,
			Confidence: c.Confidence * e.p.SuspiciousScale,
			Source:     entity.SourceEnsemble,
			Weights:    e.p.SuspiciousWeights,
			Rationale: fmt.Sprintf(
				"классификатор почти уверен (%s) в диагнозе %s, а языковая модель признаков не нашла: серьёзное расхождение, нужна повторная проверка",
				percent(c.Confidence), c.Label),
			Recommendations: []string{
				"осмотрите растение ещё раз",
				"источники серьёзно расходятся",
			},
		}
	}
	rationale := "языковая модель не нашла болезни или вредителя; в классификаторе нет класса «здоров», поэтому его метка отброшена"
	if bothHealthy {
		rationale = "ни классификатор, ни языковая модель не нашли болезни или вредителя"
	}
	return entity.EnsembleDecision{
		Label:      entity.NoFindingLabel,
		Confidence: e.p.HealthyConfidence,
		Source:     entity.SourceEnsemble,
		Weights:    e.p.HealthyWeights,
		Rationale:  rationale,
		Recommendations: []string{
			"растение выглядит здоровым",
			"если заметите изменения, сделайте снимок крупным планом",
		},
	}
}

func (e *Engine) decideDisagreement(c *entity.ClassifierPrediction, l *entity.LanguageModelPrediction, w entity.Weights) entity.EnsembleDecision {
	// Порядок кандидатов: топ-k классификатора, затем метка модели.
	var order []string
	scores := make(map[string]float64, len(c.TopK)+1)
	add := func(label string, v float64) {
		if _, ok := scores[label]; !ok {
			order = append(order, label)
		}
		scores[label] += v
	}
	for _, s := range c.TopK {
		add(s.Label, s.Score*w.Classifier)
	}
	add(l.Label, e.p.Commitment*w.LanguageModel)

	best := math.Inf(-1)
	for _, label := range order {
		best = max(best, scores[label])
	}
	var tied []string
	for _, label := range order {
		if best-scores[label] <= e.p.TieEpsilon {
			tied = append(tied, label)
		}
	}

	recs := []string{
		"проверьте результат самостоятельно",
		"сделайте ещё несколько снимков",
	}

	if len(tied) > 1 && e.p.TieBreak == TieBreakUncertain {
		return entity.EnsembleDecision{
			Label:      entity.NoFindingLabel,
			Confidence: clamp(best, 0, 1),
			Source:     entity.SourceEnsemble,
			Weights:    w,
			Rationale: fmt.Sprintf("классификатор: %s (%s), языковая модель: %s; равные баллы у %d меток, решение не принято",
				c.Label, percent(c.Confidence), l.Label, len(tied)),
			Recommendations: recs,
		}
	}

	winner := e.breakTie(tied, l.Label)
	return entity.EnsembleDecision{
		Label:      winner,
		Confidence: clamp(scores[winner], 0, 1),
		Source:     entity.SourceEnsemble,
		Weights:    w,
		Rationale: fmt.Sprintf("классификатор: %s (%s), языковая модель: %s; выбрано %s",
			c.Label, percent(c.Confidence), l.Label, winner),
		Recommendations: recs,
	}
}

// breakTie выбирает одну метку из равных. tied упорядочен по рангу
// классификатора, метка модели без ранга стоит последней.
func (e *Engine) breakTie(tied []string, languageModelLabel string) string {
	if e.p.TieBreak == TieBreakLanguageModel {
		for _, label := range tied {
			if label == languageModelLabel {
				return label
			}
		}
	}
	return tied[0]
}

func finalize(d entity.EnsembleDecision) *entity.EnsembleDecision {
	d.Confidence = round3(clamp(d.Confidence, 0, 1))
	if d.Source == entity.SourceEnsemble {
		// после округления веса по-прежнему дают в сумме 1
		d.Weights.Classifier = round3(d.Weights.Classifier)
		d.Weights.LanguageModel = round3(1 - d.Weights.Classifier)
	}
	return &d
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}

func percent(v float64) string {
	return fmt.Sprintf("%.1f%%", v*100)
}
