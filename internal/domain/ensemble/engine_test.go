package ensemble

import (
	"testing"

	"github.com/stretchr/testify/require"

	"plant-doctor/internal/domain/entity"
	"plant-doctor/internal/domain/knowledge"
)

func newEngine() *Engine {
	return New(knowledge.Default(), DefaultParams())
}

func classifier(label string, conf float64, rest ...entity.ScoredLabel) *entity.ClassifierPrediction {
	return &entity.ClassifierPrediction{
		Label:      label,
		Confidence: conf,
		TopK:       append([]entity.ScoredLabel{{Label: label, Score: conf}}, rest...),
		LatencyMs:  40,
	}
}

func languageModel(label string) *entity.LanguageModelPrediction {
	return &entity.LanguageModelPrediction{Label: label, RawText: label, ReasoningQuality: 0.8}
}

func uncertainModel() *entity.LanguageModelPrediction {
	return &entity.LanguageModelPrediction{
		Label:            entity.NoFindingLabel,
		RawText:          entity.NoFindingLabel,
		IsUncertain:      true,
		ReasoningQuality: 0.7,
	}
}

func TestDecide_NoInput(t *testing.T) {
	_, err := newEngine().Decide(nil, nil)
	require.ErrorIs(t, err, ErrNoInput)
}

func TestDecide_ClassifierOnly(t *testing.T) {
	tests := []struct {
		name       string
		conf       float64
		confidence float64
	}{
		{"high", 0.90, 0.90},
		{"medium", 0.70, 0.70},
		{"low is scaled", 0.30, 0.21},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := newEngine().Decide(classifier("Rust Disease", tt.conf), nil)
			require.NoError(t, err)
			require.Equal(t, entity.SourceClassifier, d.Source)
			require.Equal(t, "Rust Disease", d.Label)
			require.InDelta(t, tt.confidence, d.Confidence, 1e-9)
			require.Equal(t, entity.Weights{Classifier: 1}, d.Weights)
			require.NotEmpty(t, d.Rationale)
			require.NotEmpty(t, d.Recommendations)
		})
	}
}

func TestDecide_LanguageModelOnly(t *testing.T) {
	d, err := newEngine().Decide(nil, languageModel("Thrips"))
	require.NoError(t, err)
	require.Equal(t, entity.SourceLanguageModel, d.Source)
	require.Equal(t, "Thrips", d.Label)
	require.Equal(t, 0.75, d.Confidence)

	d, err = newEngine().Decide(nil, uncertainModel())
	require.NoError(t, err)
	require.Equal(t, entity.NoFindingLabel, d.Label)
	require.Equal(t, 0.5, d.Confidence)
	require.Equal(t, entity.Weights{LanguageModel: 1}, d.Weights)
}

func TestDecide_HealthyOverride(t *testing.T) {
	t.Run("very confident classifier is kept but halved", func(t *testing.T) {
		d, err := newEngine().Decide(classifier("Anthracnose", 0.97), uncertainModel())
		require.NoError(t, err)
		require.Equal(t, "Anthracnose", d.Label)
		require.InDelta(t, 0.485, d.Confidence, 1e-9)
		require.Equal(t, entity.Weights{Classifier: 0.7, LanguageModel: 0.3}, d.Weights)
		require.Equal(t, entity.SourceEnsemble, d.Source)
	})

	t.Run("moderate classifier yields no finding", func(t *testing.T) {
		d, err := newEngine().Decide(classifier("Anthracnose", 0.80), uncertainModel())
		require.NoError(t, err)
		require.True(t, d.IsNoFinding())
		require.Equal(t, 0.85, d.Confidence)
		require.Equal(t, entity.Weights{Classifier: 0.1, LanguageModel: 0.9}, d.Weights)
	})

	t.Run("classifier below threshold agrees with uncertain model", func(t *testing.T) {
		// 1 - top1 = 0.97: классификатор уже ответил «ничего не найдено»
		d, err := newEngine().Decide(classifier(entity.NoFindingLabel, 0.97), uncertainModel())
		require.NoError(t, err)
		require.True(t, d.IsNoFinding())
		require.Equal(t, 0.85, d.Confidence)
		require.Equal(t, entity.Weights{Classifier: 0.1, LanguageModel: 0.9}, d.Weights)
		require.NotContains(t, d.Rationale, "расхождение")
	})

	t.Run("healthy alias counts as no finding", func(t *testing.T) {
		d, err := newEngine().Decide(classifier("Anthracnose", 0.80), languageModel("Healthy"))
		require.NoError(t, err)
		require.True(t, d.IsNoFinding())
	})
}

func TestDecide_Agreement(t *testing.T) {
	tests := []struct {
		conf       float64
		confidence float64
	}{
		{0.45, 0.90},
		{0.60, 0.90},
		{0.78, 0.93},
		{0.85, 0.95},
	}

	for _, tt := range tests {
		d, err := newEngine().Decide(
			classifier("Bemisia tabaci", tt.conf, entity.ScoredLabel{Label: "Thrips", Score: 0.01}),
			languageModel("Bemisia tabaci"),
		)
		require.NoError(t, err)
		require.Equal(t, "Bemisia tabaci", d.Label)
		require.InDelta(t, tt.confidence, d.Confidence, 1e-9)
		require.GreaterOrEqual(t, d.Confidence, max(tt.conf, 0.75))
		require.InDelta(t, 1.0, d.Weights.Classifier+d.Weights.LanguageModel, 1e-9)
	}
}

func TestDecide_Disagreement(t *testing.T) {
	d, err := newEngine().Decide(
		classifier("Downy Mildew", 0.68, entity.ScoredLabel{Label: "Powdery Mildew", Score: 0.25}),
		&entity.LanguageModelPrediction{Label: "Powdery Mildew", ReasoningQuality: 0.9},
		WithImageQuality(0.8),
	)
	require.NoError(t, err)

	require.Equal(t, "Powdery Mildew", d.Label)
	require.Equal(t, entity.SourceEnsemble, d.Source)
	require.InDelta(t, 0.591, d.Confidence, 1e-9)
	require.Equal(t, 0.379, d.Weights.Classifier)
	require.InDelta(t, 0.621, d.Weights.LanguageModel, 1e-9)
}

func TestDecide_DisagreementClassifierWins(t *testing.T) {
	d, err := newEngine().Decide(
		classifier("Powdery Mildew", 0.99, entity.ScoredLabel{Label: "Downy Mildew", Score: 0.01}),
		languageModel("Leaf Miner"),
	)
	require.NoError(t, err)
	require.Equal(t, "Powdery Mildew", d.Label)
}

func TestDecide_TieBreak(t *testing.T) {
	// равные баллы у двух первых мест, вклад модели обнулён
	tiedClassifier := func() *entity.ClassifierPrediction {
		return classifier("Thrips", 0.4, entity.ScoredLabel{Label: "Leafhopper", Score: 0.4})
	}

	tests := []struct {
		rule  TieBreak
		model string
		label string
	}{
		{TieBreakClassifierRank, "Leafhopper", "Thrips"},
		{TieBreakLanguageModel, "Leafhopper", "Leafhopper"},
		{TieBreakLanguageModel, "Leaf Miner", "Thrips"},
		{TieBreakUncertain, "Leafhopper", entity.NoFindingLabel},
	}

	for _, tt := range tests {
		t.Run(string(tt.rule)+"/"+tt.model, func(t *testing.T) {
			p := DefaultParams()
			p.Commitment = 0
			p.TieBreak = tt.rule

			d, err := New(knowledge.Default(), p).Decide(tiedClassifier(), languageModel(tt.model))
			require.NoError(t, err)
			require.Equal(t, tt.label, d.Label)
		})
	}
}

func TestDecide_NoTieIgnoresRule(t *testing.T) {
	p := DefaultParams()
	p.TieBreak = TieBreakUncertain

	d, err := New(knowledge.Default(), p).Decide(
		classifier("Downy Mildew", 0.68, entity.ScoredLabel{Label: "Powdery Mildew", Score: 0.25}),
		&entity.LanguageModelPrediction{Label: "Powdery Mildew", ReasoningQuality: 0.9},
	)
	require.NoError(t, err)
	require.Equal(t, "Powdery Mildew", d.Label)
}

func TestDecide_RejectsInvalidInput(t *testing.T) {
	e := newEngine()

	_, err := e.Decide(classifier("Thrips", 1.2), nil)
	require.ErrorIs(t, err, entity.ErrInvalidPrediction)

	_, err = e.Decide(&entity.ClassifierPrediction{Label: "Thrips", Confidence: 0.5}, languageModel("Thrips"))
	require.ErrorIs(t, err, entity.ErrInvalidPrediction)

	_, err = e.Decide(nil, &entity.LanguageModelPrediction{ReasoningQuality: 0.5})
	require.ErrorIs(t, err, entity.ErrInvalidPrediction)

	_, err = e.Decide(classifier("Thrips", 0.5), nil, WithImageQuality(1.5))
	require.ErrorIs(t, err, entity.ErrInvalidPrediction)
}

func TestDecide_Idempotent(t *testing.T) {
	e := newEngine()
	c := classifier("Downy Mildew", 0.68, entity.ScoredLabel{Label: "Powdery Mildew", Score: 0.25})
	l := languageModel("Powdery Mildew")

	first, err := e.Decide(c, l, WithImageQuality(0.6))
	require.NoError(t, err)
	second, err := e.Decide(c, l, WithImageQuality(0.6))
	require.NoError(t, err)
	require.Equal(t, first, second)
}

func TestDecide_Bounds(t *testing.T) {
	e := newEngine()
	labels := knowledge.Default().Labels()

	for i, cl := range labels {
		ml := labels[(i+3)%len(labels)]
		for _, conf := range []float64{0.05, 0.4, 0.6, 0.85, 0.92, 0.99} {
			for _, q := range []float64{0, 0.5, 1} {
				c := classifier(cl, conf, entity.ScoredLabel{Label: ml, Score: conf / 2})
				for _, l := range []*entity.LanguageModelPrediction{languageModel(ml), languageModel(cl), uncertainModel()} {
					d, err := e.Decide(c, l, WithImageQuality(q))
					require.NoError(t, err)
					require.GreaterOrEqual(t, d.Confidence, 0.0)
					require.LessOrEqual(t, d.Confidence, 1.0)
					require.GreaterOrEqual(t, d.Weights.Classifier, 0.0)
					require.LessOrEqual(t, d.Weights.Classifier, 1.0)
					require.GreaterOrEqual(t, d.Weights.LanguageModel, 0.0)
					require.LessOrEqual(t, d.Weights.LanguageModel, 1.0)
					require.InDelta(t, 1.0, d.Weights.Classifier+d.Weights.LanguageModel, 1e-9)
				}
			}
		}
	}
}
