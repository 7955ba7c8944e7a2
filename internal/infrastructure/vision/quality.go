package vision

// QualityMetrics: измерения снимка, из которых складывается оценка качества.
type QualityMetrics struct {
	Width             int
	Height            int
	EdgeRatio         float64 // доля пикселей-границ, мера резкости
	OverexposedRatio  float64
	UnderexposedRatio float64
	GlareRatio        float64 // светлые малонасыщенные пиксели (блики)
}

// QualityLimits: пороги, ниже/выше которых снимок теряет баллы.
type QualityLimits struct {
	MinImageSide          int
	MinSharpnessEdgeRatio float64
	MaxOverexposedRatio   float64
	MaxUnderexposedRatio  float64
	MaxGlareRatio         float64
}

// DefaultQualityLimits возвращает пороги для фото листа с телефона.
func DefaultQualityLimits() QualityLimits {
	return QualityLimits{
		MinImageSide:          224,
		MinSharpnessEdgeRatio: 0.008,
		MaxOverexposedRatio:   0.35,
		MaxUnderexposedRatio:  0.45,
		MaxGlareRatio:         0.08,
	}
}

const (
	sizePenalty     = 0.1
	blurPenalty     = 0.4 // максимум, для полностью размытого кадра
	exposurePenalty = 0.2
	glarePenalty    = 0.2
)

// Score переводит измерения в оценку качества в [0,1].
// Размытость штрафуется пропорционально, остальные нарушения: фиксированно.
func Score(m QualityMetrics, l QualityLimits) float64 {
	score := 1.0

	if m.Width < l.MinImageSide || m.Height < l.MinImageSide {
		score -= sizePenalty
	}
	if l.MinSharpnessEdgeRatio > 0 && m.EdgeRatio < l.MinSharpnessEdgeRatio {
		score -= blurPenalty * (1 - m.EdgeRatio/l.MinSharpnessEdgeRatio)
	}
	if m.OverexposedRatio > l.MaxOverexposedRatio {
		score -= exposurePenalty
	}
	if m.UnderexposedRatio > l.MaxUnderexposedRatio {
		score -= exposurePenalty
	}
	if m.GlareRatio > l.MaxGlareRatio {
		score -= glarePenalty
	}

	return max(0, min(score, 1))
}
