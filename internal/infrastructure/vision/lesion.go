package vision

import "plant-doctor/internal/domain/entity"

// SpotLimits: признаки «много мелких пятен», типичные для повреждений вредителями.
type SpotLimits struct {
	MinAreaRatio   float64 // пятна меньше этой доли кадра отбрасываются как шум
	SmallSpotArea  int
	SmallSpotCount int // мелких пятен больше: подозрение на вредителя
	ManySpots      int
	ManySpotsAvg   float64 // много пятен со средней площадью меньше: тоже
}

// DefaultSpotLimits возвращает пороги для кадра со стороной до 1024 px.
func DefaultSpotLimits() SpotLimits {
	return SpotLimits{
		MinAreaRatio:   0.00002,
		SmallSpotArea:  100,
		SmallSpotCount: 20,
		ManySpots:      50,
		ManySpotsAvg:   200,
	}
}

// Summarize собирает отчёт по найденным пятнам.
func Summarize(width, height int, areas []entity.LesionArea, lesionRatio float64, l SpotLimits) *entity.LesionReport {
	report := &entity.LesionReport{
		ImageWidth:  width,
		ImageHeight: height,
		Areas:       areas,
		LesionRatio: lesionRatio,
		SpotCount:   len(areas),
	}
	if len(areas) == 0 {
		return report
	}

	total, small := 0, 0
	for _, a := range areas {
		total += a.Area
		if a.Area < l.SmallSpotArea {
			small++
		}
	}
	report.AvgSpotSize = float64(total) / float64(len(areas))
	report.SuspectedPest = small > l.SmallSpotCount ||
		(len(areas) > l.ManySpots && report.AvgSpotSize < l.ManySpotsAvg)

	return report
}
