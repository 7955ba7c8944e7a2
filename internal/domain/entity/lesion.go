package entity

// LesionArea представляет область листа с признаками поражения
type LesionArea struct {
	X      int `json:"x"`      // координата X левого верхнего угла
	Y      int `json:"y"`      // координата Y левого верхнего угла
	Width  int `json:"width"`  // ширина области в пикселях
	Height int `json:"height"` // высота области в пикселях
	Area   int `json:"area"`   // площадь области в пикселях
}

// Center возвращает координаты центра пятна
func (a LesionArea) Center() (x, y int) {
	return a.X + a.Width/2, a.Y + a.Height/2
}

// LesionReport хранит итог поиска нездоровых участков на снимке.
type LesionReport struct {
	ImageWidth    int          `json:"image_width"`
	ImageHeight   int          `json:"image_height"`
	Areas         []LesionArea `json:"areas"`
	LesionRatio   float64      `json:"lesion_ratio"`   // доля нездоровой площади
	SpotCount     int          `json:"spot_count"`     // число отдельных пятен
	AvgSpotSize   float64      `json:"avg_spot_size"`  // средняя площадь пятна
	SuspectedPest bool         `json:"suspected_pest"` // много мелких пятен, похоже на погрызы
}

// HasLesions сообщает, найдено ли хотя бы одно пятно.
func (r *LesionReport) HasLesions() bool {
	return r != nil && len(r.Areas) > 0
}
