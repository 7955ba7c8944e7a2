package vision

import "errors"

// ErrGoCVDisabled возвращается сборкой без тега gocv.
var ErrGoCVDisabled = errors.New("gocv build tag is not enabled")
