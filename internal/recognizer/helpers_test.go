package recognizer

import (
	"gocv.io/x/gocv"
)

// patternMat builds a 64x64 grayscale image whose pixel values come from fn.
func patternMat(fn func(x, y int) uint8) gocv.Mat {
	m := gocv.NewMatWithSize(64, 64, gocv.MatTypeCV8U)
	for y := 0; y < 64; y++ {
		for x := 0; x < 64; x++ {
			m.SetUCharAt(y, x, fn(x, y))
		}
	}
	return m
}

func stripes(x, _ int) uint8 {
	if (x/4)%2 == 0 {
		return 230
	}
	return 20
}

func checker(x, y int) uint8 {
	if ((x/8)+(y/8))%2 == 0 {
		return 200
	}
	return 40
}
