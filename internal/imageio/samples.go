package imageio

import "math/rand"

// SampleURLs are public images offered by the "try a sample" action.
var SampleURLs = []string{
	"https://image2url.com/images/1757062180458-8d521f5c-c59f-47e9-8a52-380892d534de.png",
	"https://image.aipassportphotos.com/upload/identification/blur/photo-enhance-compare-1.webp",
	"https://image2url.com/images/1757059082173-23735a08-08b8-4eed-a852-130db4521395.png",
}

// RandomSample picks one of SampleURLs.
func RandomSample() string {
	return SampleURLs[rand.Intn(len(SampleURLs))]
}
