//go:build !nogpu

package gpu

// copyPitchAlignment is the row pitch alignment required by texture to
// buffer copies.
const copyPitchAlignment = 256

// alignedRowPitch rounds a row of width pixels up to copyPitchAlignment.
func alignedRowPitch(width uint32) uint32 {
	return (width*4 + copyPitchAlignment - 1) &^ (copyPitchAlignment - 1)
}

// unpackRows copies height rows of width pixels from a buffer with the
// given row pitch into dst, which is tightly packed.
func unpackRows(dst, src []byte, width, height, pitch uint32) {
	row := int(width) * 4
	for y := range int(height) {
		off := y * int(pitch)
		copy(dst[y*row:(y+1)*row], src[off:off+row])
	}
}

// convertBGRAToRGBA swaps the red and blue channels of n pixels in place.
func convertBGRAToRGBA(pix []byte, n int) {
	for i := 0; i < n*4; i += 4 {
		pix[i], pix[i+2] = pix[i+2], pix[i]
	}
}
