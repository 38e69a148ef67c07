package models

import "fmt"

// CopyRawFrameData copies the raw color bytes into dst.
func (f *ColorFrame) CopyRawFrameData(dst []byte) int {
	return copy(dst, f.Raw)
}

// CopyConvertedFrameData writes the frame into dst in the requested format.
// Only BGRA output is supported; dst must hold Width*Height*4 bytes.
func (f *ColorFrame) CopyConvertedFrameData(dst []byte, format ImageFormat) error {
	if format != ImageFormatBGRA {
		return fmt.Errorf("color conversion to %s not supported", format)
	}
	n := f.Description.LengthInPixels()
	if len(dst) < n*BytesPerPixel {
		return fmt.Errorf("destination too small: %d < %d", len(dst), n*BytesPerPixel)
	}
	if len(f.Raw) < n*f.RawFormat.BytesPerPixel() {
		return fmt.Errorf("raw %s data truncated: %d bytes for %d pixels", f.RawFormat, len(f.Raw), n)
	}

	switch f.RawFormat {
	case ImageFormatBGRA:
		copy(dst, f.Raw[:n*BytesPerPixel])
	case ImageFormatRGBA:
		for i := 0; i < n; i++ {
			o := i * 4
			dst[o+0] = f.Raw[o+2]
			dst[o+1] = f.Raw[o+1]
			dst[o+2] = f.Raw[o+0]
			dst[o+3] = f.Raw[o+3]
		}
	case ImageFormatYUY2:
		yuy2ToBGRA(f.Raw[:n*2], dst)
	default:
		return fmt.Errorf("unknown raw color format %d", f.RawFormat)
	}
	return nil
}

// yuy2ToBGRA converts packed Y0 U Y1 V macropixels (BT.601, studio range).
func yuy2ToBGRA(src, dst []byte) {
	for i, o := 0, 0; i+3 < len(src); i, o = i+4, o+8 {
		u := int(src[i+1]) - 128
		v := int(src[i+3]) - 128
		for k, y := range [2]byte{src[i], src[i+2]} {
			c := 298 * (int(y) - 16)
			p := o + k*4
			dst[p+0] = clampByte((c + 516*u + 128) >> 8)
			dst[p+1] = clampByte((c - 100*u - 208*v + 128) >> 8)
			dst[p+2] = clampByte((c + 409*v + 128) >> 8)
			dst[p+3] = 255
		}
	}
}

func clampByte(v int) byte {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return byte(v)
}
